// Command doorway starts the Doorway puzzle server.
//
// It supports three commands:
//  1. "server" (default) – runs the HTTP server exposing REST API, WebSocket, and an /mcp HTTP endpoint
//  2. "mcp" – runs an MCP stdio server and spins up an internal HTTP API if none is available
//  3. "pack" – writes the compressed binary form of levels next to their JSON files
//
// Settings come from settings.yaml, overridden by flags and environment variables.
// An optional ngrok tunnel exposes the server for external access during development.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/wricardo/doorway/api"
	"github.com/wricardo/doorway/game/config"
	"github.com/wricardo/doorway/game/records"
	"github.com/wricardo/doorway/game/service"
	"github.com/wricardo/doorway/game/session"
	"github.com/wricardo/doorway/transport/mcp"
	"github.com/wricardo/doorway/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Doorway Server"
)

// options is the resolved startup configuration
type options struct {
	config.Settings

	Host        string
	Port        int
	StaticDir   string
	Ngrok       bool
	NgrokAuth   string
	NgrokDomain string
}

func (o options) addr() string {
	return fmt.Sprintf("%s:%d", o.Host, o.Port)
}

// services bundles everything the hosts share
type services struct {
	game        service.GameService
	levels      *config.Manager
	sessions    *session.Manager
	persistence session.SessionPersistence
	records     *records.SQLiteStore
}

// Close flushes sessions and releases the records database
func (s *services) Close() {
	if err := s.sessions.SaveAllSessions(); err != nil {
		log.Warnf("Failed to save sessions on shutdown: %v", err)
	}
	if s.records != nil {
		if err := s.records.Close(); err != nil {
			log.Warnf("Failed to close records database: %v", err)
		}
	}
}

func main() {
	// Load .env file if it exists so env-sourced flags see it
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			log.Warnf("Error loading .env file: %v", err)
		}
	} else {
		log.Info("Loaded environment variables from .env file")
	}

	if err := newApp().Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

// newApp builds the command tree
func newApp() *cli.Command {
	return &cli.Command{
		Name:    "doorway",
		Usage:   AppName,
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "settings",
				Value:   "settings.yaml",
				Usage:   "settings file; missing file means defaults",
				Sources: cli.EnvVars("SETTINGS_FILE"),
			},
			&cli.StringFlag{
				Name:    "levels-dir",
				Usage:   "directory containing levels and levels_list",
				Sources: cli.EnvVars("LEVELS_DIR"),
			},
			&cli.StringFlag{
				Name:    "sessions-dir",
				Usage:   "directory for persisted sessions",
				Sources: cli.EnvVars("SESSIONS_DIR"),
			},
			&cli.StringFlag{
				Name:    "records-db",
				Usage:   "SQLite file for completion records; empty disables records",
				Sources: cli.EnvVars("RECORDS_DB"),
			},
			&cli.StringFlag{
				Name:    "host",
				Value:   "localhost",
				Usage:   "HTTP server host",
				Sources: cli.EnvVars("HOST"),
			},
			&cli.IntFlag{
				Name:    "port",
				Value:   8080,
				Usage:   "HTTP server port",
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:  "static-dir",
				Value: "./static/",
				Usage: "directory served for non-API paths",
			},
			&cli.BoolFlag{
				Name:    "debug",
				Usage:   "enable debug logging",
				Sources: cli.EnvVars("DEBUG"),
			},
			&cli.BoolFlag{
				Name:    "ngrok",
				Usage:   "enable ngrok tunnel",
				Sources: cli.EnvVars("NGROK_ENABLED"),
			},
			&cli.StringFlag{
				Name:    "ngrok-auth",
				Usage:   "ngrok auth token",
				Sources: cli.EnvVars("NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN"),
			},
			&cli.StringFlag{
				Name:    "ngrok-domain",
				Usage:   "custom ngrok domain (optional)",
				Sources: cli.EnvVars("NGROK_DOMAIN"),
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			if cmd.Bool("debug") {
				log.SetLevel(log.DebugLevel)
			}
			return ctx, nil
		},
		Action: runServerCommand,
		Commands: []*cli.Command{
			{
				Name:    "server",
				Aliases: []string{"http"},
				Usage:   "Run HTTP server with API, WebSocket, and MCP endpoint",
				Action:  runServerCommand,
			},
			{
				Name:    "mcp",
				Aliases: []string{"stdio-mcp", "mcp-stdio"},
				Usage:   "Run MCP stdio server with internal HTTP server",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					opts, err := loadOptions(cmd)
					if err != nil {
						return err
					}
					svc, err := initializeServices(opts)
					if err != nil {
						return fmt.Errorf("failed to initialize services: %w", err)
					}
					defer svc.Close()
					return runStdioMCPWithInternalServer(opts, svc)
				},
			},
			{
				Name:      "pack",
				Usage:     "Write the binary form of levels (all listed levels when none are named)",
				ArgsUsage: "[level...]",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					opts, err := loadOptions(cmd)
					if err != nil {
						return err
					}
					levels, err := config.NewManager(opts.LevelsDir)
					if err != nil {
						return err
					}
					return packLevels(levels, cmd.Args().Slice(), os.Stdout)
				},
			},
		},
	}
}

// loadOptions reads the settings file and applies flag overrides
func loadOptions(cmd *cli.Command) (options, error) {
	settings, err := config.LoadSettings(cmd.String("settings"))
	if err != nil {
		return options{}, fmt.Errorf("failed to load settings: %w", err)
	}

	if cmd.IsSet("levels-dir") {
		settings.LevelsDir = cmd.String("levels-dir")
	}
	if cmd.IsSet("sessions-dir") {
		settings.SessionsDir = cmd.String("sessions-dir")
	}
	if cmd.IsSet("records-db") {
		settings.RecordsDB = cmd.String("records-db")
	}

	return options{
		Settings:    settings,
		Host:        cmd.String("host"),
		Port:        cmd.Int("port"),
		StaticDir:   cmd.String("static-dir"),
		Ngrok:       cmd.Bool("ngrok"),
		NgrokAuth:   cmd.String("ngrok-auth"),
		NgrokDomain: cmd.String("ngrok-domain"),
	}, nil
}

func runServerCommand(ctx context.Context, cmd *cli.Command) error {
	opts, err := loadOptions(cmd)
	if err != nil {
		return err
	}

	log.Infof("Starting %s v%s", AppName, Version)

	svc, err := initializeServices(opts)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	defer svc.Close()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go sessionCleanupRoutine(ctx, svc.sessions)
	go filesystemSyncRoutine(ctx, svc.sessions, svc.persistence)

	return runHTTPServer(ctx, opts, svc.game)
}

// initializeServices wires level, session and record stores into the game service
func initializeServices(opts options) (*services, error) {
	levels, err := config.NewManager(opts.LevelsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create level manager: %w", err)
	}
	if opts.StartLevel != "" {
		if err := levels.SetDefault(opts.StartLevel); err != nil {
			log.Warnf("Start level %s unavailable, keeping the first listed level: %v", opts.StartLevel, err)
		}
	}

	persistence, err := session.NewFilePersistence(opts.SessionsDir, levels)
	if err != nil {
		return nil, fmt.Errorf("failed to create session persistence: %w", err)
	}

	sessionManager := session.NewManagerWithPersistence(persistence)
	if err := sessionManager.LoadPersistedSessions(); err != nil {
		log.Warnf("Failed to load persisted sessions: %v", err)
	}

	svc := &services{
		levels:      levels,
		sessions:    sessionManager,
		persistence: persistence,
	}

	serviceOpts := []service.Option{
		service.WithSolverLimit(opts.SolverLimit),
		service.WithMaxBulkMoves(opts.MaxBulkMoves),
	}
	if opts.RecordsDB != "" {
		store, err := records.OpenSQLite(opts.RecordsDB)
		if err != nil {
			return nil, fmt.Errorf("failed to open records database: %w", err)
		}
		svc.records = store
		serviceOpts = append(serviceOpts, service.WithRecords(store))
	}

	svc.game = service.NewGameService(sessionManager, levels, serviceOpts...)
	return svc, nil
}

// packLevels writes the binary form of each named level, or of every listed level
func packLevels(levels *config.Manager, names []string, out io.Writer) error {
	if len(names) == 0 {
		infos, err := levels.ListLevels()
		if err != nil {
			return err
		}
		for _, info := range infos {
			if info.Position >= 0 {
				names = append(names, info.LevelID)
			}
		}
	}

	var errs []error
	for _, name := range names {
		path, err := levels.PackLevel(name)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}
		fmt.Fprintf(out, "packed %s -> %s\n", name, path)
	}
	return errors.Join(errs...)
}

// mcpHandler serves single MCP JSON-RPC messages over HTTP POST
func mcpHandler(mcpServer *server.MCPServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := mcpServer.HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	}
}

// runHTTPServer starts the HTTP server with REST API, WebSocket hub, and an /mcp proxy endpoint.
// If ngrok is enabled, it also provisions a public tunnel. It returns when ctx is done.
func runHTTPServer(ctx context.Context, opts options, gameService service.GameService) error {
	hub := websocket.NewHub()
	go hub.Run()
	defer hub.Close()

	apiServer := api.NewServer(gameService, hub, api.WithStaticDir(opts.StaticDir))

	addr := opts.addr()
	mcpClient := mcp.NewClient(fmt.Sprintf("http://%s", addr))

	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", apiServer)
	mainRouter.HandleFunc("/mcp", mcpHandler(mcpClient.GetMCPServer()))

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      mainRouter,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	var wg sync.WaitGroup
	serveErr := make(chan error, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()

		log.Infof("HTTP server listening on %s", addr)
		log.Infof("REST API: http://%s/api", addr)
		log.Infof("WebSocket: ws://%s/ws?session=<session_id>", addr)
		log.Infof("MCP endpoint: http://%s/mcp", addr)

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErr <- fmt.Errorf("HTTP server failed: %w", err)
		}
	}()

	if opts.Ngrok {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrok(ctx, opts, mainRouter)
		}()
	}

	var err error
	select {
	case <-ctx.Done():
		log.Info("Shutting down...")
	case err = <-serveErr:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if shutdownErr := httpServer.Shutdown(shutdownCtx); shutdownErr != nil {
		log.Warnf("HTTP server shutdown error: %v", shutdownErr)
	}

	wg.Wait()
	log.Info("Server stopped")
	return err
}

// runNgrok serves handler through an ngrok tunnel until ctx is done
func runNgrok(ctx context.Context, opts options, handler http.Handler) {
	if opts.NgrokAuth == "" {
		log.Warn("Ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN, or NGROK_AUTH_TOKEN env var)")
		return
	}

	log.Info("Starting ngrok tunnel...")

	var tunnel ngrokConfig.Tunnel
	if opts.NgrokDomain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(opts.NgrokDomain))
		log.Infof("Using custom ngrok domain: %s", opts.NgrokDomain)
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(opts.NgrokAuth))
	if err != nil {
		log.Warnf("Failed to start ngrok tunnel: %v", err)
		return
	}

	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			log.Warnf("Failed to close ngrok tunnel: %v", err)
		}
	}()

	ngrokURL := tun.URL()
	log.WithField("url", ngrokURL).Info("Ngrok tunnel established")
	log.Infof("  REST API (ngrok): %s/api", ngrokURL)
	log.Infof("  WebSocket (ngrok): %s/ws?session=<session_id>", ngrokURL)
	log.Infof("  MCP endpoint (ngrok): %s/mcp", ngrokURL)

	if err := http.Serve(tun, handler); err != nil && err != http.ErrServerClosed && ctx.Err() == nil {
		log.Warnf("Ngrok server error: %v", err)
	}
	log.Info("Ngrok tunnel closed")
}

// sessionCleanupRoutine periodically removes sessions that have not been accessed
// within the retention window.
func sessionCleanupRoutine(ctx context.Context, manager *session.Manager) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := manager.CleanupExpiredSessions(24 * time.Hour); removed > 0 {
				log.Infof("Cleaned up %d expired sessions", removed)
			}
		}
	}
}

// filesystemSyncRoutine removes sessions from memory when their files are deleted
func filesystemSyncRoutine(ctx context.Context, manager *session.Manager, persistence session.SessionPersistence) {
	if persistence == nil {
		return
	}

	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if pruned := pruneOrphanedSessions(manager, persistence); pruned > 0 {
				log.Infof("Filesystem sync: pruned %d orphaned sessions from memory", pruned)
			}
		}
	}
}

func pruneOrphanedSessions(manager *session.Manager, persistence session.SessionPersistence) int {
	pruned := 0
	for _, sess := range manager.List() {
		if persistence.Exists(sess.ID) {
			continue
		}
		if err := manager.DeleteFromMemory(sess.ID); err == nil {
			pruned++
			log.Debugf("Pruned session %s from memory (file deleted)", sess.ID)
		}
	}
	return pruned
}

// runStdioMCPWithInternalServer runs an MCP stdio server.
// It reuses an external API on the configured address when one answers; otherwise it
// starts an internal HTTP API bound to a random loopback port and targets that.
func runStdioMCPWithInternalServer(opts options, svc *services) error {
	// stdout carries the MCP protocol
	log.SetOutput(os.Stderr)

	externalURL := fmt.Sprintf("http://%s", opts.addr())
	log.Infof("Checking for external API server at %s...", externalURL)

	baseURL := externalURL
	testClient := &http.Client{Timeout: 2 * time.Second}
	resp, err := testClient.Get(externalURL + "/health")
	if err == nil {
		resp.Body.Close()
	}
	if err == nil && resp.StatusCode < 500 {
		log.Infof("External API server found at %s, using it for MCP", externalURL)
	} else {
		log.Info("No external API server found, starting internal HTTP server")

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}

		hub := websocket.NewHub()
		go hub.Run()
		defer hub.Close()

		httpServer := &http.Server{
			Handler: api.NewServer(svc.game, hub, api.WithStaticDir(opts.StaticDir)),
		}
		go func() {
			if err := httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
				log.Warnf("Internal HTTP server error: %v", err)
			}
		}()
		defer httpServer.Close()

		baseURL = fmt.Sprintf("http://%s", listener.Addr().String())
		log.Infof("Internal HTTP server on %s for MCP stdio", baseURL)
	}

	mcpClient := mcp.NewClient(baseURL)
	log.Info("MCP stdio server ready")

	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}
