package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wricardo/doorway/game/engine"
	"github.com/wricardo/doorway/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Doorway",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Doorway - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Every body (@) moves together. Bring all bodies onto the winning doors (W) at the same time.
Doors (0-9) are linked in pairs: stepping into one door exits from its partner.

AVAILABLE TOOLS:
- game_state: Get current game state with an ASCII map
- move: Single move (up/down/left/right) - requires intent explanation
- bulk_move: Multiple moves at once - requires intent explanation
- back: Undo the last move
- reset_game: Return to the level start
- move_history: View past moves
- hint: Shortest solution from the current state
- create_session, get_session, list_sessions: Session management
- list_levels, switch_level, step_level: Level selection
- level_records: Best completions of a level
- set_editor, edit_level, save_level: Level editing
- describe_cell: Everything at a grid cell
- game_instructions: Full rules

NOTE: The 'intent' parameter on move/bulk_move tools serves as rubber duck debugging - explain your reasoning!`),
	)

	c.registerTools()
}

func sessionSchema(extra map[string]interface{}, required ...string) mcp.ToolInputSchema {
	props := map[string]interface{}{
		"session_id": map[string]interface{}{
			"type":        "string",
			"description": "Session ID",
		},
	}
	for k, v := range extra {
		props[k] = v
	}
	return mcp.ToolInputSchema{
		Type:       "object",
		Properties: props,
		Required:   append([]string{"session_id"}, required...),
	}
}

var directionSchema = map[string]interface{}{
	"type": "string",
	"enum": []string{"up", "down", "left", "right"},
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new game session with optional level selection",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"level_id": map[string]interface{}{
					"type":        "string",
					"description": "Level to play (optional, defaults to the first listed level)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active game sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: sessionSchema(nil),
	}, c.handleGetSession)

	// Game operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the current game state",
		InputSchema: sessionSchema(nil),
	}, c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move",
		Description: "Move every body one cell in a direction",
		InputSchema: sessionSchema(map[string]interface{}{
			"direction": directionSchema,
			"intent": map[string]interface{}{
				"type":        "string",
				"description": "Brief explanation of the intent behind this move (serves as a rubber duck to help explain your reasoning)",
			},
			"reset": map[string]interface{}{
				"type":        "boolean",
				"description": "Reset before moving",
			},
		}, "direction"),
	}, c.handleMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "bulk_move",
		Description: "Execute multiple moves in sequence, stopping at the first blocked move",
		InputSchema: sessionSchema(map[string]interface{}{
			"moves": map[string]interface{}{
				"type":        "array",
				"items":       directionSchema,
				"description": "Array of moves",
			},
			"intent": map[string]interface{}{
				"type":        "string",
				"description": "Brief explanation of the intent behind this sequence of moves (serves as a rubber duck to help explain your reasoning)",
			},
			"reset": map[string]interface{}{
				"type":        "boolean",
				"description": "Reset before moving",
			},
		}, "moves"),
	}, c.handleBulkMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "back",
		Description: "Undo the last move",
		InputSchema: sessionSchema(nil),
	}, c.handleBack)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "reset_game",
		Description: "Reset the game to the level start",
		InputSchema: sessionSchema(nil),
	}, c.handleReset)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move_history",
		Description: "Get move history for a session",
		InputSchema: sessionSchema(map[string]interface{}{
			"page": map[string]interface{}{
				"type":        "integer",
				"description": "Page number",
			},
			"limit": map[string]interface{}{
				"type":        "integer",
				"description": "Items per page",
			},
		}),
	}, c.handleMoveHistory)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "hint",
		Description: "Compute the shortest sequence of moves that wins from the current state",
		InputSchema: sessionSchema(nil),
	}, c.handleHint)

	// Levels
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_levels",
		Description: "List available levels in play order",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListLevels)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "switch_level",
		Description: "Load another level into a session, discarding its progress",
		InputSchema: sessionSchema(map[string]interface{}{
			"level_id": map[string]interface{}{
				"type":        "string",
				"description": "Level to load",
			},
		}, "level_id"),
	}, c.handleSwitchLevel)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "step_level",
		Description: "Load the next or previous level of the level list into a session",
		InputSchema: sessionSchema(map[string]interface{}{
			"direction": map[string]interface{}{
				"type": "string",
				"enum": []string{"next", "prev"},
			},
		}, "direction"),
	}, c.handleStepLevel)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "level_records",
		Description: "List the best completions of a level",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"level_id": map[string]interface{}{
					"type":        "string",
					"description": "Level ID",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of records",
				},
			},
			Required: []string{"level_id"},
		},
	}, c.handleLevelRecords)

	// Editor
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "set_editor",
		Description: "Turn the level editor on or off. With the editor on, moves drive the cursor.",
		InputSchema: sessionSchema(map[string]interface{}{
			"enabled": map[string]interface{}{
				"type": "boolean",
			},
		}, "enabled"),
	}, c.handleSetEditor)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "edit_level",
		Description: "Apply one editor operation to the session's level",
		InputSchema: sessionSchema(map[string]interface{}{
			"op": map[string]interface{}{
				"type": "string",
				"enum": []string{"cursor", "place", "add", "remove", "cycle", "link"},
			},
			"category": map[string]interface{}{
				"type":        "string",
				"enum":        []string{"moving", "static", "doors", "winning", "tiles", "floor"},
				"description": "Entity category for place/add/cycle",
			},
			"x": map[string]interface{}{"type": "integer"},
			"y": map[string]interface{}{"type": "integer"},
			"mapping": map[string]interface{}{
				"type":        "integer",
				"description": "Mapping for add (optional)",
			},
			"a": map[string]interface{}{"type": "integer", "description": "First door index for link"},
			"b": map[string]interface{}{"type": "integer", "description": "Second door index for link"},
		}, "op"),
	}, c.handleEdit)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "save_level",
		Description: "Save the session's edited level, optionally under a new name",
		InputSchema: sessionSchema(map[string]interface{}{
			"name": map[string]interface{}{
				"type":        "string",
				"description": "Level name (optional, defaults to the session's level)",
			},
		}),
	}, c.handleSaveLevel)

	// Help
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get comprehensive game instructions and rules",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "describe_cell",
		Description: "List every entity at a grid cell: bodies, static blocks, doors with their links, winning doors, tiles and floor.",
		InputSchema: sessionSchema(map[string]interface{}{
			"x": map[string]interface{}{
				"type":        "integer",
				"description": "X coordinate of the cell",
			},
			"y": map[string]interface{}{
				"type":        "integer",
				"description": "Y coordinate of the cell (up is +1)",
			},
		}, "x", "y"),
	}, c.handleDescribeCell)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls
func (c *Client) apiCall(method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	return args
}

func intArg(args map[string]interface{}, key string) (int, bool) {
	switch v := args[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	}
	return 0, false
}

func sessionPath(sessionID, suffix string) string {
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	levelID, _ := args["level_id"].(string)

	body := map[string]string{}
	if levelID != "" {
		body["level_id"] = levelID
	}

	var session service.SessionInfo
	if err := c.apiCall("POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Created session: %s\nLevel: %s\n\n%s",
		session.ID, session.LevelID, formatGameState(session.GameState))), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}
	if err := c.apiCall("GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		status := ""
		if s.GameState != nil && s.GameState.Won {
			status = " [won]"
		}
		fmt.Fprintf(&b, "- %s (Level: %s, Created: %s)%s\n",
			s.ID, s.LevelID, s.CreatedAt.Format("15:04:05"), status)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var session service.SessionInfo
	if err := c.apiCall("GET", sessionPath(sessionID, ""), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var state engine.GameState
	if err := c.apiCall("GET", sessionPath(sessionID, "/state"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGameState(&state)), nil
}

func (c *Client) handleMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	direction, _ := args["direction"].(string)
	reset, _ := args["reset"].(bool)

	// intent is for the caller's own reasoning

	body := map[string]interface{}{
		"direction": direction,
		"reset":     reset,
	}

	var result service.MoveResult
	if err := c.apiCall("POST", sessionPath(sessionID, "/move"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatMoveResult(&result)), nil
}

func (c *Client) handleBulkMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	movesRaw, _ := args["moves"].([]interface{})
	reset, _ := args["reset"].(bool)

	moves := make([]string, 0, len(movesRaw))
	for _, m := range movesRaw {
		if move, ok := m.(string); ok {
			moves = append(moves, move)
		}
	}

	body := map[string]interface{}{
		"moves": moves,
		"reset": reset,
	}

	var result service.BulkMoveResult
	if err := c.apiCall("POST", sessionPath(sessionID, "/bulk-move"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatBulkMoveResult(sessionID, &result)), nil
}

func (c *Client) handleBack(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var result service.MoveResult
	if err := c.apiCall("POST", sessionPath(sessionID, "/back"), nil, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("%s\n\n%s", result.Message, formatGameState(result.GameState))), nil
}

func (c *Client) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var response struct {
		Message string            `json:"message"`
		State   *engine.GameState `json:"state"`
	}
	if err := c.apiCall("POST", sessionPath(sessionID, "/reset"), nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("%s\n\n%s", response.Message, formatGameState(response.State))), nil
}

func (c *Client) handleMoveHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)

	query := url.Values{}
	if page, ok := intArg(args, "page"); ok {
		query.Set("page", fmt.Sprint(page))
	}
	if limit, ok := intArg(args, "limit"); ok {
		query.Set("limit", fmt.Sprint(limit))
	}
	path := sessionPath(sessionID, "/history")
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var history service.HistoryResponse
	if err := c.apiCall("GET", path, nil, &history); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatHistory(&history)), nil
}

func (c *Client) handleHint(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var hint service.HintResult
	if err := c.apiCall("GET", sessionPath(sessionID, "/hint"), nil, &hint); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatHint(&hint)), nil
}

func (c *Client) handleListLevels(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var levels []service.LevelInfo
	if err := c.apiCall("GET", "/api/levels", nil, &levels); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available Levels:\n\n")
	for _, level := range levels {
		position := "unlisted"
		if level.Position >= 0 {
			position = fmt.Sprintf("#%d", level.Position+1)
		}
		fmt.Fprintf(&b, "• %s (%s) %s\n  Bodies: %d, Doors: %d\n", level.LevelID, position, level.Name, level.Bodies, level.Doors)
		if level.Note != "" {
			fmt.Fprintf(&b, "  %s\n", level.Note)
		}
		b.WriteString("\n")
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleSwitchLevel(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	levelID, _ := args["level_id"].(string)

	var session service.SessionInfo
	if err := c.apiCall("POST", sessionPath(sessionID, "/level"), map[string]string{"level_id": levelID}, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleStepLevel(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	direction, _ := args["direction"].(string)

	suffix := "/next"
	switch direction {
	case "next", "":
	case "prev":
		suffix = "/prev"
	default:
		return mcp.NewToolResultError(fmt.Sprintf("direction must be next or prev, got %q", direction)), nil
	}

	var session service.SessionInfo
	if err := c.apiCall("POST", sessionPath(sessionID, suffix), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleLevelRecords(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	levelID, _ := args["level_id"].(string)

	path := "/api/levels/" + url.PathEscape(levelID) + "/records"
	if limit, ok := intArg(args, "limit"); ok {
		path += fmt.Sprintf("?limit=%d", limit)
	}

	var response struct {
		Count   int                        `json:"count"`
		Records []service.CompletionRecord `json:"records"`
	}
	if err := c.apiCall("GET", path, nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if response.Count == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No completions recorded for %s yet", levelID)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Best completions of %s:\n\n", levelID)
	for i, rec := range response.Records {
		fmt.Fprintf(&b, "%d. %d moves by session %s (%s)\n",
			i+1, rec.Moves, rec.SessionID, rec.CompletedAt.Format("2006-01-02 15:04"))
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleSetEditor(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	enabled, _ := args["enabled"].(bool)

	var state engine.GameState
	if err := c.apiCall("POST", sessionPath(sessionID, "/editor"), map[string]bool{"enabled": enabled}, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	status := "off"
	if state.EditorEnabled {
		status = "on"
	}
	return mcp.NewToolResultText(fmt.Sprintf("Editor %s\n\n%s", status, formatGameState(&state))), nil
}

func (c *Client) handleEdit(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)

	req := service.EditRequest{}
	op, _ := args["op"].(string)
	req.Op = service.EditOp(op)
	req.Category, _ = args["category"].(string)
	req.X, _ = intArg(args, "x")
	req.Y, _ = intArg(args, "y")
	req.A, _ = intArg(args, "a")
	req.B, _ = intArg(args, "b")
	if mapping, ok := intArg(args, "mapping"); ok {
		req.Mapping = &mapping
	}

	var result service.MoveResult
	if err := c.apiCall("POST", sessionPath(sessionID, "/edit"), req, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("%s\n\n%s", result.Message, formatGameState(result.GameState))), nil
}

func (c *Client) handleSaveLevel(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	name, _ := args["name"].(string)

	var response struct {
		LevelID string `json:"level_id"`
	}
	if err := c.apiCall("POST", sessionPath(sessionID, "/save"), map[string]string{"name": name}, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Saved level %s", response.LevelID)), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(instructions), nil
}

const instructions = `Doorway - Complete Instructions

GAME OBJECTIVE:
Bring every body onto a winning door at the same time. Any body may end on any winning door.

GAME MECHANICS:
• Movement: one intent (up, down, left, right) moves every body one cell at once
• All or nothing: if any body is blocked, nobody moves and the turn is rejected
• Blocking: static blocks, and any cell another body would also end on
• Doors: a body stepping onto a linked door exits on the partner door. An unlinked door is plain floor.
• Victory: the set of body cells equals the set of winning door cells
• Undo: back returns to the previous position, reset returns to the level start

COORDINATES:
• x grows to the right, y grows upward ("up" is y+1)

MAP LEGEND:
• @ - Body
• # - Static block
• 0-9 - Door (digit is the door index; linked doors are listed under the map)
• W - Winning door
• * - Body standing on a winning door
• . - Floor
• , - Decorative tile
• + - Editor cursor

STRATEGY:
• Every move applies to all bodies, so think about the body that is closest to a wall
• Use walls to hold one body still while the others move
• Doors let bodies swap sides of the map. Check the exit door's neighbours first.
• Call hint when stuck: it returns the shortest winning sequence from the current state

MOVEMENT COMMANDS:
- move: single move with optional reset
- bulk_move: stops at the first blocked move and reports it
- back / reset_game: undo one move / start over

EDITOR:
- set_editor enabled=true turns moves into cursor moves
- edit_level applies cursor, place, add, remove, cycle and link operations
- save_level writes the edited level

SESSION MANAGEMENT:
- Multiple game sessions can run simultaneously
- Each session has unique 4-character ID
- Completions are recorded per level; see level_records

Good luck finding the way through!`

func (c *Client) handleDescribeCell(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	x, okX := intArg(args, "x")
	y, okY := intArg(args, "y")
	if !okX || !okY {
		return mcp.NewToolResultError("x and y are required integers"), nil
	}

	var state engine.GameState
	if err := c.apiCall("GET", sessionPath(sessionID, "/state"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(describeCell(&state, engine.Spot{X: x, Y: y})), nil
}

// describeCell lists every entity of state found at cell
func describeCell(state *engine.GameState, cell engine.Spot) string {
	var lines []string
	for i, s := range state.Moving {
		if s == cell {
			lines = append(lines, fmt.Sprintf("Body %d", i))
		}
	}
	for _, e := range state.Static {
		if e.X == cell.X && e.Y == cell.Y {
			lines = append(lines, fmt.Sprintf("Static block (mapping %d) - blocks movement", e.Mapping))
		}
	}
	for i, d := range state.Doors {
		if d.X != cell.X || d.Y != cell.Y {
			continue
		}
		if partner, ok := doorPartner(state.Doors, i); ok {
			p := state.Doors[partner]
			lines = append(lines, fmt.Sprintf("Door %d - leads to door %d at (%d,%d)", i, partner, p.X, p.Y))
		} else {
			lines = append(lines, fmt.Sprintf("Door %d - unlinked, behaves as floor", i))
		}
	}
	for _, w := range state.Winning {
		if w == cell {
			lines = append(lines, "Winning door")
		}
	}
	for _, e := range state.Tiles {
		if e.X == cell.X && e.Y == cell.Y {
			lines = append(lines, fmt.Sprintf("Tile (mapping %d)", e.Mapping))
		}
	}
	for _, e := range state.Floor {
		if e.X == cell.X && e.Y == cell.Y {
			lines = append(lines, "Floor")
		}
	}
	if state.EditorEnabled && state.Cursor == cell {
		lines = append(lines, "Editor cursor")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Cell at position (%d, %d):\n", cell.X, cell.Y)
	if len(lines) == 0 {
		b.WriteString("Empty\n")
		return b.String()
	}
	for _, line := range lines {
		fmt.Fprintf(&b, "- %s\n", line)
	}
	return b.String()
}

// doorPartner returns the exit door of door i, if its link is usable
func doorPartner(doors []engine.Door, i int) (int, bool) {
	link, ok := doors[i].Target()
	if !ok || link < 0 || link >= len(doors) || link == i {
		return 0, false
	}
	return link, true
}

// Formatting helpers

func formatSessionInfo(session *service.SessionInfo) string {
	return fmt.Sprintf("Session: %s\nLevel: %s\nCreated: %s\n\n%s",
		session.ID, session.LevelID,
		session.CreatedAt.Format("2006-01-02 15:04:05"),
		formatGameState(session.GameState))
}

func formatSpots(spots []engine.Spot) string {
	parts := make([]string, len(spots))
	for i, s := range spots {
		parts[i] = fmt.Sprintf("(%d,%d)", s.X, s.Y)
	}
	return strings.Join(parts, " ")
}

func formatGameState(state *engine.GameState) string {
	if state == nil {
		return "No game state available"
	}

	var result strings.Builder

	name := state.LevelName
	if name == "" {
		name = "untitled"
	}
	fmt.Fprintf(&result, "Level: %s | Bodies: %s | Moves: %d (total %d)\n",
		name, formatSpots(state.Moving), state.CurrentMovesCount, state.TotalMoves)
	if state.Note != "" {
		fmt.Fprintf(&result, "Note: %s\n", state.Note)
	}
	if state.EditorEnabled {
		fmt.Fprintf(&result, "Editor: on, cursor (%d,%d)\n", state.Cursor.X, state.Cursor.Y)
	}
	result.WriteString("\n")
	result.WriteString(renderMap(state))

	if links := formatLinks(state.Doors); links != "" {
		result.WriteString("\n")
		result.WriteString(links)
	}

	if state.Won {
		result.WriteString("\n🎉 VICTORY!")
	}

	if state.Message != "" {
		fmt.Fprintf(&result, "\nMessage: %s", state.Message)
	}

	return result.String()
}

// renderMap draws the level with y growing upward, one character per cell
func renderMap(state *engine.GameState) string {
	cells := map[engine.Spot]rune{}
	put := func(s engine.Spot, r rune) {
		if _, taken := cells[s]; !taken {
			cells[s] = r
		}
	}

	winning := map[engine.Spot]bool{}
	for _, w := range state.Winning {
		winning[w] = true
	}

	// Highest precedence first
	if state.EditorEnabled {
		put(state.Cursor, '+')
	}
	for _, s := range state.Moving {
		if winning[s] {
			put(s, '*')
		} else {
			put(s, '@')
		}
	}
	for _, e := range state.Static {
		put(engine.Spot{X: e.X, Y: e.Y}, '#')
	}
	for i, d := range state.Doors {
		put(engine.Spot{X: d.X, Y: d.Y}, rune('0'+i%10))
	}
	for _, w := range state.Winning {
		put(w, 'W')
	}
	for _, e := range state.Tiles {
		put(engine.Spot{X: e.X, Y: e.Y}, ',')
	}
	for _, e := range state.Floor {
		put(engine.Spot{X: e.X, Y: e.Y}, '.')
	}

	if len(cells) == 0 {
		return ""
	}

	first := true
	var minX, maxX, minY, maxY int
	for s := range cells {
		if first {
			minX, maxX, minY, maxY = s.X, s.X, s.Y, s.Y
			first = false
			continue
		}
		minX, maxX = min(minX, s.X), max(maxX, s.X)
		minY, maxY = min(minY, s.Y), max(maxY, s.Y)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "x %d..%d, y %d..%d (top row is y=%d)\n", minX, maxX, minY, maxY, maxY)
	for y := maxY; y >= minY; y-- {
		for x := minX; x <= maxX; x++ {
			if r, ok := cells[engine.Spot{X: x, Y: y}]; ok {
				b.WriteRune(r)
			} else {
				b.WriteRune(' ')
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

func formatLinks(doors []engine.Door) string {
	var b strings.Builder
	for i := range doors {
		partner, ok := doorPartner(doors, i)
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "Door %d (%d,%d) -> door %d (%d,%d)\n",
			i, doors[i].X, doors[i].Y, partner, doors[partner].X, doors[partner].Y)
	}
	return b.String()
}

func formatMoveResult(result *service.MoveResult) string {
	var b strings.Builder
	if result.Success {
		b.WriteString("✓ Move successful\n")
	} else {
		b.WriteString("✗ Move failed\n")
	}

	if result.Step != nil {
		b.WriteString(formatStepLine(*result.Step))
	}

	if len(result.Events) > 0 {
		b.WriteString("Events:\n")
		for _, event := range result.Events {
			fmt.Fprintf(&b, "- %s: %s\n", event.Type, event.Message)
		}
	}

	b.WriteString("\n")
	b.WriteString(formatGameState(result.GameState))
	return b.String()
}

// formatStepLine renders a single compact step line
func formatStepLine(s service.StepInfo) string {
	status := "✗"
	if s.Success {
		status = "✓"
	}
	door := ""
	for _, through := range s.ThroughDoor {
		if through {
			door = " via door"
			break
		}
	}
	victory := ""
	if s.Victory {
		victory = " victory"
	}
	return fmt.Sprintf("%d. %s %s → %s%s%s %s\n",
		s.Idx, s.Dir, formatSpots(s.From), formatSpots(s.To), door, victory, status)
}

func formatBulkMoveResult(sessionID string, result *service.BulkMoveResult) string {
	var b strings.Builder

	levelName := ""
	if result.GameState != nil {
		levelName = result.GameState.LevelName
	}
	fmt.Fprintf(&b, "Session: %s • Level: %s\n", sessionID, levelName)

	fmt.Fprintf(&b, "Executed %d/%d moves\n", result.MovesExecuted, result.RequestedMoves)
	if result.Truncated {
		fmt.Fprintf(&b, "Truncated to %d moves\n", result.Limit)
	}
	if result.StoppedReason != "" {
		fmt.Fprintf(&b, "Stopped: %s", result.StoppedReason)
		if result.StoppedOnMove > 0 {
			fmt.Fprintf(&b, " (move %d)", result.StoppedOnMove)
		}
		b.WriteString("\n")
	}

	if len(result.Steps) > 0 {
		b.WriteString("\nSteps (this call):\n")
		for _, s := range result.Steps {
			b.WriteString(formatStepLine(s))
		}
	}

	if len(result.PossibleMoves) > 0 {
		fmt.Fprintf(&b, "\nPossible moves: %s\n", strings.Join(result.PossibleMoves, ","))
	}

	b.WriteString("\n")
	b.WriteString(formatGameState(result.GameState))
	return b.String()
}

func formatHistory(history *service.HistoryResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Move History (page %d/%d, %d total moves):\n\n",
		history.Page, history.TotalPages, history.TotalMoves)

	if len(history.Moves) == 0 {
		b.WriteString("No moves yet\n")
	}
	for _, entry := range history.Moves {
		status := "✓"
		if !entry.Success {
			status = "✗"
		}
		door := ""
		if entry.ThroughDoor {
			door = " via door"
		}
		fmt.Fprintf(&b, "#%d %s %s → %s%s %s\n",
			entry.MoveNumber, entry.Action, formatSpots(entry.From), formatSpots(entry.To), door, status)
	}

	if history.HasNext {
		fmt.Fprintf(&b, "\nMore moves on page %d\n", history.Page+1)
	}
	return b.String()
}

func formatHint(hint *service.HintResult) string {
	if !hint.Solvable {
		msg := hint.Message
		if msg == "" {
			msg = "No solution from the current state"
		}
		return fmt.Sprintf("%s (explored %d states). Try back or reset_game.", msg, hint.Explored)
	}
	if len(hint.Moves) == 0 {
		return "Level already complete"
	}
	return fmt.Sprintf("Shortest solution: %d moves (explored %d states)\nNext move: %s\nFull sequence: %s",
		len(hint.Moves), hint.Explored, hint.Next, strings.Join(hint.Moves, ","))
}
