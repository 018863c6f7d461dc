// Command play is a terminal host for Doorway levels. It owns a World and an Editor
// directly, drives them from the keyboard, and draws the interpolated positions with
// tcell. Transits and wins play short chimes.
//
// Keys:
//
//	arrows / wasd   move (editor: move the cursor)
//	z               back
//	r               reset
//	v / b           previous / next level
//	h               toggle editor, esc leaves it
//	q, ctrl-c       quit
//
// Editor keys: u body, i static, o winning door, j door, y tile, g floor (repeat cycles
// the mapping), n remove at cursor, p persist, k clone, m move to end, l drop from list,
// 9 / 0 move back / forward in the list.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"

	"github.com/gdamore/tcell/v2"

	"github.com/wricardo/doorway/game/config"
)

func main() {
	cmd := &cli.Command{
		Name:  "play",
		Usage: "Play and edit Doorway levels in the terminal",
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
				Name:  "level",
				Usage: "level to start on (defaults to start_level, then the first listed level)",
			},
			&cli.BoolFlag{
				Name:  "mute",
				Usage: "disable sound",
			},
			&cli.StringFlag{
				Name:  "log",
				Usage: "write logs to this file",
			},
		},
		Action: run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "play: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	// the terminal belongs to tcell
	log.SetOutput(io.Discard)
	if path := cmd.String("log"); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return err
		}
		defer f.Close()
		log.SetOutput(f)
		log.SetLevel(log.DebugLevel)
	}

	settings, err := config.LoadSettings(cmd.String("settings"))
	if err != nil {
		return err
	}
	if cmd.IsSet("levels-dir") {
		settings.LevelsDir = cmd.String("levels-dir")
	}

	levels, err := config.NewManager(settings.LevelsDir)
	if err != nil {
		return err
	}

	start := cmd.String("level")
	if start == "" {
		start = settings.StartLevel
	}
	if start == "" {
		_, start = levels.GetDefault()
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}

	sound := NewSoundManager()
	if !cmd.Bool("mute") {
		if err := sound.Initialize(); err != nil {
			// Non-fatal, game can run without sound
			log.Warnf("Audio initialization failed: %v", err)
		}
	}

	game := NewGame(screen, levels, sound, settings.AnimationLength)
	defer game.cleanup()

	if err := game.LoadLevel(start); err != nil {
		log.Warnf("Failed to load %s: %v", start, err)
		level, id := levels.GetDefault()
		game.setLevel(id, level)
	}

	game.run(ctx)
	return nil
}
