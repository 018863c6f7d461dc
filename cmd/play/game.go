package main

import (
	"context"
	"strconv"
	"time"

	"github.com/gdamore/tcell/v2"
	log "github.com/sirupsen/logrus"

	"github.com/wricardo/doorway/game/config"
	"github.com/wricardo/doorway/game/engine"
	"github.com/wricardo/doorway/game/service"
)

const frameInterval = 16 * time.Millisecond // ~60 FPS

// Game is the terminal host: it owns the world and editor of the current level
type Game struct {
	screen tcell.Screen
	levels *config.Manager
	sound  *SoundManager

	animationLength float32

	levelID  string
	level    *engine.Level
	world    *engine.World
	editor   *engine.Editor
	inEditor bool
	moves    int
	status   string

	start    time.Time
	lastTick time.Time
}

// input is what one key press asks of the world
type input struct {
	move  engine.Spot
	back  bool
	reset bool
}

func NewGame(screen tcell.Screen, levels *config.Manager, sound *SoundManager, animationLength float32) *Game {
	now := time.Now()
	return &Game{
		screen:          screen,
		levels:          levels,
		sound:           sound,
		animationLength: animationLength,
		start:           now,
		lastTick:        now,
	}
}

// LoadLevel replaces the world with a fresh one for id
func (g *Game) LoadLevel(id string) error {
	level, err := g.levels.LoadLevel(id)
	if err != nil {
		return err
	}
	g.setLevel(config.LevelID(id), level)
	return nil
}

func (g *Game) setLevel(id string, level *engine.Level) {
	if g.world != nil {
		g.world.Destroy()
	}
	g.levelID = id
	g.level = level
	g.world = engine.NewWorld(level.Collections(), g.animationLength)
	g.editor = engine.NewEditor(g.world)
	g.editor.Enabled = g.inEditor
	g.moves = 0
	g.status = level.Note
	log.WithField("level", id).Info("Level loaded")
}

// stepLevel loads the listed level offset positions away from the current one
func (g *Game) stepLevel(offset int) {
	next, err := g.levels.Neighbor(g.levelID, offset)
	if err != nil {
		g.status = err.Error()
		return
	}
	if next == g.levelID && offset != 0 {
		g.status = "End of the level list"
		return
	}
	if err := g.LoadLevel(next); err != nil {
		g.status = err.Error()
	}
}

// handleKey applies one key press. It returns false when the player quits.
func (g *Game) handleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyCtrlC:
		return false
	case tcell.KeyEscape:
		g.setEditor(false)
		return true
	case tcell.KeyLeft:
		g.resolve(input{move: engine.Left})
		return true
	case tcell.KeyRight:
		g.resolve(input{move: engine.Right})
		return true
	case tcell.KeyUp:
		g.resolve(input{move: engine.Up})
		return true
	case tcell.KeyDown:
		g.resolve(input{move: engine.Down})
		return true
	case tcell.KeyRune:
	default:
		return true
	}

	switch ev.Rune() {
	case 'q':
		return false
	case 'a':
		g.resolve(input{move: engine.Left})
	case 'd':
		g.resolve(input{move: engine.Right})
	case 'w':
		g.resolve(input{move: engine.Up})
	case 's':
		g.resolve(input{move: engine.Down})
	case 'z':
		g.resolve(input{back: true})
	case 'r':
		g.resolve(input{reset: true})
	case 'v':
		g.stepLevel(-1)
	case 'b':
		g.stepLevel(1)
	case 'h':
		g.setEditor(!g.inEditor)
	default:
		if g.inEditor {
			g.handleEditorKey(ev.Rune())
		}
	}
	return true
}

func (g *Game) setEditor(enabled bool) {
	g.inEditor = enabled
	g.editor.Enabled = enabled
}

// resolve runs one turn and reacts to its outcome
func (g *Game) resolve(in input) {
	turn := g.world.Resolve(in.move, g.inEditor, in.back, in.reset)
	log.WithFields(log.Fields{"level": g.levelID, "turn": turn.String()}).Debug("Turn resolved")

	switch turn {
	case engine.TurnMove:
		g.moves++
		g.status = ""
		if g.world.AnyThroughDoor() {
			g.sound.PlayTransit()
		}
		if g.world.Won() {
			g.sound.PlayWin()
			won := g.levelID
			g.stepLevel(1)
			if g.levelID == won {
				g.status = "🎉 Solved the last level!"
			}
		}
	case engine.TurnRejected:
		g.sound.PlayBump()
	case engine.TurnBack:
		g.moves = max(0, g.moves-1)
	case engine.TurnReset:
		g.moves = 0
	}
}

// handleEditorKey maps the editor keys onto editor operations
func (g *Game) handleEditorKey(r rune) {
	switch r {
	case 'u':
		g.editor.Place(engine.Moving, 0)
	case 'i':
		g.editor.Place(engine.Static, engine.StaticMappingCount)
	case 'o':
		g.editor.Place(engine.Winning, 0)
	case 'j':
		g.editor.Place(engine.Doors, 0)
	case 'y':
		g.editor.Place(engine.Tiles, engine.TileMappingCount)
	case 'g':
		g.editor.Place(engine.Floor, engine.FloorMappingCount)
	case 'n':
		g.editor.Remove(g.world.Collections().Cursor)
	case 'p':
		g.persist()
	case 'k':
		g.cloneLevel()
	case 'm':
		g.moveLevel(service.IndexMoveToEnd)
	case 'l':
		g.removeLevel()
	case '9':
		g.moveLevel(service.IndexMoveBack)
	case '0':
		g.moveLevel(service.IndexMoveForward)
	}
}

// editedLevel captures the edited collections with the bodies at their starting layout
func (g *Game) editedLevel() *engine.Level {
	history := g.world.History()
	return engine.LevelFromCollections(g.level.Name, g.level.Note, g.world.Collections(), history[0])
}

func (g *Game) persist() {
	level := g.editedLevel()
	if err := g.levels.SaveLevel(g.levelID, level); err != nil {
		g.status = err.Error()
		return
	}
	g.level = level
	g.status = "Saved " + g.levelID
}

func (g *Game) cloneLevel() {
	g.persist()
	id, err := g.levels.CloneLevel(g.levelID)
	if err != nil {
		g.status = err.Error()
		return
	}
	if err := g.LoadLevel(id); err != nil {
		g.status = err.Error()
		return
	}
	g.status = "Cloned into " + id
}

func (g *Game) moveLevel(op service.IndexOp) {
	pos, err := g.levels.MoveLevel(g.levelID, op)
	if err != nil {
		g.status = err.Error()
		return
	}
	g.status = "Moved to position " + strconv.Itoa(pos+1)
}

func (g *Game) removeLevel() {
	next, err := g.levels.RemoveLevel(g.levelID)
	if err != nil {
		g.status = err.Error()
		return
	}
	removed := g.levelID
	if next != "" {
		if err := g.LoadLevel(next); err != nil {
			g.status = err.Error()
			return
		}
	}
	g.status = "Dropped " + removed + " from the list"
}

// tick advances the animation clock
func (g *Game) tick(now time.Time) {
	dt := float32(now.Sub(g.lastTick).Seconds())
	g.lastTick = now
	g.world.Update(float32(now.Sub(g.start).Seconds()), dt)
}

func (g *Game) run(ctx context.Context) {
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := g.screen.PollEvent()
			if ev == nil {
				return
			}
			eventChan <- ev
		}
	}()

	g.draw()
	for {
		select {
		case <-ctx.Done():
			return

		case ev := <-eventChan:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if !g.handleKey(ev) {
					return
				}
			case *tcell.EventResize:
				g.screen.Sync()
			}

		case now := <-ticker.C:
			g.tick(now)
			g.draw()
		}
	}
}

func (g *Game) cleanup() {
	if g.world != nil {
		g.world.Destroy()
	}
	g.sound.Cleanup()
	g.screen.Fini()
}
