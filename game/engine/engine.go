package engine

import (
	"fmt"
	"time"
)

// Engine provides the main interface for game operations
type Engine interface {
	// Game state management
	GetState() *GameState
	Reset() bool
	Back() bool
	IsVictory() bool
	GetMoving() []Spot

	// Movement operations
	Move(direction string) bool
	CanMove(direction string) bool
	GetPossibleMoves() []string
	BulkMove(moves []string) []bool

	// Level and editing
	GetLevel() *Level
	EditedLevel() *Level
	World() *World
	Editor() *Editor
	SetEditorEnabled(enabled bool)

	// History
	GetMoveHistory() []MoveHistoryEntry
	GetLastMove() *MoveHistoryEntry

	// Frame clock
	Update(now, dt float32)
}

// GameEngine implements the Engine interface on top of a World
type GameEngine struct {
	level       *Level
	world       *World
	editor      *Editor
	moveHistory []MoveHistoryEntry
	totalMoves  int
	message     string
	lastTurn    Turn
}

// NewEngine creates a new game engine over a validated level
func NewEngine(level *Level, animationLength float32) (*GameEngine, error) {
	if level == nil {
		return nil, fmt.Errorf("%w: level cannot be nil", ErrInvalidLevel)
	}
	level.normalize()
	if err := level.Validate(); err != nil {
		return nil, err
	}

	world := NewWorld(level.Collections(), animationLength)
	e := &GameEngine{
		level:       level,
		world:       world,
		editor:      NewEditor(world),
		moveHistory: []MoveHistoryEntry{},
		message:     welcomeMessage(level),
	}
	return e, nil
}

func welcomeMessage(level *Level) string {
	if level.Note != "" {
		return level.Note
	}
	return fmt.Sprintf("Guide %d bodies onto the winning doors", len(level.Moving))
}

// GetState returns a snapshot of the current game state
func (e *GameEngine) GetState() *GameState {
	c := e.world.Collections()
	edited := c.Clone()
	return &GameState{
		LevelName:         e.level.Name,
		Note:              e.level.Note,
		Moving:            edited.Moving,
		Clones:            e.world.Clones(),
		ThroughDoor:       e.world.ThroughDoor(),
		AnyThroughDoor:    e.world.AnyThroughDoor(),
		Static:            edited.Static,
		Doors:             edited.Doors,
		Winning:           edited.Winning,
		Tiles:             edited.Tiles,
		Floor:             edited.Floor,
		Cursor:            edited.Cursor,
		Won:               e.world.Won(),
		Message:           e.message,
		LastTurn:          e.lastTurn.String(),
		HistoryLen:        e.world.HistoryLen(),
		EditorEnabled:     e.editor.Enabled,
		MoveHistory:       append([]MoveHistoryEntry{}, e.moveHistory...),
		TotalMoves:        e.totalMoves,
		CurrentMovesCount: e.world.HistoryLen() - 1,
	}
}

// GetMoving returns the current moving-body positions
func (e *GameEngine) GetMoving() []Spot {
	return e.world.Moving()
}

// IsVictory returns whether the moving bodies cover the winning doors
func (e *GameEngine) IsVictory() bool {
	return e.world.Won()
}

// Move resolves one direction intent. With the editor enabled it moves the cursor instead.
func (e *GameEngine) Move(direction string) bool {
	intent, ok := DirectionToIntent(direction)
	if !ok {
		e.message = fmt.Sprintf("Unknown direction %q", direction)
		return false
	}
	if e.world.Won() && !e.editor.Enabled {
		e.message = "Level complete! Go back or reset to keep playing"
		return false
	}

	from := e.world.Moving()
	e.lastTurn = e.world.Resolve(intent, e.editor.Enabled, false, false)
	switch e.lastTurn {
	case TurnEditor:
		e.message = fmt.Sprintf("Cursor at %s", e.world.Collections().Cursor)
		return true
	case TurnMove:
		e.record(direction, from, true)
		switch {
		case e.world.Won():
			e.message = fmt.Sprintf("Level complete in %d moves!", e.world.HistoryLen()-1)
		case e.world.AnyThroughDoor():
			e.message = "Through the door!"
		default:
			e.message = fmt.Sprintf("Moved %s", direction)
		}
		return true
	}
	e.record(direction, from, false)
	e.message = "Can't move there!"
	return false
}

// CanMove checks whether a direction would be accepted
func (e *GameEngine) CanMove(direction string) bool {
	intent, ok := DirectionToIntent(direction)
	if !ok || e.world.Won() {
		return false
	}
	return e.world.CanMove(intent)
}

// GetPossibleMoves returns all directions that would be accepted
func (e *GameEngine) GetPossibleMoves() []string {
	var possible []string
	for _, dir := range []string{"up", "down", "left", "right"} {
		if e.CanMove(dir) {
			possible = append(possible, dir)
		}
	}
	return possible
}

// BulkMove executes multiple moves in sequence, returning success status for each
func (e *GameEngine) BulkMove(moves []string) []bool {
	results := make([]bool, 0, len(moves))
	for _, direction := range moves {
		// Stop once the level is complete
		if e.world.Won() && !e.editor.Enabled {
			break
		}
		results = append(results, e.Move(direction))
	}
	return results
}

// Back undoes the last accepted move
func (e *GameEngine) Back() bool {
	from := e.world.Moving()
	e.lastTurn = e.world.Resolve(Stay, false, true, false)
	if e.lastTurn != TurnBack {
		e.message = "Nothing to undo"
		return false
	}
	e.record(ActionBack, from, true)
	e.message = "Went back one move"
	return true
}

// Reset restores the level's starting layout. Cumulative history is preserved.
func (e *GameEngine) Reset() bool {
	from := e.world.Moving()
	e.lastTurn = e.world.Resolve(Stay, false, false, true)
	if e.lastTurn != TurnReset {
		e.message = "Already at the start"
		return false
	}
	e.record(ActionReset, from, true)
	e.message = "Level reset"
	return true
}

func (e *GameEngine) record(action string, from []Spot, success bool) {
	e.totalMoves++
	e.moveHistory = append(e.moveHistory, MoveHistoryEntry{
		Action:      action,
		From:        from,
		To:          e.world.Moving(),
		ThroughDoor: success && e.world.AnyThroughDoor(),
		Timestamp:   time.Now().Unix(),
		Success:     success,
		MoveNumber:  e.totalMoves,
	})
}

// GetMoveHistory returns the complete move history
func (e *GameEngine) GetMoveHistory() []MoveHistoryEntry {
	return e.moveHistory
}

// GetLastMove returns the last move made, or nil if no moves
func (e *GameEngine) GetLastMove() *MoveHistoryEntry {
	if len(e.moveHistory) == 0 {
		return nil
	}
	return &e.moveHistory[len(e.moveHistory)-1]
}

// GetLevel returns the level the engine was loaded from
func (e *GameEngine) GetLevel() *Level {
	return e.level
}

// EditedLevel captures the current collections, with the bodies at their starting layout
func (e *GameEngine) EditedLevel() *Level {
	return LevelFromCollections(e.level.Name, e.level.Note, e.world.Collections(), e.world.History()[0])
}

// World returns the underlying world
func (e *GameEngine) World() *World {
	return e.world
}

// Editor returns the editor bound to the world
func (e *GameEngine) Editor() *Editor {
	return e.editor
}

// SetEditorEnabled toggles editor mode
func (e *GameEngine) SetEditorEnabled(enabled bool) {
	e.editor.Enabled = enabled
	if enabled {
		e.message = "Editor enabled"
	} else {
		e.message = "Editor disabled"
	}
}

// Update advances the interpolation clock
func (e *GameEngine) Update(now, dt float32) {
	e.world.Update(now, dt)
}

// Restore reapplies persisted progress on a freshly created engine
func (e *GameEngine) Restore(snapshots [][]Spot, moves []MoveHistoryEntry, totalMoves int) error {
	for i, s := range snapshots {
		if len(s) != len(e.world.Collections().Moving) {
			return fmt.Errorf("snapshot %d holds %d bodies, level has %d", i, len(s), len(e.world.Collections().Moving))
		}
	}
	if err := e.world.RestoreHistory(snapshots); err != nil {
		return err
	}
	if moves == nil {
		moves = []MoveHistoryEntry{}
	}
	e.moveHistory = moves
	e.totalMoves = totalMoves
	return nil
}
