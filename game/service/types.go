package service

import (
	"time"

	"github.com/wricardo/doorway/game/engine"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string            `json:"id"`
	LevelID        string            `json:"level_id"`
	CreatedAt      time.Time         `json:"created_at"`
	LastAccessedAt time.Time         `json:"last_accessed_at"`
	GameState      *engine.GameState `json:"game_state"`
	Level          *engine.Level     `json:"level"`
}

// Event types emitted by game operations
const (
	EventMove    = "move"
	EventDoor    = "door"
	EventVictory = "victory"
	EventBack    = "back"
	EventReset   = "reset"
	EventEditor  = "editor"
	EventBlocked = "blocked"
)

// Stop reason codes reported by bulk moves
const (
	StopBlocked = "blocked"
	StopVictory = "victory"
	StopInvalid = "invalid_direction"
)

// MoveResult contains the result of a single turn
type MoveResult struct {
	Success   bool              `json:"success"`
	GameState *engine.GameState `json:"game_state"`
	Message   string            `json:"message"`
	Turn      string            `json:"turn"`
	Events    []GameEvent       `json:"events,omitempty"`
	Step      *StepInfo         `json:"step,omitempty"`
}

// BulkMoveResult contains the result of multiple moves
type BulkMoveResult struct {
	// Summary
	MovesExecuted  int               `json:"moves_executed"`
	RequestedMoves int               `json:"requested_moves"`
	Success        bool              `json:"success"`
	GameState      *engine.GameState `json:"game_state"`
	Events         []GameEvent       `json:"events"`
	StoppedReason  string            `json:"stopped_reason,omitempty"`   // Human-readable reason
	StopReasonCode string            `json:"stop_reason_code,omitempty"` // blocked|invalid_direction|victory
	StoppedOnMove  int               `json:"stopped_on_move,omitempty"`  // 1-based index of the move that caused stop
	Truncated      bool              `json:"truncated,omitempty"`
	Limit          int               `json:"limit,omitempty"`

	// Start/end snapshot
	Start []engine.Spot `json:"start"`
	End   []engine.Spot `json:"end"`

	// Per-step compact trace (only for this call)
	Steps []StepInfo `json:"steps,omitempty"`

	// Final status aids
	Won           bool     `json:"won"`
	Message       string   `json:"message,omitempty"`
	PossibleMoves []string `json:"possible_moves"`
}

// StepInfo is a compact record for each executed move
type StepInfo struct {
	Idx         int           `json:"idx"`
	Dir         string        `json:"dir"`
	From        []engine.Spot `json:"from"`
	To          []engine.Spot `json:"to"`
	ThroughDoor []bool        `json:"through_door,omitempty"`
	Success     bool          `json:"success"`
	Victory     bool          `json:"victory,omitempty"`
}

// GameEvent represents an event that occurred during gameplay
type GameEvent struct {
	Type      string        `json:"type"` // "move", "door", "victory", "back", "reset", "editor", "blocked"
	Message   string        `json:"message"`
	Timestamp time.Time     `json:"timestamp"`
	Spots     []engine.Spot `json:"spots,omitempty"`
}

// HistoryOptions configures move history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated move history
type HistoryResponse struct {
	Moves       []engine.MoveHistoryEntry `json:"moves"`
	TotalMoves  int                       `json:"total_moves"`
	Page        int                       `json:"page"`
	PageSize    int                       `json:"page_size"`
	TotalPages  int                       `json:"total_pages"`
	HasNext     bool                      `json:"has_next"`
	HasPrevious bool                      `json:"has_previous"`
}

// LevelInfo provides information about a level file
type LevelInfo struct {
	Filename string `json:"filename"`
	LevelID  string `json:"level_id"` // The identifier to use for session creation
	Name     string `json:"name"`     // Display name
	Note     string `json:"note"`
	Bodies   int    `json:"bodies"`
	Doors    int    `json:"doors"`
	Position int    `json:"position"` // Position in the level list, -1 when unlisted
}

// IndexOp reorders a level within the level list
type IndexOp string

const (
	IndexMoveToEnd   IndexOp = "end"
	IndexMoveBack    IndexOp = "back"
	IndexMoveForward IndexOp = "forward"
)

// EditOp names an editor operation
type EditOp string

const (
	EditCursor EditOp = "cursor" // move the cursor to (X, Y)
	EditPlace  EditOp = "place"  // place Category at the cursor, cycling its mapping when taken
	EditAdd    EditOp = "add"    // add Category at (X, Y) with Mapping
	EditRemove EditOp = "remove" // remove everything at (X, Y)
	EditCycle  EditOp = "cycle"  // cycle the mapping of the Category entry at (X, Y)
	EditLink   EditOp = "link"   // link doors A and B
)

// EditRequest is one editor mutation
type EditRequest struct {
	Op       EditOp `json:"op"`
	Category string `json:"category,omitempty"`
	X        int    `json:"x"`
	Y        int    `json:"y"`
	Mapping  *int   `json:"mapping,omitempty"`
	A        int    `json:"a,omitempty"`
	B        int    `json:"b,omitempty"`
}

// HintResult is the shortest winning sequence from the current state
type HintResult struct {
	Solvable bool     `json:"solvable"`
	Moves    []string `json:"moves"`
	Next     string   `json:"next,omitempty"`
	Explored int      `json:"explored"`
	Message  string   `json:"message"`
}

// CompletionRecord is a stored level completion
type CompletionRecord struct {
	ID          int64     `json:"id"`
	LevelID     string    `json:"level_id"`
	SessionID   string    `json:"session_id"`
	Moves       int       `json:"moves"`       // accepted moves since the last reset
	TotalMoves  int       `json:"total_moves"` // every recorded turn, including back and reset
	CompletedAt time.Time `json:"completed_at"`
}
