package engine

const (
	// Validation constants
	MaxBulkMoves        = 50
	WebSocketBufferSize = 256
)

// Actions recorded in the move history besides the four directions
const (
	ActionBack  = "back"
	ActionReset = "reset"
)

// MoveHistoryEntry represents a single turn in the game history
type MoveHistoryEntry struct {
	Action      string `json:"action"`
	From        []Spot `json:"from"`
	To          []Spot `json:"to"`
	ThroughDoor bool   `json:"through_door"`
	Timestamp   int64  `json:"timestamp"`
	Success     bool   `json:"success"`
	MoveNumber  int    `json:"move_number"`
}

// GameState is the JSON view of an engine served to clients
type GameState struct {
	LevelName      string  `json:"level_name"`
	Note           string  `json:"note,omitempty"`
	Moving         []Spot  `json:"moving"`
	Clones         []Spot  `json:"clones"`
	ThroughDoor    []bool  `json:"through_door"`
	AnyThroughDoor bool    `json:"any_through_door"`
	Static         []Entry `json:"static"`
	Doors          []Door  `json:"doors"`
	Winning        []Spot  `json:"winning"`
	Tiles          []Entry `json:"tiles"`
	Floor          []Entry `json:"floor"`
	Cursor         Spot    `json:"cursor"`
	Won            bool    `json:"won"`
	Message        string  `json:"message"`
	LastTurn       string  `json:"last_turn"`
	HistoryLen     int     `json:"history_len"`
	EditorEnabled  bool    `json:"editor_enabled"`

	MoveHistory []MoveHistoryEntry `json:"move_history"`
	TotalMoves  int                `json:"total_moves"`

	// CurrentMovesCount counts accepted moves since the last reset
	CurrentMovesCount int `json:"current_moves_count"`
}
