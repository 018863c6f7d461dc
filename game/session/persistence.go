package session

import (
	"time"

	"github.com/wricardo/doorway/game/engine"
	"github.com/wricardo/doorway/game/service"
)

// SessionPersistence defines the interface for persisting sessions
type SessionPersistence interface {
	// Save persists a session to storage
	Save(session *service.Session) error

	// Load retrieves a session from storage by ID
	Load(id string) (*service.Session, error)

	// Delete removes a session from storage
	Delete(id string) error

	// ListAll returns all persisted session IDs
	ListAll() ([]string, error)

	// Exists checks if a session exists in storage
	Exists(id string) bool
}

// PersistedSessionData represents the JSON structure for persisted sessions.
// Level holds the edited level with the bodies at their starting layout; History holds
// every moving-set snapshot, the last one being the current layout.
type PersistedSessionData struct {
	ID             string                    `json:"id"`
	LevelID        string                    `json:"level_id"`
	CreatedAt      time.Time                 `json:"created_at"`
	LastAccessedAt time.Time                 `json:"last_accessed_at"`
	Level          *engine.Level             `json:"level,omitempty"`
	History        [][]engine.Spot           `json:"history"`
	MoveHistory    []engine.MoveHistoryEntry `json:"move_history"`
	TotalMoves     int                       `json:"total_moves"`
	Cursor         engine.Spot               `json:"cursor"`
	EditorEnabled  bool                      `json:"editor_enabled"`
	Recorded       bool                      `json:"recorded"`
}
