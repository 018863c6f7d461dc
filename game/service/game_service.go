package service

import (
	"context"
	"time"

	"github.com/wricardo/doorway/game/engine"
)

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, levelName string) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Game Operations
	Move(ctx context.Context, sessionID, direction string, reset bool) (*MoveResult, error)
	BulkMove(ctx context.Context, sessionID string, moves []string, reset bool) (*BulkMoveResult, error)
	Back(ctx context.Context, sessionID string) (*MoveResult, error)
	Reset(ctx context.Context, sessionID string) (*engine.GameState, error)
	Hint(ctx context.Context, sessionID string) (*HintResult, error)

	// Game State
	GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error)
	GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error)

	// Editor
	SetEditor(ctx context.Context, sessionID string, enabled bool) (*engine.GameState, error)
	Edit(ctx context.Context, sessionID string, req EditRequest) (*MoveResult, error)
	SaveSessionLevel(ctx context.Context, sessionID, levelName string) (string, error)

	// Level navigation
	SwitchLevel(ctx context.Context, sessionID, levelName string) (*SessionInfo, error)
	StepLevel(ctx context.Context, sessionID string, offset int) (*SessionInfo, error)

	// Level library
	ListLevels(ctx context.Context) ([]*LevelInfo, error)
	LoadLevel(ctx context.Context, levelName string) (*engine.Level, error)
	SaveLevel(ctx context.Context, levelName string, level *engine.Level) error
	CloneLevel(ctx context.Context, levelName string) (string, error)
	RemoveLevel(ctx context.Context, levelName string) (string, error)
	MoveLevel(ctx context.Context, levelName string, op IndexOp) (int, error)

	// Records
	ListRecords(ctx context.Context, levelName string, limit int) ([]*CompletionRecord, error)
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string, level *engine.Level, levelID string) (*Session, error)
	Get(id string) (*Session, error)
	GetOrCreate(id string, level *engine.Level, levelID string) (*Session, error)
	SwitchLevel(id string, level *engine.Level, levelID string) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
	Save(id string) error
}

// LevelManager handles level loading and the ordered level list
type LevelManager interface {
	LoadLevel(name string) (*engine.Level, error)
	ListLevels() ([]*LevelInfo, error)
	GetDefault() (*engine.Level, string)
	SaveLevel(name string, level *engine.Level) error
	Neighbor(name string, offset int) (string, error)
	CloneLevel(name string) (string, error)
	RemoveLevel(name string) (string, error)
	MoveLevel(name string, op IndexOp) (int, error)
}

// RecordStore keeps level completions
type RecordStore interface {
	RecordCompletion(ctx context.Context, rec CompletionRecord) (int64, error)
	ListCompletions(ctx context.Context, levelID string, limit int) ([]*CompletionRecord, error)
}

// Session represents an active game session
type Session struct {
	ID             string
	LevelID        string
	Engine         *engine.GameEngine
	Level          *engine.Level
	CreatedAt      time.Time
	LastAccessedAt time.Time

	// Recorded is set once the current win has been written to the record store
	Recorded bool
}
