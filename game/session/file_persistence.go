package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wricardo/doorway/game/engine"
	"github.com/wricardo/doorway/game/service"
)

// FilePersistence implements SessionPersistence using file system storage
type FilePersistence struct {
	sessionsDir string
	levels      service.LevelManager
}

// NewFilePersistence creates a new file-based session persistence layer. Levels are used
// for sessions persisted without their own level.
func NewFilePersistence(sessionsDir string, levels service.LevelManager) (*FilePersistence, error) {
	// Create sessions directory if it doesn't exist
	if err := os.MkdirAll(sessionsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create sessions directory: %w", err)
	}

	return &FilePersistence{
		sessionsDir: sessionsDir,
		levels:      levels,
	}, nil
}

// Save persists a session to a JSON file
func (fp *FilePersistence) Save(session *service.Session) error {
	if session == nil {
		return fmt.Errorf("session cannot be nil")
	}

	eng := session.Engine
	state := eng.GetState()
	data := PersistedSessionData{
		ID:             session.ID,
		LevelID:        session.LevelID,
		CreatedAt:      session.CreatedAt,
		LastAccessedAt: session.LastAccessedAt,
		Level:          eng.EditedLevel(),
		History:        eng.World().History(),
		MoveHistory:    eng.GetMoveHistory(),
		TotalMoves:     state.TotalMoves,
		Cursor:         state.Cursor,
		EditorEnabled:  state.EditorEnabled,
		Recorded:       session.Recorded,
	}

	// Marshal to JSON with indentation for readability
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session data: %w", err)
	}

	if err := os.WriteFile(fp.getFilePath(session.ID), jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}

	return nil
}

// Load retrieves a session from a JSON file
func (fp *FilePersistence) Load(id string) (*service.Session, error) {
	filePath := fp.getFilePath(id)

	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return nil, ErrSessionNotFound
	}

	jsonData, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	var data PersistedSessionData
	if err := json.Unmarshal(jsonData, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session data: %w", err)
	}

	level := data.Level
	if level == nil {
		if fp.levels == nil {
			return nil, fmt.Errorf("session %s has no level and no level manager is configured", id)
		}
		level, err = fp.levels.LoadLevel(data.LevelID)
		if err != nil {
			return nil, fmt.Errorf("failed to load level '%s': %w", data.LevelID, err)
		}
	}

	gameEngine, err := engine.NewEngine(level, engine.DefaultAnimationLength)
	if err != nil {
		return nil, fmt.Errorf("failed to create game engine: %w", err)
	}

	if len(data.History) > 0 {
		if err := gameEngine.Restore(data.History, data.MoveHistory, data.TotalMoves); err != nil {
			return nil, fmt.Errorf("failed to restore game state: %w", err)
		}
	}
	if data.EditorEnabled {
		gameEngine.SetEditorEnabled(true)
		gameEngine.Editor().MoveCursor(data.Cursor)
	}

	return &service.Session{
		ID:             data.ID,
		LevelID:        data.LevelID,
		Engine:         gameEngine,
		Level:          level,
		CreatedAt:      data.CreatedAt,
		LastAccessedAt: data.LastAccessedAt,
		Recorded:       data.Recorded,
	}, nil
}

// Delete removes a session file
func (fp *FilePersistence) Delete(id string) error {
	if !fp.Exists(id) {
		return ErrSessionNotFound
	}

	if err := os.Remove(fp.getFilePath(id)); err != nil {
		return fmt.Errorf("failed to remove session file: %w", err)
	}

	return nil
}

// ListAll returns all persisted session IDs
func (fp *FilePersistence) ListAll() ([]string, error) {
	entries, err := os.ReadDir(fp.sessionsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read sessions directory: %w", err)
	}

	var sessionIDs []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		if strings.HasSuffix(name, ".json") {
			sessionIDs = append(sessionIDs, strings.TrimSuffix(name, ".json"))
		}
	}

	return sessionIDs, nil
}

// Exists checks if a session file exists
func (fp *FilePersistence) Exists(id string) bool {
	_, err := os.Stat(fp.getFilePath(id))
	return err == nil
}

// getFilePath returns the full file path for a session ID
func (fp *FilePersistence) getFilePath(id string) string {
	return filepath.Join(fp.sessionsDir, fmt.Sprintf("%s.json", strings.ToLower(id)))
}
