package session

import (
	"testing"
	"time"

	"github.com/wricardo/doorway/game/engine"
)

func TestManagerWithPersistence(t *testing.T) {
	persistence, levels := newTestPersistence(t)
	manager := NewManagerWithPersistence(persistence)
	level, err := levels.LoadLevel("doors")
	if err != nil {
		t.Fatalf("Failed to load level: %v", err)
	}

	t.Run("Create Session Auto-Saves", func(t *testing.T) {
		session, err := manager.Create("auto1", level, "doors")
		if err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
		if !persistence.Exists(session.ID) {
			t.Error("Session should be auto-saved on creation")
		}
	})

	t.Run("Save Method Persists Changes", func(t *testing.T) {
		session, _ := manager.Get("auto1")
		session.Engine.Move("right")
		if err := manager.Save("auto1"); err != nil {
			t.Fatalf("Failed to save session: %v", err)
		}

		loaded, err := persistence.Load("auto1")
		if err != nil {
			t.Fatalf("Failed to load session: %v", err)
		}
		if got := loaded.Engine.GetMoving(); got[0] != (engine.Spot{X: 5, Y: 5}) {
			t.Errorf("Expected persisted body at (5,5), got %v", got)
		}
	})

	t.Run("Get Session Loads from Persistence", func(t *testing.T) {
		manager2 := NewManagerWithPersistence(persistence)
		session, err := manager2.Get("auto1")
		if err != nil {
			t.Fatalf("Failed to get persisted session: %v", err)
		}
		if session.Engine.GetState().HistoryLen != 2 {
			t.Errorf("Expected 2 history snapshots, got %d", session.Engine.GetState().HistoryLen)
		}
	})

	t.Run("Switch Level Persists", func(t *testing.T) {
		other := createTestLevel()
		if _, err := manager.SwitchLevel("auto1", other, "corridor"); err != nil {
			t.Fatalf("Failed to switch level: %v", err)
		}
		loaded, err := persistence.Load("auto1")
		if err != nil {
			t.Fatalf("Failed to load session: %v", err)
		}
		if loaded.LevelID != "corridor" {
			t.Errorf("Expected level 'corridor', got %s", loaded.LevelID)
		}
	})

	t.Run("Delete Removes from Persistence", func(t *testing.T) {
		manager.Create("del1", level, "doors")
		if err := manager.Delete("del1"); err != nil {
			t.Fatalf("Failed to delete session: %v", err)
		}
		if persistence.Exists("del1") {
			t.Error("Session should be removed from persistence")
		}
	})

	t.Run("Delete From Memory Keeps File", func(t *testing.T) {
		manager.Create("mem1", level, "doors")
		if err := manager.DeleteFromMemory("mem1"); err != nil {
			t.Fatalf("Failed to delete session from memory: %v", err)
		}
		if !persistence.Exists("mem1") {
			t.Error("Session file should survive")
		}
	})

	t.Run("Load Persisted Sessions on Startup", func(t *testing.T) {
		manager3 := NewManagerWithPersistence(persistence)
		if err := manager3.LoadPersistedSessions(); err != nil {
			t.Fatalf("Failed to load persisted sessions: %v", err)
		}
		if manager3.Count() < 2 {
			t.Errorf("Expected at least 2 sessions, got %d", manager3.Count())
		}
		if err := manager3.SaveAllSessions(); err != nil {
			t.Errorf("Failed to save all sessions: %v", err)
		}
	})

	t.Run("Update Last Accessed", func(t *testing.T) {
		session, _ := manager.Get("auto1")
		session.LastAccessedAt = time.Now().Add(-time.Hour)
		if err := manager.UpdateLastAccessed("auto1"); err != nil {
			t.Fatalf("Failed to update last accessed: %v", err)
		}
		if time.Since(session.LastAccessedAt) > time.Minute {
			t.Error("Expected last accessed time to be refreshed")
		}
	})
}
