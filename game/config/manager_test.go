package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/doorway/game/engine"
	"github.com/wricardo/doorway/game/service"
)

func createValidLevel(name string) *engine.Level {
	return &engine.Level{
		Name:    name,
		Moving:  []engine.Spot{{X: 0, Y: 0}},
		Static:  []engine.Entry{{X: 0, Y: 1, Mapping: 3}},
		Doors:   []engine.Door{},
		Winning: []engine.Spot{{X: 2, Y: 0}},
		Tiles:   []engine.Entry{},
		Floor:   []engine.Entry{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0}},
	}
}

func writeLevelFile(t *testing.T, dir, id string, level *engine.Level) {
	t.Helper()
	data, err := level.Encode()
	if err != nil {
		t.Fatalf("Failed to marshal level: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, id+".json"), data, 0644); err != nil {
		t.Fatalf("Failed to write level file: %v", err)
	}
}

func writeIndex(t *testing.T, dir string, ids ...string) {
	t.Helper()
	entries := make([]IndexEntry, 0, len(ids))
	for _, id := range ids {
		entries = append(entries, IndexEntry{Filename: id + ".json", Note: "note " + id})
	}
	data, err := json.Marshal(entries)
	if err != nil {
		t.Fatalf("Failed to marshal index: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, IndexFile), data, 0644); err != nil {
		t.Fatalf("Failed to write index: %v", err)
	}
}

// createLevelsDir writes levels a, b and c, listed in that order
func createLevelsDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for _, id := range []string{"a", "b", "c"} {
		writeLevelFile(t, dir, id, createValidLevel("Level "+id))
	}
	writeIndex(t, dir, "a", "b", "c")
	return dir
}

func listedIDs(t *testing.T, m *Manager) []string {
	t.Helper()
	var ids []string
	for _, e := range m.Index().Entries() {
		ids = append(ids, LevelID(e.Filename))
	}
	return ids
}

func TestNewManager(t *testing.T) {
	t.Run("valid directory", func(t *testing.T) {
		m, err := NewManager(createLevelsDir(t))
		require.NoError(t, err)

		level, id := m.GetDefault()
		assert.Equal(t, "a", id, "first listed level is the default")
		assert.Equal(t, "Level a", level.Name)
	})

	t.Run("non-existent directory", func(t *testing.T) {
		_, err := NewManager("/non/existent/path")
		if err == nil {
			t.Error("Expected error for non-existent directory")
		}
	})

	t.Run("empty directory", func(t *testing.T) {
		m, err := NewManager(t.TempDir())
		if err != nil {
			t.Fatalf("NewManager should succeed without level files, got error: %v", err)
		}
		level, id := m.GetDefault()
		if level == nil {
			t.Fatal("Expected minimal default level")
		}
		assert.Equal(t, "default", id)
		assert.NoError(t, level.Validate())
	})

	t.Run("corrupt index", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, IndexFile), []byte("{"), 0644))
		_, err := NewManager(dir)
		assert.Error(t, err)
	})
}

func TestManager_LoadLevel(t *testing.T) {
	dir := createLevelsDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte(`{"moving": 3}`), 0644))
	m, err := NewManager(dir)
	require.NoError(t, err)

	tests := []struct {
		name    string
		id      string
		wantErr error
	}{
		{"by id", "b", nil},
		{"by filename", "b.json", nil},
		{"missing", "nope", ErrLevelNotFound},
		{"invalid", "broken", ErrInvalidLevel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			level, err := m.LoadLevel(tt.id)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Level b", level.Name)
		})
	}
}

func TestManager_LoadLevelFillsName(t *testing.T) {
	dir := t.TempDir()
	level := createValidLevel("")
	writeLevelFile(t, dir, "unnamed", level)

	m, err := NewManager(dir)
	require.NoError(t, err)

	loaded, err := m.LoadLevel("unnamed")
	require.NoError(t, err)
	assert.Equal(t, "unnamed", loaded.Name)
}

func TestManager_PackedLevels(t *testing.T) {
	dir := createLevelsDir(t)
	m, err := NewManager(dir)
	require.NoError(t, err)

	path, err := m.PackLevel("b")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "b"+BinaryExt), path)

	// Only the packed form remains
	require.NoError(t, os.Remove(filepath.Join(dir, "b.json")))
	fresh, err := NewManager(dir)
	require.NoError(t, err)

	level, err := fresh.LoadLevel("b")
	require.NoError(t, err)
	assert.Equal(t, "Level b", level.Name)
	assert.Equal(t, []engine.Spot{{X: 2, Y: 0}}, level.Winning)
}

func TestManager_ListLevels(t *testing.T) {
	dir := createLevelsDir(t)
	writeLevelFile(t, dir, "unlisted", createValidLevel("Unlisted"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("hi"), 0644))

	m, err := NewManager(dir)
	require.NoError(t, err)

	levels, err := m.ListLevels()
	require.NoError(t, err)
	require.Len(t, levels, 4)

	var ids []string
	for _, l := range levels {
		ids = append(ids, l.LevelID)
	}
	assert.Equal(t, []string{"a", "b", "c", "unlisted"}, ids)
	assert.Equal(t, 1, levels[1].Position)
	assert.Equal(t, "note b", levels[1].Note)
	assert.Equal(t, -1, levels[3].Position)
	assert.Equal(t, 1, levels[0].Bodies)
}

func TestManager_SaveLevel(t *testing.T) {
	dir := createLevelsDir(t)
	m, err := NewManager(dir)
	require.NoError(t, err)

	level := createValidLevel("Saved")
	level.Note = "fresh"
	require.NoError(t, m.SaveLevel("saved", level))

	assert.FileExists(t, filepath.Join(dir, "saved.json"))
	assert.Equal(t, []string{"a", "b", "c", "saved"}, listedIDs(t, m))

	// Saving again does not list it twice
	require.NoError(t, m.SaveLevel("saved", level))
	assert.Equal(t, 4, m.Index().Len())

	invalid := createValidLevel("Invalid")
	invalid.Winning = nil
	err = m.SaveLevel("invalid", invalid)
	assert.ErrorIs(t, err, ErrInvalidLevel)
	assert.NoFileExists(t, filepath.Join(dir, "invalid.json"))
}

func TestManager_SaveLevelRejectsSchemaViolations(t *testing.T) {
	dir := createLevelsDir(t)
	m, err := NewManager(dir)
	require.NoError(t, err)

	level := createValidLevel("Negative")
	level.Static[0].Mapping = -1
	err = m.SaveLevel("negative", level)
	assert.ErrorIs(t, err, ErrInvalidLevel)
	assert.NoFileExists(t, filepath.Join(dir, "negative.json"))
	assert.Equal(t, []string{"a", "b", "c"}, listedIDs(t, m))

	_, err = m.LoadLevel("negative")
	assert.ErrorIs(t, err, ErrLevelNotFound)
}

func TestManager_LevelNames(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "levels")
	require.NoError(t, os.Mkdir(dir, 0755))
	m, err := NewManager(dir)
	require.NoError(t, err)

	for _, name := range []string{"", "../escaped", "nested/level", `back\slash`, "with space", "dotted.name"} {
		t.Run(name, func(t *testing.T) {
			err := m.SaveLevel(name, createValidLevel("Bad"))
			assert.ErrorIs(t, err, ErrInvalidLevelName)
			assert.ErrorIs(t, err, ErrInvalidLevel)

			_, err = m.LoadLevel(name)
			assert.ErrorIs(t, err, ErrInvalidLevelName)

			_, err = m.CloneLevel(name)
			assert.ErrorIs(t, err, ErrInvalidLevelName)
		})
	}

	assert.NoFileExists(t, filepath.Join(root, "escaped.json"))
	assert.Equal(t, 0, m.Index().Len())

	require.NoError(t, m.SaveLevel("first-steps.json", createValidLevel("Good")))
	assert.FileExists(t, filepath.Join(dir, "first-steps.json"))
}

func TestManager_Neighbor(t *testing.T) {
	m, err := NewManager(createLevelsDir(t))
	require.NoError(t, err)

	tests := []struct {
		from   string
		offset int
		want   string
	}{
		{"a", 1, "b"},
		{"b", 1, "c"},
		{"c", 1, "c"},
		{"b", -1, "a"},
		{"a", -1, "a"},
		{"a", 10, "c"},
	}
	for _, tt := range tests {
		got, err := m.Neighbor(tt.from, tt.offset)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "%s%+d", tt.from, tt.offset)
	}

	_, err = m.Neighbor("nope", 1)
	assert.ErrorIs(t, err, ErrLevelNotFound)
}

func TestManager_CloneLevel(t *testing.T) {
	dir := createLevelsDir(t)
	m, err := NewManager(dir)
	require.NoError(t, err)

	id, err := m.CloneLevel("a")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(id, "a-"), "clone id %q", id)
	assert.FileExists(t, filepath.Join(dir, id+".json"))
	assert.Equal(t, []string{"a", id, "b", "c"}, listedIDs(t, m))

	clone, err := m.LoadLevel(id)
	require.NoError(t, err)
	original, err := m.LoadLevel("a")
	require.NoError(t, err)
	assert.Equal(t, original.Moving, clone.Moving)
	assert.Equal(t, original.Static, clone.Static)
}

func TestManager_RemoveLevel(t *testing.T) {
	dir := createLevelsDir(t)
	m, err := NewManager(dir)
	require.NoError(t, err)

	next, err := m.RemoveLevel("b")
	require.NoError(t, err)
	assert.Equal(t, "c", next)
	assert.Equal(t, []string{"a", "c"}, listedIDs(t, m))
	assert.FileExists(t, filepath.Join(dir, "b.json"), "files stay on disk")

	next, err = m.RemoveLevel("c")
	require.NoError(t, err)
	assert.Equal(t, "a", next, "removing the last level lands on the new last")

	next, err = m.RemoveLevel("a")
	require.NoError(t, err)
	assert.Empty(t, next)

	_, err = m.RemoveLevel("a")
	assert.ErrorIs(t, err, ErrLevelNotFound)
}

func TestManager_MoveLevel(t *testing.T) {
	dir := createLevelsDir(t)
	m, err := NewManager(dir)
	require.NoError(t, err)

	pos, err := m.MoveLevel("a", service.IndexMoveForward)
	require.NoError(t, err)
	assert.Equal(t, 1, pos)
	assert.Equal(t, []string{"b", "a", "c"}, listedIDs(t, m))

	pos, err = m.MoveLevel("c", service.IndexMoveBack)
	require.NoError(t, err)
	assert.Equal(t, 1, pos)
	assert.Equal(t, []string{"b", "c", "a"}, listedIDs(t, m))

	pos, err = m.MoveLevel("b", service.IndexMoveToEnd)
	require.NoError(t, err)
	assert.Equal(t, 2, pos)
	assert.Equal(t, []string{"c", "a", "b"}, listedIDs(t, m))

	// Clamped at the edges
	pos, err = m.MoveLevel("c", service.IndexMoveBack)
	require.NoError(t, err)
	assert.Equal(t, 0, pos)

	_, err = m.MoveLevel("a", service.IndexOp("sideways"))
	assert.Error(t, err)

	// Persisted
	reloaded, err := LoadIndex(filepath.Join(dir, IndexFile))
	require.NoError(t, err)
	assert.Equal(t, "c.json", reloaded.Entries()[0].Filename)
	assert.Equal(t, "note c", reloaded.Entries()[0].Note)
}

func TestIndex_InsertAndRemove(t *testing.T) {
	x, err := LoadIndex(filepath.Join(t.TempDir(), IndexFile))
	require.NoError(t, err)
	assert.Equal(t, 0, x.Len())

	_, err = x.Remove(0)
	assert.True(t, errors.Is(err, ErrLevelNotFound))

	i, err := x.Insert(5, IndexEntry{Filename: "one.json"})
	require.NoError(t, err)
	assert.Equal(t, 0, i, "insert position is clamped")

	_, err = x.Insert(0, IndexEntry{Filename: "zero.json"})
	require.NoError(t, err)
	assert.Equal(t, 0, x.Find("zero.json"))
	assert.Equal(t, 1, x.Find("one.json"))
	assert.Equal(t, -1, x.Find("two.json"))

	assert.Equal(t, 1, x.Next(1))
	assert.Equal(t, 0, x.Previous(0))

	_, ok := x.At(2)
	assert.False(t, ok)
}

func TestManager_ConcurrentAccess(t *testing.T) {
	m, err := NewManager(createLevelsDir(t))
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 30)
	ids := []string{"a", "b", "c"}

	for i := 0; i < 30; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			if _, err := m.LoadLevel(ids[n%len(ids)]); err != nil {
				errs <- err
			}
		}(i)
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("Unexpected error during concurrent access: %v", err)
	}
}

func TestManager_RefreshCache(t *testing.T) {
	dir := createLevelsDir(t)
	m, err := NewManager(dir)
	require.NoError(t, err)

	_, err = m.LoadLevel("b")
	require.NoError(t, err)

	changed := createValidLevel("Changed b")
	writeLevelFile(t, dir, "b", changed)

	cached, err := m.LoadLevel("b")
	require.NoError(t, err)
	assert.Equal(t, "Level b", cached.Name)

	require.NoError(t, m.RefreshCache())
	fresh, err := m.LoadLevel("b")
	require.NoError(t, err)
	assert.Equal(t, "Changed b", fresh.Name)

	require.NoError(t, m.SetDefault("c"))
	_, id := m.GetDefault()
	assert.Equal(t, "c", id)
}

func TestLoadSettings(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		s, err := LoadSettings(filepath.Join(t.TempDir(), "settings.yaml"))
		require.NoError(t, err)
		assert.Equal(t, DefaultSettings(), s)
	})

	t.Run("overrides", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "settings.yaml")
		body := "levels_dir: puzzles\nanimation_length: 0.3\nmax_bulk_moves: 500\nstart_level: corridor\n"
		require.NoError(t, os.WriteFile(path, []byte(body), 0644))

		s, err := LoadSettings(path)
		require.NoError(t, err)
		assert.Equal(t, "puzzles", s.LevelsDir)
		assert.Equal(t, "corridor", s.StartLevel)
		assert.InDelta(t, 0.3, s.AnimationLength, 1e-6)
		assert.Equal(t, engine.MaxBulkMoves, s.MaxBulkMoves, "bulk limit is capped")
		assert.Equal(t, "sessions", s.SessionsDir, "unset keys keep defaults")
	})

	t.Run("negative animation", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "settings.yaml")
		require.NoError(t, os.WriteFile(path, []byte("animation_length: -1\n"), 0644))
		_, err := LoadSettings(path)
		assert.Error(t, err)
	})

	t.Run("malformed", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "settings.yaml")
		require.NoError(t, os.WriteFile(path, []byte("levels_dir: [\n"), 0644))
		_, err := LoadSettings(path)
		assert.Error(t, err)
	})
}
