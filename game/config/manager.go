package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/wricardo/doorway/game/engine"
	"github.com/wricardo/doorway/game/service"
)

var (
	ErrLevelNotFound    = errors.New("level not found")
	ErrInvalidLevel     = errors.New("invalid level")
	ErrInvalidLevelName = fmt.Errorf("%w: bad level name", ErrInvalidLevel)
)

// BinaryExt is the extension of zstd-packed levels
const BinaryExt = ".lvl"

// Manager handles level loading, caching and the ordered level list
type Manager struct {
	levelsDir    string
	defaultLevel *engine.Level
	defaultID    string
	levels       map[string]*engine.Level
	index        *Index
	mu           sync.RWMutex
}

// NewManager creates a new level manager over levelsDir
func NewManager(levelsDir string) (*Manager, error) {
	// Ensure levels directory exists
	if _, err := os.Stat(levelsDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("levels directory does not exist: %s", levelsDir)
	}

	index, err := LoadIndex(filepath.Join(levelsDir, IndexFile))
	if err != nil {
		return nil, err
	}

	m := &Manager{
		levelsDir: levelsDir,
		levels:    make(map[string]*engine.Level),
		index:     index,
	}

	if err := m.loadDefaultLevel(); err != nil {
		return nil, fmt.Errorf("failed to load default level: %w", err)
	}

	return m, nil
}

// LevelID strips the extension from a level filename
func LevelID(filename string) string {
	return strings.TrimSuffix(strings.TrimSuffix(filename, ".json"), BinaryExt)
}

// checkLevelID rejects IDs that could resolve outside the levels directory
func checkLevelID(id string) error {
	if id == "" || strings.ContainsAny(id, `/\. `) {
		return ErrInvalidLevelName
	}
	return nil
}

// LoadLevel loads a level by ID from <id>.json, falling back to <id>.lvl
func (m *Manager) LoadLevel(name string) (*engine.Level, error) {
	id := LevelID(name)
	if err := checkLevelID(id); err != nil {
		return nil, err
	}

	m.mu.RLock()
	// Check cache first
	if level, exists := m.levels[id]; exists {
		m.mu.RUnlock()
		return level, nil
	}
	m.mu.RUnlock()

	// Load from file
	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if level, exists := m.levels[id]; exists {
		return level, nil
	}

	level, err := m.readLevel(id)
	if err != nil {
		return nil, err
	}

	m.levels[id] = level
	return level, nil
}

func (m *Manager) readLevel(id string) (*engine.Level, error) {
	data, err := os.ReadFile(filepath.Join(m.levelsDir, id+".json"))
	if errors.Is(err, fs.ErrNotExist) {
		level, binErr := engine.ReadLevelFile(filepath.Join(m.levelsDir, id+BinaryExt))
		switch {
		case errors.Is(binErr, fs.ErrNotExist):
			return nil, ErrLevelNotFound
		case errors.Is(binErr, engine.ErrInvalidLevel):
			return nil, fmt.Errorf("%w: %v", ErrInvalidLevel, binErr)
		case binErr != nil:
			return nil, fmt.Errorf("failed to read level file: %w", binErr)
		}
		return withName(level, id), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read level file: %w", err)
	}

	level, err := engine.ParseLevel(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLevel, err)
	}
	return withName(level, id), nil
}

func withName(level *engine.Level, id string) *engine.Level {
	if level.Name == "" {
		level.Name = id
	}
	return level
}

// ListLevels returns the levels in index order, followed by unlisted level files
func (m *Manager) ListLevels() ([]*service.LevelInfo, error) {
	entries, err := os.ReadDir(m.levelsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read levels directory: %w", err)
	}

	var levels []*service.LevelInfo
	seen := make(map[string]bool)
	add := func(filename, note string, position int) {
		id := LevelID(filename)
		if seen[id] {
			return
		}
		level, err := m.LoadLevel(id)
		if err != nil {
			// Skip invalid levels
			return
		}
		seen[id] = true
		if note == "" {
			note = level.Note
		}
		levels = append(levels, &service.LevelInfo{
			Filename: filename,
			LevelID:  id,
			Name:     level.Name,
			Note:     note,
			Bodies:   len(level.Moving),
			Doors:    len(level.Doors),
			Position: position,
		})
	}

	for i, e := range m.index.Entries() {
		add(e.Filename, e.Note, i)
	}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !(strings.HasSuffix(name, ".json") || strings.HasSuffix(name, BinaryExt)) {
			continue
		}
		add(name, "", -1)
	}

	return levels, nil
}

// GetDefault returns the default level and its ID
func (m *Manager) GetDefault() (*engine.Level, string) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultLevel, m.defaultID
}

// SetDefault sets the default level by ID
func (m *Manager) SetDefault(name string) error {
	level, err := m.LoadLevel(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultLevel = level
	m.defaultID = LevelID(name)
	return nil
}

// RefreshCache drops every cached level and reloads the default
func (m *Manager) RefreshCache() error {
	m.mu.Lock()
	m.levels = make(map[string]*engine.Level)
	m.mu.Unlock()

	return m.loadDefaultLevel()
}

// loadDefaultLevel picks the first listed level, then any level file, then a minimal level
func (m *Manager) loadDefaultLevel() error {
	levels, err := m.ListLevels()
	if err != nil || len(levels) == 0 {
		m.mu.Lock()
		m.defaultLevel, m.defaultID = createMinimalLevel(), "default"
		m.mu.Unlock()
		return nil
	}

	level, err := m.LoadLevel(levels[0].LevelID)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.defaultLevel, m.defaultID = level, levels[0].LevelID
	m.mu.Unlock()
	return nil
}

// SaveLevel validates and writes a level to <name>.json, listing it in the index
func (m *Manager) SaveLevel(name string, level *engine.Level) error {
	id := LevelID(name)
	if err := checkLevelID(id); err != nil {
		return err
	}

	data, err := encodeLevel(level)
	if err != nil {
		return err
	}

	if err := os.WriteFile(filepath.Join(m.levelsDir, id+".json"), data, 0644); err != nil {
		return fmt.Errorf("failed to write level file: %w", err)
	}

	if _, err := m.index.Append(IndexEntry{Filename: id + ".json", Note: level.Note}); err != nil {
		return err
	}

	// Update cache
	m.mu.Lock()
	m.levels[id] = level
	m.mu.Unlock()

	return nil
}

// encodeLevel renders a level only when it would load back: semantic rules first, then
// the schema over the encoded bytes
func encodeLevel(level *engine.Level) ([]byte, error) {
	if err := level.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLevel, err)
	}
	data, err := level.Encode()
	if err != nil {
		return nil, fmt.Errorf("failed to marshal level: %w", err)
	}
	if err := engine.ValidateSchema(data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLevel, err)
	}
	return data, nil
}

// PackLevel writes the binary form of a level next to its JSON file
func (m *Manager) PackLevel(name string) (string, error) {
	level, err := m.LoadLevel(name)
	if err != nil {
		return "", err
	}
	path := filepath.Join(m.levelsDir, LevelID(name)+BinaryExt)
	if err := engine.WriteLevelFile(path, level); err != nil {
		return "", fmt.Errorf("failed to pack level: %w", err)
	}
	return path, nil
}

// Index exposes the ordered level list
func (m *Manager) Index() *Index {
	return m.index
}

// Neighbor returns the ID of the level offset positions away from name in the index,
// clamped to the list bounds
func (m *Manager) Neighbor(name string, offset int) (string, error) {
	pos := m.position(name)
	if pos < 0 {
		return "", ErrLevelNotFound
	}
	next := m.index.clamp(pos + offset)
	e, _ := m.index.At(next)
	return LevelID(e.Filename), nil
}

// CloneLevel copies name into a new timestamped level inserted right after it
func (m *Manager) CloneLevel(name string) (string, error) {
	level, err := m.LoadLevel(name)
	if err != nil {
		return "", err
	}
	id := fmt.Sprintf("%s-%s", LevelID(name), time.Now().Format("20060102-150405"))

	clone := engine.LevelFromCollections(id, "", level.Collections(), nil)
	data, err := encodeLevel(clone)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(m.levelsDir, id+".json"), data, 0644); err != nil {
		return "", fmt.Errorf("failed to write level file: %w", err)
	}

	if _, err := m.index.Insert(m.position(name)+1, IndexEntry{Filename: id + ".json"}); err != nil {
		return "", err
	}

	m.mu.Lock()
	m.levels[id] = clone
	m.mu.Unlock()
	return id, nil
}

// RemoveLevel drops name from the index; the file stays on disk. Returns the ID of the
// level now at its position, empty when the list is empty.
func (m *Manager) RemoveLevel(name string) (string, error) {
	pos := m.position(name)
	if pos < 0 {
		return "", ErrLevelNotFound
	}
	next, err := m.index.Remove(pos)
	if err != nil {
		return "", err
	}
	e, ok := m.index.At(next)
	if !ok {
		return "", nil
	}
	return LevelID(e.Filename), nil
}

// MoveLevel reorders name within the index
func (m *Manager) MoveLevel(name string, op service.IndexOp) (int, error) {
	pos := m.position(name)
	if pos < 0 {
		return 0, ErrLevelNotFound
	}
	switch op {
	case service.IndexMoveToEnd:
		return m.index.MoveToEnd(pos)
	case service.IndexMoveBack:
		return m.index.MoveBack(pos)
	case service.IndexMoveForward:
		return m.index.MoveForward(pos)
	}
	return pos, fmt.Errorf("unknown index operation %q", op)
}

func (m *Manager) position(name string) int {
	id := LevelID(name)
	for _, filename := range []string{id + ".json", id + BinaryExt, id, name} {
		if i := m.index.Find(filename); i >= 0 {
			return i
		}
	}
	return -1
}

// createMinimalLevel creates a minimal valid level
func createMinimalLevel() *engine.Level {
	return &engine.Level{
		Name:    "default",
		Note:    "Step right onto the winning door",
		Moving:  []engine.Spot{{X: 0, Y: 0}},
		Static:  []engine.Entry{},
		Doors:   []engine.Door{},
		Winning: []engine.Spot{{X: 1, Y: 0}},
		Tiles:   []engine.Entry{},
		Floor:   []engine.Entry{{X: 0, Y: 0}, {X: 1, Y: 0}},
	}
}
