package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/wricardo/doorway/game/engine"
)

// Settings holds the tunables read from settings.yaml
type Settings struct {
	LevelsDir       string  `yaml:"levels_dir"`
	SessionsDir     string  `yaml:"sessions_dir"`
	RecordsDB       string  `yaml:"records_db"`
	StartLevel      string  `yaml:"start_level"`
	AnimationLength float32 `yaml:"animation_length"`
	SolverLimit     int     `yaml:"solver_limit"`
	MaxBulkMoves    int     `yaml:"max_bulk_moves"`
}

// DefaultSettings returns the settings used when no file is present
func DefaultSettings() Settings {
	return Settings{
		LevelsDir:       "levels",
		SessionsDir:     "sessions",
		RecordsDB:       "records.db",
		AnimationLength: engine.DefaultAnimationLength,
		SolverLimit:     engine.DefaultSolverLimit,
		MaxBulkMoves:    engine.MaxBulkMoves,
	}
}

// LoadSettings reads path over the defaults. A missing file yields the defaults.
func LoadSettings(path string) (Settings, error) {
	s := DefaultSettings()
	if path == "" {
		return s, nil
	}
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return s, err
	}
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return s, fmt.Errorf("settings.yaml: %w", err)
	}
	if s.AnimationLength < 0 {
		return s, fmt.Errorf("settings.yaml: animation_length must not be negative, got %v", s.AnimationLength)
	}
	if s.MaxBulkMoves <= 0 || s.MaxBulkMoves > engine.MaxBulkMoves {
		s.MaxBulkMoves = engine.MaxBulkMoves
	}
	if s.SolverLimit <= 0 {
		s.SolverLimit = engine.DefaultSolverLimit
	}
	return s, nil
}
