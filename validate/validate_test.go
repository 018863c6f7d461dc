package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wricardo/doorway/game/config"
	"github.com/wricardo/doorway/game/engine"
)

func corridorLevel() *engine.Level {
	return &engine.Level{
		Name:    "Corridor",
		Moving:  []engine.Spot{{X: 0, Y: 0}},
		Static:  []engine.Entry{{X: 0, Y: 1, Mapping: 1}},
		Doors:   []engine.Door{},
		Winning: []engine.Spot{{X: 2, Y: 0}},
		Tiles:   []engine.Entry{},
		Floor:   []engine.Entry{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0}},
	}
}

func writeLevel(t *testing.T, dir, name string, level *engine.Level) string {
	t.Helper()
	data, err := level.Encode()
	if err != nil {
		t.Fatalf("Failed to encode level: %v", err)
	}
	path := filepath.Join(dir, name+".json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("Failed to write level: %v", err)
	}
	return path
}

func hasError(result ValidationResult, substr string) bool {
	for _, e := range result.Errors {
		if strings.Contains(e, substr) {
			return true
		}
	}
	return false
}

func TestValidateLevelFile_Valid(t *testing.T) {
	path := writeLevel(t, t.TempDir(), "corridor", corridorLevel())

	result := validateLevelFile(path)
	if !result.Valid {
		t.Errorf("Expected valid level, but got errors: %v", result.Errors)
	}
	if result.File != "corridor.json" {
		t.Errorf("Expected file name corridor.json, got %s", result.File)
	}
	if !hasError(result, "✓ Solvable in 2 moves") {
		t.Errorf("Expected solvability info, got %v", result.Errors)
	}
}

func TestValidateLevelFile_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	os.WriteFile(path, []byte(`{"name": "test", invalid json}`), 0644)

	result := validateLevelFile(path)
	if result.Valid {
		t.Error("Expected invalid result for malformed JSON")
	}
	if !hasError(result, "Invalid level") {
		t.Errorf("Expected 'Invalid level' error, got %v", result.Errors)
	}
}

func TestValidateLevelFile_MissingField(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.json")
	os.WriteFile(path, []byte(`{"name": "partial", "moving": []}`), 0644)

	result := validateLevelFile(path)
	if result.Valid {
		t.Error("Expected schema failure for a level without its collections")
	}
}

func TestValidateLevelFile_MissingFile(t *testing.T) {
	result := validateLevelFile("/non/existent/file.json")
	if result.Valid {
		t.Error("Expected invalid result for missing file")
	}
	if !hasError(result, "Failed to read file") {
		t.Errorf("Expected 'Failed to read file' error, got %v", result.Errors)
	}
}

func TestValidateLevelFile_SemanticErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(l *engine.Level)
		want   string
	}{
		{
			name:   "winning count mismatch",
			mutate: func(l *engine.Level) { l.Winning = append(l.Winning, engine.Spot{X: 3, Y: 0}) },
			want:   "winning doors",
		},
		{
			name:   "body on static",
			mutate: func(l *engine.Level) { l.Static = append(l.Static, engine.Entry{X: 0, Y: 0}) },
			want:   "static cell",
		},
		{
			name: "door covered by static",
			mutate: func(l *engine.Level) {
				l.Doors = []engine.Door{{X: 0, Y: 1}, {X: 5, Y: 5}}
			},
			want: "covered by a static block",
		},
		{
			name:   "winning covered by static",
			mutate: func(l *engine.Level) { l.Static = append(l.Static, engine.Entry{X: 2, Y: 0}) },
			want:   "Winning door 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			level := corridorLevel()
			tt.mutate(level)
			path := writeLevel(t, t.TempDir(), "bad", level)

			result := validateLevelFile(path)
			if result.Valid {
				t.Fatalf("Expected invalid level")
			}
			if !hasError(result, tt.want) {
				t.Errorf("Expected error containing %q, got %v", tt.want, result.Errors)
			}
		})
	}
}

func TestValidateLevelFile_Unsolvable(t *testing.T) {
	level := corridorLevel()
	level.Static = []engine.Entry{{X: 1, Y: 0}, {X: -1, Y: 0}, {X: 0, Y: 1}, {X: 0, Y: -1}}
	path := writeLevel(t, t.TempDir(), "boxed", level)

	result := validateLevelFile(path)
	if result.Valid {
		t.Error("Expected boxed level to fail the solvability check")
	}
	if !hasError(result, "Solvability failure") {
		t.Errorf("Expected solvability failure, got %v", result.Errors)
	}
}

func TestValidateLevelFile_UnlinkedDoorIsNoted(t *testing.T) {
	level := corridorLevel()
	level.Doors = []engine.Door{{X: 5, Y: 5}}
	path := writeLevel(t, t.TempDir(), "door", level)

	result := validateLevelFile(path)
	if !result.Valid {
		t.Fatalf("Expected valid level, got %v", result.Errors)
	}
	if !hasError(result, "unlinked") {
		t.Errorf("Expected unlinked door note, got %v", result.Errors)
	}
}

func TestValidateLevelFile_Packed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corridor"+config.BinaryExt)
	if err := engine.WriteLevelFile(path, corridorLevel()); err != nil {
		t.Fatalf("Failed to pack level: %v", err)
	}

	result := validateLevelFile(path)
	if !result.Valid {
		t.Errorf("Expected packed level to be valid, got %v", result.Errors)
	}

	garbage := filepath.Join(t.TempDir(), "garbage"+config.BinaryExt)
	os.WriteFile(garbage, []byte("not zstd"), 0644)
	result = validateLevelFile(garbage)
	if result.Valid {
		t.Error("Expected garbage packed file to be invalid")
	}
}

func TestValidateIndex(t *testing.T) {
	dir := t.TempDir()
	writeLevel(t, dir, "corridor", corridorLevel())

	index := `[{"filename": "corridor.json", "note": ""}, {"filename": "gone.json", "note": ""}, {"filename": "corridor.json", "note": ""}]`
	if err := os.WriteFile(filepath.Join(dir, config.IndexFile), []byte(index), 0644); err != nil {
		t.Fatalf("Failed to write index: %v", err)
	}

	result := validateIndex(dir)
	if result.Valid {
		t.Fatal("Expected index with a missing level to be invalid")
	}
	if !hasError(result, "missing level gone.json") {
		t.Errorf("Expected missing level error, got %v", result.Errors)
	}
	if !hasError(result, "repeats corridor.json") {
		t.Errorf("Expected duplicate entry error, got %v", result.Errors)
	}
}

func TestValidateIndex_Missing(t *testing.T) {
	result := validateIndex(t.TempDir())
	if !result.Valid {
		t.Errorf("Expected an absent index to be valid, got %v", result.Errors)
	}
	if !hasError(result, "Listed levels: 0") {
		t.Errorf("Expected level count info, got %v", result.Errors)
	}
}
