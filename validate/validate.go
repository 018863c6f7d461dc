// Command validate provides a small CLI that validates level files in a levels
// directory (../levels by default, or the first argument). It checks:
//   - JSON structure against the level schema
//   - Semantic rules: door links, one winning door per body, bodies off static cells
//   - Doors and winning doors not buried under static blocks
//   - Packed .lvl files decode to a valid level
//   - Every levels_list entry names an existing level file
//   - Solvability: a winning move sequence exists within the solver limit
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wricardo/doorway/game/config"
	"github.com/wricardo/doorway/game/engine"
)

// solverLimit bounds the states explored by the solvability check
const solverLimit = 100000

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

func (r *ValidationResult) fail(format string, args ...any) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *ValidationResult) info(format string, args ...any) {
	r.Errors = append(r.Errors, "✓ "+fmt.Sprintf(format, args...))
}

// validateLevelFile loads and validates a single level file, JSON or packed
func validateLevelFile(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	var level *engine.Level
	if strings.HasSuffix(filePath, config.BinaryExt) {
		l, err := engine.ReadLevelFile(filePath)
		if err != nil {
			result.fail("Invalid packed level: %v", err)
			return result
		}
		level = l
	} else {
		data, err := os.ReadFile(filePath)
		if err != nil {
			result.fail("Failed to read file: %v", err)
			return result
		}
		l, err := engine.ParseLevel(data)
		if err != nil {
			result.fail("Invalid level: %v", err)
			return result
		}
		level = l
	}

	validateLayout(level, &result)

	if result.Valid {
		validateSolvable(level, &result)
	}

	if result.Valid {
		result.info("Name: %s", level.Name)
		result.info("Bodies: %d", len(level.Moving))
		result.info("Static blocks: %d", len(level.Static))
		result.info("Doors: %d", len(level.Doors))
		result.info("Floor cells: %d", len(level.Floor))
	}

	return result
}

// validateLayout checks the cell rules the level parser leaves open
func validateLayout(level *engine.Level, result *ValidationResult) {
	c := level.Collections()

	doorCells := make(map[engine.Spot]int, len(c.Doors))
	for i, d := range c.Doors {
		s := d.Spot()
		if c.IsStatic(s) {
			result.fail("Door %d at %s is covered by a static block", i, s)
		}
		if j, dup := doorCells[s]; dup {
			result.fail("Doors %d and %d share cell %s", j, i, s)
		}
		doorCells[s] = i
	}

	winning := make(map[engine.Spot]bool, len(c.Winning))
	for i, s := range c.Winning {
		if c.IsStatic(s) {
			result.fail("Winning door %d at %s is covered by a static block", i, s)
		}
		if winning[s] {
			result.fail("Winning doors share cell %s", s)
		}
		winning[s] = true
	}

	for i, d := range c.Doors {
		if _, ok := d.Target(); !ok {
			result.Errors = append(result.Errors, fmt.Sprintf("Door %d at %s is unlinked and behaves as floor", i, d.Spot()))
		}
	}
}

// validateSolvable runs the breadth-first solver from the starting layout
func validateSolvable(level *engine.Level, result *ValidationResult) {
	c := level.Collections()
	solution, err := engine.Solve(c, c.Moving, solverLimit)
	if err != nil {
		result.fail("Solvability failure: no winning sequence within %d states", solverLimit)
		return
	}
	result.info("Solvable in %d moves", len(solution.Moves))
}

// validateIndex ensures every levels_list entry points at a level file
func validateIndex(levelsDir string) ValidationResult {
	result := ValidationResult{
		File:   config.IndexFile,
		Valid:  true,
		Errors: []string{},
	}

	index, err := config.LoadIndex(filepath.Join(levelsDir, config.IndexFile))
	if err != nil {
		result.fail("%v", err)
		return result
	}

	seen := make(map[string]int)
	for i, e := range index.Entries() {
		id := config.LevelID(e.Filename)
		if j, dup := seen[id]; dup {
			result.fail("Entry %d repeats %s from entry %d", i+1, e.Filename, j+1)
		}
		seen[id] = i

		_, jsonErr := os.Stat(filepath.Join(levelsDir, id+".json"))
		_, lvlErr := os.Stat(filepath.Join(levelsDir, id+config.BinaryExt))
		if jsonErr != nil && lvlErr != nil {
			result.fail("Entry %d names missing level %s", i+1, e.Filename)
		}
	}

	if result.Valid {
		result.info("Listed levels: %d", index.Len())
	}
	return result
}

// main scans the levels directory for level files and validates each one, printing a
// concise report and exiting with non-zero status if any are invalid.
func main() {
	levelsDir := "../levels"
	if len(os.Args) > 1 {
		levelsDir = os.Args[1]
	}

	var files []string
	for _, pattern := range []string{"*.json", "*" + config.BinaryExt} {
		matches, err := filepath.Glob(filepath.Join(levelsDir, pattern))
		if err != nil {
			fmt.Printf("Error finding level files: %v\n", err)
			os.Exit(1)
		}
		files = append(files, matches...)
	}

	results := make([]ValidationResult, 0, len(files)+1)
	for _, file := range files {
		results = append(results, validateLevelFile(file))
	}
	results = append(results, validateIndex(levelsDir))

	allValid := true
	for _, result := range results {
		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				if !strings.HasPrefix(err, "✓") {
					fmt.Println("  ❌ " + err)
				}
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All levels are valid!")
	} else {
		fmt.Println("❌ Some levels have errors")
		os.Exit(1)
	}
}
