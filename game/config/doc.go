// Package config provides level library management for Doorway.
//
// The config package handles:
//   - Loading levels from JSON files (or zstd-packed .lvl files)
//   - Level validation against the level schema
//   - The ordered level list (levels_list) and its editing operations
//   - Default level selection
//   - Runtime settings from settings.yaml
//
// Level Format:
//
// Levels are stored as JSON files in the levels directory. Each level lists its
// moving bodies, static obstacles, doors (with optional links), winning doors,
// decorative tiles and floor cells.
//
// Usage:
//
//	manager, err := config.NewManager("levels")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	level, err := manager.LoadLevel("corridor")
//	next, err := manager.Neighbor("corridor", 1)
//	levels, err := manager.ListLevels()
package config
