// Package engine provides the puzzle resolution engine for Doorway.
//
// The engine package implements the game mechanics including:
//   - Grid coordinates and the entity collections of a level
//   - Multi-body movement with all-or-nothing collision
//   - Teleport doors with entry-door clones
//   - Undo and reset through a snapshot history
//   - Win detection against the winning doors
//   - Time-based interpolation of rendered positions
//   - Editor mutations and level (de)serialization
//
// Core Types:
//
// World is the state machine: Resolve interprets one input cycle, Update advances
// the interpolation clock. Editor mutates a World's collections. Level is the on-disk
// form, validated against a JSON Schema. GameEngine wraps a World behind the Engine
// interface used by the service layer.
//
// Usage:
//
//	level, err := engine.ParseLevel(data)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameEngine, err := engine.NewEngine(level, engine.DefaultAnimationLength)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	success := gameEngine.Move("up")
//	state := gameEngine.GetState()
//
// Game Rules:
//
// Every body moves by the same step at once. A step onto a static cell, or one that
// would put two bodies on the same cell, is rejected for all of them. A body stepping
// onto a linked door comes out of the door it links to. The level is won when the
// bodies occupy exactly the winning doors.
package engine
