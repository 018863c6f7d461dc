// Package service provides the business logic layer for Doorway.
//
// The service package implements:
//   - Multi-session game management
//   - Move, back and reset turns with event extraction
//   - Bulk moves capped at engine.MaxBulkMoves
//   - Editor mutations and saving edited levels
//   - Level list navigation and reordering
//   - Solver hints and completion records
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// LevelManager loads levels and maintains the ordered level list.
// RecordStore keeps level completions.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP) and
// the game engine. Each session owns its own engine; the service serializes
// access to them.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	levelMgr, _ := config.NewManager("levels")
//	gameService := service.NewGameService(sessionMgr, levelMgr, service.WithRecords(store))
//
//	info, err := gameService.CreateSession(ctx, "corridor")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := gameService.Move(ctx, info.ID, "up", false)
package service
