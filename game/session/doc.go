// Package session provides session management for Doorway.
//
// The session package implements:
//   - Thread-safe session storage and retrieval
//   - Unique session ID generation
//   - Switching a session to another level
//   - File persistence of progress, history and editor state
//   - Session cleanup and expiration
//
// Core Types:
//
// Manager is the main session manager that handles all session operations.
// FilePersistence stores each session as JSON: the edited level, every history
// snapshot and the move log, so undo keeps working after a restart.
//
// Session Identifiers:
//
// Sessions use 4-character hex IDs for easy reference. IDs are matched
// case-insensitively.
//
// Usage:
//
//	manager := session.NewManager()
//
//	sess, err := manager.Create("", level, "corridor")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	sess, err = manager.Get(sessionID)
//	sess, err = manager.SwitchLevel(sessionID, nextLevel, "next")
package session
