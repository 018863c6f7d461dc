// Package websocket provides WebSocket transport for Doorway.
//
// The websocket package implements:
//   - Session-aware WebSocket connections
//   - State broadcasting after every turn
//   - Connection lifecycle management
//
// Architecture:
//
// A central Hub owns the client registry and runs a single event loop; every
// registration, broadcast and count query goes through it. Each client has a
// read pump and a write pump goroutine.
//
// Message Protocol:
//
// Outgoing messages are JSON objects {session_id, event, game_state, data}:
//   - state_update: the full GameState after a change
//   - turn: the GameState plus the turn's events in data
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run()
//
//	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("session"))
//	})
//
//	hub.BroadcastToSession(sessionID, state)
package websocket
