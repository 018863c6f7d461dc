// Package mcp provides a Model Context Protocol server for Doorway.
//
// The server is a thin proxy: every tool translates into a call against the REST API,
// so the stdio and HTTP transports share sessions with browser and terminal players.
//
// MCP Tools:
//
// Sessions:
//   - create_session: Create a session, optionally on a named level
//   - list_sessions: List active sessions
//   - get_session: Session details and game state
//
// Turns:
//   - game_state: Current state with an ASCII map and door links
//   - move: Resolve one turn in a direction
//   - bulk_move: Resolve several turns, stopping at the first blocked one
//   - back: Undo the last turn
//   - reset_game: Return to the starting layout
//   - move_history: Paginated turn history
//   - hint: Shortest solution from the current layout
//
// Levels:
//   - list_levels: Levels in list order
//   - switch_level: Load a level into a session
//   - step_level: Move to the next or previous listed level
//   - level_records: Best completions for a level
//
// Editor:
//   - set_editor: Turn editing on or off
//   - edit_level: Apply an edit operation
//   - save_level: Write the edited level to the library
//
// Help:
//   - game_instructions: Rules, legend and editor reference
//   - describe_cell: Everything occupying one cell
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
//
// For HTTP, pass single JSON-RPC messages to GetMCPServer().HandleMessage.
package mcp
