// Package api provides HTTP REST API handlers for Doorway.
//
// The api package implements:
//   - Session management endpoints
//   - Turn endpoints (move, bulk move, back, reset) with WebSocket push
//   - Editor endpoints for live level editing
//   - The level library and its ordered list
//   - Completion records
//
// Endpoints:
//
// Sessions:
//   - POST   /api/sessions                 {"level_id": "..."} create a session
//   - GET    /api/sessions                 ?sort=created|accessed&order=asc|desc&limit=N&level=ID
//   - GET    /api/sessions/{id}            session info with game state
//   - DELETE /api/sessions/{id}
//
// Turns:
//   - GET  /api/sessions/{id}/state
//   - POST /api/sessions/{id}/move        {"direction": "up|down|left|right", "reset": false}
//   - POST /api/sessions/{id}/bulk-move   {"moves": ["up", "right"], "reset": false}
//   - POST /api/sessions/{id}/back
//   - POST /api/sessions/{id}/reset
//   - GET  /api/sessions/{id}/history     ?page=1&limit=20&order=desc
//   - GET  /api/sessions/{id}/hint        shortest solution from the current state
//
// Editor:
//   - POST /api/sessions/{id}/editor      {"enabled": true}
//   - POST /api/sessions/{id}/edit        {"op": "cursor|place|add|remove|cycle|link", ...}
//   - POST /api/sessions/{id}/save        {"name": "..."} write the edited level
//
// Level navigation:
//   - POST /api/sessions/{id}/level       {"level_id": "..."}
//   - POST /api/sessions/{id}/next
//   - POST /api/sessions/{id}/prev
//
// Levels:
//   - GET    /api/levels
//   - POST   /api/levels                  a level document with a name
//   - GET    /api/levels/{name}
//   - DELETE /api/levels/{name}           drop from the level list
//   - POST   /api/levels/{name}/clone
//   - POST   /api/levels/{name}/move      {"op": "end|back|forward"}
//   - GET    /api/levels/{name}/records   ?limit=N
//
// Other:
//   - GET /health
//   - GET /ws?session={id}               WebSocket upgrade
//
// Error Handling:
//
// Errors are returned as JSON {"error": "message"}. Unknown sessions and levels map to
// 404, invalid levels and edit operations to 400, edits with the editor off to 409.
package api
