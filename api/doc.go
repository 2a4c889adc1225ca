// Package api provides HTTP REST API handlers for Black Block Blast.
//
// The api package implements:
//   - Session management endpoints
//   - Game lifecycle and input endpoints
//   - Configuration listing, retrieval and upload
//   - WebSocket upgrade handling
//
// Endpoints:
//
// Session Management:
//   - POST /api/sessions - Create a session ({"config_id": "sprint", "seed": 42}, both optional)
//   - GET /api/sessions - List sessions (?sort=accessed|created|score&order=asc|desc&limit=N)
//   - GET /api/sessions/{id} - Get a session
//   - DELETE /api/sessions/{id} - Delete a session and stop its gravity
//
// Game Operations:
//   - GET /api/sessions/{id}/state - Current snapshot
//   - POST /api/sessions/{id}/start - Reset and start playing
//   - POST /api/sessions/{id}/stop - Stop gravity and ignore input until the next start
//   - POST /api/sessions/{id}/command - {"command": "left|right|rotate|down|start|stop"}
//   - POST /api/sessions/{id}/tick - One gravity step, for clients that own the clock
//
// Configuration:
//   - GET /api/configs - List rule sets
//   - GET /api/configs/{name} - Get a rule set
//   - POST /api/configs - Save a rule set (JSON body of engine.GameConfig)
//
// Other:
//   - GET /health - Liveness probe
//   - GET /ws?session={id} - WebSocket stream for a session
//
// Errors are returned as {"error": "..."}: 404 for unknown sessions or
// configs, 400 for malformed bodies, unknown commands and invalid configs,
// 500 otherwise.
//
// Usage:
//
//	server := api.NewServer(gameService, hub)
//	http.ListenAndServe(":8080", server)
package api
