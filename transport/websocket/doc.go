// Package websocket provides WebSocket transport for Black Block Blast.
//
// The websocket package implements:
//   - Session-scoped connections (one hub, many sessions)
//   - Snapshot push after every state change, including gravity ticks
//   - Command intake from clients
//   - Connection lifecycle management
//
// Architecture:
//
// The package uses a hub-and-spoke model where a central Hub manages all
// WebSocket connections. Each client connection runs a read pump and a write
// pump. The Hub implements service.StateNotifier, so the game service pushes
// snapshots to it without knowing about connections.
//
// Message Protocol:
//
// Messages are JSON-encoded:
//   - Incoming: {"command": "left"} (also right, rotate, down, start, stop)
//   - Outgoing: {"session_id": "ab12", "event": "state_update", "game_state": {...}}
//
// Events are state_update, game_over, and error (sent only to the client
// whose command was rejected, with the reason in data).
//
// Usage:
//
//	hub := websocket.NewHub()
//	hub.SetCommandHandler(func(ctx context.Context, id, cmd string) error {
//		_, err := gameService.Command(ctx, id, cmd)
//		return err
//	})
//	go hub.Run(ctx)
//
//	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("session"))
//	})
package websocket
