// Package mcp exposes Black Block Blast to AI agents over the Model Context
// Protocol.
//
// The Client is a thin proxy: every tool call is translated into a REST API
// request, so the same server state is shared by browsers, WebSocket
// subscribers and agents.
//
// Tools:
//   - create_session, list_sessions, get_session
//   - start_game, stop_game
//   - command: left, right, rotate or down, singly or as a batch
//   - tick: manual gravity steps
//   - game_state: ASCII board ('.' empty, '#' locked, '@' falling)
//   - list_configs, game_instructions
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
//
// The HTTP server also mounts the same MCP server on POST /mcp.
package mcp
