// Package service provides the business logic layer for Black Block Blast.
//
// The service package implements:
//   - Multi-session game management
//   - Per-session serialization of every engine call
//   - Server-side gravity through the Scheduler
//   - Configuration access
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and expiry.
// ConfigManager manages rule set loading and validation.
// StateNotifier receives a snapshot after every change, which is how the
// WebSocket hub learns about gravity ticks it did not trigger.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP) and
// the game engine. The engine is not safe for concurrent use, so each Session
// carries a mutex and ticks, commands and snapshots all run under it. With
// WithScheduler, Start launches one ticker goroutine per session at the rule
// set's interval; Stop, game over, deletion and Shutdown end it.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr, _ := config.NewManager("configs")
//	gameService := service.NewGameService(sessionMgr, configMgr,
//		service.WithNotifier(hub),
//		service.WithScheduler(ctx))
//	defer gameService.Shutdown()
//
//	info, err := gameService.CreateSession(ctx, "classic", nil)
//	state, err := gameService.Start(ctx, info.ID)
//	result, err := gameService.Command(ctx, info.ID, "rotate")
package service
