// Package session provides in-memory session management for Black Block Blast.
//
// The session package implements:
//   - Thread-safe session storage and retrieval
//   - Unique session ID generation
//   - Session expiration
//
// Each session owns an independent engine seeded at creation, so two
// sessions with the same seed and inputs play the same game. Nothing is
// persisted; a restart drops every session.
//
// Session Identifiers:
//
// Sessions use 4-character hex IDs generated from crypto/rand. Lookups are
// case-insensitive.
//
// Usage:
//
//	manager := session.NewManager()
//
//	sess, err := manager.Create("", config, seed)
//	if err != nil {
//		return err
//	}
//
//	sess, err = manager.Get(sessionID)
//
//	// Drop sessions idle for an hour
//	removed := manager.CleanupExpiredSessions(time.Hour)
package session
