// Package session provides in-memory session management for Dig Maze.
//
// Manager stores service.Session values keyed by a case-insensitive ID.
// Each session owns one engine.GameEngine built from its config when the
// session is created. Sessions are not persisted; a restart of the server
// discards them.
//
// Session Identifiers:
//
// Generated IDs are 4 hex characters from crypto/rand. On a collision the
// manager draws again. Callers may also pick their own ID.
//
// Concurrency:
//
// The manager map is guarded by an RWMutex. Per-session fields that the
// service reads while ticking, such as LastAccessedAt, are written under the
// session's own lock, and the manager never holds its map lock while
// waiting for a session lock.
//
// Usage:
//
//	manager := session.NewManager()
//	sess, err := manager.Create("", config)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	removed := manager.CleanupExpiredSessions(24 * time.Hour)
package session
