// Package session provides session management for the 2048 server.
//
// The session package implements:
//   - Thread-safe session storage and retrieval
//   - Unique session ID generation
//   - JSON file persistence of running games
//   - Session cleanup and expiration
//   - State change fan-out to listeners such as the WebSocket hub
//
// Core Types:
//
// Manager is the main session manager that handles all session operations.
// Each session wraps its own engine in an engine.Controller; all sessions
// share the manager's best-score store.
//
// Session Identifiers:
//
// Generated IDs are 4 hex characters from crypto/rand. Caller-chosen IDs
// may use letters, digits, '-' and '_'. Lookups ignore case.
//
// Usage:
//
//	persistence, _ := session.NewFilePersistence("data/sessions")
//	manager := session.NewManagerWithPersistence(scores, persistence)
//	manager.OnStateChange(hub.BroadcastState)
//
//	sess, err := manager.Create("")
//	if err != nil {
//		return err
//	}
//	sess.Controller.HandleDirection(engine.Left)
package session
