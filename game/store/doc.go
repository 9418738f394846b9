// Package store provides key-value backends for the persisted best score.
//
// Every backend implements engine.ScoreStore plus Close. After Close all
// operations return ErrClosed.
//
// Backends:
//   - MemoryStore: a mutex-guarded map, nothing survives a restart
//   - FileStore: one JSON object rewritten atomically on each Set
//   - SQLiteStore: a scores table in a WAL-mode SQLite database
//
// Usage:
//
//	scores, err := store.Open(store.BackendSQLite, "./data")
//	if err != nil {
//		return err
//	}
//	defer scores.Close()
//
//	eng := engine.NewEngine(rng, scores)
package store
