package store

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/wricardo/twenty48/game/engine"
)

// Backend names accepted by Open
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"

	scoresFileName = "scores.json"
	sqliteFileName = "twenty48.db"
)

// ErrClosed is returned by every operation on a store after Close
var ErrClosed = errors.New("store is closed")

// Store is a closable engine.ScoreStore
type Store interface {
	engine.ScoreStore
	Close() error
}

// Open creates the store named by backend, keeping its files under dataDir
func Open(backend, dataDir string) (Store, error) {
	switch strings.ToLower(backend) {
	case "", BackendMemory:
		return NewMemoryStore(), nil
	case BackendFile:
		return NewFileStore(filepath.Join(dataDir, scoresFileName))
	case BackendSQLite:
		return NewSQLiteStore(filepath.Join(dataDir, sqliteFileName))
	default:
		return nil, fmt.Errorf("unknown score store backend %q", backend)
	}
}
