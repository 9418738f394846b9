package service

import (
	"context"
	"sync"
	"time"

	"github.com/wricardo/twenty48/game/engine"
)

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context, opts ListOptions) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Game Operations
	Move(ctx context.Context, sessionID, direction string) (*MoveResult, error)
	BulkMove(ctx context.Context, sessionID string, moves []string) (*BulkMoveResult, error)
	NewGame(ctx context.Context, sessionID string) (*engine.GameState, error)

	// Game State
	GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error)
	GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error)
	GetBestScore(ctx context.Context) (*BestScoreInfo, error)
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string) (*Session, error)
	Get(id string) (*Session, error)
	GetOrCreate(id string) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
	Save(id string) error
}

// Session represents an active game session. All access to the game goes
// through Controller, which serialises it.
type Session struct {
	ID         string
	Controller *engine.Controller
	CreatedAt  time.Time
	// LastAccessedAt may be set directly until the session is shared; after
	// that use Touch and LastAccessed.
	LastAccessedAt time.Time

	mu sync.RWMutex
}

// Touch records an access at t
func (s *Session) Touch(t time.Time) {
	s.mu.Lock()
	s.LastAccessedAt = t
	s.mu.Unlock()
}

// LastAccessed returns the time of the last recorded access
func (s *Session) LastAccessed() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.LastAccessedAt
}

// State returns a snapshot of the session's game
func (s *Session) State() *engine.GameState {
	state := s.Controller.State()
	return &state
}
