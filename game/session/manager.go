package session

import (
	crand "crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/wricardo/twenty48/game/engine"
	"github.com/wricardo/twenty48/game/service"
)

var (
	ErrSessionNotFound      = errors.New("session not found")
	ErrSessionAlreadyExists = errors.New("session already exists")
	ErrInvalidSessionID     = errors.New("invalid session ID")
)

// StateListener is told about every state change of every session
type StateListener func(sessionID string, state engine.GameState)

// Manager handles game session lifecycle
type Manager struct {
	sessions    map[string]*service.Session
	persistence SessionPersistence
	scores      engine.ScoreStore
	mu          sync.RWMutex

	rngMu sync.Mutex
	seeds *rand.Rand

	listenerMu sync.RWMutex
	listeners  []StateListener
}

// NewManager creates a new session manager. Every session's engine persists
// its best score to scores, which may be nil.
func NewManager(scores engine.ScoreStore) *Manager {
	return &Manager{
		sessions: make(map[string]*service.Session),
		scores:   scores,
		seeds:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// NewManagerWithPersistence creates a new session manager with persistence
func NewManagerWithPersistence(scores engine.ScoreStore, persistence SessionPersistence) *Manager {
	m := NewManager(scores)
	m.persistence = persistence
	return m
}

// SetSeed makes the spawn sequences of sessions created afterwards reproducible
func (m *Manager) SetSeed(seed int64) {
	m.rngMu.Lock()
	defer m.rngMu.Unlock()
	m.seeds = rand.New(rand.NewSource(seed))
}

// OnStateChange registers fn for state changes of all current and future sessions
func (m *Manager) OnStateChange(fn StateListener) {
	m.listenerMu.Lock()
	defer m.listenerMu.Unlock()
	m.listeners = append(m.listeners, fn)
}

// Create creates a new session with the given ID and starts a game
func (m *Manager) Create(id string) (*service.Session, error) {
	if id != "" && !validID(id) {
		return nil, ErrInvalidSessionID
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if id == "" {
		id = m.generateSessionID()
		for m.sessionExists(id) {
			id = m.generateSessionID()
		}
	}

	// Check if session already exists (case-insensitive)
	if m.sessionExists(id) {
		return nil, ErrSessionAlreadyExists
	}

	session := m.newSession(id)
	m.sessions[strings.ToLower(id)] = session

	// Auto-save if persistence is enabled
	if m.persistence != nil {
		if err := m.persistence.Save(session); err != nil {
			// Log error but don't fail the creation
			log.Warn().Err(err).Str("session", id).Msg("failed to persist new session")
		}
	}

	log.Info().Str("session", id).Msg("session created")
	return session, nil
}

// Get retrieves a session by ID (case-insensitive)
func (m *Manager) Get(id string) (*service.Session, error) {
	m.mu.RLock()
	session, exists := m.sessions[strings.ToLower(id)]
	m.mu.RUnlock()

	if exists {
		return session, nil
	}

	// Try loading from persistence if not in memory
	if m.persistence != nil && validID(id) && m.persistence.Exists(id) {
		data, err := m.persistence.Load(id)
		if err != nil {
			return nil, fmt.Errorf("failed to load persisted session: %w", err)
		}

		m.mu.Lock()
		defer m.mu.Unlock()

		// Another caller may have restored it meanwhile
		if session, exists := m.sessions[strings.ToLower(id)]; exists {
			return session, nil
		}

		session, err := m.restore(data)
		if err != nil {
			return nil, err
		}
		m.sessions[strings.ToLower(id)] = session
		return session, nil
	}

	return nil, ErrSessionNotFound
}

// GetOrCreate gets an existing session or creates a new one
func (m *Manager) GetOrCreate(id string) (*service.Session, error) {
	session, err := m.Get(id)
	if err == nil {
		return session, nil
	}

	if errors.Is(err, ErrSessionNotFound) {
		return m.Create(id)
	}

	return nil, err
}

// List returns all active sessions
func (m *Manager) List() []*service.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*service.Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		result = append(result, session)
	}

	return result
}

// Delete removes a session from memory and persistence
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	lowerID := strings.ToLower(id)
	_, inMemory := m.sessions[lowerID]
	delete(m.sessions, lowerID)

	if m.persistence != nil && validID(id) && m.persistence.Exists(id) {
		if err := m.persistence.Delete(id); err != nil {
			return fmt.Errorf("failed to delete persisted session: %w", err)
		}
		return nil
	}

	if !inMemory {
		return ErrSessionNotFound
	}

	return nil
}

// DeleteFromMemory removes a session from memory only (not from persistence)
func (m *Manager) DeleteFromMemory(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	lowerID := strings.ToLower(id)
	if _, exists := m.sessions[lowerID]; !exists {
		return ErrSessionNotFound
	}

	delete(m.sessions, lowerID)
	return nil
}

// UpdateLastAccessed updates the last accessed time for a session
func (m *Manager) UpdateLastAccessed(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, exists := m.sessions[strings.ToLower(id)]
	if !exists {
		return ErrSessionNotFound
	}

	session.Touch(time.Now())
	return nil
}

// Save saves a specific session to persistence
func (m *Manager) Save(id string) error {
	if m.persistence == nil {
		return nil // No persistence configured
	}

	m.mu.RLock()
	session, exists := m.sessions[strings.ToLower(id)]
	m.mu.RUnlock()

	if !exists {
		return ErrSessionNotFound
	}

	return m.persistence.Save(session)
}

// CleanupExpiredSessions removes sessions from memory that haven't been
// accessed in the given duration. Their files are kept.
func (m *Manager) CleanupExpiredSessions(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	removed := 0

	for id, session := range m.sessions {
		if session.LastAccessed().Before(cutoff) {
			delete(m.sessions, id)
			removed++
		}
	}

	return removed
}

// PruneOrphaned drops in-memory sessions whose persisted file has been removed
func (m *Manager) PruneOrphaned() int {
	if m.persistence == nil {
		return 0
	}

	pruned := 0
	for _, session := range m.List() {
		if m.persistence.Exists(session.ID) {
			continue
		}
		if err := m.DeleteFromMemory(session.ID); err == nil {
			pruned++
			log.Info().Str("session", session.ID).Msg("pruned session from memory (file deleted)")
		}
	}
	return pruned
}

// Count returns the number of active sessions
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// LoadPersistedSessions loads all persisted sessions into memory
func (m *Manager) LoadPersistedSessions() error {
	if m.persistence == nil {
		return nil // No persistence configured
	}

	sessionIDs, err := m.persistence.ListAll()
	if err != nil {
		return fmt.Errorf("failed to list persisted sessions: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	loadedCount := 0
	for _, id := range sessionIDs {
		if _, exists := m.sessions[strings.ToLower(id)]; exists {
			continue
		}

		data, err := m.persistence.Load(id)
		if err != nil {
			log.Warn().Err(err).Str("session", id).Msg("failed to load persisted session")
			continue
		}

		session, err := m.restore(data)
		if err != nil {
			log.Warn().Err(err).Str("session", id).Msg("failed to restore persisted session")
			continue
		}

		m.sessions[strings.ToLower(id)] = session
		loadedCount++
	}

	if loadedCount > 0 {
		log.Info().Int("count", loadedCount).Msg("loaded persisted sessions from storage")
	}

	return nil
}

// SaveAllSessions saves all in-memory sessions to persistence
func (m *Manager) SaveAllSessions() error {
	if m.persistence == nil {
		return nil // No persistence configured
	}

	errorCount := 0
	for _, session := range m.List() {
		if err := m.persistence.Save(session); err != nil {
			log.Warn().Err(err).Str("session", session.ID).Msg("failed to save session")
			errorCount++
		}
	}

	if errorCount > 0 {
		return fmt.Errorf("failed to save %d sessions", errorCount)
	}

	return nil
}

// newSession builds a session around a fresh engine; headless sessions
// spawn synchronously
func (m *Manager) newSession(id string) *service.Session {
	eng := engine.NewEngine(m.nextRNG(), m.scores)
	ctrl := engine.NewController(eng, 0)
	ctrl.OnChange(func(state engine.GameState) {
		m.notify(id, state)
	})

	now := time.Now()
	return &service.Session{
		ID:             id,
		Controller:     ctrl,
		CreatedAt:      now,
		LastAccessedAt: now,
	}
}

// restore rebuilds a session from persisted data
func (m *Manager) restore(data *PersistedSessionData) (*service.Session, error) {
	if data == nil || data.GameState == nil {
		return nil, fmt.Errorf("persisted session has no game state")
	}

	session := m.newSession(data.ID)
	if err := session.Controller.Engine().SetState(data.GameState); err != nil {
		return nil, fmt.Errorf("failed to set game state: %w", err)
	}
	session.CreatedAt = data.CreatedAt
	session.LastAccessedAt = data.LastAccessedAt
	return session, nil
}

func (m *Manager) notify(id string, state engine.GameState) {
	m.listenerMu.RLock()
	listeners := m.listeners
	m.listenerMu.RUnlock()

	for _, fn := range listeners {
		fn(id, state)
	}
}

func (m *Manager) nextRNG() *rand.Rand {
	m.rngMu.Lock()
	defer m.rngMu.Unlock()
	return rand.New(rand.NewSource(m.seeds.Int63()))
}

// generateSessionID generates a random 4-character session ID
func (m *Manager) generateSessionID() string {
	// Generate 2 random bytes (4 hex characters)
	bytes := make([]byte, 2)
	crand.Read(bytes)
	return hex.EncodeToString(bytes)
}

// sessionExists checks if a session exists (case-insensitive)
func (m *Manager) sessionExists(id string) bool {
	_, exists := m.sessions[strings.ToLower(id)]
	return exists
}

// validID rejects IDs that cannot be used as file names
func validID(id string) bool {
	if id == "" || len(id) > 64 {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}
