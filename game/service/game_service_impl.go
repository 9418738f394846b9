package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/wricardo/twenty48/game/engine"
)

// Option configures a game service
type Option func(*gameServiceImpl)

// WithMaxBulkMoves caps the number of moves a single BulkMove call executes
func WithMaxBulkMoves(n int) Option {
	return func(s *gameServiceImpl) {
		if n > 0 && n <= engine.MaxBulkMoves {
			s.maxBulkMoves = n
		}
	}
}

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions     SessionManager
	scores       engine.ScoreStore
	maxBulkMoves int
	mu           sync.RWMutex
}

// NewGameService creates a new game service instance. scores is the store
// shared by every session's engine and may be nil.
func NewGameService(sessions SessionManager, scores engine.ScoreStore, opts ...Option) GameService {
	s := &gameServiceImpl{
		sessions:     sessions,
		scores:       scores,
		maxBulkMoves: engine.MaxBulkMoves,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateSession creates a new game session with a fresh game
func (s *gameServiceImpl) CreateSession(ctx context.Context) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Let session manager generate a proper 4-character ID
	session, err := s.sessions.Create("")
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return sessionInfo(session), nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.touch(sessionID)
	return sessionInfo(session), nil
}

// ListSessions returns active sessions ordered and limited by opts
func (s *gameServiceImpl) ListSessions(ctx context.Context, opts ListOptions) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, sessionInfo(sess))
	}

	sortSessions(result, opts)
	if opts.Limit > 0 && len(result) > opts.Limit {
		result = result[:opts.Limit]
	}
	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sessions.Delete(sessionID)
}

// Move executes a single move for a session. Input that is not a direction
// is reported as ignored, not as an error.
func (s *gameServiceImpl) Move(ctx context.Context, sessionID, direction string) (*MoveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.touch(sessionID)

	wasOver := sess.Controller.State().GameOver
	input := sess.Controller.HandleInput(direction)
	state := sess.State()

	result := &MoveResult{
		Success:    input.Move.Moved,
		Direction:  direction,
		Ignored:    input.Ignored,
		Reason:     input.Reason,
		Moved:      input.Move.Moved,
		ScoreDelta: input.Move.ScoreDelta,
		Spawned:    input.Spawned,
		GameState:  state,
		Events:     moveEvents(direction, input, wasOver),
	}
	result.Message = moveMessage(result, state)

	log.Debug().
		Str("session", sessionID).
		Str("direction", direction).
		Bool("moved", result.Moved).
		Int("score_delta", result.ScoreDelta).
		Int("score", state.Score).
		Msg("move")

	if !input.Ignored {
		s.persist(sessionID, "move")
	}

	return result, nil
}

// BulkMove executes multiple moves in sequence. It stops at the first input
// that is not a direction and once the game is over.
func (s *gameServiceImpl) BulkMove(ctx context.Context, sessionID string, moves []string) (*BulkMoveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.touch(sessionID)

	start := sess.Controller.State()
	result := &BulkMoveResult{
		RequestedMoves: len(moves),
		Events:         make([]GameEvent, 0),
		Success:        true,
		StartScore:     start.Score,
		GameOver:       start.GameOver,
	}

	// Limit moves to prevent abuse
	if len(moves) > s.maxBulkMoves {
		result.Truncated = true
		result.Limit = s.maxBulkMoves
		moves = moves[:s.maxBulkMoves]
	}

	for i, move := range moves {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if sess.Controller.State().GameOver {
			result.StoppedReason = fmt.Sprintf("game over before move %d", i+1)
			result.StopReasonCode = StopGameOver
			result.StoppedOnMove = i + 1
			break
		}

		input := sess.Controller.HandleInput(move)
		if input.Ignored {
			result.Success = false
			result.StoppedReason = fmt.Sprintf("move %d is not a direction: %q", i+1, move)
			result.StopReasonCode = StopNotADirection
			result.StoppedOnMove = i + 1
			break
		}

		result.MovesExecuted++
		result.Events = append(result.Events, moveEvents(move, input, false)...)

		curr := sess.Controller.State()
		result.Steps = append(result.Steps, StepInfo{
			Idx:        i + 1,
			Dir:        string(input.Direction),
			Moved:      input.Move.Moved,
			ScoreDelta: input.Move.ScoreDelta,
			Score:      curr.Score,
			MaxTile:    curr.MaxTile,
			Spawned:    input.Spawned,
		})
	}

	end := sess.State()
	result.GameState = end
	result.EndScore = end.Score
	result.ScoreDelta = end.Score - start.Score
	result.GameOver = end.GameOver
	result.PossibleMoves = end.PossibleMoves

	if result.GameOver && result.StopReasonCode == "" {
		result.StopReasonCode = StopGameOver
		result.StoppedReason = "game over"
	}

	switch {
	case result.GameOver:
		result.Message = fmt.Sprintf("Game over! Final score: %d", end.Score)
	case result.StopReasonCode == StopNotADirection:
		result.Message = result.StoppedReason
	default:
		result.Message = fmt.Sprintf("Executed %d moves, score %d (+%d)", result.MovesExecuted, end.Score, result.ScoreDelta)
	}

	if result.MovesExecuted > 0 {
		s.persist(sessionID, "bulk move")
	}

	return result, nil
}

// NewGame starts a new game in an existing session
func (s *gameServiceImpl) NewGame(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.touch(sessionID)
	state := sess.Controller.NewGame()

	log.Info().Str("session", sessionID).Str("game_id", state.GameID).Msg("new game")
	s.persist(sessionID, "new game")

	return &state, nil
}

// GetGameState retrieves the current game state
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.touch(sessionID)
	return sess.State(), nil
}

// GetMoveHistory returns paginated move history
func (s *gameServiceImpl) GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	return paginateHistory(sess.State().MoveHistory, opts), nil
}

// GetBestScore reports the persisted best score, falling back to the live
// sessions when no store is configured or it cannot be read
func (s *gameServiceImpl) GetBestScore(ctx context.Context) (*BestScoreInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	info := &BestScoreInfo{Key: engine.BestScoreKey}

	if s.scores != nil {
		v, ok, err := s.scores.Get(engine.BestScoreKey)
		if err != nil {
			log.Warn().Err(err).Msg("failed to read best score")
		} else if ok {
			info.BestScore = v
		}
	}

	states := make(map[string]engine.GameState)
	for _, sess := range s.sessions.List() {
		state := sess.Controller.State()
		states[sess.ID] = state
		info.LiveSessions++
		if !state.GameOver {
			info.ActiveGames++
		}
		if state.MaxTile > info.HighestTile {
			info.HighestTile = state.MaxTile
		}
		if state.BestScore > info.BestScore {
			info.BestScore = state.BestScore
		}
	}

	for id, state := range states {
		if state.Score > 0 && state.Score == info.BestScore && (info.SessionID == "" || id < info.SessionID) {
			info.SessionID = id
		}
	}

	return info, nil
}

// touch refreshes the session's last-access time; failures only matter for
// expiry, so they are logged
func (s *gameServiceImpl) touch(sessionID string) {
	if err := s.sessions.UpdateLastAccessed(sessionID); err != nil {
		log.Warn().Err(err).Str("session", sessionID).Msg("failed to update last access")
	}
}

func (s *gameServiceImpl) persist(sessionID, after string) {
	if err := s.sessions.Save(sessionID); err != nil {
		log.Warn().Err(err).Str("session", sessionID).Msgf("failed to persist session after %s", after)
	}
}

func sessionInfo(sess *Session) *SessionInfo {
	return &SessionInfo{
		ID:             sess.ID,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessed(),
		GameState:      sess.State(),
	}
}

func sortSessions(list []*SessionInfo, opts ListOptions) {
	key := func(si *SessionInfo) int64 {
		switch strings.ToLower(opts.SortBy) {
		case "last_accessed":
			return si.LastAccessedAt.UnixNano()
		case "score":
			return int64(si.GameState.Score)
		case "max_tile":
			return int64(si.GameState.MaxTile)
		case "moves":
			return int64(si.GameState.TotalMoves)
		default:
			return si.CreatedAt.UnixNano()
		}
	}
	asc := strings.EqualFold(opts.Order, "asc")

	sort.SliceStable(list, func(i, j int) bool {
		ki, kj := key(list[i]), key(list[j])
		if ki == kj {
			return list[i].ID < list[j].ID
		}
		if asc {
			return ki < kj
		}
		return ki > kj
	})
}

func paginateHistory(history []engine.MoveHistoryEntry, opts HistoryOptions) *HistoryResponse {
	total := len(history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	var moves []engine.MoveHistoryEntry
	if opts.Order == "desc" {
		// Most recent first
		for i := total - 1 - start; i >= 0 && i >= total-end; i-- {
			moves = append(moves, history[i])
		}
	} else if start < total {
		moves = history[start:end]
	}

	if moves == nil {
		moves = []engine.MoveHistoryEntry{}
	}

	return &HistoryResponse{
		Moves:       moves,
		TotalMoves:  total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}
}

// moveEvents describes one handled input. wasOver suppresses a repeated
// game_over event for input sent to a finished game.
func moveEvents(direction string, input engine.InputResult, wasOver bool) []GameEvent {
	now := time.Now()

	if input.Ignored {
		return []GameEvent{{
			Type:      EventIgnored,
			Message:   fmt.Sprintf("Input %q ignored (%s)", direction, input.Reason),
			Timestamp: now,
		}}
	}

	events := []GameEvent{}
	if !input.Move.Moved {
		events = append(events, GameEvent{
			Type:      EventMove,
			Message:   fmt.Sprintf("Nothing moved %s", input.Direction),
			Timestamp: now,
		})
	} else {
		events = append(events, GameEvent{
			Type:      EventMove,
			Message:   fmt.Sprintf("Moved %s", input.Direction),
			Timestamp: now,
		})
	}

	if input.Move.ScoreDelta > 0 {
		events = append(events, GameEvent{
			Type:      EventMerge,
			Message:   fmt.Sprintf("Merged tiles worth %d", input.Move.ScoreDelta),
			Timestamp: now,
		})
	}

	if input.Spawned != nil {
		events = append(events, GameEvent{
			Type:      EventSpawn,
			Message:   fmt.Sprintf("Spawned %d at (%d,%d)", input.Spawned.Value, input.Spawned.Row, input.Spawned.Col),
			Timestamp: now,
			Tile:      input.Spawned,
		})
	}

	if input.GameOver && !wasOver {
		events = append(events, GameEvent{
			Type:      EventGameOver,
			Message:   "No moves left",
			Timestamp: now,
		})
	}

	return events
}

func moveMessage(result *MoveResult, state *engine.GameState) string {
	switch {
	case result.Ignored:
		return fmt.Sprintf("Ignored %q: not a direction", result.Direction)
	case state.GameOver:
		return fmt.Sprintf("Game over! Final score: %d", state.Score)
	case !result.Moved:
		return fmt.Sprintf("Nothing moved %s", result.Direction)
	case result.ScoreDelta > 0:
		return fmt.Sprintf("Moved %s, +%d (score %d)", result.Direction, result.ScoreDelta, state.Score)
	default:
		return fmt.Sprintf("Moved %s (score %d)", result.Direction, state.Score)
	}
}
