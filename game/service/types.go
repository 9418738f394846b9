package service

import (
	"time"

	"github.com/wricardo/twenty48/game/engine"
)

// Event types reported in MoveResult and BulkMoveResult
const (
	EventMove     = "move"
	EventMerge    = "merge"
	EventSpawn    = "spawn"
	EventGameOver = "game_over"
	EventNewGame  = "new_game"
	EventIgnored  = "ignored"
)

// Stop reason codes for bulk moves
const (
	StopGameOver      = "game_over"
	StopNotADirection = "not_a_direction"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string            `json:"id"`
	CreatedAt      time.Time         `json:"created_at"`
	LastAccessedAt time.Time         `json:"last_accessed_at"`
	GameState      *engine.GameState `json:"game_state"`
}

// ListOptions controls ordering and size of ListSessions
type ListOptions struct {
	SortBy string `json:"sort_by"` // "created" (default), "last_accessed", "score", "max_tile", "moves"
	Order  string `json:"order"`   // "asc" or "desc" (default)
	Limit  int    `json:"limit"`   // 0 means no limit
}

// MoveResult contains the result of a move operation
type MoveResult struct {
	Success    bool              `json:"success"`
	Direction  string            `json:"direction"`
	Ignored    bool              `json:"ignored,omitempty"`
	Reason     string            `json:"reason,omitempty"`
	Moved      bool              `json:"moved"`
	ScoreDelta int               `json:"score_delta"`
	Spawned    *engine.Tile      `json:"spawned,omitempty"`
	GameState  *engine.GameState `json:"game_state"`
	Message    string            `json:"message"`
	Events     []GameEvent       `json:"events,omitempty"`
}

// BulkMoveResult contains the result of multiple moves
type BulkMoveResult struct {
	// Summary
	MovesExecuted  int               `json:"moves_executed"`
	RequestedMoves int               `json:"requested_moves"`
	Success        bool              `json:"success"`
	GameState      *engine.GameState `json:"game_state"`
	Events         []GameEvent       `json:"events"`
	StoppedReason  string            `json:"stopped_reason,omitempty"`   // Human-readable reason
	StopReasonCode string            `json:"stop_reason_code,omitempty"` // game_over|not_a_direction
	StoppedOnMove  int               `json:"stopped_on_move,omitempty"`  // 1-based index of the move that caused stop
	Truncated      bool              `json:"truncated,omitempty"`
	Limit          int               `json:"limit,omitempty"`

	// Start/end snapshot
	StartScore int `json:"start_score"`
	EndScore   int `json:"end_score"`
	ScoreDelta int `json:"score_delta"`

	// Per-step compact trace (only for this call)
	Steps []StepInfo `json:"steps,omitempty"`

	// Final status aids
	GameOver      bool               `json:"game_over"`
	Message       string             `json:"message,omitempty"`
	PossibleMoves []engine.Direction `json:"possible_moves,omitempty"`
}

// StepInfo is a compact record for each executed move in the bulk call
type StepInfo struct {
	Idx        int          `json:"idx"`
	Dir        string       `json:"dir"`
	Moved      bool         `json:"moved"`
	ScoreDelta int          `json:"score_delta"`
	Score      int          `json:"score"`
	MaxTile    int          `json:"max_tile"`
	Spawned    *engine.Tile `json:"spawned,omitempty"`
}

// GameEvent represents an event that occurred during gameplay
type GameEvent struct {
	Type      string       `json:"type"` // "move", "merge", "spawn", "game_over", "new_game", "ignored"
	Message   string       `json:"message"`
	Timestamp time.Time    `json:"timestamp"`
	Tile      *engine.Tile `json:"tile,omitempty"`
}

// HistoryOptions configures move history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated move history
type HistoryResponse struct {
	Moves       []engine.MoveHistoryEntry `json:"moves"`
	TotalMoves  int                       `json:"total_moves"`
	Page        int                       `json:"page"`
	PageSize    int                       `json:"page_size"`
	TotalPages  int                       `json:"total_pages"`
	HasNext     bool                      `json:"has_next"`
	HasPrevious bool                      `json:"has_previous"`
}

// BestScoreInfo reports the persisted best score
type BestScoreInfo struct {
	BestScore    int    `json:"best_score"`
	Key          string `json:"key"`
	SessionID    string `json:"session_id,omitempty"` // live session currently holding the best score, if any
	ActiveGames  int    `json:"active_games"`
	HighestTile  int    `json:"highest_tile"`
	LiveSessions int    `json:"live_sessions"`
}
