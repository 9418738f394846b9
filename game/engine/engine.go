package engine

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Engine provides the main interface for game operations
type Engine interface {
	// Game lifecycle
	NewGame() *GameState
	GetState() *GameState
	SetState(state *GameState) error
	IsTerminal() bool

	// Board operations
	ApplyMove(dir Direction) MoveResult
	SpawnTile() (Tile, bool)
	Move(dir Direction) (MoveResult, *Tile)

	// Accessors
	Board() Board
	Score() int
	BestScore() int
	UpdateScore(delta int)

	// History
	GetMoveHistory() []MoveHistoryEntry
	GetLastMove() *MoveHistoryEntry
}

// GameEngine implements the Engine interface. It owns one game's board and
// score; it is not safe for concurrent use.
type GameEngine struct {
	state  *GameState
	rng    RandomSource
	scores ScoreStore
}

var _ Engine = (*GameEngine)(nil)

// NewEngine creates an engine drawing spawns from rng and persisting the best
// score to scores, and starts a new game. scores may be nil.
func NewEngine(rng RandomSource, scores ScoreStore) *GameEngine {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	e := &GameEngine{
		rng:    rng,
		scores: scores,
		state:  &GameState{},
	}
	e.state.BestScore = e.loadBestScore()
	e.NewGame()
	return e
}

// NewEngineWithDefaults creates an engine with a time-seeded random source and
// no best-score persistence
func NewEngineWithDefaults() *GameEngine {
	return NewEngine(nil, nil)
}

// NewGame clears the board, resets the score and spawns the initial tiles
func (e *GameEngine) NewGame() *GameState {
	best := e.state.BestScore
	if stored := e.loadBestScore(); stored > best {
		best = stored
	}

	e.state = &GameState{
		GameID:      uuid.NewString(),
		BestScore:   best,
		MoveHistory: []MoveHistoryEntry{},
		StartedAt:   time.Now().Unix(),
	}

	for i := 0; i < InitialTiles; i++ {
		e.SpawnTile()
	}

	return e.GetState()
}

// GetState returns a copy of the current game state with its helper views
// refreshed. Changing the copy does not affect the game.
func (e *GameEngine) GetState() *GameState {
	e.refreshViews()

	state := *e.state
	state.MoveHistory = append([]MoveHistoryEntry{}, e.state.MoveHistory...)
	state.PossibleMoves = append([]Direction(nil), e.state.PossibleMoves...)
	if e.state.LastSpawn != nil {
		spawn := *e.state.LastSpawn
		state.LastSpawn = &spawn
	}
	return &state
}

// SetState replaces the game state (used when restoring persisted sessions)
func (e *GameEngine) SetState(state *GameState) error {
	if err := ValidateGameState(state); err != nil {
		return err
	}
	if state.MoveHistory == nil {
		state.MoveHistory = []MoveHistoryEntry{}
	}
	if stored := e.loadBestScore(); stored > state.BestScore {
		state.BestScore = stored
	}
	e.state = state
	e.refreshViews()
	return nil
}

// ApplyMove shifts the tiles in dir and adds merge results to the score.
// It does not spawn. An invalid direction leaves the game untouched.
func (e *GameEngine) ApplyMove(dir Direction) MoveResult {
	if !dir.Valid() {
		return MoveResult{Board: e.state.Board}
	}

	moved, delta := e.state.Board.Slide(dir)
	if delta > 0 {
		e.UpdateScore(delta)
	}

	return MoveResult{
		Moved:      moved,
		ScoreDelta: delta,
		Board:      e.state.Board,
	}
}

// SpawnTile places one random tile on an empty cell; it is a no-op on a full board
func (e *GameEngine) SpawnTile() (Tile, bool) {
	tile, ok := e.state.Board.Spawn(e.rng)
	if ok {
		t := tile
		e.state.LastSpawn = &t
	}
	e.state.GameOver = e.state.Board.IsTerminal()
	return tile, ok
}

// Move applies dir and, when the board changed, spawns a tile right away.
// The move is recorded in the history either way.
func (e *GameEngine) Move(dir Direction) (MoveResult, *Tile) {
	result := e.ApplyMove(dir)

	var spawned *Tile
	if result.Moved {
		if tile, ok := e.SpawnTile(); ok {
			spawned = &tile
		}
		result.Board = e.state.Board
	}

	e.state.GameOver = e.state.Board.IsTerminal()
	e.AddMoveToHistory(dir, result, spawned)
	return result, spawned
}

// BulkMove executes moves in sequence, stopping once the game is over
func (e *GameEngine) BulkMove(moves []Direction) []MoveResult {
	results := make([]MoveResult, 0, len(moves))

	for _, dir := range moves {
		if e.IsTerminal() {
			break
		}

		result, _ := e.Move(dir)
		results = append(results, result)
	}

	return results
}

// IsTerminal reports whether no move can change the board
func (e *GameEngine) IsTerminal() bool {
	return e.state.Board.IsTerminal()
}

// Board returns a copy of the current board
func (e *GameEngine) Board() Board {
	return e.state.Board
}

// Score returns the current score
func (e *GameEngine) Score() int {
	return e.state.Score
}

// BestScore returns the best score seen by this engine or its store
func (e *GameEngine) BestScore() int {
	return e.state.BestScore
}

// UpdateScore adds delta to the score and raises and persists the best score
// when it is exceeded
func (e *GameEngine) UpdateScore(delta int) {
	if delta <= 0 {
		return
	}

	e.state.Score += delta
	if e.state.Score <= e.state.BestScore {
		return
	}

	// Another game sharing the store may have raised the best score meanwhile
	if stored := e.loadBestScore(); stored > e.state.BestScore {
		e.state.BestScore = stored
		if e.state.Score <= stored {
			return
		}
	}

	e.state.BestScore = e.state.Score
	if e.scores == nil {
		return
	}
	if err := e.scores.Set(BestScoreKey, e.state.BestScore); err != nil {
		log.Warn().Err(err).Int("best_score", e.state.BestScore).Msg("failed to persist best score")
	}
}

// GetMoveHistory returns a copy of the moves of the current game
func (e *GameEngine) GetMoveHistory() []MoveHistoryEntry {
	return append([]MoveHistoryEntry{}, e.state.MoveHistory...)
}

// GetLastMove returns a copy of the last move made, or nil if no moves
func (e *GameEngine) GetLastMove() *MoveHistoryEntry {
	if len(e.state.MoveHistory) == 0 {
		return nil
	}
	last := e.state.MoveHistory[len(e.state.MoveHistory)-1]
	return &last
}

// TotalMoves returns the number of moves made in the current game
func (e *GameEngine) TotalMoves() int {
	return e.state.TotalMoves
}

// AddMoveToHistory appends a move to the game's move history
func (e *GameEngine) AddMoveToHistory(dir Direction, result MoveResult, spawned *Tile) {
	entry := MoveHistoryEntry{
		Action:     dir,
		Moved:      result.Moved,
		ScoreDelta: result.ScoreDelta,
		Score:      e.state.Score,
		Spawned:    spawned,
		Timestamp:  time.Now().Unix(),
		MoveNumber: e.state.TotalMoves + 1,
	}
	e.state.MoveHistory = append(e.state.MoveHistory, entry)
	e.state.TotalMoves++
}

// loadBestScore reads the persisted best score; absent or unreadable counts as 0
func (e *GameEngine) loadBestScore() int {
	if e.scores == nil {
		return 0
	}
	v, ok, err := e.scores.Get(BestScoreKey)
	if err != nil {
		log.Warn().Err(err).Msg("failed to load best score")
		return 0
	}
	if !ok || v < 0 {
		return 0
	}
	return v
}

func (e *GameEngine) refreshViews() {
	b := e.state.Board
	e.state.MaxTile = b.MaxTile()
	e.state.EmptyCells = len(b.EmptyCells())
	e.state.PossibleMoves = b.PossibleMoves()
	e.state.GameOver = b.IsTerminal()
}

func (e *GameEngine) String() string {
	return fmt.Sprintf("score=%d best=%d\n%s", e.state.Score, e.state.BestScore, e.state.Board)
}
