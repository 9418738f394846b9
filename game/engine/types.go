package engine

// Direction is one of the four directions a move can shift the tiles in
type Direction string

const (
	Up    Direction = "up"
	Down  Direction = "down"
	Left  Direction = "left"
	Right Direction = "right"

	// Board dimensions are fixed for the lifetime of a game
	Size = 4

	// Spawn rules
	SpawnTwoProbability = 0.9
	SpawnLowValue       = 2
	SpawnHighValue      = 4
	InitialTiles        = 2

	// BestScoreKey is the fixed key the best score is persisted under
	BestScoreKey = "bestScore"

	// Limits used by outer layers
	MaxBulkMoves        = 50
	WebSocketBufferSize = 256
)

// Directions lists every direction in a stable order
var Directions = []Direction{Up, Down, Left, Right}

// Board is the 4x4 grid. A zero cell is empty; every other cell holds a power of two.
type Board [Size][Size]int

// Position represents row,col coordinates on the board
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Tile is a non-zero value placed at a position
type Tile struct {
	Row   int `json:"row"`
	Col   int `json:"col"`
	Value int `json:"value"`
}

// MoveResult is the outcome of a single move attempt
type MoveResult struct {
	Moved      bool  `json:"moved"`
	ScoreDelta int   `json:"score_delta"`
	Board      Board `json:"board"`
}

// RandomSource supplies the randomness used when spawning tiles.
// *math/rand.Rand satisfies it.
type RandomSource interface {
	Intn(n int) int
	Float64() float64
}

// ScoreStore is the key-value sink the best score is persisted to
type ScoreStore interface {
	// Get returns the stored value and whether the key was present
	Get(key string) (int, bool, error)
	// Set stores value under key
	Set(key string, value int) error
}

// GameState represents the complete, serialisable state of one game
type GameState struct {
	GameID      string             `json:"game_id"`
	Board       Board              `json:"board"`
	Score       int                `json:"score"`
	BestScore   int                `json:"best_score"`
	GameOver    bool               `json:"game_over"`
	MaxTile     int                `json:"max_tile"`
	LastSpawn   *Tile              `json:"last_spawn,omitempty"`
	MoveHistory []MoveHistoryEntry `json:"move_history"`
	TotalMoves  int                `json:"total_moves"`
	StartedAt   int64              `json:"started_at"`

	// Computed helper views (not required for core game logic)
	PossibleMoves []Direction `json:"possible_moves,omitempty"`
	EmptyCells    int         `json:"empty_cells"`
}

// MoveHistoryEntry represents a single move in the game history
type MoveHistoryEntry struct {
	Action     Direction `json:"action"`
	Moved      bool      `json:"moved"`
	ScoreDelta int       `json:"score_delta"`
	Score      int       `json:"score"`
	Spawned    *Tile     `json:"spawned,omitempty"`
	Timestamp  int64     `json:"timestamp"`
	MoveNumber int       `json:"move_number"`
}
