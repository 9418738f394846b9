package engine

import (
	"sync"
	"time"
)

// Reasons an input can be dropped
const (
	IgnoredBusy           = "busy"
	IgnoredNotADirection  = "not_a_direction"
	DefaultAnimationDelay = 150 * time.Millisecond
)

// InputResult describes what a controller did with one input
type InputResult struct {
	Direction Direction  `json:"direction,omitempty"`
	Ignored   bool       `json:"ignored"`
	Reason    string     `json:"reason,omitempty"`
	Move      MoveResult `json:"move"`
	Spawned   *Tile      `json:"spawned,omitempty"`
	Pending   bool       `json:"pending,omitempty"`
	GameOver  bool       `json:"game_over"`
}

// Controller feeds directional input into one engine. While a move's spawn
// is pending the controller is busy and further input is dropped, not
// queued. With a zero spawn delay the spawn happens before HandleInput
// returns.
//
// Observers registered with OnChange receive a snapshot after every state
// change; they run on the goroutine that caused the change and must not call
// back into the controller synchronously.
type Controller struct {
	mu         sync.Mutex
	engine     *GameEngine
	spawnDelay time.Duration
	busy       bool
	generation int
	observers  []func(GameState)
}

// NewController wraps e. spawnDelay is the pause between resolving a move and
// spawning the next tile.
func NewController(e *GameEngine, spawnDelay time.Duration) *Controller {
	if spawnDelay < 0 {
		spawnDelay = 0
	}
	return &Controller{
		engine:     e,
		spawnDelay: spawnDelay,
	}
}

// OnChange registers fn to be called with a snapshot after each state change
func (c *Controller) OnChange(fn func(GameState)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observers = append(c.observers, fn)
}

// Busy reports whether a spawn is pending
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

// State returns a snapshot of the current game state
func (c *Controller) State() GameState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

// Engine returns the wrapped engine. Callers must not use it concurrently
// with the controller.
func (c *Controller) Engine() *GameEngine {
	return c.engine
}

// HandleInput parses raw input and handles it as a direction. Input that is
// not a direction is ignored without touching the game.
func (c *Controller) HandleInput(input string) InputResult {
	dir, ok := ParseDirection(input)
	if !ok {
		c.mu.Lock()
		defer c.mu.Unlock()
		return InputResult{
			Ignored:  true,
			Reason:   IgnoredNotADirection,
			Move:     MoveResult{Board: c.engine.Board()},
			GameOver: c.engine.IsTerminal(),
		}
	}
	return c.HandleDirection(dir)
}

// HandleDirection resolves one move
func (c *Controller) HandleDirection(dir Direction) InputResult {
	c.mu.Lock()

	if c.busy {
		res := InputResult{
			Direction: dir,
			Ignored:   true,
			Reason:    IgnoredBusy,
			Move:      MoveResult{Board: c.engine.Board()},
			GameOver:  c.engine.IsTerminal(),
		}
		c.mu.Unlock()
		return res
	}

	move := c.engine.ApplyMove(dir)
	res := InputResult{Direction: dir, Move: move}

	switch {
	case !move.Moved:
		c.engine.AddMoveToHistory(dir, move, nil)
	case c.spawnDelay == 0:
		res.Spawned = c.spawnLocked(dir, move)
		res.Move.Board = c.engine.Board()
	default:
		c.busy = true
		res.Pending = true
		gen := c.generation
		time.AfterFunc(c.spawnDelay, func() {
			c.completeSpawn(gen, dir, move)
		})
	}

	res.GameOver = c.engine.IsTerminal()
	snap, observers := c.snapshot(), c.observers
	c.mu.Unlock()

	notify(observers, snap)
	return res
}

// NewGame starts a new game. A spawn still pending for the previous game is
// discarded.
func (c *Controller) NewGame() GameState {
	c.mu.Lock()
	c.generation++
	c.busy = false
	c.engine.NewGame()
	snap, observers := c.snapshot(), c.observers
	c.mu.Unlock()

	notify(observers, snap)
	return snap
}

func (c *Controller) completeSpawn(gen int, dir Direction, move MoveResult) {
	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		return
	}
	c.spawnLocked(dir, move)
	c.busy = false
	snap, observers := c.snapshot(), c.observers
	c.mu.Unlock()

	notify(observers, snap)
}

func (c *Controller) spawnLocked(dir Direction, move MoveResult) *Tile {
	var spawned *Tile
	if tile, ok := c.engine.SpawnTile(); ok {
		spawned = &tile
	}
	c.engine.AddMoveToHistory(dir, move, spawned)
	return spawned
}

func (c *Controller) snapshot() GameState {
	return *c.engine.GetState()
}

func notify(observers []func(GameState), state GameState) {
	for _, fn := range observers {
		fn(state)
	}
}
