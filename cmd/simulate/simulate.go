package main

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"

	"github.com/wricardo/twenty48/game/engine"
)

// WinningTile is the tile that counts a game as won in the report
const WinningTile = 2048

// Strategy picks the next direction for a board that still has a move
type Strategy interface {
	Name() string
	Next(b engine.Board, rng *rand.Rand) engine.Direction
}

// RandomStrategy plays a uniformly random legal move
type RandomStrategy struct{}

func (RandomStrategy) Name() string { return "random" }

func (RandomStrategy) Next(b engine.Board, rng *rand.Rand) engine.Direction {
	moves := b.PossibleMoves()
	return moves[rng.Intn(len(moves))]
}

// CornerStrategy keeps large tiles in the bottom-left corner by always taking
// the first legal move in a fixed preference order.
type CornerStrategy struct{}

var cornerOrder = []engine.Direction{engine.Down, engine.Left, engine.Right, engine.Up}

func (CornerStrategy) Name() string { return "corner" }

func (CornerStrategy) Next(b engine.Board, _ *rand.Rand) engine.Direction {
	return firstLegal(b, cornerOrder)
}

// GreedyStrategy takes the move with the largest immediate score, then the
// one leaving the most empty cells.
type GreedyStrategy struct{}

func (GreedyStrategy) Name() string { return "greedy" }

func (GreedyStrategy) Next(b engine.Board, _ *rand.Rand) engine.Direction {
	best := engine.Direction("")
	bestDelta, bestEmpty := -1, -1

	for _, dir := range cornerOrder {
		next := b
		moved, delta := next.Slide(dir)
		if !moved {
			continue
		}
		empty := len(next.EmptyCells())
		if delta > bestDelta || (delta == bestDelta && empty > bestEmpty) {
			best, bestDelta, bestEmpty = dir, delta, empty
		}
	}
	return best
}

// CycleStrategy rotates through the directions, skipping blocked ones
type CycleStrategy struct {
	next int
}

func (*CycleStrategy) Name() string { return "cycle" }

func (c *CycleStrategy) Next(b engine.Board, _ *rand.Rand) engine.Direction {
	for i := 0; i < len(engine.Directions); i++ {
		dir := engine.Directions[(c.next+i)%len(engine.Directions)]
		if b.CanMove(dir) {
			c.next = (c.next + i + 1) % len(engine.Directions)
			return dir
		}
	}
	return ""
}

func firstLegal(b engine.Board, order []engine.Direction) engine.Direction {
	for _, dir := range order {
		if b.CanMove(dir) {
			return dir
		}
	}
	return ""
}

// StrategyNames lists the strategies accepted by NewStrategy
var StrategyNames = []string{"random", "corner", "greedy", "cycle"}

// NewStrategy returns the strategy called name
func NewStrategy(name string) (Strategy, error) {
	switch strings.ToLower(name) {
	case "random":
		return RandomStrategy{}, nil
	case "corner":
		return CornerStrategy{}, nil
	case "greedy":
		return GreedyStrategy{}, nil
	case "cycle":
		return &CycleStrategy{}, nil
	default:
		return nil, fmt.Errorf("unknown strategy %q (want one of %s)", name, strings.Join(StrategyNames, ", "))
	}
}

// GameResult is the outcome of one simulated game
type GameResult struct {
	Score   int
	MaxTile int
	Moves   int
}

// Report aggregates a batch of games
type Report struct {
	Strategy  string
	Games     []GameResult
	BestScore int
	// TileCounts maps a max tile to how many games ended with it
	TileCounts map[int]int
}

// AverageScore is the mean final score
func (r *Report) AverageScore() float64 {
	if len(r.Games) == 0 {
		return 0
	}
	total := 0
	for _, g := range r.Games {
		total += g.Score
	}
	return float64(total) / float64(len(r.Games))
}

// AverageMoves is the mean number of moves per game
func (r *Report) AverageMoves() float64 {
	if len(r.Games) == 0 {
		return 0
	}
	total := 0
	for _, g := range r.Games {
		total += g.Moves
	}
	return float64(total) / float64(len(r.Games))
}

// Wins counts games that reached WinningTile
func (r *Report) Wins() int {
	wins := 0
	for _, g := range r.Games {
		if g.MaxTile >= WinningTile {
			wins++
		}
	}
	return wins
}

// Tiles returns the max tiles seen, largest first
func (r *Report) Tiles() []int {
	tiles := make([]int, 0, len(r.TileCounts))
	for tile := range r.TileCounts {
		tiles = append(tiles, tile)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(tiles)))
	return tiles
}

// Simulate plays games with strategy from one seeded source. A game stops at
// a terminal board or after maxMoves moves when maxMoves is positive. The
// best score carries over between games through a shared score store.
func Simulate(strategy Strategy, games int, seed int64, maxMoves int, scores engine.ScoreStore) *Report {
	rng := rand.New(rand.NewSource(seed))
	eng := engine.NewEngine(rng, scores)

	report := &Report{
		Strategy:   strategy.Name(),
		TileCounts: make(map[int]int),
	}

	for i := 0; i < games; i++ {
		if i > 0 {
			eng.NewGame()
		}

		for !eng.IsTerminal() && (maxMoves <= 0 || eng.TotalMoves() < maxMoves) {
			dir := strategy.Next(eng.Board(), rng)
			if dir == "" {
				break
			}
			eng.Move(dir)
		}

		state := eng.GetState()
		result := GameResult{Score: state.Score, MaxTile: state.MaxTile, Moves: state.TotalMoves}
		report.Games = append(report.Games, result)
		report.TileCounts[result.MaxTile]++
	}

	report.BestScore = eng.BestScore()
	return report
}
