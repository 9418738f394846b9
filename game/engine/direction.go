package engine

import (
	"fmt"
	"strings"
)

// ParseDirection maps user input to a Direction. It accepts the direction
// names in any case and the browser key names ArrowUp, ArrowDown, ArrowLeft
// and ArrowRight. Anything else is reported as not a direction.
func ParseDirection(input string) (Direction, bool) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "up", "arrowup":
		return Up, true
	case "down", "arrowdown":
		return Down, true
	case "left", "arrowleft":
		return Left, true
	case "right", "arrowright":
		return Right, true
	}
	return "", false
}

// Valid reports whether d is one of the four directions
func (d Direction) Valid() bool {
	switch d {
	case Up, Down, Left, Right:
		return true
	}
	return false
}

func (d Direction) String() string {
	return string(d)
}

// ValidateGameState checks a restored state for the board invariants
func ValidateGameState(state *GameState) error {
	if state == nil {
		return fmt.Errorf("state cannot be nil")
	}
	if err := state.Board.Validate(); err != nil {
		return err
	}
	if state.Score < 0 {
		return fmt.Errorf("state validation: score must be non-negative, got %d", state.Score)
	}
	if state.BestScore < 0 {
		return fmt.Errorf("state validation: best_score must be non-negative, got %d", state.BestScore)
	}
	if state.TotalMoves < 0 {
		return fmt.Errorf("state validation: total_moves must be non-negative, got %d", state.TotalMoves)
	}
	return nil
}
