// Command validate checks persisted 2048 session files. It checks:
//   - JSON structure and the session id against the file name
//   - Board cells are empty or powers of two >= 2
//   - Score and best score are non-negative, with best >= score
//   - The game over flag and max tile agree with the board
//   - Move history is numbered 1..n and its score deltas add up to the score
//
// Usage: validate [sessions-dir]   (default ../data/sessions)
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"

	"github.com/wricardo/twenty48/game/engine"
	"github.com/wricardo/twenty48/game/session"
)

const defaultSessionsDir = "../data/sessions"

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

func (r *ValidationResult) fail(format string, args ...any) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *ValidationResult) info(format string, args ...any) {
	r.Errors = append(r.Errors, "✓ "+fmt.Sprintf(format, args...))
}

// validateSession loads and validates a single persisted session file
func validateSession(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	var persisted session.PersistedSessionData
	if err := json.Unmarshal(data, &persisted); err != nil {
		result.fail("Invalid JSON: %v", err)
		return result
	}

	if persisted.ID == "" {
		result.fail("Missing session id")
	} else if want := strings.ToLower(persisted.ID) + ".json"; want != result.File {
		result.fail("Session id %q does not match file name (expected %s)", persisted.ID, want)
	}

	if !persisted.CreatedAt.IsZero() && persisted.LastAccessedAt.Before(persisted.CreatedAt) {
		result.fail("last_accessed_at is before created_at")
	}

	state := persisted.GameState
	if state == nil {
		result.fail("Missing game_state")
		return result
	}

	if err := engine.ValidateGameState(state); err != nil {
		result.fail("%v", err)
		return result
	}

	if state.BestScore < state.Score {
		result.fail("best_score %d is below score %d", state.BestScore, state.Score)
	}
	if state.Score%4 != 0 {
		result.fail("score %d is not a sum of merges", state.Score)
	}

	terminal := state.Board.IsTerminal()
	if state.GameOver != terminal {
		result.fail("game_over is %v but the board says %v", state.GameOver, terminal)
	}
	if top := state.Board.MaxTile(); state.MaxTile != top {
		result.fail("max_tile is %d but the board holds %d", state.MaxTile, top)
	}

	if spawn := state.LastSpawn; spawn != nil {
		if spawn.Value != 2 && spawn.Value != 4 {
			result.fail("last_spawn value %d is not 2 or 4", spawn.Value)
		}
		if spawn.Row < 0 || spawn.Row >= engine.Size || spawn.Col < 0 || spawn.Col >= engine.Size {
			result.fail("last_spawn (%d,%d) is off the board", spawn.Row, spawn.Col)
		}
	}

	validateHistory(state, &result)

	if result.Valid {
		result.info("Score %d, best %d, max tile %d", state.Score, state.BestScore, state.MaxTile)
		result.info("%d moves, %d tiles on the board", state.TotalMoves, state.Board.CountTiles())
	}
	return result
}

// validateHistory checks move numbering and, for a complete history, that
// the recorded deltas add up to the score.
func validateHistory(state *engine.GameState, result *ValidationResult) {
	history := state.MoveHistory
	if len(history) == 0 {
		return
	}

	sum := 0
	for i, entry := range history {
		if i > 0 && entry.MoveNumber != history[i-1].MoveNumber+1 {
			result.fail("move %d follows move %d", entry.MoveNumber, history[i-1].MoveNumber)
			return
		}
		if !entry.Action.Valid() {
			result.fail("move %d has unknown action %q", entry.MoveNumber, entry.Action)
		}
		if !entry.Moved && entry.ScoreDelta != 0 {
			result.fail("move %d did not move but scored %d", entry.MoveNumber, entry.ScoreDelta)
		}
		sum += entry.ScoreDelta
	}

	last := history[len(history)-1]
	if last.MoveNumber != state.TotalMoves {
		result.fail("last move is %d but total_moves is %d", last.MoveNumber, state.TotalMoves)
	}
	if last.Score != state.Score {
		result.fail("last move recorded score %d but score is %d", last.Score, state.Score)
	}
	if history[0].MoveNumber == 1 && sum != state.Score {
		result.fail("history deltas add up to %d but score is %d", sum, state.Score)
	}
}

// main scans the sessions directory for *.json files and validates each one,
// printing a concise report and exiting with non-zero status if any are invalid.
func main() {
	sessionsDir := defaultSessionsDir
	if len(os.Args) > 1 {
		sessionsDir = os.Args[1]
	}

	files, err := filepath.Glob(filepath.Join(sessionsDir, "*.json"))
	if err != nil {
		fmt.Printf("Error finding session files: %v\n", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Printf("No session files found in %s\n", sessionsDir)
		return
	}

	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()

	allValid := true
	for _, file := range files {
		result := validateSession(file)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println(green("✅ VALID"))
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println(red("❌ INVALID"))
			allValid = false
			for _, err := range result.Errors {
				if !strings.HasPrefix(err, "✓") {
					fmt.Println("  ❌ " + err)
				}
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println(green("✅ All sessions are valid!"))
	} else {
		fmt.Println(red("❌ Some sessions have errors"))
		os.Exit(1)
	}
}
