// Command simulate plays headless 2048 games with a fixed strategy and a
// seeded random source, then prints score and max-tile statistics.
//
//	go run ./cmd/simulate --games 200 --strategy greedy --seed 1
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/twenty48/game/store"
)

func main() {
	if err := newCommand(os.Stdout).Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "simulate: %v\n", err)
		os.Exit(1)
	}
}

func newCommand(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:  "simulate",
		Usage: "Play seeded 2048 games headlessly and report statistics",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "games", Aliases: []string{"n"}, Value: 100, Usage: "number of games"},
			&cli.Int64Flag{Name: "seed", Value: 1, Usage: "random seed"},
			&cli.StringFlag{Name: "strategy", Value: "greedy", Usage: "one of " + strings.Join(StrategyNames, ", ")},
			&cli.IntFlag{Name: "max-moves", Usage: "stop each game after this many moves (0 = no limit)"},
			&cli.BoolFlag{Name: "no-color", Usage: "disable colored output"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			strategy, err := NewStrategy(cmd.String("strategy"))
			if err != nil {
				return err
			}
			games := cmd.Int("games")
			if games < 1 {
				return fmt.Errorf("games must be positive, got %d", games)
			}
			if cmd.Bool("no-color") {
				color.NoColor = true
			}

			report := Simulate(strategy, games, cmd.Int64("seed"), cmd.Int("max-moves"), store.NewMemoryStore())
			printReport(out, report)
			return nil
		},
	}
}

var (
	header    = color.New(color.FgCyan, color.Bold)
	highlight = color.New(color.FgGreen, color.Bold)
	dim       = color.New(color.Faint)
)

func printReport(w io.Writer, r *Report) {
	header.Fprintf(w, "=== %s: %d games ===\n", r.Strategy, len(r.Games))
	fmt.Fprintf(w, "Average score: %.1f\n", r.AverageScore())
	fmt.Fprintf(w, "Best score:    %s\n", highlight.Sprint(r.BestScore))
	fmt.Fprintf(w, "Average moves: %.1f\n", r.AverageMoves())

	wins := r.Wins()
	winLine := fmt.Sprintf("%d/%d (%.1f%%)", wins, len(r.Games), 100*float64(wins)/float64(len(r.Games)))
	if wins > 0 {
		winLine = highlight.Sprint(winLine)
	}
	fmt.Fprintf(w, "Reached %d:  %s\n", WinningTile, winLine)

	header.Fprintln(w, "Max tile distribution:")
	for _, tile := range r.Tiles() {
		count := r.TileCounts[tile]
		bar := strings.Repeat("#", barWidth(count, len(r.Games)))
		fmt.Fprintf(w, "  %5d  %4d  %s\n", tile, count, dim.Sprint(bar))
	}
}

func barWidth(count, total int) int {
	const width = 40
	if total == 0 || count == 0 {
		return 0
	}
	if n := count * width / total; n > 0 {
		return n
	}
	return 1
}
