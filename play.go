package main

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/twenty48/game/engine"
	"github.com/wricardo/twenty48/game/store"
	"github.com/wricardo/twenty48/transport/terminal"
)

// runPlay plays one terminal game against the configured score store.
// Logs are discarded unless --log-file is set, since the screen owns the tty.
func runPlay(ctx context.Context, cmd *cli.Command) error {
	opts := optionsFromCommand(cmd)

	var logOut io.Writer = io.Discard
	if opts.logFile != "" {
		f, err := openLogFile(opts.logFile)
		if err != nil {
			return err
		}
		defer f.Close()
		logOut = f
	}
	setupLogging(logOut, opts.logLevel, opts.debug)

	settings, err := loadSettings(opts)
	if err != nil {
		return err
	}

	scores, err := store.Open(settings.ScoreStore, settings.DataDir)
	if err != nil {
		return fmt.Errorf("failed to open score store: %w", err)
	}
	defer scores.Close()

	ctrl := newPlayController(opts.seed, scores, settings.SpawnDelay.Std())

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("failed to initialize screen: %w", err)
	}
	defer screen.Fini()

	log.Info().Int("best_score", ctrl.State().BestScore).Msg("terminal game started")
	return terminal.New(screen, ctrl).Run(ctx)
}

func newPlayController(seed int64, scores engine.ScoreStore, delay time.Duration) *engine.Controller {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	eng := engine.NewEngine(rand.New(rand.NewSource(seed)), scores)
	return engine.NewController(eng, delay)
}
