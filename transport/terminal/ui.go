package terminal

import (
	"context"

	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog/log"

	"github.com/wricardo/twenty48/game/engine"
)

// UI plays one game in a terminal. The controller is the only writer of the
// game; the UI redraws whenever the controller reports a change.
type UI struct {
	screen tcell.Screen
	ctrl   *engine.Controller
}

// stateEvent carries a controller snapshot into the event loop
type stateEvent struct {
	*tcell.EventInterrupt
	state engine.GameState
}

// New binds ctrl to an initialised screen
func New(screen tcell.Screen, ctrl *engine.Controller) *UI {
	ui := &UI{screen: screen, ctrl: ctrl}
	ctrl.OnChange(func(state engine.GameState) {
		// Spawns land on a timer goroutine; hand them to the event loop
		if err := screen.PostEvent(&stateEvent{EventInterrupt: tcell.NewEventInterrupt(nil), state: state}); err != nil {
			log.Debug().Err(err).Msg("dropped redraw, event queue full")
		}
	})
	return ui
}

// Run draws the current game and processes input until the player quits or
// ctx is cancelled.
func (ui *UI) Run(ctx context.Context) error {
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			ui.screen.PostEvent(tcell.NewEventInterrupt(ctx.Err()))
		case <-stop:
		}
	}()

	Draw(ui.screen, ui.ctrl.State())

	for {
		switch ev := ui.screen.PollEvent().(type) {
		case nil:
			return nil

		case *tcell.EventResize:
			ui.screen.Sync()
			Draw(ui.screen, ui.ctrl.State())

		case *stateEvent:
			Draw(ui.screen, ev.state)

		case *tcell.EventInterrupt:
			if ctx.Err() != nil {
				return nil
			}

		case *tcell.EventKey:
			if quit := ui.handleKey(ev); quit {
				return nil
			}
		}
	}
}

func (ui *UI) handleKey(ev *tcell.EventKey) bool {
	action, input := translateKey(ev)

	switch action {
	case ActionQuit:
		return true
	case ActionNewGame:
		ui.ctrl.NewGame()
	default:
		res := ui.ctrl.HandleInput(input)
		if res.Ignored {
			log.Debug().Str("input", input).Str("reason", res.Reason).Msg("input ignored")
			return false
		}
		log.Debug().
			Str("direction", string(res.Direction)).
			Bool("moved", res.Move.Moved).
			Int("score_delta", res.Move.ScoreDelta).
			Bool("game_over", res.GameOver).
			Msg("move")
	}
	return false
}
