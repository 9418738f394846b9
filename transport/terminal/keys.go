package terminal

import (
	"github.com/gdamore/tcell/v2"

	"github.com/wricardo/twenty48/game/engine"
)

// Action is what a key press asks the UI to do
type Action int

const (
	ActionNone Action = iota
	ActionMove
	ActionNewGame
	ActionQuit
)

var arrowKeys = map[tcell.Key]string{
	tcell.KeyUp:    "ArrowUp",
	tcell.KeyDown:  "ArrowDown",
	tcell.KeyLeft:  "ArrowLeft",
	tcell.KeyRight: "ArrowRight",
}

var runeKeys = map[rune]engine.Direction{
	'w': engine.Up, 'k': engine.Up,
	's': engine.Down, 'j': engine.Down,
	'a': engine.Left, 'h': engine.Left,
	'd': engine.Right, 'l': engine.Right,
}

// translateKey maps a key event to an action and, for moves, the input
// string handed to the controller. Unbound keys yield their tcell name so the
// controller can report them as ignored.
func translateKey(ev *tcell.EventKey) (Action, string) {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return ActionQuit, ""
	case tcell.KeyRune:
		r := ev.Rune()
		if r >= 'A' && r <= 'Z' {
			r += 'a' - 'A'
		}
		switch r {
		case 'q':
			return ActionQuit, ""
		case 'n', 'r':
			return ActionNewGame, ""
		}
		if dir, ok := runeKeys[r]; ok {
			return ActionMove, string(dir)
		}
		return ActionNone, string(ev.Rune())
	}

	if input, ok := arrowKeys[ev.Key()]; ok {
		return ActionMove, input
	}
	return ActionNone, ev.Name()
}
