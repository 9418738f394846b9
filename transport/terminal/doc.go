// Package terminal plays a local game of 2048 in a tcell screen.
//
// The UI never touches the engine directly. Keys go to an engine.Controller
// and every state change the controller reports is posted back into the
// tcell event loop and redrawn, so spawns that land after the animation
// delay show up without polling.
//
// Keys: arrows, WASD or hjkl move; n (or r) starts a new game; q, Esc or
// Ctrl-C quits. Any other key is ignored.
package terminal
