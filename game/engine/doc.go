// Package engine provides the board engine for the 2048 sliding-tile game.
//
// The engine package implements the game mechanics including:
//   - The 4x4 board and the sweep/merge move algorithm
//   - Random tile spawning (a 2 nine times out of ten, otherwise a 4)
//   - Terminal-state detection
//   - Score and best-score bookkeeping
//
// Core Types:
//
// Board is a plain [4][4]int value, so copies are cheap and comparable.
// GameEngine owns one game's state and implements the Engine interface.
// Controller wraps a GameEngine with the busy/idle input guard used by
// front ends that animate between a move and its spawn.
//
// Usage:
//
//	rng := rand.New(rand.NewSource(42))
//	eng := engine.NewEngine(rng, store.NewMemoryStore())
//
//	result := eng.ApplyMove(engine.Left)
//	if result.Moved {
//		eng.SpawnTile()
//	}
//	if eng.IsTerminal() {
//		fmt.Println("game over, score", eng.Score())
//	}
//
// Move Rules:
//
// Tiles are swept starting with the ones closest to the destination edge.
// Each tile slides until it hits the edge or a different tile, or until it
// merges with an equal tile. A merge doubles the target, adds the new value
// to the score and ends that tile's slide; a merged tile does not merge
// again in the same move.
package engine
