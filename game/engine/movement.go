package engine

// offset returns the row/col step a tile takes when moving in d
func (d Direction) offset() (int, int) {
	switch d {
	case Up:
		return -1, 0
	case Down:
		return 1, 0
	case Left:
		return 0, -1
	case Right:
		return 0, 1
	}
	return 0, 0
}

// Slide shifts every tile toward the edge named by dir and merges equal
// neighbours. It reports whether anything moved and the sum of the merged
// tile values.
//
// Tiles are swept destination side first: the row or column nearest the
// target edge is resolved before the ones behind it, so a single pass is
// enough. A cell that received a merge is not merged into again during the
// same move.
func (b *Board) Slide(dir Direction) (bool, int) {
	dr, dc := dir.offset()
	if dr == 0 && dc == 0 {
		return false, 0
	}

	var merged [Size][Size]bool
	moved := false
	delta := 0

	step := func(row, col int) {
		if b[row][col] == 0 {
			return
		}
		m, d := b.moveTileTo(row, col, dr, dc, &merged)
		if m {
			moved = true
		}
		delta += d
	}

	switch dir {
	case Up:
		for col := 0; col < Size; col++ {
			for row := 1; row < Size; row++ {
				step(row, col)
			}
		}
	case Down:
		for col := 0; col < Size; col++ {
			for row := Size - 2; row >= 0; row-- {
				step(row, col)
			}
		}
	case Left:
		for row := 0; row < Size; row++ {
			for col := 1; col < Size; col++ {
				step(row, col)
			}
		}
	case Right:
		for row := 0; row < Size; row++ {
			for col := Size - 2; col >= 0; col-- {
				step(row, col)
			}
		}
	}

	return moved, delta
}

// moveTileTo steps the tile at (row,col) one cell at a time by (dr,dc)
// until it is blocked or merges.
func (b *Board) moveTileTo(row, col, dr, dc int, merged *[Size][Size]bool) (bool, int) {
	moved := false
	for {
		nr, nc := row+dr, col+dc
		if !inBounds(nr, nc) {
			return moved, 0
		}

		switch next := b[nr][nc]; {
		case next == 0:
			b[nr][nc] = b[row][col]
			b[row][col] = 0
			row, col = nr, nc
			moved = true
		// A tile merged in this move is frozen, so [2,2,4,0] moved left
		// gives [4,4,0,0] and never [8,0,0,0].
		case next == b[row][col] && !merged[nr][nc]:
			b[nr][nc] *= 2
			b[row][col] = 0
			merged[nr][nc] = true
			return true, b[nr][nc]
		default:
			return moved, 0
		}
	}
}

// IsTerminal reports whether the board is full and no two horizontally or
// vertically adjacent cells are equal, i.e. no move can change it.
func (b Board) IsTerminal() bool {
	for row := 0; row < Size; row++ {
		for col := 0; col < Size; col++ {
			v := b[row][col]
			if v == 0 {
				return false
			}
			if row < Size-1 && v == b[row+1][col] {
				return false
			}
			if col < Size-1 && v == b[row][col+1] {
				return false
			}
		}
	}
	return true
}

// CanMove reports whether sliding in dir would change the board
func (b Board) CanMove(dir Direction) bool {
	moved, _ := b.Slide(dir)
	return moved
}

// PossibleMoves returns every direction that would change the board
func (b Board) PossibleMoves() []Direction {
	var possible []Direction
	for _, dir := range Directions {
		if b.CanMove(dir) {
			possible = append(possible, dir)
		}
	}
	return possible
}

// EmptyCells returns the empty positions in row-major order
func (b Board) EmptyCells() []Position {
	var empty []Position
	for row := 0; row < Size; row++ {
		for col := 0; col < Size; col++ {
			if b[row][col] == 0 {
				empty = append(empty, Position{Row: row, Col: col})
			}
		}
	}
	return empty
}

// Spawn places a 2 (probability 0.9) or a 4 on a uniformly chosen empty
// cell. It returns false when the board is full.
func (b *Board) Spawn(rng RandomSource) (Tile, bool) {
	empty := b.EmptyCells()
	if len(empty) == 0 {
		return Tile{}, false
	}

	pos := empty[rng.Intn(len(empty))]
	value := SpawnLowValue
	if rng.Float64() >= SpawnTwoProbability {
		value = SpawnHighValue
	}

	b[pos.Row][pos.Col] = value
	return Tile{Row: pos.Row, Col: pos.Col, Value: value}, true
}

func inBounds(row, col int) bool {
	return row >= 0 && row < Size && col >= 0 && col < Size
}
