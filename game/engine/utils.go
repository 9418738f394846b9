package engine

import (
	"fmt"
	"strconv"
	"strings"
)

// Sum returns the total of all tile values on the board
func (b Board) Sum() int {
	total := 0
	for _, row := range b {
		for _, v := range row {
			total += v
		}
	}
	return total
}

// MaxTile returns the largest tile on the board, or 0 for an empty board
func (b Board) MaxTile() int {
	highest := 0
	for _, row := range b {
		for _, v := range row {
			if v > highest {
				highest = v
			}
		}
	}
	return highest
}

// CountTiles returns the number of occupied cells
func (b Board) CountTiles() int {
	return Size*Size - len(b.EmptyCells())
}

// Validate checks that every non-zero cell is a power of two no smaller than 2
func (b Board) Validate() error {
	for row := 0; row < Size; row++ {
		for col := 0; col < Size; col++ {
			v := b[row][col]
			if v == 0 {
				continue
			}
			if !IsPowerOfTwo(v) || v < 2 {
				return fmt.Errorf("board validation: cell (%d,%d) holds %d, not a power of two >= 2", row, col, v)
			}
		}
	}
	return nil
}

// IsPowerOfTwo reports whether v is a positive power of two
func IsPowerOfTwo(v int) bool {
	return v > 0 && v&(v-1) == 0
}

// String renders the board as four right-aligned rows, '.' for empty cells
func (b Board) String() string {
	width := len(strconv.Itoa(b.MaxTile()))
	if width < 1 {
		width = 1
	}

	var sb strings.Builder
	for row := 0; row < Size; row++ {
		for col := 0; col < Size; col++ {
			if col > 0 {
				sb.WriteByte(' ')
			}
			cell := "."
			if v := b[row][col]; v != 0 {
				cell = strconv.Itoa(v)
			}
			sb.WriteString(strings.Repeat(" ", width-len(cell)))
			sb.WriteString(cell)
		}
		if row < Size-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// Row returns a copy of the given row
func (b Board) Row(row int) [Size]int {
	return b[row]
}

// BoardFromRows builds a board from row slices; missing cells stay empty
func BoardFromRows(rows ...[]int) Board {
	var b Board
	for r := 0; r < Size && r < len(rows); r++ {
		for c := 0; c < Size && c < len(rows[r]); c++ {
			b[r][c] = rows[r][c]
		}
	}
	return b
}
