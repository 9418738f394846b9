package terminal

import (
	"fmt"
	"strconv"

	"github.com/gdamore/tcell/v2"

	"github.com/wricardo/twenty48/game/engine"
)

const (
	leftMargin = 2
	topMargin  = 1
	cellWidth  = 7
	cellHeight = 3
)

// DefStyle is the default style for tcell rendering
var DefStyle = tcell.StyleDefault.Background(tcell.ColorReset).Foreground(tcell.ColorReset)

// tileColors follows the classic palette, darkening as tiles grow
var tileColors = map[int]tcell.Color{
	0:    tcell.NewRGBColor(205, 193, 180),
	2:    tcell.NewRGBColor(238, 228, 218),
	4:    tcell.NewRGBColor(237, 224, 200),
	8:    tcell.NewRGBColor(242, 177, 121),
	16:   tcell.NewRGBColor(245, 149, 99),
	32:   tcell.NewRGBColor(246, 124, 95),
	64:   tcell.NewRGBColor(246, 94, 59),
	128:  tcell.NewRGBColor(237, 207, 114),
	256:  tcell.NewRGBColor(237, 204, 97),
	512:  tcell.NewRGBColor(237, 200, 80),
	1024: tcell.NewRGBColor(237, 197, 63),
	2048: tcell.NewRGBColor(237, 194, 46),
}

var superTileColor = tcell.NewRGBColor(60, 58, 50)

// tileStyle returns the style of a cell holding value
func tileStyle(value int) tcell.Style {
	bg, ok := tileColors[value]
	if !ok {
		bg = superTileColor
	}
	fg := tcell.NewRGBColor(249, 246, 242)
	if value <= 4 {
		fg = tcell.NewRGBColor(119, 110, 101)
	}
	return tcell.StyleDefault.Background(bg).Foreground(fg).Bold(value >= 8)
}

// drawText places text at the specified coordinates with the provided style
func drawText(s tcell.Screen, x, y int, style tcell.Style, text string) {
	for _, r := range text {
		s.SetContent(x, y, r, nil, style)
		x++
	}
}

// drawTile fills one board cell and centres its value
func drawTile(s tcell.Screen, row, col, value int) {
	style := tileStyle(value)
	x0 := leftMargin + col*cellWidth
	y0 := topMargin + 2 + row*cellHeight

	for dy := 0; dy < cellHeight; dy++ {
		for dx := 0; dx < cellWidth-1; dx++ {
			s.SetContent(x0+dx, y0+dy, ' ', nil, style)
		}
	}

	if value == 0 {
		return
	}
	label := strconv.Itoa(value)
	drawText(s, x0+(cellWidth-1-len(label))/2, y0+cellHeight/2, style, label)
}

// boardBottom is the first screen row below the grid
func boardBottom() int {
	return topMargin + 2 + engine.Size*cellHeight
}

// Draw renders state to s and shows it
func Draw(s tcell.Screen, state engine.GameState) {
	s.Clear()

	header := fmt.Sprintf("2048   Score: %d   Best: %d", state.Score, state.BestScore)
	drawText(s, leftMargin, topMargin, DefStyle.Bold(true), header)

	for row := 0; row < engine.Size; row++ {
		for col := 0; col < engine.Size; col++ {
			drawTile(s, row, col, state.Board[row][col])
		}
	}

	footer := "arrows/wasd/hjkl move   n new game   q quit"
	drawText(s, leftMargin, boardBottom()+1, DefStyle.Dim(true), footer)

	if state.GameOver {
		drawGameOver(s, state)
	}

	s.Show()
}

// drawGameOver overlays a banner across the middle of the board
func drawGameOver(s tcell.Screen, state engine.GameState) {
	style := tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite).Bold(true)
	width := engine.Size*cellWidth - 1
	y := topMargin + 2 + (engine.Size*cellHeight)/2 - 1

	lines := []string{
		"",
		"GAME OVER",
		fmt.Sprintf("Final score %d", state.Score),
		"n: new game  q: quit",
		"",
	}
	for i, line := range lines {
		for dx := 0; dx < width; dx++ {
			s.SetContent(leftMargin+dx, y+i-1, ' ', nil, style)
		}
		drawText(s, leftMargin+(width-len(line))/2, y+i-1, style, line)
	}
}
