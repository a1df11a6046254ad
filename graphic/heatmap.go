package graphic

import (
	"math"

	"github.com/nsf/termbox-go"
)

// HalfBlock draws two pixels in one cell: the foreground colour is the upper
// pixel, the background colour the lower one.
const HalfBlock rune = '▀'

// Shades for terminals without 256 colours, dark to light.
var shadeRunes = [...]rune{' ', '░', '▒', '▓', '█'}

// Pane is a square region of the terminal holding one heatmap.
type Pane struct {
	X, Y int // top left cell
	Side int // pixels per side; rows use Side/2 cells
}

// Layout splits a width × height terminal into a title row and two square
// panes side by side, separated by gap columns.
func Layout(width, height, gap int) (Pane, Pane) {
	if width < 0 {
		width = 0
	}

	// title row
	height--

	paneWidth := (width - gap) / 2
	if paneWidth < 0 {
		paneWidth = 0
	}

	side := paneWidth
	if h := height * 2; h < side {
		side = h
	}

	if side < 0 {
		side = 0
	}

	// even, so every cell holds exactly two pixels
	side &^= 1

	left := Pane{X: 0, Y: 1, Side: side}
	right := Pane{X: paneWidth + gap, Y: 1, Side: side}

	return left, right
}

// Resample maps a size × size image onto a side × side pixel grid by
// nearest neighbour. dst is reused when large enough.
func Resample(dst, src []float64, size, side int) []float64 {
	n := side * side
	if cap(dst) < n {
		dst = make([]float64, n)
	}
	dst = dst[:n]

	if size == 0 {
		clear(dst)
		return dst
	}

	for y := 0; y < side; y++ {
		sy := y * size / side

		for x := 0; x < side; x++ {
			sx := x * size / side
			dst[y*side+x] = src[sy*size+sx]
		}
	}

	return dst
}

// Level maps v onto [0, 1] between low and high.
func Level(v, low, high float64) float64 {
	if high <= low || math.IsNaN(v) {
		return 0
	}

	l := (v - low) / (high - low)

	switch {
	case l < 0:
		return 0
	case l > 1:
		return 1
	}

	return l
}

// HotColor returns the 256-colour attribute of level l on a black, red,
// yellow, white ramp.
func HotColor(l float64) termbox.Attribute {
	r := channel(3 * l)
	g := channel(3*l - 1)
	b := channel(3*l - 2)

	// xterm colour cube starts at 16, termbox attributes are offset by one
	return termbox.Attribute(16+36*r+6*g+b) + 1
}

// ShadeRune returns a block character for level l.
func ShadeRune(l float64) rune {
	i := int(l * float64(len(shadeRunes)))
	if i >= len(shadeRunes) {
		i = len(shadeRunes) - 1
	}
	if i < 0 {
		i = 0
	}
	return shadeRunes[i]
}

func channel(v float64) int {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 5
	}
	return int(math.Round(v * 5))
}

// drawPane paints side × side pixels of levels into p.
func drawPane(p Pane, levels []float64, color bool) {
	for row := 0; row < p.Side/2; row++ {
		top := levels[(2*row)*p.Side : (2*row+1)*p.Side]
		bottom := levels[(2*row+1)*p.Side : (2*row+2)*p.Side]

		for x := 0; x < p.Side; x++ {
			if color {
				termbox.SetCell(p.X+x, p.Y+row, HalfBlock, HotColor(top[x]), HotColor(bottom[x]))
				continue
			}

			l := (top[x] + bottom[x]) / 2
			termbox.SetCell(p.X+x, p.Y+row, ShadeRune(l), termbox.ColorDefault, termbox.ColorDefault)
		}
	}
}

func drawText(x, y int, text string, fg termbox.Attribute) {
	for _, r := range text {
		termbox.SetCell(x, y, r, fg, termbox.ColorDefault)
		x++
	}
}
