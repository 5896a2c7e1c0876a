package viz

import (
	"strings"

	"github.com/san-kum/isingsim/internal/ising"
)

const brailleBase = 0x2800

// Braille cells hold a 2x4 block of dots:
//
//	1 4
//	2 5
//	3 6
//	7 8
var dotBits = [4][2]rune{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

// Canvas is a grid of braille cells addressed in dot coordinates, so a
// Width×Height canvas has (2·Width)×(4·Height) dots.
type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{Width: w, Height: h, Grid: make([][]rune, h)}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

// Set lights the dot at (x, y); out-of-range dots are ignored.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 || x/2 >= c.Width || y/4 >= c.Height {
		return
	}
	c.Grid[y/4][x/2] |= dotBits[y%4][x%2]
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = brailleBase
		}
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row))
		b.WriteByte('\n')
	}
	return b.String()
}

// SpinCanvas draws one dot per up spin. Row i of the lattice is dot row i.
func SpinCanvas(lat *ising.Lattice) *Canvas {
	c := NewCanvas((lat.Cols()+1)/2, (lat.Rows()+3)/4)
	for i := 0; i < lat.Rows(); i++ {
		for j := 0; j < lat.Cols(); j++ {
			if lat.Spin(i, j) > 0 {
				c.Set(j, i)
			}
		}
	}
	return c
}
