package viz

import "strings"

// Braille cell layout, dots addressed as 2 columns x 4 rows:
//
//	1 4
//	2 5
//	3 6
//	7 8
//
// Unicode braille block starts at 0x2800.
const brailleBase = 0x2800

var dotBits = [4][2]rune{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

// Canvas is a braille pixel buffer. A canvas of W x H characters exposes
// a drawing surface of W*2 x H*4 pixels.
type Canvas struct {
	cols, rows int
	cells      []rune
}

func NewCanvas(cols, rows int) *Canvas {
	c := &Canvas{cols: cols, rows: rows, cells: make([]rune, cols*rows)}
	c.Clear()
	return c
}

// PixelWidth and PixelHeight report the drawable surface in pixels.
func (c *Canvas) PixelWidth() int  { return c.cols * 2 }
func (c *Canvas) PixelHeight() int { return c.rows * 4 }

// Rune returns the braille character at a cell position.
func (c *Canvas) Rune(row, col int) rune { return c.cells[row*c.cols+col] }

func (c *Canvas) Clear() {
	for i := range c.cells {
		c.cells[i] = brailleBase
	}
}

// Set lights the pixel at (x, y). Out-of-range pixels are ignored.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 || x >= c.cols*2 || y >= c.rows*4 {
		return
	}
	c.cells[(y/4)*c.cols+x/2] |= dotBits[y%4][x%2]
}

// Unset darkens the pixel at (x, y).
func (c *Canvas) Unset(x, y int) {
	if x < 0 || y < 0 || x >= c.cols*2 || y >= c.rows*4 {
		return
	}
	c.cells[(y/4)*c.cols+x/2] &^= dotBits[y%4][x%2]
}

// Line draws from (x0, y0) to (x1, y1) with Bresenham stepping.
func (c *Canvas) Line(x0, y0, x1, y1 int) {
	dx, dy := absInt(x1-x0), absInt(y1-y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx - dy
	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// Box fills the pixel rectangle between the two corners, inclusive.
func (c *Canvas) Box(x0, y0, x1, y1 int) {
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			c.Set(x, y)
		}
	}
}

// VLine draws a vertical pixel line.
func (c *Canvas) VLine(x, y0, y1 int) { c.Line(x, y0, x, y1) }

func (c *Canvas) String() string {
	var b strings.Builder
	b.Grow((c.cols*3 + 1) * c.rows)
	for r := 0; r < c.rows; r++ {
		b.WriteString(string(c.cells[r*c.cols : (r+1)*c.cols]))
		b.WriteByte('\n')
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
