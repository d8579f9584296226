package viz

import (
	"math"
	"strings"

	"github.com/san-kum/verletsim/internal/verlet"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const blank = rune(0x2800)

// Canvas is a braille dot matrix. Each cell also remembers the hottest
// particle drawn into it so the view can colour cells by temperature.
type Canvas struct {
	Width, Height int
	Grid          [][]rune
	Heat          [][]float32
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
		Heat:   make([][]float32, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
		c.Heat[i] = make([]float32, w)
	}
	c.Clear()
	return c
}

// DotsX and DotsY give the canvas size in sub-pixels.
func (c *Canvas) DotsX() int { return c.Width * 2 }
func (c *Canvas) DotsY() int { return c.Height * 4 }

// Set lights the dot at (x, y) in sub-pixel coordinates.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
}

// SetHot lights a dot and raises the cell temperature to t.
func (c *Canvas) SetHot(x, y int, t float32) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
	if t > c.Heat[row][col] {
		c.Heat[row][col] = t
	}
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = blank
			c.Heat[i][j] = 0
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
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

// FillDisc fills every dot within r of (cx, cy). A disc smaller than a dot
// still lights its centre.
func (c *Canvas) FillDisc(cx, cy, r int, t float32) {
	if r <= 0 {
		c.SetHot(cx, cy, t)
		return
	}
	rr := r * r
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx*dx+dy*dy <= rr {
				c.SetHot(cx+dx, cy+dy, t)
			}
		}
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

// Viewport maps world coordinates onto canvas dots, preserving aspect.
// World y grows downward, as does the canvas.
type Viewport struct {
	Scale            float64
	OffsetX, OffsetY float64
}

// Fit scales a w x h world into the canvas with a margin of one dot.
func Fit(c *Canvas, w, h float32) Viewport {
	dw, dh := float64(c.DotsX()-2), float64(c.DotsY()-2)
	if w <= 0 || h <= 0 || dw <= 0 || dh <= 0 {
		return Viewport{Scale: 1}
	}
	s := math.Min(dw/float64(w), dh/float64(h))
	return Viewport{
		Scale:   s,
		OffsetX: 1 + (dw-float64(w)*s)/2,
		OffsetY: 1 + (dh-float64(h)*s)/2,
	}
}

func (v Viewport) Project(x, y float32) (int, int) {
	return int(math.Round(v.OffsetX + float64(x)*v.Scale)),
		int(math.Round(v.OffsetY + float64(y)*v.Scale))
}

// DrawBounds outlines the world rectangle. Open sides are skipped.
func (c *Canvas) DrawBounds(v Viewport, w, h float32, left, right, top, bottom bool) {
	x0, y0 := v.Project(0, 0)
	x1, y1 := v.Project(w, h)
	if top {
		c.DrawLine(x0, y0, x1, y0)
	}
	if bottom {
		c.DrawLine(x0, y1, x1, y1)
	}
	if left {
		c.DrawLine(x0, y0, x0, y1)
	}
	if right {
		c.DrawLine(x1, y0, x1, y1)
	}
}

// PlotParticles draws each particle as a filled disc.
func (c *Canvas) PlotParticles(v Viewport, ps []verlet.Particle) {
	for i := range ps {
		p := &ps[i]
		x, y := v.Project(p.Pos.X, p.Pos.Y)
		r := int(float64(p.Radius) * v.Scale)
		c.FillDisc(x, y, r, p.Temperature)
	}
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
