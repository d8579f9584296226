// Package grid implements the uniform-cell broad phase used to limit
// collision candidates to particles in the same or adjacent cells.
//
// The grid stores particle indices, never pointers, and is rebuilt from
// scratch every pass. Bucket storage is a high-water mark: it grows when a
// larger extent is needed and is otherwise reused, so steady-state rebuilds
// do not allocate.
package grid

import (
	"math"

	"github.com/san-kum/verletsim/internal/verlet"
)

const (
	// CellFactor scales the largest particle radius into the cell size.
	CellFactor = 4

	// MaxCells bounds cols*rows. Extents that would need more cells get
	// coarser cells instead.
	MaxCells = 1 << 20
)

// Grid buckets particle indices by cell.
type Grid struct {
	cellSize   float32
	cols, rows int
	cells      [][]int // row-major, len(cells) >= cols*rows
}

// Info is a diagnostic snapshot of the grid shape.
type Info struct {
	CellSize float32 `json:"cell_size"`
	Cols     int     `json:"cols"`
	Rows     int     `json:"rows"`
	Capacity int     `json:"capacity"`
}

func New() *Grid {
	return &Grid{}
}

func (g *Grid) CellSize() float32 { return g.cellSize }
func (g *Grid) Cols() int         { return g.cols }
func (g *Grid) Rows() int         { return g.rows }

// Capacity is the number of allocated buckets. It never decreases.
func (g *Grid) Capacity() int { return len(g.cells) }

func (g *Grid) Info() Info {
	return Info{CellSize: g.cellSize, Cols: g.cols, Rows: g.rows, Capacity: len(g.cells)}
}

// Rebuild buckets every particle of ps over a width x height extent.
// Particles whose cell falls outside the grid are skipped.
func (g *Grid) Rebuild(ps []verlet.Particle, width, height float32) {
	var maxRadius float32
	for i := range ps {
		if ps[i].Radius > maxRadius {
			maxRadius = ps[i].Radius
		}
	}
	if maxRadius <= 0 || !(width > 0) || !(height > 0) || math.IsInf(float64(width)*float64(height), 0) {
		g.cols, g.rows = 0, 0
		return
	}

	g.cellSize = maxRadius * CellFactor
	if need := float64(width/g.cellSize) * float64(height/g.cellSize); need > MaxCells {
		g.cellSize *= float32(math.Sqrt(need / MaxCells))
	}
	g.cols = dim(width, g.cellSize)
	g.rows = dim(height, g.cellSize)
	for g.cols*g.rows > MaxCells {
		g.cellSize *= 1.05
		g.cols = dim(width, g.cellSize)
		g.rows = dim(height, g.cellSize)
	}

	n := g.cols * g.rows
	if n > len(g.cells) {
		if n <= cap(g.cells) {
			g.cells = g.cells[:n]
		} else {
			grown := make([][]int, n)
			copy(grown, g.cells)
			g.cells = grown
		}
	}
	for i := 0; i < n; i++ {
		g.cells[i] = g.cells[i][:0]
	}

	inv := 1 / g.cellSize
	for i := range ps {
		p := ps[i].Pos
		cx := floorInt(p.X * inv)
		cy := floorInt(p.Y * inv)
		if cx < 0 || cx >= g.cols || cy < 0 || cy >= g.rows {
			continue
		}
		idx := cy*g.cols + cx
		g.cells[idx] = append(g.cells[idx], i)
	}
}

// ForEachPair calls fn once for every unordered pair of particle indices that
// share a cell or sit in adjacent cells. Pairs inside a cell are emitted in
// bucket order; a neighbouring cell is only paired with cells of a smaller
// flat index so no pair is emitted twice.
func (g *Grid) ForEachPair(fn func(i, j int)) {
	for cy := 0; cy < g.rows; cy++ {
		for cx := 0; cx < g.cols; cx++ {
			idx := cy*g.cols + cx
			bucket := g.cells[idx]
			if len(bucket) == 0 {
				continue
			}
			for dy := -1; dy <= 1; dy++ {
				ny := cy + dy
				if ny < 0 || ny >= g.rows {
					continue
				}
				for dx := -1; dx <= 1; dx++ {
					nx := cx + dx
					if nx < 0 || nx >= g.cols {
						continue
					}
					nidx := ny*g.cols + nx
					switch {
					case nidx == idx:
						for a := 0; a < len(bucket); a++ {
							for b := a + 1; b < len(bucket); b++ {
								fn(bucket[a], bucket[b])
							}
						}
					case nidx > idx:
						for _, i := range bucket {
							for _, j := range g.cells[nidx] {
								fn(i, j)
							}
						}
					}
				}
			}
		}
	}
}

// Bucket returns the indices stored at cell (cx, cy), or nil when out of range.
func (g *Grid) Bucket(cx, cy int) []int {
	if cx < 0 || cx >= g.cols || cy < 0 || cy >= g.rows {
		return nil
	}
	return g.cells[cy*g.cols+cx]
}

func dim(extent, cell float32) int {
	x := math.Ceil(float64(extent) / float64(cell))
	if !(x >= 1) {
		return 1
	}
	if x > MaxCells {
		return MaxCells
	}
	return int(x)
}

func floorInt(f float32) int {
	x := math.Floor(float64(f))
	if math.IsNaN(x) || x < math.MinInt32 || x > math.MaxInt32 {
		return -1
	}
	return int(x)
}
