package solver

import (
	"math"

	"github.com/san-kum/verletsim/internal/vmath"
)

// Below this centre distance two particles are treated as coincident and
// pushed apart along +X.
const coincidentDistance = 1e-6

var fallbackAxis = vmath.V(1, 0)

func (s *Solver) solveCollisions(dt float32) {
	s.grid.Rebuild(s.particles, s.Config.Width, s.Config.Height)
	s.heatK = 0
	if s.Config.HeatTransfer > 0 {
		s.heatK = rate(s.Config.HeatTransfer, dt)
	}
	s.grid.ForEachPair(s.pairFn)
}

// collidePair runs one relaxation step on particles i and j. Pairs are
// resolved in sequence against already-corrected positions.
func (s *Solver) collidePair(i, j int) {
	a, b := &s.particles[i], &s.particles[j]
	s.stats.PairsTested++

	delta := a.Pos.Sub(b.Pos)
	combined := a.Radius + b.Radius
	distSq := delta.LenSq()
	if distSq >= combined*combined {
		return
	}

	dist := float32(math.Sqrt(float64(distSq)))
	normal := fallbackAxis
	if dist >= coincidentDistance {
		normal = delta.Div(dist)
	} else {
		dist = 0
	}
	pen := combined - dist
	corr := normal.Scale(0.5 * pen)
	a.Pos = a.Pos.Add(corr)
	b.Pos = b.Pos.Sub(corr)

	s.stats.Collisions++
	if pen > s.stats.MaxPenetration {
		s.stats.MaxPenetration = pen
	}

	if s.heatK > 0 {
		d := (a.Temperature - b.Temperature) * s.heatK * 0.5
		a.Temperature -= d
		b.Temperature += d
	}
}

// rate turns a per-second coefficient into a per-step fraction in [0, 1].
func rate(perSecond, dt float32) float32 {
	k := perSecond * dt
	if k > 1 {
		return 1
	}
	if k < 0 {
		return 0
	}
	return k
}
