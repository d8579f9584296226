package solver

import (
	"github.com/san-kum/verletsim/internal/verlet"
	"github.com/san-kum/verletsim/internal/vmath"
)

// Spawn appends a particle at rest at pos. A non-positive radius falls back
// to the configured spawn radius.
func (s *Solver) Spawn(pos vmath.Vec2, radius float32) {
	if !(radius > 0) {
		radius = s.Config.SpawnRadius
	}
	s.particles = append(s.particles, verlet.New(pos, radius))
}

// SpawnBatch adds exactly n particles of the configured spawn radius at
// random positions, retrying each placement until it clears its neighbours
// or the retry budget runs out. It returns how many placements were clear.
func (s *Solver) SpawnBatch(n int) int {
	if n <= 0 {
		return 0
	}
	c := &s.Config
	if c.StabilizeOnSpawn {
		s.Stabilize()
	}

	r := c.SpawnRadius
	iters := c.SpawnSafetyIterations
	if iters < 1 {
		iters = 1
	}

	clean := 0
	for k := 0; k < n; k++ {
		var pos vmath.Vec2
		ok := false
		for attempt := 0; attempt < iters; attempt++ {
			pos = vmath.V(s.sample(r, c.Width), s.sample(r, c.Height))
			if s.clearOf(pos, r, c.SpawnSafetyFactor) {
				ok = true
				break
			}
		}
		if ok {
			clean++
		}
		s.particles = append(s.particles, verlet.New(pos, r))
	}

	if clean < n {
		s.log.Debug("safe spawn placement exhausted", "requested", n, "overlapping", n-clean, "iterations", iters)
	}
	return clean
}

// sample draws a coordinate in [r, extent-r], or the midpoint when the
// extent is too narrow.
func (s *Solver) sample(r, extent float32) float32 {
	lo, hi := r, extent-r
	if hi <= lo {
		return extent / 2
	}
	return lo + s.rng.Float32()*(hi-lo)
}

func (s *Solver) clearOf(pos vmath.Vec2, r, factor float32) bool {
	if factor <= 0 {
		return true
	}
	for i := range s.particles {
		o := &s.particles[i]
		min := (r + o.Radius) * factor
		if pos.Sub(o.Pos).LenSq() < min*min {
			return false
		}
	}
	return true
}

// Remove deletes the particle at index i. Out-of-range indices are ignored.
func (s *Solver) Remove(i int) bool {
	if i < 0 || i >= len(s.particles) {
		return false
	}
	last := len(s.particles) - 1
	copy(s.particles[i:], s.particles[i+1:])
	s.particles[last] = verlet.Particle{}
	s.particles = s.particles[:last]
	return true
}

// RemoveNear deletes every particle whose centre lies closer to pos than
// its own radius.
func (s *Solver) RemoveNear(pos vmath.Vec2) int {
	return s.removeWhere(func(p *verlet.Particle) bool {
		return pos.Sub(p.Pos).LenSq() < p.Radius*p.Radius
	})
}

// RemoveBatch deletes the n oldest particles.
func (s *Solver) RemoveBatch(n int) int {
	if n <= 0 {
		return 0
	}
	if n > len(s.particles) {
		n = len(s.particles)
	}
	remaining := copy(s.particles, s.particles[n:])
	clear(s.particles[remaining:])
	s.particles = s.particles[:remaining]
	return n
}

func (s *Solver) Clear() {
	clear(s.particles)
	s.particles = s.particles[:0]
}

// EnforcePopulationBounds tops the population up to the minimum or trims
// it down to the maximum, when enforcement is on.
func (s *Solver) EnforcePopulationBounds() {
	c := &s.Config
	n := len(s.particles)
	switch {
	case c.EnforceMin && n < c.MinParticles:
		deficit := c.MinParticles - n
		s.SpawnBatch(deficit)
		s.stats.Spawned += deficit
	case c.EnforceMax && n > c.MaxParticles:
		s.stats.Removed += s.RemoveBatch(n - c.MaxParticles)
	}
}
