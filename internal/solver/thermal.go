package solver

import (
	"math"

	"github.com/san-kum/verletsim/internal/verlet"
	"github.com/san-kum/verletsim/internal/vmath"
)

// BuoyancyFactor is the multiple of |gravity| that pushes a particle of
// temperature t against gravity: max(0, (t+1)^power - 1).
func BuoyancyFactor(t, power float32) float32 {
	base := float64(t) + 1
	if base < 0 {
		base = 0
	}
	f := math.Pow(base, float64(power)) - 1
	if !(f > 0) || math.IsInf(f, 0) {
		return 0
	}
	return float32(f)
}

// applyForces accumulates gravity and buoyancy and applies heat loss.
func (s *Solver) applyForces(dt float32) {
	c := &s.Config
	g := c.Gravity
	gLen := g.Len()
	buoyant := c.Buoyancy && gLen > 0
	var up vmath.Vec2
	if buoyant {
		up = g.Scale(-1 / gLen)
	}

	loss := float32(0)
	if c.HeatLoss > 0 {
		loss = rate(c.HeatLoss, dt)
	}

	for i := range s.particles {
		p := &s.particles[i]
		p.Accelerate(g)
		if buoyant {
			if f := BuoyancyFactor(p.Temperature, c.BuoyancyPower); f > 0 {
				p.Accelerate(up.Scale(gLen * f))
			}
		}
		if loss > 0 {
			p.Temperature -= p.Temperature * loss
		}
	}
}

func heatToward(p *verlet.Particle, level, k float32) {
	p.Temperature += (level - p.Temperature) * k
}
