package solver

import "github.com/san-kum/verletsim/internal/verlet"

func (s *Solver) applyConstraints(dt float32) {
	c := &s.Config
	w, h := c.Width, c.Height
	e := c.Restitution
	sides := &c.Sides

	inject := float32(0)
	if sides.Top.Heat || sides.Bottom.Heat || sides.Left.Heat || sides.Right.Heat {
		inject = rate(c.HeatInjection, dt)
	}

	for i := range s.particles {
		p := &s.particles[i]
		r := p.Radius

		if sides.Left.Constrain && p.Pos.X < r {
			v := p.Pos.X - p.Prev.X
			p.Pos.X = r
			if sides.Left.Bounce && v < 0 {
				p.Prev.X = p.Pos.X + v*e
			}
		} else if sides.Right.Constrain && p.Pos.X > w-r {
			v := p.Pos.X - p.Prev.X
			p.Pos.X = w - r
			if sides.Right.Bounce && v > 0 {
				p.Prev.X = p.Pos.X + v*e
			}
		}

		if sides.Top.Constrain && p.Pos.Y < r {
			v := p.Pos.Y - p.Prev.Y
			p.Pos.Y = r
			if sides.Top.Bounce && v < 0 {
				p.Prev.Y = p.Pos.Y + v*e
			}
		} else if sides.Bottom.Constrain && p.Pos.Y > h-r {
			v := p.Pos.Y - p.Prev.Y
			p.Pos.Y = h - r
			if sides.Bottom.Bounce && v > 0 {
				p.Prev.Y = p.Pos.Y + v*e
			}
		}

		if inject > 0 {
			reach := r * HeatContactMargin
			if sides.Left.Heat && p.Pos.X <= reach {
				heatToward(p, sides.Left.HeatLevel, inject)
			}
			if sides.Right.Heat && w-p.Pos.X <= reach {
				heatToward(p, sides.Right.HeatLevel, inject)
			}
			if sides.Top.Heat && p.Pos.Y <= reach {
				heatToward(p, sides.Top.HeatLevel, inject)
			}
			if sides.Bottom.Heat && h-p.Pos.Y <= reach {
				heatToward(p, sides.Bottom.HeatLevel, inject)
			}
		}
	}
}

// cullOutOfBounds removes particles that left through an unconstrained side
// by more than their radius, and any with non-finite positions.
func (s *Solver) cullOutOfBounds() {
	sides := s.Config.Sides
	w, h := s.Config.Width, s.Config.Height
	s.cull(func(p *verlet.Particle) bool {
		if !p.IsFinite() {
			return true
		}
		r := p.Radius
		return (!sides.Left.Constrain && p.Pos.X < -r) ||
			(!sides.Right.Constrain && p.Pos.X > w+r) ||
			(!sides.Top.Constrain && p.Pos.Y < -r) ||
			(!sides.Bottom.Constrain && p.Pos.Y > h+r)
	})
}
