// Package verlet holds the particle state advanced by position Verlet
// integration. Velocity is never stored; it is the difference between the
// current and previous positions.
package verlet

import "github.com/san-kum/verletsim/internal/vmath"

// Particle is a simulated unit-mass circle.
type Particle struct {
	Pos         vmath.Vec2
	Prev        vmath.Vec2
	Acc         vmath.Vec2
	Radius      float32
	Temperature float32
}

// New returns a particle at rest at pos.
func New(pos vmath.Vec2, radius float32) Particle {
	return Particle{
		Pos:    pos,
		Prev:   pos,
		Radius: radius,
	}
}

// Accelerate adds a into the accumulator consumed by the next Integrate.
func (p *Particle) Accelerate(a vmath.Vec2) {
	p.Acc = p.Acc.Add(a)
}

// Integrate advances the particle by one Verlet step and clears the
// accumulator.
func (p *Particle) Integrate(dt float32) {
	vel := p.Pos.Sub(p.Prev)
	p.Prev = p.Pos
	p.Pos = p.Pos.Add(vel).Add(p.Acc.Scale(dt * dt))
	p.Acc = vmath.Zero()
}

// Velocity is the displacement over the last step.
func (p *Particle) Velocity() vmath.Vec2 {
	return p.Pos.Sub(p.Prev)
}

// SetVelocity rewrites Prev so the implied displacement equals v.
func (p *Particle) SetVelocity(v vmath.Vec2) {
	p.Prev = p.Pos.Sub(v)
}

// Stabilize drops the implied velocity.
func (p *Particle) Stabilize() {
	p.Prev = p.Pos
}

func (p *Particle) IsFinite() bool {
	return p.Pos.IsFinite() && p.Prev.IsFinite()
}
