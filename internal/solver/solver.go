package solver

import (
	"log/slog"
	"math"
	"math/rand"

	"github.com/san-kum/verletsim/internal/grid"
	"github.com/san-kum/verletsim/internal/verlet"
	"github.com/san-kum/verletsim/internal/vmath"
)

// Stats describes the work done by the most recent UpdateWithSubsteps call.
type Stats struct {
	Passes         int     `json:"passes"`
	Culled         int     `json:"culled"`
	Spawned        int     `json:"spawned"`
	Removed        int     `json:"removed"`
	PairsTested    int     `json:"pairs_tested"`
	Collisions     int     `json:"collisions"`
	MaxPenetration float32 `json:"max_penetration"`
}

// Solver owns the particle collection, the broad-phase grid and every
// tunable. It is not safe for concurrent use.
type Solver struct {
	Config Config

	particles []verlet.Particle
	grid      *grid.Grid
	rng       *rand.Rand
	log       *slog.Logger
	stats     Stats

	heatK  float32
	pairFn func(i, j int)
}

type Option func(*Solver)

// WithLogger routes solver diagnostics to l.
func WithLogger(l *slog.Logger) Option {
	return func(s *Solver) { s.log = l }
}

// WithRand replaces the seeded source used for batch spawning.
func WithRand(r *rand.Rand) Option {
	return func(s *Solver) { s.rng = r }
}

// WithCapacity preallocates room for n particles.
func WithCapacity(n int) Option {
	return func(s *Solver) {
		if n > cap(s.particles) {
			s.particles = make([]verlet.Particle, 0, n)
		}
	}
}

func New(cfg Config, opts ...Option) (*Solver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Solver{
		Config: cfg,
		grid:   grid.New(),
		rng:    rand.New(rand.NewSource(cfg.Seed)),
		log:    slog.Default(),
	}
	s.pairFn = s.collidePair
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Reseed restarts the batch-spawn random sequence.
func (s *Solver) Reseed(seed int64) {
	s.Config.Seed = seed
	s.rng = rand.New(rand.NewSource(seed))
}

// Update runs a single pipeline pass with the full dt.
func (s *Solver) Update(dt float32) {
	s.UpdateWithSubsteps(dt, 1)
}

// UpdateWithSubsteps runs the pipeline substeps times with dt/substeps.
// A non-positive or non-finite dt is a no-op.
func (s *Solver) UpdateWithSubsteps(dt float32, substeps int) {
	s.stats = Stats{}
	if !(dt > 0) || math.IsInf(float64(dt), 0) {
		return
	}
	if substeps < 1 {
		substeps = 1
	}
	sub := dt / float32(substeps)
	for i := 0; i < substeps; i++ {
		s.step(sub)
	}
}

func (s *Solver) step(dt float32) {
	if len(s.particles) == 0 {
		s.EnforcePopulationBounds()
		if len(s.particles) == 0 {
			return
		}
	}
	s.stats.Passes++

	s.applyForces(dt)
	s.applyConstraints(dt)
	s.cullOutOfBounds()
	s.solveCollisions(dt)
	s.integrate(dt)
	s.cullNonFinite()
	s.EnforcePopulationBounds()
}

func (s *Solver) integrate(dt float32) {
	for i := range s.particles {
		s.particles[i].Integrate(dt)
	}
}

// Stabilize zeroes the implied velocity of every particle.
func (s *Solver) Stabilize() {
	for i := range s.particles {
		s.particles[i].Stabilize()
	}
}

// AccelerateAll pushes every particle with intensity along direction
// (radians). The push is consumed by the next integration.
func (s *Solver) AccelerateAll(intensity, direction float32) {
	a := vmath.FromAngle(direction).Scale(intensity)
	for i := range s.particles {
		s.particles[i].Accelerate(a)
	}
}

// Particles exposes the collection for reading. The slice is only valid
// until the next mutating call.
func (s *Solver) Particles() []verlet.Particle { return s.particles }

func (s *Solver) Len() int { return len(s.particles) }

func (s *Solver) Grid() grid.Info { return s.grid.Info() }

func (s *Solver) Stats() Stats { return s.stats }

// OutOfView counts particles drawn entirely outside the simulation extent.
func (s *Solver) OutOfView() int {
	n := 0
	w, h := s.Config.Width, s.Config.Height
	for i := range s.particles {
		p := &s.particles[i]
		r := p.Radius
		if p.Pos.X < -r || p.Pos.X > w+r || p.Pos.Y < -r || p.Pos.Y > h+r {
			n++
		}
	}
	return n
}

// removeWhere drops every particle matching pred, keeping the order of the
// survivors, and returns how many were dropped.
func (s *Solver) removeWhere(pred func(p *verlet.Particle) bool) int {
	kept := s.particles[:0]
	for i := range s.particles {
		if !pred(&s.particles[i]) {
			kept = append(kept, s.particles[i])
		}
	}
	removed := len(s.particles) - len(kept)
	clear(s.particles[len(kept):])
	s.particles = kept
	return removed
}

func (s *Solver) cull(pred func(p *verlet.Particle) bool) {
	n := s.removeWhere(pred)
	if n == 0 {
		return
	}
	s.stats.Culled += n
	if s.Config.StabilizeOnOOB {
		s.Stabilize()
	}
	s.log.Debug("culled particles", "count", n, "remaining", len(s.particles))
}

func (s *Solver) cullNonFinite() {
	s.cull(func(p *verlet.Particle) bool { return !p.IsFinite() })
}
