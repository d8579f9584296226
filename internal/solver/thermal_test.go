package solver

import (
	"math"
	"testing"

	"github.com/san-kum/verletsim/internal/vmath"
)

func TestBuoyancyFactor(t *testing.T) {
	tests := []struct {
		temp, power float32
		want        float32
	}{
		{0, 2, 0},
		{1, 2, 3},
		{3, 0.5, 1},
		{1, 1, 1},
		{-2, 2, 0},
		{-0.5, 2, 0},
	}

	for _, tt := range tests {
		if got := BuoyancyFactor(tt.temp, tt.power); got != tt.want {
			t.Errorf("BuoyancyFactor(%v, %v) = %v, want %v", tt.temp, tt.power, got, tt.want)
		}
	}
}

func TestApplyForcesBuoyancy(t *testing.T) {
	tests := []struct {
		name     string
		buoyancy bool
		gravity  vmath.Vec2
		want     vmath.Vec2
	}{
		{"enabled", true, vmath.V(0, 1000), vmath.V(0, -2000)},
		{"disabled", false, vmath.V(0, 1000), vmath.V(0, 1000)},
		{"no gravity", true, vmath.Zero(), vmath.Zero()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Gravity = tt.gravity
			cfg.Buoyancy = tt.buoyancy
			cfg.BuoyancyPower = 2
			s := newSolver(t, cfg)
			s.Spawn(vmath.V(100, 100), 5)
			s.particles[0].Temperature = 1

			s.applyForces(1.0 / 60)

			if got := s.particles[0].Acc; got != tt.want {
				t.Errorf("acc = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHeatLoss(t *testing.T) {
	cfg := quietConfig()
	cfg.HeatLoss = 1
	s := newSolver(t, cfg)
	s.Spawn(vmath.V(100, 100), 5)
	s.particles[0].Temperature = 10

	s.Update(0.5)

	if got := s.particles[0].Temperature; got != 5 {
		t.Errorf("temperature = %v, want 5", got)
	}
}

func TestHeatInjectionNearWall(t *testing.T) {
	cfg := quietConfig()
	cfg.HeatInjection = 8
	cfg.Sides.Bottom.Heat = true
	cfg.Sides.Bottom.HeatLevel = 100
	s := newSolver(t, cfg)
	s.Spawn(vmath.V(100, 715), 5)
	s.Spawn(vmath.V(200, 710), 5)

	s.applyConstraints(0.125)

	if got := s.particles[0].Temperature; got != 100 {
		t.Errorf("touching particle temperature = %v, want 100", got)
	}
	if got := s.particles[1].Temperature; got != 0 {
		t.Errorf("distant particle temperature = %v, want 0", got)
	}
}

func TestHeatTransferConservesTotal(t *testing.T) {
	tests := []struct {
		name     string
		transfer float32
		exact    bool
	}{
		{"partial", 4, false},
		{"saturated", 60, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := quietConfig()
			cfg.HeatTransfer = tt.transfer
			s := newSolver(t, cfg)
			s.Spawn(vmath.V(100, 100), 10)
			s.Spawn(vmath.V(115, 100), 10)
			s.particles[0].Temperature = 10

			s.solveCollisions(1.0 / 60)

			a, b := s.particles[0].Temperature, s.particles[1].Temperature
			if math.Abs(float64(a+b-10)) > 1e-5 {
				t.Errorf("total = %v, want 10", a+b)
			}
			if !(a < 10 && b > 0) {
				t.Errorf("no heat moved: %v, %v", a, b)
			}
			if tt.exact && (a != 5 || b != 5) {
				t.Errorf("saturated transfer = %v, %v, want 5 and 5", a, b)
			}
		})
	}
}
