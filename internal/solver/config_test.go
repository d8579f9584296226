package solver

import (
	"errors"
	"math"
	"sort"
	"testing"
)

func TestSetParam(t *testing.T) {
	tests := []struct {
		name    string
		param   string
		value   float64
		wantErr error
		check   func(Config) bool
	}{
		{"restitution", "restitution", 0.5, nil, func(c Config) bool { return c.Restitution == 0.5 }},
		{"mixed case side", "Top.Bounce", 1, nil, func(c Config) bool { return c.Sides.Top.Bounce }},
		{"integer rounding", "max_particles", 99.6, nil, func(c Config) bool { return c.MaxParticles == 100 }},
		{"unknown", "viscosity", 1, ErrUnknownParam, nil},
		{"rolled back", "spawn_radius", 100, ErrInvalidRadius, func(c Config) bool { return c.SpawnRadius == DefaultSpawnRadius }},
		{"nan radius", "spawn_radius", math.NaN(), ErrNonFinite, func(c Config) bool { return c.SpawnRadius == DefaultSpawnRadius }},
		{"nan restitution", "restitution", math.NaN(), ErrNonFinite, func(c Config) bool { return c.Restitution == 1 }},
		{"inf heat level", "bottom.heat_level", math.Inf(1), ErrNonFinite, func(c Config) bool { return c.Sides.Bottom.HeatLevel == 0 }},
		{"nan count", "max_particles", math.NaN(), ErrNonFinite, func(c Config) bool { return c.MaxParticles == DefaultMaxParticles }},
		{"huge width", "width", 1e30, ErrInvalidBounds, func(c Config) bool { return c.Width == DefaultWidth }},
		{"huge count clamps", "max_particles", 1e30, nil, func(c Config) bool { return c.MaxParticles == math.MaxInt32 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			err := cfg.SetParam(tt.param, tt.value)
			if tt.wantErr == nil && err != nil {
				t.Fatalf("SetParam: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("SetParam error = %v, want %v", err, tt.wantErr)
			}
			if tt.check != nil && !tt.check(cfg) {
				t.Errorf("config after SetParam = %+v", cfg)
			}
		})
	}
}

func TestParams(t *testing.T) {
	cfg := DefaultConfig()
	p := cfg.Params()

	if p["gravity_y"] != DefaultGravity {
		t.Errorf("gravity_y = %v", p["gravity_y"])
	}
	if p["left.constrain"] != 1 || p["left.bounce"] != 0 {
		t.Errorf("left side = %v, %v", p["left.constrain"], p["left.bounce"])
	}

	names := cfg.ParamNames()
	if len(names) != len(p) {
		t.Errorf("names = %d, params = %d", len(names), len(p))
	}
	if !sort.StringsAreSorted(names) {
		t.Error("ParamNames not sorted")
	}
}

func TestDefaultConfigValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}
