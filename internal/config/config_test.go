package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/verletsim/internal/sim"
	"github.com/san-kum/verletsim/internal/solver"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Run.Substeps != 8 {
		t.Errorf("expected 8 substeps, got %d", cfg.Run.Substeps)
	}
	if cfg.Run.SpawnCount != 100 {
		t.Errorf("expected spawn count 100, got %d", cfg.Run.SpawnCount)
	}
	if cfg.Solver.Gravity.Y != 1000 {
		t.Errorf("expected gravity 1000, got %v", cfg.Solver.Gravity.Y)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	doc := `
solver:
  restitution: 0.5
  sides:
    bottom:
      constrain: false
run:
  substeps: 4
metrics: [population]
`
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Solver.Restitution != 0.5 {
		t.Errorf("expected restitution 0.5, got %v", cfg.Solver.Restitution)
	}
	if cfg.Solver.Sides.Bottom.Constrain {
		t.Error("expected open bottom")
	}
	if !cfg.Solver.Sides.Top.Constrain {
		t.Error("unset top side should keep its default")
	}
	if cfg.Run.Substeps != 4 || cfg.Run.Dt != sim.DefaultDt {
		t.Errorf("unexpected run section %+v", cfg.Run)
	}
	if len(cfg.Metrics) != 1 || cfg.Metrics[0] != "population" {
		t.Errorf("unexpected metrics %v", cfg.Metrics)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := Load(filepath.Join(dir, "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}

	bad := filepath.Join(dir, "bad.yaml")
	os.WriteFile(bad, []byte("solver: [1, 2"), 0644)
	if _, err := Load(bad); err == nil {
		t.Error("expected parse error")
	}

	invalid := filepath.Join(dir, "invalid.yaml")
	os.WriteFile(invalid, []byte("solver:\n  spawn_radius: 500\nrun:\n  substeps: 0\n"), 0644)
	_, err := Load(invalid)
	if !errors.Is(err, solver.ErrInvalidRadius) || !errors.Is(err, sim.ErrInvalidSubsteps) {
		t.Errorf("expected both validation errors, got %v", err)
	}

	nan := filepath.Join(dir, "nan.yaml")
	os.WriteFile(nan, []byte("solver:\n  spawn_radius: .nan\n  restitution: .nan\n"), 0644)
	_, err = Load(nan)
	if !errors.Is(err, solver.ErrInvalidRadius) || !errors.Is(err, solver.ErrInvalidHeat) {
		t.Errorf("expected NaN values rejected, got %v", err)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	cfg := GetPreset("convection")

	if err := Save(path, cfg); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.Solver != cfg.Solver || loaded.Run != cfg.Run {
		t.Errorf("round trip changed config:\n%+v\n%+v", loaded, cfg)
	}
}

func TestGetPreset(t *testing.T) {
	for _, name := range ListPresets() {
		cfg := GetPreset(name)
		if cfg == nil {
			t.Fatalf("preset %q missing", name)
		}
		if err := cfg.Validate(); err != nil {
			t.Errorf("preset %q invalid: %v", name, err)
		}
		if PresetDescription(name) == "" {
			t.Errorf("preset %q has no description", name)
		}
	}

	if cfg := GetPreset("rain"); cfg.Solver.Sides.Bottom.Constrain || !cfg.Solver.EnforceMin {
		t.Errorf("rain preset not applied: %+v", cfg.Solver)
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestPresetsAreIndependent(t *testing.T) {
	a := GetPreset("pool")
	a.Solver.Restitution = 0.1
	if b := GetPreset("pool"); b.Solver.Restitution != 0.95 {
		t.Errorf("preset mutated through a previous copy: %v", b.Solver.Restitution)
	}
}

func TestClone(t *testing.T) {
	a := GetPreset("dense")
	b := a.Clone()
	b.Metrics[0] = "changed"
	if a.Metrics[0] == "changed" {
		t.Error("clone shares metrics slice")
	}
}
