package automation

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/verletsim/internal/config"
	"github.com/san-kum/verletsim/internal/sim"
	"github.com/san-kum/verletsim/internal/solver"
	"github.com/san-kum/verletsim/internal/vmath"
)

// Scenario is a scripted sequence of steps run against one solver.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Preset      string         `yaml:"preset"`
	Seed        int64          `yaml:"seed"`
	Spawn       int            `yaml:"spawn"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep applies its actions in field order, then runs for Duration.
type ScenarioStep struct {
	Name         string             `yaml:"name"`
	Set          map[string]float64 `yaml:"set"`
	Clear        bool               `yaml:"clear"`
	RemoveOldest int                `yaml:"remove_oldest"`
	Spawn        int                `yaml:"spawn"`
	Place        []Placement        `yaml:"place"`
	Stabilize    bool               `yaml:"stabilize"`
	Shake        *sim.Shake         `yaml:"shake"`
	Duration     float64            `yaml:"duration"`
	Substeps     int                `yaml:"substeps"`
}

// Placement spawns one particle at an exact spot.
type Placement struct {
	X           float32 `yaml:"x"`
	Y           float32 `yaml:"y"`
	Radius      float32 `yaml:"radius"`
	Temperature float32 `yaml:"temperature"`
}

type StepResult struct {
	Name   string
	Result *sim.Result
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %s has no steps", path)
	}

	return &scenario, nil
}

// Base returns the configuration a scenario starts from: its preset if it
// names one, otherwise fallback.
func (sc *Scenario) Base(fallback *config.Config) (*config.Config, error) {
	cfg := fallback.Clone()
	if sc.Preset != "" {
		cfg = config.GetPreset(sc.Preset)
		if cfg == nil {
			return nil, fmt.Errorf("scenario %q: unknown preset %q", sc.Name, sc.Preset)
		}
	}
	if sc.Seed != 0 {
		cfg.Solver.Seed = sc.Seed
	}
	if sc.Spawn > 0 {
		cfg.Run.SpawnCount = sc.Spawn
	}
	return cfg, nil
}

// RunScenario executes all steps against a single solver so state carries
// from one step to the next.
func RunScenario(ctx context.Context, sc *Scenario, base *config.Config, newSim func() *sim.Simulator) ([]StepResult, error) {
	cfg, err := sc.Base(base)
	if err != nil {
		return nil, err
	}

	sol, err := solver.New(cfg.Solver)
	if err != nil {
		return nil, fmt.Errorf("scenario %q: %w", sc.Name, err)
	}
	sol.SpawnBatch(cfg.Run.SpawnCount)

	results := make([]StepResult, 0, len(sc.Steps))
	for i, step := range sc.Steps {
		name := step.Name
		if name == "" {
			name = fmt.Sprintf("step%d", i+1)
		}
		slog.Info("scenario step", "scenario", sc.Name, "step", name, "index", i+1, "of", len(sc.Steps))

		if err := step.apply(sol); err != nil {
			return results, fmt.Errorf("step %d (%s): %w", i+1, name, err)
		}

		run := cfg.Run
		run.Duration = step.Duration
		if step.Substeps > 0 {
			run.Substeps = step.Substeps
		}
		if run.Duration <= 0 {
			results = append(results, StepResult{Name: name})
			continue
		}

		result, err := newSim().Drive(ctx, sol, run)
		if err != nil {
			return results, fmt.Errorf("step %d (%s) run: %w", i+1, name, err)
		}
		results = append(results, StepResult{Name: name, Result: result})
	}

	return results, nil
}

func (st ScenarioStep) apply(sol *solver.Solver) error {
	names := make([]string, 0, len(st.Set))
	for k := range st.Set {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		if err := sol.Config.SetParam(k, st.Set[k]); err != nil {
			return err
		}
	}

	if st.Clear {
		sol.Clear()
	}
	if st.RemoveOldest > 0 {
		sol.RemoveBatch(st.RemoveOldest)
	}
	if st.Spawn > 0 {
		sol.SpawnBatch(st.Spawn)
	}
	for _, p := range st.Place {
		sol.Spawn(vmath.V(p.X, p.Y), p.Radius)
		ps := sol.Particles()
		ps[len(ps)-1].Temperature = p.Temperature
	}
	if st.Stabilize {
		sol.Stabilize()
	}
	if st.Shake != nil {
		st.Shake.Apply(sol)
	}
	return nil
}
