package optim

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/verletsim/internal/config"
	"github.com/san-kum/verletsim/internal/solver"
)

func bowl(_ context.Context, p map[string]float64) (float64, error) {
	x, y := p["x"], p["y"]
	return (x-2)*(x-2) + (y+1)*(y+1), nil
}

func TestLinspace(t *testing.T) {
	got := Linspace(0, 1, 5)
	want := []float64{0, 0.25, 0.5, 0.75, 1}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Errorf("Linspace[%d] = %v, want %v", i, got[i], want[i])
		}
	}
	if got := Linspace(3, 9, 1); len(got) != 1 || got[0] != 3 {
		t.Errorf("single point = %v", got)
	}
}

func TestGridSearch(t *testing.T) {
	g := NewGridSearch([]string{"x", "y"}, [][]float64{Linspace(-4, 4, 9), Linspace(-4, 4, 9)})

	best, err := g.Search(context.Background(), bowl)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if best.Params["x"] != 2 || best.Params["y"] != -1 || best.Value != 0 {
		t.Errorf("unexpected best %+v", best)
	}
	if best.Evaluations != 81 {
		t.Errorf("expected 81 evaluations, got %d", best.Evaluations)
	}
}

func TestGridSearchSkipsFailures(t *testing.T) {
	g := NewGridSearch([]string{"x"}, [][]float64{{1, 2, 3}})
	eval := func(ctx context.Context, p map[string]float64) (float64, error) {
		if p["x"] == 2 {
			return 0, errors.New("unstable")
		}
		return p["x"], nil
	}

	best, err := g.Search(context.Background(), eval)
	if err != nil {
		t.Fatal(err)
	}
	if best.Failures != 1 || best.Params["x"] != 1 {
		t.Errorf("unexpected best %+v", best)
	}
}

func TestGridSearchCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewGridSearch([]string{"x"}, [][]float64{{1}}).Search(ctx, bowl)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestRefine(t *testing.T) {
	best, err := Refine(context.Background(), []string{"x", "y"}, map[string]float64{"x": 0, "y": 0}, bowl, 2000)
	if err != nil {
		t.Fatalf("refine failed: %v", err)
	}
	if math.Abs(best.Params["x"]-2) > 1e-2 || math.Abs(best.Params["y"]+1) > 1e-2 {
		t.Errorf("unexpected optimum %+v", best.Params)
	}
}

func TestRunMetric(t *testing.T) {
	base := config.DefaultConfig()
	base.Solver.Width, base.Solver.Height = 200, 150
	base.Run.Duration = 0.25
	base.Run.SpawnCount = 10

	eval := RunMetric(base, "population", true)

	v, err := eval(context.Background(), map[string]float64{"restitution": 0.5})
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	if v != -10 {
		t.Errorf("expected -10, got %v", v)
	}
	if base.Solver.Restitution != 1 {
		t.Error("evaluation mutated the base config")
	}

	if _, err := eval(context.Background(), map[string]float64{"spawn_radius": 999}); !errors.Is(err, solver.ErrInvalidRadius) {
		t.Errorf("expected ErrInvalidRadius, got %v", err)
	}
	if _, err := RunMetric(base, "bogus", false)(context.Background(), nil); err == nil {
		t.Error("expected unknown metric error")
	}
}
