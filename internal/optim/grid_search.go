package optim

import (
	"context"
	"math"
)

// Evaluate scores one parameter assignment; lower is better.
type Evaluate func(ctx context.Context, params map[string]float64) (float64, error)

type Best struct {
	Params      map[string]float64
	Value       float64
	Evaluations int
	Failures    int
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	if n <= 1 {
		return []float64{lo}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	out[n-1] = hi
	return out
}

// Search evaluates every combination. Combinations whose evaluation fails
// are counted and skipped; only cancellation aborts the search.
func (g *GridSearch) Search(ctx context.Context, eval Evaluate) (Best, error) {
	best := Best{Value: math.Inf(1)}
	err := g.searchRecursive(ctx, 0, make(map[string]float64), eval, &best)
	return best, err
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	eval Evaluate,
	best *Best,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if depth == len(g.paramNames) {
		val, err := eval(ctx, current)
		best.Evaluations++
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			best.Failures++
			return nil
		}

		if val < best.Value {
			best.Value = val
			best.Params = make(map[string]float64, len(current))
			for k, v := range current {
				best.Params[k] = v
			}
		}
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		current[paramName] = val
		if err := g.searchRecursive(ctx, depth+1, current, eval, best); err != nil {
			return err
		}
	}
	delete(current, paramName)
	return nil
}
