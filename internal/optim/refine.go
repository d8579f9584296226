package optim

import (
	"context"
	"math"

	"gonum.org/v1/gonum/optimize"
)

// Refine polishes a starting point with Nelder-Mead, typically the best
// grid cell. Failed evaluations score +Inf.
func Refine(ctx context.Context, names []string, start map[string]float64, eval Evaluate, maxEvals int) (Best, error) {
	initX := make([]float64, len(names))
	for i, n := range names {
		initX[i] = start[n]
	}

	best := Best{Value: math.Inf(1)}
	toParams := func(x []float64) map[string]float64 {
		p := make(map[string]float64, len(names))
		for i, n := range names {
			p[n] = x[i]
		}
		return p
	}

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			if ctx.Err() != nil {
				return math.Inf(1)
			}
			p := toParams(x)
			val, err := eval(ctx, p)
			best.Evaluations++
			if err != nil {
				best.Failures++
				return math.Inf(1)
			}
			if val < best.Value {
				best.Value = val
				best.Params = p
			}
			return val
		},
	}

	settings := &optimize.Settings{FuncEvaluations: maxEvals}
	if _, err := optimize.Minimize(problem, initX, settings, &optimize.NelderMead{}); err != nil && ctx.Err() == nil && best.Params == nil {
		return best, err
	}
	return best, ctx.Err()
}
