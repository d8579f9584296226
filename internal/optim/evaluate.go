package optim

import (
	"context"
	"fmt"

	"github.com/san-kum/verletsim/internal/config"
	"github.com/san-kum/verletsim/internal/metrics"
	"github.com/san-kum/verletsim/internal/sim"
)

// RunMetric returns an Evaluate that applies params to a copy of base, runs
// it headlessly and reads one metric. When maximize is set the metric is
// negated so the searches still minimize.
func RunMetric(base *config.Config, metric string, maximize bool) Evaluate {
	return func(ctx context.Context, params map[string]float64) (float64, error) {
		cfg := base.Clone()
		for name, v := range params {
			if err := cfg.Solver.SetParam(name, v); err != nil {
				return 0, err
			}
		}

		m, err := metrics.New(metric, cfg.Solver)
		if err != nil {
			return 0, err
		}
		s := sim.New()
		s.AddMetric(m)

		result, err := s.Run(ctx, cfg.Solver, cfg.Run)
		if err != nil {
			return 0, fmt.Errorf("evaluate %v: %w", params, err)
		}
		v := result.Metrics[metric]
		if maximize {
			v = -v
		}
		return v, nil
	}
}
