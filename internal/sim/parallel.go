package sim

import (
	"context"
	"sync"

	"github.com/san-kum/verletsim/internal/solver"
)

// Ensemble runs independent solvers that differ only in seed. Each run
// gets its own Simulator from the factory so metrics are never shared.
type Ensemble struct {
	factory   func() *Simulator
	numRuns   int
	seedStart int64
}

func NewEnsemble(factory func() *Simulator, numRuns int, seedStart int64) *Ensemble {
	return &Ensemble{factory: factory, numRuns: numRuns, seedStart: seedStart}
}

func (e *Ensemble) Run(ctx context.Context, cfg solver.Config, run Config) ([]*Result, error) {
	if e.numRuns < 1 {
		return nil, ErrNoRuns
	}
	results := make([]*Result, e.numRuns)
	errs := make([]error, e.numRuns)

	var wg sync.WaitGroup
	for i := 0; i < e.numRuns; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			cfgCopy := cfg
			cfgCopy.Seed = e.seedStart + int64(idx)

			results[idx], errs[idx] = e.factory().Run(ctx, cfgCopy, run)
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}
