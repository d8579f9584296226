package metrics

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/verletsim/internal/sim"
	"github.com/san-kum/verletsim/internal/verlet"
)

// Reduce selects how a Series folds its samples.
type Reduce int

const (
	Mean Reduce = iota
	Max
	Sum
	Last
	StdDev
)

// Series samples one frame field per tick and reduces the samples with
// gonum at the end of the run.
type Series struct {
	name    string
	field   string
	reduce  Reduce
	samples []float64
}

func NewSeries(name, field string, reduce Reduce) *Series {
	return &Series{name: name, field: field, reduce: reduce}
}

func (s *Series) Name() string { return s.name }

func (s *Series) Observe(f sim.Frame, _ []verlet.Particle) {
	if v, ok := f.Field(s.field); ok {
		s.samples = append(s.samples, v)
	}
}

func (s *Series) Value() float64 {
	return reduce(s.samples, s.reduce)
}

func (s *Series) Reset() { s.samples = s.samples[:0] }

func reduce(xs []float64, r Reduce) float64 {
	if len(xs) == 0 {
		return 0
	}
	switch r {
	case Max:
		return floats.Max(xs)
	case Sum:
		return floats.Sum(xs)
	case Last:
		return xs[len(xs)-1]
	case StdDev:
		if len(xs) < 2 {
			return 0
		}
		return stat.StdDev(xs, nil)
	default:
		return stat.Mean(xs, nil)
	}
}
