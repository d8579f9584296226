package sim

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/verletsim/internal/verlet"
)

// Summary aggregates particle state for one frame.
type Summary struct {
	Count         int
	MeanTemp      float64
	StdTemp       float64
	MaxTemp       float64
	KineticEnergy float64
}

// Summarize computes temperature statistics and the total kinetic energy
// of unit-mass particles whose last step lasted h seconds.
func Summarize(ps []verlet.Particle, h float64) Summary {
	sum := Summary{Count: len(ps)}
	if len(ps) == 0 {
		return sum
	}

	temps := make([]float64, len(ps))
	for i := range ps {
		temps[i] = float64(ps[i].Temperature)
		if h > 0 {
			v := ps[i].Velocity()
			sum.KineticEnergy += 0.5 * float64(v.LenSq()) / (h * h)
		}
	}
	if len(temps) > 1 {
		sum.MeanTemp, sum.StdTemp = stat.MeanStdDev(temps, nil)
	} else {
		sum.MeanTemp = temps[0]
	}
	sum.MaxTemp = floats.Max(temps)
	return sum
}
