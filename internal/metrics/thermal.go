package metrics

import (
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/verletsim/internal/sim"
	"github.com/san-kum/verletsim/internal/verlet"
)

// TemperatureSpread is the mean over ticks of the per-tick standard
// deviation of particle temperatures. A well-mixed system trends to zero.
type TemperatureSpread struct {
	temps   []float64
	samples []float64
}

func NewTemperatureSpread() *TemperatureSpread { return &TemperatureSpread{} }

func (t *TemperatureSpread) Name() string { return "temp_spread" }

func (t *TemperatureSpread) Observe(_ sim.Frame, ps []verlet.Particle) {
	if len(ps) < 2 {
		return
	}
	t.temps = t.temps[:0]
	for i := range ps {
		t.temps = append(t.temps, float64(ps[i].Temperature))
	}
	t.samples = append(t.samples, stat.StdDev(t.temps, nil))
}

func (t *TemperatureSpread) Value() float64 {
	if len(t.samples) == 0 {
		return 0
	}
	return stat.Mean(t.samples, nil)
}

func (t *TemperatureSpread) Reset() { t.samples = t.samples[:0] }

// Rise is the fraction of particles in the upper half of the extent,
// averaged over ticks. Buoyant convection lifts it.
type Rise struct {
	height  float32
	up      bool
	samples []float64
}

// NewRise measures against an extent of the given height; upIsLowY is true
// for the default y-down gravity.
func NewRise(height float32, upIsLowY bool) *Rise {
	return &Rise{height: height, up: upIsLowY}
}

func (r *Rise) Name() string { return "rise_fraction" }

func (r *Rise) Observe(_ sim.Frame, ps []verlet.Particle) {
	if len(ps) == 0 {
		return
	}
	mid := r.height / 2
	n := 0
	for i := range ps {
		if (ps[i].Pos.Y < mid) == r.up {
			n++
		}
	}
	r.samples = append(r.samples, float64(n)/float64(len(ps)))
}

func (r *Rise) Value() float64 {
	if len(r.samples) == 0 {
		return 0
	}
	return stat.Mean(r.samples, nil)
}

func (r *Rise) Reset() { r.samples = r.samples[:0] }
