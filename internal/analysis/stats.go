package analysis

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

type Summary struct {
	N    int
	Mean float64
	Std  float64
	Min  float64
	Max  float64
}

func Describe(data []float64) Summary {
	if len(data) == 0 {
		return Summary{}
	}
	s := Summary{N: len(data), Min: floats.Min(data), Max: floats.Max(data)}
	if len(data) > 1 {
		s.Mean, s.Std = stat.MeanStdDev(data, nil)
	} else {
		s.Mean = data[0]
	}
	return s
}

// Trend fits data against time (sample i at i*dt) and returns the slope
// per second and the intercept.
func Trend(data []float64, dt float64) (slope, intercept float64) {
	if len(data) < 2 || dt <= 0 {
		return 0, 0
	}
	xs := make([]float64, len(data))
	for i := range xs {
		xs[i] = float64(i) * dt
	}
	intercept, slope = stat.LinearRegression(xs, data, nil, false)
	return slope, intercept
}

// SettleTime returns the time after which every sample stays within tol of
// the final sample.
func SettleTime(data []float64, dt, tol float64) float64 {
	if len(data) == 0 {
		return 0
	}
	final := data[len(data)-1]
	i := len(data) - 1
	for i > 0 && math.Abs(data[i-1]-final) <= tol {
		i--
	}
	return float64(i) * dt
}
