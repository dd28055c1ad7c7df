package evolution

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Floats provides descriptive statistics on a slice of float64 values.
// Adapted from the teacher's experiment/floats.go, trimmed to what a single
// generation's fitness distribution needs.
type Floats []float64

// Min returns the smallest value in the slice.
func (x Floats) Min() float64 {
	if len(x) == 0 {
		return math.NaN()
	}
	return floats.Min(x)
}

// Max returns the greatest value in the slice.
func (x Floats) Max() float64 {
	if len(x) == 0 {
		return math.NaN()
	}
	return floats.Max(x)
}

// Mean returns the average of the values in the slice.
func (x Floats) Mean() float64 {
	if len(x) == 0 {
		return math.NaN()
	}
	return stat.Mean(x, nil)
}

// StdDev returns the sample standard deviation of the values in the slice.
func (x Floats) StdDev() float64 {
	if len(x) == 0 {
		return math.NaN()
	}
	return stat.StdDev(x, nil)
}
