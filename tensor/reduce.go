package tensor

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Sum adds every element of a.
func Sum(a *Tensor) float64 {
	return floats.Sum(a.data)
}

// Max returns the largest element of a.
func Max(a *Tensor) float64 {
	return floats.Max(a.data)
}

// Mean returns the arithmetic mean of every element of a.
func Mean(a *Tensor) float64 {
	return stat.Mean(a.data, nil)
}
