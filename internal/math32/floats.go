// Package math32 provides float32 vector operations.
// This is an internal package - external users should use the metric package.
package math32

import "math"

// Dot calculates the dot product of two vectors.
// Public for use by the hash and metric packages.
func Dot(a, b []float32) float32 {
	var ret float32
	for i := range a {
		ret += a[i] * b[i]
	}

	return ret
}

// Sqrt returns the square root of x.
func Sqrt(x float32) float32 {
	return float32(math.Sqrt(float64(x)))
}
