//go:build fastmath

package signal

import (
	"math"

	"github.com/meko-christian/algo-approx"
)

// mathExp computes e^x using fast approximation.
func mathExp(x float64) float64 {
	return approx.FastExp(x)
}

// mathTanh computes tanh(x) = 1 - 2/(e^(2x)+1) on top of the fast exponential.
// Large |x| saturates to ±1 directly so the approximation never overflows.
func mathTanh(x float64) float64 {
	if x > 20 {
		return 1
	}
	if x < -20 {
		return -1
	}
	if math.IsNaN(x) {
		return x
	}
	return 1 - 2/(approx.FastExp(2*x)+1)
}
