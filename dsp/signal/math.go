//go:build !fastmath

package signal

import "math"

func mathExp(x float64) float64 {
	return math.Exp(x)
}

func mathTanh(x float64) float64 {
	return math.Tanh(x)
}
