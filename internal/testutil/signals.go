package testutil

import (
	"math"
	"math/rand"
)

// DeterministicSine generates a sine wave at freqHz.
func DeterministicSine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}
	return out
}

// DecayingSine generates a sine at freqHz with an exp(-rate·t) envelope.
func DecayingSine(freqHz, rate, sampleRate float64, length int) []float64 {
	out := DeterministicSine(freqHz, sampleRate, 1, length)
	for i := range out {
		out[i] *= math.Exp(-rate * float64(i) / sampleRate)
	}
	return out
}

// DeterministicNoise generates white noise with a fixed seed for reproducibility.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// DC generates a constant-valued signal.
func DC(value float64, length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		out[i] = value
	}
	return out
}

// Ones returns a slice of length n filled with 1.0.
func Ones(n int) []float64 {
	return DC(1.0, n)
}
