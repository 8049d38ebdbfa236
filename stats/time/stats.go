// Package time computes time-domain statistics of rendered signals.
package time

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-kick/dsp/core"
)

// Stats holds time-domain signal statistics.
//
//nolint:revive
type Stats struct {
	Length         int
	DC             float64 // mean
	RMS            float64
	RMS_dB         float64
	Max            float64
	MaxPos         int
	Min            float64
	MinPos         int
	Peak           float64 // max(|max|, |min|)
	Peak_dB        float64
	CrestFactor    float64 // peak / RMS (linear)
	CrestFactor_dB float64
	Energy         float64 // sum of squares
	ZeroCrossings  int
}

func emptyStats() Stats {
	return Stats{
		RMS_dB:         math.Inf(-1),
		Peak_dB:        math.Inf(-1),
		CrestFactor_dB: math.Inf(-1),
	}
}

// Calculate computes all statistics in a single pass.
func Calculate(signal []float64) Stats {
	n := len(signal)
	if n == 0 {
		return emptyStats()
	}

	var (
		sum, sumSq    float64
		maxVal        = signal[0]
		maxPos        int
		minVal        = signal[0]
		minPos        int
		zeroCrossings int
	)

	for i, x := range signal {
		sum += x
		sumSq += x * x

		if x > maxVal {
			maxVal = x
			maxPos = i
		}
		if x < minVal {
			minVal = x
			minPos = i
		}

		if i > 0 && signal[i-1]*x < 0 {
			zeroCrossings++
		}
	}

	nf := float64(n)
	rms := math.Sqrt(sumSq / nf)
	peak := math.Max(math.Abs(maxVal), math.Abs(minVal))

	var crest, crestdB float64
	if rms > 0 {
		crest = peak / rms
		crestdB = core.LinearToDB(crest)
	}

	return Stats{
		Length:         n,
		DC:             sum / nf,
		RMS:            rms,
		RMS_dB:         core.LinearToDB(rms),
		Max:            maxVal,
		MaxPos:         maxPos,
		Min:            minVal,
		MinPos:         minPos,
		Peak:           peak,
		Peak_dB:        core.LinearToDB(peak),
		CrestFactor:    crest,
		CrestFactor_dB: crestdB,
		Energy:         sumSq,
		ZeroCrossings:  zeroCrossings,
	}
}

// RMS returns the root-mean-square of the signal.
func RMS(signal []float64) float64 {
	if len(signal) == 0 {
		return 0
	}

	var sumSq float64
	for _, x := range signal {
		sumSq += x * x
	}

	return math.Sqrt(sumSq / float64(len(signal)))
}

// Peak returns the peak absolute amplitude of the signal.
func Peak(signal []float64) float64 {
	return vecmath.MaxAbs(signal)
}

// DecayTime returns the time in seconds after which |signal| never again
// exceeds the peak attenuated by thresholdDB (a negative value, e.g. -60).
// A silent or empty signal decays in zero time.
func DecayTime(signal []float64, sampleRate, thresholdDB float64) (float64, error) {
	if sampleRate <= 0 || !core.IsFinite(sampleRate) {
		return 0, fmt.Errorf("decay time: sample rate must be > 0: %v", sampleRate)
	}
	if thresholdDB >= 0 || math.IsNaN(thresholdDB) {
		return 0, fmt.Errorf("decay time: threshold must be < 0 dB: %v", thresholdDB)
	}

	peak := Peak(signal)
	if peak == 0 {
		return 0, nil
	}

	limit := peak * core.DBToLinear(thresholdDB)
	for i := len(signal) - 1; i >= 0; i-- {
		if math.Abs(signal[i]) > limit {
			return float64(i+1) / sampleRate, nil
		}
	}

	return 0, nil
}
