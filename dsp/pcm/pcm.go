// Package pcm converts float sample buffers to signed 16-bit linear PCM.
//
// Samples are scaled by 32767 and rounded half away from zero; values
// outside [-1, 1] are limited to the int16 range instead of wrapping.
package pcm

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/cwbudde/algo-kick/dsp/core"
)

const (
	// FullScale is the multiplier mapping 1.0 to the largest int16.
	FullScale = 32767

	// BytesPerSample is the width of one mono 16-bit frame.
	BytesPerSample = 2
)

// Quantize16 returns round(x·32767) limited to [-32768, 32767].
// NaN maps to 0.
func Quantize16(x float32) int16 {
	v := math.Round(float64(x) * FullScale)
	switch {
	case math.IsNaN(v):
		return 0
	case v > math.MaxInt16:
		return math.MaxInt16
	case v < math.MinInt16:
		return math.MinInt16
	}
	return int16(v)
}

// ToInt16 quantizes src into dst, reusing dst capacity, and returns it.
func ToInt16(dst []int16, src []float32) []int16 {
	dst = core.EnsureLen(dst, len(src))
	for i, v := range src {
		dst[i] = Quantize16(v)
	}
	return dst
}

// ToInts quantizes src to 16-bit values stored in ints, the layout
// go-audio buffers use.
func ToInts(src []float32) []int {
	q := ToInt16(nil, src)
	out := make([]int, len(q))
	for i, v := range q {
		out[i] = int(v)
	}
	return out
}

// FromInts converts 16-bit values stored in ints back to floats in [-1, 1].
func FromInts(src []int) ([]float32, error) {
	out := make([]float32, len(src))
	for i, v := range src {
		if v < math.MinInt16 || v > math.MaxInt16 {
			return nil, fmt.Errorf("pcm: sample %d out of 16-bit range: %d", i, v)
		}
		out[i] = float32(float64(v) / FullScale)
	}
	return out, nil
}

// Int16LE quantizes src and packs it as little-endian bytes, ready for an
// audio device opened with a signed 16-bit format.
func Int16LE(src []float32) []byte {
	q := ToInt16(nil, src)
	out := make([]byte, len(q)*BytesPerSample)
	for i, v := range q {
		binary.LittleEndian.PutUint16(out[i*BytesPerSample:], uint16(v))
	}
	return out
}
