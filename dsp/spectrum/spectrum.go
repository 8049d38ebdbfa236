package spectrum

import (
	"fmt"
	"sync"

	"github.com/cwbudde/algo-vecmath"
)

// scratchBuf holds pooled scratch memory for complex-to-real unpacking.
type scratchBuf struct {
	data []float64
}

var scratchPool = sync.Pool{
	New: func() any { return &scratchBuf{} },
}

func getScratch(n int) (re, im []float64, buf *scratchBuf) {
	buf = scratchPool.Get().(*scratchBuf)
	need := 2 * n
	if cap(buf.data) < need {
		buf.data = make([]float64, need)
	} else {
		buf.data = buf.data[:need]
	}
	return buf.data[:n], buf.data[n:need], buf
}

func split(in []complex128) (re, im []float64, buf *scratchBuf) {
	re, im, buf = getScratch(len(in))
	for i, c := range in {
		re[i] = real(c)
		im[i] = imag(c)
	}
	return re, im, buf
}

// Magnitude returns |X[k]| for each complex spectrum bin. Scratch buffers
// are pooled, so in steady state this allocates only the output slice.
func Magnitude(in []complex128) []float64 {
	if len(in) == 0 {
		return nil
	}

	out := make([]float64, len(in))
	re, im, buf := split(in)
	vecmath.Magnitude(out, re, im)
	scratchPool.Put(buf)
	return out
}

// Power returns |X[k]|^2 for each complex spectrum bin.
func Power(in []complex128) []float64 {
	if len(in) == 0 {
		return nil
	}

	out := make([]float64, len(in))
	re, im, buf := split(in)
	vecmath.Power(out, re, im)
	scratchPool.Put(buf)
	return out
}

// BinFrequency returns the centre frequency of bin k for an FFT of fftSize
// points at sampleRate.
func BinFrequency(k, fftSize int, sampleRate float64) float64 {
	if fftSize <= 0 {
		return 0
	}
	return float64(k) * sampleRate / float64(fftSize)
}

// PeakBin returns the index of the largest magnitude in mags[lo:hi] and a
// fractional offset in [-0.5, 0.5] from parabolic interpolation over its
// neighbours. ok is false when the range is empty or all zero.
func PeakBin(mags []float64, lo, hi int) (k int, offset float64, ok bool) {
	lo = max(lo, 0)
	hi = min(hi, len(mags))
	if lo >= hi {
		return 0, 0, false
	}

	k = lo
	for i := lo + 1; i < hi; i++ {
		if mags[i] > mags[k] {
			k = i
		}
	}
	if mags[k] <= 0 {
		return 0, 0, false
	}

	if k > 0 && k < len(mags)-1 {
		a, b, c := mags[k-1], mags[k], mags[k+1]
		if den := a - 2*b + c; den != 0 && a != c {
			offset = 0.5 * (a - c) / den
			offset = min(max(offset, -0.5), 0.5)
		}
	}

	return k, offset, true
}

// Centroid returns the magnitude-weighted mean frequency of mags, where bin
// k sits at k·binHz. An all-zero spectrum has centroid 0.
func Centroid(mags []float64, binHz float64) (float64, error) {
	if binHz <= 0 {
		return 0, fmt.Errorf("spectrum: bin width must be > 0: %f", binHz)
	}

	num, den := 0.0, 0.0
	for k, m := range mags {
		num += float64(k) * binHz * m
		den += m
	}
	if den == 0 {
		return 0, nil
	}
	return num / den, nil
}
