package spectrum

import (
	"math"
	"testing"
)

func TestMagnitudePower(t *testing.T) {
	bins := []complex128{3 + 4i, -1 - 1i, 0}

	mag := Magnitude(bins)
	if len(mag) != len(bins) {
		t.Fatalf("Magnitude length mismatch: got=%d want=%d", len(mag), len(bins))
	}

	if math.Abs(mag[0]-5) > 1e-12 {
		t.Fatalf("Magnitude[0]=%f want=5", mag[0])
	}
	if math.Abs(mag[1]-math.Sqrt2) > 1e-12 {
		t.Fatalf("Magnitude[1]=%f want=%f", mag[1], math.Sqrt2)
	}

	pow := Power(bins)
	if math.Abs(pow[0]-25) > 1e-12 || pow[2] != 0 {
		t.Fatalf("Power=%v", pow)
	}

	if Magnitude(nil) != nil || Power(nil) != nil {
		t.Fatal("empty input should return nil")
	}
}

func TestBinFrequency(t *testing.T) {
	if got := BinFrequency(10, 1024, 44100); math.Abs(got-430.6640625) > 1e-9 {
		t.Fatalf("BinFrequency=%v", got)
	}
	if got := BinFrequency(1, 0, 44100); got != 0 {
		t.Fatalf("BinFrequency with zero size=%v", got)
	}
}

func TestPeakBin(t *testing.T) {
	tests := []struct {
		name       string
		mags       []float64
		lo, hi     int
		wantK      int
		wantOffset float64
		wantOK     bool
	}{
		{name: "symmetric peak", mags: []float64{0, 1, 3, 1, 0}, lo: 0, hi: 5, wantK: 2, wantOffset: 0, wantOK: true},
		{name: "leans right", mags: []float64{0, 1, 3, 2, 0}, lo: 0, hi: 5, wantK: 2, wantOffset: 1.0 / 6, wantOK: true},
		{name: "range excludes peak", mags: []float64{0, 1, 3, 2, 0}, lo: 3, hi: 5, wantK: 3, wantOffset: -0.5, wantOK: true},
		{name: "edge bin", mags: []float64{5, 1, 0}, lo: 0, hi: 3, wantK: 0, wantOffset: 0, wantOK: true},
		{name: "all zero", mags: []float64{0, 0, 0}, lo: 0, hi: 3},
		{name: "empty range", mags: []float64{1, 2}, lo: 2, hi: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k, off, ok := PeakBin(tt.mags, tt.lo, tt.hi)
			if ok != tt.wantOK {
				t.Fatalf("ok=%v want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if k != tt.wantK || math.Abs(off-tt.wantOffset) > 1e-12 {
				t.Fatalf("PeakBin=(%d, %v) want (%d, %v)", k, off, tt.wantK, tt.wantOffset)
			}
		})
	}
}

func TestCentroid(t *testing.T) {
	c, err := Centroid([]float64{0, 1, 0, 1}, 100)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(c-200) > 1e-12 {
		t.Fatalf("Centroid=%v want 200", c)
	}

	c, err = Centroid([]float64{0, 0}, 100)
	if err != nil || c != 0 {
		t.Fatalf("zero spectrum centroid=%v err=%v", c, err)
	}

	if _, err := Centroid([]float64{1}, 0); err == nil {
		t.Fatal("expected bin width error")
	}
}
