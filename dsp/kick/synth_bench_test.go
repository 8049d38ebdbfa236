package kick

import "testing"

func BenchmarkSynthesize(b *testing.B) {
	for _, lengthMS := range []float64{120, 800} {
		p := DefaultParams()
		p.LengthMS = lengthMS
		b.Run(formatLength(lengthMS), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, err := Synthesize(p); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func formatLength(ms float64) string {
	if ms >= 500 {
		return "long"
	}
	return "short"
}
