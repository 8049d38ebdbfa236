package signal_test

import (
	"fmt"

	"github.com/cwbudde/algo-kick/dsp/signal"
)

func ExampleFadeOutInPlace() {
	x := []float64{1, 1, 1, 1, 1}
	signal.FadeOutInPlace(x)
	fmt.Println(x)

	// Output:
	// [1 0.75 0.5 0.25 0]
}

func ExampleNormalizeInPlace() {
	x := []float64{-0.5, 0.25, 1}
	peak, err := signal.NormalizeInPlace(x, 0.8)
	if err != nil {
		panic(err)
	}
	fmt.Printf("%.2f: %.2f %.2f %.2f\n", peak, x[0], x[1], x[2])

	// Output:
	// 1.00: -0.40 0.20 0.80
}
