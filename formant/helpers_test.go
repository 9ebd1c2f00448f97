package formant_test

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
)

// synthVowel passes white noise through a cascade of two-pole resonators
// and scales the result to a 10000 peak.
func synthVowel(rate, n int, freqs, bands []float64, seed uint64) []int16 {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	x := make([]float64, n)
	for i := range x {
		x[i] = rng.NormFloat64()
	}

	fs := float64(rate)
	for k := range freqs {
		r := math.Exp(-math.Pi * bands[k] / fs)
		a1 := 2 * r * math.Cos(2*math.Pi*freqs[k]/fs)
		a2 := -r * r

		y := make([]float64, n)
		for i := range y {
			y[i] = x[i]
			if i > 0 {
				y[i] += a1 * y[i-1]
			}
			if i > 1 {
				y[i] += a2 * y[i-2]
			}
		}
		x = y
	}

	peak := math.Max(floats.Max(x), -floats.Min(x))
	out := make([]int16, n)
	for i, v := range x {
		out[i] = int16(math.Round(v / peak * 10000))
	}
	return out
}

// sine returns n samples of a sinusoid with the given amplitude
func sine(rate, n int, freq, amp float64) []int16 {
	out := make([]int16, n)
	for i := range out {
		out[i] = int16(amp * math.Sin(2*math.Pi*freq*float64(i)/float64(rate)))
	}
	return out
}
