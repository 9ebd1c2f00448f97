package windowing

import (
	"math"
)

// Hamming is the periodic Hamming window 0.54 - 0.46*cos(2πi/N)
type Hamming struct {
	coefficientWindow
}

// NewHamming creates a new Hamming window
func NewHamming(size int) *Hamming {
	h := &Hamming{coefficientWindow{
		kind:       TypeHamming,
		correction: 0.630397,
	}}

	h.coefficients = make([]float64, size)
	arg := 2 * math.Pi / float64(size)
	for i := range size {
		h.coefficients[i] = 0.54 - 0.46*math.Cos(arg*float64(i))
	}
	return h
}
