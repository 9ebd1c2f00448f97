package windowing

import (
	"math"
)

// Hann is the periodic raised-cosine window 0.5 - 0.5*cos(2πi/N)
type Hann struct {
	coefficientWindow
}

// NewHann creates a new Hann window
func NewHann(size int) *Hann {
	h := &Hann{coefficientWindow{
		kind:       TypeHann,
		correction: 0.612372,
	}}

	h.coefficients = make([]float64, size)
	arg := 2 * math.Pi / float64(size)
	for i := range size {
		h.coefficients[i] = 0.5 - 0.5*math.Cos(arg*float64(i))
	}
	return h
}
