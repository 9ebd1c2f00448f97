package windowing

import (
	"math"
)

// Cos4 is the fourth power of the Hann window, (0.5 - 0.5*cos(2πi/N))^4.
// Its steep skirts keep energy from neighbouring pitch periods out of the
// autocorrelation.
type Cos4 struct {
	coefficientWindow
}

// NewCos4 creates a new cos⁴ window
func NewCos4(size int) *Cos4 {
	c := &Cos4{coefficientWindow{
		kind:       TypeCos4,
		correction: 0.443149,
	}}

	c.coefficients = make([]float64, size)
	arg := 2 * math.Pi / float64(size)
	for i := range size {
		co := 0.5 * (1.0 - math.Cos(arg*float64(i)))
		c.coefficients[i] = co * co * co * co
	}
	return c
}
