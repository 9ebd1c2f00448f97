package filters

import (
	"fmt"
	"math"
)

// PreEmphasis implements the first-difference filter used ahead of linear
// prediction to flatten the natural spectral tilt of voiced speech.
//
// Transfer function:
//
//	H(z) = 1 - α*z^-1
//
// Difference equation:
//
//	y[n] = x[n] - α*x[n-1]
//
// α = 0 disables the filter. Formant trackers usually run with α around 0.7.
//
// References:
//   - L.R. Rabiner, R.W. Schafer, "Digital Processing of Speech Signals",
//     Prentice-Hall, 1978, Chapter 8
//   - D. Talkin, "Speech formant trajectory estimation using dynamic
//     programming with modulated transition costs", JASA 82, 1987
type PreEmphasis struct {
	coefficient float64 // α
	lastSample  float64 // x[n-1] for sample-by-sample use
	primed      bool
}

// NewPreEmphasis creates a pre-emphasis filter with the given coefficient.
// Values outside [0, 1) are clamped.
func NewPreEmphasis(coefficient float64) *PreEmphasis {
	return &PreEmphasis{coefficient: clampCoefficient(coefficient)}
}

func clampCoefficient(c float64) float64 {
	if math.IsNaN(c) || c < 0 {
		return 0
	}
	if c >= 1 {
		return 0.99
	}
	return c
}

// Process filters one sample of a continuous stream. The first sample after
// construction or Reset is treated as its own predecessor.
func (pe *PreEmphasis) Process(input float64) float64 {
	if !pe.primed {
		pe.lastSample = input
		pe.primed = true
	}

	output := input - pe.coefficient*pe.lastSample
	pe.lastSample = input
	return output
}

// ProcessBuffer filters a self-contained analysis frame. Frames are
// independent: the first output sample is the first input sample unchanged,
// so the result never depends on what was processed before.
func (pe *PreEmphasis) ProcessBuffer(input []float64) []float64 {
	output := make([]float64, len(input))
	if len(input) == 0 {
		return output
	}
	if pe.coefficient == 0 {
		copy(output, input)
		return output
	}

	output[0] = input[0]
	for i := 1; i < len(input); i++ {
		output[i] = input[i] - pe.coefficient*input[i-1]
	}
	return output
}

// Reset clears the streaming state
func (pe *PreEmphasis) Reset() {
	pe.lastSample = 0
	pe.primed = false
}

// SetCoefficient updates α
func (pe *PreEmphasis) SetCoefficient(coefficient float64) error {
	if coefficient < 0.0 || coefficient >= 1.0 {
		return fmt.Errorf("coefficient must be in [0, 1), got %f", coefficient)
	}

	pe.coefficient = coefficient
	return nil
}

// GetCoefficient returns α
func (pe *PreEmphasis) GetCoefficient() float64 {
	return pe.coefficient
}

// GetFrequencyResponse computes the magnitude and phase at the given frequency.
// H(e^jw) = 1 - α*cos(w) + j*α*sin(w)
func (pe *PreEmphasis) GetFrequencyResponse(frequency float64, sampleRate int) (magnitude, phase float64) {
	w := 2.0 * math.Pi * frequency / float64(sampleRate)

	re := 1.0 - pe.coefficient*math.Cos(w)
	im := pe.coefficient * math.Sin(w)

	return math.Hypot(re, im), math.Atan2(im, re)
}
