package speech

import "fmt"

// SampleWindow is one analysis window of mono 16-bit audio.
// The engine never modifies it.
type SampleWindow struct {
	Samples    []int16 `json:"-"`
	SampleRate int     `json:"sample_rate"`
}

// NewSampleWindow wraps samples recorded at sampleRate
func NewSampleWindow(samples []int16, sampleRate int) SampleWindow {
	return SampleWindow{Samples: samples, SampleRate: sampleRate}
}

// Len returns the number of samples in the window
func (w SampleWindow) Len() int {
	return len(w.Samples)
}

// Validate checks the invariants every consumer relies on
func (w SampleWindow) Validate() error {
	if len(w.Samples) == 0 {
		return ErrEmptyWindow
	}
	if w.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate %d", ErrEmptyWindow, w.SampleRate)
	}
	return nil
}

// Float64 converts the samples to float64 without rescaling
func (w SampleWindow) Float64() []float64 {
	out := make([]float64, len(w.Samples))
	for i, s := range w.Samples {
		out[i] = float64(s)
	}
	return out
}
