package windowing

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// Type names an analysis window applied before autocorrelation
type Type string

const (
	TypeRectangular Type = "rectangular"
	TypeHamming     Type = "hamming"
	TypeCos4        Type = "cos4"
	TypeHann        Type = "hann"
)

// Window is the common behaviour of every analysis window in this package.
// All windows are periodic (denominator N), matching the classic LPC front end.
type Window interface {
	Apply(signal []float64) []float64
	ApplyInPlace(signal []float64) error
	GetCoefficients() []float64
	GetSize() int
	GetType() Type

	// RMSCorrection is the factor the measured RMS of a windowed frame is
	// divided by to estimate the RMS of the unwindowed signal.
	RMSCorrection() float64
}

// ParseType accepts the configuration spelling of a window type
func ParseType(s string) (Type, error) {
	switch t := Type(strings.ToLower(strings.TrimSpace(s))); t {
	case TypeRectangular, TypeHamming, TypeCos4, TypeHann:
		return t, nil
	case "rect", "boxcar":
		return TypeRectangular, nil
	case "hanning":
		return TypeHann, nil
	default:
		return "", fmt.Errorf("unknown window type %q", s)
	}
}

// New creates a window of the requested type and size
func New(t Type, size int) (Window, error) {
	if size <= 0 {
		return nil, fmt.Errorf("window size must be positive, got %d", size)
	}

	switch t {
	case TypeRectangular:
		return NewRectangular(size), nil
	case TypeHamming:
		return NewHamming(size), nil
	case TypeCos4:
		return NewCos4(size), nil
	case TypeHann:
		return NewHann(size), nil
	default:
		return nil, fmt.Errorf("unknown window type %q", t)
	}
}

// coefficientWindow holds the shared coefficient storage of the tapered windows
type coefficientWindow struct {
	kind         Type
	correction   float64
	coefficients []float64
}

func (w *coefficientWindow) Apply(signal []float64) []float64 {
	if len(signal) != len(w.coefficients) {
		return nil
	}

	windowed := make([]float64, len(signal))
	copy(windowed, signal)
	floats.Mul(windowed, w.coefficients)
	return windowed
}

func (w *coefficientWindow) ApplyInPlace(signal []float64) error {
	if len(signal) != len(w.coefficients) {
		return fmt.Errorf("signal length (%d) doesn't match window size (%d)", len(signal), len(w.coefficients))
	}

	floats.Mul(signal, w.coefficients)
	return nil
}

// GetCoefficients returns a copy of the window coefficients
func (w *coefficientWindow) GetCoefficients() []float64 {
	coeffs := make([]float64, len(w.coefficients))
	copy(coeffs, w.coefficients)
	return coeffs
}

func (w *coefficientWindow) GetSize() int            { return len(w.coefficients) }
func (w *coefficientWindow) GetType() Type           { return w.kind }
func (w *coefficientWindow) RMSCorrection() float64 { return w.correction }
