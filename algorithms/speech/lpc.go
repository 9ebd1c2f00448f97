package speech

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/floats"
)

const (
	// MinOrder and MaxOrder bound the LPC predictor order
	MinOrder = 2
	MaxOrder = 30

	// DefaultStability is the diagonal loading, in dB, applied to the
	// autocorrelation before the Durbin recursion
	DefaultStability = 70.0
)

// LPCAnalyzer performs autocorrelation-method Linear Predictive Coding.
// LPC models the vocal tract as an all-pole filter; the poles of that filter
// are the formant candidates.
//
// An analyzer keeps scratch buffers and is not safe for concurrent use.
type LPCAnalyzer struct {
	order     int
	stability float64 // dB, <= 1 disables damping
	damping   float64 // factor applied to lags 1..order

	r []float64
	k []float64
	a []float64
	b []float64
}

// LPCModel is the linear predictor of one analysis window
type LPCModel struct {
	Order        int       `json:"order"`
	Coefficients []float64 `json:"coefficients"` // 1, a1, ..., ap
	Reflection   []float64 `json:"reflection"`   // k1, ..., kp
	RMS          float64   `json:"rms"`          // window-corrected RMS of the frame
	NormErr      float64   `json:"norm_err"`     // normalized prediction error
	Degenerate   bool      `json:"degenerate"`   // zero-energy frame
}

// NewLPCAnalyzer creates an analyzer of the given order. stability is the
// amount of diagonal loading in dB; values <= 1 turn it off.
func NewLPCAnalyzer(order int, stability float64) (*LPCAnalyzer, error) {
	if order < MinOrder || order > MaxOrder {
		return nil, fmt.Errorf("%w: %d outside [%d,%d]", ErrInvalidOrder, order, MinOrder, MaxOrder)
	}

	damping := 1.0
	if stability > 1.0 {
		damping = 1.0 / (1.0 + math.Exp((-stability/20.0)*math.Ln10))
	}

	return &LPCAnalyzer{
		order:     order,
		stability: stability,
		damping:   damping,
		r:         make([]float64, order+1),
		k:         make([]float64, order),
		a:         make([]float64, order),
		b:         make([]float64, order),
	}, nil
}

// Order returns the predictor order
func (lpc *LPCAnalyzer) Order() int {
	return lpc.order
}

// Damping returns the factor applied to autocorrelation lags 1..order
func (lpc *LPCAnalyzer) Damping() float64 {
	return lpc.damping
}

// Analyze computes the predictor of an already windowed signal.
// rmsCorrection is the window's RMS correction factor (1 for rectangular).
//
// A zero-energy signal yields the degenerate model: RMS 1 and a predictor
// of all zeros, i.e. low-energy white noise.
func (lpc *LPCAnalyzer) Analyze(signal []float64, rmsCorrection float64) *LPCModel {
	p := lpc.order
	model := &LPCModel{
		Order:        p,
		Coefficients: make([]float64, p+1),
		Reflection:   make([]float64, p),
	}
	model.Coefficients[0] = 1.0

	energy := lpc.autocorrelate(signal)
	if energy == 0 {
		model.RMS = 1.0
		model.NormErr = 1.0
		model.Degenerate = true
		return model
	}

	if rmsCorrection <= 0 {
		rmsCorrection = 1.0
	}
	model.RMS = math.Sqrt(energy/float64(len(signal))) / rmsCorrection

	for i := 1; i <= p; i++ {
		lpc.r[i] *= lpc.damping
	}

	model.NormErr = lpc.durbin()
	copy(model.Coefficients[1:], lpc.a)
	copy(model.Reflection, lpc.k)

	return model
}

// autocorrelate fills r with lags 0..order normalized by lag 0 and returns
// the raw lag-0 energy. r[0] is always 1.
func (lpc *LPCAnalyzer) autocorrelate(s []float64) float64 {
	n := len(s)
	energy := floats.Dot(s, s)

	lpc.r[0] = 1.0
	if energy == 0 {
		for i := 1; i <= lpc.order; i++ {
			lpc.r[i] = 0
		}
		return 0
	}

	for i := 1; i <= lpc.order; i++ {
		if i >= n {
			lpc.r[i] = 0
			continue
		}
		lpc.r[i] = floats.Dot(s[:n-i], s[i:]) / energy
	}
	return energy
}

// durbin runs the Levinson-Durbin recursion on lpc.r, leaving predictor
// coefficients in lpc.a and reflection coefficients in lpc.k. The sign
// convention is A(z) = 1 + Σ a_i z^-i. Returns the normalized error.
func (lpc *LPCAnalyzer) durbin() float64 {
	r, k, a, b := lpc.r, lpc.k, lpc.a, lpc.b
	p := lpc.order

	for i := range a {
		a[i] = 0
		k[i] = 0
	}

	e := r[0]
	k[0] = -r[1] / e
	a[0] = k[0]
	e *= 1.0 - k[0]*k[0]

	for i := 1; i < p; i++ {
		if e <= 0 {
			// perfectly predictable so far; higher terms stay zero
			break
		}

		s := 0.0
		for j := 0; j < i; j++ {
			s -= a[j] * r[i-j]
		}
		k[i] = (s - r[i+1]) / e
		a[i] = k[i]

		copy(b[:i+1], a[:i+1])
		for j := 0; j < i; j++ {
			a[j] += k[i] * b[i-j-1]
		}
		e *= 1.0 - k[i]*k[i]
	}

	return e
}

// Envelope evaluates the LPC spectral envelope |1/A(e^jω)| on nfft/2+1
// evenly spaced frequencies from DC to Nyquist, scaled by the model RMS.
func (m *LPCModel) Envelope(nfft int) []float64 {
	if nfft < 2*len(m.Coefficients) {
		nfft = 512
		for nfft < 2*len(m.Coefficients) {
			nfft *= 2
		}
	}

	padded := make([]float64, nfft)
	copy(padded, m.Coefficients)
	spectrum := fft.FFTReal(padded)

	envelope := make([]float64, nfft/2+1)
	for i := range envelope {
		mag := cmplx.Abs(spectrum[i])
		if mag > 0 {
			envelope[i] = m.RMS / mag
		}
	}
	return envelope
}

// IsStable reports whether every reflection coefficient lies strictly
// inside the unit interval, i.e. the synthesis filter 1/A(z) is stable.
func (m *LPCModel) IsStable() bool {
	for _, k := range m.Reflection {
		if math.Abs(k) >= 1.0 {
			return false
		}
	}
	return true
}
