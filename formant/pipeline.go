package formant

import (
	"errors"
	"fmt"

	"github.com/RyanBlaney/sonido-formant/algorithms/filters"
	"github.com/RyanBlaney/sonido-formant/algorithms/resample"
	"github.com/RyanBlaney/sonido-formant/algorithms/roots"
	"github.com/RyanBlaney/sonido-formant/algorithms/speech"
	"github.com/RyanBlaney/sonido-formant/algorithms/windowing"
	"github.com/RyanBlaney/sonido-formant/formant/config"
	"github.com/RyanBlaney/sonido-formant/logging"
)

// Formant is one resolved resonance
type Formant struct {
	Frequency float64 `json:"frequency" yaml:"frequency"` // Hz
	Bandwidth float64 `json:"bandwidth" yaml:"bandwidth"` // Hz
}

// Estimate is the pipeline output for one frame
type Estimate struct {
	Frame      int       `json:"frame" yaml:"frame"`
	Formants   []Formant `json:"formants" yaml:"formants"`
	Cost       float64   `json:"cost" yaml:"cost"`
	RMS        float64   `json:"rms" yaml:"rms"`
	Poles      int       `json:"poles" yaml:"poles"`
	Candidates int       `json:"candidates" yaml:"candidates"`

	// Fallback is set when the frame had no usable candidates and
	// Formants holds the nominal table. Reason says why.
	Fallback bool  `json:"fallback" yaml:"fallback"`
	Reason   error `json:"-" yaml:"-"`
}

// Frequencies returns the formant frequencies in slot order
func (e *Estimate) Frequencies() []float64 {
	out := make([]float64, len(e.Formants))
	for i, f := range e.Formants {
		out[i] = f.Frequency
	}
	return out
}

// Bandwidths returns the formant bandwidths in slot order
func (e *Estimate) Bandwidths() []float64 {
	out := make([]float64, len(e.Formants))
	for i, f := range e.Formants {
		out[i] = f.Bandwidth
	}
	return out
}

// ErrSilentFrame is the Reason of a frame whose LPC model came out degenerate
var ErrSilentFrame = errors.New("formant: zero-energy frame")

// Pipeline is a configured formant estimator. Each instance owns its
// tracker state, so independent pipelines may run side by side.
type Pipeline struct {
	cfg     config.Config
	nominal speech.NominalTable
	logger  logging.Logger

	downsampler *resample.Downsampler
	preEmphasis *filters.PreEmphasis
	window      windowing.Window
	analyzer    *speech.LPCAnalyzer
	roots       *roots.Bairstow
	generator   *speech.CandidateGenerator
	tracker     *speech.FormantTracker

	// side data of retained frames, aligned with tracker frames
	frames []frameInfo
}

type frameInfo struct {
	rms        float64
	poles      int
	candidates int
	reason     error
}

// New validates cfg and builds a pipeline in the empty tracking state. A nil
// cfg selects config.Default().
func New(cfg *config.Config) (*Pipeline, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := *cfg
	c.Window, _ = windowing.ParseType(string(c.Window))

	lpc, err := speech.NewLPCAnalyzer(c.Order, c.Stability)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", config.ErrConfiguration, err)
	}
	rootFinder, err := roots.NewBairstow(c.Order, c.Seed)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", config.ErrConfiguration, err)
	}

	var ds *resample.Downsampler
	if c.TargetSampleRate > 0 {
		if ds, err = resample.NewDownsampler(c.TargetSampleRate); err != nil {
			return nil, fmt.Errorf("%w: %w", config.ErrConfiguration, err)
		}
	}

	nominal := c.Nominal()
	p := &Pipeline{
		cfg:     c,
		nominal: nominal,
		logger: logging.WithFields(logging.Fields{
			"component": "formant_pipeline",
			"order":     c.Order,
			"formants":  c.FormantCount,
		}),
		downsampler: ds,
		preEmphasis: filters.NewPreEmphasis(c.PreEmphasis),
		analyzer:    lpc,
		roots:       rootFinder,
		generator:   speech.NewCandidateGenerator(nominal, c.FormantCount, c.Merge),
		tracker:     speech.NewFormantTracker(nominal, c.FormantCount, c.Weights, c.Merge, c.Batch),
	}

	p.logger.Debug("Formant pipeline configured", logging.Fields{
		"window":      c.Window,
		"target_rate": c.TargetSampleRate,
		"batch":       c.Batch,
	})
	return p, nil
}

// Config returns a copy of the configuration in use
func (p *Pipeline) Config() config.Config {
	return p.cfg
}

// State reports whether the next frame will be linked to the previous one
func (p *Pipeline) State() speech.TrackerState {
	return p.tracker.State()
}

// SetLogger replaces the pipeline's logger
func (p *Pipeline) SetLogger(l logging.Logger) {
	if l == nil {
		l = &logging.NoOpLogger{}
	}
	p.logger = l
}

// Reset starts a new utterance. The tracker forgets its history and the
// root finder goes back to its cold seeds.
func (p *Pipeline) Reset() {
	p.tracker.Reset()
	p.roots.Reset()
	p.frames = p.frames[:0]
}

// Process analyses one window. Per-frame analysis failures are not errors:
// they produce a Fallback estimate. The error return is reserved for
// windows that violate the SampleWindow invariants or fail to resample.
func (p *Pipeline) Process(w speech.SampleWindow) (*Estimate, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}

	logger := p.logger.WithFields(logging.Fields{
		"function": "Process",
		"frame":    p.tracker.Frames(),
	})

	model, rate, err := p.Analyze(w)
	if err != nil {
		logger.Error(err, "Failed to analyse window")
		return nil, err
	}

	info := frameInfo{rms: model.RMS}
	poles := speech.PoleSet{}
	cands := speech.CandidateSet{Formants: p.cfg.FormantCount}

	if model.Degenerate {
		info.reason = ErrSilentFrame
	} else {
		poles, info.reason = p.findPoles(model, float64(rate))
	}

	if info.reason == nil {
		cands, info.reason = p.generator.Generate(poles)
		if info.reason != nil {
			logger.Warn("Candidate enumeration overflowed, using nominal formants", logging.Fields{
				"poles": poles.NPoles,
				"error": info.reason,
			})
		}
	}
	info.poles = poles.NPoles
	info.candidates = cands.Len()

	choice := p.tracker.Step(poles, cands, model.RMS)
	if p.cfg.Batch {
		p.frames = append(p.frames, info)
	}

	est := p.estimate(choice, info)
	logger.Debug("Frame analysed", logging.Fields{
		"poles":      est.Poles,
		"candidates": est.Candidates,
		"cost":       est.Cost,
		"fallback":   est.Fallback,
	})
	return est, nil
}

// Analyze runs the front end on w without touching the tracker: it
// downsamples, applies pre-emphasis and the analysis window, and returns
// the LPC model together with the rate it was computed at.
func (p *Pipeline) Analyze(w speech.SampleWindow) (*speech.LPCModel, int, error) {
	if err := w.Validate(); err != nil {
		return nil, 0, err
	}

	signal, rate := w.Float64(), w.SampleRate
	if p.downsampler != nil && p.downsampler.Needed(rate) {
		var err error
		signal, rate, err = p.downsampler.Process(signal, rate)
		if err != nil {
			return nil, 0, err
		}
		if len(signal) == 0 {
			return nil, 0, fmt.Errorf("%w: window vanished after resampling", speech.ErrEmptyWindow)
		}
	}

	model, err := p.lpc(signal)
	if err != nil {
		return nil, 0, err
	}
	return model, rate, nil
}

// lpc applies pre-emphasis and the analysis window and runs LPC
func (p *Pipeline) lpc(signal []float64) (*speech.LPCModel, error) {
	emphasized := p.preEmphasis.ProcessBuffer(signal)

	// only the most recent window size is kept
	if p.window == nil || p.window.GetSize() != len(emphasized) {
		win, err := windowing.New(p.cfg.Window, len(emphasized))
		if err != nil {
			return nil, err
		}
		p.window = win
	}
	if err := p.window.ApplyInPlace(emphasized); err != nil {
		return nil, err
	}

	return p.analyzer.Analyze(emphasized, p.window.RMSCorrection()), nil
}

// findPoles roots the predictor polynomial and converts roots to poles
func (p *Pipeline) findPoles(model *speech.LPCModel, rate float64) (speech.PoleSet, error) {
	rr, ri, err := p.roots.Roots(model.Coefficients)
	if err != nil {
		p.logger.Warn("Root finding failed, using nominal formants", logging.Fields{
			"frame": p.tracker.Frames(),
			"error": err,
		})
		return speech.PoleSet{}, err
	}
	return speech.ExtractPoles(rr, ri, rate), nil
}

func (p *Pipeline) estimate(c speech.Choice, info frameInfo) *Estimate {
	est := &Estimate{
		Frame:      c.Frame,
		Formants:   make([]Formant, len(c.Freq)),
		Cost:       c.Cost,
		RMS:        info.rms,
		Poles:      info.poles,
		Candidates: info.candidates,
		Fallback:   c.Fallback,
		Reason:     info.reason,
	}
	for i := range c.Freq {
		est.Formants[i] = Formant{Frequency: c.Freq[i], Bandwidth: c.Band[i]}
	}
	return est
}

// Finish ends a batch-mode utterance: it backtraces the lattice and returns
// the globally cheapest trajectory for every frame since Reset, then resets
// the pipeline. In streaming mode it only resets and returns nil.
func (p *Pipeline) Finish() []Estimate {
	choices := p.tracker.Finish()
	frames := p.frames
	p.Reset()

	if choices == nil {
		return nil
	}

	out := make([]Estimate, len(choices))
	for i, c := range choices {
		var info frameInfo
		if i < len(frames) {
			info = frames[i]
		}
		out[i] = *p.estimate(c, info)
	}
	return out
}
