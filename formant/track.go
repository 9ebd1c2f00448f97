package formant

import (
	"errors"
	"fmt"

	"github.com/RyanBlaney/sonido-formant/algorithms/speech"
	"github.com/RyanBlaney/sonido-formant/formant/config"
	"github.com/RyanBlaney/sonido-formant/logging"
)

// ErrInvalidFraming is returned by Track for non-positive frame or hop lengths
var ErrInvalidFraming = errors.New("formant: frame and hop must be positive")

// TrackOptions controls how Track cuts a recording into windows
type TrackOptions struct {
	FrameLength int // samples per window at the input rate
	Hop         int // samples between window starts

	// Optional; windows the gate keeps closed are skipped and the tracker
	// is reset across them.
	Gate *EnergyGate
}

// Track analyses a whole recording and returns one Estimate per analysed
// window, with Frame set to the window's index in the recording. With
// cfg.Batch set each utterance is the backtraced optimum, otherwise the
// estimates are the streaming decisions. Gated silences split the
// recording into independent utterances.
func Track(samples []int16, sampleRate int, opts TrackOptions, cfg *config.Config) ([]Estimate, error) {
	if opts.FrameLength <= 0 || opts.Hop <= 0 {
		return nil, fmt.Errorf("%w: frame=%d hop=%d", ErrInvalidFraming, opts.FrameLength, opts.Hop)
	}

	p, err := New(cfg)
	if err != nil {
		return nil, err
	}
	batch := p.Config().Batch

	var (
		out     []Estimate
		indices []int // recording index of each window in the current utterance
	)

	endUtterance := func() {
		if batch {
			for i, est := range p.Finish() {
				est.Frame = indices[i]
				out = append(out, est)
			}
		} else {
			p.Reset()
		}
		indices = indices[:0]
	}

	windows := 0
	for start := 0; start+opts.FrameLength <= len(samples); start += opts.Hop {
		chunk := samples[start : start+opts.FrameLength]
		index := windows
		windows++

		if opts.Gate != nil && !opts.Gate.Open(chunk) {
			if len(indices) > 0 {
				endUtterance()
			}
			continue
		}

		est, err := p.Process(speech.NewSampleWindow(chunk, sampleRate))
		if err != nil {
			return nil, err
		}
		indices = append(indices, index)
		if !batch {
			est.Frame = index
			out = append(out, *est)
		}
	}
	if len(indices) > 0 {
		endUtterance()
	}

	logging.Debug("Recording tracked", logging.Fields{
		"function":  "Track",
		"windows":   windows,
		"estimates": len(out),
		"batch":     batch,
	})
	return out, nil
}
