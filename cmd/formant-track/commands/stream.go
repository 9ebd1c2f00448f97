package commands

import (
	"errors"
	"io"

	"github.com/RyanBlaney/sonido-formant/algorithms/speech"
	"github.com/RyanBlaney/sonido-formant/formant"
	"github.com/RyanBlaney/sonido-formant/formant/config"
	"github.com/RyanBlaney/sonido-formant/logging"
)

// streamFrames analyses windows as the input arrives and writes each
// decision immediately. The window slides by hop samples.
func streamFrames(in io.Reader, cfg *config.Config, frameLen, hop int, gate *formant.EnergyGate, out *frameWriter) error {
	p, err := formant.New(cfg)
	if err != nil {
		return err
	}

	logger := logging.WithFields(logging.Fields{
		"function": "streamFrames",
		"frame":    frameLen,
		"hop":      hop,
	})

	r := newPCMReader(in)
	window, err := r.next(frameLen)
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return err
	}

	for index := 0; ; index++ {
		if gate != nil && !gate.Open(window) {
			if p.State() == speech.StateTracking {
				logger.Debug("Gate closed, starting a new utterance", logging.Fields{"index": index})
			}
			p.Reset()
		} else {
			est, err := p.Process(speech.NewSampleWindow(window, sampleRate))
			if err != nil {
				return err
			}
			est.Frame = index
			if err := out.Write(est); err != nil {
				return err
			}
		}

		window, err = slide(r, window, hop)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// slide advances window by hop samples
func slide(r *pcmReader, window []int16, hop int) ([]int16, error) {
	n := len(window)
	if hop >= n {
		if hop > n {
			if _, err := r.next(hop - n); err != nil {
				return nil, err
			}
		}
		return r.next(n)
	}

	fresh, err := r.next(hop)
	if err != nil {
		return nil, err
	}
	next := make([]int16, 0, n)
	next = append(next, window[hop:]...)
	return append(next, fresh...), nil
}
