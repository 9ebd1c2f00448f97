// Package resample lowers the sample rate of analysis windows before linear
// prediction. Formant trackers work best at about 10 kHz: at higher rates the
// fixed LPC order is spent modelling the region above the formants.
package resample

import (
	"errors"
	"fmt"

	resampling "github.com/tphakala/go-audio-resampling"
)

// ErrBadRate reports a non-positive input or output rate
var ErrBadRate = errors.New("resample: invalid sample rate")

// Downsampler converts mono windows to a fixed target rate. Windows already
// at or below the target pass through unchanged; upsampling never happens.
type Downsampler struct {
	target  int
	quality resampling.QualitySpec
}

// NewDownsampler creates a downsampler with the given target rate
func NewDownsampler(target int) (*Downsampler, error) {
	if target <= 0 {
		return nil, fmt.Errorf("%w: target %d", ErrBadRate, target)
	}
	return &Downsampler{
		target:  target,
		quality: resampling.QualitySpec{Preset: resampling.QualityHigh},
	}, nil
}

// Needed reports whether a window at rate would be converted
func (d *Downsampler) Needed(rate int) bool {
	return rate > d.target
}

// Process converts one self-contained window and returns the samples and
// the rate they are at. Each window is filtered independently so the result
// does not depend on earlier windows.
func (d *Downsampler) Process(samples []float64, rate int) ([]float64, int, error) {
	if rate <= 0 {
		return nil, 0, fmt.Errorf("%w: input %d", ErrBadRate, rate)
	}
	if !d.Needed(rate) || len(samples) == 0 {
		return samples, rate, nil
	}

	r, err := resampling.New(&resampling.Config{
		InputRate:  float64(rate),
		OutputRate: float64(d.target),
		Channels:   1,
		Quality:    d.quality,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create resampler: %w", err)
	}

	out, err := r.Process(samples)
	if err != nil {
		return nil, 0, fmt.Errorf("resample error: %w", err)
	}
	tail, err := r.Flush()
	if err != nil {
		return nil, 0, fmt.Errorf("resample flush error: %w", err)
	}
	out = append(out, tail...)

	return out, d.target, nil
}
