package speech

import "errors"

var (
	// ErrEmptyWindow is returned for a SampleWindow without samples or
	// without a positive sample rate.
	ErrEmptyWindow = errors.New("speech: empty sample window")

	// ErrCandidateOverflow means the pole list admits more than
	// MaxCandidates pole-to-formant assignments; the frame is skipped.
	ErrCandidateOverflow = errors.New("speech: too many formant candidates")

	// ErrInvalidOrder reports an LPC order outside [MinOrder, MaxOrder].
	ErrInvalidOrder = errors.New("speech: invalid LPC order")
)
