// Package formant estimates the dominant vocal-tract resonances of speech,
// frame by frame.
//
// A Pipeline runs, for every SampleWindow it is given:
//
//	downsample → pre-emphasis → window → LPC → Lin-Bairstow roots →
//	poles → candidate mappings → dynamic-programming tracker
//
// and returns an Estimate of formant frequencies and bandwidths. Frames that
// cannot be analysed (the root finder fails, or the poles admit too many
// mappings) degrade to the nominal formant table instead of failing, so a
// live display never stalls on a bad frame. Only configuration errors are
// fatal, and they surface from New.
//
// Process must be called in the temporal order of the audio. A Pipeline is
// not safe for concurrent use; callers that consume results on another
// goroutine serialize Process and Reset themselves.
package formant
