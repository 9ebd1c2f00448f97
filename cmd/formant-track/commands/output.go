package commands

import (
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/RyanBlaney/sonido-formant/formant"
)

// frameRecord is the printed form of an Estimate
type frameRecord struct {
	Frame      int       `yaml:"frame"`
	Time       float64   `yaml:"time"`
	Frequency  []float64 `yaml:"frequency,flow"`
	Bandwidth  []float64 `yaml:"bandwidth,flow"`
	Cost       float64   `yaml:"cost"`
	RMS        float64   `yaml:"rms"`
	Candidates int       `yaml:"candidates"`
	Fallback   bool      `yaml:"fallback,omitempty"`
	Reason     string    `yaml:"reason,omitempty"`
}

// frameWriter encodes estimates as YAML documents
type frameWriter struct {
	enc *yaml.Encoder
	hop time.Duration
}

func newFrameWriter(w io.Writer, hop time.Duration) *frameWriter {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	return &frameWriter{enc: enc, hop: hop}
}

func (fw *frameWriter) record(est *formant.Estimate) frameRecord {
	rec := frameRecord{
		Frame:      est.Frame,
		Time:       float64(est.Frame) * fw.hop.Seconds(),
		Frequency:  est.Frequencies(),
		Bandwidth:  est.Bandwidths(),
		Cost:       est.Cost,
		RMS:        est.RMS,
		Candidates: est.Candidates,
		Fallback:   est.Fallback,
	}
	if est.Reason != nil {
		rec.Reason = est.Reason.Error()
	}
	return rec
}

// Write emits one estimate as its own document
func (fw *frameWriter) Write(est *formant.Estimate) error {
	if err := fw.enc.Encode(fw.record(est)); err != nil {
		return fmt.Errorf("failed to write frame %d: %w", est.Frame, err)
	}
	return nil
}

// WriteAll emits every estimate as a single list document
func (fw *frameWriter) WriteAll(estimates []formant.Estimate) error {
	records := make([]frameRecord, len(estimates))
	for i := range estimates {
		records[i] = fw.record(&estimates[i])
	}
	if err := fw.enc.Encode(records); err != nil {
		return fmt.Errorf("failed to write frames: %w", err)
	}
	return nil
}

// Close flushes the encoder
func (fw *frameWriter) Close() error {
	return fw.enc.Close()
}
