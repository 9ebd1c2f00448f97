// Package config holds the configuration of a formant pipeline.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/RyanBlaney/sonido-formant/algorithms/speech"
	"github.com/RyanBlaney/sonido-formant/algorithms/windowing"
	"gopkg.in/yaml.v3"
)

var (
	// ErrConfiguration is wrapped by every validation failure
	ErrConfiguration = errors.New("invalid formant configuration")

	ErrInvalidOrder        = errors.New("order out of range")
	ErrInvalidFormantCount = errors.New("formant count out of range")
	ErrInvalidPreEmphasis  = errors.New("pre-emphasis out of range")
	ErrInvalidWindow       = errors.New("unknown window type")
	ErrInvalidSampleRate   = errors.New("target sample rate out of range")
	ErrInvalidNominalF1    = errors.New("nominal F1 out of range")
	ErrInvalidWeights      = errors.New("cost weights must be finite and non-negative")
)

// Config is everything a pipeline needs to know before the first frame
type Config struct {
	// LPC predictor order, 2..30
	Order int `json:"order" yaml:"order"`

	// Number of formant slots, at most (Order-4)/2 and at most 7
	FormantCount int `json:"formant_count" yaml:"formant_count"`

	// First-difference coefficient in [0, 1); 0 disables pre-emphasis
	PreEmphasis float64 `json:"pre_emphasis" yaml:"pre_emphasis"`

	// rectangular, hamming, hann or cos4
	Window windowing.Type `json:"window" yaml:"window"`

	// Windows above this rate are downsampled first; 0 disables
	TargetSampleRate int `json:"target_sample_rate" yaml:"target_sample_rate"`

	// Allow F1 and F2 to share a pole
	Merge bool `json:"merge" yaml:"merge"`

	// Rescale the nominal table around this F1 (Hz); 0 keeps the default table
	NominalF1 float64 `json:"nominal_f1" yaml:"nominal_f1"`

	// Diagonal loading of the autocorrelation in dB; <= 1 disables
	Stability float64 `json:"stability" yaml:"stability"`

	// Keep the whole lattice for a global backtrace at Finish
	Batch bool `json:"batch" yaml:"batch"`

	// Seed of the root finder's restart generator
	Seed uint64 `json:"seed" yaml:"seed"`

	Weights speech.CostWeights `json:"weights" yaml:"weights"`
}

// Default returns the classic tracker setup: order 12, four formants,
// cos⁴ window and 10 kHz analysis rate.
func Default() *Config {
	return &Config{
		Order:            12,
		FormantCount:     4,
		PreEmphasis:      0.7,
		Window:           windowing.TypeCos4,
		TargetSampleRate: 10000,
		Merge:            true,
		NominalF1:        0,
		Stability:        speech.DefaultStability,
		Batch:            false,
		Seed:             1,
		Weights:          speech.DefaultCostWeights(),
	}
}

// MaxFormantsForOrder returns the largest formant count an order supports
func MaxFormantsForOrder(order int) int {
	return min((order-4)/2, speech.MaxFormants)
}

// Validate checks the configuration. Every error wraps ErrConfiguration and
// one of the specific ErrInvalid values.
func (c *Config) Validate() error {
	if c.Order < speech.MinOrder || c.Order > speech.MaxOrder {
		return fmt.Errorf("%w: %w: %d not in [%d,%d]",
			ErrConfiguration, ErrInvalidOrder, c.Order, speech.MinOrder, speech.MaxOrder)
	}

	if maxF := MaxFormantsForOrder(c.Order); c.FormantCount < 1 || c.FormantCount > maxF {
		return fmt.Errorf("%w: %w: %d formants with order %d (max %d)",
			ErrConfiguration, ErrInvalidFormantCount, c.FormantCount, c.Order, max(maxF, 0))
	}

	if math.IsNaN(c.PreEmphasis) || c.PreEmphasis < 0 || c.PreEmphasis >= 1 {
		return fmt.Errorf("%w: %w: %v not in [0,1)", ErrConfiguration, ErrInvalidPreEmphasis, c.PreEmphasis)
	}

	if _, err := windowing.ParseType(string(c.Window)); err != nil {
		return fmt.Errorf("%w: %w: %v", ErrConfiguration, ErrInvalidWindow, err)
	}

	if c.TargetSampleRate < 0 || (c.TargetSampleRate > 0 && c.TargetSampleRate < 2000) {
		return fmt.Errorf("%w: %w: %d", ErrConfiguration, ErrInvalidSampleRate, c.TargetSampleRate)
	}

	if math.IsNaN(c.NominalF1) || c.NominalF1 < 0 || c.NominalF1 > 2000 {
		return fmt.Errorf("%w: %w: %v", ErrConfiguration, ErrInvalidNominalF1, c.NominalF1)
	}

	w := c.Weights
	for _, v := range []float64{w.Missing, w.NoBand, w.DFFact, w.DFNFact, w.BandFact, w.FBias, w.FMerge} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return fmt.Errorf("%w: %w", ErrConfiguration, ErrInvalidWeights)
		}
	}

	return nil
}

// Nominal returns the nominal-frequency table this configuration selects
func (c *Config) Nominal() speech.NominalTable {
	return speech.NominalTableForF1(c.NominalF1)
}

// Load reads a YAML file over the defaults and validates the result
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults and validates the result
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if t, err := windowing.ParseType(string(cfg.Window)); err == nil {
		cfg.Window = t
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
