package formant

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// DefaultGateThreshold is the RMS, in 16-bit sample units, below which a
// window is treated as silence by a default EnergyGate.
const DefaultGateThreshold = 100.0

// EnergyGate decides whether a window carries enough energy to be worth
// analysing. The DC offset is removed before measuring, so a constant
// input never opens the gate.
type EnergyGate struct {
	Threshold float64
}

// NewEnergyGate returns a gate that opens above threshold RMS. A
// non-positive threshold selects DefaultGateThreshold.
func NewEnergyGate(threshold float64) *EnergyGate {
	if threshold <= 0 {
		threshold = DefaultGateThreshold
	}
	return &EnergyGate{Threshold: threshold}
}

// RMS returns the root-mean-square of samples around their mean
func (g *EnergyGate) RMS(samples []int16) float64 {
	if len(samples) == 0 {
		return 0
	}
	x := make([]float64, len(samples))
	for i, s := range samples {
		x[i] = float64(s)
	}
	floats.AddConst(-stat.Mean(x, nil), x)
	return math.Sqrt(floats.Dot(x, x) / float64(len(x)))
}

// Open reports whether samples are loud enough to analyse
func (g *EnergyGate) Open(samples []int16) bool {
	return g.RMS(samples) >= g.Threshold
}
