package speech

// MaxFormants is the number of formant slots the nominal table describes
const MaxFormants = 7

// NominalTable gives, per formant slot, the expected center frequency and
// the band a pole must fall in to be assigned to that slot.
type NominalTable struct {
	Freq [MaxFormants]float64 `json:"freq"`
	Min  [MaxFormants]float64 `json:"min"`
	Max  [MaxFormants]float64 `json:"max"`
}

// DefaultNominalTable is the adult-speaker table: F1..F7 centered at
// 500, 1500, ..., 6500 Hz.
func DefaultNominalTable() NominalTable {
	return NominalTable{
		Freq: [MaxFormants]float64{500, 1500, 2500, 3500, 4500, 5500, 6500},
		Min:  [MaxFormants]float64{50, 400, 1000, 2000, 2000, 3000, 3000},
		Max:  [MaxFormants]float64{1500, 3500, 4500, 5000, 6000, 6000, 8000},
	}
}

// NominalTableForF1 rescales the table around a speaker-specific F1, using
// the uniform-tube relation Fn = (2n-1)·F1. f1 <= 0 returns the default.
func NominalTableForF1(f1 float64) NominalTable {
	if f1 <= 0 {
		return DefaultNominalTable()
	}

	var t NominalTable
	for i := range MaxFormants {
		n := float64(i)
		t.Freq[i] = (2*n + 1) * f1
		t.Min[i] = t.Freq[i] - (n+1)*f1 + 50.0
		t.Max[i] = t.Freq[i] + n*f1 + 1000.0
	}
	return t
}

// Admits reports whether freq may be assigned to the given slot
func (t *NominalTable) Admits(slot int, freq float64) bool {
	return freq >= t.Min[slot] && freq <= t.Max[slot]
}

// Nominal returns the first n nominal frequencies
func (t *NominalTable) Nominal(n int) []float64 {
	out := make([]float64, n)
	copy(out, t.Freq[:n])
	return out
}
