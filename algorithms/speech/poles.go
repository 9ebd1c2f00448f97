package speech

import "math"

// PoleSet holds the resonances extracted from one LPC model.
//
// Freq and Band have the same length. The first NPoles entries are the
// complex poles inside (1 Hz, Nyquist-1 Hz) in ascending frequency order;
// anything else (real poles, poles at DC or Nyquist) follows them and is
// never a formant candidate.
type PoleSet struct {
	NPoles int       `json:"npoles"`
	Freq   []float64 `json:"freq"`
	Band   []float64 `json:"band"`
}

// Candidates returns the frequencies of the poles eligible as formants
func (p PoleSet) Candidates() []float64 {
	return p.Freq[:p.NPoles]
}

// ExtractPoles converts root pairs (rr[i], ri[i]) to resonance frequency and
// bandwidth in Hz. Complex-conjugate pairs stored next to each other are
// collapsed into one pole, and exact zeros are skipped.
//
//	freq = |atan2(im, re)| · fs / 2π
//	band = |ln(re² + im²)| · fs / 2π
func ExtractPoles(rr, ri []float64, sampleRate float64) PoleSet {
	n := min(len(rr), len(ri))
	set := PoleSet{
		Freq: make([]float64, 0, n),
		Band: make([]float64, 0, n),
	}
	if sampleRate <= 0 {
		return set
	}

	pi2t := 2 * math.Pi / sampleRate
	for i := 0; i < n; i++ {
		if rr[i] == 0 && ri[i] == 0 {
			continue
		}

		theta := math.Atan2(ri[i], rr[i])
		band := 0.5 * sampleRate * math.Log(rr[i]*rr[i]+ri[i]*ri[i]) / math.Pi
		set.Freq = append(set.Freq, math.Abs(theta/pi2t))
		set.Band = append(set.Band, math.Abs(band))

		if i+1 < n && ri[i] != 0 && rr[i] == rr[i+1] && ri[i] == -ri[i+1] {
			i++
		}
	}

	nyquist := sampleRate / 2
	orderPoles(set.Freq, set.Band, nyquist)

	for _, f := range set.Freq {
		if isFormantBand(f, nyquist) {
			set.NPoles++
		}
	}
	return set
}

func isFormantBand(freq, nyquist float64) bool {
	return freq > 1.0 && freq < nyquist-1.0
}

// orderPoles is a stable exchange sort that keeps in-band poles ascending and
// pushes every out-of-band pole behind them, whatever its value.
func orderPoles(freq, band []float64, nyquist float64) {
	n := len(freq)
	for i := 0; i < n-1; i++ {
		for j := 0; j < n-1-i; j++ {
			inBand1 := isFormantBand(freq[j], nyquist)
			inBand2 := isFormantBand(freq[j+1], nyquist)
			if inBand2 && (!inBand1 || freq[j] > freq[j+1]) {
				freq[j], freq[j+1] = freq[j+1], freq[j]
				band[j], band[j+1] = band[j+1], band[j]
			}
		}
	}
}
