package speech

import (
	"math"
)

// CostWeights are the tunable terms of the formant tracking cost.
type CostWeights struct {
	Missing  float64 `json:"missing" yaml:"missing"`     // deviation charged for an absent formant
	NoBand   float64 `json:"no_band" yaml:"no_band"`     // bandwidth charged for an absent formant (Hz)
	DFFact   float64 `json:"df_fact" yaml:"df_fact"`     // weight of relative frequency jumps between frames
	DFNFact  float64 `json:"dfn_fact" yaml:"dfn_fact"`   // weight of relative deviation from nominal
	BandFact float64 `json:"band_fact" yaml:"band_fact"` // weight per Hz of pole bandwidth
	FBias    float64 `json:"f_bias" yaml:"f_bias"`       // weight per Hz of formant frequency (low-frequency bias)
	FMerge   float64 `json:"f_merge" yaml:"f_merge"`     // cost of mapping F1 and F2 onto one pole
}

// DefaultCostWeights returns the weights of the classic DP formant tracker
func DefaultCostWeights() CostWeights {
	return CostWeights{
		Missing:  1.0,
		NoBand:   1000.0,
		DFFact:   20.0,
		DFNFact:  0.3,
		BandFact: 0.002,
		FBias:    0.0,
		FMerge:   2000.0,
	}
}

// TrackerState tells whether the next frame has a predecessor to link to
type TrackerState int

const (
	// StateEmpty: no usable previous frame; the next frame is scored on
	// its local cost alone.
	StateEmpty TrackerState = iota
	// StateTracking: the previous frame has candidates and transition
	// costs apply.
	StateTracking
)

func (s TrackerState) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateTracking:
		return "tracking"
	default:
		return "unknown"
	}
}

// Choice is the tracker's decision for one frame
type Choice struct {
	Frame     int       `json:"frame"`
	Candidate int       `json:"candidate"` // index in the frame's CandidateSet, -1 for fallback
	Cost      float64   `json:"cost"`      // cumulative path cost of the chosen candidate
	Freq      []float64 `json:"freq"`
	Band      []float64 `json:"band"`
	Fallback  bool      `json:"fallback"` // no candidates: nominal table emitted
}

// latticeFrame is one column of the DP lattice
type latticeFrame struct {
	poles PoleSet
	cands CandidateSet
	cost  []float64 // cumulative cost, aligned with cands
	back  []int     // best predecessor in the previous column, -1 for none
}

// FormantTracker chooses, frame by frame, the candidate mapping with the
// lowest cumulative cost: local cost plus the cheapest transition from the
// previous frame's candidates.
//
// With retainAll false only the previous column is kept and Step's result
// is final (causal streaming). With retainAll true every column is kept and
// Finish backtraces the globally cheapest path. Both modes share the same
// scoring, so Step's results are identical in either mode.
//
// A tracker is owned by a single goroutine.
type FormantTracker struct {
	nominal   NominalTable
	formants  int
	weights   CostWeights
	merge     bool
	retainAll bool

	frames []latticeFrame // streaming: at most one, the previous column
	frame  int            // index of the next frame since Reset
	rmsMax float64
}

// NewFormantTracker creates a tracker in StateEmpty
func NewFormantTracker(nominal NominalTable, formants int, weights CostWeights, merge, retainAll bool) *FormantTracker {
	return &FormantTracker{
		nominal:   nominal,
		formants:  formants,
		weights:   weights,
		merge:     merge,
		retainAll: retainAll,
	}
}

// State reports whether the next Step will apply transition costs
func (t *FormantTracker) State() TrackerState {
	if len(t.frames) == 0 {
		return StateEmpty
	}
	if t.frames[len(t.frames)-1].cands.Len() == 0 {
		return StateEmpty
	}
	return StateTracking
}

// Frames returns the number of frames stepped since Reset
func (t *FormantTracker) Frames() int {
	return t.frame
}

// Reset forgets all history; the next frame starts a new utterance
func (t *FormantTracker) Reset() {
	t.frames = t.frames[:0]
	t.frame = 0
	t.rmsMax = 0
}

// LocalCost scores candidate j of cands against the nominal table and the
// pole bandwidths, without regard to other frames.
func (t *FormantTracker) LocalCost(poles PoleSet, cands CandidateSet, j int) float64 {
	w := &t.weights
	slots := cands.At(j)

	var fbias, berr, ferr float64
	for l, pole := range slots {
		nom := t.nominal.Freq[l]
		if pole >= 0 {
			f := poles.Freq[pole]
			fbias += f
			berr += poles.Band[pole]
			ferr += math.Abs(f-nom) / nom
		} else {
			fbias += nom
			berr += w.NoBand
			ferr += w.Missing
		}
	}

	cost := fbias*w.FBias + berr*w.BandFact + ferr*w.DFNFact
	if t.merge && cands.Merged(j) {
		cost += w.FMerge
	}
	return cost
}

// transitionCost is the cost of moving from candidate k of prev to
// candidate j of cur, excluding prev's cumulative cost. rmsFact is DFFact
// scaled by the current frame's relative RMS; it weights both frequency
// jumps and slots missing on either side.
func (t *FormantTracker) transitionCost(prev *latticeFrame, k int, poles PoleSet, cands CandidateSet, j int, rmsFact float64) float64 {
	cur := cands.At(j)
	old := prev.cands.At(k)

	var cost float64
	for l := range cur {
		ic, ip := cur[l], old[l]
		if ic >= 0 && ip >= 0 {
			fc := poles.Freq[ic]
			fp := prev.poles.Freq[ip]
			jump := 2.0 * math.Abs(fc-fp) / (fc + fp)
			cost += rmsFact * jump * jump
		} else {
			cost += rmsFact * t.weights.Missing
		}
	}
	return cost
}

// Step adds one frame to the lattice and returns the causal decision for it:
// the candidate with the lowest cumulative cost so far. A frame without
// candidates returns the nominal table and leaves the tracker in StateEmpty.
func (t *FormantTracker) Step(poles PoleSet, cands CandidateSet, rms float64) Choice {
	if rms > t.rmsMax {
		t.rmsMax = rms
	}

	col := latticeFrame{poles: poles, cands: cands}
	n := cands.Len()

	var prev *latticeFrame
	if t.State() == StateTracking {
		prev = &t.frames[len(t.frames)-1]
	}

	if n > 0 {
		col.cost = make([]float64, n)
		col.back = make([]int, n)

		rmsFact := t.weights.DFFact
		if t.rmsMax > 0 {
			rmsFact *= rms / t.rmsMax
		}

		for j := range n {
			best, bestK := 0.0, -1
			if prev != nil {
				best = math.Inf(1)
				for k := range prev.cands.Len() {
					c := prev.cost[k] + t.transitionCost(prev, k, poles, cands, j, rmsFact)
					if c < best {
						best, bestK = c, k
					}
				}
			}
			col.cost[j] = t.LocalCost(poles, cands, j) + best
			col.back[j] = bestK
		}
	}

	choice := t.choose(&col, t.frame, argmin(col.cost))

	if t.retainAll {
		t.frames = append(t.frames, col)
	} else {
		t.frames = append(t.frames[:0], col)
	}
	t.frame++

	return choice
}

// Finish backtraces the retained lattice and returns the globally cheapest
// trajectory, one Choice per frame since Reset. Runs separated by frames
// without candidates are traced independently. Finish resets the tracker.
// Without retainAll there is nothing to trace and Finish returns nil.
func (t *FormantTracker) Finish() []Choice {
	if !t.retainAll {
		t.Reset()
		return nil
	}

	out := make([]Choice, len(t.frames))
	next := -1
	for i := len(t.frames) - 1; i >= 0; i-- {
		col := &t.frames[i]
		if col.cands.Len() == 0 {
			next = -1
			out[i] = t.choose(col, i, -1)
			continue
		}
		if next < 0 {
			next = argmin(col.cost)
		}
		out[i] = t.choose(col, i, next)
		next = col.back[next]
	}

	t.Reset()
	return out
}

// choose materializes candidate j of col, or the nominal fallback for j < 0
func (t *FormantTracker) choose(col *latticeFrame, frame, j int) Choice {
	c := Choice{
		Frame:     frame,
		Candidate: j,
		Freq:      make([]float64, t.formants),
		Band:      make([]float64, t.formants),
	}

	if j < 0 {
		c.Fallback = true
		copy(c.Freq, t.nominal.Freq[:t.formants])
		for l := range c.Band {
			c.Band[l] = t.weights.NoBand
		}
		return c
	}

	c.Cost = col.cost[j]
	for l, pole := range col.cands.At(j) {
		if pole >= 0 {
			c.Freq[l] = col.poles.Freq[pole]
			c.Band[l] = col.poles.Band[pole]
		} else {
			c.Freq[l] = t.nominal.Freq[l]
			c.Band[l] = t.weights.NoBand
		}
	}
	return c
}

// argmin returns the first index of the smallest value, or -1 when empty
func argmin(v []float64) int {
	best := -1
	for i, x := range v {
		if best < 0 || x < v[best] {
			best = i
		}
	}
	return best
}
