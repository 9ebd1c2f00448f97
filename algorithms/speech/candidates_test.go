package speech_test

import (
	"testing"

	"github.com/RyanBlaney/sonido-formant/algorithms/speech"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const A = speech.Absent

func poleSet(freqs ...float64) speech.PoleSet {
	band := make([]float64, len(freqs))
	for i := range band {
		band[i] = 50
	}
	return speech.PoleSet{NPoles: len(freqs), Freq: freqs, Band: band}
}

func rows(c speech.CandidateSet) [][]int {
	out := make([][]int, c.Len())
	for j := range out {
		out[j] = append([]int{}, c.At(j)...)
	}
	return out
}

func TestGenerate_Enumeration(t *testing.T) {
	tests := []struct {
		name     string
		poles    speech.PoleSet
		formants int
		merge    bool
		want     [][]int
	}{
		{
			name:     "two poles with merging",
			poles:    poleSet(700, 1200),
			formants: 2,
			merge:    true,
			want:     [][]int{{0, 1}, {0, 0}, {0, 1}, {1, A}, {1, 1}},
		},
		{
			name:     "two poles without merging",
			poles:    poleSet(700, 1200),
			formants: 2,
			merge:    false,
			want:     [][]int{{0, 1}, {1, A}},
		},
		{
			name:     "trailing slots stay absent",
			poles:    poleSet(700),
			formants: 3,
			merge:    false,
			want:     [][]int{{0, A, A}},
		},
		{
			name:     "merge into an otherwise empty slot",
			poles:    poleSet(700),
			formants: 3,
			merge:    true,
			want:     [][]int{{0, A, A}, {0, 0, A}},
		},
		{
			name:     "skipped slot resumes after the last assigned pole",
			poles:    poleSet(700, 4000),
			formants: 3,
			merge:    false,
			want:     [][]int{{0, A, 1}},
		},
		{
			name:     "single formant",
			poles:    poleSet(300, 900, 2000),
			formants: 1,
			merge:    true,
			want:     [][]int{{0}, {1}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := speech.NewCandidateGenerator(speech.DefaultNominalTable(), tt.formants, tt.merge)
			set, err := g.Generate(tt.poles)
			require.NoError(t, err)
			assert.Equal(t, tt.formants, set.Formants)
			assert.Equal(t, tt.want, rows(set))
		})
	}
}

func TestGenerate_MergedFlag(t *testing.T) {
	g := speech.NewCandidateGenerator(speech.DefaultNominalTable(), 2, true)
	set, err := g.Generate(poleSet(700, 1200))
	require.NoError(t, err)

	var merged []int
	for j := range set.Len() {
		if set.Merged(j) {
			merged = append(merged, j)
		}
	}
	assert.Equal(t, []int{1, 4}, merged)
}

// Every candidate keeps pole order and respects the slot bands.
func TestGenerate_Invariants(t *testing.T) {
	nominal := speech.DefaultNominalTable()
	poles := poleSet(350, 800, 1300, 2100, 2900, 3600)
	g := speech.NewCandidateGenerator(nominal, 4, true)

	set, err := g.Generate(poles)
	require.NoError(t, err)
	require.Greater(t, set.Len(), 0)

	for j := range set.Len() {
		last := -1
		for slot, pole := range set.At(j) {
			if pole == A {
				continue
			}
			assert.True(t, nominal.Admits(slot, poles.Freq[pole]), "cand %d slot %d", j, slot)
			if slot == 1 && set.Merged(j) {
				assert.Equal(t, last, pole)
			} else {
				assert.Greater(t, pole, last, "cand %d slot %d", j, slot)
			}
			last = pole
		}
	}
}

func TestGenerate_NoPoles(t *testing.T) {
	g := speech.NewCandidateGenerator(speech.DefaultNominalTable(), 3, true)
	set, err := g.Generate(speech.PoleSet{})
	require.NoError(t, err)
	assert.Equal(t, 0, set.Len())
}

// Out-of-band poles behind NPoles are never assigned.
func TestGenerate_IgnoresOutOfBandPoles(t *testing.T) {
	g := speech.NewCandidateGenerator(speech.DefaultNominalTable(), 2, false)
	p := speech.PoleSet{NPoles: 1, Freq: []float64{700, 0}, Band: []float64{50, 50}}

	set, err := g.Generate(p)
	require.NoError(t, err)
	assert.Equal(t, [][]int{{0, A}}, rows(set))
}

func TestGenerate_Overflow(t *testing.T) {
	freqs := make([]float64, 30)
	for i := range freqs {
		freqs[i] = 420 + 100*float64(i)
	}

	g := speech.NewCandidateGenerator(speech.DefaultNominalTable(), 4, true)
	set, err := g.Generate(poleSet(freqs...))
	assert.ErrorIs(t, err, speech.ErrCandidateOverflow)
	assert.Equal(t, 0, set.Len())

	// the generator recovers on the next frame
	set, err = g.Generate(poleSet(700, 1200))
	require.NoError(t, err)
	assert.Greater(t, set.Len(), 0)
}
