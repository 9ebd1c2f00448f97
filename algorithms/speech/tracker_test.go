package speech_test

import (
	"testing"

	"github.com/RyanBlaney/sonido-formant/algorithms/speech"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// frameInput bundles what the tracker sees for one frame
type frameInput struct {
	poles speech.PoleSet
	cands speech.CandidateSet
	rms   float64
}

func makeFrame(t *testing.T, formants int, merge bool, freqs ...float64) frameInput {
	t.Helper()
	poles := poleSet(freqs...)
	g := speech.NewCandidateGenerator(speech.DefaultNominalTable(), formants, merge)
	cands, err := g.Generate(poles)
	require.NoError(t, err)
	return frameInput{poles: poles, cands: cands, rms: 1}
}

func newTracker(formants int, retainAll bool) *speech.FormantTracker {
	return speech.NewFormantTracker(speech.DefaultNominalTable(), formants, speech.DefaultCostWeights(), false, retainAll)
}

func TestTracker_FirstFrameIsLocalMinimum(t *testing.T) {
	tr := newTracker(2, false)
	assert.Equal(t, speech.StateEmpty, tr.State())

	f := makeFrame(t, 2, false, 700, 1200)
	best, bestCost := -1, 0.0
	for j := range f.cands.Len() {
		if c := tr.LocalCost(f.poles, f.cands, j); best < 0 || c < bestCost {
			best, bestCost = j, c
		}
	}

	choice := tr.Step(f.poles, f.cands, f.rms)
	assert.Equal(t, best, choice.Candidate)
	assert.InDelta(t, bestCost, choice.Cost, 1e-12)
	assert.Equal(t, []float64{700, 1200}, choice.Freq)
	assert.Equal(t, []float64{50, 50}, choice.Band)
	assert.False(t, choice.Fallback)
	assert.Equal(t, speech.StateTracking, tr.State())
	assert.Equal(t, 1, tr.Frames())
}

func TestTracker_LocalCost(t *testing.T) {
	tr := newTracker(2, false)
	f := makeFrame(t, 2, false, 700, 1200)
	require.Equal(t, [][]int{{0, 1}, {1, A}}, rows(f.cands))

	// bandwidth 0.002·(50+50), deviation 0.3·(200/500 + 300/1500)
	assert.InDelta(t, 0.2+0.18, tr.LocalCost(f.poles, f.cands, 0), 1e-12)
	// bandwidth 0.002·(50+1000), deviation 0.3·(700/500 + 1)
	assert.InDelta(t, 2.1+0.72, tr.LocalCost(f.poles, f.cands, 1), 1e-12)
}

func TestTracker_MergePenalty(t *testing.T) {
	tr := speech.NewFormantTracker(speech.DefaultNominalTable(), 2, speech.DefaultCostWeights(), true, false)
	f := makeFrame(t, 2, true, 700, 1200)
	require.True(t, f.cands.Merged(1))

	plain := tr.LocalCost(f.poles, f.cands, 0)
	merged := tr.LocalCost(f.poles, f.cands, 1)
	assert.Greater(t, merged, plain+1999)
}

func TestTracker_EmptyFrameFallsBack(t *testing.T) {
	tr := newTracker(3, false)
	voiced := makeFrame(t, 3, false, 700, 1200, 2500)
	tr.Step(voiced.poles, voiced.cands, voiced.rms)
	require.Equal(t, speech.StateTracking, tr.State())

	choice := tr.Step(speech.PoleSet{}, speech.CandidateSet{Formants: 3}, 1)
	assert.True(t, choice.Fallback)
	assert.Equal(t, -1, choice.Candidate)
	assert.Equal(t, []float64{500, 1500, 2500}, choice.Freq)
	assert.Equal(t, []float64{1000, 1000, 1000}, choice.Band)
	assert.Equal(t, speech.StateEmpty, tr.State())

	// the next frame starts a fresh path: cost is local only
	f := makeFrame(t, 3, false, 600, 1100)
	next := tr.Step(f.poles, f.cands, 1)
	assert.InDelta(t, tr.LocalCost(f.poles, f.cands, next.Candidate), next.Cost, 1e-12)
	assert.Equal(t, 2, next.Frame)
}

// A frame identical to its predecessor costs nothing to reach from it.
func TestTracker_StationaryInputAccumulates(t *testing.T) {
	tr := newTracker(2, false)
	f := makeFrame(t, 2, false, 700, 1200)
	local := tr.LocalCost(f.poles, f.cands, 0)

	var prev float64
	for i := range 5 {
		c := tr.Step(f.poles, f.cands, f.rms)
		assert.Equal(t, 0, c.Candidate)
		assert.InDelta(t, float64(i+1)*local, c.Cost, 1e-9)
		assert.GreaterOrEqual(t, c.Cost, prev)
		prev = c.Cost
	}
}

// Frame 0 slightly prefers 600 Hz, but 640 Hz is much closer to frame 1.
// The causal decision keeps 600 Hz, the backtrace revises it.
func TestTracker_BacktraceRevisesEarlierFrames(t *testing.T) {
	stream := newTracker(1, false)
	batch := newTracker(1, true)

	f0 := makeFrame(t, 1, false, 600, 640)
	f1 := makeFrame(t, 1, false, 1000)
	require.Equal(t, [][]int{{0}, {1}}, rows(f0.cands))

	for _, tr := range []*speech.FormantTracker{stream, batch} {
		c0 := tr.Step(f0.poles, f0.cands, 1)
		assert.Equal(t, []float64{600}, c0.Freq)

		c1 := tr.Step(f1.poles, f1.cands, 1)
		assert.Equal(t, []float64{1000}, c1.Freq)
		// 0.4 local + 0.184 + 20·(2·360/1640)²
		assert.InDelta(t, 4.43885, c1.Cost, 1e-4)
	}

	assert.Nil(t, stream.Finish())

	path := batch.Finish()
	require.Len(t, path, 2)
	assert.Equal(t, 1, path[0].Candidate)
	assert.Equal(t, []float64{640}, path[0].Freq)
	assert.Equal(t, []float64{1000}, path[1].Freq)
	assert.Equal(t, speech.StateEmpty, batch.State())
	assert.Equal(t, 0, batch.Frames())
}

// Quiet frames are cheaper to move through than loud ones.
func TestTracker_TransitionScalesWithRMS(t *testing.T) {
	f0 := makeFrame(t, 1, false, 600)
	f1 := makeFrame(t, 1, false, 1000)

	loud := newTracker(1, false)
	loud.Step(f0.poles, f0.cands, 1)
	cLoud := loud.Step(f1.poles, f1.cands, 1)

	quiet := newTracker(1, false)
	quiet.Step(f0.poles, f0.cands, 1)
	cQuiet := quiet.Step(f1.poles, f1.cands, 0.1)

	local0 := quiet.LocalCost(f0.poles, f0.cands, 0)
	local1 := quiet.LocalCost(f1.poles, f1.cands, 0)
	assert.InDelta(t, local0+local1+20*0.25, cLoud.Cost, 1e-9)
	assert.InDelta(t, local0+local1+2*0.25, cQuiet.Cost, 1e-9)
}

func TestTracker_MissingSlotTransition(t *testing.T) {
	tr := newTracker(2, false)
	f0 := makeFrame(t, 2, false, 700)
	f1 := makeFrame(t, 2, false, 700)
	require.Equal(t, [][]int{{0, A}}, rows(f0.cands))

	tr.Step(f0.poles, f0.cands, 1)
	c := tr.Step(f1.poles, f1.cands, 1)

	local := tr.LocalCost(f1.poles, f1.cands, 0)
	assert.InDelta(t, 2*local+20, c.Cost, 1e-9)
	assert.Equal(t, []float64{700, 1500}, c.Freq)
	assert.Equal(t, []float64{50, 1000}, c.Band)
}

func TestTracker_MissingSlotScalesWithRMS(t *testing.T) {
	tr := newTracker(2, false)
	f0 := makeFrame(t, 2, false, 700)
	f1 := makeFrame(t, 2, false, 700)

	tr.Step(f0.poles, f0.cands, 1)
	c := tr.Step(f1.poles, f1.cands, 0.1)

	// DFFact 20 at a tenth of the loudest RMS leaves 2 per missing slot
	local := tr.LocalCost(f1.poles, f1.cands, 0)
	assert.InDelta(t, 2*local+2, c.Cost, 1e-9)
}

func TestTracker_ResetIsDeterministic(t *testing.T) {
	tr := newTracker(2, true)
	frames := []frameInput{
		makeFrame(t, 2, false, 650, 1100),
		makeFrame(t, 2, false, 700, 1180, 2400),
		makeFrame(t, 2, false, 720, 1250),
	}

	run := func() []speech.Choice {
		var out []speech.Choice
		for _, f := range frames {
			out = append(out, tr.Step(f.poles, f.cands, f.rms))
		}
		return out
	}

	first := run()
	tr.Reset()
	second := run()
	assert.Equal(t, first, second)

	path := tr.Finish()
	require.Len(t, path, len(frames))
	assert.Equal(t, first[len(first)-1], path[len(path)-1])
}

func TestTrackerState_String(t *testing.T) {
	assert.Equal(t, "empty", speech.StateEmpty.String())
	assert.Equal(t, "tracking", speech.StateTracking.String())
}
