package formant

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLPC_KeepsOnlyLatestWindow(t *testing.T) {
	p, err := New(nil)
	require.NoError(t, err)

	tone := func(n int) []float64 {
		x := make([]float64, n)
		for i := range x {
			x[i] = 1000*math.Sin(2*math.Pi*700*float64(i)/10000) + 300*math.Sin(2*math.Pi*1900*float64(i)/10000)
		}
		return x
	}

	first, err := p.lpc(tone(512))
	require.NoError(t, err)
	assert.Equal(t, 512, p.window.GetSize())

	_, err = p.lpc(tone(511))
	require.NoError(t, err)
	assert.Equal(t, 511, p.window.GetSize())

	again, err := p.lpc(tone(512))
	require.NoError(t, err)
	assert.Equal(t, 512, p.window.GetSize())
	assert.Equal(t, first.Coefficients, again.Coefficients)
	assert.Equal(t, first.RMS, again.RMS)
}
