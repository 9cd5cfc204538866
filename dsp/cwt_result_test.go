package dsp_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wavecore/dsp"
)

func TestCWTResultMagnitudeAndPhase(t *testing.T) {
	coeffs := [][]dsp.Complex{
		{complex(1, 0), complex(0, 1), complex(1, 1)},
	}
	result := dsp.NewCWTResult(coeffs, []float64{1}, []float64{0, 1, 2}, 1, "test")

	mag := result.Magnitude()
	assert.InDelta(t, 1, mag[0][0], 1e-12)
	assert.InDelta(t, 1, mag[0][1], 1e-12)
	assert.InDelta(t, math.Sqrt2, mag[0][2], 1e-12)

	phase := result.Phase()
	assert.InDelta(t, 0, phase[0][0], 1e-12)
	assert.InDelta(t, math.Pi/2, phase[0][1], 1e-12)
	assert.InDelta(t, math.Pi/4, phase[0][2], 1e-12)
}

func TestCWTResultScaleToFrequency(t *testing.T) {
	result := dsp.NewCWTResult([][]dsp.Complex{{0}, {0}}, []float64{1, 2}, []float64{0}, 10, "test")
	freqs := result.ScaleToFrequency(1)
	require.Len(t, freqs, 2)
	assert.InDelta(t, 10, freqs[0], 1e-12)
	assert.InDelta(t, 5, freqs[1], 1e-12)
}

func TestCWTResultScalogramAndAccessors(t *testing.T) {
	coeffs := [][]dsp.Complex{
		{complex(1, 0), complex(2, 0)},
		{complex(0, 3), complex(4, 0)},
	}
	result := dsp.NewCWTResult(coeffs, []float64{1, 2}, []float64{0, 1}, 1, "test")

	scalogram := result.Scalogram()
	assert.InDelta(t, 1+4, scalogram[0], 1e-12)
	assert.InDelta(t, 9+16, scalogram[1], 1e-12)

	row, err := result.CoefficientsAtScale(1)
	require.NoError(t, err)
	assert.Equal(t, coeffs[1], row)

	col, err := result.CoefficientsAtTime(0)
	require.NoError(t, err)
	assert.Equal(t, []dsp.Complex{complex(1, 0), complex(0, 3)}, col)

	_, err = result.CoefficientsAtScale(5)
	require.Error(t, err)
	var dErr *dsp.Error
	require.ErrorAs(t, err, &dErr)
	assert.Equal(t, dsp.KindOutOfBounds, dErr.Kind)

	_, err = result.CoefficientsAtTime(-1)
	require.Error(t, err)
	require.ErrorAs(t, err, &dErr)
	assert.Equal(t, dsp.KindOutOfBounds, dErr.Kind)

	assert.Equal(t, 2, result.NumberOfScales())
	assert.Equal(t, 2, result.NumberOfTimePoints())
}

func TestCWTResultPhaseNearZero(t *testing.T) {
	coeffs := [][]dsp.Complex{{complex(-1, 0), complex(0, -1), complex(0, 0)}}
	result := dsp.NewCWTResult(coeffs, []float64{1}, []float64{0, 1, 2}, 1, "test")
	phase := result.Phase()
	assert.InDelta(t, math.Pi, phase[0][0], 1e-12)
	assert.InDelta(t, -math.Pi/2, phase[0][1], 1e-12)
	assert.InDelta(t, 0, phase[0][2], 1e-12)
	for _, row := range phase {
		for _, p := range row {
			assert.True(t, p > -math.Pi && p <= math.Pi)
		}
	}
}
