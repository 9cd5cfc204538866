package dsp_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wavecore/dsp"
	"wavecore/internal/wavelettable"
)

func TestMODWTHaarRoundTrip(t *testing.T) {
	e := dsp.NewMODWTEngine(wavelettable.Haar())
	signal := []float64{1, 2, 3, 4, 5, 6, 7, 8}

	coeffs, err := e.Forward(signal, 3)
	require.NoError(t, err)
	require.Len(t, coeffs, 4)
	for _, row := range coeffs {
		require.Len(t, row, 8)
	}

	back, err := e.Inverse(coeffs)
	require.NoError(t, err)
	for i := range signal {
		assert.InDelta(t, signal[i], back[i], 1e-10)
	}
}

func TestMODWTEmptySignal(t *testing.T) {
	e := dsp.NewMODWTEngine(wavelettable.Haar())
	coeffs, err := e.Forward(nil, 2)
	require.NoError(t, err)
	assert.Empty(t, coeffs)

	back, err := e.Inverse(nil)
	require.NoError(t, err)
	assert.Empty(t, back)
}

func TestMODWTLevelBounds(t *testing.T) {
	e := dsp.NewMODWTEngine(wavelettable.Haar())

	_, err := e.Forward([]float64{1}, 1)
	require.Error(t, err)
	var dErr *dsp.Error
	require.ErrorAs(t, err, &dErr)
	assert.Equal(t, dsp.KindInvalidLevel, dErr.Kind)

	signal := make([]float64, 16)
	_, err = e.Forward(signal, dsp.MaxSupportedLevel+1)
	require.Error(t, err)
	require.ErrorAs(t, err, &dErr)
	assert.Equal(t, dsp.KindInvalidLevel, dErr.Kind)

	_, err = e.Forward(signal, 0)
	require.Error(t, err)
	require.ErrorAs(t, err, &dErr)
	assert.Equal(t, dsp.KindInvalidLevel, dErr.Kind)
}

func TestMODWTShiftInvariance(t *testing.T) {
	e := dsp.NewMODWTEngine(wavelettable.Daubechies4())
	n := 64
	rng := rand.New(rand.NewSource(11))
	signal := make([]float64, n)
	for i := range signal {
		signal[i] = rng.NormFloat64()
	}

	coeffs, err := e.Forward(signal, 3)
	require.NoError(t, err)

	shift := 7
	shifted := make([]float64, n)
	for i := range signal {
		shifted[(i+shift)%n] = signal[i]
	}
	shiftedCoeffs, err := e.Forward(shifted, 3)
	require.NoError(t, err)

	for j, row := range coeffs {
		for i := range row {
			assert.InDeltaf(t, row[i], shiftedCoeffs[j][(i+shift)%n], 1e-8, "level %d index %d", j, i)
		}
	}
}

func TestMODWTEnergyConservation(t *testing.T) {
	e := dsp.NewMODWTEngine(wavelettable.Daubechies4())
	n := 128
	rng := rand.New(rand.NewSource(21))
	signal := make([]float64, n)
	var mean float64
	for i := range signal {
		signal[i] = rng.NormFloat64()
		mean += signal[i]
	}
	mean /= float64(n)

	var inputVar float64
	for _, v := range signal {
		inputVar += (v - mean) * (v - mean)
	}
	inputVar /= float64(n)

	coeffs, err := e.Forward(signal, 4)
	require.NoError(t, err)

	var totalVar float64
	for _, row := range coeffs {
		var rowMean float64
		for _, v := range row {
			rowMean += v
		}
		rowMean /= float64(len(row))
		var v float64
		for _, x := range row {
			v += (x - rowMean) * (x - rowMean)
		}
		totalVar += v / float64(len(row))
	}

	assert.InEpsilon(t, inputVar, totalVar, 1e-6)
}

func TestMODWTDirectVsFFTAgreement(t *testing.T) {
	rng := rand.New(rand.NewSource(2024))
	n := 256
	signal := make([]float64, n)
	for i := range signal {
		signal[i] = rng.NormFloat64()
	}

	direct := dsp.NewMODWTEngine(wavelettable.Daubechies4())
	direct.SetConvolutionMethod(dsp.Direct)
	fft := dsp.NewMODWTEngine(wavelettable.Daubechies4())
	fft.SetConvolutionMethod(dsp.FFT)
	auto := dsp.NewMODWTEngine(wavelettable.Daubechies4())
	auto.SetConvolutionMethod(dsp.Auto)

	dCoeffs, err := direct.Forward(signal, 4)
	require.NoError(t, err)
	fCoeffs, err := fft.Forward(signal, 4)
	require.NoError(t, err)
	aCoeffs, err := auto.Forward(signal, 4)
	require.NoError(t, err)

	for j := range dCoeffs {
		for i := range dCoeffs[j] {
			assert.InDeltaf(t, dCoeffs[j][i], fCoeffs[j][i], 1e-8, "DIRECT vs FFT level %d index %d", j, i)
			assert.InDeltaf(t, dCoeffs[j][i], aCoeffs[j][i], 1e-8, "DIRECT vs AUTO level %d index %d", j, i)
		}
	}
}

func TestMODWTClearFilterCacheMatchesFreshEngine(t *testing.T) {
	n := 32
	rng := rand.New(rand.NewSource(55))
	signal := make([]float64, n)
	for i := range signal {
		signal[i] = rng.NormFloat64()
	}

	e := dsp.NewMODWTEngine(wavelettable.Haar())
	first, err := e.Forward(signal, 3)
	require.NoError(t, err)

	e.ClearFilterCache()
	second, err := e.Forward(signal, 3)
	require.NoError(t, err)

	fresh := dsp.NewMODWTEngine(wavelettable.Haar())
	third, err := fresh.Forward(signal, 3)
	require.NoError(t, err)

	for j := range first {
		for i := range first[j] {
			assert.Equal(t, first[j][i], second[j][i])
			assert.InDelta(t, first[j][i], third[j][i], 1e-12)
		}
	}
}

func TestMODWTPrecomputeFilters(t *testing.T) {
	e := dsp.NewMODWTEngine(wavelettable.Haar())
	require.NoError(t, e.PrecomputeFilters(5))

	err := e.PrecomputeFilters(0)
	require.Error(t, err)
	err = e.PrecomputeFilters(dsp.MaxSupportedLevel + 1)
	require.Error(t, err)
}

func TestMODWTFlatFacade(t *testing.T) {
	e := dsp.NewMODWTEngine(wavelettable.Haar())
	signal := make([]float64, 16)
	for i := range signal {
		signal[i] = math.Sin(float64(i))
	}

	flat, err := e.ForwardFlat(signal, 3)
	require.NoError(t, err)
	require.Len(t, flat, 16*4)

	back, err := e.InverseFlat(flat, 3)
	require.NoError(t, err)
	for i := range signal {
		assert.InDelta(t, signal[i], back[i], 1e-10)
	}

	_, err = e.ForwardFlat(signal[:10], 2)
	require.Error(t, err)
	var dErr *dsp.Error
	require.ErrorAs(t, err, &dErr)
	assert.Equal(t, dsp.KindInvalidLength, dErr.Kind)
}

func TestMODWTSetWaveletClearsCache(t *testing.T) {
	e := dsp.NewMODWTEngine(wavelettable.Haar())
	signal := make([]float64, 16)
	for i := range signal {
		signal[i] = float64(i)
	}
	_, err := e.Forward(signal, 2)
	require.NoError(t, err)

	e.SetWavelet(wavelettable.Daubechies4())
	coeffs, err := e.Forward(signal, 2)
	require.NoError(t, err)
	back, err := e.Inverse(coeffs)
	require.NoError(t, err)
	for i := range signal {
		assert.InDelta(t, signal[i], back[i], 1e-9)
	}
}
