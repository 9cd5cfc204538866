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

func TestCWTGenerateScales(t *testing.T) {
	e := dsp.NewCWTEngine(wavelettable.Morlet())

	log, err := e.GenerateLogScales(1, 16, 5)
	require.NoError(t, err)
	require.Len(t, log, 5)
	assert.InDelta(t, 1, log[0], 1e-9)
	assert.InDelta(t, 16, log[4], 1e-9)

	lin, err := e.GenerateLinearScales(1, 16, 4)
	require.NoError(t, err)
	require.Len(t, lin, 4)
	assert.InDelta(t, 1, lin[0], 1e-9)
	assert.InDelta(t, 16, lin[3], 1e-9)
	assert.InDelta(t, 6, lin[1], 1e-9)

	_, err = e.GenerateLogScales(0, 16, 5)
	require.Error(t, err)
	_, err = e.GenerateLogScales(16, 1, 5)
	require.Error(t, err)
	_, err = e.GenerateLogScales(1, 16, 1)
	require.Error(t, err)
}

func TestCWTEmptySignal(t *testing.T) {
	e := dsp.NewCWTEngine(wavelettable.Morlet())
	result, err := e.Transform(nil, []float64{1, 2}, 10)
	require.NoError(t, err)
	assert.Equal(t, 0, result.NumberOfScales())
}

func TestCWTInvalidArguments(t *testing.T) {
	e := dsp.NewCWTEngine(wavelettable.Morlet())
	signal := make([]float64, 32)

	_, err := e.Transform(signal, nil, 10)
	require.Error(t, err)
	var dErr *dsp.Error
	require.ErrorAs(t, err, &dErr)
	assert.Equal(t, dsp.KindInvalidArgument, dErr.Kind)

	_, err = e.Transform(signal, []float64{1, -2}, 10)
	require.Error(t, err)

	_, err = e.Transform(signal, []float64{1, 2}, 0)
	require.Error(t, err)
}

func TestCWTDirectApproxFFT(t *testing.T) {
	n := 256
	signal := make([]float64, n)
	for i := range signal {
		signal[i] = math.Sin(2*math.Pi*float64(i)/16) + 0.5*math.Sin(2*math.Pi*float64(i)/64)
	}

	e := dsp.NewCWTEngine(wavelettable.Morlet())
	scales, err := e.GenerateLogScales(2, 32, 12)
	require.NoError(t, err)

	direct, err := e.Transform(signal, scales, 100)
	require.NoError(t, err)
	viaFFT, err := e.TransformFFT(signal, scales, 100)
	require.NoError(t, err)

	dm := direct.Magnitude()
	fm := viaFFT.Magnitude()

	var total, count float64
	for i := range dm {
		for j := range dm[i] {
			total += math.Abs(dm[i][j] - fm[i][j])
			count++
		}
	}
	assert.Less(t, total/count, 0.1)
}

func TestCWTParallelVariantsMatchSequential(t *testing.T) {
	rng := rand.New(rand.NewSource(123))
	n := 512
	signal := make([]float64, n)
	for i := range signal {
		signal[i] = rng.NormFloat64()
	}

	e := dsp.NewCWTEngine(wavelettable.Morlet())
	scales, err := e.GenerateLogScales(2, 32, 20)
	require.NoError(t, err)

	seqDirect, err := e.Transform(signal, scales, 50)
	require.NoError(t, err)
	parDirect, err := e.TransformParallel(signal, scales, 50)
	require.NoError(t, err)

	for i := range seqDirect.Coefficients() {
		for j := range seqDirect.Coefficients()[i] {
			assert.InDelta(t, real(seqDirect.Coefficients()[i][j]), real(parDirect.Coefficients()[i][j]), 1e-9)
			assert.InDelta(t, imag(seqDirect.Coefficients()[i][j]), imag(parDirect.Coefficients()[i][j]), 1e-9)
		}
	}

	seqFFT, err := e.TransformFFT(signal, scales, 50)
	require.NoError(t, err)
	parFFT, err := e.TransformFFTParallel(signal, scales, 50)
	require.NoError(t, err)
	customFFT, err := e.TransformParallelCustom(signal, scales, 50, 4)
	require.NoError(t, err)

	for i := range seqFFT.Coefficients() {
		for j := range seqFFT.Coefficients()[i] {
			assert.InDelta(t, real(seqFFT.Coefficients()[i][j]), real(parFFT.Coefficients()[i][j]), 1e-9)
			assert.InDelta(t, imag(seqFFT.Coefficients()[i][j]), imag(parFFT.Coefficients()[i][j]), 1e-9)
			assert.InDelta(t, real(seqFFT.Coefficients()[i][j]), real(customFFT.Coefficients()[i][j]), 1e-9)
			assert.InDelta(t, imag(seqFFT.Coefficients()[i][j]), imag(customFFT.Coefficients()[i][j]), 1e-9)
		}
	}
}

func TestCWTPhaseAlwaysInRange(t *testing.T) {
	n := 128
	signal := make([]float64, n)
	for i := range signal {
		signal[i] = math.Cos(2 * math.Pi * float64(i) / 10)
	}
	e := dsp.NewCWTEngine(wavelettable.Morlet())
	scales, err := e.GenerateLinearScales(1, 20, 10)
	require.NoError(t, err)
	result, err := e.Transform(signal, scales, 100)
	require.NoError(t, err)
	phase := result.Phase()
	for _, row := range phase {
		for _, p := range row {
			assert.True(t, p > -math.Pi && p <= math.Pi)
		}
	}
}

func TestCWTScaleToFrequency(t *testing.T) {
	e := dsp.NewCWTEngine(wavelettable.Morlet())
	result := dsp.NewCWTResult([][]dsp.Complex{{0}, {0}}, []float64{1, 2}, []float64{0}, 10, "morlet")
	freqs := result.ScaleToFrequency(1)
	assert.InDelta(t, 10, freqs[0], 1e-12)
	assert.InDelta(t, 5, freqs[1], 1e-12)
	_ = e
}

func TestCWTTransformFacadeUnsupported(t *testing.T) {
	e := dsp.NewCWTEngine(wavelettable.Morlet())
	facade := dsp.NewCWTTransform(e)

	_, err := facade.Forward([]float64{1, 2, 3})
	require.Error(t, err)
	var dErr *dsp.Error
	require.ErrorAs(t, err, &dErr)
	assert.Equal(t, dsp.KindUnsupportedOperation, dErr.Kind)

	_, err = facade.Reverse([]float64{1, 2, 3})
	require.Error(t, err)
	require.ErrorAs(t, err, &dErr)
	assert.Equal(t, dsp.KindUnsupportedOperation, dErr.Kind)
}
