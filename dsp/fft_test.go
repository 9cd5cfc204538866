package dsp_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wavecore/dsp"
)

func approxEqualComplex(t *testing.T, want, got dsp.Complex, tol float64, msgAndArgs ...any) {
	t.Helper()
	assert.InDeltaf(t, real(want), real(got), tol, "real part: %v", msgAndArgs)
	assert.InDeltaf(t, imag(want), imag(got), tol, "imag part: %v", msgAndArgs)
}

func TestFFTEmptyAndSingleton(t *testing.T) {
	e := dsp.NewFFTEngine()

	require.Empty(t, e.Forward(nil))
	require.Empty(t, e.Inverse(nil))

	x := []dsp.Complex{complex(3, -2)}
	got := e.Forward(x)
	require.Len(t, got, 1)
	approxEqualComplex(t, x[0], got[0], 1e-12)

	got = e.Inverse(x)
	require.Len(t, got, 1)
	approxEqualComplex(t, x[0], got[0], 1e-12)
}

func TestFFTConstantInput(t *testing.T) {
	e := dsp.NewFFTEngine()
	x := []dsp.Complex{1, 1, 1, 1}
	X := e.Forward(x)

	want := []dsp.Complex{4, 0, 0, 0}
	for i := range want {
		approxEqualComplex(t, want[i], X[i], 1e-9)
	}

	back := e.Inverse(X)
	for i := range x {
		approxEqualComplex(t, x[i], back[i], 1e-9)
	}
}

func TestFFTRealSinusoid(t *testing.T) {
	e := dsp.NewFFTEngine()
	n := 8
	x := make([]dsp.Complex, n)
	for i := 0; i < n; i++ {
		x[i] = complex(math.Cos(2*math.Pi*float64(i)/8), 0)
	}
	X := e.Forward(x)
	for k, v := range X {
		m := dsp.Magnitude(v)
		if k == 1 || k == 7 {
			assert.GreaterOrEqualf(t, m, 3.9, "bin %d magnitude", k)
		} else {
			assert.Lessf(t, m, 0.01, "bin %d magnitude", k)
		}
	}
}

func TestFFTRoundTripPowerOfTwo(t *testing.T) {
	e := dsp.NewFFTEngine()
	rng := rand.New(rand.NewSource(42))
	n := 64
	x := make([]dsp.Complex, n)
	for i := range x {
		x[i] = complex(rng.NormFloat64(), rng.NormFloat64())
	}
	X := e.Forward(x)
	back := e.Inverse(X)
	for i := range x {
		approxEqualComplex(t, x[i], back[i], 1e-10)
	}
}

func TestFFTRoundTripArbitraryLength(t *testing.T) {
	e := dsp.NewFFTEngine()
	rng := rand.New(rand.NewSource(7))
	for _, n := range []int{0, 1, 2, 3, 5, 7, 13, 100, 257} {
		x := make([]dsp.Complex, n)
		for i := range x {
			x[i] = complex(rng.NormFloat64(), rng.NormFloat64())
		}
		X := e.Forward(x)
		back := e.Inverse(X)
		require.Len(t, back, n)
		for i := range x {
			approxEqualComplex(t, x[i], back[i], 1e-8, "n=%d", n)
		}
	}
}

func TestFFTParseval(t *testing.T) {
	e := dsp.NewFFTEngine()
	rng := rand.New(rand.NewSource(99))
	n := 37
	x := make([]dsp.Complex, n)
	var energyTime float64
	for i := range x {
		x[i] = complex(rng.NormFloat64(), rng.NormFloat64())
		energyTime += dsp.Magnitude(x[i]) * dsp.Magnitude(x[i])
	}
	X := e.Forward(x)
	var energyFreq float64
	for _, v := range X {
		energyFreq += dsp.Magnitude(v) * dsp.Magnitude(v)
	}
	assert.InEpsilon(t, energyTime, energyFreq/float64(n), 1e-8)
}

func TestFFTLinearity(t *testing.T) {
	e := dsp.NewFFTEngine()
	rng := rand.New(rand.NewSource(5))
	n := 16
	x := make([]dsp.Complex, n)
	y := make([]dsp.Complex, n)
	for i := range x {
		x[i] = complex(rng.NormFloat64(), rng.NormFloat64())
		y[i] = complex(rng.NormFloat64(), rng.NormFloat64())
	}
	a, b := complex(2.0, 0.0), complex(-1.5, 0.0)
	combined := make([]dsp.Complex, n)
	for i := range combined {
		combined[i] = a*x[i] + b*y[i]
	}

	Xf := e.Forward(x)
	Yf := e.Forward(y)
	Cf := e.Forward(combined)
	for i := range Cf {
		approxEqualComplex(t, a*Xf[i]+b*Yf[i], Cf[i], 1e-8)
	}
}

func TestFFTConjugateSymmetryRealInput(t *testing.T) {
	e := dsp.NewFFTEngine()
	rng := rand.New(rand.NewSource(3))
	n := 32
	x := make([]dsp.Complex, n)
	for i := range x {
		x[i] = complex(rng.NormFloat64(), 0)
	}
	X := e.Forward(x)
	for k := 1; k < n/2; k++ {
		approxEqualComplex(t, dsp.Conjugate(X[k]), X[n-k], 1e-8)
	}
}

func TestFFTCircularShiftPhaseRamp(t *testing.T) {
	e := dsp.NewFFTEngine()
	n := 16
	x := make([]dsp.Complex, n)
	for i := range x {
		x[i] = complex(math.Sin(2*math.Pi*3*float64(i)/float64(n))+0.3*float64(i%3), 0)
	}
	shift := 5
	shifted := make([]dsp.Complex, n)
	for i := range x {
		shifted[(i+shift)%n] = x[i]
	}

	X := e.Forward(x)
	Xs := e.Forward(shifted)
	for k := range X {
		ramp := complex(math.Cos(-2*math.Pi*float64(k*shift)/float64(n)), math.Sin(-2*math.Pi*float64(k*shift)/float64(n)))
		approxEqualComplex(t, X[k]*ramp, Xs[k], 1e-8)
		assert.InDelta(t, dsp.Magnitude(X[k]), dsp.Magnitude(Xs[k]), 1e-8)
	}
}

func TestFFTForwardRealInverseReal(t *testing.T) {
	e := dsp.NewFFTEngine()
	x := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	spectrum := e.ForwardReal(x)
	back, err := e.InverseReal(spectrum)
	require.NoError(t, err)
	for i := range x {
		assert.InDelta(t, x[i], back[i], 1e-9)
	}

	_, err = e.InverseReal(spectrum[:len(spectrum)-1])
	require.Error(t, err)
	var dErr *dsp.Error
	require.ErrorAs(t, err, &dErr)
	assert.Equal(t, dsp.KindInvalidArgument, dErr.Kind)
}

func TestFFTForwardLevelUnsupported(t *testing.T) {
	e := dsp.NewFFTEngine()
	_, err := e.ForwardLevel([]dsp.Complex{1, 2}, 3)
	require.Error(t, err)
	var dErr *dsp.Error
	require.ErrorAs(t, err, &dErr)
	assert.Equal(t, dsp.KindUnsupportedOperation, dErr.Kind)
}
