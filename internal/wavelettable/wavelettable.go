// Package wavelettable supplies the small set of concrete wavelet
// descriptors used to exercise and test wavecore/dsp. Wavelet coefficient
// tables are parameters to the core engines, not part of them (see
// SPEC_FULL.md addendum D); this package is the "external collaborator"
// spec.md §1/§3 describes, trimmed to what the seed tests in §8 require.
package wavelettable

import (
	"math"

	"wavecore/dsp"
)

// discrete implements dsp.DiscreteWavelet for an orthogonal QMF filter
// pair.
type discrete struct {
	name        string
	scalingDec  []float64
	waveletDec  []float64
	scalingRec  []float64
	waveletRec  []float64
	transformWL int
}

func (d *discrete) Name() string                { return d.name }
func (d *discrete) ScalingDec() []float64        { return append([]float64(nil), d.scalingDec...) }
func (d *discrete) WaveletDec() []float64        { return append([]float64(nil), d.waveletDec...) }
func (d *discrete) ScalingRec() []float64        { return append([]float64(nil), d.scalingRec...) }
func (d *discrete) WaveletRec() []float64        { return append([]float64(nil), d.waveletRec...) }
func (d *discrete) TransformWavelength() int     { return d.transformWL }

// reverse returns a reversed copy of filter.
func reverse(filter []float64) []float64 {
	out := make([]float64, len(filter))
	for i, v := range filter {
		out[len(filter)-1-i] = v
	}
	return out
}

// Haar returns the Haar wavelet: the 2-tap orthonormal QMF pair.
func Haar() dsp.DiscreteWavelet {
	inv := 1 / math.Sqrt2
	scaling := []float64{inv, inv}
	wavelet := []float64{inv, -inv}
	return &discrete{
		name:        "haar",
		scalingDec:  scaling,
		waveletDec:  wavelet,
		scalingRec:  reverse(scaling),
		waveletRec:  reverse(wavelet),
		transformWL: 2,
	}
}

// Daubechies4 returns the 4-tap Daubechies wavelet (often called "db2" in
// PyWavelets naming, "Daubechies-4" by tap count elsewhere, as spec.md's
// seed test 4 calls it).
func Daubechies4() dsp.DiscreteWavelet {
	s3 := math.Sqrt(3)
	s2 := math.Sqrt2
	h0 := (1 + s3) / (4 * s2)
	h1 := (3 + s3) / (4 * s2)
	h2 := (3 - s3) / (4 * s2)
	h3 := (1 - s3) / (4 * s2)
	scaling := []float64{h0, h1, h2, h3}
	wavelet := []float64{h3, -h2, h1, -h0}
	return &discrete{
		name:        "db4",
		scalingDec:  scaling,
		waveletDec:  wavelet,
		scalingRec:  reverse(scaling),
		waveletRec:  reverse(wavelet),
		transformWL: 4,
	}
}

// continuous implements dsp.ContinuousWavelet.
type continuous struct {
	name    string
	psi     func(t, scale, translation float64) dsp.Complex
	psiHat  func(omega, scale, translation float64) dsp.Complex
	support func() (float64, float64)
	centerF float64
	admiss  float64
}

func (c *continuous) Name() string                          { return c.name }
func (c *continuous) Psi(t, scale, translation float64) dsp.Complex {
	return c.psi(t, scale, translation)
}
func (c *continuous) PsiHat(omega, scale, translation float64) dsp.Complex {
	return c.psiHat(omega, scale, translation)
}
func (c *continuous) EffectiveSupport() (float64, float64) { return c.support() }
func (c *continuous) CenterFrequency() float64              { return c.centerF }
func (c *continuous) AdmissibilityConstant() float64         { return c.admiss }

// Morlet returns the complex Morlet wavelet with omega0 = 6, the standard
// choice that keeps the low-frequency correction term negligible.
func Morlet() dsp.ContinuousWavelet {
	const omega0 = 6.0
	norm := math.Pow(math.Pi, -0.25)
	return &continuous{
		name: "morlet",
		psi: func(t, scale, translation float64) dsp.Complex {
			u := (t - translation) / scale
			envelope := norm * math.Exp(-u*u/2) / math.Sqrt(scale)
			osc := complex(math.Cos(omega0*u), math.Sin(omega0*u))
			return complex(envelope, 0) * osc
		},
		psiHat: func(omega, scale, translation float64) dsp.Complex {
			su := scale * omega
			envelope := math.Sqrt(scale) * norm * math.Sqrt(2*math.Pi) * math.Exp(-0.5*(su-omega0)*(su-omega0))
			rot := complex(math.Cos(-omega*translation), math.Sin(-omega*translation))
			return complex(envelope, 0) * rot
		},
		support: func() (float64, float64) { return -4, 4 },
		centerF: omega0 / (2 * math.Pi),
		admiss:  0.776,
	}
}

// MexicanHat returns the Ricker (Mexican hat) wavelet, the normalized
// second derivative of a Gaussian.
func MexicanHat() dsp.ContinuousWavelet {
	c := 2 / (math.Sqrt(3) * math.Pow(math.Pi, 0.25))
	return &continuous{
		name: "mexicanhat",
		psi: func(t, scale, translation float64) dsp.Complex {
			u := (t - translation) / scale
			v := c * (1 - u*u) * math.Exp(-u*u/2) / math.Sqrt(scale)
			return complex(v, 0)
		},
		psiHat: func(omega, scale, translation float64) dsp.Complex {
			su := scale * omega
			envelope := math.Sqrt(scale) * c * math.Sqrt(2*math.Pi) * su * su * math.Exp(-su*su/2)
			rot := complex(math.Cos(-omega*translation), math.Sin(-omega*translation))
			return complex(envelope, 0) * rot
		},
		support: func() (float64, float64) { return -5, 5 },
		centerF: math.Sqrt2 / (2 * math.Pi),
		admiss:  math.Pi,
	}
}
