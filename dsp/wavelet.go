package dsp

// DiscreteWavelet is the external collaborator supplying decomposition and
// reconstruction filters for MODWT (and, via TransformWavelength, for the
// orthogonal Wavelet Packet Transform, which is not part of this core).
// Concrete tables (Haar, Daubechies, Symlet, ...) are parameters to the
// engines below, not part of them; see internal/wavelettable for the small
// set used to exercise and test this package.
type DiscreteWavelet interface {
	// ScalingDec returns the decomposition scaling filter.
	ScalingDec() []float64
	// WaveletDec returns the decomposition wavelet filter.
	WaveletDec() []float64
	// ScalingRec returns the reconstruction scaling filter (DWT-style; MODWT
	// uses the decomposition filters only).
	ScalingRec() []float64
	// WaveletRec returns the reconstruction wavelet filter.
	WaveletRec() []float64
	// TransformWavelength is the smallest power of two for which the
	// orthogonal forward step is defined.
	TransformWavelength() int
	// Name identifies the wavelet, e.g. for CWTResult.WaveletName.
	Name() string
}

// ContinuousWavelet is the external collaborator supplying the time- and
// frequency-domain wavelet used by CWTEngine.
type ContinuousWavelet interface {
	// Psi evaluates the wavelet in time at scale s and translation tau.
	Psi(t, scale, translation float64) Complex
	// PsiHat evaluates the wavelet's Fourier transform at angular frequency
	// omega, scale s and translation tau.
	PsiHat(omega, scale, translation float64) Complex
	// EffectiveSupport returns the interval outside which |Psi| is
	// negligible, for a unit scale; callers scale it by s.
	EffectiveSupport() (tMin, tMax float64)
	// CenterFrequency returns the wavelet's characteristic frequency, used
	// to convert scale to frequency.
	CenterFrequency() float64
	// AdmissibilityConstant returns the admissibility integral; finite and
	// positive for admissible wavelets.
	AdmissibilityConstant() float64
	// Name identifies the wavelet, e.g. for CWTResult.WaveletName.
	Name() string
}
