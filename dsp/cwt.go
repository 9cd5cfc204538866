package dsp

import "math"

// timeBlockSize is the time-axis tile size used by TransformParallel,
// chosen to fit typical L1/L2 caches (§4.3).
const timeBlockSize = 64

// CWTEngine computes the Continuous Wavelet Transform of a real signal
// over a caller-supplied list of scales, either by direct convolution or
// by per-scale FFT, sequentially or with one of several parallel
// schedules. CWTEngine holds a single ContinuousWavelet; construct one
// engine per wavelet.
type CWTEngine struct {
	wavelet ContinuousWavelet
	fft     *FFTEngine
	padding Padding
}

// NewCWTEngine creates a CWTEngine for the given continuous wavelet.
func NewCWTEngine(wavelet ContinuousWavelet) *CWTEngine {
	return &CWTEngine{wavelet: wavelet, fft: NewFFTEngine(), padding: PadZero}
}

// SetPadding sets the padding mode used by the FFT-based transforms.
func (e *CWTEngine) SetPadding(p Padding) {
	e.padding = p
}

// GenerateLogScales returns n logarithmically spaced scales in [min, max].
func (e *CWTEngine) GenerateLogScales(min, max float64, n int) ([]float64, error) {
	if err := validateScaleRange(min, max, n, "CWTEngine.GenerateLogScales"); err != nil {
		return nil, err
	}
	scales := make([]float64, n)
	factor := math.Pow(max/min, 1/float64(n-1))
	for i := 0; i < n; i++ {
		scales[i] = min * math.Pow(factor, float64(i))
	}
	return scales, nil
}

// GenerateLinearScales returns n linearly spaced scales in [min, max].
func (e *CWTEngine) GenerateLinearScales(min, max float64, n int) ([]float64, error) {
	if err := validateScaleRange(min, max, n, "CWTEngine.GenerateLinearScales"); err != nil {
		return nil, err
	}
	scales := make([]float64, n)
	step := (max - min) / float64(n-1)
	for i := 0; i < n; i++ {
		scales[i] = min + step*float64(i)
	}
	return scales, nil
}

func validateScaleRange(min, max float64, n int, method string) error {
	if min <= 0 {
		return newError(KindInvalidArgument, method, "min", min, "> 0")
	}
	if max <= min {
		return newError(KindInvalidArgument, method, "max", max, min)
	}
	if n < 2 {
		return newError(KindInvalidArgument, method, "n", n, 2)
	}
	return nil
}

func validateTransformArgs(signal, scales []float64, samplingRate float64, method string) error {
	if samplingRate <= 0 {
		return newError(KindInvalidArgument, method, "sampling_rate", samplingRate, "> 0")
	}
	if len(scales) == 0 {
		return newError(KindInvalidArgument, method, "scales", len(scales), "non-empty")
	}
	for _, s := range scales {
		if s <= 0 {
			return newError(KindInvalidArgument, method, "scale", s, "> 0")
		}
	}
	return nil
}

// Transform computes the CWT by direct convolution, sequentially.
func (e *CWTEngine) Transform(signal, scales []float64, samplingRate float64) (*CWTResult, error) {
	if err := validateTransformArgs(signal, scales, samplingRate, "CWTEngine.Transform"); err != nil {
		return nil, err
	}
	if len(signal) == 0 {
		return NewCWTResult([][]Complex{}, scales, []float64{}, samplingRate, e.wavelet.Name()), nil
	}
	coeffs := make([][]Complex, len(scales))
	for i, s := range scales {
		coeffs[i] = e.directScale(signal, s, samplingRate, 0, len(signal))
	}
	return e.assemble(coeffs, scales, len(signal), samplingRate), nil
}

// TransformParallel computes the CWT by direct convolution, tiling the
// time axis into fixed-size blocks processed in parallel, iterating scales
// within each block for cache locality (§4.3). Falls back to sequential
// below the heuristic gate.
func (e *CWTEngine) TransformParallel(signal, scales []float64, samplingRate float64) (*CWTResult, error) {
	if err := validateTransformArgs(signal, scales, samplingRate, "CWTEngine.TransformParallel"); err != nil {
		return nil, err
	}
	n := len(signal)
	if n == 0 {
		return NewCWTResult([][]Complex{}, scales, []float64{}, samplingRate, e.wavelet.Name()), nil
	}
	if !shouldParallelize(n, len(scales)) {
		return e.Transform(signal, scales, samplingRate)
	}

	coeffs := make([][]Complex, len(scales))
	for i := range coeffs {
		coeffs[i] = make([]Complex, n)
	}
	nBlocks := (n + timeBlockSize - 1) / timeBlockSize
	globalPool.ParallelFor(nBlocks, func(start, end int) {
		for b := start; b < end; b++ {
			blockStart := b * timeBlockSize
			blockEnd := blockStart + timeBlockSize
			if blockEnd > n {
				blockEnd = n
			}
			for si, s := range scales {
				row := e.directScale(signal, s, samplingRate, blockStart, blockEnd)
				copy(coeffs[si][blockStart:blockEnd], row)
			}
		}
	})
	return e.assemble(coeffs, scales, n, samplingRate), nil
}

// TransformFFT computes the CWT via one FFT of the (padded) signal and one
// inverse FFT per scale, sequentially.
func (e *CWTEngine) TransformFFT(signal, scales []float64, samplingRate float64) (*CWTResult, error) {
	if err := validateTransformArgs(signal, scales, samplingRate, "CWTEngine.TransformFFT"); err != nil {
		return nil, err
	}
	n := len(signal)
	if n == 0 {
		return NewCWTResult([][]Complex{}, scales, []float64{}, samplingRate, e.wavelet.Name()), nil
	}
	dt := 1 / samplingRate
	padded := padSignal(signal, e.padding)
	m := len(padded)
	S := e.fft.Forward(toComplexSlice(padded))
	freqs := fftFreqs(m, dt)

	coeffs := make([][]Complex, len(scales))
	for i, s := range scales {
		coeffs[i] = e.fftScale(S, freqs, s, dt, m, n)
	}
	return e.assemble(coeffs, scales, n, samplingRate), nil
}

// TransformFFTParallel computes the CWT via FFT, parallelizing the outer
// loop over scales (each scale's FFT/IFFT is independent).
func (e *CWTEngine) TransformFFTParallel(signal, scales []float64, samplingRate float64) (*CWTResult, error) {
	if err := validateTransformArgs(signal, scales, samplingRate, "CWTEngine.TransformFFTParallel"); err != nil {
		return nil, err
	}
	n := len(signal)
	if n == 0 {
		return NewCWTResult([][]Complex{}, scales, []float64{}, samplingRate, e.wavelet.Name()), nil
	}
	if !shouldParallelize(n, len(scales)) {
		return e.TransformFFT(signal, scales, samplingRate)
	}

	dt := 1 / samplingRate
	padded := padSignal(signal, e.padding)
	m := len(padded)
	S := e.fft.Forward(toComplexSlice(padded))
	freqs := fftFreqs(m, dt)

	coeffs := make([][]Complex, len(scales))
	globalPool.ParallelFor(len(scales), func(start, end int) {
		for i := start; i < end; i++ {
			coeffs[i] = e.fftScale(S, freqs, scales[i], dt, m, n)
		}
	})
	return e.assemble(coeffs, scales, n, samplingRate), nil
}

// TransformParallelCustom computes the CWT via FFT using a dedicated pool
// of the given parallelism, partitioning the scale range into at most that
// many contiguous chunks via the pool's own ParallelFor.
func (e *CWTEngine) TransformParallelCustom(signal, scales []float64, samplingRate float64, parallelism int) (*CWTResult, error) {
	if err := validateTransformArgs(signal, scales, samplingRate, "CWTEngine.TransformParallelCustom"); err != nil {
		return nil, err
	}
	n := len(signal)
	if n == 0 {
		return NewCWTResult([][]Complex{}, scales, []float64{}, samplingRate, e.wavelet.Name()), nil
	}

	dt := 1 / samplingRate
	padded := padSignal(signal, e.padding)
	m := len(padded)
	S := e.fft.Forward(toComplexSlice(padded))
	freqs := fftFreqs(m, dt)

	coeffs := make([][]Complex, len(scales))
	compute := func(start, end int) {
		for i := start; i < end; i++ {
			coeffs[i] = e.fftScale(S, freqs, scales[i], dt, m, n)
		}
	}

	if !shouldParallelize(n, len(scales)) {
		compute(0, len(scales))
		return e.assemble(coeffs, scales, n, samplingRate), nil
	}

	p, owned := resolvePool(Parallelism{Mode: ParallelFixed, N: parallelism})
	if owned {
		defer p.Close()
	}
	p.ParallelFor(len(scales), compute)
	return e.assemble(coeffs, scales, n, samplingRate), nil
}

// shouldParallelize implements the heuristic gate from §4.3.
func shouldParallelize(n, nScales int) bool {
	if n < 64 {
		return false
	}
	if n < 256 {
		return nScales >= 16
	}
	return nScales >= 8
}

// directScale evaluates the direct-convolution CWT for one scale over time
// indices [tStart, tEnd), using the wavelet's effective support to bound
// the inner loop.
func (e *CWTEngine) directScale(signal []float64, scale, samplingRate float64, tStart, tEnd int) []Complex {
	n := len(signal)
	dt := 1 / samplingRate
	tMin, tMax := e.wavelet.EffectiveSupport()
	iMinOffset := int(math.Floor(tMin * scale / dt))
	iMaxOffset := int(math.Ceil(tMax * scale / dt))

	out := make([]Complex, tEnd-tStart)
	for t := tStart; t < tEnd; t++ {
		iStart := t + iMinOffset
		if iStart < 0 {
			iStart = 0
		}
		iEnd := t + iMaxOffset
		if iEnd > n-1 {
			iEnd = n - 1
		}
		var sum Complex
		for i := iStart; i <= iEnd; i++ {
			sum += complex(signal[i], 0) * Conjugate(e.wavelet.Psi(float64(i-t)*dt, scale, 0))
		}
		out[t-tStart] = sum * complex(dt, 0)
	}
	return out
}

// fftScale evaluates the FFT-based CWT for one scale given the padded
// signal's spectrum S and its frequency grid freqs, returning the first n
// samples of the result.
func (e *CWTEngine) fftScale(S []Complex, freqs []float64, scale, dt float64, m, n int) []Complex {
	psiHat := make([]Complex, m)
	for k, omega := range freqs {
		psiHat[k] = Conjugate(e.wavelet.PsiHat(omega, scale, 0))
	}
	prod := make([]Complex, m)
	for k := range prod {
		prod[k] = S[k] * psiHat[k]
	}
	res := e.fft.Inverse(prod)
	return res[:n]
}

// assemble builds a CWTResult with a time axis of n sample times spaced
// 1/samplingRate apart.
func (e *CWTEngine) assemble(coeffs [][]Complex, scales []float64, n int, samplingRate float64) *CWTResult {
	timeAxis := make([]float64, n)
	dt := 1 / samplingRate
	for i := range timeAxis {
		timeAxis[i] = float64(i) * dt
	}
	return NewCWTResult(coeffs, scales, timeAxis, samplingRate, e.wavelet.Name())
}

// fftFreqs returns the angular frequency (rad/s) of each FFT bin of a
// length-m transform sampled at interval dt, using standard FFT ordering:
// positive frequencies in the first half, negative in the second.
func fftFreqs(m int, dt float64) []float64 {
	out := make([]float64, m)
	for k := 0; k < m; k++ {
		kk := k
		if k >= (m+1)/2 {
			kk = k - m
		}
		out[k] = 2 * math.Pi * float64(kk) / (float64(m) * dt)
	}
	return out
}

// padSignal pads signal to the next power of two using the given mode.
func padSignal(signal []float64, mode Padding) []float64 {
	n := len(signal)
	m := nextPowerOfTwo(n)
	if m == n {
		out := make([]float64, n)
		copy(out, signal)
		return out
	}
	out := make([]float64, m)
	copy(out, signal)
	switch mode {
	case PadSymmetric:
		for i := n; i < m; i++ {
			mirror := n - 1 - (i - n)
			if mirror < 0 {
				mirror = 0
			}
			out[i] = signal[mirror]
		}
	case PadPeriodic:
		for i := n; i < m; i++ {
			out[i] = signal[(i-n)%n]
		}
	case PadConstant:
		last := 0.0
		if n > 0 {
			last = signal[n-1]
		}
		for i := n; i < m; i++ {
			out[i] = last
		}
	default: // PadZero
	}
	return out
}

func toComplexSlice(x []float64) []Complex {
	out := make([]Complex, len(x))
	for i, v := range x {
		out[i] = complex(v, 0)
	}
	return out
}
