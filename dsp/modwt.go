package dsp

import (
	"math"
	"math/bits"
	"sync"
)

// MODWTEngine computes the Maximal Overlap Discrete Wavelet Transform: a
// redundant, shift-invariant, multi-level decomposition built from circular
// convolution with per-level upsampled filters. It caches those upsampled
// filters across calls (§3's "MODWT filter cache") and can evaluate the
// convolution either by direct summation or via FFTEngine, chosen
// automatically or forced by SetConvolutionMethod.
//
// MODWTEngine is safe for concurrent Forward/Inverse calls on the same
// instance provided the wavelet and cached filters are not mutated
// concurrently (§5); SetWavelet, SetConvolutionMethod, and
// ClearFilterCache must not race with a transform in flight.
type MODWTEngine struct {
	mu           sync.RWMutex
	wavelet      DiscreteWavelet
	method       ConvolutionMethod
	fftThreshold int
	fft          *FFTEngine
	cache        *filterCache
}

// NewMODWTEngine creates a MODWTEngine for the given discrete wavelet, with
// AUTO convolution strategy selection and the default FFT threshold.
func NewMODWTEngine(wavelet DiscreteWavelet) *MODWTEngine {
	return &MODWTEngine{
		wavelet:      wavelet,
		method:       Auto,
		fftThreshold: defaultFFTThreshold,
		fft:          NewFFTEngine(),
		cache:        newFilterCache(),
	}
}

// SetWavelet swaps the wavelet and clears the filter cache, per §3's
// ownership rule that a wavelet swap requires clearing the cache before the
// next operation.
func (e *MODWTEngine) SetWavelet(w DiscreteWavelet) {
	e.mu.Lock()
	e.wavelet = w
	e.mu.Unlock()
	e.cache.clear()
}

// SetConvolutionMethod sets the strategy used to evaluate circular
// convolution.
func (e *MODWTEngine) SetConvolutionMethod(m ConvolutionMethod) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.method = m
}

// GetConvolutionMethod returns the current convolution strategy.
func (e *MODWTEngine) GetConvolutionMethod() ConvolutionMethod {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.method
}

// SetFFTThreshold overrides the N*M product above which AUTO switches to
// FFT convolution. The default is 4096.
func (e *MODWTEngine) SetFFTThreshold(threshold int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.fftThreshold = threshold
}

// MaxSupportedLevel returns the highest decomposition level this engine
// accepts.
func (e *MODWTEngine) MaxSupportedLevel() int {
	return MaxSupportedLevel
}

// PrecomputeFilters populates the filter cache for levels 1..maxLevel,
// transitioning the engine from Fresh to CacheReady ahead of the first
// transform.
func (e *MODWTEngine) PrecomputeFilters(maxLevel int) error {
	if maxLevel < 1 || maxLevel > MaxSupportedLevel {
		return newError(KindInvalidLevel, "MODWTEngine.PrecomputeFilters", "max_level", maxLevel, MaxSupportedLevel)
	}
	e.mu.RLock()
	w := e.wavelet
	e.mu.RUnlock()
	e.cache.ensureBase(w)
	for j := 1; j <= maxLevel; j++ {
		if _, _, err := e.cache.filters(j); err != nil {
			return err
		}
	}
	return nil
}

// ClearFilterCache atomically invalidates the filter cache, transitioning
// the engine from CacheReady back to Fresh.
func (e *MODWTEngine) ClearFilterCache() {
	e.cache.clear()
}

// Forward computes the (maxLevel+1) x N MODWT coefficient matrix of
// signal: rows 0..maxLevel-1 are detail coefficients W_1..W_maxLevel, and
// row maxLevel is the final approximation V_maxLevel.
func (e *MODWTEngine) Forward(signal []float64, maxLevel int) ([][]float64, error) {
	if len(signal) == 0 {
		return [][]float64{}, nil
	}
	n := len(signal)
	if err := e.validateLevel(maxLevel, n, "MODWTEngine.Forward"); err != nil {
		return nil, err
	}

	e.mu.RLock()
	wv := e.wavelet
	e.mu.RUnlock()
	e.cache.ensureBase(wv)

	v := append([]float64(nil), signal...)
	rows := make([][]float64, maxLevel+1)
	for j := 1; j <= maxLevel; j++ {
		gj, hj, err := e.cache.filters(j)
		if err != nil {
			return nil, err
		}
		w, err := e.convolve(v, hj, false)
		if err != nil {
			return nil, err
		}
		vNext, err := e.convolve(v, gj, false)
		if err != nil {
			return nil, err
		}
		rows[j-1] = w
		v = vNext
	}
	rows[maxLevel] = v
	return rows, nil
}

// Inverse reconstructs the original signal from a (level+1) x N MODWT
// coefficient matrix produced by Forward.
func (e *MODWTEngine) Inverse(coeffs [][]float64) ([]float64, error) {
	if len(coeffs) == 0 {
		return []float64{}, nil
	}
	maxLevel := len(coeffs) - 1
	n := len(coeffs[0])
	for _, row := range coeffs {
		if len(row) != n {
			return nil, newError(KindInvalidArgument, "MODWTEngine.Inverse", "row length", len(row), n)
		}
	}
	if err := e.validateLevel(maxLevel, n, "MODWTEngine.Inverse"); err != nil {
		return nil, err
	}

	e.mu.RLock()
	wv := e.wavelet
	e.mu.RUnlock()
	e.cache.ensureBase(wv)

	v := append([]float64(nil), coeffs[maxLevel]...)
	for j := maxLevel; j >= 1; j-- {
		gj, hj, err := e.cache.filters(j)
		if err != nil {
			return nil, err
		}
		a, err := e.convolve(v, gj, true)
		if err != nil {
			return nil, err
		}
		d, err := e.convolve(coeffs[j-1], hj, true)
		if err != nil {
			return nil, err
		}
		next := make([]float64, n)
		for i := range next {
			next[i] = a[i] + d[i]
		}
		v = next
	}
	return v, nil
}

// ForwardFlat is the flattened 1-D façade: it returns the coefficient
// matrix in row-major layout [W1 | W2 | ... | WJ | VJ]. N must be a power
// of two.
func (e *MODWTEngine) ForwardFlat(signal []float64, level int) ([]float64, error) {
	n := len(signal)
	if n == 0 {
		return []float64{}, nil
	}
	if !isPowerOfTwo(n) {
		return nil, newError(KindInvalidLength, "MODWTEngine.ForwardFlat", "len(signal)", n, "power of two")
	}
	rows, err := e.Forward(signal, level)
	if err != nil {
		return nil, err
	}
	flat := make([]float64, n*(level+1))
	for i, row := range rows {
		copy(flat[i*n:(i+1)*n], row)
	}
	return flat, nil
}

// InverseFlat reconstructs a signal from a flattened coefficient vector
// produced by ForwardFlat.
func (e *MODWTEngine) InverseFlat(flat []float64, level int) ([]float64, error) {
	if len(flat) == 0 {
		return []float64{}, nil
	}
	rows := level + 1
	if rows <= 0 || len(flat)%rows != 0 {
		return nil, newError(KindInvalidArgument, "MODWTEngine.InverseFlat", "len(flat)", len(flat), rows)
	}
	n := len(flat) / rows
	if !isPowerOfTwo(n) {
		return nil, newError(KindInvalidLength, "MODWTEngine.InverseFlat", "row length", n, "power of two")
	}
	coeffs := make([][]float64, rows)
	for i := range coeffs {
		coeffs[i] = flat[i*n : (i+1)*n]
	}
	return e.Inverse(coeffs)
}

// validateLevel enforces the level preconditions from §4.2: 1 <= level <=
// MaxSupportedLevel and level <= floor(log2(n)).
func (e *MODWTEngine) validateLevel(level, n int, method string) error {
	if level < 1 {
		return newError(KindInvalidLevel, method, "max_level", level, 1)
	}
	if level > MaxSupportedLevel {
		return newError(KindInvalidLevel, method, "max_level", level, MaxSupportedLevel)
	}
	floorLog2N := bits.Len(uint(n)) - 1
	if level > floorLog2N {
		return newError(KindInvalidLevel, method, "max_level", level, floorLog2N)
	}
	return nil
}

// convolve dispatches to direct or FFT circular convolution per the
// AUTO/DIRECT/FFT strategy, computing either Hx (adjoint=false) or H^T x
// (adjoint=true).
func (e *MODWTEngine) convolve(signal, filter []float64, adjoint bool) ([]float64, error) {
	e.mu.RLock()
	method, threshold := e.method, e.fftThreshold
	e.mu.RUnlock()

	useFFT := method == FFT
	if method == Auto {
		useFFT = len(signal)*len(filter) > threshold
	}

	if useFFT {
		return e.fftConvolve(signal, filter, adjoint), nil
	}
	if adjoint {
		return circConvAdjoint(signal, filter), nil
	}
	return circConv(signal, filter), nil
}

// circConv computes circular convolution: out[n] = sum_m signal[(n-m) mod
// N] * filter[m].
func circConv(signal, filter []float64) []float64 {
	n := len(signal)
	m := len(filter)
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		var sum float64
		for k := 0; k < m; k++ {
			sum += signal[euclideanMod(i-k, n)] * filter[k]
		}
		out[i] = sum
	}
	return out
}

// circConvAdjoint computes the adjoint (transpose) operator: out[n] =
// sum_m signal[(n+m) mod N] * filter[m].
func circConvAdjoint(signal, filter []float64) []float64 {
	n := len(signal)
	m := len(filter)
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		var sum float64
		for k := 0; k < m; k++ {
			sum += signal[euclideanMod(i+k, n)] * filter[k]
		}
		out[i] = sum
	}
	return out
}

// euclideanMod returns the non-negative remainder of a mod n.
func euclideanMod(a, n int) int {
	m := a % n
	if m < 0 {
		m += n
	}
	return m
}

// fftConvolve evaluates circular convolution (or its adjoint) via
// FFTEngine, by wrapping the filter to the signal length and multiplying
// spectra (conjugating the filter spectrum for the adjoint).
func (e *MODWTEngine) fftConvolve(signal, filter []float64, adjoint bool) []float64 {
	n := len(signal)
	padded := make([]float64, n)
	for i, v := range filter {
		padded[i%n] += v
	}

	sig := make([]Complex, n)
	filt := make([]Complex, n)
	for i, v := range signal {
		sig[i] = complex(v, 0)
	}
	for i, v := range padded {
		filt[i] = complex(v, 0)
	}

	Sig := e.fft.Forward(sig)
	Filt := e.fft.Forward(filt)

	prod := make([]Complex, n)
	for i := range prod {
		if adjoint {
			prod[i] = Sig[i] * Conjugate(Filt[i])
		} else {
			prod[i] = Sig[i] * Filt[i]
		}
	}

	res := e.fft.Inverse(prod)
	out := make([]float64, n)
	for i, v := range res {
		out[i] = real(v)
	}
	return out
}

// filterCache stores the per-level upsampled MODWT filters, keyed by
// decomposition level. Reads either see a fully populated entry or compute
// it themselves; publication of base filters happens-before publication of
// any cache entry via the same mutex (§5).
type filterCache struct {
	mu          sync.RWMutex
	initialized bool
	baseG       []float64
	baseH       []float64
	g           map[int][]float64
	h           map[int][]float64
}

func newFilterCache() *filterCache {
	return &filterCache{g: make(map[int][]float64), h: make(map[int][]float64)}
}

// ensureBase derives the base MODWT filters from the wavelet's
// decomposition filters (normalized to unit L2 norm, then divided by
// sqrt(2)) the first time it is called after construction or a clear.
func (c *filterCache) ensureBase(w DiscreteWavelet) {
	c.mu.RLock()
	if c.initialized {
		c.mu.RUnlock()
		return
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.initialized {
		return
	}

	invSqrt2 := 1 / math.Sqrt2
	g := normalizeL2(w.ScalingDec())
	h := normalizeL2(w.WaveletDec())
	for i := range g {
		g[i] *= invSqrt2
	}
	for i := range h {
		h[i] *= invSqrt2
	}
	c.baseG = g
	c.baseH = h
	c.g = make(map[int][]float64)
	c.h = make(map[int][]float64)
	c.initialized = true
}

// filters returns the upsampled (g_j, h_j) filters for level j, computing
// and caching them on first use.
func (c *filterCache) filters(level int) ([]float64, []float64, error) {
	c.mu.RLock()
	g, gok := c.g[level]
	h, hok := c.h[level]
	c.mu.RUnlock()
	if gok && hok {
		return g, h, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	var err error
	if g, gok = c.g[level]; !gok {
		g, err = upsampleFilter(c.baseG, level)
		if err != nil {
			return nil, nil, err
		}
		c.g[level] = g
	}
	if h, hok = c.h[level]; !hok {
		h, err = upsampleFilter(c.baseH, level)
		if err != nil {
			return nil, nil, err
		}
		c.h[level] = h
	}
	return g, h, nil
}

// clear atomically invalidates the cache under the write lock. Entries are
// computed while holding that same lock, so no computation straddles a
// clear; the next ensureBase re-derives the base filters and starts from
// empty maps.
func (c *filterCache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.initialized = false
	c.baseG = nil
	c.baseH = nil
	c.g = make(map[int][]float64)
	c.h = make(map[int][]float64)
}

// normalizeL2 returns a copy of filter scaled to unit L2 norm.
func normalizeL2(filter []float64) []float64 {
	var sumSq float64
	for _, v := range filter {
		sumSq += v * v
	}
	norm := math.Sqrt(sumSq)
	out := make([]float64, len(filter))
	if norm == 0 {
		copy(out, filter)
		return out
	}
	for i, v := range filter {
		out[i] = v / norm
	}
	return out
}

// upsampleFilter inserts 2^(level-1)-1 zeros between consecutive
// coefficients of base, per §3's MODWT filter cache definition.
func upsampleFilter(base []float64, level int) ([]float64, error) {
	l := len(base)
	gap := (1 << uint(level-1)) - 1
	upLen := l + (l-1)*gap
	if upLen < 0 || upLen > 1<<30 {
		return nil, newError(KindIndexOverflow, "MODWTEngine", "upsampled_length", upLen, 1<<30)
	}
	out := make([]float64, upLen)
	step := gap + 1
	for i, v := range base {
		out[i*step] = v
	}
	return out, nil
}
