package dsp

// CWTResult is the scale x time grid of complex coefficients produced by
// CWTEngine, together with deterministic derived views. All derivations
// are pure functions of Coefficients; CWTResult owns its grid once
// returned (§3).
type CWTResult struct {
	coeffs       [][]Complex
	scales       []float64
	timeAxis     []float64
	samplingRate float64
	waveletName  string
}

// NewCWTResult assembles a result from a scale x time coefficient grid.
func NewCWTResult(coeffs [][]Complex, scales, timeAxis []float64, samplingRate float64, waveletName string) *CWTResult {
	return &CWTResult{
		coeffs:       coeffs,
		scales:       scales,
		timeAxis:     timeAxis,
		samplingRate: samplingRate,
		waveletName:  waveletName,
	}
}

// Coefficients returns the raw scale x time complex grid.
func (r *CWTResult) Coefficients() [][]Complex { return r.coeffs }

// Scales returns the scales the transform was evaluated at.
func (r *CWTResult) Scales() []float64 { return r.scales }

// TimeAxis returns the time (in seconds) of each column.
func (r *CWTResult) TimeAxis() []float64 { return r.timeAxis }

// SamplingRate returns the sampling rate the transform was computed with.
func (r *CWTResult) SamplingRate() float64 { return r.samplingRate }

// WaveletName returns the name of the wavelet used.
func (r *CWTResult) WaveletName() string { return r.waveletName }

// NumberOfScales returns the number of rows in the coefficient grid.
func (r *CWTResult) NumberOfScales() int { return len(r.coeffs) }

// NumberOfTimePoints returns the number of columns in the coefficient grid.
func (r *CWTResult) NumberOfTimePoints() int {
	if len(r.coeffs) == 0 {
		return 0
	}
	return len(r.coeffs[0])
}

// Magnitude returns |coeffs[i][j]| for every coefficient.
func (r *CWTResult) Magnitude() [][]float64 {
	out := make([][]float64, len(r.coeffs))
	for i, row := range r.coeffs {
		out[i] = make([]float64, len(row))
		for j, c := range row {
			out[i][j] = Magnitude(c)
		}
	}
	return out
}

// Phase returns arg(coeffs[i][j]) normalized to (-pi, pi] for every
// coefficient.
func (r *CWTResult) Phase() [][]float64 {
	out := make([][]float64, len(r.coeffs))
	for i, row := range r.coeffs {
		out[i] = make([]float64, len(row))
		for j, c := range row {
			out[i][j] = Argument(c)
		}
	}
	return out
}

// Real returns the real part of every coefficient.
func (r *CWTResult) Real() [][]float64 {
	out := make([][]float64, len(r.coeffs))
	for i, row := range r.coeffs {
		out[i] = make([]float64, len(row))
		for j, c := range row {
			out[i][j] = real(c)
		}
	}
	return out
}

// Imaginary returns the imaginary part of every coefficient.
func (r *CWTResult) Imaginary() [][]float64 {
	out := make([][]float64, len(r.coeffs))
	for i, row := range r.coeffs {
		out[i] = make([]float64, len(row))
		for j, c := range row {
			out[i][j] = imag(c)
		}
	}
	return out
}

// Scalogram returns, for each scale, the sum of squared magnitudes over
// time: the energy as a function of scale.
func (r *CWTResult) Scalogram() []float64 {
	out := make([]float64, len(r.coeffs))
	for i, row := range r.coeffs {
		var sum float64
		for _, c := range row {
			m := Magnitude(c)
			sum += m * m
		}
		out[i] = sum
	}
	return out
}

// CoefficientsAtScale returns the time series of coefficients for scale
// index i.
func (r *CWTResult) CoefficientsAtScale(i int) ([]Complex, error) {
	if i < 0 || i >= len(r.coeffs) {
		return nil, newError(KindOutOfBounds, "CWTResult.CoefficientsAtScale", "i", i, len(r.coeffs)-1)
	}
	return r.coeffs[i], nil
}

// CoefficientsAtTime returns the scale series of coefficients for time
// index j.
func (r *CWTResult) CoefficientsAtTime(j int) ([]Complex, error) {
	n := r.NumberOfTimePoints()
	if j < 0 || j >= n {
		return nil, newError(KindOutOfBounds, "CWTResult.CoefficientsAtTime", "j", j, n-1)
	}
	out := make([]Complex, len(r.coeffs))
	for i, row := range r.coeffs {
		out[i] = row[j]
	}
	return out, nil
}

// ScaleToFrequency converts every scale to a frequency in Hz, given the
// continuous wavelet's center frequency: freq[i] = centerFreq *
// samplingRate / scales[i].
func (r *CWTResult) ScaleToFrequency(centerFreq float64) []float64 {
	out := make([]float64, len(r.scales))
	for i, s := range r.scales {
		out[i] = centerFreq * r.samplingRate / s
	}
	return out
}
