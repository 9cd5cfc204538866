package dsp

import (
	"math"
	"math/bits"
)

// FFTEngine computes forward and inverse discrete Fourier transforms of
// arbitrary length. Power-of-two lengths use an in-place iterative
// Cooley-Tukey decimation-in-time; any other length falls back to
// Bluestein's chirp-z transform. FFTEngine holds no mutable state beyond
// what a single call needs, so the zero value is ready to use and is safe
// for concurrent use from multiple goroutines.
type FFTEngine struct{}

// NewFFTEngine returns a ready-to-use FFT engine.
func NewFFTEngine() *FFTEngine {
	return &FFTEngine{}
}

// Forward computes the unnormalized forward DFT of x.
func (e *FFTEngine) Forward(x []Complex) []Complex {
	return e.transform(x, false)
}

// Inverse computes the inverse DFT of X, scaling by 1/N.
func (e *FFTEngine) Inverse(X []Complex) []Complex {
	return e.transform(X, true)
}

// ForwardReal is a convenience wrapper that transforms a real-valued signal
// and returns the spectrum interleaved as [Re0, Im0, Re1, Im1, ...].
func (e *FFTEngine) ForwardReal(x []float64) []float64 {
	c := make([]Complex, len(x))
	for i, v := range x {
		c[i] = complex(v, 0)
	}
	X := e.Forward(c)
	out := make([]float64, 2*len(X))
	for i, v := range X {
		out[2*i] = real(v)
		out[2*i+1] = imag(v)
	}
	return out
}

// InverseReal reconstructs a real signal from an interleaved spectrum
// produced by ForwardReal. It fails with KindInvalidArgument if the
// interleaved slice has odd length.
func (e *FFTEngine) InverseReal(interleaved []float64) ([]float64, error) {
	if len(interleaved)%2 != 0 {
		return nil, newError(KindInvalidArgument, "FFTEngine.InverseReal", "len(interleaved)", len(interleaved), "even")
	}
	n := len(interleaved) / 2
	X := make([]Complex, n)
	for i := 0; i < n; i++ {
		X[i] = complex(interleaved[2*i], interleaved[2*i+1])
	}
	x := e.Inverse(X)
	out := make([]float64, n)
	for i, v := range x {
		out[i] = real(v)
	}
	return out, nil
}

// ForwardLevel always fails: FFTEngine has no notion of a decomposition
// level, unlike MODWTEngine/CWTEngine's multi-level and multi-scale APIs
// (§4.1, §7).
func (e *FFTEngine) ForwardLevel(x []Complex, level int) ([]Complex, error) {
	return nil, newError(KindUnsupportedOperation, "FFTEngine.ForwardLevel", "level", level, "not applicable")
}

// transform dispatches between the power-of-two and Bluestein paths and
// applies the 1/N inverse scaling.
func (e *FFTEngine) transform(x []Complex, inverse bool) []Complex {
	n := len(x)
	if n == 0 {
		return []Complex{}
	}
	if n == 1 {
		out := make([]Complex, 1)
		out[0] = x[0]
		return out
	}

	var result []Complex
	if isPowerOfTwo(n) {
		result = make([]Complex, n)
		copy(result, x)
		radix2(result, inverse)
	} else {
		result = bluestein(x, inverse)
	}

	if inverse {
		inv := 1 / float64(n)
		for i := range result {
			result[i] *= complex(inv, 0)
		}
	}
	return result
}

// isPowerOfTwo reports whether n is a positive power of two.
func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// nextPowerOfTwo returns the smallest power of two >= n.
func nextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(n-1))
}

// radix2 performs an in-place, unnormalized decimation-in-time Cooley-Tukey
// FFT on a power-of-two length buffer. sign is +1 for inverse and -1 for
// forward, matching §4.1's twiddle sign convention.
func radix2(a []Complex, inverse bool) {
	n := len(a)
	logN := bits.Len(uint(n)) - 1

	// Iterative bit-reversal permutation: a reversed-bit index is derived
	// from the leading-zero count of n, swapping only when reverse(k) > k.
	for k := 0; k < n; k++ {
		r := bits.Reverse(uint(k)) >> (bits.UintSize - logN)
		if int(r) > k {
			a[k], a[int(r)] = a[int(r)], a[k]
		}
	}

	sign := -1.0
	if inverse {
		sign = 1.0
	}

	for s := 1; s <= logN; s++ {
		m := 1 << s
		half := m / 2
		wm := complex(math.Cos(sign*2*math.Pi/float64(m)), math.Sin(sign*2*math.Pi/float64(m)))
		for start := 0; start < n; start += m {
			w := complex(1.0, 0.0)
			for j := 0; j < half; j++ {
				u := a[start+j]
				t := w * a[start+j+half]
				a[start+j] = u + t
				a[start+j+half] = u - t
				w *= wm
			}
		}
	}
}

// bluestein computes the DFT of an arbitrary-length sequence by reducing it
// to a power-of-two circular convolution via a chirp sequence, per §4.1.
func bluestein(x []Complex, inverse bool) []Complex {
	n := len(x)
	sign := -1.0
	if inverse {
		sign = 1.0
	}

	chirp := make([]Complex, n)
	for k := 0; k < n; k++ {
		// k^2 mod 2n keeps the angle argument bounded for large n without
		// changing exp(i*pi*k^2/n).
		kk := (k * k) % (2 * n)
		angle := sign * math.Pi * float64(kk) / float64(n)
		chirp[k] = complex(math.Cos(angle), math.Sin(angle))
	}

	m := nextPowerOfTwo(2*n - 1)

	a := make([]Complex, m)
	for k := 0; k < n; k++ {
		a[k] = x[k] * chirp[k]
	}

	b := make([]Complex, m)
	b[0] = Conjugate(chirp[0])
	for k := 1; k < n; k++ {
		c := Conjugate(chirp[k])
		b[k] = c
		b[m-k] = c
	}

	radix2(a, false)
	radix2(b, false)
	for i := range a {
		a[i] *= b[i]
	}
	radix2(a, true)

	invM := 1 / float64(m)
	out := make([]Complex, n)
	for k := 0; k < n; k++ {
		out[k] = a[k] * complex(invM, 0) * chirp[k]
	}
	return out
}
