package dsp

// ConvolutionMethod selects how MODWTEngine evaluates circular convolution.
type ConvolutionMethod int

const (
	// Auto picks FFT convolution iff N*M exceeds the engine's FFT
	// threshold, DIRECT otherwise.
	Auto ConvolutionMethod = iota
	// Direct forces circular convolution by direct summation.
	Direct
	// FFT forces convolution via the FFT engine.
	FFT
)

func (m ConvolutionMethod) String() string {
	switch m {
	case Auto:
		return "AUTO"
	case Direct:
		return "DIRECT"
	case FFT:
		return "FFT"
	default:
		return "UNKNOWN"
	}
}

// Padding selects how CWTEngine's FFT path pads a signal to the next power
// of two before transforming.
type Padding int

const (
	PadZero Padding = iota
	PadSymmetric
	PadPeriodic
	PadConstant
)

// Parallelism describes a fork/join pool configuration, which resolvePool
// turns into a pool. No engine stores one: TransformParallel and
// TransformFFTParallel always use the shared global pool, and
// TransformParallelCustom resolves a ParallelFixed configuration per call.
// Partition sizes are not configurable; the only tunable axis is how many
// workers participate.
type Parallelism struct {
	// Mode is one of ParallelGlobal, ParallelFixed, or ParallelOff.
	Mode ParallelismMode
	// N is the worker count when Mode == ParallelFixed; ignored otherwise.
	N int
}

// ParallelismMode enumerates the three pool configurations resolvePool
// understands. Engines are not constructed with one.
type ParallelismMode int

const (
	// ParallelGlobal uses a single process-wide shared pool sized to
	// GOMAXPROCS.
	ParallelGlobal ParallelismMode = iota
	// ParallelFixed creates a dedicated pool of a fixed worker count; the
	// caller of resolvePool owns it and must Close it.
	ParallelFixed
	// ParallelOff selects no pool: resolvePool returns nil for it.
	ParallelOff
)

// defaultFFTThreshold is the N*M product above which MODWTEngine's AUTO
// strategy switches from direct to FFT convolution (§4.2).
const defaultFFTThreshold = 4096

// MaxSupportedLevel is the highest MODWT decomposition level this engine
// accepts (§4.2).
const MaxSupportedLevel = 13
