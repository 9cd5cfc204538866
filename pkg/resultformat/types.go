// Package resultformat provides reading and writing of persisted transform
// result files (.wcrf).
//
// The result format is a chunk-based binary container for storing one or
// more FFTEngine/MODWTEngine/CWTEngine outputs with metadata. It uses IEEE
// 754 half-precision (f16) encoding for coefficient grids, providing ~50%
// storage savings compared to float32, exactly as the IR library format it
// was adapted from did for audio samples.
package resultformat

import "errors"

// Format constants.
const (
	// MagicNumber identifies a WCRF file.
	MagicNumber = "WCRF"

	// CurrentVersion is the format version implemented by this package.
	CurrentVersion uint16 = 1

	// Chunk type identifiers.
	ChunkTypeResult = "RES-"
	ChunkTypeIndex  = "INDX"
	ChunkTypeMeta   = "META"
	ChunkTypeData   = "DATA"
)

// Header sizes in bytes.
const (
	FileHeaderSize     = 18 // Magic(4) + Version(2) + ResultCount(4) + IndexOffset(8)
	ChunkHeaderSize    = 12 // ChunkID(4) + ChunkSize(8)
	SubChunkHeaderSize = 8  // ChunkID(4) + ChunkSize(4)
)

// Errors.
var (
	ErrInvalidMagic       = errors.New("resultformat: invalid magic number")
	ErrUnsupportedVersion = errors.New("resultformat: unsupported format version")
	ErrInvalidChunk       = errors.New("resultformat: invalid chunk")
	ErrCorruptedData      = errors.New("resultformat: corrupted data")
	ErrResultNotFound     = errors.New("resultformat: result not found")
	ErrInvalidIndex       = errors.New("resultformat: invalid result index")
)

// Kind identifies which engine produced a Result.
type Kind uint8

const (
	// KindFFTSpectrum marks a Result holding an FFTEngine spectrum.
	KindFFTSpectrum Kind = iota
	// KindMODWTGrid marks a Result holding an MODWTEngine coefficient grid
	// (one row per detail level plus the final approximation row).
	KindMODWTGrid
	// KindCWTGrid marks a Result holding a CWTEngine scale x time grid.
	KindCWTGrid
)

// Library represents a collection of persisted transform results stored in
// a single file.
type Library struct {
	Version uint16
	Results []*Result
}

// NewLibrary creates a new empty result library.
func NewLibrary() *Library {
	return &Library{
		Version: CurrentVersion,
		Results: make([]*Result, 0),
	}
}

// AddResult appends a result to the library.
func (lib *Library) AddResult(r *Result) {
	lib.Results = append(lib.Results, r)
}

// Result is a single persisted transform output: a 2-D value grid (FFT or
// CWT magnitudes, or signed MODWT coefficients), an optional phase grid (populated only for complex-valued CWT results), and
// the metadata needed to interpret it.
type Result struct {
	Metadata  Metadata
	Magnitude [][]float32 // [row][col], row-major by level (MODWT) or scale (CWT)
	Phase     [][]float32 // nil unless Metadata.Kind == KindCWTGrid
}

// NewResult creates a Result from its metadata and magnitude grid.
func NewResult(meta Metadata, magnitude, phase [][]float32) *Result {
	rows := len(magnitude)
	cols := 0
	if rows > 0 {
		cols = len(magnitude[0])
	}
	meta.Rows = rows
	meta.Cols = cols
	return &Result{Metadata: meta, Magnitude: magnitude, Phase: phase}
}

// Metadata describes the transform that produced a Result.
type Metadata struct {
	Kind         Kind
	Name         string // wavelet name, or "fft"
	SamplingRate float64
	Scales       []float64 // CWT scales; empty for FFT/MODWT
	Rows         int       // level+1 (MODWT) or scales (CWT); 1 for FFT
	Cols         int       // samples per row
}
