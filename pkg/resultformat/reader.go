package resultformat

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"wavecore/pkg/f16"
)

// IndexEntry contains metadata for fast result lookup without loading the
// full coefficient grid.
type IndexEntry struct {
	Offset uint64
	Kind   Kind
	Rows   int
	Cols   int
	Name   string
}

// Reader reads result library files.
type Reader struct {
	r           io.ReadSeeker
	version     uint16
	count       uint32
	indexOffset uint64
	index       []IndexEntry
}

// NewReader creates a new Reader and parses the file header and index.
func NewReader(r io.ReadSeeker) (*Reader, error) {
	reader := &Reader{r: r}
	if err := reader.readHeader(); err != nil {
		return nil, err
	}
	if err := reader.readIndex(); err != nil {
		return nil, err
	}
	return reader, nil
}

func (r *Reader) readHeader() error {
	magic := make([]byte, 4)
	if _, err := io.ReadFull(r.r, magic); err != nil {
		return fmt.Errorf("%w: %w", ErrCorruptedData, err)
	}
	if string(magic) != MagicNumber {
		return ErrInvalidMagic
	}

	if err := binary.Read(r.r, binary.LittleEndian, &r.version); err != nil {
		return fmt.Errorf("%w: %w", ErrCorruptedData, err)
	}
	if r.version != CurrentVersion {
		return fmt.Errorf("%w: got version %d, expected %d", ErrUnsupportedVersion, r.version, CurrentVersion)
	}
	if err := binary.Read(r.r, binary.LittleEndian, &r.count); err != nil {
		return fmt.Errorf("%w: %w", ErrCorruptedData, err)
	}
	if err := binary.Read(r.r, binary.LittleEndian, &r.indexOffset); err != nil {
		return fmt.Errorf("%w: %w", ErrCorruptedData, err)
	}
	return nil
}

func (r *Reader) readIndex() error {
	if _, err := r.r.Seek(int64(r.indexOffset), io.SeekStart); err != nil {
		return fmt.Errorf("%w: %w", ErrCorruptedData, err)
	}

	chunkID := make([]byte, 4)
	if _, err := io.ReadFull(r.r, chunkID); err != nil {
		return fmt.Errorf("%w: %w", ErrCorruptedData, err)
	}
	if string(chunkID) != ChunkTypeIndex {
		return fmt.Errorf("%w: expected index chunk, got %q", ErrInvalidChunk, string(chunkID))
	}

	var chunkSize uint64
	if err := binary.Read(r.r, binary.LittleEndian, &chunkSize); err != nil {
		return fmt.Errorf("%w: %w", ErrCorruptedData, err)
	}

	r.index = make([]IndexEntry, 0, r.count)
	for range r.count {
		entry, err := r.readIndexEntry()
		if err != nil {
			return err
		}
		r.index = append(r.index, entry)
	}
	return nil
}

func (r *Reader) readIndexEntry() (IndexEntry, error) {
	var entry IndexEntry

	if err := binary.Read(r.r, binary.LittleEndian, &entry.Offset); err != nil {
		return entry, fmt.Errorf("%w: %w", ErrCorruptedData, err)
	}
	var kind uint8
	if err := binary.Read(r.r, binary.LittleEndian, &kind); err != nil {
		return entry, fmt.Errorf("%w: %w", ErrCorruptedData, err)
	}
	entry.Kind = Kind(kind)

	var rows, cols uint32
	if err := binary.Read(r.r, binary.LittleEndian, &rows); err != nil {
		return entry, fmt.Errorf("%w: %w", ErrCorruptedData, err)
	}
	if err := binary.Read(r.r, binary.LittleEndian, &cols); err != nil {
		return entry, fmt.Errorf("%w: %w", ErrCorruptedData, err)
	}
	entry.Rows, entry.Cols = int(rows), int(cols)

	name, err := r.readString()
	if err != nil {
		return entry, err
	}
	entry.Name = name

	return entry, nil
}

func (r *Reader) readString() (string, error) {
	var length uint16
	if err := binary.Read(r.r, binary.LittleEndian, &length); err != nil {
		return "", fmt.Errorf("%w: %w", ErrCorruptedData, err)
	}
	if length == 0 {
		return "", nil
	}
	data := make([]byte, length)
	if _, err := io.ReadFull(r.r, data); err != nil {
		return "", fmt.Errorf("%w: %w", ErrCorruptedData, err)
	}
	return string(data), nil
}

// Version returns the format version of the library.
func (r *Reader) Version() uint16 { return r.version }

// ResultCount returns the number of results in the library.
func (r *Reader) ResultCount() int { return int(r.count) }

// ListResults returns the metadata for all results, using the index only.
func (r *Reader) ListResults() []IndexEntry {
	out := make([]IndexEntry, len(r.index))
	copy(out, r.index)
	return out
}

// LoadResult loads a specific result by index.
func (r *Reader) LoadResult(index int) (*Result, error) {
	if index < 0 || index >= len(r.index) {
		return nil, ErrInvalidIndex
	}
	entry := r.index[index]
	if _, err := r.r.Seek(int64(entry.Offset), io.SeekStart); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptedData, err)
	}
	return r.readResultChunk()
}

// LoadResultByName loads a result by its transform/wavelet name.
func (r *Reader) LoadResultByName(name string) (*Result, error) {
	for i, entry := range r.index {
		if entry.Name == name {
			return r.LoadResult(i)
		}
	}
	return nil, ErrResultNotFound
}

func (r *Reader) readResultChunk() (*Result, error) {
	chunkID := make([]byte, 4)
	if _, err := io.ReadFull(r.r, chunkID); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptedData, err)
	}
	if string(chunkID) != ChunkTypeResult {
		return nil, fmt.Errorf("%w: expected result chunk, got %q", ErrInvalidChunk, string(chunkID))
	}

	var chunkSize uint64
	if err := binary.Read(r.r, binary.LittleEndian, &chunkSize); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptedData, err)
	}

	result := &Result{}
	if err := r.readMetadataSubChunk(&result.Metadata); err != nil {
		return nil, err
	}
	if err := r.readDataSubChunk(result); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *Reader) readMetadataSubChunk(meta *Metadata) error {
	chunkID := make([]byte, 4)
	if _, err := io.ReadFull(r.r, chunkID); err != nil {
		return fmt.Errorf("%w: %w", ErrCorruptedData, err)
	}
	if string(chunkID) != ChunkTypeMeta {
		return fmt.Errorf("%w: expected metadata sub-chunk, got %q", ErrInvalidChunk, string(chunkID))
	}

	var subChunkSize uint32
	if err := binary.Read(r.r, binary.LittleEndian, &subChunkSize); err != nil {
		return fmt.Errorf("%w: %w", ErrCorruptedData, err)
	}

	var kind uint8
	if err := binary.Read(r.r, binary.LittleEndian, &kind); err != nil {
		return fmt.Errorf("%w: %w", ErrCorruptedData, err)
	}
	meta.Kind = Kind(kind)

	var sampleRateBits uint64
	if err := binary.Read(r.r, binary.LittleEndian, &sampleRateBits); err != nil {
		return fmt.Errorf("%w: %w", ErrCorruptedData, err)
	}
	meta.SamplingRate = math.Float64frombits(sampleRateBits)

	var rows, cols uint32
	if err := binary.Read(r.r, binary.LittleEndian, &rows); err != nil {
		return fmt.Errorf("%w: %w", ErrCorruptedData, err)
	}
	if err := binary.Read(r.r, binary.LittleEndian, &cols); err != nil {
		return fmt.Errorf("%w: %w", ErrCorruptedData, err)
	}
	meta.Rows, meta.Cols = int(rows), int(cols)

	name, err := r.readString()
	if err != nil {
		return err
	}
	meta.Name = name

	var scaleCount uint16
	if err := binary.Read(r.r, binary.LittleEndian, &scaleCount); err != nil {
		return fmt.Errorf("%w: %w", ErrCorruptedData, err)
	}
	meta.Scales = make([]float64, scaleCount)
	for i := range scaleCount {
		var bits uint64
		if err := binary.Read(r.r, binary.LittleEndian, &bits); err != nil {
			return fmt.Errorf("%w: %w", ErrCorruptedData, err)
		}
		meta.Scales[i] = math.Float64frombits(bits)
	}

	return nil
}

func (r *Reader) readDataSubChunk(result *Result) error {
	chunkID := make([]byte, 4)
	if _, err := io.ReadFull(r.r, chunkID); err != nil {
		return fmt.Errorf("%w: %w", ErrCorruptedData, err)
	}
	if string(chunkID) != ChunkTypeData {
		return fmt.Errorf("%w: expected data sub-chunk, got %q", ErrInvalidChunk, string(chunkID))
	}

	var subChunkSize uint32
	if err := binary.Read(r.r, binary.LittleEndian, &subChunkSize); err != nil {
		return fmt.Errorf("%w: %w", ErrCorruptedData, err)
	}

	var magLen uint32
	if err := binary.Read(r.r, binary.LittleEndian, &magLen); err != nil {
		return fmt.Errorf("%w: %w", ErrCorruptedData, err)
	}
	magBytes := make([]byte, magLen)
	if _, err := io.ReadFull(r.r, magBytes); err != nil {
		return fmt.Errorf("%w: %w", ErrCorruptedData, err)
	}
	result.Magnitude = f16.F16ToFloat32Deinterleaved(magBytes, result.Metadata.Rows)

	var phaseLen uint32
	if err := binary.Read(r.r, binary.LittleEndian, &phaseLen); err != nil {
		return fmt.Errorf("%w: %w", ErrCorruptedData, err)
	}
	if phaseLen > 0 {
		phaseBytes := make([]byte, phaseLen)
		if _, err := io.ReadFull(r.r, phaseBytes); err != nil {
			return fmt.Errorf("%w: %w", ErrCorruptedData, err)
		}
		result.Phase = f16.F16ToFloat32Deinterleaved(phaseBytes, result.Metadata.Rows)
	}

	return nil
}

// Close closes the reader. Currently a no-op, provided for interface
// consistency with io.Closer.
func (r *Reader) Close() error { return nil }

// ReadLibrary is a convenience function to read an entire library in one
// call.
func ReadLibrary(r io.ReadSeeker) (*Library, error) {
	reader, err := NewReader(r)
	if err != nil {
		return nil, err
	}

	lib := &Library{
		Version: reader.version,
		Results: make([]*Result, 0, reader.count),
	}
	for i := range reader.count {
		result, err := reader.LoadResult(int(i))
		if err != nil {
			return nil, fmt.Errorf("failed to load result %d: %w", i, err)
		}
		lib.Results = append(lib.Results, result)
	}
	return lib, nil
}
