package resultformat

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"wavecore/pkg/f16"
)

// Writer writes result library files.
type Writer struct {
	w            io.WriteSeeker
	resultCount  uint32
	resultOffset []uint64
	resultMetas  []Metadata
	currentPos   uint64
}

// NewWriter creates a new Writer that writes to w. w must support seeking
// so the index offset can be patched into the header once the final
// position is known.
func NewWriter(w io.WriteSeeker) *Writer {
	return &Writer{
		w:            w,
		resultOffset: make([]uint64, 0),
		resultMetas:  make([]Metadata, 0),
	}
}

// WriteHeader writes the file header. Must be called before writing any
// results. resultCount specifies how many results will be written.
func (w *Writer) WriteHeader(resultCount int) error {
	w.resultCount = uint32(resultCount)

	if _, err := w.w.Write([]byte(MagicNumber)); err != nil {
		return fmt.Errorf("failed to write magic number: %w", err)
	}
	if err := binary.Write(w.w, binary.LittleEndian, CurrentVersion); err != nil {
		return fmt.Errorf("failed to write version: %w", err)
	}
	if err := binary.Write(w.w, binary.LittleEndian, w.resultCount); err != nil {
		return fmt.Errorf("failed to write result count: %w", err)
	}
	if err := binary.Write(w.w, binary.LittleEndian, uint64(0)); err != nil {
		return fmt.Errorf("failed to write index offset placeholder: %w", err)
	}

	w.currentPos = FileHeaderSize
	return nil
}

// WriteResult writes a single result to the file. Must be called after
// WriteHeader and before Close.
func (w *Writer) WriteResult(result *Result) error {
	w.resultOffset = append(w.resultOffset, w.currentPos)
	w.resultMetas = append(w.resultMetas, result.Metadata)

	metaData := w.buildMetadataSubChunk(&result.Metadata)
	dataChunk := w.buildDataSubChunk(result)
	chunkSize := uint64(len(metaData) + len(dataChunk))

	if _, err := w.w.Write([]byte(ChunkTypeResult)); err != nil {
		return fmt.Errorf("failed to write result chunk header: %w", err)
	}
	if err := binary.Write(w.w, binary.LittleEndian, chunkSize); err != nil {
		return fmt.Errorf("failed to write result chunk size: %w", err)
	}
	if _, err := w.w.Write(metaData); err != nil {
		return fmt.Errorf("failed to write metadata sub-chunk: %w", err)
	}
	if _, err := w.w.Write(dataChunk); err != nil {
		return fmt.Errorf("failed to write data sub-chunk: %w", err)
	}

	w.currentPos += ChunkHeaderSize + chunkSize
	return nil
}

// Close finalizes the file by writing the index chunk and patching the
// header's index offset field.
func (w *Writer) Close() error {
	indexOffset := w.currentPos
	indexData := w.buildIndexChunk()

	if _, err := w.w.Write([]byte(ChunkTypeIndex)); err != nil {
		return fmt.Errorf("failed to write index chunk header: %w", err)
	}
	if err := binary.Write(w.w, binary.LittleEndian, uint64(len(indexData))); err != nil {
		return fmt.Errorf("failed to write index chunk size: %w", err)
	}
	if _, err := w.w.Write(indexData); err != nil {
		return fmt.Errorf("failed to write index data: %w", err)
	}

	if _, err := w.w.Seek(10, io.SeekStart); err != nil { // offset of index_offset field
		return fmt.Errorf("failed to seek to index offset field: %w", err)
	}
	if err := binary.Write(w.w, binary.LittleEndian, indexOffset); err != nil {
		return fmt.Errorf("failed to write index offset: %w", err)
	}

	return nil
}

func (w *Writer) buildMetadataSubChunk(meta *Metadata) []byte {
	size := 1 + 8 + 4 + 4 + // kind + sampling rate + rows + cols
		2 + len(meta.Name) +
		2 + 8*len(meta.Scales)

	buf := make([]byte, SubChunkHeaderSize+size)
	offset := 0

	copy(buf[offset:], ChunkTypeMeta)
	offset += 4
	binary.LittleEndian.PutUint32(buf[offset:], uint32(size))
	offset += 4

	buf[offset] = byte(meta.Kind)
	offset++

	binary.LittleEndian.PutUint64(buf[offset:], math.Float64bits(meta.SamplingRate))
	offset += 8
	binary.LittleEndian.PutUint32(buf[offset:], uint32(meta.Rows))
	offset += 4
	binary.LittleEndian.PutUint32(buf[offset:], uint32(meta.Cols))
	offset += 4

	binary.LittleEndian.PutUint16(buf[offset:], uint16(len(meta.Name)))
	offset += 2
	copy(buf[offset:], meta.Name)
	offset += len(meta.Name)

	binary.LittleEndian.PutUint16(buf[offset:], uint16(len(meta.Scales)))
	offset += 2
	for _, s := range meta.Scales {
		binary.LittleEndian.PutUint64(buf[offset:], math.Float64bits(s))
		offset += 8
	}

	return buf
}

// buildDataSubChunk f16-encodes the magnitude grid and, for CWT results,
// the phase grid, concatenating both as one DATA sub-chunk.
func (w *Writer) buildDataSubChunk(result *Result) []byte {
	magBytes := f16.Float32ToF16Interleaved(result.Magnitude)
	phaseBytes := []byte{}
	if result.Phase != nil {
		phaseBytes = f16.Float32ToF16Interleaved(result.Phase)
	}

	size := 4 + len(magBytes) + 4 + len(phaseBytes)
	buf := make([]byte, SubChunkHeaderSize+size)
	offset := 0

	copy(buf[offset:], ChunkTypeData)
	offset += 4
	binary.LittleEndian.PutUint32(buf[offset:], uint32(size))
	offset += 4

	binary.LittleEndian.PutUint32(buf[offset:], uint32(len(magBytes)))
	offset += 4
	copy(buf[offset:], magBytes)
	offset += len(magBytes)

	binary.LittleEndian.PutUint32(buf[offset:], uint32(len(phaseBytes)))
	offset += 4
	copy(buf[offset:], phaseBytes)

	return buf
}

func (w *Writer) buildIndexChunk() []byte {
	size := 0
	for i := range w.resultMetas {
		size += 8 + 1 + 4 + 4 + 2 + len(w.resultMetas[i].Name) // offset + kind + rows + cols + name
	}

	buf := make([]byte, size)
	offset := 0
	for i, meta := range w.resultMetas {
		binary.LittleEndian.PutUint64(buf[offset:], w.resultOffset[i])
		offset += 8
		buf[offset] = byte(meta.Kind)
		offset++
		binary.LittleEndian.PutUint32(buf[offset:], uint32(meta.Rows))
		offset += 4
		binary.LittleEndian.PutUint32(buf[offset:], uint32(meta.Cols))
		offset += 4
		binary.LittleEndian.PutUint16(buf[offset:], uint16(len(meta.Name)))
		offset += 2
		copy(buf[offset:], meta.Name)
		offset += len(meta.Name)
	}
	return buf
}

// WriteLibrary is a convenience function to write an entire library in one
// call.
func WriteLibrary(w io.WriteSeeker, lib *Library) error {
	writer := NewWriter(w)
	if err := writer.WriteHeader(len(lib.Results)); err != nil {
		return err
	}
	for _, r := range lib.Results {
		if err := writer.WriteResult(r); err != nil {
			return err
		}
	}
	return writer.Close()
}
