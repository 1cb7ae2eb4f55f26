package recordio

import (
	"bytes"
	"encoding/binary"
	"io"
	"iter"
	"math"

	"github.com/cockroachdb/errors"
)

var (
	Uint64Size = int64(binary.Size(uint64(0)))
	Int64Size  = int64(binary.Size(int64(0)))
	// MagicBytes Magic bytes to identify valid line records (LN).
	MagicBytes           = []byte{0x4C, 0x4E}
	ErrInvalidMagicBytes = errors.New("recordio: invalid magic bytes - not a line record")
	ErrInvalidLength     = errors.New("recordio: invalid record length")
)

const maxPreallocate = 64 * 1024

// BinaryWriter handles writing binary data with error handling.
type BinaryWriter struct {
	w io.Writer
}

func NewBinaryWriter(w io.Writer) BinaryWriter {
	return BinaryWriter{w: w}
}

func (bw BinaryWriter) WriteInt64(i int64) (int64, error) {
	err := binary.Write(bw.w, binary.LittleEndian, i)
	if err != nil {
		return 0, err
	}
	return Int64Size, nil
}

func (bw BinaryWriter) WriteBytes(b []byte) (int64, error) {
	// Write bytes length (uint64)
	if err := binary.Write(bw.w, binary.LittleEndian, uint64(len(b))); err != nil {
		return 0, errors.Wrap(err, "error writing bytes length")
	}

	// Write bytes content
	n, err := bw.w.Write(b)
	if err != nil {
		return Uint64Size, errors.Wrap(err, "error writing bytes content")
	}

	// Return total bytes written (length field + bytes content)
	return Uint64Size + int64(n), nil
}

// BinaryReader handles reading binary data with error handling.
type BinaryReader struct {
	r io.Reader
}

func NewBinaryReader(r io.Reader) BinaryReader {
	return BinaryReader{r: r}
}

func (br BinaryReader) ReadInt64() (int64, error) {
	var value int64
	err := binary.Read(br.r, binary.LittleEndian, &value)
	return value, err
}

func (br BinaryReader) ReadBytes() ([]byte, error) {
	var length uint64
	if err := binary.Read(br.r, binary.LittleEndian, &length); err != nil {
		return nil, errors.Wrap(unexpectedEOF(err), "error reading bytes length")
	}

	if length > math.MaxInt64 {
		return nil, errors.Wrapf(ErrInvalidLength, "length %d", length)
	}

	// The buffer grows with the bytes actually read, so a corrupted length
	// fails on a short read instead of allocating it up front.
	b := bytes.NewBuffer(make([]byte, 0, min(length, maxPreallocate)))
	if _, err := io.CopyN(b, br.r, int64(length)); err != nil {
		return nil, errors.Wrap(unexpectedEOF(err), "error reading bytes content")
	}
	return b.Bytes(), nil
}

// unexpectedEOF turns io.EOF into io.ErrUnexpectedEOF for reads that
// started inside a record.
func unexpectedEOF(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}

// Write writes a single line record to the writer.
func Write(w io.Writer, line []byte) (int64, error) {
	var totalBytes int64

	mn, err := w.Write(MagicBytes)
	if err != nil {
		return int64(mn), errors.Wrap(err, "failed to write magic bytes")
	}
	totalBytes += int64(mn)

	n, err := NewBinaryWriter(w).WriteBytes(line)
	if err != nil {
		return totalBytes + n, errors.Wrap(err, "error writing line")
	}
	totalBytes += n

	return totalBytes, nil
}

// ReadRecord reads a single line record from the reader. It returns io.EOF,
// unwrapped, only when the reader ends cleanly between two records.
func ReadRecord(r io.Reader) ([]byte, error) {
	magicBytes := make([]byte, len(MagicBytes))
	if _, err := io.ReadFull(r, magicBytes); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, errors.Wrap(err, "failed to read magic bytes")
	}
	if !bytes.Equal(magicBytes, MagicBytes) {
		return nil, ErrInvalidMagicBytes
	}

	// Past the magic bytes any end of input is a truncated record.
	line, err := NewBinaryReader(r).ReadBytes()
	if err != nil {
		return nil, errors.Wrap(unexpectedEOF(err), "error reading line")
	}
	return line, nil
}

// Reader iterates over the line records of r and remembers the first
// error that ended the iteration.
type Reader struct {
	r   io.Reader
	err error
}

func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// All yields records until the end of the input or the first error.
func (rr *Reader) All() iter.Seq[[]byte] {
	return func(yield func([]byte) bool) {
		for rr.err == nil {
			line, err := ReadRecord(rr.r)
			if err == io.EOF { //nolint:errorlint // only the bare io.EOF marks a clean end.
				return
			}
			if err != nil {
				rr.err = err
				return
			}
			if !yield(line) {
				return
			}
		}
	}
}

// Err returns the error that stopped All, if any. A clean end of input is
// not an error.
func (rr *Reader) Err() error {
	return rr.err
}

// ReadRecords reads all records into a slice.
func ReadRecords(r io.Reader) ([][]byte, error) {
	rr := NewReader(r)
	lines := make([][]byte, 0, 1)
	for line := range rr.All() {
		lines = append(lines, line)
	}
	return lines, rr.Err()
}

// Size calculates the total size in bytes that a line will occupy when written.
// This includes magic bytes and the length prefix.
func Size(line []byte) int64 {
	return int64(len(MagicBytes)) + Uint64Size + int64(len(line))
}
