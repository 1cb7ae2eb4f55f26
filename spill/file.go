package spill

import (
	"bufio"
	"io"
	"iter"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/davidvella/dumpsort/recordio"
)

const (
	writeBufferSize = 64 * 1024
	readBufferSize  = 32 * 1024
)

// FileStore keeps every run as a segment of a single temporary file:
//
//	segment = [total length int64][line record]...
//
// The length includes its own 8 bytes. Runs are read back through
// independent section readers, so any number of them can be merged at once.
type FileStore struct {
	file   *os.File
	buf    *bufio.Writer
	writer recordio.BinaryWriter
	offset int64
	count  int
	closed bool
	broken error // Set once a failed Spill left a partial segment behind.
}

// NewFileStore creates the backing file in dir, or in the default
// temporary directory when dir is empty.
func NewFileStore(dir string) (*FileStore, error) {
	file, err := os.CreateTemp(dir, "dumpsort-*.run")
	if err != nil {
		return nil, errors.Wrap(err, "spill: create run file")
	}
	buf := bufio.NewWriterSize(file, writeBufferSize)
	return &FileStore{
		file:   file,
		buf:    buf,
		writer: recordio.NewBinaryWriter(buf),
	}, nil
}

// FileOpener returns an Opener for FileStores in dir.
func FileOpener(dir string) Opener {
	return func() (Store, error) {
		s, err := NewFileStore(dir)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
}

// Name returns the path of the backing file.
func (s *FileStore) Name() string {
	return s.file.Name()
}

func (s *FileStore) Spill(run iter.Seq[[]byte]) error {
	if s.closed {
		return ErrStoreClosed
	}
	if s.broken != nil {
		return s.broken
	}

	var totalSize = recordio.Int64Size
	for line := range run {
		totalSize += recordio.Size(line)
	}

	if _, err := s.writer.WriteInt64(totalSize); err != nil {
		return s.fail(errors.Wrap(err, "spill: write segment header"))
	}
	for line := range run {
		if _, err := recordio.Write(s.buf, line); err != nil {
			return s.fail(errors.Wrap(err, "spill: write line"))
		}
	}
	if err := s.buf.Flush(); err != nil {
		return s.fail(errors.Wrap(err, "spill: flush segment"))
	}

	s.offset += totalSize
	s.count++
	return nil
}

// fail marks the store unusable. The file no longer ends on a segment
// boundary, so later segments and reads would be misaligned.
func (s *FileStore) fail(err error) error {
	s.broken = errors.Mark(err, ErrStoreBroken)
	return s.broken
}

func (s *FileStore) Len() int {
	return s.count
}

// Runs reads the segment headers back from the file and returns one Run
// per segment.
func (s *FileStore) Runs() ([]Run, error) {
	if s.closed {
		return nil, ErrStoreClosed
	}
	if s.broken != nil {
		return nil, s.broken
	}

	runs := make([]Run, 0, s.count)
	for offset := int64(0); offset < s.offset; {
		br := recordio.NewBinaryReader(io.NewSectionReader(s.file, offset, recordio.Int64Size))
		length, err := br.ReadInt64()
		if err != nil {
			return nil, errors.Wrapf(err, "spill: read segment header at %d", offset)
		}
		if length < recordio.Int64Size || offset+length > s.offset {
			return nil, errors.Newf("spill: corrupted segment header at %d", offset)
		}
		runs = append(runs, &segmentReader{
			reader: s.file,
			offset: offset,
			length: length,
		})
		offset += length
	}
	return runs, nil
}

// Close closes and removes the backing file. It is safe to call more than
// once.
func (s *FileStore) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	closeErr := s.file.Close()
	if closeErr != nil {
		closeErr = errors.Wrap(closeErr, "spill: close run file")
	}
	removeErr := os.Remove(s.file.Name())
	if removeErr != nil {
		removeErr = errors.Wrap(removeErr, "spill: remove run file")
	}
	return errors.CombineErrors(closeErr, removeErr)
}

type segmentReader struct {
	reader io.ReaderAt
	offset int64
	length int64
	err    error
}

func (sr *segmentReader) All() iter.Seq[[]byte] {
	return func(yield func([]byte) bool) {
		section := io.NewSectionReader(sr.reader, sr.offset+recordio.Int64Size, sr.length-recordio.Int64Size)
		rr := recordio.NewReader(bufio.NewReaderSize(section, readBufferSize))
		for line := range rr.All() {
			if !yield(line) {
				break
			}
		}
		if err := rr.Err(); err != nil {
			sr.err = errors.Wrapf(err, "spill: read segment at %d", sr.offset)
		}
	}
}

func (sr *segmentReader) Err() error {
	return sr.err
}
