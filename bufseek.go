package dumpsort

import (
	"bufio"
	"io"
)

// bufferReadSeeker adds buffering to an io.ReadSeeker while keeping Seek
// exact: seeking discards whatever was buffered.
type bufferReadSeeker struct {
	reader *bufio.Reader
	rs     io.ReadSeeker
}

func newBufferReadSeeker(rs io.ReadSeeker, size int) *bufferReadSeeker {
	return &bufferReadSeeker{
		reader: bufio.NewReaderSize(rs, size),
		rs:     rs,
	}
}

func (r *bufferReadSeeker) ReadBytes(delim byte) ([]byte, error) {
	return r.reader.ReadBytes(delim)
}

func (r *bufferReadSeeker) Seek(offset int64, whence int) (int64, error) {
	pos, err := r.rs.Seek(offset, whence)
	if err != nil {
		return pos, err
	}

	r.reader.Reset(r.rs)
	return pos, nil
}
