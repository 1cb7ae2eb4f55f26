package merge

import (
	"bufio"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/davidvella/dumpsort/loser"
)

const writeBufferSize = 64 * 1024

// Failer is implemented by sequences that can stop early because of an
// error, such as runs read back from a spill store.
type Failer interface {
	Err() error
}

// Merge performs a streaming k-way merge of sorted sequences into w, writing
// every line followed by a newline. Lines that cmp reports as equal are
// written in sequence order. It returns the number of lines written.
func Merge(w io.Writer, cmp func(a, b []byte) int, sequences ...loser.Sequence[[]byte]) (int64, error) {
	if len(sequences) == 0 {
		return 0, nil
	}

	var (
		lt  = loser.New(sequences, cmp)
		bw  = bufio.NewWriterSize(w, writeBufferSize)
		n   int64
		err error
	)

	for line := range lt.All() {
		if _, err = bw.Write(line); err != nil {
			break
		}
		if err = bw.WriteByte('\n'); err != nil {
			break
		}
		n++
	}
	if err != nil {
		return n, errors.Wrap(err, "merge: write line")
	}

	if err := Err(sequences...); err != nil {
		return n, err
	}

	if err := bw.Flush(); err != nil {
		return n, errors.Wrap(err, "merge: flush output")
	}
	return n, nil
}

// Err returns the first error reported by any of the sequences.
func Err(sequences ...loser.Sequence[[]byte]) error {
	for i, s := range sequences {
		f, ok := s.(Failer)
		if !ok {
			continue
		}
		if err := f.Err(); err != nil {
			return errors.Wrapf(err, "merge: sequence %d", i)
		}
	}
	return nil
}
