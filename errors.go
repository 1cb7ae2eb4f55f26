package dumpsort

import "github.com/cockroachdb/errors"

var (
	// ErrIO marks every failure to seek, read or write the input, the output
	// or spilled runs. The underlying cause stays reachable through
	// errors.Is and errors.As.
	ErrIO = errors.New("dumpsort: i/o error")
	// ErrTruncatedInput is returned when the input ends before the sentinel
	// line.
	ErrTruncatedInput = errors.New("dumpsort: input ended before the end-of-range line")
)

func markIO(err error, msg string) error {
	return errors.Mark(errors.Wrap(err, msg), ErrIO)
}
