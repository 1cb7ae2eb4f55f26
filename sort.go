package dumpsort

import (
	"bytes"
	"io"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/davidvella/dumpsort/linecmp"
	"github.com/davidvella/dumpsort/loser"
	"github.com/davidvella/dumpsort/merge"
	"github.com/davidvella/dumpsort/monitoring"
	"github.com/davidvella/dumpsort/runbuf"
	"github.com/davidvella/dumpsort/spill"
)

const readBufferSize = 64 * 1024

// Sentinel is the line that terminates a sorted range.
var Sentinel = []byte(`\.`)

var newline = []byte("\n")

// Sorter sorts sentinel-terminated ranges of lines. A Sorter holds only
// configuration and may be used by several goroutines at once, each on its
// own input and output.
type Sorter struct {
	opts  options
	stats *stats
}

// New returns a Sorter configured with opts.
func New(opts ...Option) *Sorter {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.spill == nil {
		o.spill = spill.FileOpener(o.tempDir)
	}

	return &Sorter{
		opts:  o,
		stats: newStats(o.registry),
	}
}

// SortRange is a convenience wrapper for New(opts...).SortRange.
func SortRange(input io.ReadSeeker, start int64, output io.Writer, opts ...Option) (int64, error) {
	return New(opts...).SortRange(input, start, output)
}

// Sort orders lines in place with linecmp.Compare. Equal lines keep their
// relative order.
func Sort(lines [][]byte) {
	linecmp.Sort(lines)
}

// SortRange reads lines from input starting at byte offset start up to and
// including the first line equal to Sentinel. It writes the lines before the
// sentinel to output in linecmp order, followed by the sentinel line exactly
// as it was read. It returns the offset just past the sentinel and leaves
// input positioned there.
//
// Lines that do not fit in the run budget are spilled to the configured
// store and merged back. The store is removed before SortRange returns.
//
// If the input ends before a sentinel, SortRange returns ErrTruncatedInput
// and writes nothing. I/O failures are marked with ErrIO.
func (s *Sorter) SortRange(input io.ReadSeeker, start int64, output io.Writer) (offset int64, err error) {
	began := time.Now()
	logger := s.opts.logger

	buf, err := runbuf.New(s.opts.runBudget)
	if err != nil {
		return 0, err
	}

	var store spill.Store
	defer func() {
		if store == nil {
			return
		}
		if cerr := store.Close(); cerr != nil && err == nil {
			err = markIO(cerr, "dumpsort: remove spill store")
		}
	}()

	r := newBufferReadSeeker(input, readBufferSize)
	if _, err := r.Seek(start, io.SeekStart); err != nil {
		return 0, markIO(err, "dumpsort: seek input")
	}

	var (
		consumed int64
		lines    int64
		sentinel []byte
	)
	for sentinel == nil {
		raw, rerr := r.ReadBytes('\n')
		if rerr != nil && !errors.Is(rerr, io.EOF) {
			return 0, markIO(rerr, "dumpsort: read input")
		}
		consumed += int64(len(raw))

		line, _ := bytes.CutSuffix(raw, newline)
		if isSentinel(line) {
			sentinel = raw
			break
		}
		if rerr != nil {
			return 0, errors.Wrapf(ErrTruncatedInput, "dumpsort: no %s line after offset %d", Sentinel, start)
		}

		lines++
		if !buf.Add(line) {
			continue
		}

		if store == nil {
			opened, err := s.opts.spill()
			if err != nil {
				return 0, markIO(err, "dumpsort: open spill store")
			}
			store = opened
		}
		if err := store.Spill(buf.All()); err != nil {
			return 0, markIO(err, "dumpsort: spill run")
		}
		logger.Log(monitoring.DEBUG, "run_spilled", "Spilled sorted run", map[string]any{
			"run":   store.Len(),
			"lines": buf.Len(),
			"bytes": buf.Size(),
		})
		s.stats.recordSpill(buf.Size())
		buf.Reset()
	}

	offset = start + consumed
	if _, err := r.Seek(offset, io.SeekStart); err != nil {
		return 0, markIO(err, "dumpsort: seek past range")
	}

	sequences, err := s.sequences(store, buf)
	if err != nil {
		return 0, err
	}

	if _, err := merge.Merge(output, linecmp.Compare, sequences...); err != nil {
		return 0, markIO(err, "dumpsort: merge runs")
	}
	if _, err := output.Write(sentinel); err != nil {
		return 0, markIO(err, "dumpsort: write sentinel")
	}

	elapsed := time.Since(began)
	runs := len(sequences)
	logger.Log(monitoring.INFO, "range_sorted", "Sorted range", map[string]any{
		"start":       start,
		"end":         offset,
		"lines":       lines,
		"runs":        runs,
		"duration_ms": elapsed.Milliseconds(),
	})
	s.stats.recordRange(lines, elapsed)

	return offset, nil
}

// sequences returns the spilled runs in spill order followed by the run
// still held in memory.
func (s *Sorter) sequences(store spill.Store, buf *runbuf.Buffer) ([]loser.Sequence[[]byte], error) {
	var sequences []loser.Sequence[[]byte]
	if store != nil {
		runs, err := store.Runs()
		if err != nil {
			return nil, markIO(err, "dumpsort: open spilled runs")
		}
		for _, run := range runs {
			sequences = append(sequences, run)
		}
	}
	if buf.Len() > 0 {
		sequences = append(sequences, buf)
	}
	return sequences, nil
}

// isSentinel reports whether line terminates a range. A trailing carriage
// return is tolerated so CRLF dumps end their ranges too.
func isSentinel(line []byte) bool {
	line, _ = bytes.CutSuffix(line, []byte("\r"))
	return bytes.Equal(line, Sentinel)
}
