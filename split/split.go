// Package split breaks a PostgreSQL plain-text dump into one file per table
// and sorts the rows of every COPY block, so that dumps of the same
// database taken at different times can be compared with ordinary diff
// tools.
//
// The dump is written as:
//
//	0000_prologue.sql            everything before the first table data
//	NNNN_<schema>.<table>.sql    one file per "-- Data for Name:" section
//	9999_epilogue.sql            everything after the table data
package split

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/davidvella/dumpsort"
	"github.com/davidvella/dumpsort/metrics"
	"github.com/davidvella/dumpsort/monitoring"
	"github.com/davidvella/dumpsort/spill"
	"github.com/davidvella/dumpsort/storage/local"
)

const (
	PrologueName = "0000_prologue.sql"
	EpilogueName = "9999_epilogue.sql"

	epilogueCounter = 9999
	readBufferSize  = 64 * 1024
	writeBufferSize = 64 * 1024
)

var (
	copyRE        = regexp.MustCompile(`^COPY\s+\S+\s+(?:\(.*?\)\s+)?FROM\s+stdin;\r?\n$`)
	dataCommentRE = regexp.MustCompile(`^-- Data for Name: (?P<table>.*?); Type: TABLE DATA; Schema: (?P<schema>.*?);`)
	sequenceSetRE = regexp.MustCompile(`^(?:-- Name: .+; Type: SEQUENCE SET; Schema: |SELECT pg_catalog\.setval\(')`)
	searchPathRE  = regexp.MustCompile(`^SET search_path = `)
	separatorRE   = regexp.MustCompile(`^(?:--)?\r?\n$`)
)

// IsCopyStatement reports whether line, including its newline, starts a
// COPY ... FROM stdin block.
func IsCopyStatement(line string) bool {
	return copyRE.MatchString(line)
}

// Storage receives the split files. Files are written through Create and
// made visible with Publish; Discard drops a file that was not completed.
type Storage interface {
	Create(ctx context.Context, name string) (io.WriteCloser, error)
	Publish(ctx context.Context, name string) error
	Discard(ctx context.Context, name string) error
}

type Options struct {
	// MaxMemory bounds the line bytes of a COPY block held in memory.
	// Zero means DefaultMaxMemory.
	MaxMemory int
	// Spill opens the store for runs that exceed MaxMemory. Nil means a
	// file store in TempDir.
	Spill   spill.Opener
	TempDir string

	Logger  monitoring.Logger
	Metrics *metrics.Registry
}

// Splitter splits dumps into a Storage.
type Splitter struct {
	storage Storage
	sorter  *dumpsort.Sorter
	logger  monitoring.Logger
}

func New(storage Storage, opts Options) *Splitter {
	if opts.MaxMemory == 0 {
		opts.MaxMemory = DefaultMaxMemory
	}
	if opts.Logger == nil {
		opts.Logger = monitoring.Nop()
	}

	sortOpts := []dumpsort.Option{
		dumpsort.WithRunBudget(opts.MaxMemory),
		dumpsort.WithTempDir(opts.TempDir),
		dumpsort.WithLogger(opts.Logger),
	}
	if opts.Spill != nil {
		sortOpts = append(sortOpts, dumpsort.WithSpill(opts.Spill))
	}
	if opts.Metrics != nil {
		sortOpts = append(sortOpts, dumpsort.WithMetrics(opts.Metrics))
	}

	return &Splitter{
		storage: storage,
		sorter:  dumpsort.New(sortOpts...),
		logger:  opts.Logger,
	}
}

// SplitFile splits the dump at path into files in the same directory and
// returns their names in the order they were written.
func SplitFile(ctx context.Context, path string, opts Options) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "split: open dump"), dumpsort.ErrIO)
	}
	defer f.Close()

	return New(local.NewLocalStorage(filepath.Dir(path)), opts).Split(ctx, f)
}

// Split reads the dump from start to end and returns the names of the files
// it published, in order. Blank and "--" lines are held back until the next
// statement so that the comment block introducing a table lands in that
// table's file. On error no incomplete file is published.
func (s *Splitter) Split(ctx context.Context, dump io.ReadSeeker) (files []string, err error) {
	out := &output{ctx: ctx, storage: s.storage, logger: s.logger}
	defer func() {
		if err != nil {
			out.discard()
		}
	}()

	if _, err := dump.Seek(0, io.SeekStart); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "split: seek dump"), dumpsort.ErrIO)
	}
	if err := out.open(PrologueName); err != nil {
		return nil, err
	}

	var (
		br      = bufio.NewReaderSize(dump, readBufferSize)
		offset  int64
		counter int
	)
	for {
		line, rerr := br.ReadString('\n')
		if rerr != nil && !errors.Is(rerr, io.EOF) {
			return nil, errors.Mark(errors.Wrap(rerr, "split: read dump"), dumpsort.ErrIO)
		}
		if line == "" {
			break
		}
		offset += int64(len(line))

		switch {
		case separatorRE.MatchString(line):
			out.hold(line)
			continue
		case searchPathRE.MatchString(line):
			// Stays with the current file.
		case dataCommentRE.MatchString(line):
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			m := dataCommentRE.FindStringSubmatch(line)
			counter++
			name := fmt.Sprintf("%04d_%s.%s.sql",
				counter, m[dataCommentRE.SubexpIndex("schema")], m[dataCommentRE.SubexpIndex("table")])
			if err := out.open(name); err != nil {
				return nil, err
			}
		case copyRE.MatchString(line):
			if err := out.write(line); err != nil {
				return nil, err
			}
			if offset, err = s.sortCopy(ctx, out, dump, offset); err != nil {
				return nil, err
			}
			br.Reset(dump)
			continue
		case sequenceSetRE.MatchString(line):
			// Sequence values belong to the table data section.
		case counter >= 1 && counter < epilogueCounter:
			counter = epilogueCounter
			if err := out.open(EpilogueName); err != nil {
				return nil, err
			}
		}

		if err := out.write(line); err != nil {
			return nil, err
		}
	}

	if err := out.close(); err != nil {
		return nil, err
	}
	return out.files, nil
}

// sortCopy sorts the rows of the COPY block starting at offset into out and
// returns the offset after its terminating line.
func (s *Splitter) sortCopy(ctx context.Context, out *output, dump io.ReadSeeker, offset int64) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	began := time.Now()
	end, err := s.sorter.SortRange(dump, offset, out.w)
	if err != nil {
		return 0, errors.Wrapf(err, "split: sort COPY block in %s at offset %d", out.name, offset)
	}

	s.logger.Log(monitoring.DEBUG, "copy_sorted", "Sorted COPY block", map[string]any{
		"file":        out.name,
		"start":       offset,
		"end":         end,
		"duration_ms": time.Since(began).Milliseconds(),
	})
	return end, nil
}

// output is the file currently being written.
type output struct {
	ctx     context.Context
	storage Storage
	logger  monitoring.Logger

	name  string
	wc    io.WriteCloser
	w     *bufio.Writer
	held  []string
	files []string
}

// open publishes the current file and starts name. Held lines move on to
// the new file.
func (o *output) open(name string) error {
	if err := o.finish(); err != nil {
		return err
	}

	wc, err := o.storage.Create(o.ctx, name)
	if err != nil {
		return errors.Mark(errors.Wrapf(err, "split: create %s", name), dumpsort.ErrIO)
	}
	o.name, o.wc, o.w = name, wc, bufio.NewWriterSize(wc, writeBufferSize)

	o.logger.Log(monitoring.INFO, "file_opened", "Opened output file", map[string]any{
		"file": name,
	})
	return nil
}

func (o *output) hold(line string) {
	o.held = append(o.held, line)
}

// write writes the held lines and then line.
func (o *output) write(line string) error {
	if err := o.flushHeld(); err != nil {
		return err
	}
	if _, err := o.w.WriteString(line); err != nil {
		return errors.Mark(errors.Wrapf(err, "split: write %s", o.name), dumpsort.ErrIO)
	}
	return nil
}

func (o *output) flushHeld() error {
	for _, line := range o.held {
		if _, err := o.w.WriteString(line); err != nil {
			return errors.Mark(errors.Wrapf(err, "split: write %s", o.name), dumpsort.ErrIO)
		}
	}
	o.held = o.held[:0]
	return nil
}

// finish closes and publishes the current file, if any.
func (o *output) finish() error {
	if o.wc == nil {
		return nil
	}

	wc, w, name := o.wc, o.w, o.name
	o.wc, o.w = nil, nil
	if err := w.Flush(); err != nil {
		_ = wc.Close()
		_ = o.storage.Discard(context.WithoutCancel(o.ctx), name)
		return errors.Mark(errors.Wrapf(err, "split: write %s", name), dumpsort.ErrIO)
	}
	if err := wc.Close(); err != nil {
		_ = o.storage.Discard(context.WithoutCancel(o.ctx), name)
		return errors.Mark(errors.Wrapf(err, "split: close %s", name), dumpsort.ErrIO)
	}
	if err := o.storage.Publish(o.ctx, name); err != nil {
		return errors.Mark(errors.Wrapf(err, "split: publish %s", name), dumpsort.ErrIO)
	}
	o.files = append(o.files, name)
	return nil
}

// close writes any held lines to the last file and publishes it.
func (o *output) close() error {
	if o.wc != nil {
		if err := o.flushHeld(); err != nil {
			return err
		}
	}
	return o.finish()
}

// discard drops the file being written. Files already published stay.
func (o *output) discard() {
	if o.wc == nil {
		return
	}
	_ = o.wc.Close()
	_ = o.storage.Discard(context.WithoutCancel(o.ctx), o.name)
	o.wc, o.w = nil, nil
}
