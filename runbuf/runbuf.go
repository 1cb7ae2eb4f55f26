// Package runbuf accumulates lines up to a byte budget and hands them back
// in comparator order.
package runbuf

import (
	"iter"

	"github.com/cockroachdb/errors"
	"github.com/davidvella/dumpsort/linecmp"
	"github.com/google/btree"
)

// DefaultBudget is the default number of line content bytes a Buffer holds
// before it reports itself full.
const DefaultBudget = 1_000_000

const degree = 32

var ErrInvalidBudget = errors.New("runbuf: budget must be greater than 0")

// entry pairs a line with its arrival number so order-equivalent lines are
// distinct btree items and keep the order they were added in.
type entry struct {
	line []byte
	seq  uint64
}

func less(a, b entry) bool {
	if c := linecmp.Compare(a.line, b.line); c != 0 {
		return c < 0
	}
	return a.seq < b.seq
}

// Buffer is an in-memory run under construction.
type Buffer struct {
	lines  *btree.BTreeG[entry]
	budget int
	size   int
	seq    uint64
}

func New(budget int) (*Buffer, error) {
	if budget <= 0 {
		return nil, ErrInvalidBudget
	}
	return &Buffer{
		lines:  btree.NewG[entry](degree, less),
		budget: budget,
	}, nil
}

// Add stores line and reports whether the buffer has reached its budget.
// The buffer keeps a reference to line, which must not be modified
// afterwards.
func (b *Buffer) Add(line []byte) (full bool) {
	b.lines.ReplaceOrInsert(entry{line: line, seq: b.seq})
	b.seq++
	b.size += len(line)
	return b.size >= b.budget
}

// Len returns the number of buffered lines.
func (b *Buffer) Len() int {
	return b.lines.Len()
}

// Size returns the number of buffered line content bytes.
func (b *Buffer) Size() int {
	return b.size
}

// All yields the buffered lines in order. It can be ranged over any number
// of times until the next Add or Reset.
func (b *Buffer) All() iter.Seq[[]byte] {
	return func(yield func([]byte) bool) {
		b.lines.Ascend(func(e entry) bool {
			return yield(e.line)
		})
	}
}

// Reset empties the buffer. Arrival numbers keep increasing so a reused
// buffer still orders equivalent lines by arrival.
func (b *Buffer) Reset() {
	b.lines.Clear(false)
	b.size = 0
}
