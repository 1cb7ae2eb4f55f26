// Package pebble implements a spill.Store on top of a throwaway Pebble
// database. Every run gets its own key range:
//
//	key   = run id (8 bytes, big endian) | position in run (8 bytes, big endian)
//	value = line
//
// Big-endian keys make Pebble's byte order match spill order, so a run is
// read back with a single bounded iterator.
package pebble

import (
	"encoding/binary"
	"iter"
	"os"
	"slices"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/pebble"
	"github.com/davidvella/dumpsort/spill"
)

const keySize = 16

// Store is a spill.Store backed by Pebble.
type Store struct {
	db     *pebble.DB
	dir    string
	runs   uint64
	closed bool
}

// NewStore opens a new database in a fresh directory under dir, or under
// the default temporary directory when dir is empty.
func NewStore(dir string) (*Store, error) {
	path, err := os.MkdirTemp(dir, "dumpsort-*.pebble")
	if err != nil {
		return nil, errors.Wrap(err, "pebble: create database directory")
	}

	db, err := pebble.Open(path, &pebble.Options{
		// Runs only live as long as one sort; nothing has to survive a crash.
		DisableWAL: true,
	})
	if err != nil {
		_ = os.RemoveAll(path)
		return nil, errors.Wrap(err, "pebble: open database")
	}

	return &Store{db: db, dir: path}, nil
}

// Opener returns a spill.Opener for Pebble-backed stores in dir.
func Opener(dir string) spill.Opener {
	return func() (spill.Store, error) {
		s, err := NewStore(dir)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
}

// Dir returns the database directory.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) Spill(run iter.Seq[[]byte]) error {
	if s.closed {
		return spill.ErrStoreClosed
	}

	batch := s.db.NewBatch()
	defer batch.Close()

	var pos uint64
	for line := range run {
		if err := batch.Set(key(s.runs, pos), line, nil); err != nil {
			return errors.Wrap(err, "pebble: add line to batch")
		}
		pos++
	}
	if err := batch.Commit(pebble.NoSync); err != nil {
		return errors.Wrap(err, "pebble: commit run")
	}

	s.runs++
	return nil
}

func (s *Store) Len() int {
	return int(s.runs)
}

func (s *Store) Runs() ([]spill.Run, error) {
	if s.closed {
		return nil, spill.ErrStoreClosed
	}

	runs := make([]spill.Run, 0, s.runs)
	for id := range s.runs {
		runs = append(runs, &run{
			db:    s.db,
			id:    id,
			lower: key(id, 0),
			upper: key(id+1, 0),
		})
	}
	return runs, nil
}

// Close closes the database and removes its directory. It is safe to call
// more than once.
func (s *Store) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	closeErr := s.db.Close()
	if closeErr != nil {
		closeErr = errors.Wrap(closeErr, "pebble: close database")
	}
	removeErr := os.RemoveAll(s.dir)
	if removeErr != nil {
		removeErr = errors.Wrap(removeErr, "pebble: remove database directory")
	}
	return errors.CombineErrors(closeErr, removeErr)
}

type run struct {
	db    *pebble.DB
	id    uint64
	lower []byte
	upper []byte
	err   error
}

func (r *run) All() iter.Seq[[]byte] {
	return func(yield func([]byte) bool) {
		it, err := r.db.NewIter(&pebble.IterOptions{
			LowerBound: r.lower,
			UpperBound: r.upper,
		})
		if err != nil {
			r.err = errors.Wrapf(err, "pebble: open iterator for run %d", r.id)
			return
		}
		defer func() {
			if err := it.Close(); err != nil && r.err == nil {
				r.err = errors.Wrapf(err, "pebble: close iterator for run %d", r.id)
			}
		}()

		for valid := it.First(); valid; valid = it.Next() {
			// The iterator reuses its value buffer.
			if !yield(slices.Clone(it.Value())) {
				return
			}
		}
		if err := it.Error(); err != nil {
			r.err = errors.Wrapf(err, "pebble: iterate run %d", r.id)
		}
	}
}

func (r *run) Err() error {
	return r.err
}

func key(run, pos uint64) []byte {
	k := make([]byte, keySize)
	binary.BigEndian.PutUint64(k[:8], run)
	binary.BigEndian.PutUint64(k[8:], pos)
	return k
}
