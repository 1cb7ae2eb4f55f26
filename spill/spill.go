// Package spill persists sorted runs outside of main memory for the
// duration of one range sort and hands them back for merging.
//
// A Store is scoped to a single sort invocation. Runs keep their content
// and order byte for byte until the Store is closed, and Close releases
// every resource the Store created, whether the sort succeeded or not.
//
// Two backends are provided: FileStore keeps all runs of an invocation as
// segments of one temporary file, and the pebble sub-package keeps them in
// a throwaway Pebble database.
package spill

import (
	"iter"

	"github.com/cockroachdb/errors"
)

var (
	ErrStoreClosed = errors.New("spill: store is closed")
	// ErrStoreBroken marks every error returned after a Spill failed part
	// way through.
	ErrStoreBroken = errors.New("spill: store is unusable after a failed spill")
)

// Run is a spilled, sorted run. Err reports the failure that ended the
// last iteration early, if any.
type Run interface {
	All() iter.Seq[[]byte]
	Err() error
}

type Store interface {
	// Spill persists run, which must already be sorted. Implementations may
	// range over run more than once.
	Spill(run iter.Seq[[]byte]) error
	// Runs returns the spilled runs in the order they were spilled.
	Runs() ([]Run, error)
	// Len returns the number of spilled runs.
	Len() int
	// Close releases every resource held by the store.
	Close() error
}

// Opener creates a fresh Store.
type Opener func() (Store, error)
