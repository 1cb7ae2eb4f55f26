// Package merge drains multiple sorted sequences of lines into a single
// sorted output stream. It uses a loser tree to pick the next line, so only
// the current head of every sequence is held in memory.
//
// Key features:
//   - Streaming: lines are written as they are selected, never collected
//   - Deterministic: equal lines are taken from the lowest sequence index first
//   - Error aware: sequences implementing Failer are checked once the merge
//     is drained, and a failed sequence fails the whole merge
//
// Basic usage:
//
//	n, err := merge.Merge(os.Stdout, linecmp.Compare, run0, run1, finalRun)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// The output of a failed merge may contain lines but is never complete; the
// caller must treat it as garbage.
package merge
