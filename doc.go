// Package dumpsort sorts the data sections of text dumps in place of the
// original, without holding a whole section in memory.
//
// A section, or range, is a run of newline-terminated lines that ends with
// a line consisting of exactly `\.`, the way COPY blocks end in a
// PostgreSQL plain-text dump. SortRange reads one range, writes its lines
// in linecmp order followed by the untouched sentinel, and returns the
// offset of the first byte after the range so callers can continue with
// the rest of the document.
//
// Lines are buffered until the run budget is reached, sorted, and spilled
// to a spill.Store. Spilled runs and the last in-memory run are combined
// with a loser tree merge. Equivalent lines keep their input order.
package dumpsort
