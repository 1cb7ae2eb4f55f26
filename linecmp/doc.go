// Package linecmp implements the ordering used to sort tab-delimited dump
// lines. Lines are compared field by field, and numbers embedded in a field
// are compared by magnitude rather than lexically, without ever parsing them
// into a numeric type.
//
// The order is deterministic and fast rather than numerically exact: "123",
// "123.0" and "123.00" are three different keys that sort in that order.
//
// Each field goes through a small state machine of Sign, IntegerDigits,
// Decision and Fraction:
//   - Sign: when both fields start with '-' the result of the field is
//     inverted; when only one does, that line is smaller.
//   - IntegerDigits: leading zeros are skipped, then the longer run of
//     digits is larger. Equal runs remember their first differing digit.
//   - Decision: a remembered digit difference decides the field. Otherwise
//     a '.' on both sides moves on to the fraction, a '.' on one side makes
//     that side larger, and anything else falls back to a plain byte
//     comparison of the rest of the field.
//   - Fraction and literal tails are compared byte by byte up to the end of
//     the field; the tail that continues longer is larger.
//
// When all fields of the shorter line compare equal, the shorter line is
// smaller, unless its last field was negative.
//
// Basic usage:
//
//	linecmp.Compare([]byte("42\tfoo"), []byte("123\tfoo")) // -1
//	linecmp.Compare([]byte("-123"), []byte("-124"))        // +1
//
//	lines := [][]byte{[]byte("10"), []byte("9"), []byte("-1")}
//	linecmp.Sort(lines) // -1, 9, 10
//
// Only the ASCII bytes '0'-'9', '\t', '.' and '-' carry meaning. Lines are
// treated as raw bytes and never decoded.
package linecmp
