package linecmp

import (
	"bytes"
	"slices"
)

const (
	tab   = '\t'
	dot   = '.'
	minus = '-'
	zero  = '0'
)

// Compare returns -1 if a sorts before b, +1 if it sorts after and 0 if the
// two lines are order-equivalent.
func Compare(a, b []byte) int {
	x, y := cursor{line: a}, cursor{line: b}
	for {
		result, sign := compareField(&x, &y)
		if result != 0 {
			return result
		}
		xEnd, yEnd := x.atLineEnd(), y.atLineEnd()
		switch {
		case xEnd && yEnd:
			return 0
		case xEnd:
			return -sign
		case yEnd:
			return sign
		}
		// Both cursors are on a tab.
		x.pos++
		y.pos++
	}
}

// Less reports whether a sorts strictly before b.
func Less(a, b []byte) bool {
	return Compare(a, b) < 0
}

// Sort sorts lines in place. Order-equivalent lines keep their relative
// order.
func Sort(lines [][]byte) {
	slices.SortStableFunc(lines, Compare)
}

// IsSorted reports whether lines are in non-decreasing order.
func IsSorted(lines [][]byte) bool {
	return slices.IsSortedFunc(lines, Compare)
}

// compareField compares the fields under x and y. sign is -1 when both
// fields were negative, +1 otherwise. When result is 0 both cursors sit at
// the end of their field.
func compareField(x, y *cursor) (result, sign int) {
	sign = 1

	// Sign.
	switch xNeg, yNeg := x.at(minus), y.at(minus); {
	case xNeg && yNeg:
		x.pos++
		y.pos++
		sign = -1
	case xNeg:
		return -1, sign
	case yNeg:
		return 1, sign
	}

	// IntegerDigits.
	x.skip(zero)
	y.skip(zero)
	nx, ny := x.digits(), y.digits()
	if nx != ny {
		if nx > ny {
			return sign, sign
		}
		return -sign, sign
	}
	digits := bytes.Compare(x.line[x.pos:x.pos+nx], y.line[y.pos:y.pos+ny])
	x.pos += nx
	y.pos += ny

	// Decision.
	switch xDot, yDot := x.at(dot), y.at(dot); {
	case digits != 0:
		return sign * digits, sign
	case xDot && yDot:
		// Fraction.
		x.pos++
		y.pos++
	case xDot:
		return sign, sign
	case yDot:
		return -sign, sign
	}

	return sign * compareTail(x, y), sign
}

// compareTail compares the rest of both fields byte by byte. A field that
// goes on after the other one ended is larger.
func compareTail(x, y *cursor) int {
	for {
		xEnd, yEnd := x.atFieldEnd(), y.atFieldEnd()
		switch {
		case xEnd && yEnd:
			return 0
		case xEnd:
			return -1
		case yEnd:
			return 1
		}
		if c, d := x.line[x.pos], y.line[y.pos]; c != d {
			if c < d {
				return -1
			}
			return 1
		}
		x.pos++
		y.pos++
	}
}
