package split

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

const (
	KiB = 1 << 10
	MiB = 1 << 20
	GiB = 1 << 30
)

// DefaultMaxMemory is the run budget used when Options.MaxMemory is zero.
const DefaultMaxMemory = 100 * MiB

var ErrInvalidSize = errors.New("split: invalid memory size")

var (
	sizeRE = regexp.MustCompile(`^([\d._]+)\s*([kmg]?)b?`)
	// Underscores may only separate two digits.
	numberRE = regexp.MustCompile(`^(?:\d(?:_?\d)*)?(?:\.(?:\d(?:_?\d)*)?)?$`)
	units    = map[string]float64{"": 1, "k": KiB, "m": MiB, "g": GiB}
)

// ParseMemorySize parses a human-readable size such as "100MB", "1.5 gig",
// "100_000k" or "512". Units are powers of 1024 and anything after the unit
// letter is ignored. Fractional byte counts are truncated.
func ParseMemorySize(s string) (int, error) {
	m := sizeRE.FindStringSubmatch(strings.ToLower(strings.TrimSpace(s)))
	if m == nil {
		return 0, errors.Wrapf(ErrInvalidSize, "%q", s)
	}
	if !numberRE.MatchString(m[1]) {
		return 0, errors.Wrapf(ErrInvalidSize, "%q", s)
	}
	n, err := strconv.ParseFloat(strings.ReplaceAll(m[1], "_", ""), 64)
	if err != nil {
		return 0, errors.Mark(errors.Wrapf(err, "split: parse %q", s), ErrInvalidSize)
	}
	return int(n * units[m[2]]), nil
}
