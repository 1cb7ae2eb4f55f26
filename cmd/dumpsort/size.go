package main

import (
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/davidvella/dumpsort/split"
	"github.com/spf13/pflag"
)

var _ pflag.Value = (*byteSize)(nil)

// byteSize is a pflag.Value accepting human-readable sizes.
type byteSize int

func (b *byteSize) String() string {
	return strconv.Itoa(int(*b))
}

func (b *byteSize) Set(s string) error {
	n, err := split.ParseMemorySize(s)
	if err != nil {
		return err
	}
	if n < 1 {
		return errors.Newf("%q is less than one byte", s)
	}
	*b = byteSize(n)
	return nil
}

func (b *byteSize) Type() string {
	return "size"
}
