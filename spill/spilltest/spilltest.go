// Package spilltest holds the behaviour every spill.Store backend must
// share, so each backend's tests can run the same suite.
package spilltest

import (
	"iter"
	"slices"
	"testing"

	"github.com/davidvella/dumpsort/spill"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Run exercises a fresh store from open on every subtest.
func Run(t *testing.T, open spill.Opener) {
	t.Helper()

	t.Run("no runs", func(t *testing.T) {
		s := mustOpen(t, open)
		runs, err := s.Runs()
		require.NoError(t, err)
		assert.Empty(t, runs)
		assert.Zero(t, s.Len())
	})

	t.Run("runs come back in spill order with their content", func(t *testing.T) {
		s := mustOpen(t, open)
		want := [][]string{
			{"1", "2\tb", "2\tb", "10"},
			{},
			{"-5", "", "a\tb\tc", "x\r"},
			{"7"},
		}
		for _, r := range want {
			require.NoError(t, s.Spill(slices.Values(toBytes(r))))
		}
		assert.Equal(t, len(want), s.Len())

		runs, err := s.Runs()
		require.NoError(t, err)
		require.Len(t, runs, len(want))
		for i, r := range runs {
			assert.Equal(t, want[i], collect(r), "run %d", i)
			assert.NoError(t, r.Err())
		}
	})

	t.Run("runs can be read concurrently and more than once", func(t *testing.T) {
		s := mustOpen(t, open)
		require.NoError(t, s.Spill(slices.Values(toBytes([]string{"a", "b", "c"}))))
		require.NoError(t, s.Spill(slices.Values(toBytes([]string{"d", "e"}))))

		runs, err := s.Runs()
		require.NoError(t, err)

		next0, stop0 := pull(runs[0])
		defer stop0()
		next1, stop1 := pull(runs[1])
		defer stop1()

		assert.Equal(t, "a", next0())
		assert.Equal(t, "d", next1())
		assert.Equal(t, "b", next0())
		assert.Equal(t, "e", next1())

		assert.Equal(t, []string{"a", "b", "c"}, collect(runs[0]))
	})

	t.Run("closed store rejects use", func(t *testing.T) {
		s, err := open()
		require.NoError(t, err)
		require.NoError(t, s.Close())
		require.NoError(t, s.Close())

		assert.ErrorIs(t, s.Spill(slices.Values(toBytes([]string{"a"}))), spill.ErrStoreClosed)
		_, err = s.Runs()
		assert.ErrorIs(t, err, spill.ErrStoreClosed)
	})
}

func mustOpen(t *testing.T, open spill.Opener) spill.Store {
	t.Helper()
	s, err := open()
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, s.Close()) })
	return s
}

func toBytes(lines []string) [][]byte {
	out := make([][]byte, len(lines))
	for i, l := range lines {
		out[i] = []byte(l)
	}
	return out
}

func collect(r spill.Run) []string {
	out := []string{}
	for l := range r.All() {
		out = append(out, string(l))
	}
	return out
}

func pull(r spill.Run) (next func() string, stop func()) {
	n, s := iter.Pull(r.All())
	return func() string {
		v, _ := n()
		return string(v)
	}, s
}
