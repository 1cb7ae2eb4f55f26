package main

import (
	"fmt"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/davidvella/dumpsort"
	"github.com/davidvella/dumpsort/runbuf"
	"github.com/spf13/cobra"
)

func newRangeCmd(g *globals) *cobra.Command {
	var (
		offset    int64
		maxMemory = byteSize(runbuf.DefaultBudget)
	)

	cmd := &cobra.Command{
		Use:   "range FILE",
		Short: `Sort one \.-terminated range of FILE to stdout`,
		Long: "Sort the lines of FILE from --offset up to the first line that is exactly\n" +
			"\\. and write them to stdout followed by that line. The offset of the first\n" +
			"byte after the range is printed to stderr.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return errors.Wrap(err, "open input")
			}
			defer f.Close()

			next, err := dumpsort.SortRange(f, offset, cmd.OutOrStdout(),
				dumpsort.WithRunBudget(int(maxMemory)),
				dumpsort.WithSpill(g.spillOpener()),
				dumpsort.WithLogger(g.logger()),
				dumpsort.WithMetrics(g.registry),
			)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.ErrOrStderr(), next)
			return nil
		},
	}
	addMaxMemoryFlag(cmd, &maxMemory)
	cmd.Flags().Int64Var(&offset, "offset", 0, "byte offset of the first line of the range")
	return cmd
}
