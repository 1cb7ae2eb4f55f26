package main

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/davidvella/dumpsort/split"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newSplitCmd(g *globals) *cobra.Command {
	var (
		jobs      int
		maxMemory = byteSize(split.DefaultMaxMemory)
	)

	cmd := &cobra.Command{
		Use:   "split DUMP.sql...",
		Short: "Split dumps into per-table files with sorted COPY data",
		Long: "Split every dump into 0000_prologue.sql, one NNNN_<schema>.<table>.sql file\n" +
			"per table and 9999_epilogue.sql, written next to the dump. The rows of\n" +
			"each COPY block are sorted so that dumps can be compared with diff.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, paths []string) error {
			if jobs < 1 {
				return errors.Newf("--jobs must be at least 1, got %d", jobs)
			}
			opts := split.Options{
				MaxMemory: int(maxMemory),
				Spill:     g.spillOpener(),
				Logger:    g.logger(),
				Metrics:   g.registry,
			}

			results := make([][]string, len(paths))
			group, ctx := errgroup.WithContext(cmd.Context())
			group.SetLimit(jobs)
			for i, path := range paths {
				group.Go(func() error {
					files, err := split.SplitFile(ctx, path, opts)
					if err != nil {
						return errors.Wrapf(err, "%s", path)
					}
					results[i] = files
					return nil
				})
			}
			if err := group.Wait(); err != nil {
				return err
			}

			for i, path := range paths {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d files\n", path, len(results[i]))
			}
			return nil
		},
	}
	addMaxMemoryFlag(cmd, &maxMemory)
	cmd.Flags().IntVarP(&jobs, "jobs", "j", 1, "number of dumps split at the same time")
	return cmd
}
