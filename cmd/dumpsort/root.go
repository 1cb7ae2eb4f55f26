package main

import (
	"fmt"
	"io"
	"slices"

	"github.com/cockroachdb/errors"
	"github.com/davidvella/dumpsort/metrics"
	"github.com/davidvella/dumpsort/monitoring"
	"github.com/davidvella/dumpsort/spill"
	spillpebble "github.com/davidvella/dumpsort/spill/pebble"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

var backends = map[string]func(dir string) spill.Opener{
	"file":   spill.FileOpener,
	"pebble": spillpebble.Opener,
}

// globals holds the flags shared by every subcommand.
type globals struct {
	logLevel string
	spill    string
	tempDir  string
	stats    bool

	stderr   io.Writer
	registry *metrics.Registry
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	g := &globals{
		stderr:   stderr,
		registry: metrics.NewRegistry(),
	}

	root := &cobra.Command{
		Use:           "dumpsort",
		Short:         "Sort the data sections of PostgreSQL plain-text dumps",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			if _, ok := backends[g.spill]; !ok {
				names := lo.Keys(backends)
				slices.Sort(names)
				return errors.Newf("unknown spill backend %q, want one of %v", g.spill, names)
			}
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if g.stats {
				g.printStats()
			}
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&g.logLevel, "log-level", "info", "minimum log level: debug, info, warn or error")
	flags.StringVar(&g.spill, "spill", "file", "where runs that exceed --max-memory go: file or pebble")
	flags.StringVar(&g.tempDir, "temp-dir", "", "directory for spilled runs (default: system temp dir)")
	flags.BoolVar(&g.stats, "stats", false, "print sort statistics to stderr when done")

	root.AddCommand(newSplitCmd(g), newRangeCmd(g))
	return root
}

// addMaxMemoryFlag registers --max-memory on cmd with its own default.
func addMaxMemoryFlag(cmd *cobra.Command, size *byteSize) {
	cmd.Flags().VarP(size, "max-memory", "m", "line bytes held in memory per run, e.g. 50_000, 100kb, 100MB, 2Gig")
}

func (g *globals) logger() monitoring.Logger {
	return monitoring.NewLogger("dumpsort", g.stderr, monitoring.ParseLevel(g.logLevel))
}

func (g *globals) spillOpener() spill.Opener {
	return backends[g.spill](g.tempDir)
}

func (g *globals) printStats() {
	descriptions := g.registry.Describe()
	names := lo.Keys(descriptions)
	slices.Sort(names)
	for _, name := range names {
		fmt.Fprintf(g.stderr, "%-22s %12.0f  %s\n", name, g.registry.Total(name), descriptions[name].Description)
	}
}
