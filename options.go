package dumpsort

import (
	"github.com/davidvella/dumpsort/metrics"
	"github.com/davidvella/dumpsort/monitoring"
	"github.com/davidvella/dumpsort/runbuf"
	"github.com/davidvella/dumpsort/spill"
)

// options defines all configuration options for the sorter.
type options struct {
	runBudget int          // Line content bytes held in memory before spilling
	spill     spill.Opener // Creates the spill store on first overflow
	tempDir   string       // Directory for the default file spill store

	logger   monitoring.Logger
	registry *metrics.Registry
}

// Option is a function that configures the sorter options.
type Option func(*options)

// WithRunBudget sets how many bytes of line content are buffered before a
// run is sorted and spilled.
func WithRunBudget(bytes int) Option {
	return func(o *options) {
		o.runBudget = bytes
	}
}

// WithSpill sets the spill store backend. The default is a spill.FileStore
// in the temporary directory.
func WithSpill(opener spill.Opener) Option {
	return func(o *options) {
		o.spill = opener
	}
}

// WithTempDir sets the directory of the default file spill store. It has no
// effect together with WithSpill.
func WithTempDir(dir string) Option {
	return func(o *options) {
		o.tempDir = dir
	}
}

// WithLogger sets the logger for spill and range events.
func WithLogger(logger monitoring.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMetrics records sort statistics into registry.
func WithMetrics(registry *metrics.Registry) Option {
	return func(o *options) {
		o.registry = registry
	}
}

// defaultOptions returns the default configuration.
func defaultOptions() options {
	return options{
		runBudget: runbuf.DefaultBudget,
		logger:    monitoring.Nop(),
	}
}
