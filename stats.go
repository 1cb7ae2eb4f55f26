package dumpsort

import (
	"time"

	"github.com/davidvella/dumpsort/metrics"
)

// Metric names recorded when a registry is configured with WithMetrics.
const (
	MetricLinesSorted   = "lines_sorted_total"
	MetricRunsSpilled   = "runs_spilled_total"
	MetricBytesSpilled  = "bytes_spilled_total"
	MetricRangesSorted  = "ranges_sorted_total"
	MetricRangeDuration = "range_duration_ms"
)

// stats records sort statistics. A nil *stats records nothing.
type stats struct {
	registry *metrics.Registry
}

func newStats(registry *metrics.Registry) *stats {
	if registry == nil {
		return nil
	}

	registry.Register(metrics.Metric{
		Name:        MetricLinesSorted,
		Type:        metrics.Counter,
		Description: "Total number of lines sorted",
	})

	registry.Register(metrics.Metric{
		Name:        MetricRunsSpilled,
		Type:        metrics.Counter,
		Description: "Total number of runs spilled out of memory",
	})

	registry.Register(metrics.Metric{
		Name:        MetricBytesSpilled,
		Type:        metrics.Counter,
		Description: "Total line content bytes spilled out of memory",
	})

	registry.Register(metrics.Metric{
		Name:        MetricRangesSorted,
		Type:        metrics.Counter,
		Description: "Total number of ranges sorted",
	})

	registry.Register(metrics.Metric{
		Name:        MetricRangeDuration,
		Type:        metrics.Gauge,
		Description: "Duration of the last range sort in milliseconds",
	})

	return &stats{registry: registry}
}

func (s *stats) recordSpill(bytes int) {
	if s == nil {
		return
	}
	s.registry.RecordCounter(MetricRunsSpilled, 1, nil)
	s.registry.RecordCounter(MetricBytesSpilled, float64(bytes), nil)
}

func (s *stats) recordRange(lines int64, elapsed time.Duration) {
	if s == nil {
		return
	}
	s.registry.RecordCounter(MetricRangesSorted, 1, nil)
	s.registry.RecordCounter(MetricLinesSorted, float64(lines), nil)
	s.registry.RecordGauge(MetricRangeDuration, float64(elapsed.Milliseconds()), nil)
}
