// Package metrics keeps in-process counters and gauges. A Registry is safe
// for concurrent use, so one registry can be shared by concurrent sorts.
package metrics

import (
	"maps"
	"sync"
	"time"
)

// MetricType represents different types of metrics
type MetricType int

const (
	Counter MetricType = iota
	Gauge
)

// Metric represents a single metric
type Metric struct {
	Name        string
	Type        MetricType
	Description string
	Labels      map[string]string
}

// MetricValue represents the value of a metric
type MetricValue struct {
	Value     float64
	Timestamp time.Time
	Labels    map[string]string
}

// Registry stores and manages metrics
type Registry struct {
	metrics map[string]Metric
	values  map[string][]MetricValue
	mu      sync.RWMutex
}

func NewRegistry() *Registry {
	return &Registry{
		metrics: make(map[string]Metric),
		values:  make(map[string][]MetricValue),
	}
}

func (r *Registry) Register(metric Metric) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.metrics[metric.Name] = metric
}

// RecordCounter appends an increment to a registered counter. Values for
// unknown names or for gauges are dropped.
func (r *Registry) RecordCounter(name string, value float64, labels map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if metric, ok := r.metrics[name]; ok && metric.Type == Counter {
		r.values[name] = append(r.values[name], MetricValue{
			Value:     value,
			Timestamp: time.Now(),
			Labels:    labels,
		})
	}
}

// RecordGauge replaces the value of a registered gauge.
func (r *Registry) RecordGauge(name string, value float64, labels map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if metric, ok := r.metrics[name]; ok && metric.Type == Gauge {
		r.values[name] = []MetricValue{{
			Value:     value,
			Timestamp: time.Now(),
			Labels:    labels,
		}}
	}
}

// Total sums every recorded value of name.
func (r *Registry) Total(name string) float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var total float64
	for _, v := range r.values[name] {
		total += v.Value
	}
	return total
}

func (r *Registry) GetMetrics() map[string][]MetricValue {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[string][]MetricValue, len(r.values))
	for name, values := range r.values {
		result[name] = append([]MetricValue{}, values...)
	}
	return result
}

// Describe returns the registered metric definitions.
func (r *Registry) Describe() map[string]Metric {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return maps.Clone(r.metrics)
}
