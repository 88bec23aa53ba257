package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all metrics for the application
type Registry struct {
	// Flow solver metrics
	FlowCalculationsTotal   *prometheus.CounterVec
	FlowCalculationDuration *prometheus.HistogramVec
	FlowPowerIterations     *prometheus.HistogramVec
	FlowDivergencesTotal    *prometheus.CounterVec

	// Optimizer metrics
	OptimizerSweepsTotal  *prometheus.CounterVec
	OptimizerMovesTotal   *prometheus.CounterVec
	OptimizerCodelength   prometheus.Gauge
	OptimizerLevelsTotal  prometheus.Counter
	OptimizerTrialsTotal  *prometheus.CounterVec
	OptimizerTrialSeconds prometheus.Histogram

	registry *prometheus.Registry
	mu       sync.RWMutex
}

var (
	// Global registry instance
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the global metrics registry
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		registry: reg,
	}

	r.initFlowMetrics()
	r.initOptimizerMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}
