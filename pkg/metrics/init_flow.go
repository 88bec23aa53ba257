package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initFlowMetrics() {
	r.FlowCalculationsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "infoflow_flow_calculations_total",
			Help: "Total number of flow calculations",
		},
		[]string{"model", "status"},
	)

	r.FlowCalculationDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "infoflow_flow_calculation_duration_seconds",
			Help:    "Flow calculation duration in seconds",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1.0, 5.0, 30.0},
		},
		[]string{"model"},
	)

	r.FlowPowerIterations = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "infoflow_flow_power_iterations",
			Help:    "Number of power iterations per flow calculation",
			Buckets: []float64{1, 10, 50, 100, 150, 200},
		},
		[]string{"model"},
	)

	r.FlowDivergencesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "infoflow_flow_divergences_total",
			Help: "Flow calculations that hit the iteration cap without converging",
		},
		[]string{"model"},
	)
}
