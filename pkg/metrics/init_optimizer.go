package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initOptimizerMetrics() {
	r.OptimizerSweepsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "infoflow_optimizer_sweeps_total",
			Help: "Total number of optimizer node sweeps",
		},
		[]string{"level"},
	)

	r.OptimizerMovesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "infoflow_optimizer_moves_total",
			Help: "Total number of committed node moves",
		},
		[]string{"level"},
	)

	r.OptimizerCodelength = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "infoflow_optimizer_codelength_bits",
			Help: "Current best codelength in bits",
		},
	)

	r.OptimizerLevelsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "infoflow_optimizer_levels_total",
			Help: "Total number of consolidated hierarchy levels",
		},
	)

	r.OptimizerTrialsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "infoflow_optimizer_trials_total",
			Help: "Total number of optimizer trials",
		},
		[]string{"status"},
	)

	r.OptimizerTrialSeconds = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "infoflow_optimizer_trial_duration_seconds",
			Help:    "Optimizer trial duration in seconds",
			Buckets: []float64{0.01, 0.1, 1.0, 10.0, 60.0, 300.0},
		},
	)
}
