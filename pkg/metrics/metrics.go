package metrics

import (
	"strconv"
	"time"
)

// RecordFlowCalculation records one finished flow calculation.
func (r *Registry) RecordFlowCalculation(model string, iterations int, converged bool, duration time.Duration) {
	status := "converged"
	if !converged {
		status = "diverged"
		r.FlowDivergencesTotal.WithLabelValues(model).Inc()
	}
	r.FlowCalculationsTotal.WithLabelValues(model, status).Inc()
	r.FlowCalculationDuration.WithLabelValues(model).Observe(duration.Seconds())
	r.FlowPowerIterations.WithLabelValues(model).Observe(float64(iterations))
}

// RecordSweep records one optimizer sweep and the moves it committed.
func (r *Registry) RecordSweep(level, moves int) {
	l := strconv.Itoa(level)
	r.OptimizerSweepsTotal.WithLabelValues(l).Inc()
	r.OptimizerMovesTotal.WithLabelValues(l).Add(float64(moves))
}

// RecordLevel records a consolidation into a new hierarchy level.
func (r *Registry) RecordLevel(codelength float64) {
	r.OptimizerLevelsTotal.Inc()
	r.OptimizerCodelength.Set(codelength)
}

// RecordTrial records one optimizer trial outcome.
func (r *Registry) RecordTrial(status string, duration time.Duration) {
	r.OptimizerTrialsTotal.WithLabelValues(status).Inc()
	r.OptimizerTrialSeconds.Observe(duration.Seconds())
}
