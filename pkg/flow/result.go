package flow

// Result contains the calculated flows and solver diagnostics.
type Result struct {
	// NodeFlow is the stationary visit distribution, summing to 1.
	NodeFlow []float64
	// LinkFlow is the per-link flow, parallel to the model's link list.
	LinkFlow []float64
	// Iterations is the number of power iterations performed (0 for
	// models that need none).
	Iterations int
	// Converged reports whether the power iteration met its tolerance.
	Converged bool
	// Diverged is set when the iteration hit MaxPowerIterations without
	// converging; NodeFlow then holds the best estimate.
	Diverged bool
	// Aborted is set when the abort flag cut the iteration short.
	Aborted bool
}
