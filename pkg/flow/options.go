package flow

import (
	"github.com/dd0wney/cluso-infoflow/pkg/graph"
	"github.com/dd0wney/cluso-infoflow/pkg/validation"
)

// Options configures the flow calculation.
type Options struct {
	// Model selects how link weights become node and link flow.
	Model graph.FlowModel
	// TeleportationProbability is the PageRank jump probability (alpha).
	TeleportationProbability float64
	// RecordedTeleportation includes teleport jumps in the recorded link
	// flow. When false a final pass subtracts them out.
	RecordedTeleportation bool
	// TeleportToNodes teleports proportionally to node weight instead of
	// link weight.
	TeleportToNodes bool
	// MinPowerIterations is the minimum number of power iterations before
	// the convergence tolerance is consulted.
	MinPowerIterations int
	// MaxPowerIterations bounds the power iteration.
	MaxPowerIterations int
	// PowerConvergenceTol is the L1 change below which the iteration is
	// considered converged.
	PowerConvergenceTol float64
	// NormalizationTol is the drift from sum 1 that triggers
	// renormalization between iterations.
	NormalizationTol float64

	// EntropyBiasCorrection is reserved; the core math ignores it.
	EntropyBiasCorrection bool
	// SkipAdjustBipartiteFlow is reserved for the bipartite adjustment.
	SkipAdjustBipartiteFlow bool
	// Seed is reserved for the outer optimizer.
	Seed uint64
}

// DefaultOptions returns the default flow configuration.
func DefaultOptions() Options {
	return Options{
		Model:                    graph.FlowUndirected,
		TeleportationProbability: 0.15,
		RecordedTeleportation:    true,
		TeleportToNodes:          false,
		MinPowerIterations:       50,
		MaxPowerIterations:       200,
		PowerConvergenceTol:      1e-15,
		NormalizationTol:         1e-10,
	}
}

// Validate checks the numeric ranges of the options.
func (o Options) Validate() error {
	return validation.NewConfigValidator("FlowOptions").
		RangeFloat("TeleportationProbability", o.TeleportationProbability, 0, 1).
		MinInt("MinPowerIterations", o.MinPowerIterations, 1).
		MinInt("MaxPowerIterations", o.MaxPowerIterations, 1).
		PositiveFloat("PowerConvergenceTol", o.PowerConvergenceTol).
		PositiveFloat("NormalizationTol", o.NormalizationTol).
		Validate()
}
