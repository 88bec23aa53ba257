package optimize

import (
	"github.com/dd0wney/cluso-infoflow/pkg/validation"
)

// Options configures the greedy optimizer.
type Options struct {
	// MinimumImprovement is the smallest codelength gain (bits) a move or
	// a level must deliver to be accepted.
	MinimumImprovement float64
	// MaxSweeps bounds the node sweeps per hierarchy level.
	MaxSweeps int
	// MaxLevels bounds the number of consolidations.
	MaxLevels int
	// Seed drives the node visit order. The same seed on the same input
	// reproduces the same partition.
	Seed uint64
	// UseMemory selects the Grassberger evaluator, accounting for
	// higher-order memory through physical-node occupancies.
	UseMemory bool
	// ProbeInvariants recomputes the codelength terms from scratch after
	// every sweep and reports drift. Expensive; meant for debugging.
	ProbeInvariants bool
}

// DefaultOptions returns the default optimizer configuration.
func DefaultOptions() Options {
	return Options{
		MinimumImprovement: 1e-10,
		MaxSweeps:          100,
		MaxLevels:          20,
	}
}

// Validate checks the numeric ranges of the options.
func (o Options) Validate() error {
	return validation.NewConfigValidator("OptimizeOptions").
		NonNegativeFloat("MinimumImprovement", o.MinimumImprovement).
		Positive("MaxSweeps", o.MaxSweeps).
		Positive("MaxLevels", o.MaxLevels).
		Validate()
}
