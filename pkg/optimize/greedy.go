package optimize

import (
	"errors"
	"math/rand"

	"github.com/dd0wney/cluso-infoflow/pkg/graph"
	"github.com/dd0wney/cluso-infoflow/pkg/logging"
	"github.com/dd0wney/cluso-infoflow/pkg/mapeq"
	"github.com/dd0wney/cluso-infoflow/pkg/metrics"
	"github.com/dd0wney/cluso-infoflow/pkg/partition"
)

// ErrAborted means the abort flag cut the optimization short. The
// returned result holds the best partition found so far.
var ErrAborted = errors.New("optimization aborted")

// Result is the outcome of one optimizer run.
type Result struct {
	// Codelength is the final description length in bits.
	Codelength       float64
	IndexCodelength  float64
	ModuleCodelength float64
	// Modules maps every leaf node index to its top-level module.
	Modules []uint32
	// NumModules is the number of non-empty top-level modules.
	NumModules int
	// Levels is the number of hierarchy levels consolidated.
	Levels int
	// Moves is the total number of committed node moves.
	Moves int
	// Aborted is set when the abort flag stopped the run early.
	Aborted bool
}

// Optimizer runs greedy node sweeps against the map equation oracle,
// consolidating modules into super-nodes level by level.
type Optimizer struct {
	// Log receives progress messages. Defaults to a no-op logger.
	Log logging.Logger
	// Metrics records sweep and trial statistics when set.
	Metrics *metrics.Registry
	// Abort is checked between sweeps when set.
	Abort func() bool
}

// NewOptimizer creates an optimizer with a no-op logger.
func NewOptimizer() *Optimizer {
	return &Optimizer{Log: logging.NewNopLogger()}
}

// neighborLink is one directed flow adjacency entry.
type neighborLink struct {
	node uint32
	flow float64
}

// levelState is the working state for one hierarchy level.
type levelState struct {
	g        *graph.Model
	part     *partition.State
	eval     mapeq.Evaluator
	outLinks [][]neighborLink
	inLinks  [][]neighborLink
	rng      *rand.Rand

	movesCommitted int
}

// Run optimizes the partition of the graph. The graph must have flows
// applied. The returned result maps every leaf node to its module.
func (o *Optimizer) Run(g *graph.Model, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	numLeaf := g.NumNodes()
	result := &Result{Modules: make([]uint32, numLeaf)}
	if numLeaf == 0 {
		return result, nil
	}

	// leafToLevel maps every leaf node to its node on the current level.
	leafToLevel := make([]uint32, numLeaf)
	for i := range leafToLevel {
		leafToLevel[i] = uint32(i)
	}

	rng := rand.New(rand.NewSource(int64(opts.Seed)))
	level := g
	nodeEntropy := 0.0

	for levelIndex := 0; levelIndex < opts.MaxLevels; levelIndex++ {
		state := partition.NewOneModulePerNode(level)
		// The memory correction applies on the leaf level, where state
		// nodes carry distinct physical ids; consolidated levels carry
		// the leaf entropy through InitLevel.
		var eval mapeq.Evaluator
		if levelIndex == 0 {
			if opts.UseMemory {
				eval = mapeq.NewMemory()
			} else {
				eval = mapeq.New()
			}
			if err := eval.Init(level, state); err != nil {
				return nil, err
			}
			nodeEntropy = eval.NodeEntropy()
			o.Log.Info("initial codelength", logging.Codelength(eval.Codelength()))
		} else {
			eval = mapeq.New()
			if err := eval.InitLevel(level, state, nodeEntropy); err != nil {
				return nil, err
			}
		}
		before := eval.Codelength()

		ls := &levelState{g: level, part: state, eval: eval, rng: rng}
		ls.buildAdjacency()

		aborted, err := o.optimizeLevel(ls, opts, levelIndex)
		if err != nil {
			return nil, err
		}

		result.Codelength = eval.Codelength()
		result.IndexCodelength = eval.IndexCodelength()
		result.ModuleCodelength = eval.ModuleCodelength()
		result.Moves += ls.movesCommitted
		for leaf := range leafToLevel {
			result.Modules[leaf] = state.ModuleOf(leafToLevel[leaf])
		}
		result.NumModules = state.ModulesAlive()

		if aborted {
			result.Aborted = true
			o.renumberLeafModules(result)
			return result, ErrAborted
		}

		improved := before-eval.Codelength() > opts.MinimumImprovement
		noAggregation := state.ModulesAlive() == level.NumNodes()
		if noAggregation || state.ModulesAlive() <= 1 {
			break
		}

		consolidated, err := state.Consolidate(level)
		if err != nil {
			return nil, err
		}
		for leaf := range leafToLevel {
			leafToLevel[leaf] = consolidated.Mapping[state.ModuleOf(leafToLevel[leaf])]
		}
		result.Levels++
		level = consolidated.Graph
		if o.Metrics != nil {
			o.Metrics.RecordLevel(result.Codelength)
		}
		o.Log.Info("consolidated level",
			logging.Depth(result.Levels),
			logging.Int("modules", level.NumNodes()),
			logging.Codelength(result.Codelength))

		if !improved {
			break
		}
	}

	o.renumberLeafModules(result)
	return result, nil
}

// renumberLeafModules maps the final module ids to dense [0, NumModules).
func (o *Optimizer) renumberLeafModules(result *Result) {
	seen := make(map[uint32]uint32)
	next := uint32(0)
	for i, module := range result.Modules {
		dense, ok := seen[module]
		if !ok {
			dense = next
			seen[module] = dense
			next++
		}
		result.Modules[i] = dense
	}
	result.NumModules = int(next)
}
