package flow

import (
	"fmt"
	"time"

	"gonum.org/v1/gonum/floats"

	"github.com/dd0wney/cluso-infoflow/pkg/graph"
	"github.com/dd0wney/cluso-infoflow/pkg/logging"
	"github.com/dd0wney/cluso-infoflow/pkg/metrics"
)

// Calculator turns a weighted graph model into node and link flow under a
// selected flow model. The zero value is not usable; use NewCalculator.
type Calculator struct {
	// Log receives progress messages. Defaults to a no-op logger.
	Log logging.Logger
	// Metrics records solver statistics when set.
	Metrics *metrics.Registry
	// Abort is checked between power iterations when set. A true return
	// stops the calculation with a partial result.
	Abort func() bool
}

// NewCalculator creates a calculator with a no-op logger.
func NewCalculator() *Calculator {
	return &Calculator{Log: logging.NewNopLogger()}
}

// CalculateFlow computes flows with a default calculator.
func CalculateFlow(g *graph.Model, opts Options) (*Result, error) {
	return NewCalculator().Calculate(g, opts)
}

// CalculateFromSource builds the graph model from a network source and
// computes its flows in one step.
func CalculateFromSource(src graph.NetworkSource, opts Options) (*graph.Model, *Result, error) {
	g, err := graph.FromSource(src)
	if err != nil {
		return nil, nil, err
	}
	result, err := NewCalculator().Calculate(g, opts)
	return g, result, err
}

// Calculate computes the stationary node flow and the induced link flow
// and writes both back into the model. The returned slices alias the
// calculation buffers, not the model.
func (c *Calculator) Calculate(g *graph.Model, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, &FlowError{Op: "Calculate", Model: opts.Model, Cause: fmt.Errorf("%w: %w", ErrInvalidConfig, err)}
	}
	start := time.Now()
	c.Log.Info("calculating network flow",
		logging.Model(opts.Model.String()),
		logging.Int("nodes", g.NumNodes()),
		logging.Int("links", g.NumLinks()))

	numNodes := g.NumNodes()
	if numNodes == 0 {
		return &Result{NodeFlow: []float64{}, LinkFlow: []float64{}, Converged: true}, nil
	}
	if g.SumLinkWeight() <= 0 {
		return nil, &FlowError{Op: "Calculate", Model: opts.Model, Cause: ErrEmptyFlow}
	}

	pre := c.preprocess(g, opts)

	var (
		result *Result
		err    error
	)
	switch opts.Model {
	case graph.FlowRawDir:
		result = c.rawDirFlow(g, pre)
	case graph.FlowUndirected:
		result = c.undirectedFlow(g, pre)
	case graph.FlowUndirDir, graph.FlowOutDirDir:
		result = c.directedStepFlow(g, pre)
	case graph.FlowDirected:
		result, err = c.pageRank(g, opts, pre)
	}
	if result == nil {
		return nil, err
	}
	if applyErr := g.ApplyFlows(opts.Model, result.NodeFlow, result.LinkFlow); applyErr != nil {
		return nil, &FlowError{Op: "Calculate", Model: opts.Model, Cause: applyErr}
	}
	if c.Metrics != nil {
		c.Metrics.RecordFlowCalculation(opts.Model.String(), result.Iterations, result.Converged, time.Since(start))
	}
	c.Log.Info("flow calculation done",
		logging.Iterations(result.Iterations),
		logging.Bool("converged", result.Converged),
		logging.Float64("sumNodeFlow", floats.Sum(result.NodeFlow)))
	return result, err
}

// precomputed holds the shared preprocessing of every flow model.
type precomputed struct {
	nodeFlow     []float64
	linkFlow     []float64 // starts as raw weights
	outDegree    []int
	sumOutWeight []float64
}

func (c *Calculator) preprocess(g *graph.Model, opts Options) *precomputed {
	numNodes := g.NumNodes()
	pre := &precomputed{
		nodeFlow:     make([]float64, numNodes),
		linkFlow:     make([]float64, g.NumLinks()),
		outDegree:    make([]int, numNodes),
		sumOutWeight: make([]float64, numNodes),
	}
	sumUndir := g.SumUndirLinkWeight()
	links := g.Links()
	for i := range links {
		l := &links[i]
		pre.linkFlow[i] = l.Weight
		pre.outDegree[l.Source]++
		pre.sumOutWeight[l.Source] += l.Weight
		pre.nodeFlow[l.Source] += l.Weight / sumUndir
		if l.Source != l.Target {
			if opts.Model.IsUndirected() {
				pre.outDegree[l.Target]++
				pre.sumOutWeight[l.Target] += l.Weight
			}
			if opts.Model != graph.FlowOutDirDir {
				pre.nodeFlow[l.Target] += l.Weight / sumUndir
			}
		}
	}
	return pre
}

// rawDirFlow treats normalized link weights directly as flow and sets node
// flow from incoming links. No power iteration.
func (c *Calculator) rawDirFlow(g *graph.Model, pre *precomputed) *Result {
	sumLinkWeight := g.SumLinkWeight()
	for i := range pre.nodeFlow {
		pre.nodeFlow[i] = 0
	}
	links := g.Links()
	for i := range links {
		pre.linkFlow[i] /= sumLinkWeight
		pre.nodeFlow[links[i].Target] += pre.linkFlow[i]
	}
	normalizeNodeFlow(pre.nodeFlow)
	return &Result{NodeFlow: pre.nodeFlow, LinkFlow: pre.linkFlow, Converged: true}
}

// undirectedFlow finishes the undirected model; node flow from the
// preprocessing is already the steady state.
func (c *Calculator) undirectedFlow(g *graph.Model, pre *precomputed) *Result {
	halfWeight := g.SumUndirLinkWeight() / 2
	for i := range pre.linkFlow {
		pre.linkFlow[i] /= halfWeight
	}
	return &Result{NodeFlow: pre.nodeFlow, LinkFlow: pre.linkFlow, Converged: true}
}

// directedStepFlow takes the undirected steady state as prior and applies
// one directed power step (undirdir and outdirdir models).
func (c *Calculator) directedStepFlow(g *graph.Model, pre *precomputed) *Result {
	steadyState := make([]float64, len(pre.nodeFlow))
	copy(steadyState, pre.nodeFlow)
	for i := range pre.nodeFlow {
		pre.nodeFlow[i] = 0
	}
	links := g.Links()
	for i := range links {
		l := &links[i]
		pre.nodeFlow[l.Target] += steadyState[l.Source] * pre.linkFlow[i] / pre.sumOutWeight[l.Source]
	}
	sumNodeFlow := floats.Sum(pre.nodeFlow)
	for i := range links {
		l := &links[i]
		pre.linkFlow[i] *= steadyState[l.Source] / pre.sumOutWeight[l.Source] / sumNodeFlow
	}
	normalizeNodeFlow(pre.nodeFlow)
	return &Result{NodeFlow: pre.nodeFlow, LinkFlow: pre.linkFlow, Iterations: 1, Converged: true}
}

// normalizeNodeFlow rescales the node flow to sum 1 in place.
func normalizeNodeFlow(nodeFlow []float64) {
	sum := floats.Sum(nodeFlow)
	if sum > 0 {
		floats.Scale(1/sum, nodeFlow)
	}
}
