package mapeq

import (
	"errors"
	"fmt"
	"math"

	"github.com/dd0wney/cluso-infoflow/pkg/graph"
	"github.com/dd0wney/cluso-infoflow/pkg/partition"
)

// ErrInvariantViolation means the incremental terms drifted away from a
// from-scratch recomputation.
var ErrInvariantViolation = errors.New("codelength invariant violation")

// InvariantError reports which term drifted and by how much.
type InvariantError struct {
	Term  string
	Delta float64
}

// Error implements the error interface.
func (e *InvariantError) Error() string {
	return fmt.Sprintf("%v: term %s drifted by %g", ErrInvariantViolation, e.Term, e.Delta)
}

// Unwrap returns the sentinel for error chain support.
func (e *InvariantError) Unwrap() error {
	return ErrInvariantViolation
}

// Evaluator answers what the current description length is and what a
// candidate node move would cost. MapEquation and MemoryMapEquation are
// the two implementations.
type Evaluator interface {
	// Init computes all terms from scratch for the given partition on the
	// leaf network, including the node entropy term. The only operations
	// that touch every link are Init and InitLevel.
	Init(g *graph.Model, part *partition.State) error
	// InitLevel recomputes the module terms on a consolidated level while
	// carrying the node entropy of the leaf network, keeping the
	// codelength continuous across consolidations.
	InitLevel(g *graph.Model, part *partition.State, nodeEntropy float64) error
	// NodeEntropy returns the current nodeFlow_log_nodeFlow term.
	NodeEntropy() float64
	// Codelength returns the current total description length in bits.
	Codelength() float64
	// IndexCodelength returns the index codebook part.
	IndexCodelength() float64
	// ModuleCodelength returns the module codebook part.
	ModuleCodelength() float64
	// PrepareMove fills in evaluator-specific bookkeeping on the delta
	// records before DeltaCodelength or Commit.
	PrepareMove(node *graph.Node, oldDelta *DeltaFlow, buffer []DeltaFlow)
	// DeltaCodelength returns newCodelength - currentCodelength for the
	// candidate move without committing it.
	DeltaCodelength(node *graph.Node, oldDelta, newDelta *DeltaFlow) float64
	// Commit applies the move to the terms and module aggregates. The
	// caller moves the node in the partition state itself.
	Commit(node *graph.Node, oldDelta, newDelta *DeltaFlow)
	// DeltaNumModulesIfMoving reports how the number of non-empty modules
	// would change.
	DeltaNumModulesIfMoving(node *graph.Node, fromModule, toModule uint32) int
	// CheckInvariants compares the incremental terms against a fresh
	// recomputation and fails when any drifts beyond tol.
	CheckInvariants(tol float64) error
}

// MapEquation holds the codelength terms and per-module flow aggregates
// for a two-level partition.
type MapEquation struct {
	g    *graph.Model
	part *partition.State

	terms      Terms
	moduleFlow []graph.FlowData

	indexCodelength  float64
	moduleCodelength float64
	codelength       float64
}

// New creates an uninitialized map equation. Call Init before use.
func New() *MapEquation {
	return &MapEquation{}
}

// SetExitNetworkFlow declares the flow leaving the containing module.
// Must be called before Init; zero (the default) means the partition is
// evaluated at the root.
func (m *MapEquation) SetExitNetworkFlow(flow float64) {
	m.terms.ExitNetworkFlow = flow
}

// Init computes the codelength terms from scratch on the leaf network,
// including the node entropy term.
func (m *MapEquation) Init(g *graph.Model, part *partition.State) error {
	nodeFlowLogNodeFlow := 0.0
	nodes := g.Nodes()
	for i := range nodes {
		nodeFlowLogNodeFlow += Plogp(nodes[i].Flow)
	}
	return m.InitLevel(g, part, nodeFlowLogNodeFlow)
}

// InitLevel recomputes the module terms for a (possibly consolidated)
// level. The node entropy is the leaf-level constant; passing it through
// keeps the codelength identical before and after a consolidation.
func (m *MapEquation) InitLevel(g *graph.Model, part *partition.State, nodeEntropy float64) error {
	m.g = g
	m.part = part

	exitNetworkFlow := m.terms.ExitNetworkFlow
	m.terms = Terms{
		NodeFlowLogNodeFlow:               nodeEntropy,
		ExitNetworkFlow:                   exitNetworkFlow,
		ExitNetworkFlowLogExitNetworkFlow: Plogp(exitNetworkFlow),
	}
	m.moduleFlow = computeModuleFlow(g, part)
	m.terms.accumulateModules(m.moduleFlow)
	m.refreshCodelengths()
	return nil
}

// NodeEntropy returns the current nodeFlow_log_nodeFlow term.
func (m *MapEquation) NodeEntropy() float64 {
	return m.terms.NodeFlowLogNodeFlow
}

// computeModuleFlow aggregates per-module flow, enter flow and exit flow
// from the current partition and the link set.
func computeModuleFlow(g *graph.Model, part *partition.State) []graph.FlowData {
	moduleFlow := make([]graph.FlowData, part.NumModules())
	nodes := g.Nodes()
	for i := range nodes {
		moduleFlow[part.ModuleOf(uint32(i))].Flow += nodes[i].Flow
	}
	g.EachDirectedLinkFlow(func(source, target uint32, flow float64) {
		mSource := part.ModuleOf(source)
		mTarget := part.ModuleOf(target)
		if mSource != mTarget {
			moduleFlow[mSource].ExitFlow += flow
			moduleFlow[mTarget].EnterFlow += flow
		}
	})
	return moduleFlow
}

// accumulateModules folds the module aggregates into the four
// module-indexed sums.
func (t *Terms) accumulateModules(moduleFlow []graph.FlowData) {
	for i := range moduleFlow {
		d := &moduleFlow[i]
		t.FlowLogFlow += Plogp(d.ExitFlow + d.Flow)
		t.ExitLogExit += Plogp(d.ExitFlow)
		t.EnterLogEnter += Plogp(d.EnterFlow)
		t.EnterFlow += d.EnterFlow
	}
	t.EnterFlow += t.ExitNetworkFlow
	t.EnterFlowLogEnterFlow = Plogp(t.EnterFlow)
}

func (m *MapEquation) refreshCodelengths() {
	m.indexCodelength, m.moduleCodelength = m.terms.Codelengths()
	m.codelength = m.indexCodelength + m.moduleCodelength
}

// Codelength returns the current total description length in bits.
func (m *MapEquation) Codelength() float64 {
	return m.codelength
}

// IndexCodelength returns the index codebook part.
func (m *MapEquation) IndexCodelength() float64 {
	return m.indexCodelength
}

// ModuleCodelength returns the module codebook part.
func (m *MapEquation) ModuleCodelength() float64 {
	return m.moduleCodelength
}

// ModuleFlowData returns the aggregates of one module.
func (m *MapEquation) ModuleFlowData(module uint32) graph.FlowData {
	return m.moduleFlow[module]
}

// PrepareMove is a no-op for the plain map equation.
func (m *MapEquation) PrepareMove(node *graph.Node, oldDelta *DeltaFlow, buffer []DeltaFlow) {}

// DeltaCodelength returns the codelength change of the candidate move
// without committing it. Moving a node to its own module costs nothing.
func (m *MapEquation) DeltaCodelength(node *graph.Node, oldDelta, newDelta *DeltaFlow) float64 {
	return m.terms.deltaOnMove(node.FlowData, oldDelta, newDelta, m.moduleFlow)
}

// Commit applies the move to the terms and module aggregates. A fresh
// Init on the resulting partition reproduces the same terms up to
// floating-point rounding.
func (m *MapEquation) Commit(node *graph.Node, oldDelta, newDelta *DeltaFlow) {
	m.terms.applyMove(node.FlowData, oldDelta, newDelta, m.moduleFlow)
	m.refreshCodelengths()
}

// DeltaNumModulesIfMoving reports how the number of non-empty modules
// would change: -1 when the source module empties, +1 when the target
// was empty.
func (m *MapEquation) DeltaNumModulesIfMoving(node *graph.Node, fromModule, toModule uint32) int {
	if fromModule == toModule {
		return 0
	}
	delta := 0
	if m.part.MemberCount(fromModule) == 1 {
		delta--
	}
	if m.part.MemberCount(toModule) == 0 {
		delta++
	}
	return delta
}

// CheckInvariants recomputes every term from scratch on the current
// partition and fails when any drifts beyond tol.
func (m *MapEquation) CheckInvariants(tol float64) error {
	fresh := New()
	fresh.SetExitNetworkFlow(m.terms.ExitNetworkFlow)
	if err := fresh.InitLevel(m.g, m.part, m.terms.NodeFlowLogNodeFlow); err != nil {
		return err
	}
	return compareTerms(&m.terms, &fresh.terms, m.codelength, fresh.codelength, tol)
}

func compareTerms(got, want *Terms, gotCodelength, wantCodelength, tol float64) error {
	checks := []struct {
		term string
		got  float64
		want float64
	}{
		{"nodeFlow_log_nodeFlow", got.NodeFlowLogNodeFlow, want.NodeFlowLogNodeFlow},
		{"flow_log_flow", got.FlowLogFlow, want.FlowLogFlow},
		{"exit_log_exit", got.ExitLogExit, want.ExitLogExit},
		{"enter_log_enter", got.EnterLogEnter, want.EnterLogEnter},
		{"enterFlow", got.EnterFlow, want.EnterFlow},
		{"enterFlow_log_enterFlow", got.EnterFlowLogEnterFlow, want.EnterFlowLogEnterFlow},
		{"codelength", gotCodelength, wantCodelength},
	}
	for _, c := range checks {
		if delta := math.Abs(c.got - c.want); delta > tol {
			return &InvariantError{Term: c.term, Delta: delta}
		}
	}
	return nil
}
