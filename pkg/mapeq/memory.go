package mapeq

import (
	"math"

	"github.com/dd0wney/cluso-infoflow/pkg/graph"
	"github.com/dd0wney/cluso-infoflow/pkg/partition"
)

// MemoryMapEquation is the Grassberger variant of the map equation. It
// keeps the same contract as MapEquation but replaces the per-state-node
// entropy with physical-node occupancies: each physical node contributes
// -sum over modules of plogp of its summed in-module state-node flow.
type MemoryMapEquation struct {
	MapEquation

	// physFlow[module] maps a physical node id to the summed flow of its
	// state nodes inside that module. physCount tracks how many state
	// nodes back each entry so emptied entries can be dropped exactly.
	physFlow  []map[uint32]float64
	physCount []map[uint32]int
	physTotal map[uint32]float64

	physPlogpSum float64
}

// NewMemory creates an uninitialized memory map equation. Call Init
// before use.
func NewMemory() *MemoryMapEquation {
	return &MemoryMapEquation{}
}

// Init computes the base terms, then replaces the node-entropy term with
// the physical-node occupancy aggregate.
func (m *MemoryMapEquation) Init(g *graph.Model, part *partition.State) error {
	return m.InitLevel(g, part, 0)
}

// InitLevel rebuilds the occupancy maps from the level's physical ids.
// The passed node entropy is discarded: the occupancy aggregate takes its
// place, so the memory correction is meaningful on the leaf level where
// state nodes share physical ids.
func (m *MemoryMapEquation) InitLevel(g *graph.Model, part *partition.State, nodeEntropy float64) error {
	if err := m.MapEquation.InitLevel(g, part, nodeEntropy); err != nil {
		return err
	}

	numModules := part.NumModules()
	m.physFlow = make([]map[uint32]float64, numModules)
	m.physCount = make([]map[uint32]int, numModules)
	for i := 0; i < numModules; i++ {
		m.physFlow[i] = make(map[uint32]float64)
		m.physCount[i] = make(map[uint32]int)
	}
	m.physTotal = make(map[uint32]float64)

	nodes := g.Nodes()
	for i := range nodes {
		n := &nodes[i]
		module := part.ModuleOf(n.Index)
		m.physFlow[module][n.PhysicalID] += n.Flow
		m.physCount[module][n.PhysicalID]++
		m.physTotal[n.PhysicalID] += n.Flow
	}

	m.physPlogpSum = 0
	for module := range m.physFlow {
		for _, f := range m.physFlow[module] {
			m.physPlogpSum += Plogp(f)
		}
	}
	m.terms.NodeFlowLogNodeFlow = m.physPlogpSum
	m.refreshCodelengths()
	return nil
}

// PrepareMove fills the physical-occupancy contributions into the delta
// records: what leaving the old module and entering each candidate module
// does to the plogp sum of the node's physical flow.
func (m *MemoryMapEquation) PrepareMove(node *graph.Node, oldDelta *DeltaFlow, buffer []DeltaFlow) {
	flow := node.Flow
	phys := node.PhysicalID

	fOld := m.physFlow[oldDelta.Module][phys]
	oldDelta.SumDeltaPlogpPhysFlow = Plogp(fOld-flow) - Plogp(fOld)

	for i := range buffer {
		if buffer[i].Module == oldDelta.Module {
			buffer[i].SumDeltaPlogpPhysFlow = 0
			continue
		}
		f := m.physFlow[buffer[i].Module][phys]
		buffer[i].SumDeltaPlogpPhysFlow = Plogp(f+flow) - Plogp(f)
	}
}

// DeltaCodelength returns the candidate move cost including the
// physical-occupancy change prepared by PrepareMove.
func (m *MemoryMapEquation) DeltaCodelength(node *graph.Node, oldDelta, newDelta *DeltaFlow) float64 {
	if oldDelta.Module == newDelta.Module {
		return 0
	}
	base := m.terms.deltaOnMove(node.FlowData, oldDelta, newDelta, m.moduleFlow)
	return base - (oldDelta.SumDeltaPlogpPhysFlow + newDelta.SumDeltaPlogpPhysFlow)
}

// Commit applies the move to the base terms and the occupancy maps.
func (m *MemoryMapEquation) Commit(node *graph.Node, oldDelta, newDelta *DeltaFlow) {
	if oldDelta.Module == newDelta.Module {
		return
	}
	m.terms.applyMove(node.FlowData, oldDelta, newDelta, m.moduleFlow)

	flow := node.Flow
	phys := node.PhysicalID
	oldModule := oldDelta.Module
	newModule := newDelta.Module

	m.physCount[oldModule][phys]--
	if m.physCount[oldModule][phys] == 0 {
		delete(m.physCount[oldModule], phys)
		delete(m.physFlow[oldModule], phys)
	} else {
		m.physFlow[oldModule][phys] -= flow
	}
	m.physFlow[newModule][phys] += flow
	m.physCount[newModule][phys]++

	m.physPlogpSum += oldDelta.SumDeltaPlogpPhysFlow + newDelta.SumDeltaPlogpPhysFlow
	m.terms.NodeFlowLogNodeFlow = m.physPlogpSum
	m.refreshCodelengths()
}

// CheckInvariants rebuilds the occupancy maps and all terms from scratch
// and verifies the physical flow sums across modules match each physical
// node's total flow.
func (m *MemoryMapEquation) CheckInvariants(tol float64) error {
	fresh := NewMemory()
	fresh.SetExitNetworkFlow(m.terms.ExitNetworkFlow)
	if err := fresh.Init(m.g, m.part); err != nil {
		return err
	}
	if err := compareTerms(&m.terms, &fresh.terms, m.codelength, fresh.codelength, tol); err != nil {
		return err
	}
	for phys, total := range m.physTotal {
		sum := 0.0
		for module := range m.physFlow {
			sum += m.physFlow[module][phys]
		}
		if delta := math.Abs(sum - total); delta > tol {
			return &InvariantError{Term: "physFlow", Delta: delta}
		}
	}
	return nil
}
