package partition

import (
	"github.com/dd0wney/cluso-infoflow/pkg/graph"
)

// ConsolidateResult is a coarsened graph level plus the module renumbering
// that produced it.
type ConsolidateResult struct {
	// Graph has one super-node per surviving module, with flows applied.
	Graph *graph.Model
	// Mapping maps old module ids to dense super-node indices. Empty
	// modules map to ^uint32(0).
	Mapping []uint32
	// State is the fresh one-module-per-node partition of the new level.
	State *State
}

// Consolidate collapses the non-empty modules into super-nodes. Inter-
// module link flow becomes inter-supernode link weight and intra-module
// flow becomes supernode self-flow, so both the node flow sum and the
// codelength of the partition are preserved on the new level. The
// consolidated level always carries directed links: the undirected
// expansion has already been materialized.
func (s *State) Consolidate(g *graph.Model) (*ConsolidateResult, error) {
	if len(s.moduleOf) == 0 {
		return nil, ErrEmptyPartition
	}
	mapping := s.Renumber()
	numModules := s.numAlive

	superFlow := make([]float64, numModules)
	superWeight := make([]float64, numModules)
	for node, module := range s.moduleOf {
		super := mapping[module]
		n := g.Node(uint32(node))
		superFlow[super] += n.Flow
		superWeight[super] += n.Weight
	}

	// Aggregate directed flow per super-node pair, keeping first-appearance
	// order so link insertion stays deterministic.
	type pair struct{ source, target uint32 }
	aggregated := make(map[pair]float64)
	var order []pair
	g.EachDirectedLinkFlow(func(source, target uint32, flow float64) {
		p := pair{mapping[s.moduleOf[source]], mapping[s.moduleOf[target]]}
		if _, ok := aggregated[p]; !ok {
			order = append(order, p)
		}
		aggregated[p] += flow
	})

	b := graph.NewBuilder()
	b.ReserveNodes(numModules)
	b.ReserveLinks(len(order))
	for super := 0; super < numModules; super++ {
		if err := b.AddNode(uint32(super), "", superWeight[super]); err != nil {
			return nil, err
		}
	}
	linkFlow := make([]float64, 0, len(order))
	for _, p := range order {
		if err := b.AddLink(p.source, p.target, aggregated[p]); err != nil {
			return nil, err
		}
		linkFlow = append(linkFlow, aggregated[p])
	}

	super := b.Build()
	if err := super.ApplyFlows(graph.FlowDirected, superFlow, linkFlow); err != nil {
		return nil, err
	}
	return &ConsolidateResult{
		Graph:   super,
		Mapping: mapping,
		State:   NewOneModulePerNode(super),
	}, nil
}
