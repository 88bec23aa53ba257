package graph

// Model is the dense-indexed node table and link list the numerical core
// operates on. It is immutable once flows have been applied; link order is
// the insertion order of the source network, which keeps floating-point
// sums reproducible between runs.
type Model struct {
	nodes []Node
	links []Link

	sumLinkWeight     float64
	sumSelfLinkWeight float64

	appliedModel FlowModel
	flowsApplied bool
}

// NumNodes returns the number of nodes.
func (m *Model) NumNodes() int {
	return len(m.nodes)
}

// NumLinks returns the number of links.
func (m *Model) NumLinks() int {
	return len(m.links)
}

// Node returns a pointer to the node at the given dense index.
func (m *Model) Node(i uint32) *Node {
	return &m.nodes[i]
}

// Nodes returns the node table. Callers must not reorder it.
func (m *Model) Nodes() []Node {
	return m.nodes
}

// Links returns the link list in insertion order. Callers must not
// reorder it.
func (m *Model) Links() []Link {
	return m.links
}

// SumLinkWeight returns the total link weight.
func (m *Model) SumLinkWeight() float64 {
	return m.sumLinkWeight
}

// SumSelfLinkWeight returns the total weight on self-links.
func (m *Model) SumSelfLinkWeight() float64 {
	return m.sumSelfLinkWeight
}

// SumUndirLinkWeight returns 2*sumLinkWeight - sumSelfLinkWeight, the
// normalization constant for the undirected symmetrization.
func (m *Model) SumUndirLinkWeight() float64 {
	return 2*m.sumLinkWeight - m.sumSelfLinkWeight
}

// FlowsApplied reports whether ApplyFlows has run.
func (m *Model) FlowsApplied() bool {
	return m.flowsApplied
}

// AppliedModel returns the flow model the flows were calculated under.
func (m *Model) AppliedModel() FlowModel {
	return m.appliedModel
}

// EachDirectedLinkFlow calls fn for every directed flow contribution in
// insertion order. Under the undirected model each link is expanded into
// both directions carrying half its flow; self-links are emitted once.
func (m *Model) EachDirectedLinkFlow(fn func(source, target uint32, flow float64)) {
	undirected := m.appliedModel == FlowUndirected
	for i := range m.links {
		l := &m.links[i]
		if l.Source == l.Target || !undirected {
			fn(l.Source, l.Target, l.Flow)
			continue
		}
		fn(l.Source, l.Target, l.Flow/2)
		fn(l.Target, l.Source, l.Flow/2)
	}
}

// ApplyFlows writes the calculated node and link flows back into the model
// and derives per-node enter and exit flow from the link flows. Self-links
// stay internal to their node and contribute to neither. For the
// undirected model each link carries half its flow in each direction.
func (m *Model) ApplyFlows(model FlowModel, nodeFlow, linkFlow []float64) error {
	if len(nodeFlow) != len(m.nodes) || len(linkFlow) != len(m.links) {
		return ErrFlowMismatch
	}
	for i := range m.nodes {
		n := &m.nodes[i]
		n.Flow = nodeFlow[i]
		n.EnterFlow = 0
		n.ExitFlow = 0
	}
	for i := range m.links {
		m.links[i].Flow = linkFlow[i]
	}
	m.appliedModel = model
	m.flowsApplied = true
	m.EachDirectedLinkFlow(func(source, target uint32, flow float64) {
		if source == target {
			return
		}
		m.nodes[source].ExitFlow += flow
		m.nodes[target].EnterFlow += flow
	})
	return nil
}
