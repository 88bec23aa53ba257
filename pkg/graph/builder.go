package graph

// Builder accumulates nodes and links and produces an immutable Model.
// The external-to-internal id map lives on the builder and is dropped once
// dense indexing is established.
type Builder struct {
	model   Model
	indexOf map[uint32]uint32
	seen    map[[2]uint32]struct{}
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{
		indexOf: make(map[uint32]uint32),
		seen:    make(map[[2]uint32]struct{}),
	}
}

// ReserveNodes pre-allocates capacity for n nodes.
func (b *Builder) ReserveNodes(n int) {
	if cap(b.model.nodes) < n {
		nodes := make([]Node, len(b.model.nodes), n)
		copy(nodes, b.model.nodes)
		b.model.nodes = nodes
	}
}

// ReserveLinks pre-allocates capacity for n links.
func (b *Builder) ReserveLinks(n int) {
	if cap(b.model.links) < n {
		links := make([]Link, len(b.model.links), n)
		copy(links, b.model.links)
		b.model.links = links
	}
}

// AddNode registers a node under its external id. The first insertion
// fixes the dense index.
func (b *Builder) AddNode(externalID uint32, name string, weight float64) error {
	return b.AddStateNode(externalID, externalID, name, weight)
}

// AddStateNode registers a state node belonging to the given physical
// node. Ordinary networks use AddNode, where the two ids coincide.
func (b *Builder) AddStateNode(externalID, physicalID uint32, name string, weight float64) error {
	if _, ok := b.indexOf[externalID]; ok {
		return &BuildError{Op: "AddNode", Source: externalID, Cause: ErrDuplicateNode}
	}
	index := uint32(len(b.model.nodes))
	b.indexOf[externalID] = index
	b.model.nodes = append(b.model.nodes, Node{
		Index:      index,
		ExternalID: externalID,
		Name:       name,
		Weight:     weight,
		PhysicalID: physicalID,
	})
	return nil
}

// AddLink registers a weighted link between two previously added nodes.
// Multi-edges are forbidden at this layer; the upstream source aggregates
// them. Self-links are allowed and their weight is tracked separately.
func (b *Builder) AddLink(sourceExt, targetExt uint32, weight float64) error {
	source, ok := b.indexOf[sourceExt]
	if !ok {
		return &BuildError{Op: "AddLink", Source: sourceExt, Target: targetExt, Cause: ErrUnknownNode}
	}
	target, ok := b.indexOf[targetExt]
	if !ok {
		return &BuildError{Op: "AddLink", Source: sourceExt, Target: targetExt, Cause: ErrUnknownNode}
	}
	key := [2]uint32{source, target}
	if _, ok := b.seen[key]; ok {
		return &BuildError{Op: "AddLink", Source: sourceExt, Target: targetExt, Cause: ErrDuplicateLink}
	}
	b.seen[key] = struct{}{}
	b.model.links = append(b.model.links, Link{Source: source, Target: target, Weight: weight})
	b.model.sumLinkWeight += weight
	if source == target {
		b.model.sumSelfLinkWeight += weight
	}
	return nil
}

// Build finalizes the model. The builder must not be reused afterwards.
func (b *Builder) Build() *Model {
	model := b.model
	b.model = Model{}
	b.indexOf = nil
	b.seen = nil
	return &model
}

// FromSource builds a model by draining a NetworkSource.
func FromSource(src NetworkSource) (*Model, error) {
	b := NewBuilder()
	b.ReserveNodes(int(src.NumNodes()))
	b.ReserveLinks(int(src.NumLinks()))
	err := src.EachNode(func(externalID uint32, name string, weight float64) error {
		return b.AddNode(externalID, name, weight)
	})
	if err != nil {
		return nil, err
	}
	err = src.EachLink(func(source, target uint32, weight float64) error {
		return b.AddLink(source, target, weight)
	})
	if err != nil {
		return nil, err
	}
	return b.Build(), nil
}
