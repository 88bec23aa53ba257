package netio

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	ErrNoNodes       = errors.New("network has no nodes")
	ErrBadLine       = errors.New("malformed input line")
	ErrUnknownFormat = errors.New("unknown network format")
)

// ParseError reports where an input file could not be parsed.
type ParseError struct {
	Line  int
	Text  string
	Cause error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d %q: %v", e.Line, e.Text, e.Cause)
}

// Unwrap returns the underlying cause for error chain support.
func (e *ParseError) Unwrap() error {
	return e.Cause
}

type networkNode struct {
	id     uint32
	name   string
	weight float64
}

type networkLink struct {
	source uint32
	target uint32
	weight float64
}

// Network is an aggregated sparse network in insertion order. It
// implements graph.NetworkSource: duplicate links are summed here so the
// core never sees multi-edges.
type Network struct {
	nodes     []networkNode
	nodeIndex map[uint32]int
	links     []networkLink
	linkIndex map[[2]uint32]int

	sumLinkWeight     float64
	sumSelfLinkWeight float64
}

// NewNetwork creates an empty network.
func NewNetwork() *Network {
	return &Network{
		nodeIndex: make(map[uint32]int),
		linkIndex: make(map[[2]uint32]int),
	}
}

// AddNode registers a node, keeping the first name and weight seen.
func (n *Network) AddNode(id uint32, name string, weight float64) {
	if _, ok := n.nodeIndex[id]; ok {
		return
	}
	n.nodeIndex[id] = len(n.nodes)
	n.nodes = append(n.nodes, networkNode{id: id, name: name, weight: weight})
}

// AddLink registers a weighted link, creating missing endpoints with unit
// weight and aggregating duplicates.
func (n *Network) AddLink(source, target uint32, weight float64) {
	n.AddNode(source, "", 1)
	n.AddNode(target, "", 1)
	key := [2]uint32{source, target}
	if i, ok := n.linkIndex[key]; ok {
		n.links[i].weight += weight
	} else {
		n.linkIndex[key] = len(n.links)
		n.links = append(n.links, networkLink{source: source, target: target, weight: weight})
	}
	n.sumLinkWeight += weight
	if source == target {
		n.sumSelfLinkWeight += weight
	}
}

// NumNodes returns the number of distinct nodes.
func (n *Network) NumNodes() uint32 {
	return uint32(len(n.nodes))
}

// NumLinks returns the number of aggregated links.
func (n *Network) NumLinks() uint32 {
	return uint32(len(n.links))
}

// SumLinkWeight returns the total link weight.
func (n *Network) SumLinkWeight() float64 {
	return n.sumLinkWeight
}

// SumSelfLinkWeight returns the total weight on self-links.
func (n *Network) SumSelfLinkWeight() float64 {
	return n.sumSelfLinkWeight
}

// EachNode calls fn for every node in insertion order.
func (n *Network) EachNode(fn func(externalID uint32, name string, weight float64) error) error {
	for i := range n.nodes {
		node := &n.nodes[i]
		if err := fn(node.id, node.name, node.weight); err != nil {
			return err
		}
	}
	return nil
}

// EachLink calls fn for every link in insertion order.
func (n *Network) EachLink(fn func(source, target uint32, weight float64) error) error {
	for i := range n.links {
		l := &n.links[i]
		if err := fn(l.source, l.target, l.weight); err != nil {
			return err
		}
	}
	return nil
}
