package partition

import (
	"errors"
	"fmt"

	"github.com/dd0wney/cluso-infoflow/pkg/graph"
)

// Common sentinel errors
var (
	ErrModuleOutOfRange = errors.New("module index out of range")
	ErrEmptyPartition   = errors.New("partition has no nodes")
)

// State tracks which module every node belongs to, plus per-module
// aggregates maintained incrementally under node moves. Modules are dense
// integer ids; empty modules linger until Consolidate renumbers them.
type State struct {
	moduleOf    []uint32
	members     [][]uint32
	posInModule []uint32 // position of each node inside its module's member list
	moduleFlow  []float64
	numAlive    int
}

// NewOneModulePerNode creates the initial partition with every node in
// its own module.
func NewOneModulePerNode(g *graph.Model) *State {
	n := g.NumNodes()
	s := &State{
		moduleOf:    make([]uint32, n),
		members:     make([][]uint32, n),
		posInModule: make([]uint32, n),
		moduleFlow:  make([]float64, n),
		numAlive:    n,
	}
	for i := 0; i < n; i++ {
		s.moduleOf[i] = uint32(i)
		s.members[i] = []uint32{uint32(i)}
		s.moduleFlow[i] = g.Node(uint32(i)).Flow
	}
	return s
}

// NewFromAssignment creates a partition from an explicit node-to-module
// assignment. Module ids must be dense in [0, maxModule].
func NewFromAssignment(g *graph.Model, modules []uint32) (*State, error) {
	if len(modules) != g.NumNodes() {
		return nil, fmt.Errorf("assignment length %d for %d nodes: %w",
			len(modules), g.NumNodes(), ErrModuleOutOfRange)
	}
	numModules := 0
	for _, m := range modules {
		if int(m)+1 > numModules {
			numModules = int(m) + 1
		}
	}
	s := &State{
		moduleOf:    make([]uint32, len(modules)),
		members:     make([][]uint32, numModules),
		posInModule: make([]uint32, len(modules)),
		moduleFlow:  make([]float64, numModules),
	}
	for node, module := range modules {
		s.moduleOf[node] = module
		s.posInModule[node] = uint32(len(s.members[module]))
		s.members[module] = append(s.members[module], uint32(node))
		s.moduleFlow[module] += g.Node(uint32(node)).Flow
	}
	for _, members := range s.members {
		if len(members) > 0 {
			s.numAlive++
		}
	}
	return s, nil
}

// NumNodes returns the number of nodes in the partition.
func (s *State) NumNodes() int {
	return len(s.moduleOf)
}

// NumModules returns the allocated module count, including empty modules.
func (s *State) NumModules() int {
	return len(s.members)
}

// ModulesAlive returns the number of non-empty modules.
func (s *State) ModulesAlive() int {
	return s.numAlive
}

// ModuleOf returns the module the node currently belongs to.
func (s *State) ModuleOf(node uint32) uint32 {
	return s.moduleOf[node]
}

// Members returns the member list of a module. Callers must not mutate it.
func (s *State) Members(module uint32) []uint32 {
	return s.members[module]
}

// MemberCount returns the number of nodes in a module.
func (s *State) MemberCount(module uint32) int {
	return len(s.members[module])
}

// ModuleFlow returns the summed node flow of a module.
func (s *State) ModuleFlow(module uint32) float64 {
	return s.moduleFlow[module]
}

// MoveNode reassigns a node to another module, keeping the aggregates
// consistent. Moving a node to its current module is a no-op.
func (s *State) MoveNode(node uint32, to uint32, nodeFlow float64) error {
	if int(to) >= len(s.members) {
		return fmt.Errorf("move node %d: %w", node, ErrModuleOutOfRange)
	}
	from := s.moduleOf[node]
	if from == to {
		return nil
	}

	// Swap-remove from the old member list.
	pos := s.posInModule[node]
	old := s.members[from]
	last := old[len(old)-1]
	old[pos] = last
	s.posInModule[last] = pos
	s.members[from] = old[:len(old)-1]

	s.posInModule[node] = uint32(len(s.members[to]))
	s.members[to] = append(s.members[to], node)
	s.moduleOf[node] = to

	s.moduleFlow[from] -= nodeFlow
	s.moduleFlow[to] += nodeFlow

	if len(s.members[from]) == 0 {
		s.numAlive--
	}
	if len(s.members[to]) == 1 {
		s.numAlive++
	}
	return nil
}

// Renumber maps the surviving modules to dense ids [0, ModulesAlive) in
// order of first appearance over the node list, and returns the mapping
// from old module id to new id. Empty modules map to no new id.
func (s *State) Renumber() []uint32 {
	const unset = ^uint32(0)
	mapping := make([]uint32, len(s.members))
	for i := range mapping {
		mapping[i] = unset
	}
	next := uint32(0)
	for _, module := range s.moduleOf {
		if mapping[module] == unset {
			mapping[module] = next
			next++
		}
	}
	return mapping
}
