package partition

import (
	"errors"
	"math"
	"testing"

	"github.com/dd0wney/cluso-infoflow/pkg/graph"
)

// buildPartitionTestGraph creates a 4-node chain with flows applied
func buildPartitionTestGraph(t *testing.T) *graph.Model {
	t.Helper()

	b := graph.NewBuilder()
	for i := uint32(0); i < 4; i++ {
		if err := b.AddNode(i, "", 1.0); err != nil {
			t.Fatalf("AddNode failed: %v", err)
		}
	}
	for _, l := range [][2]uint32{{0, 1}, {1, 2}, {2, 3}} {
		if err := b.AddLink(l[0], l[1], 1.0); err != nil {
			t.Fatalf("AddLink failed: %v", err)
		}
	}
	g := b.Build()
	nodeFlow := []float64{0.1, 0.2, 0.3, 0.4}
	linkFlow := []float64{0.3, 0.3, 0.4}
	if err := g.ApplyFlows(graph.FlowDirected, nodeFlow, linkFlow); err != nil {
		t.Fatalf("ApplyFlows failed: %v", err)
	}
	return g
}

func TestNewOneModulePerNode(t *testing.T) {
	g := buildPartitionTestGraph(t)
	s := NewOneModulePerNode(g)

	if s.ModulesAlive() != 4 {
		t.Errorf("Expected 4 alive modules, got %d", s.ModulesAlive())
	}
	for i := uint32(0); i < 4; i++ {
		if s.ModuleOf(i) != i {
			t.Errorf("Expected node %d in module %d, got %d", i, i, s.ModuleOf(i))
		}
		if s.MemberCount(i) != 1 {
			t.Errorf("Expected member count 1, got %d", s.MemberCount(i))
		}
	}
	if s.ModuleFlow(3) != 0.4 {
		t.Errorf("Expected module 3 flow 0.4, got %f", s.ModuleFlow(3))
	}
}

func TestMoveNode(t *testing.T) {
	g := buildPartitionTestGraph(t)
	s := NewOneModulePerNode(g)

	if err := s.MoveNode(1, 0, g.Node(1).Flow); err != nil {
		t.Fatalf("MoveNode failed: %v", err)
	}

	if s.ModuleOf(1) != 0 {
		t.Errorf("Expected node 1 in module 0, got %d", s.ModuleOf(1))
	}
	if s.MemberCount(0) != 2 {
		t.Errorf("Expected member count 2, got %d", s.MemberCount(0))
	}
	if s.MemberCount(1) != 0 {
		t.Errorf("Expected old module empty, got %d members", s.MemberCount(1))
	}
	if s.ModulesAlive() != 3 {
		t.Errorf("Expected 3 alive modules, got %d", s.ModulesAlive())
	}
	if math.Abs(s.ModuleFlow(0)-0.3) > 1e-15 {
		t.Errorf("Expected module 0 flow 0.3, got %f", s.ModuleFlow(0))
	}

	// Moving back revives the module.
	if err := s.MoveNode(1, 1, g.Node(1).Flow); err != nil {
		t.Fatalf("MoveNode back failed: %v", err)
	}
	if s.ModulesAlive() != 4 {
		t.Errorf("Expected 4 alive modules after move back, got %d", s.ModulesAlive())
	}
}

func TestMoveNode_NoOpAndErrors(t *testing.T) {
	g := buildPartitionTestGraph(t)
	s := NewOneModulePerNode(g)

	if err := s.MoveNode(2, 2, g.Node(2).Flow); err != nil {
		t.Errorf("Expected no-op move to succeed, got %v", err)
	}
	if s.ModulesAlive() != 4 {
		t.Errorf("Expected aggregates unchanged by no-op move")
	}

	err := s.MoveNode(0, 99, g.Node(0).Flow)
	if !errors.Is(err, ErrModuleOutOfRange) {
		t.Errorf("Expected ErrModuleOutOfRange, got %v", err)
	}
}

func TestNewFromAssignment(t *testing.T) {
	g := buildPartitionTestGraph(t)
	s, err := NewFromAssignment(g, []uint32{0, 0, 1, 1})
	if err != nil {
		t.Fatalf("NewFromAssignment failed: %v", err)
	}

	if s.ModulesAlive() != 2 {
		t.Errorf("Expected 2 alive modules, got %d", s.ModulesAlive())
	}
	if s.MemberCount(0) != 2 || s.MemberCount(1) != 2 {
		t.Errorf("Expected 2 members each, got %d and %d", s.MemberCount(0), s.MemberCount(1))
	}
	if math.Abs(s.ModuleFlow(1)-0.7) > 1e-15 {
		t.Errorf("Expected module 1 flow 0.7, got %f", s.ModuleFlow(1))
	}

	if _, err := NewFromAssignment(g, []uint32{0, 0}); err == nil {
		t.Error("Expected error for short assignment")
	}
}

func TestRenumber(t *testing.T) {
	g := buildPartitionTestGraph(t)
	s := NewOneModulePerNode(g)

	// Empty module 1 and 3.
	s.MoveNode(1, 0, g.Node(1).Flow)
	s.MoveNode(3, 2, g.Node(3).Flow)

	mapping := s.Renumber()
	if mapping[0] != 0 || mapping[2] != 1 {
		t.Errorf("Expected dense mapping {0:0, 2:1}, got %v", mapping)
	}
	unset := ^uint32(0)
	if mapping[1] != unset || mapping[3] != unset {
		t.Errorf("Expected empty modules unmapped, got %v", mapping)
	}
}

func TestConsolidate(t *testing.T) {
	g := buildPartitionTestGraph(t)
	s := NewOneModulePerNode(g)
	s.MoveNode(1, 0, g.Node(1).Flow)
	s.MoveNode(3, 2, g.Node(3).Flow)

	result, err := s.Consolidate(g)
	if err != nil {
		t.Fatalf("Consolidate failed: %v", err)
	}
	super := result.Graph

	if super.NumNodes() != 2 {
		t.Fatalf("Expected 2 super-nodes, got %d", super.NumNodes())
	}

	sumFlow := 0.0
	for i := range super.Nodes() {
		sumFlow += super.Nodes()[i].Flow
	}
	if math.Abs(sumFlow-1.0) > 1e-15 {
		t.Errorf("Expected flow sum preserved, got %f", sumFlow)
	}

	// Intra-module flow becomes self-flow: links 0->1 (0.3) and 2->3
	// (0.4) stay inside; 1->2 (0.3) crosses.
	var selfFlow, crossFlow float64
	for _, l := range super.Links() {
		if l.Source == l.Target {
			selfFlow += l.Flow
		} else {
			crossFlow += l.Flow
		}
	}
	if math.Abs(selfFlow-0.7) > 1e-15 {
		t.Errorf("Expected self flow 0.7, got %f", selfFlow)
	}
	if math.Abs(crossFlow-0.3) > 1e-15 {
		t.Errorf("Expected cross flow 0.3, got %f", crossFlow)
	}

	if result.State.NumNodes() != 2 {
		t.Errorf("Expected fresh partition over 2 super-nodes, got %d", result.State.NumNodes())
	}
}
