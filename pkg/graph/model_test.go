package graph

import (
	"errors"
	"math"
	"testing"
)

// buildTestModel creates a small model from explicit links
func buildTestModel(t *testing.T, links [][3]float64) *Model {
	t.Helper()

	b := NewBuilder()
	seen := make(map[uint32]bool)
	addNode := func(id uint32) {
		if !seen[id] {
			seen[id] = true
			if err := b.AddNode(id, "", 1.0); err != nil {
				t.Fatalf("AddNode(%d) failed: %v", id, err)
			}
		}
	}
	for _, l := range links {
		addNode(uint32(l[0]))
		addNode(uint32(l[1]))
	}
	for _, l := range links {
		if err := b.AddLink(uint32(l[0]), uint32(l[1]), l[2]); err != nil {
			t.Fatalf("AddLink(%v) failed: %v", l, err)
		}
	}
	return b.Build()
}

func TestBuilder_SelfLinkWeight(t *testing.T) {
	m := buildTestModel(t, [][3]float64{
		{0, 1, 2.0},
		{1, 1, 3.0},
	})

	if m.SumLinkWeight() != 5.0 {
		t.Errorf("Expected sum link weight 5.0, got %f", m.SumLinkWeight())
	}
	if m.SumSelfLinkWeight() != 3.0 {
		t.Errorf("Expected self link weight 3.0, got %f", m.SumSelfLinkWeight())
	}
	// 2*5 - 3 = 7
	if m.SumUndirLinkWeight() != 7.0 {
		t.Errorf("Expected undirected link weight 7.0, got %f", m.SumUndirLinkWeight())
	}
}

func TestBuilder_UnknownNode(t *testing.T) {
	b := NewBuilder()
	if err := b.AddNode(1, "a", 1.0); err != nil {
		t.Fatalf("AddNode failed: %v", err)
	}

	err := b.AddLink(1, 99, 1.0)
	if !errors.Is(err, ErrUnknownNode) {
		t.Errorf("Expected ErrUnknownNode, got %v", err)
	}
}

func TestBuilder_DuplicateLink(t *testing.T) {
	b := NewBuilder()
	b.AddNode(1, "", 1.0)
	b.AddNode(2, "", 1.0)
	if err := b.AddLink(1, 2, 1.0); err != nil {
		t.Fatalf("AddLink failed: %v", err)
	}

	err := b.AddLink(1, 2, 1.0)
	if !errors.Is(err, ErrDuplicateLink) {
		t.Errorf("Expected ErrDuplicateLink, got %v", err)
	}

	// Reverse direction is a distinct link
	if err := b.AddLink(2, 1, 1.0); err != nil {
		t.Errorf("Expected reverse link to be accepted, got %v", err)
	}
}

func TestBuilder_DuplicateNode(t *testing.T) {
	b := NewBuilder()
	if err := b.AddNode(7, "a", 1.0); err != nil {
		t.Fatalf("AddNode failed: %v", err)
	}
	err := b.AddNode(7, "b", 1.0)
	if !errors.Is(err, ErrDuplicateNode) {
		t.Errorf("Expected ErrDuplicateNode, got %v", err)
	}
}

func TestBuilder_DenseIndexing(t *testing.T) {
	m := buildTestModel(t, [][3]float64{
		{10, 20, 1.0},
		{20, 30, 1.0},
	})

	if m.NumNodes() != 3 {
		t.Fatalf("Expected 3 nodes, got %d", m.NumNodes())
	}
	for i, want := range []uint32{10, 20, 30} {
		if m.Node(uint32(i)).ExternalID != want {
			t.Errorf("Node %d: expected external id %d, got %d", i, want, m.Node(uint32(i)).ExternalID)
		}
	}
	// Links reference dense indices
	links := m.Links()
	if links[0].Source != 0 || links[0].Target != 1 {
		t.Errorf("Expected first link 0->1, got %d->%d", links[0].Source, links[0].Target)
	}
}

func TestApplyFlows_EnterExitDirected(t *testing.T) {
	m := buildTestModel(t, [][3]float64{
		{0, 1, 1.0},
		{1, 2, 1.0},
		{2, 2, 1.0}, // self-link contributes to neither
	})

	err := m.ApplyFlows(FlowDirected, []float64{0.2, 0.3, 0.5}, []float64{0.4, 0.4, 0.2})
	if err != nil {
		t.Fatalf("ApplyFlows failed: %v", err)
	}

	if got := m.Node(0).ExitFlow; got != 0.4 {
		t.Errorf("Expected node 0 exit flow 0.4, got %f", got)
	}
	if got := m.Node(1).EnterFlow; got != 0.4 {
		t.Errorf("Expected node 1 enter flow 0.4, got %f", got)
	}
	if got := m.Node(2).ExitFlow; got != 0 {
		t.Errorf("Expected node 2 exit flow 0 (self-link only), got %f", got)
	}
}

func TestApplyFlows_UndirectedHalves(t *testing.T) {
	m := buildTestModel(t, [][3]float64{{0, 1, 1.0}})

	if err := m.ApplyFlows(FlowUndirected, []float64{0.5, 0.5}, []float64{1.0}); err != nil {
		t.Fatalf("ApplyFlows failed: %v", err)
	}

	for i := uint32(0); i < 2; i++ {
		n := m.Node(i)
		if math.Abs(n.EnterFlow-0.5) > 1e-15 || math.Abs(n.ExitFlow-0.5) > 1e-15 {
			t.Errorf("Node %d: expected enter/exit 0.5/0.5, got %f/%f", i, n.EnterFlow, n.ExitFlow)
		}
	}
}

func TestApplyFlows_LengthMismatch(t *testing.T) {
	m := buildTestModel(t, [][3]float64{{0, 1, 1.0}})

	err := m.ApplyFlows(FlowUndirected, []float64{1.0}, []float64{1.0})
	if !errors.Is(err, ErrFlowMismatch) {
		t.Errorf("Expected ErrFlowMismatch, got %v", err)
	}
}

func TestEachDirectedLinkFlow_UndirectedExpansion(t *testing.T) {
	m := buildTestModel(t, [][3]float64{{0, 1, 1.0}})
	if err := m.ApplyFlows(FlowUndirected, []float64{0.5, 0.5}, []float64{1.0}); err != nil {
		t.Fatalf("ApplyFlows failed: %v", err)
	}

	total := 0.0
	count := 0
	m.EachDirectedLinkFlow(func(source, target uint32, flow float64) {
		total += flow
		count++
	})
	if count != 2 {
		t.Errorf("Expected 2 directed contributions, got %d", count)
	}
	if math.Abs(total-1.0) > 1e-15 {
		t.Errorf("Expected total directed flow 1.0, got %f", total)
	}
}

func TestParseFlowModel(t *testing.T) {
	for _, name := range []string{"undirected", "undirdir", "directed", "rawdir", "outdirdir"} {
		model, err := ParseFlowModel(name)
		if err != nil {
			t.Errorf("ParseFlowModel(%q) failed: %v", name, err)
		}
		if model.String() != name {
			t.Errorf("Round trip failed: %q -> %q", name, model.String())
		}
	}
	if _, err := ParseFlowModel("sideways"); err == nil {
		t.Error("Expected error for unknown model")
	}
}

func TestFromSource(t *testing.T) {
	src := &stubSource{
		nodes: [][3]float64{{1, 0, 1}, {2, 0, 1}},
		links: [][3]float64{{1, 2, 2.5}},
	}
	m, err := FromSource(src)
	if err != nil {
		t.Fatalf("FromSource failed: %v", err)
	}
	if m.NumNodes() != 2 || m.NumLinks() != 1 {
		t.Errorf("Expected 2 nodes and 1 link, got %d and %d", m.NumNodes(), m.NumLinks())
	}
	if m.SumLinkWeight() != 2.5 {
		t.Errorf("Expected sum link weight 2.5, got %f", m.SumLinkWeight())
	}
}

type stubSource struct {
	nodes [][3]float64 // id, _, weight
	links [][3]float64
}

func (s *stubSource) NumNodes() uint32          { return uint32(len(s.nodes)) }
func (s *stubSource) NumLinks() uint32          { return uint32(len(s.links)) }
func (s *stubSource) SumLinkWeight() float64    { return 2.5 }
func (s *stubSource) SumSelfLinkWeight() float64 { return 0 }

func (s *stubSource) EachNode(fn func(externalID uint32, name string, weight float64) error) error {
	for _, n := range s.nodes {
		if err := fn(uint32(n[0]), "", n[2]); err != nil {
			return err
		}
	}
	return nil
}

func (s *stubSource) EachLink(fn func(source, target uint32, weight float64) error) error {
	for _, l := range s.links {
		if err := fn(uint32(l[0]), uint32(l[1]), l[2]); err != nil {
			return err
		}
	}
	return nil
}
