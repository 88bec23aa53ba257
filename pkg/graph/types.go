package graph

import "fmt"

// FlowModel selects how link weights are converted into node and link flow.
type FlowModel int

const (
	// FlowUndirected treats every link as a two-way connection.
	FlowUndirected FlowModel = iota
	// FlowUndirDir uses the undirected steady state as a prior, then takes
	// one directed power step.
	FlowUndirDir
	// FlowDirected runs full PageRank with teleportation.
	FlowDirected
	// FlowRawDir uses the normalized link weights directly as flow.
	FlowRawDir
	// FlowOutDirDir is like FlowUndirDir but credits only outgoing links
	// when seeding node flow.
	FlowOutDirDir
)

// String returns the canonical name of the flow model.
func (m FlowModel) String() string {
	switch m {
	case FlowUndirected:
		return "undirected"
	case FlowUndirDir:
		return "undirdir"
	case FlowDirected:
		return "directed"
	case FlowRawDir:
		return "rawdir"
	case FlowOutDirDir:
		return "outdirdir"
	default:
		return "unknown"
	}
}

// ParseFlowModel converts a string to a FlowModel.
func ParseFlowModel(s string) (FlowModel, error) {
	switch s {
	case "undirected", "":
		return FlowUndirected, nil
	case "undirdir":
		return FlowUndirDir, nil
	case "directed":
		return FlowDirected, nil
	case "rawdir":
		return FlowRawDir, nil
	case "outdirdir":
		return FlowOutDirDir, nil
	default:
		return FlowUndirected, fmt.Errorf("unknown flow model %q", s)
	}
}

// IsUndirected reports whether the model counts links in both directions
// when accumulating out-degree and out-weight.
func (m FlowModel) IsUndirected() bool {
	return m == FlowUndirected || m == FlowUndirDir
}

// FlowData holds the per-node (or per-module) flow aggregates used by the
// codelength bookkeeping.
type FlowData struct {
	Flow      float64
	EnterFlow float64
	ExitFlow  float64
}

// Add accumulates other into f.
func (f *FlowData) Add(other FlowData) {
	f.Flow += other.Flow
	f.EnterFlow += other.EnterFlow
	f.ExitFlow += other.ExitFlow
}

// Sub removes other from f.
func (f *FlowData) Sub(other FlowData) {
	f.Flow -= other.Flow
	f.EnterFlow -= other.EnterFlow
	f.ExitFlow -= other.ExitFlow
}

// Node is a dense-indexed node of the graph model.
type Node struct {
	Index      uint32
	ExternalID uint32
	Name       string
	// Weight is the node weight used when teleporting to nodes.
	Weight float64
	// PhysicalID identifies the physical node a state node belongs to.
	// For ordinary networks it equals ExternalID.
	PhysicalID uint32
	// TeleportRate is the probability mass the teleport distribution
	// assigns to this node. Filled in by the flow calculator.
	TeleportRate float64

	FlowData
}

// Link is a weighted connection between two dense node indices.
// Weight carries the input weight; Flow is filled in by the flow calculator.
type Link struct {
	Source uint32
	Target uint32
	Weight float64
	Flow   float64
}
