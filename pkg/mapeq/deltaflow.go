package mapeq

// DeltaFlow records how much of a node's flow connects it to one
// candidate module. The optimizer prepares one record per neighbouring
// module before asking for a move delta.
type DeltaFlow struct {
	Module uint32
	// DeltaExit is the flow on the node's out-links into the module.
	DeltaExit float64
	// DeltaEnter is the flow on the node's in-links from the module.
	DeltaEnter float64
	// SumDeltaPlogpPhysFlow carries the physical-occupancy change
	// prepared by the memory variant's PrepareMove. Unused by the plain
	// map equation.
	SumDeltaPlogpPhysFlow float64
}
