package mapeq

import (
	"math"

	"github.com/dd0wney/cluso-infoflow/pkg/graph"
)

// Plogp returns x*log2(x) in bits, with Plogp(x) = 0 for x <= 0 so that
// log(0) is never evaluated.
func Plogp(x float64) float64 {
	if x <= 0 {
		return 0
	}
	return x * math.Log2(x)
}

// Terms are the running codelength sums the map equation is derived from.
// All values are in bits.
type Terms struct {
	// NodeFlowLogNodeFlow is constant while the leaf network is the same;
	// the memory variant replaces it with physical-node occupancies.
	NodeFlowLogNodeFlow float64
	// FlowLogFlow sums plogp(moduleExit + moduleFlow) over modules.
	FlowLogFlow float64
	ExitLogExit float64
	EnterLogEnter float64
	// EnterFlow is the total module enter flow plus the exit-network flow.
	EnterFlow             float64
	EnterFlowLogEnterFlow float64

	// Exit-network terms apply when the partition sits inside a containing
	// module; both are zero at the root.
	ExitNetworkFlow                   float64
	ExitNetworkFlowLogExitNetworkFlow float64
}

// Codelengths derives the index and module codelength from the terms.
func (t *Terms) Codelengths() (indexCodelength, moduleCodelength float64) {
	indexCodelength = t.EnterFlowLogEnterFlow - t.EnterLogEnter - t.ExitNetworkFlowLogExitNetworkFlow
	moduleCodelength = -t.ExitLogExit + t.FlowLogFlow - t.NodeFlowLogNodeFlow
	return indexCodelength, moduleCodelength
}

// deltaOnMove returns the change of the four module-indexed sums when a
// node with the given flow data moves between the modules named in the
// delta records. Only those two modules' plogp contributions change.
func (t *Terms) deltaOnMove(data graph.FlowData, oldDelta, newDelta *DeltaFlow, moduleFlow []graph.FlowData) float64 {
	if oldDelta.Module == newDelta.Module {
		return 0
	}
	dOld := oldDelta.DeltaEnter + oldDelta.DeltaExit
	dNew := newDelta.DeltaEnter + newDelta.DeltaExit
	oldMod := &moduleFlow[oldDelta.Module]
	newMod := &moduleFlow[newDelta.Module]

	deltaEnter := Plogp(t.EnterFlow+dOld-dNew) - t.EnterFlowLogEnterFlow

	deltaEnterLogEnter := -Plogp(oldMod.EnterFlow) - Plogp(newMod.EnterFlow) +
		Plogp(oldMod.EnterFlow-data.EnterFlow+dOld) +
		Plogp(newMod.EnterFlow+data.EnterFlow-dNew)

	deltaExitLogExit := -Plogp(oldMod.ExitFlow) - Plogp(newMod.ExitFlow) +
		Plogp(oldMod.ExitFlow-data.ExitFlow+dOld) +
		Plogp(newMod.ExitFlow+data.ExitFlow-dNew)

	deltaFlowLogFlow := -Plogp(oldMod.ExitFlow+oldMod.Flow) - Plogp(newMod.ExitFlow+newMod.Flow) +
		Plogp(oldMod.ExitFlow+oldMod.Flow-data.ExitFlow-data.Flow+dOld) +
		Plogp(newMod.ExitFlow+newMod.Flow+data.ExitFlow+data.Flow-dNew)

	return deltaEnter - deltaEnterLogEnter - deltaExitLogExit + deltaFlowLogFlow
}

// applyMove commits the same arithmetic as deltaOnMove, updating the
// terms and the two module aggregates in place.
func (t *Terms) applyMove(data graph.FlowData, oldDelta, newDelta *DeltaFlow, moduleFlow []graph.FlowData) {
	if oldDelta.Module == newDelta.Module {
		return
	}
	dOld := oldDelta.DeltaEnter + oldDelta.DeltaExit
	dNew := newDelta.DeltaEnter + newDelta.DeltaExit
	oldMod := &moduleFlow[oldDelta.Module]
	newMod := &moduleFlow[newDelta.Module]

	t.EnterFlow -= oldMod.EnterFlow + newMod.EnterFlow
	t.EnterLogEnter -= Plogp(oldMod.EnterFlow) + Plogp(newMod.EnterFlow)
	t.ExitLogExit -= Plogp(oldMod.ExitFlow) + Plogp(newMod.ExitFlow)
	t.FlowLogFlow -= Plogp(oldMod.ExitFlow+oldMod.Flow) + Plogp(newMod.ExitFlow+newMod.Flow)

	oldMod.Sub(data)
	oldMod.EnterFlow += dOld
	oldMod.ExitFlow += dOld
	newMod.Add(data)
	newMod.EnterFlow -= dNew
	newMod.ExitFlow -= dNew

	t.EnterFlow += oldMod.EnterFlow + newMod.EnterFlow
	t.EnterLogEnter += Plogp(oldMod.EnterFlow) + Plogp(newMod.EnterFlow)
	t.ExitLogExit += Plogp(oldMod.ExitFlow) + Plogp(newMod.ExitFlow)
	t.FlowLogFlow += Plogp(oldMod.ExitFlow+oldMod.Flow) + Plogp(newMod.ExitFlow+newMod.Flow)
	t.EnterFlowLogEnterFlow = Plogp(t.EnterFlow)
}
