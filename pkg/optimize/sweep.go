package optimize

import (
	"github.com/dd0wney/cluso-infoflow/pkg/logging"
	"github.com/dd0wney/cluso-infoflow/pkg/mapeq"
)

// buildAdjacency indexes the directed flow contributions per node,
// skipping self-links: they never cross a module boundary.
func (ls *levelState) buildAdjacency() {
	n := ls.g.NumNodes()
	ls.outLinks = make([][]neighborLink, n)
	ls.inLinks = make([][]neighborLink, n)
	ls.g.EachDirectedLinkFlow(func(source, target uint32, flow float64) {
		if source == target {
			return
		}
		ls.outLinks[source] = append(ls.outLinks[source], neighborLink{node: target, flow: flow})
		ls.inLinks[target] = append(ls.inLinks[target], neighborLink{node: source, flow: flow})
	})
}

// optimizeLevel sweeps the nodes in random order until a full sweep
// commits no move, the sweep cap is hit, or the abort flag trips.
func (o *Optimizer) optimizeLevel(ls *levelState, opts Options, levelIndex int) (aborted bool, err error) {
	numNodes := ls.g.NumNodes()
	// moduleSlot[m] is the position of module m in the candidate buffer
	// during one node evaluation, or -1.
	moduleSlot := make([]int32, ls.part.NumModules())
	for i := range moduleSlot {
		moduleSlot[i] = -1
	}
	buffer := make([]mapeq.DeltaFlow, 0, 16)

	for sweep := 0; sweep < opts.MaxSweeps; sweep++ {
		moves := 0
		for _, node := range ls.rng.Perm(numNodes) {
			if o.tryMoveNode(ls, uint32(node), opts, moduleSlot, &buffer) {
				moves++
			}
		}
		ls.movesCommitted += moves
		if o.Metrics != nil {
			o.Metrics.RecordSweep(levelIndex, moves)
		}
		o.Log.Debug("sweep done",
			logging.Depth(levelIndex),
			logging.Int("sweep", sweep),
			logging.Int("moves", moves),
			logging.Codelength(ls.eval.Codelength()))

		if opts.ProbeInvariants {
			if probeErr := ls.eval.CheckInvariants(1e-8); probeErr != nil {
				o.Log.Warn("invariant probe failed", logging.Error(probeErr))
			}
		}
		if moves == 0 {
			break
		}
		if o.Abort != nil && o.Abort() {
			return true, nil
		}
	}
	return false, nil
}

// tryMoveNode evaluates moving one node into each neighbouring module and
// commits the best strictly improving move. Returns whether a move was
// committed.
func (o *Optimizer) tryMoveNode(ls *levelState, node uint32, opts Options, moduleSlot []int32, buffer *[]mapeq.DeltaFlow) bool {
	oldModule := ls.part.ModuleOf(node)
	oldDelta := mapeq.DeltaFlow{Module: oldModule}
	candidates := (*buffer)[:0]

	for _, l := range ls.outLinks[node] {
		module := ls.part.ModuleOf(l.node)
		if module == oldModule {
			oldDelta.DeltaExit += l.flow
			continue
		}
		slot := moduleSlot[module]
		if slot < 0 {
			slot = int32(len(candidates))
			moduleSlot[module] = slot
			candidates = append(candidates, mapeq.DeltaFlow{Module: module})
		}
		candidates[slot].DeltaExit += l.flow
	}
	for _, l := range ls.inLinks[node] {
		module := ls.part.ModuleOf(l.node)
		if module == oldModule {
			oldDelta.DeltaEnter += l.flow
			continue
		}
		slot := moduleSlot[module]
		if slot < 0 {
			slot = int32(len(candidates))
			moduleSlot[module] = slot
			candidates = append(candidates, mapeq.DeltaFlow{Module: module})
		}
		candidates[slot].DeltaEnter += l.flow
	}

	// Reset the slot index before any early return.
	defer func() {
		for i := range candidates {
			moduleSlot[candidates[i].Module] = -1
		}
		*buffer = candidates
	}()

	if len(candidates) == 0 {
		return false
	}

	gnode := ls.g.Node(node)
	ls.eval.PrepareMove(gnode, &oldDelta, candidates)

	bestDelta := -opts.MinimumImprovement
	bestIndex := -1
	for i := range candidates {
		delta := ls.eval.DeltaCodelength(gnode, &oldDelta, &candidates[i])
		if delta < bestDelta {
			bestDelta = delta
			bestIndex = i
		}
	}
	if bestIndex < 0 {
		return false
	}

	best := candidates[bestIndex]
	ls.eval.Commit(gnode, &oldDelta, &best)
	if err := ls.part.MoveNode(node, best.Module, gnode.Flow); err != nil {
		// The module id came from the partition itself; a failure here is
		// a programming error worth surfacing loudly.
		panic(err)
	}
	return true
}
