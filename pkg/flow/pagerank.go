package flow

import (
	"math"

	"github.com/dd0wney/cluso-infoflow/pkg/graph"
	"github.com/dd0wney/cluso-infoflow/pkg/logging"
)

// pageRank runs the teleporting power iteration for the directed model.
func (c *Calculator) pageRank(g *graph.Model, opts Options, pre *precomputed) (*Result, error) {
	numNodes := g.NumNodes()
	links := g.Links()

	teleportRates := c.teleportRates(g, opts, pre)
	for i := range teleportRates {
		g.Node(uint32(i)).TeleportRate = teleportRates[i]
	}

	// Normalize link flow against the source node's total out-link weight.
	for i := range links {
		if pre.sumOutWeight[links[i].Source] > 0 {
			pre.linkFlow[i] /= pre.sumOutWeight[links[i].Source]
		}
	}

	var danglings []uint32
	for i := 0; i < numNodes; i++ {
		if pre.outDegree[i] == 0 {
			danglings = append(danglings, uint32(i))
		}
	}

	nodeFlow := pre.nodeFlow
	nodeFlowTmp := make([]float64, numNodes)
	alpha := opts.TeleportationProbability
	beta := 1.0 - alpha
	sqdiff := 1.0
	danglingRank := 0.0
	iterations := 0
	aborted := false

	for {
		danglingRank = 0.0
		for _, d := range danglings {
			danglingRank += nodeFlow[d]
		}

		// Flow from teleportation, then flow from links.
		for i := 0; i < numNodes; i++ {
			nodeFlowTmp[i] = (alpha + beta*danglingRank) * teleportRates[i]
		}
		for i := range links {
			l := &links[i]
			nodeFlowTmp[l.Target] += beta * pre.linkFlow[i] * nodeFlow[l.Source]
		}

		sum := 0.0
		sqdiffOld := sqdiff
		sqdiff = 0.0
		for i := 0; i < numNodes; i++ {
			sum += nodeFlowTmp[i]
			sqdiff += math.Abs(nodeFlowTmp[i] - nodeFlow[i])
			nodeFlow[i] = nodeFlowTmp[i]
		}

		if math.Abs(sum-1.0) > opts.NormalizationTol {
			c.Log.Debug("normalizing ranks",
				logging.Int("iteration", iterations),
				logging.Float64("error", sum-1.0))
			for i := 0; i < numNodes; i++ {
				nodeFlow[i] /= sum
			}
		}

		// Perturb the teleportation if the iteration has stalled on an
		// exactly repeating residual.
		if sqdiff == sqdiffOld {
			alpha += 1.0e-10
			beta = 1.0 - alpha
		}

		iterations++
		if iterations >= opts.MaxPowerIterations {
			break
		}
		if sqdiff <= opts.PowerConvergenceTol && iterations >= opts.MinPowerIterations {
			break
		}
		if c.Abort != nil && c.Abort() {
			aborted = true
			break
		}
	}

	converged := sqdiff <= opts.PowerConvergenceTol
	diverged := !converged && !aborted
	if diverged {
		c.Log.Warn("power iteration did not converge",
			logging.Iterations(iterations),
			logging.Float64("residual", sqdiff))
	}

	sumNodeRank := 1.0
	if !opts.RecordedTeleportation {
		// One last power step without the teleportation, normalizing the
		// node flow over the non-dangling rank.
		sumNodeRank = 1.0 - danglingRank
		for i := 0; i < numNodes; i++ {
			nodeFlow[i] = 0
		}
		for i := range links {
			l := &links[i]
			nodeFlow[l.Target] += pre.linkFlow[i] * nodeFlowTmp[l.Source] / sumNodeRank
		}
		beta = 1.0
	}

	// Scale the link flows to global flow volumes. beta is 1 when the
	// teleportation steps were backed out above.
	for i := range links {
		pre.linkFlow[i] *= beta * nodeFlowTmp[links[i].Source] / sumNodeRank
	}

	c.Log.Info("PageRank calculation done", logging.Iterations(iterations))
	result := &Result{
		NodeFlow:   nodeFlow,
		LinkFlow:   pre.linkFlow,
		Iterations: iterations,
		Converged:  converged,
		Diverged:   diverged,
		Aborted:    aborted,
	}
	if aborted {
		return result, &FlowError{Op: "PageRank", Model: opts.Model, Cause: ErrAborted}
	}
	return result, nil
}

// teleportRates builds the teleport distribution: proportional to node
// weight when teleporting to nodes, otherwise proportional to link weight
// at the target (recorded) or source (unrecorded) end.
func (c *Calculator) teleportRates(g *graph.Model, opts Options, pre *precomputed) []float64 {
	rates := make([]float64, g.NumNodes())
	if opts.TeleportToNodes {
		sumNodeWeights := 0.0
		nodes := g.Nodes()
		for i := range nodes {
			rates[i] = nodes[i].Weight
			sumNodeWeights += nodes[i].Weight
		}
		for i := range rates {
			rates[i] /= sumNodeWeights
		}
		return rates
	}
	sumLinkWeight := g.SumLinkWeight()
	links := g.Links()
	for i := range links {
		toNode := links[i].Source
		if opts.RecordedTeleportation {
			toNode = links[i].Target
		}
		rates[toNode] += pre.linkFlow[i] / sumLinkWeight
	}
	return rates
}
