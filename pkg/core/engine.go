package core

import (
	"math"
	"math/rand"
)

// Step-weighting constants. A neighbor's selection weight is
//
//	novelty + simWeight·similarity − hueWeight·hue + turnWeight·turn
//
// where novelty = 1/(1+visits). The weights are softmaxed into a
// probability distribution before sampling.
const (
	simWeight  = 0.3
	hueWeight  = 0.5
	turnWeight = 0.1

	// hueBoost is added to the entered node's hue, clamped to 1.0;
	// hueDecay multiplies every node's hue once per step.
	hueBoost = 0.15
	hueDecay = 0.95

	// entropyEpsilon guards ln(0) in the entropy sum.
	entropyEpsilon = 1e-10
)

// Engine couples a similarity graph with the mutable state of one walk and
// the random source driving it. All step mutations are sequential by
// construction: each step's probabilities depend on the hue and visit state
// the previous step left behind.
type Engine struct {
	graph *Graph
	state *NavState
	rng   *rand.Rand
}

// Graph returns the underlying similarity graph.
func (e *Engine) Graph() *Graph { return e.graph }

// State returns the walk's navigation state.
func (e *Engine) State() *NavState { return e.state }

// SetRand replaces the walk's random source. Used after reloading a
// persisted engine, and by tests that need a fixed seed.
func (e *Engine) SetRand(rng *rand.Rand) { e.rng = rng }

// Current returns the fragment the walk is positioned at.
func (e *Engine) Current() *Fragment { return e.graph.nodes[e.state.Current] }

// Step advances the walk by one transition and returns the entered fragment
// id, the entropy of the step's selection distribution, and a snap record
// if one fired.
//
// If the current node has no outgoing edges the call is a no-op returning
// (current, 0, nil): a degenerate-graph guard, not an error.
func (e *Engine) Step() (string, float64, *Snap) {
	cur, ok := e.graph.nodes[e.state.Current]
	if !ok {
		return e.state.Current, 0, nil
	}
	neighbors := e.graph.edges[cur.ID]
	if len(neighbors) == 0 {
		return cur.ID, 0, nil
	}

	turn := TurnBias(e.state.Step + 1)
	probs := e.selectionProbs(cur, neighbors, turn)

	// Inverse-CDF sampling. The <= at the boundary and the edge-list
	// ordering are part of the reproducibility contract.
	r := e.rng.Float64()
	next := neighbors[0]
	cumul := 0.0
	for i, p := range probs {
		cumul += p
		if r <= cumul {
			next = neighbors[i]
			break
		}
	}

	chosen := e.graph.nodes[next]
	chosen.Visits++
	chosen.Hue = math.Min(1.0, chosen.Hue+hueBoost)
	// Global decay, applied once per step to every node including the
	// one just entered.
	for _, id := range e.graph.order {
		e.graph.nodes[id].Hue *= hueDecay
	}

	entropy := 0.0
	for _, p := range probs {
		entropy -= p * math.Log(p+entropyEpsilon)
	}
	e.state.EntropyHist = append(e.state.EntropyHist, entropy)

	snap := detectSnap(e.state.EntropyHist, e.state.Step, chosen)
	if snap != nil {
		e.state.Snaps = append(e.state.Snaps, *snap)
	}

	e.state.Current = next
	e.state.Path = append(e.state.Path, next)
	e.state.Turns = append(e.state.Turns, turn)
	e.state.Step++

	return next, entropy, snap
}

// selectionProbs computes the softmax selection distribution over the
// current node's neighbors, in edge-list order.
func (e *Engine) selectionProbs(cur *Fragment, neighbors []string, turn int) []float64 {
	weights := make([]float64, len(neighbors))
	var total float64
	for i, nid := range neighbors {
		n := e.graph.nodes[nid]
		novelty := 1.0 / float64(1+n.Visits)
		sim, _ := e.graph.similarity(cur, n)
		w := novelty + sim*simWeight - n.Hue*hueWeight + float64(turn)*turnWeight
		weights[i] = math.Exp(w)
		total += weights[i]
	}
	probs := make([]float64, len(weights))
	for i, w := range weights {
		probs[i] = w / total
	}
	return probs
}
