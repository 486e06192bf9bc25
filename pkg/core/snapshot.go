package core

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/xnoubis/rosetta/pkg/core/distance"
)

// Snapshot is the explicit, serializable schema of a Graph plus its
// navigation state. Node order in the Nodes slice is the graph's insertion
// order, which reloading must preserve for lookup and reset semantics.
type Snapshot struct {
	Dim       int                    `json:"dim"`
	K         int                    `json:"k"`
	Precision distance.PrecisionType `json:"precision"`
	Nodes     []SnapshotNode         `json:"nodes"`
	Edges     map[string][]string    `json:"edges"`
	State     NavState               `json:"state"`
}

// SnapshotNode carries one fragment, including its mutable walk counters.
// Exactly one of VecF32/VecF16 is set, matching the snapshot's precision.
type SnapshotNode struct {
	ID      string    `json:"id"`
	Content string    `json:"content"`
	VecF32  []float32 `json:"vec_f32,omitempty"`
	VecF16  []uint16  `json:"vec_f16,omitempty"`
	Visits  int       `json:"visits"`
	Hue     float64   `json:"hue"`
}

// Snapshot captures the engine's full state for persistence.
func (e *Engine) Snapshot() *Snapshot {
	g := e.graph
	snap := &Snapshot{
		Dim:       g.dim,
		K:         g.k,
		Precision: g.precision,
		Nodes:     make([]SnapshotNode, 0, len(g.order)),
		Edges:     make(map[string][]string, len(g.edges)),
		State:     *e.state,
	}
	for _, id := range g.order {
		frag := g.nodes[id]
		snap.Nodes = append(snap.Nodes, SnapshotNode{
			ID:      frag.ID,
			Content: frag.Content,
			VecF32:  frag.vec32,
			VecF16:  frag.vec16,
			Visits:  frag.Visits,
			Hue:     frag.Hue,
		})
	}
	for id, targets := range g.edges {
		snap.Edges[id] = targets
	}
	return snap
}

// FromSnapshot reconstructs an engine with identical semantics to the one
// the snapshot was taken from. The random source is freshly time-seeded;
// callers needing reproducibility should SetRand afterwards.
func FromSnapshot(snap *Snapshot) (*Engine, error) {
	if len(snap.Nodes) == 0 {
		return nil, ErrEmptyCorpus
	}
	precision := snap.Precision
	if precision == "" {
		precision = distance.Float32
	}

	g := &Graph{
		dim:       snap.Dim,
		k:         snap.K,
		precision: precision,
		nodes:     make(map[string]*Fragment, len(snap.Nodes)),
		order:     make([]string, 0, len(snap.Nodes)),
		edges:     make(map[string][]string, len(snap.Edges)),
	}
	for _, n := range snap.Nodes {
		g.nodes[n.ID] = &Fragment{
			ID:      n.ID,
			Content: n.Content,
			Visits:  n.Visits,
			Hue:     n.Hue,
			vec32:   n.VecF32,
			vec16:   n.VecF16,
		}
		g.order = append(g.order, n.ID)
	}
	for id, targets := range snap.Edges {
		if _, ok := g.nodes[id]; !ok {
			return nil, fmt.Errorf("edge list references unknown fragment %q", id)
		}
		for _, t := range targets {
			if _, ok := g.nodes[t]; !ok {
				return nil, fmt.Errorf("edge %s -> %s references unknown fragment", id, t)
			}
		}
		g.edges[id] = targets
	}

	state := snap.State
	if state.Current == "" {
		state.Current = g.order[0]
		state.Path = []string{state.Current}
	}
	if _, ok := g.nodes[state.Current]; !ok {
		return nil, fmt.Errorf("navigation cursor references unknown fragment %q", state.Current)
	}

	return &Engine{
		graph: g,
		state: &state,
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}, nil
}
