// Package core provides the fundamental data structures and logic for the
// rosetta navigation engine: the similarity graph, the per-step transition
// algorithm with its entropy/snap detector, semantic lookup, and the
// coverage harness built on repeated walks.
//
// The Graph exclusively owns all Fragments; every cross-reference is an id
// lookup into its arena, so no cyclic ownership can arise. Navigation state
// is owned by a single logical walk: the Engine performs no internal
// locking, and callers that share one Engine across goroutines must
// serialize access themselves (the HTTP server does exactly that).
package core

import (
	"github.com/xnoubis/rosetta/pkg/core/distance"
)

// maxFragmentContent bounds the stored source text per fragment.
const maxFragmentContent = 400

// Fragment is a single node of the terrain: a bounded piece of source text,
// its embedding, and the mutable walk state attached to it.
type Fragment struct {
	ID      string
	Content string

	// Visits counts how many times the walk entered this node.
	Visits int
	// Hue is recency-decayed attention in [0, 1]: bumped when the node is
	// entered, multiplied down every step for every node.
	Hue float64

	// Exactly one of these holds the embedding, per the graph's precision.
	vec32 []float32
	vec16 []uint16
}

// Embedding returns the fragment's vector as float32, decoding from
// half-precision storage when necessary.
func (f *Fragment) Embedding() []float32 {
	if f.vec16 != nil {
		return distance.DecodeFloat16(f.vec16)
	}
	return f.vec32
}

// Graph holds the fragment arena and the k-nearest-neighbor edge lists.
// It is immutable after Build except for the per-fragment walk counters.
type Graph struct {
	dim       int
	k         int
	precision distance.PrecisionType

	nodes map[string]*Fragment
	// order preserves insertion order; it defines enumeration order for
	// lookup tie-breaking and the reset starting node.
	order []string
	// edges maps a fragment id to up to k neighbor ids, sorted by
	// descending similarity at construction time. Not symmetric.
	edges map[string][]string
}

// Dim returns the embedding dimension shared by all fragments.
func (g *Graph) Dim() int { return g.dim }

// K returns the neighbor count the graph was built with.
func (g *Graph) K() int { return g.k }

// Precision returns the vector storage precision.
func (g *Graph) Precision() distance.PrecisionType { return g.precision }

// NodeCount returns the number of fragments in the arena.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// Fragment returns the fragment for id, or nil if absent.
func (g *Graph) Fragment(id string) *Fragment { return g.nodes[id] }

// IDs returns the fragment ids in insertion order. The returned slice is
// shared; callers must not mutate it.
func (g *Graph) IDs() []string { return g.order }

// Neighbors returns the outgoing edge list for id in ranked order.
func (g *Graph) Neighbors(id string) []string { return g.edges[id] }

// similarity computes cosine similarity between two fragments using the
// graph's storage precision.
func (g *Graph) similarity(a, b *Fragment) (float64, error) {
	if g.precision == distance.Float16 {
		return distance.CosineFloat16(a.vec16, b.vec16)
	}
	return distance.CosineFloat32(a.vec32, b.vec32)
}

// NavState is the mutable cursor and history of one walk over the graph.
// It is reset independently of the graph by the coverage harness.
type NavState struct {
	Current     string    `json:"current"`
	Path        []string  `json:"path"`
	Turns       []int     `json:"turns"`
	EntropyHist []float64 `json:"entropy_hist"`
	Snaps       []Snap    `json:"snaps"`
	Step        int       `json:"step"`
}

// Snap records one crystallization event: a sharp entropy drop relative to
// five steps earlier.
type Snap struct {
	Step    int     `json:"step"`
	Delta   float64 `json:"delta"`
	Node    string  `json:"node"`
	Preview string  `json:"preview"`
}
