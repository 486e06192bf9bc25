package core

import (
	"fmt"
	"sort"

	"github.com/xnoubis/rosetta/pkg/core/distance"
)

// Match is one semantic lookup result.
type Match struct {
	Similarity float64 `json:"similarity"`
	ID         string  `json:"id"`
	Content    string  `json:"content"`
}

// Lookup ranks every fragment by cosine similarity to the query embedding
// and returns the top min(k, node count) matches, descending. Ties keep
// insertion order. It mutates nothing.
func (e *Engine) Lookup(query []float32, k int) ([]Match, error) {
	g := e.graph
	if len(query) != g.dim {
		return nil, fmt.Errorf("query has dimension %d, graph has %d: %w",
			len(query), g.dim, distance.ErrDimensionMismatch)
	}
	if k <= 0 {
		return nil, nil
	}

	// For half-precision graphs the query is quantized once so every
	// comparison happens in the same space the edges were built in.
	var query16 []uint16
	if g.precision == distance.Float16 {
		query16 = distance.EncodeFloat16(query)
	}

	matches := make([]Match, 0, len(g.order))
	for _, id := range g.order {
		frag := g.nodes[id]
		var (
			sim float64
			err error
		)
		if query16 != nil {
			sim, err = distance.CosineFloat16(query16, frag.vec16)
		} else {
			sim, err = distance.CosineFloat32(query, frag.vec32)
		}
		if err != nil {
			return nil, err
		}
		matches = append(matches, Match{Similarity: sim, ID: id, Content: frag.Content})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})

	if k < len(matches) {
		matches = matches[:k]
	}
	return matches, nil
}
