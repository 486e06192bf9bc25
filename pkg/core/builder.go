package core

import (
	"errors"
	"fmt"
	"math/rand"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/xnoubis/rosetta/pkg/core/distance"
	"github.com/xnoubis/rosetta/pkg/core/text"
)

// DefaultK is the neighbor count used when the caller does not specify one.
const DefaultK = 6

// ErrEmptyCorpus is returned when Build is invoked with zero fragments.
var ErrEmptyCorpus = errors.New("cannot build a graph from an empty corpus")

// FragmentInput is one (id, content, embedding) triple fed to the builder.
type FragmentInput struct {
	ID        string
	Content   string
	Embedding []float32
}

// BuildOptions tunes graph construction. The zero value is usable.
type BuildOptions struct {
	// K is the outgoing neighbor count per node (default DefaultK). When
	// the corpus has fewer than K+1 fragments the effective count is
	// corpus size minus one.
	K int
	// Precision selects the vector storage type (default Float32).
	Precision distance.PrecisionType
	// Workers bounds the parallelism of the pairwise similarity phase
	// (default: GOMAXPROCS). Edge selection always happens over the
	// complete similarity view, so the worker count never affects ties.
	Workers int
	// Rand is the random source for the walk. Tests fix it for
	// reproducibility; when nil a time-seeded source is used.
	Rand *rand.Rand
}

// Build constructs the k-nearest-neighbor graph over the given fragments
// and a fresh navigation state positioned at the first fragment.
//
// Every pair of fragments is compared, so construction is O(n²) in corpus
// size; the pairwise phase is spread across workers. Ties in similarity are
// broken by input order (stable sort).
func Build(inputs []FragmentInput, opts BuildOptions) (*Engine, error) {
	if len(inputs) == 0 {
		return nil, ErrEmptyCorpus
	}

	k := opts.K
	if k <= 0 {
		k = DefaultK
	}
	precision := opts.Precision
	if precision == "" {
		precision = distance.Float32
	}

	// Reject dimension mismatches before any state is built: Build must
	// never hand back a partially constructed graph.
	dim := len(inputs[0].Embedding)
	for _, in := range inputs {
		if len(in.Embedding) != dim {
			return nil, fmt.Errorf("fragment %q has dimension %d, corpus has %d: %w",
				in.ID, len(in.Embedding), dim, distance.ErrDimensionMismatch)
		}
	}

	g := &Graph{
		dim:       dim,
		k:         k,
		precision: precision,
		nodes:     make(map[string]*Fragment, len(inputs)),
		order:     make([]string, 0, len(inputs)),
		edges:     make(map[string][]string, len(inputs)),
	}

	for _, in := range inputs {
		if _, exists := g.nodes[in.ID]; exists {
			return nil, fmt.Errorf("duplicate fragment id %q", in.ID)
		}
		frag := &Fragment{
			ID:      in.ID,
			Content: text.Truncate(in.Content, maxFragmentContent),
		}
		if precision == distance.Float16 {
			frag.vec16 = distance.EncodeFloat16(in.Embedding)
		} else {
			frag.vec32 = append([]float32(nil), in.Embedding...)
		}
		g.nodes[in.ID] = frag
		g.order = append(g.order, in.ID)
	}

	if err := buildEdges(g, opts.Workers); err != nil {
		return nil, err
	}

	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	start := g.order[0]
	return &Engine{
		graph: g,
		state: &NavState{Current: start, Path: []string{start}},
		rng:   rng,
	}, nil
}

// buildEdges fills in the top-k neighbor list for every node. The pairwise
// similarity computation is embarrassingly parallel across nodes; each
// worker ranks its nodes against the complete, immutable arena.
func buildEdges(g *Graph, workers int) error {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(g.order) {
		workers = len(g.order)
	}

	effK := g.k
	if max := len(g.order) - 1; effK > max {
		effK = max
	}

	type candidate struct {
		id  string
		sim float64
	}

	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		buildErr error
	)
	// Workers write disjoint slots; the edges map is filled afterwards so
	// no goroutine ever mutates shared state.
	results := make([][]string, len(g.order))
	indices := make(chan int)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indices {
				self := g.nodes[g.order[i]]
				cands := make([]candidate, 0, len(g.order)-1)
				failed := false
				for j, oid := range g.order {
					if j == i {
						continue
					}
					sim, err := g.similarity(self, g.nodes[oid])
					if err != nil {
						errOnce.Do(func() { buildErr = err })
						failed = true
						break
					}
					cands = append(cands, candidate{id: oid, sim: sim})
				}
				if failed {
					continue
				}
				// Stable descending sort keeps insertion order on ties.
				sort.SliceStable(cands, func(a, b int) bool {
					return cands[a].sim > cands[b].sim
				})

				edges := make([]string, 0, effK)
				for _, c := range cands[:effK] {
					edges = append(edges, c.id)
				}
				results[i] = edges
			}
		}()
	}

	for i := range g.order {
		indices <- i
	}
	close(indices)
	wg.Wait()

	if buildErr != nil {
		return buildErr
	}
	for i, id := range g.order {
		g.edges[id] = results[i]
	}
	return nil
}
