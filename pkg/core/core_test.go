package core

import (
	"errors"
	"math"
	"math/rand"
	"strings"
	"testing"

	"github.com/xnoubis/rosetta/pkg/core/distance"
)

// testEngine builds a small engine with a fixed seed.
func testEngine(t *testing.T, inputs []FragmentInput, k int) *Engine {
	t.Helper()
	eng, err := Build(inputs, BuildOptions{K: k, Rand: rand.New(rand.NewSource(42))})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return eng
}

func threeFragments() []FragmentInput {
	return []FragmentInput{
		{ID: "a", Content: "alpha fragment", Embedding: []float32{1, 0, 0}},
		{ID: "b", Content: "beta fragment", Embedding: []float32{0.9, 0.1, 0}},
		{ID: "c", Content: "gamma fragment", Embedding: []float32{0, 0, 1}},
	}
}

func TestTurnBias(t *testing.T) {
	want := []int{1, 1, -1, 1, 1, -1, -1}
	for i, w := range want {
		if got := TurnBias(i + 1); got != w {
			t.Errorf("step %d: got %d, want %d", i+1, got, w)
		}
	}
	if TurnBias(0) != 1 || TurnBias(-5) != 1 {
		t.Errorf("non-positive steps must turn +1")
	}
	// The first left turn of the folding sequence is at step 3.
	for s := 1; s < 3; s++ {
		if TurnBias(s) != 1 {
			t.Errorf("step %d turned left too early", s)
		}
	}
	if TurnBias(3) != -1 {
		t.Errorf("step 3 must be the first left turn")
	}
}

func TestBuild(t *testing.T) {
	t.Run("EmptyCorpus", func(t *testing.T) {
		_, err := Build(nil, BuildOptions{})
		if !errors.Is(err, ErrEmptyCorpus) {
			t.Errorf("got %v, want ErrEmptyCorpus", err)
		}
	})

	t.Run("DimensionMismatch", func(t *testing.T) {
		inputs := []FragmentInput{
			{ID: "a", Embedding: []float32{1, 0}},
			{ID: "b", Embedding: []float32{1, 0, 0}},
		}
		_, err := Build(inputs, BuildOptions{})
		if !errors.Is(err, distance.ErrDimensionMismatch) {
			t.Errorf("got %v, want ErrDimensionMismatch", err)
		}
	})

	t.Run("DuplicateID", func(t *testing.T) {
		inputs := []FragmentInput{
			{ID: "a", Embedding: []float32{1, 0}},
			{ID: "a", Embedding: []float32{0, 1}},
		}
		if _, err := Build(inputs, BuildOptions{}); err == nil {
			t.Errorf("duplicate ids must be rejected")
		}
	})

	t.Run("KClamping", func(t *testing.T) {
		eng := testEngine(t, threeFragments(), 6)
		for _, id := range eng.Graph().IDs() {
			if n := len(eng.Graph().Neighbors(id)); n != 2 {
				t.Errorf("node %s has %d neighbors, want 2", id, n)
			}
		}
	})

	t.Run("EdgeOrdering", func(t *testing.T) {
		eng := testEngine(t, threeFragments(), 2)
		// a is nearly parallel to b and orthogonal to c.
		edges := eng.Graph().Neighbors("a")
		if edges[0] != "b" || edges[1] != "c" {
			t.Errorf("got edges %v, want [b c]", edges)
		}
	})

	t.Run("TieBreakInsertionOrder", func(t *testing.T) {
		// All pairwise similarities are 0: edge order must follow
		// input order exactly.
		inputs := []FragmentInput{
			{ID: "x", Embedding: []float32{1, 0, 0}},
			{ID: "y", Embedding: []float32{0, 1, 0}},
			{ID: "z", Embedding: []float32{0, 0, 1}},
		}
		eng := testEngine(t, inputs, 2)
		edges := eng.Graph().Neighbors("x")
		if edges[0] != "y" || edges[1] != "z" {
			t.Errorf("got edges %v, want [y z]", edges)
		}
	})

	t.Run("InitialState", func(t *testing.T) {
		eng := testEngine(t, threeFragments(), 2)
		st := eng.State()
		if st.Current != "a" {
			t.Errorf("cursor starts at %q, want first input", st.Current)
		}
		if len(st.Path) != 1 || st.Path[0] != "a" {
			t.Errorf("path starts as %v, want [a]", st.Path)
		}
		if st.Step != 0 || len(st.EntropyHist) != 0 || len(st.Snaps) != 0 {
			t.Errorf("counters must start zeroed")
		}
	})

	t.Run("ContentTruncation", func(t *testing.T) {
		long := strings.Repeat("x", 1000)
		inputs := []FragmentInput{
			{ID: "a", Content: long, Embedding: []float32{1, 0}},
			{ID: "b", Content: "short", Embedding: []float32{0, 1}},
		}
		eng := testEngine(t, inputs, 1)
		if got := len(eng.Graph().Fragment("a").Content); got != maxFragmentContent {
			t.Errorf("content stored with %d chars, want %d", got, maxFragmentContent)
		}
	})
}

func TestSelectionProbabilitiesNormalize(t *testing.T) {
	eng := testEngine(t, threeFragments(), 2)
	for i := 0; i < 50; i++ {
		cur := eng.Current()
		probs := eng.selectionProbs(cur, eng.Graph().Neighbors(cur.ID), TurnBias(eng.State().Step+1))
		sum := 0.0
		for _, p := range probs {
			sum += p
		}
		if math.Abs(sum-1.0) > 1e-9 {
			t.Fatalf("step %d: probabilities sum to %.12f", i, sum)
		}
		eng.Step()
	}
}

func TestHueBounds(t *testing.T) {
	eng := testEngine(t, threeFragments(), 2)
	for i := 0; i < 200; i++ {
		eng.Step()
		for _, id := range eng.Graph().IDs() {
			hue := eng.Graph().Fragment(id).Hue
			if hue < 0 || hue > 1 {
				t.Fatalf("step %d: hue of %s out of bounds: %f", i, id, hue)
			}
		}
	}
}

func TestStepDegenerateNode(t *testing.T) {
	// A single-fragment corpus has no possible neighbors.
	eng := testEngine(t, []FragmentInput{
		{ID: "only", Content: "lonely", Embedding: []float32{1, 0}},
	}, 3)

	id, entropy, snap := eng.Step()
	if id != "only" || entropy != 0 || snap != nil {
		t.Errorf("degenerate step must be a no-op, got (%s, %f, %v)", id, entropy, snap)
	}
	if eng.State().Step != 0 || len(eng.State().Path) != 1 {
		t.Errorf("degenerate step must not mutate state")
	}
}

func TestSnapDetector(t *testing.T) {
	node := &Fragment{ID: "n", Content: strings.Repeat("abcdefghij", 20)}

	t.Run("TooShortHistory", func(t *testing.T) {
		if s := detectSnap([]float64{1, 0.9, 0.8, 0.5}, 3, node); s != nil {
			t.Errorf("history of 4 must never fire")
		}
	})

	t.Run("ExactThresholdDoesNotFire", func(t *testing.T) {
		hist := []float64{1.0, 1.0, 1.0, 1.0, 0.92}
		if s := detectSnap(hist, 4, node); s != nil {
			t.Errorf("a drop of exactly 0.08 must not fire, got %+v", s)
		}
	})

	t.Run("JustAboveThresholdFires", func(t *testing.T) {
		hist := []float64{1.0, 1.0, 1.0, 1.0, 1.0 - 0.0801}
		s := detectSnap(hist, 4, node)
		if s == nil {
			t.Fatalf("a drop of 0.0801 must fire")
		}
		if s.Step != 4 || s.Node != "n" {
			t.Errorf("got step=%d node=%s", s.Step, s.Node)
		}
		if s.Delta != 0.0801 {
			t.Errorf("delta %v not rounded to 4 decimals", s.Delta)
		}
		if len([]rune(s.Preview)) != 80 {
			t.Errorf("preview has %d chars, want 80", len([]rune(s.Preview)))
		}
	})

	t.Run("ComparesLagFourEntry", func(t *testing.T) {
		// Only the fifth-from-last entry matters, not the minimum.
		hist := []float64{5.0, 1.0, 1.0, 1.0, 1.0, 0.95}
		if s := detectSnap(hist, 5, node); s != nil {
			t.Errorf("lag-4 comparison must ignore older entries")
		}
	})
}

func TestRunScenario(t *testing.T) {
	eng := testEngine(t, threeFragments(), 2)
	stats := eng.Run(10)

	st := eng.State()
	if len(st.Path) != 11 {
		t.Errorf("path has %d entries, want 11", len(st.Path))
	}
	if len(st.EntropyHist) != 10 {
		t.Errorf("entropy history has %d entries, want 10", len(st.EntropyHist))
	}
	if len(st.Turns) != 10 {
		t.Errorf("turns has %d entries, want 10", len(st.Turns))
	}
	if stats.Steps != 10 {
		t.Errorf("stats report %d steps, want 10", stats.Steps)
	}

	known := map[string]bool{"a": true, "b": true, "c": true}
	for _, id := range st.Path {
		if !known[id] {
			t.Errorf("path contains unknown id %q", id)
		}
	}
}

func TestRunZeroSteps(t *testing.T) {
	eng := testEngine(t, threeFragments(), 2)
	before := eng.Run(5)
	after := eng.Run(0)
	if before != after {
		t.Errorf("n=0 must return totals unchanged: %+v vs %+v", before, after)
	}
}

func TestCoverageBounds(t *testing.T) {
	eng := testEngine(t, threeFragments(), 2)
	for i := 0; i < 30; i++ {
		stats := eng.Run(1)
		if stats.Coverage < 0 || stats.Coverage > 1 {
			t.Fatalf("coverage out of bounds: %f", stats.Coverage)
		}
		if stats.UniqueVisited == eng.Graph().NodeCount() && stats.Coverage != 1.0 {
			t.Fatalf("full coverage must be exactly 1.0, got %f", stats.Coverage)
		}
	}
}

func TestLookup(t *testing.T) {
	eng := testEngine(t, threeFragments(), 2)

	t.Run("ExactMatchRanksFirst", func(t *testing.T) {
		matches, err := eng.Lookup([]float32{0, 0, 1}, 3)
		if err != nil {
			t.Fatalf("Lookup failed: %v", err)
		}
		if matches[0].ID != "c" {
			t.Errorf("got %s first, want c", matches[0].ID)
		}
		if math.Abs(matches[0].Similarity-1.0) > 1e-6 {
			t.Errorf("got similarity %f, want 1.0", matches[0].Similarity)
		}
	})

	t.Run("BoundedByNodeCount", func(t *testing.T) {
		matches, err := eng.Lookup([]float32{1, 0, 0}, 10)
		if err != nil {
			t.Fatalf("Lookup failed: %v", err)
		}
		if len(matches) != 3 {
			t.Errorf("got %d matches, want 3", len(matches))
		}
	})

	t.Run("DimensionMismatch", func(t *testing.T) {
		if _, err := eng.Lookup([]float32{1, 0}, 3); !errors.Is(err, distance.ErrDimensionMismatch) {
			t.Errorf("got %v, want ErrDimensionMismatch", err)
		}
	})
}

func TestReset(t *testing.T) {
	eng := testEngine(t, threeFragments(), 2)
	eng.Run(25)

	eng.Reset()
	st := eng.State()
	if st.Current != "a" || len(st.Path) != 1 || st.Step != 0 {
		t.Errorf("reset left cursor state: %+v", st)
	}
	if len(st.Turns) != 0 || len(st.EntropyHist) != 0 || len(st.Snaps) != 0 {
		t.Errorf("reset left history behind")
	}
	for _, id := range eng.Graph().IDs() {
		frag := eng.Graph().Fragment(id)
		if frag.Visits != 0 || frag.Hue != 0 {
			t.Errorf("reset left node state on %s: visits=%d hue=%f", id, frag.Visits, frag.Hue)
		}
	}
}

func TestEvaluateCoverage(t *testing.T) {
	eng := testEngine(t, threeFragments(), 2)
	results, summary := eng.EvaluateCoverage(4, 30)

	if len(results) != 4 {
		t.Fatalf("got %d trial results, want 4", len(results))
	}
	if summary.Trials != 4 || summary.StepsPerTrial != 30 {
		t.Errorf("summary metadata wrong: %+v", summary)
	}
	for _, r := range results {
		if r.Stats.Steps != 30 {
			t.Errorf("trial %d ran %d steps, want 30 (reset not applied?)", r.Trial, r.Stats.Steps)
		}
		if r.Stats.Coverage < 0 || r.Stats.Coverage > 1 {
			t.Errorf("trial %d coverage out of bounds: %f", r.Trial, r.Stats.Coverage)
		}
	}
	if summary.AvgCoverage < 0 || summary.AvgCoverage > 1 {
		t.Errorf("average coverage out of bounds: %f", summary.AvgCoverage)
	}
}

func TestFloat16Graph(t *testing.T) {
	eng, err := Build(threeFragments(), BuildOptions{
		K:         2,
		Precision: distance.Float16,
		Rand:      rand.New(rand.NewSource(7)),
	})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	stats := eng.Run(20)
	if stats.Steps != 20 {
		t.Errorf("walk over a float16 graph ran %d steps, want 20", stats.Steps)
	}

	matches, err := eng.Lookup([]float32{0, 0, 1}, 1)
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if matches[0].ID != "c" {
		t.Errorf("got %s, want c", matches[0].ID)
	}
}
