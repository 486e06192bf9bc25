package embeddings

import (
	"math"
	"testing"
)

func TestPseudoEmbedder(t *testing.T) {
	e := NewPseudoEmbedder()

	t.Run("Deterministic", func(t *testing.T) {
		a, _ := e.Embed("the agent searches for the key")
		b, _ := e.Embed("the agent searches for the key")
		for i := range a {
			if a[i] != b[i] {
				t.Fatalf("same text produced different vectors at index %d", i)
			}
		}
	})

	t.Run("Dimension", func(t *testing.T) {
		v, _ := e.Embed("anything")
		if len(v) != PseudoDimension {
			t.Errorf("got %d, want %d", len(v), PseudoDimension)
		}
		if e.Dimension() != PseudoDimension {
			t.Errorf("Dimension() reports %d", e.Dimension())
		}
	})

	t.Run("UnitNorm", func(t *testing.T) {
		v, _ := e.Embed("normalize me")
		var norm float64
		for _, x := range v {
			norm += float64(x) * float64(x)
		}
		if math.Abs(math.Sqrt(norm)-1.0) > 1e-5 {
			t.Errorf("vector norm is %f, want 1.0", math.Sqrt(norm))
		}
	})

	t.Run("DistinctTexts", func(t *testing.T) {
		a, _ := e.Embed("first text")
		b, _ := e.Embed("second text")
		same := true
		for i := range a {
			if a[i] != b[i] {
				same = false
				break
			}
		}
		if same {
			t.Errorf("different texts produced identical vectors")
		}
	})

	t.Run("Batch", func(t *testing.T) {
		vecs, err := e.EmbedBatch([]string{"one", "two", "three"})
		if err != nil {
			t.Fatalf("EmbedBatch failed: %v", err)
		}
		if len(vecs) != 3 {
			t.Fatalf("got %d vectors, want 3", len(vecs))
		}
		single, _ := e.Embed("two")
		for i := range single {
			if vecs[1][i] != single[i] {
				t.Fatalf("batch result differs from single embed")
			}
		}
	})
}

func TestConfigResolution(t *testing.T) {
	t.Run("DefaultIsPseudo", func(t *testing.T) {
		emb, err := New(Config{})
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}
		if _, ok := emb.(*PseudoEmbedder); !ok {
			t.Errorf("empty provider must resolve to pseudo, got %T", emb)
		}
	})

	t.Run("CustomDimension", func(t *testing.T) {
		emb, err := New(Config{Provider: "pseudo", Dimension: 16})
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}
		if emb.Dimension() != 16 {
			t.Errorf("got dimension %d, want 16", emb.Dimension())
		}
	})

	t.Run("UnknownProvider", func(t *testing.T) {
		if _, err := New(Config{Provider: "magic"}); err == nil {
			t.Errorf("unknown provider must fail")
		}
	})

	t.Run("OllamaRequiresModel", func(t *testing.T) {
		if _, err := New(Config{Provider: "ollama", URL: "http://localhost:11434/api/embeddings"}); err == nil {
			t.Errorf("ollama without model must fail")
		}
	})
}
