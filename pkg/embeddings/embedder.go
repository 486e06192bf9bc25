// Package embeddings defines the provider interface that maps text to
// fixed-dimension vectors, together with three interchangeable
// implementations: a deterministic hash-based pseudo provider, an Ollama
// client, and an OpenAI-compatible client.
package embeddings

// Embedder converts text into vector representations. All vectors produced
// by one provider share the same dimension.
type Embedder interface {
	Embed(text string) ([]float32, error)
	EmbedBatch(texts []string) ([][]float32, error)
	// Dimension returns the provider's fixed vector length, or 0 when it
	// is only known after the first call (remote providers).
	Dimension() int
}

// embedOneByOne is the fallback batch strategy for providers whose API has
// no batch endpoint.
func embedOneByOne(e Embedder, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		vec, err := e.Embed(t)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}
