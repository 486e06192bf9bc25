package embeddings

import (
	"crypto/sha256"
	"encoding/binary"
	"math"
	"math/rand"
)

// PseudoDimension is the vector length of the pseudo provider, matching
// the dimension of the sentence-transformer models it stands in for.
const PseudoDimension = 384

// PseudoEmbedder is a deterministic fallback provider for environments
// without a semantic encoder. The SHA-256 digest of the text seeds a PRNG
// that draws a Gaussian vector, which is then L2-normalized: identical
// texts always map to identical unit vectors, and unrelated texts land in
// effectively random directions.
type PseudoEmbedder struct {
	dim int
}

// NewPseudoEmbedder returns a pseudo provider with the default dimension.
func NewPseudoEmbedder() *PseudoEmbedder {
	return &PseudoEmbedder{dim: PseudoDimension}
}

// NewPseudoEmbedderWithDim returns a pseudo provider with a custom vector
// length. Tests use small dimensions to keep fixtures readable.
func NewPseudoEmbedderWithDim(dim int) *PseudoEmbedder {
	if dim <= 0 {
		dim = PseudoDimension
	}
	return &PseudoEmbedder{dim: dim}
}

// Embed derives a unit vector from the hash of the text.
func (e *PseudoEmbedder) Embed(text string) ([]float32, error) {
	digest := sha256.Sum256([]byte(text))
	seed := int64(binary.BigEndian.Uint64(digest[:8]))
	rng := rand.New(rand.NewSource(seed))

	vec := make([]float32, e.dim)
	var norm float64
	for i := range vec {
		x := rng.NormFloat64()
		vec[i] = float32(x)
		norm += x * x
	}
	if norm > 0 {
		inv := float32(1.0 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= inv
		}
	}
	return vec, nil
}

// EmbedBatch embeds each text independently; the provider is local, so
// there is no batching advantage to exploit.
func (e *PseudoEmbedder) EmbedBatch(texts []string) ([][]float32, error) {
	return embedOneByOne(e, texts)
}

// Dimension returns the provider's vector length.
func (e *PseudoEmbedder) Dimension() int { return e.dim }
