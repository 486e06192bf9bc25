package embeddings

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// OllamaEmbedder implements the Embedder interface against a remote
// Ollama instance.
type OllamaEmbedder struct {
	URL    string
	Model  string
	Client *http.Client

	dim int
}

func NewOllamaEmbedder(url, model string, timeout time.Duration) *OllamaEmbedder {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &OllamaEmbedder{
		URL:   url,
		Model: model,
		Client: &http.Client{
			Timeout: timeout,
		},
	}
}

func (e *OllamaEmbedder) Embed(text string) ([]float32, error) {
	payload := map[string]interface{}{
		"model":  e.Model,
		"prompt": text,
	}
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	resp, err := e.Client.Post(e.URL, "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("ollama request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ollama returned status: %s", resp.Status)
	}

	var ollamaResp struct {
		Embedding []float32 `json:"embedding"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&ollamaResp); err != nil {
		return nil, fmt.Errorf("failed to decode ollama response: %w", err)
	}

	if e.dim == 0 {
		e.dim = len(ollamaResp.Embedding)
	}
	return ollamaResp.Embedding, nil
}

// EmbedBatch issues one request per text; the Ollama embedding endpoint
// accepts a single prompt at a time.
func (e *OllamaEmbedder) EmbedBatch(texts []string) ([][]float32, error) {
	return embedOneByOne(e, texts)
}

// Dimension is 0 until the first successful Embed call.
func (e *OllamaEmbedder) Dimension() int { return e.dim }
