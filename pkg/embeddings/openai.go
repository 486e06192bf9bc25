package embeddings

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// OpenAIEmbedder implements the Embedder interface against any
// OpenAI-compatible embeddings endpoint (OpenAI, LocalAI, vLLM, ...).
type OpenAIEmbedder struct {
	URL    string
	Model  string
	APIKey string
	Client *http.Client

	dim int
}

func NewOpenAIEmbedder(url, model, apiKey string, timeout time.Duration) *OpenAIEmbedder {
	if url == "" {
		url = "https://api.openai.com/v1/embeddings"
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &OpenAIEmbedder{
		URL:    url,
		Model:  model,
		APIKey: apiKey,
		Client: &http.Client{Timeout: timeout},
	}
}

func (e *OpenAIEmbedder) Embed(text string) ([]float32, error) {
	vecs, err := e.request(text)
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch sends all texts in a single request; the API accepts an
// array input and returns one data entry per element, in order.
func (e *OpenAIEmbedder) EmbedBatch(texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	return e.request(texts)
}

// Dimension is 0 until the first successful call.
func (e *OpenAIEmbedder) Dimension() int { return e.dim }

// request performs one embeddings call. input is either a string or a
// []string, per the API contract.
func (e *OpenAIEmbedder) request(input interface{}) ([][]float32, error) {
	payload := map[string]interface{}{
		"input": input,
		"model": e.Model,
	}
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest("POST", e.URL, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.APIKey)

	resp, err := e.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openai request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("openai returned status: %s", resp.Status)
	}

	// { "data": [ { "embedding": [...] }, ... ] }
	var openAIResp struct {
		Data []struct {
			Embedding []float32 `json:"embedding"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&openAIResp); err != nil {
		return nil, fmt.Errorf("failed to decode openai response: %w", err)
	}
	if len(openAIResp.Data) == 0 {
		return nil, fmt.Errorf("openai returned no data")
	}

	out := make([][]float32, len(openAIResp.Data))
	for i, d := range openAIResp.Data {
		out[i] = d.Embedding
	}
	if e.dim == 0 {
		e.dim = len(out[0])
	}
	return out, nil
}
