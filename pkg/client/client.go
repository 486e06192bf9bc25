// Package client provides a Go client for the Rosetta terrain API.
//
// It offers a type-safe way to perform all major operations:
//   - Corpus ingestion (raw text or a server-local folder).
//   - Walking (single steps and batch runs).
//   - Semantic lookup.
//   - Introspection (stats, snap events, run reports, coverage).
//
// The client handles HTTP communication, JSON serialization and
// standardized error handling.
package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/xnoubis/rosetta/pkg/core"
)

// APIError represents an error returned by the API (status >= 400).
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Message)
}

// --- JSON Request/Response Structs ---

// IngestOptions selects the corpus source and graph parameters. Exactly
// one of Text or Folder must be set.
type IngestOptions struct {
	Source    string `json:"source,omitempty"`
	Text      string `json:"text,omitempty"`
	Folder    string `json:"folder,omitempty"`
	K         int    `json:"k,omitempty"`
	Precision string `json:"precision,omitempty"`
}

// TerrainInfo summarizes a built terrain.
type TerrainInfo struct {
	Fragments int    `json:"fragments"`
	Dim       int    `json:"dim"`
	K         int    `json:"k"`
	Start     string `json:"start"`
}

// StepResult reports one navigation step.
type StepResult struct {
	Node    string     `json:"node"`
	Preview string     `json:"preview"`
	Entropy float64    `json:"entropy"`
	Step    int        `json:"step"`
	Turn    int        `json:"turn"`
	Snap    *core.Snap `json:"snap,omitempty"`
}

// RunReport records one completed batch walk.
type RunReport struct {
	ID         string        `json:"id"`
	StartedAt  time.Time     `json:"started_at"`
	DurationMs int64         `json:"duration_ms"`
	Requested  int           `json:"requested_steps"`
	NewSnaps   int           `json:"new_snaps"`
	Stats      core.RunStats `json:"stats"`
}

// TerrainStats describes the loaded terrain and the walk's totals.
type TerrainStats struct {
	Fragments int           `json:"fragments"`
	Dim       int           `json:"dim"`
	K         int           `json:"k"`
	Precision string        `json:"precision"`
	Current   string        `json:"current"`
	Stats     core.RunStats `json:"stats"`
}

// CoverageReport returns the per-trial results and the aggregate.
type CoverageReport struct {
	Trials  []core.TrialResult   `json:"trials"`
	Summary core.CoverageSummary `json:"summary"`
}

type lookupResponse struct {
	Query   string       `json:"query"`
	Matches []core.Match `json:"matches"`
}

type snapsResponse struct {
	Snaps []core.Snap `json:"snaps"`
}

type runsResponse struct {
	Runs []RunReport `json:"runs"`
}

// --- Client ---

// Client is the Go client for the Rosetta API.
type Client struct {
	baseURL    string
	authToken  string
	httpClient *http.Client
}

// New creates a client for the server at baseURL, e.g. "http://localhost:8080".
func New(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// WithToken sets the bearer token sent on every request.
func (c *Client) WithToken(token string) *Client {
	c.authToken = token
	return c
}

// jsonRequest is a helper method to execute all requests to the API.
// It handles JSON serialization, HTTP calls, and error management.
func (c *Client) jsonRequest(method, endpoint string, payload any) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal JSON payload: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequest(method, c.baseURL+endpoint, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("connection error: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		message := string(body)
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
			message = apiErr.Error
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Message: message}
	}

	return body, nil
}

// --- Operations ---

// Ingest builds a new terrain on the server, replacing any existing one.
func (c *Client) Ingest(opts IngestOptions) (*TerrainInfo, error) {
	body, err := c.jsonRequest(http.MethodPost, "/terrain/ingest", opts)
	if err != nil {
		return nil, err
	}
	var info TerrainInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("failed to decode ingest response: %w", err)
	}
	return &info, nil
}

// Step advances the walk by one step.
func (c *Client) Step() (*StepResult, error) {
	body, err := c.jsonRequest(http.MethodPost, "/terrain/step", nil)
	if err != nil {
		return nil, err
	}
	var result StepResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode step response: %w", err)
	}
	return &result, nil
}

// Run advances the walk by n steps and returns the run report.
func (c *Client) Run(n int) (*RunReport, error) {
	body, err := c.jsonRequest(http.MethodPost, "/terrain/run", map[string]int{"steps": n})
	if err != nil {
		return nil, err
	}
	var report RunReport
	if err := json.Unmarshal(body, &report); err != nil {
		return nil, fmt.Errorf("failed to decode run response: %w", err)
	}
	return &report, nil
}

// Lookup ranks fragments by semantic similarity to the query text.
func (c *Client) Lookup(query string, k int) ([]core.Match, error) {
	payload := map[string]any{"query": query, "k": k}
	body, err := c.jsonRequest(http.MethodPost, "/terrain/lookup", payload)
	if err != nil {
		return nil, err
	}
	var resp lookupResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode lookup response: %w", err)
	}
	return resp.Matches, nil
}

// Coverage runs the coverage harness on the server. Note that it resets
// the walk state between trials.
func (c *Client) Coverage(trials, steps int) (*CoverageReport, error) {
	payload := map[string]int{"trials": trials, "steps": steps}
	body, err := c.jsonRequest(http.MethodPost, "/terrain/coverage", payload)
	if err != nil {
		return nil, err
	}
	var report CoverageReport
	if err := json.Unmarshal(body, &report); err != nil {
		return nil, fmt.Errorf("failed to decode coverage response: %w", err)
	}
	return &report, nil
}

// Stats returns the terrain description and walk totals.
func (c *Client) Stats() (*TerrainStats, error) {
	body, err := c.jsonRequest(http.MethodGet, "/terrain/stats", nil)
	if err != nil {
		return nil, err
	}
	var stats TerrainStats
	if err := json.Unmarshal(body, &stats); err != nil {
		return nil, fmt.Errorf("failed to decode stats response: %w", err)
	}
	return &stats, nil
}

// Snaps lists the recorded snap events.
func (c *Client) Snaps() ([]core.Snap, error) {
	body, err := c.jsonRequest(http.MethodGet, "/terrain/snaps", nil)
	if err != nil {
		return nil, err
	}
	var resp snapsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode snaps response: %w", err)
	}
	return resp.Snaps, nil
}

// Runs lists completed batch walks, most recent first.
func (c *Client) Runs() ([]RunReport, error) {
	body, err := c.jsonRequest(http.MethodGet, "/terrain/runs", nil)
	if err != nil {
		return nil, err
	}
	var resp runsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode runs response: %w", err)
	}
	return resp.Runs, nil
}

// Healthz reports whether the server is up.
func (c *Client) Healthz() error {
	_, err := c.jsonRequest(http.MethodGet, "/healthz", nil)
	return err
}
