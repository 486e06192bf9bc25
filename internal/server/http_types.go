package server

import (
	"github.com/xnoubis/rosetta/pkg/core"
)

// IngestRequest defines the body for corpus ingestion. Exactly one of
// Text or Folder must be set. K and Precision override the configured
// graph parameters when non-zero.
type IngestRequest struct {
	// Source labels the text when Text is used; fragment ids become
	// "<source>:<n>". Defaults to "text".
	Source string `json:"source,omitempty"`
	Text   string `json:"text,omitempty"`
	// Folder is a server-local directory to walk and ingest.
	Folder string `json:"folder,omitempty"`

	K         int    `json:"k,omitempty"`
	Precision string `json:"precision,omitempty"`
}

// IngestResponse summarizes the built terrain.
type IngestResponse struct {
	Fragments int    `json:"fragments"`
	Dim       int    `json:"dim"`
	K         int    `json:"k"`
	Start     string `json:"start"`
}

// StepResponse reports one navigation step.
type StepResponse struct {
	Node    string     `json:"node"`
	Preview string     `json:"preview"`
	Entropy float64    `json:"entropy"`
	Step    int        `json:"step"`
	Turn    int        `json:"turn"`
	Snap    *core.Snap `json:"snap,omitempty"`
}

// RunRequest defines the body for a batch walk.
type RunRequest struct {
	Steps int `json:"steps,omitempty"` // default 50
}

// LookupRequest defines the body for semantic lookup. The query text is
// embedded with the server's provider before ranking.
type LookupRequest struct {
	Query string `json:"query"`
	K     int    `json:"k,omitempty"` // default 5
}

// LookupResponse returns the ranked matches.
type LookupResponse struct {
	Query   string       `json:"query"`
	Matches []core.Match `json:"matches"`
}

// CoverageRequest defines the body for a coverage evaluation. Note that
// the evaluation resets the walk state between trials and leaves the
// state of the final trial in place.
type CoverageRequest struct {
	Trials int `json:"trials,omitempty"` // default 5
	Steps  int `json:"steps,omitempty"`  // default 100
}

// CoverageResponse returns the per-trial results and the aggregate.
type CoverageResponse struct {
	Trials  []core.TrialResult   `json:"trials"`
	Summary core.CoverageSummary `json:"summary"`
}

// StatsResponse describes the loaded terrain and the walk's totals.
type StatsResponse struct {
	Fragments int           `json:"fragments"`
	Dim       int           `json:"dim"`
	K         int           `json:"k"`
	Precision string        `json:"precision"`
	Current   string        `json:"current"`
	Stats     core.RunStats `json:"stats"`
}

// SnapsResponse lists the recorded snap events.
type SnapsResponse struct {
	Snaps []core.Snap `json:"snaps"`
}

// RunsResponse lists completed batch walks, most recent first.
type RunsResponse struct {
	Runs []RunReport `json:"runs"`
}
