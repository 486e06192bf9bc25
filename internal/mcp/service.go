package mcp

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/xnoubis/rosetta/pkg/core"
	"github.com/xnoubis/rosetta/pkg/core/text"
	"github.com/xnoubis/rosetta/pkg/embeddings"
	"github.com/xnoubis/rosetta/pkg/ingest"
	"github.com/xnoubis/rosetta/pkg/persistence"
)

// ErrNoTerrain is returned by tools that need a built graph.
var ErrNoTerrain = errors.New("no terrain loaded, call ingest_text first")

// Service backs the MCP tools with a terrain engine. The engine is
// swapped on ingest and persisted after every mutation so an LLM client
// keeps its terrain across sessions.
type Service struct {
	mu        sync.Mutex
	engine    *core.Engine
	embedder  embeddings.Embedder
	statePath string
}

// NewService loads any saved terrain at statePath and wraps it for tool use.
func NewService(embedder embeddings.Embedder, statePath string) *Service {
	s := &Service{embedder: embedder, statePath: statePath}
	if snap, err := persistence.Load(statePath); err == nil {
		if eng, err := core.FromSnapshot(snap); err == nil {
			s.engine = eng
		}
	}
	return s
}

func (s *Service) persistLocked() {
	if s.engine == nil || s.statePath == "" {
		return
	}
	// Best effort: a failed save leaves the in-memory terrain usable.
	_ = persistence.Save(s.statePath, s.engine.Snapshot())
}

// --- Tool Handlers ---

func (s *Service) IngestText(ctx context.Context, req *mcp.CallToolRequest, args IngestTextArgs) (*mcp.CallToolResult, IngestTextResult, error) {
	source := args.Source
	if source == "" {
		source = "text"
	}

	inputs, err := ingest.NewCollector(s.embedder).FromText(source, args.Text)
	if err != nil {
		return nil, IngestTextResult{}, err
	}

	eng, err := core.Build(inputs, core.BuildOptions{K: args.K})
	if err != nil {
		return nil, IngestTextResult{}, err
	}

	s.mu.Lock()
	s.engine = eng
	s.persistLocked()
	s.mu.Unlock()

	return nil, IngestTextResult{
		Fragments: eng.Graph().NodeCount(),
		Start:     eng.State().Current,
	}, nil
}

func (s *Service) TakeStep(ctx context.Context, req *mcp.CallToolRequest, args TakeStepArgs) (*mcp.CallToolResult, TakeStepResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.engine == nil {
		return nil, TakeStepResult{}, ErrNoTerrain
	}

	id, entropy, snap := s.engine.Step()
	s.persistLocked()

	preview := ""
	if frag := s.engine.Graph().Fragment(id); frag != nil {
		preview = text.Truncate(frag.Content, 80)
	}

	return nil, TakeStepResult{
		Node:    id,
		Preview: preview,
		Entropy: entropy,
		Step:    s.engine.State().Step,
		Snapped: snap != nil,
	}, nil
}

func (s *Service) Navigate(ctx context.Context, req *mcp.CallToolRequest, args NavigateArgs) (*mcp.CallToolResult, NavigateResult, error) {
	steps := args.Steps
	if steps <= 0 {
		steps = 50
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.engine == nil {
		return nil, NavigateResult{}, ErrNoTerrain
	}

	stats := s.engine.Run(steps)
	s.persistLocked()

	return nil, NavigateResult{
		Steps:         stats.Steps,
		Coverage:      stats.Coverage,
		UniqueVisited: stats.UniqueVisited,
		Snaps:         stats.Snaps,
		Current:       s.engine.State().Current,
	}, nil
}

func (s *Service) SemanticSearch(ctx context.Context, req *mcp.CallToolRequest, args SemanticSearchArgs) (*mcp.CallToolResult, SemanticSearchResult, error) {
	limit := args.Limit
	if limit <= 0 {
		limit = 5
	}

	vec, err := s.embedder.Embed(args.Query)
	if err != nil {
		return nil, SemanticSearchResult{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.engine == nil {
		return nil, SemanticSearchResult{Results: []string{"Terrain is empty."}}, nil
	}

	matches, err := s.engine.Lookup(vec, limit)
	if err != nil {
		return nil, SemanticSearchResult{}, err
	}

	results := make([]string, 0, len(matches))
	for _, m := range matches {
		results = append(results,
			fmt.Sprintf("[%.3f] %s: %s", m.Similarity, m.ID, text.Truncate(m.Content, 120)))
	}
	if len(results) == 0 {
		results = []string{"No matches."}
	}
	return nil, SemanticSearchResult{Results: results}, nil
}

func (s *Service) ListSnaps(ctx context.Context, req *mcp.CallToolRequest, args ListSnapsArgs) (*mcp.CallToolResult, ListSnapsResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.engine == nil {
		return nil, ListSnapsResult{}, ErrNoTerrain
	}

	snaps := s.engine.State().Snaps
	out := make([]string, 0, len(snaps))
	for _, snap := range snaps {
		out = append(out,
			fmt.Sprintf("step %d (delta %.4f) at %s: %s", snap.Step, snap.Delta, snap.Node, snap.Preview))
	}
	if len(out) == 0 {
		out = []string{"No snap events recorded yet."}
	}
	return nil, ListSnapsResult{Snaps: out}, nil
}
