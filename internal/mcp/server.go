package mcp

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/xnoubis/rosetta/pkg/embeddings"
)

// NewMCPServer builds an MCP server exposing the terrain as a set of
// navigation tools for LLM clients. Serve it over stdio.
func NewMCPServer(embedder embeddings.Embedder, statePath string) *mcp.Server {
	service := NewService(embedder, statePath)

	s := mcp.NewServer(&mcp.Implementation{
		Name:    "Rosetta Terrain",
		Version: "0.1.0",
	}, nil) // Options can be nil for default

	// Register Tools using the Generic AddTool which inspects structs!

	mcp.AddTool(s, &mcp.Tool{
		Name:        "ingest_text",
		Description: "Build a semantic terrain from raw text. Replaces any existing terrain.",
	}, service.IngestText)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "take_step",
		Description: "Take a single biased random step through the terrain and report the fragment entered.",
	}, service.TakeStep)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "navigate",
		Description: "Walk N steps through the terrain and report coverage and snap totals.",
	}, service.Navigate)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "semantic_search",
		Description: "Search terrain fragments semantically by query.",
	}, service.SemanticSearch)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "list_snaps",
		Description: "List recorded snap events: moments where the walk's entropy collapsed sharply.",
	}, service.ListSnaps)

	return s
}
