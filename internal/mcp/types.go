package mcp

// --- Tool Arguments ---

type IngestTextArgs struct {
	Text   string `json:"text" jsonschema:"The raw text to build the terrain from,required"`
	Source string `json:"source,omitempty" jsonschema:"Label for the text, used as the fragment id prefix. Defaults to 'text'"`
	K      int    `json:"k,omitempty" jsonschema:"Neighbors per fragment in the similarity graph (default 6)"`
}

type IngestTextResult struct {
	Fragments int    `json:"fragments"`
	Start     string `json:"start"`
}

type TakeStepArgs struct{}

type TakeStepResult struct {
	Node    string  `json:"node"`
	Preview string  `json:"preview"`
	Entropy float64 `json:"entropy"`
	Step    int     `json:"step"`
	Snapped bool    `json:"snapped"`
}

type NavigateArgs struct {
	Steps int `json:"steps,omitempty" jsonschema:"Number of steps to walk (default 50)"`
}

type NavigateResult struct {
	Steps         int     `json:"steps"`
	Coverage      float64 `json:"coverage"`
	UniqueVisited int     `json:"unique_visited"`
	Snaps         int     `json:"snaps"`
	Current       string  `json:"current"`
}

type SemanticSearchArgs struct {
	Query string `json:"query" jsonschema:"The semantic query to search for,required"`
	Limit int    `json:"limit,omitempty" jsonschema:"Max number of results (default 5)"`
}

type SemanticSearchResult struct {
	Results []string `json:"results"` // Formatted strings for the LLM
}

type ListSnapsArgs struct{}

type ListSnapsResult struct {
	Snaps []string `json:"snaps"` // Formatted strings for the LLM
}
