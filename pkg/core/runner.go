package core

import "math"

// RunStats summarizes a walk's accumulated totals. Coverage is the fraction
// of distinct fragments visited over the entire path since the state was
// created or last reset, rounded to three decimals (so full coverage is
// exactly 1.0).
type RunStats struct {
	Steps         int     `json:"steps"`
	Snaps         int     `json:"snaps"`
	Coverage      float64 `json:"coverage"`
	UniqueVisited int     `json:"unique_visited"`
}

// Run advances the walk by n steps and returns the accumulated totals.
// Steps execute strictly in sequence; n = 0 returns the current totals
// unchanged, and negative n is treated as zero.
func (e *Engine) Run(n int) RunStats {
	for i := 0; i < n; i++ {
		e.Step()
	}
	return e.Stats()
}

// Stats returns the walk's accumulated totals without stepping.
func (e *Engine) Stats() RunStats {
	unique := make(map[string]struct{}, len(e.state.Path))
	for _, id := range e.state.Path {
		unique[id] = struct{}{}
	}
	coverage := float64(len(unique)) / float64(len(e.graph.nodes))
	return RunStats{
		Steps:         e.state.Step,
		Snaps:         len(e.state.Snaps),
		Coverage:      math.Round(coverage*1000) / 1000,
		UniqueVisited: len(unique),
	}
}
