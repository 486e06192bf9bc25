package core

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// TrialResult holds the totals of one coverage trial.
type TrialResult struct {
	Trial int      `json:"trial"`
	Stats RunStats `json:"stats"`
}

// CoverageSummary aggregates the per-trial results of a coverage
// evaluation.
type CoverageSummary struct {
	Trials         int     `json:"trials"`
	StepsPerTrial  int     `json:"steps_per_trial"`
	AvgCoverage    float64 `json:"avg_coverage"`
	AvgSnaps       float64 `json:"avg_snaps"`
	CoverageStdDev float64 `json:"coverage_std_dev"`
}

// Reset destructively clears the navigation state: the cursor returns to
// the first fragment in insertion order, the histories are emptied, and
// every fragment's visit count and hue are zeroed. Callers that need the
// live walk afterwards must snapshot it first.
func (e *Engine) Reset() {
	start := e.graph.order[0]
	e.state.Current = start
	e.state.Path = []string{start}
	e.state.Turns = nil
	e.state.EntropyHist = nil
	e.state.Snaps = nil
	e.state.Step = 0
	for _, id := range e.graph.order {
		frag := e.graph.nodes[id]
		frag.Visits = 0
		frag.Hue = 0
	}
}

// EvaluateCoverage runs trials independent fixed-length walks, resetting
// the navigation state before each one, and reports the distribution of
// unique-node coverage and snap counts. Trials share the graph and the
// starting node but draw fresh random values; they execute sequentially.
func (e *Engine) EvaluateCoverage(trials, stepsPerTrial int) ([]TrialResult, CoverageSummary) {
	if trials <= 0 {
		return nil, CoverageSummary{StepsPerTrial: stepsPerTrial}
	}

	results := make([]TrialResult, 0, trials)
	coverages := make([]float64, 0, trials)
	snapCounts := make([]float64, 0, trials)

	for i := 0; i < trials; i++ {
		e.Reset()
		stats := e.Run(stepsPerTrial)
		results = append(results, TrialResult{Trial: i + 1, Stats: stats})
		coverages = append(coverages, stats.Coverage)
		snapCounts = append(snapCounts, float64(stats.Snaps))
	}

	summary := CoverageSummary{
		Trials:        trials,
		StepsPerTrial: stepsPerTrial,
		AvgCoverage:   stat.Mean(coverages, nil),
		AvgSnaps:      stat.Mean(snapCounts, nil),
	}
	if trials > 1 {
		summary.CoverageStdDev = stat.StdDev(coverages, nil)
	}
	if math.IsNaN(summary.CoverageStdDev) {
		summary.CoverageStdDev = 0
	}
	return results, summary
}
