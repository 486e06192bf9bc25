package server

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/btree"

	"github.com/xnoubis/rosetta/pkg/core"
)

// RunReport records one completed batch walk triggered over the API.
type RunReport struct {
	ID         string        `json:"id"`
	StartedAt  time.Time     `json:"started_at"`
	DurationMs int64         `json:"duration_ms"`
	Requested  int           `json:"requested_steps"`
	NewSnaps   int           `json:"new_snaps"`
	Stats      core.RunStats `json:"stats"`
}

// runRegistry keeps reports ordered by start time so listing returns them
// newest first without sorting on every request.
type runRegistry struct {
	mu   sync.RWMutex
	tree *btree.BTreeG[RunReport]
}

func runReportLess(a, b RunReport) bool {
	if !a.StartedAt.Equal(b.StartedAt) {
		return a.StartedAt.Before(b.StartedAt)
	}
	// Same-instant reports fall back to the ID for a total order.
	return a.ID < b.ID
}

func newRunRegistry() *runRegistry {
	return &runRegistry{tree: btree.NewBTreeG[RunReport](runReportLess)}
}

// Add registers a report, assigning it a fresh ID, and returns it.
func (r *runRegistry) Add(report RunReport) RunReport {
	report.ID = uuid.New().String()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.tree.Set(report)
	return report
}

// List returns up to limit reports, most recent first. A non-positive
// limit returns everything.
func (r *runRegistry) List(limit int) []RunReport {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reports := make([]RunReport, 0, r.tree.Len())
	r.tree.Reverse(func(item RunReport) bool {
		reports = append(reports, item)
		return limit <= 0 || len(reports) < limit
	})
	return reports
}

// Len reports how many runs are registered.
func (r *runRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tree.Len()
}
