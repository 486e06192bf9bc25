package core

import (
	"math"

	"github.com/xnoubis/rosetta/pkg/core/text"
)

const (
	// snapLag is how many entries back the entropy comparison reaches:
	// the detector compares the newest entropy against the value exactly
	// four steps earlier (the fifth-from-last history entry).
	snapLag = 5
	// snapThreshold is the minimum entropy drop for a snap. Strictly
	// greater-than: a drop of exactly 0.08 does not fire.
	snapThreshold = 0.08
	// snapPreviewLen bounds the content excerpt stored in a snap record.
	snapPreviewLen = 80
)

// detectSnap inspects the tail of the entropy history and returns a snap
// record if the newest value dropped sharply relative to snapLag entries
// back. It is a pure function of the history window; step is the walk's
// step counter at detection time and node the fragment just entered.
func detectSnap(hist []float64, step int, node *Fragment) *Snap {
	if len(hist) < snapLag {
		return nil
	}
	delta := hist[len(hist)-snapLag] - hist[len(hist)-1]
	if delta <= snapThreshold {
		return nil
	}
	return &Snap{
		Step:    step,
		Delta:   math.Round(delta*10000) / 10000,
		Node:    node.ID,
		Preview: text.Truncate(node.Content, snapPreviewLen),
	}
}
