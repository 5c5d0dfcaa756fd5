package scheduler

import "fmt"

// Conflict reports two placed blocks that overlap despite placement checks.
type Conflict struct {
	Type    string `json:"type"`
	BlockA  string `json:"blockA"`
	BlockB  string `json:"blockB"`
	Message string `json:"message"`
}

// findConflicts re-checks every pair of placed blocks for overlap. It is an
// independent safety net over the placement-time checks, using the same
// overnight-aware logic with zero buffer.
func findConflicts(blocks []Block) []Conflict {
	conflicts := make([]Conflict, 0)
	for i := 0; i < len(blocks); i++ {
		if blocks[i].AllDay {
			continue
		}
		for j := i + 1; j < len(blocks); j++ {
			if blocks[j].AllDay {
				continue
			}
			if blocksCollide(blocks[i], blocks[j]) {
				conflicts = append(conflicts, Conflict{
					Type:   "overlap",
					BlockA: blocks[i].ID,
					BlockB: blocks[j].ID,
					Message: fmt.Sprintf("%q (%s-%s) overlaps %q (%s-%s)",
						blocks[i].Title, blocks[i].Start, blocks[i].End,
						blocks[j].Title, blocks[j].Start, blocks[j].End),
				})
			}
		}
	}
	return conflicts
}

func blocksCollide(a, b Block) bool {
	if a.Overnight() && !b.Overnight() {
		a, b = b, a
	}
	aStart, aEnd := a.StartMinutes(), a.EndMinutes()
	bStart, bEnd := b.StartMinutes(), b.EndMinutes()

	switch {
	case a.Overnight() && b.Overnight():
		return true // two wrapping blocks always share midnight
	case b.Overnight():
		return overlaps(aStart, aEnd, bStart, minutesPerDay) || overlaps(aStart, aEnd, 0, bEnd)
	default:
		return overlaps(aStart, aEnd, bStart, bEnd)
	}
}

// scheduledMinutes totals the durations of non-sleep, non-all-day blocks.
func scheduledMinutes(blocks []Block) int {
	total := 0
	for _, b := range blocks {
		if b.Kind == KindSleep || b.AllDay {
			continue
		}
		total += b.Duration
	}
	return total
}

// completionRate is the percentage of blocks already marked completed. At
// creation time every block is pending, so a fresh plan always reports 0; the
// field exists so callers resuming a saved timeline can recompute progress.
func completionRate(blocks []Block) float64 {
	if len(blocks) == 0 {
		return 0
	}
	completed := 0
	for _, b := range blocks {
		if b.Status == "completed" {
			completed++
		}
	}
	return float64(completed) / float64(len(blocks)) * 100
}
