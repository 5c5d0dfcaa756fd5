package scheduler

import "sort"

const (
	snackDuration = 15
	snackBuffer   = 30
	snackMinGap   = 90
	snackCap      = 2
)

// fillSnacks drops up to two snacks into the largest remaining gaps between
// placed blocks, centered on each gap midpoint with a 30-minute buffer from
// every neighbour. Snacks that find no qualifying gap are silently skipped;
// that is expected throttling, not a failure.
func fillSnacks(snacks []Block, placed []Block, wake, sleep int) []Block {
	if len(snacks) == 0 {
		return nil
	}

	gaps := openGaps(placed, wake, sleep)
	result := make([]Block, 0, snackCap)
	working := placed

	next := 0
	for _, gap := range gaps {
		if len(result) >= snackCap || next >= len(snacks) {
			break
		}
		midpoint := (gap.start + gap.end) / 2
		start := midpoint - snackDuration/2
		if start < gap.start || start+snackDuration > gap.end {
			continue
		}
		if !slotFree(start, snackDuration, working, snackBuffer) {
			continue
		}

		snack := snacks[next]
		next++
		snack.Start = FormatClock(start)
		snack.End = FormatClock(start + snackDuration)
		snack.Duration = snackDuration
		snack.Kind = KindSnack
		snack.Priority = PrioritySnack
		snack.Flexibility = 0.8
		result = append(result, snack)
		working = append(working, snack)
	}
	return result
}

type gap struct {
	start int
	end   int
}

// openGaps lists the free intervals of at least 90 minutes between consecutive
// placed blocks, bounded by the wake and sleep times.
func openGaps(placed []Block, wake, sleep int) []gap {
	type interval struct{ start, end int }
	var occupied []interval
	for _, b := range placed {
		if b.AllDay {
			continue
		}
		start := b.StartMinutes()
		end := b.EndMinutes()
		if b.Overnight() {
			// Only the morning tail of an overnight block lands inside the day.
			occupied = append(occupied, interval{0, end})
			continue
		}
		occupied = append(occupied, interval{start, end})
	}
	sort.Slice(occupied, func(i, j int) bool { return occupied[i].start < occupied[j].start })

	var gaps []gap
	cursor := wake
	for _, iv := range occupied {
		if iv.end <= cursor {
			continue
		}
		if iv.start >= sleep {
			break
		}
		if iv.start-cursor >= snackMinGap {
			gaps = append(gaps, gap{cursor, iv.start})
		}
		if iv.end > cursor {
			cursor = iv.end
		}
	}
	if sleep-cursor >= snackMinGap {
		gaps = append(gaps, gap{cursor, sleep})
	}
	return gaps
}
