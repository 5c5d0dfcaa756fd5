package scheduler

// overlaps is the standard half-open interval overlap test.
func overlaps(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && aEnd > bStart
}

// slotFree reports whether a candidate interval [start, start+duration) keeps
// at least buffer minutes of distance from every placed block. Candidates are
// assumed not to wrap midnight; blocks that do (sleep) are tested as a night
// segment [start, 1440) plus a morning segment [0, end).
func slotFree(start, duration int, blocks []Block, buffer int) bool {
	candStart := start - buffer
	candEnd := start + duration + buffer

	for _, b := range blocks {
		if b.AllDay {
			continue
		}
		blockStart := b.StartMinutes()
		blockEnd := b.EndMinutes()

		if b.Overnight() {
			if overlaps(candStart, candEnd, blockStart, minutesPerDay) {
				return false
			}
			if overlaps(candStart, candEnd, 0, blockEnd) {
				return false
			}
			continue
		}

		if overlaps(candStart, candEnd, blockStart, blockEnd) {
			return false
		}
	}
	return true
}
