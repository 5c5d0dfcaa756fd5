package scheduler

// scanStep is the fixed increment used when probing for open slots.
const scanStep = 15

// nearestSlot finds the open start time closest to target within [lo, hi].
// The target itself is tried first; afterwards the scan alternates outward in
// 15-minute increments, preferring the earlier candidate when both sides of an
// equal offset are free. Returns ok=false when the range is exhausted.
func nearestSlot(target, lo, hi, duration int, blocks []Block) (int, bool) {
	fits := func(start int) bool {
		return start >= lo && start+duration <= hi && slotFree(start, duration, blocks, 0)
	}

	if fits(target) {
		return target, true
	}

	maxOffset := target - lo
	if hi-target > maxOffset {
		maxOffset = hi - target
	}

	for offset := scanStep; offset <= maxOffset; offset += scanStep {
		if earlier := target - offset; fits(earlier) {
			return earlier, true
		}
		if later := target + offset; fits(later) {
			return later, true
		}
	}
	return 0, false
}
