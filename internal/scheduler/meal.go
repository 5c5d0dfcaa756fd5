package scheduler

import "fmt"

// MealWindow holds the static placement parameters for one anchored meal.
type MealWindow struct {
	Target      string `json:"targetTime"`
	FlexStart   string `json:"flexStart"`
	FlexEnd     string `json:"flexEnd"`
	Duration    int    `json:"duration"`
	MinGapAfter int    `json:"minGapAfter"`
}

// DefaultMealWindows returns the standard breakfast, lunch and dinner windows.
// Snacks have no window; they are placed opportunistically.
func DefaultMealWindows() map[MealSlot]MealWindow {
	return map[MealSlot]MealWindow{
		SlotBreakfast: {Target: "08:00", FlexStart: "06:00", FlexEnd: "10:00", Duration: 30, MinGapAfter: 180},
		SlotLunch:     {Target: "12:00", FlexStart: "11:00", FlexEnd: "14:00", Duration: 30, MinGapAfter: 180},
		SlotDinner:    {Target: "18:30", FlexStart: "17:00", FlexEnd: "20:30", Duration: 30, MinGapAfter: 120},
	}
}

// mealPlacement is the outcome of anchoring a single meal.
type mealPlacement struct {
	block   Block
	placed  bool
	warning string
	reason  string
}

// anchorMeal assigns a concrete start to one meal using a three-tier fallback:
// the clamped target, a windowed scan, then an emergency scan over a window
// expanded by 30 minutes each side. minStart is the absolute floor derived
// from the previous meal's end plus its required gap; the fasting window, when
// present, only ever tightens the flex window.
func anchorMeal(meal Block, window MealWindow, placed []Block, eating *Window, minStart int) mealPlacement {
	duration := window.Duration
	if meal.Duration > 0 {
		duration = meal.Duration
	}

	flexStart := mustClock(window.FlexStart)
	flexEnd := mustClock(window.FlexEnd)
	if eating != nil {
		if es := mustClock(eating.Start); es > flexStart {
			flexStart = es
		}
		if ee := mustClock(eating.End); ee < flexEnd {
			flexEnd = ee
		}
	}
	if minStart > flexStart {
		flexStart = minStart
	}

	if flexStart+duration > flexEnd {
		return mealPlacement{reason: fmt.Sprintf("%s window too narrow, day is too packed", meal.Title)}
	}

	target := mustClock(window.Target)
	clamped := target
	if clamped < flexStart {
		clamped = flexStart
	}
	if clamped > flexEnd-duration {
		clamped = flexEnd - duration
	}

	finalize := func(start int, warning string) mealPlacement {
		meal.Start = FormatClock(start)
		meal.End = FormatClock(start + duration)
		meal.Duration = duration
		meal.Kind = KindMeal
		meal.Priority = PriorityMeal
		meal.Flexibility = 0.5
		return mealPlacement{block: meal, placed: true, warning: warning}
	}

	if slotFree(clamped, duration, placed, 0) {
		return finalize(clamped, "")
	}

	if start, ok := nearestSlot(clamped, flexStart, flexEnd, duration, placed); ok {
		warning := ""
		if drift := abs(start - target); drift > 60 {
			warning = fmt.Sprintf("%s moved %d hour(s) from its preferred time", meal.Title, drift/60)
		}
		return finalize(start, warning)
	}

	// Emergency scan: widen by 30 minutes each side but never below the gap floor.
	expandedStart := flexStart - 30
	if expandedStart < minStart {
		expandedStart = minStart
	}
	if expandedStart < 0 {
		expandedStart = 0
	}
	expandedEnd := flexEnd + 30
	if expandedEnd > minutesPerDay {
		expandedEnd = minutesPerDay
	}
	if start, ok := nearestSlot(clamped, expandedStart, expandedEnd, duration, placed); ok {
		return finalize(start, fmt.Sprintf("%s placed outside normal window due to conflicts", meal.Title))
	}

	return mealPlacement{reason: fmt.Sprintf("could not schedule %s, day is too packed", meal.Title)}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
