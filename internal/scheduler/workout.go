package scheduler

import "fmt"

const (
	workoutPreferredStart = 14 * 60 // 2:00 PM
	workoutPreferredEnd   = 17 * 60 // 5:00 PM
	workoutSecondaryEnd   = 19 * 60 // 7:00 PM
	workoutBuffer         = 30
	dinnerShiftGap        = 30
)

// workoutPlacement is the outcome of placing the workout block.
type workoutPlacement struct {
	block         Block
	placed        bool
	shiftedDinner *Block
	warnings      []string
	reason        string
}

// placeWorkout fits the workout into the afternoon. It tries the preferred
// 2-5 PM zone, then 5-7 PM, and finally attempts to shift an already placed
// dinner later to free room, never pushing dinner outside its own flex window.
func placeWorkout(workout Block, placed []Block, dinner *Block, dinnerWindow MealWindow) workoutPlacement {
	duration := workout.Duration
	if duration <= 0 {
		duration = 60
	}

	finalize := func(start int) Block {
		workout.Start = FormatClock(start)
		workout.End = FormatClock(start + duration)
		workout.Duration = duration
		workout.Kind = KindWorkout
		workout.Priority = PriorityWorkout
		workout.Flexibility = 0.3
		return workout
	}

	if start, ok := scanZone(workoutPreferredStart, workoutPreferredEnd, duration, placed, workoutBuffer); ok {
		return workoutPlacement{block: finalize(start), placed: true}
	}

	// The secondary zone drops the comfort buffer; squeezing in next to an
	// existing block beats not working out at all.
	if start, ok := scanZone(workoutPreferredEnd, workoutSecondaryEnd, duration, placed, 0); ok {
		result := workoutPlacement{block: finalize(start), placed: true}
		if dinner != nil && dinner.StartMinutes() < start+duration+dinnerShiftGap {
			result.warnings = append(result.warnings,
				fmt.Sprintf("workout at %s pushed dinner to a later time", result.block.Start))
		}
		return result
	}

	if dinner != nil {
		withoutDinner := removeByID(placed, dinner.ID)
		if start, ok := scanZone(workoutPreferredEnd, workoutSecondaryEnd, duration, withoutDinner, 0); ok {
			workoutEnd := start + duration
			newDinnerStart := workoutEnd + dinnerShiftGap
			newDinnerEnd := newDinnerStart + dinner.Duration
			if newDinnerStart >= mustClock(dinnerWindow.FlexStart) &&
				newDinnerStart <= mustClock(dinnerWindow.FlexEnd) &&
				slotFree(newDinnerStart, newDinnerEnd-newDinnerStart, withoutDinner, 0) {
				shifted := *dinner
				shifted.Start = FormatClock(newDinnerStart)
				shifted.End = FormatClock(newDinnerEnd)
				shifted.Duration = newDinnerEnd - newDinnerStart
				return workoutPlacement{
					block:         finalize(start),
					placed:        true,
					shiftedDinner: &shifted,
					warnings: []string{fmt.Sprintf("dinner moved from %s to %s to fit the workout",
						dinner.Start, shifted.Start)},
				}
			}
		}
	}

	return workoutPlacement{reason: "unable to fit workout in the 2-7 PM window, day is too packed"}
}

// scanZone walks a zone forward in 15-minute steps looking for a start that
// keeps the requested buffer from every placed block.
func scanZone(zoneStart, zoneEnd, duration int, placed []Block, buffer int) (int, bool) {
	for start := zoneStart; start+duration <= zoneEnd; start += scanStep {
		if slotFree(start, duration, placed, buffer) {
			return start, true
		}
	}
	return 0, false
}
