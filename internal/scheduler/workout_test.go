package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testWorkout(duration int) Block {
	return Block{ID: "workout-1", Kind: KindWorkout, Title: "Workout", Duration: duration}
}

func placedDinner(start, end string) Block {
	b := testMeal("dinner-1", "Dinner")
	b.Start = start
	b.End = end
	b.Duration = SpanMinutes(start, end)
	b.Priority = PriorityMeal
	return b
}

func TestPlaceWorkoutPreferredZone(t *testing.T) {
	dinner := placedDinner("18:30", "19:00")
	placed := []Block{dinner}

	outcome := placeWorkout(testWorkout(60), placed, &dinner, DefaultMealWindows()[SlotDinner])
	require.True(t, outcome.placed)
	assert.Equal(t, "14:00", outcome.block.Start)
	assert.Equal(t, PriorityWorkout, outcome.block.Priority)
	assert.Nil(t, outcome.shiftedDinner)
	assert.Empty(t, outcome.warnings)
}

func TestPlaceWorkoutSecondaryZoneWarnsAboutDinner(t *testing.T) {
	dinner := placedDinner("18:30", "19:00")
	placed := []Block{fixedBlock("meetings", "13:00", "17:15"), dinner}

	outcome := placeWorkout(testWorkout(60), placed, &dinner, DefaultMealWindows()[SlotDinner])
	require.True(t, outcome.placed)
	assert.Equal(t, "17:15", outcome.block.Start)
	// Dinner stays put in this branch; the warning is informational.
	assert.Nil(t, outcome.shiftedDinner)
	require.Len(t, outcome.warnings, 1)
	assert.Contains(t, outcome.warnings[0], "pushed dinner")
}

func TestPlaceWorkoutCascadingDinnerShift(t *testing.T) {
	dinner := placedDinner("18:30", "19:00")
	placed := []Block{
		fixedBlock("afternoon-meetings", "14:00", "17:00"),
		fixedBlock("standup", "17:00", "18:00"),
		dinner,
	}

	outcome := placeWorkout(testWorkout(60), placed, &dinner, DefaultMealWindows()[SlotDinner])
	require.True(t, outcome.placed)
	assert.Equal(t, "18:00", outcome.block.Start)
	require.NotNil(t, outcome.shiftedDinner)
	assert.Equal(t, "19:30", outcome.shiftedDinner.Start)
	assert.Equal(t, "20:00", outcome.shiftedDinner.End)
	require.Len(t, outcome.warnings, 1)
	assert.Contains(t, outcome.warnings[0], "18:30")
	assert.Contains(t, outcome.warnings[0], "19:30")
}

func TestPlaceWorkoutShiftRespectsDinnerWindow(t *testing.T) {
	dinner := placedDinner("18:30", "19:00")
	// Dinner may not start later than 18:45, so the cascading shift to 19:00
	// must be rejected and the workout fails outright.
	window := MealWindow{Target: "18:30", FlexStart: "17:00", FlexEnd: "18:45", Duration: 30, MinGapAfter: 120}
	placed := []Block{fixedBlock("meetings", "13:00", "17:00"), dinner}

	outcome := placeWorkout(testWorkout(120), placed, &dinner, window)
	assert.False(t, outcome.placed)
	assert.Contains(t, outcome.reason, "2-7 PM")
}

func TestPlaceWorkoutDayTooPacked(t *testing.T) {
	placed := []Block{fixedBlock("meetings", "13:00", "20:00")}

	outcome := placeWorkout(testWorkout(60), placed, nil, DefaultMealWindows()[SlotDinner])
	assert.False(t, outcome.placed)
	assert.Contains(t, outcome.reason, "too packed")
}
