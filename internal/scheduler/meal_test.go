package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMeal(id, title string) Block {
	return Block{ID: id, Kind: KindMeal, Title: title, Duration: 30}
}

func TestAnchorMealAtTarget(t *testing.T) {
	window := DefaultMealWindows()[SlotLunch]
	outcome := anchorMeal(testMeal("lunch-1", "Lunch"), window, nil, nil, 0)

	require.True(t, outcome.placed)
	assert.Equal(t, "12:00", outcome.block.Start)
	assert.Equal(t, "12:30", outcome.block.End)
	assert.Equal(t, KindMeal, outcome.block.Kind)
	assert.Equal(t, PriorityMeal, outcome.block.Priority)
	assert.InDelta(t, 0.5, outcome.block.Flexibility, 1e-9)
	assert.Empty(t, outcome.warning)
}

func TestAnchorMealWindowedScanWarnsOnLargeDrift(t *testing.T) {
	window := MealWindow{Target: "12:00", FlexStart: "10:00", FlexEnd: "14:30", Duration: 30, MinGapAfter: 180}
	blocks := []Block{fixedBlock("meeting", "11:00", "13:30")}

	outcome := anchorMeal(testMeal("lunch-1", "Lunch"), window, blocks, nil, 0)
	require.True(t, outcome.placed)
	// Nearest open start is 10:30, ninety minutes before the target.
	assert.Equal(t, "10:30", outcome.block.Start)
	assert.Contains(t, outcome.warning, "1 hour")
}

func TestAnchorMealEmergencyExpansion(t *testing.T) {
	window := MealWindow{Target: "12:00", FlexStart: "11:00", FlexEnd: "14:00", Duration: 30, MinGapAfter: 180}
	blocks := []Block{fixedBlock("meeting", "10:30", "14:00")}

	outcome := anchorMeal(testMeal("lunch-1", "Lunch"), window, blocks, nil, 0)
	require.True(t, outcome.placed)
	assert.Equal(t, "14:00", outcome.block.Start)
	assert.Contains(t, outcome.warning, "outside normal window")
}

func TestAnchorMealNarrowWindowFails(t *testing.T) {
	window := DefaultMealWindows()[SlotBreakfast]
	fasting := &Window{Start: "12:00", End: "20:00"}

	outcome := anchorMeal(testMeal("breakfast-1", "Breakfast"), window, nil, fasting, 0)
	assert.False(t, outcome.placed)
	assert.Contains(t, outcome.reason, "too narrow")
}

func TestAnchorMealHonoursGapFloor(t *testing.T) {
	window := DefaultMealWindows()[SlotLunch]
	// Previous meal ended at 09:00 with a 180 minute gap: floor is 12:00.
	outcome := anchorMeal(testMeal("lunch-1", "Lunch"), window, nil, nil, mustClock("12:00"))
	require.True(t, outcome.placed)
	assert.Equal(t, "12:00", outcome.block.Start)

	outcome = anchorMeal(testMeal("lunch-1", "Lunch"), window, nil, nil, mustClock("13:00"))
	require.True(t, outcome.placed)
	assert.GreaterOrEqual(t, mustClock(outcome.block.Start), mustClock("13:00"))
}

func TestAnchorMealDayTooPacked(t *testing.T) {
	window := MealWindow{Target: "12:00", FlexStart: "11:00", FlexEnd: "14:00", Duration: 30, MinGapAfter: 180}
	blocks := []Block{fixedBlock("meeting", "10:00", "15:00")}

	outcome := anchorMeal(testMeal("lunch-1", "Lunch"), window, blocks, nil, 0)
	assert.False(t, outcome.placed)
	assert.Contains(t, outcome.reason, "too packed")
}

func TestClassifyMeal(t *testing.T) {
	assert.Equal(t, SlotBreakfast, ClassifyMeal("Protein Breakfast Bowl"))
	assert.Equal(t, SlotLunch, ClassifyMeal("lunch wrap"))
	assert.Equal(t, SlotDinner, ClassifyMeal("Family DINNER"))
	assert.Equal(t, SlotSnack, ClassifyMeal("Brunch"))
	assert.Equal(t, SlotSnack, ClassifyMeal("Apple"))
}
