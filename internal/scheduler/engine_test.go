package scheduler

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDate(t *testing.T) time.Time {
	t.Helper()
	date, err := time.Parse("2006-01-02", "2025-03-12")
	require.NoError(t, err)
	return date
}

func cleanDayRequest(t *testing.T) Request {
	return Request{
		Date:        testDate(t),
		SleepWindow: Window{Start: "22:30", End: "06:30"},
		Meals: []Block{
			testMeal("meal-1", "Breakfast"),
			testMeal("meal-2", "Lunch"),
			testMeal("meal-3", "Dinner"),
		},
		Workout:     &Block{ID: "workout-1", Kind: KindWorkout, Title: "Strength Training", Duration: 60},
		Preferences: Preferences{WakeTime: "06:30", SleepTime: "22:30"},
	}
}

func blockByID(t *testing.T, timeline Timeline, id string) Block {
	t.Helper()
	for _, b := range timeline.Blocks {
		if b.ID == id {
			return b
		}
	}
	t.Fatalf("block %s not found in timeline", id)
	return Block{}
}

func TestBuildDayPlanCleanDay(t *testing.T) {
	result := BuildDayPlan(cleanDayRequest(t))

	require.True(t, result.Success)
	assert.Empty(t, result.Conflicts)
	assert.Empty(t, result.Warnings)

	assert.Equal(t, "2025-03-12", result.Timeline.Date)
	assert.Equal(t, "Wednesday", result.Timeline.DayOfWeek)

	assert.Equal(t, "08:00", blockByID(t, result.Timeline, "meal-1").Start)
	assert.Equal(t, "12:00", blockByID(t, result.Timeline, "meal-2").Start)
	assert.Equal(t, "18:30", blockByID(t, result.Timeline, "meal-3").Start)

	workout := blockByID(t, result.Timeline, "workout-1")
	assert.GreaterOrEqual(t, workout.StartMinutes(), mustClock("14:00"))
	assert.LessOrEqual(t, workout.StartMinutes(), mustClock("17:00"))
}

func TestBuildDayPlanNoOverlapInvariant(t *testing.T) {
	req := cleanDayRequest(t)
	req.CalendarEvents = []Block{
		fixedBlock("evt-1", "09:00", "10:30"),
		fixedBlock("evt-2", "15:00", "16:00"),
	}
	result := BuildDayPlan(req)

	require.Empty(t, result.Conflicts)
	blocks := result.Timeline.Blocks
	for i := 0; i < len(blocks); i++ {
		for j := i + 1; j < len(blocks); j++ {
			assert.False(t, blocksCollide(blocks[i], blocks[j]),
				"%s overlaps %s", blocks[i].ID, blocks[j].ID)
		}
	}
}

func TestBuildDayPlanDeterminism(t *testing.T) {
	req := cleanDayRequest(t)
	req.CalendarEvents = []Block{fixedBlock("evt-1", "11:00", "14:00")}

	first := BuildDayPlan(req)
	second := BuildDayPlan(req)
	assert.True(t, reflect.DeepEqual(first, second), "identical inputs must yield identical results")
}

func TestBuildDayPlanPackedLunch(t *testing.T) {
	req := cleanDayRequest(t)
	req.CalendarEvents = []Block{fixedBlock("evt-1", "11:00", "14:00")}

	result := BuildDayPlan(req)
	require.True(t, result.Success)

	lunch := blockByID(t, result.Timeline, "meal-2")
	if lunch.StartMinutes() < mustClock("11:00") {
		assert.LessOrEqual(t, lunch.StartMinutes(), mustClock("10:30"))
	} else {
		assert.GreaterOrEqual(t, lunch.StartMinutes(), mustClock("14:00"))
	}
	assert.NotEmpty(t, result.Warnings)
}

func TestBuildDayPlanLateWorkout(t *testing.T) {
	req := cleanDayRequest(t)
	req.CalendarEvents = []Block{fixedBlock("evt-1", "14:00", "17:00")}

	result := BuildDayPlan(req)
	require.True(t, result.Success)

	workout := blockByID(t, result.Timeline, "workout-1")
	assert.GreaterOrEqual(t, workout.StartMinutes(), mustClock("17:00"))
	assert.Less(t, workout.StartMinutes(), mustClock("19:00"))

	dinner := blockByID(t, result.Timeline, "meal-3")
	if dinner.StartMinutes() < workout.EndMinutes()+30 {
		t.Fatalf("dinner at %s sits within 30 minutes of workout end %s", dinner.Start, workout.End)
	}
}

func TestBuildDayPlanCascadingDinnerShift(t *testing.T) {
	req := cleanDayRequest(t)
	req.CalendarEvents = []Block{
		fixedBlock("evt-1", "14:00", "17:00"),
		fixedBlock("evt-2", "17:00", "18:00"),
	}

	result := BuildDayPlan(req)
	require.True(t, result.Success)

	workout := blockByID(t, result.Timeline, "workout-1")
	assert.Equal(t, "18:00", workout.Start)

	dinner := blockByID(t, result.Timeline, "meal-3")
	assert.Equal(t, "19:30", dinner.Start)

	found := false
	for _, w := range result.Warnings {
		if strings.Contains(w, "18:30") && strings.Contains(w, "19:30") {
			found = true
		}
	}
	assert.True(t, found, "expected a warning naming the dinner shift, got %v", result.Warnings)
}

func TestBuildDayPlanFastingWindow(t *testing.T) {
	req := cleanDayRequest(t)
	req.EatingWindow = &Window{Start: "12:00", End: "20:00"}

	result := BuildDayPlan(req)
	require.True(t, result.Success)

	for _, b := range result.Timeline.Blocks {
		if b.Kind != KindMeal {
			continue
		}
		assert.GreaterOrEqual(t, b.StartMinutes(), 720, "%s starts before the eating window", b.ID)
		assert.LessOrEqual(t, b.EndMinutes(), 1200, "%s ends after the eating window", b.ID)
	}
	// Breakfast cannot fit a 12:00-20:00 eating window and is reported, not placed.
	assert.NotEmpty(t, result.Warnings)
	for _, b := range result.Timeline.Blocks {
		assert.NotEqual(t, "meal-1", b.ID)
	}
}

func TestBuildDayPlanSnackCap(t *testing.T) {
	req := cleanDayRequest(t)
	req.Meals = append(req.Meals,
		testMeal("snack-1", "Apple"),
		testMeal("snack-2", "Trail Mix"),
		testMeal("snack-3", "Yogurt"),
	)

	result := BuildDayPlan(req)
	require.True(t, result.Success)

	var snacks []Block
	for _, b := range result.Timeline.Blocks {
		if b.Kind == KindSnack {
			snacks = append(snacks, b)
		}
	}
	require.LessOrEqual(t, len(snacks), 2)
	require.NotEmpty(t, snacks)

	for _, snack := range snacks {
		for _, other := range result.Timeline.Blocks {
			if other.ID == snack.ID || other.AllDay || other.Overnight() {
				continue
			}
			distance := snack.StartMinutes() - other.EndMinutes()
			if other.StartMinutes() > snack.StartMinutes() {
				distance = other.StartMinutes() - snack.EndMinutes()
			}
			assert.GreaterOrEqual(t, distance, 30, "snack %s too close to %s", snack.ID, other.ID)
		}
	}
}

func TestBuildDayPlanAssignsKindsToUntypedInputs(t *testing.T) {
	// Stored meals arrive with only an id, a title and a duration; the engine
	// must classify and type every block it places.
	req := Request{
		Date:        testDate(t),
		SleepWindow: Window{Start: "22:30", End: "06:30"},
		Meals: []Block{
			{ID: "meal-1", Title: "Breakfast", Duration: 30},
			{ID: "meal-2", Title: "Lunch", Duration: 30},
			{ID: "meal-3", Title: "Dinner", Duration: 30},
			{ID: "snack-1", Title: "Apple"},
		},
		Preferences: Preferences{WakeTime: "06:30", SleepTime: "22:30"},
	}

	result := BuildDayPlan(req)
	require.True(t, result.Success)

	for _, b := range result.Timeline.Blocks {
		assert.NotEmpty(t, b.Kind, "block %s has no kind", b.ID)
	}
	assert.Equal(t, KindMeal, blockByID(t, result.Timeline, "meal-1").Kind)
	assert.Equal(t, KindMeal, blockByID(t, result.Timeline, "meal-2").Kind)
	assert.Equal(t, KindMeal, blockByID(t, result.Timeline, "meal-3").Kind)
}

func TestBuildDayPlanMalformedInputFailsSoft(t *testing.T) {
	req := cleanDayRequest(t)
	req.SleepWindow = Window{Start: "25:99", End: "06:30"}

	result := BuildDayPlan(req)
	assert.False(t, result.Success)
	assert.Empty(t, result.Timeline.Blocks)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "scheduling aborted")
}

func TestBuildDayPlanStats(t *testing.T) {
	result := BuildDayPlan(cleanDayRequest(t))

	require.True(t, result.Success)
	// Three 30-minute meals plus a 60-minute workout; sleep never counts.
	assert.Equal(t, 150, result.Timeline.TotalScheduledMinutes)
	awake := SpanMinutes("06:30", "22:30")
	assert.Equal(t, awake-150, result.Timeline.TotalFreeMinutes)
	assert.Zero(t, result.Timeline.CompletionRate)
}
