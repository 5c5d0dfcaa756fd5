package scheduler

import "strings"

// Kind identifies what a block occupies the day with.
type Kind string

const (
	KindSleep         Kind = "sleep"
	KindCalendarEvent Kind = "calendar_event"
	KindMeal          Kind = "meal_eating"
	KindWorkout       Kind = "workout"
	KindSnack         Kind = "snack"
)

// Priority ranks how movable a block is. Lower ranks are placed earlier and
// never moved to accommodate later placements.
type Priority int

const (
	PrioritySleep Priority = iota + 1
	PriorityCalendar
	PriorityMeal
	PriorityWorkout
	PrioritySnack
)

// Block is the uniform representation of anything occupying time in the day.
type Block struct {
	ID          string   `json:"id"`
	Kind        Kind     `json:"type"`
	Title       string   `json:"title"`
	Start       string   `json:"startTime"`
	End         string   `json:"endTime"`
	Duration    int      `json:"duration"`
	Priority    Priority `json:"priority"`
	Flexibility float64  `json:"flexibility"`
	AllDay      bool     `json:"isAllDay"`
	Status      string   `json:"status,omitempty"`
}

// StartMinutes returns the block start as minutes since midnight.
func (b Block) StartMinutes() int { return mustClock(b.Start) }

// EndMinutes returns the block end as minutes since midnight.
func (b Block) EndMinutes() int { return mustClock(b.End) }

// Overnight reports whether the block wraps past midnight. Only sleep blocks
// are expected to wrap; everything else is placed inside a single day.
func (b Block) Overnight() bool {
	return b.EndMinutes() <= b.StartMinutes()
}

// MealSlot labels which anchored meal a meal_eating block represents.
type MealSlot string

const (
	SlotBreakfast MealSlot = "breakfast"
	SlotLunch     MealSlot = "lunch"
	SlotDinner    MealSlot = "dinner"
	SlotSnack     MealSlot = "snack"
)

// ClassifyMeal maps a meal title onto its slot by case-insensitive keyword
// match. This mirrors the convention of the meal-content subsystem: anything
// that is not recognisably breakfast, lunch or dinner is treated as a snack,
// so a meal literally titled "Brunch" falls through to snack.
func ClassifyMeal(title string) MealSlot {
	lowered := strings.ToLower(title)
	switch {
	case strings.Contains(lowered, "breakfast"):
		return SlotBreakfast
	case strings.Contains(lowered, "lunch"):
		return SlotLunch
	case strings.Contains(lowered, "dinner"):
		return SlotDinner
	default:
		return SlotSnack
	}
}

// replaceByID swaps the block carrying the same ID in place and reports
// whether a match was found. Mutating by identifier rather than positional
// index keeps the cascading dinner shift from corrupting other entries.
func replaceByID(blocks []Block, updated Block) bool {
	for i := range blocks {
		if blocks[i].ID == updated.ID {
			blocks[i] = updated
			return true
		}
	}
	return false
}

// removeByID returns a copy of blocks without the identified entry.
func removeByID(blocks []Block, id string) []Block {
	result := make([]Block, 0, len(blocks))
	for _, b := range blocks {
		if b.ID != id {
			result = append(result, b)
		}
	}
	return result
}
