package scheduler

import (
	"fmt"
	"sort"
	"time"
)

// Window is a start/end pair of wall-clock strings.
type Window struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Preferences carries the user settings the engine consumes. Only wake and
// sleep times influence placement; the rest flows through to stats and the
// presentation layer.
type Preferences struct {
	WakeTime         string   `json:"wakeTime"`
	SleepTime        string   `json:"sleepTime"`
	EnergyPeak       string   `json:"energyPeak"`
	FlexibilityLevel string   `json:"flexibilityLevel"`
	CalendarSync     bool     `json:"calendarSync"`
	PriorityTags     []string `json:"priorityTags"`
}

// Request is the immutable input for one scheduling run.
type Request struct {
	Date           time.Time
	CalendarEvents []Block
	SleepWindow    Window
	EatingWindow   *Window
	Meals          []Block
	Workout        *Block
	Preferences    Preferences
	MealWindows    map[MealSlot]MealWindow
}

// Timeline is the assembled day view.
type Timeline struct {
	Date                  string  `json:"date"`
	DayOfWeek             string  `json:"dayOfWeek"`
	Blocks                []Block `json:"blocks"`
	TotalScheduledMinutes int     `json:"totalScheduledMinutes"`
	TotalFreeMinutes      int     `json:"totalFreeMinutes"`
	CompletionRate        float64 `json:"completionRate"`
}

// Result is the outcome of a scheduling run. Success is true iff the final
// pairwise validation found zero conflicts.
type Result struct {
	Success     bool       `json:"success"`
	Timeline    Timeline   `json:"timeline"`
	Conflicts   []Conflict `json:"conflicts"`
	Warnings    []string   `json:"warnings"`
	Suggestions []string   `json:"suggestions"`
}

// BuildDayPlan arranges the requested activities into a conflict-free daily
// timeline. It is a single-shot, deterministic computation: it never reads the
// wall clock beyond the request date, touches no shared state, and converts
// any internal panic into a failed result instead of throwing to the caller.
func BuildDayPlan(req Request) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			result = Result{
				Success: false,
				Timeline: Timeline{
					Date:      req.Date.Format("2006-01-02"),
					DayOfWeek: req.Date.Weekday().String(),
					Blocks:    []Block{},
				},
				Conflicts:   []Conflict{},
				Warnings:    []string{fmt.Sprintf("scheduling aborted: %v", r)},
				Suggestions: []string{},
			}
		}
	}()

	state := newDayState(req)
	state.placeSleep()
	state.placeCalendarEvents()
	state.anchorMeals()
	state.placeWorkout()
	state.fillSnacks()

	return state.result()
}

// dayState is the function-local working set for one run.
type dayState struct {
	req         Request
	placed      []Block
	warnings    []string
	windows     map[MealSlot]MealWindow
	minNextMeal int
	dinnerID    string
	wake        int
	sleep       int
}

func newDayState(r Request) *dayState {
	prefs := r.Preferences
	if prefs.WakeTime == "" {
		prefs.WakeTime = "06:30"
	}
	if prefs.SleepTime == "" {
		prefs.SleepTime = "22:30"
	}
	r.Preferences = prefs

	windows := r.MealWindows
	if len(windows) == 0 {
		windows = DefaultMealWindows()
	}

	return &dayState{
		req:      r,
		placed:   make([]Block, 0, len(r.CalendarEvents)+len(r.Meals)+4),
		warnings: make([]string, 0),
		windows:  windows,
		wake:     mustClock(prefs.WakeTime),
		sleep:    mustClock(prefs.SleepTime),
	}
}

func (s *dayState) placeSleep() {
	window := s.req.SleepWindow
	if window.Start == "" || window.End == "" {
		window = Window{Start: s.req.Preferences.SleepTime, End: s.req.Preferences.WakeTime}
	}
	s.placed = append(s.placed, Block{
		ID:       "sleep-" + s.req.Date.Format("2006-01-02"),
		Kind:     KindSleep,
		Title:    "Sleep",
		Start:    window.Start,
		End:      window.End,
		Duration: SpanMinutes(window.Start, window.End),
		Priority: PrioritySleep,
	})
}

func (s *dayState) placeCalendarEvents() {
	for _, event := range s.req.CalendarEvents {
		event.Kind = KindCalendarEvent
		event.Priority = PriorityCalendar
		if !event.AllDay {
			event.Duration = SpanMinutes(event.Start, event.End)
		}
		s.placed = append(s.placed, event)
	}
}

// anchorMeals places breakfast, lunch and dinner in fixed order. A failed meal
// is reported as a warning and skipped; later meals keep chaining from the end
// of whatever was last successfully placed.
func (s *dayState) anchorMeals() {
	classified := make(map[MealSlot][]Block)
	for _, meal := range s.req.Meals {
		slot := ClassifyMeal(meal.Title)
		classified[slot] = append(classified[slot], meal)
	}

	for _, slot := range []MealSlot{SlotBreakfast, SlotLunch, SlotDinner} {
		window, ok := s.windows[slot]
		if !ok {
			continue
		}
		for _, meal := range classified[slot] {
			outcome := anchorMeal(meal, window, s.placed, s.req.EatingWindow, s.minNextMeal)
			if !outcome.placed {
				s.warnings = append(s.warnings, outcome.reason)
				continue
			}
			s.placed = append(s.placed, outcome.block)
			s.minNextMeal = outcome.block.EndMinutes() + window.MinGapAfter
			if slot == SlotDinner {
				s.dinnerID = outcome.block.ID
			}
			if outcome.warning != "" {
				s.warnings = append(s.warnings, outcome.warning)
			}
		}
	}
}

func (s *dayState) placeWorkout() {
	if s.req.Workout == nil {
		return
	}
	var dinner *Block
	for i := range s.placed {
		if s.placed[i].ID == s.dinnerID && s.dinnerID != "" {
			dinner = &s.placed[i]
			break
		}
	}

	outcome := placeWorkout(*s.req.Workout, s.placed, dinner, s.windows[SlotDinner])
	s.warnings = append(s.warnings, outcome.warnings...)
	if !outcome.placed {
		s.warnings = append(s.warnings, outcome.reason)
		return
	}
	if outcome.shiftedDinner != nil {
		replaceByID(s.placed, *outcome.shiftedDinner)
	}
	s.placed = append(s.placed, outcome.block)
}

func (s *dayState) fillSnacks() {
	var candidates []Block
	for _, meal := range s.req.Meals {
		if ClassifyMeal(meal.Title) == SlotSnack {
			candidates = append(candidates, meal)
		}
	}
	s.placed = append(s.placed, fillSnacks(candidates, s.placed, s.wake, s.sleep)...)
}

func (s *dayState) result() Result {
	blocks := make([]Block, len(s.placed))
	copy(blocks, s.placed)
	sort.SliceStable(blocks, func(i, j int) bool {
		return blocks[i].StartMinutes() < blocks[j].StartMinutes()
	})

	conflicts := findConflicts(blocks)
	scheduled := scheduledMinutes(blocks)
	awake := SpanMinutes(s.req.Preferences.WakeTime, s.req.Preferences.SleepTime)
	free := awake - scheduled
	if free < 0 {
		free = 0
	}

	return Result{
		Success: len(conflicts) == 0,
		Timeline: Timeline{
			Date:                  s.req.Date.Format("2006-01-02"),
			DayOfWeek:             s.req.Date.Weekday().String(),
			Blocks:                blocks,
			TotalScheduledMinutes: scheduled,
			TotalFreeMinutes:      free,
			CompletionRate:        completionRate(blocks),
		},
		Conflicts:   conflicts,
		Warnings:    s.warnings,
		Suggestions: []string{},
	}
}
