package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func fixedBlock(id, start, end string) Block {
	return Block{ID: id, Kind: KindCalendarEvent, Title: id, Start: start, End: end, Duration: SpanMinutes(start, end)}
}

func TestSlotFreeStandardOverlap(t *testing.T) {
	blocks := []Block{fixedBlock("meeting", "10:00", "11:00")}

	assert.True(t, slotFree(mustClock("11:00"), 30, blocks, 0), "back to back is allowed")
	assert.False(t, slotFree(mustClock("10:30"), 30, blocks, 0))
	assert.False(t, slotFree(mustClock("09:45"), 30, blocks, 0))
}

func TestSlotFreeHonoursBuffer(t *testing.T) {
	blocks := []Block{fixedBlock("meeting", "10:00", "11:00")}

	assert.False(t, slotFree(mustClock("11:15"), 30, blocks, 30))
	assert.True(t, slotFree(mustClock("11:30"), 30, blocks, 30))
}

func TestSlotFreeOvernightBlock(t *testing.T) {
	sleep := Block{ID: "sleep", Kind: KindSleep, Title: "Sleep", Start: "22:30", End: "06:30", Duration: 480}
	blocks := []Block{sleep}

	assert.False(t, slotFree(mustClock("23:00"), 30, blocks, 0), "night segment")
	assert.False(t, slotFree(mustClock("06:00"), 30, blocks, 0), "morning segment")
	assert.True(t, slotFree(mustClock("06:30"), 30, blocks, 0))
	assert.True(t, slotFree(mustClock("12:00"), 60, blocks, 0))
}

func TestSlotFreeSkipsAllDayBlocks(t *testing.T) {
	holiday := Block{ID: "holiday", Kind: KindCalendarEvent, Title: "Holiday", Start: "00:00", End: "00:00", AllDay: true}
	assert.True(t, slotFree(mustClock("09:00"), 60, []Block{holiday}, 0))
}
