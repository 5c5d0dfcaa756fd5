package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNearestSlotPrefersTarget(t *testing.T) {
	start, ok := nearestSlot(mustClock("12:00"), mustClock("11:00"), mustClock("14:00"), 30, nil)
	require.True(t, ok)
	assert.Equal(t, mustClock("12:00"), start)
}

func TestNearestSlotPrefersEarlierOnTie(t *testing.T) {
	blocks := []Block{fixedBlock("blocker", "11:45", "12:45")}
	start, ok := nearestSlot(mustClock("12:00"), mustClock("10:00"), mustClock("14:00"), 30, blocks)
	require.True(t, ok)
	// 11:15 and 12:45 are both free at equal offsets along the scan; the
	// earlier candidate must win.
	assert.Equal(t, mustClock("11:15"), start)
}

func TestNearestSlotScansOutward(t *testing.T) {
	blocks := []Block{fixedBlock("blocker", "10:00", "13:00")}
	start, ok := nearestSlot(mustClock("12:00"), mustClock("10:00"), mustClock("15:00"), 30, blocks)
	require.True(t, ok)
	assert.Equal(t, mustClock("13:00"), start)
}

func TestNearestSlotExhaustsRange(t *testing.T) {
	blocks := []Block{fixedBlock("blocker", "10:00", "15:00")}
	_, ok := nearestSlot(mustClock("12:00"), mustClock("10:30"), mustClock("14:30"), 30, blocks)
	assert.False(t, ok)
}

func TestNearestSlotRespectsRangeEnd(t *testing.T) {
	// A candidate whose end would spill past hi must be rejected even if free.
	start, ok := nearestSlot(mustClock("13:45"), mustClock("10:00"), mustClock("14:00"), 30, nil)
	require.True(t, ok)
	assert.Equal(t, mustClock("13:30"), start)
}
