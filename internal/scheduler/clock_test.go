package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClock(t *testing.T) {
	cases := map[string]int{
		"00:00": 0,
		"06:30": 390,
		"12:00": 720,
		"23:59": 1439,
	}
	for value, want := range cases {
		got, err := ParseClock(value)
		require.NoError(t, err)
		assert.Equal(t, want, got, value)
	}
}

func TestParseClockRejectsMalformed(t *testing.T) {
	for _, value := range []string{"", "12", "24:00", "11:60", "ab:cd", "7:5x"} {
		_, err := ParseClock(value)
		assert.Error(t, err, value)
	}
}

func TestFormatClockWraps(t *testing.T) {
	assert.Equal(t, "00:30", FormatClock(30))
	assert.Equal(t, "00:00", FormatClock(1440))
	assert.Equal(t, "23:45", FormatClock(-15))
}

func TestAddClock(t *testing.T) {
	assert.Equal(t, "10:15", AddClock("09:45", 30))
	assert.Equal(t, "00:15", AddClock("23:45", 30))
}

func TestSpanMinutesOvernight(t *testing.T) {
	assert.Equal(t, 90, SpanMinutes("10:00", "11:30"))
	assert.Equal(t, 480, SpanMinutes("22:30", "06:30"))
	assert.Equal(t, 1440, SpanMinutes("08:00", "08:00"))
}
