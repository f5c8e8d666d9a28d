package pkg

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateToDay(t *testing.T) {
	assert.Equal(t, 20260215, DateToDay(time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 20261231, DateToDay(time.Date(2026, 12, 31, 23, 59, 0, 0, time.UTC)))
	assert.Equal(t, 20260101, DateToDay(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)))
}

func TestDayToDate(t *testing.T) {
	date, err := DayToDate(20260215)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC), date)

	// leap day
	date, err = DayToDate(20280229)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2028, 2, 29, 0, 0, 0, 0, time.UTC), date)

	for _, invalid := range []int{
		0,
		-20260215,
		20261301, // month 13
		20260100, // day 0
		20260230, // feb 30th, normalized away by time.Date
		20270229, // not a leap year
		2026021,  // too short
	} {
		_, err := DayToDate(invalid)
		assert.Error(t, err, "day %d should be rejected", invalid)
	}
}

func TestDayRoundTrip(t *testing.T) {
	date := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 400; i++ {
		day := DateToDay(date)
		back, err := DayToDate(day)
		require.NoError(t, err)
		assert.Equal(t, date, back)
		date = date.AddDate(0, 0, 1)
	}
}

func TestParseDay(t *testing.T) {
	day, err := ParseDay("2026-02-15")
	require.NoError(t, err)
	assert.Equal(t, 20260215, day)

	_, err = ParseDay("15.02.2026")
	assert.Error(t, err)
	_, err = ParseDay("2026-02-30")
	assert.Error(t, err)
}

func TestFormatDay(t *testing.T) {
	assert.Equal(t, "2026-02-15", FormatDay(20260215))
	// invalid values fall back to raw digits
	assert.Equal(t, "20260230", FormatDay(20260230))
}
