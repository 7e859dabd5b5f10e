package period

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDay(t *testing.T) {
	r, err := Day("2024-03-15")
	require.NoError(t, err)

	assert.Equal(t, "2024-03-15T00:00:00.000Z", FormatISO(r.Start))
	assert.Equal(t, "2024-03-16T00:00:00.000Z", FormatISO(r.End))
}

func TestDayCrossesMonthAndYear(t *testing.T) {
	r, err := Day("2023-12-31")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-01T00:00:00.000Z", FormatISO(r.End))

	r, err = Day("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01T00:00:00.000Z", FormatISO(r.End))
}

func TestWeek(t *testing.T) {
	tests := []struct {
		date      string
		wantStart string
		wantEnd   string
	}{
		{"2024-01-01", "2024-01-01T00:00:00.000Z", "2024-01-08T00:00:00.000Z"}, // Monday
		{"2024-01-03", "2024-01-01T00:00:00.000Z", "2024-01-08T00:00:00.000Z"}, // Wednesday
		{"2024-01-06", "2024-01-01T00:00:00.000Z", "2024-01-08T00:00:00.000Z"}, // Saturday
		{"2024-01-07", "2024-01-01T00:00:00.000Z", "2024-01-08T00:00:00.000Z"}, // Sunday
		{"2024-01-08", "2024-01-08T00:00:00.000Z", "2024-01-15T00:00:00.000Z"}, // next Monday
		{"2023-12-31", "2023-12-25T00:00:00.000Z", "2024-01-01T00:00:00.000Z"}, // Sunday, year end
		{"2024-03-01", "2024-02-26T00:00:00.000Z", "2024-03-04T00:00:00.000Z"}, // leap February
	}

	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			r, err := Week(tt.date)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStart, FormatISO(r.Start))
			assert.Equal(t, tt.wantEnd, FormatISO(r.End))
			assert.Equal(t, time.Monday, r.Start.Weekday())
		})
	}
}

func TestWeekLastInstant(t *testing.T) {
	r, err := Week("2024-01-07")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-07T23:59:59.999Z", FormatISO(r.LastInstant()))
}

func TestWeekContainsEveryDayOfItsWeek(t *testing.T) {
	start, err := ParseDate("2024-01-01")
	require.NoError(t, err)

	for i := 0; i < 7; i++ {
		d := start.AddDate(0, 0, i)
		r := WeekOf(d)
		assert.True(t, r.Contains(d), "day %d", i)
		assert.Equal(t, start, r.Start)
	}
	assert.False(t, WeekOf(start).Contains(start.AddDate(0, 0, 7)))
}

func TestContainsIsHalfOpen(t *testing.T) {
	r, err := Day("2024-03-15")
	require.NoError(t, err)

	assert.True(t, r.Contains(r.Start))
	assert.True(t, r.Contains(r.LastInstant()))
	assert.False(t, r.Contains(r.End))
	assert.False(t, r.Contains(r.Start.Add(-time.Nanosecond)))
}

func TestParseDateRejects(t *testing.T) {
	bad := []string{
		"",
		"2024-3-15",
		"2024/03/15",
		"15-03-2024",
		"2024-03-15T00:00:00Z",
		" 2024-03-15",
		"2024-02-30",
		"2024-13-01",
		"abcd-ef-gh",
		"0000-01-01",
		"0000-12-31",
	}
	for _, s := range bad {
		t.Run(s, func(t *testing.T) {
			_, err := ParseDate(s)
			assert.ErrorIs(t, err, ErrInvalidDateFormat)

			_, err = Week(s)
			assert.ErrorIs(t, err, ErrInvalidDateFormat)
		})
	}
}

func TestParseDateEarliestYear(t *testing.T) {
	d, err := ParseDate("0001-01-01")
	require.NoError(t, err)
	assert.Equal(t, 1, d.Year())
}

func TestWeekOfNonUTCInput(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*60*60)
	// Monday 2024-01-08 05:00 in UTC+10 is still Sunday 2024-01-07 in UTC.
	in := time.Date(2024, 1, 8, 5, 0, 0, 0, loc)

	r := WeekOf(in)
	assert.Equal(t, "2024-01-01T00:00:00.000Z", FormatISO(r.Start))
}

func TestFormatDate(t *testing.T) {
	d, err := ParseDate("2024-03-15")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-15", FormatDate(d))
}
