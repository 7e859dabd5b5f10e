// Package period computes the half-open UTC ranges used to bucket time
// entries into calendar days and Monday-start weeks.
package period

import (
	"errors"
	"regexp"
	"time"
)

const (
	// DateLayout is the only accepted calendar date format.
	DateLayout = "2006-01-02"
	// ISOMillis renders instants the way API responses expose them.
	ISOMillis = "2006-01-02T15:04:05.000Z07:00"
)

var ErrInvalidDateFormat = errors.New("invalid date format, use YYYY-MM-DD")

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Range is a half-open interval [Start, End).
type Range struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the range.
func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.Start) && t.Before(r.End)
}

// LastInstant is the inclusive end shown to users: one millisecond before End.
func (r Range) LastInstant() time.Time {
	return r.End.Add(-time.Millisecond)
}

// ParseDate parses a YYYY-MM-DD string into midnight UTC of that day.
// Strings that match the pattern but name a non-existent day (2024-02-30)
// or year zero, which Postgres has no date for, are rejected as well.
func ParseDate(s string) (time.Time, error) {
	if !datePattern.MatchString(s) {
		return time.Time{}, ErrInvalidDateFormat
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil || t.Year() < 1 {
		return time.Time{}, ErrInvalidDateFormat
	}
	return t.UTC(), nil
}

// Day returns [date 00:00 UTC, date+1 00:00 UTC).
func Day(s string) (Range, error) {
	d, err := ParseDate(s)
	if err != nil {
		return Range{}, err
	}
	return DayOf(d), nil
}

// DayOf returns the day range containing t, in UTC.
func DayOf(t time.Time) Range {
	t = t.UTC()
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return Range{Start: start, End: start.AddDate(0, 0, 1)}
}

// Week returns the Monday-start week containing the date: from that Monday
// 00:00 UTC up to the following Monday 00:00 UTC.
func Week(s string) (Range, error) {
	d, err := ParseDate(s)
	if err != nil {
		return Range{}, err
	}
	return WeekOf(d), nil
}

// WeekOf returns the Monday-start week range containing t, in UTC.
func WeekOf(t time.Time) Range {
	day := DayOf(t).Start
	// time.Weekday: Sunday=0 .. Saturday=6
	daysToMonday := (int(day.Weekday()) + 6) % 7
	start := day.AddDate(0, 0, -daysToMonday)
	return Range{Start: start, End: start.AddDate(0, 0, 7)}
}

// FormatISO renders t in UTC as 2024-01-01T00:00:00.000Z.
func FormatISO(t time.Time) string {
	return t.UTC().Format(ISOMillis)
}

// FormatDate renders t in UTC as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}
