package domain

import (
	"strconv"
	"strings"
	"time"
)

// YearMonth identifies one calendar month.
type YearMonth struct {
	Year  int
	Month time.Month
}

// ParseMonth parses "YYYY-MM". The second return value is false for anything
// that is not two integers separated by a single dash with a month in 1..12.
func ParseMonth(s string) (YearMonth, bool) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) != 2 {
		return YearMonth{}, false
	}
	year, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || year < 1 {
		return YearMonth{}, false
	}
	month, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || month < 1 || month > 12 {
		return YearMonth{}, false
	}
	return YearMonth{Year: year, Month: time.Month(month)}, true
}

// Bounds returns the half-open [start, end) interval of the month in loc.
func (ym YearMonth) Bounds(loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = time.UTC
	}
	return StartOfDay(ym.Year, ym.Month, 1, loc), StartOfDay(ym.Year, ym.Month+1, 1, loc)
}

func (ym YearMonth) String() string {
	return time.Date(ym.Year, ym.Month, 1, 0, 0, 0, 0, time.UTC).Format("2006-01")
}

// CivilDate returns t's wall-clock date as midnight UTC. Keys built this way
// never shift, even in zones where local midnight is skipped.
func CivilDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// StartOfDay returns the first instant of the given date in loc. When a
// daylight saving jump skips midnight this is the moment of the jump.
func StartOfDay(year int, month time.Month, day int, loc *time.Location) time.Time {
	want := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	t := time.Date(want.Year(), want.Month(), want.Day(), 0, 0, 0, 0, loc)
	if CivilDate(t).Equal(want) {
		return t
	}
	// midnight fell into a gap and was normalized back into the previous day
	if _, end := t.ZoneBounds(); !end.IsZero() && CivilDate(end).Equal(want) {
		return end
	}
	return t
}
