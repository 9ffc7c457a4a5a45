package calendar

import (
	"testing"
	"time"
)

func TestDaysBetween(t *testing.T) {
	base := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		to   time.Time
		want int
	}{
		{base, 0},
		{base.AddDate(0, 0, 5), 5},
		{base.AddDate(0, 0, -2), -2},
		{time.Date(2026, time.March, 10, 23, 59, 0, 0, time.UTC), 0},
		{time.Date(2027, time.March, 10, 0, 0, 0, 0, time.UTC), 365},
	}
	for _, tt := range tests {
		if got := DaysBetween(base, tt.to); got != tt.want {
			t.Errorf("DaysBetween(%v) = %d, want %d", tt.to, got, tt.want)
		}
	}
}

func TestDaysBetweenAcrossDST(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("tzdata not available")
	}
	from := time.Date(2026, time.March, 7, 0, 0, 0, 0, loc)
	to := time.Date(2026, time.March, 9, 0, 0, 0, 0, loc)
	if got := DaysBetween(from, to); got != 2 {
		t.Errorf("DaysBetween across DST = %d, want 2", got)
	}
}

func TestMidnightAndDateOnly(t *testing.T) {
	loc := time.FixedZone("UTC-4", -4*3600)
	ts := time.Date(2026, time.June, 1, 2, 30, 0, 0, time.UTC)

	if got := Midnight(ts, loc); got.Day() != 31 || got.Month() != time.May {
		t.Errorf("Midnight = %v, want May 31 local", got)
	}
	// DATE values come back as UTC midnight and must keep their day
	date := time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)
	if got := DateOnly(date, loc); got.Day() != 1 || got.Month() != time.June || got.Location() != loc {
		t.Errorf("DateOnly = %v, want June 1 local", got)
	}
}

func TestDaysInMonth(t *testing.T) {
	tests := map[time.Time]int{
		time.Date(2026, time.February, 10, 0, 0, 0, 0, time.UTC): 28,
		time.Date(2028, time.February, 10, 0, 0, 0, 0, time.UTC): 29,
		time.Date(2026, time.April, 30, 0, 0, 0, 0, time.UTC):    30,
		time.Date(2026, time.December, 1, 0, 0, 0, 0, time.UTC):  31,
	}
	for ts, want := range tests {
		if got := DaysInMonth(ts); got != want {
			t.Errorf("DaysInMonth(%v) = %d, want %d", ts, got, want)
		}
	}
}

func TestSameDay(t *testing.T) {
	a := time.Date(2026, time.June, 1, 1, 0, 0, 0, time.UTC)
	b := time.Date(2026, time.June, 1, 23, 0, 0, 0, time.UTC)
	if !SameDay(a, b, time.UTC) {
		t.Error("expected same day in UTC")
	}
	loc := time.FixedZone("UTC-4", -4*3600)
	if SameDay(a, b, loc) {
		t.Error("expected different days in UTC-4")
	}
}
