package engine

import (
	"testing"
	"time"
)

func TestLogicalDayRespectsResetHour(t *testing.T) {
	tests := []struct {
		name  string
		now   time.Time
		reset int
		want  string
	}{
		{name: "before reset", now: time.Date(2026, 2, 10, 3, 59, 0, 0, time.UTC), reset: 4, want: "2026-02-09"},
		{name: "at reset", now: time.Date(2026, 2, 10, 4, 0, 0, 0, time.UTC), reset: 4, want: "2026-02-10"},
		{name: "midnight reset", now: time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC), reset: 0, want: "2026-02-10"},
		{name: "month boundary", now: time.Date(2026, 3, 1, 2, 0, 0, 0, time.UTC), reset: 4, want: "2026-02-28"},
		{name: "year boundary", now: time.Date(2027, 1, 1, 5, 0, 0, 0, time.UTC), reset: 6, want: "2026-12-31"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LogicalDay(tt.now, tt.reset); got != tt.want {
				t.Fatalf("LogicalDay = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestLogicalDateIsPinnedToMidday(t *testing.T) {
	got := LogicalDate(time.Date(2026, 2, 10, 23, 30, 0, 0, time.UTC), 0)
	if got.Hour() != 12 || got.Minute() != 0 {
		t.Fatalf("expected 12:00, got %s", got)
	}
	if got.Weekday() != time.Tuesday {
		t.Fatalf("expected Tuesday, got %s", got.Weekday())
	}
}

func TestLogicalDateAcrossDST(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	// 2026-03-08 is the spring-forward Sunday in New York.
	got := LogicalDate(time.Date(2026, 3, 8, 1, 30, 0, 0, loc), 0)
	if got.Weekday() != time.Sunday || got.Format(DayLayout) != "2026-03-08" {
		t.Fatalf("unexpected logical date %s (%s)", got, got.Weekday())
	}
}

func TestNextBoundary(t *testing.T) {
	before := time.Date(2026, 2, 10, 3, 59, 0, 0, time.UTC)
	if got := NextBoundary(before, 4); !got.Equal(time.Date(2026, 2, 10, 4, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected boundary %s", got)
	}
	at := time.Date(2026, 2, 10, 4, 0, 0, 0, time.UTC)
	if got := NextBoundary(at, 4); !got.Equal(time.Date(2026, 2, 11, 4, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected boundary %s", got)
	}
	if LogicalDay(NextBoundary(before, 4), 4) == LogicalDay(before, 4) {
		t.Fatalf("expected logical day to change at the boundary")
	}
}
