package model

import (
	"testing"
	"time"
)

// 2026-02-09 is a Monday.
func weekOf(t *testing.T) map[time.Weekday]time.Time {
	t.Helper()
	out := make(map[time.Weekday]time.Time, 7)
	for i := 0; i < 7; i++ {
		d := time.Date(2026, 2, 9+i, 12, 0, 0, 0, time.UTC)
		out[d.Weekday()] = d
	}
	return out
}

func dueDays(t *testing.T, schedule string) []time.Weekday {
	t.Helper()
	week := weekOf(t)
	out := make([]time.Weekday, 0, 7)
	for d := time.Sunday; d <= time.Saturday; d++ {
		if IsDue(schedule, week[d]) {
			out = append(out, d)
		}
	}
	return out
}

func sameDays(a, b []time.Weekday) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestIsDueKeywords(t *testing.T) {
	all := []time.Weekday{time.Sunday, time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday}
	cases := []struct {
		schedule string
		want     []time.Weekday
	}{
		{"", all},
		{"daily", all},
		{"  ALL ", all},
		{"Everyday", all},
		{"weekdays", []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday}},
		{"WEEKENDS", []time.Weekday{time.Sunday, time.Saturday}},
	}
	for _, tc := range cases {
		if got := dueDays(t, tc.schedule); !sameDays(got, tc.want) {
			t.Fatalf("schedule %q due on %v, want %v", tc.schedule, got, tc.want)
		}
	}
}

func TestIsDueDayTokensAndRanges(t *testing.T) {
	cases := []struct {
		schedule string
		want     []time.Weekday
	}{
		{"mon", []time.Weekday{time.Monday}},
		{"Mon, Wed, Fri", []time.Weekday{time.Monday, time.Wednesday, time.Friday}},
		{"tue thu", []time.Weekday{time.Tuesday, time.Thursday}},
		{"saturday", []time.Weekday{time.Saturday}},
		{"mon-wed", []time.Weekday{time.Monday, time.Tuesday, time.Wednesday}},
		{"fri-mon", []time.Weekday{time.Sunday, time.Monday, time.Friday, time.Saturday}},
		{"sun-sun", []time.Weekday{time.Sunday}},
		{"mon,bogus,fri", []time.Weekday{time.Monday, time.Friday}},
		{"mon-xyz,thu", []time.Weekday{time.Thursday}},
	}
	for _, tc := range cases {
		if got := dueDays(t, tc.schedule); !sameDays(got, tc.want) {
			t.Fatalf("schedule %q due on %v, want %v", tc.schedule, got, tc.want)
		}
	}
}

func TestParseScheduleEmptySetFallsBackToDaily(t *testing.T) {
	for _, raw := range []string{"bogus", "x y z", "m", ",,,"} {
		s := ParseSchedule(raw)
		if s.Kind != ScheduleDaily {
			t.Fatalf("ParseSchedule(%q).Kind = %q, want daily", raw, s.Kind)
		}
	}
}

func TestIsDueIgnoresTimeOfDay(t *testing.T) {
	early := time.Date(2026, 2, 9, 0, 0, 1, 0, time.UTC)
	late := time.Date(2026, 2, 9, 23, 59, 59, 0, time.UTC)
	if !IsDue("mon", early) || !IsDue("mon", late) {
		t.Fatal("expected monday schedule to match both ends of monday")
	}
}

func TestIsDueDeterministic(t *testing.T) {
	date := time.Date(2026, 2, 12, 12, 0, 0, 0, time.UTC)
	for _, schedule := range []string{"daily", "weekdays", "fri-mon", "bogus", "thu"} {
		first := IsDue(schedule, date)
		for i := 0; i < 20; i++ {
			if IsDue(schedule, date) != first {
				t.Fatalf("IsDue(%q) changed between calls", schedule)
			}
		}
	}
}

func TestScheduleStringCanonical(t *testing.T) {
	cases := map[string]string{
		"":          "daily",
		"weekdays":  "weekdays",
		"weekends":  "weekends",
		"fri-mon":   "mon,fri,sat,sun",
		"wed mon":   "mon,wed",
		"gibberish": "daily",
	}
	for raw, want := range cases {
		if got := ParseSchedule(raw).String(); got != want {
			t.Fatalf("ParseSchedule(%q).String() = %q, want %q", raw, got, want)
		}
	}
}

func TestNormalizeSchedule(t *testing.T) {
	if got := NormalizeSchedule("   "); got != "daily" {
		t.Fatalf("expected daily for blank schedule, got %q", got)
	}
	if got := NormalizeSchedule("nonsense"); got != "daily" {
		t.Fatalf("expected daily for invalid schedule, got %q", got)
	}
	if got := NormalizeSchedule(" Mon-Fri "); got != "Mon-Fri" {
		t.Fatalf("expected trimmed schedule, got %q", got)
	}
}
