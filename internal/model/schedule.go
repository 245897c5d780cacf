package model

import (
	"strings"
	"time"
	"unicode"
)

type ScheduleKind string

const (
	ScheduleDaily      ScheduleKind = "daily"
	ScheduleWeekdays   ScheduleKind = "weekdays"
	ScheduleWeekends   ScheduleKind = "weekends"
	ScheduleDaysOfWeek ScheduleKind = "days"
)

// Schedule is a parsed recurrence rule. Days is only meaningful for
// ScheduleDaysOfWeek and is indexed by time.Weekday.
type Schedule struct {
	Kind ScheduleKind
	Days [7]bool
}

var dayNames = [7]string{"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday"}

// ParseSchedule turns a free-text rule into a Schedule. It never fails:
// anything that yields no days is treated as daily.
func ParseSchedule(raw string) Schedule {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	switch normalized {
	case "", "daily", "all", "everyday":
		return Schedule{Kind: ScheduleDaily}
	case "weekdays":
		return Schedule{Kind: ScheduleWeekdays}
	case "weekends":
		return Schedule{Kind: ScheduleWeekends}
	}

	tokens := strings.FieldsFunc(normalized, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
	out := Schedule{Kind: ScheduleDaysOfWeek}
	found := false
	for _, token := range tokens {
		if from, to, ok := strings.Cut(token, "-"); ok {
			start, okStart := parseWeekday(from)
			end, okEnd := parseWeekday(to)
			if !okStart || !okEnd {
				continue
			}
			for d := start; ; d = (d + 1) % 7 {
				out.Days[d] = true
				if d == end {
					break
				}
			}
			found = true
			continue
		}
		if d, ok := parseWeekday(token); ok {
			out.Days[d] = true
			found = true
		}
	}
	if !found {
		return Schedule{Kind: ScheduleDaily}
	}
	return out
}

func parseWeekday(token string) (time.Weekday, bool) {
	token = strings.TrimSpace(token)
	if len(token) < 2 {
		return 0, false
	}
	for i, name := range dayNames {
		if strings.HasPrefix(name, token) {
			return time.Weekday(i), true
		}
	}
	return 0, false
}

func (s Schedule) Matches(day time.Weekday) bool {
	switch s.Kind {
	case ScheduleWeekdays:
		return day >= time.Monday && day <= time.Friday
	case ScheduleWeekends:
		return day == time.Saturday || day == time.Sunday
	case ScheduleDaysOfWeek:
		return s.Days[day]
	default:
		return true
	}
}

// String renders the canonical form, e.g. "mon,wed,fri".
func (s Schedule) String() string {
	if s.Kind != ScheduleDaysOfWeek {
		return string(s.Kind)
	}
	parts := make([]string, 0, 7)
	for _, d := range []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday, time.Sunday} {
		if s.Days[d] {
			parts = append(parts, dayNames[d][:3])
		}
	}
	return strings.Join(parts, ",")
}

// IsDue reports whether a quest with the given rule is due on date. The date
// should already be the logical day; the time of day is not consulted.
func IsDue(schedule string, date time.Time) bool {
	return ParseSchedule(schedule).Matches(date.Weekday())
}

// NormalizeSchedule returns the text stored on a quest: the trimmed input, or
// "daily" when the input does not name any day.
func NormalizeSchedule(raw string) string {
	if ParseSchedule(raw).Kind == ScheduleDaily {
		return string(ScheduleDaily)
	}
	return strings.TrimSpace(raw)
}
