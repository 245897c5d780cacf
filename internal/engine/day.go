package engine

import "time"

// DayLayout is the format of logical day strings stored in the quest log.
const DayLayout = "2006-01-02"

// LogicalDate returns the logical day containing now, pinned to 12:00 in
// now's location. Before resetHour the previous calendar day is still current.
// Pinning to midday keeps Weekday() stable across DST transitions.
func LogicalDate(now time.Time, resetHour int) time.Time {
	y, m, d := now.Date()
	if now.Hour() < resetHour {
		d--
	}
	return time.Date(y, m, d, 12, 0, 0, 0, now.Location())
}

func LogicalDay(now time.Time, resetHour int) string {
	return LogicalDate(now, resetHour).Format(DayLayout)
}

// NextBoundary returns the first instant after now at which LogicalDay changes.
func NextBoundary(now time.Time, resetHour int) time.Time {
	y, m, d := now.Date()
	candidate := time.Date(y, m, d, resetHour, 0, 0, 0, now.Location())
	if !candidate.After(now) {
		candidate = time.Date(y, m, d+1, resetHour, 0, 0, 0, now.Location())
	}
	return candidate
}
