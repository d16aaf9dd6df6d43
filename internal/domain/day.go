package domain

import "time"

// DayFormat is the calendar-date form used as the daily record key.
const DayFormat = "2006-01-02"

// All users share one fixed UTC offset; per-user timezones are out of scope.
// Every date-boundary computation goes through these helpers with the offset
// injected from config.

// LocalTime shifts a UTC instant into the configured local offset.
func LocalTime(now time.Time, utcOffsetHours int) time.Time {
	return now.UTC().Add(time.Duration(utcOffsetHours) * time.Hour)
}

// LocalDay returns the user-local calendar date for a UTC instant.
func LocalDay(now time.Time, utcOffsetHours int) string {
	return LocalTime(now, utcOffsetHours).Format(DayFormat)
}

// AfterCutoff reports whether the local time of day has reached the daily
// cutoff at which the check-in flow opens.
func AfterCutoff(now time.Time, utcOffsetHours, cutoffHour, cutoffMinute int) bool {
	local := LocalTime(now, utcOffsetHours)
	minutes := local.Hour()*60 + local.Minute()
	return minutes >= cutoffHour*60+cutoffMinute
}

// NextCutoff returns the next UTC instant at which the local cutoff occurs.
// If today's cutoff has already passed locally, it is tomorrow's.
func NextCutoff(now time.Time, utcOffsetHours, cutoffHour, cutoffMinute int) time.Time {
	local := LocalTime(now, utcOffsetHours)
	next := time.Date(local.Year(), local.Month(), local.Day(), cutoffHour, cutoffMinute, 0, 0, time.UTC)
	if !next.After(local) {
		next = next.AddDate(0, 0, 1)
	}
	// Shift back from local to UTC.
	return next.Add(-time.Duration(utcOffsetHours) * time.Hour)
}
