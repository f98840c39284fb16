// Package timeutil provides timezone utilities for the Copenhagen timezone.
// The driving school operates in Denmark, so all schedule display and
// day/week boundaries are computed in local Danish time.
// No external dependencies - uses only standard library.
package timeutil

import (
	"fmt"
	"time"
)

// CopenhagenTZ is the Danish timezone (CET/CEST with DST).
// Falls back to a fixed UTC+1 zone if tzdata is unavailable.
var CopenhagenTZ = loadCopenhagen()

func loadCopenhagen() *time.Location {
	loc, err := time.LoadLocation("Europe/Copenhagen")
	if err != nil {
		return time.FixedZone("CET", 1*60*60)
	}
	return loc
}

// Now returns the current time in Copenhagen timezone.
func Now() time.Time {
	return time.Now().In(CopenhagenTZ)
}

// ToCopenhagen converts a time to Copenhagen timezone.
func ToCopenhagen(t time.Time) time.Time {
	return t.In(CopenhagenTZ)
}

// ToUTC converts a time to UTC.
func ToUTC(t time.Time) time.Time {
	return t.UTC()
}

// Date creates a time in Copenhagen timezone with the given date.
func Date(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, CopenhagenTZ)
}

// DateTime creates a time in Copenhagen timezone with the given date and time.
func DateTime(year, month, day, hour, min, sec int) time.Time {
	return time.Date(year, time.Month(month), day, hour, min, sec, 0, CopenhagenTZ)
}

// StartOfDay returns the start of the day (00:00:00) in Copenhagen timezone.
func StartOfDay(t time.Time) time.Time {
	local := ToCopenhagen(t)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, CopenhagenTZ)
}

// EndOfDay returns the end of the day (23:59:59.999999999) in Copenhagen timezone.
func EndOfDay(t time.Time) time.Time {
	local := ToCopenhagen(t)
	return time.Date(local.Year(), local.Month(), local.Day(), 23, 59, 59, 999999999, CopenhagenTZ)
}

// StartOfWeek returns the start of the week (Monday 00:00:00) in Copenhagen timezone.
func StartOfWeek(t time.Time) time.Time {
	local := ToCopenhagen(t)
	weekday := int(local.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday
	}
	daysToSubtract := weekday - 1 // Monday = 1
	return StartOfDay(local.AddDate(0, 0, -daysToSubtract))
}

// EndOfWeek returns the end of the week (Sunday 23:59:59) in Copenhagen timezone.
func EndOfWeek(t time.Time) time.Time {
	start := StartOfWeek(t)
	return EndOfDay(start.AddDate(0, 0, 6))
}

// SlotTimeRange formats a slot's time window for the calendar panel,
// e.g. "12:00 - 13:30".
func SlotTimeRange(start, end time.Time) string {
	s := ToCopenhagen(start)
	e := ToCopenhagen(end)
	return fmt.Sprintf("%02d:%02d - %02d:%02d", s.Hour(), s.Minute(), e.Hour(), e.Minute())
}

// SlotDate formats a slot's date for the calendar panel, e.g. "01-12-2017".
func SlotDate(t time.Time) string {
	local := ToCopenhagen(t)
	return local.Format("02-01-2006")
}

// SameDay reports whether two times fall on the same Copenhagen calendar day.
func SameDay(a, b time.Time) bool {
	al, bl := ToCopenhagen(a), ToCopenhagen(b)
	return al.Year() == bl.Year() && al.YearDay() == bl.YearDay()
}
