// Package dates converts between the date formats shown to users and the
// ones stored with each record. Every formatter returns its input unchanged
// when it cannot be parsed.
package dates

import (
	"fmt"
	"strings"
	"time"
)

const (
	DisplayLayout   = "02-01-2006"
	DatabaseLayout  = "2006-01-02"
	TimestampLayout = "2006-01-02T15:04:05.000Z"
)

var longMonths = [...]string{
	"Januari", "Februari", "Maret", "April", "Mei", "Juni",
	"Juli", "Agustus", "September", "Oktober", "November", "Desember",
}

var shortMonths = [...]string{
	"Jan", "Feb", "Mar", "Apr", "Mei", "Jun",
	"Jul", "Agu", "Sep", "Okt", "Nov", "Des",
}

// ToDisplay turns yyyy-MM-dd into dd-MM-yyyy.
func ToDisplay(db string) string {
	t, err := time.Parse(DatabaseLayout, strings.TrimSpace(db))
	if err != nil {
		return db
	}
	return t.Format(DisplayLayout)
}

// ToDatabase turns dd-MM-yyyy into yyyy-MM-dd. Values already in storage
// format pass through untouched.
func ToDatabase(display string) string {
	t, err := time.Parse(DisplayLayout, strings.TrimSpace(display))
	if err != nil {
		return display
	}
	return t.Format(DatabaseLayout)
}

// ToLongDisplay renders yyyy-MM-dd as "02 Januari 2006".
func ToLongDisplay(db string) string {
	t, err := time.Parse(DatabaseLayout, strings.TrimSpace(db))
	if err != nil {
		return db
	}
	return fmt.Sprintf("%02d %s %d", t.Day(), longMonths[t.Month()-1], t.Year())
}

// Timestamp formats t as an ISO-8601 UTC instant with milliseconds.
func Timestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// TimestampToDisplay renders a stored timestamp as "15 Jan 2025, 14:30" in
// loc. A nil loc means UTC.
func TimestampToDisplay(ts string, loc *time.Location) string {
	t, err := time.Parse(TimestampLayout, strings.TrimSpace(ts))
	if err != nil {
		return ts
	}
	if loc == nil {
		loc = time.UTC
	}
	t = t.In(loc)
	return fmt.Sprintf("%02d %s %d, %02d:%02d", t.Day(), shortMonths[t.Month()-1], t.Year(), t.Hour(), t.Minute())
}

// ParseDatabase parses a stored yyyy-MM-dd date in loc.
func ParseDatabase(db string, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(DatabaseLayout, strings.TrimSpace(db), loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// StartOfDay truncates now to midnight in its own location.
func StartOfDay(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
}

// StartOfWeek returns midnight of the Monday on or before now.
func StartOfWeek(now time.Time) time.Time {
	offset := (int(now.Weekday()) + 6) % 7
	return StartOfDay(now).AddDate(0, 0, -offset)
}

// StartOfMonth returns midnight of the first day of now's month.
func StartOfMonth(now time.Time) time.Time {
	y, m, _ := now.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, now.Location())
}
