// Package calendar provides business-day arithmetic for the holiday
// calendars used by the curve layer.
package calendar

import "time"

// CalendarID identifies a holiday calendar.
type CalendarID string

const (
	// NONE treats every day, weekends included, as a business day. Useful
	// for theoretical curves whose time axis must not jump over weekends.
	NONE   CalendarID = "NONE"
	TARGET CalendarID = "TARGET"
	JPN    CalendarID = "JPN"
	USD    CalendarID = "USD"
)

// Fixed-date holidays only. Moveable feasts (Easter-based closures) are not
// modelled; curve reference-date arithmetic does not need them.
var targetHolidays = map[string]struct{}{
	"01-01": {}, // New Year's Day
	"05-01": {}, // Labour Day
	"12-25": {}, // Christmas
	"12-26": {}, // Boxing Day
}

var jpnHolidays = map[string]struct{}{
	"01-01": {},
	"01-02": {},
	"01-03": {},
	"12-31": {},
}

var usdHolidays = map[string]struct{}{
	"01-01": {},
	"07-04": {},
	"12-25": {},
}

func isHoliday(cal CalendarID, t time.Time) bool {
	key := t.Format("01-02")
	switch cal {
	case TARGET:
		_, ok := targetHolidays[key]
		return ok
	case JPN:
		_, ok := jpnHolidays[key]
		return ok
	case USD:
		_, ok := usdHolidays[key]
		return ok
	default:
		return false
	}
}

// IsBusinessDay checks weekends and holiday sets. Under NONE every day is a
// business day.
func IsBusinessDay(cal CalendarID, t time.Time) bool {
	if cal == NONE {
		return true
	}
	if t.Weekday() == time.Saturday || t.Weekday() == time.Sunday {
		return false
	}
	return !isHoliday(cal, t)
}

// Adjust applies Modified Following.
func Adjust(cal CalendarID, t time.Time) time.Time {
	origMonth := t.Month()
	for !IsBusinessDay(cal, t) {
		t = t.AddDate(0, 0, 1)
	}
	if t.Month() != origMonth {
		t = t.AddDate(0, 0, -1)
		for !IsBusinessDay(cal, t) {
			t = t.AddDate(0, 0, -1)
		}
	}
	return t
}

// AdjustFollowing applies a simple Following convention (no month preservation).
func AdjustFollowing(cal CalendarID, t time.Time) time.Time {
	for !IsBusinessDay(cal, t) {
		t = t.AddDate(0, 0, 1)
	}
	return t
}

// AddBusinessDays advances n business days (n can be negative).
func AddBusinessDays(cal CalendarID, t time.Time, n int) time.Time {
	step := 1
	if n < 0 {
		step = -1
	}
	for n != 0 {
		t = t.AddDate(0, 0, step)
		if IsBusinessDay(cal, t) {
			n -= step
		}
	}
	return t
}
