// Package calendar holds the date arithmetic shared by the recurring, invoice and payroll
// schedulers. Everything here is pure: callers pass "today" explicitly.
package calendar

import (
	"fmt"
	"time"
)

// Interval units understood by AddInterval
const (
	Daily   = "DAILY"
	Weekly  = "WEEKLY"
	Monthly = "MONTHLY"
	Yearly  = "YEARLY"
)

// PeriodLayout is the year-month layout of a payroll period
const PeriodLayout = "2006-01"

// ValidInterval reports whether unit is one of the supported interval units
func ValidInterval(unit string) bool {
	switch unit {
	case Daily, Weekly, Monthly, Yearly:
		return true
	}
	return false
}

// StartOfDay returns midnight of t's calendar day in t's location
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// EndOfDay returns 23:59:59.999 of t's calendar day in t's location
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), t.Location())
}

// AddInterval advances t by exactly one unit. Month and year steps follow
// time.AddDate normalization (Jan 31 + 1 month lands in early March).
func AddInterval(t time.Time, unit string) (time.Time, error) {
	switch unit {
	case Daily:
		return t.AddDate(0, 0, 1), nil
	case Weekly:
		return t.AddDate(0, 0, 7), nil
	case Monthly:
		return t.AddDate(0, 1, 0), nil
	case Yearly:
		return t.AddDate(1, 0, 0), nil
	}
	return t, fmt.Errorf("unknown interval %q", unit)
}

// DateOnly keeps t's calendar date and drops the clock, returning midnight UTC.
// Due dates are stored in this form so every driver reads back the same Y/M/D.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DiffDays returns the whole number of calendar days from today to due.
// Both values are reduced to their own calendar date first, so the result
// is independent of time-of-day and DST shifts. Negative means due is past.
func DiffDays(due, today time.Time) int {
	return int(dayNumber(due) - dayNumber(today))
}

func dayNumber(t time.Time) int64 {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400
}

// DaysIn returns the number of days in the given month
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ClampDay limits day to the length of the given month
func ClampDay(year int, month time.Month, day int) int {
	if day < 1 {
		return 1
	}
	if n := DaysIn(year, month); day > n {
		return n
	}
	return day
}

// FormatPeriod returns the YYYY-MM period containing t
func FormatPeriod(t time.Time) string {
	return t.Format(PeriodLayout)
}

// ParsePeriod validates a YYYY-MM string and returns the first day of that month in UTC
func ParsePeriod(period string) (time.Time, error) {
	t, err := time.Parse(PeriodLayout, period)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid period %q, expected YYYY-MM", period)
	}
	return t, nil
}

// PreviousPeriod returns the period of the month before t. The step is taken
// from the first of the month so day overflow (Mar 31 - 1 month) cannot skip a month.
func PreviousPeriod(t time.Time) string {
	y, m, _ := t.Date()
	return FormatPeriod(time.Date(y, m-1, 1, 0, 0, 0, 0, t.Location()))
}

// PaymentDateOn returns the payment date in t's month, clamping paymentDay to the month length
func PaymentDateOn(t time.Time, paymentDay int) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, ClampDay(y, m, paymentDay), 0, 0, 0, 0, t.Location())
}

// IsPaymentDay reports whether t falls on the tenant's payment day. In months shorter
// than paymentDay the last day of the month counts as the payment day.
func IsPaymentDay(t time.Time, paymentDay int) bool {
	y, m, d := t.Date()
	return d == ClampDay(y, m, paymentDay)
}

// NextPaymentDate returns this month's payment date when today is on or before it,
// otherwise next month's.
func NextPaymentDate(today time.Time, paymentDay int) time.Time {
	current := PaymentDateOn(today, paymentDay)
	if !StartOfDay(today).After(current) {
		return current
	}
	y, m, _ := today.Date()
	return PaymentDateOn(time.Date(y, m+1, 1, 0, 0, 0, 0, today.Location()), paymentDay)
}

// Window is an inclusive date range
type Window struct {
	From time.Time
	To   time.Time
}

// CalculationWindow returns the salary calculation window of a period, with both
// bounds clamped to the month length.
func CalculationWindow(period string, startDay, endDay int) (Window, error) {
	first, err := ParsePeriod(period)
	if err != nil {
		return Window{}, err
	}
	y, m, _ := first.Date()
	if endDay < startDay {
		endDay = startDay
	}
	return Window{
		From: time.Date(y, m, ClampDay(y, m, startDay), 0, 0, 0, 0, time.UTC),
		To:   time.Date(y, m, ClampDay(y, m, endDay), 0, 0, 0, 0, time.UTC),
	}, nil
}
