// Package calendar handles the UTC calendar dates snapshots and rates are keyed by.
package calendar

import (
	"fmt"
	"time"

	"github.com/helixml/compset/domain/errs"
)

// Layout is the wire and storage format of a calendar date.
const Layout = "2006-01-02"

// ErrInvalidDate indicates a date string that is not YYYY-MM-DD.
var ErrInvalidDate = fmt.Errorf("%w: invalid date", errs.ErrValidation)

// Day truncates t to its UTC calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Format renders the calendar date of t.
func Format(t time.Time) string {
	return t.UTC().Format(Layout)
}

// Parse reads a YYYY-MM-DD string.
func Parse(s string) (time.Time, error) {
	t, err := time.Parse(Layout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

// DaysBefore returns the date n calendar days before day.
func DaysBefore(day time.Time, n int) time.Time {
	return Day(day).AddDate(0, 0, -n)
}
