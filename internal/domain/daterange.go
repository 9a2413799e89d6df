package domain

import (
	"time"
)

// DateLayout is the calendar date format used on the wire and in storage.
const DateLayout = "2006-01-02"

// MaxRentalDays is the longest rental that can be quoted or booked.
const MaxRentalDays = 365

const secondsPerDay = 24 * 60 * 60

// DateRange is a half-open calendar range [Start, End). The End date is the
// return day and is not an occupied night, so a return and a new pickup on
// the same day never conflict.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewDateRange builds a range from two calendar dates. Times are truncated to
// UTC midnight. A range whose end equals its start is normalised to one day.
func NewDateRange(start, end time.Time) (DateRange, error) {
	s := toDate(start)
	e := toDate(end)
	if e.Before(s) {
		return DateRange{}, NewValidationError(ReasonInvalidDateRange, "return date %s is before pickup date %s", e.Format(DateLayout), s.Format(DateLayout))
	}
	if e.Equal(s) {
		e = s.AddDate(0, 0, 1)
	}
	r := DateRange{Start: s, End: e}
	if err := r.checkLength(); err != nil {
		return DateRange{}, err
	}
	return r, nil
}

// ParseDateRange parses two yyyy-mm-dd strings into a DateRange.
func ParseDateRange(start, end string) (DateRange, error) {
	s, err := time.Parse(DateLayout, start)
	if err != nil {
		return DateRange{}, NewValidationError(ReasonInvalidDateRange, "invalid pickup date %q", start)
	}
	e, err := time.Parse(DateLayout, end)
	if err != nil {
		return DateRange{}, NewValidationError(ReasonInvalidDateRange, "invalid return date %q", end)
	}
	return NewDateRange(s, e)
}

// Days returns the rental duration in days, rounding partial days up. The
// minimum is one day. Counting on Unix seconds keeps ranges longer than a
// time.Duration can hold exact.
func (r DateRange) Days() int {
	secs := r.End.Unix() - r.Start.Unix()
	days := secs / secondsPerDay
	if secs%secondsPerDay > 0 {
		days++
	}
	if days < 1 {
		return 1
	}
	return int(days)
}

// Validate reports whether the range satisfies end > start.
func (r DateRange) Validate() error {
	if r.Start.IsZero() || r.End.IsZero() {
		return NewValidationError(ReasonInvalidDateRange, "pickup and return dates are required")
	}
	if !r.End.After(r.Start) {
		return NewValidationError(ReasonInvalidDateRange, "return date must be after pickup date")
	}
	return r.checkLength()
}

func (r DateRange) checkLength() error {
	if days := r.Days(); days > MaxRentalDays {
		return NewValidationError(ReasonInvalidDateRange, "rental of %d days exceeds the maximum of %d", days, MaxRentalDays)
	}
	return nil
}

// Overlaps is the single overlap test for the whole engine. Two half-open
// ranges [a,b) and [c,d) overlap iff a < d and c < b.
func (r DateRange) Overlaps(other DateRange) bool {
	return r.Start.Before(other.End) && other.Start.Before(r.End)
}

func (r DateRange) String() string {
	return r.Start.Format(DateLayout) + "/" + r.End.Format(DateLayout)
}

// ToDate truncates t to its calendar date in UTC.
func ToDate(t time.Time) time.Time {
	return toDate(t)
}

func toDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
