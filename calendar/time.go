/*
Package calendar provides whole-day dates, periods and the Colombian
public holiday calendar used by the loan schedule engine.

PURPOSE:
  Payment schedules are expressed in calendar days, never instants. This
  package pins every date to midnight UTC so arithmetic is whole-day and
  timezone-free (proleptic Gregorian, as implemented by package time).

KEY CONCEPTS:
  - TimePoint: a calendar date (year, month, day)
  - Period: an inclusive range of dates
  - Holiday / HolidaySet: public holidays and date membership
  - Calculator: the Colombian holiday rules (fixed, Easter, Law 51)

SEE ALSO:
  - colombia.go: holiday rule table and resolution
  - cached.go: cache-backed calendar
*/
package calendar

import (
	"fmt"
	"time"
)

// =============================================================================
// TIME POINT - Calendar date abstraction
// =============================================================================

// DateLayout is the wire and storage format of a TimePoint.
const DateLayout = "2006-01-02"

// TimePoint is a calendar date. The zero value is January 1, year 1.
type TimePoint struct {
	Time time.Time
}

// Constructors
func NewTimePoint(year int, month time.Month, day int) TimePoint {
	return TimePoint{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// FromTime drops the clock and location of t, keeping its calendar date.
func FromTime(t time.Time) TimePoint {
	return NewTimePoint(t.Year(), t.Month(), t.Day())
}

// ParseTimePoint parses a YYYY-MM-DD date.
func ParseTimePoint(s string) (TimePoint, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return TimePoint{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return FromTime(t), nil
}

// MustParseTimePoint is ParseTimePoint for literals in tests and tables.
func MustParseTimePoint(s string) TimePoint {
	tp, err := ParseTimePoint(s)
	if err != nil {
		panic(err)
	}
	return tp
}

// Comparison
func (tp TimePoint) Before(other TimePoint) bool        { return tp.Time.Before(other.Time) }
func (tp TimePoint) Equal(other TimePoint) bool         { return tp.Time.Equal(other.Time) }
func (tp TimePoint) After(other TimePoint) bool         { return tp.Time.After(other.Time) }
func (tp TimePoint) BeforeOrEqual(other TimePoint) bool { return !tp.After(other) }
func (tp TimePoint) AfterOrEqual(other TimePoint) bool  { return !tp.Before(other) }

// Arithmetic
func (tp TimePoint) AddDays(n int) TimePoint { return TimePoint{Time: tp.Time.AddDate(0, 0, n)} }

// Properties
func (tp TimePoint) Year() int             { return tp.Time.Year() }
func (tp TimePoint) Month() time.Month     { return tp.Time.Month() }
func (tp TimePoint) Day() int              { return tp.Time.Day() }
func (tp TimePoint) Weekday() time.Weekday { return tp.Time.Weekday() }
func (tp TimePoint) IsSaturday() bool      { return tp.Weekday() == time.Saturday }
func (tp TimePoint) IsSunday() bool        { return tp.Weekday() == time.Sunday }
func (tp TimePoint) IsWeekend() bool       { return tp.IsSaturday() || tp.IsSunday() }
func (tp TimePoint) IsZero() bool          { return tp.Time.IsZero() }

// ISOWeekday numbers the week from Monday = 0 to Sunday = 6.
func (tp TimePoint) ISOWeekday() int { return (int(tp.Weekday()) + 6) % 7 }

func (tp TimePoint) String() string { return tp.Time.Format(DateLayout) }

// MarshalText encodes the date as YYYY-MM-DD.
func (tp TimePoint) MarshalText() ([]byte, error) { return []byte(tp.String()), nil }

// UnmarshalText decodes a YYYY-MM-DD date.
func (tp *TimePoint) UnmarshalText(b []byte) error {
	parsed, err := ParseTimePoint(string(b))
	if err != nil {
		return err
	}
	*tp = parsed
	return nil
}

// =============================================================================
// TIME UTILITIES
// =============================================================================

func DaysBetween(from, to TimePoint) int { return int(to.Time.Sub(from.Time).Hours() / 24) }
func StartOfYear(year int) TimePoint     { return NewTimePoint(year, time.January, 1) }
func EndOfYear(year int) TimePoint       { return NewTimePoint(year, time.December, 31) }
