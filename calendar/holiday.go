package calendar

import (
	"context"
	"sort"
)

// =============================================================================
// HOLIDAY CALENDAR
// =============================================================================

// Holiday is a public holiday resolved to a concrete date.
type Holiday struct {
	Description string    `json:"description"`
	Date        TimePoint `json:"date"`
}

// HolidayCalendar provides the holidays of a year.
type HolidayCalendar interface {
	// Holidays returns all holidays of the year, sorted by date.
	Holidays(ctx context.Context, year int) ([]Holiday, error)
}

// HolidaySet answers date membership for a collection of holidays, keyed by
// YYYY-MM-DD. A nil set contains nothing.
type HolidaySet map[string]Holiday

// NewHolidaySet indexes holidays by date. When two holidays share a date the
// first one wins.
func NewHolidaySet(groups ...[]Holiday) HolidaySet {
	set := make(HolidaySet)
	for _, holidays := range groups {
		for _, h := range holidays {
			set.add(h)
		}
	}
	return set
}

func (s HolidaySet) add(h Holiday) {
	if _, ok := s[h.Date.String()]; !ok {
		s[h.Date.String()] = h
	}
}

// IsHoliday reports whether date is in the set.
func (s HolidaySet) IsHoliday(date TimePoint) bool {
	_, ok := s[date.String()]
	return ok
}

// Lookup returns the holiday on date, if any.
func (s HolidaySet) Lookup(date TimePoint) (Holiday, bool) {
	h, ok := s[date.String()]
	return h, ok
}

// Sorted returns the holidays ordered by date.
func (s HolidaySet) Sorted() []Holiday {
	out := make([]Holiday, 0, len(s))
	for _, h := range s {
		out = append(out, h)
	}
	SortHolidays(out)
	return out
}

// SortHolidays orders holidays by date, then description.
func SortHolidays(holidays []Holiday) {
	sort.SliceStable(holidays, func(i, j int) bool {
		if !holidays[i].Date.Equal(holidays[j].Date) {
			return holidays[i].Date.Before(holidays[j].Date)
		}
		return holidays[i].Description < holidays[j].Description
	})
}

// HolidaysForPeriod collects the holidays of every year p touches.
func HolidaysForPeriod(ctx context.Context, cal HolidayCalendar, p Period) (HolidaySet, error) {
	set := make(HolidaySet)
	for _, year := range p.Years() {
		holidays, err := cal.Holidays(ctx, year)
		if err != nil {
			return nil, err
		}
		for _, h := range holidays {
			set.add(h)
		}
	}
	return set, nil
}
