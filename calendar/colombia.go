package calendar

import (
	"context"
	"time"
)

// =============================================================================
// COLOMBIAN HOLIDAY RULES
// =============================================================================

// RuleKind tags how a holiday rule resolves to a date.
type RuleKind int

const (
	RuleFixed        RuleKind = iota // same month/day every year, never shifted
	RuleEasterOffset                 // signed day offset from Easter Sunday
	RuleMovableFixed                 // month/day, then moved by Law 51
)

// Rule is one entry of the holiday table.
type Rule struct {
	Kind        RuleKind
	Description string
	Month       time.Month // RuleFixed, RuleMovableFixed
	Day         int        // RuleFixed, RuleMovableFixed
	Offset      int        // RuleEasterOffset
	MondayShift bool       // apply Law 51
}

// ColombianRules is the national holiday table.
var ColombianRules = []Rule{
	{Kind: RuleFixed, Description: "Año Nuevo", Month: time.January, Day: 1},
	{Kind: RuleFixed, Description: "Día del trabajo", Month: time.May, Day: 1},
	{Kind: RuleFixed, Description: "Día de la independencia de Colombia", Month: time.July, Day: 20},
	{Kind: RuleFixed, Description: "Batalla de Boyacá", Month: time.August, Day: 7},
	{Kind: RuleFixed, Description: "Inmaculada Concepción", Month: time.December, Day: 8},
	{Kind: RuleFixed, Description: "Navidad", Month: time.December, Day: 25},

	// Holy week is bound to Easter and never moves.
	{Kind: RuleEasterOffset, Description: "Jueves Santo", Offset: -3},
	{Kind: RuleEasterOffset, Description: "Viernes Santo", Offset: -2},
	{Kind: RuleEasterOffset, Description: "Ascensión de Jesús", Offset: 39, MondayShift: true},
	{Kind: RuleEasterOffset, Description: "Corpus Christi", Offset: 60, MondayShift: true},
	{Kind: RuleEasterOffset, Description: "Sagrado Corazón de Jesús", Offset: 68, MondayShift: true},

	{Kind: RuleMovableFixed, Description: "Reyes Magos", Month: time.January, Day: 6, MondayShift: true},
	{Kind: RuleMovableFixed, Description: "Día de San José", Month: time.March, Day: 19, MondayShift: true},
	{Kind: RuleMovableFixed, Description: "San Pedro y San Pablo", Month: time.June, Day: 29, MondayShift: true},
	{Kind: RuleMovableFixed, Description: "Asunción de la Virgen", Month: time.August, Day: 15, MondayShift: true},
	{Kind: RuleMovableFixed, Description: "Día de la raza", Month: time.October, Day: 12, MondayShift: true},
	{Kind: RuleMovableFixed, Description: "Todos los santos", Month: time.November, Day: 1, MondayShift: true},
	{Kind: RuleMovableFixed, Description: "Independencia de Cartagena", Month: time.November, Day: 11, MondayShift: true},
}

// =============================================================================
// CALCULATOR
// =============================================================================

// Calculator resolves a rule table into dated holidays. It holds no state
// besides the table and is safe for concurrent use.
type Calculator struct {
	rules []Rule
}

// NewColombianCalculator returns a calculator over ColombianRules.
func NewColombianCalculator() *Calculator {
	return &Calculator{rules: ColombianRules}
}

// Calculate returns every holiday of the year sorted by date.
func (c *Calculator) Calculate(year int) []Holiday {
	easter := Easter(year)
	holidays := make([]Holiday, 0, len(c.rules))
	for _, r := range c.rules {
		holidays = append(holidays, r.resolve(year, easter))
	}
	SortHolidays(holidays)
	return holidays
}

// CalculateRange returns the holidays of every year in [fromYear, toYear].
func (c *Calculator) CalculateRange(fromYear, toYear int) []Holiday {
	var holidays []Holiday
	for y := fromYear; y <= toYear; y++ {
		holidays = append(holidays, c.Calculate(y)...)
	}
	return holidays
}

// Holidays implements HolidayCalendar. It never fails.
func (c *Calculator) Holidays(_ context.Context, year int) ([]Holiday, error) {
	return c.Calculate(year), nil
}

func (r Rule) resolve(year int, easter TimePoint) Holiday {
	var date TimePoint
	switch r.Kind {
	case RuleEasterOffset:
		date = easter.AddDays(r.Offset)
	default:
		date = NewTimePoint(year, r.Month, r.Day)
	}
	if r.MondayShift {
		date = NextMonday(date)
	}
	return Holiday{Description: r.Description, Date: date}
}

// NextMonday applies Law 51: dates that are not a Monday move forward to the
// following Monday.
func NextMonday(date TimePoint) TimePoint {
	return date.AddDays((7 - date.ISOWeekday()) % 7)
}

// Easter returns Western Easter Sunday using the anonymous Gregorian
// (Meeus/Jones/Butcher) algorithm. Integer arithmetic only.
func Easter(year int) TimePoint {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := ((h + l - 7*m + 114) % 31) + 1
	return NewTimePoint(year, time.Month(month), day)
}
