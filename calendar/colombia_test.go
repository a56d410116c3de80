package calendar_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/loan-engine/calendar"
)

func date(s string) calendar.TimePoint {
	return calendar.MustParseTimePoint(s)
}

// =============================================================================
// EASTER
// =============================================================================

func TestEaster_KnownYears(t *testing.T) {
	cases := map[int]string{
		2000: "2000-04-23",
		2019: "2019-04-21",
		2024: "2024-03-31",
		2025: "2025-04-20",
		2038: "2038-04-25", // latest possible
		2285: "2285-03-22", // earliest possible
	}
	for year, want := range cases {
		assert.Equal(t, want, calendar.Easter(year).String(), "easter %d", year)
	}
}

// =============================================================================
// LAW 51
// =============================================================================

func TestNextMonday(t *testing.T) {
	// 2024-01-08 is a Monday.
	assert.Equal(t, "2024-01-08", calendar.NextMonday(date("2024-01-08")).String(), "monday stays")
	assert.Equal(t, "2024-01-08", calendar.NextMonday(date("2024-01-02")).String(), "tuesday moves 6 days")
	assert.Equal(t, "2024-01-08", calendar.NextMonday(date("2024-01-06")).String(), "saturday moves 2 days")
	assert.Equal(t, "2024-01-08", calendar.NextMonday(date("2024-01-07")).String(), "sunday moves 1 day")
}

// =============================================================================
// CALCULATOR
// =============================================================================

func TestCalculate_2024(t *testing.T) {
	// GIVEN: the official 2024 Colombian calendar
	want := []string{
		"2024-01-01", // Año Nuevo
		"2024-01-08", // Reyes Magos (Sat Jan 6 -> Mon)
		"2024-03-25", // San José (Tue Mar 19 -> Mon)
		"2024-03-28", // Jueves Santo
		"2024-03-29", // Viernes Santo
		"2024-05-01",
		"2024-05-13", // Ascensión (Thu May 9 -> Mon)
		"2024-06-03", // Corpus Christi
		"2024-06-10", // Sagrado Corazón
		"2024-07-01", // San Pedro (Sat Jun 29 -> Mon)
		"2024-07-20",
		"2024-08-07",
		"2024-08-19", // Asunción
		"2024-10-14", // Día de la raza
		"2024-11-04", // Todos los santos
		"2024-11-11", // Cartagena, already Monday
		"2024-12-08",
		"2024-12-25",
	}

	// WHEN
	holidays := calendar.NewColombianCalculator().Calculate(2024)

	// THEN
	require.Len(t, holidays, 18)
	got := make([]string, len(holidays))
	for i, h := range holidays {
		got[i] = h.Date.String()
	}
	assert.Equal(t, want, got)
}

func TestCalculate_GoodFridayNeverShifted(t *testing.T) {
	set := calendar.NewHolidaySet(calendar.NewColombianCalculator().Calculate(2024))

	h, ok := set.Lookup(date("2024-03-29"))
	require.True(t, ok)
	assert.Equal(t, "Viernes Santo", h.Description)
	assert.Equal(t, time.Friday, h.Date.Weekday())
}

func TestCalculate_ShiftedHolidaysFallOnMonday(t *testing.T) {
	shifted := map[string]bool{}
	for _, r := range calendar.ColombianRules {
		if r.MondayShift {
			shifted[r.Description] = true
		}
	}
	require.Len(t, shifted, 10)

	calc := calendar.NewColombianCalculator()
	for year := 1990; year <= 2060; year++ {
		for _, h := range calc.Calculate(year) {
			if shifted[h.Description] {
				assert.Equal(t, time.Monday, h.Date.Weekday(), "%s %d", h.Description, year)
			}
			assert.Equal(t, year, h.Date.Year(), "%s stays in its year", h.Description)
		}
	}
}

func TestCalculate_Deterministic(t *testing.T) {
	calc := calendar.NewColombianCalculator()
	assert.Equal(t, calc.Calculate(2031), calc.Calculate(2031))
}

func TestCalculateRange_ConcatenatesYears(t *testing.T) {
	holidays := calendar.NewColombianCalculator().CalculateRange(2024, 2025)
	require.Len(t, holidays, 36)
	assert.Equal(t, "2024-01-01", holidays[0].Date.String())
	assert.Equal(t, "2025-12-25", holidays[35].Date.String())

	set := calendar.NewHolidaySet(holidays)
	assert.True(t, set.IsHoliday(date("2025-01-06")), "Reyes 2025 is already a Monday")
}

func TestHolidaysForPeriod_SpansYearBoundary(t *testing.T) {
	p := calendar.Period{Start: date("2024-12-20"), End: date("2025-02-18")}

	set, err := calendar.HolidaysForPeriod(context.Background(), calendar.NewColombianCalculator(), p)
	require.NoError(t, err)

	// 2025 has 17 distinct dates: Sagrado Corazón and San Pedro share June 30.
	assert.Len(t, set, 35)
	assert.True(t, set.IsHoliday(date("2024-12-25")))
	assert.True(t, set.IsHoliday(date("2025-01-06")))
	assert.False(t, set.IsHoliday(date("2025-01-07")))
}

func TestHolidaySet_SharedDateKeepsFirst(t *testing.T) {
	holidays := calendar.NewColombianCalculator().Calculate(2025)
	require.Len(t, holidays, 18)

	set := calendar.NewHolidaySet(holidays)
	assert.Len(t, set, 17)
	assert.True(t, set.IsHoliday(date("2025-06-30")))
	assert.Len(t, set.Sorted(), 17)
}

func TestHolidaySet_NilContainsNothing(t *testing.T) {
	var set calendar.HolidaySet
	assert.False(t, set.IsHoliday(date("2024-01-01")))
}
