package calendar_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/loan-engine/calendar"
)

func TestTimePoint_FromTimeDropsClock(t *testing.T) {
	bogota := time.FixedZone("COT", -5*3600)
	tp := calendar.FromTime(time.Date(2024, time.January, 7, 23, 30, 0, 0, bogota))

	assert.Equal(t, "2024-01-07", tp.String())
	assert.True(t, tp.Equal(date("2024-01-07")))
}

func TestTimePoint_ISOWeekday(t *testing.T) {
	assert.Equal(t, 0, date("2024-01-08").ISOWeekday(), "monday")
	assert.Equal(t, 5, date("2024-01-06").ISOWeekday(), "saturday")
	assert.Equal(t, 6, date("2024-01-07").ISOWeekday(), "sunday")
	assert.True(t, date("2024-01-06").IsSaturday())
	assert.True(t, date("2024-01-07").IsSunday())
}

func TestTimePoint_AddDaysAcrossLeapYear(t *testing.T) {
	assert.Equal(t, "2024-02-29", date("2024-02-28").AddDays(1).String())
	assert.Equal(t, "2025-01-06", date("2024-12-22").AddDays(15).String())
	assert.Equal(t, 60, calendar.DaysBetween(date("2024-01-07"), date("2024-03-07")))
}

func TestTimePoint_JSON(t *testing.T) {
	b, err := json.Marshal(struct {
		D calendar.TimePoint `json:"d"`
	}{D: date("2024-03-29")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"d":"2024-03-29"}`, string(b))

	var out struct {
		D calendar.TimePoint `json:"d"`
	}
	require.NoError(t, json.Unmarshal(b, &out))
	assert.True(t, out.D.Equal(date("2024-03-29")))

	assert.Error(t, json.Unmarshal([]byte(`{"d":"29/03/2024"}`), &out))
}

func TestParseTimePoint_Invalid(t *testing.T) {
	_, err := calendar.ParseTimePoint("2024-02-30")
	assert.Error(t, err)
}

func TestPeriod_Years(t *testing.T) {
	p := calendar.Period{Start: date("2024-12-20"), End: date("2026-01-02")}
	assert.Equal(t, []int{2024, 2025, 2026}, p.Years())

	inverted := calendar.Period{Start: date("2024-02-01"), End: date("2024-01-01")}
	assert.Nil(t, inverted.Years())
}

func TestPeriod_ContainsAndDays(t *testing.T) {
	p := calendar.Period{Start: date("2024-01-30"), End: date("2024-02-02")}

	assert.True(t, p.Contains(date("2024-01-30")))
	assert.True(t, p.Contains(date("2024-02-02")))
	assert.False(t, p.Contains(date("2024-02-03")))
	assert.Len(t, p.Days(), 4)
	assert.Equal(t, "[2024-01-30, 2024-02-02]", p.String())
	assert.Equal(t, "[2024-01-01, 2024-12-31]", calendar.YearPeriod(2024).String())
}
