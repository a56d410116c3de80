package estimate_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/loan-engine/cache"
	"github.com/warp/loan-engine/calendar"
	"github.com/warp/loan-engine/estimate"
	"github.com/warp/loan-engine/loan"
	"github.com/warp/loan-engine/logger"
	"github.com/warp/loan-engine/metrics"
	"github.com/warp/loan-engine/store/memory"
)

// =============================================================================
// FIXTURES
// =============================================================================

type fixture struct {
	svc   *estimate.Service
	store *memory.Store
	reg   *prometheus.Registry
}

func newFixture(t *testing.T, cal calendar.HolidayCalendar, store loan.Store) fixture {
	t.Helper()
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	log := logger.New(io.Discard, "test", slog.LevelDebug)

	mem := memory.New()
	if store == nil {
		store = mem
	}
	if cal == nil {
		cal = calendar.NewCached(calendar.NewColombianCalculator(), cache.NewMemory(), m, log)
	}

	svc := estimate.NewService(cal, store, estimate.Options{
		Logger:  log,
		Metrics: m,
		BuilderOptions: []loan.BuilderOption{
			loan.WithClock(func() time.Time { return time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC) }),
			loan.WithIDGenerator(func() string { return "loan-1" }),
		},
	})
	return fixture{svc: svc, store: mem, reg: reg}
}

func (f fixture) counter(t *testing.T, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := f.reg.Gather()
	require.NoError(t, err)

	total := 0.0
	for _, fam := range families {
		if fam.GetName() != name {
			continue
		}
	metric:
		for _, m := range fam.GetMetric() {
			for _, lp := range m.GetLabel() {
				if want, ok := labels[lp.GetName()]; ok && want != lp.GetValue() {
					continue metric
				}
			}
			total += m.GetCounter().GetValue()
		}
	}
	return total
}

func e2eRequest() estimate.Request {
	return estimate.Request{
		Principal:           150000,
		MonthlyInterestRate: decimal.NewFromInt(10),
		Term:                estimate.TermBimonth,
		FirstPaymentDate:    "2024-01-07",
		PaymentPeriodicity:  estimate.PeriodicityWeekly,
		InterestFreeDays:    loan.InterestFreeDays{OnSundays: true, OnSaturdays: true, OnHolidays: true},
	}
}

type failingStore struct{ loan.Store }

func (failingStore) SaveLoan(context.Context, *loan.Loan) error { return errors.New("disk full") }

type failingCalendar struct{}

func (failingCalendar) Holidays(context.Context, int) ([]calendar.Holiday, error) {
	return nil, errors.New("calendar offline")
}

// =============================================================================
// ESTIMATE
// =============================================================================

func TestEstimate_EndToEnd(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil, nil)

	// GIVEN 150 000 at 10% over 60 days, weekly from Sunday 2024-01-07,
	// with every exclusion enabled
	// WHEN estimated
	l, err := f.svc.Estimate(ctx, e2eRequest())
	require.NoError(t, err)

	// THEN Sunday and the Reyes Magos Monday are skipped: Tuesdays of 22 500
	assert.Equal(t, "loan-1", l.ID)
	assert.Equal(t, loan.StateActive, l.State)
	assert.Equal(t, loan.ProductLoan, l.ProductType)
	assert.Equal(t, "180000", l.TotalDue().String())
	assert.Equal(t, 8, l.NumberOfPayments())

	want := []string{
		"2024-01-09", "2024-01-16", "2024-01-23", "2024-01-30",
		"2024-02-06", "2024-02-13", "2024-02-20", "2024-02-27",
	}
	require.Len(t, l.Summary.ExpectedPayments, len(want))
	for i, p := range l.Summary.ExpectedPayments {
		assert.Equal(t, i+1, p.ID)
		assert.Equal(t, want[i], p.Date.String())
		assert.Equal(t, "22500", p.Amount.String())
	}

	// AND the loan is stored and counted
	stored, err := f.svc.Get(ctx, "loan-1")
	require.NoError(t, err)
	assert.Equal(t, l, stored)
	assert.Equal(t, 1.0, f.counter(t, "loanengine_estimates_total", map[string]string{"periodicity": "WEEKLY"}))

	// AND the holiday years 2024 and 2025 were computed once
	assert.Equal(t, 2.0, f.counter(t, "loanengine_holiday_cache_misses_total", nil))
	assert.Equal(t, 0.0, f.counter(t, "loanengine_holiday_cache_hits_total", nil))
}

func TestEstimate_SecondEstimateHitsHolidayCache(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil, nil)

	_, err := f.svc.Estimate(ctx, e2eRequest())
	require.NoError(t, err)

	// A duplicate ID fails at the store, after the holidays are loaded
	_, err = f.svc.Estimate(ctx, e2eRequest())
	assert.ErrorIs(t, err, loan.ErrDuplicateLoan)

	assert.Equal(t, 2.0, f.counter(t, "loanengine_holiday_cache_hits_total", nil))
	assert.Equal(t, 1.0, f.counter(t, "loanengine_estimate_failures_total", map[string]string{"reason": "store"}))
}

func TestEstimate_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*estimate.Request)
		field  string
		rule   string
	}{
		{"missing principal", func(r *estimate.Request) { r.Principal = 0 }, "principal", "required"},
		{"principal below minimum", func(r *estimate.Request) { r.Principal = 49999 }, "principal", "gte=50000"},
		{"unknown term", func(r *estimate.Request) { r.Term = "YEAR" }, "term", "oneof=MONTH BIMONTH"},
		{"missing periodicity", func(r *estimate.Request) { r.PaymentPeriodicity = "" }, "payment_periodicity", "required"},
		{"bad date", func(r *estimate.Request) { r.FirstPaymentDate = "2024-13-01" }, "first_payment_date", "datetime=2006-01-02"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, nil, nil)
			req := e2eRequest()
			tt.mutate(&req)

			l, err := f.svc.Estimate(context.Background(), req)
			assert.Nil(t, l)
			require.Error(t, err)
			assert.True(t, estimate.IsClientError(err))

			var ve *estimate.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.rule, ve.Fields[tt.field])
			assert.Equal(t, 0, f.store.Len())
			assert.Equal(t, 1.0, f.counter(t, "loanengine_estimate_failures_total", map[string]string{"reason": "validation"}))
		})
	}
}

func TestEstimate_NegativeRateIsInvalidTerms(t *testing.T) {
	f := newFixture(t, nil, nil)
	req := e2eRequest()
	req.MonthlyInterestRate = decimal.NewFromInt(-1)

	_, err := f.svc.Estimate(context.Background(), req)

	var ite *loan.InvalidTermsError
	require.ErrorAs(t, err, &ite)
	assert.Equal(t, "monthly_interest_rate", ite.Field)
	assert.True(t, estimate.IsClientError(err))
	assert.Equal(t, 1.0, f.counter(t, "loanengine_estimate_failures_total", map[string]string{"reason": "invalid_terms"}))
}

func TestEstimate_CalendarFailure(t *testing.T) {
	f := newFixture(t, failingCalendar{}, nil)

	_, err := f.svc.Estimate(context.Background(), e2eRequest())

	require.Error(t, err)
	assert.False(t, estimate.IsClientError(err))
	assert.Contains(t, err.Error(), "calendar offline")
	assert.Equal(t, 1.0, f.counter(t, "loanengine_estimate_failures_total", map[string]string{"reason": "holidays"}))
}

func TestEstimate_StoreFailure(t *testing.T) {
	f := newFixture(t, nil, failingStore{})

	_, err := f.svc.Estimate(context.Background(), e2eRequest())

	require.Error(t, err)
	assert.False(t, estimate.IsClientError(err))
	assert.Contains(t, err.Error(), "disk full")
}

func TestValidationError_Message(t *testing.T) {
	err := &estimate.ValidationError{Fields: map[string]string{"term": "required", "principal": "gt=0"}}
	assert.Equal(t, "validation failed: principal: gt=0, term: required", err.Error())
	assert.ErrorIs(t, err, estimate.ErrValidation)
}

// =============================================================================
// QUERIES
// =============================================================================

func TestService_GetAndList(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil, nil)

	_, err := f.svc.Get(ctx, "missing")
	assert.ErrorIs(t, err, loan.ErrLoanNotFound)

	loans, err := f.svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, loans)

	_, err = f.svc.Estimate(ctx, e2eRequest())
	require.NoError(t, err)

	loans, err = f.svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, loans, 1)
	assert.Equal(t, "loan-1", loans[0].ID)
}

func TestService_Holidays(t *testing.T) {
	f := newFixture(t, nil, nil)

	holidays, err := f.svc.Holidays(context.Background(), 2024)
	require.NoError(t, err)
	require.Len(t, holidays, 18)
	assert.Equal(t, "Año Nuevo", holidays[0].Description)
	assert.Equal(t, "2024-01-01", holidays[0].Date.String())
	assert.Equal(t, "Reyes Magos", holidays[1].Description)
	assert.Equal(t, "2024-01-08", holidays[1].Date.String())
	assert.Equal(t, "2024-12-25", holidays[17].Date.String())

	_, err = f.svc.Holidays(context.Background(), 0)
	assert.ErrorIs(t, err, estimate.ErrValidation)
}

func TestTermAndPeriodicityDays(t *testing.T) {
	assert.Equal(t, 30, estimate.TermMonth.Days())
	assert.Equal(t, 60, estimate.TermBimonth.Days())
	assert.Equal(t, 0, estimate.Term("YEAR").Days())

	assert.Equal(t, 1, estimate.PeriodicityDaily.Days())
	assert.Equal(t, 7, estimate.PeriodicityWeekly.Days())
	assert.Equal(t, 15, estimate.PeriodicityFortnightly.Days())
	assert.Equal(t, 30, estimate.PeriodicityMonthly.Days())
	assert.Equal(t, 0, estimate.Periodicity("HOURLY").Days())
}
