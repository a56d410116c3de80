/*
Package estimate turns loan requests into persisted loans with a resolved
payment schedule.

FLOW:
  1. Validate the request (validator/v10 tags, then the minimum principal)
  2. Load holidays for every year the schedule can reach
  3. Resolve the schedule and build the ACTIVE loan
  4. Persist the loan, record metrics, log the outcome

Holidays come from a calendar.HolidayCalendar, normally the Colombian
calculator behind a cache.
*/
package estimate

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/warp/loan-engine/calendar"
	"github.com/warp/loan-engine/loan"
	"github.com/warp/loan-engine/logger"
	"github.com/warp/loan-engine/metrics"
)

// DefaultMinPrincipal is the smallest principal accepted.
const DefaultMinPrincipal = 50000

// Failure reasons recorded in metrics.
const (
	reasonValidation   = "validation"
	reasonInvalidTerms = "invalid_terms"
	reasonHolidays     = "holidays"
	reasonStore        = "store"
)

// Options configure a Service. Zero values select defaults.
type Options struct {
	RoundingBase   decimal.Decimal
	MinPrincipal   int64
	Logger         *slog.Logger
	Metrics        *metrics.Metrics
	BuilderOptions []loan.BuilderOption
}

// Service estimates and stores loans.
type Service struct {
	holidays     calendar.HolidayCalendar
	store        loan.Store
	roundingBase decimal.Decimal
	minPrincipal int64
	logger       *slog.Logger
	metrics      *metrics.Metrics
	builderOpts  []loan.BuilderOption
	validate     *validator.Validate
}

// NewService creates a service reading holidays from cal and saving to store.
func NewService(cal calendar.HolidayCalendar, store loan.Store, opts Options) *Service {
	s := &Service{
		holidays:     cal,
		store:        store,
		roundingBase: opts.RoundingBase,
		minPrincipal: opts.MinPrincipal,
		logger:       opts.Logger,
		metrics:      opts.Metrics,
		builderOpts:  opts.BuilderOptions,
		validate:     newValidator(),
	}
	if !s.roundingBase.IsPositive() {
		s.roundingBase = loan.DefaultRoundingBase
	}
	if s.minPrincipal <= 0 {
		s.minPrincipal = DefaultMinPrincipal
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks a request without resolving it.
func (s *Service) Validate(req Request) error {
	if err := s.validate.Struct(req); err != nil {
		return fromValidator(err)
	}
	if req.Principal < s.minPrincipal {
		return &ValidationError{Fields: map[string]string{"principal": fmt.Sprintf("gte=%d", s.minPrincipal)}}
	}
	return nil
}

// Estimate validates req, resolves its schedule and stores the new loan.
func (s *Service) Estimate(ctx context.Context, req Request) (*loan.Loan, error) {
	log := s.logger.With(logger.Attrs(ctx)...)

	if err := s.Validate(req); err != nil {
		s.fail(reasonValidation)
		log.InfoContext(ctx, "estimate rejected", slog.Any("error", err))
		return nil, err
	}

	data, err := req.LoanData()
	if err != nil {
		s.fail(reasonValidation)
		return nil, &ValidationError{Fields: map[string]string{"first_payment_date": "datetime=2006-01-02"}}
	}

	terms := data.Terms()
	if err := terms.Validate(); err != nil {
		s.fail(reasonInvalidTerms)
		log.InfoContext(ctx, "estimate rejected", slog.Any("error", err))
		return nil, err
	}

	holidays, err := calendar.HolidaysForPeriod(ctx, s.holidays, terms.HolidayWindow())
	if err != nil {
		s.fail(reasonHolidays)
		return nil, fmt.Errorf("load holidays: %w", err)
	}

	resolver := loan.NewResolver(loan.ResolverSettings{
		InterestFreeDays: req.InterestFreeDays,
		Holidays:         holidays,
		RoundingBase:     s.roundingBase,
	})

	start := time.Now()
	l, err := loan.NewBuilder(resolver, s.builderOpts...).NewLoan(data)
	if s.metrics != nil {
		s.metrics.ResolveDur.Observe(time.Since(start).Seconds())
	}
	if err != nil {
		s.fail(reasonInvalidTerms)
		log.InfoContext(ctx, "estimate rejected", slog.Any("error", err))
		return nil, err
	}

	if err := s.store.SaveLoan(ctx, l); err != nil {
		s.fail(reasonStore)
		log.ErrorContext(ctx, "failed to save loan", slog.String("loan_id", l.ID), slog.Any("error", err))
		return nil, fmt.Errorf("save loan %s: %w", l.ID, err)
	}

	if s.metrics != nil {
		s.metrics.EstimatesTotal.WithLabelValues(string(req.PaymentPeriodicity)).Inc()
		s.metrics.PaymentsPerLoan.Observe(float64(len(l.Summary.ExpectedPayments)))
	}
	log.InfoContext(ctx, "loan estimated",
		slog.String("loan_id", l.ID),
		slog.String("total_due", l.TotalDue().String()),
		slog.Int("payments", len(l.Summary.ExpectedPayments)),
	)
	return l, nil
}

// Get returns a stored loan.
func (s *Service) Get(ctx context.Context, id string) (*loan.Loan, error) {
	return s.store.GetLoan(ctx, id)
}

// List returns every stored loan, oldest first.
func (s *Service) List(ctx context.Context) ([]*loan.Loan, error) {
	return s.store.ListLoans(ctx)
}

// Holidays returns a year's holidays in date order.
func (s *Service) Holidays(ctx context.Context, year int) ([]calendar.Holiday, error) {
	if year < 1 || year > 9999 {
		return nil, &ValidationError{Fields: map[string]string{"year": "range=1-9999"}}
	}
	holidays, err := s.holidays.Holidays(ctx, year)
	if err != nil {
		return nil, err
	}
	sorted := append([]calendar.Holiday(nil), holidays...)
	calendar.SortHolidays(sorted)
	return sorted, nil
}

func (s *Service) fail(reason string) {
	if s.metrics != nil {
		s.metrics.EstimateFailures.WithLabelValues(reason).Inc()
	}
}
