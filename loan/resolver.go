package loan

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/warp/loan-engine/calendar"
)

// DefaultRoundingBase is the granularity installments are rounded to.
var DefaultRoundingBase = decimal.NewFromInt(500)

// =============================================================================
// SCHEDULE
// =============================================================================

// Schedule is a resolved payment plan.
type Schedule struct {
	TotalDue          decimal.Decimal
	Quote             decimal.Decimal // every installment but the last
	LastQuote         decimal.Decimal // absorbs the rounding drift
	EffectivePayments int
	Payments          []Payment
}

// =============================================================================
// RESOLVER
// =============================================================================

// ResolverSettings configure a Resolver.
type ResolverSettings struct {
	InterestFreeDays InterestFreeDays
	Holidays         calendar.HolidaySet
	RoundingBase     decimal.Decimal // zero means DefaultRoundingBase
}

// Resolver turns terms into a payment schedule. It is immutable and safe for
// concurrent use as long as the holiday set is not modified.
type Resolver struct {
	policy       InterestFreeDays
	holidays     calendar.HolidaySet
	roundingBase decimal.Decimal
}

// NewResolver returns a resolver for the given settings.
func NewResolver(settings ResolverSettings) *Resolver {
	base := settings.RoundingBase
	if !base.IsPositive() {
		base = DefaultRoundingBase
	}
	return &Resolver{
		policy:       settings.InterestFreeDays,
		holidays:     settings.Holidays,
		roundingBase: base,
	}
}

// Resolve is a one-shot resolution with the default rounding base.
func Resolve(terms Terms, policy InterestFreeDays, holidays calendar.HolidaySet) (Schedule, error) {
	return NewResolver(ResolverSettings{InterestFreeDays: policy, Holidays: holidays}).Resolve(terms)
}

func (r *Resolver) InterestFreeDays() InterestFreeDays { return r.policy }
func (r *Resolver) RoundingBase() decimal.Decimal      { return r.roundingBase }

// Resolve validates terms and produces the schedule. No partial schedule is
// returned on error.
func (r *Resolver) Resolve(terms Terms) (Schedule, error) {
	if err := terms.Validate(); err != nil {
		return Schedule{}, err
	}

	n := r.effectivePayments(terms)
	if n < 1 {
		return Schedule{}, &InvalidTermsError{Field: "interest_free_days", Reason: "exclude every payment day"}
	}

	total := terms.TotalDue()
	quote, last := r.quotes(total, n)
	if !quote.IsPositive() || !last.IsPositive() {
		return Schedule{}, &InvalidTermsError{
			Field:  "principal",
			Reason: fmt.Sprintf("is too small for %d installments rounded to %s", n, r.roundingBase),
		}
	}

	payments := r.walk(terms, n, quote, last)
	if sum := SumPayments(payments); !sum.Equal(total) {
		panic(&InconsistentRoundingError{TotalDue: total, Sum: sum, Payments: len(payments)})
	}

	return Schedule{
		TotalDue:          total,
		Quote:             quote,
		LastQuote:         last,
		EffectivePayments: n,
		Payments:          payments,
	}, nil
}

// IsExcluded reports whether date cannot host a payment.
func (r *Resolver) IsExcluded(date calendar.TimePoint) bool {
	return r.policy.Excludes(date, r.holidays)
}

// effectivePayments drops excluded slots for daily loans. Other periodicities
// shift excluded dates forward instead, so their count is unchanged.
func (r *Resolver) effectivePayments(terms Terms) int {
	n := terms.NumberOfPayments()
	if !terms.IsDaily() {
		return n
	}
	excluded := 0
	for k := 0; k < n; k++ {
		if r.IsExcluded(terms.StartDate.AddDays(k)) {
			excluded++
		}
	}
	return n - excluded
}

// quotes rounds total/n to the nearest multiple of the rounding base, ties
// away from zero, and leaves the remainder to the last installment.
func (r *Resolver) quotes(total decimal.Decimal, n int) (quote, last decimal.Decimal) {
	count := decimal.NewFromInt(int64(n))
	quote = total.Div(count.Mul(r.roundingBase)).Round(0).Mul(r.roundingBase)
	last = total.Sub(quote.Mul(count.Sub(decimal.NewFromInt(1))))
	return quote, last
}

// walk emits n payments from the start date, moving each excluded date to the
// next allowed day and then stepping by the periodicity.
func (r *Resolver) walk(terms Terms, n int, quote, last decimal.Decimal) []Payment {
	payments := make([]Payment, 0, n)
	date := terms.StartDate
	for id := 1; id <= n; id++ {
		for r.IsExcluded(date) {
			date = date.AddDays(1)
		}
		amount := quote
		if id == n {
			amount = last
		}
		payments = append(payments, Payment{ID: id, Date: date, Amount: amount})
		date = date.AddDays(terms.PaymentPeriodicityInDays)
	}
	return payments
}
