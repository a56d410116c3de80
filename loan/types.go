/*
Package loan implements the loan aggregate and its payment schedule engine.

PURPOSE:
  Given loan terms (principal, monthly rate, term, periodicity, first payment
  date) and an interest-free day policy, resolve the expected payments: dates
  that avoid excluded days, installments rounded to a monetary base, and a
  last installment that absorbs the rounding drift.

KEY CONCEPTS IN THIS FILE (types.go):
  - Terms: the loan parameters, with derived TotalDue and NumberOfPayments
  - InterestFreeDays: which days cannot host a payment
  - Payment: one scheduled or actual payment
  - Loan / PaymentSummary: the product aggregate built by Builder

DESIGN PRINCIPLES:
  1. Precision: money is decimal.Decimal, never float64
  2. Purity: schedules are a function of their inputs only
  3. Derived values (total due, balance) are computed, never stored

SEE ALSO:
  - resolver.go: schedule resolution
  - builder.go: loan creation
  - errors.go: error taxonomy
*/
package loan

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/loan-engine/calendar"
)

// DaysPerMonth converts monthly rates to day terms.
const DaysPerMonth = 30

var (
	hundred       = decimal.NewFromInt(100)
	monthRateBase = decimal.NewFromInt(100 * DaysPerMonth)
)

// =============================================================================
// TERMS
// =============================================================================

// Terms are the parameters a schedule is resolved from.
type Terms struct {
	Principal                decimal.Decimal
	MonthlyInterestRate      decimal.Decimal // percent, e.g. 10 for 10%
	StartDate                calendar.TimePoint
	TermInDays               int
	PaymentPeriodicityInDays int
}

// TotalDue is principal plus simple interest over the term, using 30-day
// months, rounded to cents:
//
//	principal * (1 + rate/100 * term/30)
//
// It is evaluated as principal * (3000 + rate*term) / 3000 so whole-peso
// inputs stay exact.
func (t Terms) TotalDue() decimal.Decimal {
	factor := monthRateBase.Add(t.MonthlyInterestRate.Mul(decimal.NewFromInt(int64(t.TermInDays))))
	return t.Principal.Mul(factor).Div(monthRateBase).Round(2)
}

// NumberOfPayments is floor(term / periodicity). A trailing partial period
// produces no payment.
func (t Terms) NumberOfPayments() int {
	if t.PaymentPeriodicityInDays <= 0 {
		return 0
	}
	return t.TermInDays / t.PaymentPeriodicityInDays
}

// IsDaily reports whether payments are due every day.
func (t Terms) IsDaily() bool { return t.PaymentPeriodicityInDays == 1 }

// Period is the span of the term, [StartDate, StartDate+TermInDays].
func (t Terms) Period() calendar.Period {
	return calendar.Period{Start: t.StartDate, End: t.StartDate.AddDays(t.TermInDays)}
}

// HolidayWindow covers every year whose holidays can affect the schedule:
// the start year through the year after the term ends, since excluded days
// can push payments past the term.
func (t Terms) HolidayWindow() calendar.Period {
	end := t.StartDate.AddDays(t.TermInDays)
	return calendar.Period{
		Start: calendar.StartOfYear(t.StartDate.Year()),
		End:   calendar.EndOfYear(end.Year() + 1),
	}
}

// Validate checks the terms before any date is walked.
func (t Terms) Validate() error {
	switch {
	case !t.Principal.IsPositive():
		return &InvalidTermsError{Field: "principal", Reason: "must be greater than zero"}
	case t.MonthlyInterestRate.IsNegative():
		return &InvalidTermsError{Field: "monthly_interest_rate", Reason: "must not be negative"}
	case t.TermInDays <= 0:
		return &InvalidTermsError{Field: "term_in_days", Reason: "must be greater than zero"}
	case t.PaymentPeriodicityInDays <= 0:
		return &InvalidTermsError{Field: "payment_periodicity_in_days", Reason: "must be greater than zero"}
	case t.StartDate.IsZero():
		return &InvalidTermsError{Field: "start_date", Reason: "is required"}
	case t.NumberOfPayments() < 1:
		return &InvalidTermsError{Field: "payment_periodicity_in_days", Reason: "exceeds the term"}
	}
	return nil
}

// =============================================================================
// INTEREST-FREE DAYS
// =============================================================================

// InterestFreeDays is the day-exclusion policy: days on which no payment
// may fall.
type InterestFreeDays struct {
	OnSundays   bool `json:"on_sundays"`
	OnSaturdays bool `json:"on_saturdays"`
	OnHolidays  bool `json:"on_holidays"`
}

// Excludes reports whether date cannot host a payment.
func (p InterestFreeDays) Excludes(date calendar.TimePoint, holidays calendar.HolidaySet) bool {
	if p.OnSundays && date.IsSunday() {
		return true
	}
	if p.OnSaturdays && date.IsSaturday() {
		return true
	}
	return p.OnHolidays && holidays.IsHoliday(date)
}

// =============================================================================
// PAYMENTS
// =============================================================================

// Payment is one installment. IDs start at 1 and are contiguous.
type Payment struct {
	ID     int
	Date   calendar.TimePoint
	Amount decimal.Decimal
}

// SumPayments adds up payment amounts.
func SumPayments(payments []Payment) decimal.Decimal {
	total := decimal.Zero
	for _, p := range payments {
		total = total.Add(p.Amount)
	}
	return total
}

// =============================================================================
// LOAN AGGREGATE
// =============================================================================

type ProductType string

const ProductLoan ProductType = "LOAN"

type State string

const (
	StateActive   State = "ACTIVE"
	StatePaid     State = "PAID"
	StateCanceled State = "CANCELED"
)

// PaymentSummary pairs the expected schedule with the payments received.
type PaymentSummary struct {
	InterestFreeDays InterestFreeDays
	ExpectedPayments []Payment
	ActualPayments   []Payment
}

// TotalPaid sums the actual payments.
func (s PaymentSummary) TotalPaid() decimal.Decimal {
	return SumPayments(s.ActualPayments)
}

// Loan is a loan product with its resolved schedule.
type Loan struct {
	ID          string
	ProductType ProductType
	CreatedAt   time.Time
	Terms       Terms
	State       State
	Summary     *PaymentSummary
}

func (l *Loan) TotalDue() decimal.Decimal { return l.Terms.TotalDue() }
func (l *Loan) NumberOfPayments() int     { return l.Terms.NumberOfPayments() }

// OutstandingBalance is the total due minus what has been paid.
func (l *Loan) OutstandingBalance() decimal.Decimal {
	if l.Summary == nil {
		return l.TotalDue()
	}
	return l.TotalDue().Sub(l.Summary.TotalPaid())
}
