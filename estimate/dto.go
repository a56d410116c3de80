package estimate

import (
	"github.com/shopspring/decimal"
	"github.com/warp/loan-engine/calendar"
	"github.com/warp/loan-engine/loan"
)

// Term is the length of a loan.
type Term string

const (
	TermMonth   Term = "MONTH"
	TermBimonth Term = "BIMONTH"
)

// Days returns the term length in days, or 0 if unknown.
func (t Term) Days() int {
	switch t {
	case TermMonth:
		return 30
	case TermBimonth:
		return 60
	}
	return 0
}

// Periodicity is how often installments are due.
type Periodicity string

const (
	PeriodicityDaily       Periodicity = "DAILY"
	PeriodicityWeekly      Periodicity = "WEEKLY"
	PeriodicityFortnightly Periodicity = "FORTNIGHTLY"
	PeriodicityMonthly     Periodicity = "MONTHLY"
)

// Days returns the periodicity in days, or 0 if unknown.
func (p Periodicity) Days() int {
	switch p {
	case PeriodicityDaily:
		return 1
	case PeriodicityWeekly:
		return 7
	case PeriodicityFortnightly:
		return 15
	case PeriodicityMonthly:
		return 30
	}
	return 0
}

// Request is the input of an estimate.
type Request struct {
	Principal           int64                 `json:"principal" validate:"required,gt=0"`
	MonthlyInterestRate decimal.Decimal       `json:"monthly_interest_rate"`
	Term                Term                  `json:"term" validate:"required,oneof=MONTH BIMONTH"`
	FirstPaymentDate    string                `json:"first_payment_date" validate:"required,datetime=2006-01-02"`
	PaymentPeriodicity  Periodicity           `json:"payment_periodicity" validate:"required,oneof=DAILY WEEKLY FORTNIGHTLY MONTHLY"`
	InterestFreeDays    loan.InterestFreeDays `json:"interest_free_days"`
}

// LoanData converts a validated request into builder input.
func (r Request) LoanData() (loan.NewLoanData, error) {
	first, err := calendar.ParseTimePoint(r.FirstPaymentDate)
	if err != nil {
		return loan.NewLoanData{}, err
	}
	return loan.NewLoanData{
		Principal:                decimal.NewFromInt(r.Principal),
		MonthlyInterestRate:      r.MonthlyInterestRate,
		TermInDays:               r.Term.Days(),
		FirstPaymentDate:         first,
		PaymentPeriodicityInDays: r.PaymentPeriodicity.Days(),
	}, nil
}
