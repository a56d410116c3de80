/*
dto.go - Data Transfer Objects for API responses

PURPOSE:
  Defines the JSON structures returned to clients, decoupled from the loan
  aggregate so fields can be renamed without touching the domain.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - Requests are decoded straight into estimate.Request, which carries the
    validation tags

MONEY:
  Amounts are decimal strings ("22500", "21882.95"), never floats.

SEE ALSO:
  - handlers.go: Uses these types
  - estimate/dto.go: Request type
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/loan-engine/calendar"
	"github.com/warp/loan-engine/loan"
)

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// LoanDTO represents a loan and its schedule in API responses.
type LoanDTO struct {
	ID                       string                `json:"id"`
	ProductType              string                `json:"product_type"`
	State                    string                `json:"state"`
	CreatedAt                string                `json:"created_at"`
	Principal                decimal.Decimal       `json:"principal"`
	MonthlyInterestRate      decimal.Decimal       `json:"monthly_interest_rate"`
	TermInDays               int                   `json:"term_in_days"`
	PaymentPeriodicityInDays int                   `json:"payment_periodicity_in_days"`
	FirstPaymentDate         string                `json:"first_payment_date"`
	InterestFreeDays         loan.InterestFreeDays `json:"interest_free_days"`
	TotalDue                 decimal.Decimal       `json:"total_due"`
	NumberOfPayments         int                   `json:"number_of_payments"`
	OutstandingBalance       decimal.Decimal       `json:"outstanding_balance"`
	ExpectedPayments         []PaymentDTO          `json:"expected_payments"`
	ActualPayments           []PaymentDTO          `json:"actual_payments"`
}

// PaymentDTO represents one installment.
type PaymentDTO struct {
	ID     int             `json:"id"`
	Date   string          `json:"date"`
	Amount decimal.Decimal `json:"amount"`
}

// HolidayDTO represents a holiday.
type HolidayDTO struct {
	Date        string `json:"date"`
	Description string `json:"description"`
}

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Details string            `json:"details,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

// NewLoanDTO converts a loan for API output.
func NewLoanDTO(l *loan.Loan) LoanDTO {
	dto := LoanDTO{
		ID:                       l.ID,
		ProductType:              string(l.ProductType),
		State:                    string(l.State),
		CreatedAt:                l.CreatedAt.UTC().Format(time.RFC3339),
		Principal:                l.Terms.Principal,
		MonthlyInterestRate:      l.Terms.MonthlyInterestRate,
		TermInDays:               l.Terms.TermInDays,
		PaymentPeriodicityInDays: l.Terms.PaymentPeriodicityInDays,
		FirstPaymentDate:         l.Terms.StartDate.String(),
		TotalDue:                 l.TotalDue(),
		NumberOfPayments:         l.NumberOfPayments(),
		OutstandingBalance:       l.OutstandingBalance(),
		ExpectedPayments:         []PaymentDTO{},
		ActualPayments:           []PaymentDTO{},
	}
	if l.Summary != nil {
		dto.InterestFreeDays = l.Summary.InterestFreeDays
		dto.ExpectedPayments = toPaymentDTOs(l.Summary.ExpectedPayments)
		dto.ActualPayments = toPaymentDTOs(l.Summary.ActualPayments)
	}
	return dto
}

func toPaymentDTOs(payments []loan.Payment) []PaymentDTO {
	dtos := make([]PaymentDTO, len(payments))
	for i, p := range payments {
		dtos[i] = PaymentDTO{ID: p.ID, Date: p.Date.String(), Amount: p.Amount}
	}
	return dtos
}

func toHolidayDTOs(holidays []calendar.Holiday) []HolidayDTO {
	dtos := make([]HolidayDTO, len(holidays))
	for i, h := range holidays {
		dtos[i] = HolidayDTO{Date: h.Date.String(), Description: h.Description}
	}
	return dtos
}
