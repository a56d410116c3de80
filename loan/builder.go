package loan

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/warp/loan-engine/calendar"
)

// NewLoanData is the validated input of a new loan.
type NewLoanData struct {
	Principal                decimal.Decimal
	MonthlyInterestRate      decimal.Decimal
	TermInDays               int
	FirstPaymentDate         calendar.TimePoint
	PaymentPeriodicityInDays int
}

// Terms converts the input to schedule terms; the first payment date is
// where the schedule starts.
func (d NewLoanData) Terms() Terms {
	return Terms{
		Principal:                d.Principal,
		MonthlyInterestRate:      d.MonthlyInterestRate,
		StartDate:                d.FirstPaymentDate,
		TermInDays:               d.TermInDays,
		PaymentPeriodicityInDays: d.PaymentPeriodicityInDays,
	}
}

// Builder creates active loans with their expected schedule attached.
type Builder struct {
	resolver *Resolver
	now      func() time.Time
	newID    func() string
}

// BuilderOption customizes a Builder.
type BuilderOption func(*Builder)

// WithClock overrides the creation timestamp source.
func WithClock(now func() time.Time) BuilderOption {
	return func(b *Builder) { b.now = now }
}

// WithIDGenerator overrides loan ID generation.
func WithIDGenerator(newID func() string) BuilderOption {
	return func(b *Builder) { b.newID = newID }
}

// NewBuilder returns a builder resolving schedules with resolver.
func NewBuilder(resolver *Resolver, opts ...BuilderOption) *Builder {
	b := &Builder{
		resolver: resolver,
		now:      time.Now,
		newID:    func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// NewLoan creates an ACTIVE loan and resolves its expected payments.
func (b *Builder) NewLoan(data NewLoanData) (*Loan, error) {
	terms := data.Terms()
	schedule, err := b.resolver.Resolve(terms)
	if err != nil {
		return nil, err
	}

	return &Loan{
		ID:          b.newID(),
		ProductType: ProductLoan,
		CreatedAt:   b.now().UTC(),
		Terms:       terms,
		State:       StateActive,
		Summary: &PaymentSummary{
			InterestFreeDays: b.resolver.InterestFreeDays(),
			ExpectedPayments: schedule.Payments,
		},
	}, nil
}
