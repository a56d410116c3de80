package memory_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/loan-engine/calendar"
	"github.com/warp/loan-engine/loan"
	"github.com/warp/loan-engine/store/memory"
)

func newLoan(t *testing.T, id string, createdAt time.Time) *loan.Loan {
	t.Helper()
	b := loan.NewBuilder(
		loan.NewResolver(loan.ResolverSettings{InterestFreeDays: loan.InterestFreeDays{OnSundays: true}}),
		loan.WithClock(func() time.Time { return createdAt }),
		loan.WithIDGenerator(func() string { return id }),
	)
	l, err := b.NewLoan(loan.NewLoanData{
		Principal:                decimal.NewFromInt(150000),
		MonthlyInterestRate:      decimal.NewFromInt(10),
		TermInDays:               60,
		FirstPaymentDate:         calendar.MustParseTimePoint("2024-01-09"),
		PaymentPeriodicityInDays: 7,
	})
	require.NoError(t, err)
	return l
}

func TestStore_SaveGet(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	l := newLoan(t, "loan-1", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	require.NoError(t, s.SaveLoan(ctx, l))

	got, err := s.GetLoan(ctx, "loan-1")
	require.NoError(t, err)
	assert.Equal(t, l, got)

	// WHEN the returned copy is modified THEN the stored loan is not
	got.Summary.ExpectedPayments[0].Amount = decimal.Zero
	again, err := s.GetLoan(ctx, "loan-1")
	require.NoError(t, err)
	assert.Equal(t, "22500", again.Summary.ExpectedPayments[0].Amount.String())
}

func TestStore_Errors(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	l := newLoan(t, "loan-1", time.Now())

	_, err := s.GetLoan(ctx, "missing")
	assert.ErrorIs(t, err, loan.ErrLoanNotFound)

	require.NoError(t, s.SaveLoan(ctx, l))
	assert.ErrorIs(t, s.SaveLoan(ctx, l), loan.ErrDuplicateLoan)
	assert.Equal(t, 1, s.Len())
}

func TestStore_ListOrdersByCreation(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, s.SaveLoan(ctx, newLoan(t, "c", base.Add(time.Hour))))
	require.NoError(t, s.SaveLoan(ctx, newLoan(t, "b", base)))
	require.NoError(t, s.SaveLoan(ctx, newLoan(t, "a", base.Add(time.Hour))))

	loans, err := s.ListLoans(ctx)
	require.NoError(t, err)

	ids := make([]string, len(loans))
	for i, l := range loans {
		ids[i] = l.ID
	}
	assert.Equal(t, []string{"b", "a", "c"}, ids)
}

func TestStore_ConcurrentSaves(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	l := newLoan(t, "template", time.Now())

	done := make(chan error)
	for i := 0; i < 20; i++ {
		go func(i int) {
			c := l.Clone()
			c.ID = fmt.Sprintf("loan-%d", i)
			done <- s.SaveLoan(ctx, c)
		}(i)
	}
	for i := 0; i < 20; i++ {
		assert.NoError(t, <-done)
	}
	assert.Equal(t, 20, s.Len())
}
