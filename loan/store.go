/*
store.go - Persistence interface for loans

PURPOSE:
  Defines the boundary between loan creation and the database. Loans are
  written once with their expected schedule and read back whole.

CONTRACT:
  - SaveLoan rejects an ID that already exists with ErrDuplicateLoan
  - GetLoan returns ErrLoanNotFound for unknown IDs
  - ListLoans orders by creation time, then ID
  - Payments come back in ID order, amounts and dates unchanged

IMPLEMENTATIONS:
  - store/sqlite: SQLite, used by the server
  - store/memory: in-memory, for tests and the CLI
*/
package loan

import "context"

// Store persists loans.
type Store interface {
	SaveLoan(ctx context.Context, l *Loan) error
	GetLoan(ctx context.Context, id string) (*Loan, error)
	ListLoans(ctx context.Context) ([]*Loan, error)
}

// Clone returns a deep copy of the loan so stored state cannot be mutated
// through a returned pointer.
func (l *Loan) Clone() *Loan {
	if l == nil {
		return nil
	}
	c := *l
	if l.Summary != nil {
		s := *l.Summary
		s.ExpectedPayments = append([]Payment(nil), l.Summary.ExpectedPayments...)
		s.ActualPayments = append([]Payment(nil), l.Summary.ActualPayments...)
		c.Summary = &s
	}
	return &c
}
