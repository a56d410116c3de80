// Package memory provides an in-memory loan.Store.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/warp/loan-engine/loan"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Store struct {
	mu    sync.RWMutex
	loans map[string]*loan.Loan
}

func New() *Store {
	return &Store{loans: make(map[string]*loan.Loan)}
}

// SaveLoan stores a copy of l.
func (s *Store) SaveLoan(_ context.Context, l *loan.Loan) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.loans[l.ID]; ok {
		return loan.ErrDuplicateLoan
	}
	s.loans[l.ID] = l.Clone()
	return nil
}

func (s *Store) GetLoan(_ context.Context, id string) (*loan.Loan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.loans[id]
	if !ok {
		return nil, loan.ErrLoanNotFound
	}
	return l.Clone(), nil
}

func (s *Store) ListLoans(_ context.Context) ([]*loan.Loan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	loans := make([]*loan.Loan, 0, len(s.loans))
	for _, l := range s.loans {
		loans = append(loans, l.Clone())
	}
	sort.Slice(loans, func(i, j int) bool {
		if !loans[i].CreatedAt.Equal(loans[j].CreatedAt) {
			return loans[i].CreatedAt.Before(loans[j].CreatedAt)
		}
		return loans[i].ID < loans[j].ID
	})
	return loans, nil
}

// Len returns the number of stored loans.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.loans)
}
