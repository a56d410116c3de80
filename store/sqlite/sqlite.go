/*
Package sqlite provides a SQLite-backed implementation of loan.Store.

PURPOSE:
  Persists loans with their expected and actual payments. In production the
  same schema applies to PostgreSQL with minor dialect differences.

KEY TABLES:
  loans:    One row per loan: terms, state and interest-free day policy
  payments: One row per installment, tagged expected or actual

STORAGE FORMATS:
  - Money is stored as decimal TEXT, never REAL, so amounts round-trip exactly
  - Dates are stored as YYYY-MM-DD, timestamps as RFC 3339 in UTC

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. An in-memory database is pinned to a
  single connection, since every new connection would open an empty one.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging):
  - Multiple readers don't block
  - Single writer at a time

USAGE:
  store, err := sqlite.New("./data/loans.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New().

SEE ALSO:
  - loan/store.go: Interface definition
  - store/memory: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/warp/loan-engine/calendar"
	"github.com/warp/loan-engine/loan"
)

const (
	kindExpected = "expected"
	kindActual   = "actual"
)

// Store implements loan.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS loans (
		id TEXT PRIMARY KEY,
		product_type TEXT NOT NULL,
		state TEXT NOT NULL,
		principal TEXT NOT NULL,
		monthly_interest_rate TEXT NOT NULL,
		start_date TEXT NOT NULL,
		term_in_days INTEGER NOT NULL,
		payment_periodicity_in_days INTEGER NOT NULL,
		free_on_sundays BOOLEAN NOT NULL DEFAULT FALSE,
		free_on_saturdays BOOLEAN NOT NULL DEFAULT FALSE,
		free_on_holidays BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_loans_created_at
		ON loans(created_at, id);

	CREATE TABLE IF NOT EXISTS payments (
		loan_id TEXT NOT NULL REFERENCES loans(id) ON DELETE CASCADE,
		kind TEXT NOT NULL CHECK (kind IN ('expected', 'actual')),
		payment_id INTEGER NOT NULL,
		date TEXT NOT NULL,
		amount TEXT NOT NULL,
		PRIMARY KEY (loan_id, kind, payment_id)
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// LOAN STORE (loan.Store interface)
// =============================================================================

// SaveLoan writes the loan and its payments atomically.
func (s *Store) SaveLoan(ctx context.Context, l *loan.Loan) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var policy loan.InterestFreeDays
	if l.Summary != nil {
		policy = l.Summary.InterestFreeDays
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO loans
		(id, product_type, state, principal, monthly_interest_rate, start_date,
		 term_in_days, payment_periodicity_in_days,
		 free_on_sundays, free_on_saturdays, free_on_holidays, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		l.ID,
		string(l.ProductType),
		string(l.State),
		l.Terms.Principal.String(),
		l.Terms.MonthlyInterestRate.String(),
		l.Terms.StartDate.String(),
		l.Terms.TermInDays,
		l.Terms.PaymentPeriodicityInDays,
		policy.OnSundays,
		policy.OnSaturdays,
		policy.OnHolidays,
		l.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return loan.ErrDuplicateLoan
		}
		return fmt.Errorf("failed to insert loan: %w", err)
	}

	if l.Summary != nil {
		if err := insertPayments(ctx, tx, l.ID, kindExpected, l.Summary.ExpectedPayments); err != nil {
			return err
		}
		if err := insertPayments(ctx, tx, l.ID, kindActual, l.Summary.ActualPayments); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func insertPayments(ctx context.Context, tx *sql.Tx, loanID, kind string, payments []loan.Payment) error {
	for _, p := range payments {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO payments (loan_id, kind, payment_id, date, amount) VALUES (?, ?, ?, ?, ?)",
			loanID, kind, p.ID, p.Date.String(), p.Amount.String(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert %s payment %d: %w", kind, p.ID, err)
		}
	}
	return nil
}

const selectLoans = `
	SELECT id, product_type, state, principal, monthly_interest_rate, start_date,
	       term_in_days, payment_periodicity_in_days,
	       free_on_sundays, free_on_saturdays, free_on_holidays, created_at
	FROM loans
`

// GetLoan retrieves a loan with its payments.
func (s *Store) GetLoan(ctx context.Context, id string) (*loan.Loan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	loans, err := s.queryLoans(ctx, selectLoans+" WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	if len(loans) == 0 {
		return nil, loan.ErrLoanNotFound
	}
	if err := s.attachPayments(ctx, loans, "WHERE loan_id = ?", id); err != nil {
		return nil, err
	}
	return loans[0], nil
}

// ListLoans returns every loan, oldest first.
func (s *Store) ListLoans(ctx context.Context) ([]*loan.Loan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	loans, err := s.queryLoans(ctx, selectLoans+" ORDER BY created_at ASC, id ASC")
	if err != nil {
		return nil, err
	}
	if err := s.attachPayments(ctx, loans, ""); err != nil {
		return nil, err
	}
	return loans, nil
}

func (s *Store) queryLoans(ctx context.Context, query string, args ...any) ([]*loan.Loan, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query loans: %w", err)
	}
	defer rows.Close()

	loans := []*loan.Loan{}
	for rows.Next() {
		l, err := scanLoan(rows)
		if err != nil {
			return nil, err
		}
		loans = append(loans, l)
	}
	return loans, rows.Err()
}

func scanLoan(rows *sql.Rows) (*loan.Loan, error) {
	var (
		l                          loan.Loan
		productType, state         string
		principal, rate, startDate string
		createdAt                  string
		policy                     loan.InterestFreeDays
	)

	err := rows.Scan(
		&l.ID, &productType, &state, &principal, &rate, &startDate,
		&l.Terms.TermInDays, &l.Terms.PaymentPeriodicityInDays,
		&policy.OnSundays, &policy.OnSaturdays, &policy.OnHolidays, &createdAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan loan: %w", err)
	}

	l.ProductType = loan.ProductType(productType)
	l.State = loan.State(state)
	if l.Terms.Principal, err = decimal.NewFromString(principal); err != nil {
		return nil, fmt.Errorf("loan %s: bad principal %q: %w", l.ID, principal, err)
	}
	if l.Terms.MonthlyInterestRate, err = decimal.NewFromString(rate); err != nil {
		return nil, fmt.Errorf("loan %s: bad rate %q: %w", l.ID, rate, err)
	}
	if l.Terms.StartDate, err = calendar.ParseTimePoint(startDate); err != nil {
		return nil, fmt.Errorf("loan %s: %w", l.ID, err)
	}
	if l.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("loan %s: bad created_at %q: %w", l.ID, createdAt, err)
	}
	l.Summary = &loan.PaymentSummary{InterestFreeDays: policy}
	return &l, nil
}

// attachPayments loads payments for the given loans in one query. Rows for
// loans not in the slice are ignored.
func (s *Store) attachPayments(ctx context.Context, loans []*loan.Loan, where string, args ...any) error {
	if len(loans) == 0 {
		return nil
	}
	byID := make(map[string]*loan.Loan, len(loans))
	for _, l := range loans {
		byID[l.ID] = l
	}

	query := "SELECT loan_id, kind, payment_id, date, amount FROM payments " + where +
		" ORDER BY loan_id, kind, payment_id"
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to query payments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			loanID, kind, date, amount string
			p                          loan.Payment
		)
		if err := rows.Scan(&loanID, &kind, &p.ID, &date, &amount); err != nil {
			return fmt.Errorf("failed to scan payment: %w", err)
		}
		l, ok := byID[loanID]
		if !ok {
			continue
		}
		if p.Date, err = calendar.ParseTimePoint(date); err != nil {
			return fmt.Errorf("loan %s payment %d: %w", loanID, p.ID, err)
		}
		if p.Amount, err = decimal.NewFromString(amount); err != nil {
			return fmt.Errorf("loan %s payment %d: bad amount %q: %w", loanID, p.ID, amount, err)
		}
		switch kind {
		case kindExpected:
			l.Summary.ExpectedPayments = append(l.Summary.ExpectedPayments, p)
		case kindActual:
			l.Summary.ActualPayments = append(l.Summary.ActualPayments, p)
		}
	}
	return rows.Err()
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range []string{"payments", "loans"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

func isUniqueConstraintError(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint
}
