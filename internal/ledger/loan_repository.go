package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// LoanRepository defines the interface for loan persistence.
type LoanRepository interface {
	Create(ctx context.Context, l *Loan) error
	GetByID(ctx context.Context, id string) (*Loan, error)
	List(ctx context.Context) ([]Loan, error)
	ListByCustomer(ctx context.Context, customerID string) ([]Loan, error)
	Update(ctx context.Context, l *Loan) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

// SQLiteLoanRepository implements LoanRepository using SQLite.
type SQLiteLoanRepository struct {
	db *sql.DB
}

// NewLoanRepository creates a new SQLite-backed loan repository.
func NewLoanRepository(db *sql.DB) *SQLiteLoanRepository {
	return &SQLiteLoanRepository{db: db}
}

const loanColumns = "id, customer_id, principal_cents, balance_cents, interest_rate, term_months, start_date, status, created_at, updated_at"

// Create inserts a new loan. The ID is generated if empty; the balance
// starts at the principal and the status defaults to active.
func (r *SQLiteLoanRepository) Create(ctx context.Context, l *Loan) error {
	if l.ID == "" {
		l.ID = "loan-" + uuid.NewString()[:8]
	}
	if l.Status == "" {
		l.Status = StatusActive
	}
	if l.BalanceCents == 0 {
		l.BalanceCents = l.PrincipalCents
	}
	if l.StartDate == "" {
		l.StartDate = time.Now().UTC().Format("2006-01-02")
	}

	now := time.Now().UTC().Format(time.RFC3339)
	l.CreatedAt, _ = time.Parse(time.RFC3339, now) //nolint:errcheck // format is controlled
	l.UpdatedAt = l.CreatedAt

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO loans (id, customer_id, principal_cents, balance_cents, interest_rate, term_months, start_date, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.ID, l.CustomerID, l.PrincipalCents, l.BalanceCents, l.InterestRate,
		l.TermMonths, l.StartDate, string(l.Status), now, now,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrCustomerNotFound
		}
		return fmt.Errorf("creating loan: %w", err)
	}
	return nil
}

// GetByID retrieves a loan by ID.
func (r *SQLiteLoanRepository) GetByID(ctx context.Context, id string) (*Loan, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+loanColumns+" FROM loans WHERE id = ?", id)
	return scanLoanFrom(row)
}

// List returns all loans ordered by creation date.
func (r *SQLiteLoanRepository) List(ctx context.Context) ([]Loan, error) {
	return r.listLoans(ctx, "SELECT "+loanColumns+" FROM loans ORDER BY created_at ASC")
}

// ListByCustomer returns all loans belonging to one customer.
func (r *SQLiteLoanRepository) ListByCustomer(ctx context.Context, customerID string) ([]Loan, error) {
	return r.listLoans(ctx,
		"SELECT "+loanColumns+" FROM loans WHERE customer_id = ? ORDER BY created_at ASC", customerID)
}

func (r *SQLiteLoanRepository) listLoans(ctx context.Context, query string, args ...any) ([]Loan, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing loans: %w", err)
	}
	defer rows.Close()

	var loans []Loan
	for rows.Next() {
		l, err := scanLoanFrom(rows)
		if err != nil {
			return nil, err
		}
		loans = append(loans, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating loans: %w", err)
	}

	if loans == nil {
		loans = []Loan{}
	}
	return loans, nil
}

// Update modifies a loan's mutable fields (rate, term, status, balance).
// The principal is immutable once written.
func (r *SQLiteLoanRepository) Update(ctx context.Context, l *Loan) error {
	now := time.Now().UTC().Format(time.RFC3339)
	l.UpdatedAt, _ = time.Parse(time.RFC3339, now) //nolint:errcheck // format is controlled

	result, err := r.db.ExecContext(ctx,
		`UPDATE loans SET balance_cents = ?, interest_rate = ?, term_months = ?, start_date = ?, status = ?, updated_at = ? WHERE id = ?`,
		l.BalanceCents, l.InterestRate, l.TermMonths, l.StartDate, string(l.Status), now, l.ID,
	)
	if err != nil {
		return fmt.Errorf("updating loan: %w", err)
	}

	rows, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if rows == 0 {
		return ErrLoanNotFound
	}
	return nil
}

// Delete removes a loan. Loans with recorded payments cannot be
// deleted; the foreign key RESTRICT surfaces as ErrLoanHasPayments.
func (r *SQLiteLoanRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM loans WHERE id = ?", id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrLoanHasPayments
		}
		return fmt.Errorf("deleting loan: %w", err)
	}

	rows, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if rows == 0 {
		return ErrLoanNotFound
	}
	return nil
}

// Count returns the total number of loans.
func (r *SQLiteLoanRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM loans").Scan(&count); err != nil {
		return 0, fmt.Errorf("counting loans: %w", err)
	}
	return count, nil
}

// scanLoanFrom scans a loan from any scanner (Row or Rows).
func scanLoanFrom(s scanner) (*Loan, error) {
	var l Loan
	var status string
	var createdAt, updatedAt string

	err := s.Scan(&l.ID, &l.CustomerID, &l.PrincipalCents, &l.BalanceCents,
		&l.InterestRate, &l.TermMonths, &l.StartDate, &status, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLoanNotFound
		}
		return nil, fmt.Errorf("scanning loan: %w", err)
	}

	l.Status = LoanStatus(status)
	l.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck // format is controlled
	l.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt) //nolint:errcheck // format is controlled

	return &l, nil
}
