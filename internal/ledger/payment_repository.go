package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PaymentRepository defines the interface for payment persistence.
type PaymentRepository interface {
	// Record inserts a payment and reduces the loan balance in one
	// transaction. A loan whose balance reaches zero becomes paid.
	Record(ctx context.Context, p *Payment) error
	GetByID(ctx context.Context, id string) (*Payment, error)
	List(ctx context.Context) ([]Payment, error)
	ListByLoan(ctx context.Context, loanID string) ([]Payment, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

// SQLitePaymentRepository implements PaymentRepository using SQLite.
type SQLitePaymentRepository struct {
	db *sql.DB
}

// NewPaymentRepository creates a new SQLite-backed payment repository.
func NewPaymentRepository(db *sql.DB) *SQLitePaymentRepository {
	return &SQLitePaymentRepository{db: db}
}

const paymentColumns = "id, loan_id, amount_cents, method, notes, paid_at, created_at"

// Record inserts a payment and applies it to the loan balance.
//
// The insert, the balance decrement, and the status flip to paid all
// happen in a single transaction so a partial write can never leave
// the ledger and the loan out of step.
func (r *SQLitePaymentRepository) Record(ctx context.Context, p *Payment) error {
	if p.ID == "" {
		p.ID = "pay-" + uuid.NewString()[:8]
	}

	now := time.Now().UTC()
	if p.PaidAt.IsZero() {
		p.PaidAt = now
	}
	p.CreatedAt = now

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // Rollback is no-op after commit

	var balance int64
	var status string
	err = tx.QueryRowContext(ctx,
		"SELECT balance_cents, status FROM loans WHERE id = ?", p.LoanID,
	).Scan(&balance, &status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrLoanNotFound
		}
		return fmt.Errorf("loading loan: %w", err)
	}

	if LoanStatus(status) != StatusActive {
		return ErrLoanNotActive
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO payments (id, loan_id, amount_cents, method, notes, paid_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.LoanID, p.AmountCents, nullString(p.Method), nullString(p.Notes),
		p.PaidAt.UTC().Format(time.RFC3339), now.Format(time.RFC3339),
	); err != nil {
		return fmt.Errorf("inserting payment: %w", err)
	}

	newBalance := balance - p.AmountCents
	if newBalance < 0 {
		newBalance = 0
	}
	newStatus := StatusActive
	if newBalance == 0 {
		newStatus = StatusPaid
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE loans SET balance_cents = ?, status = ?, updated_at = ? WHERE id = ?",
		newBalance, string(newStatus), now.Format(time.RFC3339), p.LoanID,
	); err != nil {
		return fmt.Errorf("applying payment to loan: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing payment: %w", err)
	}
	return nil
}

// GetByID retrieves a payment by ID.
func (r *SQLitePaymentRepository) GetByID(ctx context.Context, id string) (*Payment, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+paymentColumns+" FROM payments WHERE id = ?", id)
	return scanPaymentFrom(row)
}

// List returns all payments ordered by payment date.
func (r *SQLitePaymentRepository) List(ctx context.Context) ([]Payment, error) {
	return r.listPayments(ctx, "SELECT "+paymentColumns+" FROM payments ORDER BY paid_at ASC")
}

// ListByLoan returns all payments recorded against one loan.
func (r *SQLitePaymentRepository) ListByLoan(ctx context.Context, loanID string) ([]Payment, error) {
	return r.listPayments(ctx,
		"SELECT "+paymentColumns+" FROM payments WHERE loan_id = ? ORDER BY paid_at ASC", loanID)
}

func (r *SQLitePaymentRepository) listPayments(ctx context.Context, query string, args ...any) ([]Payment, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing payments: %w", err)
	}
	defer rows.Close()

	var payments []Payment
	for rows.Next() {
		p, err := scanPaymentFrom(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating payments: %w", err)
	}

	if payments == nil {
		payments = []Payment{}
	}
	return payments, nil
}

// Delete removes a payment record. It does not restore the loan
// balance: corrections are recorded as adjustments, not erased.
// Payments with an issued receipt cannot be deleted.
func (r *SQLitePaymentRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM payments WHERE id = ?", id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrReceiptExists
		}
		return fmt.Errorf("deleting payment: %w", err)
	}

	rows, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if rows == 0 {
		return ErrPaymentNotFound
	}
	return nil
}

// Count returns the total number of payments.
func (r *SQLitePaymentRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM payments").Scan(&count); err != nil {
		return 0, fmt.Errorf("counting payments: %w", err)
	}
	return count, nil
}

// scanPaymentFrom scans a payment from any scanner (Row or Rows).
func scanPaymentFrom(s scanner) (*Payment, error) {
	var p Payment
	var method, notes sql.NullString
	var paidAt, createdAt string

	err := s.Scan(&p.ID, &p.LoanID, &p.AmountCents, &method, &notes, &paidAt, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("scanning payment: %w", err)
	}

	p.Method = method.String
	p.Notes = notes.String
	p.PaidAt, _ = time.Parse(time.RFC3339, paidAt)       //nolint:errcheck // format is controlled
	p.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck // format is controlled

	return &p, nil
}
