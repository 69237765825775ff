package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ReceiptRepository defines the interface for receipt persistence.
type ReceiptRepository interface {
	// Issue creates the receipt for a payment. At most one receipt may
	// exist per payment.
	Issue(ctx context.Context, rc *Receipt) error
	GetByID(ctx context.Context, id string) (*Receipt, error)
	GetByPayment(ctx context.Context, paymentID string) (*Receipt, error)
	List(ctx context.Context) ([]Receipt, error)
	Count(ctx context.Context) (int, error)
}

// SQLiteReceiptRepository implements ReceiptRepository using SQLite.
type SQLiteReceiptRepository struct {
	db *sql.DB
}

// NewReceiptRepository creates a new SQLite-backed receipt repository.
func NewReceiptRepository(db *sql.DB) *SQLiteReceiptRepository {
	return &SQLiteReceiptRepository{db: db}
}

const receiptColumns = "id, payment_id, number, issued_at, created_at"

// Issue creates the receipt record for a payment.
// The receipt number is generated when empty: RCP-YYYYMMDD-XXXXXX.
func (r *SQLiteReceiptRepository) Issue(ctx context.Context, rc *Receipt) error {
	if rc.ID == "" {
		rc.ID = "rcp-" + uuid.NewString()[:8]
	}

	now := time.Now().UTC()
	if rc.IssuedAt.IsZero() {
		rc.IssuedAt = now
	}
	rc.CreatedAt = now

	if rc.Number == "" {
		rc.Number = generateReceiptNumber(rc.IssuedAt)
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO receipts (id, payment_id, number, issued_at, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		rc.ID, rc.PaymentID, rc.Number,
		rc.IssuedAt.UTC().Format(time.RFC3339), now.Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrReceiptExists
		}
		if isForeignKeyViolation(err) {
			return ErrPaymentNotFound
		}
		return fmt.Errorf("issuing receipt: %w", err)
	}
	return nil
}

// GetByID retrieves a receipt by ID.
func (r *SQLiteReceiptRepository) GetByID(ctx context.Context, id string) (*Receipt, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+receiptColumns+" FROM receipts WHERE id = ?", id)
	return scanReceiptFrom(row)
}

// GetByPayment retrieves the receipt issued for a payment.
func (r *SQLiteReceiptRepository) GetByPayment(ctx context.Context, paymentID string) (*Receipt, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+receiptColumns+" FROM receipts WHERE payment_id = ?", paymentID)
	return scanReceiptFrom(row)
}

// List returns all receipts ordered by issue date.
func (r *SQLiteReceiptRepository) List(ctx context.Context) ([]Receipt, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+receiptColumns+" FROM receipts ORDER BY issued_at ASC")
	if err != nil {
		return nil, fmt.Errorf("listing receipts: %w", err)
	}
	defer rows.Close()

	var receipts []Receipt
	for rows.Next() {
		rc, err := scanReceiptFrom(rows)
		if err != nil {
			return nil, err
		}
		receipts = append(receipts, *rc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating receipts: %w", err)
	}

	if receipts == nil {
		receipts = []Receipt{}
	}
	return receipts, nil
}

// Count returns the total number of receipts.
func (r *SQLiteReceiptRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM receipts").Scan(&count); err != nil {
		return 0, fmt.Errorf("counting receipts: %w", err)
	}
	return count, nil
}

// generateReceiptNumber builds a human-readable receipt number from the
// issue date and a random suffix.
func generateReceiptNumber(issuedAt time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("RCP-%s-%s", issuedAt.UTC().Format("20060102"), suffix)
}

// scanReceiptFrom scans a receipt from any scanner (Row or Rows).
func scanReceiptFrom(s scanner) (*Receipt, error) {
	var rc Receipt
	var issuedAt, createdAt string

	err := s.Scan(&rc.ID, &rc.PaymentID, &rc.Number, &issuedAt, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReceiptNotFound
		}
		return nil, fmt.Errorf("scanning receipt: %w", err)
	}

	rc.IssuedAt, _ = time.Parse(time.RFC3339, issuedAt)   //nolint:errcheck // format is controlled
	rc.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck // format is controlled

	return &rc, nil
}
