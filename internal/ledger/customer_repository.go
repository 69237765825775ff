package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
)

// CustomerRepository defines the interface for customer persistence.
type CustomerRepository interface {
	Create(ctx context.Context, c *Customer) error
	GetByID(ctx context.Context, id string) (*Customer, error)
	List(ctx context.Context) ([]Customer, error)
	Update(ctx context.Context, c *Customer) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

// SQLiteCustomerRepository implements CustomerRepository using SQLite.
type SQLiteCustomerRepository struct {
	db *sql.DB
}

// NewCustomerRepository creates a new SQLite-backed customer repository.
func NewCustomerRepository(db *sql.DB) *SQLiteCustomerRepository {
	return &SQLiteCustomerRepository{db: db}
}

// Create inserts a new customer. The ID is generated if empty.
func (r *SQLiteCustomerRepository) Create(ctx context.Context, c *Customer) error {
	if c.ID == "" {
		c.ID = "cus-" + uuid.NewString()[:8]
	}

	now := time.Now().UTC().Format(time.RFC3339)
	c.CreatedAt, _ = time.Parse(time.RFC3339, now) //nolint:errcheck // format is controlled
	c.UpdatedAt = c.CreatedAt

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO customers (id, name, email, phone, address, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, nullString(c.Email), nullString(c.Phone), nullString(c.Address), now, now,
	)
	if err != nil {
		return fmt.Errorf("creating customer: %w", err)
	}
	return nil
}

// GetByID retrieves a customer by ID.
func (r *SQLiteCustomerRepository) GetByID(ctx context.Context, id string) (*Customer, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT id, name, email, phone, address, created_at, updated_at FROM customers WHERE id = ?", id)
	return scanCustomerFrom(row)
}

// List returns all customers ordered by creation date.
func (r *SQLiteCustomerRepository) List(ctx context.Context) ([]Customer, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, name, email, phone, address, created_at, updated_at FROM customers ORDER BY created_at ASC")
	if err != nil {
		return nil, fmt.Errorf("listing customers: %w", err)
	}
	defer rows.Close()

	var customers []Customer
	for rows.Next() {
		c, err := scanCustomerFrom(rows)
		if err != nil {
			return nil, err
		}
		customers = append(customers, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating customers: %w", err)
	}

	if customers == nil {
		customers = []Customer{}
	}
	return customers, nil
}

// Update modifies a customer's mutable fields.
func (r *SQLiteCustomerRepository) Update(ctx context.Context, c *Customer) error {
	now := time.Now().UTC().Format(time.RFC3339)
	c.UpdatedAt, _ = time.Parse(time.RFC3339, now) //nolint:errcheck // format is controlled

	result, err := r.db.ExecContext(ctx,
		`UPDATE customers SET name = ?, email = ?, phone = ?, address = ?, updated_at = ? WHERE id = ?`,
		c.Name, nullString(c.Email), nullString(c.Phone), nullString(c.Address), now, c.ID,
	)
	if err != nil {
		return fmt.Errorf("updating customer: %w", err)
	}

	rows, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if rows == 0 {
		return ErrCustomerNotFound
	}
	return nil
}

// Delete removes a customer. Customers with loans on file cannot be
// deleted; the foreign key RESTRICT surfaces as ErrCustomerHasLoans.
func (r *SQLiteCustomerRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM customers WHERE id = ?", id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrCustomerHasLoans
		}
		return fmt.Errorf("deleting customer: %w", err)
	}

	rows, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if rows == 0 {
		return ErrCustomerNotFound
	}
	return nil
}

// Count returns the total number of customers.
func (r *SQLiteCustomerRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM customers").Scan(&count); err != nil {
		return 0, fmt.Errorf("counting customers: %w", err)
	}
	return count, nil
}

// scanCustomerFrom scans a customer from any scanner (Row or Rows).
func scanCustomerFrom(s scanner) (*Customer, error) {
	var c Customer
	var email, phone, address sql.NullString
	var createdAt, updatedAt string

	err := s.Scan(&c.ID, &c.Name, &email, &phone, &address, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("scanning customer: %w", err)
	}

	c.Email = email.String
	c.Phone = phone.String
	c.Address = address.String
	c.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck // format is controlled
	c.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt) //nolint:errcheck // format is controlled

	return &c, nil
}

// scanner is an interface for sql.Row and sql.Rows Scan methods.
type scanner interface {
	Scan(dest ...any) error
}

// nullString converts an empty string to a NULL-able value.
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// isForeignKeyViolation reports whether err is a SQLite FK constraint failure.
func isForeignKeyViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey
	}
	return false
}

// isUniqueViolation reports whether err is a SQLite UNIQUE constraint failure.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
