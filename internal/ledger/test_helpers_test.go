package ledger

import (
	"context"
	"database/sql"
	"os"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

// testDB creates a temporary SQLite database with the ledger schema applied.
// The database file is cleaned up when the test completes.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	// Use a temp file so WAL mode works (in-memory doesn't support it)
	f, err := os.CreateTemp("", "ledger-test-*.db")
	if err != nil {
		t.Fatalf("creating temp db: %v", err)
	}
	dbPath := f.Name()
	f.Close()
	t.Cleanup(func() { os.Remove(dbPath) })

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=ON")
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	migrationSQL := `
		CREATE TABLE customers (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT,
			phone TEXT,
			address TEXT,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);

		CREATE TABLE loans (
			id TEXT PRIMARY KEY,
			customer_id TEXT NOT NULL,
			principal_cents INTEGER NOT NULL,
			balance_cents INTEGER NOT NULL,
			interest_rate REAL NOT NULL DEFAULT 0,
			term_months INTEGER NOT NULL,
			start_date TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'active',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			FOREIGN KEY (customer_id) REFERENCES customers(id) ON DELETE RESTRICT
		);

		CREATE TABLE payments (
			id TEXT PRIMARY KEY,
			loan_id TEXT NOT NULL,
			amount_cents INTEGER NOT NULL,
			method TEXT,
			notes TEXT,
			paid_at TEXT NOT NULL,
			created_at TEXT NOT NULL,
			FOREIGN KEY (loan_id) REFERENCES loans(id) ON DELETE RESTRICT
		);

		CREATE TABLE receipts (
			id TEXT PRIMARY KEY,
			payment_id TEXT NOT NULL UNIQUE,
			number TEXT NOT NULL UNIQUE,
			issued_at TEXT NOT NULL,
			created_at TEXT NOT NULL,
			FOREIGN KEY (payment_id) REFERENCES payments(id) ON DELETE RESTRICT
		);
	`
	if _, err := db.Exec(migrationSQL); err != nil {
		t.Fatalf("creating ledger schema: %v", err)
	}

	return db
}

// seedCustomer inserts a customer and returns it.
func seedCustomer(t *testing.T, db *sql.DB) *Customer {
	t.Helper()

	repo := NewCustomerRepository(db)
	c := &Customer{Name: "Test Customer", Email: "test@example.com"}
	if err := repo.Create(context.Background(), c); err != nil {
		t.Fatalf("seeding customer: %v", err)
	}
	return c
}

// seedLoan inserts an active loan for the customer and returns it.
func seedLoan(t *testing.T, db *sql.DB, customerID string, principalCents int64) *Loan {
	t.Helper()

	repo := NewLoanRepository(db)
	l := &Loan{
		CustomerID:     customerID,
		PrincipalCents: principalCents,
		InterestRate:   5.0,
		TermMonths:     12,
	}
	if err := repo.Create(context.Background(), l); err != nil {
		t.Fatalf("seeding loan: %v", err)
	}
	return l
}
