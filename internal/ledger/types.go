package ledger

import "time"

// LoanStatus is the lifecycle state of a loan.
type LoanStatus string

const (
	// StatusActive is a loan with an outstanding balance.
	StatusActive LoanStatus = "active"

	// StatusPaid is a loan whose balance has reached zero.
	StatusPaid LoanStatus = "paid"

	// StatusDefaulted is a loan written off by an operator.
	StatusDefaulted LoanStatus = "defaulted"
)

// ValidStatuses is the set of loan statuses an operator may set.
var ValidStatuses = []LoanStatus{StatusActive, StatusPaid, StatusDefaulted}

// IsValidStatus returns true if the status is a known loan status.
func IsValidStatus(s LoanStatus) bool {
	for _, v := range ValidStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Customer is a borrower on file.
type Customer struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Loan is money lent to a customer.
//
// All monetary amounts are integer cents. Floats never touch money.
type Loan struct {
	ID             string     `json:"id"`
	CustomerID     string     `json:"customer_id"`
	PrincipalCents int64      `json:"principal_cents"`
	BalanceCents   int64      `json:"balance_cents"`
	InterestRate   float64    `json:"interest_rate"` // annual percentage, informational
	TermMonths     int        `json:"term_months"`
	StartDate      string     `json:"start_date"` // YYYY-MM-DD
	Status         LoanStatus `json:"status"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// Payment is money received against a loan.
type Payment struct {
	ID          string    `json:"id"`
	LoanID      string    `json:"loan_id"`
	AmountCents int64     `json:"amount_cents"`
	Method      string    `json:"method,omitempty"` // cash, transfer, card...
	Notes       string    `json:"notes,omitempty"`
	PaidAt      time.Time `json:"paid_at"`
	CreatedAt   time.Time `json:"created_at"`
}

// Receipt is the printable record issued for a payment.
// At most one receipt exists per payment.
type Receipt struct {
	ID        string    `json:"id"`
	PaymentID string    `json:"payment_id"`
	Number    string    `json:"number"`
	IssuedAt  time.Time `json:"issued_at"`
	CreatedAt time.Time `json:"created_at"`
}
