package ledger

import (
	"fmt"
	"strings"
	"time"
)

// maxNameLength bounds customer names to keep UI layouts sane.
const maxNameLength = 200

// ValidateCustomer checks a customer record before it is written.
func ValidateCustomer(c *Customer) error {
	name := strings.TrimSpace(c.Name)
	if name == "" {
		return fmt.Errorf("name is required")
	}
	if len(name) > maxNameLength {
		return fmt.Errorf("name must be at most %d characters", maxNameLength)
	}
	if c.Email != "" && !strings.Contains(c.Email, "@") {
		return fmt.Errorf("email is not valid")
	}
	return nil
}

// ValidateLoan checks a loan record before it is written.
func ValidateLoan(l *Loan) error {
	if l.CustomerID == "" {
		return fmt.Errorf("customer_id is required")
	}
	if l.PrincipalCents <= 0 {
		return fmt.Errorf("principal_cents must be positive")
	}
	if l.InterestRate < 0 {
		return fmt.Errorf("interest_rate cannot be negative")
	}
	if l.TermMonths <= 0 {
		return fmt.Errorf("term_months must be positive")
	}
	if l.StartDate != "" {
		if _, err := time.Parse("2006-01-02", l.StartDate); err != nil {
			return fmt.Errorf("start_date must be YYYY-MM-DD")
		}
	}
	if l.Status != "" && !IsValidStatus(l.Status) {
		return fmt.Errorf("status must be active, paid, or defaulted")
	}
	return nil
}

// ValidatePayment checks a payment record before it is written.
func ValidatePayment(p *Payment) error {
	if p.LoanID == "" {
		return fmt.Errorf("loan_id is required")
	}
	if p.AmountCents <= 0 {
		return fmt.Errorf("amount_cents must be positive")
	}
	return nil
}
