package ledger

import "errors"

// Sentinel errors for ledger operations.
var (
	ErrCustomerNotFound = errors.New("customer not found")
	ErrLoanNotFound     = errors.New("loan not found")
	ErrPaymentNotFound  = errors.New("payment not found")
	ErrReceiptNotFound  = errors.New("receipt not found")

	// ErrCustomerHasLoans blocks deleting a customer with loans on file.
	ErrCustomerHasLoans = errors.New("customer has loans on file")

	// ErrLoanHasPayments blocks deleting a loan with recorded payments.
	ErrLoanHasPayments = errors.New("loan has recorded payments")

	// ErrReceiptExists is returned when a payment already has a receipt.
	ErrReceiptExists = errors.New("payment already has a receipt")

	// ErrLoanNotActive is returned when recording a payment against a
	// loan that is not accepting payments.
	ErrLoanNotActive = errors.New("loan is not active")
)
