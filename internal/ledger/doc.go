// Package ledger holds the loan book: customers, loans, payments, and
// receipts, persisted in SQLite through one repository per entity.
//
// Invariants the schema and repositories enforce together:
//   - every loan references an existing customer
//   - every payment references an existing loan; recording a payment
//     and reducing the loan balance is one transaction
//   - at most one receipt exists per payment
//   - monetary amounts are integer cents throughout
package ledger
