// Package api provides the HTTP REST API for the loan ledger.
//
// It exposes cookie-based session authentication and CRUD endpoints for
// customers, loans, payments, and receipts to the back-office frontend.
//
// The server follows the same lifecycle pattern as other infrastructure
// components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
//
// Thread Safety: All methods are safe for concurrent use from multiple goroutines.
package api
