package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	// Unknown routes and wrong methods answer in JSON like everything else.
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeNotFound(w, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeMethodNotAllowed(w)
	})

	r.Route("/api", func(r chi.Router) {
		// Health check (no auth required)
		r.Get("/health", s.handleHealth)

		// Login establishes the session cookie. POST /api/auth is the
		// canonical route; /api/auth/login is an alias for clients that
		// prefer the explicit verb.
		r.Post("/auth", s.handleLogin)
		r.Post("/auth/login", s.handleLogin)

		// Session check reads the cookie itself so it can distinguish
		// a missing token from an invalid one.
		r.Get("/auth/check", s.handleAuthCheck)

		// Logout only clears the cookie; no valid session required.
		r.Post("/auth/logout", s.handleLogout)

		// Change-password authenticates with the old password in the
		// body, so it does not sit behind the session middleware.
		r.Post("/auth/change-password", s.handleChangePassword)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			// Customer endpoints
			r.Route("/customers", func(r chi.Router) {
				r.Get("/", s.handleListCustomers)
				r.Post("/", s.handleCreateCustomer)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", s.handleGetCustomer)
					r.Put("/", s.handleUpdateCustomer)
					r.Delete("/", s.handleDeleteCustomer)
					r.Get("/loans", s.handleListCustomerLoans)
				})
			})

			// Loan endpoints
			r.Route("/loans", func(r chi.Router) {
				r.Get("/", s.handleListLoans)
				r.Post("/", s.handleCreateLoan)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", s.handleGetLoan)
					r.Put("/", s.handleUpdateLoan)
					r.Delete("/", s.handleDeleteLoan)
					r.Get("/payments", s.handleListLoanPayments)
				})
			})

			// Payment endpoints
			r.Route("/payments", func(r chi.Router) {
				r.Get("/", s.handleListPayments)
				r.Post("/", s.handleRecordPayment)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", s.handleGetPayment)
					r.Delete("/", s.handleDeletePayment)
					r.Get("/receipt", s.handleGetPaymentReceipt)
					r.Post("/receipt", s.handleIssueReceipt)
				})
			})

			// Receipt endpoints
			r.Route("/receipts", func(r chi.Router) {
				r.Get("/", s.handleListReceipts)
				r.Post("/", s.handleCreateReceipt)
				r.Get("/{id}", s.handleGetReceipt)
			})

			// Operational endpoints
			r.Get("/metrics", s.handleMetrics)
			r.Get("/audit", s.handleListAuditLogs)
		})
	})

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	if s.db != nil {
		if err := s.db.HealthCheck(r.Context()); err != nil {
			status = "degraded"
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":  status,
		"version": s.version,
	})
}
