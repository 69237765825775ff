package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/loanledger/loanledger/internal/ledger"
)

// createLoanRequest is the request body for POST /api/loans.
type createLoanRequest struct {
	CustomerID     string  `json:"customer_id"`
	PrincipalCents int64   `json:"principal_cents"`
	InterestRate   float64 `json:"interest_rate"`
	TermMonths     int     `json:"term_months"`
	StartDate      string  `json:"start_date"`
}

// updateLoanRequest is the request body for PUT /api/loans/{id}.
// The principal is immutable; balance corrections go through here,
// routine balance movement through payments.
type updateLoanRequest struct {
	BalanceCents *int64             `json:"balance_cents,omitempty"`
	InterestRate *float64           `json:"interest_rate,omitempty"`
	TermMonths   *int               `json:"term_months,omitempty"`
	StartDate    *string            `json:"start_date,omitempty"`
	Status       *ledger.LoanStatus `json:"status,omitempty"`
}

// handleListLoans returns all loans.
func (s *Server) handleListLoans(w http.ResponseWriter, r *http.Request) {
	loans, err := s.loanRepo.List(r.Context())
	if err != nil {
		s.logger.Error("list loans failed", "error", err)
		writeInternalError(w, "Failed to list loans")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"loans": loans,
		"count": len(loans),
	})
}

// handleCreateLoan opens a new loan for a customer.
func (s *Server) handleCreateLoan(w http.ResponseWriter, r *http.Request) {
	var req createLoanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "Invalid JSON body")
		return
	}

	loan := &ledger.Loan{
		CustomerID:     req.CustomerID,
		PrincipalCents: req.PrincipalCents,
		InterestRate:   req.InterestRate,
		TermMonths:     req.TermMonths,
		StartDate:      req.StartDate,
	}

	if err := ledger.ValidateLoan(loan); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	if err := s.loanRepo.Create(r.Context(), loan); err != nil {
		if errors.Is(err, ledger.ErrCustomerNotFound) {
			writeNotFound(w, "Customer not found")
			return
		}
		s.logger.Error("create loan failed", "error", err)
		writeInternalError(w, "Failed to create loan")
		return
	}

	claims := claimsFromContext(r.Context())
	s.logger.Info("loan created",
		"loan_id", loan.ID,
		"customer_id", loan.CustomerID,
		"principal_cents", loan.PrincipalCents,
		"created_by", claims.Subject,
	)
	s.auditLog("create", "loan", loan.ID, claims.Subject, map[string]any{
		"customer_id":     loan.CustomerID,
		"principal_cents": loan.PrincipalCents,
	})
	s.publishEvent("loan", "created", loan)

	writeJSON(w, http.StatusCreated, loan)
}

// handleGetLoan returns a single loan by ID.
func (s *Server) handleGetLoan(w http.ResponseWriter, r *http.Request) {
	loan, err := s.loanRepo.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, ledger.ErrLoanNotFound) {
			writeNotFound(w, "Loan not found")
			return
		}
		s.logger.Error("get loan failed", "error", err)
		writeInternalError(w, "Failed to get loan")
		return
	}

	writeJSON(w, http.StatusOK, loan)
}

// handleUpdateLoan patches a loan's mutable fields.
//
// Fields absent from the body keep their current value, so a status
// write-off ({"status":"defaulted"}) does not disturb the balance.
func (s *Server) handleUpdateLoan(w http.ResponseWriter, r *http.Request) {
	var req updateLoanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "Invalid JSON body")
		return
	}

	loan, err := s.loanRepo.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, ledger.ErrLoanNotFound) {
			writeNotFound(w, "Loan not found")
			return
		}
		s.logger.Error("get loan failed", "error", err)
		writeInternalError(w, "Failed to update loan")
		return
	}

	if req.BalanceCents != nil {
		if *req.BalanceCents < 0 {
			writeBadRequest(w, "balance_cents cannot be negative")
			return
		}
		loan.BalanceCents = *req.BalanceCents
	}
	if req.InterestRate != nil {
		loan.InterestRate = *req.InterestRate
	}
	if req.TermMonths != nil {
		loan.TermMonths = *req.TermMonths
	}
	if req.StartDate != nil {
		loan.StartDate = *req.StartDate
	}
	if req.Status != nil {
		loan.Status = *req.Status
	}

	if err := ledger.ValidateLoan(loan); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	if err := s.loanRepo.Update(r.Context(), loan); err != nil {
		if errors.Is(err, ledger.ErrLoanNotFound) {
			writeNotFound(w, "Loan not found")
			return
		}
		s.logger.Error("update loan failed", "error", err)
		writeInternalError(w, "Failed to update loan")
		return
	}

	claims := claimsFromContext(r.Context())
	s.auditLog("update", "loan", loan.ID, claims.Subject, map[string]any{
		"status": loan.Status,
	})
	s.publishEvent("loan", "updated", loan)

	writeJSON(w, http.StatusOK, loan)
}

// handleDeleteLoan removes a loan with no recorded payments.
func (s *Server) handleDeleteLoan(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.loanRepo.Delete(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, ledger.ErrLoanNotFound):
			writeNotFound(w, "Loan not found")
		case errors.Is(err, ledger.ErrLoanHasPayments):
			writeConflict(w, "Loan has recorded payments")
		default:
			s.logger.Error("delete loan failed", "error", err)
			writeInternalError(w, "Failed to delete loan")
		}
		return
	}

	claims := claimsFromContext(r.Context())
	s.auditLog("delete", "loan", id, claims.Subject, nil)
	s.publishEvent("loan", "deleted", map[string]string{"id": id})

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Loan deleted",
	})
}

// handleListLoanPayments returns all payments recorded against one loan.
func (s *Server) handleListLoanPayments(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if _, err := s.loanRepo.GetByID(r.Context(), id); err != nil {
		if errors.Is(err, ledger.ErrLoanNotFound) {
			writeNotFound(w, "Loan not found")
			return
		}
		s.logger.Error("get loan failed", "error", err)
		writeInternalError(w, "Failed to list payments")
		return
	}

	payments, err := s.paymentRepo.ListByLoan(r.Context(), id)
	if err != nil {
		s.logger.Error("list loan payments failed", "error", err)
		writeInternalError(w, "Failed to list payments")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"payments": payments,
		"count":    len(payments),
	})
}
