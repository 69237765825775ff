package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/loanledger/loanledger/internal/ledger"
)

// recordPaymentRequest is the request body for POST /api/payments.
type recordPaymentRequest struct {
	LoanID      string `json:"loan_id"`
	AmountCents int64  `json:"amount_cents"`
	Method      string `json:"method"`
	Notes       string `json:"notes"`
}

// handleListPayments returns all payments.
func (s *Server) handleListPayments(w http.ResponseWriter, r *http.Request) {
	payments, err := s.paymentRepo.List(r.Context())
	if err != nil {
		s.logger.Error("list payments failed", "error", err)
		writeInternalError(w, "Failed to list payments")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"payments": payments,
		"count":    len(payments),
	})
}

// handleRecordPayment records a payment against a loan.
//
// The payment insert and the loan balance reduction are one transaction
// inside the repository; the handler only maps outcomes to statuses.
func (s *Server) handleRecordPayment(w http.ResponseWriter, r *http.Request) {
	var req recordPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "Invalid JSON body")
		return
	}

	payment := &ledger.Payment{
		LoanID:      req.LoanID,
		AmountCents: req.AmountCents,
		Method:      req.Method,
		Notes:       req.Notes,
	}

	if err := ledger.ValidatePayment(payment); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	if err := s.paymentRepo.Record(r.Context(), payment); err != nil {
		switch {
		case errors.Is(err, ledger.ErrLoanNotFound):
			writeNotFound(w, "Loan not found")
		case errors.Is(err, ledger.ErrLoanNotActive):
			writeConflict(w, "Loan is not active")
		default:
			s.logger.Error("record payment failed", "error", err)
			writeInternalError(w, "Failed to record payment")
		}
		return
	}

	claims := claimsFromContext(r.Context())
	s.logger.Info("payment recorded",
		"payment_id", payment.ID,
		"loan_id", payment.LoanID,
		"amount_cents", payment.AmountCents,
		"recorded_by", claims.Subject,
	)
	s.auditLog("create", "payment", payment.ID, claims.Subject, map[string]any{
		"loan_id":      payment.LoanID,
		"amount_cents": payment.AmountCents,
	})
	s.publishEvent("payment", "recorded", payment)

	writeJSON(w, http.StatusCreated, payment)
}

// handleGetPayment returns a single payment by ID.
func (s *Server) handleGetPayment(w http.ResponseWriter, r *http.Request) {
	payment, err := s.paymentRepo.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, ledger.ErrPaymentNotFound) {
			writeNotFound(w, "Payment not found")
			return
		}
		s.logger.Error("get payment failed", "error", err)
		writeInternalError(w, "Failed to get payment")
		return
	}

	writeJSON(w, http.StatusOK, payment)
}

// handleDeletePayment removes a mis-keyed payment record.
//
// The loan balance is not restored automatically; the operator corrects
// it through a loan update. Payments with an issued receipt are
// immutable.
func (s *Server) handleDeletePayment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.paymentRepo.Delete(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, ledger.ErrPaymentNotFound):
			writeNotFound(w, "Payment not found")
		case errors.Is(err, ledger.ErrReceiptExists):
			writeConflict(w, "Payment has an issued receipt")
		default:
			s.logger.Error("delete payment failed", "error", err)
			writeInternalError(w, "Failed to delete payment")
		}
		return
	}

	claims := claimsFromContext(r.Context())
	s.auditLog("delete", "payment", id, claims.Subject, nil)
	s.publishEvent("payment", "deleted", map[string]string{"id": id})

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Payment deleted",
	})
}
