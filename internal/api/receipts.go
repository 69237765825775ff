package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/loanledger/loanledger/internal/ledger"
)

// handleListReceipts returns all issued receipts.
func (s *Server) handleListReceipts(w http.ResponseWriter, r *http.Request) {
	receipts, err := s.receiptRepo.List(r.Context())
	if err != nil {
		s.logger.Error("list receipts failed", "error", err)
		writeInternalError(w, "Failed to list receipts")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"receipts": receipts,
		"count":    len(receipts),
	})
}

// handleGetReceipt returns a single receipt by ID.
func (s *Server) handleGetReceipt(w http.ResponseWriter, r *http.Request) {
	receipt, err := s.receiptRepo.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, ledger.ErrReceiptNotFound) {
			writeNotFound(w, "Receipt not found")
			return
		}
		s.logger.Error("get receipt failed", "error", err)
		writeInternalError(w, "Failed to get receipt")
		return
	}

	writeJSON(w, http.StatusOK, receipt)
}

type issueReceiptRequest struct {
	PaymentID string `json:"payment_id"`
}

// handleCreateReceipt issues a receipt for the payment named in the body.
func (s *Server) handleCreateReceipt(w http.ResponseWriter, r *http.Request) {
	var req issueReceiptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "Invalid JSON body")
		return
	}
	if req.PaymentID == "" {
		writeBadRequest(w, "payment_id is required")
		return
	}

	s.issueReceipt(w, r, req.PaymentID)
}

// handleIssueReceipt issues the receipt for the payment in the URL.
func (s *Server) handleIssueReceipt(w http.ResponseWriter, r *http.Request) {
	s.issueReceipt(w, r, chi.URLParam(r, "id"))
}

// issueReceipt creates the receipt for a payment.
//
// At most one receipt exists per payment; a second issue attempt is a 409.
func (s *Server) issueReceipt(w http.ResponseWriter, r *http.Request, paymentID string) {
	receipt := &ledger.Receipt{
		PaymentID: paymentID,
	}

	if err := s.receiptRepo.Issue(r.Context(), receipt); err != nil {
		switch {
		case errors.Is(err, ledger.ErrPaymentNotFound):
			writeNotFound(w, "Payment not found")
		case errors.Is(err, ledger.ErrReceiptExists):
			writeConflict(w, "Payment already has a receipt")
		default:
			s.logger.Error("issue receipt failed", "error", err)
			writeInternalError(w, "Failed to issue receipt")
		}
		return
	}

	claims := claimsFromContext(r.Context())
	s.logger.Info("receipt issued",
		"receipt_id", receipt.ID,
		"payment_id", receipt.PaymentID,
		"number", receipt.Number,
		"issued_by", claims.Subject,
	)
	s.auditLog("create", "receipt", receipt.ID, claims.Subject, map[string]any{
		"payment_id": receipt.PaymentID,
		"number":     receipt.Number,
	})
	s.publishEvent("receipt", "issued", receipt)

	writeJSON(w, http.StatusCreated, receipt)
}

// handleGetPaymentReceipt returns the receipt issued for a payment.
func (s *Server) handleGetPaymentReceipt(w http.ResponseWriter, r *http.Request) {
	receipt, err := s.receiptRepo.GetByPayment(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, ledger.ErrReceiptNotFound) {
			writeNotFound(w, "Receipt not found")
			return
		}
		s.logger.Error("get payment receipt failed", "error", err)
		writeInternalError(w, "Failed to get receipt")
		return
	}

	writeJSON(w, http.StatusOK, receipt)
}
