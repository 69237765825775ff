package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/loanledger/loanledger/internal/ledger"
)

// customerRequest is the request body for creating or updating a customer.
type customerRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// handleListCustomers returns all customers.
func (s *Server) handleListCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := s.customerRepo.List(r.Context())
	if err != nil {
		s.logger.Error("list customers failed", "error", err)
		writeInternalError(w, "Failed to list customers")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"customers": customers,
		"count":     len(customers),
	})
}

// handleCreateCustomer creates a new customer record.
func (s *Server) handleCreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req customerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "Invalid JSON body")
		return
	}

	customer := &ledger.Customer{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
	}

	if err := ledger.ValidateCustomer(customer); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	if err := s.customerRepo.Create(r.Context(), customer); err != nil {
		s.logger.Error("create customer failed", "error", err)
		writeInternalError(w, "Failed to create customer")
		return
	}

	claims := claimsFromContext(r.Context())
	s.logger.Info("customer created", "customer_id", customer.ID, "created_by", claims.Subject)
	s.auditLog("create", "customer", customer.ID, claims.Subject, map[string]any{
		"name": customer.Name,
	})
	s.publishEvent("customer", "created", customer)

	writeJSON(w, http.StatusCreated, customer)
}

// handleGetCustomer returns a single customer by ID.
func (s *Server) handleGetCustomer(w http.ResponseWriter, r *http.Request) {
	customer, err := s.customerRepo.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, ledger.ErrCustomerNotFound) {
			writeNotFound(w, "Customer not found")
			return
		}
		s.logger.Error("get customer failed", "error", err)
		writeInternalError(w, "Failed to get customer")
		return
	}

	writeJSON(w, http.StatusOK, customer)
}

// handleUpdateCustomer replaces a customer's mutable fields.
func (s *Server) handleUpdateCustomer(w http.ResponseWriter, r *http.Request) {
	var req customerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "Invalid JSON body")
		return
	}

	customer := &ledger.Customer{
		ID:      chi.URLParam(r, "id"),
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
	}

	if err := ledger.ValidateCustomer(customer); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	if err := s.customerRepo.Update(r.Context(), customer); err != nil {
		if errors.Is(err, ledger.ErrCustomerNotFound) {
			writeNotFound(w, "Customer not found")
			return
		}
		s.logger.Error("update customer failed", "error", err)
		writeInternalError(w, "Failed to update customer")
		return
	}

	claims := claimsFromContext(r.Context())
	s.auditLog("update", "customer", customer.ID, claims.Subject, nil)
	s.publishEvent("customer", "updated", customer)

	writeJSON(w, http.StatusOK, customer)
}

// handleDeleteCustomer removes a customer without loans on file.
func (s *Server) handleDeleteCustomer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.customerRepo.Delete(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, ledger.ErrCustomerNotFound):
			writeNotFound(w, "Customer not found")
		case errors.Is(err, ledger.ErrCustomerHasLoans):
			writeConflict(w, "Customer has loans on file")
		default:
			s.logger.Error("delete customer failed", "error", err)
			writeInternalError(w, "Failed to delete customer")
		}
		return
	}

	claims := claimsFromContext(r.Context())
	s.auditLog("delete", "customer", id, claims.Subject, nil)
	s.publishEvent("customer", "deleted", map[string]string{"id": id})

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Customer deleted",
	})
}

// handleListCustomerLoans returns all loans held by one customer.
func (s *Server) handleListCustomerLoans(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	// Confirm the customer exists so an unknown ID is a 404, not an empty list.
	if _, err := s.customerRepo.GetByID(r.Context(), id); err != nil {
		if errors.Is(err, ledger.ErrCustomerNotFound) {
			writeNotFound(w, "Customer not found")
			return
		}
		s.logger.Error("get customer failed", "error", err)
		writeInternalError(w, "Failed to list loans")
		return
	}

	loans, err := s.loanRepo.ListByCustomer(r.Context(), id)
	if err != nil {
		s.logger.Error("list customer loans failed", "error", err)
		writeInternalError(w, "Failed to list loans")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"loans": loans,
		"count": len(loans),
	})
}
