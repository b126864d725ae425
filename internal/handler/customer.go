package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/sunshinebank/sunshine-ledger/internal/domain"
	"github.com/sunshinebank/sunshine-ledger/internal/logging"
	"golang.org/x/crypto/bcrypt"
)

type customerStore interface {
	Create(ctx context.Context, c *domain.Customer) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error)
}

type CustomerHandler struct {
	customers customerStore
}

func NewCustomerHandler(customers customerStore) *CustomerHandler {
	return &CustomerHandler{customers: customers}
}

type registerRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

func (r registerRequest) Validate() []FieldError {
	var errs []FieldError
	if r.Email == "" {
		errs = append(errs, FieldError{Field: "email", Message: "required"})
	} else if !strings.Contains(r.Email, "@") {
		errs = append(errs, FieldError{Field: "email", Message: "must be a valid email address"})
	}
	if r.Name == "" {
		errs = append(errs, FieldError{Field: "name", Message: "required"})
	}
	if len(r.Password) < 8 {
		errs = append(errs, FieldError{Field: "password", Message: "must be at least 8 characters"})
	}
	return errs
}

func (h *CustomerHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		RespondAppError(w, ErrInternalError, nil)
		return
	}

	customer := &domain.Customer{
		ID:           uuid.New(),
		Email:        strings.ToLower(req.Email),
		Name:         req.Name,
		PasswordHash: string(hash),
	}
	if err := h.customers.Create(r.Context(), customer); err != nil {
		logging.FromContext(r.Context()).Warn("customer registration failed", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusCreated, customerDTO{
		ID:    customer.ID,
		Email: customer.Email,
		Name:  customer.Name,
	})
}

func (h *CustomerHandler) Me(w http.ResponseWriter, r *http.Request) {
	customerID, appErr := authedCustomer(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	customer, err := h.customers.GetByID(r.Context(), customerID)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to get customer", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, customerDTO{
		ID:    customer.ID,
		Email: customer.Email,
		Name:  customer.Name,
	})
}
