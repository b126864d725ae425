package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sunshinebank/sunshine-ledger/internal/domain"
	"github.com/sunshinebank/sunshine-ledger/internal/logging"
)

type accountService interface {
	accountGetter
	OpenAccount(ctx context.Context, customerID uuid.UUID, kind domain.AccountKind) (*domain.Account, error)
	CloseAccount(ctx context.Context, accountID uuid.UUID) error
	AccountsByCustomer(ctx context.Context, customerID uuid.UUID) ([]domain.Account, error)
}

type AccountHandler struct {
	accounts accountService
}

func NewAccountHandler(accounts accountService) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

type openAccountRequest struct {
	Kind string `json:"kind"`
}

func (r openAccountRequest) Validate() []FieldError {
	var errs []FieldError
	if r.Kind == "" {
		errs = append(errs, FieldError{Field: "kind", Message: "required"})
	} else if !domain.AccountKind(r.Kind).IsValid() {
		errs = append(errs, FieldError{Field: "kind", Message: "must be savings, fx, loan, credit_card, or insurance"})
	}
	return errs
}

type accountDTO struct {
	ID        uuid.UUID        `json:"id"`
	Kind      string           `json:"kind"`
	Status    string           `json:"status"`
	Balance   map[string]int64 `json:"balance,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}

func toAccountDTO(a *domain.Account) accountDTO {
	dto := accountDTO{
		ID:        a.ID,
		Kind:      string(a.Kind),
		Status:    string(a.Status),
		CreatedAt: a.CreatedAt,
	}
	if a.Kind.HasBalance() {
		dto.Balance = balanceDTO(a.Balance)
	}
	return dto
}

func balanceDTO(b domain.Balance) map[string]int64 {
	out := make(map[string]int64, len(domain.Currencies))
	for _, c := range domain.Currencies {
		out[string(c)] = b.Get(c)
	}
	return out
}

func (h *AccountHandler) Open(w http.ResponseWriter, r *http.Request) {
	customerID, appErr := authedCustomer(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	var req openAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	account, err := h.accounts.OpenAccount(r.Context(), customerID, domain.AccountKind(req.Kind))
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to open account", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusCreated, toAccountDTO(account))
}

func (h *AccountHandler) Close(w http.ResponseWriter, r *http.Request) {
	account, appErr := ownedAccount(r, h.accounts)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	if err := h.accounts.CloseAccount(r.Context(), account.ID); err != nil {
		logging.FromContext(r.Context()).Warn("failed to close account", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, map[string]string{"status": string(domain.AccountStatusClosed)})
}

func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	customerID, appErr := authedCustomer(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	accounts, err := h.accounts.AccountsByCustomer(r.Context(), customerID)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to list accounts", "error", err)
		RespondDomainError(w, err)
		return
	}

	dtos := make([]accountDTO, len(accounts))
	for i := range accounts {
		dtos[i] = toAccountDTO(&accounts[i])
	}

	RespondSuccess(w, http.StatusOK, dtos)
}

func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	account, appErr := ownedAccount(r, h.accounts)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	RespondSuccess(w, http.StatusOK, toAccountDTO(account))
}
