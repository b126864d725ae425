package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/sunshinebank/sunshine-ledger/internal/domain"
	"github.com/sunshinebank/sunshine-ledger/internal/logging"
	"github.com/sunshinebank/sunshine-ledger/internal/service"
)

type limitsService interface {
	Remaining(ctx context.Context, accountID uuid.UUID, scope domain.LimitScope, currency domain.Currency) (domain.Money, error)
	Overview(ctx context.Context, accountID uuid.UUID) (*service.Overview, error)
	SetCeiling(ctx context.Context, accountID uuid.UUID, scope domain.LimitScope, currency domain.Currency, cents int64) (*domain.Limits, error)
}

type LimitsHandler struct {
	limits   limitsService
	accounts accountGetter
}

func NewLimitsHandler(limits limitsService, accounts accountGetter) *LimitsHandler {
	return &LimitsHandler{limits: limits, accounts: accounts}
}

type limitsOverviewDTO struct {
	WithdrawCeiling   map[string]int64 `json:"withdraw_ceiling"`
	TransferCeiling   map[string]int64 `json:"transfer_ceiling"`
	RemainingWithdraw map[string]int64 `json:"remaining_withdraw"`
	RemainingTransfer map[string]int64 `json:"remaining_transfer"`
}

func (h *LimitsHandler) Overview(w http.ResponseWriter, r *http.Request) {
	account, appErr := ownedAccount(r, h.accounts)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	overview, err := h.limits.Overview(r.Context(), account.ID)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to load limits", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, limitsOverviewDTO{
		WithdrawCeiling:   balanceDTO(overview.Limits.WithdrawCeiling),
		TransferCeiling:   balanceDTO(overview.Limits.TransferCeiling),
		RemainingWithdraw: balanceDTO(overview.RemainingWithdraw),
		RemainingTransfer: balanceDTO(overview.RemainingTransfer),
	})
}

type setCeilingRequest struct {
	Scope    string `json:"scope"`
	Currency string `json:"currency"`
	Amount   int64  `json:"amount"`
}

func (r setCeilingRequest) Validate() []FieldError {
	var errs []FieldError
	if r.Scope == "" {
		errs = append(errs, FieldError{Field: "scope", Message: "required"})
	} else if !domain.LimitScope(r.Scope).IsValid() {
		errs = append(errs, FieldError{Field: "scope", Message: "must be withdraw or transfer"})
	}
	if r.Currency == "" {
		errs = append(errs, FieldError{Field: "currency", Message: "required"})
	} else if !domain.Currency(r.Currency).IsValid() {
		errs = append(errs, FieldError{Field: "currency", Message: "must be SGD, MYR, AUD, USD, or GBP"})
	}
	if r.Amount <= 0 {
		errs = append(errs, FieldError{Field: "amount", Message: "must be greater than 0"})
	}
	return errs
}

func (h *LimitsHandler) SetCeiling(w http.ResponseWriter, r *http.Request) {
	account, appErr := ownedAccount(r, h.accounts)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	var req setCeilingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	limits, err := h.limits.SetCeiling(r.Context(), account.ID, domain.LimitScope(req.Scope), domain.Currency(req.Currency), req.Amount)
	if err != nil {
		logging.FromContext(r.Context()).Warn("failed to set ceiling", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, limitsOverviewDTO{
		WithdrawCeiling: balanceDTO(limits.WithdrawCeiling),
		TransferCeiling: balanceDTO(limits.TransferCeiling),
	})
}

func (h *LimitsHandler) Remaining(w http.ResponseWriter, r *http.Request) {
	account, appErr := ownedAccount(r, h.accounts)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	scope := r.URL.Query().Get("scope")
	currency := r.URL.Query().Get("currency")

	var fields []FieldError
	if !domain.LimitScope(scope).IsValid() {
		fields = append(fields, FieldError{Field: "scope", Message: "must be withdraw or transfer"})
	}
	if !domain.Currency(currency).IsValid() {
		fields = append(fields, FieldError{Field: "currency", Message: "must be SGD, MYR, AUD, USD, or GBP"})
	}
	if len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	remaining, err := h.limits.Remaining(r.Context(), account.ID, domain.LimitScope(scope), domain.Currency(currency))
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to compute remaining limit", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, map[string]any{
		"scope":     scope,
		"currency":  string(remaining.Currency),
		"remaining": remaining.Amount,
	})
}
