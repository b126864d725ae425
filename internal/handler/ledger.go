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

type ledgerService interface {
	Deposit(ctx context.Context, accountID uuid.UUID, cents int64) (*domain.Transaction, error)
	Withdraw(ctx context.Context, accountID uuid.UUID, cents int64) (*domain.Transaction, error)
	Transfer(ctx context.Context, fromID, toID uuid.UUID, cents int64) (*domain.Transaction, error)
	TopUpFX(ctx context.Context, savingsID, fxID uuid.UUID, cents int64) (*domain.Transaction, error)
	History(ctx context.Context, accountID uuid.UUID) ([]domain.Transaction, error)
}

type LedgerHandler struct {
	ledger   ledgerService
	accounts accountGetter
}

func NewLedgerHandler(ledger ledgerService, accounts accountGetter) *LedgerHandler {
	return &LedgerHandler{ledger: ledger, accounts: accounts}
}

type amountRequest struct {
	Amount int64 `json:"amount"`
}

func (r amountRequest) Validate() []FieldError {
	var errs []FieldError
	if r.Amount <= 0 {
		errs = append(errs, FieldError{Field: "amount", Message: "must be greater than 0"})
	}
	return errs
}

type transferRequest struct {
	ToAccountID string `json:"to_account_id"`
	Amount      int64  `json:"amount"`
}

func (r transferRequest) Validate() []FieldError {
	var errs []FieldError
	if r.ToAccountID == "" {
		errs = append(errs, FieldError{Field: "to_account_id", Message: "required"})
	} else if _, err := uuid.Parse(r.ToAccountID); err != nil {
		errs = append(errs, FieldError{Field: "to_account_id", Message: "must be a valid UUID"})
	}
	if r.Amount <= 0 {
		errs = append(errs, FieldError{Field: "amount", Message: "must be greater than 0"})
	}
	return errs
}

type transactionDTO struct {
	ID          uuid.UUID        `json:"id"`
	Kind        string           `json:"kind"`
	Amounts     map[string]int64 `json:"amounts"`
	FeeAmount   int64            `json:"fee_amount,omitempty"`
	FeeCurrency string           `json:"fee_currency,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
}

func toTransactionDTO(t *domain.Transaction) transactionDTO {
	amounts := make(map[string]int64)
	for _, c := range domain.Currencies {
		if v := t.Amounts.Get(c); v != 0 {
			amounts[string(c)] = v
		}
	}
	return transactionDTO{
		ID:          t.ID,
		Kind:        string(t.Kind),
		Amounts:     amounts,
		FeeAmount:   t.FeeAmount,
		FeeCurrency: string(t.FeeCurrency),
		CreatedAt:   t.CreatedAt,
	}
}

func (h *LedgerHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	h.move(w, r, h.ledger.Deposit, "deposit failed")
}

func (h *LedgerHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	h.move(w, r, h.ledger.Withdraw, "withdrawal failed")
}

func (h *LedgerHandler) move(w http.ResponseWriter, r *http.Request, op func(context.Context, uuid.UUID, int64) (*domain.Transaction, error), failMsg string) {
	account, appErr := ownedAccount(r, h.accounts)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	var req amountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	txn, err := op(r.Context(), account.ID, req.Amount)
	if err != nil {
		logging.FromContext(r.Context()).Warn(failMsg, "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusCreated, toTransactionDTO(txn))
}

func (h *LedgerHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	account, appErr := ownedAccount(r, h.accounts)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	var req transferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	toID, _ := uuid.Parse(req.ToAccountID)
	txn, err := h.ledger.Transfer(r.Context(), account.ID, toID, req.Amount)
	if err != nil {
		logging.FromContext(r.Context()).Warn("transfer failed", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusCreated, toTransactionDTO(txn))
}

func (h *LedgerHandler) TopUpFX(w http.ResponseWriter, r *http.Request) {
	account, appErr := ownedAccount(r, h.accounts)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	var req transferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	fxID, _ := uuid.Parse(req.ToAccountID)
	txn, err := h.ledger.TopUpFX(r.Context(), account.ID, fxID, req.Amount)
	if err != nil {
		logging.FromContext(r.Context()).Warn("fx top-up failed", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusCreated, toTransactionDTO(txn))
}

func (h *LedgerHandler) History(w http.ResponseWriter, r *http.Request) {
	account, appErr := ownedAccount(r, h.accounts)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	txns, err := h.ledger.History(r.Context(), account.ID)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to load history", "error", err)
		RespondDomainError(w, err)
		return
	}

	dtos := make([]transactionDTO, len(txns))
	for i := range txns {
		dtos[i] = toTransactionDTO(&txns[i])
	}

	RespondSuccess(w, http.StatusOK, dtos)
}
