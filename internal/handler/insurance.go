package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/sunshinebank/sunshine-ledger/internal/domain"
	"github.com/sunshinebank/sunshine-ledger/internal/logging"
)

type insuranceService interface {
	PurchasePolicy(ctx context.Context, savingsID uuid.UUID, premiumCents int64) (*domain.Transaction, error)
	CancelPolicy(ctx context.Context, savingsID uuid.UUID, refundCents int64) (*domain.Transaction, error)
}

type InsuranceHandler struct {
	insurance insuranceService
	accounts  accountGetter
}

func NewInsuranceHandler(insurance insuranceService, accounts accountGetter) *InsuranceHandler {
	return &InsuranceHandler{insurance: insurance, accounts: accounts}
}

func (h *InsuranceHandler) Purchase(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, h.insurance.PurchasePolicy, "policy purchase failed")
}

func (h *InsuranceHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, h.insurance.CancelPolicy, "policy cancellation failed")
}

func (h *InsuranceHandler) apply(w http.ResponseWriter, r *http.Request, op func(context.Context, uuid.UUID, int64) (*domain.Transaction, error), failMsg string) {
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
