package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sunshinebank/sunshine-ledger/internal/domain"
	"github.com/sunshinebank/sunshine-ledger/internal/logging"
	"github.com/sunshinebank/sunshine-ledger/internal/service"
)

type loanService interface {
	Apply(ctx context.Context, accountID uuid.UUID, category domain.LoanCategory, principalCents int64, termYears int) (*domain.Loan, error)
	LoanByID(ctx context.Context, loanID uuid.UUID) (*domain.Loan, error)
	Schedule(ctx context.Context, loanID uuid.UUID) ([]service.Installment, error)
	Repay(ctx context.Context, loanID, sourceAccountID uuid.UUID, cents int64) (*domain.Loan, error)
	RepayInstallment(ctx context.Context, loanID, sourceAccountID uuid.UUID) (*domain.Loan, error)
	LoansByAccount(ctx context.Context, accountID uuid.UUID, status *domain.LoanStatus) ([]domain.Loan, error)
}

type LoanHandler struct {
	loans    loanService
	accounts accountGetter
}

func NewLoanHandler(loans loanService, accounts accountGetter) *LoanHandler {
	return &LoanHandler{loans: loans, accounts: accounts}
}

type applyLoanRequest struct {
	Category  string `json:"category"`
	Principal int64  `json:"principal"`
	TermYears int    `json:"term_years"`
}

func (r applyLoanRequest) Validate() []FieldError {
	var errs []FieldError
	if r.Category == "" {
		errs = append(errs, FieldError{Field: "category", Message: "required"})
	} else if !domain.LoanCategory(r.Category).IsValid() {
		errs = append(errs, FieldError{Field: "category", Message: "must be personal, car, study, or home"})
	}
	if r.Principal <= 0 {
		errs = append(errs, FieldError{Field: "principal", Message: "must be greater than 0"})
	}
	if r.TermYears <= 0 {
		errs = append(errs, FieldError{Field: "term_years", Message: "must be greater than 0"})
	}
	return errs
}

type loanDTO struct {
	ID              uuid.UUID `json:"id"`
	AccountID       uuid.UUID `json:"account_id"`
	Category        string    `json:"category"`
	Status          string    `json:"status"`
	Principal       int64     `json:"principal"`
	TermYears       int       `json:"term_years"`
	InterestRate    string    `json:"interest_rate"`
	MonthlyPayment  int64     `json:"monthly_payment"`
	TotalPayment    int64     `json:"total_payment"`
	RemainingAmount int64     `json:"remaining_amount"`
	CreatedAt       time.Time `json:"created_at"`
}

func toLoanDTO(l *domain.Loan) loanDTO {
	return loanDTO{
		ID:              l.ID,
		AccountID:       l.AccountID,
		Category:        string(l.Category),
		Status:          string(l.Status),
		Principal:       l.Principal,
		TermYears:       l.TermYears,
		InterestRate:    l.InterestRate.String(),
		MonthlyPayment:  l.MonthlyPayment,
		TotalPayment:    l.TotalPayment,
		RemainingAmount: l.RemainingAmount,
		CreatedAt:       l.CreatedAt,
	}
}

func (h *LoanHandler) Apply(w http.ResponseWriter, r *http.Request) {
	account, appErr := ownedAccount(r, h.accounts)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	var req applyLoanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	loan, err := h.loans.Apply(r.Context(), account.ID, domain.LoanCategory(req.Category), req.Principal, req.TermYears)
	if err != nil {
		logging.FromContext(r.Context()).Warn("loan application failed", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusCreated, toLoanDTO(loan))
}

func (h *LoanHandler) List(w http.ResponseWriter, r *http.Request) {
	account, appErr := ownedAccount(r, h.accounts)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	var status *domain.LoanStatus
	if s := r.URL.Query().Get("status"); s != "" {
		ls := domain.LoanStatus(s)
		if ls != domain.LoanStatusOngoing && ls != domain.LoanStatusCompleted {
			RespondValidationError(w, []FieldError{{Field: "status", Message: "must be ongoing or completed"}})
			return
		}
		status = &ls
	}

	loans, err := h.loans.LoansByAccount(r.Context(), account.ID, status)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to list loans", "error", err)
		RespondDomainError(w, err)
		return
	}

	dtos := make([]loanDTO, len(loans))
	for i := range loans {
		dtos[i] = toLoanDTO(&loans[i])
	}

	RespondSuccess(w, http.StatusOK, dtos)
}

type installmentDTO struct {
	Number int   `json:"number"`
	Amount int64 `json:"amount"`
}

func (h *LoanHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	loan, appErr := h.ownedLoan(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	schedule, err := h.loans.Schedule(r.Context(), loan.ID)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to build schedule", "error", err)
		RespondDomainError(w, err)
		return
	}

	dtos := make([]installmentDTO, len(schedule))
	for i, inst := range schedule {
		dtos[i] = installmentDTO{Number: inst.Number, Amount: inst.Amount}
	}

	RespondSuccess(w, http.StatusOK, dtos)
}

type repayRequest struct {
	SourceAccountID string `json:"source_account_id"`
	Amount          *int64 `json:"amount"`
}

func (r repayRequest) Validate() []FieldError {
	var errs []FieldError
	if r.SourceAccountID == "" {
		errs = append(errs, FieldError{Field: "source_account_id", Message: "required"})
	} else if _, err := uuid.Parse(r.SourceAccountID); err != nil {
		errs = append(errs, FieldError{Field: "source_account_id", Message: "must be a valid UUID"})
	}
	if r.Amount != nil && *r.Amount <= 0 {
		errs = append(errs, FieldError{Field: "amount", Message: "must be greater than 0"})
	}
	return errs
}

// Repay pays down a loan from a savings account. Omitting the amount pays
// one monthly installment.
func (h *LoanHandler) Repay(w http.ResponseWriter, r *http.Request) {
	customerID, appErr := authedCustomer(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	target, appErr := h.ownedLoan(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	var req repayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	sourceID, _ := uuid.Parse(req.SourceAccountID)
	if appErr := h.verifyOwner(r.Context(), sourceID, customerID); appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	var loan *domain.Loan
	var err error
	if req.Amount != nil {
		loan, err = h.loans.Repay(r.Context(), target.ID, sourceID, *req.Amount)
	} else {
		loan, err = h.loans.RepayInstallment(r.Context(), target.ID, sourceID)
	}
	if err != nil {
		logging.FromContext(r.Context()).Warn("loan repayment failed", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, toLoanDTO(loan))
}

// ownedLoan parses the {id} path segment, loads the loan, and checks that
// its account belongs to the authenticated customer. Loans of other
// customers are reported as not found, like any other foreign resource.
func (h *LoanHandler) ownedLoan(r *http.Request) (*domain.Loan, *AppError) {
	customerID, appErr := authedCustomer(r)
	if appErr != nil {
		return nil, appErr
	}
	loanID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return nil, ErrResourceNotFound
	}
	loan, err := h.loans.LoanByID(r.Context(), loanID)
	if err != nil {
		return nil, ErrResourceNotFound
	}
	if appErr := h.verifyOwner(r.Context(), loan.AccountID, customerID); appErr != nil {
		return nil, appErr
	}
	return loan, nil
}

func (h *LoanHandler) verifyOwner(ctx context.Context, accountID, customerID uuid.UUID) *AppError {
	account, err := h.accounts.GetAccount(ctx, accountID)
	if err != nil {
		return ErrResourceNotFound
	}
	if account.CustomerID != customerID {
		return ErrResourceNotFound
	}
	return nil
}
