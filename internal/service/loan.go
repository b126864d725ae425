package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sunshinebank/sunshine-ledger/internal/domain"
	"github.com/sunshinebank/sunshine-ledger/internal/logging"
	"github.com/sunshinebank/sunshine-ledger/internal/metrics"
	"github.com/sunshinebank/sunshine-ledger/internal/repository"
)

// Loan origination bounds, in cents.
const (
	loanMinPrincipal  = 50_000
	loanShortTermOver = 400_000
)

type loanRepo interface {
	Create(ctx context.Context, loan *domain.Loan) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Loan, error)
	GetForUpdate(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*domain.Loan, error)
	ListByAccountID(ctx context.Context, accountID uuid.UUID, status *domain.LoanStatus) ([]domain.Loan, error)
	HasOngoing(ctx context.Context, accountID uuid.UUID, category domain.LoanCategory) (bool, error)
	UpdateRepayment(ctx context.Context, tx *sql.Tx, id uuid.UUID, remaining int64, status domain.LoanStatus) error
}

// LoanService originates loans with a one-time simple-interest charge and
// applies repayments from savings accounts.
type LoanService struct {
	loans    loanRepo
	accounts accountRepo
	txns     txnRepo
	rates    map[domain.LoanCategory]decimal.Decimal
	db       *repository.DB
	clock    Clock
	metrics  *metrics.Collector
}

func NewLoanService(loans loanRepo, accounts accountRepo, txns txnRepo, rates map[domain.LoanCategory]decimal.Decimal, db *repository.DB, clock Clock, collector *metrics.Collector) *LoanService {
	return &LoanService{
		loans:    loans,
		accounts: accounts,
		txns:     txns,
		rates:    rates,
		db:       db,
		clock:    clock,
		metrics:  collector,
	}
}

// Apply originates a loan. Principals below $500 are rejected; principals
// under $4000 may run 1-2 years and anything larger 1-5 years. An account
// can hold at most one ongoing loan per category.
func (s *LoanService) Apply(ctx context.Context, accountID uuid.UUID, category domain.LoanCategory, principalCents int64, termYears int) (loan *domain.Loan, err error) {
	defer func() { s.metrics.RecordOperation("loan_apply", err) }()

	if !category.IsValid() {
		return nil, fmt.Errorf("Apply: category %q: %w", category, domain.ErrNotFound)
	}
	if principalCents < loanMinPrincipal {
		return nil, fmt.Errorf("Apply: %w", domain.ErrBelowMinimum)
	}
	if termYears < 1 ||
		(principalCents < loanShortTermOver && termYears > 2) ||
		(principalCents >= loanShortTermOver && termYears > 5) {
		return nil, fmt.Errorf("Apply: %w", domain.ErrInvalidTerm)
	}

	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("Apply: %w", domain.ErrAccountNotFound)
		}
		return nil, fmt.Errorf("Apply: %w", err)
	}
	if account.Status == domain.AccountStatusClosed {
		return nil, fmt.Errorf("Apply: %w", domain.ErrAccountClosed)
	}

	ongoing, err := s.loans.HasOngoing(ctx, accountID, category)
	if err != nil {
		return nil, fmt.Errorf("Apply: %w", err)
	}
	if ongoing {
		return nil, fmt.Errorf("Apply: %w", domain.ErrDuplicateOngoingLoan)
	}

	rate, ok := s.rates[category]
	if !ok {
		return nil, fmt.Errorf("Apply: no rate configured for category %q: %w", category, domain.ErrNotFound)
	}

	// interest = principal * annual rate * term, charged once at origination.
	principal := decimal.New(principalCents, -2)
	interest := principal.Mul(rate).Mul(decimal.NewFromInt(int64(termYears)))
	total := principalCents + domain.CentsFromDecimalHalfUp(interest)
	// The installment rounds up to the cent so the schedule never
	// undershoots the total; the final installment absorbs the drift.
	monthly := domain.CentsFromDecimalHalfUp(
		decimal.New(total, -2).Div(decimal.NewFromInt(int64(termYears * 12))).RoundUp(2),
	)

	loan = &domain.Loan{
		ID:              uuid.New(),
		AccountID:       accountID,
		Category:        category,
		Status:          domain.LoanStatusOngoing,
		Principal:       principalCents,
		TermYears:       termYears,
		InterestRate:    rate,
		MonthlyPayment:  monthly,
		TotalPayment:    total,
		RemainingAmount: total,
		CreatedAt:       s.clock.Now(),
	}
	if err := s.loans.Create(ctx, loan); err != nil {
		return nil, fmt.Errorf("Apply: %w", err)
	}

	logging.FromContext(ctx).Info("loan originated",
		"loan_id", loan.ID,
		"account_id", accountID,
		"category", category,
		"principal", principalCents,
		"term_years", termYears,
		"total_payment", total,
	)
	return loan, nil
}

// Installment is one line of an amortization schedule.
type Installment struct {
	Number int
	Amount int64
}

// Schedule expands the loan into equal monthly installments. Rounding
// drift is absorbed by the final installment so the schedule sums exactly
// to the total payment.
func (s *LoanService) Schedule(ctx context.Context, loanID uuid.UUID) ([]Installment, error) {
	loan, err := s.loans.GetByID(ctx, loanID)
	if err != nil {
		return nil, fmt.Errorf("Schedule: %w", err)
	}

	n := loan.Installments()
	schedule := make([]Installment, n)
	for i := 0; i < n-1; i++ {
		schedule[i] = Installment{Number: i + 1, Amount: loan.MonthlyPayment}
	}
	schedule[n-1] = Installment{
		Number: n,
		Amount: loan.TotalPayment - int64(n-1)*loan.MonthlyPayment,
	}
	return schedule, nil
}

// Repay applies a custom repayment amount from a savings account.
func (s *LoanService) Repay(ctx context.Context, loanID, sourceAccountID uuid.UUID, cents int64) (*domain.Loan, error) {
	if cents <= 0 {
		err := fmt.Errorf("Repay: %w", domain.ErrInvalidAmount)
		s.metrics.RecordOperation("loan_repayment", err)
		return nil, err
	}
	return s.repay(ctx, loanID, sourceAccountID, func(*domain.Loan) int64 { return cents })
}

// RepayInstallment pays one scheduled installment, clamped to whatever is
// still outstanding so the final installment closes the loan exactly.
func (s *LoanService) RepayInstallment(ctx context.Context, loanID, sourceAccountID uuid.UUID) (*domain.Loan, error) {
	return s.repay(ctx, loanID, sourceAccountID, func(l *domain.Loan) int64 {
		return min(l.MonthlyPayment, l.RemainingAmount)
	})
}

func (s *LoanService) repay(ctx context.Context, loanID, sourceAccountID uuid.UUID, amountOf func(*domain.Loan) int64) (updated *domain.Loan, err error) {
	defer func() { s.metrics.RecordOperation("loan_repayment", err) }()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("repay: begin tx: %w", err)
	}
	defer tx.Rollback()

	loan, err := s.loans.GetForUpdate(ctx, tx, loanID)
	if err != nil {
		return nil, fmt.Errorf("repay: %w", err)
	}

	cents := amountOf(loan)
	if cents <= 0 || cents > loan.RemainingAmount {
		return nil, fmt.Errorf("repay: %w", domain.ErrExceedsRemaining)
	}

	source, err := s.accounts.GetForUpdate(ctx, tx, sourceAccountID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("repay: %w", domain.ErrAccountNotFound)
		}
		return nil, fmt.Errorf("repay: %w", err)
	}
	if err := verifyOperable(source, domain.AccountKindSavings); err != nil {
		return nil, fmt.Errorf("repay: source: %w", err)
	}

	if err := source.Balance.Debit(domain.CurrencySGD, cents); err != nil {
		return nil, fmt.Errorf("repay: %w", err)
	}
	if err := s.accounts.UpdateBalance(ctx, tx, source.ID, source.Balance, source.Version+1); err != nil {
		return nil, fmt.Errorf("repay: %w", err)
	}

	loan.RemainingAmount -= cents
	if loan.RemainingAmount == 0 {
		loan.Status = domain.LoanStatusCompleted
	}
	if err := s.loans.UpdateRepayment(ctx, tx, loan.ID, loan.RemainingAmount, loan.Status); err != nil {
		return nil, fmt.Errorf("repay: %w", err)
	}

	txn := &domain.Transaction{
		ID:        uuid.New(),
		AccountID: source.ID,
		Kind:      domain.TransactionKindLoanRepayment,
		Amounts:   domain.Balance{SGD: cents},
		CreatedAt: s.clock.Now(),
	}
	if err := s.txns.Create(ctx, tx, txn); err != nil {
		return nil, fmt.Errorf("repay: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("repay: commit: %w", err)
	}

	logging.FromContext(ctx).Info("loan repayment applied",
		"loan_id", loan.ID,
		"source_account", source.ID,
		"amount", cents,
		"remaining", loan.RemainingAmount,
		"status", loan.Status,
	)
	return loan, nil
}

// LoanByID returns a single loan.
func (s *LoanService) LoanByID(ctx context.Context, loanID uuid.UUID) (*domain.Loan, error) {
	loan, err := s.loans.GetByID(ctx, loanID)
	if err != nil {
		return nil, fmt.Errorf("LoanByID: %w", err)
	}
	return loan, nil
}

// LoansByAccount lists the account's loans, optionally filtered by status.
func (s *LoanService) LoansByAccount(ctx context.Context, accountID uuid.UUID, status *domain.LoanStatus) ([]domain.Loan, error) {
	loans, err := s.loans.ListByAccountID(ctx, accountID, status)
	if err != nil {
		return nil, fmt.Errorf("LoansByAccount: %w", err)
	}
	return loans, nil
}
