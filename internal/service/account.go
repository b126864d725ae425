package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/sunshinebank/sunshine-ledger/internal/domain"
	"github.com/sunshinebank/sunshine-ledger/internal/logging"
	"github.com/sunshinebank/sunshine-ledger/internal/repository"
)

type accountRepo interface {
	Create(ctx context.Context, tx *sql.Tx, a *domain.Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	GetByCustomerID(ctx context.Context, customerID uuid.UUID) ([]domain.Account, error)
	GetForUpdate(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*domain.Account, error)
	UpdateBalance(ctx context.Context, tx *sql.Tx, id uuid.UUID, balance domain.Balance, newVersion int64) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.AccountStatus) error
}

type customerChecker interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error)
}

type limitsRepo interface {
	Create(ctx context.Context, tx *sql.Tx, l *domain.Limits) error
	GetByAccountID(ctx context.Context, accountID uuid.UUID) (*domain.Limits, error)
	GetByAccountIDTx(ctx context.Context, tx *sql.Tx, accountID uuid.UUID) (*domain.Limits, error)
	Update(ctx context.Context, l *domain.Limits) error
}

type AccountService struct {
	accounts        accountRepo
	customers       customerChecker
	limits          limitsRepo
	db              *repository.DB
	clock           Clock
	defaultCeilings domain.Balance
}

func NewAccountService(accounts accountRepo, customers customerChecker, limits limitsRepo, db *repository.DB, clock Clock, defaultCeilings domain.Balance) *AccountService {
	return &AccountService{
		accounts:        accounts,
		customers:       customers,
		limits:          limits,
		db:              db,
		clock:           clock,
		defaultCeilings: defaultCeilings,
	}
}

// OpenAccount creates an account and, for balance-carrying kinds, its daily
// limits in a single transaction. Savings accounts start with an SGD-only
// ceiling; FX accounts get a nonzero ceiling in every currency.
func (s *AccountService) OpenAccount(ctx context.Context, customerID uuid.UUID, kind domain.AccountKind) (*domain.Account, error) {
	log := logging.FromContext(ctx)

	if !kind.IsValid() {
		return nil, fmt.Errorf("OpenAccount: kind %q: %w", kind, domain.ErrNotFound)
	}
	if _, err := s.customers.GetByID(ctx, customerID); err != nil {
		return nil, fmt.Errorf("OpenAccount: %w", err)
	}

	account := &domain.Account{
		ID:         uuid.New(),
		CustomerID: customerID,
		Kind:       kind,
		Status:     domain.AccountStatusActive,
		Version:    1,
		CreatedAt:  s.clock.Now(),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("OpenAccount: begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := s.accounts.Create(ctx, tx, account); err != nil {
		return nil, fmt.Errorf("OpenAccount: %w", err)
	}

	if kind.HasBalance() {
		limits := &domain.Limits{AccountID: account.ID}
		switch kind {
		case domain.AccountKindSavings:
			limits.WithdrawCeiling = domain.Balance{SGD: s.defaultCeilings.SGD}
			limits.TransferCeiling = domain.Balance{SGD: s.defaultCeilings.SGD}
		case domain.AccountKindFX:
			limits.WithdrawCeiling = s.defaultCeilings
			limits.TransferCeiling = s.defaultCeilings
		}
		if err := s.limits.Create(ctx, tx, limits); err != nil {
			return nil, fmt.Errorf("OpenAccount: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("OpenAccount: commit: %w", err)
	}

	log.Info("account opened",
		"account_id", account.ID,
		"customer_id", customerID,
		"kind", kind,
	)
	return account, nil
}

// CloseAccount marks the account closed. Closed accounts are excluded from
// operational queries but keep their ledger history.
func (s *AccountService) CloseAccount(ctx context.Context, accountID uuid.UUID) error {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return fmt.Errorf("CloseAccount: %w", err)
	}
	if account.Status == domain.AccountStatusClosed {
		return fmt.Errorf("CloseAccount: %w", domain.ErrAccountClosed)
	}

	if err := s.accounts.UpdateStatus(ctx, accountID, domain.AccountStatusClosed); err != nil {
		return fmt.Errorf("CloseAccount: %w", err)
	}

	logging.FromContext(ctx).Info("account closed", "account_id", accountID)
	return nil
}

// AccountsByCustomer returns the customer's active accounts.
func (s *AccountService) AccountsByCustomer(ctx context.Context, customerID uuid.UUID) ([]domain.Account, error) {
	all, err := s.accounts.GetByCustomerID(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("AccountsByCustomer: %w", err)
	}

	active := make([]domain.Account, 0, len(all))
	for _, a := range all {
		if a.Status == domain.AccountStatusActive {
			active = append(active, a)
		}
	}
	return active, nil
}

func (s *AccountService) GetAccount(ctx context.Context, accountID uuid.UUID) (*domain.Account, error) {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("GetAccount: %w", err)
	}
	return account, nil
}
