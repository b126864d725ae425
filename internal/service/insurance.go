package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sunshinebank/sunshine-ledger/internal/domain"
	"github.com/sunshinebank/sunshine-ledger/internal/logging"
	"github.com/sunshinebank/sunshine-ledger/internal/metrics"
	"github.com/sunshinebank/sunshine-ledger/internal/repository"
)

// InsuranceService journals policy premiums and cancellation refunds
// against a savings account. Premiums are purchases, not withdrawals, so
// they do not net against daily ceilings.
type InsuranceService struct {
	accounts accountRepo
	txns     txnRepo
	db       *repository.DB
	clock    Clock
	metrics  *metrics.Collector
}

func NewInsuranceService(accounts accountRepo, txns txnRepo, db *repository.DB, clock Clock, collector *metrics.Collector) *InsuranceService {
	return &InsuranceService{
		accounts: accounts,
		txns:     txns,
		db:       db,
		clock:    clock,
		metrics:  collector,
	}
}

// PurchasePolicy debits the premium from the savings account and journals
// a policy purchase entry.
func (s *InsuranceService) PurchasePolicy(ctx context.Context, savingsID uuid.UUID, premiumCents int64) (txn *domain.Transaction, err error) {
	defer func() { s.metrics.RecordOperation("policy_purchase", err) }()

	txn, err = s.moveAndJournal(ctx, savingsID, premiumCents, domain.TransactionKindPolicyPurchase, true)
	if err != nil {
		return nil, fmt.Errorf("PurchasePolicy: %w", err)
	}

	logging.FromContext(ctx).Info("policy purchased",
		"account_id", savingsID,
		"premium", premiumCents,
	)
	return txn, nil
}

// CancelPolicy credits the refund back to the savings account and journals
// a policy cancellation entry.
func (s *InsuranceService) CancelPolicy(ctx context.Context, savingsID uuid.UUID, refundCents int64) (txn *domain.Transaction, err error) {
	defer func() { s.metrics.RecordOperation("policy_cancel", err) }()

	txn, err = s.moveAndJournal(ctx, savingsID, refundCents, domain.TransactionKindPolicyCancel, false)
	if err != nil {
		return nil, fmt.Errorf("CancelPolicy: %w", err)
	}

	logging.FromContext(ctx).Info("policy cancelled",
		"account_id", savingsID,
		"refund", refundCents,
	)
	return txn, nil
}

func (s *InsuranceService) moveAndJournal(ctx context.Context, accountID uuid.UUID, cents int64, kind domain.TransactionKind, debit bool) (*domain.Transaction, error) {
	if cents <= 0 {
		return nil, domain.ErrInvalidAmount
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("moveAndJournal: begin tx: %w", err)
	}
	defer tx.Rollback()

	account, err := s.accounts.GetForUpdate(ctx, tx, accountID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("moveAndJournal: %w", domain.ErrAccountNotFound)
		}
		return nil, fmt.Errorf("moveAndJournal: %w", err)
	}
	if err := verifyOperable(account, domain.AccountKindSavings); err != nil {
		return nil, fmt.Errorf("moveAndJournal: %w", err)
	}

	if debit {
		err = account.Balance.Debit(domain.CurrencySGD, cents)
	} else {
		err = account.Balance.Credit(domain.CurrencySGD, cents)
	}
	if err != nil {
		return nil, fmt.Errorf("moveAndJournal: %w", err)
	}
	if err := s.accounts.UpdateBalance(ctx, tx, account.ID, account.Balance, account.Version+1); err != nil {
		return nil, fmt.Errorf("moveAndJournal: %w", err)
	}

	txn := &domain.Transaction{
		ID:        uuid.New(),
		AccountID: account.ID,
		Kind:      kind,
		Amounts:   domain.Balance{SGD: cents},
		CreatedAt: s.clock.Now(),
	}
	if err := s.txns.Create(ctx, tx, txn); err != nil {
		return nil, fmt.Errorf("moveAndJournal: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("moveAndJournal: commit: %w", err)
	}
	return txn, nil
}
