package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/sunshinebank/sunshine-ledger/internal/domain"
	"github.com/sunshinebank/sunshine-ledger/internal/logging"
	"github.com/sunshinebank/sunshine-ledger/internal/metrics"
	"github.com/sunshinebank/sunshine-ledger/internal/repository"
)

// LedgerService implements the SGD savings operations: deposit, withdraw
// and transfer. Every operation runs as one database transaction covering
// the row lock, the check, the balance mutation and the ledger append, so
// persisted state can never diverge from the mutation that produced it.
type LedgerService struct {
	accounts accountRepo
	limits   limitsRepo
	txns     txnRepo
	db       *repository.DB
	clock    Clock
	metrics  *metrics.Collector
}

func NewLedgerService(accounts accountRepo, limits limitsRepo, txns txnRepo, db *repository.DB, clock Clock, collector *metrics.Collector) *LedgerService {
	return &LedgerService{
		accounts: accounts,
		limits:   limits,
		txns:     txns,
		db:       db,
		clock:    clock,
		metrics:  collector,
	}
}

// Deposit credits SGD to a savings account and journals a deposit entry.
func (s *LedgerService) Deposit(ctx context.Context, accountID uuid.UUID, cents int64) (txn *domain.Transaction, err error) {
	defer func() { s.metrics.RecordOperation("deposit", err) }()

	if cents <= 0 {
		return nil, fmt.Errorf("Deposit: %w", domain.ErrInvalidAmount)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("Deposit: begin tx: %w", err)
	}
	defer tx.Rollback()

	account, err := s.lockOperableAccount(ctx, tx, accountID, domain.AccountKindSavings)
	if err != nil {
		return nil, fmt.Errorf("Deposit: %w", err)
	}

	if err := account.Balance.Credit(domain.CurrencySGD, cents); err != nil {
		return nil, fmt.Errorf("Deposit: %w", err)
	}
	if err := s.accounts.UpdateBalance(ctx, tx, account.ID, account.Balance, account.Version+1); err != nil {
		return nil, fmt.Errorf("Deposit: %w", err)
	}

	txn = s.newEntry(account.ID, domain.TransactionKindDeposit, domain.Balance{SGD: cents})
	if err := s.txns.Create(ctx, tx, txn); err != nil {
		return nil, fmt.Errorf("Deposit: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("Deposit: commit: %w", err)
	}

	logging.FromContext(ctx).Info("deposit completed",
		"account_id", account.ID,
		"amount", cents,
	)
	return txn, nil
}

// Withdraw debits SGD from a savings account after checking funds and the
// remaining daily withdraw headroom, then journals a withdraw entry. The
// journaled entry is what makes the next headroom computation correct; no
// separate counter exists to drift.
func (s *LedgerService) Withdraw(ctx context.Context, accountID uuid.UUID, cents int64) (txn *domain.Transaction, err error) {
	defer func() { s.metrics.RecordOperation("withdraw", err) }()

	if cents <= 0 {
		return nil, fmt.Errorf("Withdraw: %w", domain.ErrInvalidAmount)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("Withdraw: begin tx: %w", err)
	}
	defer tx.Rollback()

	account, err := s.lockOperableAccount(ctx, tx, accountID, domain.AccountKindSavings)
	if err != nil {
		return nil, fmt.Errorf("Withdraw: %w", err)
	}

	if cents > account.Balance.SGD {
		return nil, fmt.Errorf("Withdraw: %w", domain.ErrInsufficientFunds)
	}
	if err := s.checkDailyLimit(ctx, tx, account.ID, domain.LimitScopeWithdraw, domain.CurrencySGD, cents); err != nil {
		return nil, fmt.Errorf("Withdraw: %w", err)
	}

	if err := account.Balance.Debit(domain.CurrencySGD, cents); err != nil {
		return nil, fmt.Errorf("Withdraw: %w", err)
	}
	if err := s.accounts.UpdateBalance(ctx, tx, account.ID, account.Balance, account.Version+1); err != nil {
		return nil, fmt.Errorf("Withdraw: %w", err)
	}

	txn = s.newEntry(account.ID, domain.TransactionKindWithdraw, domain.Balance{SGD: cents})
	if err := s.txns.Create(ctx, tx, txn); err != nil {
		return nil, fmt.Errorf("Withdraw: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("Withdraw: commit: %w", err)
	}

	logging.FromContext(ctx).Info("withdrawal completed",
		"account_id", account.ID,
		"amount", cents,
	)
	return txn, nil
}

// Transfer moves SGD between two savings accounts. Only the debiting side
// is journaled; the source entry is the source of truth for the transfer
// and for the source account's daily netting.
func (s *LedgerService) Transfer(ctx context.Context, fromID, toID uuid.UUID, cents int64) (*domain.Transaction, error) {
	return s.transferChecked(ctx, fromID, toID, cents, domain.AccountKindSavings, "transfer")
}

// TopUpFX funds an FX account from a savings account. The move is limit
// checked and journaled exactly like a transfer on the savings side.
func (s *LedgerService) TopUpFX(ctx context.Context, savingsID, fxID uuid.UUID, cents int64) (*domain.Transaction, error) {
	return s.transferChecked(ctx, savingsID, fxID, cents, domain.AccountKindFX, "fx_top_up")
}

func (s *LedgerService) transferChecked(ctx context.Context, fromID, toID uuid.UUID, cents int64, toKind domain.AccountKind, op string) (txn *domain.Transaction, err error) {
	defer func() { s.metrics.RecordOperation(op, err) }()

	if fromID == toID {
		return nil, fmt.Errorf("transferChecked: %w", domain.ErrSameAccount)
	}
	if cents <= 0 {
		return nil, fmt.Errorf("transferChecked: %w", domain.ErrInvalidAmount)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("transferChecked: begin tx: %w", err)
	}
	defer tx.Rollback()

	locked, err := lockAccountsInOrder(ctx, tx, s.accounts, fromID, toID)
	if err != nil {
		return nil, fmt.Errorf("transferChecked: %w", err)
	}
	from, to := locked[fromID], locked[toID]

	if err := verifyOperable(from, domain.AccountKindSavings); err != nil {
		return nil, fmt.Errorf("transferChecked: source: %w", err)
	}
	if err := verifyOperable(to, toKind); err != nil {
		return nil, fmt.Errorf("transferChecked: destination: %w", err)
	}

	if cents > from.Balance.SGD {
		return nil, fmt.Errorf("transferChecked: %w", domain.ErrInsufficientFunds)
	}
	if err := s.checkDailyLimit(ctx, tx, from.ID, domain.LimitScopeTransfer, domain.CurrencySGD, cents); err != nil {
		return nil, fmt.Errorf("transferChecked: %w", err)
	}

	if err := from.Balance.Debit(domain.CurrencySGD, cents); err != nil {
		return nil, fmt.Errorf("transferChecked: %w", err)
	}
	if err := to.Balance.Credit(domain.CurrencySGD, cents); err != nil {
		return nil, fmt.Errorf("transferChecked: %w", err)
	}

	if err := s.accounts.UpdateBalance(ctx, tx, from.ID, from.Balance, from.Version+1); err != nil {
		return nil, fmt.Errorf("transferChecked: source: %w", err)
	}
	if err := s.accounts.UpdateBalance(ctx, tx, to.ID, to.Balance, to.Version+1); err != nil {
		return nil, fmt.Errorf("transferChecked: destination: %w", err)
	}

	txn = s.newEntry(from.ID, domain.TransactionKindTransfer, domain.Balance{SGD: cents})
	if err := s.txns.Create(ctx, tx, txn); err != nil {
		return nil, fmt.Errorf("transferChecked: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("transferChecked: commit: %w", err)
	}

	logging.FromContext(ctx).Info("transfer completed",
		"from_account", from.ID,
		"to_account", to.ID,
		"amount", cents,
	)
	return txn, nil
}

// History returns the account's ledger entries, newest first.
func (s *LedgerService) History(ctx context.Context, accountID uuid.UUID) ([]domain.Transaction, error) {
	if _, err := s.accounts.GetByID(ctx, accountID); err != nil {
		return nil, fmt.Errorf("History: %w", err)
	}

	entries, err := s.txns.ListByAccountID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("History: %w", err)
	}
	return entries, nil
}

// checkDailyLimit verifies the amount fits today's remaining headroom,
// using the same transaction that holds the account lock so the check and
// the entry it guards are serialized.
func (s *LedgerService) checkDailyLimit(ctx context.Context, tx *sql.Tx, accountID uuid.UUID, scope domain.LimitScope, currency domain.Currency, cents int64) error {
	limits, err := s.limits.GetByAccountIDTx(ctx, tx, accountID)
	if err != nil {
		return fmt.Errorf("checkDailyLimit: %w", err)
	}

	remaining, err := remainingFor(ctx, tx, s.txns, limits, scope, currency, s.clock.Now())
	if err != nil {
		return fmt.Errorf("checkDailyLimit: %w", err)
	}
	if cents > remaining {
		return fmt.Errorf("checkDailyLimit: %w", domain.ErrLimitExceeded)
	}
	return nil
}

func (s *LedgerService) lockOperableAccount(ctx context.Context, tx *sql.Tx, accountID uuid.UUID, kind domain.AccountKind) (*domain.Account, error) {
	account, err := s.accounts.GetForUpdate(ctx, tx, accountID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}
	if err := verifyOperable(account, kind); err != nil {
		return nil, err
	}
	return account, nil
}

func (s *LedgerService) newEntry(accountID uuid.UUID, kind domain.TransactionKind, amounts domain.Balance) *domain.Transaction {
	return &domain.Transaction{
		ID:        uuid.New(),
		AccountID: accountID,
		Kind:      kind,
		Amounts:   amounts,
		CreatedAt: s.clock.Now(),
	}
}

func verifyOperable(a *domain.Account, kind domain.AccountKind) error {
	if a.Status == domain.AccountStatusClosed {
		return domain.ErrAccountClosed
	}
	if a.Kind != kind {
		return domain.ErrNoBalance
	}
	return nil
}

func lockAccountsInOrder(ctx context.Context, tx *sql.Tx, accounts accountRepo, ids ...uuid.UUID) (map[uuid.UUID]*domain.Account, error) {
	sorted := make([]uuid.UUID, len(ids))
	copy(sorted, ids)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].String() < sorted[j].String()
	})

	result := make(map[uuid.UUID]*domain.Account, len(ids))
	for _, id := range sorted {
		account, err := accounts.GetForUpdate(ctx, tx, id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, fmt.Errorf("lockAccountsInOrder: %w", domain.ErrAccountNotFound)
			}
			return nil, fmt.Errorf("lockAccountsInOrder: %w", err)
		}
		result[id] = account
	}
	return result, nil
}
