package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sunshinebank/sunshine-ledger/internal/domain"
	"github.com/sunshinebank/sunshine-ledger/internal/logging"
	"github.com/sunshinebank/sunshine-ledger/internal/repository"
)

type txnRepo interface {
	Create(ctx context.Context, tx *sql.Tx, t *domain.Transaction) error
	ListByAccountID(ctx context.Context, accountID uuid.UUID) ([]domain.Transaction, error)
	SumKindsInWindow(ctx context.Context, q repository.Querier, accountID uuid.UUID, kinds []domain.TransactionKind, from, to time.Time) (domain.Balance, error)
}

type LimitsService struct {
	accounts accountRepo
	limits   limitsRepo
	txns     txnRepo
	db       *repository.DB
	clock    Clock
}

func NewLimitsService(accounts accountRepo, limits limitsRepo, txns txnRepo, db *repository.DB, clock Clock) *LimitsService {
	return &LimitsService{accounts: accounts, limits: limits, txns: txns, db: db, clock: clock}
}

// remainingFor computes today's headroom for one ceiling: the configured
// ceiling minus the day's withdraw and transfer entries in that currency.
// It is derived on every check rather than stored, so it self-corrects
// when a ceiling changes mid-day and resets at date rollover. Callers that
// are about to mutate must pass the transaction holding the account lock.
func remainingFor(ctx context.Context, q repository.Querier, txns txnRepo, limits *domain.Limits, scope domain.LimitScope, currency domain.Currency, now time.Time) (int64, error) {
	start, end := dayWindow(now)
	spent, err := txns.SumKindsInWindow(ctx, q, limits.AccountID, domain.LimitedKinds, start, end)
	if err != nil {
		return 0, fmt.Errorf("remainingFor: %w", err)
	}

	ceiling := limits.WithdrawCeiling
	if scope == domain.LimitScopeTransfer {
		ceiling = limits.TransferCeiling
	}

	remaining := ceiling.Get(currency) - spent.Get(currency)
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

// Remaining reports how much can still be withdrawn or transferred today
// in the given currency.
func (s *LimitsService) Remaining(ctx context.Context, accountID uuid.UUID, scope domain.LimitScope, currency domain.Currency) (domain.Money, error) {
	if !scope.IsValid() {
		return domain.Money{}, fmt.Errorf("Remaining: scope %q: %w", scope, domain.ErrNotFound)
	}
	if !currency.IsValid() {
		return domain.Money{}, fmt.Errorf("Remaining: %w", domain.ErrInvalidCurrency)
	}

	limits, err := s.limits.GetByAccountID(ctx, accountID)
	if err != nil {
		return domain.Money{}, fmt.Errorf("Remaining: %w", err)
	}

	remaining, err := remainingFor(ctx, s.db.Conn(), s.txns, limits, scope, currency, s.clock.Now())
	if err != nil {
		return domain.Money{}, fmt.Errorf("Remaining: %w", err)
	}
	return domain.NewMoney(currency, remaining), nil
}

// Overview is the daily-limits view: both ceilings plus the remaining
// headroom per currency for today.
type Overview struct {
	Limits            domain.Limits
	RemainingWithdraw domain.Balance
	RemainingTransfer domain.Balance
}

func (s *LimitsService) Overview(ctx context.Context, accountID uuid.UUID) (*Overview, error) {
	limits, err := s.limits.GetByAccountID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("Overview: %w", err)
	}

	start, end := dayWindow(s.clock.Now())
	spent, err := s.txns.SumKindsInWindow(ctx, s.db.Conn(), accountID, domain.LimitedKinds, start, end)
	if err != nil {
		return nil, fmt.Errorf("Overview: %w", err)
	}

	o := &Overview{Limits: *limits}
	for _, c := range domain.Currencies {
		o.RemainingWithdraw = o.RemainingWithdraw.WithAmount(c, clampZero(limits.WithdrawCeiling.Get(c)-spent.Get(c)))
		o.RemainingTransfer = o.RemainingTransfer.WithAmount(c, clampZero(limits.TransferCeiling.Get(c)-spent.Get(c)))
	}
	return o, nil
}

// SetCeiling changes one daily ceiling. The new value applies to subsequent
// checks only; entries already journaled today keep counting against it.
// Savings accounts hold SGD only, so only their SGD ceiling is adjustable.
func (s *LimitsService) SetCeiling(ctx context.Context, accountID uuid.UUID, scope domain.LimitScope, currency domain.Currency, cents int64) (*domain.Limits, error) {
	if !scope.IsValid() {
		return nil, fmt.Errorf("SetCeiling: scope %q: %w", scope, domain.ErrNotFound)
	}
	if !currency.IsValid() {
		return nil, fmt.Errorf("SetCeiling: %w", domain.ErrInvalidCurrency)
	}
	if cents <= 0 {
		return nil, fmt.Errorf("SetCeiling: %w", domain.ErrInvalidAmount)
	}

	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("SetCeiling: %w", err)
	}
	if account.Status == domain.AccountStatusClosed {
		return nil, fmt.Errorf("SetCeiling: %w", domain.ErrAccountClosed)
	}
	if account.Kind == domain.AccountKindSavings && currency != domain.CurrencySGD {
		return nil, fmt.Errorf("SetCeiling: savings accounts hold SGD only: %w", domain.ErrInvalidCurrency)
	}

	limits, err := s.limits.GetByAccountID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("SetCeiling: %w", err)
	}

	switch scope {
	case domain.LimitScopeWithdraw:
		limits.WithdrawCeiling = limits.WithdrawCeiling.WithAmount(currency, cents)
	case domain.LimitScopeTransfer:
		limits.TransferCeiling = limits.TransferCeiling.WithAmount(currency, cents)
	}

	if err := s.limits.Update(ctx, limits); err != nil {
		return nil, fmt.Errorf("SetCeiling: %w", err)
	}

	logging.FromContext(ctx).Info("daily ceiling updated",
		"account_id", accountID,
		"scope", scope,
		"currency", currency,
		"ceiling", cents,
	)
	return limits, nil
}

func clampZero(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}
