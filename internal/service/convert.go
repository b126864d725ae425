package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sunshinebank/sunshine-ledger/internal/domain"
	"github.com/sunshinebank/sunshine-ledger/internal/fx"
	"github.com/sunshinebank/sunshine-ledger/internal/logging"
	"github.com/sunshinebank/sunshine-ledger/internal/metrics"
	"github.com/sunshinebank/sunshine-ledger/internal/repository"
)

type rateService interface {
	Quote(from, to domain.Currency) (*fx.Quote, error)
	Convert(amountCents int64, from, to domain.Currency) (*fx.Conversion, error)
}

// ConversionService executes cross-currency conversions on FX accounts.
// The commission is retained by the bank: the source leg is debited in
// full and only the net converted amount lands on the destination leg.
type ConversionService struct {
	accounts accountRepo
	txns     txnRepo
	rates    rateService
	db       *repository.DB
	clock    Clock
	metrics  *metrics.Collector
}

func NewConversionService(accounts accountRepo, txns txnRepo, rates rateService, db *repository.DB, clock Clock, collector *metrics.Collector) *ConversionService {
	return &ConversionService{
		accounts: accounts,
		txns:     txns,
		rates:    rates,
		db:       db,
		clock:    clock,
		metrics:  collector,
	}
}

// Quote prices a conversion without executing it.
func (s *ConversionService) Quote(ctx context.Context, amountCents int64, from, to domain.Currency) (*fx.Conversion, error) {
	conv, err := s.rates.Convert(amountCents, from, to)
	if err != nil {
		return nil, fmt.Errorf("Quote: %w", err)
	}
	return conv, nil
}

// Convert atomically moves value between two currency legs of one FX
// account. The ledger entry records the negative source leg, the positive
// credited leg and the retained fee.
func (s *ConversionService) Convert(ctx context.Context, accountID uuid.UUID, amountCents int64, from, to domain.Currency) (conv *fx.Conversion, err error) {
	defer func() { s.metrics.RecordOperation("conversion", err) }()

	conv, err = s.rates.Convert(amountCents, from, to)
	if err != nil {
		return nil, fmt.Errorf("Convert: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("Convert: begin tx: %w", err)
	}
	defer tx.Rollback()

	account, err := s.accounts.GetForUpdate(ctx, tx, accountID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("Convert: %w", domain.ErrAccountNotFound)
		}
		return nil, fmt.Errorf("Convert: %w", err)
	}
	if err := verifyOperable(account, domain.AccountKindFX); err != nil {
		return nil, fmt.Errorf("Convert: %w", err)
	}

	if err := account.Balance.Debit(from, amountCents); err != nil {
		return nil, fmt.Errorf("Convert: %w", err)
	}
	if err := account.Balance.Credit(to, conv.ConvertedAmount); err != nil {
		return nil, fmt.Errorf("Convert: %w", err)
	}
	if err := s.accounts.UpdateBalance(ctx, tx, account.ID, account.Balance, account.Version+1); err != nil {
		return nil, fmt.Errorf("Convert: %w", err)
	}

	amounts := domain.Balance{}.
		WithAmount(from, -amountCents).
		WithAmount(to, conv.ConvertedAmount)
	txn := &domain.Transaction{
		ID:          uuid.New(),
		AccountID:   account.ID,
		Kind:        domain.TransactionKindConversion,
		Amounts:     amounts,
		FeeAmount:   conv.FeeAmount,
		FeeCurrency: from,
		CreatedAt:   s.clock.Now(),
	}
	if err := s.txns.Create(ctx, tx, txn); err != nil {
		return nil, fmt.Errorf("Convert: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("Convert: commit: %w", err)
	}

	s.metrics.RecordFee(conv.FeeAmount)
	logging.FromContext(ctx).Info("conversion completed",
		"account_id", account.ID,
		"from", from,
		"to", to,
		"source_amount", conv.SourceAmount,
		"converted_amount", conv.ConvertedAmount,
		"fee", conv.FeeAmount,
	)
	return conv, nil
}
