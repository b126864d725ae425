package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sunshinebank/sunshine-ledger/internal/domain"
)

const transactionColumns = `seq, id, account_id, kind,
	amount_sgd, amount_myr, amount_aud, amount_usd, amount_gbp,
	fee_amount, fee_currency, created_at`

type TransactionRepository struct {
	db *sql.DB
}

func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// Create appends one ledger entry inside the caller's transaction and fills
// in the store-assigned sequence number. Entries are never updated or
// deleted afterwards.
func (r *TransactionRepository) Create(ctx context.Context, tx *sql.Tx, t *domain.Transaction) error {
	err := tx.QueryRowContext(ctx,
		`INSERT INTO transactions (
			id, account_id, kind,
			amount_sgd, amount_myr, amount_aud, amount_usd, amount_gbp,
			fee_amount, fee_currency, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING seq`,
		t.ID, t.AccountID, t.Kind,
		t.Amounts.SGD, t.Amounts.MYR, t.Amounts.AUD, t.Amounts.USD, t.Amounts.GBP,
		t.FeeAmount, t.FeeCurrency, t.CreatedAt,
	).Scan(&t.Seq)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

// ListByAccountID returns the account's entries newest first; timestamp
// ties resolve in reverse insertion order.
func (r *TransactionRepository) ListByAccountID(ctx context.Context, accountID uuid.UUID) ([]domain.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions
		WHERE account_id = $1 ORDER BY created_at DESC, seq DESC`,
		accountID,
	)
	if err != nil {
		return nil, fmt.Errorf("ListByAccountID: %w", err)
	}
	defer rows.Close()

	var entries []domain.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("ListByAccountID: scan: %w", err)
		}
		entries = append(entries, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListByAccountID: rows: %w", err)
	}
	return entries, nil
}

// SumKindsInWindow totals the account's entries of the given kinds with
// from <= created_at < to, per currency. Run on the transaction holding
// the account lock when the result feeds a limit check.
func (r *TransactionRepository) SumKindsInWindow(ctx context.Context, q Querier, accountID uuid.UUID, kinds []domain.TransactionKind, from, to time.Time) (domain.Balance, error) {
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = string(k)
	}

	var spent domain.Balance
	err := q.QueryRowContext(ctx,
		`SELECT
			COALESCE(SUM(amount_sgd), 0), COALESCE(SUM(amount_myr), 0),
			COALESCE(SUM(amount_aud), 0), COALESCE(SUM(amount_usd), 0),
			COALESCE(SUM(amount_gbp), 0)
		FROM transactions
		WHERE account_id = $1 AND kind = ANY($2) AND created_at >= $3 AND created_at < $4`,
		accountID, pq.Array(names), from, to,
	).Scan(&spent.SGD, &spent.MYR, &spent.AUD, &spent.USD, &spent.GBP)
	if err != nil {
		return domain.Balance{}, fmt.Errorf("SumKindsInWindow: %w", err)
	}
	return spent, nil
}

func scanTransaction(s scanner) (*domain.Transaction, error) {
	var t domain.Transaction
	err := s.Scan(
		&t.Seq, &t.ID, &t.AccountID, &t.Kind,
		&t.Amounts.SGD, &t.Amounts.MYR, &t.Amounts.AUD, &t.Amounts.USD, &t.Amounts.GBP,
		&t.FeeAmount, &t.FeeCurrency, &t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
