package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sunshinebank/sunshine-ledger/internal/domain"
)

const limitsColumns = `account_id,
	withdraw_sgd, withdraw_myr, withdraw_aud, withdraw_usd, withdraw_gbp,
	transfer_sgd, transfer_myr, transfer_aud, transfer_usd, transfer_gbp`

type LimitsRepository struct {
	db *sql.DB
}

func NewLimitsRepository(db *sql.DB) *LimitsRepository {
	return &LimitsRepository{db: db}
}

func (r *LimitsRepository) Create(ctx context.Context, tx *sql.Tx, l *domain.Limits) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO limits (
			account_id,
			withdraw_sgd, withdraw_myr, withdraw_aud, withdraw_usd, withdraw_gbp,
			transfer_sgd, transfer_myr, transfer_aud, transfer_usd, transfer_gbp
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		l.AccountID,
		l.WithdrawCeiling.SGD, l.WithdrawCeiling.MYR, l.WithdrawCeiling.AUD,
		l.WithdrawCeiling.USD, l.WithdrawCeiling.GBP,
		l.TransferCeiling.SGD, l.TransferCeiling.MYR, l.TransferCeiling.AUD,
		l.TransferCeiling.USD, l.TransferCeiling.GBP,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (r *LimitsRepository) GetByAccountID(ctx context.Context, accountID uuid.UUID) (*domain.Limits, error) {
	return r.getByAccountID(ctx, r.db, accountID)
}

// GetByAccountIDTx reads the limits inside the caller's transaction so the
// ceiling seen by a check is the one in effect at commit time.
func (r *LimitsRepository) GetByAccountIDTx(ctx context.Context, tx *sql.Tx, accountID uuid.UUID) (*domain.Limits, error) {
	return r.getByAccountID(ctx, tx, accountID)
}

func (r *LimitsRepository) getByAccountID(ctx context.Context, q Querier, accountID uuid.UUID) (*domain.Limits, error) {
	row := q.QueryRowContext(ctx,
		`SELECT `+limitsColumns+` FROM limits WHERE account_id = $1`, accountID,
	)

	var l domain.Limits
	err := row.Scan(
		&l.AccountID,
		&l.WithdrawCeiling.SGD, &l.WithdrawCeiling.MYR, &l.WithdrawCeiling.AUD,
		&l.WithdrawCeiling.USD, &l.WithdrawCeiling.GBP,
		&l.TransferCeiling.SGD, &l.TransferCeiling.MYR, &l.TransferCeiling.AUD,
		&l.TransferCeiling.USD, &l.TransferCeiling.GBP,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("getByAccountID: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("getByAccountID: %w", err)
	}
	return &l, nil
}

// Update writes the full ceiling row. Changes take effect for subsequent
// checks only; past consumption is never re-evaluated.
func (r *LimitsRepository) Update(ctx context.Context, l *domain.Limits) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE limits SET
			withdraw_sgd = $1, withdraw_myr = $2, withdraw_aud = $3,
			withdraw_usd = $4, withdraw_gbp = $5,
			transfer_sgd = $6, transfer_myr = $7, transfer_aud = $8,
			transfer_usd = $9, transfer_gbp = $10
		WHERE account_id = $11`,
		l.WithdrawCeiling.SGD, l.WithdrawCeiling.MYR, l.WithdrawCeiling.AUD,
		l.WithdrawCeiling.USD, l.WithdrawCeiling.GBP,
		l.TransferCeiling.SGD, l.TransferCeiling.MYR, l.TransferCeiling.AUD,
		l.TransferCeiling.USD, l.TransferCeiling.GBP,
		l.AccountID,
	)
	if err != nil {
		return fmt.Errorf("Update: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("Update: rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("Update: %w", domain.ErrNotFound)
	}
	return nil
}
