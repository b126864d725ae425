package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sunshinebank/sunshine-ledger/internal/domain"
)

const loanColumns = `id, account_id, category, status, principal, term_years,
	interest_rate, monthly_payment, total_payment, remaining_amount, created_at`

type LoanRepository struct {
	db *sql.DB
}

func NewLoanRepository(db *sql.DB) *LoanRepository {
	return &LoanRepository{db: db}
}

func (r *LoanRepository) Create(ctx context.Context, loan *domain.Loan) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO loans (
			id, account_id, category, status, principal, term_years,
			interest_rate, monthly_payment, total_payment, remaining_amount, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		loan.ID, loan.AccountID, loan.Category, loan.Status, loan.Principal,
		loan.TermYears, loan.InterestRate, loan.MonthlyPayment, loan.TotalPayment,
		loan.RemainingAmount, loan.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (r *LoanRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Loan, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+loanColumns+` FROM loans WHERE id = $1`, id,
	)
	l, err := scanLoan(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByID: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return l, nil
}

// GetForUpdate locks the loan row so a repayment's remaining-amount check
// and decrement are atomic.
func (r *LoanRepository) GetForUpdate(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*domain.Loan, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT `+loanColumns+` FROM loans WHERE id = $1 FOR UPDATE`, id,
	)
	l, err := scanLoan(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetForUpdate: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetForUpdate: %w", err)
	}
	return l, nil
}

func (r *LoanRepository) ListByAccountID(ctx context.Context, accountID uuid.UUID, status *domain.LoanStatus) ([]domain.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE account_id = $1`
	args := []any{accountID}
	if status != nil {
		query += ` AND status = $2`
		args = append(args, *status)
	}
	query += ` ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ListByAccountID: %w", err)
	}
	defer rows.Close()

	var loans []domain.Loan
	for rows.Next() {
		l, err := scanLoan(rows)
		if err != nil {
			return nil, fmt.Errorf("ListByAccountID: scan: %w", err)
		}
		loans = append(loans, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListByAccountID: rows: %w", err)
	}
	return loans, nil
}

func (r *LoanRepository) HasOngoing(ctx context.Context, accountID uuid.UUID, category domain.LoanCategory) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM loans
			WHERE account_id = $1 AND category = $2 AND status = $3
		)`,
		accountID, category, domain.LoanStatusOngoing,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("HasOngoing: %w", err)
	}
	return exists, nil
}

func (r *LoanRepository) UpdateRepayment(ctx context.Context, tx *sql.Tx, id uuid.UUID, remaining int64, status domain.LoanStatus) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE loans SET remaining_amount = $1, status = $2 WHERE id = $3`,
		remaining, status, id,
	)
	if err != nil {
		return fmt.Errorf("UpdateRepayment: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("UpdateRepayment: rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("UpdateRepayment: %w", domain.ErrNotFound)
	}
	return nil
}

func scanLoan(s scanner) (*domain.Loan, error) {
	var l domain.Loan
	err := s.Scan(
		&l.ID, &l.AccountID, &l.Category, &l.Status, &l.Principal, &l.TermYears,
		&l.InterestRate, &l.MonthlyPayment, &l.TotalPayment, &l.RemainingAmount,
		&l.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}
