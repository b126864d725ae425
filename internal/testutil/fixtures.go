package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/sunshinebank/sunshine-ledger/internal/domain"
)

func SeedCustomer(t *testing.T, db *sql.DB, email, name string) *domain.Customer {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	c := &domain.Customer{
		ID:           uuid.New(),
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}

	_, err = db.Exec(
		`INSERT INTO customers (id, email, name, password_hash, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		c.ID, c.Email, c.Name, c.PasswordHash, c.CreatedAt,
	)
	if err != nil {
		t.Fatalf("seed customer %s: %v", email, err)
	}
	return c
}

func SeedAccount(t *testing.T, db *sql.DB, customerID uuid.UUID, kind domain.AccountKind, balance domain.Balance) *domain.Account {
	t.Helper()

	a := &domain.Account{
		ID:         uuid.New(),
		CustomerID: customerID,
		Kind:       kind,
		Status:     domain.AccountStatusActive,
		Balance:    balance,
		Version:    1,
		CreatedAt:  time.Now().UTC(),
	}

	_, err := db.Exec(
		`INSERT INTO accounts (id, customer_id, kind, status, amount_sgd, amount_myr, amount_aud, amount_usd, amount_gbp, version, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		a.ID, a.CustomerID, a.Kind, a.Status,
		a.Balance.SGD, a.Balance.MYR, a.Balance.AUD, a.Balance.USD, a.Balance.GBP,
		a.Version, a.CreatedAt,
	)
	if err != nil {
		t.Fatalf("seed %s account: %v", kind, err)
	}
	return a
}

func SeedLimits(t *testing.T, db *sql.DB, accountID uuid.UUID, withdraw, transfer domain.Balance) *domain.Limits {
	t.Helper()

	l := &domain.Limits{
		AccountID:       accountID,
		WithdrawCeiling: withdraw,
		TransferCeiling: transfer,
	}

	_, err := db.Exec(
		`INSERT INTO limits (account_id,
		    withdraw_sgd, withdraw_myr, withdraw_aud, withdraw_usd, withdraw_gbp,
		    transfer_sgd, transfer_myr, transfer_aud, transfer_usd, transfer_gbp)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		l.AccountID,
		withdraw.SGD, withdraw.MYR, withdraw.AUD, withdraw.USD, withdraw.GBP,
		transfer.SGD, transfer.MYR, transfer.AUD, transfer.USD, transfer.GBP,
	)
	if err != nil {
		t.Fatalf("seed limits for %s: %v", accountID, err)
	}
	return l
}

func GetBalance(t *testing.T, db *sql.DB, accountID uuid.UUID) domain.Balance {
	t.Helper()

	var b domain.Balance
	err := db.QueryRow(
		`SELECT amount_sgd, amount_myr, amount_aud, amount_usd, amount_gbp FROM accounts WHERE id = $1`,
		accountID,
	).Scan(&b.SGD, &b.MYR, &b.AUD, &b.USD, &b.GBP)
	if err != nil {
		t.Fatalf("get balance %s: %v", accountID, err)
	}
	return b
}

func CountTransactions(t *testing.T, db *sql.DB, accountID uuid.UUID, kind domain.TransactionKind) int {
	t.Helper()

	var count int
	err := db.QueryRow(
		`SELECT COUNT(*) FROM transactions WHERE account_id = $1 AND kind = $2`,
		accountID, kind,
	).Scan(&count)
	if err != nil {
		t.Fatalf("count %s transactions for %s: %v", kind, accountID, err)
	}
	return count
}
