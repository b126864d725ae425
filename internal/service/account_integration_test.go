package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunshinebank/sunshine-ledger/internal/domain"
	"github.com/sunshinebank/sunshine-ledger/internal/testutil"
)

func TestOpenAccount(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	c := testutil.SeedCustomer(t, e.pool, "open@test.com", "Test Customer")

	acct, err := e.accounts.OpenAccount(ctx, c.ID, domain.AccountKindSavings)
	require.NoError(t, err)
	assert.Equal(t, c.ID, acct.CustomerID)
	assert.Equal(t, domain.AccountStatusActive, acct.Status)
	assert.Equal(t, domain.Balance{}, acct.Balance)

	_, err = e.accounts.OpenAccount(ctx, c.ID, "checking")
	require.ErrorIs(t, err, domain.ErrNotFound)

	_, err = e.accounts.OpenAccount(ctx, uuid.New(), domain.AccountKindSavings)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCloseAccount_Twice(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	acct := e.seedSavings(t, "close@test.com", 0)

	require.NoError(t, e.accounts.CloseAccount(ctx, acct.ID))
	err := e.accounts.CloseAccount(ctx, acct.ID)
	require.ErrorIs(t, err, domain.ErrAccountClosed)
}

func TestAccountsByCustomer_ExcludesClosed(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	c := testutil.SeedCustomer(t, e.pool, "list@test.com", "Test Customer")

	kept, err := e.accounts.OpenAccount(ctx, c.ID, domain.AccountKindSavings)
	require.NoError(t, err)
	closed, err := e.accounts.OpenAccount(ctx, c.ID, domain.AccountKindFX)
	require.NoError(t, err)
	require.NoError(t, e.accounts.CloseAccount(ctx, closed.ID))

	accounts, err := e.accounts.AccountsByCustomer(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, kept.ID, accounts[0].ID)

	// Closed accounts stay readable directly.
	got, err := e.accounts.GetAccount(ctx, closed.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.AccountStatusClosed, got.Status)
}
