package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunshinebank/sunshine-ledger/internal/domain"
	"github.com/sunshinebank/sunshine-ledger/internal/testutil"
)

func TestDailyLimit_TransferExhaustsCeiling(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	from := e.seedSavings(t, "from@test.com", 1_000_000)
	to := e.seedSavings(t, "to@test.com", 0)

	// Spend the whole transfer ceiling in one move.
	_, err := e.ledger.Transfer(ctx, from.ID, to.ID, testCeilings.SGD)
	require.NoError(t, err)

	// Funds remain but today's headroom is gone.
	_, err = e.ledger.Transfer(ctx, from.ID, to.ID, 1)
	require.ErrorIs(t, err, domain.ErrLimitExceeded)

	remaining, err := e.limits.Remaining(ctx, from.ID, domain.LimitScopeTransfer, domain.CurrencySGD)
	require.NoError(t, err)
	assert.Equal(t, int64(0), remaining.Amount)
}

func TestDailyLimit_WithdrawAndTransferShareTheDay(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	from := e.seedSavings(t, "from@test.com", 1_000_000)
	to := e.seedSavings(t, "to@test.com", 0)

	// A transfer counts against the withdraw headroom too: both scopes net
	// the same day's withdraw and transfer entries.
	_, err := e.ledger.Transfer(ctx, from.ID, to.ID, 300_000)
	require.NoError(t, err)

	remaining, err := e.limits.Remaining(ctx, from.ID, domain.LimitScopeWithdraw, domain.CurrencySGD)
	require.NoError(t, err)
	assert.Equal(t, testCeilings.SGD-300_000, remaining.Amount)

	_, err = e.ledger.Withdraw(ctx, from.ID, testCeilings.SGD-300_000+1)
	require.ErrorIs(t, err, domain.ErrLimitExceeded)

	_, err = e.ledger.Withdraw(ctx, from.ID, testCeilings.SGD-300_000)
	require.NoError(t, err)
}

func TestDailyLimit_DepositsDoNotConsumeHeadroom(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	acct := e.seedSavings(t, "acct@test.com", 0)

	_, err := e.ledger.Deposit(ctx, acct.ID, 700_000)
	require.NoError(t, err)

	remaining, err := e.limits.Remaining(ctx, acct.ID, domain.LimitScopeWithdraw, domain.CurrencySGD)
	require.NoError(t, err)
	assert.Equal(t, testCeilings.SGD, remaining.Amount)
}

func TestDailyLimit_ResetsAtMidnight(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	acct := e.seedSavings(t, "acct@test.com", 2_000_000)

	_, err := e.ledger.Withdraw(ctx, acct.ID, testCeilings.SGD)
	require.NoError(t, err)
	_, err = e.ledger.Withdraw(ctx, acct.ID, 1)
	require.ErrorIs(t, err, domain.ErrLimitExceeded)

	// Next calendar day: the ledger entries fall out of the window and the
	// full ceiling is available again.
	e.clock.Advance(24 * time.Hour)
	_, err = e.ledger.Withdraw(ctx, acct.ID, testCeilings.SGD)
	require.NoError(t, err)
}

func TestSetCeiling_AppliesMidday(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	acct := e.seedSavings(t, "acct@test.com", 2_000_000)

	_, err := e.ledger.Withdraw(ctx, acct.ID, testCeilings.SGD)
	require.NoError(t, err)

	// Raising the ceiling restores headroom immediately; the day's entries
	// keep counting against the new value.
	_, err = e.limits.SetCeiling(ctx, acct.ID, domain.LimitScopeWithdraw, domain.CurrencySGD, testCeilings.SGD+100_000)
	require.NoError(t, err)

	remaining, err := e.limits.Remaining(ctx, acct.ID, domain.LimitScopeWithdraw, domain.CurrencySGD)
	require.NoError(t, err)
	assert.Equal(t, int64(100_000), remaining.Amount)

	// Lowering it below what is already spent clamps the headroom at zero.
	_, err = e.limits.SetCeiling(ctx, acct.ID, domain.LimitScopeWithdraw, domain.CurrencySGD, 1_000)
	require.NoError(t, err)

	remaining, err = e.limits.Remaining(ctx, acct.ID, domain.LimitScopeWithdraw, domain.CurrencySGD)
	require.NoError(t, err)
	assert.Equal(t, int64(0), remaining.Amount)
}

func TestSetCeiling_Validation(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	savings := e.seedSavings(t, "savings@test.com", 0)
	fxAcct := e.seedFX(t, "fx@test.com", domain.Balance{})

	_, err := e.limits.SetCeiling(ctx, savings.ID, domain.LimitScopeWithdraw, domain.CurrencySGD, 0)
	require.ErrorIs(t, err, domain.ErrInvalidAmount)

	// Savings accounts hold SGD only.
	_, err = e.limits.SetCeiling(ctx, savings.ID, domain.LimitScopeWithdraw, domain.CurrencyUSD, 1_000)
	require.ErrorIs(t, err, domain.ErrInvalidCurrency)

	// FX accounts may adjust any currency.
	_, err = e.limits.SetCeiling(ctx, fxAcct.ID, domain.LimitScopeTransfer, domain.CurrencyUSD, 1_000)
	require.NoError(t, err)

	require.NoError(t, e.accounts.CloseAccount(ctx, savings.ID))
	_, err = e.limits.SetCeiling(ctx, savings.ID, domain.LimitScopeWithdraw, domain.CurrencySGD, 1_000)
	require.ErrorIs(t, err, domain.ErrAccountClosed)
}

func TestLimitsOverview(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	acct := e.seedSavings(t, "acct@test.com", 1_000_000)

	_, err := e.ledger.Withdraw(ctx, acct.ID, 100_000)
	require.NoError(t, err)

	overview, err := e.limits.Overview(ctx, acct.ID)
	require.NoError(t, err)
	assert.Equal(t, testCeilings.SGD, overview.Limits.WithdrawCeiling.SGD)
	assert.Equal(t, testCeilings.SGD-100_000, overview.RemainingWithdraw.SGD)
	assert.Equal(t, testCeilings.SGD-100_000, overview.RemainingTransfer.SGD)
	assert.Equal(t, int64(0), overview.RemainingWithdraw.USD, "savings has no USD ceiling")
}

func TestLimits_SGDOnlyForSavings(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	c := testutil.SeedCustomer(t, e.pool, "open@test.com", "Opener")
	savings, err := e.accounts.OpenAccount(ctx, c.ID, domain.AccountKindSavings)
	require.NoError(t, err)

	overview, err := e.limits.Overview(ctx, savings.ID)
	require.NoError(t, err)
	assert.Equal(t, testCeilings.SGD, overview.Limits.WithdrawCeiling.SGD)
	assert.Equal(t, int64(0), overview.Limits.WithdrawCeiling.MYR)

	fxAcct, err := e.accounts.OpenAccount(ctx, c.ID, domain.AccountKindFX)
	require.NoError(t, err)

	overview, err = e.limits.Overview(ctx, fxAcct.ID)
	require.NoError(t, err)
	assert.Equal(t, testCeilings, overview.Limits.WithdrawCeiling)
	assert.Equal(t, testCeilings, overview.Limits.TransferCeiling)
}
