package service_test

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunshinebank/sunshine-ledger/internal/domain"
	"github.com/sunshinebank/sunshine-ledger/internal/fx"
	"github.com/sunshinebank/sunshine-ledger/internal/repository"
	"github.com/sunshinebank/sunshine-ledger/internal/service"
	"github.com/sunshinebank/sunshine-ledger/internal/testutil"
)

// fakeClock lets tests control the daily-limit window.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

var testCeilings = domain.Balance{
	SGD: 500_000,
	MYR: 1_500_000,
	AUD: 550_000,
	USD: 370_000,
	GBP: 300_000,
}

type env struct {
	pool      *sql.DB
	clock     *fakeClock
	accounts  *service.AccountService
	ledger    *service.LedgerService
	limits    *service.LimitsService
	convert   *service.ConversionService
	loans     *service.LoanService
	insurance *service.InsuranceService
}

func newTestEnv(t *testing.T) *env {
	t.Helper()

	pool := testutil.SetupTestDB(t)
	clock := &fakeClock{now: time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)}
	db := repository.NewDB(pool)

	customers := repository.NewCustomerRepository(pool)
	accounts := repository.NewAccountRepository(pool)
	txns := repository.NewTransactionRepository(pool)
	limits := repository.NewLimitsRepository(pool)
	loans := repository.NewLoanRepository(pool)

	rates := fx.NewRateService(
		map[domain.Currency]float64{
			domain.CurrencyMYR: 3.31,
			domain.CurrencyAUD: 1.10,
			domain.CurrencyUSD: 0.74,
			domain.CurrencyGBP: 0.59,
		},
		[]fx.Tier{
			{UpTo: 100_000, Rate: decimal.NewFromFloat(0.02)},
			{UpTo: 1_000_000, Rate: decimal.NewFromFloat(0.015)},
			{Rate: decimal.NewFromFloat(0.01)},
		},
	)

	loanRates := map[domain.LoanCategory]decimal.Decimal{
		domain.LoanCategoryPersonal: decimal.NewFromFloat(0.10),
		domain.LoanCategoryCar:      decimal.NewFromFloat(0.08),
		domain.LoanCategoryStudy:    decimal.NewFromFloat(0.05),
		domain.LoanCategoryHome:     decimal.NewFromFloat(0.02),
	}

	return &env{
		pool:      pool,
		clock:     clock,
		accounts:  service.NewAccountService(accounts, customers, limits, db, clock, testCeilings),
		ledger:    service.NewLedgerService(accounts, limits, txns, db, clock, nil),
		limits:    service.NewLimitsService(accounts, limits, txns, db, clock),
		convert:   service.NewConversionService(accounts, txns, rates, db, clock, nil),
		loans:     service.NewLoanService(loans, accounts, txns, loanRates, db, clock, nil),
		insurance: service.NewInsuranceService(accounts, txns, db, clock, nil),
	}
}

// seedSavings creates a customer with one savings account and default
// ceilings, pre-funded with the given SGD balance.
func (e *env) seedSavings(t *testing.T, email string, balance int64) *domain.Account {
	t.Helper()
	c := testutil.SeedCustomer(t, e.pool, email, "Test Customer")
	a := testutil.SeedAccount(t, e.pool, c.ID, domain.AccountKindSavings, domain.Balance{SGD: balance})
	testutil.SeedLimits(t, e.pool, a.ID,
		domain.Balance{SGD: testCeilings.SGD}, domain.Balance{SGD: testCeilings.SGD})
	return a
}

func (e *env) seedFX(t *testing.T, email string, balance domain.Balance) *domain.Account {
	t.Helper()
	c := testutil.SeedCustomer(t, e.pool, email, "Test Customer")
	a := testutil.SeedAccount(t, e.pool, c.ID, domain.AccountKindFX, balance)
	testutil.SeedLimits(t, e.pool, a.ID, testCeilings, testCeilings)
	return a
}

func TestDeposit(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	acct := e.seedSavings(t, "deposit@test.com", 10_000)

	txn, err := e.ledger.Deposit(ctx, acct.ID, 5_000)
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionKindDeposit, txn.Kind)
	assert.Equal(t, int64(5_000), txn.Amounts.SGD)
	assert.Equal(t, domain.Balance{SGD: 15_000}, testutil.GetBalance(t, e.pool, acct.ID))

	_, err = e.ledger.Deposit(ctx, acct.ID, 0)
	require.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = e.ledger.Deposit(ctx, uuid.New(), 1_000)
	require.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestDeposit_RejectsNonSavingsAndClosed(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	fxAcct := e.seedFX(t, "fx@test.com", domain.Balance{})
	_, err := e.ledger.Deposit(ctx, fxAcct.ID, 1_000)
	require.ErrorIs(t, err, domain.ErrNoBalance)

	closed := e.seedSavings(t, "closed@test.com", 0)
	require.NoError(t, e.accounts.CloseAccount(ctx, closed.ID))
	_, err = e.ledger.Deposit(ctx, closed.ID, 1_000)
	require.ErrorIs(t, err, domain.ErrAccountClosed)
}

func TestWithdraw(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	acct := e.seedSavings(t, "withdraw@test.com", 10_000)

	txn, err := e.ledger.Withdraw(ctx, acct.ID, 4_000)
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionKindWithdraw, txn.Kind)
	assert.Equal(t, domain.Balance{SGD: 6_000}, testutil.GetBalance(t, e.pool, acct.ID))

	_, err = e.ledger.Withdraw(ctx, acct.ID, 6_001)
	require.ErrorIs(t, err, domain.ErrInsufficientFunds)
	assert.Equal(t, domain.Balance{SGD: 6_000}, testutil.GetBalance(t, e.pool, acct.ID))

	_, err = e.ledger.Withdraw(ctx, acct.ID, -1)
	require.ErrorIs(t, err, domain.ErrInvalidAmount)
}

func TestWithdraw_ChecksFundsBeforeLimit(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	// Balance below the request, ceiling also below: insufficient funds
	// must win over the limit check.
	acct := e.seedSavings(t, "order@test.com", 1_000)
	_, err := e.ledger.Withdraw(ctx, acct.ID, 600_000)
	require.ErrorIs(t, err, domain.ErrInsufficientFunds)
}

func TestTransfer(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	from := e.seedSavings(t, "from@test.com", 10_000)
	to := e.seedSavings(t, "to@test.com", 2_000)

	txn, err := e.ledger.Transfer(ctx, from.ID, to.ID, 3_000)
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionKindTransfer, txn.Kind)
	assert.Equal(t, from.ID, txn.AccountID)
	assert.Equal(t, domain.Balance{SGD: 7_000}, testutil.GetBalance(t, e.pool, from.ID))
	assert.Equal(t, domain.Balance{SGD: 5_000}, testutil.GetBalance(t, e.pool, to.ID))

	// Single-sided journaling: only the debiting account carries the entry.
	assert.Equal(t, 1, testutil.CountTransactions(t, e.pool, from.ID, domain.TransactionKindTransfer))
	assert.Equal(t, 0, testutil.CountTransactions(t, e.pool, to.ID, domain.TransactionKindTransfer))
}

func TestTransfer_Rejections(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	from := e.seedSavings(t, "from@test.com", 10_000)
	to := e.seedSavings(t, "to@test.com", 0)

	_, err := e.ledger.Transfer(ctx, from.ID, from.ID, 1_000)
	require.ErrorIs(t, err, domain.ErrSameAccount)

	_, err = e.ledger.Transfer(ctx, from.ID, to.ID, 10_001)
	require.ErrorIs(t, err, domain.ErrInsufficientFunds)

	_, err = e.ledger.Transfer(ctx, from.ID, uuid.New(), 1_000)
	require.ErrorIs(t, err, domain.ErrAccountNotFound)

	require.NoError(t, e.accounts.CloseAccount(ctx, to.ID))
	_, err = e.ledger.Transfer(ctx, from.ID, to.ID, 1_000)
	require.ErrorIs(t, err, domain.ErrAccountClosed)
	assert.Equal(t, domain.Balance{SGD: 10_000}, testutil.GetBalance(t, e.pool, from.ID))
}

func TestTopUpFX(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	savings := e.seedSavings(t, "savings@test.com", 50_000)
	fxAcct := e.seedFX(t, "fx@test.com", domain.Balance{})

	_, err := e.ledger.TopUpFX(ctx, savings.ID, fxAcct.ID, 20_000)
	require.NoError(t, err)
	assert.Equal(t, domain.Balance{SGD: 30_000}, testutil.GetBalance(t, e.pool, savings.ID))
	assert.Equal(t, domain.Balance{SGD: 20_000}, testutil.GetBalance(t, e.pool, fxAcct.ID))

	// The destination must be an FX account.
	other := e.seedSavings(t, "other@test.com", 0)
	_, err = e.ledger.TopUpFX(ctx, savings.ID, other.ID, 1_000)
	require.ErrorIs(t, err, domain.ErrNoBalance)
}

func TestTransfer_ConcurrentOverdraft(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	from := e.seedSavings(t, "from@test.com", 10_000)
	to := e.seedSavings(t, "to@test.com", 0)

	var wg sync.WaitGroup
	results := make(chan error, 2)
	for range 2 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.ledger.Transfer(ctx, from.ID, to.ID, 7_000)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var failures int
	for err := range results {
		if err != nil {
			require.ErrorIs(t, err, domain.ErrInsufficientFunds)
			failures++
		}
	}
	assert.Equal(t, 1, failures, "exactly one of the two transfers must fail")
	assert.Equal(t, domain.Balance{SGD: 3_000}, testutil.GetBalance(t, e.pool, from.ID))
	assert.Equal(t, domain.Balance{SGD: 7_000}, testutil.GetBalance(t, e.pool, to.ID))
}

func TestHistory_NewestFirst(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	acct := e.seedSavings(t, "history@test.com", 10_000)

	_, err := e.ledger.Deposit(ctx, acct.ID, 1_000)
	require.NoError(t, err)
	_, err = e.ledger.Withdraw(ctx, acct.ID, 500)
	require.NoError(t, err)
	_, err = e.ledger.Deposit(ctx, acct.ID, 2_000)
	require.NoError(t, err)

	entries, err := e.ledger.History(ctx, acct.ID)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	// All three share the fake clock's timestamp; the insertion sequence
	// breaks the tie, newest first.
	assert.Equal(t, domain.TransactionKindDeposit, entries[0].Kind)
	assert.Equal(t, int64(2_000), entries[0].Amounts.SGD)
	assert.Equal(t, domain.TransactionKindWithdraw, entries[1].Kind)
	assert.Equal(t, domain.TransactionKindDeposit, entries[2].Kind)
	assert.Equal(t, int64(1_000), entries[2].Amounts.SGD)
}
