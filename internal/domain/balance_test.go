package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBalanceCredit(t *testing.T) {
	tests := []struct {
		name     string
		start    Balance
		currency Currency
		cents    int64
		want     Balance
		wantErr  error
	}{
		{
			name:     "credit SGD",
			start:    Balance{SGD: 1000},
			currency: CurrencySGD,
			cents:    500,
			want:     Balance{SGD: 1500},
		},
		{
			name:     "credit empty currency leg",
			start:    Balance{SGD: 1000},
			currency: CurrencyUSD,
			cents:    250,
			want:     Balance{SGD: 1000, USD: 250},
		},
		{
			name:     "zero amount",
			start:    Balance{SGD: 1000},
			currency: CurrencySGD,
			cents:    0,
			wantErr:  ErrInvalidAmount,
		},
		{
			name:     "negative amount",
			start:    Balance{SGD: 1000},
			currency: CurrencySGD,
			cents:    -5,
			wantErr:  ErrInvalidAmount,
		},
		{
			name:     "unknown currency",
			start:    Balance{},
			currency: Currency("XYZ"),
			cents:    100,
			wantErr:  ErrInvalidCurrency,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b := tc.start
			err := b.Credit(tc.currency, tc.cents)

			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				assert.Equal(t, tc.start, b, "balance must be untouched on error")
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.want, b)
		})
	}
}

func TestBalanceDebit(t *testing.T) {
	tests := []struct {
		name     string
		start    Balance
		currency Currency
		cents    int64
		want     Balance
		wantErr  error
	}{
		{
			name:     "debit SGD",
			start:    Balance{SGD: 1000},
			currency: CurrencySGD,
			cents:    400,
			want:     Balance{SGD: 600},
		},
		{
			name:     "debit to zero",
			start:    Balance{USD: 250},
			currency: CurrencyUSD,
			cents:    250,
			want:     Balance{},
		},
		{
			name:     "overdraw",
			start:    Balance{SGD: 100},
			currency: CurrencySGD,
			cents:    101,
			wantErr:  ErrInsufficientFunds,
		},
		{
			name:     "debit empty leg",
			start:    Balance{SGD: 100},
			currency: CurrencyGBP,
			cents:    1,
			wantErr:  ErrInsufficientFunds,
		},
		{
			name:     "zero amount",
			start:    Balance{SGD: 100},
			currency: CurrencySGD,
			cents:    0,
			wantErr:  ErrInvalidAmount,
		},
		{
			name:     "unknown currency",
			start:    Balance{SGD: 100},
			currency: Currency("EUR"),
			cents:    10,
			wantErr:  ErrInvalidCurrency,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b := tc.start
			err := b.Debit(tc.currency, tc.cents)

			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				assert.Equal(t, tc.start, b, "balance must be untouched on error")
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.want, b)
		})
	}
}

func TestCentsFromDecimal(t *testing.T) {
	tests := []struct {
		in           string
		wantTruncate int64
		wantHalfUp   int64
	}{
		{"36.266", 3626, 3627},
		{"36.264", 3626, 3626},
		{"73.3333", 7333, 7333},
		{"0.005", 0, 1},
		{"49.00", 4900, 4900},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			d := decimal.RequireFromString(tc.in)
			assert.Equal(t, tc.wantTruncate, CentsFromDecimal(d))
			assert.Equal(t, tc.wantHalfUp, CentsFromDecimalHalfUp(d))
		})
	}
}

func TestMoneyString(t *testing.T) {
	assert.Equal(t, "SGD 12.50", NewMoney(CurrencySGD, 1250).String())
	assert.Equal(t, "USD 0.01", NewMoney(CurrencyUSD, 1).String())
}
