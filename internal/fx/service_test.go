package fx

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunshinebank/sunshine-ledger/internal/domain"
)

func testRates() map[domain.Currency]float64 {
	return map[domain.Currency]float64{
		domain.CurrencyMYR: 3.31,
		domain.CurrencyAUD: 1.10,
		domain.CurrencyUSD: 0.74,
		domain.CurrencyGBP: 0.59,
	}
}

func testTiers() []Tier {
	return []Tier{
		{UpTo: 100_000, Rate: decimal.NewFromFloat(0.02)},
		{UpTo: 1_000_000, Rate: decimal.NewFromFloat(0.015)},
		{Rate: decimal.NewFromFloat(0.01)},
	}
}

func newTestService() *RateService {
	return NewRateService(testRates(), testTiers())
}

func TestRate(t *testing.T) {
	svc := newTestService()

	tests := []struct {
		name    string
		from    domain.Currency
		to      domain.Currency
		want    string
		wantErr error
	}{
		{
			name: "SGD to USD",
			from: domain.CurrencySGD,
			to:   domain.CurrencyUSD,
			want: "0.74",
		},
		{
			name: "USD to SGD",
			from: domain.CurrencyUSD,
			to:   domain.CurrencySGD,
			want: "1.3513513513513514",
		},
		{
			name: "MYR to USD cross rate through the pivot",
			from: domain.CurrencyMYR,
			to:   domain.CurrencyUSD,
			want: "0.2235649546827795",
		},
		{
			name: "SGD to SGD",
			from: domain.CurrencySGD,
			to:   domain.CurrencySGD,
			want: "1",
		},
		{
			name:    "unknown source currency",
			from:    domain.Currency("XYZ"),
			to:      domain.CurrencyUSD,
			wantErr: domain.ErrInvalidCurrency,
		},
		{
			name:    "unknown target currency",
			from:    domain.CurrencySGD,
			to:      domain.Currency("EUR"),
			wantErr: domain.ErrInvalidCurrency,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rate, err := svc.Rate(tc.from, tc.to)

			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}

			require.NoError(t, err)
			assert.True(t, rate.Equal(decimal.RequireFromString(tc.want)),
				"rate: got %s, want %s", rate, tc.want)
		})
	}
}

func TestCommissionRate(t *testing.T) {
	svc := newTestService()

	tests := []struct {
		name   string
		amount int64
		from   domain.Currency
		want   string
	}{
		{
			name:   "small SGD amount in the bottom band",
			amount: 5_000,
			from:   domain.CurrencySGD,
			want:   "0.02",
		},
		{
			name:   "band boundary is inclusive",
			amount: 100_000,
			from:   domain.CurrencySGD,
			want:   "0.02",
		},
		{
			name:   "just past the boundary moves to the middle band",
			amount: 100_001,
			from:   domain.CurrencySGD,
			want:   "0.015",
		},
		{
			name:   "large amount pays the top band",
			amount: 2_000_000,
			from:   domain.CurrencySGD,
			want:   "0.01",
		},
		{
			name:   "MYR amount is banded by its SGD equivalent",
			amount: 300_000,
			from:   domain.CurrencyMYR,
			want:   "0.02",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rate, err := svc.CommissionRate(tc.amount, tc.from)
			require.NoError(t, err)
			assert.True(t, rate.Equal(decimal.RequireFromString(tc.want)),
				"commission: got %s, want %s", rate, tc.want)
		})
	}
}

func TestConvert(t *testing.T) {
	svc := newTestService()

	tests := []struct {
		name          string
		amount        int64
		from          domain.Currency
		to            domain.Currency
		wantFee       int64
		wantNet       int64
		wantConverted int64
		wantErr       error
	}{
		{
			name:          "50 SGD to USD at 2 percent",
			amount:        5_000,
			from:          domain.CurrencySGD,
			to:            domain.CurrencyUSD,
			wantFee:       100,
			wantNet:       4_900,
			wantConverted: 3_626,
		},
		{
			name:          "100 MYR to USD rounds the credit down",
			amount:        10_000,
			from:          domain.CurrencyMYR,
			to:            domain.CurrencyUSD,
			wantFee:       200,
			wantNet:       9_800,
			wantConverted: 2_190,
		},
		{
			name:          "2000 SGD pays the middle band",
			amount:        200_000,
			from:          domain.CurrencySGD,
			to:            domain.CurrencyUSD,
			wantFee:       3_000,
			wantNet:       197_000,
			wantConverted: 145_780,
		},
		{
			name:          "20000 SGD pays the top band",
			amount:        2_000_000,
			from:          domain.CurrencySGD,
			to:            domain.CurrencyUSD,
			wantFee:       20_000,
			wantNet:       1_980_000,
			wantConverted: 1_465_200,
		},
		{
			name:    "zero amount",
			amount:  0,
			from:    domain.CurrencySGD,
			to:      domain.CurrencyUSD,
			wantErr: domain.ErrInvalidAmount,
		},
		{
			name:    "one cent credits nothing after rounding",
			amount:  1,
			from:    domain.CurrencySGD,
			to:      domain.CurrencyUSD,
			wantErr: domain.ErrInvalidAmount,
		},
		{
			name:    "two cents credit exactly one",
			amount:  2,
			from:    domain.CurrencySGD,
			to:      domain.CurrencyUSD,
			wantFee: 0,
			wantNet: 2,
			// 0.02 * 0.74 = 0.0148, floored to one cent.
			wantConverted: 1,
		},
		{
			name:    "negative amount",
			amount:  -100,
			from:    domain.CurrencySGD,
			to:      domain.CurrencyUSD,
			wantErr: domain.ErrInvalidAmount,
		},
		{
			name:    "same currency",
			amount:  5_000,
			from:    domain.CurrencyUSD,
			to:      domain.CurrencyUSD,
			wantErr: domain.ErrSameCurrency,
		},
		{
			name:    "unknown currency",
			amount:  5_000,
			from:    domain.CurrencySGD,
			to:      domain.Currency("EUR"),
			wantErr: domain.ErrInvalidCurrency,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			conv, err := svc.Convert(tc.amount, tc.from, tc.to)

			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.amount, conv.SourceAmount)
			assert.Equal(t, tc.wantFee, conv.FeeAmount)
			assert.Equal(t, tc.wantNet, conv.NetAmount)
			assert.Equal(t, tc.wantConverted, conv.ConvertedAmount)
		})
	}
}

// A conversion and its reverse both charge commission and round down, so a
// round trip always comes back short.
func TestConvert_RoundTripIsLossy(t *testing.T) {
	svc := newTestService()

	out, err := svc.Convert(5_000, domain.CurrencySGD, domain.CurrencyUSD)
	require.NoError(t, err)
	require.Equal(t, int64(3_626), out.ConvertedAmount)

	back, err := svc.Convert(out.ConvertedAmount, domain.CurrencyUSD, domain.CurrencySGD)
	require.NoError(t, err)
	require.Equal(t, int64(73), back.FeeAmount)
	require.Equal(t, int64(4_801), back.ConvertedAmount)

	// The 199-cent deficit is the two fees, net of rounding: 100 SGD cents
	// on the way out plus 73 USD cents (98.65 SGD cents) on the way back.
	deficit := 5_000 - back.ConvertedAmount
	feesInSGD := 100 + decimal.New(back.FeeAmount, 0).Div(decimal.NewFromFloat(0.74)).InexactFloat64()
	assert.InDelta(t, float64(deficit), feesInSGD, 1)
}
