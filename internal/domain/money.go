package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

type Currency string

const (
	CurrencySGD Currency = "SGD"
	CurrencyMYR Currency = "MYR"
	CurrencyAUD Currency = "AUD"
	CurrencyUSD Currency = "USD"
	CurrencyGBP Currency = "GBP"
)

// Currencies lists every supported currency in display order.
var Currencies = []Currency{CurrencySGD, CurrencyMYR, CurrencyAUD, CurrencyUSD, CurrencyGBP}

func (c Currency) IsValid() bool {
	switch c {
	case CurrencySGD, CurrencyMYR, CurrencyAUD, CurrencyUSD, CurrencyGBP:
		return true
	}
	return false
}

// Money is an amount in minor units (cents) tagged with its currency.
// All stored amounts have an exact scale of 2; decimal intermediates are
// only used for rate and interest math before the final rounding step.
type Money struct {
	Currency Currency
	Amount   int64
}

func NewMoney(currency Currency, cents int64) Money {
	return Money{Currency: currency, Amount: cents}
}

// Decimal returns the amount in major units at scale 2.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Amount, -2)
}

func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.Currency, m.Decimal().StringFixed(2))
}

// CentsFromDecimal truncates d toward zero to minor units. Used for converted
// amounts credited to an account, where rounding down is the conservative
// direction.
func CentsFromDecimal(d decimal.Decimal) int64 {
	return d.Shift(2).Truncate(0).IntPart()
}

// CentsFromDecimalHalfUp rounds d half-up to minor units. Used for
// customer-facing totals such as loan installments.
func CentsFromDecimalHalfUp(d decimal.Decimal) int64 {
	return d.Shift(2).Round(0).IntPart()
}
