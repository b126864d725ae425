package domain

import "fmt"

// Balance holds one amount per supported currency, in minor units.
// The zero value is a valid all-zero balance.
type Balance struct {
	SGD int64
	MYR int64
	AUD int64
	USD int64
	GBP int64
}

func (b Balance) Get(c Currency) int64 {
	switch c {
	case CurrencySGD:
		return b.SGD
	case CurrencyMYR:
		return b.MYR
	case CurrencyAUD:
		return b.AUD
	case CurrencyUSD:
		return b.USD
	case CurrencyGBP:
		return b.GBP
	}
	return 0
}

func (b *Balance) set(c Currency, cents int64) {
	switch c {
	case CurrencySGD:
		b.SGD = cents
	case CurrencyMYR:
		b.MYR = cents
	case CurrencyAUD:
		b.AUD = cents
	case CurrencyUSD:
		b.USD = cents
	case CurrencyGBP:
		b.GBP = cents
	}
}

// Credit adds cents to the given currency. The amount must be positive.
func (b *Balance) Credit(c Currency, cents int64) error {
	if !c.IsValid() {
		return fmt.Errorf("Credit: %q: %w", c, ErrInvalidCurrency)
	}
	if cents <= 0 {
		return fmt.Errorf("Credit: %w", ErrInvalidAmount)
	}
	b.set(c, b.Get(c)+cents)
	return nil
}

// Debit removes cents from the given currency. The amount must be positive
// and no greater than the current amount; the balance is untouched on error.
func (b *Balance) Debit(c Currency, cents int64) error {
	if !c.IsValid() {
		return fmt.Errorf("Debit: %q: %w", c, ErrInvalidCurrency)
	}
	if cents <= 0 {
		return fmt.Errorf("Debit: %w", ErrInvalidAmount)
	}
	if cents > b.Get(c) {
		return fmt.Errorf("Debit: %w", ErrInsufficientFunds)
	}
	b.set(c, b.Get(c)-cents)
	return nil
}

// WithAmount returns a copy of b with the given currency set.
func (b Balance) WithAmount(c Currency, cents int64) Balance {
	b.set(c, cents)
	return b
}

func (b Balance) IsZero() bool {
	return b.SGD == 0 && b.MYR == 0 && b.AUD == 0 && b.USD == 0 && b.GBP == 0
}
