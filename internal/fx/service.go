package fx

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sunshinebank/sunshine-ledger/internal/domain"
)

// Tier is one commission band. UpTo is the inclusive upper bound on the
// SGD-equivalent source amount in cents; a zero UpTo marks the open-ended
// top band. Bands must be ordered ascending with descending rates.
type Tier struct {
	UpTo int64
	Rate decimal.Decimal
}

// RateService derives cross rates from an SGD-pivot table and prices the
// tiered conversion commission. All rates are static configuration; there
// is no live feed.
type RateService struct {
	pivot map[domain.Currency]decimal.Decimal
	tiers []Tier
}

// NewRateService builds a service from 1-SGD pivot rates for the non-SGD
// currencies. The SGD pivot is fixed at 1.
func NewRateService(pivot map[domain.Currency]float64, tiers []Tier) *RateService {
	rates := map[domain.Currency]decimal.Decimal{
		domain.CurrencySGD: decimal.NewFromInt(1),
	}
	for c, r := range pivot {
		rates[c] = decimal.NewFromFloat(r)
	}
	return &RateService{pivot: rates, tiers: tiers}
}

type Quote struct {
	From domain.Currency
	To   domain.Currency
	Rate decimal.Decimal
}

// Rate returns the cross rate between two currencies, derived by
// dividing the two pivot rates through SGD.
func (s *RateService) Rate(from, to domain.Currency) (decimal.Decimal, error) {
	pf, ok := s.pivot[from]
	if !ok {
		return decimal.Zero, fmt.Errorf("Rate: %q: %w", from, domain.ErrInvalidCurrency)
	}
	pt, ok := s.pivot[to]
	if !ok {
		return decimal.Zero, fmt.Errorf("Rate: %q: %w", to, domain.ErrInvalidCurrency)
	}
	return pt.Div(pf), nil
}

func (s *RateService) Quote(from, to domain.Currency) (*Quote, error) {
	rate, err := s.Rate(from, to)
	if err != nil {
		return nil, fmt.Errorf("Quote: %w", err)
	}
	return &Quote{From: from, To: to, Rate: rate}, nil
}

// PivotRates returns the configured 1-SGD rates for display.
func (s *RateService) PivotRates() map[domain.Currency]decimal.Decimal {
	out := make(map[domain.Currency]decimal.Decimal, len(s.pivot))
	for c, r := range s.pivot {
		out[c] = r
	}
	return out
}

// CommissionRate picks the band for the given source amount. Bands are
// keyed on the SGD-equivalent of the source before conversion, not on the
// converted result, so the same tier applies to the same economic size
// regardless of source currency and independent of the destination.
func (s *RateService) CommissionRate(amountCents int64, from domain.Currency) (decimal.Decimal, error) {
	pf, ok := s.pivot[from]
	if !ok {
		return decimal.Zero, fmt.Errorf("CommissionRate: %q: %w", from, domain.ErrInvalidCurrency)
	}
	equiv := decimal.New(amountCents, 0).Div(pf)

	for _, t := range s.tiers {
		if t.UpTo > 0 && equiv.LessThanOrEqual(decimal.New(t.UpTo, 0)) {
			return t.Rate, nil
		}
	}
	if len(s.tiers) == 0 {
		return decimal.Zero, nil
	}
	return s.tiers[len(s.tiers)-1].Rate, nil
}

type Conversion struct {
	SourceAmount    int64
	FeeAmount       int64
	NetAmount       int64
	ConvertedAmount int64
	Rate            decimal.Decimal
	CommissionRate  decimal.Decimal
}

// Convert prices a conversion of amountCents. The fee is taken in
// the source currency (rounded half-up), and the converted amount credited
// to the destination is rounded down, so the bank never over-credits.
// Amounts too small to credit at least one cent of the destination are
// rejected rather than debited for nothing.
func (s *RateService) Convert(amountCents int64, from, to domain.Currency) (*Conversion, error) {
	if amountCents <= 0 {
		return nil, fmt.Errorf("Convert: %w", domain.ErrInvalidAmount)
	}
	if from == to {
		return nil, fmt.Errorf("Convert: %w", domain.ErrSameCurrency)
	}

	rate, err := s.Rate(from, to)
	if err != nil {
		return nil, fmt.Errorf("Convert: %w", err)
	}
	commission, err := s.CommissionRate(amountCents, from)
	if err != nil {
		return nil, fmt.Errorf("Convert: %w", err)
	}

	src := decimal.New(amountCents, -2)
	fee := src.Mul(commission).Round(2)
	net := src.Sub(fee)
	converted := net.Mul(rate).RoundDown(2)

	convertedCents := domain.CentsFromDecimal(converted)
	if convertedCents == 0 {
		return nil, fmt.Errorf("Convert: %d %s credits nothing at rate %s: %w",
			amountCents, from, rate, domain.ErrInvalidAmount)
	}

	return &Conversion{
		SourceAmount:    amountCents,
		FeeAmount:       domain.CentsFromDecimalHalfUp(fee),
		NetAmount:       domain.CentsFromDecimalHalfUp(net),
		ConvertedAmount: convertedCents,
		Rate:            rate,
		CommissionRate:  commission,
	}, nil
}
