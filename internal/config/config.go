package config

import (
	"fmt"

	env "github.com/caarlos0/env/v11"
	"github.com/shopspring/decimal"
	"github.com/sunshinebank/sunshine-ledger/internal/domain"
	"github.com/sunshinebank/sunshine-ledger/internal/fx"
)

type Config struct {
	DatabaseURL string `env:"DATABASE_URL,required"`
	JWTSecret   string `env:"JWT_SECRET,required"`
	JWTExpiryS  int    `env:"JWT_EXPIRY_S" envDefault:"3600"`
	Port        int    `env:"PORT" envDefault:"8080"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	AppEnv      string `env:"APP_ENV" envDefault:"production"`

	// Exchange rates per one SGD.
	RateMYR float64 `env:"FX_RATE_MYR" envDefault:"3.31"`
	RateAUD float64 `env:"FX_RATE_AUD" envDefault:"1.10"`
	RateUSD float64 `env:"FX_RATE_USD" envDefault:"0.74"`
	RateGBP float64 `env:"FX_RATE_GBP" envDefault:"0.59"`

	// Commission bands on the SGD-equivalent source amount, in cents.
	// Amounts at or below a tier boundary pay that tier's rate; everything
	// above the last boundary pays the top-band rate.
	CommissionTier1UpTo int64   `env:"FX_COMMISSION_TIER1_UP_TO" envDefault:"100000"`
	CommissionTier1Rate float64 `env:"FX_COMMISSION_TIER1_RATE" envDefault:"0.02"`
	CommissionTier2UpTo int64   `env:"FX_COMMISSION_TIER2_UP_TO" envDefault:"1000000"`
	CommissionTier2Rate float64 `env:"FX_COMMISSION_TIER2_RATE" envDefault:"0.015"`
	CommissionTier3Rate float64 `env:"FX_COMMISSION_TIER3_RATE" envDefault:"0.01"`

	// Annual simple interest rates per loan category.
	LoanRatePersonal float64 `env:"LOAN_RATE_PERSONAL" envDefault:"0.10"`
	LoanRateCar      float64 `env:"LOAN_RATE_CAR" envDefault:"0.08"`
	LoanRateStudy    float64 `env:"LOAN_RATE_STUDY" envDefault:"0.05"`
	LoanRateHome     float64 `env:"LOAN_RATE_HOME" envDefault:"0.02"`

	// Default daily ceilings in cents, applied when an account is opened.
	// Savings accounts get the SGD ceiling only; FX accounts get a nonzero
	// ceiling in every currency.
	DefaultCeilingSGD int64 `env:"LIMIT_DEFAULT_SGD" envDefault:"500000"`
	DefaultCeilingMYR int64 `env:"LIMIT_DEFAULT_MYR" envDefault:"1500000"`
	DefaultCeilingAUD int64 `env:"LIMIT_DEFAULT_AUD" envDefault:"550000"`
	DefaultCeilingUSD int64 `env:"LIMIT_DEFAULT_USD" envDefault:"370000"`
	DefaultCeilingGBP int64 `env:"LIMIT_DEFAULT_GBP" envDefault:"300000"`

	DBMaxOpenConns     int `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
	DBMaxIdleConns     int `env:"DB_MAX_IDLE_CONNS" envDefault:"10"`
	DBConnMaxLifetimeS int `env:"DB_CONN_MAX_LIFETIME_S" envDefault:"300"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	return &cfg, nil
}

// PivotRates returns the configured 1-SGD exchange rates.
func (c *Config) PivotRates() map[domain.Currency]float64 {
	return map[domain.Currency]float64{
		domain.CurrencyMYR: c.RateMYR,
		domain.CurrencyAUD: c.RateAUD,
		domain.CurrencyUSD: c.RateUSD,
		domain.CurrencyGBP: c.RateGBP,
	}
}

// CommissionTiers returns the commission bands ordered ascending.
func (c *Config) CommissionTiers() []fx.Tier {
	return []fx.Tier{
		{UpTo: c.CommissionTier1UpTo, Rate: decimal.NewFromFloat(c.CommissionTier1Rate)},
		{UpTo: c.CommissionTier2UpTo, Rate: decimal.NewFromFloat(c.CommissionTier2Rate)},
		{Rate: decimal.NewFromFloat(c.CommissionTier3Rate)},
	}
}

// LoanRates returns the annual interest rate per loan category.
func (c *Config) LoanRates() map[domain.LoanCategory]decimal.Decimal {
	return map[domain.LoanCategory]decimal.Decimal{
		domain.LoanCategoryPersonal: decimal.NewFromFloat(c.LoanRatePersonal),
		domain.LoanCategoryCar:      decimal.NewFromFloat(c.LoanRateCar),
		domain.LoanCategoryStudy:    decimal.NewFromFloat(c.LoanRateStudy),
		domain.LoanCategoryHome:     decimal.NewFromFloat(c.LoanRateHome),
	}
}

// DefaultCeilings returns the per-currency default daily ceiling.
func (c *Config) DefaultCeilings() domain.Balance {
	return domain.Balance{
		SGD: c.DefaultCeilingSGD,
		MYR: c.DefaultCeilingMYR,
		AUD: c.DefaultCeilingAUD,
		USD: c.DefaultCeilingUSD,
		GBP: c.DefaultCeilingGBP,
	}
}
