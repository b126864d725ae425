package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sunshinebank/sunshine-ledger/internal/domain"
	"github.com/sunshinebank/sunshine-ledger/internal/fx"
	"github.com/sunshinebank/sunshine-ledger/internal/logging"
)

type conversionService interface {
	Quote(ctx context.Context, amountCents int64, from, to domain.Currency) (*fx.Conversion, error)
	Convert(ctx context.Context, accountID uuid.UUID, amountCents int64, from, to domain.Currency) (*fx.Conversion, error)
}

type FXHandler struct {
	rates       *fx.RateService
	conversions conversionService
	accounts    accountGetter
}

func NewFXHandler(rates *fx.RateService, conversions conversionService, accounts accountGetter) *FXHandler {
	return &FXHandler{rates: rates, conversions: conversions, accounts: accounts}
}

type fxRateResponse struct {
	FromCurrency string `json:"from_currency"`
	ToCurrency   string `json:"to_currency"`
	Rate         string `json:"rate"`
	Timestamp    string `json:"timestamp"`
}

func (h *FXHandler) GetRate(w http.ResponseWriter, r *http.Request) {
	from := r.URL.Query().Get("from_currency")
	to := r.URL.Query().Get("to_currency")

	if fields := validateCurrencyPair(from, to); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	rate, err := h.rates.Rate(domain.Currency(from), domain.Currency(to))
	if err != nil {
		logging.FromContext(r.Context()).Warn("fx rate lookup failed", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, fxRateResponse{
		FromCurrency: from,
		ToCurrency:   to,
		Rate:         rate.String(),
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
	})
}

type convertRequest struct {
	FromCurrency string `json:"from_currency"`
	ToCurrency   string `json:"to_currency"`
	Amount       int64  `json:"amount"`
}

func (r convertRequest) Validate() []FieldError {
	errs := validateCurrencyPair(r.FromCurrency, r.ToCurrency)
	if r.Amount <= 0 {
		errs = append(errs, FieldError{Field: "amount", Message: "must be greater than 0"})
	}
	return errs
}

type conversionDTO struct {
	FromCurrency    string `json:"from_currency"`
	ToCurrency      string `json:"to_currency"`
	SourceAmount    int64  `json:"source_amount"`
	FeeAmount       int64  `json:"fee_amount"`
	NetAmount       int64  `json:"net_amount"`
	ConvertedAmount int64  `json:"converted_amount"`
	Rate            string `json:"rate"`
	CommissionRate  string `json:"commission_rate"`
}

func toConversionDTO(from, to string, c *fx.Conversion) conversionDTO {
	return conversionDTO{
		FromCurrency:    from,
		ToCurrency:      to,
		SourceAmount:    c.SourceAmount,
		FeeAmount:       c.FeeAmount,
		NetAmount:       c.NetAmount,
		ConvertedAmount: c.ConvertedAmount,
		Rate:            c.Rate.String(),
		CommissionRate:  c.CommissionRate.String(),
	}
}

func (h *FXHandler) Quote(w http.ResponseWriter, r *http.Request) {
	var req convertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	conv, err := h.conversions.Quote(r.Context(), req.Amount, domain.Currency(req.FromCurrency), domain.Currency(req.ToCurrency))
	if err != nil {
		logging.FromContext(r.Context()).Warn("fx quote failed", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, toConversionDTO(req.FromCurrency, req.ToCurrency, conv))
}

func (h *FXHandler) Convert(w http.ResponseWriter, r *http.Request) {
	account, appErr := ownedAccount(r, h.accounts)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	var req convertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	conv, err := h.conversions.Convert(r.Context(), account.ID, req.Amount, domain.Currency(req.FromCurrency), domain.Currency(req.ToCurrency))
	if err != nil {
		logging.FromContext(r.Context()).Warn("fx conversion failed", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusCreated, toConversionDTO(req.FromCurrency, req.ToCurrency, conv))
}

func validateCurrencyPair(from, to string) []FieldError {
	var errs []FieldError

	if from == "" {
		errs = append(errs, FieldError{Field: "from_currency", Message: "required"})
	} else if !domain.Currency(from).IsValid() {
		errs = append(errs, FieldError{Field: "from_currency", Message: "must be SGD, MYR, AUD, USD, or GBP"})
	}

	if to == "" {
		errs = append(errs, FieldError{Field: "to_currency", Message: "required"})
	} else if !domain.Currency(to).IsValid() {
		errs = append(errs, FieldError{Field: "to_currency", Message: "must be SGD, MYR, AUD, USD, or GBP"})
	}

	return errs
}
