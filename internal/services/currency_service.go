package services

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"urwallet/internal/currency"
	apperrors "urwallet/internal/errors"
	"urwallet/internal/logger"
)

// currencyService exposes exchange rates with application error semantics.
type currencyService struct {
	provider currency.RateProvider
	timeout  time.Duration
}

// NewCurrencyService creates a new CurrencyServicer.
func NewCurrencyService(provider currency.RateProvider, timeout time.Duration) CurrencyServicer {
	return &currencyService{provider: provider, timeout: timeout}
}

// GetRates returns the rate table for base.
func (s *currencyService) GetRates(ctx context.Context, base string) (*currency.RateTable, error) {
	code, err := currency.NormalizeCode(base)
	if err != nil {
		return nil, apperrors.ErrInvalidCurrency
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	table, err := s.provider.Rates(ctx, code)
	if err != nil {
		return nil, mapCurrencyError(err, code)
	}
	return table, nil
}

// Convert converts amount between two currencies.
func (s *currencyService) Convert(ctx context.Context, amount decimal.Decimal, from, to string) (*currency.Conversion, error) {
	if !amount.IsPositive() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	conv, err := currency.Convert(ctx, s.provider, amount, from, to)
	if err != nil {
		return nil, mapCurrencyError(err, from+"->"+to)
	}
	return conv, nil
}

func mapCurrencyError(err error, subject string) error {
	switch {
	case errors.Is(err, currency.ErrInvalidCode):
		return apperrors.ErrInvalidCurrency
	case errors.Is(err, currency.ErrUnknownCurrency):
		return apperrors.ErrCurrencyNotFound
	default:
		logger.Get().Errorw("currency provider failed", "subject", subject, "error", err)
		return apperrors.Wrap(apperrors.ErrCurrencyUnavailable, err)
	}
}
