package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"urwallet/internal/currency"
	"urwallet/internal/testutil"
)

type fakeRateProvider struct {
	ratesFn func(ctx context.Context, base string) (*currency.RateTable, error)
}

func (f *fakeRateProvider) Rates(ctx context.Context, base string) (*currency.RateTable, error) {
	return f.ratesFn(ctx, base)
}

func usdTable(_ context.Context, base string) (*currency.RateTable, error) {
	if base != "USD" {
		return nil, currency.ErrUnknownCurrency
	}
	return &currency.RateTable{
		Base: "USD",
		Rates: map[string]decimal.Decimal{
			"USD": decimal.NewFromInt(1),
			"MYR": decimal.RequireFromString("4.4712"),
		},
		FetchedAt: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
	}, nil
}

func TestCurrencyGetRates(t *testing.T) {
	svc := NewCurrencyService(&fakeRateProvider{ratesFn: usdTable}, time.Second)
	ctx := context.Background()

	t.Run("normalizes_base", func(t *testing.T) {
		table, err := svc.GetRates(ctx, " usd")
		testutil.AssertNoError(t, err)
		if table.Base != "USD" || len(table.Rates) != 2 {
			t.Errorf("unexpected table %+v", table)
		}
	})

	t.Run("invalid_code", func(t *testing.T) {
		_, err := svc.GetRates(ctx, "US")
		testutil.AssertAppError(t, err, "INVALID_CURRENCY")
	})

	t.Run("unknown_base", func(t *testing.T) {
		_, err := svc.GetRates(ctx, "XYZ")
		testutil.AssertAppError(t, err, "CURRENCY_NOT_FOUND")
	})

	t.Run("provider_down", func(t *testing.T) {
		down := NewCurrencyService(&fakeRateProvider{ratesFn: func(context.Context, string) (*currency.RateTable, error) {
			return nil, errors.New("connection refused")
		}}, time.Second)
		_, err := down.GetRates(ctx, "USD")
		testutil.AssertAppError(t, err, "CURRENCY_SERVICE_UNAVAILABLE")
	})
}

func TestCurrencyConvert(t *testing.T) {
	svc := NewCurrencyService(&fakeRateProvider{ratesFn: usdTable}, time.Second)
	ctx := context.Background()

	t.Run("converts_and_rounds", func(t *testing.T) {
		conv, err := svc.Convert(ctx, dec("10.555"), "usd", "myr")
		testutil.AssertNoError(t, err)
		if conv.FromCurrency != "USD" || conv.ToCurrency != "MYR" {
			t.Errorf("unexpected codes %s -> %s", conv.FromCurrency, conv.ToCurrency)
		}
		// 10.555 * 4.4712 = 47.193516
		testutil.AssertDecimal(t, conv.ConvertedAmount, "47.19")
		testutil.AssertDecimal(t, conv.Rate, "4.4712")
	})

	t.Run("target_not_in_table", func(t *testing.T) {
		_, err := svc.Convert(ctx, dec("1"), "USD", "EUR")
		testutil.AssertAppError(t, err, "CURRENCY_NOT_FOUND")
	})

	t.Run("non_positive_amount", func(t *testing.T) {
		_, err := svc.Convert(ctx, dec("0"), "USD", "MYR")
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("invalid_target_code", func(t *testing.T) {
		_, err := svc.Convert(ctx, dec("1"), "USD", "M1R")
		testutil.AssertAppError(t, err, "INVALID_CURRENCY")
	})
}
