package handlers

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"urwallet/internal/currency"
	apperrors "urwallet/internal/errors"
	"urwallet/internal/services"
)

func setupCurrencyRouter(svc services.CurrencyServicer) *gin.Engine {
	h := NewCurrencyHandler(svc)
	r := gin.New()
	r.GET("/currency/rates/:currency", h.GetRates)
	r.GET("/currency/convert", h.Convert)
	return r
}

func TestCurrencyHandler_GetRates(t *testing.T) {
	t.Run("returns the table", func(t *testing.T) {
		svc := &mockCurrencyService{
			getRatesFn: func(_ context.Context, base string) (*currency.RateTable, error) {
				return &currency.RateTable{Base: "USD", Rates: map[string]decimal.Decimal{"MYR": decimal.RequireFromString("4.47")}}, nil
			},
		}
		rec := doRequest(setupCurrencyRouter(svc), "GET", "/currency/rates/usd", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		result := parseJSON(t, rec)
		if result["base"] != "USD" || result["rates"].(map[string]interface{})["MYR"] != "4.47" {
			t.Errorf("unexpected body %v", result)
		}
	})

	t.Run("returns 503 when the provider is down", func(t *testing.T) {
		svc := &mockCurrencyService{
			getRatesFn: func(context.Context, string) (*currency.RateTable, error) {
				return nil, apperrors.Wrap(apperrors.ErrCurrencyUnavailable, errors.New("timeout"))
			},
		}
		rec := doRequest(setupCurrencyRouter(svc), "GET", "/currency/rates/USD", "")
		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("expected 503, got %d", rec.Code)
		}
		result := parseJSON(t, rec)
		assertErrorCode(t, result, "CURRENCY_SERVICE_UNAVAILABLE")
		if msg := result["error"].(map[string]interface{})["message"]; msg == "timeout" {
			t.Error("internal cause must not leak")
		}
	})
}

func TestCurrencyHandler_Convert(t *testing.T) {
	t.Run("converts", func(t *testing.T) {
		svc := &mockCurrencyService{
			convertFn: func(_ context.Context, amount decimal.Decimal, from, to string) (*currency.Conversion, error) {
				if from != "USD" || to != "MYR" {
					t.Errorf("unexpected codes %s %s", from, to)
				}
				return &currency.Conversion{Amount: amount, FromCurrency: from, ToCurrency: to, ConvertedAmount: amount.Mul(decimal.NewFromInt(4))}, nil
			},
		}
		rec := doRequest(setupCurrencyRouter(svc), "GET", "/currency/convert?amount=2.5&from=USD&to=MYR", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if got := parseJSON(t, rec)["converted_amount"]; got != "10" {
			t.Errorf("expected 10, got %v", got)
		}
	})

	for name, query := range map[string]string{
		"missing amount": "/currency/convert?from=USD&to=MYR",
		"bad amount":     "/currency/convert?amount=abc&from=USD&to=MYR",
		"missing to":     "/currency/convert?amount=1&from=USD",
	} {
		t.Run("returns 400 on "+name, func(t *testing.T) {
			rec := doRequest(setupCurrencyRouter(&mockCurrencyService{}), "GET", query, "")
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
		})
	}
}
