package currency

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

const successBody = `{"result":"success","base_code":"USD","conversion_rates":{"USD":1,"EUR":0.9215,"JPY":151.37}}`

func newTestProvider(t *testing.T, handler http.HandlerFunc, ttl time.Duration) (*ExchangeRateAPI, *atomic.Int32) {
	t.Helper()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	return NewExchangeRateAPI(srv.Client(), srv.URL, "test-key", ttl), &hits
}

func TestRatesFetchesTable(t *testing.T) {
	var gotPath string
	p, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(successBody))
	}, time.Hour)

	table, err := p.Rates(context.Background(), " usd ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotPath != "/test-key/latest/USD" {
		t.Errorf("unexpected request path %s", gotPath)
	}
	if table.Base != "USD" {
		t.Errorf("expected base USD, got %s", table.Base)
	}
	rate, err := table.Rate("EUR")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !rate.Equal(decimal.RequireFromString("0.9215")) {
		t.Errorf("expected EUR rate 0.9215, got %s", rate)
	}
}

func TestRatesCachesUntilTTL(t *testing.T) {
	p, hits := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(successBody))
	}, time.Hour)

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return now }

	first, err := p.Rates(context.Background(), "USD")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := p.Rates(context.Background(), "USD"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hits.Load() != 1 {
		t.Fatalf("expected 1 upstream call within TTL, got %d", hits.Load())
	}

	now = now.Add(61 * time.Minute)
	second, err := p.Rates(context.Background(), "USD")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hits.Load() != 2 {
		t.Errorf("expected refetch after TTL, got %d calls", hits.Load())
	}
	if !second.FetchedAt.After(first.FetchedAt) {
		t.Error("refetched table should carry a newer fetch time")
	}
}

func TestRatesErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"upstream_500", http.StatusInternalServerError, "", nil},
		{"provider_error", http.StatusOK, `{"result":"error","error-type":"invalid-key"}`, nil},
		{"unsupported_code", http.StatusOK, `{"result":"error","error-type":"unsupported-code"}`, ErrUnknownCurrency},
		{"missing_rates", http.StatusOK, `{"result":"success"}`, nil},
		{"malformed_json", http.StatusOK, `{`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}, time.Hour)

			_, err := p.Rates(context.Background(), "USD")
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestRatesWithoutKey(t *testing.T) {
	p := NewExchangeRateAPI(http.DefaultClient, "", "", time.Hour)
	if _, err := p.Rates(context.Background(), "USD"); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured, got %v", err)
	}
}

func TestNormalizeCode(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"usd", "USD", false},
		{"  eur ", "EUR", false},
		{"US", "", true},
		{"USDT", "", true},
		{"U$D", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := NormalizeCode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("NormalizeCode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("NormalizeCode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestConvert(t *testing.T) {
	p, hits := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(successBody))
	}, time.Hour)

	t.Run("rounds_to_cents", func(t *testing.T) {
		conv, err := Convert(context.Background(), p, decimal.RequireFromString("12.34"), "usd", "eur")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		// 12.34 * 0.9215 = 11.37131
		if !conv.ConvertedAmount.Equal(decimal.RequireFromString("11.37")) {
			t.Errorf("expected 11.37, got %s", conv.ConvertedAmount)
		}
		if conv.FromCurrency != "USD" || conv.ToCurrency != "EUR" {
			t.Errorf("expected normalized codes, got %s -> %s", conv.FromCurrency, conv.ToCurrency)
		}
	})

	t.Run("unknown_target", func(t *testing.T) {
		_, err := Convert(context.Background(), p, decimal.NewFromInt(1), "USD", "XYZ")
		if !errors.Is(err, ErrUnknownCurrency) {
			t.Errorf("expected ErrUnknownCurrency, got %v", err)
		}
	})

	t.Run("invalid_code_never_reaches_provider", func(t *testing.T) {
		before := hits.Load()
		_, err := Convert(context.Background(), p, decimal.NewFromInt(1), "US", "EUR")
		if !errors.Is(err, ErrInvalidCode) {
			t.Errorf("expected ErrInvalidCode, got %v", err)
		}
		if hits.Load() != before {
			t.Error("provider should not be called for an invalid code")
		}
	})
}

func TestRatesHonorsContext(t *testing.T) {
	p, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}, time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := p.Rates(ctx, "USD")
	if err == nil || !strings.Contains(err.Error(), "USD") {
		t.Errorf("expected a wrapped timeout error, got %v", err)
	}
}
