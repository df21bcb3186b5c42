package currency

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultBaseURL is the ExchangeRate-API v6 endpoint.
const DefaultBaseURL = "https://v6.exchangerate-api.com/v6"

var (
	// ErrNotConfigured is returned when no API key is set.
	ErrNotConfigured = errors.New("currency: rates provider is not configured")
	// ErrUnknownCurrency is returned when a code is missing from the rate table.
	ErrUnknownCurrency = errors.New("currency: code not in rate table")
)

// RateTable holds the rates for one base currency: 1 Base = Rates[code] code.
type RateTable struct {
	Base      string
	Rates     map[string]decimal.Decimal
	FetchedAt time.Time
}

// Rate looks up the rate to code.
func (t *RateTable) Rate(code string) (decimal.Decimal, error) {
	r, ok := t.Rates[code]
	if !ok {
		return decimal.Zero, ErrUnknownCurrency
	}
	return r, nil
}

// RateProvider returns the rate table for a base currency.
type RateProvider interface {
	Rates(ctx context.Context, base string) (*RateTable, error)
}

// ExchangeRateAPI is a RateProvider backed by exchangerate-api.com. Tables
// are cached per base currency for ttl.
type ExchangeRateAPI struct {
	httpClient *http.Client
	baseURL    string // overridable for tests
	apiKey     string
	ttl        time.Duration
	now        func() time.Time

	mu    sync.RWMutex
	cache map[string]*RateTable
}

// NewExchangeRateAPI creates a provider. A zero ttl disables caching.
func NewExchangeRateAPI(httpClient *http.Client, baseURL, apiKey string, ttl time.Duration) *ExchangeRateAPI {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &ExchangeRateAPI{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     apiKey,
		ttl:        ttl,
		now:        time.Now,
		cache:      make(map[string]*RateTable),
	}
}

// Rates returns the cached table for base or fetches a fresh one.
func (p *ExchangeRateAPI) Rates(ctx context.Context, base string) (*RateTable, error) {
	if p.apiKey == "" {
		return nil, ErrNotConfigured
	}

	code, err := NormalizeCode(base)
	if err != nil {
		return nil, err
	}

	p.mu.RLock()
	cached, ok := p.cache[code]
	p.mu.RUnlock()
	if ok && p.now().Sub(cached.FetchedAt) < p.ttl {
		return cached, nil
	}

	table, err := p.fetch(ctx, code)
	if err != nil {
		return nil, err
	}

	if p.ttl > 0 {
		p.mu.Lock()
		p.cache[code] = table
		p.mu.Unlock()
	}
	return table, nil
}

type latestResponse struct {
	Result          string                     `json:"result"`
	ErrorType       string                     `json:"error-type"`
	BaseCode        string                     `json:"base_code"`
	ConversionRates map[string]decimal.Decimal `json:"conversion_rates"`
}

func (p *ExchangeRateAPI) fetch(ctx context.Context, base string) (*RateTable, error) {
	url := fmt.Sprintf("%s/%s/latest/%s", p.baseURL, p.apiKey, base)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building rates request: %w", err)
	}
	req.Header.Set("User-Agent", "urWallet/1.0")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rates request for %s: %w", base, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rates request for %s: unexpected status %d", base, resp.StatusCode)
	}

	var body latestResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decoding rates response for %s: %w", base, err)
	}

	if body.Result != "success" {
		if body.ErrorType == "unsupported-code" {
			return nil, ErrUnknownCurrency
		}
		return nil, fmt.Errorf("rates provider error for %s: %s", base, body.ErrorType)
	}
	if len(body.ConversionRates) == 0 {
		return nil, fmt.Errorf("rates response for %s has no conversion_rates", base)
	}

	return &RateTable{
		Base:      base,
		Rates:     body.ConversionRates,
		FetchedAt: p.now().UTC(),
	}, nil
}
