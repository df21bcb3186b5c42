package currency

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Conversion is the result of converting an amount between two currencies.
type Conversion struct {
	Amount          decimal.Decimal `json:"amount"`
	FromCurrency    string          `json:"from_currency"`
	ToCurrency      string          `json:"to_currency"`
	Rate            decimal.Decimal `json:"rate"`
	ConvertedAmount decimal.Decimal `json:"converted_amount"`
	FetchedAt       time.Time       `json:"fetched_at"`
}

// Convert converts amount from one currency to another using the provider's
// table for from. The converted amount is rounded to 2 decimal places.
func Convert(ctx context.Context, p RateProvider, amount decimal.Decimal, from, to string) (*Conversion, error) {
	fromCode, err := NormalizeCode(from)
	if err != nil {
		return nil, err
	}
	toCode, err := NormalizeCode(to)
	if err != nil {
		return nil, err
	}

	table, err := p.Rates(ctx, fromCode)
	if err != nil {
		return nil, err
	}
	rate, err := table.Rate(toCode)
	if err != nil {
		return nil, err
	}

	return &Conversion{
		Amount:          amount,
		FromCurrency:    fromCode,
		ToCurrency:      toCode,
		Rate:            rate,
		ConvertedAmount: amount.Mul(rate).Round(2),
		FetchedAt:       table.FetchedAt,
	}, nil
}
