// Package ai produces short natural-language text about a user's spending:
// single-transaction categories, monthly narratives and spike warnings.
package ai

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrDisabled is returned by every Generator method when no model is configured.
var ErrDisabled = errors.New("ai: generator is not configured")

// Categories is the closed set a transaction can be classified into.
var Categories = []string{"Food", "Rent", "Travel", "Bills", "Shopping", "Savings", "Investment", "Other"}

// FallbackCategory is used whenever classification is impossible.
const FallbackCategory = "Other"

// Generator is the narrow contract the services depend on. Implementations
// return raw model output or an error; callers decide on fallbacks.
type Generator interface {
	Categorize(ctx context.Context, amount decimal.Decimal, remarks string) (string, error)
	Summarize(ctx context.Context, data MonthData) (string, error)
	SpikeWarning(ctx context.Context, spike SpikeData) (string, error)
}

// TransactionLine is the subset of a ledger row a narrative needs.
type TransactionLine struct {
	Amount   decimal.Decimal
	Type     string
	Category string
	Remarks  string
	Date     string
}

// MonthData is the input for a monthly narrative.
type MonthData struct {
	Month        int
	Year         int
	Currency     string
	Budget       *decimal.Decimal
	Transactions []TransactionLine
}

// SpikeData describes a month-over-month spending increase.
type SpikeData struct {
	Current     decimal.Decimal
	Previous    decimal.Decimal
	IncreasePct decimal.Decimal
}

// NormalizeCategory maps raw model output onto Categories. Anything outside
// the set becomes FallbackCategory.
func NormalizeCategory(raw string) string {
	candidate := strings.TrimSpace(raw)
	candidate = strings.Trim(candidate, ".\"'`*")
	for _, c := range Categories {
		if strings.EqualFold(candidate, c) {
			return c
		}
	}
	return FallbackCategory
}

// Disabled is the Generator used when no API key is configured.
type Disabled struct{}

func (Disabled) Categorize(context.Context, decimal.Decimal, string) (string, error) {
	return "", ErrDisabled
}

func (Disabled) Summarize(context.Context, MonthData) (string, error) {
	return "", ErrDisabled
}

func (Disabled) SpikeWarning(context.Context, SpikeData) (string, error) {
	return "", ErrDisabled
}
