package services

import (
	"context"
	"sync/atomic"

	"github.com/shopspring/decimal"

	"urwallet/internal/ai"
	"urwallet/internal/logger"
	"urwallet/internal/models"
)

func init() {
	logger.Init("test")
}

// fakeGenerator is a hand-written ai.Generator whose behavior is set per test.
type fakeGenerator struct {
	categorizeFn func(ctx context.Context, amount decimal.Decimal, remarks string) (string, error)
	summarizeFn  func(ctx context.Context, data ai.MonthData) (string, error)
	spikeFn      func(ctx context.Context, spike ai.SpikeData) (string, error)

	categorizeCalls atomic.Int32
	summarizeCalls  atomic.Int32
	spikeCalls      atomic.Int32
}

var _ ai.Generator = (*fakeGenerator)(nil)

func (f *fakeGenerator) Categorize(ctx context.Context, amount decimal.Decimal, remarks string) (string, error) {
	f.categorizeCalls.Add(1)
	if f.categorizeFn == nil {
		return "", ai.ErrDisabled
	}
	return f.categorizeFn(ctx, amount, remarks)
}

func (f *fakeGenerator) Summarize(ctx context.Context, data ai.MonthData) (string, error) {
	f.summarizeCalls.Add(1)
	if f.summarizeFn == nil {
		return "", ai.ErrDisabled
	}
	return f.summarizeFn(ctx, data)
}

func (f *fakeGenerator) SpikeWarning(ctx context.Context, spike ai.SpikeData) (string, error) {
	f.spikeCalls.Add(1)
	if f.spikeFn == nil {
		return "", ai.ErrDisabled
	}
	return f.spikeFn(ctx, spike)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func strPtr(s string) *string { return &s }

func sourcePtr(s models.ExpenseSource) *models.ExpenseSource {
	return &s
}
