package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"urwallet/internal/ai"
	"urwallet/internal/logger"
)

// categorize asks the generator for a category. Blank remarks, a disabled
// generator, a timeout or any other failure all yield ai.FallbackCategory.
func categorize(ctx context.Context, gen ai.Generator, timeout time.Duration, amount decimal.Decimal, remarks string) string {
	remarks = strings.TrimSpace(remarks)
	if remarks == "" {
		return ai.FallbackCategory
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	category, err := gen.Categorize(ctx, amount, remarks)
	if err != nil {
		if !errors.Is(err, ai.ErrDisabled) {
			logger.Get().Warnw("categorization failed", "error", err)
		}
		return ai.FallbackCategory
	}
	return ai.NormalizeCategory(category)
}
