package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"urwallet/internal/ai"
	apperrors "urwallet/internal/errors"
	"urwallet/internal/logger"
	"urwallet/internal/models"
)

// Fixed insight texts returned instead of a generated narrative.
const (
	InsightsDisabledMessage = "AI insights are disabled in settings."
	NoTransactionsMessage   = "No transactions for this month yet."
	NoInsightsMessage       = "No insights available."
	InsightsFailedMessage   = "Unable to generate insights at this time."
)

// spikeThreshold is how much current spending may exceed the previous month's
// before it counts as a spike.
var spikeThreshold = decimal.RequireFromString("1.2")

// insightService serves AI-backed features. Monthly narratives are cached in
// monthly_summaries and never regenerated once stored.
type insightService struct {
	db        *gorm.DB
	generator ai.Generator
	timeout   time.Duration
	flights   singleflight.Group
}

// NewInsightService creates a new InsightServicer.
func NewInsightService(db *gorm.DB, generator ai.Generator, timeout time.Duration) InsightServicer {
	return &insightService{
		db:        db,
		generator: generator,
		timeout:   timeout,
	}
}

// GetMonthlyInsights returns the cached narrative for the month, generating
// and storing it on first request. A stored narrative is returned as-is even
// if the month's transactions changed afterwards.
func (s *insightService) GetMonthlyInsights(ctx context.Context, userID string, month, year int) (string, error) {
	if month < 1 || month > 12 {
		return "", apperrors.WithMessage(apperrors.ErrInvalidInput, "month must be between 1 and 12")
	}

	user, err := s.getUser(ctx, userID)
	if err != nil {
		return "", err
	}
	if !user.AIInsightsEnabled {
		return InsightsDisabledMessage, nil
	}

	cached, err := s.findSummary(ctx, userID, month, year)
	if err != nil {
		return "", err
	}
	if cached != nil {
		return cached.AIInsights, nil
	}

	key := fmt.Sprintf("%s:%d:%d", userID, month, year)
	// The generation is shared by every caller waiting on key, so it must
	// outlive the first caller's request. The generator timeout still bounds it.
	genCtx := context.WithoutCancel(ctx)
	v, err, _ := s.flights.Do(key, func() (interface{}, error) {
		return s.generateInsights(genCtx, user, month, year)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (s *insightService) generateInsights(ctx context.Context, user *models.User, month, year int) (string, error) {
	txns, err := monthTransactions(s.db.WithContext(ctx), user.ID, month, year)
	if err != nil {
		return "", err
	}
	txns = FilterMonth(txns, month, year)
	if len(txns) == 0 {
		return NoTransactionsMessage, nil
	}

	data := ai.MonthData{
		Month:        month,
		Year:         year,
		Currency:     user.PreferredCurrency(),
		Budget:       user.Budget,
		Transactions: make([]ai.TransactionLine, 0, len(txns)),
	}
	for _, t := range txns {
		line := ai.TransactionLine{Amount: t.Amount, Type: string(t.Type), Category: t.Category, Date: t.Date}
		if t.Remarks != nil {
			line.Remarks = *t.Remarks
		}
		data.Transactions = append(data.Transactions, line)
	}

	genCtx, cancel := context.WithTimeout(ctx, s.timeout)
	text, err := s.generator.Summarize(genCtx, data)
	cancel()
	if err != nil {
		// Degraded answers are not cached so a later request can retry.
		if errors.Is(err, ai.ErrDisabled) {
			return NoInsightsMessage, nil
		}
		logger.Get().Warnw("insight generation failed",
			"user_id", user.ID, "month", month, "year", year, "error", err)
		return InsightsFailedMessage, nil
	}

	summary := &models.MonthlySummary{
		UserID:        user.ID,
		Month:         month,
		Year:          year,
		AIInsights:    text,
		LastGenerated: time.Now().UTC(),
	}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "month"}, {Name: "year"}},
		DoNothing: true,
	}).Create(summary).Error
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	// Another instance may have stored first; the stored row wins.
	stored, err := s.findSummary(ctx, user.ID, month, year)
	if err != nil {
		return "", err
	}
	if stored == nil {
		return text, nil
	}
	return stored.AIInsights, nil
}

func (s *insightService) findSummary(ctx context.Context, userID string, month, year int) (*models.MonthlySummary, error) {
	var summary models.MonthlySummary
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND month = ? AND year = ?", userID, month, year).
		First(&summary).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &summary, nil
}

func (s *insightService) getUser(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &user, nil
}

// DetectSpike compares spending in now's calendar month against the month
// before. Spending is expenses outside the Savings and Investment categories.
func (s *insightService) DetectSpike(ctx context.Context, userID string, now time.Time) (*SpikeReport, error) {
	curYear, curMonth := now.Year(), int(now.Month())
	prevYear, prevMonth := curYear, curMonth-1
	if prevMonth == 0 {
		prevYear, prevMonth = curYear-1, 12
	}

	var txns []models.Transaction
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND (date LIKE ? OR date LIKE ?)", userID,
			MonthPrefix(curYear, curMonth)+"%", MonthPrefix(prevYear, prevMonth)+"%").
		Find(&txns).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	current := spendingRows(FilterMonth(txns, curMonth, curYear))
	previous := spendingRows(FilterMonth(txns, prevMonth, prevYear))

	report := &SpikeReport{
		CurrentTotal:  sumAmounts(current),
		PreviousTotal: sumAmounts(previous),
	}
	if len(previous) == 0 {
		return report, nil
	}
	threshold := report.PreviousTotal.Mul(spikeThreshold)
	if report.CurrentTotal.LessThanOrEqual(threshold) {
		return report, nil
	}

	pct := report.CurrentTotal.Sub(report.PreviousTotal).
		Div(report.PreviousTotal).
		Mul(decimal.NewFromInt(100)).
		Round(1)
	report.IncreasePct = &pct

	genCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	warning, err := s.generator.SpikeWarning(genCtx, ai.SpikeData{
		Current:     report.CurrentTotal,
		Previous:    report.PreviousTotal,
		IncreasePct: pct,
	})
	if err != nil {
		if !errors.Is(err, ai.ErrDisabled) {
			logger.Get().Warnw("spike warning generation failed", "user_id", userID, "error", err)
		}
		return report, nil
	}
	report.Warning = &warning
	return report, nil
}

// Categorize classifies a single transaction description.
func (s *insightService) Categorize(ctx context.Context, amount decimal.Decimal, remarks string) string {
	return categorize(ctx, s.generator, s.timeout, amount, remarks)
}

func spendingRows(txns []models.Transaction) []models.Transaction {
	out := txns[:0:0]
	for _, t := range txns {
		if t.Type != models.TransactionTypeExpense {
			continue
		}
		if t.Category == models.CategorySavings || t.Category == models.CategoryInvestment {
			continue
		}
		out = append(out, t)
	}
	return out
}

func sumAmounts(txns []models.Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, t := range txns {
		total = total.Add(t.Amount)
	}
	return total
}
