package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"urwallet/internal/models"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with default settings and a zero savings balance.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	return CreateTestUserWithSavings(t, db, "0")
}

// CreateTestUserWithSavings creates a user whose stored savings balance is
// set directly, without any backing ledger rows.
func CreateTestUserWithSavings(t *testing.T, db *gorm.DB, savings string) *models.User {
	t.Helper()

	n := nextID()
	user := &models.User{
		ID:                fmt.Sprintf("test-user-%d", n),
		Email:             fmt.Sprintf("user%d@test.com", n),
		DarkMode:          true,
		SavingsBalance:    decimal.RequireFromString(savings),
		AIInsightsEnabled: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// SetTestUserBudget sets the user's monthly budget.
func SetTestUserBudget(t *testing.T, db *gorm.DB, user *models.User, budget string) {
	t.Helper()

	b := decimal.RequireFromString(budget)
	if err := db.Model(user).Update("budget", b).Error; err != nil {
		t.Fatalf("failed to set test user budget: %v", err)
	}
	user.Budget = &b
}

// CreateTestTransaction inserts a ledger row directly, bypassing the
// reconciler, so the stored savings balance is left untouched.
func CreateTestTransaction(t *testing.T, db *gorm.DB, userID string, txType models.TransactionType, amount, category, date string) *models.Transaction {
	t.Helper()

	tx := &models.Transaction{
		UserID:   userID,
		Amount:   decimal.RequireFromString(amount),
		Currency: models.DefaultCurrency,
		Type:     txType,
		Category: category,
		Date:     date,
	}
	if txType == models.TransactionTypeExpense {
		src := models.SourceBudget
		tx.Source = &src
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return tx
}

// CreateTestMonthlySummary seeds a cached insight row.
func CreateTestMonthlySummary(t *testing.T, db *gorm.DB, userID string, month, year int, text string) *models.MonthlySummary {
	t.Helper()

	summary := &models.MonthlySummary{
		UserID:        userID,
		Month:         month,
		Year:          year,
		AIInsights:    text,
		LastGenerated: time.Now().UTC(),
	}
	if err := db.Create(summary).Error; err != nil {
		t.Fatalf("failed to create test monthly summary: %v", err)
	}
	return summary
}
