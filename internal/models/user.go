package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultCurrency is used when neither the transaction nor the user names one.
const DefaultCurrency = "USD"

// User is keyed by the identity provider's subject, not a generated id.
// SavingsBalance is a denormalized running value maintained by the
// transaction service; it must match the ledger fold in SavingsBalanceFromLedger.
type User struct {
	ID                string           `gorm:"primaryKey;size:128" json:"id"`
	Email             string           `gorm:"index" json:"email"`
	Currency          *string          `gorm:"size:3" json:"currency"`
	IsCurrencySet     bool             `gorm:"not null" json:"is_currency_set"`
	DarkMode          bool             `gorm:"not null" json:"dark_mode"`
	Budget            *decimal.Decimal `gorm:"type:numeric(20,4)" json:"budget"`
	SavingsBalance    decimal.Decimal  `gorm:"type:numeric(20,4);not null" json:"savings_balance"`
	AIInsightsEnabled bool             `gorm:"not null" json:"ai_insights_enabled"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

// PreferredCurrency returns the user's currency or DefaultCurrency.
func (u *User) PreferredCurrency() string {
	if u.Currency != nil && *u.Currency != "" {
		return *u.Currency
	}
	return DefaultCurrency
}
