package models

import "github.com/shopspring/decimal"

// TransactionType represents the type of transaction
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

// Valid reports whether t is a supported transaction type.
func (t TransactionType) Valid() bool {
	return t == TransactionTypeIncome || t == TransactionTypeExpense
}

// ExpenseSource names the pool an expense is paid from.
type ExpenseSource string

const (
	SourceBudget  ExpenseSource = "budget"
	SourceSavings ExpenseSource = "savings"
)

// Valid reports whether s is a supported expense source.
func (s ExpenseSource) Valid() bool {
	return s == SourceBudget || s == SourceSavings
}

// Categories with balance or reporting side effects.
const (
	CategorySavings    = "Savings"
	CategoryInvestment = "Investment"
	CategoryOther      = "Other"
)

// Transaction is a single ledger row. Date is kept as the literal
// "YYYY-MM-DD" string the client sent; month grouping is a prefix match on it.
type Transaction struct {
	Base
	UserID   string          `gorm:"size:128;not null;index:idx_transactions_user_date,priority:1" json:"user_id"`
	Amount   decimal.Decimal `gorm:"type:numeric(20,4);not null" json:"amount"`
	Currency string          `gorm:"size:3;not null" json:"currency"`
	Type     TransactionType `gorm:"size:16;not null" json:"type"`
	Category string          `gorm:"size:50;not null" json:"category"`
	Source   *ExpenseSource  `gorm:"size:16" json:"source"`
	Remarks  *string         `json:"remarks"`
	Date     string          `gorm:"size:10;not null;index:idx_transactions_user_date,priority:2" json:"date"`
}

// EffectiveSource returns the expense source, treating an absent value as budget.
func (t *Transaction) EffectiveSource() ExpenseSource {
	if t.Source == nil {
		return SourceBudget
	}
	return *t.Source
}

// DrawsFromSavings reports whether the row is an expense paid from savings.
func (t *Transaction) DrawsFromSavings() bool {
	return t.Type == TransactionTypeExpense && t.EffectiveSource() == SourceSavings
}

// ContributesToSavings reports whether the row is income booked as savings.
func (t *Transaction) ContributesToSavings() bool {
	return t.Type == TransactionTypeIncome && t.Category == CategorySavings
}
