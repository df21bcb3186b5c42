package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"urwallet/internal/currency"
	"urwallet/internal/models"
	"urwallet/internal/pagination"
)

// UserSettings holds a partial settings update. Nil fields are left unchanged;
// Budget set to a nil inner pointer clears the budget.
type UserSettings struct {
	Currency          *string
	DarkMode          *bool
	Budget            **decimal.Decimal
	AIInsightsEnabled *bool
}

// SavingsReconciliation compares the stored savings balance with the ledger.
type SavingsReconciliation struct {
	StoredBalance decimal.Decimal `json:"stored_balance"`
	LedgerBalance decimal.Decimal `json:"ledger_balance"`
	Drift         decimal.Decimal `json:"drift"`
	Consistent    bool            `json:"consistent"`
}

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	GetOrCreateUser(id, email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	UpdateSettings(id string, settings UserSettings) (*models.User, error)
	ReconcileSavings(id string) (*SavingsReconciliation, error)
}

// CreateTransactionInput holds the fields for a new ledger row.
type CreateTransactionInput struct {
	Amount       decimal.Decimal
	Type         models.TransactionType
	Category     string
	Source       *models.ExpenseSource
	AddToSavings bool
	Remarks      *string
	Date         string
	Currency     string
}

// TransactionUpdateFields holds a partial update. A nil field is left
// unchanged. For the double pointers, a non-nil outer pointer to a nil inner
// pointer clears the column.
type TransactionUpdateFields struct {
	Amount   *decimal.Decimal
	Type     *models.TransactionType
	Category *string
	Source   **models.ExpenseSource
	Remarks  **string
	Date     *string
	Currency *string
}

// TransactionFilter holds optional filter parameters for listing transactions.
type TransactionFilter struct {
	Type      *models.TransactionType
	Category  *string
	Source    *models.ExpenseSource
	Month     *string // literal "YYYY-MM" prefix of the date column
	FromDate  *string
	ToDate    *string
	MinAmount *decimal.Decimal
	MaxAmount *decimal.Decimal
}

// TransactionServicer defines the contract for transaction-related business
// logic. Every mutation keeps the user's savings balance in step with the ledger.
type TransactionServicer interface {
	CreateTransaction(ctx context.Context, userID string, in CreateTransactionInput) (*models.Transaction, error)
	GetUserTransactions(ctx context.Context, userID string, page pagination.PageRequest, sort pagination.SortRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	GetTransactionByID(ctx context.Context, userID, transactionID string) (*models.Transaction, error)
	UpdateTransaction(ctx context.Context, userID, transactionID string, fields TransactionUpdateFields) (*models.Transaction, error)
	DeleteTransaction(ctx context.Context, userID, transactionID string) error
}

// DashboardServicer defines the contract for monthly summaries.
type DashboardServicer interface {
	GetMonthlySummary(userID string, month, year int) (*MonthlySummaryReport, error)
}

// SpikeReport compares this month's spending with last month's.
// Warning is nil when there is nothing to warn about.
type SpikeReport struct {
	Warning       *string          `json:"warning"`
	CurrentTotal  decimal.Decimal  `json:"current_total"`
	PreviousTotal decimal.Decimal  `json:"previous_total"`
	IncreasePct   *decimal.Decimal `json:"increase_pct"`
}

// InsightServicer defines the contract for AI-backed features.
type InsightServicer interface {
	GetMonthlyInsights(ctx context.Context, userID string, month, year int) (string, error)
	DetectSpike(ctx context.Context, userID string, now time.Time) (*SpikeReport, error)
	Categorize(ctx context.Context, amount decimal.Decimal, remarks string) string
}

// CurrencyServicer defines the contract for exchange-rate lookups.
type CurrencyServicer interface {
	GetRates(ctx context.Context, base string) (*currency.RateTable, error)
	Convert(ctx context.Context, amount decimal.Decimal, from, to string) (*currency.Conversion, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]any)
}
