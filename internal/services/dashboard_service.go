package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "urwallet/internal/errors"
	"urwallet/internal/models"
)

// MonthlySummaryReport is the dashboard view of one calendar month.
type MonthlySummaryReport struct {
	Month               int                        `json:"month"`
	Year                int                        `json:"year"`
	Income              decimal.Decimal            `json:"income"`
	Expenses            decimal.Decimal            `json:"expenses"`
	Savings             decimal.Decimal            `json:"savings"`
	Investments         decimal.Decimal            `json:"investments"`
	SavingsBalance      decimal.Decimal            `json:"savings_balance"`
	ExpensesFromBudget  decimal.Decimal            `json:"expenses_from_budget"`
	ExpensesFromSavings decimal.Decimal            `json:"expenses_from_savings"`
	CategoryBreakdown   map[string]decimal.Decimal `json:"category_breakdown"`
	Budget              *decimal.Decimal           `json:"budget"`
	RemainingBudget     *decimal.Decimal           `json:"remaining_budget"`
	Transactions        []models.Transaction       `json:"transactions"`
}

// MonthPrefix returns the "YYYY-MM" prefix that dates in the month start with.
func MonthPrefix(year, month int) string {
	return fmt.Sprintf("%d-%02d", year, month)
}

// FilterMonth keeps the rows whose date starts with the month's prefix.
// The match is literal: no date parsing is done.
func FilterMonth(txns []models.Transaction, month, year int) []models.Transaction {
	prefix := MonthPrefix(year, month)
	out := make([]models.Transaction, 0, len(txns))
	for _, t := range txns {
		if strings.HasPrefix(t.Date, prefix) {
			out = append(out, t)
		}
	}
	return out
}

// SummarizeMonth aggregates a user's ledger for one month. It does not
// modify txns or user.
func SummarizeMonth(txns []models.Transaction, month, year int, user *models.User) *MonthlySummaryReport {
	monthTxns := FilterMonth(txns, month, year)

	report := &MonthlySummaryReport{
		Month:               month,
		Year:                year,
		Income:              decimal.Zero,
		Expenses:            decimal.Zero,
		Savings:             decimal.Zero,
		Investments:         decimal.Zero,
		ExpensesFromBudget:  decimal.Zero,
		ExpensesFromSavings: decimal.Zero,
		CategoryBreakdown:   make(map[string]decimal.Decimal),
		SavingsBalance:      user.SavingsBalance,
		Budget:              user.Budget,
		Transactions:        monthTxns,
	}

	for i := range monthTxns {
		t := &monthTxns[i]
		switch t.Type {
		case models.TransactionTypeIncome:
			report.Income = report.Income.Add(t.Amount)
			if t.Category == models.CategorySavings {
				report.Savings = report.Savings.Add(t.Amount)
			}
		case models.TransactionTypeExpense:
			report.Expenses = report.Expenses.Add(t.Amount)
			if t.EffectiveSource() == models.SourceSavings {
				report.ExpensesFromSavings = report.ExpensesFromSavings.Add(t.Amount)
			} else {
				report.ExpensesFromBudget = report.ExpensesFromBudget.Add(t.Amount)
			}
			report.CategoryBreakdown[t.Category] = report.CategoryBreakdown[t.Category].Add(t.Amount)
		}
		if t.Category == models.CategoryInvestment {
			report.Investments = report.Investments.Add(t.Amount)
		}
	}

	if user.Budget != nil {
		remaining := user.Budget.Sub(report.ExpensesFromBudget)
		report.RemainingBudget = &remaining
	}

	sort.SliceStable(monthTxns, func(i, j int) bool {
		if monthTxns[i].Date != monthTxns[j].Date {
			return monthTxns[i].Date > monthTxns[j].Date
		}
		return monthTxns[i].CreatedAt.After(monthTxns[j].CreatedAt)
	})

	return report
}

// dashboardService reads the ledger for the dashboard.
type dashboardService struct {
	db *gorm.DB
}

// NewDashboardService creates a new DashboardServicer.
func NewDashboardService(db *gorm.DB) DashboardServicer {
	return &dashboardService{db: db}
}

// GetMonthlySummary loads the user and their month's transactions and summarizes them.
func (s *dashboardService) GetMonthlySummary(userID string, month, year int) (*MonthlySummaryReport, error) {
	if month < 1 || month > 12 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "month must be between 1 and 12")
	}

	var user models.User
	if err := s.db.Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	txns, err := monthTransactions(s.db, userID, month, year)
	if err != nil {
		return nil, err
	}
	return SummarizeMonth(txns, month, year, &user), nil
}

// monthTransactions narrows the read with the same literal prefix that
// FilterMonth applies.
func monthTransactions(db *gorm.DB, userID string, month, year int) ([]models.Transaction, error) {
	var txns []models.Transaction
	if err := db.Where("user_id = ? AND date LIKE ?", userID, MonthPrefix(year, month)+"%").
		Find(&txns).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return txns, nil
}
