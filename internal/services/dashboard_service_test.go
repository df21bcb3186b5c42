package services

import (
	"testing"
	"time"

	"urwallet/internal/models"
	"urwallet/internal/testutil"
)

func ledgerRow(txType models.TransactionType, amount, category, date string, source *models.ExpenseSource, created time.Time) models.Transaction {
	t := models.Transaction{
		UserID:   "u1",
		Amount:   dec(amount),
		Type:     txType,
		Category: category,
		Source:   source,
		Date:     date,
	}
	t.CreatedAt = created
	return t
}

func TestSummarizeMonth(t *testing.T) {
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	budget := dec("1000")
	user := &models.User{ID: "u1", SavingsBalance: dec("250"), Budget: &budget}

	txns := []models.Transaction{
		ledgerRow(models.TransactionTypeIncome, "3000", "Salary", "2025-03-01", nil, base),
		ledgerRow(models.TransactionTypeIncome, "200", "Savings", "2025-03-01", nil, base.Add(time.Minute)),
		ledgerRow(models.TransactionTypeExpense, "45.50", "Food", "2025-03-04", sourcePtr(models.SourceBudget), base),
		ledgerRow(models.TransactionTypeExpense, "54.50", "Food", "2025-03-09", nil, base),
		ledgerRow(models.TransactionTypeExpense, "120", "Travel", "2025-03-09", sourcePtr(models.SourceSavings), base.Add(time.Hour)),
		ledgerRow(models.TransactionTypeExpense, "300", "Investment", "2025-03-15", sourcePtr(models.SourceBudget), base),
		ledgerRow(models.TransactionTypeIncome, "50", "Investment", "2025-03-20", nil, base),
		// Other months, including ones sharing a leading substring.
		ledgerRow(models.TransactionTypeExpense, "999", "Food", "2025-02-28", nil, base),
		ledgerRow(models.TransactionTypeExpense, "999", "Food", "2025-30-01", nil, base),
		ledgerRow(models.TransactionTypeExpense, "999", "Food", "2024-03-01", nil, base),
	}

	report := SummarizeMonth(txns, 3, 2025, user)

	testutil.AssertDecimal(t, report.Income, "3250")
	testutil.AssertDecimal(t, report.Expenses, "520")
	testutil.AssertDecimal(t, report.Savings, "200")
	testutil.AssertDecimal(t, report.Investments, "350")
	testutil.AssertDecimal(t, report.ExpensesFromBudget, "400")
	testutil.AssertDecimal(t, report.ExpensesFromSavings, "120")
	testutil.AssertDecimal(t, report.SavingsBalance, "250")
	testutil.AssertDecimal(t, *report.Budget, "1000")
	testutil.AssertDecimal(t, *report.RemainingBudget, "600")

	if len(report.CategoryBreakdown) != 3 {
		t.Errorf("expected 3 expense categories, got %v", report.CategoryBreakdown)
	}
	testutil.AssertDecimal(t, report.CategoryBreakdown["Food"], "100")
	testutil.AssertDecimal(t, report.CategoryBreakdown["Travel"], "120")
	testutil.AssertDecimal(t, report.CategoryBreakdown["Investment"], "300")
	if _, ok := report.CategoryBreakdown["Salary"]; ok {
		t.Error("income categories must not appear in the breakdown")
	}

	if len(report.Transactions) != 7 {
		t.Fatalf("expected 7 March rows, got %d", len(report.Transactions))
	}
	if report.Transactions[0].Date != "2025-03-20" {
		t.Errorf("expected newest date first, got %s", report.Transactions[0].Date)
	}
	// Same date: later created_at first.
	if report.Transactions[2].Category != "Travel" || report.Transactions[3].Category != "Food" {
		t.Errorf("expected created_at tie-break on 2025-03-09, got %s then %s",
			report.Transactions[2].Category, report.Transactions[3].Category)
	}
}

func TestSummarizeMonthDoesNotMutateInput(t *testing.T) {
	user := &models.User{ID: "u1", SavingsBalance: dec("0")}
	txns := []models.Transaction{
		ledgerRow(models.TransactionTypeExpense, "1", "Food", "2025-03-01", nil, time.Time{}),
		ledgerRow(models.TransactionTypeExpense, "2", "Food", "2025-03-02", nil, time.Time{}),
	}

	_ = SummarizeMonth(txns, 3, 2025, user)

	if txns[0].Date != "2025-03-01" || txns[1].Date != "2025-03-02" {
		t.Error("input slice order must be left untouched")
	}
	if !user.SavingsBalance.IsZero() || user.Budget != nil {
		t.Error("user must not be modified")
	}
}

func TestSummarizeMonthWithoutBudget(t *testing.T) {
	report := SummarizeMonth(nil, 1, 2025, &models.User{ID: "u1"})
	if report.Budget != nil || report.RemainingBudget != nil {
		t.Error("expected no budget figures when the user has no budget")
	}
	if report.Transactions == nil || len(report.Transactions) != 0 {
		t.Error("expected an empty, non-nil transaction list")
	}
	testutil.AssertDecimal(t, report.Expenses, "0")
}

func TestFilterMonthAdjacentMonths(t *testing.T) {
	txns := []models.Transaction{
		{Date: "2025-01-15"},
		{Date: "2025-10-15"},
		{Date: "2025-11-01"},
		{Date: "2025-12-31"},
		{Date: "2025-1-05"},
	}

	tests := []struct {
		month int
		want  []string
	}{
		{1, []string{"2025-01-15"}},
		{10, []string{"2025-10-15"}},
		{11, []string{"2025-11-01"}},
		{12, []string{"2025-12-31"}},
	}

	for _, tt := range tests {
		got := FilterMonth(txns, tt.month, 2025)
		if len(got) != len(tt.want) {
			t.Errorf("month %d: expected %v, got %d rows", tt.month, tt.want, len(got))
			continue
		}
		for i := range got {
			if got[i].Date != tt.want[i] {
				t.Errorf("month %d: expected %s, got %s", tt.month, tt.want[i], got[i].Date)
			}
		}
	}
}

func TestGetMonthlySummary(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewDashboardService(db)

	user := testutil.CreateTestUserWithSavings(t, db, "40")
	testutil.SetTestUserBudget(t, db, user, "500")
	testutil.CreateTestTransaction(t, db, user.ID, models.TransactionTypeExpense, "100", "Food", "2025-03-10")
	testutil.CreateTestTransaction(t, db, user.ID, models.TransactionTypeIncome, "900", "Salary", "2025-03-01")
	testutil.CreateTestTransaction(t, db, user.ID, models.TransactionTypeExpense, "70", "Food", "2025-04-01")

	report, err := svc.GetMonthlySummary(user.ID, 3, 2025)
	testutil.AssertNoError(t, err)
	testutil.AssertDecimal(t, report.Income, "900")
	testutil.AssertDecimal(t, report.Expenses, "100")
	testutil.AssertDecimal(t, report.SavingsBalance, "40")
	testutil.AssertDecimal(t, *report.RemainingBudget, "400")
	if len(report.Transactions) != 2 {
		t.Errorf("expected 2 March rows, got %d", len(report.Transactions))
	}

	_, err = svc.GetMonthlySummary(user.ID, 13, 2025)
	testutil.AssertAppError(t, err, "INVALID_INPUT")

	_, err = svc.GetMonthlySummary("missing", 3, 2025)
	testutil.AssertAppError(t, err, "USER_NOT_FOUND")
}
