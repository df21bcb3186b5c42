package handlers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"urwallet/internal/currency"
	"urwallet/internal/logger"
	"urwallet/internal/models"
	"urwallet/internal/pagination"
	"urwallet/internal/services"
	"urwallet/internal/validator"
)

// --- mock services ---

type mockUserService struct {
	getOrCreateUserFn  func(id, email string) (*models.User, error)
	getUserByIDFn      func(id string) (*models.User, error)
	updateSettingsFn   func(id string, settings services.UserSettings) (*models.User, error)
	reconcileSavingsFn func(id string) (*services.SavingsReconciliation, error)
}

func (m *mockUserService) GetOrCreateUser(id, email string) (*models.User, error) {
	if m.getOrCreateUserFn != nil {
		return m.getOrCreateUserFn(id, email)
	}
	return &models.User{ID: id, Email: email}, nil
}

func (m *mockUserService) GetUserByID(id string) (*models.User, error) {
	if m.getUserByIDFn != nil {
		return m.getUserByIDFn(id)
	}
	return &models.User{ID: id}, nil
}

func (m *mockUserService) UpdateSettings(id string, settings services.UserSettings) (*models.User, error) {
	if m.updateSettingsFn != nil {
		return m.updateSettingsFn(id, settings)
	}
	return &models.User{ID: id}, nil
}

func (m *mockUserService) ReconcileSavings(id string) (*services.SavingsReconciliation, error) {
	if m.reconcileSavingsFn != nil {
		return m.reconcileSavingsFn(id)
	}
	return &services.SavingsReconciliation{Consistent: true}, nil
}

var _ services.UserServicer = (*mockUserService)(nil)

type auditEntry struct {
	userID, action, resourceType, resourceID string
	changes                                  map[string]any
}

type mockAuditService struct {
	mu      sync.Mutex
	entries []auditEntry
}

func (m *mockAuditService) Log(userID, action, resourceType, resourceID, _ string, changes map[string]any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, auditEntry{userID, action, resourceType, resourceID, changes})
}

var _ services.AuditServicer = (*mockAuditService)(nil)

type mockTransactionService struct {
	createTransactionFn   func(ctx context.Context, userID string, in services.CreateTransactionInput) (*models.Transaction, error)
	getUserTransactionsFn func(ctx context.Context, userID string, page pagination.PageRequest, sort pagination.SortRequest, filter services.TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	getTransactionByIDFn  func(ctx context.Context, userID, transactionID string) (*models.Transaction, error)
	updateTransactionFn   func(ctx context.Context, userID, transactionID string, fields services.TransactionUpdateFields) (*models.Transaction, error)
	deleteTransactionFn   func(ctx context.Context, userID, transactionID string) error
}

func (m *mockTransactionService) CreateTransaction(ctx context.Context, userID string, in services.CreateTransactionInput) (*models.Transaction, error) {
	if m.createTransactionFn != nil {
		return m.createTransactionFn(ctx, userID, in)
	}
	return &models.Transaction{}, nil
}

func (m *mockTransactionService) GetUserTransactions(ctx context.Context, userID string, page pagination.PageRequest, sort pagination.SortRequest, filter services.TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	if m.getUserTransactionsFn != nil {
		return m.getUserTransactionsFn(ctx, userID, page, sort, filter)
	}
	resp := pagination.NewPageResponse([]models.Transaction{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockTransactionService) GetTransactionByID(ctx context.Context, userID, transactionID string) (*models.Transaction, error) {
	if m.getTransactionByIDFn != nil {
		return m.getTransactionByIDFn(ctx, userID, transactionID)
	}
	return &models.Transaction{}, nil
}

func (m *mockTransactionService) UpdateTransaction(ctx context.Context, userID, transactionID string, fields services.TransactionUpdateFields) (*models.Transaction, error) {
	if m.updateTransactionFn != nil {
		return m.updateTransactionFn(ctx, userID, transactionID, fields)
	}
	return &models.Transaction{}, nil
}

func (m *mockTransactionService) DeleteTransaction(ctx context.Context, userID, transactionID string) error {
	if m.deleteTransactionFn != nil {
		return m.deleteTransactionFn(ctx, userID, transactionID)
	}
	return nil
}

var _ services.TransactionServicer = (*mockTransactionService)(nil)

type mockDashboardService struct {
	getMonthlySummaryFn func(userID string, month, year int) (*services.MonthlySummaryReport, error)
}

func (m *mockDashboardService) GetMonthlySummary(userID string, month, year int) (*services.MonthlySummaryReport, error) {
	if m.getMonthlySummaryFn != nil {
		return m.getMonthlySummaryFn(userID, month, year)
	}
	return &services.MonthlySummaryReport{Month: month, Year: year}, nil
}

var _ services.DashboardServicer = (*mockDashboardService)(nil)

type mockInsightService struct {
	getMonthlyInsightsFn func(ctx context.Context, userID string, month, year int) (string, error)
	detectSpikeFn        func(ctx context.Context, userID string, now time.Time) (*services.SpikeReport, error)
	categorizeFn         func(ctx context.Context, amount decimal.Decimal, remarks string) string
}

func (m *mockInsightService) GetMonthlyInsights(ctx context.Context, userID string, month, year int) (string, error) {
	if m.getMonthlyInsightsFn != nil {
		return m.getMonthlyInsightsFn(ctx, userID, month, year)
	}
	return "", nil
}

func (m *mockInsightService) DetectSpike(ctx context.Context, userID string, now time.Time) (*services.SpikeReport, error) {
	if m.detectSpikeFn != nil {
		return m.detectSpikeFn(ctx, userID, now)
	}
	return &services.SpikeReport{}, nil
}

func (m *mockInsightService) Categorize(ctx context.Context, amount decimal.Decimal, remarks string) string {
	if m.categorizeFn != nil {
		return m.categorizeFn(ctx, amount, remarks)
	}
	return models.CategoryOther
}

var _ services.InsightServicer = (*mockInsightService)(nil)

type mockCurrencyService struct {
	getRatesFn func(ctx context.Context, base string) (*currency.RateTable, error)
	convertFn  func(ctx context.Context, amount decimal.Decimal, from, to string) (*currency.Conversion, error)
}

func (m *mockCurrencyService) GetRates(ctx context.Context, base string) (*currency.RateTable, error) {
	if m.getRatesFn != nil {
		return m.getRatesFn(ctx, base)
	}
	return &currency.RateTable{Base: base}, nil
}

func (m *mockCurrencyService) Convert(ctx context.Context, amount decimal.Decimal, from, to string) (*currency.Conversion, error) {
	if m.convertFn != nil {
		return m.convertFn(ctx, amount, from, to)
	}
	return &currency.Conversion{}, nil
}

var _ services.CurrencyServicer = (*mockCurrencyService)(nil)

// --- test helpers ---

const testUserID = "user-1"

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

func injectUserID(uid string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", uid)
		c.Next()
	}
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

func assertErrorCode(t *testing.T, result map[string]interface{}, code string) {
	t.Helper()
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object in response, got: %v", result)
	}
	if errObj["code"] != code {
		t.Errorf("expected error code %q, got %q", code, errObj["code"])
	}
}
