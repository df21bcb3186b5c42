package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"urwallet/internal/ai"
	"urwallet/internal/currency"
	apperrors "urwallet/internal/errors"
	"urwallet/internal/models"
	"urwallet/internal/pagination"
	"urwallet/internal/validator"
)

// transactionSortColumns maps the sort query parameter to columns.
var transactionSortColumns = map[string]string{
	"date":       "date",
	"amount":     "amount",
	"created_at": "created_at",
	"category":   "category",
}

// transactionService handles ledger writes and the savings balance they imply.
type transactionService struct {
	db        *gorm.DB
	generator ai.Generator
	aiTimeout time.Duration
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(db *gorm.DB, generator ai.Generator, aiTimeout time.Duration) TransactionServicer {
	return &transactionService{
		db:        db,
		generator: generator,
		aiTimeout: aiTimeout,
	}
}

// CreateTransaction records a transaction and applies its savings effect in
// the same database transaction.
func (s *transactionService) CreateTransaction(ctx context.Context, userID string, in CreateTransactionInput) (*models.Transaction, error) {
	if err := validateAmount(in.Amount); err != nil {
		return nil, err
	}
	if !in.Type.Valid() {
		return nil, apperrors.ErrInvalidTransactionType
	}
	if !validator.IsYMDDate(in.Date) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "date must be formatted as YYYY-MM-DD")
	}
	if in.Source != nil && !in.Source.Valid() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "source must be budget or savings")
	}
	var txCurrency string
	if in.Currency != "" {
		code, err := currency.NormalizeCode(in.Currency)
		if err != nil {
			return nil, apperrors.ErrInvalidCurrency
		}
		txCurrency = code
	}

	category := strings.TrimSpace(in.Category)
	remarks := trimmedOrNil(in.Remarks)
	switch {
	case in.Type == models.TransactionTypeIncome && in.AddToSavings:
		category = models.CategorySavings
	case category == "" || category == models.CategoryOther:
		// The model is consulted outside the DB transaction.
		category = models.CategoryOther
		if remarks != nil {
			category = categorize(ctx, s.generator, s.aiTimeout, in.Amount, *remarks)
		}
	}

	transaction := &models.Transaction{
		UserID:   userID,
		Amount:   in.Amount,
		Currency: txCurrency,
		Type:     in.Type,
		Category: category,
		Remarks:  remarks,
		Date:     in.Date,
	}
	if in.Type == models.TransactionTypeExpense {
		src := models.SourceBudget
		if in.Source != nil {
			src = *in.Source
		}
		transaction.Source = &src
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := lockUser(tx, userID)
		if err != nil {
			return err
		}
		if transaction.Currency == "" {
			transaction.Currency = user.PreferredCurrency()
		}

		balance, err := createEffect(user.SavingsBalance, transaction, in.AddToSavings)
		if err != nil {
			return err
		}

		if err := tx.Create(transaction).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return storeSavingsBalance(tx, user, balance)
	})
	if err != nil {
		return nil, err
	}
	return transaction, nil
}

// GetUserTransactions retrieves a paginated, filtered list of the user's transactions.
func (s *transactionService) GetUserTransactions(ctx context.Context, userID string, page pagination.PageRequest, sort pagination.SortRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	page.Defaults()

	base := s.db.WithContext(ctx).Model(&models.Transaction{}).Where("user_id = ?", userID)
	base = applyTransactionFilters(base, filter)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transactions []models.Transaction
	if err := base.Scopes(
		pagination.OrderBy(sort, transactionSortColumns, "date", "created_at"),
		pagination.Paginate(page),
	).Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(transactions, page.Page, page.PageSize, totalItems)
	return &result, nil
}

func applyTransactionFilters(q *gorm.DB, f TransactionFilter) *gorm.DB {
	if f.Type != nil {
		q = q.Where("type = ?", *f.Type)
	}
	if f.Category != nil {
		q = q.Where("category = ?", *f.Category)
	}
	if f.Source != nil {
		if *f.Source == models.SourceBudget {
			q = q.Where("type = ? AND (source = ? OR source IS NULL)", models.TransactionTypeExpense, models.SourceBudget)
		} else {
			q = q.Where("source = ?", *f.Source)
		}
	}
	if f.Month != nil {
		q = q.Where("date LIKE ?", *f.Month+"%")
	}
	if f.FromDate != nil {
		q = q.Where("date >= ?", *f.FromDate)
	}
	if f.ToDate != nil {
		q = q.Where("date <= ?", *f.ToDate)
	}
	if f.MinAmount != nil {
		q = q.Where("amount >= ?", *f.MinAmount)
	}
	if f.MaxAmount != nil {
		q = q.Where("amount <= ?", *f.MaxAmount)
	}
	return q
}

// GetTransactionByID retrieves a transaction by ID for a specific user
func (s *transactionService) GetTransactionByID(ctx context.Context, userID, transactionID string) (*models.Transaction, error) {
	return findTransaction(s.db.WithContext(ctx), userID, transactionID)
}

func findTransaction(db *gorm.DB, userID, transactionID string) (*models.Transaction, error) {
	var transaction models.Transaction
	if err := db.Where("id = ? AND user_id = ?", transactionID, userID).First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &transaction, nil
}

// UpdateTransaction applies a partial update. The old savings debit is
// refunded, the fields applied, then the new savings debit taken; if the new
// debit does not fit, nothing is written.
func (s *transactionService) UpdateTransaction(ctx context.Context, userID, transactionID string, fields TransactionUpdateFields) (*models.Transaction, error) {
	if err := validateUpdateFields(&fields); err != nil {
		return nil, err
	}

	var result *models.Transaction
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := lockUser(tx, userID)
		if err != nil {
			return err
		}
		transaction, err := findTransaction(tx, userID, transactionID)
		if err != nil {
			return err
		}

		balance := undoUpdateEffect(user.SavingsBalance, transaction)
		applyUpdateFields(transaction, fields)
		balance, err = applyUpdateEffect(balance, transaction)
		if err != nil {
			return err
		}

		if err := tx.Save(transaction).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := storeSavingsBalance(tx, user, balance); err != nil {
			return err
		}
		result = transaction
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func validateUpdateFields(f *TransactionUpdateFields) error {
	if f.Amount != nil {
		if err := validateAmount(*f.Amount); err != nil {
			return err
		}
	}
	if f.Type != nil && !f.Type.Valid() {
		return apperrors.ErrInvalidTransactionType
	}
	if f.Category != nil {
		trimmed := strings.TrimSpace(*f.Category)
		if trimmed == "" {
			return apperrors.WithMessage(apperrors.ErrInvalidInput, "category cannot be empty")
		}
		f.Category = &trimmed
	}
	if f.Source != nil && *f.Source != nil && !(*f.Source).Valid() {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "source must be budget or savings")
	}
	if f.Date != nil && !validator.IsYMDDate(*f.Date) {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "date must be formatted as YYYY-MM-DD")
	}
	if f.Currency != nil {
		code, err := currency.NormalizeCode(*f.Currency)
		if err != nil {
			return apperrors.ErrInvalidCurrency
		}
		f.Currency = &code
	}
	return nil
}

func applyUpdateFields(t *models.Transaction, f TransactionUpdateFields) {
	if f.Amount != nil {
		t.Amount = *f.Amount
	}
	if f.Type != nil {
		t.Type = *f.Type
	}
	if f.Category != nil {
		t.Category = *f.Category
	}
	if f.Source != nil {
		t.Source = *f.Source
	}
	if f.Remarks != nil {
		t.Remarks = trimmedOrNil(*f.Remarks)
	}
	if f.Date != nil {
		t.Date = *f.Date
	}
	if f.Currency != nil {
		t.Currency = *f.Currency
	}
	if t.Type == models.TransactionTypeIncome {
		t.Source = nil
	}
}

// DeleteTransaction removes a transaction and reverses its savings effect.
func (s *transactionService) DeleteTransaction(ctx context.Context, userID, transactionID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := lockUser(tx, userID)
		if err != nil {
			return err
		}
		transaction, err := findTransaction(tx, userID, transactionID)
		if err != nil {
			return err
		}

		balance := deleteEffect(user.SavingsBalance, transaction)

		if err := tx.Delete(transaction).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return storeSavingsBalance(tx, user, balance)
	})
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
