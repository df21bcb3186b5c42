package services

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"urwallet/internal/currency"
	apperrors "urwallet/internal/errors"
	"urwallet/internal/models"
)

// userService handles user-related business logic.
type userService struct {
	db *gorm.DB
}

// NewUserService creates a new UserServicer.
func NewUserService(db *gorm.DB) UserServicer {
	return &userService{db: db}
}

// GetOrCreateUser returns the user for a verified identity, creating the row
// with default settings the first time the identity is seen.
func (s *userService) GetOrCreateUser(id, email string) (*models.User, error) {
	if id == "" {
		return nil, apperrors.ErrUnauthorized
	}

	user, err := s.GetUserByID(id)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, apperrors.ErrUserNotFound) {
		return nil, err
	}

	user = &models.User{
		ID:                id,
		Email:             strings.ToLower(strings.TrimSpace(email)),
		DarkMode:          true,
		SavingsBalance:    decimal.Zero,
		AIInsightsEnabled: true,
	}
	// Two first requests can race; the loser re-reads the winner's row.
	if err := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(user).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return s.GetUserByID(id)
}

// GetUserByID retrieves a user by ID
func (s *userService) GetUserByID(id string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &user, nil
}

// UpdateSettings applies a partial settings update. Setting a currency also
// marks it as explicitly chosen.
func (s *userService) UpdateSettings(id string, settings UserSettings) (*models.User, error) {
	updates := map[string]interface{}{}

	if settings.Currency != nil {
		code, err := currency.NormalizeCode(*settings.Currency)
		if err != nil {
			return nil, apperrors.ErrInvalidCurrency
		}
		updates["currency"] = code
		updates["is_currency_set"] = true
	}
	if settings.DarkMode != nil {
		updates["dark_mode"] = *settings.DarkMode
	}
	if settings.AIInsightsEnabled != nil {
		updates["ai_insights_enabled"] = *settings.AIInsightsEnabled
	}
	if settings.Budget != nil {
		if budget := *settings.Budget; budget == nil {
			updates["budget"] = nil
		} else {
			if budget.IsNegative() {
				return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "budget cannot be negative")
			}
			if err := checkStorable("budget", *budget); err != nil {
				return nil, err
			}
			updates["budget"] = *budget
		}
	}

	if _, err := s.GetUserByID(id); err != nil {
		return nil, err
	}
	if len(updates) > 0 {
		if err := s.db.Model(&models.User{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return s.GetUserByID(id)
}

// ReconcileSavings compares the stored savings balance with a fold of the
// ledger. It only reports; the stored balance is never rewritten.
func (s *userService) ReconcileSavings(id string) (*SavingsReconciliation, error) {
	user, err := s.GetUserByID(id)
	if err != nil {
		return nil, err
	}

	var txns []models.Transaction
	if err := s.db.Where("user_id = ?", id).Find(&txns).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	ledger := SavingsBalanceFromLedger(txns)
	drift := user.SavingsBalance.Sub(ledger)
	return &SavingsReconciliation{
		StoredBalance: user.SavingsBalance,
		LedgerBalance: ledger,
		Drift:         drift,
		Consistent:    drift.IsZero(),
	}, nil
}
