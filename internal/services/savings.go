package services

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "urwallet/internal/errors"
	"urwallet/internal/models"
)

// Money columns are numeric(20,4): four fractional digits and sixteen
// integer digits.
const amountScale = 4

var amountLimit = decimal.New(1, 16)

// checkStorable rejects values a money column would round or overflow.
func checkStorable(field string, v decimal.Decimal) error {
	if !v.Equal(v.Round(amountScale)) {
		return apperrors.WithMessage(apperrors.ErrInvalidInput,
			fmt.Sprintf("%s must have at most %d decimal places", field, amountScale))
	}
	if v.Abs().GreaterThanOrEqual(amountLimit) {
		return apperrors.WithMessage(apperrors.ErrInvalidInput,
			fmt.Sprintf("%s must be less than %s", field, amountLimit.String()))
	}
	return nil
}

// validateAmount checks a transaction amount is positive and storable.
func validateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}
	return checkStorable("amount", amount)
}

// SavingsBalanceFromLedger folds a user's ledger into the savings balance it
// implies: income booked as Savings adds, expenses paid from savings subtract.
func SavingsBalanceFromLedger(txns []models.Transaction) decimal.Decimal {
	balance := decimal.Zero
	for i := range txns {
		t := &txns[i]
		switch {
		case t.ContributesToSavings():
			balance = balance.Add(t.Amount)
		case t.DrawsFromSavings():
			balance = balance.Sub(t.Amount)
		}
	}
	return balance
}

// debitSavings subtracts amount from balance, refusing to go below zero.
func debitSavings(balance, amount decimal.Decimal) (decimal.Decimal, error) {
	if balance.LessThan(amount) {
		return balance, insufficientSavings(balance)
	}
	return balance.Sub(amount), nil
}

func insufficientSavings(available decimal.Decimal) *apperrors.AppError {
	return apperrors.WithMessage(apperrors.ErrInsufficientSavings,
		"Insufficient savings balance (available: "+available.StringFixed(2)+")")
}

// createEffect returns the balance after recording t.
func createEffect(balance decimal.Decimal, t *models.Transaction, addToSavings bool) (decimal.Decimal, error) {
	switch {
	case t.DrawsFromSavings():
		return debitSavings(balance, t.Amount)
	case t.Type == models.TransactionTypeIncome && addToSavings:
		return balance.Add(t.Amount), nil
	}
	return balance, nil
}

// undoUpdateEffect returns the balance with old's savings debit refunded.
// Income contributions are not reversed on update.
func undoUpdateEffect(balance decimal.Decimal, old *models.Transaction) decimal.Decimal {
	if old.DrawsFromSavings() {
		return balance.Add(old.Amount)
	}
	return balance
}

// applyUpdateEffect debits the updated row's savings draw, if any.
func applyUpdateEffect(balance decimal.Decimal, updated *models.Transaction) (decimal.Decimal, error) {
	if updated.DrawsFromSavings() {
		return debitSavings(balance, updated.Amount)
	}
	return balance, nil
}

// deleteEffect reverses t. The income branch keys on category alone and has
// no floor, so the balance can go negative.
func deleteEffect(balance decimal.Decimal, t *models.Transaction) decimal.Decimal {
	switch {
	case t.DrawsFromSavings():
		return balance.Add(t.Amount)
	case t.ContributesToSavings():
		return balance.Sub(t.Amount)
	}
	return balance
}

// lockUser reads the user row with SELECT ... FOR UPDATE so concurrent
// mutations for the same user serialize. SQLite ignores the clause.
func lockUser(tx *gorm.DB, userID string) (*models.User, error) {
	var user models.User
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", userID).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &user, nil
}

// storeSavingsBalance writes balance when it differs from the user's current value.
func storeSavingsBalance(tx *gorm.DB, user *models.User, balance decimal.Decimal) error {
	if balance.Equal(user.SavingsBalance) {
		return nil
	}
	if err := checkStorable("savings balance", balance); err != nil {
		return err
	}
	if err := tx.Model(&models.User{}).
		Where("id = ?", user.ID).
		Update("savings_balance", balance).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	user.SavingsBalance = balance
	return nil
}
