// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"urwallet/internal/models"
)

var (
	currencyCodeRegex = regexp.MustCompile(`^[A-Z]{3}$`)
	ymdDateRegex      = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("currency_code", validateCurrencyCode)
		_ = v.RegisterValidation("transaction_type", validateTransactionType)
		_ = v.RegisterValidation("expense_source", validateExpenseSource)
		_ = v.RegisterValidation("ymd_date", validateYMDDate)
	}
}

// validateCurrencyCode accepts any casing; services upper-case before storing.
func validateCurrencyCode(fl validator.FieldLevel) bool {
	return currencyCodeRegex.MatchString(strings.ToUpper(strings.TrimSpace(fl.Field().String())))
}

func validateTransactionType(fl validator.FieldLevel) bool {
	return models.TransactionType(fl.Field().String()).Valid()
}

func validateExpenseSource(fl validator.FieldLevel) bool {
	return models.ExpenseSource(fl.Field().String()).Valid()
}

func validateYMDDate(fl validator.FieldLevel) bool {
	return IsYMDDate(fl.Field().String())
}

// IsYMDDate reports whether s is a real calendar date written as YYYY-MM-DD.
func IsYMDDate(s string) bool {
	if !ymdDateRegex.MatchString(s) {
		return false
	}
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}
