package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "urwallet/internal/errors"
	"urwallet/internal/services"
)

// CurrencyHandler serves exchange rates.
type CurrencyHandler struct {
	currencyService services.CurrencyServicer
}

// NewCurrencyHandler creates a new CurrencyHandler.
func NewCurrencyHandler(currencyService services.CurrencyServicer) *CurrencyHandler {
	return &CurrencyHandler{currencyService: currencyService}
}

// RatesResponse is a rate table for one base currency.
type RatesResponse struct {
	Base      string                     `json:"base" example:"USD"`
	Rates     map[string]decimal.Decimal `json:"rates" swaggertype:"object,string"`
	FetchedAt time.Time                  `json:"fetched_at"`
}

// ConvertQuery holds the conversion parameters.
type ConvertQuery struct {
	Amount string `form:"amount" binding:"required,numeric"`
	From   string `form:"from" binding:"required"`
	To     string `form:"to" binding:"required"`
}

// GetRates returns the rate table for a base currency
// @Summary     Exchange rates
// @Description Rates from the given base currency to every supported currency
// @Tags        currency
// @Produce     json
// @Param       currency path string true "Base currency (ISO 4217)"
// @Success     200 {object} RatesResponse "Rate table"
// @Failure     400 {object} ErrorResponse "Invalid currency code"
// @Failure     404 {object} ErrorResponse "Unsupported currency"
// @Failure     503 {object} ErrorResponse "Rates provider unavailable"
// @Router      /currency/rates/{currency} [get]
func (h *CurrencyHandler) GetRates(c *gin.Context) {
	table, err := h.currencyService.GetRates(c.Request.Context(), c.Param("currency"))
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, RatesResponse{Base: table.Base, Rates: table.Rates, FetchedAt: table.FetchedAt})
}

// Convert converts an amount between currencies
// @Summary     Convert currency
// @Description Convert an amount using the latest rates. The result is rounded to 2 decimal places.
// @Tags        currency
// @Produce     json
// @Param       amount query string true "Amount (greater than zero)"
// @Param       from   query string true "Source currency"
// @Param       to     query string true "Target currency"
// @Success     200 {object} currency.Conversion "Conversion"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Unsupported currency"
// @Failure     503 {object} ErrorResponse "Rates provider unavailable"
// @Router      /currency/convert [get]
func (h *CurrencyHandler) Convert(c *gin.Context) {
	var q ConvertQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	amount, err := decimal.NewFromString(q.Amount)
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid amount"))
		return
	}

	conv, err := h.currencyService.Convert(c.Request.Context(), amount, q.From, q.To)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, conv)
}
