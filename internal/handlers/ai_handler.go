package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"urwallet/internal/services"
)

// AIHandler serves the AI-backed endpoints.
type AIHandler struct {
	insightService services.InsightServicer
	now            func() time.Time
}

// NewAIHandler creates a new AIHandler.
func NewAIHandler(insightService services.InsightServicer) *AIHandler {
	return &AIHandler{insightService: insightService, now: time.Now}
}

// CategorizeRequest is the payload for the classifier.
type CategorizeRequest struct {
	Amount  decimal.Decimal `json:"amount" swaggertype:"string" example:"42.00"`
	Remarks string          `json:"remarks" binding:"required,max=500" example:"grab to airport"`
}

// InsightsResponse is a month's narrative.
type InsightsResponse struct {
	Month    int    `json:"month"`
	Year     int    `json:"year"`
	Insights string `json:"insights"`
}

// GetInsights returns the month's AI narrative, generating it on first request
// @Summary     Monthly AI insights
// @Description Narrative summary of the month's spending. Generated once per month and cached.
// @Tags        ai
// @Produce     json
// @Security    BearerAuth
// @Param       month query int false "Month 1-12 (default current)"
// @Param       year  query int false "Year (default current)"
// @Success     200 {object} InsightsResponse "Insights"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     429 {object} ErrorResponse "Rate limited"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /ai/insights [get]
func (h *AIHandler) GetInsights(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var q MonthQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	q.defaults(h.now().UTC())

	text, err := h.insightService.GetMonthlyInsights(c.Request.Context(), userID, q.Month, q.Year)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, InsightsResponse{Month: q.Month, Year: q.Year, Insights: text})
}

// Categorize suggests a category for a transaction description
// @Summary     Suggest a category
// @Description Classify a description into Food, Rent, Travel, Bills, Shopping, Savings, Investment or Other
// @Tags        ai
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CategorizeRequest true "Transaction description"
// @Success     200 {object} map[string]string "Suggested category"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     429 {object} ErrorResponse "Rate limited"
// @Router      /ai/categorize [post]
func (h *AIHandler) Categorize(c *gin.Context) {
	if _, err := getUserID(c); err != nil {
		respondWithError(c, err)
		return
	}

	var req CategorizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	category := h.insightService.Categorize(c.Request.Context(), req.Amount, req.Remarks)
	c.JSON(http.StatusOK, gin.H{"category": category})
}

// DetectSpike compares this month's spending with last month's
// @Summary     Spending spike check
// @Description Warns when spending this month exceeds last month's by more than 20 percent. Savings and investments are not spending.
// @Tags        ai
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.SpikeReport "Spike report"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     429 {object} ErrorResponse "Rate limited"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /ai/spike-detection [get]
func (h *AIHandler) DetectSpike(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	report, err := h.insightService.DetectSpike(c.Request.Context(), userID, h.now().UTC())
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
