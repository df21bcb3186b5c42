package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"urwallet/internal/services"
)

// DashboardHandler serves monthly summaries.
type DashboardHandler struct {
	dashboardService services.DashboardServicer
	now              func() time.Time
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(dashboardService services.DashboardServicer) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService, now: time.Now}
}

// MonthQuery selects a calendar month. Missing values default to the current month.
type MonthQuery struct {
	Month int `form:"month" binding:"omitempty,min=1,max=12"`
	Year  int `form:"year" binding:"omitempty,min=1,max=9999"`
}

func (q *MonthQuery) defaults(now time.Time) {
	if q.Month == 0 {
		q.Month = int(now.Month())
	}
	if q.Year == 0 {
		q.Year = now.Year()
	}
}

// GetSummary handles the monthly dashboard summary
// @Summary     Monthly summary
// @Description Totals, category breakdown, savings balance and the month's transactions
// @Tags        dashboard
// @Produce     json
// @Security    BearerAuth
// @Param       month query int false "Month 1-12 (default current)"
// @Param       year  query int false "Year (default current)"
// @Success     200 {object} services.MonthlySummaryReport "Monthly summary"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /dashboard/summary [get]
func (h *DashboardHandler) GetSummary(c *gin.Context) {
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

	report, err := h.dashboardService.GetMonthlySummary(userID, q.Month, q.Year)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
