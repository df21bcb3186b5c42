package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"urwallet/internal/services"
)

// UserHandler handles settings and savings reports.
type UserHandler struct {
	userService  services.UserServicer
	auditService services.AuditServicer
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService services.UserServicer, auditService services.AuditServicer) *UserHandler {
	return &UserHandler{userService: userService, auditService: auditService}
}

// UpdateSettingsRequest is a partial settings update. Omitted keys are left
// unchanged; a null budget clears it.
type UpdateSettingsRequest struct {
	Currency          Nullable[string]          `json:"currency" swaggertype:"string" example:"MYR"`
	DarkMode          Nullable[bool]            `json:"dark_mode" swaggertype:"boolean"`
	Budget            Nullable[decimal.Decimal] `json:"budget" swaggertype:"string" example:"1500.00"`
	AIInsightsEnabled Nullable[bool]            `json:"ai_insights_enabled" swaggertype:"boolean"`
}

func (r UpdateSettingsRequest) toSettings() (services.UserSettings, error) {
	var s services.UserSettings
	var err error
	if s.Currency, err = required("currency", r.Currency); err != nil {
		return s, err
	}
	if s.DarkMode, err = required("dark_mode", r.DarkMode); err != nil {
		return s, err
	}
	if s.AIInsightsEnabled, err = required("ai_insights_enabled", r.AIInsightsEnabled); err != nil {
		return s, err
	}
	s.Budget = clearable(r.Budget)
	return s, nil
}

// UpdateSettings handles partial settings updates
// @Summary     Update settings
// @Description Update currency, theme, monthly budget or AI insights preference. Send budget null to clear it.
// @Tags        user
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body UpdateSettingsRequest true "Settings to change"
// @Success     200 {object} UserResponse "Updated user"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /user/settings [put]
func (h *UserHandler) UpdateSettings(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	settings, err := req.toSettings()
	if err != nil {
		respondWithError(c, err)
		return
	}

	user, err := h.userService.UpdateSettings(userID, settings)
	if err != nil {
		respondWithError(c, err)
		return
	}

	changes := map[string]interface{}{}
	if settings.Currency != nil {
		changes["currency"] = user.PreferredCurrency()
	}
	if settings.Budget != nil {
		changes["budget"] = user.Budget
	}
	if settings.DarkMode != nil {
		changes["dark_mode"] = user.DarkMode
	}
	if settings.AIInsightsEnabled != nil {
		changes["ai_insights_enabled"] = user.AIInsightsEnabled
	}
	h.auditService.Log(userID, "UPDATE_SETTINGS", "user", userID, c.ClientIP(), changes)

	c.JSON(http.StatusOK, gin.H{"user": newUserResponse(user)})
}

// ReconcileSavings reports drift between the stored savings balance and the ledger
// @Summary     Check savings balance
// @Description Compare the stored savings balance with one recomputed from the ledger. Read-only.
// @Tags        user
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.SavingsReconciliation "Reconciliation report"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /user/savings/reconcile [get]
func (h *UserHandler) ReconcileSavings(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	report, err := h.userService.ReconcileSavings(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reconciliation": report})
}
