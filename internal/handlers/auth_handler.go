package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"urwallet/internal/models"
	"urwallet/internal/services"
)

// AuthHandler serves the authenticated caller's own profile. Sign-in itself
// happens at the identity provider.
type AuthHandler struct {
	userService services.UserServicer
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(userService services.UserServicer) *AuthHandler {
	return &AuthHandler{userService: userService}
}

// UserResponse represents a user in the response.
type UserResponse struct {
	ID                string           `json:"id"`
	Email             string           `json:"email"`
	Currency          string           `json:"currency" example:"USD"`
	IsCurrencySet     bool             `json:"is_currency_set"`
	DarkMode          bool             `json:"dark_mode"`
	Budget            *decimal.Decimal `json:"budget" swaggertype:"string" example:"1500.00"`
	SavingsBalance    decimal.Decimal  `json:"savings_balance" swaggertype:"string" example:"250.00"`
	AIInsightsEnabled bool             `json:"ai_insights_enabled"`
	CreatedAt         time.Time        `json:"created_at"`
}

func newUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:                u.ID,
		Email:             u.Email,
		Currency:          u.PreferredCurrency(),
		IsCurrencySet:     u.IsCurrencySet,
		DarkMode:          u.DarkMode,
		Budget:            u.Budget,
		SavingsBalance:    u.SavingsBalance,
		AIInsightsEnabled: u.AIInsightsEnabled,
		CreatedAt:         u.CreatedAt,
	}
}

// Me returns the authenticated user, created on first sight by the auth middleware.
// @Summary     Get current user
// @Description Get the authenticated user's profile and settings
// @Tags        user
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} UserResponse "User profile"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	user, err := h.userService.GetUserByID(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": newUserResponse(user)})
}

// ErrorDetail represents the inner error object in an error response.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}
