package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"urwallet/internal/auth"
	apperrors "urwallet/internal/errors"
	"urwallet/internal/logger"
	"urwallet/internal/models"
)

// Context keys set by AuthMiddleware.
const (
	UserIDKey = "userID"
	EmailKey  = "email"
	UserKey   = "user"
)

// UserProvisioner resolves a verified identity to a stored user, creating it
// on first sight.
type UserProvisioner interface {
	GetOrCreateUser(id, email string) (*models.User, error)
}

// AuthMiddleware verifies the bearer token and sets the user in the context.
func AuthMiddleware(verifier auth.Verifier, users UserProvisioner) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, apperrors.WithMessage(apperrors.ErrUnauthorized, "Authorization header is required"))
			return
		}

		scheme, token, ok := strings.Cut(authHeader, " ")
		token = strings.TrimSpace(token)
		if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
			abortUnauthorized(c, apperrors.WithMessage(apperrors.ErrUnauthorized, "Invalid authorization header format"))
			return
		}

		identity, err := verifier.Verify(c.Request.Context(), token)
		if err != nil {
			logger.Get().Debugw("token rejected", "error", err, "path", c.Request.URL.Path)
			abortUnauthorized(c, apperrors.ErrInvalidToken)
			return
		}

		user, err := users.GetOrCreateUser(identity.UserID, identity.Email)
		if err != nil {
			logger.Get().Errorw("failed to provision user", "user_id", identity.UserID, "error", err)
			c.AbortWithStatusJSON(apperrors.ErrInternalServer.StatusCode, errorBody(apperrors.ErrInternalServer))
			return
		}

		c.Set(UserIDKey, user.ID)
		c.Set(EmailKey, user.Email)
		c.Set(UserKey, user)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, err *apperrors.AppError) {
	c.Header("WWW-Authenticate", `Bearer realm="urwallet"`)
	c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody(err))
}

func errorBody(err *apperrors.AppError) gin.H {
	return gin.H{
		"error": gin.H{
			"code":    err.Code,
			"message": err.Message,
		},
	}
}
