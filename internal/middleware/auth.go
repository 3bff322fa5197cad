package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/hxkterminal/taskboard-api/internal/constants"
	apierrors "github.com/hxkterminal/taskboard-api/internal/errors"
	"github.com/hxkterminal/taskboard-api/internal/services"
)

// RequireAuth validates the bearer token and resolves the subject username
// to a user, storing the identity in the request context.
func RequireAuth(tokenService *services.TokenService, authService *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			apierrors.Unauthenticated(c, "")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			apierrors.Unauthenticated(c, "Invalid authorization header")
			c.Abort()
			return
		}

		username, err := tokenService.Verify(parts[1])
		if err != nil {
			apierrors.Unauthenticated(c, "Invalid or expired token")
			c.Abort()
			return
		}

		user, err := authService.GetUserByUsername(username)
		if err != nil {
			apierrors.Unauthenticated(c, "Invalid or expired token")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyUserID, user.ID)
		c.Set(constants.ContextKeyUsername, user.Username)
		c.Next()
	}
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (uint64, bool) {
	userID, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return 0, false
	}

	switch v := userID.(type) {
	case uint64:
		return v, true
	case uint:
		return uint64(v), true
	case int:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	default:
		return 0, false
	}
}
