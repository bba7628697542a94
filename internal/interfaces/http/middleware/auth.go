// internal/interfaces/http/middleware/auth.go
package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/your-org/shopfront/internal/domain/user"
	"github.com/your-org/shopfront/internal/interfaces/http/response"
	"github.com/your-org/shopfront/internal/pkg/apperror"
	"github.com/your-org/shopfront/internal/pkg/auth"
)

const (
	userIDKey = "user_id"
	userKey   = "user"
)

// UserLoader resolves the account behind a token
type UserLoader interface {
	GetByID(ctx context.Context, id uint) (*user.User, error)
}

// AuthMiddleware requires a valid bearer token whose user still exists
func AuthMiddleware(tokens *auth.JWTManager, users UserLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := auth.ExtractTokenFromHeader(c.GetHeader("Authorization"))
		if tokenString == "" {
			response.Fail(c, http.StatusUnauthorized, "Not authorized, no token")
			return
		}

		claims, err := tokens.ValidateAccessToken(tokenString)
		if err != nil {
			response.Fail(c, http.StatusUnauthorized, "Not authorized, token failed")
			return
		}

		u, err := users.GetByID(c.Request.Context(), claims.UserID)
		if err != nil {
			if apperror.Is(err, apperror.KindNotFound) {
				response.Fail(c, http.StatusUnauthorized, "User not found")
				return
			}
			response.Error(c, err)
			return
		}

		c.Set(userIDKey, u.ID)
		c.Set(userKey, u)
		c.Next()
	}
}

// RequireRoles allows the request only when the authenticated user holds
// one of roles
func RequireRoles(roles ...user.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, ok := CurrentUser(c)
		if !ok {
			response.Fail(c, http.StatusUnauthorized, "Authentication required")
			return
		}
		if !u.HasRole(roles...) {
			response.Fail(c, http.StatusForbidden, "User role "+string(u.Role)+" is not authorized to access this route")
			return
		}
		c.Next()
	}
}

// CurrentUser returns the user loaded by AuthMiddleware
func CurrentUser(c *gin.Context) (*user.User, bool) {
	v, exists := c.Get(userKey)
	if !exists {
		return nil, false
	}
	u, ok := v.(*user.User)
	return u, ok
}

// GetUserIDFromContext extracts user ID from gin context
func GetUserIDFromContext(c *gin.Context) (uint, bool) {
	userID, exists := c.Get(userIDKey)
	if !exists {
		return 0, false
	}
	id, ok := userID.(uint)
	return id, ok
}
