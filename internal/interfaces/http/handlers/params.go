// internal/interfaces/http/handlers/params.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/your-org/shopfront/internal/domain/user"
	"github.com/your-org/shopfront/internal/interfaces/http/middleware"
	"github.com/your-org/shopfront/internal/interfaces/http/response"
)

// idParam parses a numeric path parameter. A malformed id is reported the
// same way as a missing resource.
func idParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		response.Fail(c, http.StatusNotFound, "Resource not found")
		return 0, false
	}
	return uint(id), true
}

// currentUser returns the authenticated user or aborts with 401
func currentUser(c *gin.Context) (*user.User, bool) {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, "Authentication required")
		return nil, false
	}
	return u, true
}
