package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/shopfront/internal/pkg/apperror"
	"github.com/your-org/shopfront/internal/pkg/pagination"
)

func init() {
	gin.SetMode(gin.TestMode)
	UseJSONFieldNames()
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		err     error
		status  int
		message string
	}{
		{apperror.Validation("bad input"), http.StatusBadRequest, "bad input"},
		{apperror.Conflict("User already exists"), http.StatusBadRequest, "User already exists"},
		{apperror.EmptyCart(), http.StatusBadRequest, "Cart is empty"},
		{apperror.InsufficientStock("Mug", 1), http.StatusBadRequest, "Insufficient stock for Mug. Only 1 available."},
		{apperror.NotFound("Order not found"), http.StatusNotFound, "Order not found"},
		{apperror.ProductUnavailable(3), http.StatusNotFound, "Product 3 is no longer available"},
		{apperror.Unauthorized("Not authorized, no token"), http.StatusUnauthorized, "Not authorized, no token"},
		{apperror.Forbidden("Not authorized as admin"), http.StatusForbidden, "Not authorized as admin"},
		{errors.New("pq: connection refused"), http.StatusInternalServerError, "Internal server error"},
	}

	for _, tt := range tests {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		Error(c, tt.err)

		assert.Equal(t, tt.status, w.Code, tt.message)
		body := decode(t, w)
		assert.Equal(t, false, body["success"])
		assert.Equal(t, tt.message, body["message"])
	}
}

func TestBindErrorUsesJSONNames(t *testing.T) {
	type request struct {
		Email    string `json:"email" binding:"required,email"`
		Quantity int    `json:"quantity" binding:"min=1"`
	}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"nope","quantity":0}`))
	c.Request.Header.Set("Content-Type", "application/json")

	var req request
	err := c.ShouldBindJSON(&req)
	require.Error(t, err)
	BindError(c, err)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "email must be a valid email; quantity must be at least 1", decode(t, w)["message"])
}

func TestPaginated(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	Paginated(c, []string{}, pagination.NewMeta(2, 10, 25))

	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, []interface{}{}, body["data"])
	assert.Equal(t, map[string]interface{}{"page": float64(2), "limit": float64(10), "total": float64(25), "pages": float64(3)}, body["pagination"])
}
