// internal/interfaces/http/handlers/checkout.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/your-org/shopfront/internal/domain/checkout"
	"github.com/your-org/shopfront/internal/interfaces/http/response"
)

// CheckoutHandler turns the caller's cart into an order
type CheckoutHandler struct {
	checkoutService *checkout.Service
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(checkoutService *checkout.Service) *CheckoutHandler {
	return &CheckoutHandler{checkoutService: checkoutService}
}

// PlaceOrder handles POST /orders
func (h *CheckoutHandler) PlaceOrder(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}

	var req checkout.PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	o, err := h.checkoutService.PlaceOrder(c.Request.Context(), u.ID, &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, o, "Order created successfully")
}
