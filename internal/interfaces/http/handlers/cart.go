// internal/interfaces/http/handlers/cart.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/your-org/shopfront/internal/domain/cart"
	"github.com/your-org/shopfront/internal/interfaces/http/response"
)

// CartHandler handles cart endpoints
type CartHandler struct {
	cartService *cart.Service
}

// NewCartHandler creates a new cart handler
func NewCartHandler(cartService *cart.Service) *CartHandler {
	return &CartHandler{cartService: cartService}
}

// GetCart handles GET /cart
func (h *CartHandler) GetCart(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}

	result, err := h.cartService.Get(c.Request.Context(), u.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result, "")
}

// AddToCart handles POST /cart/add
func (h *CartHandler) AddToCart(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}

	var req cart.AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	result, err := h.cartService.AddItem(c.Request.Context(), u.ID, &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result, "Item added to cart")
}

// UpdateCartItem handles PUT /cart/item/:productId
func (h *CartHandler) UpdateCartItem(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}
	productID, ok := idParam(c, "productId")
	if !ok {
		return
	}

	var req cart.UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	result, err := h.cartService.UpdateItem(c.Request.Context(), u.ID, productID, &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result, "Cart updated")
}

// RemoveCartItem handles DELETE /cart/item/:productId
func (h *CartHandler) RemoveCartItem(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}
	productID, ok := idParam(c, "productId")
	if !ok {
		return
	}

	result, err := h.cartService.RemoveItem(c.Request.Context(), u.ID, productID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result, "Item removed from cart")
}

// ClearCart handles DELETE /cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}

	result, err := h.cartService.Clear(c.Request.Context(), u.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result, "Cart cleared")
}
