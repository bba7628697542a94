// internal/interfaces/http/handlers/order.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/your-org/shopfront/internal/domain/order"
	"github.com/your-org/shopfront/internal/domain/user"
	"github.com/your-org/shopfront/internal/interfaces/http/response"
)

// OrderHandler handles order reads and admin status changes
type OrderHandler struct {
	orderService *order.Service
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orderService *order.Service) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// GetMyOrders handles GET /orders/myorders
func (h *OrderHandler) GetMyOrders(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}

	orders, err := h.orderService.ListMine(c.Request.Context(), u.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, orders, "")
}

// ListOrders handles GET /orders (admin only)
func (h *OrderHandler) ListOrders(c *gin.Context) {
	var req order.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BindError(c, err)
		return
	}

	result, err := h.orderService.ListAll(c.Request.Context(), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, result.Orders, result.Pagination)
}

// GetOrder handles GET /orders/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	o, err := h.orderService.Get(c.Request.Context(), id, viewer(u))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, o, "")
}

// UpdateOrderStatus handles PUT /orders/:id/status (admin only)
func (h *OrderHandler) UpdateOrderStatus(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req order.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	o, err := h.orderService.UpdateStatus(c.Request.Context(), id, &req, u.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, o, "Order status updated")
}

func viewer(u *user.User) order.Viewer {
	return order.Viewer{ID: u.ID, IsAdmin: u.IsAdmin()}
}
