// internal/interfaces/http/handlers/user_address.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/your-org/shopfront/internal/domain/user"
	"github.com/your-org/shopfront/internal/interfaces/http/response"
)

// UserAddressHandler handles the saved addresses of the current user
type UserAddressHandler struct {
	userService *user.Service
}

// NewUserAddressHandler creates a new user address handler
func NewUserAddressHandler(userService *user.Service) *UserAddressHandler {
	return &UserAddressHandler{userService: userService}
}

// AddAddress handles POST /auth/me/addresses
func (h *UserAddressHandler) AddAddress(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}

	var req user.AddAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	updated, err := h.userService.AddAddress(c.Request.Context(), u.ID, &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, updated, "Address added successfully")
}

// RemoveAddress handles DELETE /auth/me/addresses/:addressId
func (h *UserAddressHandler) RemoveAddress(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}
	addressID, ok := idParam(c, "addressId")
	if !ok {
		return
	}

	updated, err := h.userService.RemoveAddress(c.Request.Context(), u.ID, addressID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, updated, "Address removed successfully")
}
