// internal/interfaces/http/handlers/upload.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/your-org/shopfront/internal/domain/upload"
	"github.com/your-org/shopfront/internal/interfaces/http/response"
)

// UploadHandler handles product image uploads
type UploadHandler struct {
	uploadService *upload.Service
}

// NewUploadHandler creates a new upload handler
func NewUploadHandler(uploadService *upload.Service) *UploadHandler {
	return &UploadHandler{uploadService: uploadService}
}

// UploadProductImage handles POST /products/upload (admin only)
func (h *UploadHandler) UploadProductImage(c *gin.Context) {
	header, err := c.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			response.Fail(c, http.StatusBadRequest, "No image uploaded")
			return
		}
		response.Fail(c, http.StatusBadRequest, "Invalid upload")
		return
	}

	stored, err := h.uploadService.SaveImage(c.Request.Context(), header)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, stored, "Image uploaded successfully")
}
