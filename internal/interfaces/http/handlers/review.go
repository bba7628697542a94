// internal/interfaces/http/handlers/review.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/your-org/shopfront/internal/domain/product"
	"github.com/your-org/shopfront/internal/domain/user"
	"github.com/your-org/shopfront/internal/interfaces/http/response"
)

// ReviewHandler handles product review endpoints
type ReviewHandler struct {
	reviewService *product.ReviewService
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(reviewService *product.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

// CreateReview handles POST /products/:id/reviews
func (h *ReviewHandler) CreateReview(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}
	productID, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req product.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	p, err := h.reviewService.Create(c.Request.Context(), productID, reviewAuthor(u), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, p, "Review added")
}

// DeleteReview handles DELETE /products/:id/reviews/:reviewId
func (h *ReviewHandler) DeleteReview(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}
	productID, ok := idParam(c, "id")
	if !ok {
		return
	}
	reviewID, ok := idParam(c, "reviewId")
	if !ok {
		return
	}

	p, err := h.reviewService.Delete(c.Request.Context(), productID, reviewID, reviewAuthor(u))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, p, "Review removed")
}

func reviewAuthor(u *user.User) product.ReviewAuthor {
	return product.ReviewAuthor{ID: u.ID, Name: u.Name, IsAdmin: u.IsAdmin()}
}
