// internal/domain/product/review_service.go
package product

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/your-org/shopfront/internal/pkg/apperror"
)

// ReviewService handles product reviews and keeps the rating summary in step
type ReviewService struct {
	db       *gorm.DB
	products *Service
}

// NewReviewService creates a new review service
func NewReviewService(db *gorm.DB, products *Service) *ReviewService {
	return &ReviewService{
		db:       db,
		products: products,
	}
}

// ReviewAuthor identifies who is writing or removing a review
type ReviewAuthor struct {
	ID      uint
	Name    string
	IsAdmin bool
}

// CreateReviewRequest represents review creation data
type CreateReviewRequest struct {
	Rating  *int   `json:"rating" binding:"required,min=0,max=5"`
	Comment string `json:"comment" binding:"required,max=2000"`
}

// Create adds a review and returns the updated product
func (s *ReviewService) Create(ctx context.Context, productID uint, author ReviewAuthor, req *CreateReviewRequest) (*Product, error) {
	if req.Rating == nil || *req.Rating < 0 || *req.Rating > 5 {
		return nil, apperror.Validation("Rating must be between 0 and 5")
	}
	comment := strings.TrimSpace(req.Comment)
	if comment == "" {
		return nil, apperror.Validation("Comment is required")
	}

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, apperror.Wrap(tx.Error, "Failed to start transaction")
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	var product Product
	if err := tx.First(&product, productID).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("Product not found")
		}
		return nil, apperror.Wrap(err, "Failed to find product")
	}

	var existing int64
	if err := tx.Model(&Review{}).Where("product_id = ? AND user_id = ?", productID, author.ID).Count(&existing).Error; err != nil {
		tx.Rollback()
		return nil, apperror.Wrap(err, "Failed to check reviews")
	}
	if existing > 0 {
		tx.Rollback()
		return nil, apperror.Conflict("Product already reviewed")
	}

	review := Review{
		ProductID: productID,
		UserID:    author.ID,
		Name:      author.Name,
		Rating:    *req.Rating,
		Comment:   comment,
	}
	if err := tx.Create(&review).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.Conflict("Product already reviewed")
		}
		return nil, apperror.Wrap(err, "Failed to create review")
	}

	if err := s.refreshRating(tx, &product); err != nil {
		tx.Rollback()
		return nil, apperror.Wrap(err, "Failed to update rating")
	}

	if err := tx.Commit().Error; err != nil {
		return nil, apperror.Wrap(err, "Failed to save review")
	}

	s.products.Invalidate(ctx, productID)
	return s.products.Get(ctx, productID)
}

// Delete removes a review. Only its author or an admin may do so.
func (s *ReviewService) Delete(ctx context.Context, productID, reviewID uint, actor ReviewAuthor) (*Product, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var review Review
		if err := tx.Where("id = ? AND product_id = ?", reviewID, productID).First(&review).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound("Review not found")
			}
			return err
		}
		if review.UserID != actor.ID && !actor.IsAdmin {
			return apperror.Forbidden("Not allowed to delete this review")
		}
		if err := tx.Delete(&review).Error; err != nil {
			return err
		}

		var product Product
		if err := tx.First(&product, productID).Error; err != nil {
			return err
		}
		return s.refreshRating(tx, &product)
	})
	if err != nil {
		var appErr *apperror.Error
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, apperror.Wrap(err, "Failed to delete review")
	}

	s.products.Invalidate(ctx, productID)
	return s.products.Get(ctx, productID)
}

// refreshRating reloads the product's reviews and stores the recomputed summary
func (s *ReviewService) refreshRating(tx *gorm.DB, product *Product) error {
	if err := tx.Where("product_id = ?", product.ID).Find(&product.Reviews).Error; err != nil {
		return err
	}
	product.RecalculateRating()

	return tx.Model(&Product{}).Where("id = ?", product.ID).Updates(map[string]interface{}{
		"rating_average": product.Rating.Average,
		"rating_count":   product.Rating.Count,
	}).Error
}
