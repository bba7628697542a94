// internal/domain/product/category_service.go
package product

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/your-org/shopfront/internal/pkg/apperror"
)

// CategoryService handles category business logic
type CategoryService struct {
	db       *gorm.DB
	products *Service
}

// NewCategoryService creates a new category service. Cached details of
// products in a changed category are dropped through products, which may
// be nil.
func NewCategoryService(db *gorm.DB, products *Service) *CategoryService {
	return &CategoryService{db: db, products: products}
}

// CategoryCreateRequest represents category creation data
type CategoryCreateRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description"`
	Image       string `json:"image" binding:"max=500"`
	ParentID    *uint  `json:"parent"`
}

// CategoryUpdateRequest represents category update data
type CategoryUpdateRequest struct {
	Name        *string `json:"name" binding:"omitempty,max=100"`
	Description *string `json:"description"`
	Image       *string `json:"image" binding:"omitempty,max=500"`
	ParentID    *uint   `json:"parent"`
}

// List returns all categories ordered by name
func (s *CategoryService) List(ctx context.Context) ([]Category, error) {
	categories := []Category{}
	if err := s.db.WithContext(ctx).Preload("Parent").Order("name ASC").Find(&categories).Error; err != nil {
		return nil, apperror.Wrap(err, "Failed to retrieve categories")
	}
	return categories, nil
}

// Get returns one category
func (s *CategoryService) Get(ctx context.Context, id uint) (*Category, error) {
	var category Category
	if err := s.db.WithContext(ctx).Preload("Parent").First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("Category not found")
		}
		return nil, apperror.Wrap(err, "Failed to retrieve category")
	}
	return &category, nil
}

// Create adds a category; names are unique
func (s *CategoryService) Create(ctx context.Context, req *CategoryCreateRequest) (*Category, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperror.Validation("Category name is required")
	}

	if err := s.ensureNameFree(ctx, name, 0); err != nil {
		return nil, err
	}

	category := Category{
		Name:        name,
		Description: req.Description,
		Image:       req.Image,
		ParentID:    req.ParentID,
	}

	if err := s.db.WithContext(ctx).Create(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.Conflict("Category already exists")
		}
		return nil, apperror.Wrap(err, "Failed to create category")
	}

	return s.Get(ctx, category.ID)
}

// Update applies the fields present in req
func (s *CategoryService) Update(ctx context.Context, id uint, req *CategoryUpdateRequest) (*Category, error) {
	var category Category
	if err := s.db.WithContext(ctx).First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("Category not found")
		}
		return nil, apperror.Wrap(err, "Failed to find category")
	}

	updates := make(map[string]interface{})

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, apperror.Validation("Category name must not be empty")
		}
		if err := s.ensureNameFree(ctx, name, id); err != nil {
			return nil, err
		}
		updates["name"] = name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Image != nil {
		updates["image"] = *req.Image
	}
	if req.ParentID != nil {
		if *req.ParentID == id {
			return nil, apperror.Validation("Category cannot be its own parent")
		}
		updates["parent_id"] = *req.ParentID
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(&category).Updates(updates).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, apperror.Conflict("Category already exists")
			}
			return nil, apperror.Wrap(err, "Failed to update category")
		}
		s.invalidateProducts(ctx, id)
	}

	return s.Get(ctx, id)
}

// Delete removes a category. Products referencing it keep the dangling id.
func (s *CategoryService) Delete(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&Category{}, id)
	if result.Error != nil {
		return apperror.Wrap(result.Error, "Failed to delete category")
	}
	if result.RowsAffected == 0 {
		return apperror.NotFound("Category not found")
	}
	s.invalidateProducts(ctx, id)
	return nil
}

// invalidateProducts drops cached details of every product in the category,
// since they embed it
func (s *CategoryService) invalidateProducts(ctx context.Context, categoryID uint) {
	if s.products == nil {
		return
	}
	var ids []uint
	if err := s.db.WithContext(ctx).Model(&Product{}).Where("category_id = ?", categoryID).Pluck("id", &ids).Error; err != nil {
		s.products.log.WithError(err).WithField("category_id", categoryID).Warn("failed to list products for cache invalidation")
		return
	}
	s.products.Invalidate(ctx, ids...)
}

func (s *CategoryService) ensureNameFree(ctx context.Context, name string, exceptID uint) error {
	var count int64
	err := s.db.WithContext(ctx).Model(&Category{}).
		Where("LOWER(name) = ? AND id <> ?", strings.ToLower(name), exceptID).
		Count(&count).Error
	if err != nil {
		return apperror.Wrap(err, "Failed to check category name")
	}
	if count > 0 {
		return apperror.Conflict("Category already exists")
	}
	return nil
}
