// internal/domain/product/service.go
package product

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/your-org/shopfront/internal/infrastructure/cache"
	"github.com/your-org/shopfront/internal/pkg/apperror"
	"github.com/your-org/shopfront/internal/pkg/pagination"
)

const DefaultPageLimit = 12

// Sort keys accepted by List
const (
	SortNewest    = "newest"
	SortPriceAsc  = "price-asc"
	SortPriceDesc = "price-desc"
	SortRating    = "rating"
)

// ImageRemover deletes stored product images
type ImageRemover interface {
	Delete(ctx context.Context, url string) error
}

// Service handles catalog reads and admin writes for products
type Service struct {
	db       *gorm.DB
	cache    *cache.Cache
	cacheTTL time.Duration
	images   ImageRemover
	log      logrus.FieldLogger
}

// NewService creates a new product service. cache and images may be nil.
func NewService(db *gorm.DB, c *cache.Cache, cacheTTL time.Duration, images ImageRemover, log logrus.FieldLogger) *Service {
	return &Service{
		db:       db,
		cache:    c,
		cacheTTL: cacheTTL,
		images:   images,
		log:      log,
	}
}

// ListRequest represents product list query parameters
type ListRequest struct {
	Search   string `form:"search"`
	Category string `form:"category"`
	MinPrice string `form:"minPrice"`
	MaxPrice string `form:"maxPrice"`
	Sort     string `form:"sort"`
	Page     int    `form:"page"`
	Limit    int    `form:"pageLimit"`
}

// CreateRequest represents product creation data
type CreateRequest struct {
	Name        string           `json:"name" binding:"required,max=255"`
	Description string           `json:"description" binding:"required"`
	Price       *decimal.Decimal `json:"price" binding:"required"`
	CategoryID  uint             `json:"category" binding:"required"`
	Stock       int              `json:"stock" binding:"min=0"`
	Images      []string         `json:"images"`
}

// UpdateRequest represents a partial product update. Nil fields are left untouched.
type UpdateRequest struct {
	Name        *string          `json:"name" binding:"omitempty,max=255"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	CategoryID  *uint            `json:"category"`
	Stock       *int             `json:"stock" binding:"omitempty,min=0"`
	Images      *[]string        `json:"images"`
}

// ListResult is a page of products
type ListResult struct {
	Products   []Product
	Pagination pagination.Meta
}

// List returns products matching the request filters
func (s *Service) List(ctx context.Context, req *ListRequest) (*ListResult, error) {
	page, limit := pagination.Normalize(req.Page, req.Limit, DefaultPageLimit)

	query := s.db.WithContext(ctx).Model(&Product{})

	if search := strings.TrimSpace(req.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}

	if req.Category != "" {
		categoryID, err := parseID(req.Category)
		if err != nil {
			return nil, apperror.Validation("Invalid category id")
		}
		query = query.Where("category_id = ?", categoryID)
	}

	if req.MinPrice != "" {
		min, err := decimal.NewFromString(req.MinPrice)
		if err != nil {
			return nil, apperror.Validation("Invalid minPrice")
		}
		query = query.Where("price >= ?", min)
	}

	if req.MaxPrice != "" {
		max, err := decimal.NewFromString(req.MaxPrice)
		if err != nil {
			return nil, apperror.Validation("Invalid maxPrice")
		}
		query = query.Where("price <= ?", max)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, apperror.Wrap(err, "Failed to count products")
	}

	products := []Product{}
	err := query.
		Preload("Category").
		Order(buildOrderClause(req.Sort)).
		Offset(pagination.Offset(page, limit)).
		Limit(limit).
		Find(&products).Error
	if err != nil {
		return nil, apperror.Wrap(err, "Failed to retrieve products")
	}

	return &ListResult{
		Products:   products,
		Pagination: pagination.NewMeta(page, limit, total),
	}, nil
}

// Get returns one product with its category and reviews
func (s *Service) Get(ctx context.Context, id uint) (*Product, error) {
	return cache.GetOrLoadJSON(ctx, s.cache, cacheKey(id), s.cacheTTL, func(ctx context.Context) (*Product, error) {
		return s.load(ctx, id)
	})
}

func (s *Service) load(ctx context.Context, id uint) (*Product, error) {
	var product Product
	err := s.db.WithContext(ctx).
		Preload("Category").
		Preload("Reviews", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC, id DESC")
		}).
		Preload("Reviews.Reviewer").
		First(&product, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("Product not found")
		}
		return nil, apperror.Wrap(err, "Failed to retrieve product")
	}
	return &product, nil
}

// Create adds a product to the catalog
func (s *Service) Create(ctx context.Context, req *CreateRequest) (*Product, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperror.Validation("Product name is required")
	}
	if req.Price == nil {
		return nil, apperror.Validation("Price is required")
	}
	if req.Price.IsNegative() {
		return nil, apperror.Validation("Price must not be negative")
	}
	if req.Stock < 0 {
		return nil, apperror.Validation("Stock must not be negative")
	}
	if err := s.ensureCategory(ctx, req.CategoryID); err != nil {
		return nil, err
	}

	images := req.Images
	if images == nil {
		images = []string{}
	}

	product := Product{
		Name:        name,
		Description: req.Description,
		Price:       req.Price.Round(2),
		CategoryID:  req.CategoryID,
		Stock:       req.Stock,
		Images:      images,
	}

	if err := s.db.WithContext(ctx).Create(&product).Error; err != nil {
		return nil, apperror.Wrap(err, "Failed to create product")
	}

	return s.load(ctx, product.ID)
}

// Update applies the fields present in req
func (s *Service) Update(ctx context.Context, id uint, req *UpdateRequest) (*Product, error) {
	var product Product
	if err := s.db.WithContext(ctx).First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("Product not found")
		}
		return nil, apperror.Wrap(err, "Failed to find product")
	}

	// struct + Select so zero values are written and the images serializer runs
	var changes Product
	var columns []string

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, apperror.Validation("Product name must not be empty")
		}
		changes.Name = name
		columns = append(columns, "name")
	}
	if req.Description != nil {
		changes.Description = *req.Description
		columns = append(columns, "description")
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			return nil, apperror.Validation("Price must not be negative")
		}
		changes.Price = req.Price.Round(2)
		columns = append(columns, "price")
	}
	if req.CategoryID != nil {
		if err := s.ensureCategory(ctx, *req.CategoryID); err != nil {
			return nil, err
		}
		changes.CategoryID = *req.CategoryID
		columns = append(columns, "category_id")
	}
	if req.Stock != nil {
		if *req.Stock < 0 {
			return nil, apperror.Validation("Stock must not be negative")
		}
		changes.Stock = *req.Stock
		columns = append(columns, "stock")
	}
	if req.Images != nil {
		changes.Images = *req.Images
		if changes.Images == nil {
			changes.Images = []string{}
		}
		columns = append(columns, "images")
	}

	if len(columns) > 0 {
		if err := s.db.WithContext(ctx).Model(&product).Select(columns).Updates(&changes).Error; err != nil {
			return nil, apperror.Wrap(err, "Failed to update product")
		}
		s.Invalidate(ctx, id)
	}

	return s.load(ctx, id)
}

// Delete removes a product, its reviews and its stored images
func (s *Service) Delete(ctx context.Context, id uint) error {
	var product Product
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&product, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound("Product not found")
			}
			return err
		}
		if err := tx.Where("product_id = ?", id).Delete(&Review{}).Error; err != nil {
			return err
		}
		return tx.Delete(&product).Error
	})
	if err != nil {
		if apperror.Is(err, apperror.KindNotFound) {
			return err
		}
		return apperror.Wrap(err, "Failed to delete product")
	}

	s.Invalidate(ctx, id)

	if s.images != nil {
		for _, url := range product.Images {
			if err := s.images.Delete(ctx, url); err != nil {
				s.log.WithError(err).WithFields(logrus.Fields{
					"product_id": id,
					"image":      url,
				}).Warn("failed to delete product image")
			}
		}
	}

	return nil
}

// Invalidate drops cached product details
func (s *Service) Invalidate(ctx context.Context, ids ...uint) {
	if len(ids) == 0 {
		return
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = cacheKey(id)
	}
	_ = s.cache.Delete(ctx, keys...)
}

func (s *Service) ensureCategory(ctx context.Context, categoryID uint) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&Category{}).Where("id = ?", categoryID).Count(&count).Error; err != nil {
		return apperror.Wrap(err, "Failed to check category")
	}
	if count == 0 {
		return apperror.NotFound("Category not found")
	}
	return nil
}

// buildOrderClause maps a sort key to an ORDER BY clause; unknown keys sort newest first
func buildOrderClause(sort string) string {
	switch sort {
	case SortPriceAsc:
		return "price ASC, id ASC"
	case SortPriceDesc:
		return "price DESC, id DESC"
	case SortRating:
		return "rating_average DESC, rating_count DESC, id DESC"
	default:
		return "created_at DESC, id DESC"
	}
}

func cacheKey(id uint) string {
	return fmt.Sprintf("product:%d", id)
}

func parseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return uint(id), nil
}
