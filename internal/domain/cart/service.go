// internal/domain/cart/service.go
package cart

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/your-org/shopfront/internal/domain/product"
	"github.com/your-org/shopfront/internal/pkg/apperror"
)

// Service handles cart business logic. Stock is not checked or reserved
// here; order placement is the only stock gate.
type Service struct {
	db *gorm.DB
}

// NewService creates a new cart service
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// AddToCartRequest represents add to cart data
type AddToCartRequest struct {
	ProductID uint `json:"productId" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,min=1"`
}

// UpdateCartItemRequest represents cart item update data
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" binding:"required"`
}

// Get returns the user's cart with product details. A user without a cart
// gets an empty, unsaved one.
func (s *Service) Get(ctx context.Context, userID uint) (*Cart, error) {
	var cart Cart
	err := s.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).
		Preload("Items.Product").
		Where("user_id = ?", userID).
		First(&cart).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &Cart{UserID: userID, Items: []CartItem{}, TotalAmount: decimal.Zero}, nil
		}
		return nil, apperror.Wrap(err, "Failed to retrieve cart")
	}

	if cart.Items == nil {
		cart.Items = []CartItem{}
	}
	cart.computeTotal()
	return &cart, nil
}

// AddItem adds quantity units of a product. A product already in the cart
// has its quantity increased; the originally captured price is kept.
func (s *Service) AddItem(ctx context.Context, userID uint, req *AddToCartRequest) (*Cart, error) {
	if req.Quantity < 1 {
		return nil, apperror.Validation("Quantity must be at least 1")
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p product.Product
		if err := tx.Select("id", "price").First(&p, req.ProductID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound("Product not found")
			}
			return err
		}

		cart, err := s.findOrCreateCart(tx, userID)
		if err != nil {
			return err
		}

		var item CartItem
		err = tx.Where("cart_id = ? AND product_id = ?", cart.ID, p.ID).First(&item).Error
		switch {
		case err == nil:
			return tx.Model(&item).Update("quantity", gorm.Expr("quantity + ?", req.Quantity)).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			item = CartItem{
				CartID:    cart.ID,
				ProductID: p.ID,
				Quantity:  req.Quantity,
				Price:     p.Price,
			}
			return tx.Create(&item).Error
		default:
			return err
		}
	})
	if err != nil {
		return nil, wrap(err, "Failed to add item to cart")
	}

	return s.Get(ctx, userID)
}

// UpdateItem sets the quantity of a line. Quantities below 1 are rejected
// rather than treated as removal.
func (s *Service) UpdateItem(ctx context.Context, userID, productID uint, req *UpdateCartItemRequest) (*Cart, error) {
	if req.Quantity < 1 {
		return nil, apperror.Validation("Quantity must be at least 1")
	}

	result := s.db.WithContext(ctx).
		Model(&CartItem{}).
		Where("product_id = ? AND cart_id IN (?)", productID,
			s.db.Model(&Cart{}).Select("id").Where("user_id = ?", userID)).
		Update("quantity", req.Quantity)
	if result.Error != nil {
		return nil, apperror.Wrap(result.Error, "Failed to update cart item")
	}
	if result.RowsAffected == 0 {
		return nil, apperror.NotFound("Item not found in cart")
	}

	return s.Get(ctx, userID)
}

// RemoveItem drops a product line. Removing a product that is not in the
// cart is not an error.
func (s *Service) RemoveItem(ctx context.Context, userID, productID uint) (*Cart, error) {
	err := s.db.WithContext(ctx).
		Where("product_id = ? AND cart_id IN (?)", productID,
			s.db.Model(&Cart{}).Select("id").Where("user_id = ?", userID)).
		Delete(&CartItem{}).Error
	if err != nil {
		return nil, apperror.Wrap(err, "Failed to remove cart item")
	}

	return s.Get(ctx, userID)
}

// Clear empties the cart but keeps the cart itself
func (s *Service) Clear(ctx context.Context, userID uint) (*Cart, error) {
	err := s.db.WithContext(ctx).
		Where("cart_id IN (?)", s.db.Model(&Cart{}).Select("id").Where("user_id = ?", userID)).
		Delete(&CartItem{}).Error
	if err != nil {
		return nil, apperror.Wrap(err, "Failed to clear cart")
	}

	return s.Get(ctx, userID)
}

func (s *Service) findOrCreateCart(tx *gorm.DB, userID uint) (*Cart, error) {
	cart := Cart{UserID: userID}
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(&cart).Error
	if err != nil {
		return nil, err
	}
	if err := tx.Where("user_id = ?", userID).First(&cart).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

func wrap(err error, message string) error {
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		return err
	}
	return apperror.Wrap(err, message)
}
