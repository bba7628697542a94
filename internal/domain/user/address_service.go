// internal/domain/user/address_service.go
package user

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/your-org/shopfront/internal/pkg/apperror"
)

// AddAddressRequest represents a new saved address
type AddAddressRequest struct {
	Street    string `json:"street" binding:"required,max=255"`
	City      string `json:"city" binding:"required,max=100"`
	State     string `json:"state" binding:"max=100"`
	ZipCode   string `json:"zipCode" binding:"max=20"`
	Country   string `json:"country" binding:"max=100"`
	IsDefault bool   `json:"isDefault"`
}

// AddAddress saves an address for the user and returns the updated account.
// Marking an address as default clears the previous default.
func (s *Service) AddAddress(ctx context.Context, userID uint, req *AddAddressRequest) (*User, error) {
	street := strings.TrimSpace(req.Street)
	city := strings.TrimSpace(req.City)
	if street == "" || city == "" {
		return nil, apperror.Validation("Street and city are required")
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&Address{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
			return err
		}

		isDefault := req.IsDefault || count == 0
		if isDefault {
			if err := tx.Model(&Address{}).
				Where("user_id = ? AND is_default = ?", userID, true).
				Update("is_default", false).Error; err != nil {
				return err
			}
		}

		address := Address{
			UserID:    userID,
			Street:    street,
			City:      city,
			State:     strings.TrimSpace(req.State),
			ZipCode:   strings.TrimSpace(req.ZipCode),
			Country:   strings.TrimSpace(req.Country),
			IsDefault: isDefault,
		}
		return tx.Create(&address).Error
	})
	if err != nil {
		return nil, apperror.Wrap(err, "Failed to save address")
	}

	return s.GetByID(ctx, userID)
}

// RemoveAddress deletes one of the user's addresses. If it was the default,
// the oldest remaining address becomes the default.
func (s *Service) RemoveAddress(ctx context.Context, userID, addressID uint) (*User, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var address Address
		if err := tx.Where("id = ? AND user_id = ?", addressID, userID).First(&address).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperror.NotFound("Address not found")
			}
			return err
		}

		if err := tx.Delete(&address).Error; err != nil {
			return err
		}

		if !address.IsDefault {
			return nil
		}

		var next Address
		err := tx.Where("user_id = ?", userID).Order("id ASC").First(&next).Error
		if err == gorm.ErrRecordNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return tx.Model(&next).Update("is_default", true).Error
	})
	if err != nil {
		if apperror.Is(err, apperror.KindNotFound) {
			return nil, err
		}
		return nil, apperror.Wrap(err, "Failed to remove address")
	}

	return s.GetByID(ctx, userID)
}
