// internal/domain/product/entity.go
package product

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// Category groups products. ParentID is not validated and may dangle.
type Category struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"uniqueIndex;not null;size:100" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Image       string    `gorm:"size:500" json:"image"`
	ParentID    *uint     `gorm:"index" json:"parentId"`
	Parent      *Category `gorm:"foreignKey:ParentID" json:"parent,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Rating is the derived review summary stored on the product row
type Rating struct {
	Average float64 `gorm:"default:0" json:"average"`
	Count   int     `gorm:"default:0" json:"count"`
}

// Product is a sellable catalog item
type Product struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Name        string          `gorm:"not null;size:255;index" json:"name"`
	Description string          `gorm:"type:text;not null" json:"description"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null;check:price >= 0" json:"price"`
	CategoryID  uint            `gorm:"not null;index" json:"categoryId"`
	Category    *Category       `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Stock       int             `gorm:"not null;default:0;check:stock >= 0" json:"stock"`
	Images      []string        `gorm:"type:text;serializer:json" json:"images"`
	Rating      Rating          `gorm:"embedded;embeddedPrefix:rating_" json:"rating"`
	Reviews     []Review        `gorm:"foreignKey:ProductID" json:"reviews"`
	CreatedAt   time.Time       `gorm:"index" json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// Reviewer is the public view of a review author
type Reviewer struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// Review is a customer rating of a product. Name is a snapshot of the
// author's display name at the time of writing.
type Review struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProductID uint      `gorm:"not null;uniqueIndex:idx_review_product_user" json:"productId"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_review_product_user" json:"userId"`
	Reviewer  *Reviewer `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Rating    int       `gorm:"not null;check:rating >= 0 AND rating <= 5" json:"rating"`
	Comment   string    `gorm:"type:text;not null" json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Product) TableName() string  { return "products" }
func (Category) TableName() string { return "categories" }
func (Review) TableName() string   { return "product_reviews" }
func (Reviewer) TableName() string { return "users" }

// RecalculateRating derives the rating summary from p.Reviews
func (p *Product) RecalculateRating() {
	if len(p.Reviews) == 0 {
		p.Rating = Rating{}
		return
	}

	sum := 0
	for _, r := range p.Reviews {
		sum += r.Rating
	}
	avg := float64(sum) / float64(len(p.Reviews))
	p.Rating = Rating{
		Average: math.Round(avg*100) / 100,
		Count:   len(p.Reviews),
	}
}

// PrimaryImage returns the first image or an empty string
func (p *Product) PrimaryImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}
