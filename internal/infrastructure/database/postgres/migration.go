// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/your-org/shopfront/internal/domain/cart"
	"github.com/your-org/shopfront/internal/domain/order"
	"github.com/your-org/shopfront/internal/domain/product"
	"github.com/your-org/shopfront/internal/domain/user"
)

// Migration handles database migrations
type Migration struct {
	db  *gorm.DB
	log logrus.FieldLogger
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB, log logrus.FieldLogger) *Migration {
	return &Migration{db: db, log: log}
}

// Models lists every persisted model in dependency order
func Models() []interface{} {
	return []interface{}{
		&user.User{},
		&user.Address{},

		&product.Category{},
		&product.Product{},
		&product.Review{},

		&cart.Cart{},
		&cart.CartItem{},

		&order.Order{},
		&order.OrderItem{},
		&order.StatusHistory{},
	}
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	for _, model := range Models() {
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model %T: %w", model, err)
		}
	}
	m.log.Info("database auto-migrations completed")
	return nil
}

// CreateIndexes creates additional indexes for the hot queries
func (m *Migration) CreateIndexes() error {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_products_category_created ON products(category_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_products_price ON products(price)",
		"CREATE INDEX IF NOT EXISTS idx_products_rating ON products(rating_average DESC)",

		"CREATE INDEX IF NOT EXISTS idx_orders_user_created ON orders(user_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_orders_status_created ON orders(status, created_at DESC)",

		"CREATE INDEX IF NOT EXISTS idx_order_status_history_order ON order_status_history(order_id, created_at)",
		"CREATE INDEX IF NOT EXISTS idx_addresses_user_default ON addresses(user_id, is_default)",
	}

	failed := 0
	for _, indexSQL := range indexes {
		if err := m.db.Exec(indexSQL).Error; err != nil {
			m.log.WithError(err).WithField("sql", indexSQL).Warn("failed to create index")
			failed++
		}
	}

	m.log.WithFields(logrus.Fields{
		"created": len(indexes) - failed,
		"failed":  failed,
	}).Info("database indexes ensured")
	if failed > 0 {
		return fmt.Errorf("%d of %d indexes failed", failed, len(indexes))
	}
	return nil
}

type seedProduct struct {
	name        string
	description string
	price       string
	category    string
	stock       int
	image       string
}

var seedCategories = []product.Category{
	{Name: "Electronics", Description: "Gadgets, devices, and accessories", Image: "https://placehold.co/600x400/252f3f/ffffff?text=Electronics"},
	{Name: "Clothing", Description: "Men's and women's apparel", Image: "https://placehold.co/600x400/252f3f/ffffff?text=Clothing"},
	{Name: "Footwear", Description: "Shoes, sneakers, and boots", Image: "https://placehold.co/600x400/252f3f/ffffff?text=Footwear"},
	{Name: "Home & Kitchen", Description: "Furniture, decor, and appliances", Image: "https://placehold.co/600x400/252f3f/ffffff?text=Home"},
	{Name: "Books", Description: "Fiction, non-fiction, and educational", Image: "https://placehold.co/600x400/252f3f/ffffff?text=Books"},
}

var seedProducts = []seedProduct{
	{"Wireless Noise-Canceling Headphones", "Premium sound with industry-leading noise canceling. Perfect for travel and work.", "299.99", "Electronics", 50, "https://images.unsplash.com/photo-1505740420928-5e560c06d30e?w=600&h=600&fit=crop"},
	{"Smartphone Pro Max", "A stunning display, a powerful processor and a professional-grade camera system.", "999.00", "Electronics", 25, "https://images.unsplash.com/photo-1511707171634-5f897ff02aa9?w=600&h=600&fit=crop"},
	{"Smart Watch Series 5", "Track fitness, notifications and health from your wrist.", "399.00", "Electronics", 35, "https://images.unsplash.com/photo-1523275335684-37898b6baf30?w=600&h=600&fit=crop"},
	{"Men's Cotton T-Shirt", "Soft, breathable cotton t-shirt for your daily wardrobe.", "24.99", "Clothing", 100, "https://images.unsplash.com/photo-1521572163474-6864f9cf17ab?w=600&h=600&fit=crop"},
	{"Designer Denim Jacket", "Classic denim jacket with a modern twist.", "89.50", "Clothing", 40, "https://images.unsplash.com/photo-1576995853123-5a10305d93c0?w=600&h=600&fit=crop"},
	{"Running Sneakers", "Lightweight running shoes designed for performance and endurance.", "120.00", "Footwear", 60, "https://images.unsplash.com/photo-1542291026-7eec264c27ff?w=600&h=600&fit=crop"},
	{"Leather Boots", "Premium leather boots that combine style and durability.", "150.00", "Footwear", 30, "https://images.unsplash.com/photo-1608256246200-53e635b5b65f?w=600&h=600&fit=crop"},
	{"Modern Sofa", "A sleek and comfortable sofa for any modern living room.", "899.00", "Home & Kitchen", 10, "https://images.unsplash.com/photo-1555041469-a586c61ea9bc?w=600&h=600&fit=crop"},
	{"Coffee Maker", "Brew the perfect cup every morning with this programmable coffee maker.", "79.99", "Home & Kitchen", 45, "https://images.unsplash.com/photo-1517668808822-9ebb02f2a0e6?w=600&h=600&fit=crop"},
	{"The Great Novel", "An award-winning novel about the complexities of human relationships.", "19.99", "Books", 200, "https://images.unsplash.com/photo-1544947950-fa07a98d237f?w=600&h=600&fit=crop"},
}

// SeedInitialData inserts demo categories and products. Rows that already
// exist by name are left alone. Users are never seeded: the first account
// registered becomes the administrator.
func (m *Migration) SeedInitialData() error {
	return m.db.Transaction(func(tx *gorm.DB) error {
		categoryIDs := make(map[string]uint, len(seedCategories))
		created := 0
		for _, c := range seedCategories {
			category := c
			var existing product.Category
			err := tx.Where("name = ?", category.Name).First(&existing).Error
			switch {
			case err == nil:
				categoryIDs[category.Name] = existing.ID
				continue
			case !errors.Is(err, gorm.ErrRecordNotFound):
				return fmt.Errorf("failed to seed categories: %w", err)
			}
			if err := tx.Create(&category).Error; err != nil {
				return fmt.Errorf("failed to seed categories: %w", err)
			}
			categoryIDs[category.Name] = category.ID
			created++
		}

		createdProducts := 0
		for _, sp := range seedProducts {
			var count int64
			if err := tx.Model(&product.Product{}).Where("name = ?", sp.name).Count(&count).Error; err != nil {
				return fmt.Errorf("failed to seed products: %w", err)
			}
			if count > 0 {
				continue
			}
			p := product.Product{
				Name:        sp.name,
				Description: sp.description,
				Price:       decimal.RequireFromString(sp.price),
				CategoryID:  categoryIDs[sp.category],
				Stock:       sp.stock,
				Images:      []string{sp.image},
			}
			if err := tx.Create(&p).Error; err != nil {
				return fmt.Errorf("failed to seed products: %w", err)
			}
			createdProducts++
		}

		m.log.WithFields(logrus.Fields{
			"categories": created,
			"products":   createdProducts,
		}).Info("seed data ensured")
		return nil
	})
}
