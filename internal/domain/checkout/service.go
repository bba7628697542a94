// internal/domain/checkout/service.go
package checkout

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/your-org/shopfront/internal/domain/cart"
	"github.com/your-org/shopfront/internal/domain/order"
	"github.com/your-org/shopfront/internal/domain/product"
	"github.com/your-org/shopfront/internal/infrastructure/events"
	"github.com/your-org/shopfront/internal/pkg/apperror"
	"github.com/your-org/shopfront/internal/pkg/metrics"
)

// Service turns a user's cart into an order
type Service struct {
	db       *gorm.DB
	orders   *order.Service
	products order.ProductCache
	policy   order.PricingPolicy
	log      logrus.FieldLogger
	now      func() time.Time
}

// NewService creates a new checkout service
func NewService(db *gorm.DB, orders *order.Service, products order.ProductCache, policy order.PricingPolicy, log logrus.FieldLogger) *Service {
	return &Service{
		db:       db,
		orders:   orders,
		products: products,
		policy:   policy,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// PlaceOrderRequest represents order placement data
type PlaceOrderRequest struct {
	ShippingAddress order.ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string                `json:"paymentMethod"`
}

// OrderPlacedEvent is published once an order is committed
type OrderPlacedEvent struct {
	OrderID       uint                `json:"orderId"`
	OrderNumber   string              `json:"orderNumber"`
	UserID        uint                `json:"userId"`
	PaymentMethod order.PaymentMethod `json:"paymentMethod"`
	TotalPrice    string              `json:"totalPrice"`
	Items         []PlacedItem        `json:"items"`
}

// PlacedItem is one line of OrderPlacedEvent
type PlacedItem struct {
	ProductID uint   `json:"productId"`
	Quantity  int    `json:"quantity"`
	Price     string `json:"price"`
}

// PlaceOrder converts the user's cart into an order. Stock checks, stock
// decrements, order creation and emptying the cart commit together or not
// at all.
func (s *Service) PlaceOrder(ctx context.Context, userID uint, req *PlaceOrderRequest) (*order.Order, error) {
	o, err := s.placeOrder(ctx, userID, req)
	if err != nil {
		metrics.CheckoutFailures.WithLabelValues(apperror.KindOf(err).String()).Inc()
		entry := s.log.WithError(err).WithField("user_id", userID)
		if apperror.KindOf(err) == apperror.KindInternal {
			entry.Error("order placement failed")
		} else {
			entry.Info("order placement rejected")
		}
		return nil, err
	}

	metrics.OrdersPlaced.Inc()
	productIDs := make([]uint, len(o.Items))
	placed := make([]PlacedItem, len(o.Items))
	for i, item := range o.Items {
		productIDs[i] = item.ProductID
		placed[i] = PlacedItem{ProductID: item.ProductID, Quantity: item.Quantity, Price: item.Price.StringFixed(2)}
	}
	if s.products != nil {
		s.products.Invalidate(ctx, productIDs...)
	}

	s.orders.Publish(ctx, events.OrderPlaced, o, OrderPlacedEvent{
		OrderID:       o.ID,
		OrderNumber:   o.OrderNumber,
		UserID:        o.UserID,
		PaymentMethod: o.PaymentMethod,
		TotalPrice:    o.TotalPrice.StringFixed(2),
		Items:         placed,
	})

	s.log.WithFields(logrus.Fields{
		"order_id":     o.ID,
		"order_number": o.OrderNumber,
		"user_id":      userID,
		"total":        o.TotalPrice.StringFixed(2),
		"items":        len(o.Items),
	}).Info("order placed")

	// the order is committed; a failed reload must not turn it into an error
	placedOrder, err := s.orders.Get(ctx, o.ID, order.Viewer{ID: userID})
	if err != nil {
		s.log.WithError(err).WithField("order_id", o.ID).Warn("reload of placed order failed")
		return o, nil
	}
	return placedOrder, nil
}

func (s *Service) placeOrder(ctx context.Context, userID uint, req *PlaceOrderRequest) (*order.Order, error) {
	address, method, err := validate(req)
	if err != nil {
		return nil, err
	}

	var placed order.Order
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c cart.Cart
		err := tx.Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).Where("user_id = ?", userID).First(&c).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.EmptyCart()
			}
			return err
		}
		if c.IsEmpty() {
			return apperror.EmptyCart()
		}

		// Validate every line against locked product rows before writing.
		products := make(map[uint]*product.Product, len(c.Items))
		for _, item := range c.Items {
			var p product.Product
			err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&p, item.ProductID).Error
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperror.ProductUnavailable(item.ProductID)
				}
				return err
			}
			if p.Stock < item.Quantity {
				return apperror.InsufficientStock(p.Name, p.Stock)
			}
			products[p.ID] = &p
		}

		items := make([]order.OrderItem, 0, len(c.Items))
		for _, item := range c.Items {
			p := products[item.ProductID]
			result := tx.Model(&product.Product{}).
				Where("id = ? AND stock >= ?", p.ID, item.Quantity).
				UpdateColumn("stock", gorm.Expr("stock - ?", item.Quantity))
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return apperror.InsufficientStock(p.Name, p.Stock)
			}

			items = append(items, order.OrderItem{
				ProductID: p.ID,
				Name:      p.Name,
				Quantity:  item.Quantity,
				Price:     item.Price,
				Image:     p.PrimaryImage(),
			})
		}

		now := s.now()
		placed = order.Order{
			OrderNumber:     order.NewOrderNumber(now),
			UserID:          userID,
			Status:          order.StatusPending,
			PaymentStatus:   order.PaymentStatusPending,
			PaymentMethod:   method,
			ShippingAddress: address,
			Items:           items,
		}
		order.CalculatePrices(items, s.policy).Apply(&placed)
		placed.AddStatusHistory(order.StatusPending, "Order placed", userID, now)

		if err := tx.Create(&placed).Error; err != nil {
			return err
		}

		return tx.Where("cart_id = ?", c.ID).Delete(&cart.CartItem{}).Error
	})
	if err != nil {
		var appErr *apperror.Error
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, apperror.Wrap(err, "Failed to place order")
	}

	return &placed, nil
}

func validate(req *PlaceOrderRequest) (order.ShippingAddress, order.PaymentMethod, error) {
	address := req.ShippingAddress
	address.FullName = strings.TrimSpace(address.FullName)
	address.Address = strings.TrimSpace(address.Address)
	address.City = strings.TrimSpace(address.City)
	address.PostalCode = strings.TrimSpace(address.PostalCode)
	address.Country = strings.TrimSpace(address.Country)
	address.Phone = strings.TrimSpace(address.Phone)

	if address.FullName == "" || address.Address == "" {
		return address, "", apperror.Validation("Shipping address is required")
	}

	method, ok := order.ParsePaymentMethod(req.PaymentMethod)
	if !ok {
		return address, "", apperror.Validation("Invalid payment method: %s", req.PaymentMethod)
	}
	return address, method, nil
}
