// internal/domain/order/service.go
package order

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/your-org/shopfront/internal/infrastructure/events"
	"github.com/your-org/shopfront/internal/pkg/apperror"
	"github.com/your-org/shopfront/internal/pkg/metrics"
	"github.com/your-org/shopfront/internal/pkg/pagination"
)

// DefaultPageLimit is the admin order list page size
const DefaultPageLimit = 10

// ProductCache drops cached product details after stock changes
type ProductCache interface {
	Invalidate(ctx context.Context, ids ...uint)
}

// Service handles order business logic
type Service struct {
	db        *gorm.DB
	publisher events.Publisher
	products  ProductCache
	log       logrus.FieldLogger
	now       func() time.Time
}

// NewService creates a new order service
func NewService(db *gorm.DB, publisher events.Publisher, products ProductCache, log logrus.FieldLogger) *Service {
	return &Service{
		db:        db,
		publisher: publisher,
		products:  products,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Viewer identifies who is reading an order
type Viewer struct {
	ID      uint
	IsAdmin bool
}

// ListRequest represents admin order list query parameters
type ListRequest struct {
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
	Status string `form:"status"`
}

// ListResult is one page of orders
type ListResult struct {
	Orders     []Order         `json:"orders"`
	Pagination pagination.Meta `json:"pagination"`
}

// UpdateStatusRequest represents a status change
type UpdateStatusRequest struct {
	Status  Status `json:"status"`
	Comment string `json:"comment"`
}

// StatusChangedEvent is published for every status transition
type StatusChangedEvent struct {
	OrderID       uint          `json:"orderId"`
	OrderNumber   string        `json:"orderNumber"`
	UserID        uint          `json:"userId"`
	From          Status        `json:"from"`
	To            Status        `json:"to"`
	PaymentStatus PaymentStatus `json:"paymentStatus"`
	ChangedBy     uint          `json:"changedBy"`
}

// ListMine returns the user's orders, newest first
func (s *Service) ListMine(ctx context.Context, userID uint) ([]Order, error) {
	orders := []Order{}
	err := s.db.WithContext(ctx).
		Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&orders).Error
	if err != nil {
		return nil, apperror.Wrap(err, "Failed to retrieve orders")
	}
	return orders, nil
}

// ListAll returns every order with optional status filter, newest first
func (s *Service) ListAll(ctx context.Context, req *ListRequest) (*ListResult, error) {
	page, limit := pagination.Normalize(req.Page, req.Limit, DefaultPageLimit)

	query := s.db.WithContext(ctx).Model(&Order{})
	if req.Status != "" {
		status := Status(req.Status)
		if !status.Valid() {
			return nil, apperror.Validation("Invalid order status: %s", req.Status)
		}
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, apperror.Wrap(err, "Failed to count orders")
	}

	orders := []Order{}
	err := query.
		Preload("Customer", selectCustomer).
		Preload("Items").
		Order("created_at DESC, id DESC").
		Offset(pagination.Offset(page, limit)).
		Limit(limit).
		Find(&orders).Error
	if err != nil {
		return nil, apperror.Wrap(err, "Failed to retrieve orders")
	}

	return &ListResult{
		Orders:     orders,
		Pagination: pagination.NewMeta(page, limit, total),
	}, nil
}

// Get returns one order to its owner or an admin
func (s *Service) Get(ctx context.Context, id uint, viewer Viewer) (*Order, error) {
	var order Order
	err := s.db.WithContext(ctx).
		Preload("Customer", selectCustomer).
		Preload("Items").
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		First(&order, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("Order not found")
		}
		return nil, apperror.Wrap(err, "Failed to retrieve order")
	}

	if !viewer.IsAdmin && !order.IsOwnedBy(viewer.ID) {
		return nil, apperror.Forbidden("Not authorized to view this order")
	}
	return &order, nil
}

// UpdateStatus sets the order status. Any jump between open states is
// allowed; delivered and cancelled orders are closed. Setting the current
// status again changes nothing.
func (s *Service) UpdateStatus(ctx context.Context, id uint, req *UpdateStatusRequest, actorID uint) (*Order, error) {
	if req.Status == "" {
		return nil, apperror.Validation("Status is required")
	}
	if !req.Status.Valid() {
		return nil, apperror.Validation("Invalid order status: %s", req.Status)
	}

	var (
		order    Order
		from     Status
		changed  bool
		restored []uint
	)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&order, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound("Order not found")
			}
			return err
		}

		from = order.Status
		if from == req.Status {
			return nil
		}
		if from.Terminal() {
			return apperror.Validation("Order is already %s", from)
		}

		now := s.now()
		updates := map[string]interface{}{"status": req.Status}

		switch req.Status {
		case StatusDelivered:
			if order.DeliveredAt == nil {
				updates["delivered_at"] = now
			}
			if order.PaymentMethod == PaymentMethodCOD && order.PaymentStatus == PaymentStatusPending {
				updates["payment_status"] = PaymentStatusPaid
				updates["paid_at"] = now
			}
		case StatusCancelled:
			ids, err := restoreStock(tx, order.ID)
			if err != nil {
				return err
			}
			restored = ids
			if order.PaymentStatus == PaymentStatusPaid {
				updates["payment_status"] = PaymentStatusRefunded
			}
		}

		if err := tx.Model(&order).Updates(updates).Error; err != nil {
			return err
		}

		comment := req.Comment
		if comment == "" {
			comment = "Status changed from " + string(from) + " to " + string(req.Status)
		}
		history := StatusHistory{
			OrderID:   order.ID,
			Status:    req.Status,
			Comment:   comment,
			CreatedBy: actorID,
			CreatedAt: now,
		}
		if err := tx.Create(&history).Error; err != nil {
			return err
		}

		changed = true
		return nil
	})
	if err != nil {
		var appErr *apperror.Error
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, apperror.Wrap(err, "Failed to update order status")
	}

	if changed {
		if len(restored) > 0 && s.products != nil {
			s.products.Invalidate(ctx, restored...)
		}
		metrics.StatusChanges.WithLabelValues(string(req.Status)).Inc()
		s.log.WithFields(logrus.Fields{
			"order_id": order.ID,
			"from":     from,
			"to":       req.Status,
			"actor_id": actorID,
		}).Info("order status changed")
	}

	updated, err := s.Get(ctx, id, Viewer{ID: actorID, IsAdmin: true})
	if err != nil {
		return nil, err
	}

	if changed {
		s.publish(ctx, events.OrderStatusChanged, updated, StatusChangedEvent{
			OrderID:       updated.ID,
			OrderNumber:   updated.OrderNumber,
			UserID:        updated.UserID,
			From:          from,
			To:            updated.Status,
			PaymentStatus: updated.PaymentStatus,
			ChangedBy:     actorID,
		})
	}
	return updated, nil
}

// Publish sends an order event. Failures are logged and swallowed since the
// order is already committed.
func (s *Service) Publish(ctx context.Context, eventType string, o *Order, payload interface{}) {
	s.publish(ctx, eventType, o, payload)
}

func (s *Service) publish(ctx context.Context, eventType string, o *Order, payload interface{}) {
	if s.publisher == nil {
		return
	}
	event := events.Event{
		Type:       eventType,
		Key:        strconv.FormatUint(uint64(o.ID), 10),
		OccurredAt: s.now(),
		Payload:    payload,
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"event":    eventType,
			"order_id": o.ID,
		}).Warn("failed to publish order event")
	}
}

// restoreStock puts the ordered quantities back on products that still
// exist and returns their ids
func restoreStock(tx *gorm.DB, orderID uint) ([]uint, error) {
	var items []OrderItem
	if err := tx.Where("order_id = ?", orderID).Find(&items).Error; err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(items))
	for _, item := range items {
		result := tx.Table("products").
			Where("id = ?", item.ProductID).
			UpdateColumn("stock", gorm.Expr("stock + ?", item.Quantity))
		if result.Error != nil {
			return nil, result.Error
		}
		if result.RowsAffected > 0 {
			ids = append(ids, item.ProductID)
		}
	}
	return ids, nil
}

func selectCustomer(db *gorm.DB) *gorm.DB {
	return db.Select("id", "name", "email")
}
