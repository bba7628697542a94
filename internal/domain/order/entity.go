// internal/domain/order/entity.go
package order

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status represents the order status
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// PaymentStatus represents payment status
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// PaymentMethod is how the customer pays
type PaymentMethod string

const (
	PaymentMethodCOD    PaymentMethod = "cod"
	PaymentMethodCard   PaymentMethod = "card"
	PaymentMethodPayPal PaymentMethod = "paypal"
)

// Valid reports whether s is a known status
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transitions are allowed
func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// ParsePaymentMethod normalizes m, defaulting to cash on delivery
func ParsePaymentMethod(m string) (PaymentMethod, bool) {
	switch pm := PaymentMethod(strings.ToLower(strings.TrimSpace(m))); pm {
	case "":
		return PaymentMethodCOD, true
	case PaymentMethodCOD, PaymentMethodCard, PaymentMethodPayPal:
		return pm, true
	}
	return "", false
}

// Order is an immutable snapshot of a purchase plus its fulfilment state
type Order struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	OrderNumber   string          `gorm:"uniqueIndex;not null;size:50" json:"orderNumber"`
	UserID        uint            `gorm:"not null;index" json:"userId"`
	Customer      *Customer       `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Status        Status          `gorm:"not null;size:20;default:'pending';index" json:"orderStatus"`
	PaymentStatus PaymentStatus   `gorm:"not null;size:20;default:'pending'" json:"paymentStatus"`
	PaymentMethod PaymentMethod   `gorm:"not null;size:20;default:'cod'" json:"paymentMethod"`
	ItemsPrice    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"itemsPrice"`
	ShippingPrice decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"shippingPrice"`
	TaxPrice      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"taxPrice"`
	TotalPrice    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"totalPrice"`

	ShippingAddress ShippingAddress `gorm:"embedded;embeddedPrefix:shipping_" json:"shippingAddress"`

	PaidAt      *time.Time `json:"paidAt"`
	DeliveredAt *time.Time `json:"deliveredAt"`
	CreatedAt   time.Time  `gorm:"index" json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`

	Items         []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items"`
	StatusHistory []StatusHistory `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"statusHistory,omitempty"`
}

// OrderItem is a line snapshot taken at placement time
type OrderItem struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	OrderID   uint            `gorm:"not null;index" json:"-"`
	ProductID uint            `gorm:"not null;index" json:"productId"`
	Name      string          `gorm:"not null;size:255" json:"name"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	Price     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	Image     string          `gorm:"size:500" json:"image"`
	CreatedAt time.Time       `json:"-"`
}

// StatusHistory tracks order status changes
type StatusHistory struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	OrderID   uint      `gorm:"not null;index" json:"-"`
	Status    Status    `gorm:"not null;size:20" json:"status"`
	Comment   string    `gorm:"type:text" json:"comment"`
	CreatedBy uint      `gorm:"index" json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
}

// ShippingAddress is the delivery address captured on the order
type ShippingAddress struct {
	FullName   string `gorm:"size:100" json:"fullName"`
	Address    string `gorm:"size:255" json:"address"`
	City       string `gorm:"size:100" json:"city"`
	PostalCode string `gorm:"size:20" json:"postalCode"`
	Country    string `gorm:"size:100" json:"country"`
	Phone      string `gorm:"size:30" json:"phone"`
}

// Customer is the read-only view of the order owner
type Customer struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// TableName overrides
func (Order) TableName() string         { return "orders" }
func (OrderItem) TableName() string     { return "order_items" }
func (StatusHistory) TableName() string { return "order_status_history" }
func (Customer) TableName() string      { return "users" }

// LineTotal is price × quantity
func (i *OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// NewOrderNumber generates a unique, human friendly order number
func NewOrderNumber(now time.Time) string {
	// Format: ORD-YYYYMMDD-XXXXXXXX
	id := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))
	return fmt.Sprintf("ORD-%s-%s", now.Format("20060102"), id[:8])
}

// IsOwnedBy reports whether userID placed the order
func (o *Order) IsOwnedBy(userID uint) bool {
	return o.UserID == userID
}

// AddStatusHistory adds a new status change to history
func (o *Order) AddStatusHistory(status Status, comment string, createdBy uint, at time.Time) {
	o.StatusHistory = append(o.StatusHistory, StatusHistory{
		OrderID:   o.ID,
		Status:    status,
		Comment:   comment,
		CreatedBy: createdBy,
		CreatedAt: at,
	})
}
