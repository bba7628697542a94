package checkout

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/your-org/shopfront/internal/domain/cart"
	"github.com/your-org/shopfront/internal/domain/order"
	"github.com/your-org/shopfront/internal/domain/product"
	"github.com/your-org/shopfront/internal/infrastructure/cache"
	"github.com/your-org/shopfront/internal/infrastructure/events"
	"github.com/your-org/shopfront/internal/pkg/apperror"
	"github.com/your-org/shopfront/internal/pkg/logger"
	"github.com/your-org/shopfront/internal/testutil"
)

type recordingCache struct {
	invalidated []uint
}

func (r *recordingCache) Invalidate(_ context.Context, ids ...uint) {
	r.invalidated = append(r.invalidated, ids...)
}

type fixture struct {
	db        *gorm.DB
	carts     *cart.Service
	checkout  *Service
	publisher *events.MemoryPublisher
	cache     *recordingCache
	user      *order.Customer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t,
		&order.Customer{}, &product.Category{}, &product.Product{}, &product.Review{},
		&cart.Cart{}, &cart.CartItem{},
		&order.Order{}, &order.OrderItem{}, &order.StatusHistory{},
	)
	publisher := events.NewMemoryPublisher()
	invalidations := &recordingCache{}
	orders := order.NewService(db, publisher, invalidations, logger.Discard())

	user := &order.Customer{Name: "Ada", Email: "ada@example.com"}
	require.NoError(t, db.Create(user).Error)

	return &fixture{
		db:        db,
		carts:     cart.NewService(db),
		checkout:  NewService(db, orders, invalidations, order.DefaultPricingPolicy, logger.Discard()),
		publisher: publisher,
		cache:     invalidations,
		user:      user,
	}
}

func (f *fixture) product(t *testing.T, name, price string, stock int) *product.Product {
	t.Helper()
	p := &product.Product{
		Name:   name,
		Price:  decimal.RequireFromString(price),
		Stock:  stock,
		Images: []string{"https://cdn.example.com/" + name + ".jpg", "https://cdn.example.com/" + name + "-2.jpg"},
	}
	require.NoError(t, f.db.Create(p).Error)
	return p
}

func (f *fixture) add(t *testing.T, p *product.Product, qty int) {
	t.Helper()
	_, err := f.carts.AddItem(context.Background(), f.user.ID, &cart.AddToCartRequest{ProductID: p.ID, Quantity: qty})
	require.NoError(t, err)
}

func (f *fixture) stock(t *testing.T, id uint) int {
	t.Helper()
	var p product.Product
	require.NoError(t, f.db.First(&p, id).Error)
	return p.Stock
}

func (f *fixture) orderCount(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&order.Order{}).Count(&n).Error)
	return n
}

func validRequest() *PlaceOrderRequest {
	return &PlaceOrderRequest{
		ShippingAddress: order.ShippingAddress{
			FullName:   "  Ada Lovelace ",
			Address:    "12 Analytical Row",
			City:       "London",
			PostalCode: "N1",
			Country:    "UK",
		},
	}
}

func TestPlaceOrderBelowFreeShipping(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "kettle", "40", 5)
	f.add(t, p, 2)

	o, err := f.checkout.PlaceOrder(ctx, f.user.ID, validRequest())
	require.NoError(t, err)

	assert.Equal(t, "80.00", o.ItemsPrice.StringFixed(2))
	assert.Equal(t, "10.00", o.ShippingPrice.StringFixed(2))
	assert.Equal(t, "8.00", o.TaxPrice.StringFixed(2))
	assert.Equal(t, "98.00", o.TotalPrice.StringFixed(2))
	assert.Equal(t, order.StatusPending, o.Status)
	assert.Equal(t, order.PaymentStatusPending, o.PaymentStatus)
	assert.Equal(t, order.PaymentMethodCOD, o.PaymentMethod)
	assert.Equal(t, "Ada Lovelace", o.ShippingAddress.FullName)
	assert.NotEmpty(t, o.OrderNumber)
	require.Len(t, o.StatusHistory, 1)
	assert.Equal(t, order.StatusPending, o.StatusHistory[0].Status)

	require.Len(t, o.Items, 1)
	assert.Equal(t, "kettle", o.Items[0].Name)
	assert.Equal(t, 2, o.Items[0].Quantity)
	assert.Equal(t, "https://cdn.example.com/kettle.jpg", o.Items[0].Image)

	assert.Equal(t, 3, f.stock(t, p.ID))
	assert.Equal(t, []uint{p.ID}, f.cache.invalidated)
	assert.Equal(t, []string{events.OrderPlaced}, f.publisher.Types())

	c, err := f.carts.Get(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Empty(t, c.Items)
}

func TestPlaceOrderAboveFreeShipping(t *testing.T) {
	f := newFixture(t)
	a := f.product(t, "boots", "100", 1)
	b := f.product(t, "socks", "25", 10)
	f.add(t, a, 1)
	f.add(t, b, 2)

	req := validRequest()
	req.PaymentMethod = "card"
	o, err := f.checkout.PlaceOrder(context.Background(), f.user.ID, req)
	require.NoError(t, err)

	assert.Equal(t, "150.00", o.ItemsPrice.StringFixed(2))
	assert.True(t, o.ShippingPrice.IsZero())
	assert.Equal(t, "15.00", o.TaxPrice.StringFixed(2))
	assert.Equal(t, "165.00", o.TotalPrice.StringFixed(2))
	assert.Equal(t, order.PaymentMethodCard, o.PaymentMethod)

	// stock may reach exactly zero
	assert.Equal(t, 0, f.stock(t, a.ID))
	assert.Equal(t, 8, f.stock(t, b.ID))
}

func TestPlaceOrderInsufficientStockIsAtomic(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	plenty := f.product(t, "plenty", "10", 10)
	scarce := f.product(t, "scarce", "10", 1)
	f.add(t, plenty, 3)
	f.add(t, scarce, 2)

	_, err := f.checkout.PlaceOrder(ctx, f.user.ID, validRequest())
	require.Error(t, err)
	assert.Equal(t, apperror.KindInsufficientStock, apperror.KindOf(err))
	assert.Equal(t, "Insufficient stock for scarce. Only 1 available.", apperror.Message(err))

	assert.Equal(t, 10, f.stock(t, plenty.ID))
	assert.Equal(t, 1, f.stock(t, scarce.ID))
	assert.Equal(t, int64(0), f.orderCount(t))
	assert.Empty(t, f.publisher.Types())

	c, err := f.carts.Get(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Len(t, c.Items, 2)
}

func TestPlaceOrderEmptyCart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.checkout.PlaceOrder(ctx, f.user.ID, validRequest())
	assert.Equal(t, apperror.KindEmptyCart, apperror.KindOf(err))

	p := f.product(t, "mug", "5", 5)
	f.add(t, p, 1)
	_, err = f.carts.Clear(ctx, f.user.ID)
	require.NoError(t, err)

	_, err = f.checkout.PlaceOrder(ctx, f.user.ID, validRequest())
	assert.Equal(t, apperror.KindEmptyCart, apperror.KindOf(err))
	assert.Equal(t, "Cart is empty", apperror.Message(err))
}

func TestPlaceOrderProductRemoved(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	kept := f.product(t, "kept", "5", 5)
	removed := f.product(t, "removed", "5", 5)
	f.add(t, kept, 1)
	f.add(t, removed, 1)
	require.NoError(t, f.db.Delete(&product.Product{}, removed.ID).Error)

	_, err := f.checkout.PlaceOrder(ctx, f.user.ID, validRequest())
	assert.Equal(t, apperror.KindProductUnavailable, apperror.KindOf(err))
	assert.Equal(t, 5, f.stock(t, kept.ID))
	assert.Equal(t, int64(0), f.orderCount(t))
}

func TestPlaceOrderValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "mug", "5", 5)
	f.add(t, p, 1)

	req := validRequest()
	req.ShippingAddress.FullName = "   "
	_, err := f.checkout.PlaceOrder(ctx, f.user.ID, req)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
	assert.Equal(t, "Shipping address is required", apperror.Message(err))

	req = validRequest()
	req.ShippingAddress.Address = ""
	_, err = f.checkout.PlaceOrder(ctx, f.user.ID, req)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

	req = validRequest()
	req.PaymentMethod = "bitcoin"
	_, err = f.checkout.PlaceOrder(ctx, f.user.ID, req)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

	assert.Equal(t, 5, f.stock(t, p.ID))
}

func TestPlacedOrderIsASnapshot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "lamp", "30", 5)
	f.add(t, p, 1)

	// the cart keeps the price captured when the line was added
	require.NoError(t, f.db.Model(&product.Product{}).Where("id = ?", p.ID).
		Update("price", decimal.RequireFromString("35")).Error)

	o, err := f.checkout.PlaceOrder(ctx, f.user.ID, validRequest())
	require.NoError(t, err)
	assert.Equal(t, "30.00", o.Items[0].Price.StringFixed(2))

	require.NoError(t, f.db.Model(&product.Product{}).Where("id = ?", p.ID).
		Updates(map[string]interface{}{"name": "lamp v2", "price": decimal.RequireFromString("99")}).Error)

	var reloaded order.Order
	require.NoError(t, f.db.Preload("Items").First(&reloaded, o.ID).Error)
	assert.Equal(t, "lamp", reloaded.Items[0].Name)
	assert.Equal(t, "30.00", reloaded.Items[0].Price.StringFixed(2))
	assert.Equal(t, "43.00", reloaded.TotalPrice.StringFixed(2))
}

func TestPlaceOrderRepeatedCheckoutCannotOversell(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "ticket", "20", 3)

	f.add(t, p, 2)
	_, err := f.checkout.PlaceOrder(ctx, f.user.ID, validRequest())
	require.NoError(t, err)

	f.add(t, p, 2)
	_, err = f.checkout.PlaceOrder(ctx, f.user.ID, validRequest())
	assert.Equal(t, apperror.KindInsufficientStock, apperror.KindOf(err))
	assert.Equal(t, 1, f.stock(t, p.ID))
	assert.Equal(t, int64(1), f.orderCount(t))
}

func TestPlaceOrderSurvivesFailedReload(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "kettle", "40", 5)
	f.add(t, p, 2)

	// placing never reads the orders table, so only the reload fails
	require.NoError(t, f.db.Callback().Query().Before("gorm:query").Register("test:fail_order_reads", func(tx *gorm.DB) {
		if tx.Statement.Table == "orders" {
			_ = tx.AddError(errors.New("connection reset"))
		}
	}))

	o, err := f.checkout.PlaceOrder(context.Background(), f.user.ID, validRequest())
	require.NoError(t, err)
	assert.NotZero(t, o.ID)
	assert.NotEmpty(t, o.OrderNumber)
	require.Len(t, o.Items, 1)
	assert.Equal(t, 2, o.Items[0].Quantity)
	assert.Equal(t, "98.00", o.TotalPrice.StringFixed(2))

	require.NoError(t, f.db.Callback().Query().Remove("test:fail_order_reads"))
	assert.Equal(t, int64(1), f.orderCount(t))
	assert.Equal(t, 3, f.stock(t, p.ID))
	assert.Equal(t, []string{events.OrderPlaced}, f.publisher.Types())
}

func TestPlaceOrderRefreshesCachedStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rdb, _ := testutil.NewRedis(t)
	products := product.NewService(f.db, cache.New(rdb, "shop:", logger.Discard()), time.Minute, nil, logger.Discard())
	orders := order.NewService(f.db, f.publisher, products, logger.Discard())
	checkout := NewService(f.db, orders, products, order.DefaultPricingPolicy, logger.Discard())

	p := f.product(t, "kettle", "40", 5)
	cached, err := products.Get(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, 5, cached.Stock)

	f.add(t, p, 2)
	placed, err := checkout.PlaceOrder(ctx, f.user.ID, validRequest())
	require.NoError(t, err)

	cached, err = products.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, cached.Stock)

	_, err = orders.UpdateStatus(ctx, placed.ID, &order.UpdateStatusRequest{Status: order.StatusCancelled}, f.user.ID)
	require.NoError(t, err)
	cached, err = products.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, cached.Stock)
}
