package cart

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/your-org/shopfront/internal/domain/product"
	"github.com/your-org/shopfront/internal/pkg/apperror"
	"github.com/your-org/shopfront/internal/testutil"
)

func setup(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db := testutil.NewDB(t, &product.Category{}, &product.Product{}, &Cart{}, &CartItem{})
	return NewService(db), db
}

func seedProduct(t *testing.T, db *gorm.DB, name, price string, stock int) *product.Product {
	t.Helper()
	p := &product.Product{
		Name:        name,
		Description: name + " description",
		Price:       decimal.RequireFromString(price),
		Stock:       stock,
		Images:      []string{"https://cdn.example.com/" + name + ".jpg"},
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

func TestGetWithoutCartReturnsEmpty(t *testing.T) {
	svc, _ := setup(t)

	c, err := svc.Get(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, uint(7), c.UserID)
	assert.Empty(t, c.Items)
	assert.True(t, c.TotalAmount.IsZero())
}

func TestAddItemMergesQuantities(t *testing.T) {
	svc, db := setup(t)
	ctx := context.Background()
	p := seedProduct(t, db, "mug", "12.50", 3)

	c, err := svc.AddItem(ctx, 1, &AddToCartRequest{ProductID: p.ID, Quantity: 2})
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.Equal(t, 2, c.Items[0].Quantity)
	assert.Equal(t, "25", c.TotalAmount.String())
	require.NotNil(t, c.Items[0].Product)
	assert.Equal(t, "mug", c.Items[0].Product.Name)

	// the captured price survives a later price change
	require.NoError(t, db.Model(&product.Product{}).Where("id = ?", p.ID).
		Update("price", decimal.RequireFromString("20")).Error)

	// no stock check when adding; 2 + 5 exceeds stock of 3
	c, err = svc.AddItem(ctx, 1, &AddToCartRequest{ProductID: p.ID, Quantity: 5})
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.Equal(t, 7, c.Items[0].Quantity)
	assert.True(t, c.Items[0].Price.Equal(decimal.RequireFromString("12.50")))
	assert.Equal(t, "87.5", c.TotalAmount.String())
	assert.Equal(t, 7, c.ItemCount())

	var carts int64
	require.NoError(t, db.Model(&Cart{}).Count(&carts).Error)
	assert.Equal(t, int64(1), carts)
}

func TestAddItemValidation(t *testing.T) {
	svc, db := setup(t)
	ctx := context.Background()
	p := seedProduct(t, db, "lamp", "40", 1)

	_, err := svc.AddItem(ctx, 1, &AddToCartRequest{ProductID: p.ID, Quantity: 0})
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

	_, err = svc.AddItem(ctx, 1, &AddToCartRequest{ProductID: 999, Quantity: 1})
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
	assert.Equal(t, "Product not found", apperror.Message(err))
}

func TestUpdateItem(t *testing.T) {
	svc, db := setup(t)
	ctx := context.Background()
	a := seedProduct(t, db, "pen", "2", 100)
	b := seedProduct(t, db, "pad", "5", 100)

	_, err := svc.AddItem(ctx, 1, &AddToCartRequest{ProductID: a.ID, Quantity: 1})
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, 1, &AddToCartRequest{ProductID: b.ID, Quantity: 1})
	require.NoError(t, err)

	c, err := svc.UpdateItem(ctx, 1, a.ID, &UpdateCartItemRequest{Quantity: 4})
	require.NoError(t, err)
	require.Len(t, c.Items, 2)
	assert.Equal(t, 4, c.Items[0].Quantity)
	assert.Equal(t, "13", c.TotalAmount.String())

	_, err = svc.UpdateItem(ctx, 1, a.ID, &UpdateCartItemRequest{Quantity: 0})
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

	_, err = svc.UpdateItem(ctx, 1, 999, &UpdateCartItemRequest{Quantity: 2})
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
	assert.Equal(t, "Item not found in cart", apperror.Message(err))

	// another user's cart is untouched
	_, err = svc.UpdateItem(ctx, 2, a.ID, &UpdateCartItemRequest{Quantity: 9})
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestRemoveAndClear(t *testing.T) {
	svc, db := setup(t)
	ctx := context.Background()
	a := seedProduct(t, db, "cup", "3", 10)
	b := seedProduct(t, db, "bowl", "4", 10)

	_, err := svc.AddItem(ctx, 1, &AddToCartRequest{ProductID: a.ID, Quantity: 1})
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, 1, &AddToCartRequest{ProductID: b.ID, Quantity: 2})
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, 2, &AddToCartRequest{ProductID: a.ID, Quantity: 1})
	require.NoError(t, err)

	c, err := svc.RemoveItem(ctx, 1, a.ID)
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.Equal(t, b.ID, c.Items[0].ProductID)

	// removing something absent is a no-op
	c, err = svc.RemoveItem(ctx, 1, 999)
	require.NoError(t, err)
	assert.Len(t, c.Items, 1)

	c, err = svc.Clear(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, c.Items)
	assert.NotZero(t, c.ID, "cart row is kept")

	other, err := svc.Get(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, other.Items, 1)
}
