package order

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/your-org/shopfront/internal/config"
)

func line(price string, qty int) OrderItem {
	return OrderItem{Price: decimal.RequireFromString(price), Quantity: qty}
}

func TestCalculatePrices(t *testing.T) {
	tests := []struct {
		name                             string
		items                            []OrderItem
		itemsTotal, shipping, tax, total string
	}{
		{"below threshold", []OrderItem{line("40", 2)}, "80", "10", "8", "98"},
		{"above threshold", []OrderItem{line("100", 1), line("25", 2)}, "150", "0", "15", "165"},
		{"exactly threshold pays shipping", []OrderItem{line("50", 2)}, "100", "10", "10", "120"},
		{"tax rounds to cents", []OrderItem{line("19.99", 3)}, "59.97", "10", "6", "75.97"},
		{"empty", nil, "0", "10", "0", "10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := CalculatePrices(tt.items, DefaultPricingPolicy)
			assert.Equal(t, tt.itemsTotal, p.ItemsPrice.String())
			assert.Equal(t, tt.shipping, p.ShippingPrice.String())
			assert.Equal(t, tt.tax, p.TaxPrice.String())
			assert.Equal(t, tt.total, p.TotalPrice.String())
			assert.True(t, p.TotalPrice.Equal(p.ItemsPrice.Add(p.ShippingPrice).Add(p.TaxPrice)))
		})
	}
}

func TestNewPricingPolicy(t *testing.T) {
	policy := NewPricingPolicy(config.CheckoutConfig{FreeShippingThreshold: 50, FlatShippingFee: 4.5, TaxRate: 0.2})
	p := CalculatePrices([]OrderItem{line("30", 1)}, policy)
	assert.Equal(t, "4.5", p.ShippingPrice.String())
	assert.Equal(t, "6", p.TaxPrice.String())
	assert.Equal(t, "40.5", p.TotalPrice.String())
}

func TestParsePaymentMethod(t *testing.T) {
	m, ok := ParsePaymentMethod("")
	assert.True(t, ok)
	assert.Equal(t, PaymentMethodCOD, m)

	m, ok = ParsePaymentMethod(" PayPal ")
	assert.True(t, ok)
	assert.Equal(t, PaymentMethodPayPal, m)

	_, ok = ParsePaymentMethod("bitcoin")
	assert.False(t, ok)
}

func TestStatusRules(t *testing.T) {
	assert.True(t, StatusShipped.Valid())
	assert.False(t, Status("lost").Valid())
	assert.True(t, StatusDelivered.Terminal())
	assert.True(t, StatusCancelled.Terminal())
	assert.False(t, StatusProcessing.Terminal())
}
