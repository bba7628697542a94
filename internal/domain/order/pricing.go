// internal/domain/order/pricing.go
package order

import (
	"github.com/shopspring/decimal"

	"github.com/your-org/shopfront/internal/config"
)

// PricingPolicy holds the shipping and tax rules
type PricingPolicy struct {
	FreeShippingThreshold decimal.Decimal
	FlatShippingFee       decimal.Decimal
	TaxRate               decimal.Decimal
}

// DefaultPricingPolicy is free shipping above $100, $10 otherwise, 10% tax
var DefaultPricingPolicy = PricingPolicy{
	FreeShippingThreshold: decimal.NewFromInt(100),
	FlatShippingFee:       decimal.NewFromInt(10),
	TaxRate:               decimal.RequireFromString("0.10"),
}

// NewPricingPolicy builds the policy from configuration
func NewPricingPolicy(cfg config.CheckoutConfig) PricingPolicy {
	return PricingPolicy{
		FreeShippingThreshold: decimal.NewFromFloat(cfg.FreeShippingThreshold),
		FlatShippingFee:       decimal.NewFromFloat(cfg.FlatShippingFee),
		TaxRate:               decimal.NewFromFloat(cfg.TaxRate),
	}
}

// Prices are the monetary totals of an order
type Prices struct {
	ItemsPrice    decimal.Decimal
	ShippingPrice decimal.Decimal
	TaxPrice      decimal.Decimal
	TotalPrice    decimal.Decimal
}

// CalculatePrices computes order totals. Shipping is waived only when the
// items total is strictly above the threshold; tax is rounded to cents.
func CalculatePrices(items []OrderItem, policy PricingPolicy) Prices {
	itemsPrice := decimal.Zero
	for i := range items {
		itemsPrice = itemsPrice.Add(items[i].LineTotal())
	}

	shipping := policy.FlatShippingFee
	if itemsPrice.GreaterThan(policy.FreeShippingThreshold) {
		shipping = decimal.Zero
	}

	tax := itemsPrice.Mul(policy.TaxRate).Round(2)

	return Prices{
		ItemsPrice:    itemsPrice,
		ShippingPrice: shipping,
		TaxPrice:      tax,
		TotalPrice:    itemsPrice.Add(shipping).Add(tax),
	}
}

// Apply copies the prices onto the order
func (p Prices) Apply(o *Order) {
	o.ItemsPrice = p.ItemsPrice
	o.ShippingPrice = p.ShippingPrice
	o.TaxPrice = p.TaxPrice
	o.TotalPrice = p.TotalPrice
}
