package pdf

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/shopfront/internal/config"
	"github.com/your-org/shopfront/internal/domain/order"
)

func TestRenderHTML(t *testing.T) {
	svc := NewService(config.InvoiceConfig{CompanyName: "Shopfront Ltd", CompanyEmail: "billing@shop.test"})
	svc.now = func() time.Time { return time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC) }

	items := []order.OrderItem{
		{Name: "Kettle <deluxe>", Quantity: 2, Price: decimal.RequireFromString("40")},
	}
	o := &order.Order{
		OrderNumber:     "ORD-20240603-ABCDEF12",
		Status:          order.StatusPending,
		PaymentStatus:   order.PaymentStatusPending,
		PaymentMethod:   order.PaymentMethodCOD,
		ShippingAddress: order.ShippingAddress{FullName: "Ada Lovelace", Address: "12 Analytical Row", City: "London"},
		Items:           items,
	}
	order.CalculatePrices(items, order.DefaultPricingPolicy).Apply(o)

	html, err := svc.RenderHTML(o)
	require.NoError(t, err)
	out := string(html)

	assert.Contains(t, out, "INV-ORD-20240603-ABCDEF12")
	assert.Contains(t, out, "June 3, 2024")
	assert.Contains(t, out, "Shopfront Ltd")
	assert.Contains(t, out, "Ada Lovelace")
	assert.Contains(t, out, "Kettle &lt;deluxe&gt;")
	assert.Contains(t, out, "$40.00")
	assert.Contains(t, out, "$80.00")
	assert.Contains(t, out, "$8.00")
	assert.Contains(t, out, "$98.00")
}
