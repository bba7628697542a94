// internal/pkg/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// HTTPRequests counts handled requests by route, method and status
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Count of HTTP requests"},
		[]string{"path", "method", "status"},
	)

	// HTTPLatency observes request latency by route and method
	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Latency of HTTP requests",
			Buckets: prometheus.DefBuckets,
		}, []string{"path", "method"},
	)

	// OrdersPlaced counts committed orders
	OrdersPlaced = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "shop_orders_placed_total", Help: "Orders successfully placed"},
	)

	// CheckoutFailures counts rejected order placements by reason
	CheckoutFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "shop_checkout_failures_total", Help: "Order placements that failed"},
		[]string{"reason"},
	)

	// StatusChanges counts order status transitions by target status
	StatusChanges = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "shop_order_status_changes_total", Help: "Order status transitions"},
		[]string{"status"},
	)
)

func init() {
	prometheus.MustRegister(HTTPRequests, HTTPLatency, OrdersPlaced, CheckoutFailures, StatusChanges)
}
