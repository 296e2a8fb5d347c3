// Package metrics exposes the Prometheus collectors reported by the coupon
// service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "coupon_service"

// Metrics holds the collectors for coupon workflows and HTTP traffic.
type Metrics struct {
	couponOperations *prometheus.CounterVec
	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec

	gatherer prometheus.Gatherer
}

// New registers the service collectors with reg. Registering twice on the
// same registry panics, so tests should pass a fresh prometheus.NewRegistry().
func New(reg *prometheus.Registry) *Metrics {
	couponOperations := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "coupons",
			Name:      "operations_total",
			Help:      "Coupon workflow outcomes by operation and result code.",
		},
		[]string{"operation", "result"},
	)
	httpRequests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route pattern and status code.",
		},
		[]string{"method", "route", "status"},
	)
	httpDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by method and route pattern.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	reg.MustRegister(couponOperations, httpRequests, httpDuration)

	return &Metrics{
		couponOperations: couponOperations,
		httpRequests:     httpRequests,
		httpDuration:     httpDuration,
		gatherer:         reg,
	}
}

// CouponOperation records the outcome of a coupon workflow. result is "ok"
// or the machine-readable error code.
func (m *Metrics) CouponOperation(operation, result string) {
	m.couponOperations.WithLabelValues(operation, result).Inc()
}

// HTTPRequest records one served HTTP request.
func (m *Metrics) HTTPRequest(method, route string, status int, duration time.Duration) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
