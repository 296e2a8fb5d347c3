package router

import (
	"net/http"

	"coupon-service/internal/handler"
	"coupon-service/internal/metrics"
	"coupon-service/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Options configures the router.
type Options struct {
	AllowedOrigin string
	Metrics       *metrics.Metrics
}

// New creates a new HTTP router with all routes and middleware configured.
func New(couponHandler *handler.CouponHandler, opts Options, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	// Recovery -> CorrelationID -> Logging -> Metrics -> CORS
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.CorrelationID)
	r.Use(middleware.Logging(logger))
	if opts.Metrics != nil {
		r.Use(middleware.Metrics(opts.Metrics))
	}
	r.Use(middleware.CORS(opts.AllowedOrigin))

	r.NotFound(handler.NotFound(logger))
	r.MethodNotAllowed(handler.MethodNotAllowed(logger))

	r.Get("/health", handler.Health)
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	}

	r.Route("/api/coupons", func(r chi.Router) {
		r.Post("/", couponHandler.Create)
		r.Get("/", couponHandler.List)
		r.Get("/{id}", couponHandler.GetByID)
		r.Delete("/{id}", couponHandler.Delete)
	})

	return r
}
