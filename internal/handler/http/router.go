package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/zaastore/storefront/pkg/health"
	"github.com/zaastore/storefront/pkg/middleware"
)

// RouterDeps bundles everything the router mounts.
type RouterDeps struct {
	Cart     *CartHandler
	Catalog  *CatalogHandler
	Checkout *CheckoutHandler
	Health   *health.Handler
	CORS     middleware.CORSConfig
	Logger   *slog.Logger
}

// NewRouter creates a chi router with all storefront routes registered.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(deps.Logger))
	r.Use(middleware.PrometheusMetrics("storefront"))
	r.Use(middleware.Tracing("storefront"))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.CORS(deps.CORS))

	// Health check endpoints
	r.Get("/health/live", deps.Health.LivenessHandler())
	r.Get("/health/ready", deps.Health.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	// Payment proxy. The widget posts here directly, so the route sits
	// outside the versioned API and keeps its bare wire shape.
	r.With(ContentTypeJSON).Post("/api/checkout", deps.Checkout.CreateTransaction)

	// Catalog endpoints
	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", deps.Catalog.ListProducts)
		r.Get("/flash-sale", deps.Catalog.FlashSale)
		r.Get("/search", deps.Catalog.SearchProducts)
	})

	// Cart endpoints
	r.Route("/api/v1/cart", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(CartIDFromHeader)

		r.Get("/", deps.Cart.GetCart)
		r.Delete("/", deps.Cart.ClearCart)

		r.Post("/items", deps.Cart.AddItem)
		r.Delete("/items/{index}", deps.Cart.RemoveItem)
	})

	// Versioned checkout endpoints
	r.Route("/api/v1/checkout", func(r chi.Router) {
		r.Get("/config", deps.Checkout.Config)

		r.Group(func(r chi.Router) {
			r.Use(ContentTypeJSON)
			r.Use(CartIDFromHeader)

			r.Post("/", deps.Checkout.Checkout)
			r.Post("/complete", deps.Checkout.Complete)
		})
	})

	return r
}
