package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/medicart/medicart-backend/api/controllers"
	"github.com/medicart/medicart-backend/api/middleware"
	cartsvc "github.com/medicart/medicart-backend/internal/cart"
	customersvc "github.com/medicart/medicart-backend/internal/customers"
	ordersvc "github.com/medicart/medicart-backend/internal/orders"
	"github.com/medicart/medicart-backend/pkg/config"
	"github.com/medicart/medicart-backend/pkg/logger"
	"github.com/medicart/medicart-backend/pkg/metrics"
)

// Deps bundles everything the router wires together.
type Deps struct {
	Config    *config.Config
	Logger    *logger.Logger
	Metrics   *metrics.HTTPMetrics
	Carts     *cartsvc.Registry
	Sessions  *customersvc.Registry
	Workflows *ordersvc.Registry
	Upstreams map[string]controllers.UpstreamPinger
}

func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(deps.Logger),
		middleware.RequestID(deps.Logger),
		middleware.Logging(deps.Logger),
		middleware.Metrics(deps.Metrics),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(deps.Config))
		r.Get("/ready", controllers.HealthReady(deps.Logger, deps.Upstreams))
	})

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RequireOperator(deps.Logger))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartFetch(deps.Carts, deps.Logger))
			r.Put("/", controllers.CartUpdate(deps.Carts, deps.Logger))
			r.Delete("/", controllers.CartClear(deps.Carts, deps.Logger))
			r.Post("/items", controllers.CartAddLine(deps.Carts, deps.Logger))
			r.Delete("/items/{medicineID}", controllers.CartRemoveLine(deps.Carts, deps.Logger))
			r.Post("/sanitize", controllers.CartSanitizeField(deps.Logger))
		})

		r.Route("/customers", func(r chi.Router) {
			r.Post("/query", controllers.CustomerQuery(deps.Sessions, deps.Logger))
			r.Get("/suggestions", controllers.CustomerSuggestions(deps.Sessions, deps.Logger))
			r.Post("/key", controllers.CustomerKey(deps.Sessions, deps.Logger))
			r.Post("/select", controllers.CustomerSelect(deps.Sessions, deps.Logger))
			r.Post("/name", controllers.CustomerSetName(deps.Sessions, deps.Logger))
			r.Post("/clear", controllers.CustomerClearSuggestions(deps.Sessions, deps.Logger))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Post("/place", controllers.OrderPlace(deps.Workflows, deps.Logger))
			r.Post("/confirm", controllers.OrderConfirm(deps.Workflows, deps.Logger))
			r.Post("/cancel", controllers.OrderCancel(deps.Workflows, deps.Logger))
		})
	})

	return r
}
