package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/graingrove-backend/api/controllers"
	"github.com/angelmondragon/graingrove-backend/api/middleware"
	"github.com/angelmondragon/graingrove-backend/internal/cart"
	"github.com/angelmondragon/graingrove-backend/internal/catalog"
	pricing "github.com/angelmondragon/graingrove-backend/pkg/checkout"
	"github.com/angelmondragon/graingrove-backend/pkg/config"
	"github.com/angelmondragon/graingrove-backend/pkg/db"
	"github.com/angelmondragon/graingrove-backend/pkg/logger"
	"github.com/angelmondragon/graingrove-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisP redis.Pinger,
	gatherer prometheus.Gatherer,
	catalogService catalog.Service,
	cartService cart.Service,
	checkoutFlow controllers.CheckoutFlow,
	policy pricing.ShippingPolicy,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})
	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Notices())
		r.Use(middleware.Session(cfg.Cart, logg))

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ProductsList(catalogService, logg))
			r.Get("/categories", controllers.ProductCategories(catalogService, logg))
			r.Get("/{productId}", controllers.ProductDetail(catalogService, logg))
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartView(cartService, policy, logg))
			r.Delete("/", controllers.CartClear(cartService, policy, logg))
			r.Post("/items", controllers.CartAddItem(cartService, policy, logg))
			r.Patch("/items/{productId}", controllers.CartUpdateItem(cartService, policy, logg))
			r.Delete("/items/{productId}", controllers.CartRemoveItem(cartService, policy, logg))
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Get("/", controllers.CheckoutStatus(checkoutFlow, policy, logg))
			r.Post("/", controllers.CheckoutSubmit(checkoutFlow, logg))
			r.Delete("/", controllers.CheckoutReset(checkoutFlow, logg))
			r.Post("/validate", controllers.CheckoutValidate(checkoutFlow, logg))
		})
	})

	return r
}
