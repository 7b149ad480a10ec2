package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/avillegas/storefront-backend/api/controllers"
	"github.com/avillegas/storefront-backend/api/middleware"
	cartsvc "github.com/avillegas/storefront-backend/internal/cart"
	checkoutsvc "github.com/avillegas/storefront-backend/internal/checkout"
	product "github.com/avillegas/storefront-backend/internal/products"
	ticketsvc "github.com/avillegas/storefront-backend/internal/tickets"
	"github.com/avillegas/storefront-backend/pkg/config"
	"github.com/avillegas/storefront-backend/pkg/enums"
	"github.com/avillegas/storefront-backend/pkg/logger"
	pkgredis "github.com/avillegas/storefront-backend/pkg/redis"
)

// Deps bundles everything the HTTP surface needs.
type Deps struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       controllers.Pinger
	Redis    *pkgredis.Client
	Products product.Service
	Carts    cartsvc.Service
	Checkout checkoutsvc.Service
	Tickets  ticketsvc.Repository
	Gatherer prometheus.Gatherer
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins...),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"database": deps.DB,
			"redis":    pingerOrNil(deps.Redis),
		}))
	})

	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", controllers.ProductList(deps.Products, logg))
		r.Get("/{productID}", controllers.ProductGet(deps.Products, logg))

		r.Group(func(r chi.Router) {
			r.Use(
				middleware.Auth(cfg.JWT, logg),
				middleware.RequireRole(string(enums.UserRoleAdmin), logg),
			)
			r.Post("/", controllers.ProductCreate(deps.Products, logg))
			r.Put("/{productID}", controllers.ProductUpdate(deps.Products, logg))
			r.Delete("/{productID}", controllers.ProductDelete(deps.Products, logg))
		})
	})

	r.Route("/api/carts", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Get("/current", controllers.CartGetOrCreate(deps.Carts, logg))
		r.Get("/{cartID}", controllers.CartGet(deps.Carts, logg))
		r.Delete("/{cartID}", controllers.CartClear(deps.Carts, logg))

		r.Post("/{cartID}/products/{productID}", controllers.CartAddProduct(deps.Carts, logg))
		r.Put("/{cartID}/products/{productID}", controllers.CartSetQuantity(deps.Carts, logg))
		r.Delete("/{cartID}/products/{productID}", controllers.CartRemoveProduct(deps.Carts, logg))

		r.With(middleware.Idempotency(storeOrNil(deps.Redis), cfg.Checkout, logg)).
			Post("/{cartID}/purchase", controllers.CartPurchase(deps.Checkout, logg))
	})

	r.Route("/api/tickets", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Get("/", controllers.TicketList(deps.Tickets, logg))
		r.Get("/{code}", controllers.TicketGetByCode(deps.Tickets, logg))
	})

	return r
}

// pingerOrNil avoids a typed-nil interface when redis is not configured.
func pingerOrNil(client *pkgredis.Client) controllers.Pinger {
	if client == nil {
		return nil
	}
	return client
}

func storeOrNil(client *pkgredis.Client) pkgredis.IdempotencyStore {
	if client == nil {
		return nil
	}
	return client
}
