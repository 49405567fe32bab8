package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/springzlabs/springz-backend/api/controllers"
	"github.com/springzlabs/springz-backend/api/middleware"
	addresssvc "github.com/springzlabs/springz-backend/internal/address"
	analyticssvc "github.com/springzlabs/springz-backend/internal/analytics"
	authsvc "github.com/springzlabs/springz-backend/internal/auth"
	cartsvc "github.com/springzlabs/springz-backend/internal/cart"
	"github.com/springzlabs/springz-backend/internal/catalog"
	checkoutsvc "github.com/springzlabs/springz-backend/internal/checkout"
	ordersvc "github.com/springzlabs/springz-backend/internal/orders"
	settingssvc "github.com/springzlabs/springz-backend/internal/settings"
	usersvc "github.com/springzlabs/springz-backend/internal/users"
	"github.com/springzlabs/springz-backend/pkg/auth/session"
	"github.com/springzlabs/springz-backend/pkg/config"
	"github.com/springzlabs/springz-backend/pkg/enums"
	"github.com/springzlabs/springz-backend/pkg/logger"
	"github.com/springzlabs/springz-backend/pkg/metrics"
	pkgredis "github.com/springzlabs/springz-backend/pkg/redis"
)

// Dependencies carries everything the router wires into handlers.
type Dependencies struct {
	Config      *config.Config
	Logger      *logger.Logger
	Redis       *pkgredis.Client
	Sessions    session.AccessSessionChecker
	HTTPMetrics *metrics.HTTPMetrics
	Readiness   map[string]controllers.Pinger

	Auth      authsvc.Service
	Users     usersvc.Service
	Catalog   catalog.Service
	Cart      cartsvc.Service
	Addresses addresssvc.Service
	Checkout  checkoutsvc.Service
	Orders    ordersvc.Service
	Settings  settingssvc.Service
	Analytics analyticssvc.Service
}

// NewRouter assembles the full HTTP surface: public storefront reads, auth,
// authenticated customer routes, and the admin back office.
func NewRouter(deps Dependencies) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.HTTPMetrics),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.Readiness))
	})
	r.Handle("/metrics", promhttp.Handler())

	// Public storefront reads.
	r.Route("/api/v1/catalog", func(r chi.Router) {
		r.Get("/categories", controllers.CategoriesList(deps.Catalog, logg))
		r.Get("/products", controllers.ProductsList(deps.Catalog, logg))
		r.Get("/products/{slug}", controllers.ProductGet(deps.Catalog, logg))
	})
	r.Route("/api/v1/settings", func(r chi.Router) {
		r.Get("/", controllers.SettingsList(deps.Settings, logg))
		r.Get("/{key}", controllers.SettingGet(deps.Settings, logg))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(registerPolicy, deps.Redis, logg)).
			With(middleware.Idempotency(deps.Redis, logg)).
			Post("/register", controllers.AuthRegister(deps.Auth, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).
			Post("/login", controllers.AuthLogin(deps.Auth, logg))
		r.Post("/refresh", controllers.AuthRefresh(deps.Auth, logg))
		r.With(middleware.Auth(cfg.JWT, deps.Sessions, logg)).
			Post("/logout", controllers.AuthLogout(deps.Auth, logg))
	})

	r.Route("/api/admin/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).
			Post("/login", controllers.AdminAuthLogin(deps.Auth, logg))
	})

	// Authenticated customer surface.
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))
		r.Use(middleware.Idempotency(deps.Redis, logg))

		r.Route("/me", func(r chi.Router) {
			r.Get("/", controllers.ProfileGet(deps.Users, logg))
			r.Patch("/", controllers.ProfileUpdate(deps.Users, logg))
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartGet(deps.Cart, logg))
			r.Post("/items", controllers.CartAddItem(deps.Cart, logg))
			r.Patch("/items/{itemId}", controllers.CartUpdateItem(deps.Cart, logg))
			r.Delete("/items/{itemId}", controllers.CartRemoveItem(deps.Cart, logg))
		})

		r.Route("/addresses", func(r chi.Router) {
			r.Get("/", controllers.AddressList(deps.Addresses, logg))
			r.Post("/", controllers.AddressCreate(deps.Addresses, logg))
			r.Put("/{addressId}", controllers.AddressUpdate(deps.Addresses, logg))
			r.Delete("/{addressId}", controllers.AddressDelete(deps.Addresses, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", controllers.OrderPlace(deps.Checkout, logg))
			r.Get("/", controllers.OrdersList(deps.Orders, logg))
			r.Get("/{orderId}", controllers.OrderGet(deps.Orders, logg))
			r.Post("/{orderId}/cancel", controllers.OrderCancel(deps.Orders, logg))
		})
	})

	// Admin back office.
	r.Route("/api/v1/admin", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))
		r.Use(middleware.RequireRole(string(enums.UserRoleAdmin), logg))
		r.Use(middleware.Idempotency(deps.Redis, logg))

		r.Get("/dashboard", controllers.AdminDashboard(deps.Analytics, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.AdminOrdersList(deps.Orders, logg))
			r.Get("/{orderId}", controllers.AdminOrderGet(deps.Orders, logg))
			r.Patch("/{orderId}/status", controllers.AdminOrderUpdateStatus(deps.Orders, logg))
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.AdminProductsList(deps.Catalog, logg))
			r.Post("/", controllers.AdminProductCreate(deps.Catalog, logg))
			r.Patch("/{productId}", controllers.AdminProductUpdate(deps.Catalog, logg))
			r.Patch("/{productId}/variants/{variantId}", controllers.AdminVariantUpdate(deps.Catalog, logg))
		})
		r.Route("/categories", func(r chi.Router) {
			r.Get("/", controllers.AdminCategoriesList(deps.Catalog, logg))
			r.Post("/", controllers.AdminCategoryCreate(deps.Catalog, logg))
			r.Patch("/{categoryId}", controllers.AdminCategoryUpdate(deps.Catalog, logg))
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/", controllers.AdminUsersList(deps.Users, logg))
			r.Get("/{userId}", controllers.AdminUserGet(deps.Users, logg))
			r.Patch("/{userId}/active", controllers.AdminUserSetActive(deps.Users, logg))
		})

		r.Route("/settings", func(r chi.Router) {
			r.Get("/", controllers.AdminSettingsList(deps.Settings, logg))
			r.Put("/{key}", controllers.AdminSettingUpsert(deps.Settings, logg))
		})
	})

	return r
}
