package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/amitrajput-dev/zelora-backend/api/controllers"
	"github.com/amitrajput-dev/zelora-backend/api/middleware"
	"github.com/amitrajput-dev/zelora-backend/internal/auth"
	"github.com/amitrajput-dev/zelora-backend/internal/cart"
	"github.com/amitrajput-dev/zelora-backend/internal/catalog"
	"github.com/amitrajput-dev/zelora-backend/internal/coupons"
	"github.com/amitrajput-dev/zelora-backend/internal/orders"
	"github.com/amitrajput-dev/zelora-backend/internal/payments"
	"github.com/amitrajput-dev/zelora-backend/internal/users"
	"github.com/amitrajput-dev/zelora-backend/pkg/config"
	"github.com/amitrajput-dev/zelora-backend/pkg/db"
	"github.com/amitrajput-dev/zelora-backend/pkg/enums"
	"github.com/amitrajput-dev/zelora-backend/pkg/logger"
	"github.com/amitrajput-dev/zelora-backend/pkg/redis"
)

// Deps bundles everything the router needs. Optional members (redis) may be
// nil; the routes that need them degrade gracefully.
type Deps struct {
	Config *config.Config
	Logger *logger.Logger

	DB    *db.Client
	Redis *redis.Client

	AuthService    auth.Service
	UserService    users.Service
	CatalogService catalog.Service
	CartService    cart.Service
	CouponService  coupons.Service
	OrderService   orders.Service
	PaymentService payments.Service
}

// NewRouter assembles the full HTTP surface.
func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	var cache controllers.Pinger
	if deps.Redis != nil {
		cache = deps.Redis
	}
	healthCtrl := controllers.NewHealthController(deps.DB, cache, logg)
	authCtrl := controllers.NewAuthController(deps.AuthService, logg)
	userCtrl := controllers.NewUserController(deps.UserService, logg)
	productCtrl := controllers.NewProductController(deps.CatalogService, logg)
	cartCtrl := controllers.NewCartController(deps.CartService, logg)
	couponCtrl := controllers.NewCouponController(deps.CouponService, logg)
	orderCtrl := controllers.NewOrderController(deps.OrderService, logg)
	paymentCtrl := controllers.NewPaymentController(deps.PaymentService, logg)
	webhookCtrl := controllers.NewWebhookController(deps.PaymentService, logg)

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", healthCtrl.Live)
		r.Get("/ready", healthCtrl.Ready)
	})

	var limiter middleware.RateLimiterStore
	if deps.Redis != nil {
		limiter = deps.Redis
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(limiter, logg, middleware.RegisterPolicy(cfg.AuthRateLimit))).
			Post("/register", authCtrl.Register)
		r.With(middleware.AuthRateLimit(limiter, logg, middleware.LoginPolicy(cfg.AuthRateLimit))).
			Post("/login", authCtrl.Login)
	})

	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", productCtrl.List)
		r.Get("/{idOrSlug}", productCtrl.Get)
	})

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/razorpay", webhookCtrl.Razorpay)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RequireAuth(cfg.JWT, logg))

		r.Route("/me", func(r chi.Router) {
			r.Get("/", userCtrl.Profile)
			r.Route("/addresses", func(r chi.Router) {
				r.Get("/", userCtrl.ListAddresses)
				r.Post("/", userCtrl.AddAddress)
				r.Put("/{addressID}", userCtrl.UpdateAddress)
				r.Delete("/{addressID}", userCtrl.DeleteAddress)
			})
			r.Route("/favorites", func(r chi.Router) {
				r.Get("/", userCtrl.ListFavorites)
				r.Post("/{productID}", userCtrl.ToggleFavorite)
			})
			r.Route("/wallet", func(r chi.Router) {
				r.Post("/convert", couponCtrl.ConvertWallet)
				r.Get("/coupons", couponCtrl.MyWalletCoupons)
			})
		})

		r.Post("/coupons/validate", couponCtrl.Validate)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartCtrl.Get)
			r.Post("/items", cartCtrl.Add)
			r.Put("/items", cartCtrl.UpdateQuantity)
			r.Delete("/items", cartCtrl.Remove)
			r.Delete("/", cartCtrl.Clear)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Post("/checkout", orderCtrl.Checkout)
			r.Get("/", orderCtrl.ListMine)
			r.Get("/{orderID}", orderCtrl.GetMine)
			r.Post("/{orderID}/cancel", orderCtrl.Cancel)
		})

		r.Route("/payments", func(r chi.Router) {
			r.Post("/order", paymentCtrl.CreateGatewayOrder)
			r.Post("/verify", paymentCtrl.Verify)
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.RequireAuth(cfg.JWT, logg))
		r.Use(middleware.RequireRole(logg, enums.UserRoleAdmin))

		r.Route("/products", func(r chi.Router) {
			r.Get("/", productCtrl.AdminList)
			r.Get("/low-stock", productCtrl.LowStock)
			r.Post("/", productCtrl.Create)
			r.Put("/{productID}", productCtrl.Update)
			r.Delete("/{productID}", productCtrl.Delete)
		})

		r.Route("/coupons", func(r chi.Router) {
			r.Get("/", couponCtrl.List)
			r.Post("/", couponCtrl.Create)
			r.Patch("/{couponID}/active", couponCtrl.SetActive)
			r.Delete("/{couponID}", couponCtrl.Delete)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", orderCtrl.AdminList)
			r.Patch("/{orderID}/status", orderCtrl.AdminUpdateStatus)
			r.Get("/{orderID}/payments", paymentCtrl.ByOrder)
			r.Post("/{orderID}/cod-collected", paymentCtrl.MarkCODCollected)
		})

		r.Route("/payments", func(r chi.Router) {
			r.Get("/", paymentCtrl.AdminList)
		})

		r.Post("/wallet/credit", userCtrl.CreditWallet)
	})

	return r
}
