package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/amitrajput-dev/zelora-backend/api/routes"
	"github.com/amitrajput-dev/zelora-backend/internal/auth"
	"github.com/amitrajput-dev/zelora-backend/internal/cart"
	"github.com/amitrajput-dev/zelora-backend/internal/catalog"
	"github.com/amitrajput-dev/zelora-backend/internal/coupons"
	"github.com/amitrajput-dev/zelora-backend/internal/orders"
	"github.com/amitrajput-dev/zelora-backend/internal/payments"
	"github.com/amitrajput-dev/zelora-backend/internal/users"
	"github.com/amitrajput-dev/zelora-backend/pkg/config"
	"github.com/amitrajput-dev/zelora-backend/pkg/db"
	"github.com/amitrajput-dev/zelora-backend/pkg/logger"
	"github.com/amitrajput-dev/zelora-backend/pkg/migrate"
	"github.com/amitrajput-dev/zelora-backend/pkg/razorpay"
	"github.com/amitrajput-dev/zelora-backend/pkg/redis"
)

const webhookReplayTTL = 72 * time.Hour

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	userRepo := users.NewRepository(dbClient.DB())
	catalogRepo := catalog.NewRepository(dbClient.DB())
	cartRepo := cart.NewRepository(dbClient.DB())
	couponRepo := coupons.NewRepository(dbClient.DB())
	orderRepo := orders.NewRepository(dbClient.DB())
	paymentRepo := payments.NewRepository(dbClient.DB())

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       userRepo,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	userService, err := users.NewService(userRepo, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create user service", err)
		os.Exit(1)
	}

	catalogService, err := catalog.NewService(catalogRepo, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	cartService, err := cart.NewService(cartRepo, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	couponService, err := coupons.NewService(couponRepo, userRepo, dbClient, cfg.Checkout)
	if err != nil {
		logg.Error(context.Background(), "failed to create coupon service", err)
		os.Exit(1)
	}

	orderService, err := orders.NewService(orderRepo, cartRepo, userRepo, couponService, dbClient, cfg.Checkout)
	if err != nil {
		logg.Error(context.Background(), "failed to create order service", err)
		os.Exit(1)
	}

	replayGuard, err := payments.NewReplayGuard(redisClient, webhookReplayTTL, "razorpay-webhook")
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook replay guard", err)
		os.Exit(1)
	}

	paymentParams := payments.ServiceParams{
		Repo:      paymentRepo,
		OrderRepo: orderRepo,
		CartRepo:  cartRepo,
		Guard:     replayGuard,
		DBClient:  dbClient,
	}
	if cfg.Razorpay.Configured() {
		gateway, err := razorpay.NewClient(cfg.Razorpay)
		if err != nil {
			logg.Error(context.Background(), "failed to create razorpay client", err)
			os.Exit(1)
		}
		paymentParams.Gateway = gateway
	} else {
		logg.Warn(context.Background(), "razorpay not configured, online payments disabled")
	}

	paymentService, err := payments.NewService(paymentParams)
	if err != nil {
		logg.Error(context.Background(), "failed to create payment service", err)
		os.Exit(1)
	}

	router := routes.NewRouter(routes.Deps{
		Config:         cfg,
		Logger:         logg,
		DB:             dbClient,
		Redis:          redisClient,
		AuthService:    authService,
		UserService:    userService,
		CatalogService: catalogService,
		CartService:    cartService,
		CouponService:  couponService,
		OrderService:   orderService,
		PaymentService: paymentService,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case sig := <-shutdown:
		logg.Info(logg.WithField(ctx, "signal", sig.String()), "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
}
