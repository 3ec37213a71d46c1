package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"github.com/Skotchmaster/storefront/internal/config"
	"github.com/Skotchmaster/storefront/internal/httpserver"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/payment"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/search"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/pkg/cache"
	pkgconfig "github.com/Skotchmaster/storefront/pkg/config"
	pkgdb "github.com/Skotchmaster/storefront/pkg/db"
	"github.com/Skotchmaster/storefront/pkg/events"
	"github.com/Skotchmaster/storefront/pkg/logging"
	middleware "github.com/Skotchmaster/storefront/pkg/middleware/auth"
	"github.com/Skotchmaster/storefront/pkg/middleware/csrf"
	loggingmw "github.com/Skotchmaster/storefront/pkg/middleware/logging"
	"github.com/Skotchmaster/storefront/pkg/telemetry"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: could not load .env: %v", err)
	}

	cfg := pkgconfig.Load()
	pay := config.LoadPayment()

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	if err := pkgconfig.Require(map[string]string{
		"DATABASE_URL": cfg.DatabaseURL,
		"JWT_SECRET":   string(cfg.JWTAccessSecret),
	}); err != nil {
		logger.Error("config_error", "error", err)
		os.Exit(1)
	}

	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := telemetry.Init(rootCtx, cfg.ServiceName, cfg.OTLPEndpoint)
	if err != nil {
		logger.Warn("telemetry_error", "error", err)
	}

	ctx, cancel := context.WithTimeout(rootCtx, 10*time.Second)
	db, err := pkgdb.Open(ctx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		logger.Error("db_open_error", "error", err)
		os.Exit(1)
	}
	if err := db.AutoMigrate(models.All()...); err != nil {
		logger.Error("db_migrate_error", "error", err)
		os.Exit(1)
	}

	pages := cache.Connect(rootCtx, cfg.RedisURL, logger)
	publisher, closeEvents := events.New(cfg.KafkaBrokers)

	var index service.ProductIndex
	es, err := search.New(rootCtx, search.Config{
		URL:      cfg.ESURL,
		Username: cfg.ESUser,
		Password: cfg.ESPassword,
		Index:    cfg.ESIndex,
	}, logger)
	switch {
	case err != nil:
		logger.Warn("search_unavailable", "error", err)
	case es != nil:
		if err := es.EnsureIndex(rootCtx); err != nil {
			logger.Warn("search_index_error", "error", err)
		}
		index = es
	}

	var gateway interface {
		payment.Gateway
		payment.WebhookVerifier
	} = payment.Unconfigured{}
	if stripeGW, err := payment.NewStripe(payment.StripeConfig{
		APIKey:        pay.StripeAPIKey,
		WebhookSecret: pay.StripeWebhookSecret,
	}); err != nil {
		logger.Warn("payment_gateway_unconfigured", "error", err)
	} else {
		gateway = stripeGW
	}

	r := repo.New(db)
	cartSvc := &service.CartService{Repo: r, Cache: pages, Events: publisher, Money: pay.Money}
	secure := cfg.IsProduction()

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(otelecho.Middleware(cfg.ServiceName))
	e.Use(loggingmw.RequestLogger(logger))
	if len(cfg.CORSOrigins) > 0 {
		e.Use(echomw.CORSWithConfig(echomw.CORSConfig{AllowOrigins: cfg.CORSOrigins, AllowCredentials: true}))
	}
	if cfg.CSRFEnabled {
		csrfCfg := csrf.DefaultConfig()
		csrfCfg.Secure = secure
		csrfCfg.SkipPrefixes = []string{"/webhooks/", "/health/"}
		e.Use(csrf.Middleware(csrfCfg))
	}

	httpserver.Register(e, &httpserver.Deps{
		DB:             db,
		Auth:           middleware.New(cfg.JWTAccessSecret, secure),
		DetailedErrors: !cfg.IsProduction(),
		AuthHandler: &httpserver.AuthHTTP{
			Svc: &service.AuthService{
				Repo:      r,
				JWTSecret: cfg.JWTAccessSecret,
				AccessTTL: time.Duration(cfg.AccessTokenTTL) * time.Minute,
			},
			Cart:         cartSvc,
			SecureCookie: secure,
		},
		CatalogHandler: &httpserver.CatalogHTTP{
			Svc:     &service.CatalogService{Repo: r, Search: index, Cache: pages},
			Cart:    cartSvc,
			Reviews: &service.ReviewService{Repo: r, Cache: pages},
			Cache:   pages,
		},
		CartHandler:      &httpserver.CartHTTP{Svc: cartSvc, SecureCookie: secure},
		GuestCartHandler: &httpserver.GuestCartHTTP{Cart: cartSvc, SecureCookie: secure},
		AddressHandler:   &httpserver.AddressHTTP{Svc: &service.AddressService{Repo: r}},
		CheckoutHandler: &httpserver.CheckoutHTTP{
			Svc:     &service.CheckoutService{Repo: r, Gateway: gateway, Money: pay.Money, Events: publisher},
			BaseURL: cfg.BaseURL,
		},
		WebhookHandler: &httpserver.WebhookHTTP{
			Svc: &service.FulfillmentService{Repo: r, Verifier: gateway, Cache: pages, Events: publisher},
		},
		OrderHandler: &httpserver.OrderHTTP{Svc: &service.OrderService{Repo: r, Money: pay.Money}},
	})

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
	}

	go func() {
		logger.Info("storefront listening", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("listen_error", "error", err)
			stop()
		}
	}()

	<-rootCtx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("shutdown_error", "error", err)
	}
	if err := closeEvents(); err != nil {
		logger.Warn("events_close_error", "error", err)
	}
	if err := pages.Close(); err != nil {
		logger.Warn("cache_close_error", "error", err)
	}
	if shutdownTelemetry != nil {
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			logger.Warn("telemetry_shutdown_error", "error", err)
		}
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}

	logger.Info("storefront stopped")
}
