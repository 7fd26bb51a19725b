package main

import (
	"context"
	"log"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/storefront/api/handler"
	"github.com/fastygo/storefront/api/view"
	"github.com/fastygo/storefront/internal/config"
	"github.com/fastygo/storefront/internal/identity/adapters"
	"github.com/fastygo/storefront/internal/identity/adminapi"
	"github.com/fastygo/storefront/internal/infrastructure/buffer"
	"github.com/fastygo/storefront/internal/infrastructure/monitor"
	pgInfra "github.com/fastygo/storefront/internal/infrastructure/postgres"
	redisInfra "github.com/fastygo/storefront/internal/infrastructure/redis"
	"github.com/fastygo/storefront/internal/metrics"
	"github.com/fastygo/storefront/internal/middleware"
	"github.com/fastygo/storefront/internal/router"
	"github.com/fastygo/storefront/internal/services"
	"github.com/fastygo/storefront/internal/services/lifecycle"
	"github.com/fastygo/storefront/internal/session"
	"github.com/fastygo/storefront/pkg/httpcontext"
	"github.com/fastygo/storefront/pkg/logger"
	"github.com/fastygo/storefront/repository/postgres"
	redisRepo "github.com/fastygo/storefront/repository/redis"
	adminUC "github.com/fastygo/storefront/usecase/admin"
	authUC "github.com/fastygo/storefront/usecase/auth"
	catalogUC "github.com/fastygo/storefront/usecase/catalog"
	ordersUC "github.com/fastygo/storefront/usecase/orders"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	appCtx, stop := manager.Listen(context.Background())
	defer stop()

	if err := pgInfra.RunMigrations(cfg, zapLogger); err != nil {
		zapLogger.Fatal("migrations failed", zap.Error(err))
	}

	pool, err := pgInfra.NewPool(appCtx, cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("postgres connection failed", zap.Error(err))
	}
	manager.Register("postgres", func(ctx context.Context) error {
		pgInfra.Close(pool, zapLogger)
		return nil
	})

	redisClient, err := redisInfra.NewClient(appCtx, cfg.Redis)
	if err != nil {
		zapLogger.Fatal("redis connection failed", zap.Error(err))
	}
	manager.RegisterCloser("redis", redisClient)

	bufferStore, err := buffer.Open(cfg.Buffer.Path)
	if err != nil {
		zapLogger.Fatal("failed to open buffer store", zap.Error(err))
	}
	manager.RegisterCloser("buffer", bufferStore)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	appMetrics := metrics.New(registry)

	mon := monitor.New(
		monitor.PostgresPinger(pool),
		monitor.RedisPinger(redisClient),
		bufferStore,
		10*time.Second,
		zapLogger,
	)
	mon.OnRefresh(func(s monitor.Status) {
		appMetrics.SetBufferedOperations(s.BufferSize)
	})
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	userRepo := postgres.NewUserRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	orderRepo := postgres.NewOrderRepository(pool)
	sessionRepo := redisRepo.NewSessionRepository(redisClient, cfg.Session.TTL)

	bufferProcessor := services.NewBufferProcessor(
		bufferStore,
		mon,
		productRepo,
		zapLogger,
		services.ProcessorConfig{
			Interval:   cfg.Buffer.SyncInterval,
			BatchSize:  50,
			MaxRetries: cfg.Buffer.MaxRetry,
			Retention:  time.Duration(cfg.Buffer.RetentionHours) * time.Hour,
		},
	)
	bufferProcessor.OnSizeChange(appMetrics.SetBufferedOperations)
	bufferProcessor.Start()
	manager.Register("buffer_processor", func(ctx context.Context) error {
		bufferProcessor.Stop(ctx)
		return nil
	})

	authUseCase := authUC.New(userRepo, sessionRepo, zapLogger)
	catalogUseCase := catalogUC.New(productRepo, services.NewBufferBridge(bufferProcessor), zapLogger)
	ordersUseCase := ordersUC.New(orderRepo, zapLogger)
	adminUseCase := adminUC.New(zapLogger)
	adminUseCase.OnFailure(appMetrics.IncrementAdminListFailures)

	var lister adminUC.UserLister
	if cfg.Identity.URL != "" {
		lister = adminapi.New(adminapi.Config{
			BaseURL:    cfg.Identity.URL,
			ServiceKey: cfg.Identity.ServiceKey,
			Timeout:    cfg.Identity.Timeout,
		}, nil)
		zapLogger.Info("admin user list served by identity provider", zap.String("url", cfg.Identity.URL))
	} else {
		lister = adapters.NewUserStoreAdapter(userRepo)
	}

	var tokens *authUC.TokenIssuer
	if cfg.JWT.Secret != "" {
		tokens = authUC.NewTokenIssuer(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.TokenTTL)
	} else {
		zapLogger.Warn("JWT_SECRET not set, API tokens disabled")
	}

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)
	views := view.MustNew()

	gate := session.NewGate(
		session.NewProvider(authUseCase).ForRequest,
		ctxAdapter,
		zapLogger,
		session.WithLoginPath(cfg.Session.LoginPath),
		session.WithObserver(appMetrics),
	)

	handlers := router.Handlers{
		Auth: apiHandler.NewAuthHandler(authUseCase, tokens, ctxAdapter, zapLogger, apiHandler.AuthOptions{
			SessionTTL:   cfg.Session.TTL,
			SecureCookie: cfg.Session.SecureCookie,
			Views:        views,
			Observer:     appMetrics,
		}),
		Pages: apiHandler.NewPageHandler(apiHandler.PageDeps{
			Views:    views,
			Catalog:  catalogUseCase,
			Orders:   ordersUseCase,
			Admin:    adminUseCase,
			Lister:   lister,
			Observer: appMetrics,

			ProductCreated: appMetrics.IncrementProductsCreated,
		}, ctxAdapter, zapLogger),
		Products: apiHandler.NewProductHandler(catalogUseCase, ctxAdapter, zapLogger),
		Health:   apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	routerOpts := router.Options{
		EnablePprof: cfg.HTTP.EnablePprof,
		Logger:      zapLogger,
	}
	if cfg.HTTP.EnableMetrics {
		routerOpts.Metrics = fasthttpadaptor.NewFastHTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	authMiddleware := middleware.JWTAuth(cfg.JWT.Secret, cfg.JWT.Issuer, zapLogger)
	r := router.New(handlers, gate, authMiddleware, routerOpts)

	server := &fasthttp.Server{
		Handler:      r.Handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Concurrency:  cfg.HTTP.MaxConn,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started", zap.String("address", cfg.Address()))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Error("server stopped", zap.Error(err))
			stop()
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.ShutdownWithContext(ctx)
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
