package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	appcatalog "github.com/storecore/backend/internal/application/catalog"
	appinventory "github.com/storecore/backend/internal/application/inventory"
	apporder "github.com/storecore/backend/internal/application/order"
	apppayment "github.com/storecore/backend/internal/application/payment"
	apppos "github.com/storecore/backend/internal/application/pos"
	appreturns "github.com/storecore/backend/internal/application/returns"
	"github.com/storecore/backend/internal/domain/shared"
	"github.com/storecore/backend/internal/infrastructure/auth"
	"github.com/storecore/backend/internal/infrastructure/cache"
	"github.com/storecore/backend/internal/infrastructure/config"
	"github.com/storecore/backend/internal/infrastructure/event"
	"github.com/storecore/backend/internal/infrastructure/logger"
	"github.com/storecore/backend/internal/infrastructure/persistence"
	"github.com/storecore/backend/internal/infrastructure/telemetry"
	"github.com/storecore/backend/internal/interfaces/http/handler"
	"github.com/storecore/backend/internal/interfaces/http/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting storecore backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Tracing and continuous profiling, both no-ops when disabled.
	ctx := context.Background()
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	defer func() {
		if err := tracerProvider.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	// OTLP log and metric pipelines share the collector endpoint with traces.
	loggerProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize logger provider", zap.Error(err))
	}
	defer func() {
		if err := loggerProvider.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down logger provider", zap.Error(err))
		}
	}()
	if loggerProvider.IsEnabled() {
		log = logger.AttachOtelBridge(log, loggerProvider.Provider(), cfg.Telemetry.ServiceName)
	}

	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	defer func() {
		if err := meterProvider.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down meter provider", zap.Error(err))
		}
	}()

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:           cfg.Telemetry.ProfilerEnabled,
		ServerAddress:     cfg.Telemetry.ProfilerEndpoint,
		ApplicationName:   cfg.Telemetry.ServiceName,
		ProfileCPU:        true,
		ProfileInuseSpace: true,
		ProfileGoroutines: true,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize profiler", zap.Error(err))
	}
	defer func() {
		if err := profiler.Stop(); err != nil {
			log.Error("Error stopping profiler", zap.Error(err))
		}
	}()
	if cfg.Telemetry.Enabled && cfg.Telemetry.ProfilerEnabled {
		if err := tracerProvider.EnableSpanProfiles(); err != nil {
			log.Warn("Failed to enable span profiles", zap.Error(err))
		}
	}

	// Database with zap-backed GORM logging.
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected")

	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		dbTracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
			Enabled:          true,
			SlowQueryThresh:  200 * time.Millisecond,
			DBSystem:         "postgresql",
			WithoutVariables: true,
		}, log)
		if err := dbTracing.RegisterOtelGorm(db.DB); err != nil {
			log.Warn("Failed to register database tracing", zap.Error(err))
		}
	}

	// Webhook duplicate suppression. Redis when reachable, in-memory
	// otherwise; the DB-level idempotency check backs both.
	storeFactory := cache.NewIdempotencyStoreFactory(cfg.Redis, cache.WithLogger(log))
	idempotencyStore, err := storeFactory.CreateStore()
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}

	// Repositories and the transactional scope.
	productRepo := persistence.NewGormProductRepository(db.DB)
	variantRepo := persistence.NewGormVariantRepository(db.DB)
	ledgerRepo := persistence.NewGormLedgerRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	shipmentRepo := persistence.NewGormShipmentRepository(db.DB)
	transactionRepo := persistence.NewGormTransactionRepository(db.DB)
	returnRepo := persistence.NewGormReturnRepository(db.DB)
	scope := persistence.NewGormScope(db.DB)

	deliveryFee, err := decimal.NewFromString(cfg.Store.DeliveryFee)
	if err != nil {
		log.Fatal("Invalid delivery fee in configuration",
			zap.String("delivery_fee", cfg.Store.DeliveryFee),
			zap.Error(err),
		)
	}

	// Application services.
	catalogService := appcatalog.NewCatalogService(productRepo, variantRepo)
	stockService := appinventory.NewStockService(scope, variantRepo, ledgerRepo)
	orderService := apporder.NewOrderService(scope, orderRepo, deliveryFee, log)
	shipmentService := apporder.NewShipmentService(scope, shipmentRepo, log)
	saleService := apppos.NewSaleService(scope, stockService, log)
	returnService := appreturns.NewReturnService(scope, returnRepo, stockService, log)
	reconciliationService := apppayment.NewReconciliationService(scope, transactionRepo, stockService, log)
	reconciliationService.SetIdempotencyStore(idempotencyStore)

	// Event bus with idempotent side-effect handlers: low-stock alerts
	// from inventory adjustments, refund obligations from cancelled paid
	// orders.
	eventBus := event.NewInMemoryEventBus(log)
	handlers := event.WrapHandlersWithIdempotency(
		[]shared.EventHandler{
			appinventory.NewLowStockHandler(log),
			apppayment.NewRefundRequiredHandler(transactionRepo, log),
		},
		idempotencyStore,
		log,
	)
	for _, h := range handlers {
		eventBus.Subscribe(h)
	}
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	stockService.SetEventPublisher(eventBus)
	orderService.SetEventPublisher(eventBus)
	saleService.SetEventPublisher(eventBus)
	returnService.SetEventPublisher(eventBus)
	shipmentService.SetEventPublisher(eventBus)
	reconciliationService.SetEventPublisher(eventBus)

	// Auth. The blacklist holds revoked token IDs; in-memory is enough for
	// a single-instance deployment.
	jwtService := auth.NewJWTService(cfg.JWT)
	tokenBlacklist := auth.NewInMemoryTokenBlacklist()

	engine := router.New(router.Dependencies{
		Config:         cfg,
		Logger:         log,
		JWTService:     jwtService,
		TokenBlacklist: tokenBlacklist,

		System:    handler.NewSystemHandler(db, cfg.App.Name, cfg.App.Env),
		Catalog:   handler.NewCatalogHandler(catalogService),
		Inventory: handler.NewInventoryHandler(stockService),
		Orders:    handler.NewOrderHandler(orderService),
		POS:       handler.NewPOSHandler(saleService),
		Returns:   handler.NewReturnHandler(returnService),
		Shipments: handler.NewShipmentHandler(shipmentService),
		Payments:  handler.NewPaymentHandler(reconciliationService),
	})

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
