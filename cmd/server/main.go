package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	inventoryapp "github.com/pharmacore/backend/internal/application/inventory"
	pricingapp "github.com/pharmacore/backend/internal/application/pricing"
	"github.com/pharmacore/backend/internal/domain/catalog"
	"github.com/pharmacore/backend/internal/domain/pricing"
	"github.com/pharmacore/backend/internal/infrastructure/config"
	"github.com/pharmacore/backend/internal/infrastructure/event"
	"github.com/pharmacore/backend/internal/infrastructure/logger"
	"github.com/pharmacore/backend/internal/infrastructure/persistence"
	"github.com/pharmacore/backend/internal/infrastructure/strategy/batch"
	"github.com/pharmacore/backend/internal/interfaces/http/handler"
	"github.com/pharmacore/backend/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
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

	log.Info("Starting PharmaCore Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize repositories
	itemRepo := persistence.NewGormItemRepository(db.DB)
	ledgerRepo := persistence.NewGormLedgerRepository(db.DB)
	reorderRepo := persistence.NewGormReorderSuggestionRepository(db.DB)
	txManager := persistence.NewGormStockTxManager(db.DB)

	// Initialize event bus
	eventBus := event.NewInMemoryEventBus(log)

	// Domain services
	converter := catalog.NewConversionResolver()
	priceResolver := pricing.NewPriceResolver(converter, pricing.Defaults{
		MarkupPercent: decimal.NewFromFloat(cfg.Pricing.DefaultMarkupPercent),
		RoundingRule:  catalog.RoundingRule(strings.ToUpper(cfg.Pricing.DefaultRoundingRule)),
	})
	batchStrategy := batch.NewFEFOBatchStrategy()

	// Initialize application services
	stockService := inventoryapp.NewStockService(
		itemRepo,
		txManager,
		ledgerRepo,
		reorderRepo,
		batchStrategy,
		converter,
		priceResolver,
		inventoryapp.ReplenishmentSettings{
			Enabled:              cfg.Replenishment.Enabled,
			DefaultThresholdBase: decimal.NewFromFloat(cfg.Replenishment.DefaultThresholdBase),
		},
		log,
	)
	stockService.SetEventPublisher(eventBus)
	quoteService := pricingapp.NewQuoteService(itemRepo, priceResolver, log)

	// Initialize HTTP handlers
	stockHandler := handler.NewStockHandler(stockService)
	pricingHandler := handler.NewPricingHandler(quoteService)
	systemHandler := handler.NewSystemHandler(db)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(logger.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))

	// Setup API routes
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(stockHandler).
		Register(pricingHandler).
		Register(systemHandler)
	r.Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
