package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appledger "github.com/hotelops/backend/internal/application/ledger"
	"github.com/hotelops/backend/internal/domain/shared"
	"github.com/hotelops/backend/internal/infrastructure/cache"
	"github.com/hotelops/backend/internal/infrastructure/config"
	"github.com/hotelops/backend/internal/infrastructure/logger"
	"github.com/hotelops/backend/internal/infrastructure/persistence"
	"github.com/hotelops/backend/internal/infrastructure/telemetry"
	"github.com/hotelops/backend/internal/interfaces/http/handler"
	"github.com/hotelops/backend/internal/interfaces/http/middleware"
	"github.com/hotelops/backend/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting Payment Ledger Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Initialize database connection
	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Idempotency store: Redis when configured, in-memory otherwise
	idempotencyStore, err := cache.NewIdempotencyStore(cfg.Redis, log)
	if err != nil {
		log.Fatal("Failed to initialize idempotency store", zap.Error(err))
	}
	defer func() {
		if err := idempotencyStore.Close(); err != nil {
			log.Error("Error closing idempotency store", zap.Error(err))
		}
	}()

	// Initialize repositories and unit of work
	uow := persistence.NewGormUnitOfWork(db.DB)
	partyRepo := persistence.NewGormPartyRepository(db.DB)

	// Initialize application services
	paymentService := appledger.NewPaymentService(uow, partyRepo, idempotencyStore,
		shared.IdempotencyConfig{TTL: cfg.Idempotency.TTL})
	billService := appledger.NewBillService(uow, partyRepo)
	queryService := appledger.NewQueryService(uow, partyRepo)

	// Initialize HTTP handlers
	paymentHandler := handler.NewPaymentHandler(paymentService, queryService)
	billHandler := handler.NewBillHandler(billService, queryService)
	systemHandler := handler.NewSystemHandler()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Middleware stack, in order: request ID, panic recovery, request
	// logging, metrics, CORS, then rate limiting
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(telemetry.GinMiddleware())
	engine.Use(middleware.CORS(cfg.HTTP))

	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	// Health and metrics endpoints (outside API versioning)
	engine.GET("/health", healthHandler(db))
	engine.GET("/metrics", telemetry.Handler())

	// API routes
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	ledgerRoutes := router.NewDomainGroup("ledger", "")

	// Bill entry and lookup
	ledgerRoutes.POST("/bills", billHandler.CreateBill)
	ledgerRoutes.GET("/bills", billHandler.ListBills)
	ledgerRoutes.GET("/bills/:number", billHandler.GetBill)

	// Payment recording and history
	ledgerRoutes.POST("/payments", paymentHandler.RecordPayment)
	ledgerRoutes.GET("/payments", paymentHandler.ListPayments)
	ledgerRoutes.GET("/payments/totals", paymentHandler.GetPaymentTotals)

	// Reconciliation views per party
	ledgerRoutes.GET("/parties/:id/outstanding", billHandler.GetOutstanding)
	ledgerRoutes.GET("/parties/:id/summary", billHandler.GetPartySummary)

	// System endpoints
	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)
	systemRoutes.GET("/ping", systemHandler.Ping)

	r.Register(ledgerRoutes)
	r.Register(systemRoutes)
	r.Setup()

	// Start HTTP server
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// Wait for shutdown signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	log.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited")
}

// healthHandler returns a handler for health check endpoints
func healthHandler(db *persistence.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"database": "unreachable",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"database": "connected",
		})
	}
}
