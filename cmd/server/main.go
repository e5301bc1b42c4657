package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	employeeapp "github.com/ippis/backend/internal/application/employee"
	"github.com/ippis/backend/internal/application/importer"
	regapp "github.com/ippis/backend/internal/application/registration"
	"github.com/ippis/backend/internal/infrastructure/cache"
	"github.com/ippis/backend/internal/infrastructure/config"
	"github.com/ippis/backend/internal/infrastructure/logger"
	"github.com/ippis/backend/internal/infrastructure/metrics"
	"github.com/ippis/backend/internal/infrastructure/migration"
	"github.com/ippis/backend/internal/infrastructure/notification"
	"github.com/ippis/backend/internal/infrastructure/persistence"
	"github.com/ippis/backend/internal/infrastructure/storage"
	"github.com/ippis/backend/internal/infrastructure/telemetry"
	"github.com/ippis/backend/internal/infrastructure/verification"
	"github.com/ippis/backend/internal/interfaces/http/handler"
	"github.com/ippis/backend/internal/interfaces/http/middleware"
	"github.com/ippis/backend/internal/interfaces/http/router"
	"github.com/ippis/backend/migrations"
	"go.uber.org/zap"
)

const (
	ninLookupLimit  = 20
	ninLookupWindow = time.Minute
	shutdownTimeout = 30 * time.Second
)

//	@title			IPPIS Registration API
//	@version		1.0
//	@description	Self-service employee registration and administrative review for the Integrated Personnel and Payroll Information System

//	@host		localhost:8080
//	@BasePath	/api/v1

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	logCfg := logger.ForEnvironment(cfg.App.Env)
	logCfg.Level = cfg.Log.Level
	logCfg.Format = cfg.Log.Format
	logCfg.Output = cfg.Log.Output
	log, err := logger.New(logCfg)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting IPPIS backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	ctx := context.Background()

	// Telemetry
	telem, err := telemetry.Setup(ctx, telemetry.ConfigFrom(cfg.Telemetry), log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer func() {
		if err := telem.Shutdown(context.Background()); err != nil {
			log.Warn("Telemetry shutdown failed", zap.Error(err))
		}
	}()
	log = telem.Bridge(log, logger.ParseLevel(cfg.Log.Level))

	meter := telem.Meter("github.com/ippis/backend")
	workflowMetrics, err := metrics.NewWorkflowMetrics(meter)
	if err != nil {
		log.Fatal("Failed to register workflow metrics", zap.Error(err))
	}
	httpMetrics, err := middleware.NewHTTPMetrics(meter)
	if err != nil {
		log.Fatal("Failed to register HTTP metrics", zap.Error(err))
	}

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh),
		logger.WithFullSQL(cfg.Telemetry.DBLogFullSQL),
	)
	dbTracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
	}, log)
	db, err := persistence.NewDatabase(&cfg.Database, persistence.WithLogger(gormLog), persistence.WithPlugins(dbTracing))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	if cfg.Database.AutoMigrate {
		if err := migrate(db, log); err != nil {
			log.Fatal("Failed to apply migrations", zap.Error(err))
		}
	}

	// Verification provider, cached
	verificationCache, err := cache.NewFactory(cfg.Redis, cache.WithLogger(log)).Create(ctx)
	if err != nil {
		log.Fatal("Failed to create verification cache", zap.Error(err))
	}
	defer func() { _ = verificationCache.Close() }()
	verifier := verification.NewCachingVerifier(
		verification.NewClient(cfg.Verification, verification.WithLogger(log)),
		verificationCache, cfg.Verification.CacheTTL, log,
	)

	documents, err := storage.New(ctx, &cfg.Storage, log)
	if err != nil {
		log.Fatal("Failed to initialize document storage", zap.Error(err))
	}
	notifier := notification.NewLogNotifier(log)

	// Repositories and services
	registrationRepo := persistence.NewGormRegistrationRepository(db.DB)
	employeeRepo := persistence.NewGormEmployeeRepository(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)

	workflowService := regapp.NewWorkflowService(registrationRepo, txScope, verifier, documents, log,
		regapp.WithWorkflowMetrics(workflowMetrics),
		regapp.WithMaxUploadSize(cfg.Storage.MaxUploadSize),
	)
	reviewService := regapp.NewReviewService(registrationRepo, txScope, log,
		regapp.WithNotifier(notifier),
		regapp.WithReviewMetrics(workflowMetrics),
		regapp.WithDocumentStorage(documents),
	)
	employeeService := employeeapp.NewEmployeeService(employeeRepo, registrationRepo, log)
	importService := importer.NewRegistrationImportService(registrationRepo, txScope, workflowMetrics, log)

	// Handlers
	hideErrors := cfg.App.IsProduction()
	registrationHandler := handler.NewRegistrationHandler(workflowService)
	registrationHandler.HideInternalErrors = hideErrors
	reviewHandler := handler.NewReviewHandler(reviewService)
	reviewHandler.HideInternalErrors = hideErrors
	employeeHandler := handler.NewEmployeeHandler(employeeService)
	employeeHandler.HideInternalErrors = hideErrors
	importHandler := handler.NewImportHandler(importService)
	importHandler.HideInternalErrors = hideErrors
	healthHandler := handler.NewHealthHandler(db.Ping)

	// Engine
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Invalid trusted proxies", zap.Error(err))
	}
	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	corsCfg.AllowMethods = cfg.HTTP.CORSAllowMethods
	corsCfg.AllowHeaders = cfg.HTTP.CORSAllowHeaders

	engine.Use(
		logger.Recovery(log),
		middleware.RequestID(),
		logger.GinMiddleware(log),
		middleware.Secure(),
		middleware.CORSWithConfig(corsCfg),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
		middleware.Tracing(middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     telem.Enabled(),
		}),
		httpMetrics.Middleware(),
	)

	engine.GET("/health", healthHandler.Health)

	ninLimiter := middleware.NewRateLimiter(ninLookupLimit, ninLookupWindow)
	defer ninLimiter.Stop()

	router.NewRouter(engine, router.WithAPIDocs(cfg.HTTP.APIDocs)).
		Register(router.RegistrationRoutes(registrationHandler, middleware.RateLimit(ninLimiter))...).
		Register(router.AdminRoutes(reviewHandler, employeeHandler, importHandler)).
		Setup()

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
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	log.Info("Server exited gracefully")
}

// migrate applies the embedded schema migrations
func migrate(db *persistence.Database, log *zap.Logger) error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	m, err := migration.NewFromFS(sqlDB, migrations.FS, log)
	if err != nil {
		return err
	}
	return m.Up()
}
