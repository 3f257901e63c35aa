package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"care-registry/config"
	"care-registry/internal/delivery/dto"
	deliveryHttp "care-registry/internal/delivery/http"
	"care-registry/internal/delivery/http/handler"
	"care-registry/internal/delivery/http/middleware"
	domainRepo "care-registry/internal/domain/repository"
	"care-registry/internal/infrastructure/cache"
	"care-registry/internal/infrastructure/database"
	"care-registry/internal/repository"
	"care-registry/internal/service"
	"care-registry/internal/usecase"
	"care-registry/pkg/metrics"
	"care-registry/pkg/validator"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	serviceName        = "care_registry"
	cacheWarmupTimeout = 30 * time.Second
)

// App holds all dependencies for the application
type App struct {
	Config      *config.Config
	DB          *gorm.DB
	RedisClient *redis.Client
	Server      *http.Server
}

// New creates a new App instance with all dependencies initialized
func New() (*App, error) {
	app := &App{}

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	app.Config = cfg

	// Setup logger
	setupLogger(cfg.Log)
	logrus.Info("Configuration loaded successfully")

	// Initialize database
	db, err := database.NewPostgresConnection(cfg.DB, cfg.App.IsProduction())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = db
	logrus.Info("Database connected successfully")

	if cfg.DB.AutoMigrate {
		if err := database.Migrate(db, logrus.StandardLogger()); err != nil {
			app.Close()
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	// Initialize Redis (optional)
	redisClient, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	app.RedisClient = redisClient

	if redisClient != nil && cfg.Cache.Warmup && cfg.Cache.TTL > 0 {
		warmCache(db, redisClient, cfg.Cache.TTL)
	}

	// Initialize all layers
	app.Server = initializeServer(cfg, db, redisClient)

	return app, nil
}

// warmCache preloads the existence cache. A failed warm-up only costs cache hits.
func warmCache(db *gorm.DB, redisClient *redis.Client, ttl time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), cacheWarmupTimeout)
	defer cancel()

	warmup := service.NewCacheWarmupService(db, redisClient, logrus.StandardLogger(), ttl)
	if _, err := warmup.WarmOnStartup(ctx); err != nil {
		logrus.Warnf("Existence cache warm-up failed: %+v", err)
	}
}

// setupLogger configures the logrus logger
func setupLogger(cfg config.LogConfig) {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		logrus.Warnf("Unknown log level %q, using info", cfg.Level)
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
}

// initializeServer creates and configures the HTTP server
func initializeServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) *http.Server {
	// Initialize logger
	log := logrus.StandardLogger()

	// Initialize metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(serviceName, registry)

	// Initialize validator
	customValidator := validator.NewValidator(dto.WithOptionalStrings())

	// Initialize repositories
	cacheOpts := repository.CacheOptions{TTL: cfg.Cache.TTL, Negative: cfg.Cache.Negative}
	providerRepo := repository.NewCachedRecordStore(repository.NewProviderRepository(db), redisClient, log, domainRepo.StoreProviders, cacheOpts)
	patientRepo := repository.NewCachedRecordStore(repository.NewPatientRepository(db), redisClient, log, domainRepo.StorePatients, cacheOpts)

	// Initialize usecases
	existenceUsecase := usecase.NewExistenceUsecase(log, providerRepo, patientRepo, collector)

	// Initialize handlers
	existenceHandler := handler.NewExistenceHandler(existenceUsecase, customValidator, log)
	healthHandler := handler.NewHealthHandler(healthChecks(db, redisClient), log)

	// Initialize middleware
	corsMiddleware := middleware.NewCORSMiddleware()
	loggingMiddleware := middleware.NewLoggingMiddleware(log)
	metricsMiddleware := middleware.NewMetricsMiddleware(collector)

	// Initialize router
	router := deliveryHttp.NewRouter(existenceHandler, healthHandler, collector.Handler(), corsMiddleware, loggingMiddleware, metricsMiddleware)
	httpRouter := router.Setup()

	// Create server
	serverAddr := fmt.Sprintf(":%s", cfg.App.Port)
	return &http.Server{
		Addr:              serverAddr,
		Handler:           httpRouter,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// healthChecks builds the readiness checks for the configured dependencies
func healthChecks(db *gorm.DB, redisClient *redis.Client) map[string]handler.HealthCheck {
	checks := map[string]handler.HealthCheck{
		"database": func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}

	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}
	}

	return checks
}

// Run starts the HTTP server and handles graceful shutdown
func (app *App) Run() {
	// Start server in goroutine
	go func() {
		logrus.Infof("Server starting on port %s", app.Config.App.Port)
		logrus.Infof("Environment: %s", app.Config.App.Env)
		if err := app.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	app.waitForShutdown()
}

// waitForShutdown blocks until an interrupt signal is received
func (app *App) waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown HTTP server gracefully
	if err := app.Server.Shutdown(ctx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	// Close connections
	app.Close()

	logrus.Info("Server shutdown complete")
}

// Close closes all connections (database, redis, etc.)
func (app *App) Close() {
	// Close database connection
	if app.DB != nil {
		sqlDB, err := app.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}

	// Close Redis connection
	if app.RedisClient != nil {
		app.RedisClient.Close()
	}
}
