package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nexxintel-tech/VeriHealthMVP-sub000/config"
	deliveryHttp "github.com/nexxintel-tech/VeriHealthMVP-sub000/internal/delivery/http"
	"github.com/nexxintel-tech/VeriHealthMVP-sub000/internal/delivery/http/handler"
	"github.com/nexxintel-tech/VeriHealthMVP-sub000/internal/delivery/http/middleware"
	"github.com/nexxintel-tech/VeriHealthMVP-sub000/internal/infrastructure/cache"
	"github.com/nexxintel-tech/VeriHealthMVP-sub000/internal/infrastructure/database"
	"github.com/nexxintel-tech/VeriHealthMVP-sub000/internal/infrastructure/ratelimit"
	"github.com/nexxintel-tech/VeriHealthMVP-sub000/internal/repository"
	"github.com/nexxintel-tech/VeriHealthMVP-sub000/internal/service"
	"github.com/nexxintel-tech/VeriHealthMVP-sub000/internal/usecase"
	"github.com/nexxintel-tech/VeriHealthMVP-sub000/pkg/jwt"
	"github.com/nexxintel-tech/VeriHealthMVP-sub000/pkg/validator"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	rateLimitSweepInterval = time.Minute
	startupSyncTimeout     = 30 * time.Second
)

// App holds all dependencies for the application
type App struct {
	Config      *config.Config
	DB          *gorm.DB
	RedisClient *redis.Client
	Server      *http.Server

	// cancelBackground stops goroutines started during initialization.
	cancelBackground context.CancelFunc
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
	log := setupLogger(cfg.App.LogLevel)
	log.Info("Configuration loaded successfully")

	// Run migrations before GORM opens its pool
	if cfg.DB.AutoMigrate {
		if err := database.RunMigrations(cfg.DB, log); err != nil {
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	// Initialize database
	db, err := database.NewPostgresConnection(cfg.DB, cfg.App.Env, log)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = db
	log.Info("Database connected successfully")

	// Initialize Redis
	ctx, cancel := context.WithTimeout(context.Background(), startupSyncTimeout)
	defer cancel()

	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis, log)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	app.RedisClient = redisClient
	log.Info("Redis connected successfully")

	bgCtx, cancelBackground := context.WithCancel(context.Background())
	app.cancelBackground = cancelBackground

	// Initialize all layers
	server, err := initializeServer(ctx, bgCtx, cfg, db, redisClient, log)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Server = server

	return app, nil
}

// setupLogger configures the logrus logger
func setupLogger(level string) *logrus.Logger {
	log := logrus.StandardLogger()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	log.SetLevel(parsed)
	return log
}

// newRateLimitStore picks the limiter backend. The in-memory store is swept in the
// background until bgCtx is cancelled.
func newRateLimitStore(bgCtx context.Context, cfg config.RateLimitConfig, redisClient *redis.Client, log *logrus.Logger) (ratelimit.Store, error) {
	switch cfg.Backend {
	case "redis":
		return ratelimit.NewRedisStore(redisClient), nil
	case "memory":
		store := ratelimit.NewMemoryStore(nil)
		go store.RunSweeper(bgCtx, rateLimitSweepInterval)
		log.Warn("Using in-memory rate limit store, limits are per instance")
		return store, nil
	default:
		return nil, fmt.Errorf("unknown rate limit backend %q", cfg.Backend)
	}
}

// initializeServer creates and configures the HTTP server
func initializeServer(ctx, bgCtx context.Context, cfg *config.Config, db *gorm.DB, redisClient *redis.Client, log *logrus.Logger) (*http.Server, error) {
	// Initialize JWT service
	jwtService := jwt.NewJWTService(cfg.JWT)

	// Initialize validator
	customValidator := validator.NewValidator()

	// Initialize repositories
	userRepo := repository.NewUserRepository()
	profileRepo := repository.NewUserProfileRepository()
	patientRepo := repository.NewPatientRepository()
	institutionRepo := repository.NewInstitutionRepository()
	alertRepo := repository.NewAlertRepository()
	vitalRepo := repository.NewVitalReadingRepository()
	dashboardRepo := repository.NewDashboardRepository()
	auditLogRepo := repository.NewAuditLogRepository()

	// Initialize services
	tokens := cache.NewRedisTokenStore(redisClient)
	auditService := service.NewAuditService(log, auditLogRepo)
	identityService := service.NewIdentityService(db, log, jwtService, tokens, userRepo)

	// Sessions of accounts rejected while Redis was unreachable are revoked before serving.
	sessionSync := service.NewSessionSyncService(db, redisClient, log, userRepo, tokens)
	if _, err := sessionSync.SyncOnStartup(ctx); err != nil {
		log.Warnf("Session re-sync failed, continuing startup: %+v", err)
	}

	rateLimitStore, err := newRateLimitStore(bgCtx, cfg.RateLimit, redisClient, log)
	if err != nil {
		return nil, err
	}

	// Initialize usecases
	authUsecase := usecase.NewAuthUsecase(db, log, userRepo, profileRepo, patientRepo, institutionRepo, jwtService, tokens, auditService)
	patientUsecase := usecase.NewPatientUsecase(db, log, patientRepo, institutionRepo, auditService)
	patientClaimUsecase := usecase.NewPatientClaimUsecase(db, log, patientRepo, auditService)
	vitalUsecase := usecase.NewVitalUsecase(db, log, vitalRepo, patientRepo, alertRepo, auditService)
	alertUsecase := usecase.NewAlertUsecase(db, log, alertRepo, patientRepo, auditService)
	dashboardUsecase := usecase.NewDashboardUsecase(db, log, dashboardRepo)
	institutionUsecase := usecase.NewInstitutionUsecase(db, log, institutionRepo, auditService)
	userAdminUsecase := usecase.NewUserAdminUsecase(db, log, userRepo, profileRepo, institutionRepo, tokens, auditService)
	auditLogUsecase := usecase.NewAuditLogUsecase(db, log, auditLogRepo)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authUsecase, customValidator)
	patientHandler := handler.NewPatientHandler(patientUsecase, customValidator)
	patientClaimHandler := handler.NewPatientClaimHandler(patientClaimUsecase)
	vitalHandler := handler.NewVitalHandler(vitalUsecase, customValidator)
	alertHandler := handler.NewAlertHandler(alertUsecase)
	dashboardHandler := handler.NewDashboardHandler(dashboardUsecase)
	institutionHandler := handler.NewInstitutionHandler(institutionUsecase, customValidator)
	userAdminHandler := handler.NewUserAdminHandler(userAdminUsecase, customValidator)
	auditLogHandler := handler.NewAuditLogHandler(auditLogUsecase)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(identityService, log)
	corsMiddleware := middleware.NewCORSMiddleware(cfg.App.AllowedOrigins)
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(rateLimitStore, cfg.RateLimit, log)

	// Initialize router
	router := deliveryHttp.NewRouter(
		authHandler,
		patientHandler,
		patientClaimHandler,
		vitalHandler,
		alertHandler,
		dashboardHandler,
		institutionHandler,
		userAdminHandler,
		auditLogHandler,
		authMiddleware,
		corsMiddleware,
		rateLimitMiddleware,
	)

	// Create server
	serverAddr := fmt.Sprintf(":%s", cfg.App.Port)
	return &http.Server{
		Addr:              serverAddr,
		Handler:           router.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
	}, nil
}

// Run starts the HTTP server and handles graceful shutdown
func (app *App) Run() {
	// Start server in goroutine
	go func() {
		logrus.Infof("Server starting on port %s", app.Config.App.Port)
		logrus.Infof("Environment: %s", app.Config.App.Env)
		if err := app.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
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

// Close stops background work and closes all connections (database, redis)
func (app *App) Close() {
	if app.cancelBackground != nil {
		app.cancelBackground()
	}

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
