package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"telehealth-portal/config"
	deliveryHttp "telehealth-portal/internal/delivery/http"
	"telehealth-portal/internal/delivery/http/handler"
	"telehealth-portal/internal/delivery/http/middleware"
	"telehealth-portal/internal/infrastructure/cache"
	"telehealth-portal/internal/infrastructure/classifier"
	"telehealth-portal/internal/infrastructure/database"
	"telehealth-portal/internal/infrastructure/storage"
	"telehealth-portal/internal/infrastructure/video"
	"telehealth-portal/internal/repository"
	"telehealth-portal/internal/service"
	"telehealth-portal/internal/usecase"
	"telehealth-portal/pkg/jwt"
	"telehealth-portal/pkg/validator"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
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
	setupLogger(cfg.App.LogLevel)
	logrus.Info("Configuration loaded successfully")

	log := logrus.StandardLogger()

	// Initialize database
	db, err := database.NewPostgresConnection(cfg.DB, cfg.App.Timezone, log)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = db
	logrus.Info("Database connected successfully")

	// Initialize Redis
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis, log)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	app.RedisClient = redisClient
	logrus.Info("Redis connected successfully")

	// Initialize object storage (optional)
	blobStore, err := storage.NewS3Store(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to configure object storage: %w", err)
	}
	if blobStore == nil {
		logrus.Warn("Object storage disabled; uploads will not be kept")
	}

	// Initialize all layers
	server, err := initializeServer(cfg, db, redisClient, blobStore, log)
	if err != nil {
		return nil, err
	}
	app.Server = server

	return app, nil
}

// setupLogger configures the logrus logger
func setupLogger(level string) {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)

	lvl, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logrus.SetLevel(lvl)
}

// clock returns the current time in the configured timezone. Appointment
// dates and times are wall-clock values in that zone.
func clock(timezone string) (func() time.Time, error) {
	loc := time.UTC
	if timezone != "" {
		var err error
		loc, err = time.LoadLocation(timezone)
		if err != nil {
			return nil, fmt.Errorf("invalid timezone %q: %w", timezone, err)
		}
	}
	return func() time.Time { return time.Now().In(loc) }, nil
}

// initializeServer creates and configures the HTTP server
func initializeServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, blobStore *storage.S3Store, log *logrus.Logger) (*http.Server, error) {
	now, err := clock(cfg.App.Timezone)
	if err != nil {
		return nil, err
	}

	// Initialize JWT service
	jwtService := jwt.NewJWTService(cfg.JWT)

	// Initialize validator
	customValidator := validator.NewValidator()

	// Initialize repositories
	userRepo := repository.NewUserRepository()
	roleRepo := repository.NewRoleRepository()
	doctorProfileRepo := repository.NewDoctorProfileRepository()
	appointmentRepo := repository.NewAppointmentRepository()
	analysisRepo := repository.NewAnalysisRepository()
	favoriteRepo := repository.NewFavoriteRepository()
	shareRepo := repository.NewShareRepository()
	auditLogRepo := repository.NewAuditLogRepository()

	// Initialize video providers
	registry, err := video.NewRegistryFromConfig(cfg.Video, log)
	if err != nil {
		return nil, fmt.Errorf("failed to configure video providers: %w", err)
	}
	for _, status := range registry.Statuses() {
		if !status.Configured {
			logrus.Warnf("Video provider %s is not configured", status.Provider)
		}
	}

	// Initialize services
	auditService := service.NewAuditService(log, auditLogRepo)
	roomStore := repository.NewAppointmentRoomStore(db, appointmentRepo)
	provisioner := service.NewRoomProvisioner(registry, service.NewRedisRoomCache(redisClient), roomStore, cfg.Video.RoomTTL, log)
	statsCache := service.NewRedisStatsCache(redisClient)
	rateLimiter := service.NewRedisRateLimiter(redisClient, cfg.RateLimit.Requests, cfg.RateLimit.Window)
	classifierClient := classifier.NewClient(cfg.Classifier, log)

	// Initialize usecases
	authUsecase := usecase.NewAuthUsecase(db, log, userRepo, roleRepo, auditService, jwtService, redisClient)
	doctorProfileUsecase := usecase.NewDoctorProfileUsecase(db, log, userRepo, doctorProfileRepo, auditService, blobStore)
	appointmentUsecase := usecase.NewAppointmentUsecase(db, log, appointmentRepo, doctorProfileRepo, userRepo, auditService, provisioner, cfg.Video.EnforceJoinWindow, now)
	videoUsecase := usecase.NewVideoUsecase(log, provisioner, now)
	analysisUsecase := usecase.NewAnalysisUsecase(db, log, analysisRepo, userRepo, auditService, classifierClient, blobStore, statsCache)
	favoriteUsecase := usecase.NewFavoriteUsecase(db, log, favoriteRepo, analysisRepo, auditService, blobStore)
	shareUsecase := usecase.NewShareUsecase(db, log, shareRepo, analysisRepo, auditService, blobStore, now)
	auditLogUsecase := usecase.NewAuditLogUsecase(db, log, auditLogRepo)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authUsecase, customValidator, jwtService)
	doctorHandler := handler.NewDoctorHandler(doctorProfileUsecase, customValidator, cfg.Classifier.MaxUploadBytes)
	appointmentHandler := handler.NewAppointmentHandler(appointmentUsecase, customValidator)
	videoHandler := handler.NewVideoHandler(videoUsecase, customValidator)
	analysisHandler := handler.NewAnalysisHandler(analysisUsecase, customValidator, cfg.Classifier.MaxUploadBytes)
	favoriteHandler := handler.NewFavoriteHandler(favoriteUsecase, customValidator)
	shareHandler := handler.NewShareHandler(shareUsecase, customValidator)
	auditLogHandler := handler.NewAuditLogHandler(auditLogUsecase)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtService, redisClient, authUsecase, log)
	corsMiddleware := middleware.NewCORSMiddleware(cfg.CORS.AllowedOrigins)
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(rateLimiter, log)
	loggerMiddleware := middleware.NewLoggerMiddleware(log)

	// Initialize router
	router := deliveryHttp.NewRouter(
		authHandler,
		doctorHandler,
		appointmentHandler,
		videoHandler,
		analysisHandler,
		favoriteHandler,
		shareHandler,
		auditLogHandler,
		authMiddleware,
		corsMiddleware,
		rateLimitMiddleware,
		loggerMiddleware,
	)

	// Create server
	serverAddr := fmt.Sprintf(":%s", cfg.App.Port)
	return &http.Server{
		Addr:              serverAddr,
		Handler:           router.Handler(),
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
