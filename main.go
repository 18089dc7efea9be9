package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/scrubline/scrubline-backend-go/apperrors"
	"github.com/scrubline/scrubline-backend-go/config"
	"github.com/scrubline/scrubline-backend-go/database"
	"github.com/scrubline/scrubline-backend-go/events"
	"github.com/scrubline/scrubline-backend-go/handlers"
	"github.com/scrubline/scrubline-backend-go/logger"
	"github.com/scrubline/scrubline-backend-go/metrics"
	customMiddleware "github.com/scrubline/scrubline-backend-go/middleware"
	"github.com/scrubline/scrubline-backend-go/repository"
	"github.com/scrubline/scrubline-backend-go/routes"
	"github.com/scrubline/scrubline-backend-go/services"
	"github.com/scrubline/scrubline-backend-go/storage"
	"github.com/scrubline/scrubline-backend-go/utils"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := logger.InitLogger(cfg.Log.Level, cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	zlog := logger.GetLogger()
	defer zlog.Sync()

	ctx := context.Background()

	// Connect to MongoDB
	store, err := database.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.DB, zlog)
	if err != nil {
		zlog.Fatal("Failed to connect to database", zap.Error(err))
	}
	store.EnsureIndexes(ctx)

	publisher, err := events.New(cfg.NATS.URL, zlog)
	if err != nil {
		zlog.Warn("NATS unavailable, order events disabled", zap.Error(err))
		publisher = events.NopPublisher{}
	}

	var uploadStores []storage.Store
	if cfg.Upload.S3Bucket != "" {
		s3Store, err := storage.NewS3StoreFromEnv(ctx, cfg.Upload.S3Bucket, cfg.Upload.S3PublicURL)
		if err != nil {
			zlog.Warn("S3 upload store unavailable", zap.Error(err))
		} else {
			uploadStores = append(uploadStores, s3Store)
		}
	}
	uploadStores = append(uploadStores, storage.NewLocalStore(cfg.Upload.Dir, cfg.Upload.PublicPath))

	jwtManager := utils.NewJWTManager(cfg.JWT.Secret, time.Duration(cfg.JWT.ExpirationHours)*time.Hour)
	users := repository.NewMongoUserRepository(store)
	settings := repository.NewMongoSettingsRepository(store)

	h := handlers.New(handlers.Services{
		Orders: services.NewOrderService(
			repository.NewMongoOrderRepository(store),
			settings,
			utils.NewPaymentProcessor(),
			publisher,
			services.OrderOptions{StrictTotals: cfg.Orders.StrictTotals, GuestLookup: cfg.Orders.GuestLookup},
			zlog,
		),
		Addresses: services.NewAddressService(repository.NewMongoAddressRepository(store), zlog),
		Wishlist:  services.NewWishlistService(repository.NewMongoWishlistRepository(store)),
		Reviews:   services.NewReviewService(repository.NewMongoReviewRepository(store), users, zlog),
		Catalog: services.NewCatalogService(
			repository.NewMongoProductRepository(store),
			repository.NewFileProductRepository(cfg.Catalog.FallbackFile),
			zlog,
		),
		Auth:      services.NewAuthService(users, jwtManager, zlog),
		Analytics: services.NewAnalyticsService(repository.NewMongoAnalyticsRepository(store)),
		Feedback:  services.NewFeedbackService(repository.NewMongoFeedbackRepository(store)),
		Settings:  services.NewSettingsService(settings),
		Uploader:  storage.NewUploader(cfg.Upload.MaxBytes, zlog, uploadStores...),
		DB:        store,
	}, handlers.Options{
		LegacyOrderQuery: cfg.Orders.LegacyQuery,
		Timeout:          cfg.Mongo.Timeout,
		SecureCookies:    cfg.IsProduction(),
	})

	// Initialize Echo
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = apperrors.HTTPErrorHandler
	e.Validator = handlers.NewValidator()

	// Middleware
	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(logger.Middleware())
	e.Use(metrics.Middleware())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.Server.CORSOrigins,
		AllowCredentials: true,
	}))
	e.Use(middleware.BodyLimit(bodyLimit(cfg.Upload.MaxBytes)))

	routes.SetupRoutes(e, h, routes.Options{
		Auth:        customMiddleware.NewAuth(jwtManager),
		AuthLimiter: customMiddleware.NewRateLimiter(cfg.RateLimit.PerMinute, cfg.RateLimit.Burst),
		AdminDir:    cfg.Server.AdminDir,
		UploadDir:   cfg.Upload.Dir,
	})

	// Start the server
	go func() {
		zlog.Info("Server starting", zap.String("port", cfg.Server.Port))
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zlog.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		zlog.Error("Server shutdown failed", zap.Error(err))
	}
	publisher.Close()
	if err := store.Close(shutdownCtx); err != nil {
		zlog.Error("Database disconnect failed", zap.Error(err))
	}
}

// bodyLimit leaves room for multipart framing around the largest upload.
func bodyLimit(maxUpload int64) string {
	mb := maxUpload/(1024*1024) + 1
	if mb < 2 {
		mb = 2
	}
	return strconv.FormatInt(mb, 10) + "M"
}
