package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/norfolk-coast-barns/service-booking/internal/adapter"
	"github.com/norfolk-coast-barns/service-booking/internal/application"
	"github.com/norfolk-coast-barns/service-booking/internal/auth"
	"github.com/norfolk-coast-barns/service-booking/internal/config"
	"github.com/norfolk-coast-barns/service-booking/internal/database"
	"github.com/norfolk-coast-barns/service-booking/internal/domain/reference"
	bookingEvents "github.com/norfolk-coast-barns/service-booking/internal/events"
	"github.com/norfolk-coast-barns/service-booking/internal/handler"
	"github.com/norfolk-coast-barns/service-booking/internal/health"
	"github.com/norfolk-coast-barns/service-booking/internal/kafka"
	"github.com/norfolk-coast-barns/service-booking/internal/logger"
	"github.com/norfolk-coast-barns/service-booking/internal/middleware"
	"github.com/norfolk-coast-barns/service-booking/internal/repository"
	"github.com/norfolk-coast-barns/service-booking/internal/saga"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	// Initialize logger
	zapLogger, err := logger.NewNamed(cfg.AppEnv, "service-booking")
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("starting service-booking",
		zap.String("port", cfg.Port),
	)

	// Connect to database
	db, err := database.Connect(cfg.DBConfig, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed to connect to database", zap.Error(err))
	}

	// Run database migrations
	if cfg.AppEnv == "development" {
		if err := db.AutoMigrate(
			&repository.BookingModel{},
			&repository.PromoModel{},
			&repository.BlackoutModel{},
			&repository.PackageModel{},
			&repository.ExtraModel{},
		); err != nil {
			zapLogger.Fatal("failed to auto-migrate", zap.Error(err))
		}
		zapLogger.Info("database migration completed (dev auto-migrate)")
	} else {
		if err := database.RunMigrations(cfg.DBConfig.URL(), "migrations", zapLogger); err != nil {
			zapLogger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(cfg.JWTConfig.Secret, 15*time.Minute)

	// Initialize Kafka producer
	kafkaProducer := kafka.NewProducer(cfg.KafkaConfig.Brokers, zapLogger)
	defer kafkaProducer.Close()

	// Initialize Stripe adapter (mock for development)
	stripeAdapter := adapter.NewMockStripeAdapter(zapLogger)

	// Initialize repositories
	bookingRepo := repository.NewBookingRepository(db)
	promoRepo := repository.NewGormPromoRepository(db)
	blackoutRepo := repository.NewGormBlackoutRepository(db)
	catalogRepo := repository.NewGormCatalogRepository(db)

	// Initialize saga service
	sagaService := saga.NewBookingSagaService(
		bookingRepo,
		stripeAdapter,
		kafkaProducer,
		cfg.VenueConfig.DepositPercent,
		cfg.VenueConfig.Currency,
		zapLogger,
	)

	// Initialize application services
	bookingService := application.NewBookingService(
		bookingRepo,
		promoRepo,
		catalogRepo,
		blackoutRepo,
		reference.NewGenerator(nil),
		sagaService,
		cfg.VenueConfig.CutoffTime,
		zapLogger,
	)
	promoService := application.NewPromoService(promoRepo, zapLogger)
	availabilityService := application.NewAvailabilityService(blackoutRepo, cfg.VenueConfig.CutoffTime, zapLogger)
	catalogService := application.NewCatalogService(catalogRepo, zapLogger)

	// Initialize Kafka consumer for payment events
	consumerGroupID := cfg.KafkaConfig.GroupPrefix + "booking-service"
	paymentConsumer := bookingEvents.NewPaymentEventConsumer(
		cfg.KafkaConfig.Brokers,
		consumerGroupID,
		bookingService,
		zapLogger,
	)
	defer paymentConsumer.Close()

	// Start Kafka consumer in a goroutine
	consumerCtx, consumerCancel := context.WithCancel(context.Background())
	defer consumerCancel()

	go func() {
		zapLogger.Info("starting payment event consumer")
		if err := paymentConsumer.Start(consumerCtx); err != nil {
			if consumerCtx.Err() == nil {
				zapLogger.Error("payment event consumer failed", zap.Error(err))
			}
		}
	}()

	// Initialize HTTP handlers
	bookingHandler := handler.NewBookingHandler(bookingService)
	promoHandler := handler.NewPromoHandler(promoService)
	availabilityHandler := handler.NewAvailabilityHandler(availabilityService)
	catalogHandler := handler.NewCatalogHandler(catalogService)
	adminHandler := handler.NewAdminHandler(bookingService, promoService, availabilityService, catalogService)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.RecoveryMiddleware(zapLogger))
	router.Use(middleware.LoggerMiddleware(zapLogger))
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	// Register health check routes
	healthHandler := health.NewHandler(db, "service-booking")
	healthHandler.RegisterRoutes(router)

	// Register API routes
	apiV1 := router.Group("/api/v1")
	bookingHandler.RegisterRoutes(apiV1, jwtManager)
	promoHandler.RegisterRoutes(apiV1, jwtManager)
	availabilityHandler.RegisterRoutes(apiV1, jwtManager)
	catalogHandler.RegisterRoutes(apiV1, jwtManager)
	adminHandler.RegisterRoutes(apiV1, jwtManager)

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		zapLogger.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("shutting down service-booking...")

	// Cancel Kafka consumer
	consumerCancel()

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("service-booking stopped")
}
