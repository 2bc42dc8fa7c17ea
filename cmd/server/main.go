package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	grpcapi "karhubty-backend/internal/api/grpc"
	httpapi "karhubty-backend/internal/api/http"
	"karhubty-backend/internal/config"
	"karhubty-backend/internal/events"
	"karhubty-backend/internal/logger"
	"karhubty-backend/internal/repository/postgres"
	"karhubty-backend/internal/security"
	"karhubty-backend/internal/service"
	"karhubty-backend/internal/storage"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting KarHubty Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress(), "health_address", cfg.GetHealthAddress())
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)
	logger.Info("Email configuration", "provider", cfg.Email.Provider)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize Database
	db, err := postgres.Open(ctx, cfg.GetDatabaseConnectionString(), cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	logger.Info("Database connection established")

	// Initialize Repositories
	store := postgres.NewStore(db)

	// Initialize Security
	tokenManager := security.NewTokenManager(cfg.JWT.Secret, cfg.AccessTokenTTL())

	// Initialize Storage Service
	storageService, err := storage.NewStorage(ctx, cfg.StorageConfig())
	if err != nil {
		logger.Error("Failed to initialize storage", "type", cfg.Storage.Type, "error", err)
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	logger.Info("Storage initialized", "type", cfg.Storage.Type)

	// Initialize Event Dispatcher
	dispatcher, closeBroker := newDispatcher(cfg, store)
	dispatcher.Start(ctx)

	// Initialize Services
	authSvc := service.NewAuthService(store.UserRepository, store.AgentRepository, tokenManager, dispatcher, cfg.Email.FrontendURL)
	userSvc := service.NewUserService(store.UserRepository, store.AgentRepository)
	carSvc := service.NewCarService(store.CarRepository, store.AgentRepository, storageService)
	rentalSvc := service.NewRentalService(
		store.RentalRepository,
		store.CarRepository,
		store.UserRepository,
		store.AgentRepository,
		store,
		dispatcher,
		cfg.Booking.SameDayTurnover,
	)
	docSvc := service.NewDocumentService(store.DocumentRepository, store.AgentRepository, storageService, dispatcher)
	reviewSvc := service.NewReviewService(store.ReviewRepository, store.RentalRepository, store.CarRepository)
	noteSvc := service.NewNotificationService(store.NotificationRepository)
	adminSvc := service.NewAdminService(
		store.AgentRepository,
		store.UserRepository,
		store.CarRepository,
		store.RentalRepository,
		store.StatsRepository,
		dispatcher,
	)

	// Set up HTTP API
	opts := httpapi.RouterOptions{
		Tokens:         tokenManager,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	}
	if cfg.Storage.Type == "local" {
		opts.Storage = storageService
	}
	if cfg.RateLimit.Enabled {
		opts.RateLimiter = httpapi.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
		if err := opts.RateLimiter.TrustProxies(cfg.RateLimit.TrustedProxies); err != nil {
			log.Fatalf("Invalid rate limit configuration: %v", err)
		}
		go opts.RateLimiter.Run(ctx)
		logger.Info("Rate limiting enabled", "rps", cfg.RateLimit.RequestsPerSecond, "burst", cfg.RateLimit.Burst)
	}

	router := httpapi.NewRouter(httpapi.Services{
		Auth:         authSvc,
		Users:        userSvc,
		Cars:         carSvc,
		Rentals:      rentalSvc,
		Documents:    docSvc,
		Reviews:      reviewSvc,
		Notification: noteSvc,
		Admin:        adminSvc,
	}, opts)

	srv := &http.Server{
		Addr:              cfg.GetServerAddress(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       time.Duration(cfg.Server.ReadTimeoutSec) * time.Second,
		WriteTimeout:      time.Duration(cfg.Server.WriteTimeoutSec) * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	go func() {
		logger.Info("HTTP server listening", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", "error", err)
			stop()
		}
	}()

	// Set up gRPC health server
	var health *grpcapi.HealthServer
	if addr := cfg.GetHealthAddress(); addr != "" {
		lis, err := net.Listen("tcp", addr)
		if err != nil {
			logger.Error("Failed to listen", "error", err, "address", addr)
			log.Fatalf("Failed to listen: %v", err)
		}
		health = grpcapi.NewHealthServer(db)
		go health.Run(ctx)
		go func() {
			logger.Info("gRPC health server listening", "address", addr)
			if err := health.Server().Serve(lis); err != nil {
				logger.Error("gRPC health server error", "error", err)
			}
		}()
	}

	<-ctx.Done()
	logger.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Events.ShutdownWait())
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", "error", err)
	}
	if health != nil {
		health.Server().GracefulStop()
	}
	if err := dispatcher.Close(shutdownCtx); err != nil {
		logger.Warn("Event dispatcher did not drain", "error", err)
	}
	closeBroker()
	logger.Info("Server stopped. Goodbye!")
}

// newDispatcher wires notification rows, email and the optional RabbitMQ
// forwarder. The returned func closes the broker connection.
func newDispatcher(cfg *config.Config, store *postgres.Store) (*events.Dispatcher, func()) {
	handlers := []events.Handler{
		events.NewNotificationHandler(store.NotificationRepository, store.UserRepository),
		events.NewEmailHandler(newEmailSender(cfg)),
	}

	closeBroker := func() {}
	if cfg.RabbitMQ.Enabled {
		broker, err := events.NewRabbitMQHandler(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange, cfg.Events.MaxRetries)
		if err != nil {
			logger.Error("Failed to connect to RabbitMQ, continuing without broker", "error", err)
		} else {
			handlers = append(handlers, broker)
			closeBroker = broker.Close
			logger.Info("RabbitMQ forwarding enabled", "exchange", cfg.RabbitMQ.Exchange)
		}
	}

	return events.NewDispatcher(events.Config{
		Workers:     cfg.Events.Workers,
		QueueSize:   cfg.Events.QueueSize,
		MaxRetries:  cfg.Events.MaxRetries,
		BaseBackoff: cfg.Events.BaseBackoff(),
	}, handlers...), closeBroker
}

func newEmailSender(cfg *config.Config) events.EmailSender {
	switch cfg.Email.Provider {
	case "sendgrid":
		return service.NewSendGridService(cfg.Email.SendGridAPIKey, cfg.SMTP.From, cfg.Email.FromName)
	case "log":
		return service.NewLogEmailService()
	default:
		return service.NewEmailService(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.User, cfg.SMTP.Password, cfg.SMTP.From, cfg.Email.FromName)
	}
}
