package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"karhubty-backend/internal/config"
	"karhubty-backend/internal/events"
	"karhubty-backend/internal/jobs"
	"karhubty-backend/internal/logger"
	"karhubty-backend/internal/repository/postgres"
	"karhubty-backend/internal/scheduler"
	"karhubty-backend/internal/service"
	"karhubty-backend/internal/storage"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	runOnce := flag.String("run-once", "", "Run a specific job once and exit (e.g., 'complete-ended-rentals', 'all-nightly')")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting KarHubty Cronjob Runner...", "log_level", cfg.Log.Level)

	ctx := context.Background()

	// Initialize Database
	logger.Info("Connecting to database...", "host", cfg.Database.Host, "port", cfg.Database.Port)
	db, err := postgres.Open(ctx, cfg.GetDatabaseConnectionString(), cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	logger.Info("Database connection established")

	store := postgres.NewStore(db)

	storageService, err := storage.NewStorage(ctx, cfg.StorageConfig())
	if err != nil {
		logger.Error("Failed to initialize storage", "error", err)
		log.Fatalf("Failed to initialize storage: %v", err)
	}

	// Jobs publish through the same sinks as the API
	dispatcher := events.NewDispatcher(events.Config{
		Workers:     1,
		QueueSize:   cfg.Events.QueueSize,
		MaxRetries:  cfg.Events.MaxRetries,
		BaseBackoff: cfg.Events.BaseBackoff(),
	},
		events.NewNotificationHandler(store.NotificationRepository, store.UserRepository),
		events.NewEmailHandler(newEmailSender(cfg)),
	)
	dispatcher.Start(ctx)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Events.ShutdownWait())
		defer cancel()
		if err := dispatcher.Close(shutdownCtx); err != nil {
			logger.Warn("Event dispatcher did not drain", "error", err)
		}
	}()

	rentalService := service.NewRentalService(
		store.RentalRepository,
		store.CarRepository,
		store.UserRepository,
		store.AgentRepository,
		store,
		dispatcher,
		cfg.Booking.SameDayTurnover,
	)
	documentService := service.NewDocumentService(store.DocumentRepository, store.AgentRepository, storageService, dispatcher)

	jobRunner := jobs.NewJobRunner(&jobs.Services{
		Rental:   rentalService,
		Document: documentService,
	}, dispatcher, cfg)

	// Check if running a single job
	if *runOnce != "" {
		logger.Info("Running job once", "job", *runOnce)
		if !runJobOnce(jobRunner, *runOnce) {
			printAvailableJobs()
			os.Exit(1)
		}
		logger.Info("Job execution completed", "job", *runOnce)
		return
	}

	cronScheduler, err := scheduler.NewScheduler(jobRunner)
	if err != nil {
		logger.Error("Failed to register cron jobs", "error", err)
		log.Fatalf("Failed to register cron jobs: %v", err)
	}

	cronScheduler.Start()
	logger.Info("Cronjob scheduler is running. Press Ctrl+C to stop.")

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down cronjob scheduler...")
	cronScheduler.Stop()
	logger.Info("Cronjob scheduler stopped. Goodbye!")
}

// runJobOnce runs a specific job once; it reports false for an unknown name
func runJobOnce(jobRunner *jobs.JobRunner, jobName string) bool {
	switch jobName {
	case "complete-ended-rentals":
		jobRunner.CompleteEndedRentals()
	case "expire-stale-rentals":
		jobRunner.ExpireStalePendingRentals()
	case "remind-pending-documents":
		jobRunner.RemindPendingDocuments()
	case "all-nightly":
		jobRunner.RunAllNightlyJobs()
	default:
		logger.Error("Unknown job name", "job", jobName)
		return false
	}
	return true
}

func printAvailableJobs() {
	fmt.Printf("Available jobs:\n")
	fmt.Printf("  - complete-ended-rentals\n")
	fmt.Printf("  - expire-stale-rentals\n")
	fmt.Printf("  - remind-pending-documents\n")
	fmt.Printf("  - all-nightly\n")
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
