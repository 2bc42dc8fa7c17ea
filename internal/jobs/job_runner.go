package jobs

import (
	"context"
	"time"

	"karhubty-backend/internal/config"
	"karhubty-backend/internal/events"
	"karhubty-backend/internal/logger"
	"karhubty-backend/internal/service"
)

const jobTimeout = 5 * time.Minute

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	services  *Services
	publisher events.Publisher
	config    *config.Config
	now       func() time.Time
}

// Services holds all service dependencies needed by jobs
type Services struct {
	Rental   service.RentalService
	Document service.DocumentService
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(services *Services, publisher events.Publisher, cfg *config.Config) *JobRunner {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &JobRunner{
		services:  services,
		publisher: publisher,
		config:    cfg,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery and a deadline
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func(ctx context.Context)) {
	log := logger.WithService("jobs").With("job", jobName)
	defer func() {
		if r := recover(); r != nil {
			log.Error("Job panicked", "panic", r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	start := time.Now()
	log.Info("Starting job")
	jobFunc(ctx)
	log.Info("Job completed", "duration", time.Since(start))
}

// RunAllNightlyJobs runs all nightly jobs (for manual execution)
func (jr *JobRunner) RunAllNightlyJobs() {
	jr.CompleteEndedRentals()
	jr.ExpireStalePendingRentals()
	jr.RemindPendingDocuments()
}
