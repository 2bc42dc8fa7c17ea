package jobs

import (
	"context"

	"karhubty-backend/internal/logger"
)

// CompleteEndedRentals moves approved rentals whose end date has passed to
// completed, releasing their cars.
func (jr *JobRunner) CompleteEndedRentals() {
	jr.runWithRecovery("CompleteEndedRentals", func(ctx context.Context) {
		count, err := jr.services.Rental.CompleteEndedRentals(ctx, jr.now())
		if err != nil {
			logger.Error("Failed to complete ended rentals", "completed", count, "error", err)
			return
		}
		logger.Info("Completed ended rentals", "count", count)
	})
}

// ExpireStalePendingRentals rejects requests the agent never answered
// before the rental would have started.
func (jr *JobRunner) ExpireStalePendingRentals() {
	jr.runWithRecovery("ExpireStalePendingRentals", func(ctx context.Context) {
		count, err := jr.services.Rental.ExpireStalePending(ctx, jr.now())
		if err != nil {
			logger.Error("Failed to expire stale rentals", "expired", count, "error", err)
			return
		}
		logger.Info("Expired stale pending rentals", "count", count)
	})
}
