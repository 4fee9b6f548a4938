package core

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"radruga/internal/repository"
	"radruga/pkg/config"
	"radruga/pkg/logger"
	"radruga/pkg/utils"
)

// MaintenanceJob runs the once-a-day upkeep: kind scale decay and the rating
// place snapshot
type MaintenanceJob struct {
	users   repository.UserRepository
	ratings RatingService
	cfg     config.RewardsConfig
	running atomic.Bool
}

// NewMaintenanceJob creates the daily job
func NewMaintenanceJob(users repository.UserRepository, ratings RatingService, cfg config.RewardsConfig) *MaintenanceJob {
	return &MaintenanceJob{users: users, ratings: ratings, cfg: cfg}
}

// RunDaily performs both steps. The rating snapshot runs even when the decay
// fails; the errors are joined.
func (j *MaintenanceJob) RunDaily(ctx context.Context) error {
	if !j.running.CompareAndSwap(false, true) {
		logger.Warn("daily maintenance is already running")
		return nil
	}
	defer j.running.Store(false)

	start := time.Now()
	var errs []error
	if err := j.users.DecreaseKindActionScales(ctx, j.cfg.KindScaleDailyDecay, j.cfg.KindScaleHighThreshold); err != nil {
		errs = append(errs, fmt.Errorf("decrease kind scales: %w", err))
	}
	if err := j.ratings.UpdateLastRatingPlaces(ctx); err != nil {
		errs = append(errs, fmt.Errorf("update rating places: %w", err))
	}
	err := utils.CombineErrors(errs...)

	fields := map[string]interface{}{"took_ms": time.Since(start).Milliseconds()}
	if err != nil {
		logger.WithFields(fields).WithError(err).Error("daily maintenance failed")
		return err
	}
	logger.WithFields(fields).Info("daily maintenance finished")
	return nil
}

// Start runs the job every interval until ctx is done
func (j *MaintenanceJob) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	go func() {
		// first run lands on the next boundary counted from midnight
		timer := time.NewTimer(utils.UntilNext(time.Now(), interval))
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
				timer.Reset(j.runScheduled(ctx, interval))
			}
		}
	}()
}

// runScheduled runs one scheduled pass and returns the wait until the next one
func (j *MaintenanceJob) runScheduled(ctx context.Context, interval time.Duration) time.Duration {
	err := j.RunDaily(ctx)
	next := utils.UntilNext(time.Now(), interval)
	if err != nil {
		logger.WithFields(map[string]interface{}{"next_run_in": next.String()}).
			WithError(err).Warn("scheduled daily maintenance failed")
	}
	return next
}
