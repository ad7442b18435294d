package scheduler

import (
	"github.com/evanoh/storepulse-backend/internal/app/service"
	"github.com/evanoh/storepulse-backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

// RatingScheduler reconciles the denormalized store averages against the
// ratings table. Writes keep the averages in sync transactionally; this job
// repairs any drift from manual data fixes or partial failures.
type RatingScheduler struct {
	cron          *cron.Cron
	ratingService service.RatingService
}

func NewRatingScheduler(ratingService service.RatingService) *RatingScheduler {
	return &RatingScheduler{
		cron:          cron.New(),
		ratingService: ratingService,
	}
}

// Start registers the nightly reconciliation job (03:00 server time).
func (s *RatingScheduler) Start() error {
	_, err := s.cron.AddFunc("0 3 * * *", func() {
		logger.Info("Starting scheduled rating average reconciliation", nil)

		if err := s.ratingService.ReconcileStoreAverages(); err != nil {
			logger.Error("Failed to reconcile store averages", err, nil)
			return
		}

		logger.Info("Store averages reconciled successfully", nil)
	})

	if err != nil {
		logger.Error("Failed to add cron job for rating reconciliation", err, nil)
		return err
	}

	s.cron.Start()
	logger.Info("Rating scheduler started successfully (daily at 3:00 AM)", nil)

	return nil
}

func (s *RatingScheduler) Stop() {
	logger.Info("Stopping rating scheduler...", nil)
	s.cron.Stop()
	logger.Info("Rating scheduler stopped", nil)
}
