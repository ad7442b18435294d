package service

import (
	"errors"

	"github.com/evanoh/storepulse-backend/internal/app/model"
	"github.com/evanoh/storepulse-backend/internal/app/repository"
	"github.com/evanoh/storepulse-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrRatingNotFound     = errors.New("rating not found")
	ErrAlreadyRated       = errors.New("user has already rated this store")
	ErrNotRatingOwner     = errors.New("rating belongs to another user")
	ErrInvalidRatingValue = errors.New("rating must be between 1 and 5")
)

const (
	RatingMin = 1
	RatingMax = 5
)

// RatingEvent is pushed to subscribed store owners when a rating changes.
type RatingEvent struct {
	Type          string  `json:"type"` // rating.created or rating.updated
	StoreID       uint    `json:"store_id"`
	RatingID      uint    `json:"rating_id"`
	UserName      string  `json:"user_name"`
	Value         int     `json:"rating"`
	AverageRating float64 `json:"average_rating"`
}

// RatingNotifier delivers rating events to live subscribers. The websocket
// hub implements it; a nil notifier disables delivery.
type RatingNotifier interface {
	RatingChanged(event RatingEvent)
}

type RatingService interface {
	SubmitRating(userID, storeID uint, value int) (*model.Rating, error)
	UpdateRating(userID, storeID, ratingID uint, value int) (*model.Rating, error)
	// ReconcileStoreAverages recomputes every store's denormalized average;
	// invoked by the nightly scheduler.
	ReconcileStoreAverages() error
}

type ratingService struct {
	ratingRepo repository.RatingRepository
	storeRepo  repository.StoreRepository
	notifier   RatingNotifier
}

func NewRatingService(
	ratingRepo repository.RatingRepository,
	storeRepo repository.StoreRepository,
	notifier RatingNotifier,
) RatingService {
	return &ratingService{
		ratingRepo: ratingRepo,
		storeRepo:  storeRepo,
		notifier:   notifier,
	}
}

func (s *ratingService) SubmitRating(userID, storeID uint, value int) (*model.Rating, error) {
	logger.Info("Submitting rating", map[string]interface{}{
		"user_id":  userID,
		"store_id": storeID,
		"rating":   value,
	})

	if value < RatingMin || value > RatingMax {
		return nil, ErrInvalidRatingValue
	}

	if _, err := s.storeRepo.FindByID(storeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStoreNotFound
		}
		return nil, err
	}

	// One rating per user per store; updates go through UpdateRating.
	existing, err := s.ratingRepo.FindByUserAndStore(userID, storeID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if existing != nil {
		logger.Warn("Rating rejected: already rated", map[string]interface{}{
			"user_id":  userID,
			"store_id": storeID,
		})
		return nil, ErrAlreadyRated
	}

	rating := &model.Rating{
		StoreID: storeID,
		UserID:  userID,
		Value:   value,
	}

	if err := s.ratingRepo.Create(rating); err != nil {
		logger.Error("Failed to create rating", err, map[string]interface{}{
			"user_id":  userID,
			"store_id": storeID,
		})
		return nil, err
	}

	loaded, err := s.ratingRepo.FindByID(rating.ID)
	if err != nil {
		return nil, err
	}

	s.notify("rating.created", loaded)

	logger.Info("Rating submitted", map[string]interface{}{
		"rating_id": loaded.ID,
		"store_id":  storeID,
	})
	return loaded, nil
}

func (s *ratingService) UpdateRating(userID, storeID, ratingID uint, value int) (*model.Rating, error) {
	logger.Info("Updating rating", map[string]interface{}{
		"user_id":   userID,
		"store_id":  storeID,
		"rating_id": ratingID,
		"rating":    value,
	})

	if value < RatingMin || value > RatingMax {
		return nil, ErrInvalidRatingValue
	}

	rating, err := s.ratingRepo.FindByID(ratingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRatingNotFound
		}
		return nil, err
	}

	// A rating reached through another store's URL is treated as missing.
	if rating.StoreID != storeID {
		return nil, ErrRatingNotFound
	}
	if rating.UserID != userID {
		logger.Warn("Rating update rejected: not the author", map[string]interface{}{
			"user_id":   userID,
			"rating_id": ratingID,
		})
		return nil, ErrNotRatingOwner
	}

	rating.Value = value
	if err := s.ratingRepo.Update(rating); err != nil {
		logger.Error("Failed to update rating", err, map[string]interface{}{
			"rating_id": ratingID,
		})
		return nil, err
	}

	s.notify("rating.updated", rating)

	logger.Info("Rating updated", map[string]interface{}{
		"rating_id": rating.ID,
	})
	return rating, nil
}

func (s *ratingService) ReconcileStoreAverages() error {
	logger.Info("Reconciling store average ratings", nil)

	if err := s.ratingRepo.SyncAllStoreAverages(); err != nil {
		logger.Error("Failed to reconcile store averages", err, nil)
		return err
	}

	logger.Info("Store average ratings reconciled", nil)
	return nil
}

func (s *ratingService) notify(eventType string, rating *model.Rating) {
	if s.notifier == nil {
		return
	}

	avg, err := s.ratingRepo.AverageForStore(rating.StoreID)
	if err != nil {
		logger.Warn("Skipping rating event: average lookup failed", map[string]interface{}{
			"store_id": rating.StoreID,
			"error":    err.Error(),
		})
		return
	}

	s.notifier.RatingChanged(RatingEvent{
		Type:          eventType,
		StoreID:       rating.StoreID,
		RatingID:      rating.ID,
		UserName:      rating.User.Name,
		Value:         rating.Value,
		AverageRating: avg,
	})
}
