package service

import (
	"errors"

	"github.com/evanoh/storepulse-backend/internal/app/model"
	"github.com/evanoh/storepulse-backend/internal/app/repository"
	"github.com/evanoh/storepulse-backend/pkg/logger"
	"gorm.io/gorm"
)

// OwnerDashboard is the store owner's view: their store, one page of its
// ratings with author identity, and the mean rating computed from the rows.
type OwnerDashboard struct {
	Store         *model.Store   `json:"store"`
	Ratings       []model.Rating `json:"ratings"`
	AverageRating float64        `json:"average_rating"`
	TotalRatings  int64          `json:"total_ratings"`
}

type OwnerService interface {
	// Dashboard resolves the store whose email matches the authenticated
	// owner's email. A missing store is ErrStoreNotFound, never a crash.
	Dashboard(ownerEmail string, page, pageSize int) (*OwnerDashboard, error)
	StoreForOwner(ownerEmail string) (*model.Store, error)
}

type ownerService struct {
	storeRepo  repository.StoreRepository
	ratingRepo repository.RatingRepository
}

func NewOwnerService(storeRepo repository.StoreRepository, ratingRepo repository.RatingRepository) OwnerService {
	return &ownerService{
		storeRepo:  storeRepo,
		ratingRepo: ratingRepo,
	}
}

func (s *ownerService) Dashboard(ownerEmail string, page, pageSize int) (*OwnerDashboard, error) {
	logger.Debug("Building owner dashboard", map[string]interface{}{
		"email": ownerEmail,
		"page":  page,
	})

	store, err := s.StoreForOwner(ownerEmail)
	if err != nil {
		return nil, err
	}

	offset := (page - 1) * pageSize
	ratings, total, err := s.ratingRepo.ListByStoreID(store.ID, offset, pageSize)
	if err != nil {
		logger.Error("Failed to list store ratings", err, map[string]interface{}{
			"store_id": store.ID,
		})
		return nil, err
	}

	avg, err := s.ratingRepo.AverageForStore(store.ID)
	if err != nil {
		logger.Error("Failed to compute store average", err, map[string]interface{}{
			"store_id": store.ID,
		})
		return nil, err
	}

	return &OwnerDashboard{
		Store:         store,
		Ratings:       ratings,
		AverageRating: avg,
		TotalRatings:  total,
	}, nil
}

func (s *ownerService) StoreForOwner(ownerEmail string) (*model.Store, error) {
	store, err := s.storeRepo.FindByEmail(ownerEmail)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("No store matches owner email", map[string]interface{}{
				"email": ownerEmail,
			})
			return nil, ErrStoreNotFound
		}
		return nil, err
	}
	return store, nil
}
