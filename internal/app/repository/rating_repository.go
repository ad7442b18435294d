package repository

import (
	"github.com/evanoh/storepulse-backend/internal/app/model"
	"github.com/evanoh/storepulse-backend/pkg/logger"
	"gorm.io/gorm"
)

type RatingRepository interface {
	// Create inserts the rating and refreshes the store's denormalized
	// average inside one transaction.
	Create(rating *model.Rating) error
	// Update saves the rating and refreshes the store average.
	Update(rating *model.Rating) error
	FindByID(id uint) (*model.Rating, error)
	FindByUserAndStore(userID, storeID uint) (*model.Rating, error)
	ListByStoreID(storeID uint, offset, limit int) ([]model.Rating, int64, error)
	ListByUserAndStoreIDs(userID uint, storeIDs []uint) ([]model.Rating, error)
	AverageForStore(storeID uint) (float64, error)
	Count() (int64, error)
	// SyncAllStoreAverages recomputes average_rating for every store; run by
	// the nightly reconciliation job to repair drift from out-of-band writes.
	SyncAllStoreAverages() error
}

type ratingRepository struct {
	db *gorm.DB
}

func NewRatingRepository(db *gorm.DB) RatingRepository {
	return &ratingRepository{db: db}
}

func (r *ratingRepository) Create(rating *model.Rating) error {
	logger.Debug("Creating rating in database", map[string]interface{}{
		"store_id": rating.StoreID,
		"user_id":  rating.UserID,
		"rating":   rating.Value,
	})

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(rating).Error; err != nil {
			return err
		}
		return syncStoreAverage(tx, rating.StoreID)
	})
	if err != nil {
		logger.Error("Failed to create rating in database", err, map[string]interface{}{
			"store_id": rating.StoreID,
			"user_id":  rating.UserID,
		})
		return err
	}
	return nil
}

func (r *ratingRepository) Update(rating *model.Rating) error {
	logger.Debug("Updating rating in database", map[string]interface{}{
		"rating_id": rating.ID,
		"rating":    rating.Value,
	})

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(rating).Error; err != nil {
			return err
		}
		return syncStoreAverage(tx, rating.StoreID)
	})
	if err != nil {
		logger.Error("Failed to update rating in database", err, map[string]interface{}{
			"rating_id": rating.ID,
		})
		return err
	}
	return nil
}

func (r *ratingRepository) FindByID(id uint) (*model.Rating, error) {
	var rating model.Rating
	err := r.db.Preload("User").First(&rating, id).Error
	if err != nil {
		return nil, err
	}
	return &rating, nil
}

func (r *ratingRepository) FindByUserAndStore(userID, storeID uint) (*model.Rating, error) {
	var rating model.Rating
	err := r.db.Where("user_id = ? AND store_id = ?", userID, storeID).First(&rating).Error
	if err != nil {
		return nil, err
	}
	return &rating, nil
}

func (r *ratingRepository) ListByStoreID(storeID uint, offset, limit int) ([]model.Rating, int64, error) {
	var ratings []model.Rating
	var total int64

	query := r.db.Model(&model.Rating{}).Where("store_id = ?", storeID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Preload("User").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&ratings).Error
	if err != nil {
		return nil, 0, err
	}

	return ratings, total, nil
}

// ListByUserAndStoreIDs returns the user's ratings for the given stores;
// used to annotate the listing page with the caller's own ratings.
func (r *ratingRepository) ListByUserAndStoreIDs(userID uint, storeIDs []uint) ([]model.Rating, error) {
	if len(storeIDs) == 0 {
		return nil, nil
	}

	var ratings []model.Rating
	err := r.db.Where("user_id = ? AND store_id IN ?", userID, storeIDs).Find(&ratings).Error
	if err != nil {
		return nil, err
	}
	return ratings, nil
}

func (r *ratingRepository) AverageForStore(storeID uint) (float64, error) {
	var avg float64
	err := r.db.Model(&model.Rating{}).
		Where("store_id = ?", storeID).
		Select("COALESCE(AVG(rating), 0)").
		Scan(&avg).Error
	if err != nil {
		return 0, err
	}
	return avg, nil
}

func (r *ratingRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&model.Rating{}).Count(&count).Error
	return count, err
}

func (r *ratingRepository) SyncAllStoreAverages() error {
	var stores []model.Store
	if err := r.db.Select("id").Find(&stores).Error; err != nil {
		return err
	}

	return r.db.Transaction(func(tx *gorm.DB) error {
		for _, store := range stores {
			if err := syncStoreAverage(tx, store.ID); err != nil {
				return err
			}
		}
		return nil
	})
}

// syncStoreAverage recomputes the store's denormalized average_rating from
// its rating rows within the caller's transaction.
func syncStoreAverage(tx *gorm.DB, storeID uint) error {
	var avg float64
	if err := tx.Model(&model.Rating{}).
		Where("store_id = ?", storeID).
		Select("COALESCE(AVG(rating), 0)").
		Scan(&avg).Error; err != nil {
		return err
	}

	return tx.Model(&model.Store{}).
		Where("id = ?", storeID).
		UpdateColumn("average_rating", avg).Error
}
