package repository

import (
	"github.com/evanoh/storepulse-backend/internal/app/model"
	"github.com/evanoh/storepulse-backend/pkg/logger"
	"gorm.io/gorm"
)

// StoreFilter narrows admin store listings.
type StoreFilter struct {
	Name  string
	Email string
}

type StoreRepository interface {
	Create(store *model.Store) error
	FindByID(id uint) (*model.Store, error)
	FindByEmail(email string) (*model.Store, error)
	// List returns a page of stores ordered by name (id as tiebreak) so
	// pagination stays stable under inserts with duplicate names.
	List(filter StoreFilter, offset, limit int) ([]model.Store, int64, error)
	FindAll() ([]model.Store, error)
	Update(store *model.Store) error
	Delete(id uint) error
	Count() (int64, error)
	BulkCreate(stores []model.Store, batchSize int) error
}

type storeRepository struct {
	db *gorm.DB
}

func NewStoreRepository(db *gorm.DB) StoreRepository {
	return &storeRepository{db: db}
}

func (r *storeRepository) Create(store *model.Store) error {
	logger.Debug("Creating store in database", map[string]interface{}{
		"name":  store.Name,
		"email": store.Email,
	})

	if err := r.db.Create(store).Error; err != nil {
		logger.Error("Failed to create store in database", err, map[string]interface{}{
			"email": store.Email,
		})
		return err
	}

	logger.Debug("Store created in database", map[string]interface{}{
		"store_id": store.ID,
		"email":    store.Email,
	})
	return nil
}

func (r *storeRepository) FindByID(id uint) (*model.Store, error) {
	var store model.Store
	err := r.db.First(&store, id).Error
	if err != nil {
		return nil, err
	}
	return &store, nil
}

func (r *storeRepository) FindByEmail(email string) (*model.Store, error) {
	var store model.Store
	err := r.db.Where("email = ?", email).First(&store).Error
	if err != nil {
		return nil, err
	}
	return &store, nil
}

func (r *storeRepository) List(filter StoreFilter, offset, limit int) ([]model.Store, int64, error) {
	var stores []model.Store
	var total int64

	query := r.db.Model(&model.Store{})
	if filter.Name != "" {
		query = query.Where("name LIKE ?", "%"+filter.Name+"%")
	}
	if filter.Email != "" {
		query = query.Where("email LIKE ?", "%"+filter.Email+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("name ASC, id ASC").
		Offset(offset).
		Limit(limit).
		Find(&stores).Error
	if err != nil {
		return nil, 0, err
	}

	return stores, total, nil
}

func (r *storeRepository) FindAll() ([]model.Store, error) {
	var stores []model.Store
	err := r.db.Order("name ASC, id ASC").Find(&stores).Error
	if err != nil {
		return nil, err
	}
	return stores, nil
}

func (r *storeRepository) Update(store *model.Store) error {
	logger.Debug("Updating store in database", map[string]interface{}{
		"store_id": store.ID,
	})

	if err := r.db.Save(store).Error; err != nil {
		logger.Error("Failed to update store in database", err, map[string]interface{}{
			"store_id": store.ID,
		})
		return err
	}
	return nil
}

// Delete removes the store and its ratings in one transaction so no
// rating can outlive its store.
func (r *storeRepository) Delete(id uint) error {
	logger.Debug("Deleting store from database", map[string]interface{}{
		"store_id": id,
	})

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("store_id = ?", id).Delete(&model.Rating{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Store{}, id).Error
	})
	if err != nil {
		logger.Error("Failed to delete store from database", err, map[string]interface{}{
			"store_id": id,
		})
		return err
	}
	return nil
}

func (r *storeRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&model.Store{}).Count(&count).Error
	return count, err
}

// BulkCreate inserts stores in batches; used by the xlsx import command.
func (r *storeRepository) BulkCreate(stores []model.Store, batchSize int) error {
	logger.Info("Bulk creating stores", map[string]interface{}{
		"count":      len(stores),
		"batch_size": batchSize,
	})

	if err := r.db.CreateInBatches(stores, batchSize).Error; err != nil {
		logger.Error("Failed to bulk create stores", err, nil)
		return err
	}
	return nil
}
