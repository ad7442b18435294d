package service

import (
	"errors"

	"github.com/evanoh/storepulse-backend/internal/app/model"
	"github.com/evanoh/storepulse-backend/internal/app/repository"
	"github.com/evanoh/storepulse-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrStoreNotFound    = errors.New("store not found")
	ErrStoreEmailExists = errors.New("store email already exists")
	ErrInvalidStoreName = errors.New("store name must be at most 60 characters long")
)

// StorePageSize is the fixed page size of the public store listing.
const StorePageSize = 10

const storeNameMaxLen = 60

// StoreWithUserRating annotates a store with the calling user's own rating,
// when one exists.
type StoreWithUserRating struct {
	model.Store
	UserRating *int `json:"user_rating,omitempty"`
}

// StoreInput covers admin store create/update.
type StoreInput struct {
	Name     string
	Email    string
	Address  string
	ImageURL string
}

type StoreService interface {
	// ListStores returns one fixed-size page of the public listing, ordered
	// by name. userID 0 means anonymous: no per-user annotation.
	ListStores(page int, userID uint) ([]StoreWithUserRating, int64, error)
	ListStoresForAdmin(filter repository.StoreFilter, page, pageSize int) ([]model.Store, int64, error)
	GetStore(id uint) (*model.Store, error)
	CreateStore(input StoreInput) (*model.Store, error)
	UpdateStore(id uint, input StoreInput) (*model.Store, error)
	DeleteStore(id uint) error
}

type storeService struct {
	storeRepo  repository.StoreRepository
	ratingRepo repository.RatingRepository
}

func NewStoreService(storeRepo repository.StoreRepository, ratingRepo repository.RatingRepository) StoreService {
	return &storeService{
		storeRepo:  storeRepo,
		ratingRepo: ratingRepo,
	}
}

func validateStoreInput(input StoreInput) error {
	if len([]rune(input.Name)) > storeNameMaxLen || input.Name == "" {
		return ErrInvalidStoreName
	}
	return ValidateAddress(input.Address)
}

func (s *storeService) ListStores(page int, userID uint) ([]StoreWithUserRating, int64, error) {
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * StorePageSize

	stores, total, err := s.storeRepo.List(repository.StoreFilter{}, offset, StorePageSize)
	if err != nil {
		logger.Error("Failed to list stores", err, map[string]interface{}{
			"page": page,
		})
		return nil, 0, err
	}

	annotated := make([]StoreWithUserRating, len(stores))
	for i, store := range stores {
		annotated[i] = StoreWithUserRating{Store: store}
	}

	if userID == 0 {
		return annotated, total, nil
	}

	storeIDs := make([]uint, len(stores))
	for i, store := range stores {
		storeIDs[i] = store.ID
	}

	ratings, err := s.ratingRepo.ListByUserAndStoreIDs(userID, storeIDs)
	if err != nil {
		logger.Error("Failed to load user ratings for listing", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, 0, err
	}

	byStore := make(map[uint]int, len(ratings))
	for _, rating := range ratings {
		byStore[rating.StoreID] = rating.Value
	}
	for i := range annotated {
		if value, ok := byStore[annotated[i].ID]; ok {
			v := value
			annotated[i].UserRating = &v
		}
	}

	return annotated, total, nil
}

func (s *storeService) ListStoresForAdmin(filter repository.StoreFilter, page, pageSize int) ([]model.Store, int64, error) {
	offset := (page - 1) * pageSize
	return s.storeRepo.List(filter, offset, pageSize)
}

func (s *storeService) GetStore(id uint) (*model.Store, error) {
	store, err := s.storeRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStoreNotFound
		}
		return nil, err
	}
	return store, nil
}

func (s *storeService) CreateStore(input StoreInput) (*model.Store, error) {
	logger.Info("Creating store", map[string]interface{}{
		"name":  input.Name,
		"email": input.Email,
	})

	if err := validateStoreInput(input); err != nil {
		return nil, err
	}

	existing, err := s.storeRepo.FindByEmail(input.Email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if existing != nil {
		logger.Warn("Store creation failed: email already exists", map[string]interface{}{
			"email": input.Email,
		})
		return nil, ErrStoreEmailExists
	}

	store := &model.Store{
		Name:     input.Name,
		Email:    input.Email,
		Address:  input.Address,
		ImageURL: input.ImageURL,
	}

	if err := s.storeRepo.Create(store); err != nil {
		return nil, err
	}

	logger.Info("Store created", map[string]interface{}{
		"store_id": store.ID,
	})
	return store, nil
}

func (s *storeService) UpdateStore(id uint, input StoreInput) (*model.Store, error) {
	store, err := s.storeRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStoreNotFound
		}
		return nil, err
	}

	if err := validateStoreInput(input); err != nil {
		return nil, err
	}

	// Email moves must not collide with another store.
	if input.Email != store.Email {
		existing, err := s.storeRepo.FindByEmail(input.Email)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		if existing != nil {
			return nil, ErrStoreEmailExists
		}
	}

	store.Name = input.Name
	store.Email = input.Email
	store.Address = input.Address
	if input.ImageURL != "" {
		store.ImageURL = input.ImageURL
	}

	if err := s.storeRepo.Update(store); err != nil {
		return nil, err
	}

	logger.Info("Store updated", map[string]interface{}{
		"store_id": store.ID,
	})
	return store, nil
}

func (s *storeService) DeleteStore(id uint) error {
	if _, err := s.storeRepo.FindByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrStoreNotFound
		}
		return err
	}

	if err := s.storeRepo.Delete(id); err != nil {
		return err
	}

	logger.Info("Store deleted with its ratings", map[string]interface{}{
		"store_id": id,
	})
	return nil
}
