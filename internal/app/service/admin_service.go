package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/evanoh/storepulse-backend/internal/app/model"
	"github.com/evanoh/storepulse-backend/internal/app/repository"
	"github.com/evanoh/storepulse-backend/pkg/logger"
	"github.com/evanoh/storepulse-backend/pkg/redis"
	"github.com/evanoh/storepulse-backend/pkg/util"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

var ErrInvalidRole = errors.New("invalid role")

const dashboardCacheTTL = time.Minute

// DashboardStats carries the platform-wide counts for the admin dashboard.
type DashboardStats struct {
	TotalUsers   int64 `json:"total_users"`
	TotalStores  int64 `json:"total_stores"`
	TotalRatings int64 `json:"total_ratings"`
}

// CreateUserInput is an admin-created account; unlike self-registration the
// admin may assign any role.
type CreateUserInput struct {
	Name     string
	Email    string
	Password string
	Address  string
	Role     string
}

// UpdateUserInput uses pointers so absent fields stay untouched.
type UpdateUserInput struct {
	Name    *string
	Address *string
	Role    *string
}

// UserDetail is the admin view of a single user. StoreRating is set only for
// store owners whose store exists.
type UserDetail struct {
	User        *model.User
	StoreRating *float64
}

type AdminService interface {
	Dashboard(ctx context.Context) (*DashboardStats, error)
	ListUsers(filter repository.UserFilter, page, pageSize int) ([]model.User, int64, error)
	CreateUser(input CreateUserInput) (*model.User, error)
	GetUser(id uint) (*UserDetail, error)
	UpdateUser(id uint, input UpdateUserInput) (*model.User, error)
	DeleteUser(id uint) error
	ExportStores() (*excelize.File, error)
}

type adminService struct {
	userRepo   repository.UserRepository
	storeRepo  repository.StoreRepository
	ratingRepo repository.RatingRepository
}

func NewAdminService(
	userRepo repository.UserRepository,
	storeRepo repository.StoreRepository,
	ratingRepo repository.RatingRepository,
) AdminService {
	return &adminService{
		userRepo:   userRepo,
		storeRepo:  storeRepo,
		ratingRepo: ratingRepo,
	}
}

// Dashboard returns full-table counts, served from the Redis cache when warm.
func (s *adminService) Dashboard(ctx context.Context) (*DashboardStats, error) {
	if cached, err := redis.GetCachedDashboardStats(ctx); err == nil && cached != nil {
		var stats DashboardStats
		if err := json.Unmarshal(cached, &stats); err == nil {
			logger.Debug("Dashboard stats served from cache", nil)
			return &stats, nil
		}
	}

	users, err := s.userRepo.Count()
	if err != nil {
		logger.Error("Failed to count users", err, nil)
		return nil, err
	}
	stores, err := s.storeRepo.Count()
	if err != nil {
		logger.Error("Failed to count stores", err, nil)
		return nil, err
	}
	ratings, err := s.ratingRepo.Count()
	if err != nil {
		logger.Error("Failed to count ratings", err, nil)
		return nil, err
	}

	stats := &DashboardStats{
		TotalUsers:   users,
		TotalStores:  stores,
		TotalRatings: ratings,
	}

	if payload, err := json.Marshal(stats); err == nil {
		// Cache failures only cost the next request a recount.
		_ = redis.CacheDashboardStats(ctx, payload, dashboardCacheTTL)
	}

	return stats, nil
}

func (s *adminService) ListUsers(filter repository.UserFilter, page, pageSize int) ([]model.User, int64, error) {
	if filter.Role != "" && !model.ValidRole(filter.Role) {
		return nil, 0, ErrInvalidRole
	}

	offset := (page - 1) * pageSize
	return s.userRepo.List(filter, offset, pageSize)
}

func (s *adminService) CreateUser(input CreateUserInput) (*model.User, error) {
	logger.Info("Admin creating user", map[string]interface{}{
		"email": input.Email,
		"role":  input.Role,
	})

	if !model.ValidRole(input.Role) {
		return nil, ErrInvalidRole
	}
	if err := ValidateName(input.Name); err != nil {
		return nil, err
	}
	if err := ValidateAddress(input.Address); err != nil {
		return nil, err
	}
	if err := util.ValidatePassword(input.Password); err != nil {
		return nil, ErrWeakPassword
	}

	existing, err := s.userRepo.FindByEmail(input.Email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailAlreadyExists
	}

	hash, err := util.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: hash,
		Address:      input.Address,
		Role:         model.UserRole(input.Role),
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	logger.Info("Admin created user", map[string]interface{}{
		"user_id": user.ID,
		"role":    user.Role,
	})
	return user, nil
}

func (s *adminService) GetUser(id uint) (*UserDetail, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	detail := &UserDetail{User: user}

	// Store owners are matched to their store by email; their detail view
	// includes the store's current average rating.
	if user.Role == model.RoleOwner {
		store, err := s.storeRepo.FindByEmail(user.Email)
		if err == nil {
			rating := store.AverageRating
			detail.StoreRating = &rating
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	return detail, nil
}

func (s *adminService) UpdateUser(id uint, input UpdateUserInput) (*model.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if input.Name != nil {
		if err := ValidateName(*input.Name); err != nil {
			return nil, err
		}
		user.Name = *input.Name
	}
	if input.Address != nil {
		if err := ValidateAddress(*input.Address); err != nil {
			return nil, err
		}
		user.Address = *input.Address
	}
	if input.Role != nil {
		if !model.ValidRole(*input.Role) {
			return nil, ErrInvalidRole
		}
		user.Role = model.UserRole(*input.Role)
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}

	logger.Info("Admin updated user", map[string]interface{}{
		"user_id": user.ID,
	})
	return user, nil
}

func (s *adminService) DeleteUser(id uint) error {
	if _, err := s.userRepo.FindByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if err := s.userRepo.Delete(id); err != nil {
		return err
	}

	logger.Info("Admin deleted user", map[string]interface{}{
		"user_id": id,
	})
	return nil
}

// ExportStores renders all stores into an xlsx workbook.
func (s *adminService) ExportStores() (*excelize.File, error) {
	stores, err := s.storeRepo.FindAll()
	if err != nil {
		logger.Error("Failed to load stores for export", err, nil)
		return nil, err
	}

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	headers := []string{"ID", "Name", "Email", "Address", "Average Rating"}
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return nil, err
		}
	}

	for row, store := range stores {
		values := []interface{}{store.ID, store.Name, store.Email, store.Address, store.AverageRating}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return nil, err
			}
		}
	}

	logger.Info("Stores exported to xlsx", map[string]interface{}{
		"store_count": len(stores),
	})
	return f, nil
}

// ExportFilename returns a timestamped name for the xlsx download.
func ExportFilename(now time.Time) string {
	return fmt.Sprintf("stores-%s.xlsx", now.Format("20060102-150405"))
}
