package service

import (
	"context"
	"testing"
	"time"

	"github.com/evanoh/storepulse-backend/internal/app/model"
	"github.com/evanoh/storepulse-backend/internal/app/repository"
	"github.com/evanoh/storepulse-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupAdminTest(t *testing.T) (*gorm.DB, AdminService) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)

	svc := NewAdminService(
		repository.NewUserRepository(testDB),
		repository.NewStoreRepository(testDB),
		repository.NewRatingRepository(testDB),
	)
	return testDB, svc
}

func TestAdminService_Dashboard(t *testing.T) {
	testDB, svc := setupAdminTest(t)
	defer db.CleanupTestDB(testDB)

	user := &model.User{
		Name:         "Dashboard Count Test Subject",
		Email:        "counted@example.com",
		PasswordHash: "x",
		Role:         model.RoleUser,
	}
	require.NoError(t, testDB.Create(user).Error)

	store := &model.Store{Name: "Counted Store", Email: "counted-store@example.com"}
	require.NoError(t, testDB.Create(store).Error)

	require.NoError(t, testDB.Create(&model.Rating{StoreID: store.ID, UserID: user.ID, Value: 3}).Error)

	stats, err := svc.Dashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.TotalUsers)
	assert.Equal(t, int64(1), stats.TotalStores)
	assert.Equal(t, int64(1), stats.TotalRatings)
}

func TestAdminService_CreateUser(t *testing.T) {
	testDB, svc := setupAdminTest(t)
	defer db.CleanupTestDB(testDB)

	tests := []struct {
		name    string
		input   CreateUserInput
		wantErr error
	}{
		{
			name: "Create store owner",
			input: CreateUserInput{
				Name:     "Bartholomew Reginald Owner",
				Email:    "bart@example.com",
				Password: "Strong@Pass1",
				Role:     string(model.RoleOwner),
			},
			wantErr: nil,
		},
		{
			name: "Create admin",
			input: CreateUserInput{
				Name:     "Evangeline Theodora Sysadmin",
				Email:    "eva@example.com",
				Password: "Strong@Pass1",
				Role:     string(model.RoleAdmin),
			},
			wantErr: nil,
		},
		{
			name: "Unknown role",
			input: CreateUserInput{
				Name:     "Unknown Role Test Account Name",
				Email:    "role@example.com",
				Password: "Strong@Pass1",
				Role:     "superuser",
			},
			wantErr: ErrInvalidRole,
		},
		{
			name: "Weak password",
			input: CreateUserInput{
				Name:     "Weak Password Test Account Name",
				Email:    "weak@example.com",
				Password: "weak",
				Role:     string(model.RoleUser),
			},
			wantErr: ErrWeakPassword,
		},
		{
			name: "Duplicate email",
			input: CreateUserInput{
				Name:     "Duplicate Email Test Account",
				Email:    "bart@example.com",
				Password: "Strong@Pass1",
				Role:     string(model.RoleUser),
			},
			wantErr: ErrEmailAlreadyExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := svc.CreateUser(tt.input)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, model.UserRole(tt.input.Role), user.Role)
			assert.NotEqual(t, tt.input.Password, user.PasswordHash)
		})
	}
}

func TestAdminService_GetUserIncludesOwnerStoreRating(t *testing.T) {
	testDB, svc := setupAdminTest(t)
	defer db.CleanupTestDB(testDB)

	owner := &model.User{
		Name:         "Owner With Store Rating Shown",
		Email:        "owner@ratedstore.com",
		PasswordHash: "x",
		Role:         model.RoleOwner,
	}
	require.NoError(t, testDB.Create(owner).Error)

	store := &model.Store{Name: "Rated Store", Email: "owner@ratedstore.com", AverageRating: 4.2}
	require.NoError(t, testDB.Create(store).Error)

	detail, err := svc.GetUser(owner.ID)
	require.NoError(t, err)
	require.NotNil(t, detail.StoreRating)
	assert.InDelta(t, 4.2, *detail.StoreRating, 0.001)

	// Normal users never carry a store rating.
	user := &model.User{
		Name:         "Normal User Without Any Store",
		Email:        "plain@example.com",
		PasswordHash: "x",
		Role:         model.RoleUser,
	}
	require.NoError(t, testDB.Create(user).Error)

	detail, err = svc.GetUser(user.ID)
	require.NoError(t, err)
	assert.Nil(t, detail.StoreRating)

	_, err = svc.GetUser(9999)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestAdminService_UpdateUser(t *testing.T) {
	testDB, svc := setupAdminTest(t)
	defer db.CleanupTestDB(testDB)

	user, err := svc.CreateUser(CreateUserInput{
		Name:     "Promotable Normal User Account",
		Email:    "promote@example.com",
		Password: "Strong@Pass1",
		Role:     string(model.RoleUser),
	})
	require.NoError(t, err)

	newRole := string(model.RoleOwner)
	updated, err := svc.UpdateUser(user.ID, UpdateUserInput{Role: &newRole})
	require.NoError(t, err)
	assert.Equal(t, model.RoleOwner, updated.Role)
	// Untouched fields survive a partial update.
	assert.Equal(t, user.Name, updated.Name)

	badRole := "superuser"
	_, err = svc.UpdateUser(user.ID, UpdateUserInput{Role: &badRole})
	assert.ErrorIs(t, err, ErrInvalidRole)

	shortName := "Too Short"
	_, err = svc.UpdateUser(user.ID, UpdateUserInput{Name: &shortName})
	assert.ErrorIs(t, err, ErrInvalidName)
}

func TestAdminService_DeleteUser(t *testing.T) {
	testDB, svc := setupAdminTest(t)
	defer db.CleanupTestDB(testDB)

	user, err := svc.CreateUser(CreateUserInput{
		Name:     "Account Scheduled For Removal",
		Email:    "remove@example.com",
		Password: "Strong@Pass1",
		Role:     string(model.RoleUser),
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteUser(user.ID))

	_, err = svc.GetUser(user.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)

	assert.ErrorIs(t, svc.DeleteUser(user.ID), ErrUserNotFound)
}

func TestAdminService_ExportStores(t *testing.T) {
	testDB, svc := setupAdminTest(t)
	defer db.CleanupTestDB(testDB)

	stores := []model.Store{
		{Name: "Export Store A", Email: "a@export.com", Address: "1 First St", AverageRating: 4.5},
		{Name: "Export Store B", Email: "b@export.com", Address: "2 Second St"},
	}
	for i := range stores {
		require.NoError(t, testDB.Create(&stores[i]).Error)
	}

	f, err := svc.ExportStores()
	require.NoError(t, err)
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	require.NoError(t, err)

	// Header row plus one row per store.
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"ID", "Name", "Email", "Address", "Average Rating"}, rows[0])
	assert.Equal(t, "Export Store A", rows[1][1])
	assert.Equal(t, "b@export.com", rows[2][2])
}

func TestExportFilename(t *testing.T) {
	now := time.Date(2025, 3, 14, 9, 30, 45, 0, time.UTC)
	assert.Equal(t, "stores-20250314-093045.xlsx", ExportFilename(now))
}
