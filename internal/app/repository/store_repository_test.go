package repository

import (
	"fmt"
	"testing"

	"github.com/evanoh/storepulse-backend/internal/app/model"
	"github.com/evanoh/storepulse-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupStoreTest(t *testing.T) (*gorm.DB, StoreRepository) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)

	repo := NewStoreRepository(testDB)
	return testDB, repo
}

func TestStoreRepository_Create(t *testing.T) {
	testDB, repo := setupStoreTest(t)
	defer db.CleanupTestDB(testDB)

	tests := []struct {
		name    string
		store   *model.Store
		wantErr bool
	}{
		{
			name: "Valid store",
			store: &model.Store{
				Name:    "Harborview Grocery",
				Email:   "contact@harborview.com",
				Address: "1 Pier Road",
			},
			wantErr: false,
		},
		{
			name: "Duplicate email",
			store: &model.Store{
				Name:    "Another Grocery",
				Email:   "contact@harborview.com",
				Address: "2 Pier Road",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.Create(tt.store)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.NotZero(t, tt.store.ID)
				assert.Zero(t, tt.store.AverageRating)
			}
		})
	}
}

func TestStoreRepository_ListOrderedByName(t *testing.T) {
	testDB, repo := setupStoreTest(t)
	defer db.CleanupTestDB(testDB)

	// Insert out of order; the listing must come back sorted by name.
	names := []string{"Mango Mart", "Apple Corner", "Zebra Deli", "Kiwi Kiosk"}
	for i, name := range names {
		store := model.Store{
			Name:  name,
			Email: fmt.Sprintf("store%d@example.com", i),
		}
		require.NoError(t, repo.Create(&store))
	}

	stores, total, err := repo.List(StoreFilter{}, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)

	got := make([]string, len(stores))
	for i, store := range stores {
		got[i] = store.Name
	}
	assert.Equal(t, []string{"Apple Corner", "Kiwi Kiosk", "Mango Mart", "Zebra Deli"}, got)
}

func TestStoreRepository_ListPagination(t *testing.T) {
	testDB, repo := setupStoreTest(t)
	defer db.CleanupTestDB(testDB)

	// 25 stores named so alphabetical order matches the numeric suffix.
	for i := 1; i <= 25; i++ {
		store := model.Store{
			Name:  fmt.Sprintf("Store %02d", i),
			Email: fmt.Sprintf("store%02d@example.com", i),
		}
		require.NoError(t, repo.Create(&store))
	}

	// Second page of ten holds stores 11 through 20.
	stores, total, err := repo.List(StoreFilter{}, 10, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(25), total)
	require.Len(t, stores, 10)
	assert.Equal(t, "Store 11", stores[0].Name)
	assert.Equal(t, "Store 20", stores[9].Name)

	// Last page is a partial one.
	stores, _, err = repo.List(StoreFilter{}, 20, 10)
	require.NoError(t, err)
	assert.Len(t, stores, 5)

	// Past the end is empty, not an error.
	stores, _, err = repo.List(StoreFilter{}, 30, 10)
	require.NoError(t, err)
	assert.Empty(t, stores)
}

func TestStoreRepository_ListFilter(t *testing.T) {
	testDB, repo := setupStoreTest(t)
	defer db.CleanupTestDB(testDB)

	stores := []model.Store{
		{Name: "Northside Bakery", Email: "hello@northside.com"},
		{Name: "Southside Bakery", Email: "hello@southside.com"},
		{Name: "Central Hardware", Email: "info@centralhw.com"},
	}
	for i := range stores {
		require.NoError(t, repo.Create(&stores[i]))
	}

	found, total, err := repo.List(StoreFilter{Name: "Bakery"}, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, found, 2)

	found, total, err = repo.List(StoreFilter{Email: "centralhw"}, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "Central Hardware", found[0].Name)
}

func TestStoreRepository_DeleteRemovesRatings(t *testing.T) {
	testDB, repo := setupStoreTest(t)
	defer db.CleanupTestDB(testDB)

	store := &model.Store{Name: "Doomed Deli", Email: "doomed@example.com"}
	require.NoError(t, repo.Create(store))

	user := &model.User{
		Name:         "Rating Author For Deletion Test",
		Email:        "author@example.com",
		PasswordHash: "x",
		Role:         model.RoleUser,
	}
	require.NoError(t, testDB.Create(user).Error)

	rating := &model.Rating{StoreID: store.ID, UserID: user.ID, Value: 4}
	require.NoError(t, testDB.Create(rating).Error)

	require.NoError(t, repo.Delete(store.ID))

	_, err := repo.FindByID(store.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	var count int64
	require.NoError(t, testDB.Model(&model.Rating{}).Where("store_id = ?", store.ID).Count(&count).Error)
	assert.Equal(t, int64(0), count, "ratings must not survive their store")
}

func TestStoreRepository_BulkCreate(t *testing.T) {
	testDB, repo := setupStoreTest(t)
	defer db.CleanupTestDB(testDB)

	stores := make([]model.Store, 0, 30)
	for i := 0; i < 30; i++ {
		stores = append(stores, model.Store{
			Name:  fmt.Sprintf("Bulk Store %02d", i),
			Email: fmt.Sprintf("bulk%02d@example.com", i),
		})
	}

	require.NoError(t, repo.BulkCreate(stores, 10))

	count, err := repo.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(30), count)
}

func TestStoreRepository_FindByEmail(t *testing.T) {
	testDB, repo := setupStoreTest(t)
	defer db.CleanupTestDB(testDB)

	store := &model.Store{Name: "Owner Match Cafe", Email: "owner@cafe.com"}
	require.NoError(t, repo.Create(store))

	found, err := repo.FindByEmail("owner@cafe.com")
	require.NoError(t, err)
	assert.Equal(t, store.ID, found.ID)

	_, err = repo.FindByEmail("unknown@cafe.com")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
