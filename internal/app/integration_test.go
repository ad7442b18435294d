package app

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/evanoh/storepulse-backend/internal/app/controller"
	"github.com/evanoh/storepulse-backend/internal/app/model"
	"github.com/evanoh/storepulse-backend/internal/app/repository"
	"github.com/evanoh/storepulse-backend/internal/app/service"
	"github.com/evanoh/storepulse-backend/internal/db"
	"github.com/evanoh/storepulse-backend/internal/middleware"
	ws "github.com/evanoh/storepulse-backend/internal/websocket"
	"github.com/evanoh/storepulse-backend/pkg/util"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type TestServer struct {
	Router      *gin.Engine
	DB          *gorm.DB
	AuthService service.AuthService
}

const (
	integrationName     = "Integration Test Account Name"
	integrationPassword = "Valid@Pass1"
)

func setupIntegrationTest(t *testing.T) *TestServer {
	gin.SetMode(gin.TestMode)

	testDB, err := db.SetupTestDB()
	require.NoError(t, err)

	userRepo := repository.NewUserRepository(testDB)
	storeRepo := repository.NewStoreRepository(testDB)
	ratingRepo := repository.NewRatingRepository(testDB)

	authService := service.NewAuthService(
		userRepo,
		"test-secret",
		15*time.Minute,
		7*24*time.Hour,
	)
	adminService := service.NewAdminService(userRepo, storeRepo, ratingRepo)
	storeService := service.NewStoreService(storeRepo, ratingRepo)
	ratingService := service.NewRatingService(ratingRepo, storeRepo, nil)
	ownerService := service.NewOwnerService(storeRepo, ratingRepo)

	hub := ws.NewHub()

	authController := controller.NewAuthController(authService)
	adminController := controller.NewAdminController(adminService)
	storeController := controller.NewStoreController(storeService)
	ratingController := controller.NewRatingController(ratingService)
	ownerController := controller.NewOwnerController(ownerService, hub, []string{"*"})

	authMiddleware := middleware.NewAuthMiddleware("test-secret")

	router := gin.New()

	router.GET("/", authMiddleware.OptionalAuthenticate(), storeController.ListStores)

	auth := router.Group("/auth")
	{
		auth.POST("/register", authController.Register)
		auth.POST("/login", authController.Login)
		auth.GET("/me", authMiddleware.Authenticate(), authController.GetMe)
	}

	admin := router.Group("/admin", authMiddleware.Authenticate())
	{
		admin.GET("/dashboard",
			authMiddleware.RequirePermission(middleware.ActionViewAdminDashboard),
			adminController.Dashboard)

		users := admin.Group("/users", authMiddleware.RequirePermission(middleware.ActionManageUsers))
		{
			users.GET("", adminController.ListUsers)
			users.POST("", adminController.CreateUser)
			users.GET("/:id", adminController.GetUser)
		}

		stores := admin.Group("/stores", authMiddleware.RequirePermission(middleware.ActionManageStores))
		{
			stores.GET("", storeController.ListStoresForAdmin)
			stores.POST("", storeController.CreateStore)
			stores.DELETE("/:id", storeController.DeleteStore)
		}
	}

	users := router.Group("/users", authMiddleware.Authenticate())
	{
		users.GET("/stores",
			authMiddleware.RequirePermission(middleware.ActionBrowseStores),
			storeController.ListStores)

		ratings := users.Group("/stores/:store_id/ratings",
			authMiddleware.RequirePermission(middleware.ActionSubmitRating))
		{
			ratings.POST("", ratingController.CreateRating)
			ratings.PATCH("/:id", ratingController.UpdateRating)
		}
	}

	owner := router.Group("/store_owner",
		authMiddleware.Authenticate(),
		authMiddleware.RequirePermission(middleware.ActionViewOwnerDashboard))
	{
		owner.GET("/dashboard", ownerController.Dashboard)
	}

	return &TestServer{
		Router:      router,
		DB:          testDB,
		AuthService: authService,
	}
}

func (ts *TestServer) register(t *testing.T, email string) string {
	body, _ := json.Marshal(map[string]string{
		"name":     integrationName,
		"email":    email,
		"password": integrationPassword,
		"address":  "1 Test Lane",
	})
	req := httptest.NewRequest("POST", "/auth/register", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	ts.Router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp["access_token"].(string)
}

// loginAs creates a user directly in the database and mints a token with the
// same secret the middleware validates.
func (ts *TestServer) loginAs(t *testing.T, email string, role model.UserRole) string {
	user := &model.User{
		Name:         integrationName,
		Email:        email,
		PasswordHash: "x",
		Role:         role,
	}
	require.NoError(t, ts.DB.Create(user).Error)

	tokens, err := util.GenerateTokenPair(
		user.ID,
		user.Email,
		string(user.Role),
		"test-secret",
		15*time.Minute,
		7*24*time.Hour,
	)
	require.NoError(t, err)
	return tokens.AccessToken
}

func TestRegisterValidation(t *testing.T) {
	ts := setupIntegrationTest(t)
	defer db.CleanupTestDB(ts.DB)

	tests := []struct {
		name     string
		payload  map[string]string
		wantCode int
	}{
		{
			name: "Valid registration",
			payload: map[string]string{
				"name":     integrationName,
				"email":    "valid@example.com",
				"password": integrationPassword,
			},
			wantCode: http.StatusCreated,
		},
		{
			name: "Name too short",
			payload: map[string]string{
				"name":     "Shorty",
				"email":    "short@example.com",
				"password": integrationPassword,
			},
			wantCode: http.StatusBadRequest,
		},
		{
			name: "Weak password",
			payload: map[string]string{
				"name":     integrationName,
				"email":    "weak@example.com",
				"password": "weakpass",
			},
			wantCode: http.StatusBadRequest,
		},
		{
			name: "Missing email",
			payload: map[string]string{
				"name":     integrationName,
				"password": integrationPassword,
			},
			wantCode: http.StatusBadRequest,
		},
		{
			name: "Duplicate email",
			payload: map[string]string{
				"name":     integrationName,
				"email":    "valid@example.com",
				"password": integrationPassword,
			},
			wantCode: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, _ := json.Marshal(tt.payload)
			req := httptest.NewRequest("POST", "/auth/register", bytes.NewBuffer(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			ts.Router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantCode, w.Code, w.Body.String())
		})
	}
}

func TestAdminAccessControl(t *testing.T) {
	ts := setupIntegrationTest(t)
	defer db.CleanupTestDB(ts.DB)

	userToken := ts.register(t, "pleb@example.com")
	adminToken := ts.loginAs(t, "admin@example.com", model.RoleAdmin)

	t.Run("Normal user blocked from admin dashboard", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/admin/dashboard", nil)
		req.Header.Set("Authorization", "Bearer "+userToken)
		w := httptest.NewRecorder()

		ts.Router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("Anonymous blocked from admin dashboard", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/admin/dashboard", nil)
		w := httptest.NewRecorder()

		ts.Router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Admin sees dashboard counts", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/admin/dashboard", nil)
		req.Header.Set("Authorization", "Bearer "+adminToken)
		w := httptest.NewRecorder()

		ts.Router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var resp map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		stats := resp["stats"].(map[string]interface{})
		assert.Equal(t, float64(2), stats["total_users"])
	})

	t.Run("Admin creates a store", func(t *testing.T) {
		body, _ := json.Marshal(map[string]string{
			"name":    "Admin Made Store",
			"email":   "made@example.com",
			"address": "5 Admin Way",
		})
		req := httptest.NewRequest("POST", "/admin/stores", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+adminToken)
		w := httptest.NewRecorder()

		ts.Router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	})

	t.Run("Admin creates a store owner account", func(t *testing.T) {
		body, _ := json.Marshal(map[string]string{
			"name":     "Store Owner Made By An Admin",
			"email":    "made@example.com",
			"password": integrationPassword,
			"role":     string(model.RoleOwner),
		})
		req := httptest.NewRequest("POST", "/admin/users", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+adminToken)
		w := httptest.NewRecorder()

		ts.Router.ServeHTTP(w, req)

		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var resp map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		created := resp["user"].(map[string]interface{})
		assert.Equal(t, string(model.RoleOwner), created["role"])
	})
}

func TestRatingJourney(t *testing.T) {
	ts := setupIntegrationTest(t)
	defer db.CleanupTestDB(ts.DB)

	store := &model.Store{Name: "Journey Store", Email: "journey@example.com"}
	require.NoError(t, ts.DB.Create(store).Error)

	userToken := ts.register(t, "rater@example.com")

	ratingsPath := fmt.Sprintf("/users/stores/%d/ratings", store.ID)

	submit := func(value int, token string) *httptest.ResponseRecorder {
		body, _ := json.Marshal(map[string]int{"rating": value})
		req := httptest.NewRequest("POST", ratingsPath, bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		ts.Router.ServeHTTP(w, req)
		return w
	}

	// Out-of-range values never reach the database.
	assert.Equal(t, http.StatusBadRequest, submit(0, userToken).Code)
	assert.Equal(t, http.StatusBadRequest, submit(6, userToken).Code)

	// First valid submission succeeds.
	w := submit(4, userToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	ratingID := uint(created["rating"].(map[string]interface{})["id"].(float64))

	// A second submission is a conflict.
	assert.Equal(t, http.StatusConflict, submit(5, userToken).Code)

	// Modifying the existing rating works.
	body, _ := json.Marshal(map[string]int{"rating": 5})
	req := httptest.NewRequest("PATCH", fmt.Sprintf("%s/%d", ratingsPath, ratingID), bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+userToken)
	w = httptest.NewRecorder()
	ts.Router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// The listing reflects both the average and the caller's own rating.
	req = httptest.NewRequest("GET", "/users/stores?page=1", nil)
	req.Header.Set("Authorization", "Bearer "+userToken)
	w = httptest.NewRecorder()
	ts.Router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var listing map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listing))
	stores := listing["stores"].([]interface{})
	require.Len(t, stores, 1)
	first := stores[0].(map[string]interface{})
	assert.Equal(t, float64(5), first["average_rating"])
	assert.Equal(t, float64(5), first["user_rating"])

	// Admins cannot rate.
	adminToken := ts.loginAs(t, "admin@example.com", model.RoleAdmin)
	assert.Equal(t, http.StatusForbidden, submit(3, adminToken).Code)
}

func TestStoreListingPagination(t *testing.T) {
	ts := setupIntegrationTest(t)
	defer db.CleanupTestDB(ts.DB)

	for i := 1; i <= 25; i++ {
		store := model.Store{
			Name:  fmt.Sprintf("Store %02d", i),
			Email: fmt.Sprintf("page%02d@example.com", i),
		}
		require.NoError(t, ts.DB.Create(&store).Error)
	}

	// The landing page works without a token.
	req := httptest.NewRequest("GET", "/?page=2", nil)
	w := httptest.NewRecorder()
	ts.Router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, float64(25), resp["total"])

	stores := resp["stores"].([]interface{})
	require.Len(t, stores, 10)
	assert.Equal(t, "Store 11", stores[0].(map[string]interface{})["name"])
	assert.Equal(t, "Store 20", stores[9].(map[string]interface{})["name"])
}

func TestOwnerDashboard(t *testing.T) {
	ts := setupIntegrationTest(t)
	defer db.CleanupTestDB(ts.DB)

	t.Run("Owner without a store gets 404", func(t *testing.T) {
		token := ts.loginAs(t, "storeless@example.com", model.RoleOwner)

		req := httptest.NewRequest("GET", "/store_owner/dashboard", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()

		ts.Router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Owner sees their raters and average", func(t *testing.T) {
		store := &model.Store{Name: "Owned Store", Email: "owned@example.com"}
		require.NoError(t, ts.DB.Create(store).Error)

		ratingRepo := repository.NewRatingRepository(ts.DB)
		for i, value := range []int{5, 3} {
			rater := &model.User{
				Name:         fmt.Sprintf("Owner Dashboard Rater %02d Acct", i),
				Email:        fmt.Sprintf("odr%d@example.com", i),
				PasswordHash: "x",
				Role:         model.RoleUser,
			}
			require.NoError(t, ts.DB.Create(rater).Error)
			require.NoError(t, ratingRepo.Create(&model.Rating{StoreID: store.ID, UserID: rater.ID, Value: value}))
		}

		token := ts.loginAs(t, "owned@example.com", model.RoleOwner)

		req := httptest.NewRequest("GET", "/store_owner/dashboard", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()

		ts.Router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var resp map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, float64(4), resp["average_rating"])
		assert.Equal(t, float64(2), resp["total_ratings"])
		assert.Len(t, resp["ratings"].([]interface{}), 2)
	})

	t.Run("Normal user blocked from owner dashboard", func(t *testing.T) {
		token := ts.register(t, "not-an-owner@example.com")

		req := httptest.NewRequest("GET", "/store_owner/dashboard", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()

		ts.Router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}
