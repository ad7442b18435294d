package controller

import (
	"errors"
	"net/http"

	"github.com/evanoh/storepulse-backend/internal/app/model"
	"github.com/evanoh/storepulse-backend/internal/app/repository"
	"github.com/evanoh/storepulse-backend/internal/app/service"
	apperrors "github.com/evanoh/storepulse-backend/internal/errors"
	"github.com/evanoh/storepulse-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

type StoreController struct {
	storeService service.StoreService
}

func NewStoreController(storeService service.StoreService) *StoreController {
	return &StoreController{
		storeService: storeService,
	}
}

type StoreRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Address  string `json:"address"`
	ImageURL string `json:"image_url"`
}

func storePayload(store *model.Store) gin.H {
	return gin.H{
		"id":             store.ID,
		"name":           store.Name,
		"email":          store.Email,
		"address":        store.Address,
		"image_url":      store.ImageURL,
		"average_rating": store.AverageRating,
	}
}

// ListStores is the public listing. Pages are a fixed ten stores, ordered by
// name. When the caller is logged in each store carries their own rating.
// GET /users/stores?page=N (also mounted at GET /)
func (ctrl *StoreController) ListStores(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	page := parsePositiveInt(c.Query("page"), 1)

	// Anonymous browsing is allowed; userID stays 0 without a token.
	userID, _ := middleware.GetUserID(c)

	stores, total, err := ctrl.storeService.ListStores(page, userID)
	if err != nil {
		log.Error("Failed to list stores", err, map[string]interface{}{
			"page": page,
		})
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"stores":    stores,
		"total":     total,
		"page":      page,
		"page_size": service.StorePageSize,
	})
}

// ListStoresForAdmin returns the filtered admin store listing.
// GET /admin/stores?name=&email=&page=&page_size=
func (ctrl *StoreController) ListStoresForAdmin(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	filter := repository.StoreFilter{
		Name:  c.Query("name"),
		Email: c.Query("email"),
	}
	page := parsePositiveInt(c.Query("page"), 1)
	pageSize := parsePositiveInt(c.Query("page_size"), 20)

	stores, total, err := ctrl.storeService.ListStoresForAdmin(filter, page, pageSize)
	if err != nil {
		log.Error("Failed to list stores for admin", err, nil)
		apperrors.InternalError(c, "")
		return
	}

	payload := make([]gin.H, 0, len(stores))
	for i := range stores {
		payload = append(payload, storePayload(&stores[i]))
	}

	c.JSON(http.StatusOK, gin.H{
		"stores":    payload,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// GetStore returns a single store.
// GET /admin/stores/:id
func (ctrl *StoreController) GetStore(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return
	}

	store, err := ctrl.storeService.GetStore(id)
	if err != nil {
		if errors.Is(err, service.ErrStoreNotFound) {
			apperrors.NotFound(c, apperrors.StoreNotFound, "Store not found")
			return
		}
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"store": storePayload(store)})
}

// CreateStore registers a new store.
// POST /admin/stores
func (ctrl *StoreController) CreateStore(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req StoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid store payload")
		return
	}

	store, err := ctrl.storeService.CreateStore(service.StoreInput{
		Name:     req.Name,
		Email:    req.Email,
		Address:  req.Address,
		ImageURL: req.ImageURL,
	})
	if err != nil {
		if ctrl.respondStoreInputError(c, err) {
			return
		}
		log.Error("Failed to create store", err, map[string]interface{}{
			"email": req.Email,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "create store")
		return
	}

	log.Info("Store created", map[string]interface{}{
		"store_id": store.ID,
		"name":     store.Name,
	})

	c.JSON(http.StatusCreated, gin.H{
		"message": "Store created successfully",
		"store":   storePayload(store),
	})
}

// UpdateStore replaces a store's profile fields.
// PATCH /admin/stores/:id
func (ctrl *StoreController) UpdateStore(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, err := parseIDParam(c, "id")
	if err != nil {
		return
	}

	var req StoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid store payload")
		return
	}

	store, err := ctrl.storeService.UpdateStore(id, service.StoreInput{
		Name:     req.Name,
		Email:    req.Email,
		Address:  req.Address,
		ImageURL: req.ImageURL,
	})
	if err != nil {
		if errors.Is(err, service.ErrStoreNotFound) {
			apperrors.NotFound(c, apperrors.StoreNotFound, "Store not found")
			return
		}
		if ctrl.respondStoreInputError(c, err) {
			return
		}
		log.Error("Failed to update store", err, map[string]interface{}{
			"store_id": id,
		})
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Store updated successfully",
		"store":   storePayload(store),
	})
}

// DeleteStore removes a store and its ratings.
// DELETE /admin/stores/:id
func (ctrl *StoreController) DeleteStore(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, err := parseIDParam(c, "id")
	if err != nil {
		return
	}

	if err := ctrl.storeService.DeleteStore(id); err != nil {
		if errors.Is(err, service.ErrStoreNotFound) {
			apperrors.NotFound(c, apperrors.StoreNotFound, "Store not found")
			return
		}
		log.Error("Failed to delete store", err, map[string]interface{}{
			"store_id": id,
		})
		apperrors.InternalError(c, "")
		return
	}

	log.Info("Store deleted", map[string]interface{}{
		"store_id": id,
	})

	c.JSON(http.StatusOK, gin.H{"message": "Store deleted successfully"})
}

func (ctrl *StoreController) respondStoreInputError(c *gin.Context, err error) bool {
	switch {
	case errors.Is(err, service.ErrInvalidStoreName):
		apperrors.RespondWithValidationError(c, map[string]string{
			"name": "Store name is required and must be at most 60 characters",
		})
		return true
	case errors.Is(err, service.ErrInvalidAddress):
		apperrors.RespondWithValidationError(c, map[string]string{
			"address": "Address must be at most 400 characters",
		})
		return true
	case errors.Is(err, service.ErrStoreEmailExists):
		apperrors.Conflict(c, apperrors.StoreEmailExists, "A store with this email already exists")
		return true
	}
	return false
}
