package controller

import (
	"errors"
	"net/http"

	"github.com/evanoh/storepulse-backend/internal/app/model"
	"github.com/evanoh/storepulse-backend/internal/app/service"
	apperrors "github.com/evanoh/storepulse-backend/internal/errors"
	"github.com/evanoh/storepulse-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

type RatingController struct {
	ratingService service.RatingService
}

func NewRatingController(ratingService service.RatingService) *RatingController {
	return &RatingController{
		ratingService: ratingService,
	}
}

type RatingRequest struct {
	Rating int `json:"rating" binding:"required,min=1,max=5"`
}

func ratingPayload(rating *model.Rating) gin.H {
	return gin.H{
		"id":         rating.ID,
		"store_id":   rating.StoreID,
		"user_id":    rating.UserID,
		"rating":     rating.Value,
		"created_at": rating.CreatedAt,
		"updated_at": rating.UpdatedAt,
	}
}

// CreateRating submits the caller's rating for a store. One rating per user
// per store; a second submission is a conflict, not an overwrite.
// POST /users/stores/:store_id/ratings
func (ctrl *RatingController) CreateRating(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	storeID, err := parseIDParam(c, "store_id")
	if err != nil {
		return
	}

	var req RatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.RatingInvalidValue, "Rating must be an integer between 1 and 5")
		return
	}

	rating, err := ctrl.ratingService.SubmitRating(userID, storeID, req.Rating)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrStoreNotFound):
			apperrors.NotFound(c, apperrors.StoreNotFound, "Store not found")
		case errors.Is(err, service.ErrInvalidRatingValue):
			apperrors.BadRequest(c, apperrors.RatingInvalidValue, "Rating must be an integer between 1 and 5")
		case errors.Is(err, service.ErrAlreadyRated):
			apperrors.Conflict(c, apperrors.RatingAlreadyExists, "You have already rated this store; modify your existing rating instead")
		default:
			log.Error("Failed to submit rating", err, map[string]interface{}{
				"user_id":  userID,
				"store_id": storeID,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "submit rating")
		}
		return
	}

	log.Info("Rating submitted", map[string]interface{}{
		"rating_id": rating.ID,
		"store_id":  storeID,
		"user_id":   userID,
		"rating":    rating.Value,
	})

	c.JSON(http.StatusCreated, gin.H{
		"message": "Rating submitted successfully",
		"rating":  ratingPayload(rating),
	})
}

// UpdateRating modifies the caller's existing rating.
// PATCH /users/stores/:store_id/ratings/:id
func (ctrl *RatingController) UpdateRating(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	storeID, err := parseIDParam(c, "store_id")
	if err != nil {
		return
	}
	ratingID, err := parseIDParam(c, "id")
	if err != nil {
		return
	}

	var req RatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.RatingInvalidValue, "Rating must be an integer between 1 and 5")
		return
	}

	rating, err := ctrl.ratingService.UpdateRating(userID, storeID, ratingID, req.Rating)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRatingNotFound):
			apperrors.NotFound(c, apperrors.RatingNotFound, "Rating not found")
		case errors.Is(err, service.ErrNotRatingOwner):
			apperrors.Forbidden(c, "You can only modify your own rating")
		case errors.Is(err, service.ErrInvalidRatingValue):
			apperrors.BadRequest(c, apperrors.RatingInvalidValue, "Rating must be an integer between 1 and 5")
		default:
			log.Error("Failed to update rating", err, map[string]interface{}{
				"rating_id": ratingID,
				"user_id":   userID,
			})
			apperrors.InternalError(c, "")
		}
		return
	}

	log.Info("Rating updated", map[string]interface{}{
		"rating_id": rating.ID,
		"store_id":  storeID,
		"user_id":   userID,
		"rating":    rating.Value,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Rating updated successfully",
		"rating":  ratingPayload(rating),
	})
}
