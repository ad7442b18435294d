package controller

import (
	"errors"
	"net/http"

	"github.com/evanoh/storepulse-backend/internal/app/service"
	apperrors "github.com/evanoh/storepulse-backend/internal/errors"
	"github.com/evanoh/storepulse-backend/internal/middleware"
	ws "github.com/evanoh/storepulse-backend/internal/websocket"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

type OwnerController struct {
	ownerService service.OwnerService
	hub          *ws.Hub
	upgrader     websocket.Upgrader
}

func NewOwnerController(ownerService service.OwnerService, hub *ws.Hub, allowedOrigins []string) *OwnerController {
	origins := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		origins[origin] = true
	}

	return &OwnerController{
		ownerService: ownerService,
		hub:          hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if origins["*"] {
					return true
				}
				return origins[r.Header.Get("Origin")]
			},
		},
	}
}

// Dashboard shows the owner's store with the users who rated it and the
// current average. The store is matched by the owner's account email.
// GET /store_owner/dashboard?page=N
func (ctrl *OwnerController) Dashboard(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	email, ok := middleware.GetUserEmail(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	page := parsePositiveInt(c.Query("page"), 1)
	pageSize := parsePositiveInt(c.Query("page_size"), 20)

	dashboard, err := ctrl.ownerService.Dashboard(email, page, pageSize)
	if err != nil {
		if errors.Is(err, service.ErrStoreNotFound) {
			apperrors.NotFound(c, apperrors.StoreNotFound, "No store is registered for this account")
			return
		}
		log.Error("Failed to load owner dashboard", err, map[string]interface{}{
			"email": email,
		})
		apperrors.InternalError(c, "")
		return
	}

	ratings := make([]gin.H, 0, len(dashboard.Ratings))
	for i := range dashboard.Ratings {
		r := &dashboard.Ratings[i]
		ratings = append(ratings, gin.H{
			"id":         r.ID,
			"rating":     r.Value,
			"user_name":  r.User.Name,
			"user_email": r.User.Email,
			"created_at": r.CreatedAt,
			"updated_at": r.UpdatedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"store":          storePayload(dashboard.Store),
		"ratings":        ratings,
		"average_rating": dashboard.AverageRating,
		"total_ratings":  dashboard.TotalRatings,
		"page":           page,
		"page_size":      pageSize,
	})
}

// LiveRatings upgrades to a websocket that pushes rating events for the
// owner's store as they happen.
// GET /store_owner/ratings/live
func (ctrl *OwnerController) LiveRatings(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}
	email, ok := middleware.GetUserEmail(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	store, err := ctrl.ownerService.StoreForOwner(email)
	if err != nil {
		if errors.Is(err, service.ErrStoreNotFound) {
			apperrors.NotFound(c, apperrors.StoreNotFound, "No store is registered for this account")
			return
		}
		log.Error("Failed to resolve store for live feed", err, map[string]interface{}{
			"email": email,
		})
		apperrors.InternalError(c, "")
		return
	}

	conn, err := ctrl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("WebSocket upgrade failed", err, map[string]interface{}{
			"user_id": userID,
		})
		return
	}

	ws.NewClient(ctrl.hub, conn, userID, store.ID)

	log.Info("Live rating feed opened", map[string]interface{}{
		"user_id":  userID,
		"store_id": store.ID,
	})
}
