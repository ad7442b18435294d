package middleware

import (
	"net/http"

	"github.com/evanoh/storepulse-backend/internal/app/model"
	"github.com/evanoh/storepulse-backend/internal/errors"
	"github.com/gin-gonic/gin"
)

// Action names a protected capability. Routes declare the action they need
// and the policy table below decides which roles hold it, so authorization
// is evaluated once per request instead of ad hoc inside handlers.
type Action string

const (
	ActionViewAdminDashboard Action = "admin:view_dashboard"
	ActionManageUsers        Action = "admin:manage_users"
	ActionManageStores       Action = "admin:manage_stores"
	ActionBrowseStores       Action = "users:browse_stores"
	ActionSubmitRating       Action = "users:submit_rating"
	ActionViewOwnerDashboard Action = "store_owner:view_dashboard"
)

// policy maps each action to the roles allowed to perform it.
var policy = map[Action][]model.UserRole{
	ActionViewAdminDashboard: {model.RoleAdmin},
	ActionManageUsers:        {model.RoleAdmin},
	ActionManageStores:       {model.RoleAdmin},
	ActionBrowseStores:       {model.RoleUser},
	ActionSubmitRating:       {model.RoleUser},
	ActionViewOwnerDashboard: {model.RoleOwner},
}

// RoleAllowed reports whether role may perform action.
func RoleAllowed(action Action, role model.UserRole) bool {
	for _, allowed := range policy[action] {
		if allowed == role {
			return true
		}
	}
	return false
}

// RequirePermission gates a route on the policy table. Authenticate must run
// first so the role is in the request context.
func (m *AuthMiddleware) RequirePermission(action Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		role, exists := GetUserRole(c)
		if !exists {
			log.Warn("Role information not found in context", map[string]interface{}{
				"path":   c.Request.URL.Path,
				"action": string(action),
			})
			errors.RespondWithError(c, http.StatusForbidden, errors.AuthzRoleNotFound, "Role information could not be determined")
			c.Abort()
			return
		}

		if !RoleAllowed(action, role) {
			userID, _ := GetUserID(c)
			log.Warn("Insufficient permissions", map[string]interface{}{
				"user_id": userID,
				"role":    role,
				"action":  string(action),
				"path":    c.Request.URL.Path,
			})
			errors.Forbidden(c, "You do not have access to this area")
			c.Abort()
			return
		}

		c.Next()
	}
}
