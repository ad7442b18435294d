package controller

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/evanoh/storepulse-backend/internal/app/repository"
	"github.com/evanoh/storepulse-backend/internal/app/service"
	apperrors "github.com/evanoh/storepulse-backend/internal/errors"
	"github.com/evanoh/storepulse-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

type AdminController struct {
	adminService service.AdminService
}

func NewAdminController(adminService service.AdminService) *AdminController {
	return &AdminController{
		adminService: adminService,
	}
}

type CreateUserRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Address  string `json:"address"`
	Role     string `json:"role" binding:"required"`
}

type UpdateUserRequest struct {
	Name    *string `json:"name"`
	Address *string `json:"address"`
	Role    *string `json:"role"`
}

// Dashboard returns the platform totals shown on the admin landing page.
// GET /admin/dashboard
func (ctrl *AdminController) Dashboard(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	stats, err := ctrl.adminService.Dashboard(c.Request.Context())
	if err != nil {
		log.Error("Failed to load dashboard stats", err, nil)
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"stats": stats})
}

// ListUsers returns a filtered, paginated user listing.
// GET /admin/users?name=&email=&role=&page=&page_size=
func (ctrl *AdminController) ListUsers(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	filter := repository.UserFilter{
		Name:  c.Query("name"),
		Email: c.Query("email"),
		Role:  c.Query("role"),
	}
	page := parsePositiveInt(c.Query("page"), 1)
	pageSize := parsePositiveInt(c.Query("page_size"), 20)

	users, total, err := ctrl.adminService.ListUsers(filter, page, pageSize)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRole) {
			apperrors.BadRequest(c, apperrors.UserInvalidRole, "Unknown role filter")
			return
		}
		log.Error("Failed to list users", err, nil)
		apperrors.InternalError(c, "")
		return
	}

	payload := make([]gin.H, 0, len(users))
	for i := range users {
		payload = append(payload, userPayload(&users[i]))
	}

	c.JSON(http.StatusOK, gin.H{
		"users":     payload,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// CreateUser creates an account with an admin-assigned role.
// POST /admin/users
func (ctrl *AdminController) CreateUser(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid user payload")
		return
	}

	user, err := ctrl.adminService.CreateUser(service.CreateUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Address:  req.Address,
		Role:     req.Role,
	})
	if err != nil {
		if field, msg, ok := registrationFieldError(err); ok {
			apperrors.RespondWithValidationError(c, map[string]string{field: msg})
			return
		}
		if errors.Is(err, service.ErrInvalidRole) {
			apperrors.BadRequest(c, apperrors.UserInvalidRole, "Unknown role")
			return
		}
		if errors.Is(err, service.ErrEmailAlreadyExists) {
			apperrors.Conflict(c, apperrors.AuthEmailAlreadyExists, "This email address is already in use")
			return
		}
		log.Error("Failed to create user", err, map[string]interface{}{
			"email": req.Email,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "create user")
		return
	}

	log.Info("User created by admin", map[string]interface{}{
		"user_id": user.ID,
		"role":    user.Role,
	})

	c.JSON(http.StatusCreated, gin.H{
		"message": "User created successfully",
		"user":    userPayload(user),
	})
}

// GetUser returns a single user's detail. For store owners the service layer
// includes their store's average rating.
// GET /admin/users/:id
func (ctrl *AdminController) GetUser(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return
	}

	detail, err := ctrl.adminService.GetUser(id)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			apperrors.NotFound(c, apperrors.UserNotFound, "User not found")
			return
		}
		apperrors.InternalError(c, "")
		return
	}

	payload := userPayload(detail.User)
	if detail.StoreRating != nil {
		payload["store_rating"] = *detail.StoreRating
	}

	c.JSON(http.StatusOK, gin.H{"user": payload})
}

// UpdateUser applies a partial update to a user.
// PATCH /admin/users/:id
func (ctrl *AdminController) UpdateUser(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, err := parseIDParam(c, "id")
	if err != nil {
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid user payload")
		return
	}

	user, err := ctrl.adminService.UpdateUser(id, service.UpdateUserInput{
		Name:    req.Name,
		Address: req.Address,
		Role:    req.Role,
	})
	if err != nil {
		if field, msg, ok := registrationFieldError(err); ok {
			apperrors.RespondWithValidationError(c, map[string]string{field: msg})
			return
		}
		if errors.Is(err, service.ErrInvalidRole) {
			apperrors.BadRequest(c, apperrors.UserInvalidRole, "Unknown role")
			return
		}
		if errors.Is(err, service.ErrUserNotFound) {
			apperrors.NotFound(c, apperrors.UserNotFound, "User not found")
			return
		}
		log.Error("Failed to update user", err, map[string]interface{}{
			"user_id": id,
		})
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "User updated successfully",
		"user":    userPayload(user),
	})
}

// DeleteUser removes a user account.
// DELETE /admin/users/:id
func (ctrl *AdminController) DeleteUser(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, err := parseIDParam(c, "id")
	if err != nil {
		return
	}

	if err := ctrl.adminService.DeleteUser(id); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			apperrors.NotFound(c, apperrors.UserNotFound, "User not found")
			return
		}
		log.Error("Failed to delete user", err, map[string]interface{}{
			"user_id": id,
		})
		apperrors.InternalError(c, "")
		return
	}

	log.Info("User deleted by admin", map[string]interface{}{
		"user_id": id,
	})

	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}

// ExportStores streams the full store listing as an xlsx workbook.
// GET /admin/stores/export
func (ctrl *AdminController) ExportStores(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	f, err := ctrl.adminService.ExportStores()
	if err != nil {
		log.Error("Failed to build store export", err, nil)
		apperrors.InternalError(c, "")
		return
	}
	defer f.Close()

	filename := service.ExportFilename(time.Now())

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))

	if err := f.Write(c.Writer); err != nil {
		log.Error("Failed to stream store export", err, nil)
	}
}

// parsePositiveInt parses s, falling back when absent or non-positive.
func parsePositiveInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

// parseIDParam reads a numeric path parameter and responds with a 400 itself
// when it is malformed.
func parseIDParam(c *gin.Context, name string) (uint, error) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid identifier")
		return 0, fmt.Errorf("invalid id parameter %q", raw)
	}
	return uint(id), nil
}
