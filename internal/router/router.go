package router

import (
	"github.com/evanoh/storepulse-backend/config"
	"github.com/evanoh/storepulse-backend/internal/app/controller"
	"github.com/evanoh/storepulse-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

type Router struct {
	authController   *controller.AuthController
	adminController  *controller.AdminController
	storeController  *controller.StoreController
	ratingController *controller.RatingController
	ownerController  *controller.OwnerController
	uploadController *controller.UploadController
	authMiddleware   *middleware.AuthMiddleware
	config           *config.Config
}

func NewRouter(
	authController *controller.AuthController,
	adminController *controller.AdminController,
	storeController *controller.StoreController,
	ratingController *controller.RatingController,
	ownerController *controller.OwnerController,
	uploadController *controller.UploadController,
	authMiddleware *middleware.AuthMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:   authController,
		adminController:  adminController,
		storeController:  storeController,
		ratingController: ratingController,
		ownerController:  ownerController,
		uploadController: uploadController,
		authMiddleware:   authMiddleware,
		config:           cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"message": "StorePulse API is running",
		})
	})

	// The landing page is the store listing, browsable without an account.
	router.GET("/", r.authMiddleware.OptionalAuthenticate(), r.storeController.ListStores)

	auth := router.Group("/auth")
	{
		auth.POST("/register", r.authController.Register)
		auth.POST("/login", r.authController.Login)
		auth.GET("/me", r.authMiddleware.Authenticate(), r.authController.GetMe)
		auth.PATCH("/me", r.authMiddleware.Authenticate(), r.authController.UpdateMe)
		auth.PATCH("/password", r.authMiddleware.Authenticate(), r.authController.ChangePassword)
	}

	admin := router.Group("/admin", r.authMiddleware.Authenticate())
	{
		admin.GET("/dashboard",
			r.authMiddleware.RequirePermission(middleware.ActionViewAdminDashboard),
			r.adminController.Dashboard)

		users := admin.Group("/users", r.authMiddleware.RequirePermission(middleware.ActionManageUsers))
		{
			users.GET("", r.adminController.ListUsers)
			users.POST("", r.adminController.CreateUser)
			users.GET("/:id", r.adminController.GetUser)
			users.PATCH("/:id", r.adminController.UpdateUser)
			users.DELETE("/:id", r.adminController.DeleteUser)
		}

		stores := admin.Group("/stores", r.authMiddleware.RequirePermission(middleware.ActionManageStores))
		{
			stores.GET("", r.storeController.ListStoresForAdmin)
			stores.POST("", r.storeController.CreateStore)
			stores.GET("/export", r.adminController.ExportStores)
			stores.GET("/:id", r.storeController.GetStore)
			stores.PATCH("/:id", r.storeController.UpdateStore)
			stores.DELETE("/:id", r.storeController.DeleteStore)
		}

		admin.POST("/uploads/presign",
			r.authMiddleware.RequirePermission(middleware.ActionManageStores),
			r.uploadController.PresignStoreImage)
	}

	users := router.Group("/users", r.authMiddleware.Authenticate())
	{
		users.GET("/stores",
			r.authMiddleware.RequirePermission(middleware.ActionBrowseStores),
			r.storeController.ListStores)

		ratings := users.Group("/stores/:store_id/ratings",
			r.authMiddleware.RequirePermission(middleware.ActionSubmitRating))
		{
			ratings.POST("", r.ratingController.CreateRating)
			ratings.PATCH("/:id", r.ratingController.UpdateRating)
		}
	}

	owner := router.Group("/store_owner",
		r.authMiddleware.Authenticate(),
		r.authMiddleware.RequirePermission(middleware.ActionViewOwnerDashboard))
	{
		owner.GET("/dashboard", r.ownerController.Dashboard)
		owner.GET("/ratings/live", r.ownerController.LiveRatings)
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
