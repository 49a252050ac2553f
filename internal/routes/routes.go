package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/aciforge/portal/internal/config"
	"github.com/aciforge/portal/internal/controllers"
	"github.com/aciforge/portal/internal/forge"
	"github.com/aciforge/portal/internal/middleware"
	"github.com/aciforge/portal/internal/session"
)

// SetupRoutes configures all application routes
func SetupRoutes(r *gin.Engine, cfg config.Config, client *forge.Client, store *session.Store) {
	views := controllers.NewViewRegistry(client)

	// View state must not outlive its session; evicted tokens take their
	// cached collections with them.
	store.OnEvict(views.Drop)

	authController := controllers.NewAuthController(client, store, views)
	maintenanceController := controllers.NewMaintenanceController(client, store, views)
	userController := controllers.NewUserController(client, store, views)
	toolController := controllers.NewToolController(client, store, views)

	authLimiter := middleware.NewRateLimiter(cfg.AuthRatePerSec, cfg.AuthRateBurst)
	apiLimiter := middleware.NewRateLimiter(cfg.APIRatePerSec, cfg.APIRateBurst)

	api := r.Group("/api")
	{
		// Auth routes
		auth := api.Group("/auth")
		{
			auth.POST("/login", middleware.RateLimitMiddleware(authLimiter), authController.Login)
		}

		// Protected routes
		protected := api.Group("/")
		protected.Use(middleware.RateLimitMiddleware(apiLimiter))
		protected.Use(middleware.AuthMiddleware(store))
		{
			protected.POST("/auth/logout", authController.Logout)
			protected.GET("/auth/me", authController.Me)

			// Maintenance requests
			requests := protected.Group("/maintenance-requests")
			{
				requests.GET("", maintenanceController.ListAll)
				requests.GET("/my-requests", maintenanceController.ListMine)
				requests.POST("", maintenanceController.Create)
				requests.GET("/:id", maintenanceController.Detail)
				requests.PATCH("/:id/status", maintenanceController.UpdateStatus)
				requests.DELETE("/:id", maintenanceController.Delete)
				requests.POST("/:id/upload", maintenanceController.Upload)
				requests.GET("/:id/attachments/:filename", maintenanceController.DownloadAttachment)
			}

			// User management (superuser only, enforced in the controller)
			users := protected.Group("/users")
			{
				users.GET("", userController.GetUsers)
				users.POST("", userController.CreateUser)
				users.PUT("/:id", userController.UpdateUser)
				users.DELETE("/:id", userController.DeleteUser)
				users.POST("/send-credentials/:id", userController.SendCredentials)
				users.POST("/send-credentials-to-all", userController.SendCredentialsToAll)
			}

			protected.GET("/roles", userController.GetRoles)

			// Tools and launch gating
			tools := protected.Group("/tools")
			{
				tools.GET("", toolController.GetTools)
				tools.GET("/:name/access", toolController.CheckAccess)
			}

			protected.GET("/presets/equipment", toolController.GetEquipmentPresets)
		}
	}
}
