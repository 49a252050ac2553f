package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/aciforge/portal/internal/config"
	"github.com/aciforge/portal/internal/forge"
	"github.com/aciforge/portal/internal/logger"
	"github.com/aciforge/portal/internal/middleware"
	"github.com/aciforge/portal/internal/routes"
	"github.com/aciforge/portal/internal/session"

	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func CORSMiddleware(origin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Max-Age", "86400")

		// Handle preflight request
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}

		c.Next()
	}
}

func main() {
	// Initialize logger first
	logger.Initialize()

	// Load environment variables
	if err := godotenv.Load(); err != nil {
		logger.Warn("No .env file found, using environment variables", nil)
	}

	cfg := config.Load()

	client := forge.NewClient(cfg.ForgeAPIURL, cfg.ForgeTimeout)
	store := session.NewStore(cfg.SessionTTL)

	// Set Gin mode
	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create router without default middleware
	r := gin.New()

	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false

	r.Use(middleware.RequestLoggerMiddleware())
	r.Use(CORSMiddleware(cfg.CORSOrigin))
	r.Use(gin.Recovery())

	// Health check reports whether the remote ACI FORGE API is reachable
	r.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		apiStatus := "ok"
		var apiError string
		if err := client.Health(ctx); err != nil {
			apiStatus = "error"
			apiError = err.Error()
		}

		overallStatus := "ok"
		statusCode := http.StatusOK
		if apiStatus != "ok" {
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		c.JSON(statusCode, gin.H{
			"status":    overallStatus,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"version":   "1.0.0",
			"services": gin.H{
				"forge_api": gin.H{
					"status": apiStatus,
					"error":  apiError,
				},
			},
		})
	})

	// Setup routes
	routes.SetupRoutes(r, cfg, client, store)

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: r,
	}

	logger.Info("Starting ACI FORGE portal", map[string]interface{}{
		"port":      cfg.HTTPPort,
		"forge_api": cfg.ForgeAPIURL,
		"gin_mode":  gin.Mode(),
	})

	// Start server in a goroutine
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}()

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	<-sigChan
	logger.Info("Shutting down server gracefully...", nil)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", map[string]interface{}{
			"error": err.Error(),
		})
	} else {
		logger.Info("Server exited gracefully", nil)
	}
}
