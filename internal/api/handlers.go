package api

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/labellens/backend/config"
	"github.com/labellens/backend/internal/database"
	"github.com/labellens/backend/internal/middleware"
	"github.com/labellens/backend/internal/service"
)

// HealthCheck returns the health status of the API
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"message": "LabelLens API is running",
		"version": "v1.0.0",
	})
}

// RegisterRoutes registers all API routes
func RegisterRoutes(
	router *gin.Engine,
	db *gorm.DB,
	authService service.IAuthService,
	pipeline service.IScanPipeline,
	history service.IScanHistoryService,
	profiles service.IDietaryProfileService,
	cfg *config.Config,
) {
	// Health check endpoint (no auth required)
	router.GET("/health", HealthCheck)
	router.GET("/api/health", HealthCheck)

	// Initialize Redis for rate limiting
	redisClient, err := database.NewRedisClient(cfg)
	if err != nil {
		log.Printf("Warning: Failed to connect to Redis for rate limiting: %v", err)
		// Continue without rate limiting if Redis is not available
		redisClient = nil
	}

	var scanLimiter *middleware.RateLimiter
	var reportLimiter *middleware.RateLimiter
	if redisClient != nil {
		scanLimiter = middleware.NewScanCreationRateLimiter(redisClient)
		reportLimiter = middleware.NewReportCreationRateLimiter(redisClient)
	}

	reportService := service.NewReportService(db)

	authHandler := NewAuthHandler(authService)
	scanHandler := NewScanHandler(pipeline, history, scanLimiter)
	dietaryHandler := NewDietaryHandler(profiles)
	reportHandler := NewReportHandler(reportService, reportLimiter)

	v1 := router.Group("/api/v1")
	authHandler.RegisterRoutes(v1)

	// Everything past auth requires a valid token.
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(authService))
	scanHandler.RegisterRoutes(protected)
	dietaryHandler.RegisterRoutes(protected)
	reportHandler.RegisterRoutes(protected)
}
