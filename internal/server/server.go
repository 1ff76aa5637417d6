package server

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/labellens/backend/config"
	"github.com/labellens/backend/internal/api"
	"github.com/labellens/backend/internal/database"
	"github.com/labellens/backend/internal/middleware"
	"github.com/labellens/backend/internal/service"
)

// Server is the composition root: it owns one instance of every service
// and the HTTP listener.
type Server struct {
	cfg    *config.Config
	router *gin.Engine
	http   *http.Server
	db     *gorm.DB
}

// Connect opens the application database.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBSSLMode,
	)
	return gorm.Open(postgres.Open(dsn), &gorm.Config{})
}

// New wires configuration, storage and services into a ready-to-start
// server.
func New(cfg *config.Config, db *gorm.DB) *Server {
	redisClient, err := database.NewRedisClient(cfg)
	if err != nil {
		log.Printf("Warning: Redis unavailable, scan result caching disabled: %v", err)
		redisClient = nil
	}

	profiles := service.NewDietaryProfileService(db)
	history := service.NewScanHistoryService(db, redisClient)
	authService := service.NewAuthService(db, profiles, cfg.JWTSecret)

	var ai service.AIProvider
	if aiService, err := service.NewAIService(); err != nil {
		log.Printf("Warning: AI classification disabled: %v", err)
	} else {
		ai = aiService
	}

	ocrService, err := service.NewOCRService()
	if err != nil {
		log.Fatalf("Failed to create OCR service: %v", err)
	}

	var images *service.ImageService
	if s3Config, err := config.NewS3Config(context.Background()); err != nil {
		log.Printf("Warning: S3 unavailable, label images will not be retained: %v", err)
	} else {
		images = service.NewImageService(s3Config)
	}

	classifier := service.NewSafetyClassifier(
		service.NewFuzzyMatcher(service.NewKnowledgeBase()), ai)
	pipeline := service.NewScanPipeline(ocrService, classifier, profiles, history, images)

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	router.Use(middleware.CORS())
	router.Use(middleware.ErrorHandler())

	api.RegisterRoutes(router, db, authService, pipeline, history, profiles, cfg)

	return &Server{
		cfg:    cfg,
		router: router,
		db:     db,
	}
}

// Start begins serving HTTP. It blocks until the listener stops.
func (s *Server) Start() error {
	s.http = &http.Server{
		Addr:    s.cfg.ServerHost + ":" + s.cfg.ServerPort,
		Handler: s.router,
	}

	log.Printf("Listening on %s", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http != nil {
		return s.http.Shutdown(ctx)
	}
	return nil
}
