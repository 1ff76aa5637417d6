package api

import (
	"encoding/base64"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/labellens/backend/internal/middleware"
	"github.com/labellens/backend/internal/service"
	"github.com/labellens/backend/internal/types"
)

// maxImageBytes caps decoded label photos at 10MB.
const maxImageBytes = 10 << 20

type ScanHandler struct {
	pipeline service.IScanPipeline
	history  service.IScanHistoryService
	limiter  *middleware.RateLimiter
}

func NewScanHandler(pipeline service.IScanPipeline, history service.IScanHistoryService, limiter *middleware.RateLimiter) *ScanHandler {
	return &ScanHandler{
		pipeline: pipeline,
		history:  history,
		limiter:  limiter,
	}
}

func (h *ScanHandler) RegisterRoutes(router *gin.RouterGroup) {
	scans := router.Group("/scans")
	{
		create := scans.Group("")
		if h.limiter != nil {
			create.Use(h.limiter.RateLimitMiddleware())
		}
		create.POST("", h.CreateScan)
		create.POST("/analyze", h.AnalyzeText)

		scans.GET("", h.ListScans)
		scans.GET("/:id", h.GetScan)
		scans.DELETE("/:id", h.DeleteScan)
	}
}

// CreateScan runs the full pipeline on a base64-encoded label photo.
// A failed extraction still persists the session; the response status
// tells the client which terminal state the scan reached.
func (h *ScanHandler) CreateScan(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		return
	}

	var req types.CreateScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	image, err := base64.StdEncoding.DecodeString(req.Image)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image must be base64-encoded"})
		return
	}
	if len(image) == 0 || len(image) > maxImageBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image must be between 1 byte and 10MB"})
		return
	}

	mimeType := req.MimeType
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	session, err := h.pipeline.ProcessScan(c.Request.Context(), userID, image, mimeType)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrExtractionFailed):
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error": "could not read the label",
				"scan":  session,
			})
		case errors.Is(err, service.ErrPersistenceFailed):
			c.JSON(http.StatusInternalServerError, gin.H{"error": "analysis succeeded but could not be saved"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process scan"})
		}
		return
	}

	c.JSON(http.StatusCreated, session)
}

// AnalyzeText classifies already-extracted label text or a prepared
// ingredient list without creating a scan session.
func (h *ScanHandler) AnalyzeText(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		return
	}

	var req types.AnalyzeTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	candidates := req.Ingredients
	if req.Text != "" {
		candidates = append(candidates, req.Text)
	}
	if len(candidates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text or ingredients required"})
		return
	}

	result, err := h.pipeline.AnalyzeIngredients(c.Request.Context(), userID, candidates)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to analyze ingredients"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// ListScans returns the user's scan history, newest first.
func (h *ScanHandler) ListScans(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		return
	}

	limit := 50
	if limitParam := c.Query("limit"); limitParam != "" {
		if parsed, err := strconv.Atoi(limitParam); err == nil && parsed > 0 && parsed <= 200 {
			limit = parsed
		}
	}

	sessions, err := h.history.List(c.Request.Context(), userID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list scans"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"scans": sessions})
}

func (h *ScanHandler) GetScan(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		return
	}

	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid scan ID"})
		return
	}

	session, err := h.history.Get(c.Request.Context(), userID, sessionID)
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "scan not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get scan"})
		return
	}

	c.JSON(http.StatusOK, session)
}

func (h *ScanHandler) DeleteScan(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		return
	}

	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid scan ID"})
		return
	}

	if err := h.history.Delete(c.Request.Context(), userID, sessionID); err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "scan not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete scan"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "scan deleted"})
}

// userIDFromContext extracts the authenticated user's ID set by the auth
// middleware, writing the error response itself on failure.
func userIDFromContext(c *gin.Context) (uuid.UUID, bool) {
	value, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return uuid.Nil, false
	}
	userID, ok := value.(uuid.UUID)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return uuid.Nil, false
	}
	return userID, true
}
