package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/labellens/backend/internal/service"
	"github.com/labellens/backend/internal/types"
)

type DietaryHandler struct {
	profiles service.IDietaryProfileService
}

func NewDietaryHandler(profiles service.IDietaryProfileService) *DietaryHandler {
	return &DietaryHandler{profiles: profiles}
}

func (h *DietaryHandler) RegisterRoutes(router *gin.RouterGroup) {
	dietary := router.Group("/dietary")
	{
		dietary.GET("/preferences", h.ListPreferences)
		dietary.PUT("/preferences/:key", h.TogglePreference)
		dietary.GET("/avoidances", h.ListAvoidances)
		dietary.POST("/avoidances", h.CreateAvoidance)
		dietary.DELETE("/avoidances/:id", h.DeleteAvoidance)
	}
}

// ListPreferences returns the preference catalog with the user's active flags.
func (h *DietaryHandler) ListPreferences(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		return
	}

	prefs, err := h.profiles.ListPreferences(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list preferences"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"preferences": prefs})
}

// TogglePreference flips one preference's active flag. The change applies
// from the next scan; in-flight scans keep their snapshot.
func (h *DietaryHandler) TogglePreference(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		return
	}

	var req types.TogglePreferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	key := c.Param("key")
	if err := h.profiles.TogglePreference(c.Request.Context(), userID, key, req.Active); err != nil {
		if errors.Is(err, service.ErrUnknownPreference) {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown preference"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update preference"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"key": key, "active": req.Active})
}

func (h *DietaryHandler) ListAvoidances(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		return
	}

	avoidances, err := h.profiles.ListAvoidances(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list avoidances"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"avoidances": avoidances})
}

func (h *DietaryHandler) CreateAvoidance(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		return
	}

	var req types.CreateAvoidanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	avoidance, err := h.profiles.AddAvoidance(c.Request.Context(), userID, req.Ingredient, req.Reason, req.Severity)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create avoidance"})
		return
	}

	c.JSON(http.StatusCreated, avoidance)
}

func (h *DietaryHandler) DeleteAvoidance(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		return
	}

	avoidanceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid avoidance ID"})
		return
	}

	if err := h.profiles.RemoveAvoidance(c.Request.Context(), userID, avoidanceID); err != nil {
		if errors.Is(err, service.ErrAvoidanceNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "avoidance not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete avoidance"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "avoidance deleted"})
}
