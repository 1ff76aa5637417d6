package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/labellens/backend/internal/middleware"
	"github.com/labellens/backend/internal/models"
	"github.com/labellens/backend/internal/service"
	"github.com/labellens/backend/internal/types"
)

type ReportHandler struct {
	reportService service.IReportService
	limiter       *middleware.RateLimiter
}

func NewReportHandler(reportService service.IReportService, limiter *middleware.RateLimiter) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
		limiter:       limiter,
	}
}

func (h *ReportHandler) RegisterRoutes(router *gin.RouterGroup) {
	reports := router.Group("/reports")
	{
		create := reports.Group("")
		if h.limiter != nil {
			create.Use(h.limiter.RateLimitMiddleware())
		}
		create.POST("", h.CreateReport)

		reports.GET("", h.ListReports)             // Admin only
		reports.GET("/:id", h.GetReport)           // Admin only
		reports.PUT("/:id/status", h.UpdateStatus) // Admin only
	}
}

// CreateReport files a misclassification report for an ingredient.
func (h *ReportHandler) CreateReport(c *gin.Context) {
	var req types.CreateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, ok := userIDFromContext(c)
	if !ok {
		return
	}

	report, err := h.reportService.CreateReport(c.Request.Context(), &req, &userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create report"})
		return
	}

	c.JSON(http.StatusCreated, h.reportToResponse(report))
}

// ListReports lists reports with optional filters (admin only).
func (h *ReportHandler) ListReports(c *gin.Context) {
	if !h.isAdmin(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "admin access required"})
		return
	}

	filters := &models.ReportFilters{}
	if statusParam := c.Query("status"); statusParam != "" {
		filters.Status = statusParam
	}
	if ingredientParam := c.Query("ingredient"); ingredientParam != "" {
		filters.Ingredient = ingredientParam
	}
	if userIDParam := c.Query("user_id"); userIDParam != "" {
		filters.UserID = userIDParam
	}
	if limitParam := c.Query("limit"); limitParam != "" {
		if limit, err := strconv.Atoi(limitParam); err == nil && limit > 0 {
			filters.Limit = limit
		}
	}
	if offsetParam := c.Query("offset"); offsetParam != "" {
		if offset, err := strconv.Atoi(offsetParam); err == nil && offset >= 0 {
			filters.Offset = offset
		}
	}

	reports, err := h.reportService.ListReports(c.Request.Context(), filters)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list reports"})
		return
	}

	responses := make([]types.ReportResponse, len(reports))
	for i, report := range reports {
		responses[i] = h.reportToResponse(report)
	}

	c.JSON(http.StatusOK, responses)
}

// GetReport returns one report (admin only).
func (h *ReportHandler) GetReport(c *gin.Context) {
	if !h.isAdmin(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "admin access required"})
		return
	}

	reportID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid report ID"})
		return
	}

	report, err := h.reportService.GetReport(c.Request.Context(), reportID)
	if err != nil {
		if errors.Is(err, service.ErrReportNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "report not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get report"})
		return
	}

	c.JSON(http.StatusOK, h.reportToResponse(report))
}

// UpdateStatus moves a report through the curation workflow (admin only).
func (h *ReportHandler) UpdateStatus(c *gin.Context) {
	if !h.isAdmin(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "admin access required"})
		return
	}

	reportID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid report ID"})
		return
	}

	var req types.UpdateReportStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.reportService.UpdateReportStatus(c.Request.Context(), reportID, req.Status, req.AdminNotes); err != nil {
		if errors.Is(err, service.ErrReportNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "report not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update report status"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "report status updated"})
}

func (h *ReportHandler) isAdmin(c *gin.Context) bool {
	role, exists := c.Get("role")
	if !exists {
		return false
	}
	return role == "admin"
}

func (h *ReportHandler) reportToResponse(report *models.Report) types.ReportResponse {
	return types.ReportResponse{
		ID:             report.ID,
		Ingredient:     report.Ingredient,
		ScanID:         report.ScanID,
		ExpectedRating: report.ExpectedRating,
		Comment:        report.Comment,
		Status:         report.Status,
		AdminNotes:     report.AdminNotes,
		CreatedAt:      report.CreatedAt,
		UserID:         report.UserID,
	}
}
