package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/labellens/backend/internal/models"
	"github.com/labellens/backend/internal/types"
)

var ErrReportNotFound = errors.New("report not found")

// ReportService handles misclassification reports: user claims that an
// ingredient's rating is wrong, queued for knowledge-base curation.
type ReportService struct {
	db *gorm.DB
}

func NewReportService(db *gorm.DB) *ReportService {
	return &ReportService{db: db}
}

func (s *ReportService) CreateReport(ctx context.Context, req *types.CreateReportRequest, userID *uuid.UUID) (*models.Report, error) {
	report := &models.Report{
		ID:             uuid.New(),
		UserID:         userID,
		Ingredient:     req.Ingredient,
		ExpectedRating: req.ExpectedRating,
		Comment:        req.Comment,
		Status:         "open",
	}

	if req.ScanID != "" {
		scanID, err := uuid.Parse(req.ScanID)
		if err != nil {
			return nil, fmt.Errorf("invalid scan id: %w", err)
		}
		report.ScanID = &scanID
	}

	if !types.SafetyRating(req.ExpectedRating).IsValid() {
		return nil, fmt.Errorf("invalid expected rating %q", req.ExpectedRating)
	}

	if err := s.db.WithContext(ctx).Create(report).Error; err != nil {
		return nil, fmt.Errorf("failed to create report: %w", err)
	}

	return report, nil
}

func (s *ReportService) GetReport(ctx context.Context, id uuid.UUID) (*models.Report, error) {
	var report models.Report
	if err := s.db.WithContext(ctx).Preload("User").First(&report, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReportNotFound
		}
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	return &report, nil
}

func (s *ReportService) ListReports(ctx context.Context, filters *models.ReportFilters) ([]*models.Report, error) {
	query := s.db.WithContext(ctx).Preload("User")

	if filters != nil {
		if filters.Status != "" {
			query = query.Where("status = ?", filters.Status)
		}
		if filters.Ingredient != "" {
			query = query.Where("LOWER(ingredient) = LOWER(?)", filters.Ingredient)
		}
		if filters.UserID != "" {
			if userUUID, err := uuid.Parse(filters.UserID); err == nil {
				query = query.Where("user_id = ?", userUUID)
			}
		}

		if filters.Limit > 0 {
			query = query.Limit(filters.Limit)
		} else {
			query = query.Limit(50) // Default limit
		}
		if filters.Offset > 0 {
			query = query.Offset(filters.Offset)
		}
	}

	query = query.Order("created_at DESC")

	var reports []*models.Report
	if err := query.Find(&reports).Error; err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}

	return reports, nil
}

func (s *ReportService) UpdateReportStatus(ctx context.Context, id uuid.UUID, status string, adminNotes string) error {
	updates := map[string]interface{}{
		"status": status,
	}
	if adminNotes != "" {
		updates["admin_notes"] = adminNotes
	}

	result := s.db.WithContext(ctx).Model(&models.Report{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update report status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrReportNotFound
	}

	return nil
}
