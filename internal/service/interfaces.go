package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/labellens/backend/internal/models"
	"github.com/labellens/backend/internal/types"
)

// IAuthService defines the interface for authentication operations
type IAuthService interface {
	Register(ctx context.Context, name, email, password, username string) (string, error)
	Login(ctx context.Context, email, password string) (string, error)
	ValidateToken(token string) (*types.TokenClaims, error)
}

// IScanPipeline defines the interface for running label scans
type IScanPipeline interface {
	ProcessScan(ctx context.Context, userID uuid.UUID, image []byte, mimeType string) (*models.ScanSession, error)
	AnalyzeIngredients(ctx context.Context, userID uuid.UUID, candidates []string) (*types.AnalysisResult, error)
}

// IScanHistoryService defines the interface for scan session storage
type IScanHistoryService interface {
	Create(ctx context.Context, session *models.ScanSession) error
	Upsert(ctx context.Context, session *models.ScanSession) error
	Get(ctx context.Context, userID, sessionID uuid.UUID) (*models.ScanSession, error)
	List(ctx context.Context, userID uuid.UUID, limit int) ([]models.ScanSession, error)
	Delete(ctx context.Context, userID, sessionID uuid.UUID) error
}

// IDietaryProfileService defines the interface for restriction state
type IDietaryProfileService interface {
	SeedDefaults(ctx context.Context, userID uuid.UUID) error
	ListPreferences(ctx context.Context, userID uuid.UUID) ([]types.PreferenceResponse, error)
	TogglePreference(ctx context.Context, userID uuid.UUID, key string, active bool) error
	AddAvoidance(ctx context.Context, userID uuid.UUID, ingredient, reason, severity string) (*models.CustomAvoidance, error)
	ListAvoidances(ctx context.Context, userID uuid.UUID) ([]models.CustomAvoidance, error)
	RemoveAvoidance(ctx context.Context, userID, avoidanceID uuid.UUID) error
	Snapshot(ctx context.Context, userID uuid.UUID) (*RestrictionEngine, error)
}

// IReportService defines the interface for misclassification reports
type IReportService interface {
	CreateReport(ctx context.Context, req *types.CreateReportRequest, userID *uuid.UUID) (*models.Report, error)
	GetReport(ctx context.Context, id uuid.UUID) (*models.Report, error)
	ListReports(ctx context.Context, filters *models.ReportFilters) ([]*models.Report, error)
	UpdateReportStatus(ctx context.Context, id uuid.UUID, status string, adminNotes string) error
}
