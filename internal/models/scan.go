package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	pgvector "github.com/pgvector/pgvector-go"
	"gorm.io/gorm"

	"github.com/labellens/backend/internal/types"
)

// Scan session lifecycle. Transitions only move forward:
// pending -> processing -> completed | failed.
const (
	ScanStatusPending    = "pending"
	ScanStatusProcessing = "processing"
	ScanStatusCompleted  = "completed"
	ScanStatusFailed     = "failed"
)

// JSONBAnalyses stores the per-ingredient results of a scan as JSONB.
type JSONBAnalyses []types.PersonalizedAnalysis

// Value implements the driver.Valuer interface
func (a JSONBAnalyses) Value() (driver.Value, error) {
	if len(a) == 0 {
		return "[]", nil
	}
	return json.Marshal(a)
}

// Scan implements the sql.Scanner interface
func (a *JSONBAnalyses) Scan(value interface{}) error {
	if value == nil {
		*a = JSONBAnalyses{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}

	return json.Unmarshal(bytes, a)
}

// ScanSession is one label scan from submission through final analysis.
// Status transitions and the final result are persisted through the scan
// history service; a failed scan keeps its error message and no result.
type ScanSession struct {
	ID                uuid.UUID       `gorm:"type:varchar(36);primarykey" json:"id"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
	DeletedAt         gorm.DeletedAt  `gorm:"index" json:"-"`
	UserID            uuid.UUID       `gorm:"type:varchar(36);not null;index" json:"user_id"`
	Status            string          `gorm:"size:20;not null;default:'pending'" json:"status"`
	ImageURL          string          `gorm:"size:255" json:"image_url,omitempty"`
	OCRText           string          `gorm:"type:text" json:"ocr_text,omitempty"`
	OCRConfidence     int             `json:"ocr_confidence,omitempty"`
	Ingredients       JSONBAnalyses   `gorm:"type:jsonb;not null;default:'[]'" json:"ingredients"`
	OverallScore      int             `json:"overall_score"`
	SafeCount         int             `json:"safe_count"`
	CautionCount      int             `json:"caution_count"`
	AvoidCount        int             `json:"avoid_count"`
	PersonalizedCount int             `json:"personalized_count"`
	ErrorMessage      string          `gorm:"type:text" json:"error_message,omitempty"`
	ProcessingMS      int64           `json:"processing_ms"`
	// Nullable: only completed scans carry an embedding, and the zero
	// vector does not round-trip through a vector(3) column.
	Embedding *pgvector.Vector `gorm:"type:vector(3)" json:"-"`
}

func (ScanSession) TableName() string {
	return "scan_sessions"
}
