package types

import (
	"time"

	"github.com/google/uuid"
)

// AnalyzeTextRequest carries already-extracted label text or a prepared
// candidate list, for callers that skip the OCR step (manual entry, tests).
type AnalyzeTextRequest struct {
	Text        string   `json:"text"`
	Ingredients []string `json:"ingredients"`
}

// CreateScanRequest represents the request body for submitting a label photo.
// Image is base64-encoded; MimeType defaults to image/jpeg.
type CreateScanRequest struct {
	Image    string `json:"image" binding:"required"`
	MimeType string `json:"mime_type"`
}

// TogglePreferenceRequest toggles one dietary preference on or off.
type TogglePreferenceRequest struct {
	Active bool `json:"active"`
}

// CreateAvoidanceRequest adds a user-authored ingredient avoidance.
type CreateAvoidanceRequest struct {
	Ingredient string `json:"ingredient" binding:"required,max=100"`
	Reason     string `json:"reason" binding:"max=500"`
	Severity   string `json:"severity" binding:"required,oneof=avoid caution"`
}

// Report API types. Reports let users flag a classification they believe
// is wrong so the knowledge base can be corrected.
type CreateReportRequest struct {
	Ingredient     string `json:"ingredient" binding:"required,max=100"`
	ScanID         string `json:"scan_id"`
	ExpectedRating string `json:"expected_rating" binding:"required,oneof=safe caution avoid"`
	Comment        string `json:"comment" binding:"max=2000"`
}

type ReportResponse struct {
	ID             uuid.UUID  `json:"id"`
	Ingredient     string     `json:"ingredient"`
	ScanID         *uuid.UUID `json:"scan_id,omitempty"`
	ExpectedRating string     `json:"expected_rating"`
	Comment        string     `json:"comment,omitempty"`
	Status         string     `json:"status"`
	AdminNotes     string     `json:"admin_notes,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UserID         *uuid.UUID `json:"user_id,omitempty"`
}

type UpdateReportStatusRequest struct {
	Status     string `json:"status" binding:"required,oneof=open reviewed accepted rejected"`
	AdminNotes string `json:"admin_notes"`
}

// PreferenceResponse is one entry of the dietary preference catalog merged
// with the user's active flag.
type PreferenceResponse struct {
	Key         string `json:"key"`
	Label       string `json:"label"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Active      bool   `json:"active"`
}
