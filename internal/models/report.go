package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Report is a user-submitted claim that an ingredient classification is
// wrong. Reports feed knowledge-base curation; they never change a
// classification directly.
type Report struct {
	ID             uuid.UUID      `gorm:"type:varchar(36);primarykey" json:"id"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
	UserID         *uuid.UUID     `gorm:"type:varchar(36)" json:"user_id,omitempty"`
	User           *User          `gorm:"foreignKey:UserID" json:"user,omitempty"`
	ScanID         *uuid.UUID     `gorm:"type:varchar(36)" json:"scan_id,omitempty"`
	Ingredient     string         `gorm:"size:100;not null" json:"ingredient"`
	ExpectedRating string         `gorm:"size:10;not null" json:"expected_rating"`
	Comment        string         `gorm:"type:text" json:"comment"`
	Status         string         `gorm:"size:20;default:'open'" json:"status"` // open, reviewed, accepted, rejected
	AdminNotes     string         `gorm:"type:text" json:"admin_notes"`
}

// TableName returns the table name for the Report model
func (Report) TableName() string {
	return "reports"
}

// ReportFilters represents filters for listing reports
type ReportFilters struct {
	Status     string `json:"status,omitempty"`
	Ingredient string `json:"ingredient,omitempty"`
	UserID     string `json:"user_id,omitempty"`
	Limit      int    `json:"limit,omitempty"`
	Offset     int    `json:"offset,omitempty"`
}
