package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DietaryPreference is a user's toggle for one entry of the built-in
// preference catalog. A row exists per user per catalog key; Active
// defaults to false until the user opts in.
type DietaryPreference struct {
	ID            uuid.UUID      `gorm:"type:varchar(36);primarykey" json:"id"`
	UserID        uuid.UUID      `gorm:"type:varchar(36);not null;index" json:"user_id"`
	PreferenceKey string         `gorm:"size:50;not null" json:"preference_key"`
	Active        bool           `gorm:"not null;default:false" json:"active"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

func (DietaryPreference) TableName() string {
	return "dietary_preferences"
}

// CustomAvoidance is a user-authored ingredient to avoid or flag,
// matched by substring against classified ingredient names.
type CustomAvoidance struct {
	ID         uuid.UUID `gorm:"type:varchar(36);primarykey" json:"id"`
	UserID     uuid.UUID `gorm:"type:varchar(36);not null;index" json:"user_id"`
	Ingredient string    `gorm:"size:100;not null" json:"ingredient"`
	Reason     string    `gorm:"size:500" json:"reason"`
	Severity   string    `gorm:"size:10;not null;default:'avoid'" json:"severity"`
	CreatedAt  time.Time `json:"created_at"`
}

func (CustomAvoidance) TableName() string {
	return "custom_avoidances"
}
