package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID           uuid.UUID      `gorm:"type:varchar(36);primarykey" json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	Name         string         `gorm:"not null" json:"name"`
	Email        string         `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string         `gorm:"not null" json:"-"`
	Role         string         `gorm:"size:20;not null;default:'user'" json:"role"`
}

type UserProfile struct {
	ID                uuid.UUID      `gorm:"type:varchar(36);primarykey" json:"id"`
	UserID            uuid.UUID      `gorm:"type:varchar(36);not null;uniqueIndex" json:"user_id"`
	Username          string         `gorm:"size:50;not null;uniqueIndex" json:"username"`
	Email             string         `gorm:"size:255" json:"email"`
	ProfilePictureURL string         `gorm:"size:255" json:"profile_picture_url"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`
}
