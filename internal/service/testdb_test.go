package service

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/labellens/backend/internal/models"
)

// newTestDB opens a throwaway SQLite database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.UserProfile{},
		&models.DietaryPreference{},
		&models.CustomAvoidance{},
		&models.ScanSession{},
		&models.Report{},
	))
	return db
}

func createTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()

	user := &models.User{
		ID:           uuid.New(),
		Name:         "Test User",
		Email:        fmt.Sprintf("user+%s@example.com", uuid.New()),
		PasswordHash: "not-a-real-hash",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}
