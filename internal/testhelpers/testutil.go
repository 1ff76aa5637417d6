package testhelpers

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/labellens/backend/internal/models"
	"github.com/labellens/backend/internal/types"
)

// CreateTestUser creates a test user in the database
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	user := &models.User{
		ID:           uuid.New(),
		Name:         "Test User",
		Email:        fmt.Sprintf("testuser+%s@example.com", uuid.New().String()),
		PasswordHash: "hashed_password",
	}
	err := db.Create(user).Error
	assert.NoError(t, err)
	return user
}

// CreateTestProfile creates a test user profile in the database
func CreateTestProfile(t *testing.T, db *gorm.DB, userID uuid.UUID) *models.UserProfile {
	profile := &models.UserProfile{
		ID:       uuid.New(),
		UserID:   userID,
		Username: fmt.Sprintf("testuser_%s", userID.String()[:8]),
	}
	err := db.Create(profile).Error
	assert.NoError(t, err)
	return profile
}

// CreateTestScanSession creates a completed scan session for the user
func CreateTestScanSession(t *testing.T, db *gorm.DB, userID uuid.UUID) *models.ScanSession {
	session := &models.ScanSession{
		ID:      uuid.New(),
		UserID:  userID,
		Status:  models.ScanStatusCompleted,
		OCRText: "Ingredients: Water, Sugar, Salt.",
		Ingredients: models.JSONBAnalyses{
			{
				IngredientAnalysis: types.IngredientAnalysis{
					Name:       "Water",
					Position:   1,
					Rating:     types.RatingSafe,
					Confidence: 100,
					Category:   "natural",
				},
				OriginalRating: types.RatingSafe,
			},
		},
		OverallScore: 100,
		SafeCount:    1,
	}
	err := db.Create(session).Error
	assert.NoError(t, err)
	return session
}

// MockTokenValidator is a mock token validator for testing
type MockTokenValidator struct {
	Claims *types.TokenClaims
	Error  error
}

// ValidateToken validates a token and returns claims
func (m *MockTokenValidator) ValidateToken(token string) (*types.TokenClaims, error) {
	if m.Error != nil {
		return nil, m.Error
	}
	return m.Claims, nil
}

// JSONMarshal is a helper function to marshal JSON for testing
func JSONMarshal(t *testing.T, v interface{}) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("Failed to marshal JSON: %v", err)
	}
	return data
}
