package integration

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/labellens/backend/config"
	"github.com/labellens/backend/internal/api"
	"github.com/labellens/backend/internal/models"
	"github.com/labellens/backend/internal/service"
	"github.com/labellens/backend/internal/types"
)

// fixedOCR returns canned label text so the full pipeline can run
// without a vision endpoint.
type fixedOCR struct {
	text string
}

func (f *fixedOCR) ExtractText(ctx context.Context, image []byte, mimeType string) (*service.OCRResult, error) {
	return &service.OCRResult{Text: f.text, Confidence: 95, Provider: "fixed"}, nil
}

func setupRouter(t *testing.T, ocr service.OCRProvider) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

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

	cfg := &config.Config{JWTSecret: "integration-secret"}
	profiles := service.NewDietaryProfileService(db)
	history := service.NewScanHistoryService(db, nil)
	authService := service.NewAuthService(db, profiles, cfg.JWTSecret)
	classifier := service.NewSafetyClassifier(service.NewFuzzyMatcher(service.NewKnowledgeBase()), nil)
	pipeline := service.NewScanPipeline(ocr, classifier, profiles, history, nil)

	router := gin.New()
	api.RegisterRoutes(router, db, authService, pipeline, history, profiles, cfg)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func registerUser(t *testing.T, router *gin.Engine, email, username string) string {
	t.Helper()

	w := doJSON(t, router, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"name":     "Integration User",
		"email":    email,
		"password": "password123",
		"username": username,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp api.TokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func TestScanFlow(t *testing.T) {
	router := setupRouter(t, &fixedOCR{text: "Ingredients: Water, Whey, Sugar."})
	token := registerUser(t, router, "flow@example.com", "flowuser")
	image := base64.StdEncoding.EncodeToString([]byte("fake-image"))

	// Protected routes reject missing tokens.
	w := doJSON(t, router, http.MethodGet, "/api/v1/scans", "", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	// Activate the vegan preference before scanning.
	w = doJSON(t, router, http.MethodPut, "/api/v1/dietary/preferences/vegan", token,
		types.TogglePreferenceRequest{Active: true})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// Submit a scan.
	w = doJSON(t, router, http.MethodPost, "/api/v1/scans", token, types.CreateScanRequest{Image: image})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var session models.ScanSession
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &session))
	assert.Equal(t, models.ScanStatusCompleted, session.Status)
	require.Len(t, session.Ingredients, 3)

	// Whey is escalated to avoid for a vegan user.
	whey := session.Ingredients[1]
	assert.Equal(t, "Whey", whey.Name)
	assert.Equal(t, types.RatingAvoid, whey.Rating)
	assert.Equal(t, types.RatingCaution, whey.OriginalRating)
	assert.True(t, whey.IsPersonalized)
	assert.NotEmpty(t, whey.Reasons)

	// safe + avoid + caution -> (100 + 20 + 60) / 3 = 60.
	assert.Equal(t, 60, session.OverallScore)
	assert.Equal(t, 1, session.PersonalizedCount)

	// The scan shows up in history.
	w = doJSON(t, router, http.MethodGet, "/api/v1/scans", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Scans []models.ScanSession `json:"scans"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Scans, 1)
	assert.Equal(t, session.ID, list.Scans[0].ID)

	// Fetch by ID.
	w = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/v1/scans/%s", session.ID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// File a misclassification report against the scan.
	w = doJSON(t, router, http.MethodPost, "/api/v1/reports", token, types.CreateReportRequest{
		Ingredient:     "Whey",
		ScanID:         session.ID.String(),
		ExpectedRating: "safe",
		Comment:        "whey isolate is fine for me",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// Delete the scan; a second fetch 404s.
	w = doJSON(t, router, http.MethodDelete, fmt.Sprintf("/api/v1/scans/%s", session.ID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/v1/scans/%s", session.ID), token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestManualAnalysisFlow(t *testing.T) {
	router := setupRouter(t, &fixedOCR{})
	token := registerUser(t, router, "manual@example.com", "manualuser")

	w := doJSON(t, router, http.MethodPost, "/api/v1/scans/analyze", token, types.AnalyzeTextRequest{
		Text: "Ingredients: Water, Sugar, Salt.",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result types.AnalysisResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	require.Len(t, result.Ingredients, 3)
	assert.Equal(t, 73, result.OverallScore)

	// Manual analysis leaves no history behind.
	w = doJSON(t, router, http.MethodGet, "/api/v1/scans", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Scans []models.ScanSession `json:"scans"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Empty(t, list.Scans)

	// Missing input is a 400.
	w = doJSON(t, router, http.MethodPost, "/api/v1/scans/analyze", token, types.AnalyzeTextRequest{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthFlow(t *testing.T) {
	router := setupRouter(t, &fixedOCR{})

	registerUser(t, router, "auth@example.com", "authuser")

	// Duplicate registration conflicts.
	w := doJSON(t, router, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"name":     "Someone Else",
		"email":    "auth@example.com",
		"password": "password456",
		"username": "someoneelse",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	// Login round trip.
	w = doJSON(t, router, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "auth@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp api.TokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	w = doJSON(t, router, http.MethodGet, "/api/v1/dietary/preferences", resp.Token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// Wrong password.
	w = doJSON(t, router, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "auth@example.com",
		"password": "wrongpassword",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
