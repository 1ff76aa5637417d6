package api

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labellens/backend/internal/models"
	"github.com/labellens/backend/internal/service"
	"github.com/labellens/backend/internal/types"
)

type mockPipeline struct {
	session *models.ScanSession
	result  *types.AnalysisResult
	err     error
}

func (m *mockPipeline) ProcessScan(ctx context.Context, userID uuid.UUID, image []byte, mimeType string) (*models.ScanSession, error) {
	return m.session, m.err
}

func (m *mockPipeline) AnalyzeIngredients(ctx context.Context, userID uuid.UUID, candidates []string) (*types.AnalysisResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

type mockHistory struct {
	sessions []models.ScanSession
	session  *models.ScanSession
	err      error
}

func (m *mockHistory) Create(ctx context.Context, session *models.ScanSession) error { return m.err }
func (m *mockHistory) Upsert(ctx context.Context, session *models.ScanSession) error { return m.err }
func (m *mockHistory) Get(ctx context.Context, userID, sessionID uuid.UUID) (*models.ScanSession, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.session, nil
}
func (m *mockHistory) List(ctx context.Context, userID uuid.UUID, limit int) ([]models.ScanSession, error) {
	if m.err != nil {
		return nil, m.err
	}
	if limit > 0 && limit < len(m.sessions) {
		return m.sessions[:limit], nil
	}
	return m.sessions, nil
}
func (m *mockHistory) Delete(ctx context.Context, userID, sessionID uuid.UUID) error { return m.err }

func newScanRouter(userID uuid.UUID, pipeline service.IScanPipeline, history service.IScanHistoryService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("user_id", userID)
	})
	NewScanHandler(pipeline, history, nil).RegisterRoutes(router.Group("/api/v1"))
	return router
}

func postJSON(router *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	data, _ := json.Marshal(body)
	req, _ := http.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCreateScan(t *testing.T) {
	userID := uuid.New()
	image := base64.StdEncoding.EncodeToString([]byte("fake-image"))

	t.Run("success", func(t *testing.T) {
		session := &models.ScanSession{ID: uuid.New(), UserID: userID, Status: models.ScanStatusCompleted, OverallScore: 73}
		router := newScanRouter(userID, &mockPipeline{session: session}, &mockHistory{})

		w := postJSON(router, "/api/v1/scans", types.CreateScanRequest{Image: image})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var got models.ScanSession
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, session.ID, got.ID)
		assert.Equal(t, 73, got.OverallScore)
	})

	t.Run("missing image", func(t *testing.T) {
		router := newScanRouter(userID, &mockPipeline{}, &mockHistory{})
		w := postJSON(router, "/api/v1/scans", map[string]string{})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("invalid base64", func(t *testing.T) {
		router := newScanRouter(userID, &mockPipeline{}, &mockHistory{})
		w := postJSON(router, "/api/v1/scans", types.CreateScanRequest{Image: "not base64!!!"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("extraction failure returns the failed session", func(t *testing.T) {
		session := &models.ScanSession{ID: uuid.New(), UserID: userID, Status: models.ScanStatusFailed, ErrorMessage: "no text found"}
		router := newScanRouter(userID, &mockPipeline{
			session: session,
			err:     fmt.Errorf("%w: no text found in image", service.ErrExtractionFailed),
		}, &mockHistory{})

		w := postJSON(router, "/api/v1/scans", types.CreateScanRequest{Image: image})
		require.Equal(t, http.StatusUnprocessableEntity, w.Code)

		var resp struct {
			Error string              `json:"error"`
			Scan  *models.ScanSession `json:"scan"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "could not read the label", resp.Error)
		require.NotNil(t, resp.Scan)
		assert.Equal(t, models.ScanStatusFailed, resp.Scan.Status)
	})

	t.Run("persistence failure", func(t *testing.T) {
		router := newScanRouter(userID, &mockPipeline{
			err: fmt.Errorf("%w: connection refused", service.ErrPersistenceFailed),
		}, &mockHistory{})

		w := postJSON(router, "/api/v1/scans", types.CreateScanRequest{Image: image})
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestAnalyzeText(t *testing.T) {
	userID := uuid.New()

	t.Run("success", func(t *testing.T) {
		result := &types.AnalysisResult{OverallScore: 100}
		router := newScanRouter(userID, &mockPipeline{result: result}, &mockHistory{})

		w := postJSON(router, "/api/v1/scans/analyze", types.AnalyzeTextRequest{Text: "Water, Sugar"})
		require.Equal(t, http.StatusOK, w.Code)

		var got types.AnalysisResult
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, 100, got.OverallScore)
	})

	t.Run("no input", func(t *testing.T) {
		router := newScanRouter(userID, &mockPipeline{}, &mockHistory{})
		w := postJSON(router, "/api/v1/scans/analyze", types.AnalyzeTextRequest{})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestListScans(t *testing.T) {
	userID := uuid.New()
	sessions := []models.ScanSession{
		{ID: uuid.New(), UserID: userID},
		{ID: uuid.New(), UserID: userID},
	}
	router := newScanRouter(userID, &mockPipeline{}, &mockHistory{sessions: sessions})

	req, _ := http.NewRequest(http.MethodGet, "/api/v1/scans?limit=1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Scans []models.ScanSession `json:"scans"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Scans, 1)
}

func TestGetScan(t *testing.T) {
	userID := uuid.New()

	t.Run("found", func(t *testing.T) {
		session := &models.ScanSession{ID: uuid.New(), UserID: userID, Status: models.ScanStatusCompleted}
		router := newScanRouter(userID, &mockPipeline{}, &mockHistory{session: session})

		req, _ := http.NewRequest(http.MethodGet, "/api/v1/scans/"+session.ID.String(), nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("not found", func(t *testing.T) {
		router := newScanRouter(userID, &mockPipeline{}, &mockHistory{err: service.ErrSessionNotFound})

		req, _ := http.NewRequest(http.MethodGet, "/api/v1/scans/"+uuid.New().String(), nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("invalid id", func(t *testing.T) {
		router := newScanRouter(userID, &mockPipeline{}, &mockHistory{})

		req, _ := http.NewRequest(http.MethodGet, "/api/v1/scans/not-a-uuid", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestDeleteScan(t *testing.T) {
	userID := uuid.New()

	t.Run("deleted", func(t *testing.T) {
		router := newScanRouter(userID, &mockPipeline{}, &mockHistory{})

		req, _ := http.NewRequest(http.MethodDelete, "/api/v1/scans/"+uuid.New().String(), nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("not found", func(t *testing.T) {
		router := newScanRouter(userID, &mockPipeline{}, &mockHistory{err: service.ErrSessionNotFound})

		req, _ := http.NewRequest(http.MethodDelete, "/api/v1/scans/"+uuid.New().String(), nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
