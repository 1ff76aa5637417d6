package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/labellens/backend/internal/models"
	"github.com/labellens/backend/internal/types"
)

type stubOCR struct {
	result *OCRResult
	err    error
}

func (s *stubOCR) ExtractText(ctx context.Context, image []byte, mimeType string) (*OCRResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func newTestPipeline(t *testing.T, db *gorm.DB, ocr OCRProvider) (*ScanPipeline, *DietaryProfileService, *ScanHistoryService) {
	t.Helper()

	profiles := NewDietaryProfileService(db)
	history := NewScanHistoryService(db, nil)
	classifier := NewSafetyClassifier(NewFuzzyMatcher(NewKnowledgeBase()), nil)
	return NewScanPipeline(ocr, classifier, profiles, history, nil), profiles, history
}

func TestScanPipelineProcessScan(t *testing.T) {
	ctx := context.Background()
	image := []byte("fake-image-bytes")

	t.Run("happy path", func(t *testing.T) {
		db := newTestDB(t)
		user := createTestUser(t, db)
		ocr := &stubOCR{result: &OCRResult{Text: "Ingredients: Water, Sugar, Salt.", Confidence: 92}}
		pipeline, _, history := newTestPipeline(t, db, ocr)

		session, err := pipeline.ProcessScan(ctx, user.ID, image, "image/jpeg")
		require.NoError(t, err)
		require.NotNil(t, session)

		assert.Equal(t, models.ScanStatusCompleted, session.Status)
		assert.Equal(t, "Ingredients: Water, Sugar, Salt.", session.OCRText)
		assert.Equal(t, 92, session.OCRConfidence)

		require.Len(t, session.Ingredients, 3)
		assert.Equal(t, "Water", session.Ingredients[0].Name)
		assert.Equal(t, "Sugar", session.Ingredients[1].Name)
		assert.Equal(t, "Salt", session.Ingredients[2].Name)
		for i, ing := range session.Ingredients {
			assert.Equal(t, i+1, ing.Position)
		}

		// Water safe, Sugar and Salt caution: (100 + 60 + 60) / 3 = 73.
		assert.Equal(t, 1, session.SafeCount)
		assert.Equal(t, 2, session.CautionCount)
		assert.Equal(t, 0, session.AvoidCount)
		assert.Equal(t, 73, session.OverallScore)
		assert.Equal(t, 0, session.PersonalizedCount)

		// Terminal state is persisted, embedding included.
		require.NotNil(t, session.Embedding)
		loaded, err := history.Get(ctx, user.ID, session.ID)
		require.NoError(t, err)
		assert.Equal(t, models.ScanStatusCompleted, loaded.Status)
		assert.Len(t, loaded.Ingredients, 3)
	})

	t.Run("restrictions personalize the stored result", func(t *testing.T) {
		db := newTestDB(t)
		user := createTestUser(t, db)
		ocr := &stubOCR{result: &OCRResult{Text: "Ingredients: Whey, Water.", Confidence: 88}}
		pipeline, profiles, _ := newTestPipeline(t, db, ocr)

		require.NoError(t, profiles.TogglePreference(ctx, user.ID, "vegan", true))

		session, err := pipeline.ProcessScan(ctx, user.ID, image, "image/jpeg")
		require.NoError(t, err)

		require.Len(t, session.Ingredients, 2)
		whey := session.Ingredients[0]
		assert.Equal(t, "Whey", whey.Name)
		assert.Equal(t, types.RatingAvoid, whey.Rating)
		assert.Equal(t, types.RatingCaution, whey.OriginalRating)
		assert.True(t, whey.IsPersonalized)
		assert.NotEmpty(t, whey.Reasons)
		assert.Equal(t, 1, session.PersonalizedCount)
	})

	t.Run("ocr failure marks the scan failed", func(t *testing.T) {
		db := newTestDB(t)
		user := createTestUser(t, db)
		ocr := &stubOCR{err: errors.New("vision endpoint returned 503")}
		pipeline, _, history := newTestPipeline(t, db, ocr)

		session, err := pipeline.ProcessScan(ctx, user.ID, image, "image/jpeg")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrExtractionFailed)
		assert.Contains(t, err.Error(), "vision endpoint returned 503")

		require.NotNil(t, session)
		assert.Equal(t, models.ScanStatusFailed, session.Status)
		assert.NotEmpty(t, session.ErrorMessage)
		assert.Nil(t, session.Embedding)

		// The failed record must read back from history intact.
		loaded, err := history.Get(ctx, user.ID, session.ID)
		require.NoError(t, err)
		assert.Equal(t, models.ScanStatusFailed, loaded.Status)
		assert.Equal(t, session.ErrorMessage, loaded.ErrorMessage)
		assert.Nil(t, loaded.Embedding)
	})

	t.Run("empty ocr text marks the scan failed", func(t *testing.T) {
		db := newTestDB(t)
		user := createTestUser(t, db)
		ocr := &stubOCR{result: &OCRResult{Text: ""}}
		pipeline, _, _ := newTestPipeline(t, db, ocr)

		session, err := pipeline.ProcessScan(ctx, user.ID, image, "image/jpeg")
		assert.ErrorIs(t, err, ErrExtractionFailed)
		assert.Equal(t, models.ScanStatusFailed, session.Status)
	})

	t.Run("text without ingredients completes with a perfect score", func(t *testing.T) {
		db := newTestDB(t)
		user := createTestUser(t, db)
		ocr := &stubOCR{result: &OCRResult{Text: "Nutrition Facts Serving Size 2 Calories 100", Confidence: 90}}
		pipeline, _, _ := newTestPipeline(t, db, ocr)

		session, err := pipeline.ProcessScan(ctx, user.ID, image, "image/jpeg")
		require.NoError(t, err)
		assert.Equal(t, models.ScanStatusCompleted, session.Status)
		assert.Empty(t, session.Ingredients)
		assert.Equal(t, 100, session.OverallScore)
	})
}

func TestScanPipelineAnalyzeIngredients(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	user := createTestUser(t, db)
	pipeline, _, history := newTestPipeline(t, db, &stubOCR{})

	result, err := pipeline.AnalyzeIngredients(ctx, user.ID, []string{
		"Ingredients: Water, Sugar",
		"Salt.",
	})
	require.NoError(t, err)

	require.Len(t, result.Ingredients, 3)
	assert.Equal(t, "Water", result.Ingredients[0].Name)
	assert.Equal(t, "Sugar", result.Ingredients[1].Name)
	assert.Equal(t, "Salt", result.Ingredients[2].Name)
	assert.Equal(t, 73, result.OverallScore)

	// Manual analysis never creates a session.
	sessions, err := history.List(ctx, user.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestScanPipelineClassifyAll(t *testing.T) {
	db := newTestDB(t)
	pipeline, _, _ := newTestPipeline(t, db, &stubOCR{})

	t.Run("results keep position order", func(t *testing.T) {
		candidates := []string{"Water", "Sugar", "Salt", "Carrageenan", "Zzyzx", "Honey", "Stevia", "Whey"}
		analyses, err := pipeline.classifyAll(context.Background(), candidates)
		require.NoError(t, err)
		require.Len(t, analyses, len(candidates))
		for i, analysis := range analyses {
			assert.Equal(t, candidates[i], analysis.Name)
			assert.Equal(t, i+1, analysis.Position)
		}
	})

	t.Run("canceled context aborts", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := pipeline.classifyAll(ctx, []string{"Water", "Sugar", "Salt"})
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("empty candidate list", func(t *testing.T) {
		analyses, err := pipeline.classifyAll(context.Background(), nil)
		require.NoError(t, err)
		assert.Empty(t, analyses)
	})
}
