package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labellens/backend/internal/models"
	"github.com/labellens/backend/internal/types"
)

func TestScanHistoryService(t *testing.T) {
	db := newTestDB(t)
	svc := NewScanHistoryService(db, nil)
	ctx := context.Background()
	user := createTestUser(t, db)

	t.Run("create fills defaults", func(t *testing.T) {
		session := &models.ScanSession{UserID: user.ID}
		require.NoError(t, svc.Create(ctx, session))
		assert.NotEqual(t, uuid.Nil, session.ID)
		assert.Equal(t, models.ScanStatusPending, session.Status)
	})

	t.Run("upsert persists status transitions", func(t *testing.T) {
		session := &models.ScanSession{UserID: user.ID}
		require.NoError(t, svc.Create(ctx, session))

		session.Status = models.ScanStatusProcessing
		require.NoError(t, svc.Upsert(ctx, session))

		session.Status = models.ScanStatusCompleted
		session.OCRText = "Ingredients: Water."
		session.Ingredients = models.JSONBAnalyses{
			{
				IngredientAnalysis: types.IngredientAnalysis{
					Name: "Water", Position: 1, Rating: types.RatingSafe, Confidence: 100,
				},
				OriginalRating: types.RatingSafe,
			},
		}
		session.OverallScore = 100
		session.SafeCount = 1
		require.NoError(t, svc.Upsert(ctx, session))

		loaded, err := svc.Get(ctx, user.ID, session.ID)
		require.NoError(t, err)
		assert.Equal(t, models.ScanStatusCompleted, loaded.Status)
		require.Len(t, loaded.Ingredients, 1)
		assert.Equal(t, "Water", loaded.Ingredients[0].Name)
		assert.Equal(t, 100, loaded.OverallScore)
	})

	t.Run("get enforces ownership", func(t *testing.T) {
		session := &models.ScanSession{UserID: user.ID}
		require.NoError(t, svc.Create(ctx, session))

		other := createTestUser(t, db)
		_, err := svc.Get(ctx, other.ID, session.ID)
		assert.ErrorIs(t, err, ErrSessionNotFound)
	})

	t.Run("get unknown session", func(t *testing.T) {
		_, err := svc.Get(ctx, user.ID, uuid.New())
		assert.ErrorIs(t, err, ErrSessionNotFound)
	})

	t.Run("list newest first with limit", func(t *testing.T) {
		owner := createTestUser(t, db)
		var last uuid.UUID
		for i := 0; i < 3; i++ {
			session := &models.ScanSession{UserID: owner.ID, CreatedAt: time.Now().Add(time.Duration(i) * time.Second)}
			require.NoError(t, svc.Create(ctx, session))
			last = session.ID
		}

		sessions, err := svc.List(ctx, owner.ID, 2)
		require.NoError(t, err)
		require.Len(t, sessions, 2)
		assert.Equal(t, last, sessions[0].ID)
	})

	t.Run("delete", func(t *testing.T) {
		session := &models.ScanSession{UserID: user.ID}
		require.NoError(t, svc.Create(ctx, session))

		require.NoError(t, svc.Delete(ctx, user.ID, session.ID))

		_, err := svc.Get(ctx, user.ID, session.ID)
		assert.ErrorIs(t, err, ErrSessionNotFound)

		err = svc.Delete(ctx, user.ID, session.ID)
		assert.ErrorIs(t, err, ErrSessionNotFound)
	})

	t.Run("delete enforces ownership", func(t *testing.T) {
		session := &models.ScanSession{UserID: user.ID}
		require.NoError(t, svc.Create(ctx, session))

		other := createTestUser(t, db)
		err := svc.Delete(ctx, other.ID, session.ID)
		assert.ErrorIs(t, err, ErrSessionNotFound)
	})
}
