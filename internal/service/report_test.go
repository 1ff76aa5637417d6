package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labellens/backend/internal/models"
	"github.com/labellens/backend/internal/types"
)

func TestReportService(t *testing.T) {
	db := newTestDB(t)
	svc := NewReportService(db)
	ctx := context.Background()
	user := createTestUser(t, db)

	t.Run("create and get", func(t *testing.T) {
		created, err := svc.CreateReport(ctx, &types.CreateReportRequest{
			Ingredient:     "Carrageenan",
			ExpectedRating: "safe",
			Comment:        "recent studies disagree with this rating",
		}, &user.ID)
		require.NoError(t, err)
		assert.Equal(t, "open", created.Status)

		loaded, err := svc.GetReport(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "Carrageenan", loaded.Ingredient)
		require.NotNil(t, loaded.User)
		assert.Equal(t, user.ID, loaded.User.ID)
	})

	t.Run("create with scan reference", func(t *testing.T) {
		session := &models.ScanSession{ID: uuid.New(), UserID: user.ID, Status: models.ScanStatusCompleted}
		require.NoError(t, db.Create(session).Error)

		created, err := svc.CreateReport(ctx, &types.CreateReportRequest{
			ScanID:         session.ID.String(),
			Ingredient:     "Natural Flavors",
			ExpectedRating: "avoid",
		}, &user.ID)
		require.NoError(t, err)
		require.NotNil(t, created.ScanID)
		assert.Equal(t, session.ID, *created.ScanID)
	})

	t.Run("invalid scan id", func(t *testing.T) {
		_, err := svc.CreateReport(ctx, &types.CreateReportRequest{
			ScanID:         "not-a-uuid",
			Ingredient:     "Salt",
			ExpectedRating: "safe",
		}, &user.ID)
		assert.Error(t, err)
	})

	t.Run("invalid expected rating", func(t *testing.T) {
		_, err := svc.CreateReport(ctx, &types.CreateReportRequest{
			Ingredient:     "Salt",
			ExpectedRating: "terrible",
		}, &user.ID)
		assert.Error(t, err)
	})

	t.Run("anonymous report", func(t *testing.T) {
		created, err := svc.CreateReport(ctx, &types.CreateReportRequest{
			Ingredient:     "Aspartame",
			ExpectedRating: "avoid",
		}, nil)
		require.NoError(t, err)
		assert.Nil(t, created.UserID)
	})

	t.Run("list with filters", func(t *testing.T) {
		open, err := svc.ListReports(ctx, &models.ReportFilters{Status: "open"})
		require.NoError(t, err)
		assert.NotEmpty(t, open)

		byIngredient, err := svc.ListReports(ctx, &models.ReportFilters{Ingredient: "carrageenan"})
		require.NoError(t, err)
		require.Len(t, byIngredient, 1)
		assert.Equal(t, "Carrageenan", byIngredient[0].Ingredient)

		byUser, err := svc.ListReports(ctx, &models.ReportFilters{UserID: user.ID.String()})
		require.NoError(t, err)
		for _, r := range byUser {
			require.NotNil(t, r.UserID)
			assert.Equal(t, user.ID, *r.UserID)
		}
	})

	t.Run("update status", func(t *testing.T) {
		created, err := svc.CreateReport(ctx, &types.CreateReportRequest{
			Ingredient:     "Stevia",
			ExpectedRating: "caution",
		}, &user.ID)
		require.NoError(t, err)

		require.NoError(t, svc.UpdateReportStatus(ctx, created.ID, "accepted", "queued for curation"))

		loaded, err := svc.GetReport(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "accepted", loaded.Status)
		assert.Equal(t, "queued for curation", loaded.AdminNotes)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := svc.GetReport(ctx, uuid.New())
		assert.ErrorIs(t, err, ErrReportNotFound)

		err = svc.UpdateReportStatus(ctx, uuid.New(), "reviewed", "")
		assert.ErrorIs(t, err, ErrReportNotFound)
	})
}
