package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labellens/backend/internal/models"
)

func TestRestrictionEngineCheckRestriction(t *testing.T) {
	t.Run("no restrictions", func(t *testing.T) {
		engine := NewRestrictionEngine(nil, nil)
		check := engine.CheckRestriction("Whey")
		assert.False(t, check.ShouldAvoid)
		assert.False(t, check.ShouldFlag)
		assert.Empty(t, check.Reasons)
	})

	t.Run("avoid term match", func(t *testing.T) {
		engine := NewRestrictionEngine([]string{"vegan"}, nil)
		check := engine.CheckRestriction("Whey")
		assert.True(t, check.ShouldAvoid)
		require.Len(t, check.Reasons, 1)
		assert.Contains(t, check.Reasons[0], "Vegan")
	})

	t.Run("substring matching catches variants", func(t *testing.T) {
		engine := NewRestrictionEngine([]string{"vegan"}, nil)
		check := engine.CheckRestriction("Whey Protein Concentrate")
		assert.True(t, check.ShouldAvoid)
	})

	t.Run("flag term only raises a flag", func(t *testing.T) {
		engine := NewRestrictionEngine([]string{"vegan"}, nil)
		check := engine.CheckRestriction("Natural Flavors")
		assert.False(t, check.ShouldAvoid)
		assert.True(t, check.ShouldFlag)
		require.Len(t, check.Reasons, 1)
		assert.Contains(t, check.Reasons[0], "may conflict")
	})

	t.Run("avoid term suppresses flag check within a rule", func(t *testing.T) {
		engine := NewRestrictionEngine([]string{"diabetic-friendly"}, nil)
		check := engine.CheckRestriction("Corn Syrup")
		assert.True(t, check.ShouldAvoid)
		assert.False(t, check.ShouldFlag)
		assert.Len(t, check.Reasons, 1)
	})

	t.Run("reasons collected from every matching rule", func(t *testing.T) {
		engine := NewRestrictionEngine([]string{"vegan", "dairy-free"}, nil)
		check := engine.CheckRestriction("Milk")
		assert.True(t, check.ShouldAvoid)
		assert.Len(t, check.Reasons, 2)
	})

	t.Run("inactive preferences are ignored", func(t *testing.T) {
		engine := NewRestrictionEngine([]string{"low-sodium"}, nil)
		check := engine.CheckRestriction("Whey")
		assert.False(t, check.ShouldAvoid)
		assert.False(t, check.ShouldFlag)
	})

	t.Run("unknown preference keys are ignored", func(t *testing.T) {
		engine := NewRestrictionEngine([]string{"carnivore"}, nil)
		check := engine.CheckRestriction("Whey")
		assert.False(t, check.ShouldAvoid)
	})

	t.Run("custom avoidance", func(t *testing.T) {
		engine := NewRestrictionEngine(nil, []models.CustomAvoidance{
			{Ingredient: "Carrageenan", Reason: "causes digestive issues for me", Severity: "avoid"},
		})
		check := engine.CheckRestriction("carrageenan")
		assert.True(t, check.ShouldAvoid)
		require.Len(t, check.Reasons, 1)
		assert.Equal(t, "causes digestive issues for me", check.Reasons[0])
	})

	t.Run("custom avoidance default reason", func(t *testing.T) {
		engine := NewRestrictionEngine(nil, []models.CustomAvoidance{
			{Ingredient: "Aspartame", Severity: "avoid"},
		})
		check := engine.CheckRestriction("Aspartame")
		require.Len(t, check.Reasons, 1)
		assert.Equal(t, "You chose to avoid aspartame", check.Reasons[0])
	})

	t.Run("reasons collected across avoidances and preferences", func(t *testing.T) {
		engine := NewRestrictionEngine([]string{"vegan"}, []models.CustomAvoidance{
			{Ingredient: "whey", Reason: "upsets my stomach", Severity: "avoid"},
			{Ingredient: "whey protein", Severity: "caution"},
		})
		check := engine.CheckRestriction("Whey")
		assert.True(t, check.ShouldAvoid)
		assert.True(t, check.ShouldFlag)
		require.Len(t, check.Reasons, 3)
		assert.Contains(t, check.Reasons, "upsets my stomach")
		assert.Contains(t, check.Reasons, "You chose to avoid whey protein")
	})

	t.Run("caution severity avoidance only flags", func(t *testing.T) {
		engine := NewRestrictionEngine(nil, []models.CustomAvoidance{
			{Ingredient: "Sucralose", Severity: "caution"},
		})
		check := engine.CheckRestriction("Sucralose")
		assert.False(t, check.ShouldAvoid)
		assert.True(t, check.ShouldFlag)
	})

	t.Run("empty ingredient name", func(t *testing.T) {
		engine := NewRestrictionEngine([]string{"vegan"}, nil)
		check := engine.CheckRestriction("   ")
		assert.False(t, check.ShouldAvoid)
		assert.False(t, check.ShouldFlag)
		assert.Empty(t, check.Reasons)
	})
}

func TestPreferenceCatalog(t *testing.T) {
	catalog := PreferenceCatalog()
	require.NotEmpty(t, catalog)

	seen := make(map[string]bool)
	for _, rule := range catalog {
		assert.NotEmpty(t, rule.Key)
		assert.NotEmpty(t, rule.Label)
		assert.NotEmpty(t, rule.Description)
		assert.NotEmpty(t, rule.AvoidTerms, "rule %s needs avoid terms", rule.Key)
		assert.False(t, seen[rule.Key], "duplicate catalog key %s", rule.Key)
		seen[rule.Key] = true
	}
}

func TestDietaryProfileService(t *testing.T) {
	db := newTestDB(t)
	svc := NewDietaryProfileService(db)
	ctx := context.Background()
	user := createTestUser(t, db)

	t.Run("seed defaults is idempotent", func(t *testing.T) {
		require.NoError(t, svc.SeedDefaults(ctx, user.ID))
		require.NoError(t, svc.SeedDefaults(ctx, user.ID))

		prefs, err := svc.ListPreferences(ctx, user.ID)
		require.NoError(t, err)
		assert.Len(t, prefs, len(PreferenceCatalog()))
		for _, p := range prefs {
			assert.False(t, p.Active, "seeded preference %s should start inactive", p.Key)
		}
	})

	t.Run("toggle preference", func(t *testing.T) {
		require.NoError(t, svc.TogglePreference(ctx, user.ID, "vegan", true))

		prefs, err := svc.ListPreferences(ctx, user.ID)
		require.NoError(t, err)
		for _, p := range prefs {
			if p.Key == "vegan" {
				assert.True(t, p.Active)
			} else {
				assert.False(t, p.Active)
			}
		}

		require.NoError(t, svc.TogglePreference(ctx, user.ID, "vegan", false))
	})

	t.Run("toggle unknown preference", func(t *testing.T) {
		err := svc.TogglePreference(ctx, user.ID, "carnivore", true)
		assert.ErrorIs(t, err, ErrUnknownPreference)
	})

	t.Run("avoidance lifecycle", func(t *testing.T) {
		avoidance, err := svc.AddAvoidance(ctx, user.ID, "  Carrageenan  ", "upsets my stomach", "avoid")
		require.NoError(t, err)
		assert.Equal(t, "Carrageenan", avoidance.Ingredient)

		list, err := svc.ListAvoidances(ctx, user.ID)
		require.NoError(t, err)
		require.Len(t, list, 1)

		require.NoError(t, svc.RemoveAvoidance(ctx, user.ID, avoidance.ID))

		err = svc.RemoveAvoidance(ctx, user.ID, avoidance.ID)
		assert.ErrorIs(t, err, ErrAvoidanceNotFound)
	})

	t.Run("avoidance validation", func(t *testing.T) {
		_, err := svc.AddAvoidance(ctx, user.ID, "Aspartame", "", "severe")
		assert.Error(t, err)

		_, err = svc.AddAvoidance(ctx, user.ID, "   ", "", "avoid")
		assert.Error(t, err)
	})

	t.Run("snapshot reflects current state", func(t *testing.T) {
		require.NoError(t, svc.TogglePreference(ctx, user.ID, "vegan", true))
		_, err := svc.AddAvoidance(ctx, user.ID, "Aspartame", "", "caution")
		require.NoError(t, err)

		engine, err := svc.Snapshot(ctx, user.ID)
		require.NoError(t, err)

		assert.True(t, engine.CheckRestriction("Gelatin").ShouldAvoid)
		assert.True(t, engine.CheckRestriction("Aspartame").ShouldFlag)
		assert.False(t, engine.CheckRestriction("Salt").ShouldAvoid)
	})
}
