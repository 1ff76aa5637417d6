package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/labellens/backend/internal/models"
	"github.com/labellens/backend/internal/types"
)

var ErrAvoidanceNotFound = errors.New("custom avoidance not found")
var ErrUnknownPreference = errors.New("unknown dietary preference")

// PreferenceRule is one entry of the built-in dietary preference catalog.
// AvoidTerms force an avoid rating on matching ingredients; FlagTerms
// only raise a flag. Matching is bidirectional substring containment.
type PreferenceRule struct {
	Key         string
	Label       string
	Description string
	Category    string
	AvoidTerms  []string
	FlagTerms   []string
}

// preferenceCatalog ships with the application. Users toggle entries on;
// everything starts inactive.
var preferenceCatalog = []PreferenceRule{
	{
		Key:         "gluten-free",
		Label:       "Gluten-Free",
		Description: "avoids wheat, barley, rye and other gluten sources",
		Category:    "medical",
		AvoidTerms:  []string{"wheat", "barley", "rye", "malt", "gluten", "semolina", "spelt", "farro", "triticale", "seitan"},
		FlagTerms:   []string{"oats", "modified food starch", "soy sauce", "natural flavors"},
	},
	{
		Key:         "vegan",
		Label:       "Vegan",
		Description: "avoids all animal-derived ingredients",
		Category:    "lifestyle",
		AvoidTerms: []string{
			"milk", "whey", "casein", "lactose", "butter", "cheese", "cream",
			"egg", "albumin", "gelatin", "honey", "lard", "tallow", "carmine",
			"shellac", "meat", "chicken", "beef", "pork", "fish", "anchovy",
		},
		FlagTerms: []string{"natural flavors", "mono and diglycerides", "vitamin d3", "sugar", "glycerin"},
	},
	{
		Key:         "vegetarian",
		Label:       "Vegetarian",
		Description: "avoids meat and slaughter by-products",
		Category:    "lifestyle",
		AvoidTerms:  []string{"gelatin", "lard", "tallow", "rennet", "carmine", "meat", "chicken", "beef", "pork", "fish", "anchovy"},
		FlagTerms:   []string{"natural flavors", "mono and diglycerides", "enzymes"},
	},
	{
		Key:         "diabetic-friendly",
		Label:       "Diabetic-Friendly",
		Description: "avoids concentrated sugars and fast-acting carbohydrates",
		Category:    "medical",
		AvoidTerms:  []string{"high fructose corn syrup", "corn syrup", "dextrose", "maltose", "glucose syrup"},
		FlagTerms:   []string{"sugar", "honey", "syrup", "fruit juice concentrate", "maltodextrin", "molasses"},
	},
	{
		Key:         "keto",
		Label:       "Keto",
		Description: "avoids sugars, grains and other high-carbohydrate ingredients",
		Category:    "lifestyle",
		AvoidTerms:  []string{"sugar", "corn syrup", "high fructose corn syrup", "dextrose", "maltodextrin", "wheat flour", "rice", "potato starch"},
		FlagTerms:   []string{"honey", "fruit juice", "corn starch", "tapioca", "oats"},
	},
	{
		Key:         "paleo",
		Label:       "Paleo",
		Description: "avoids grains, legumes, refined sugar and processed additives",
		Category:    "lifestyle",
		AvoidTerms:  []string{"wheat", "corn syrup", "soy", "peanut", "refined sugar", "artificial"},
		FlagTerms:   []string{"milk", "cheese", "rice", "sugar", "lentil"},
	},
	{
		Key:         "low-sodium",
		Label:       "Low-Sodium",
		Description: "limits sodium for blood pressure management",
		Category:    "medical",
		AvoidTerms:  []string{"monosodium glutamate", "sodium nitrite", "disodium inosinate", "disodium guanylate"},
		FlagTerms:   []string{"salt", "sea salt", "sodium", "brine", "soy sauce", "baking soda"},
	},
	{
		Key:         "dairy-free",
		Label:       "Dairy-Free",
		Description: "avoids milk and milk-derived ingredients",
		Category:    "allergy",
		AvoidTerms:  []string{"milk", "whey", "casein", "lactose", "butter", "cheese", "cream", "yogurt", "ghee", "curds"},
		FlagTerms:   []string{"natural flavors", "lactic acid", "caramel color"},
	},
	{
		Key:         "nut-free",
		Label:       "Nut-Free",
		Description: "avoids tree nuts and peanuts",
		Category:    "allergy",
		AvoidTerms:  []string{"peanut", "almond", "cashew", "walnut", "pecan", "hazelnut", "pistachio", "macadamia", "praline", "marzipan"},
		FlagTerms:   []string{"natural flavors", "vegetable oil"},
	},
	{
		Key:         "soy-free",
		Label:       "Soy-Free",
		Description: "avoids soy and soy derivatives",
		Category:    "allergy",
		AvoidTerms:  []string{"soy", "soya", "edamame", "tofu", "textured vegetable protein", "miso", "tempeh"},
		FlagTerms:   []string{"vegetable oil", "lecithin", "natural flavors", "vegetable broth"},
	},
}

// PreferenceCatalog returns the built-in catalog. The slice is shared;
// callers must not modify it.
func PreferenceCatalog() []PreferenceRule {
	return preferenceCatalog
}

// avoidanceRule is a custom avoidance lifted into matching form.
type avoidanceRule struct {
	ingredient string
	reason     string
	severity   string
}

// RestrictionEngine answers whether an ingredient conflicts with the
// user's dietary restrictions. An engine is an immutable snapshot: build
// one per scan so preference edits mid-scan cannot produce inconsistent
// per-ingredient decisions within a single result.
type RestrictionEngine struct {
	active     []PreferenceRule
	avoidances []avoidanceRule
}

// NewRestrictionEngine builds a snapshot from the user's active
// preference keys and custom avoidances.
func NewRestrictionEngine(activeKeys []string, avoidances []models.CustomAvoidance) *RestrictionEngine {
	keySet := make(map[string]bool, len(activeKeys))
	for _, k := range activeKeys {
		keySet[strings.ToLower(strings.TrimSpace(k))] = true
	}

	engine := &RestrictionEngine{}
	for _, rule := range preferenceCatalog {
		if keySet[rule.Key] {
			engine.active = append(engine.active, rule)
		}
	}
	for _, a := range avoidances {
		ingredient := strings.ToLower(strings.TrimSpace(a.Ingredient))
		if ingredient == "" {
			continue
		}
		engine.avoidances = append(engine.avoidances, avoidanceRule{
			ingredient: ingredient,
			reason:     a.Reason,
			severity:   a.Severity,
		})
	}
	return engine
}

// CheckRestriction tests one ingredient name against every custom
// avoidance and every active preference. All matching reasons are
// collected, not just the first; shouldAvoid beats shouldFlag downstream.
func (e *RestrictionEngine) CheckRestriction(ingredientName string) types.RestrictionCheck {
	name := strings.ToLower(strings.TrimSpace(ingredientName))
	check := types.RestrictionCheck{Reasons: []string{}}
	if name == "" {
		return check
	}

	for _, a := range e.avoidances {
		if !containsEitherWay(name, a.ingredient) {
			continue
		}
		if a.severity == "caution" {
			check.ShouldFlag = true
		} else {
			check.ShouldAvoid = true
		}
		reason := a.reason
		if reason == "" {
			reason = fmt.Sprintf("You chose to avoid %s", a.ingredient)
		}
		check.Reasons = append(check.Reasons, reason)
	}

	for _, rule := range e.active {
		matchedAvoid := false
		for _, term := range rule.AvoidTerms {
			if containsEitherWay(name, term) {
				check.ShouldAvoid = true
				matchedAvoid = true
				check.Reasons = append(check.Reasons, fmt.Sprintf("%s: %s", rule.Label, rule.Description))
				break
			}
		}
		if matchedAvoid {
			continue
		}
		for _, term := range rule.FlagTerms {
			if containsEitherWay(name, term) {
				check.ShouldFlag = true
				check.Reasons = append(check.Reasons, fmt.Sprintf("%s: may conflict, check the source of this ingredient", rule.Label))
				break
			}
		}
	}

	return check
}

// containsEitherWay is the deliberately permissive substring test used
// throughout restriction matching.
func containsEitherWay(a, b string) bool {
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// DietaryProfileService is the sole source of truth for a user's
// restriction state. The pipeline loads one snapshot per scan and never
// caches beyond that.
type DietaryProfileService struct {
	db *gorm.DB
}

// NewDietaryProfileService creates a new DietaryProfileService instance
func NewDietaryProfileService(db *gorm.DB) *DietaryProfileService {
	return &DietaryProfileService{db: db}
}

// SeedDefaults creates one inactive preference row per catalog entry for
// a new user. Existing rows are left untouched.
func (s *DietaryProfileService) SeedDefaults(ctx context.Context, userID uuid.UUID) error {
	for _, rule := range preferenceCatalog {
		var count int64
		if err := s.db.WithContext(ctx).Model(&models.DietaryPreference{}).
			Where("user_id = ? AND preference_key = ?", userID, rule.Key).
			Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check preference %s: %w", rule.Key, err)
		}
		if count > 0 {
			continue
		}
		pref := models.DietaryPreference{
			ID:            uuid.New(),
			UserID:        userID,
			PreferenceKey: rule.Key,
		}
		if err := s.db.WithContext(ctx).Create(&pref).Error; err != nil {
			return fmt.Errorf("failed to seed preference %s: %w", rule.Key, err)
		}
	}
	return nil
}

// ListPreferences returns the catalog merged with the user's active flags.
func (s *DietaryProfileService) ListPreferences(ctx context.Context, userID uuid.UUID) ([]types.PreferenceResponse, error) {
	var prefs []models.DietaryPreference
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Find(&prefs).Error; err != nil {
		return nil, fmt.Errorf("failed to load preferences: %w", err)
	}

	activeByKey := make(map[string]bool, len(prefs))
	for _, p := range prefs {
		activeByKey[p.PreferenceKey] = p.Active
	}

	out := make([]types.PreferenceResponse, 0, len(preferenceCatalog))
	for _, rule := range preferenceCatalog {
		out = append(out, types.PreferenceResponse{
			Key:         rule.Key,
			Label:       rule.Label,
			Description: rule.Description,
			Category:    rule.Category,
			Active:      activeByKey[rule.Key],
		})
	}
	return out, nil
}

// TogglePreference sets the active flag for one catalog key. The change
// takes effect on the next scan's snapshot.
func (s *DietaryProfileService) TogglePreference(ctx context.Context, userID uuid.UUID, key string, active bool) error {
	if !isCatalogKey(key) {
		return ErrUnknownPreference
	}

	var pref models.DietaryPreference
	err := s.db.WithContext(ctx).Where("user_id = ? AND preference_key = ?", userID, key).First(&pref).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		pref = models.DietaryPreference{
			ID:            uuid.New(),
			UserID:        userID,
			PreferenceKey: key,
			Active:        active,
		}
		if err := s.db.WithContext(ctx).Create(&pref).Error; err != nil {
			return fmt.Errorf("failed to create preference: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load preference: %w", err)
	}

	pref.Active = active
	if err := s.db.WithContext(ctx).Save(&pref).Error; err != nil {
		return fmt.Errorf("failed to save preference: %w", err)
	}
	return nil
}

// AddAvoidance creates a custom avoidance for the user.
func (s *DietaryProfileService) AddAvoidance(ctx context.Context, userID uuid.UUID, ingredient, reason, severity string) (*models.CustomAvoidance, error) {
	if severity != "avoid" && severity != "caution" {
		return nil, fmt.Errorf("invalid severity %q", severity)
	}
	avoidance := models.CustomAvoidance{
		ID:         uuid.New(),
		UserID:     userID,
		Ingredient: strings.TrimSpace(ingredient),
		Reason:     strings.TrimSpace(reason),
		Severity:   severity,
	}
	if avoidance.Ingredient == "" {
		return nil, fmt.Errorf("ingredient is required")
	}
	if err := s.db.WithContext(ctx).Create(&avoidance).Error; err != nil {
		return nil, fmt.Errorf("failed to create avoidance: %w", err)
	}
	return &avoidance, nil
}

// ListAvoidances returns the user's custom avoidances, newest first.
func (s *DietaryProfileService) ListAvoidances(ctx context.Context, userID uuid.UUID) ([]models.CustomAvoidance, error) {
	var avoidances []models.CustomAvoidance
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("created_at DESC").Find(&avoidances).Error; err != nil {
		return nil, fmt.Errorf("failed to load avoidances: %w", err)
	}
	return avoidances, nil
}

// RemoveAvoidance deletes one custom avoidance owned by the user.
func (s *DietaryProfileService) RemoveAvoidance(ctx context.Context, userID, avoidanceID uuid.UUID) error {
	result := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", avoidanceID, userID).
		Delete(&models.CustomAvoidance{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete avoidance: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrAvoidanceNotFound
	}
	return nil
}

// Snapshot builds an immutable RestrictionEngine from the user's current
// restriction state.
func (s *DietaryProfileService) Snapshot(ctx context.Context, userID uuid.UUID) (*RestrictionEngine, error) {
	var prefs []models.DietaryPreference
	if err := s.db.WithContext(ctx).Where("user_id = ? AND active = ?", userID, true).
		Find(&prefs).Error; err != nil {
		return nil, fmt.Errorf("failed to load active preferences: %w", err)
	}

	avoidances, err := s.ListAvoidances(ctx, userID)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(prefs))
	for _, p := range prefs {
		keys = append(keys, p.PreferenceKey)
	}
	return NewRestrictionEngine(keys, avoidances), nil
}

func isCatalogKey(key string) bool {
	for _, rule := range preferenceCatalog {
		if rule.Key == key {
			return true
		}
	}
	return false
}
