package service

import (
	"math"

	"github.com/labellens/backend/internal/types"
)

// Personalizer re-scores base classifications against a restriction
// snapshot. Personalization only ever raises severity: an avoid match
// forces avoid, a flag match lifts safe to caution, and nothing is ever
// downgraded below its base rating.
type Personalizer struct {
	engine *RestrictionEngine
}

// NewPersonalizer creates a new Personalizer instance
func NewPersonalizer(engine *RestrictionEngine) *Personalizer {
	return &Personalizer{engine: engine}
}

// Apply personalizes one base analysis. IsPersonalized is true exactly
// when the rating changed, and Reasons is non-empty exactly then.
func (p *Personalizer) Apply(base types.IngredientAnalysis) types.PersonalizedAnalysis {
	out := types.PersonalizedAnalysis{
		IngredientAnalysis: base,
		OriginalRating:     base.Rating,
	}

	check := p.engine.CheckRestriction(base.Name)

	switch {
	case check.ShouldAvoid && base.Rating != types.RatingAvoid:
		out.Rating = types.RatingAvoid
		out.IsPersonalized = true
		out.Reasons = check.Reasons
	case check.ShouldFlag && base.Rating == types.RatingSafe:
		out.Rating = types.RatingCaution
		out.IsPersonalized = true
		out.Reasons = check.Reasons
	}

	return out
}

// ApplyAll personalizes a slice in order and fills in the result's
// summary counters and overall score.
func (p *Personalizer) ApplyAll(analyses []types.IngredientAnalysis) *types.AnalysisResult {
	result := &types.AnalysisResult{
		Ingredients: make([]types.PersonalizedAnalysis, 0, len(analyses)),
	}

	for _, base := range analyses {
		personalized := p.Apply(base)
		result.Ingredients = append(result.Ingredients, personalized)

		switch personalized.Rating {
		case types.RatingSafe:
			result.SafeCount++
		case types.RatingCaution:
			result.CautionCount++
		case types.RatingAvoid:
			result.AvoidCount++
		}

		if personalized.IsPersonalized {
			result.PersonalizedCount++
			if personalized.Rating == types.RatingAvoid {
				result.EscalatedToAvoid++
			} else {
				result.FlaggedToCaution++
			}
		}
	}

	result.OverallScore = OverallScore(result.SafeCount, result.CautionCount, result.AvoidCount)
	return result
}

// OverallScore computes the label score from post-personalization rating
// counts: safe is worth 100, caution 60, avoid 20, averaged and rounded
// half away from zero. An empty ingredient list scores a perfect 100.
func OverallScore(safe, caution, avoid int) int {
	n := safe + caution + avoid
	if n == 0 {
		return 100
	}
	total := float64(100*safe + 60*caution + 20*avoid)
	return int(math.Round(total / float64(n)))
}
