package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/labellens/backend/internal/types"
)

// SafetyClassifier turns a single candidate ingredient string into an
// IngredientAnalysis. Resolution order: knowledge base via the matcher,
// then the optional remote AI provider, then ordered keyword heuristics.
// Classification never fails; unknown ingredients get an honest
// low-confidence caution instead of an error.
type SafetyClassifier struct {
	matcher IngredientMatcher
	ai      AIProvider
}

// NewSafetyClassifier creates a new SafetyClassifier instance. The AI
// provider may be nil, in which case only the knowledge base and the
// keyword heuristics are used.
func NewSafetyClassifier(matcher IngredientMatcher, ai AIProvider) *SafetyClassifier {
	return &SafetyClassifier{
		matcher: matcher,
		ai:      ai,
	}
}

// patternRule is one keyword heuristic for ingredients the knowledge base
// does not know. Rules are evaluated in order; the first hit wins.
type patternRule struct {
	keywords   []string
	category   string
	rating     types.SafetyRating
	confidence int
}

var patternRules = []patternRule{
	{keywords: []string{"acid"}, category: "preservative", rating: types.RatingCaution, confidence: 60},
	{keywords: []string{"vitamin", "mineral"}, category: "vitamin", rating: types.RatingSafe, confidence: 80},
	{keywords: []string{"color", "colour", "dye"}, category: "coloring", rating: types.RatingAvoid, confidence: 70},
	{keywords: []string{"flavor", "flavour"}, category: "flavoring", rating: types.RatingCaution, confidence: 65},
	{keywords: []string{"sugar", "syrup"}, category: "sweetener", rating: types.RatingCaution, confidence: 75},
	{keywords: []string{"oil", "fat"}, category: "fat", rating: types.RatingCaution, confidence: 60},
}

// Classify analyzes one candidate ingredient at the given 1-based
// position. It is pure: no persistence, no logging of ingredient data.
func (c *SafetyClassifier) Classify(ctx context.Context, name string, position int) types.IngredientAnalysis {
	trimmed := strings.TrimSpace(name)

	if entry, ok := c.matcher.Match(trimmed); ok {
		return analysisFromEntry(trimmed, position, entry)
	}

	if c.ai != nil {
		entry, err := c.ai.ClassifyIngredient(ctx, trimmed)
		if err == nil && entry != nil && entry.Rating.IsValid() {
			return analysisFromEntry(trimmed, position, entry)
		}
		if err != nil {
			log.Printf("[SafetyClassifier] AI provider unavailable, using pattern rules: %v", err)
		}
	}

	return c.classifyByPattern(trimmed, position)
}

// analysisFromEntry copies knowledge-base metadata verbatim into a result.
func analysisFromEntry(name string, position int, entry *IngredientEntry) types.IngredientAnalysis {
	return types.IngredientAnalysis{
		Name:           name,
		Position:       position,
		Rating:         entry.Rating,
		Confidence:     clampConfidence(entry.Confidence),
		Category:       entry.Category,
		Explanation:    entry.Explanation,
		HealthConcerns: append([]string(nil), entry.HealthConcerns...),
		Alternatives:   append([]string(nil), entry.Alternatives...),
		Sources:        append([]string(nil), entry.Sources...),
	}
}

// classifyByPattern applies the ordered keyword heuristics.
func (c *SafetyClassifier) classifyByPattern(name string, position int) types.IngredientAnalysis {
	lower := strings.ToLower(name)

	for _, rule := range patternRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return types.IngredientAnalysis{
					Name:       name,
					Position:   position,
					Rating:     rule.rating,
					Confidence: rule.confidence,
					Category:   rule.category,
					Explanation: fmt.Sprintf(
						"%s is not in our ingredient database; the %s category was inferred from its name.",
						name, rule.category),
					HealthConcerns: []string{},
					Alternatives:   []string{},
					Sources:        []string{},
				}
			}
		}
	}

	return types.IngredientAnalysis{
		Name:       name,
		Position:   position,
		Rating:     types.RatingCaution,
		Confidence: 45,
		Category:   "unknown",
		Explanation: fmt.Sprintf(
			"%s is not in our ingredient database and no naming pattern applies; treat with caution.",
			name),
		HealthConcerns: []string{},
		Alternatives:   []string{},
		Sources:        []string{},
	}
}

// clampConfidence keeps confidence inside [0,100].
func clampConfidence(confidence int) int {
	if confidence < 0 {
		return 0
	}
	if confidence > 100 {
		return 100
	}
	return confidence
}
