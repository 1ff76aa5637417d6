package types

// SafetyRating classifies how safe an ingredient is considered.
// Ratings are ordered by severity: safe < caution < avoid.
type SafetyRating string

const (
	RatingSafe    SafetyRating = "safe"
	RatingCaution SafetyRating = "caution"
	RatingAvoid   SafetyRating = "avoid"
)

// Severity returns the ordinal severity of a rating. Unknown ratings
// sort below safe so they can never mask a real finding.
func (r SafetyRating) Severity() int {
	switch r {
	case RatingSafe:
		return 1
	case RatingCaution:
		return 2
	case RatingAvoid:
		return 3
	default:
		return 0
	}
}

// IsValid reports whether r is one of the three known ratings.
func (r SafetyRating) IsValid() bool {
	return r == RatingSafe || r == RatingCaution || r == RatingAvoid
}

// IngredientAnalysis is the per-candidate classification result.
type IngredientAnalysis struct {
	Name           string       `json:"name"`
	Position       int          `json:"position"`
	Rating         SafetyRating `json:"rating"`
	Confidence     int          `json:"confidence"`
	Category       string       `json:"category"`
	Explanation    string       `json:"explanation"`
	HealthConcerns []string     `json:"health_concerns"`
	Alternatives   []string     `json:"alternatives"`
	Sources        []string     `json:"sources"`
}

// PersonalizedAnalysis extends IngredientAnalysis with the outcome of
// re-scoring against the user's dietary restrictions. When IsPersonalized
// is false, Rating equals OriginalRating and Reasons is empty.
type PersonalizedAnalysis struct {
	IngredientAnalysis
	OriginalRating SafetyRating `json:"original_rating"`
	Reasons        []string     `json:"personalization_reasons,omitempty"`
	IsPersonalized bool         `json:"is_personalized"`
}

// AnalysisResult is the full outcome of one scan. SafeCount, CautionCount
// and AvoidCount always sum to len(Ingredients).
type AnalysisResult struct {
	Ingredients       []PersonalizedAnalysis `json:"ingredients"`
	OverallScore      int                    `json:"overall_score"`
	SafeCount         int                    `json:"safe_count"`
	CautionCount      int                    `json:"caution_count"`
	AvoidCount        int                    `json:"avoid_count"`
	PersonalizedCount int                    `json:"personalized_count"`
	EscalatedToAvoid  int                    `json:"escalated_to_avoid"`
	FlaggedToCaution  int                    `json:"flagged_to_caution"`
	ProcessingMS      int64                  `json:"processing_ms"`
}

// RestrictionCheck is the verdict of the dietary restriction engine for a
// single ingredient name. ShouldAvoid takes precedence over ShouldFlag.
type RestrictionCheck struct {
	ShouldAvoid bool     `json:"should_avoid"`
	ShouldFlag  bool     `json:"should_flag"`
	Reasons     []string `json:"reasons"`
}
