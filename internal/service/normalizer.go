package service

import (
	"regexp"
	"strings"
)

// TextNormalizer cleans raw OCR output into a single delimiter-ready
// string. It strips the ingredient-list label, cuts the text at the first
// non-ingredient section header and collapses whitespace. It never fails:
// empty or unusable input yields an empty string, which downstream treats
// as "no ingredients found".
type TextNormalizer struct{}

// NewTextNormalizer creates a new TextNormalizer instance
func NewTextNormalizer() *TextNormalizer {
	return &TextNormalizer{}
}

// Label phrases in priority order. Scanning stops at the first match, so
// "ingredients:" wins over the bare "contains:" when both appear.
var labelPhrases = []string{
	"ingredients:",
	"ingredient:",
	"ingredients",
	"ingrédients:",
	"ingredientes:",
	"zutaten:",
	"composition:",
	"contiene:",
	"contains:",
	"made with:",
	"made from:",
}

// Stop phrases mark the end of the ingredient list: nutrition panels,
// allergen boilerplate, distributor addresses and similar label noise.
// Only the leftmost occurrence is used as the cut point.
var stopPhrases = []string{
	"nutrition facts",
	"nutritional information",
	"nutrition information",
	"allergen information",
	"allergy advice",
	"allergens:",
	"may contain",
	"contains 2% or less",
	"directions",
	"suggested use",
	"storage:",
	"keep refrigerated",
	"distributed by",
	"manufactured by",
	"manufactured for",
	"produced by",
	"packed by",
	"best by",
	"best before",
	"use by",
	"sell by",
	"expiration",
	"net wt",
	"net weight",
	"serving size",
	"servings per container",
	"calories per serving",
	"daily value",
	"questions or comments",
	"satisfaction guaranteed",
	"www.",
	"p.o. box",
	"po box",
	"mcdonald's",
	"burger king",
	"taco bell",
	"wendy's",
	"subway",
}

var whitespaceRe = regexp.MustCompile(`\s+`)

// Normalize cleans raw OCR text into a single line of ingredient text.
func (n *TextNormalizer) Normalize(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	// Collapse newlines and runs of whitespace first so label and stop
	// phrases match across line breaks.
	text := whitespaceRe.ReplaceAllString(raw, " ")
	text = strings.TrimSpace(text)

	lower := strings.ToLower(text)

	// Strip everything up to and including the ingredient-list label.
	for _, label := range labelPhrases {
		if idx := strings.Index(lower, label); idx >= 0 {
			text = text[idx+len(label):]
			lower = lower[idx+len(label):]
			break
		}
	}

	// Cut at the leftmost stop phrase.
	cut := len(text)
	for _, stop := range stopPhrases {
		if idx := strings.Index(lower, stop); idx >= 0 && idx < cut {
			cut = idx
		}
	}
	text = text[:cut]

	return strings.TrimSpace(text)
}

// IngredientSplitter breaks normalized label text into discrete candidate
// ingredient strings and filters out non-ingredient noise such as
// addresses, units and nutrition-label jargon.
type IngredientSplitter struct{}

// NewIngredientSplitter creates a new IngredientSplitter instance
func NewIngredientSplitter() *IngredientSplitter {
	return &IngredientSplitter{}
}

const (
	minCandidateLen = 2
	maxCandidateLen = 60
)

var (
	// A period followed by a letter is a list boundary, with or without
	// whitespace; a period followed by a digit (decimals) is not.
	periodBoundaryRe = regexp.MustCompile(`\.\s*([A-Za-zÀ-ÿ])`)

	parentheticalRe = regexp.MustCompile(`\([^)]*\)|\[[^\]]*\]`)
	percentRe       = regexp.MustCompile(`\d+(?:\.\d+)?\s*%`)
	unitRe          = regexp.MustCompile(`(?i)\b\d+(?:\.\d+)?\s*(?:mg|g|kg|ml|l|oz|lb)\b`)
	bulletRe        = regexp.MustCompile(`^[\s\-–—•·*]+|[\s\-–—•·*]+$`)
	numericRe       = regexp.MustCompile(`^[\d\s.\-/%]+$`)
	alphaRe         = regexp.MustCompile(`[A-Za-zÀ-ÿ]`)
	zipRe           = regexp.MustCompile(`^\d{5}(?:-\d{4})?$`)
	phoneRe         = regexp.MustCompile(`^\+?[\d\s().\-]{7,}$`)
	urlOrEmailRe    = regexp.MustCompile(`(?i)(?:https?://|www\.|\.com|\.org|\.net|@)`)
)

var splitterStopwords = map[string]bool{
	"and": true, "or": true, "the": true, "a": true, "an": true,
	"of": true, "with": true, "from": true, "for": true, "in": true,
	"to": true, "by": true, "less": true, "each": true,
}

var usStateAbbrevs = map[string]bool{
	"al": true, "ak": true, "az": true, "ar": true, "ca": true, "co": true,
	"ct": true, "de": true, "fl": true, "ga": true, "hi": true, "id": true,
	"il": true, "in": true, "ia": true, "ks": true, "ky": true, "la": true,
	"me": true, "md": true, "ma": true, "mi": true, "mn": true, "ms": true,
	"mo": true, "mt": true, "ne": true, "nv": true, "nh": true, "nj": true,
	"nm": true, "ny": true, "nc": true, "nd": true, "oh": true, "ok": true,
	"or": true, "pa": true, "ri": true, "sc": true, "sd": true, "tn": true,
	"tx": true, "ut": true, "vt": true, "va": true, "wa": true, "wv": true,
	"wi": true, "wy": true,
}

// Terms that show up on labels but are never ingredients: nutrition
// jargon, company-entity suffixes and geography.
var nonIngredientTerms = map[string]bool{
	"inc": true, "llc": true, "ltd": true, "corp": true, "co": true,
	"company": true, "brands": true, "foods": true, "usa": true,
	"u.s.a": true, "america": true, "canada": true, "mexico": true,
	"calories": true, "calcium": true, "sodium": true, "potassium": true,
	"protein": true, "carbohydrate": true, "total fat": true,
	"saturated fat": true, "trans fat": true, "cholesterol": true,
	"dietary fiber": true,
	"street": true, "ave": true, "avenue": true, "blvd": true,
	"boulevard": true, "suite": true, "drive": true, "road": true,
	"city": true, "chicago": true, "new york": true, "los angeles": true,
	"atlanta": true, "dallas": true, "springfield": true,
	"percent": true, "daily": true, "value": true, "values": true,
	"amount": true, "serving": true, "servings": true,
}

// Split breaks cleaned text into unique candidate ingredient strings,
// preserving first-seen order. It may legitimately return an empty slice;
// the orchestrator surfaces that as a distinct no-ingredients outcome.
func (s *IngredientSplitter) Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return []string{}
	}

	// Rewrite period boundaries as commas so a single FieldsFunc pass
	// handles all three delimiters.
	prepared := periodBoundaryRe.ReplaceAllString(text, ", $1")

	parts := strings.FieldsFunc(prepared, func(r rune) bool {
		return r == ',' || r == ';'
	})

	candidates := make([]string, 0, len(parts))
	seen := make(map[string]bool, len(parts))

	for _, part := range parts {
		candidate := s.cleanCandidate(part)
		if candidate == "" {
			continue
		}
		if s.isNoise(candidate) {
			continue
		}
		key := strings.ToLower(candidate)
		if seen[key] {
			continue
		}
		seen[key] = true
		candidates = append(candidates, candidate)
	}

	return candidates
}

// cleanCandidate strips units, percentages, parentheticals and bullet
// characters, returning "" when nothing usable remains.
func (s *IngredientSplitter) cleanCandidate(raw string) string {
	c := parentheticalRe.ReplaceAllString(raw, "")
	c = percentRe.ReplaceAllString(c, "")
	c = unitRe.ReplaceAllString(c, "")
	c = bulletRe.ReplaceAllString(c, "")
	c = strings.Trim(c, " .:")
	c = whitespaceRe.ReplaceAllString(c, " ")

	if len(c) < minCandidateLen || len(c) > maxCandidateLen {
		return ""
	}
	return c
}

// isNoise reports whether a cleaned candidate is label noise rather than
// an ingredient.
func (s *IngredientSplitter) isNoise(candidate string) bool {
	lower := strings.ToLower(candidate)

	if numericRe.MatchString(candidate) {
		return true
	}
	if !alphaRe.MatchString(candidate) {
		return true
	}
	if splitterStopwords[lower] {
		return true
	}
	if usStateAbbrevs[lower] {
		return true
	}
	if zipRe.MatchString(candidate) {
		return true
	}
	if phoneRe.MatchString(candidate) {
		return true
	}
	if urlOrEmailRe.MatchString(candidate) {
		return true
	}
	if nonIngredientTerms[lower] {
		return true
	}
	return false
}
