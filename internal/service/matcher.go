package service

import (
	"sort"
	"strings"
)

// IngredientMatcher resolves a free-text ingredient string to a
// knowledge-base entry. Implementations report unresolved rather than
// erroring; callers fall back to pattern-based classification.
type IngredientMatcher interface {
	Match(name string) (*IngredientEntry, bool)
}

// FuzzyMatcher resolves names with exact, qualifier-stripped substring and
// synonym-group matching, in that order. The bidirectional substring test
// intentionally over-matches on short common fragments; it is kept for
// compatibility and isolated behind IngredientMatcher so a stricter
// algorithm can replace it without touching callers.
type FuzzyMatcher struct {
	kb *KnowledgeBase

	// keys sorted once at construction so substring matching is
	// deterministic; classifying the same string twice must yield the
	// same entry.
	sortedKeys []string
}

// Ensure FuzzyMatcher implements IngredientMatcher
var _ IngredientMatcher = (*FuzzyMatcher)(nil)

// NewFuzzyMatcher creates a new FuzzyMatcher instance
func NewFuzzyMatcher(kb *KnowledgeBase) *FuzzyMatcher {
	keys := make([]string, 0, len(kb.entries))
	for key := range kb.entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return &FuzzyMatcher{kb: kb, sortedKeys: keys}
}

// Qualifier words carry no identity; "citric acid" and "citric" should
// resolve to the same entry.
var qualifierWords = []string{"acid", "extract", "oil", "powder", "natural", "artificial"}

// synonymGroups lists names that refer to the same ingredient without
// being substrings of each other.
var synonymGroups = [][]string{
	{"sugar", "cane sugar", "organic sugar", "raw sugar", "evaporated cane juice"},
	{"salt", "sea salt", "himalayan salt", "kosher salt"},
	{"high fructose corn syrup", "glucose-fructose syrup", "isoglucose"},
	{"ascorbic acid", "l-ascorbic acid", "sodium ascorbate"},
	{"natural flavors", "natural flavor", "natural flavoring", "natural flavourings"},
	{"whey", "whey protein", "whey protein concentrate", "whey protein isolate"},
}

// Match resolves name against the knowledge base. First success wins.
func (m *FuzzyMatcher) Match(name string) (*IngredientEntry, bool) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	if normalized == "" {
		return nil, false
	}

	// 1. Exact (case-insensitive) key or alias match.
	if entry, ok := m.kb.Lookup(normalized); ok {
		return entry, true
	}

	// 2. Qualifier-stripped substring containment, either direction.
	strippedQuery := stripQualifiers(normalized)
	if strippedQuery != "" {
		for _, key := range m.sortedKeys {
			strippedKey := stripQualifiers(key)
			if strippedKey == "" {
				continue
			}
			if strings.Contains(strippedQuery, strippedKey) || strings.Contains(strippedKey, strippedQuery) {
				return m.kb.entries[key], true
			}
		}
	}

	// 3. Synonym groups: if the query belongs to a group, try every other
	// member of that group against the knowledge base.
	for _, group := range synonymGroups {
		if !containsFold(group, normalized) {
			continue
		}
		for _, member := range group {
			if entry, ok := m.kb.Lookup(member); ok {
				return entry, true
			}
		}
	}

	return nil, false
}

// stripQualifiers removes qualifier words and collapses the remainder.
func stripQualifiers(name string) string {
	words := strings.Fields(name)
	kept := make([]string, 0, len(words))
	for _, w := range words {
		qualifier := false
		for _, q := range qualifierWords {
			if w == q {
				qualifier = true
				break
			}
		}
		if !qualifier {
			kept = append(kept, w)
		}
	}
	return strings.Join(kept, " ")
}

func containsFold(list []string, target string) bool {
	for _, item := range list {
		if strings.EqualFold(item, target) {
			return true
		}
	}
	return false
}
