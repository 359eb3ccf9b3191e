// Package category classifies free-form questions about a discussion into one
// of seven analysis categories using ordered keyword rules. A mention of a
// participant's name is the most specific signal and always wins.
package category

import (
	"strings"

	"github.com/nikhilza/focuspanel/internal/model/qa"
)

// Rule maps a category to the keywords that select it. Rules are evaluated in
// order; the first hit wins.
type Rule struct {
	Category qa.Category
	Keywords []string
}

// DefaultRules returns the ordered rule table. Treated as configuration data:
// callers may substitute their own keyword sets, but the ordering semantics
// stay fixed.
func DefaultRules() []Rule {
	return []Rule{
		{qa.ThemeAnalysis, []string{"theme", "topic", "discuss", "main", "primary"}},
		{qa.BehavioralInsights, []string{"buy", "purchase", "decision", "behavior", "behaviour", "drive", "motivate", "barrier"}},
		{qa.DemographicAnalysis, []string{"age", "demographic", "personality", "occupation", "group"}},
		{qa.SentimentAnalysis, []string{"sentiment", "feel", "opinion", "positive", "negative", "reaction"}},
		{qa.ComparativeAnalysis, []string{"compare", "difference", "versus", "vs", "contrast"}},
		{qa.ActionableInsights, []string{"recommend", "suggest", "opportunity", "action", "next step"}},
	}
}

// Classify assigns exactly one category to the question. personaNames are the
// session's participant names; a named reference routes to
// participant_specific regardless of thematic keywords. Unmatched questions
// default to theme_analysis.
func Classify(question string, personaNames []string, rules []Rule) qa.Category {
	lower := strings.ToLower(question)

	for _, name := range personaNames {
		if name == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(name)) {
			return qa.ParticipantSpecific
		}
	}

	for _, rule := range rules {
		for _, kw := range rule.Keywords {
			if ContainsWord(lower, kw) {
				return rule.Category
			}
		}
	}

	return qa.ThemeAnalysis
}

// NamedPersona returns the first participant name mentioned in the question.
func NamedPersona(question string, personaNames []string) (string, bool) {
	lower := strings.ToLower(question)
	for _, name := range personaNames {
		if name != "" && strings.Contains(lower, strings.ToLower(name)) {
			return name, true
		}
	}
	return "", false
}

// ContainsWord matches kw on rough word boundaries so "vs" does not fire
// inside "conversations". text must already be lowercased.
func ContainsWord(text, kw string) bool {
	idx := 0
	for {
		i := strings.Index(text[idx:], kw)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(kw)
		beforeOK := start == 0 || !isWordChar(text[start-1])
		// Keywords act as prefixes ("recommend" matches "recommendations")
		// unless they are very short.
		afterOK := len(kw) > 4 || end == len(text) || !isWordChar(text[end])
		if beforeOK && afterOK {
			return true
		}
		idx = end
	}
}

func isWordChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}
