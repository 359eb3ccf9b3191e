package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Tables holds the heuristic weight and keyword tables that drive the
// simulation. They are configuration data, not code: a YAML file may override
// any subset, and the defaults apply to whatever it leaves out.
type Tables struct {
	// InterruptionWeights is the per-personality probability (0..1) that a
	// statement triggers a spontaneous interaction from another participant.
	InterruptionWeights map[string]float64 `yaml:"interruption_weights"`
	// CategoryKeywords overrides the evidence-retrieval keyword set per QA
	// category.
	CategoryKeywords map[string][]string `yaml:"category_keywords"`
}

// DefaultTables returns the built-in heuristic tables. Enthusiastic and
// trendy participants interject the most, analytical and cautious the least.
func DefaultTables() Tables {
	return Tables{
		InterruptionWeights: map[string]float64{
			"enthusiastic":   0.45,
			"trendy":         0.40,
			"expert":         0.25,
			"budget_focused": 0.25,
			"cautious":       0.15,
			"analytical":     0.10,
		},
		CategoryKeywords: map[string][]string{
			"theme_analysis":       {"price", "quality", "brand", "experience", "value", "service", "product", "online", "store", "recommend"},
			"behavioral_insights":  {"buy", "bought", "purchase", "decide", "decision", "research", "review", "compare", "habit"},
			"sentiment_analysis":   {"love", "hate", "great", "amazing", "terrible", "awful", "perfect", "worst", "disappointed", "excited"},
			"comparative_analysis": {"online", "offline", "store", "versus", "instead", "prefer", "better", "worse", "switch"},
			"actionable_insights":  {"wish", "should", "need", "improve", "better", "easier", "recommend", "suggest"},
			"demographic_analysis": {"age", "budget", "income", "city", "occupation", "student", "professional"},
		},
	}
}

// LoadTables reads the optional YAML overrides from path and merges them over
// the defaults. An empty path returns the defaults unchanged.
func LoadTables(path string) (Tables, error) {
	tables := DefaultTables()
	if path == "" {
		return tables, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return Tables{}, fmt.Errorf("read tables file %s: %w", path, err)
	}

	var override Tables
	if err := yaml.Unmarshal(raw, &override); err != nil {
		return Tables{}, fmt.Errorf("parse tables file %s: %w", path, err)
	}

	for k, v := range override.InterruptionWeights {
		tables.InterruptionWeights[k] = v
	}
	for k, v := range override.CategoryKeywords {
		tables.CategoryKeywords[k] = v
	}

	return tables, nil
}
