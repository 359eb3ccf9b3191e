package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultTablesCoverAllPersonalities(t *testing.T) {
	tables := DefaultTables()
	for _, personality := range []string{"enthusiastic", "analytical", "trendy", "cautious", "expert", "budget_focused"} {
		w, ok := tables.InterruptionWeights[personality]
		if !ok {
			t.Fatalf("no interruption weight for %s", personality)
		}
		if w < 0 || w > 1 {
			t.Fatalf("weight for %s out of range: %f", personality, w)
		}
	}

	if tables.InterruptionWeights["enthusiastic"] <= tables.InterruptionWeights["analytical"] {
		t.Fatal("enthusiastic participants should interject more than analytical ones")
	}
}

func TestLoadTablesMergesOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tables.yaml")
	content := "interruption_weights:\n  cautious: 0.5\ncategory_keywords:\n  theme_analysis: [\"custom\"]\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	tables, err := LoadTables(path)
	if err != nil {
		t.Fatalf("LoadTables failed: %v", err)
	}

	if tables.InterruptionWeights["cautious"] != 0.5 {
		t.Fatalf("override not applied: cautious = %f", tables.InterruptionWeights["cautious"])
	}
	// Untouched keys keep their defaults.
	if tables.InterruptionWeights["enthusiastic"] != DefaultTables().InterruptionWeights["enthusiastic"] {
		t.Fatal("merge clobbered an unrelated weight")
	}
	if len(tables.CategoryKeywords["theme_analysis"]) != 1 || tables.CategoryKeywords["theme_analysis"][0] != "custom" {
		t.Fatalf("keyword override not applied: %v", tables.CategoryKeywords["theme_analysis"])
	}
	if len(tables.CategoryKeywords["behavioral_insights"]) == 0 {
		t.Fatal("merge dropped an unrelated keyword set")
	}
}

func TestLoadTablesEmptyPathReturnsDefaults(t *testing.T) {
	tables, err := LoadTables("")
	if err != nil {
		t.Fatalf("LoadTables failed: %v", err)
	}
	if len(tables.InterruptionWeights) != len(DefaultTables().InterruptionWeights) {
		t.Fatal("empty path should return defaults")
	}
}

func TestLoadTablesMissingFile(t *testing.T) {
	if _, err := LoadTables("/does/not/exist.yaml"); err == nil {
		t.Fatal("missing file should fail loudly, not fall back silently")
	}
}
