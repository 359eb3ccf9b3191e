package persona

import (
	"errors"
	"testing"

	"github.com/nikhilza/focuspanel/internal/model/persona"
)

func TestGenerateSixCoversAllTypes(t *testing.T) {
	gen := New(42)
	personas, err := gen.Generate("Gen Z shoppers in metro cities", "online beauty shopping", 6)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if len(personas) != 6 {
		t.Fatalf("expected 6 personas, got %d", len(personas))
	}

	seen := make(map[persona.PersonalityType]bool)
	for _, p := range personas {
		if seen[p.Personality] {
			t.Fatalf("personality type %s appears twice in a set of 6", p.Personality)
		}
		seen[p.Personality] = true
	}
	if len(seen) != len(persona.AllTypes()) {
		t.Fatalf("expected all %d types, got %d", len(persona.AllTypes()), len(seen))
	}
}

func TestGenerateNoIdenticalPersonas(t *testing.T) {
	gen := New(7)
	personas, err := gen.Generate("young professionals who shop online", "food delivery apps", 10)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if len(personas) != 10 {
		t.Fatalf("expected 10 personas, got %d", len(personas))
	}

	for i := range personas {
		for j := i + 1; j < len(personas); j++ {
			if personas[i].Equal(personas[j]) {
				t.Fatalf("personas %d and %d are field-for-field identical", i, j)
			}
		}
	}
}

func TestGenerateEmptyContext(t *testing.T) {
	gen := New(1)
	if _, err := gen.Generate("   ", "anything", 6); !errors.Is(err, ErrInsufficientContext) {
		t.Fatalf("expected ErrInsufficientContext, got %v", err)
	}
}

func TestGenerateDeterministicBySeed(t *testing.T) {
	first, err := New(99).Generate("budget-conscious students", "laptops", 6)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	second, err := New(99).Generate("budget-conscious students", "laptops", 6)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	for i := range first {
		if !first[i].Equal(second[i]) {
			t.Fatalf("persona %d differs between runs with the same seed:\n%+v\n%+v", i, first[i], second[i])
		}
	}
}

func TestGenerateFewerPicksContextMatches(t *testing.T) {
	gen := New(3)
	personas, err := gen.Generate("budget shoppers hunting for deals and discounts", "smartphones", 2)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if len(personas) != 2 {
		t.Fatalf("expected 2 personas, got %d", len(personas))
	}

	found := false
	for _, p := range personas {
		if p.Personality == persona.BudgetFocused {
			found = true
		}
	}
	if !found {
		t.Fatalf("context full of budget hints should select a budget_focused persona, got %v and %v",
			personas[0].Personality, personas[1].Personality)
	}
}

func TestGenerateDefaultsCount(t *testing.T) {
	gen := New(5)
	personas, err := gen.Generate("urban shoppers", "groceries", 0)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if len(personas) != 6 {
		t.Fatalf("count 0 should default to 6, got %d", len(personas))
	}
}

func TestGenerateAgesInRange(t *testing.T) {
	gen := New(11)
	personas, err := gen.Generate("senior buyers aged 45+ with established preferences", "insurance", 6)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	for _, p := range personas {
		if p.Age < 18 || p.Age > 65 {
			t.Fatalf("persona %s has out-of-range age %d", p.Name, p.Age)
		}
	}
}

func TestValidateFlagsDuplicates(t *testing.T) {
	gen := New(21)
	personas, err := gen.Generate("metro shoppers", "fashion", 6)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	report := Validate(personas)
	if !report.Valid {
		t.Fatalf("generated set should validate cleanly, issues: %v", report.Issues)
	}
	if report.PersonalityDiversity != 6 {
		t.Fatalf("expected 6 distinct personality types, got %d", report.PersonalityDiversity)
	}

	personas[1] = personas[0]
	report = Validate(personas)
	if report.Valid {
		t.Fatal("duplicated persona should fail validation")
	}
}
