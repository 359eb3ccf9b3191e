package category

import (
	"testing"

	"github.com/nikhilza/focuspanel/internal/model/qa"
)

var panelNames = []string{"Aditi", "Rahul", "Priya"}

func TestPersonaNameWins(t *testing.T) {
	got := Classify("What did Aditi say about pricing?", panelNames, DefaultRules())
	if got != qa.ParticipantSpecific {
		t.Fatalf("named-persona question classified as %s, want participant_specific", got)
	}

	// Name mention beats thematic keywords even when several fire.
	got = Classify("Compare the main themes Rahul raised about purchase decisions", panelNames, DefaultRules())
	if got != qa.ParticipantSpecific {
		t.Fatalf("named question with thematic keywords classified as %s", got)
	}
}

func TestOrderedRules(t *testing.T) {
	cases := []struct {
		question string
		want     qa.Category
	}{
		{"What were the main themes of the discussion?", qa.ThemeAnalysis},
		{"What drives their purchase decisions?", qa.BehavioralInsights},
		{"How did opinions differ by age group?", qa.DemographicAnalysis},
		{"Was the overall sentiment positive?", qa.SentimentAnalysis},
		{"How does online compare versus offline?", qa.ComparativeAnalysis},
		{"What would you recommend we change?", qa.ActionableInsights},
	}

	for _, tc := range cases {
		if got := Classify(tc.question, panelNames, DefaultRules()); got != tc.want {
			t.Errorf("Classify(%q) = %s, want %s", tc.question, got, tc.want)
		}
	}
}

func TestDefaultsToThemeAnalysis(t *testing.T) {
	got := Classify("Tell me something interesting", panelNames, DefaultRules())
	if got != qa.ThemeAnalysis {
		t.Fatalf("signal-free question classified as %s, want theme_analysis", got)
	}
}

func TestShortKeywordsRespectWordBoundaries(t *testing.T) {
	// "age" must not fire inside "average".
	got := Classify("What was the average spend mentioned?", panelNames, DefaultRules())
	if got == qa.DemographicAnalysis {
		t.Fatal("\"age\" matched inside \"average\"")
	}

	// Longer keywords act as prefixes: "recommend" matches "recommendations".
	got = Classify("List the recommendations from the panel", panelNames, DefaultRules())
	if got != qa.ActionableInsights {
		t.Fatalf("prefix match failed, got %s", got)
	}
}

func TestNamedPersona(t *testing.T) {
	name, ok := NamedPersona("what did PRIYA think about it?", panelNames)
	if !ok || name != "Priya" {
		t.Fatalf("NamedPersona = %q, %v; want Priya, true", name, ok)
	}
	if _, ok := NamedPersona("what did everyone think?", panelNames); ok {
		t.Fatal("NamedPersona matched with no name present")
	}
}
