package qa

import (
	"errors"
	"strings"
	"testing"

	"github.com/nikhilza/focuspanel/internal/config"
	"github.com/nikhilza/focuspanel/internal/model/discussion"
	"github.com/nikhilza/focuspanel/internal/model/persona"
	qamodel "github.com/nikhilza/focuspanel/internal/model/qa"
)

func testService() *Service {
	return NewService(config.DefaultTables())
}

func testPersonas() []persona.Persona {
	return []persona.Persona{
		{Name: "Aditi", Age: 22, Location: "Mumbai", Occupation: "College Student", Personality: persona.Enthusiastic, MonthlyBudget: "₹1,500-3,000"},
		{Name: "Rahul", Age: 28, Location: "Pune", Occupation: "Data Analyst", Personality: persona.Analytical, MonthlyBudget: "₹3,000-6,000"},
	}
}

func testTranscript() []discussion.TranscriptEntry {
	return []discussion.TranscriptEntry{
		{Speaker: discussion.ModeratorName, Type: discussion.EntryModeratorPrompt, Text: "Let's talk pricing.", Sequence: 1},
		{Speaker: "Aditi", Type: discussion.EntryStatement, Text: "I love the prices online, the deals are the best part for my budget.", Sequence: 2},
		{Speaker: "Rahul", Type: discussion.EntryStatement, Text: "I compare every price and the value rarely justifies the cost.", Sequence: 3},
		{Speaker: "Aditi", Type: discussion.EntryInteraction, Text: "Rahul, the discounts I found last sale were genuinely amazing value.", Sequence: 4},
	}
}

func TestParticipantSpecificAnswer(t *testing.T) {
	svc := testService()
	exchange, err := svc.Ask("What did Aditi say about pricing?", testPersonas(), testTranscript(), nil, nil)
	if err != nil {
		t.Fatalf("Ask failed: %v", err)
	}

	if exchange.Category != qamodel.ParticipantSpecific {
		t.Fatalf("category = %s, want participant_specific", exchange.Category)
	}
	if len(exchange.Evidence) != 2 {
		t.Fatalf("expected Aditi's 2 entries as evidence, got %d", len(exchange.Evidence))
	}
	for _, ev := range exchange.Evidence {
		if ev.Speaker != "Aditi" {
			t.Fatalf("evidence from %q leaked into a participant-specific answer", ev.Speaker)
		}
	}
	if !strings.Contains(exchange.Answer, "College Student") {
		t.Fatal("answer should include the persona profile")
	}
	if strings.Contains(exchange.Answer, "compare every price") {
		t.Fatal("answer quotes another participant")
	}
}

func TestThematicAnswerCappedAndScored(t *testing.T) {
	svc := testService()
	exchange, err := svc.Ask("What were the main themes?", testPersonas(), testTranscript(), nil, nil)
	if err != nil {
		t.Fatalf("Ask failed: %v", err)
	}

	if exchange.Category != qamodel.ThemeAnalysis {
		t.Fatalf("category = %s, want theme_analysis", exchange.Category)
	}
	if len(exchange.Evidence) == 0 || len(exchange.Evidence) > 5 {
		t.Fatalf("evidence count %d outside (0, 5]", len(exchange.Evidence))
	}
	for _, ev := range exchange.Evidence {
		if ev.Speaker == discussion.ModeratorName {
			t.Fatal("moderator prompt retrieved as evidence")
		}
	}
}

func TestNoEvidenceFallback(t *testing.T) {
	svc := testService()
	transcript := []discussion.TranscriptEntry{
		{Speaker: "Aditi", Type: discussion.EntryStatement, Text: "hm", Sequence: 1},
	}

	_, err := svc.Ask("What were the main themes?", testPersonas(), transcript, nil, nil)
	var noEvidence *NoEvidenceFoundError
	if !errors.As(err, &noEvidence) {
		t.Fatalf("expected NoEvidenceFoundError, got %v", err)
	}
	if noEvidence.Fallback() == "" {
		t.Fatal("fallback message is empty")
	}
	if noEvidence.Category != qamodel.ThemeAnalysis {
		t.Fatalf("fallback category = %s, want theme_analysis", noEvidence.Category)
	}
}

func TestFollowUpInheritsCategory(t *testing.T) {
	svc := testService()
	prior := []qamodel.Exchange{{Question: "What drives their purchase decisions?", Category: qamodel.BehavioralInsights}}

	exchange, err := svc.Ask("And what about them online?", testPersonas(), testTranscript(), nil, prior)
	if err != nil {
		t.Fatalf("Ask failed: %v", err)
	}
	if exchange.Category != qamodel.BehavioralInsights {
		t.Fatalf("follow-up category = %s, want inherited behavioral_insights", exchange.Category)
	}
}

func TestFreshShortQuestionKeepsOwnCategory(t *testing.T) {
	svc := testService()
	prior := []qamodel.Exchange{{Question: "What drives their purchase decisions?", Category: qamodel.BehavioralInsights}}

	// "it" sits inside "quality" but is not a word of its own, so this is a
	// fresh question and must not inherit the prior category.
	exchange, err := svc.Ask("Did quality win overall?", testPersonas(), testTranscript(), nil, prior)
	if err != nil {
		t.Fatalf("Ask failed: %v", err)
	}
	if exchange.Category != qamodel.ThemeAnalysis {
		t.Fatalf("category = %s, want theme_analysis", exchange.Category)
	}
}

func TestEmptyQuestionRejected(t *testing.T) {
	svc := testService()
	if _, err := svc.Ask("   ", testPersonas(), testTranscript(), nil, nil); err == nil {
		t.Fatal("empty question should be rejected")
	}
}
