// Package qa answers free-form questions about a finished discussion by
// classifying the question and retrieving supporting transcript evidence.
// Answers reference only retrieved material; nothing is ever fabricated.
package qa

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nikhilza/focuspanel/internal/analysis/category"
	"github.com/nikhilza/focuspanel/internal/analysis/quote"
	"github.com/nikhilza/focuspanel/internal/config"
	"github.com/nikhilza/focuspanel/internal/model/discussion"
	personamodel "github.com/nikhilza/focuspanel/internal/model/persona"
	qamodel "github.com/nikhilza/focuspanel/internal/model/qa"
	summarymodel "github.com/nikhilza/focuspanel/internal/model/summary"
)

const maxEvidence = 5

// NoEvidenceFoundError reports that neither the transcript nor the summary
// holds anything relevant to the question. Callers present Fallback rather
// than an empty answer.
type NoEvidenceFoundError struct {
	Question string
	Category qamodel.Category
}

func (e *NoEvidenceFoundError) Error() string {
	return fmt.Sprintf("no evidence found for %s question %q", e.Category, e.Question)
}

// Fallback is the graceful message shown in place of an answer.
func (e *NoEvidenceFoundError) Fallback() string {
	return fmt.Sprintf("The discussion didn't cover anything matching %q. Try asking about the themes participants actually raised, or about a specific participant by name.", e.Question)
}

// Service is stateless; all session data comes in per call.
type Service struct {
	rules            []category.Rule
	categoryKeywords map[string][]string
	weights          quote.Weights
}

// NewService builds the QA service from the configured keyword tables.
func NewService(tables config.Tables) *Service {
	rules := category.DefaultRules()
	return &Service{
		rules:            rules,
		categoryKeywords: tables.CategoryKeywords,
		weights:          quote.DefaultWeights(),
	}
}

// Ask classifies the question, retrieves evidence and composes the answer.
// prior is the session's QA log so far; follow-up phrasings with no signal of
// their own inherit the previous exchange's category.
func (s *Service) Ask(question string, personas []personamodel.Persona, transcript []discussion.TranscriptEntry, sum *summarymodel.Summary, prior []qamodel.Exchange) (qamodel.Exchange, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return qamodel.Exchange{}, fmt.Errorf("question is empty")
	}

	names := make([]string, len(personas))
	for i, p := range personas {
		names[i] = p.Name
	}

	cat := category.Classify(question, names, s.rules)
	if cat == qamodel.ThemeAnalysis && len(prior) > 0 && isFollowUp(question) && !s.hasThemeSignal(question) {
		cat = prior[len(prior)-1].Category
	}

	var (
		answer   string
		evidence []qamodel.Evidence
		err      error
	)
	if cat == qamodel.ParticipantSpecific {
		answer, evidence, err = s.participantAnswer(question, names, personas, transcript)
	} else {
		answer, evidence, err = s.thematicAnswer(question, cat, transcript, sum)
	}
	if err != nil {
		return qamodel.Exchange{}, err
	}

	return qamodel.Exchange{
		ID:        uuid.NewString(),
		Question:  question,
		Category:  cat,
		Answer:    answer,
		Evidence:  evidence,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// participantAnswer gathers everything the named persona said, plus their
// profile. The evidence is only that persona's entries.
func (s *Service) participantAnswer(question string, names []string, personas []personamodel.Persona, transcript []discussion.TranscriptEntry) (string, []qamodel.Evidence, error) {
	name, ok := category.NamedPersona(question, names)
	if !ok {
		return "", nil, &NoEvidenceFoundError{Question: question, Category: qamodel.ParticipantSpecific}
	}

	var profile *personamodel.Persona
	for i := range personas {
		if personas[i].Name == name {
			profile = &personas[i]
			break
		}
	}

	var evidence []qamodel.Evidence
	for _, e := range transcript {
		if e.Speaker != name || e.Type == discussion.EntryModeratorPrompt {
			continue
		}
		evidence = append(evidence, qamodel.Evidence{
			Sequence: e.Sequence,
			Speaker:  e.Speaker,
			Excerpt:  e.Text,
		})
	}
	if len(evidence) == 0 {
		return "", nil, &NoEvidenceFoundError{Question: question, Category: qamodel.ParticipantSpecific}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "What %s said\n\n", name)
	if profile != nil {
		fmt.Fprintf(&b, "Profile: %d, %s from %s (%s, budget %s).\n\n",
			profile.Age, profile.Occupation, profile.Location, profile.Personality.Label(), profile.MonthlyBudget)
	}
	for _, ev := range evidence {
		fmt.Fprintf(&b, "- \"%s\"\n", ev.Excerpt)
	}
	return b.String(), evidence, nil
}

// thematicAnswer ranks keyword-matching entries by impact score, capped at
// maxEvidence. When the transcript has nothing, a matching summary section
// still counts as evidence.
func (s *Service) thematicAnswer(question string, cat qamodel.Category, transcript []discussion.TranscriptEntry, sum *summarymodel.Summary) (string, []qamodel.Evidence, error) {
	keywords := s.categoryKeywords[string(cat)]

	var candidates []discussion.TranscriptEntry
	for _, e := range transcript {
		if e.Type == discussion.EntryModeratorPrompt {
			continue
		}
		if matchesAny(e.Text, keywords) {
			candidates = append(candidates, e)
		}
	}

	top := quote.Top(candidates, nil, s.weights, maxEvidence, true)
	if len(top) == 0 {
		if section, ok := matchingSection(sum, keywords); ok {
			return sectionAnswer(cat, section), nil, nil
		}
		return "", nil, &NoEvidenceFoundError{Question: question, Category: cat}
	}

	evidence := make([]qamodel.Evidence, 0, len(top))
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", categoryHeading(cat))
	for _, sc := range top {
		evidence = append(evidence, qamodel.Evidence{
			Sequence: sc.Entry.Sequence,
			Speaker:  sc.Entry.Speaker,
			Excerpt:  sc.Entry.Text,
		})
		fmt.Fprintf(&b, "- %s: \"%s\"\n", sc.Entry.Speaker, sc.Entry.Text)
	}
	return b.String(), evidence, nil
}

func categoryHeading(cat qamodel.Category) string {
	switch cat {
	case qamodel.ThemeAnalysis:
		return "Main themes from the discussion"
	case qamodel.BehavioralInsights:
		return "Purchase behavior and decision drivers"
	case qamodel.DemographicAnalysis:
		return "Views by demographic and personality"
	case qamodel.SentimentAnalysis:
		return "How participants felt"
	case qamodel.ComparativeAnalysis:
		return "Comparisons participants drew"
	case qamodel.ActionableInsights:
		return "What participants want changed"
	}
	return "From the discussion"
}

func sectionAnswer(cat qamodel.Category, section summarymodel.Section) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\nFrom the summary section %q:\n", categoryHeading(cat), section.Title)
	switch {
	case section.Text != "":
		b.WriteString(section.Text + "\n")
	case len(section.Items) > 0:
		for _, item := range section.Items {
			fmt.Fprintf(&b, "- %s\n", item)
		}
	case len(section.Quotes) > 0:
		for _, q := range section.Quotes {
			fmt.Fprintf(&b, "- %s: \"%s\"\n", q.Speaker, q.Text)
		}
	}
	return b.String()
}

func matchingSection(sum *summarymodel.Summary, keywords []string) (summarymodel.Section, bool) {
	if sum == nil {
		return summarymodel.Section{}, false
	}
	for _, section := range sum.Sections {
		text := strings.ToLower(section.Title + " " + section.Text + " " + strings.Join(section.Items, " "))
		for _, kw := range keywords {
			if strings.Contains(text, kw) {
				return section, true
			}
		}
	}
	return summarymodel.Section{}, false
}

func matchesAny(text string, keywords []string) bool {
	lower := strings.ToLower(text)
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

var followUpPhrases = []string{"what about", "how about"}

var followUpWords = []string{"and", "also", "they", "them", "that", "it"}

// isFollowUp flags short questions that lean on earlier context. Single-word
// cues match on word boundaries so "it" does not fire inside "quality".
func isFollowUp(question string) bool {
	lower := strings.ToLower(question)
	if len(lower) >= 40 {
		return false
	}
	for _, phrase := range followUpPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	for _, w := range followUpWords {
		if category.ContainsWord(lower, w) {
			return true
		}
	}
	return false
}

// hasThemeSignal distinguishes a genuine theme question from the classifier's
// default bucket, so only signal-free follow-ups inherit a prior category.
func (s *Service) hasThemeSignal(question string) bool {
	for _, rule := range s.rules {
		if rule.Category == qamodel.ThemeAnalysis && matchesAny(question, rule.Keywords) {
			return true
		}
	}
	return false
}
