// Package summary turns a completed transcript into a structured summary,
// either the standard six-section form or a user-declared custom schema.
// Synthesis is deterministic: the same transcript and schema always produce
// the same summary.
package summary

import (
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/nikhilza/focuspanel/internal/analysis/quote"
	"github.com/nikhilza/focuspanel/internal/model/discussion"
	"github.com/nikhilza/focuspanel/internal/model/persona"
	"github.com/nikhilza/focuspanel/internal/model/summary"
)

const quotesPerSection = 3

// Synthesizer fills summary schemas from transcripts.
type Synthesizer struct {
	weights quote.Weights
}

// NewSynthesizer returns a synthesizer with the default scoring weights.
func NewSynthesizer() *Synthesizer {
	return &Synthesizer{weights: quote.DefaultWeights()}
}

// Synthesize fills every section of the schema from the discussion data.
// Sections come back in declared order, one per declared section, and none is
// ever empty: sections with no obviously matching data get a generic
// thematic paragraph.
func (s *Synthesizer) Synthesize(topic string, personas []persona.Persona, transcript []discussion.TranscriptEntry, schema summary.Schema) (summary.Summary, error) {
	if len(schema.Sections) == 0 {
		schema = summary.Standard()
	}

	themes := detectThemes(transcript)
	alreadyQuoted := make(map[string]bool)

	out := summary.Summary{
		Custom:      schema.Custom,
		Topic:       topic,
		GeneratedAt: time.Now().UTC(),
	}

	for _, spec := range schema.Sections {
		section := s.fillSection(spec, topic, personas, transcript, themes, alreadyQuoted)
		if section.Empty() {
			section.Shape = summary.ShapeText
			section.Text = genericParagraph(topic, themes, transcript)
		}
		out.Sections = append(out.Sections, section)
	}

	return out, nil
}

func (s *Synthesizer) fillSection(spec summary.SectionSpec, topic string, personas []persona.Persona, transcript []discussion.TranscriptEntry, themes []string, alreadyQuoted map[string]bool) summary.Section {
	section := summary.Section{Key: spec.Key, Title: spec.Title, Shape: spec.Shape}
	hint := strings.ToLower(spec.Title + " " + spec.Description)

	switch spec.Shape {
	case summary.ShapeQuoteList:
		section.Quotes = s.selectQuotes(transcript, alreadyQuoted)

	case summary.ShapeObject:
		section.Fields = participantProfile(personas)

	case summary.ShapeList:
		switch {
		case containsAny(hint, "recommend", "opportunit", "suggestion"):
			section.Items = recommendations(topic, themes)
		case containsAny(hint, "next", "future", "follow", "action"):
			section.Items = nextSteps(topic, themes)
		default:
			section.Items = s.keyInsights(transcript, themes)
		}

	case summary.ShapeText:
		switch {
		case containsAny(hint, "objective", "goal", "purpose"):
			section.Text = objectiveText(topic, len(personas))
		default:
			section.Text = genericParagraph(topic, themes, transcript)
		}
	}

	return section
}

// selectQuotes picks the top impact-scored excerpts, spreading the diversity
// bonus across sections so one loud participant doesn't dominate a custom
// schema with several quote sections.
func (s *Synthesizer) selectQuotes(transcript []discussion.TranscriptEntry, alreadyQuoted map[string]bool) []summary.Quote {
	top := quote.Top(transcript, alreadyQuoted, s.weights, quotesPerSection, false)

	quotes := make([]summary.Quote, 0, len(top))
	for _, sc := range top {
		alreadyQuoted[sc.Entry.Speaker] = true
		quotes = append(quotes, summary.Quote{
			Speaker:  sc.Entry.Speaker,
			Text:     sc.Entry.Text,
			Sequence: sc.Entry.Sequence,
			Score:    sc.Score,
		})
	}
	return quotes
}

// keyInsights condenses the highest-impact statements to bullet form.
func (s *Synthesizer) keyInsights(transcript []discussion.TranscriptEntry, themes []string) []string {
	top := quote.Top(transcript, nil, s.weights, 5, true)

	insights := make([]string, 0, len(top)+1)
	for _, sc := range top {
		insights = append(insights, fmt.Sprintf("%s: %s", sc.Entry.Speaker, condense(sc.Entry.Text)))
	}
	if len(themes) > 0 {
		insights = append(insights, "Recurring themes across participants: "+strings.Join(themes, ", ")+".")
	}
	if len(insights) == 0 {
		insights = append(insights, "Participants expressed varied, moderate views with no single dominant position.")
	}
	return insights
}

func objectiveText(topic string, participantCount int) string {
	return fmt.Sprintf(
		"Understand attitudes, motivations and barriers around %s through a moderated discussion with %d participants spanning diverse demographics and decision-making styles.",
		topic, participantCount)
}

// participantProfile summarizes the panel's demographics and personality mix.
func participantProfile(personas []persona.Persona) map[string]any {
	if len(personas) == 0 {
		return map[string]any{"count": 0}
	}

	minAge, maxAge := personas[0].Age, personas[0].Age
	typeCounts := make(map[string]int)
	locations := make([]string, 0, len(personas))
	seenLoc := make(map[string]bool)
	members := make([]map[string]any, 0, len(personas))

	for _, p := range personas {
		if p.Age < minAge {
			minAge = p.Age
		}
		if p.Age > maxAge {
			maxAge = p.Age
		}
		typeCounts[p.Personality.Label()]++
		if !seenLoc[p.Location] {
			seenLoc[p.Location] = true
			locations = append(locations, p.Location)
		}
		members = append(members, map[string]any{
			"name":        p.Name,
			"age":         p.Age,
			"location":    p.Location,
			"occupation":  p.Occupation,
			"personality": p.Personality.Label(),
		})
	}
	sort.Strings(locations)

	return map[string]any{
		"count":          len(personas),
		"ageRange":       fmt.Sprintf("%d-%d", minAge, maxAge),
		"locations":      locations,
		"personalityMix": typeCounts,
		"members":        members,
	}
}

// Theme keyword table for templated recommendations. Order fixes the output
// ordering of detected themes.
var themeKeywords = []struct {
	theme    string
	keywords []string
}{
	{"pricing and value", []string{"price", "cost", "budget", "₹", "discount", "deal", "value", "expensive", "cheap"}},
	{"trust and reliability", []string{"trust", "risk", "return", "refund", "reliable", "burned", "regret", "guarantee"}},
	{"social influence", []string{"influencer", "feed", "reel", "trend", "viral", "creator", "posted", "social"}},
	{"quality and fundamentals", []string{"quality", "sourcing", "spec", "fundamental", "durable", "material"}},
	{"convenience", []string{"easy", "easier", "convenient", "app", "delivery", "online"}},
}

func detectThemes(transcript []discussion.TranscriptEntry) []string {
	counts := make(map[string]int)
	for _, e := range transcript {
		if e.Type == discussion.EntryModeratorPrompt {
			continue
		}
		lower := strings.ToLower(e.Text)
		for _, tk := range themeKeywords {
			for _, kw := range tk.keywords {
				if strings.Contains(lower, kw) {
					counts[tk.theme]++
					break
				}
			}
		}
	}

	themes := make([]string, 0, len(themeKeywords))
	for _, tk := range themeKeywords {
		if counts[tk.theme] >= 2 {
			themes = append(themes, tk.theme)
		}
	}
	return themes
}

var recommendationTemplates = map[string]string{
	"pricing and value":        "Lead with transparent pricing for %s; participants distrust inflated-then-discounted pricing and respond to honest value framing.",
	"trust and reliability":    "Lower the perceived risk of trying %s: visible return policies, guarantees and consistent reviews convert cautious participants.",
	"social influence":         "Invest in authentic creator partnerships around %s; several participants discover and validate options through their social feeds.",
	"quality and fundamentals": "Communicate the unglamorous quality details of %s; informed participants reward substance over positioning.",
	"convenience":              "Reduce friction in the %s experience; ease of access repeatedly outweighed brand considerations.",
}

func recommendations(topic string, themes []string) []string {
	recs := make([]string, 0, len(themes)+1)
	for _, theme := range themes {
		if tpl, ok := recommendationTemplates[theme]; ok {
			recs = append(recs, fmt.Sprintf(tpl, topic))
		}
	}
	if len(recs) == 0 {
		recs = append(recs, fmt.Sprintf("Probe further on %s with a larger panel; this session surfaced individual preferences but no dominant lever.", topic))
	}
	return recs
}

var nextStepTemplates = map[string]string{
	"pricing and value":        "Run a price-sensitivity study to quantify the value thresholds voiced in this session.",
	"trust and reliability":    "Audit the post-purchase experience (returns, support) that cautious participants flagged as the trust barrier.",
	"social influence":         "Map which creators the trend-driven segment actually follows before committing collaboration budget.",
	"quality and fundamentals": "Prepare spec-level comparison material for the informed-buyer segment.",
	"convenience":              "Prototype the lowest-friction purchase path and validate it with a follow-up panel.",
}

func nextSteps(topic string, themes []string) []string {
	steps := make([]string, 0, len(themes)+1)
	for _, theme := range themes {
		if tpl, ok := nextStepTemplates[theme]; ok {
			steps = append(steps, tpl)
		}
	}
	steps = append(steps, fmt.Sprintf("Validate these findings on %s quantitatively with a broader survey.", topic))
	return steps
}

func genericParagraph(topic string, themes []string, transcript []discussion.TranscriptEntry) string {
	spoken := 0
	for _, e := range transcript {
		if e.Type != discussion.EntryModeratorPrompt {
			spoken++
		}
	}
	if len(themes) > 0 {
		return fmt.Sprintf(
			"Across %d contributions on %s, the discussion kept returning to %s. Positions varied by decision-making style, but these threads ran through every phase.",
			spoken, topic, strings.Join(themes, ", "))
	}
	return fmt.Sprintf(
		"Across %d contributions on %s, participants expressed individually distinct positions without converging on a shared theme; views tracked personality and budget more than any single product attribute.",
		spoken, topic)
}

// condense trims an utterance to bullet length at a sentence boundary,
// falling back to a rune boundary so currency symbols are never split.
func condense(text string) string {
	const maxLen = 140
	if len(text) <= maxLen {
		return text
	}
	if idx := strings.Index(text, ". "); idx > 0 && idx < maxLen {
		return text[:idx+1]
	}
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + "…"
}

func containsAny(text string, terms ...string) bool {
	for _, term := range terms {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}
