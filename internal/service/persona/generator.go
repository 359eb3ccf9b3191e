// Package persona generates demographically diverse synthetic participants
// from a context description. Generation is a pure function of its inputs and
// a seedable pseudo-random source, so runs are reproducible.
package persona

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/nikhilza/focuspanel/internal/model/persona"
)

// ErrInsufficientContext is returned only when the context description is
// empty. Any non-empty context succeeds using heuristic defaults.
var ErrInsufficientContext = errors.New("context description is empty")

var firstNames = []string{
	"Aditi", "Rahul", "Priya", "Arjun", "Sneha", "Vikram", "Meera", "Rohan",
	"Zoya", "Karan", "Neha", "Aarav", "Kavya", "Ishaan", "Riya", "Aryan",
	"Ananya", "Sidharth", "Pooja", "Harsh", "Tara", "Dev", "Naina", "Yash",
}

var occupations = map[string][]string{
	"student":     {"College Student", "University Student", "Graduate Student", "MBA Student"},
	"tech":        {"Software Developer", "Data Analyst", "UX Designer", "Product Manager"},
	"creative":    {"Graphic Designer", "Content Creator", "Marketing Executive", "Social Media Manager"},
	"traditional": {"Teacher", "Nurse", "Accountant", "HR Executive", "Sales Executive"},
	"service":     {"Retail Associate", "Customer Service Rep", "Restaurant Manager", "Freelancer"},
}

var occupationCategories = []string{"student", "tech", "creative", "traditional", "service"}

var locations = map[string][]string{
	"metro": {"Mumbai", "Delhi", "Bangalore", "Chennai", "Kolkata", "Hyderabad"},
	"tier2": {"Pune", "Jaipur", "Ahmedabad", "Kochi", "Indore", "Bhopal"},
	"tier3": {"Nagpur", "Vadodara", "Coimbatore", "Madurai", "Chandigarh"},
}

var locationTiers = []string{"metro", "tier2", "tier3"}

type incomeBracket struct {
	rangeLabel string
	budget     string
}

var incomeBrackets = []incomeBracket{
	{"₹15,000-25,000", "₹500-1,500"},
	{"₹25,000-40,000", "₹1,500-3,000"},
	{"₹40,000-70,000", "₹3,000-6,000"},
	{"₹70,000-1,50,000", "₹6,000-15,000"},
	{"₹1,50,000+", "₹15,000+"},
}

var traitsByType = map[persona.PersonalityType][]string{
	persona.Enthusiastic:  {"energetic", "talkative", "optimistic", "social", "expressive"},
	persona.Analytical:    {"logical", "questioning", "detail-oriented", "practical", "skeptical"},
	persona.Trendy:        {"fashion-forward", "social-media-savvy", "influencer-following", "brand-conscious"},
	persona.Cautious:      {"risk-averse", "traditional", "careful", "budget-conscious", "research-oriented"},
	persona.Expert:        {"knowledgeable", "experienced", "confident", "industry-insider", "influential"},
	persona.BudgetFocused: {"price-sensitive", "deal-hunter", "value-conscious", "comparison-shopper"},
}

// typeHints are the context keywords that make a personality type a distinct
// fit when fewer than six personas are requested.
var typeHints = map[persona.PersonalityType][]string{
	persona.Enthusiastic:  {"enthusiast", "passionate", "fans", "community", "excited"},
	persona.Analytical:    {"analytical", "research", "compare", "data", "practical"},
	persona.Trendy:        {"trend", "influencer", "social media", "fashion", "gen z"},
	persona.Cautious:      {"cautious", "traditional", "risk", "safety", "first-time"},
	persona.Expert:        {"expert", "professional", "experienced", "industry", "insider"},
	persona.BudgetFocused: {"budget", "price", "affordable", "value", "discount", "deal"},
}

var ageRanges = map[string][2]int{
	"gen_z":      {18, 25},
	"millennial": {26, 35},
	"gen_x":      {36, 45},
	"seasoned":   {46, 65},
}

// Generator builds persona sets. Zero value is not usable; construct with New.
type Generator struct {
	rng *rand.Rand
	now func() time.Time
}

// New returns a Generator seeded for reproducible output.
func New(seed int64) *Generator {
	return &Generator{
		rng: rand.New(rand.NewSource(seed)),
		now: time.Now,
	}
}

// Generate returns exactly count personas for the given context and topic.
// Personality types cover the whole six-type set before any type repeats, and
// no two personas are identical across all fields.
func (g *Generator) Generate(contextPrompt, topic string, count int) ([]persona.Persona, error) {
	if strings.TrimSpace(contextPrompt) == "" {
		return nil, ErrInsufficientContext
	}
	if count <= 0 {
		count = 6
	}

	analysis := analyzeContext(contextPrompt, topic)
	types := g.pickTypes(contextPrompt, count)

	personas := make([]persona.Persona, 0, count)
	usedNames := make(map[string]bool)

	for i := 0; i < count; i++ {
		p := g.buildPersona(types[i], analysis, usedNames, i)
		// Field-for-field duplicates are re-rolled; the name pool alone makes
		// collisions vanishingly rare, but the invariant is hard.
		for attempts := 0; attempts < 10 && containsEqual(personas, p); attempts++ {
			p = g.buildPersona(types[i], analysis, usedNames, i)
		}
		usedNames[p.Name] = true
		personas = append(personas, p)
	}

	return personas, nil
}

// pickTypes decides the personality type sequence. Six requested covers all
// six exactly once; fewer picks the best context matches; more cycles the set.
func (g *Generator) pickTypes(contextPrompt string, count int) []persona.PersonalityType {
	all := persona.AllTypes()

	if count < len(all) {
		ranked := rankTypesByHints(contextPrompt)
		return ranked[:count]
	}

	// Shuffle the first full cycle for variety; repeats keep canonical order
	// so budget/age variation carries the distinctness.
	g.rng.Shuffle(len(all), func(i, j int) { all[i], all[j] = all[j], all[i] })
	types := make([]persona.PersonalityType, count)
	for i := range types {
		types[i] = all[i%len(all)]
	}
	return types
}

// rankTypesByHints orders types by keyword hits in the context, canonical
// order breaking ties so the choice is deterministic.
func rankTypesByHints(contextPrompt string) []persona.PersonalityType {
	lower := strings.ToLower(contextPrompt)
	all := persona.AllTypes()

	scores := make(map[persona.PersonalityType]int, len(all))
	for _, t := range all {
		for _, hint := range typeHints[t] {
			if strings.Contains(lower, hint) {
				scores[t]++
			}
		}
	}

	ranked := append([]persona.PersonalityType(nil), all...)
	// Insertion sort keeps the canonical order stable on equal scores.
	for i := 1; i < len(ranked); i++ {
		for j := i; j > 0 && scores[ranked[j]] > scores[ranked[j-1]]; j-- {
			ranked[j], ranked[j-1] = ranked[j-1], ranked[j]
		}
	}
	return ranked
}

type contextAnalysis struct {
	demographic    string
	topicRelevance []string
	focusAreas     []string
	topic          string
}

func analyzeContext(contextPrompt, topic string) contextAnalysis {
	ctxLower := strings.ToLower(contextPrompt)
	topicLower := strings.ToLower(topic)

	analysis := contextAnalysis{demographic: "gen_z", topic: topic}

	switch {
	case containsAny(ctxLower, "millennial", "25-35", "young professional"):
		analysis.demographic = "millennial"
	case containsAny(ctxLower, "gen x", "35-45", "experienced", "middle-aged"):
		analysis.demographic = "gen_x"
	case containsAny(ctxLower, "senior", "45+", "older"):
		analysis.demographic = "seasoned"
	case containsAny(ctxLower, "gen z", "generation z", "young adult", "18-25"):
		analysis.demographic = "gen_z"
	}

	switch {
	case containsAny(topicLower, "beauty", "cosmetic", "skincare", "makeup"):
		analysis.topicRelevance = []string{"beauty-conscious", "brand-aware"}
	case containsAny(topicLower, "tech", "technology", "app", "software"):
		analysis.topicRelevance = []string{"tech-savvy", "early-adopter"}
	case containsAny(topicLower, "food", "restaurant", "dining"):
		analysis.topicRelevance = []string{"foodie", "taste-conscious"}
	}

	if containsAny(ctxLower, "budget", "price") {
		analysis.focusAreas = append(analysis.focusAreas, "budget_sensitivity")
	}
	if containsAny(ctxLower, "premium", "luxury") {
		analysis.focusAreas = append(analysis.focusAreas, "premium_segment")
	}
	if containsAny(ctxLower, "online", "digital") {
		analysis.focusAreas = append(analysis.focusAreas, "digital_behavior")
	}

	return analysis
}

func (g *Generator) buildPersona(t persona.PersonalityType, analysis contextAnalysis, usedNames map[string]bool, index int) persona.Persona {
	name := g.pickName(usedNames, index)

	ageRange := ageRanges[analysis.demographic]
	age := ageRange[0] + g.rng.Intn(ageRange[1]-ageRange[0]+1)

	category := occupationCategories[g.rng.Intn(len(occupationCategories))]
	occupation := occupations[category][g.rng.Intn(len(occupations[category]))]

	tier := locationTiers[g.rng.Intn(len(locationTiers))]
	location := locations[tier][g.rng.Intn(len(locations[tier]))]

	bracket := incomeBrackets[g.rng.Intn(len(incomeBrackets))]

	p := persona.Persona{
		Name:          name,
		Age:           age,
		Location:      location,
		Occupation:    occupation,
		IncomeRange:   bracket.rangeLabel,
		MonthlyBudget: bracket.budget,
		Personality:   t,
		Traits:        append([]string(nil), traitsByType[t]...),
		CreatedAt:     g.now().UTC(),
	}
	p.Background = buildBackground(p, analysis)
	return p
}

func (g *Generator) pickName(usedNames map[string]bool, index int) string {
	available := make([]string, 0, len(firstNames))
	for _, n := range firstNames {
		if !usedNames[n] {
			available = append(available, n)
		}
	}
	if len(available) == 0 {
		return fmt.Sprintf("Participant %d", index+1)
	}
	return available[g.rng.Intn(len(available))]
}

var personalityBackgrounds = map[persona.PersonalityType]string{
	persona.Enthusiastic:  "You are highly enthusiastic and love sharing your experiences, often jumping in with excitement and very specific details about your purchases.",
	persona.Analytical:    "You approach everything logically, question prices and value, and pause conversations to understand the reasoning behind decisions.",
	persona.Trendy:        "You are highly trend-conscious, follow influencers closely, speak fast, and constantly reference what is currently popular.",
	persona.Cautious:      "You are risk-averse and prefer traditional, tested options, often sharing detailed cautionary tales about bad experiences.",
	persona.Expert:        "You have insider knowledge and extensive experience in this area, speak confidently, and casually drop industry insights.",
	persona.BudgetFocused: "You are extremely budget-conscious, track every expense, and always calculate cost-per-use before buying anything.",
}

func buildBackground(p persona.Persona, analysis contextAnalysis) string {
	parts := []string{
		fmt.Sprintf("You are %s, a %d-year-old %s from %s.", p.Name, p.Age, p.Occupation, p.Location),
		fmt.Sprintf("Your monthly income is in the %s range, and you typically budget %s for the discussion topic.", p.IncomeRange, p.MonthlyBudget),
		personalityBackgrounds[p.Personality],
	}

	if len(analysis.topicRelevance) > 0 {
		parts = append(parts, fmt.Sprintf("You consider yourself %s when it comes to %s.",
			strings.Join(analysis.topicRelevance, " and "), analysis.topic))
	}

	switch {
	case p.Age <= 23:
		parts = append(parts, "You live in a PG or shared accommodation.")
	case p.Age <= 28:
		parts = append(parts, "You're establishing your career and managing student loans.")
	default:
		parts = append(parts, "You have more disposable income and established preferences.")
	}

	return strings.Join(parts, " ")
}

func containsEqual(personas []persona.Persona, p persona.Persona) bool {
	for _, existing := range personas {
		if existing.Equal(p) {
			return true
		}
	}
	return false
}

func containsAny(text string, terms ...string) bool {
	for _, term := range terms {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}
