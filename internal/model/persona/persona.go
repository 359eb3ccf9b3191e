package persona

import "time"

// PersonalityType classifies how a participant behaves in a group discussion.
type PersonalityType string

const (
	Enthusiastic  PersonalityType = "enthusiastic"
	Analytical    PersonalityType = "analytical"
	Trendy        PersonalityType = "trendy"
	Cautious      PersonalityType = "cautious"
	Expert        PersonalityType = "expert"
	BudgetFocused PersonalityType = "budget_focused"
)

// AllTypes returns the personality types in their canonical order.
func AllTypes() []PersonalityType {
	return []PersonalityType{Enthusiastic, Analytical, Trendy, Cautious, Expert, BudgetFocused}
}

// Valid reports whether t is one of the six known personality types.
func (t PersonalityType) Valid() bool {
	switch t {
	case Enthusiastic, Analytical, Trendy, Cautious, Expert, BudgetFocused:
		return true
	}
	return false
}

// Label returns a display form like "Budget Focused".
func (t PersonalityType) Label() string {
	switch t {
	case Enthusiastic:
		return "Enthusiastic"
	case Analytical:
		return "Analytical"
	case Trendy:
		return "Trendy"
	case Cautious:
		return "Cautious"
	case Expert:
		return "Expert"
	case BudgetFocused:
		return "Budget Focused"
	}
	return string(t)
}

// Persona is one synthetic participant in a simulated panel.
type Persona struct {
	Name          string          `json:"name"`
	Age           int             `json:"age"`
	Location      string          `json:"location"`
	Occupation    string          `json:"occupation"`
	IncomeRange   string          `json:"incomeRange,omitempty"`
	MonthlyBudget string          `json:"monthlyBudget"`
	Personality   PersonalityType `json:"personalityType"`
	Traits        []string        `json:"traits,omitempty"`
	Background    string          `json:"background"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// Equal reports whether two personas are identical across all demographic
// fields. The generator uses it to enforce pairwise distinctness.
func (p Persona) Equal(o Persona) bool {
	return p.Name == o.Name &&
		p.Age == o.Age &&
		p.Location == o.Location &&
		p.Occupation == o.Occupation &&
		p.MonthlyBudget == o.MonthlyBudget &&
		p.Personality == o.Personality
}
