package qa

import "time"

// Category is the question class assigned by the categorizer.
type Category string

const (
	ParticipantSpecific Category = "participant_specific"
	ThemeAnalysis       Category = "theme_analysis"
	BehavioralInsights  Category = "behavioral_insights"
	DemographicAnalysis Category = "demographic_analysis"
	SentimentAnalysis   Category = "sentiment_analysis"
	ComparativeAnalysis Category = "comparative_analysis"
	ActionableInsights  Category = "actionable_insights"
)

// Evidence is a reference to a transcript entry backing an answer. Answers
// cite only evidence; they never fabricate content.
type Evidence struct {
	Sequence int    `json:"sequence"`
	Speaker  string `json:"speaker"`
	Excerpt  string `json:"excerpt"`
}

// Exchange is one question/answer pair in a session's append-only QA log.
type Exchange struct {
	ID        string     `json:"id"`
	Question  string     `json:"question"`
	Category  Category   `json:"category"`
	Answer    string     `json:"answer"`
	Evidence  []Evidence `json:"evidence"`
	Order     int        `json:"order"`
	CreatedAt time.Time  `json:"createdAt"`
}
