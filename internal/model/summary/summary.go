package summary

import "time"

// SectionShape declares what kind of content a summary section holds.
type SectionShape string

const (
	ShapeText      SectionShape = "text"
	ShapeList      SectionShape = "list"
	ShapeQuoteList SectionShape = "quote_list"
	ShapeObject    SectionShape = "nested_object"
)

// SectionSpec is one declared section of a summary schema.
type SectionSpec struct {
	Key         string       `json:"key"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Shape       SectionShape `json:"shape"`
}

// Schema is an ordered list of sections a summary must produce. The standard
// schema has the fixed six sections; custom schemas are parsed from a
// user-supplied outline.
type Schema struct {
	Custom   bool          `json:"custom"`
	Raw      string        `json:"raw,omitempty"`
	Sections []SectionSpec `json:"sections"`
}

// Standard returns the fixed six-section schema.
func Standard() Schema {
	return Schema{
		Sections: []SectionSpec{
			{Key: "objective", Title: "Objective", Shape: ShapeText},
			{Key: "participants", Title: "Participants", Shape: ShapeObject},
			{Key: "key_insights", Title: "Key Insights", Shape: ShapeList},
			{Key: "supporting_quotes", Title: "Supporting Quotes", Shape: ShapeQuoteList},
			{Key: "opportunities_recommendations", Title: "Opportunities & Recommendations", Shape: ShapeList},
			{Key: "next_steps", Title: "Next Steps", Shape: ShapeList},
		},
	}
}

// Quote is a verbatim transcript excerpt selected by impact score.
type Quote struct {
	Speaker  string `json:"speaker"`
	Text     string `json:"text"`
	Sequence int    `json:"sequence"`
	Score    int    `json:"score"`
}

// Section is one filled summary section. Exactly one of Text, Items, Quotes
// or Fields carries content depending on Shape; none may be empty.
type Section struct {
	Key    string         `json:"key"`
	Title  string         `json:"title"`
	Shape  SectionShape   `json:"shape"`
	Text   string         `json:"text,omitempty"`
	Items  []string       `json:"items,omitempty"`
	Quotes []Quote        `json:"quotes,omitempty"`
	Fields map[string]any `json:"fields,omitempty"`
}

// Empty reports whether the section carries no content at all.
func (s Section) Empty() bool {
	return s.Text == "" && len(s.Items) == 0 && len(s.Quotes) == 0 && len(s.Fields) == 0
}

// Summary is the synthesized result of a completed discussion. Section count
// and order always match the accepted schema exactly.
type Summary struct {
	Custom      bool      `json:"custom"`
	Topic       string    `json:"topic"`
	Sections    []Section `json:"sections"`
	GeneratedAt time.Time `json:"generatedAt"`
}

// SectionByKey returns the section with the given key, if present.
func (s Summary) SectionByKey(key string) (Section, bool) {
	for _, sec := range s.Sections {
		if sec.Key == key {
			return sec, true
		}
	}
	return Section{}, false
}
