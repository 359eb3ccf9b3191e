package discussion

import "time"

// Phase is one stage of a discussion run. The five phases always execute in
// the order returned by Phases, exactly once each.
type Phase string

const (
	PhaseOpening     Phase = "opening"
	PhaseExploration Phase = "exploration"
	PhaseDeepDive    Phase = "deep_dive"
	PhaseComparison  Phase = "comparison"
	PhaseWrapUp      Phase = "wrap_up"
)

// Phases returns the fixed phase sequence.
func Phases() []Phase {
	return []Phase{PhaseOpening, PhaseExploration, PhaseDeepDive, PhaseComparison, PhaseWrapUp}
}

// Label returns a human-readable phase name for status polling.
func (p Phase) Label() string {
	switch p {
	case PhaseOpening:
		return "Opening"
	case PhaseExploration:
		return "Exploration"
	case PhaseDeepDive:
		return "Deep Dive"
	case PhaseComparison:
		return "Comparison"
	case PhaseWrapUp:
		return "Wrap Up"
	}
	return string(p)
}

// EntryType distinguishes who produced a transcript entry and why.
type EntryType string

const (
	EntryStatement       EntryType = "statement"
	EntryInteraction     EntryType = "interaction"
	EntryModeratorPrompt EntryType = "moderator_prompt"
)

// ModeratorName is the reserved speaker name for moderator prompts.
// Interactions never target it.
const ModeratorName = "Moderator"

// TranscriptEntry is one utterance in a discussion. Entries are append-only:
// once written, the sequence number, speaker and text never change.
type TranscriptEntry struct {
	Phase     Phase     `json:"phase"`
	Speaker   string    `json:"speaker"`
	Type      EntryType `json:"type"`
	Text      string    `json:"text"`
	Sequence  int       `json:"sequence"`
	Timestamp time.Time `json:"timestamp"`
}
