// Package quote scores transcript entries so summaries and QA retrieval can
// pick representative excerpts. Scoring is pure and deterministic: the same
// transcript always yields the same ranked order.
package quote

import (
	"sort"
	"strings"

	"github.com/nikhilza/focuspanel/internal/model/discussion"
)

// Weights tunes the impact score components. Zero values fall back to the
// defaults, so a partially populated table from configuration is fine.
type Weights struct {
	EmotionalHit  int
	MoneyHit      int
	PersonalHit   int
	LengthInBand  int
	LengthOverrun int
	Diversity     int
}

// DefaultWeights mirrors the heuristic tuning the scorer was built with.
func DefaultWeights() Weights {
	return Weights{
		EmotionalHit:  2,
		MoneyHit:      3,
		PersonalHit:   2,
		LengthInBand:  2,
		LengthOverrun: -1,
		Diversity:     2,
	}
}

var emotionalKeywords = []string{
	"love", "hate", "amazing", "terrible", "perfect", "awful", "excited",
	"disappointed", "best", "worst", "never", "always", "absolutely", "can't",
	"won't", "must",
}

var moneyKeywords = []string{
	"₹", "rupees", "price", "cost", "budget", "discount", "cheap", "expensive",
	"deal", "value",
}

var personalKeywords = []string{
	"my experience", "i found", "i tried", "i bought", "i use", "i noticed",
	"i prefer", "i avoid",
}

// Length band in characters. Neither a one-word reply nor a monologue makes a
// good quote.
const (
	bandMin = 50
	bandMax = 200
)

// Scored pairs a transcript entry with its computed impact score.
type Scored struct {
	Entry discussion.TranscriptEntry
	Score int
}

// Score computes the impact score of a single text, before any diversity
// bonus. Exposed so tests can pin the components in isolation.
func Score(text string, w Weights) int {
	lower := strings.ToLower(text)
	score := 0

	for _, kw := range emotionalKeywords {
		if strings.Contains(lower, kw) {
			score += w.EmotionalHit
		}
	}
	for _, kw := range moneyKeywords {
		if strings.Contains(lower, kw) {
			score += w.MoneyHit
			break
		}
	}
	for _, kw := range personalKeywords {
		if strings.Contains(lower, kw) {
			score += w.PersonalHit
		}
	}

	switch n := len(text); {
	case n >= bandMin && n <= bandMax:
		score += w.LengthInBand
	case n > bandMax:
		score += w.LengthOverrun
	}

	return score
}

// Rank scores every statement and interaction entry and returns them in
// descending score order, ties broken by earliest sequence number. Speakers
// in alreadyQuoted receive no diversity bonus.
func Rank(entries []discussion.TranscriptEntry, alreadyQuoted map[string]bool, w Weights) []Scored {
	ranked := make([]Scored, 0, len(entries))
	for _, e := range entries {
		if e.Type != discussion.EntryStatement && e.Type != discussion.EntryInteraction {
			continue
		}
		s := Score(e.Text, w)
		if !alreadyQuoted[e.Speaker] {
			s += w.Diversity
		}
		ranked = append(ranked, Scored{Entry: e, Score: s})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Entry.Sequence < ranked[j].Entry.Sequence
	})
	return ranked
}

// Top returns the n best entries from Rank, skipping entries that score zero
// or below when positiveOnly is set.
func Top(entries []discussion.TranscriptEntry, alreadyQuoted map[string]bool, w Weights, n int, positiveOnly bool) []Scored {
	ranked := Rank(entries, alreadyQuoted, w)
	out := make([]Scored, 0, n)
	for _, s := range ranked {
		if positiveOnly && s.Score <= 0 {
			continue
		}
		out = append(out, s)
		if len(out) == n {
			break
		}
	}
	return out
}
