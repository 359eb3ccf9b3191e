package discussion

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/nikhilza/focuspanel/internal/model/discussion"
	"github.com/nikhilza/focuspanel/internal/service/enrich"
)

// run drives a discussion through its five phases. It is the only writer of
// the session's transcript and terminal state; any panic is converted into an
// error outcome rather than taking the process down.
func (s *Service) run(ctx context.Context, st *sessionState) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[discussion] run panicked: %v", r)
			st.fail(fmt.Sprintf("internal error: %v", r))
		}
	}()

	st.mu.RLock()
	personas := clonePersonas(st.session.Personas)
	topic := st.session.Topic
	seed := st.seed
	st.mu.RUnlock()

	rng := rand.New(rand.NewSource(seed))
	n := len(personas)

	for pi, phase := range discussion.Phases() {
		if ctx.Err() != nil {
			st.fail("discussion aborted")
			return
		}
		st.progress.set(pi*20, phase.Label())

		prompt := enrich.PolishOr(ctx, s.enricher, enrich.Prompt{
			System: "You are a focus group moderator. Rephrase the following phase prompt in your own warm, professional voice. Keep it to two sentences.",
			User:   moderatorPrompt(phase, topic),
		}, moderatorPrompt(phase, topic))
		st.append(discussion.TranscriptEntry{
			Phase:   phase,
			Speaker: discussion.ModeratorName,
			Type:    discussion.EntryModeratorPrompt,
			Text:    prompt,
		})
		if !s.pace(ctx) {
			st.fail("discussion aborted")
			return
		}

		// Speaking order rotates each phase so nobody owns the first word.
		for k := 0; k < n; k++ {
			idx := (pi + k) % n
			speaker := personas[idx]

			st.append(discussion.TranscriptEntry{
				Phase:   phase,
				Speaker: speaker.Name,
				Type:    discussion.EntryStatement,
				Text:    statementFor(rng, speaker, phase, topic),
			})
			if !s.pace(ctx) {
				st.fail("discussion aborted")
				return
			}

			weight := s.cfg.Tables.InterruptionWeights[string(speaker.Personality)]
			if roll := rng.Float64(); roll < weight && n > 1 {
				ri := rng.Intn(n - 1)
				if ri >= idx {
					ri++
				}
				reactor := personas[ri]
				st.append(discussion.TranscriptEntry{
					Phase:   phase,
					Speaker: reactor.Name,
					Type:    discussion.EntryInteraction,
					Text:    interactionFor(rng, reactor, speaker),
				})
				if !s.pace(ctx) {
					st.fail("discussion aborted")
					return
				}
			}
		}
	}

	st.complete()
}

// pace sleeps the configured inter-step delay, returning false when the run
// context is cancelled. Zero delay is the fast path used by tests and the
// offline tool.
func (s *Service) pace(ctx context.Context) bool {
	if s.cfg.StepDelayMS <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(time.Duration(s.cfg.StepDelayMS) * time.Millisecond)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}

// append assigns the next sequence number, stores the entry and fans it out
// to live subscribers. Slow subscribers drop entries rather than stall the run.
func (st *sessionState) append(entry discussion.TranscriptEntry) {
	st.mu.Lock()
	st.seq++
	entry.Sequence = st.seq
	entry.Timestamp = time.Now().UTC()
	st.transcript = append(st.transcript, entry)
	subs := make([]chan discussion.TranscriptEntry, 0, len(st.subscribers))
	for _, ch := range st.subscribers {
		subs = append(subs, ch)
	}
	st.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- entry:
		default:
		}
	}
}

// complete moves the session to completed and freezes progress at
// 100/complete. Exactly one of complete or fail fires per run.
func (st *sessionState) complete() {
	st.mu.Lock()
	if st.finished {
		st.mu.Unlock()
		return
	}
	st.finished = true
	st.progress.finish(100, "complete")
	st.session.State = discussion.StateCompleted
	st.session.UpdatedAt = time.Now().UTC()
	subs := st.drainSubscribersLocked()
	st.mu.Unlock()

	for _, ch := range subs {
		close(ch)
	}
	close(st.done)
}

// fail moves the session to error, keeping whatever transcript was written.
func (st *sessionState) fail(reason string) {
	st.mu.Lock()
	if st.finished {
		st.mu.Unlock()
		return
	}
	st.finished = true
	st.progress.finish(0, "failed: "+reason)
	st.session.State = discussion.StateError
	st.session.UpdatedAt = time.Now().UTC()
	subs := st.drainSubscribersLocked()
	st.mu.Unlock()

	for _, ch := range subs {
		close(ch)
	}
	close(st.done)
}

func (st *sessionState) drainSubscribersLocked() []chan discussion.TranscriptEntry {
	subs := make([]chan discussion.TranscriptEntry, 0, len(st.subscribers))
	for id, ch := range st.subscribers {
		subs = append(subs, ch)
		delete(st.subscribers, id)
	}
	return subs
}
