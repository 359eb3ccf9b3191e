// Package discussion owns the session lifecycle and the simulated panel run.
// Each session is an independent unit of work: one active run at a time, any
// number of concurrent status readers, no shared mutable state across
// sessions.
package discussion

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nikhilza/focuspanel/internal/config"
	"github.com/nikhilza/focuspanel/internal/model/discussion"
	personamodel "github.com/nikhilza/focuspanel/internal/model/persona"
	qamodel "github.com/nikhilza/focuspanel/internal/model/qa"
	summarymodel "github.com/nikhilza/focuspanel/internal/model/summary"
	"github.com/nikhilza/focuspanel/internal/service/enrich"
	personasvc "github.com/nikhilza/focuspanel/internal/service/persona"
)

// Service manages all sessions in memory, mirroring the single-process
// deployment model. Persistence is a boundary concern; Export produces the
// wire record.
type Service struct {
	mu       sync.RWMutex
	sessions map[string]*sessionState

	enricher enrich.Enricher
	cfg      config.DiscussionConfig
}

type sessionState struct {
	mu sync.RWMutex

	session    discussion.Session
	transcript []discussion.TranscriptEntry
	seq        int
	seed       int64

	schema  *summarymodel.Schema
	summary *summarymodel.Summary
	qaLog   []qamodel.Exchange

	progress progressTracker
	cancel   context.CancelFunc
	done     chan struct{}
	finished bool

	subscribers map[int]chan discussion.TranscriptEntry
	nextSubID   int
}

// NewService builds the session service. enricher may be nil; every path has
// a deterministic fallback.
func NewService(enricher enrich.Enricher, cfg config.DiscussionConfig) *Service {
	if cfg.Tables.InterruptionWeights == nil {
		cfg.Tables = config.DefaultTables()
	}
	return &Service{
		sessions: make(map[string]*sessionState),
		enricher: enricher,
		cfg:      cfg,
	}
}

// Status is the non-blocking polling snapshot.
type Status struct {
	State   discussion.State `json:"state"`
	Percent int              `json:"percent"`
	Label   string           `json:"label"`
}

// Results bundles a finished discussion's outputs. State lets callers tell a
// completed transcript from a partial one retained after an error.
type Results struct {
	State      discussion.State             `json:"state"`
	Transcript []discussion.TranscriptEntry `json:"transcript"`
	Summary    *summarymodel.Summary        `json:"summary,omitempty"`
}

// CreateSession provisions a session from a topic brief and drafts a
// discussion plan. The plan is polished by the enrichment hook when present.
func (s *Service) CreateSession(ctx context.Context, topicBrief string) (discussion.Session, error) {
	topicBrief = strings.TrimSpace(topicBrief)
	if topicBrief == "" {
		return discussion.Session{}, fmt.Errorf("topic brief is required")
	}

	now := time.Now().UTC()
	session := discussion.Session{
		ID:         uuid.NewString(),
		TopicBrief: topicBrief,
		Topic:      topicBrief,
		Plan:       s.draftPlan(ctx, topicBrief),
		State:      discussion.StateCreated,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	st := &sessionState{
		session:     session,
		seed:        now.UnixNano(),
		done:        make(chan struct{}),
		subscribers: make(map[int]chan discussion.TranscriptEntry),
	}
	st.progress.set(0, "created")

	s.mu.Lock()
	s.sessions[session.ID] = st
	s.mu.Unlock()

	return session, nil
}

func (s *Service) draftPlan(ctx context.Context, topicBrief string) string {
	fallback := fmt.Sprintf(
		"Discussion Framework for: %s\n\n"+
			"Phases:\n- Opening & context setting\n- Experience sharing\n- Deep dive on motivations and barriers\n- Comparison & trade-offs\n- Wrap-up & next steps\n\n"+
			"Each phase: open questions, encourage cross-talk, capture quotes.",
		topicBrief)

	return enrich.PolishOr(ctx, s.enricher, enrich.Prompt{
		System: "You are a senior research moderator. Given a short topic brief, create a concise, editable discussion framework with phases, goals, and example prompts. Keep it under 350 words.",
		User:   "Topic brief: " + topicBrief,
	}, fallback)
}

// AcceptPlan records the (possibly edited) plan text and moves the session to
// plan_ready. Re-accepting while plan_ready only updates the text.
func (s *Service) AcceptPlan(_ context.Context, id, planText, topic string) (discussion.Session, error) {
	st, err := s.state(id)
	if err != nil {
		return discussion.Session{}, err
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	switch st.session.State {
	case discussion.StateCreated:
		st.session.State = discussion.StatePlanReady
	case discussion.StatePlanReady:
		// plan still editable
	default:
		return discussion.Session{}, discussion.NewInvalidTransition(st.session.State, discussion.StatePlanReady, "plan can only be accepted before personas are confirmed")
	}

	if strings.TrimSpace(planText) != "" {
		st.session.Plan = planText
	}
	if strings.TrimSpace(topic) != "" {
		st.session.Topic = topic
	}
	st.session.UpdatedAt = time.Now().UTC()
	st.progress.set(0, "plan ready")
	return st.session, nil
}

// GeneratePersonas builds a diverse participant set for the session. Allowed
// only before the discussion starts. A zero seed reuses the session seed so
// repeated calls are reproducible per session; an explicit seed pins them.
func (s *Service) GeneratePersonas(ctx context.Context, id, contextPrompt string, count int, seed int64) ([]personamodel.Persona, personasvc.ValidationReport, error) {
	st, err := s.state(id)
	if err != nil {
		return nil, personasvc.ValidationReport{}, err
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	if !personasMutable(st.session.State) {
		return nil, personasvc.ValidationReport{}, discussion.NewInvalidTransition(st.session.State, st.session.State, "personas are immutable once the discussion begins")
	}

	if count <= 0 {
		count = s.cfg.DefaultPersonaCount
	}
	if seed != 0 {
		st.seed = seed
	}

	gen := personasvc.New(st.seed)
	personas, err := gen.Generate(contextPrompt, st.session.Topic, count)
	if err != nil {
		return nil, personasvc.ValidationReport{}, err
	}

	for i := range personas {
		personas[i].Background = enrich.PolishOr(ctx, s.enricher, enrich.Prompt{
			System: "Rewrite this focus group participant background into one vivid, realistic paragraph. Keep every factual detail.",
			User:   personas[i].Background,
		}, personas[i].Background)
	}

	st.session.Personas = personas
	st.session.UpdatedAt = time.Now().UTC()
	return clonePersonas(personas), personasvc.Validate(personas), nil
}

// UpdatePersonas replaces the persona set with user edits. Rejected once the
// discussion has started.
func (s *Service) UpdatePersonas(_ context.Context, id string, personas []personamodel.Persona) error {
	st, err := s.state(id)
	if err != nil {
		return err
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	if !personasMutable(st.session.State) {
		return discussion.NewInvalidTransition(st.session.State, st.session.State, "personas are immutable once the discussion begins")
	}

	for i, p := range personas {
		if strings.TrimSpace(p.Name) == "" {
			return fmt.Errorf("persona %d: name is required", i)
		}
		if p.Age < 18 || p.Age > 65 {
			return fmt.Errorf("persona %q: age must be between 18 and 65", p.Name)
		}
		if !p.Personality.Valid() {
			return fmt.Errorf("persona %q: unknown personality type %q", p.Name, p.Personality)
		}
	}

	st.session.Personas = clonePersonas(personas)
	st.session.UpdatedAt = time.Now().UTC()
	return nil
}

// ConfirmPersonas locks the participant set and moves to personas_ready.
func (s *Service) ConfirmPersonas(_ context.Context, id string) (discussion.Session, error) {
	st, err := s.state(id)
	if err != nil {
		return discussion.Session{}, err
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	if !st.session.State.CanTransitionTo(discussion.StatePersonasReady) {
		return discussion.Session{}, discussion.NewInvalidTransition(st.session.State, discussion.StatePersonasReady, "")
	}
	if len(st.session.Personas) == 0 {
		return discussion.Session{}, discussion.NewInvalidTransition(st.session.State, discussion.StatePersonasReady, "session has no personas")
	}

	st.session.State = discussion.StatePersonasReady
	st.session.UpdatedAt = time.Now().UTC()
	st.progress.set(0, "personas ready")
	return st.session, nil
}

// Start launches the discussion run as a cancellable background task and
// returns immediately. Starting anything but a personas_ready session fails
// and leaves state unchanged.
func (s *Service) Start(_ context.Context, id string) error {
	st, err := s.state(id)
	if err != nil {
		return err
	}

	st.mu.Lock()
	if !st.session.State.CanTransitionTo(discussion.StateRunning) {
		from := st.session.State
		st.mu.Unlock()
		return discussion.NewInvalidTransition(from, discussion.StateRunning, "")
	}
	if len(st.session.Personas) == 0 {
		from := st.session.State
		st.mu.Unlock()
		return discussion.NewInvalidTransition(from, discussion.StateRunning, "cannot start a discussion with zero personas")
	}

	runCtx, cancel := context.WithCancel(context.Background())
	st.cancel = cancel
	st.session.State = discussion.StateRunning
	st.session.UpdatedAt = time.Now().UTC()
	st.progress.set(0, "starting")
	st.mu.Unlock()

	go s.run(runCtx, st)
	return nil
}

// Abort cancels a running discussion. The session moves to error; transcript
// entries already written are retained for diagnostics.
func (s *Service) Abort(_ context.Context, id string) error {
	st, err := s.state(id)
	if err != nil {
		return err
	}

	st.mu.Lock()
	if st.session.State != discussion.StateRunning {
		from := st.session.State
		st.mu.Unlock()
		return discussion.NewInvalidTransition(from, discussion.StateError, "only a running discussion can be aborted")
	}
	cancel := st.cancel
	st.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	st.fail("aborted by caller")
	return nil
}

// Status returns the polling snapshot. Safe to call from any number of
// readers concurrently with a run; after completion it reports 100/complete
// forever.
func (s *Service) Status(_ context.Context, id string) (Status, error) {
	st, err := s.state(id)
	if err != nil {
		return Status{}, err
	}

	st.mu.RLock()
	state := st.session.State
	st.mu.RUnlock()

	percent, label := st.progress.snapshot()
	return Status{State: state, Percent: percent, Label: label}, nil
}

// Wait blocks until the session's run reaches a terminal outcome or ctx is
// done. Used by the offline tool and tests.
func (s *Service) Wait(ctx context.Context, id string) error {
	st, err := s.state(id)
	if err != nil {
		return err
	}
	select {
	case <-st.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Results returns the transcript and summary once a run has finished. While
// running it fails rather than exposing a partial transcript as complete.
func (s *Service) Results(_ context.Context, id string) (Results, error) {
	st, err := s.state(id)
	if err != nil {
		return Results{}, err
	}

	st.mu.RLock()
	defer st.mu.RUnlock()

	switch st.session.State {
	case discussion.StateCompleted, discussion.StateSummarized, discussion.StateError:
		return Results{
			State:      st.session.State,
			Transcript: cloneTranscript(st.transcript),
			Summary:    st.summary,
		}, nil
	default:
		return Results{}, discussion.NewInvalidTransition(st.session.State, discussion.StateCompleted, "discussion has not finished")
	}
}

// Session returns a snapshot of the session record.
func (s *Service) Session(_ context.Context, id string) (discussion.Session, error) {
	st, err := s.state(id)
	if err != nil {
		return discussion.Session{}, err
	}
	st.mu.RLock()
	defer st.mu.RUnlock()
	out := st.session
	out.Personas = clonePersonas(st.session.Personas)
	return out, nil
}

// Sessions lists all session snapshots, newest first not guaranteed.
func (s *Service) Sessions(_ context.Context) []discussion.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]discussion.Session, 0, len(s.sessions))
	for _, st := range s.sessions {
		st.mu.RLock()
		sess := st.session
		sess.Personas = clonePersonas(st.session.Personas)
		st.mu.RUnlock()
		out = append(out, sess)
	}
	return out
}

// Delete destroys a session and everything it owns. Sessions are destroyed
// only by explicit deletion.
func (s *Service) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	st, ok := s.sessions[id]
	if ok {
		delete(s.sessions, id)
	}
	s.mu.Unlock()

	if !ok {
		return discussion.ErrSessionNotFound
	}

	st.mu.Lock()
	cancel := st.cancel
	st.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	// Releases feed subscribers and Wait callers even when no run ever
	// started. A no-op if the run already finished.
	st.fail("session deleted")
	return nil
}

// Transcript returns a copy of the entries written so far.
func (s *Service) Transcript(_ context.Context, id string) ([]discussion.TranscriptEntry, error) {
	st, err := s.state(id)
	if err != nil {
		return nil, err
	}
	st.mu.RLock()
	defer st.mu.RUnlock()
	return cloneTranscript(st.transcript), nil
}

// SetSummary stores an accepted schema and its synthesized summary, moving
// the session to summarized. Reconfiguring the schema after summarization is
// legal and replaces the summary.
func (s *Service) SetSummary(_ context.Context, id string, schema summarymodel.Schema, sum summarymodel.Summary) error {
	st, err := s.state(id)
	if err != nil {
		return err
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	if !st.session.State.CanTransitionTo(discussion.StateSummarized) {
		return discussion.NewInvalidTransition(st.session.State, discussion.StateSummarized, "summary requires a completed discussion")
	}

	st.schema = &schema
	st.summary = &sum
	st.session.State = discussion.StateSummarized
	st.session.UpdatedAt = time.Now().UTC()
	return nil
}

// Summary returns the stored summary, if one has been synthesized.
func (s *Service) Summary(_ context.Context, id string) (*summarymodel.Summary, error) {
	st, err := s.state(id)
	if err != nil {
		return nil, err
	}
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.summary, nil
}

// AppendExchange appends to the session's QA log and returns the exchange
// with its order assigned. The log is append-only.
func (s *Service) AppendExchange(_ context.Context, id string, ex qamodel.Exchange) (qamodel.Exchange, error) {
	st, err := s.state(id)
	if err != nil {
		return qamodel.Exchange{}, err
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	ex.Order = len(st.qaLog) + 1
	st.qaLog = append(st.qaLog, ex)
	return ex, nil
}

// QALog returns a copy of the session's QA exchanges in creation order.
func (s *Service) QALog(_ context.Context, id string) ([]qamodel.Exchange, error) {
	st, err := s.state(id)
	if err != nil {
		return nil, err
	}
	st.mu.RLock()
	defer st.mu.RUnlock()
	out := make([]qamodel.Exchange, len(st.qaLog))
	copy(out, st.qaLog)
	return out, nil
}

// Subscribe registers a live transcript feed. The returned cancel func must
// be called when the consumer goes away; the channel closes when the run
// finishes.
func (s *Service) Subscribe(_ context.Context, id string) (<-chan discussion.TranscriptEntry, func(), error) {
	st, err := s.state(id)
	if err != nil {
		return nil, nil, err
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	ch := make(chan discussion.TranscriptEntry, 64)
	if st.finished {
		// Nothing further will be written; hand back a closed feed.
		close(ch)
		return ch, func() {}, nil
	}
	subID := st.nextSubID
	st.nextSubID++
	st.subscribers[subID] = ch

	cancel := func() {
		st.mu.Lock()
		defer st.mu.Unlock()
		// The run's fan-out may still hold a snapshot of this channel, so
		// cancel only removes it; channels are closed by complete/fail.
		delete(st.subscribers, subID)
	}
	return ch, cancel, nil
}

func (s *Service) state(id string) (*sessionState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.sessions[id]
	if !ok {
		return nil, discussion.ErrSessionNotFound
	}
	return st, nil
}

func personasMutable(state discussion.State) bool {
	switch state {
	case discussion.StateCreated, discussion.StatePlanReady, discussion.StatePersonasReady:
		return true
	}
	return false
}

func clonePersonas(in []personamodel.Persona) []personamodel.Persona {
	if in == nil {
		return nil
	}
	out := make([]personamodel.Persona, len(in))
	copy(out, in)
	return out
}

func cloneTranscript(in []discussion.TranscriptEntry) []discussion.TranscriptEntry {
	out := make([]discussion.TranscriptEntry, len(in))
	copy(out, in)
	return out
}
