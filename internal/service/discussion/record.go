package discussion

import (
	"context"
	"time"

	"github.com/nikhilza/focuspanel/internal/model/discussion"
	personamodel "github.com/nikhilza/focuspanel/internal/model/persona"
	qamodel "github.com/nikhilza/focuspanel/internal/model/qa"
	summarymodel "github.com/nikhilza/focuspanel/internal/model/summary"
)

// Record is the complete serialized form of a session: everything needed to
// reconstruct it elsewhere, keyed by session ID. It is a wire shape only;
// this service never writes it to disk.
type Record struct {
	SessionID  string                       `json:"sessionId"`
	Topic      string                       `json:"topic"`
	TopicBrief string                       `json:"topicBrief"`
	Plan       string                       `json:"plan"`
	State      discussion.State             `json:"state"`
	Personas   []personamodel.Persona       `json:"personas"`
	Transcript []discussion.TranscriptEntry `json:"transcript"`
	Schema     *summarymodel.Schema         `json:"summarySchema,omitempty"`
	Summary    *summarymodel.Summary        `json:"summary,omitempty"`
	QALog      []qamodel.Exchange           `json:"qaLog"`
	CreatedAt  time.Time                    `json:"createdAt"`
	ExportedAt time.Time                    `json:"exportedAt"`
}

// Export builds the full session record. Any state is exportable; callers get
// whatever has been produced so far.
func (s *Service) Export(_ context.Context, id string) (Record, error) {
	st, err := s.state(id)
	if err != nil {
		return Record{}, err
	}

	st.mu.RLock()
	defer st.mu.RUnlock()

	qaLog := make([]qamodel.Exchange, len(st.qaLog))
	copy(qaLog, st.qaLog)

	return Record{
		SessionID:  st.session.ID,
		Topic:      st.session.Topic,
		TopicBrief: st.session.TopicBrief,
		Plan:       st.session.Plan,
		State:      st.session.State,
		Personas:   clonePersonas(st.session.Personas),
		Transcript: cloneTranscript(st.transcript),
		Schema:     st.schema,
		Summary:    st.summary,
		QALog:      qaLog,
		CreatedAt:  st.session.CreatedAt,
		ExportedAt: time.Now().UTC(),
	}, nil
}
