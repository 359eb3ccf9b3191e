package discussion

import (
	"time"

	"github.com/nikhilza/focuspanel/internal/model/persona"
)

// State is a session lifecycle stage. Transitions happen only through the
// table below; everything else is an InvalidStateTransitionError.
type State string

const (
	StateCreated       State = "created"
	StatePlanReady     State = "plan_ready"
	StatePersonasReady State = "personas_ready"
	StateRunning       State = "running"
	StateCompleted     State = "completed"
	StateSummarized    State = "summarized"
	StateError         State = "error"
)

var transitions = map[State][]State{
	StateCreated:       {StatePlanReady},
	StatePlanReady:     {StatePersonasReady},
	StatePersonasReady: {StateRunning},
	StateRunning:       {StateCompleted, StateError},
	StateCompleted:     {StateSummarized, StateError},
	StateSummarized:    {StateSummarized},
	StateError:         {},
}

// CanTransitionTo reports whether the lifecycle allows moving from s to next.
func (s State) CanTransitionTo(next State) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether no further lifecycle progress is possible.
func (s State) Terminal() bool {
	return s == StateError
}

// Session owns one simulated panel discussion end to end: the topic, the
// participant set, the transcript and whatever analysis was derived from it.
type Session struct {
	ID         string            `json:"id"`
	TopicBrief string            `json:"topicBrief"`
	Topic      string            `json:"topic"`
	Plan       string            `json:"plan,omitempty"`
	State      State             `json:"state"`
	Personas   []persona.Persona `json:"personas,omitempty"`
	CreatedAt  time.Time         `json:"createdAt"`
	UpdatedAt  time.Time         `json:"updatedAt"`
}
