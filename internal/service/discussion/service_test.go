package discussion

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nikhilza/focuspanel/internal/config"
	discussionmodel "github.com/nikhilza/focuspanel/internal/model/discussion"
)

func newTestService(delayMS int) *Service {
	return NewService(nil, config.DiscussionConfig{
		StepDelayMS:         delayMS,
		DefaultPersonaCount: 6,
		Tables:              config.DefaultTables(),
	})
}

// runToCompletion drives a session through the whole lifecycle and returns
// its ID.
func runToCompletion(t *testing.T, svc *Service, topic, contextPrompt string, count int, seed int64) string {
	t.Helper()
	ctx := context.Background()

	session, err := svc.CreateSession(ctx, topic)
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	if session.State != discussionmodel.StateCreated {
		t.Fatalf("new session state = %s, want created", session.State)
	}
	if session.Plan == "" {
		t.Fatal("new session has no drafted plan")
	}

	if _, err := svc.AcceptPlan(ctx, session.ID, "", ""); err != nil {
		t.Fatalf("AcceptPlan failed: %v", err)
	}
	if _, _, err := svc.GeneratePersonas(ctx, session.ID, contextPrompt, count, seed); err != nil {
		t.Fatalf("GeneratePersonas failed: %v", err)
	}
	if _, err := svc.ConfirmPersonas(ctx, session.ID); err != nil {
		t.Fatalf("ConfirmPersonas failed: %v", err)
	}
	if err := svc.Start(ctx, session.ID); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	waitCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := svc.Wait(waitCtx, session.ID); err != nil {
		t.Fatalf("Wait failed: %v", err)
	}
	return session.ID
}

func TestRunProducesOrderedTranscript(t *testing.T) {
	svc := newTestService(0)
	id := runToCompletion(t, svc, "online beauty shopping", "Gen Z women in metro cities who shop online", 6, 42)

	results, err := svc.Results(context.Background(), id)
	if err != nil {
		t.Fatalf("Results failed: %v", err)
	}
	if results.State != discussionmodel.StateCompleted {
		t.Fatalf("state = %s, want completed", results.State)
	}

	phases := discussionmodel.Phases()
	phaseIdx := 0
	perPhase := make(map[discussionmodel.Phase]int)
	prompts := 0
	spoken := 0
	lastSeq := 0

	for _, e := range results.Transcript {
		if e.Sequence <= lastSeq {
			t.Fatalf("sequence numbers not strictly increasing at %d", e.Sequence)
		}
		lastSeq = e.Sequence

		// Phase may only advance forward through the fixed order.
		for phaseIdx < len(phases) && phases[phaseIdx] != e.Phase {
			phaseIdx++
		}
		if phaseIdx == len(phases) {
			t.Fatalf("phase %s appears out of order", e.Phase)
		}
		perPhase[e.Phase]++

		switch e.Type {
		case discussionmodel.EntryModeratorPrompt:
			prompts++
			if e.Speaker != discussionmodel.ModeratorName {
				t.Fatalf("moderator prompt attributed to %q", e.Speaker)
			}
		case discussionmodel.EntryStatement, discussionmodel.EntryInteraction:
			spoken++
			if e.Speaker == discussionmodel.ModeratorName {
				t.Fatalf("entry %d of type %s attributed to the moderator", e.Sequence, e.Type)
			}
		}
	}

	if prompts != 5 {
		t.Fatalf("expected exactly 5 moderator prompts, got %d", prompts)
	}
	if spoken < 30 {
		t.Fatalf("expected at least 30 statement/interaction entries for 6 personas, got %d", spoken)
	}
	for _, phase := range phases {
		if perPhase[phase] < 7 {
			t.Fatalf("phase %s has %d entries, want at least persona count + 1 = 7", phase, perPhase[phase])
		}
	}
}

func TestRunDeterministicBySeed(t *testing.T) {
	first := newTestService(0)
	second := newTestService(0)

	id1 := runToCompletion(t, first, "food delivery apps", "young professionals who order online", 4, 123)
	id2 := runToCompletion(t, second, "food delivery apps", "young professionals who order online", 4, 123)

	t1, _ := first.Transcript(context.Background(), id1)
	t2, _ := second.Transcript(context.Background(), id2)

	if len(t1) != len(t2) {
		t.Fatalf("transcript lengths differ: %d vs %d", len(t1), len(t2))
	}
	for i := range t1 {
		if t1[i].Speaker != t2[i].Speaker || t1[i].Text != t2[i].Text || t1[i].Phase != t2[i].Phase {
			t.Fatalf("entry %d differs between seeded runs:\n%+v\n%+v", i, t1[i], t2[i])
		}
	}
}

func TestStatusMonotoneAndIdempotent(t *testing.T) {
	svc := newTestService(1)
	ctx := context.Background()

	session, _ := svc.CreateSession(ctx, "smartwatches")
	svc.AcceptPlan(ctx, session.ID, "", "")
	svc.GeneratePersonas(ctx, session.ID, "fitness enthusiasts", 4, 9)
	svc.ConfirmPersonas(ctx, session.ID)
	if err := svc.Start(ctx, session.ID); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	last := -1
	deadline := time.After(10 * time.Second)
	for {
		status, err := svc.Status(ctx, session.ID)
		if err != nil {
			t.Fatalf("Status failed: %v", err)
		}
		if status.Percent < last {
			t.Fatalf("progress went backwards: %d after %d", status.Percent, last)
		}
		last = status.Percent
		if status.State == discussionmodel.StateCompleted {
			break
		}
		select {
		case <-deadline:
			t.Fatal("run did not complete in time")
		default:
		}
	}

	for i := 0; i < 3; i++ {
		status, _ := svc.Status(ctx, session.ID)
		if status.Percent != 100 || status.Label != "complete" {
			t.Fatalf("post-completion poll %d returned %d/%q, want 100/complete", i, status.Percent, status.Label)
		}
	}
}

func TestInvalidTransitions(t *testing.T) {
	svc := newTestService(0)
	ctx := context.Background()

	session, _ := svc.CreateSession(ctx, "topic")

	// Starting before the lifecycle reaches personas_ready.
	var transitionErr *discussionmodel.InvalidStateTransitionError
	if err := svc.Start(ctx, session.ID); !errors.As(err, &transitionErr) {
		t.Fatalf("Start on created session: got %v, want InvalidStateTransitionError", err)
	}

	// Confirming personas before any exist.
	svc.AcceptPlan(ctx, session.ID, "", "")
	if _, err := svc.ConfirmPersonas(ctx, session.ID); !errors.As(err, &transitionErr) {
		t.Fatalf("ConfirmPersonas with zero personas: got %v", err)
	}

	// Results before the run finished.
	if _, err := svc.Results(ctx, session.ID); !errors.As(err, &transitionErr) {
		t.Fatalf("Results on unfinished session: got %v", err)
	}

	// Restarting a completed session.
	id := runToCompletion(t, svc, "restart check", "urban shoppers", 3, 5)
	if err := svc.Start(ctx, id); !errors.As(err, &transitionErr) {
		t.Fatalf("Start on completed session: got %v", err)
	}
	status, _ := svc.Status(ctx, id)
	if status.State != discussionmodel.StateCompleted {
		t.Fatalf("failed restart changed state to %s", status.State)
	}
}

func TestPersonasImmutableOnceRunning(t *testing.T) {
	svc := newTestService(20)
	ctx := context.Background()

	session, _ := svc.CreateSession(ctx, "topic")
	svc.AcceptPlan(ctx, session.ID, "", "")
	personas, _, err := svc.GeneratePersonas(ctx, session.ID, "metro shoppers", 4, 8)
	if err != nil {
		t.Fatalf("GeneratePersonas failed: %v", err)
	}
	svc.ConfirmPersonas(ctx, session.ID)
	if err := svc.Start(ctx, session.ID); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	var transitionErr *discussionmodel.InvalidStateTransitionError
	if err := svc.UpdatePersonas(ctx, session.ID, personas); !errors.As(err, &transitionErr) {
		t.Fatalf("UpdatePersonas while running: got %v, want InvalidStateTransitionError", err)
	}
	if _, _, err := svc.GeneratePersonas(ctx, session.ID, "different crowd", 4, 1); !errors.As(err, &transitionErr) {
		t.Fatalf("GeneratePersonas while running: got %v", err)
	}

	svc.Abort(ctx, session.ID)
}

func TestAbortRetainsTranscript(t *testing.T) {
	svc := newTestService(20)
	ctx := context.Background()

	session, _ := svc.CreateSession(ctx, "topic")
	svc.AcceptPlan(ctx, session.ID, "", "")
	svc.GeneratePersonas(ctx, session.ID, "metro shoppers", 6, 3)
	svc.ConfirmPersonas(ctx, session.ID)
	if err := svc.Start(ctx, session.ID); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	time.Sleep(100 * time.Millisecond)
	if err := svc.Abort(ctx, session.ID); err != nil {
		t.Fatalf("Abort failed: %v", err)
	}

	waitCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	svc.Wait(waitCtx, session.ID)

	results, err := svc.Results(ctx, session.ID)
	if err != nil {
		t.Fatalf("Results after abort failed: %v", err)
	}
	if results.State != discussionmodel.StateError {
		t.Fatalf("aborted session state = %s, want error", results.State)
	}
	if len(results.Transcript) == 0 {
		t.Fatal("aborted session should retain partial transcript")
	}

	// Abort is not repeatable once terminal.
	var transitionErr *discussionmodel.InvalidStateTransitionError
	if err := svc.Abort(ctx, session.ID); !errors.As(err, &transitionErr) {
		t.Fatalf("second Abort: got %v, want InvalidStateTransitionError", err)
	}
}

func TestSubscribeReceivesRun(t *testing.T) {
	svc := newTestService(0)
	ctx := context.Background()

	session, _ := svc.CreateSession(ctx, "topic")
	svc.AcceptPlan(ctx, session.ID, "", "")
	svc.GeneratePersonas(ctx, session.ID, "metro shoppers", 3, 77)
	svc.ConfirmPersonas(ctx, session.ID)

	entries, unsubscribe, err := svc.Subscribe(ctx, session.ID)
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	defer unsubscribe()

	if err := svc.Start(ctx, session.ID); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	received := 0
	timeout := time.After(10 * time.Second)
	for {
		select {
		case _, ok := <-entries:
			if !ok {
				if received == 0 {
					t.Fatal("feed closed without delivering any entries")
				}
				return
			}
			received++
		case <-timeout:
			t.Fatal("feed did not close after run completion")
		}
	}
}

func TestSubscriberChurnDuringRun(t *testing.T) {
	svc := newTestService(1)
	ctx := context.Background()

	session, _ := svc.CreateSession(ctx, "topic")
	svc.AcceptPlan(ctx, session.ID, "", "")
	svc.GeneratePersonas(ctx, session.ID, "metro shoppers", 6, 31)
	svc.ConfirmPersonas(ctx, session.ID)
	if err := svc.Start(ctx, session.ID); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	// Feed readers attach and detach constantly while the run fans out
	// entries; a reader leaving mid-run must never take the run down.
	stop := make(chan struct{})
	churned := make(chan struct{})
	go func() {
		defer close(churned)
		for {
			select {
			case <-stop:
				return
			default:
			}
			entries, unsubscribe, err := svc.Subscribe(ctx, session.ID)
			if err != nil {
				return
			}
			select {
			case <-entries:
			default:
			}
			unsubscribe()
		}
	}()

	waitCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := svc.Wait(waitCtx, session.ID); err != nil {
		t.Fatalf("Wait failed: %v", err)
	}
	close(stop)
	<-churned

	status, err := svc.Status(ctx, session.ID)
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if status.State != discussionmodel.StateCompleted {
		t.Fatalf("state after subscriber churn = %s, want completed", status.State)
	}
	if status.Percent != 100 || status.Label != "complete" {
		t.Fatalf("progress after subscriber churn = %d/%q, want 100/complete", status.Percent, status.Label)
	}
}

func TestDeleteReleasesSubscribers(t *testing.T) {
	svc := newTestService(0)
	ctx := context.Background()

	session, _ := svc.CreateSession(ctx, "topic")
	entries, unsubscribe, err := svc.Subscribe(ctx, session.ID)
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	defer unsubscribe()

	// No run ever started, so deletion is the only thing that ends the feed.
	if err := svc.Delete(ctx, session.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	select {
	case _, ok := <-entries:
		if ok {
			t.Fatal("received an entry from a deleted session")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("subscriber channel still open after session deletion")
	}
}

func TestDeleteDestroysSession(t *testing.T) {
	svc := newTestService(0)
	ctx := context.Background()

	session, _ := svc.CreateSession(ctx, "topic")
	if err := svc.Delete(ctx, session.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := svc.Session(ctx, session.ID); !errors.Is(err, discussionmodel.ErrSessionNotFound) {
		t.Fatalf("deleted session still resolvable: %v", err)
	}
	if err := svc.Delete(ctx, session.ID); !errors.Is(err, discussionmodel.ErrSessionNotFound) {
		t.Fatalf("second Delete: got %v, want ErrSessionNotFound", err)
	}
}

func TestExportRecordShape(t *testing.T) {
	svc := newTestService(0)
	id := runToCompletion(t, svc, "online groceries", "metro families", 4, 17)

	record, err := svc.Export(context.Background(), id)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if record.SessionID != id {
		t.Fatalf("record keyed by %q, want %q", record.SessionID, id)
	}
	if record.Topic == "" || len(record.Personas) != 4 || len(record.Transcript) == 0 {
		t.Fatalf("record incomplete: topic=%q personas=%d transcript=%d",
			record.Topic, len(record.Personas), len(record.Transcript))
	}
	if record.QALog == nil {
		t.Fatal("record QA log should be non-nil even when empty")
	}
}
