package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nikhilza/focuspanel/internal/config"
	discussionmodel "github.com/nikhilza/focuspanel/internal/model/discussion"
	discussionService "github.com/nikhilza/focuspanel/internal/service/discussion"
	qaService "github.com/nikhilza/focuspanel/internal/service/qa"
	summaryService "github.com/nikhilza/focuspanel/internal/service/summary"
)

func newTestRouter() (http.Handler, *discussionService.Service) {
	cfg := config.DiscussionConfig{
		StepDelayMS:         0,
		DefaultPersonaCount: 6,
		Tables:              config.DefaultTables(),
	}
	discussions := discussionService.NewService(nil, cfg)
	router := NewRouter(discussions, summaryService.NewSynthesizer(), qaService.NewService(cfg.Tables))
	return router, discussions
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var decoded map[string]any
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &decoded); err != nil {
			t.Fatalf("%s %s returned invalid JSON: %v\n%s", method, path, err, rec.Body.String())
		}
	}
	return rec, decoded
}

func TestFullSessionFlow(t *testing.T) {
	router, discussions := newTestRouter()

	rec, body := doJSON(t, router, http.MethodPost, "/api/sessions", map[string]any{
		"topicBrief": "online beauty shopping",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create session: status %d, body %s", rec.Code, rec.Body.String())
	}
	sessionID, _ := body["id"].(string)
	if sessionID == "" {
		t.Fatalf("create session returned no id: %v", body)
	}
	if body["plan"] == "" {
		t.Fatal("create session returned no drafted plan")
	}

	rec, _ = doJSON(t, router, http.MethodPost, "/api/sessions/"+sessionID+"/plan", map[string]any{
		"plan": "1. warm up 2. dig in 3. wrap up",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("accept plan: status %d, body %s", rec.Code, rec.Body.String())
	}

	rec, body = doJSON(t, router, http.MethodPost, "/api/sessions/"+sessionID+"/personas/generate", map[string]any{
		"context": "Gen Z women in metro cities who shop online",
		"count":   6,
		"seed":    42,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("generate personas: status %d, body %s", rec.Code, rec.Body.String())
	}
	personas, _ := body["personas"].([]any)
	if len(personas) != 6 {
		t.Fatalf("generated %d personas, want 6", len(personas))
	}

	rec, _ = doJSON(t, router, http.MethodPost, "/api/sessions/"+sessionID+"/personas/confirm", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("confirm personas: status %d, body %s", rec.Code, rec.Body.String())
	}

	rec, _ = doJSON(t, router, http.MethodPost, "/api/sessions/"+sessionID+"/start", nil)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("start: status %d, body %s", rec.Code, rec.Body.String())
	}

	waitCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := discussions.Wait(waitCtx, sessionID); err != nil {
		t.Fatalf("waiting for run: %v", err)
	}

	rec, body = doJSON(t, router, http.MethodGet, "/api/sessions/"+sessionID+"/status", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: %d", rec.Code)
	}
	if body["state"] != string(discussionmodel.StateCompleted) || body["percent"] != float64(100) {
		t.Fatalf("status after run = %v", body)
	}

	rec, body = doJSON(t, router, http.MethodGet, "/api/sessions/"+sessionID+"/results", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("results: status %d", rec.Code)
	}
	transcript, _ := body["transcript"].([]any)
	if len(transcript) < 35 {
		t.Fatalf("transcript has %d entries, want at least 35 for 6 personas", len(transcript))
	}

	rec, body = doJSON(t, router, http.MethodPost, "/api/sessions/"+sessionID+"/summary", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("summary: status %d, body %s", rec.Code, rec.Body.String())
	}
	sections, _ := body["sections"].([]any)
	if len(sections) != 6 {
		t.Fatalf("standard summary has %d sections, want 6", len(sections))
	}

	rec, body = doJSON(t, router, http.MethodPost, "/api/sessions/"+sessionID+"/questions", map[string]any{
		"question": "What were the main themes of the discussion?",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("ask: status %d, body %s", rec.Code, rec.Body.String())
	}
	if cat, _ := body["category"].(string); cat == "" {
		t.Fatalf("ask returned no category: %v", body)
	}
	if ans, _ := body["answer"].(string); ans == "" {
		t.Fatalf("ask returned no answer: %v", body)
	}

	rec, body = doJSON(t, router, http.MethodGet, "/api/sessions/"+sessionID+"/export", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("export: status %d", rec.Code)
	}
	if body["sessionId"] != sessionID {
		t.Fatalf("export keyed by %v, want %s", body["sessionId"], sessionID)
	}
	if body["summary"] == nil {
		t.Fatal("export missing the synthesized summary")
	}
}

func TestLifecycleErrorsOverHTTP(t *testing.T) {
	router, _ := newTestRouter()

	rec, _ := doJSON(t, router, http.MethodGet, "/api/sessions/nope/status", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown session status: %d, want 404", rec.Code)
	}

	_, body := doJSON(t, router, http.MethodPost, "/api/sessions", map[string]any{"topicBrief": "t"})
	sessionID := body["id"].(string)

	// Starting a freshly created session skips required lifecycle steps.
	rec, errBody := doJSON(t, router, http.MethodPost, "/api/sessions/"+sessionID+"/start", nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("premature start: %d, want 409", rec.Code)
	}
	if msg, _ := errBody["error"].(string); msg == "" {
		t.Fatal("conflict response carries no reason")
	}

	// Empty persona context is a client error.
	doJSON(t, router, http.MethodPost, "/api/sessions/"+sessionID+"/plan", map[string]any{})
	rec, _ = doJSON(t, router, http.MethodPost, "/api/sessions/"+sessionID+"/personas/generate", map[string]any{
		"context": "",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("empty context: %d, want 400", rec.Code)
	}
}

func TestQuestionFallbackOverHTTP(t *testing.T) {
	router, discussions := newTestRouter()

	_, body := doJSON(t, router, http.MethodPost, "/api/sessions", map[string]any{"topicBrief": "silent topic"})
	sessionID := body["id"].(string)

	// No discussion has run; there is nothing to retrieve.
	rec, answer := doJSON(t, router, http.MethodPost, "/api/sessions/"+sessionID+"/questions", map[string]any{
		"question": "What were the main themes?",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("fallback answer: status %d", rec.Code)
	}
	if answer["fallback"] != true {
		t.Fatalf("expected fallback answer, got %v", answer)
	}
	if answer["answer"] == "" {
		t.Fatal("fallback answer text is empty")
	}

	// A fallback never lands in the QA log.
	log, err := discussions.QALog(context.Background(), sessionID)
	if err != nil {
		t.Fatalf("QALog failed: %v", err)
	}
	if len(log) != 0 {
		t.Fatalf("fallback appended to QA log: %d entries", len(log))
	}
}

func TestFeedClosesWhenSessionDeleted(t *testing.T) {
	router, _ := newTestRouter()
	srv := httptest.NewServer(router)
	defer srv.Close()

	_, body := doJSON(t, router, http.MethodPost, "/api/sessions", map[string]any{"topicBrief": "live feed"})
	sessionID := body["id"].(string)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/sessions/" + sessionID + "/feed"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial feed: %v", err)
	}
	if resp != nil {
		resp.Body.Close()
	}
	defer conn.Close()

	rec, _ := doJSON(t, router, http.MethodDelete, "/api/sessions/"+sessionID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete session: status %d", rec.Code)
	}

	// Deleting the session must end the feed rather than leave the reader
	// hanging on a dead subscription.
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if _, _, err := conn.ReadMessage(); !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
		t.Fatalf("feed read after deletion: %v, want normal closure", err)
	}
}

func TestHealthEndpoint(t *testing.T) {
	router, _ := newTestRouter()
	rec, body := doJSON(t, router, http.MethodGet, "/api/health", nil)
	if rec.Code != http.StatusOK || body["status"] != "ok" {
		t.Fatalf("health: %d %v", rec.Code, body)
	}
}
