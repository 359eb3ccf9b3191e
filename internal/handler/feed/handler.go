// Package feed streams a running discussion to clients: the transcript over
// a websocket and the status over Server-Sent Events.
package feed

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	discussionmodel "github.com/nikhilza/focuspanel/internal/model/discussion"
	discussionService "github.com/nikhilza/focuspanel/internal/service/discussion"
	"github.com/nikhilza/focuspanel/pkg/utils"
)

const statusPollInterval = 500 * time.Millisecond

// Handler serves the live feed routes.
type Handler struct {
	discussions *discussionService.Service
	upgrader    websocket.Upgrader
}

// New creates the feed handler.
func New(discussions *discussionService.Service) *Handler {
	return &Handler{
		discussions: discussions,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Research tooling served cross-origin from a dev frontend.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// RegisterRoutes mounts the feed routes on r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/sessions/{sessionID}/feed", h.handleTranscriptFeed)
	r.Get("/sessions/{sessionID}/status/stream", h.handleStatusStream)
}

// handleTranscriptFeed upgrades to a websocket, replays the transcript
// written so far and then relays live entries until the run finishes or the
// client disconnects.
func (h *Handler) handleTranscriptFeed(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	backlog, err := h.discussions.Transcript(r.Context(), sessionID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	entries, unsubscribe, err := h.discussions.Subscribe(r.Context(), sessionID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	defer unsubscribe()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[feed] websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	log.Printf("[feed] opening transcript feed for session=%s", sessionID)

	for _, entry := range backlog {
		if err := conn.WriteJSON(entry); err != nil {
			return
		}
	}

	// Reads only surface client disconnects; the feed is one-way.
	clientGone := make(chan struct{})
	go func() {
		defer close(clientGone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-clientGone:
			return
		case entry, ok := <-entries:
			if !ok {
				log.Printf("[feed] closing transcript feed for session=%s", sessionID)
				conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "discussion finished"))
				return
			}
			// Entries replayed from the backlog are skipped if the
			// subscription raced the replay.
			if len(backlog) > 0 && entry.Sequence <= backlog[len(backlog)-1].Sequence {
				continue
			}
			if err := conn.WriteJSON(entry); err != nil {
				return
			}
		}
	}
}

// handleStatusStream emits status snapshots over SSE until the session
// reaches a terminal progress value or the client disconnects.
func (h *Handler) handleStatusStream(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	status, err := h.discussions.Status(r.Context(), sessionID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	utils.SetupSSEHeaders(w)
	utils.SendSSEEvent(w, flusher, "status", status)

	ticker := time.NewTicker(statusPollInterval)
	defer ticker.Stop()

	last := status
	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			status, err := h.discussions.Status(r.Context(), sessionID)
			if err != nil {
				return
			}
			if status != last {
				utils.SendSSEEvent(w, flusher, "status", status)
				last = status
			}
			if status.State == discussionmodel.StateCompleted ||
				status.State == discussionmodel.StateSummarized ||
				status.State == discussionmodel.StateError {
				utils.SendSSEEvent(w, flusher, "done", status)
				return
			}
		}
	}
}

func respondServiceError(w http.ResponseWriter, err error) {
	if errors.Is(err, discussionmodel.ErrSessionNotFound) {
		utils.RespondError(w, http.StatusNotFound, err.Error())
		return
	}
	utils.RespondError(w, http.StatusInternalServerError, err.Error())
}
