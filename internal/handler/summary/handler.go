// Package summary exposes schema acceptance and summary synthesis over HTTP.
package summary

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	discussionmodel "github.com/nikhilza/focuspanel/internal/model/discussion"
	summarymodel "github.com/nikhilza/focuspanel/internal/model/summary"
	discussionService "github.com/nikhilza/focuspanel/internal/service/discussion"
	summaryService "github.com/nikhilza/focuspanel/internal/service/summary"
	"github.com/nikhilza/focuspanel/pkg/utils"
)

// Handler serves summary routes.
type Handler struct {
	discussions *discussionService.Service
	synthesizer *summaryService.Synthesizer
}

// New creates the summary handler.
func New(discussions *discussionService.Service, synthesizer *summaryService.Synthesizer) *Handler {
	return &Handler{discussions: discussions, synthesizer: synthesizer}
}

// RegisterRoutes mounts the summary routes on r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/sessions/{sessionID}/summary", h.handleSynthesize)
	r.Get("/sessions/{sessionID}/summary", h.handleGet)
}

// handleSynthesize accepts an optional custom schema outline, synthesizes the
// summary and stores it. An empty outline uses the standard six sections.
// Posting again with a different schema replaces the summary.
func (h *Handler) handleSynthesize(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var payload struct {
		Schema string `json:"schema"`
	}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	schema := summarymodel.Standard()
	if payload.Schema != "" {
		parsed, err := summaryService.ParseSchema(payload.Schema)
		if err != nil {
			utils.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}
		schema = parsed
	}

	session, err := h.discussions.Session(r.Context(), sessionID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	transcript, err := h.discussions.Transcript(r.Context(), sessionID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	sum, err := h.synthesizer.Synthesize(session.Topic, session.Personas, transcript, schema)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if err := h.discussions.SetSummary(r.Context(), sessionID, schema, sum); err != nil {
		respondServiceError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, sum)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	sum, err := h.discussions.Summary(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if sum == nil {
		utils.RespondError(w, http.StatusNotFound, "summary has not been synthesized")
		return
	}
	utils.RespondJSON(w, http.StatusOK, sum)
}

func respondServiceError(w http.ResponseWriter, err error) {
	if errors.Is(err, discussionmodel.ErrSessionNotFound) {
		utils.RespondError(w, http.StatusNotFound, err.Error())
		return
	}
	var transitionErr *discussionmodel.InvalidStateTransitionError
	if errors.As(err, &transitionErr) {
		utils.RespondError(w, http.StatusConflict, transitionErr.Error())
		return
	}
	utils.RespondError(w, http.StatusInternalServerError, err.Error())
}
