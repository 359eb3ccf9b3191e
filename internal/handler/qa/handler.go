// Package qa exposes the question-answering routes.
package qa

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	discussionmodel "github.com/nikhilza/focuspanel/internal/model/discussion"
	discussionService "github.com/nikhilza/focuspanel/internal/service/discussion"
	qaService "github.com/nikhilza/focuspanel/internal/service/qa"
	"github.com/nikhilza/focuspanel/pkg/utils"
)

// Handler serves QA routes.
type Handler struct {
	discussions *discussionService.Service
	qa          *qaService.Service
}

// New creates the QA handler.
func New(discussions *discussionService.Service, qa *qaService.Service) *Handler {
	return &Handler{discussions: discussions, qa: qa}
}

// RegisterRoutes mounts the QA routes on r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/sessions/{sessionID}/questions", h.handleAsk)
	r.Get("/sessions/{sessionID}/questions", h.handleLog)
}

// handleAsk answers a question about the discussion. A question with no
// matching evidence gets a graceful fallback answer and is not added to the
// QA log.
func (h *Handler) handleAsk(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var payload struct {
		Question string `json:"question"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.Question == "" {
		utils.RespondError(w, http.StatusBadRequest, "question is required")
		return
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
	sum, err := h.discussions.Summary(r.Context(), sessionID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	log, err := h.discussions.QALog(r.Context(), sessionID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	exchange, err := h.qa.Ask(payload.Question, session.Personas, transcript, sum, log)
	if err != nil {
		var noEvidence *qaService.NoEvidenceFoundError
		if errors.As(err, &noEvidence) {
			utils.RespondJSON(w, http.StatusOK, map[string]any{
				"question": payload.Question,
				"category": noEvidence.Category,
				"answer":   noEvidence.Fallback(),
				"evidence": []any{},
				"fallback": true,
			})
			return
		}
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	stored, err := h.discussions.AppendExchange(r.Context(), sessionID, exchange)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, stored)
}

func (h *Handler) handleLog(w http.ResponseWriter, r *http.Request) {
	log, err := h.discussions.QALog(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]any{"exchanges": log})
}

func respondServiceError(w http.ResponseWriter, err error) {
	if errors.Is(err, discussionmodel.ErrSessionNotFound) {
		utils.RespondError(w, http.StatusNotFound, err.Error())
		return
	}
	utils.RespondError(w, http.StatusInternalServerError, err.Error())
}
