// Package session exposes the discussion lifecycle over HTTP: create a
// session, shape its plan and personas, run the discussion and read back the
// results.
package session

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	discussionmodel "github.com/nikhilza/focuspanel/internal/model/discussion"
	personamodel "github.com/nikhilza/focuspanel/internal/model/persona"
	discussionService "github.com/nikhilza/focuspanel/internal/service/discussion"
	personaService "github.com/nikhilza/focuspanel/internal/service/persona"
	"github.com/nikhilza/focuspanel/pkg/utils"
)

// Handler serves the session lifecycle routes.
type Handler struct {
	discussions *discussionService.Service
}

// New creates the session handler.
func New(discussions *discussionService.Service) *Handler {
	return &Handler{discussions: discussions}
}

// RegisterRoutes mounts the session routes on r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/sessions", h.handleCreate)
	r.Get("/sessions", h.handleList)
	r.Route("/sessions/{sessionID}", func(sr chi.Router) {
		sr.Get("/", h.handleGet)
		sr.Delete("/", h.handleDelete)
		sr.Post("/plan", h.handleAcceptPlan)
		sr.Post("/personas/generate", h.handleGeneratePersonas)
		sr.Put("/personas", h.handleUpdatePersonas)
		sr.Post("/personas/confirm", h.handleConfirmPersonas)
		sr.Post("/start", h.handleStart)
		sr.Post("/abort", h.handleAbort)
		sr.Get("/status", h.handleStatus)
		sr.Get("/results", h.handleResults)
		sr.Get("/export", h.handleExport)
	})
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		TopicBrief string `json:"topicBrief"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := h.discussions.CreateSession(r.Context(), payload.TopicBrief)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusCreated, session)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"sessions": h.discussions.Sessions(r.Context()),
	})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	session, err := h.discussions.Session(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, session)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.discussions.Delete(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) handleAcceptPlan(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Plan  string `json:"plan"`
		Topic string `json:"topic"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := h.discussions.AcceptPlan(r.Context(), chi.URLParam(r, "sessionID"), payload.Plan, payload.Topic)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, session)
}

func (h *Handler) handleGeneratePersonas(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Context string `json:"context"`
		Count   int    `json:"count"`
		Seed    int64  `json:"seed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	personas, report, err := h.discussions.GeneratePersonas(r.Context(), chi.URLParam(r, "sessionID"), payload.Context, payload.Count, payload.Seed)
	if err != nil {
		if errors.Is(err, personaService.ErrInsufficientContext) {
			utils.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}
		respondServiceError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"personas":   personas,
		"validation": report,
	})
}

func (h *Handler) handleUpdatePersonas(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Personas []personamodel.Persona `json:"personas"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(payload.Personas) == 0 {
		utils.RespondError(w, http.StatusBadRequest, "personas list is empty")
		return
	}

	if err := h.discussions.UpdatePersonas(r.Context(), chi.URLParam(r, "sessionID"), payload.Personas); err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *Handler) handleConfirmPersonas(w http.ResponseWriter, r *http.Request) {
	session, err := h.discussions.ConfirmPersonas(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, session)
}

func (h *Handler) handleStart(w http.ResponseWriter, r *http.Request) {
	if err := h.discussions.Start(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusAccepted, map[string]string{"status": "running"})
}

func (h *Handler) handleAbort(w http.ResponseWriter, r *http.Request) {
	if err := h.discussions.Abort(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "aborted"})
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.discussions.Status(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, status)
}

func (h *Handler) handleResults(w http.ResponseWriter, r *http.Request) {
	results, err := h.discussions.Results(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, results)
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	record, err := h.discussions.Export(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, record)
}

// respondServiceError maps service errors to HTTP statuses: unknown sessions
// are 404, illegal lifecycle moves are 409 with the offending state and
// reason, everything else is 500.
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
