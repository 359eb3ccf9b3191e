package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/nikhilza/focuspanel/internal/handler/feed"
	qaHandler "github.com/nikhilza/focuspanel/internal/handler/qa"
	sessionHandler "github.com/nikhilza/focuspanel/internal/handler/session"
	summaryHandler "github.com/nikhilza/focuspanel/internal/handler/summary"
	middlewarePkg "github.com/nikhilza/focuspanel/internal/middleware"
	discussionService "github.com/nikhilza/focuspanel/internal/service/discussion"
	qaService "github.com/nikhilza/focuspanel/internal/service/qa"
	summaryService "github.com/nikhilza/focuspanel/internal/service/summary"
	"github.com/nikhilza/focuspanel/pkg/utils"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(discussions *discussionService.Service, synthesizer *summaryService.Synthesizer, qaSvc *qaService.Service) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	r.Route("/api", func(api chi.Router) {
		sessionHandler.New(discussions).RegisterRoutes(api)
		summaryHandler.New(discussions, synthesizer).RegisterRoutes(api)
		qaHandler.New(discussions, qaSvc).RegisterRoutes(api)
		feed.New(discussions).RegisterRoutes(api)

		api.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})
	})

	return r
}
