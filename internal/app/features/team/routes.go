// internal/app/features/team/routes.go
package team

import (
	"github.com/crewdeck/crewdeck/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the team API. All routes require a signed-in caller.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)

	r.Get("/", h.HandleList)
	r.Post("/", h.HandleAdd)
	r.Get("/{id}", h.HandleProfile)
	r.Get("/{id}/daily-completions", h.HandleDailyCompletions)
	r.Delete("/{id}", h.HandleRemove)

	return r
}
