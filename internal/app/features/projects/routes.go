// internal/app/features/projects/routes.go
package projects

import (
	"github.com/crewdeck/crewdeck/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the project API. All routes require a signed-in caller.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)

	r.Get("/", h.HandleList)
	r.Post("/", h.HandleCreate)
	r.Delete("/{id}", h.HandleDelete)

	return r
}
