// internal/app/features/tasks/routes.go
package tasks

import (
	"github.com/crewdeck/crewdeck/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the task API. All routes require a signed-in caller.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)

	r.Get("/", h.HandleList)
	r.Post("/", h.HandleCreate)
	r.Get("/{id}", h.HandleDetail)
	r.Put("/{id}", h.HandleUpdate)

	// DELETE doubles as comment removal when ?commentId= is present.
	r.Delete("/{id}", h.HandleDelete)

	return r
}
