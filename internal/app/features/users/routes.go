// internal/app/features/users/routes.go
package users

import (
	"github.com/adeoluwa/flocktrack/internal/app/system/auth"
	"github.com/adeoluwa/flocktrack/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the user admin endpoints (typically under "/users").
// Everything here is admin only.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)
	r.Use(sm.RequireRole(models.RoleAdmin))

	r.Post("/", h.HandleCreate)
	r.Get("/", h.HandleList)
	r.Get("/{id}", h.HandleGet)
	r.Post("/{id}", h.HandleUpdate)
	r.Post("/{id}/role", h.HandleSetRole)
	r.Post("/{id}/delete", h.HandleDelete)

	return r
}
