// internal/app/features/districts/routes.go
package districts

import (
	"github.com/adeoluwa/flocktrack/internal/app/system/auth"
	"github.com/adeoluwa/flocktrack/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the district admin endpoints (typically under
// "/districts"). Listing and reading are open to any signed-in user;
// mutations are admin only.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)

	r.Get("/", h.HandleList)
	r.Get("/{id}", h.HandleGet)

	r.Group(func(r chi.Router) {
		r.Use(sm.RequireRole(models.RoleAdmin))
		r.Post("/", h.HandleCreate)
		r.Post("/{id}", h.HandleUpdate)
		r.Post("/{id}/delete", h.HandleDelete)
	})

	return r
}
