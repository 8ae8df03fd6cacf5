// internal/app/features/positions/routes.go
package positions

import (
	"github.com/adeoluwa/flocktrack/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the position-change endpoints (typically under
// "/positions").
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)

	r.Post("/", h.HandleRequest)
	r.Get("/", h.HandleList)
	r.Post("/{id}/review", h.HandleReview)

	return r
}
