// internal/app/features/reports/routes.go
package reports

import (
	"github.com/adeoluwa/flocktrack/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the report endpoints (typically under "/reports").
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)

	r.Post("/", h.HandleSubmit)
	r.Get("/", h.HandleList)
	r.Get("/{id}", h.HandleGet)
	r.Put("/{id}", h.HandleEdit)
	r.Post("/{id}/approve", h.HandleApprove)
	r.Post("/{id}/reject", h.HandleReject)

	return r
}
