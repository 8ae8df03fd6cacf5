// internal/app/features/userinfo/routes.go
package userinfo

import (
	"github.com/adeoluwa/flocktrack/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the userinfo endpoint (typically under "/userinfo").
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)
	r.Get("/", h.Serve)
	return r
}
