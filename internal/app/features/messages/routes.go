// internal/app/features/messages/routes.go
package messages

import (
	"github.com/adeoluwa/flocktrack/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the message endpoints (typically under "/messages").
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)

	r.Post("/", h.HandleSend)
	r.Get("/", h.HandleList)

	return r
}
