// internal/app/features/notifications/routes.go
package notifications

import (
	"github.com/adeoluwa/flocktrack/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the notification endpoints (typically under
// "/notifications").
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)

	r.Get("/", h.HandleList)
	r.Get("/unread_count", h.HandleUnreadCount)
	r.Post("/{id}/read", h.HandleMarkRead)
	r.Post("/read_all", h.HandleMarkAllRead)

	return r
}
