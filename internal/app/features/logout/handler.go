// internal/app/features/logout/handler.go
package logout

import (
	"net/http"

	"github.com/adeoluwa/flocktrack/internal/app/system/auth"
	"github.com/adeoluwa/flocktrack/internal/app/system/httpjson"
	"go.uber.org/zap"
)

// Handler clears the session.
type Handler struct {
	Sessions *auth.SessionManager
	Log      *zap.Logger
}

// NewHandler constructs a logout handler.
func NewHandler(sessions *auth.SessionManager, logger *zap.Logger) *Handler {
	return &Handler{Sessions: sessions, Log: logger}
}

// HandleLogout processes POST /logout. Signing out without a session is
// still a success.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if u, ok := auth.CurrentUser(r); ok {
		h.Log.Info("user signed out", zap.String("user_id", u.ID))
	}
	if err := h.Sessions.SignOut(w, r); err != nil {
		h.Log.Error("session sign-out failed", zap.Error(err))
	}
	httpjson.Write(w, http.StatusOK, map[string]string{"status": "signed out"})
}
