// internal/app/features/userinfo/handler.go
package userinfo

import (
	"net/http"

	"github.com/adeoluwa/flocktrack/internal/app/system/auth"
	"github.com/adeoluwa/flocktrack/internal/app/system/httpjson"
	"go.uber.org/zap"
)

// Handler serves the signed-in user's own identity.
type Handler struct {
	Log *zap.Logger
}

// NewHandler constructs a userinfo handler.
func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{Log: logger}
}

type userinfoResponse struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	EntityID string `json:"entity_id,omitempty"`
}

// Serve handles GET /userinfo for the current session user.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		httpjson.Write(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}
	httpjson.Write(w, http.StatusOK, userinfoResponse{
		ID:       u.ID,
		FullName: u.Name,
		Email:    u.LoginID,
		Role:     u.Role,
		EntityID: u.EntityID,
	})
}
