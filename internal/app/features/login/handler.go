// internal/app/features/login/handler.go
package login

import (
	"context"
	"errors"
	"net/http"

	userstore "github.com/adeoluwa/flocktrack/internal/app/store/users"
	"github.com/adeoluwa/flocktrack/internal/app/system/auth"
	"github.com/adeoluwa/flocktrack/internal/app/system/httpjson"
	"github.com/adeoluwa/flocktrack/internal/app/system/normalize"
	"github.com/adeoluwa/flocktrack/internal/app/system/status"
	"github.com/adeoluwa/flocktrack/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Handler is the feature-level entry point for sign-in.
type Handler struct {
	Users    *userstore.Store
	Sessions *auth.SessionManager
	Log      *zap.Logger
}

// NewHandler constructs a login handler bound to the user store and
// session manager.
func NewHandler(db *mongo.Database, sessions *auth.SessionManager, logger *zap.Logger) *Handler {
	return &Handler{Users: userstore.New(db), Sessions: sessions, Log: logger}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	EntityID string `json:"entity_id,omitempty"`
}

// HandleLogin processes POST /login. Unknown emails, wrong passwords,
// and disabled accounts all return the same 401 so the response does
// not leak which one it was.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	if normalize.Email(req.Email) == "" || req.Password == "" {
		httpjson.WriteValidation(w, h.Log, "email and password are required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	user, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if !errors.Is(err, mongo.ErrNoDocuments) {
			h.Log.Error("login lookup failed", zap.Error(err))
		}
		h.unauthorized(w)
		return
	}
	if normalize.Status(user.Status) == status.Disabled {
		h.unauthorized(w)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		h.unauthorized(w)
		return
	}

	if err := h.Sessions.SignIn(w, r, user.ID.Hex()); err != nil {
		h.Log.Error("session sign-in failed", zap.Error(err))
		httpjson.Write(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	h.Log.Info("user signed in",
		zap.String("user_id", user.ID.Hex()),
		zap.String("role", user.Role))

	resp := loginResponse{
		ID:       user.ID.Hex(),
		FullName: user.FullName,
		Email:    user.Email,
		Role:     user.Role,
	}
	if user.EntityID != nil {
		resp.EntityID = user.EntityID.Hex()
	}
	httpjson.Write(w, http.StatusOK, resp)
}

func (h *Handler) unauthorized(w http.ResponseWriter) {
	httpjson.Write(w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
}
