// internal/app/features/users/handler.go
package users

import (
	"context"
	"errors"
	"net/http"

	"github.com/adeoluwa/flocktrack/internal/app/features/shared"
	userstore "github.com/adeoluwa/flocktrack/internal/app/store/users"
	"github.com/adeoluwa/flocktrack/internal/app/system/apperr"
	"github.com/adeoluwa/flocktrack/internal/app/system/httpjson"
	"github.com/adeoluwa/flocktrack/internal/app/system/normalize"
	"github.com/adeoluwa/flocktrack/internal/app/system/status"
	"github.com/adeoluwa/flocktrack/internal/app/system/timeouts"
	"github.com/adeoluwa/flocktrack/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// minPasswordLen is the floor for new and changed passwords.
const minPasswordLen = 8

// Hasher turns a plaintext password into a stored hash. Satisfied by
// the bcrypt wrapper wired in at bootstrap.
type Hasher func(plain string) (string, error)

// Handler exposes admin CRUD for user accounts. Role assignments are
// validated against the closed role set here; role changes initiated
// by the users themselves go through the position-change workflow
// instead.
type Handler struct {
	Users *userstore.Store
	Hash  Hasher
	Log   *zap.Logger
}

// NewHandler constructs a users handler.
func NewHandler(db *mongo.Database, hash Hasher, logger *zap.Logger) *Handler {
	return &Handler{Users: userstore.New(db), Hash: hash, Log: logger}
}

type createRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
	EntityID string `json:"entity_id"`
}

type updateRequest struct {
	FullName *string `json:"full_name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	Status   *string `json:"status"`
}

type roleRequest struct {
	Role     string `json:"role"`
	EntityID string `json:"entity_id"`
}

// HandleCreate processes POST /users.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	if req.FullName == "" || normalize.Email(req.Email) == "" {
		httpjson.WriteValidation(w, h.Log, "full_name and email are required")
		return
	}
	if len(req.Password) < minPasswordLen {
		httpjson.WriteValidation(w, h.Log, "password must be at least %d characters", minPasswordLen)
		return
	}
	if !models.ValidRole(req.Role) {
		httpjson.WriteValidation(w, h.Log, "unknown role %q", req.Role)
		return
	}
	var entityID *primitive.ObjectID
	if models.RoleNeedsEntity(req.Role) {
		if req.EntityID == "" {
			httpjson.WriteValidation(w, h.Log, "role %s requires an entity_id", req.Role)
			return
		}
		id, err := shared.PathID(req.EntityID)
		if err != nil {
			httpjson.WriteError(w, h.Log, err)
			return
		}
		entityID = &id
	}

	hash, err := h.Hash(req.Password)
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	u, err := h.Users.Create(ctx, models.User{
		FullName:     req.FullName,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         req.Role,
		EntityID:     entityID,
		Status:       status.Active,
	})
	if err != nil {
		httpjson.WriteError(w, h.Log, mapStoreErr(err))
		return
	}
	h.Log.Info("user created",
		zap.String("user_id", u.ID.Hex()),
		zap.String("role", u.Role))
	httpjson.Write(w, http.StatusCreated, u)
}

// HandleGet processes GET /users/{id}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := shared.PathID(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		httpjson.WriteError(w, h.Log, mapStoreErr(err))
		return
	}
	httpjson.Write(w, http.StatusOK, u)
}

// HandleList processes GET /users with an optional ?role= filter.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	role := r.URL.Query().Get("role")
	if role != "" && !models.ValidRole(role) {
		httpjson.WriteValidation(w, h.Log, "unknown role %q", role)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	out, err := h.Users.List(ctx, role)
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	if out == nil {
		out = []models.User{}
	}
	httpjson.Write(w, http.StatusOK, map[string]any{"users": out})
}

// HandleUpdate processes POST /users/{id}. Absent fields are left
// unchanged; a present password is re-hashed.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := shared.PathID(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	var req updateRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	if req.Status != nil && !status.IsValid(normalize.Status(*req.Status)) {
		httpjson.WriteValidation(w, h.Log, "status must be %q or %q", status.Active, status.Disabled)
		return
	}

	upd := userstore.Update{
		FullName: req.FullName,
		Email:    req.Email,
		Status:   req.Status,
	}
	if req.Password != nil {
		if len(*req.Password) < minPasswordLen {
			httpjson.WriteValidation(w, h.Log, "password must be at least %d characters", minPasswordLen)
			return
		}
		hash, err := h.Hash(*req.Password)
		if err != nil {
			httpjson.WriteError(w, h.Log, err)
			return
		}
		upd.PasswordHash = &hash
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Users.Apply(ctx, id, upd); err != nil {
		httpjson.WriteError(w, h.Log, mapStoreErr(err))
		return
	}
	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		httpjson.WriteError(w, h.Log, mapStoreErr(err))
		return
	}
	httpjson.Write(w, http.StatusOK, u)
}

// HandleSetRole processes POST /users/{id}/role, assigning a role and
// its owning entity directly. This is the admin override next to the
// position-change workflow.
func (h *Handler) HandleSetRole(w http.ResponseWriter, r *http.Request) {
	id, err := shared.PathID(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	var req roleRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	if !models.ValidRole(req.Role) {
		httpjson.WriteValidation(w, h.Log, "unknown role %q", req.Role)
		return
	}
	var entityID *primitive.ObjectID
	if models.RoleNeedsEntity(req.Role) {
		if req.EntityID == "" {
			httpjson.WriteValidation(w, h.Log, "role %s requires an entity_id", req.Role)
			return
		}
		eid, err := shared.PathID(req.EntityID)
		if err != nil {
			httpjson.WriteError(w, h.Log, err)
			return
		}
		entityID = &eid
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Users.SetRoleEntity(ctx, id, req.Role, entityID); err != nil {
		httpjson.WriteError(w, h.Log, mapStoreErr(err))
		return
	}
	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		httpjson.WriteError(w, h.Log, mapStoreErr(err))
		return
	}
	h.Log.Info("user role set",
		zap.String("user_id", id.Hex()),
		zap.String("role", req.Role))
	httpjson.Write(w, http.StatusOK, u)
}

// HandleDelete processes POST /users/{id}/delete.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := shared.PathID(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	n, err := h.Users.Delete(ctx, id)
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	if n == 0 {
		httpjson.WriteError(w, h.Log, apperr.NotFound("user"))
		return
	}
	h.Log.Info("user deleted", zap.String("user_id", id.Hex()))
	httpjson.Write(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func mapStoreErr(err error) error {
	switch {
	case errors.Is(err, userstore.ErrDuplicateEmail):
		return apperr.Conflict("a user with this email already exists")
	case errors.Is(err, mongo.ErrNoDocuments):
		return apperr.NotFound("user")
	}
	return err
}
