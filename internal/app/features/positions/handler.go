// internal/app/features/positions/handler.go
package positions

import (
	"context"
	"net/http"

	positionengine "github.com/adeoluwa/flocktrack/internal/app/engine/positions"
	"github.com/adeoluwa/flocktrack/internal/app/features/shared"
	"github.com/adeoluwa/flocktrack/internal/app/system/authz"
	"github.com/adeoluwa/flocktrack/internal/app/system/httpjson"
	"github.com/adeoluwa/flocktrack/internal/app/system/timeouts"
	"github.com/adeoluwa/flocktrack/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Handler exposes the position-change workflow over JSON.
type Handler struct {
	Engine *positionengine.Engine
	Zones  authz.ZoneLookup
	Log    *zap.Logger
}

// NewHandler constructs a positions handler.
func NewHandler(engine *positionengine.Engine, zones authz.ZoneLookup, logger *zap.Logger) *Handler {
	return &Handler{Engine: engine, Zones: zones, Log: logger}
}

type requestRequest struct {
	DesiredRole     string `json:"desired_role"`
	DesiredEntityID string `json:"desired_entity_id"`
}

type reviewRequest struct {
	Decision string `json:"decision"`
	Reason   string `json:"reason"`
}

// HandleRequest processes POST /positions.
func (h *Handler) HandleRequest(w http.ResponseWriter, r *http.Request) {
	var req requestRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	var entityID *primitive.ObjectID
	if req.DesiredEntityID != "" {
		id, err := shared.PathID(req.DesiredEntityID)
		if err != nil {
			httpjson.WriteError(w, h.Log, err)
			return
		}
		entityID = &id
	}

	ctx, cancel := h.opCtx(r)
	defer cancel()

	actor, err := shared.Actor(r, h.Zones)
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	out, err := h.Engine.Request(ctx, actor, req.DesiredRole, entityID)
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	httpjson.Write(w, http.StatusCreated, out)
}

// HandleReview processes POST /positions/{id}/review. The decision is
// "approved" or "rejected"; a rejection carries a reason.
func (h *Handler) HandleReview(w http.ResponseWriter, r *http.Request) {
	id, err := shared.PathID(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	var req reviewRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}

	ctx, cancel := h.opCtx(r)
	defer cancel()

	actor, err := shared.Actor(r, h.Zones)
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}

	var out *models.PositionChangeRequest
	switch req.Decision {
	case models.PositionApproved:
		out, err = h.Engine.Approve(ctx, actor, id)
	case models.PositionRejected:
		out, err = h.Engine.Reject(ctx, actor, id, req.Reason)
	default:
		httpjson.WriteValidation(w, h.Log, "decision must be %q or %q",
			models.PositionApproved, models.PositionRejected)
		return
	}
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	httpjson.Write(w, http.StatusOK, out)
}

// HandleList processes GET /positions with an optional ?status=
// filter. Admins see every request; everyone else sees their own.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	f := positionengine.ListFilter{Status: r.URL.Query().Get("status")}

	ctx, cancel := h.opCtx(r)
	defer cancel()

	actor, err := shared.Actor(r, h.Zones)
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	out, err := h.Engine.List(ctx, actor, f)
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	if out == nil {
		out = []models.PositionChangeRequest{}
	}
	httpjson.Write(w, http.StatusOK, map[string]any{"requests": out})
}

func (h *Handler) opCtx(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), timeouts.Medium())
}
