// internal/app/features/reports/handler.go
package reports

import (
	"context"
	"net/http"

	reportengine "github.com/adeoluwa/flocktrack/internal/app/engine/reports"
	"github.com/adeoluwa/flocktrack/internal/app/features/shared"
	"github.com/adeoluwa/flocktrack/internal/app/system/authz"
	"github.com/adeoluwa/flocktrack/internal/app/system/httpjson"
	"github.com/adeoluwa/flocktrack/internal/app/system/timeouts"
	"github.com/adeoluwa/flocktrack/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler exposes the weekly-report lifecycle over JSON. All routing,
// decoding, and status mapping lives here; the lifecycle rules live in
// the engine.
type Handler struct {
	Engine *reportengine.Engine
	Zones  authz.ZoneLookup
	Log    *zap.Logger
}

// NewHandler constructs a reports handler.
func NewHandler(engine *reportengine.Engine, zones authz.ZoneLookup, logger *zap.Logger) *Handler {
	return &Handler{Engine: engine, Zones: zones, Log: logger}
}

type submitRequest struct {
	CentreID string               `json:"centre_id"`
	Week     string               `json:"week"`
	Payload  models.ReportPayload `json:"payload"`
}

type editRequest struct {
	Payload models.ReportPayload `json:"payload"`
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

// HandleSubmit processes POST /reports.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	centreID, err := shared.PathID(req.CentreID)
	if err != nil {
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
	report, err := h.Engine.Submit(ctx, actor, centreID, req.Week, req.Payload)
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	httpjson.Write(w, http.StatusCreated, report)
}

// HandleGet processes GET /reports/{id}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := shared.PathID(chi.URLParam(r, "id"))
	if err != nil {
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
	report, err := h.Engine.Get(ctx, actor, id)
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	httpjson.Write(w, http.StatusOK, report)
}

// HandleList processes GET /reports with optional ?week= and ?status=
// filters. The result set is always scoped to the caller's branch of
// the hierarchy.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	f := reportengine.ListFilter{
		Week:   r.URL.Query().Get("week"),
		Status: r.URL.Query().Get("status"),
	}

	ctx, cancel := h.opCtx(r)
	defer cancel()

	actor, err := shared.Actor(r, h.Zones)
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	reports, err := h.Engine.List(ctx, actor, f)
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	if reports == nil {
		reports = []models.WeeklyReport{}
	}
	httpjson.Write(w, http.StatusOK, map[string]any{"reports": reports})
}

// HandleEdit processes PUT /reports/{id}. The submitting centre may
// edit while the report is pending; admins may edit at any status.
func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	id, err := shared.PathID(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	var req editRequest
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
	report, err := h.Engine.Edit(ctx, actor, id, req.Payload)
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	httpjson.Write(w, http.StatusOK, report)
}

// HandleApprove processes POST /reports/{id}/approve. The approval
// stage is inferred from the caller's role.
func (h *Handler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	id, err := shared.PathID(chi.URLParam(r, "id"))
	if err != nil {
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
	report, err := h.Engine.Approve(ctx, actor, id)
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	httpjson.Write(w, http.StatusOK, report)
}

// HandleReject processes POST /reports/{id}/reject.
func (h *Handler) HandleReject(w http.ResponseWriter, r *http.Request) {
	id, err := shared.PathID(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	var req rejectRequest
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
	report, err := h.Engine.Reject(ctx, actor, id, req.Reason)
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	httpjson.Write(w, http.StatusOK, report)
}

func (h *Handler) opCtx(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), timeouts.Medium())
}
