// internal/app/features/areas/handler.go
package areas

import (
	"context"
	"errors"
	"net/http"

	"github.com/adeoluwa/flocktrack/internal/app/features/shared"
	areastore "github.com/adeoluwa/flocktrack/internal/app/store/areas"
	districtstore "github.com/adeoluwa/flocktrack/internal/app/store/districts"
	"github.com/adeoluwa/flocktrack/internal/app/system/apperr"
	"github.com/adeoluwa/flocktrack/internal/app/system/httpjson"
	"github.com/adeoluwa/flocktrack/internal/app/system/timeouts"
	"github.com/adeoluwa/flocktrack/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler exposes admin CRUD for area supervisors. An area always
// references an existing district.
type Handler struct {
	Areas     *areastore.Store
	Districts *districtstore.Store
	Log       *zap.Logger
}

// NewHandler constructs an areas handler.
func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		Areas:     areastore.New(db),
		Districts: districtstore.New(db),
		Log:       logger,
	}
}

type areaRequest struct {
	Name       string `json:"name"`
	DistrictID string `json:"district_id"`
}

// HandleCreate processes POST /areas.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req areaRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	if req.Name == "" || req.DistrictID == "" {
		httpjson.WriteValidation(w, h.Log, "name and district_id are required")
		return
	}
	districtID, err := shared.PathID(req.DistrictID)
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.districtExists(ctx, districtID); err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	a, err := h.Areas.Create(ctx, models.AreaSupervisor{Name: req.Name, DistrictID: districtID})
	if err != nil {
		httpjson.WriteError(w, h.Log, mapStoreErr(err))
		return
	}
	h.Log.Info("area created",
		zap.String("area_id", a.ID.Hex()),
		zap.String("district_id", districtID.Hex()))
	httpjson.Write(w, http.StatusCreated, a)
}

// HandleGet processes GET /areas/{id}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := shared.PathID(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	a, err := h.Areas.GetByID(ctx, id)
	if err != nil {
		httpjson.WriteError(w, h.Log, mapStoreErr(err))
		return
	}
	httpjson.Write(w, http.StatusOK, a)
}

// HandleList processes GET /areas with an optional ?district_id=
// filter.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	var districtID *primitive.ObjectID
	if raw := r.URL.Query().Get("district_id"); raw != "" {
		id, err := shared.PathID(raw)
		if err != nil {
			httpjson.WriteError(w, h.Log, err)
			return
		}
		districtID = &id
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	out, err := h.Areas.List(ctx, districtID)
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	if out == nil {
		out = []models.AreaSupervisor{}
	}
	httpjson.Write(w, http.StatusOK, map[string]any{"areas": out})
}

// HandleUpdate processes POST /areas/{id}. Empty fields are left
// unchanged.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := shared.PathID(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	var req areaRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	var upd models.AreaSupervisor
	upd.Name = req.Name
	if req.DistrictID != "" {
		districtID, err := shared.PathID(req.DistrictID)
		if err != nil {
			httpjson.WriteError(w, h.Log, err)
			return
		}
		if err := h.districtExists(ctx, districtID); err != nil {
			httpjson.WriteError(w, h.Log, err)
			return
		}
		upd.DistrictID = districtID
	}
	if err := h.Areas.Update(ctx, id, upd); err != nil {
		httpjson.WriteError(w, h.Log, mapStoreErr(err))
		return
	}
	a, err := h.Areas.GetByID(ctx, id)
	if err != nil {
		httpjson.WriteError(w, h.Log, mapStoreErr(err))
		return
	}
	httpjson.Write(w, http.StatusOK, a)
}

// HandleDelete processes POST /areas/{id}/delete.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := shared.PathID(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	n, err := h.Areas.Delete(ctx, id)
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	if n == 0 {
		httpjson.WriteError(w, h.Log, apperr.NotFound("area"))
		return
	}
	h.Log.Info("area deleted", zap.String("area_id", id.Hex()))
	httpjson.Write(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) districtExists(ctx context.Context, id primitive.ObjectID) error {
	if _, err := h.Districts.GetByID(ctx, id); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return apperr.NotFound("district")
		}
		return err
	}
	return nil
}

func mapStoreErr(err error) error {
	switch {
	case errors.Is(err, areastore.ErrDuplicateArea):
		return apperr.Conflict("an area with this name already exists in the district")
	case errors.Is(err, mongo.ErrNoDocuments):
		return apperr.NotFound("area")
	}
	return err
}
