// internal/app/features/zones/handler.go
package zones

import (
	"context"
	"errors"
	"net/http"

	"github.com/adeoluwa/flocktrack/internal/app/features/shared"
	areastore "github.com/adeoluwa/flocktrack/internal/app/store/areas"
	districtstore "github.com/adeoluwa/flocktrack/internal/app/store/districts"
	zonestore "github.com/adeoluwa/flocktrack/internal/app/store/zones"
	"github.com/adeoluwa/flocktrack/internal/app/system/apperr"
	"github.com/adeoluwa/flocktrack/internal/app/system/httpjson"
	"github.com/adeoluwa/flocktrack/internal/app/system/timeouts"
	"github.com/adeoluwa/flocktrack/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler exposes admin CRUD for zonal supervisors. A zone spans a set
// of areas that must all belong to the zone's district; that invariant
// is enforced on every create and update.
type Handler struct {
	Zones     *zonestore.Store
	Areas     *areastore.Store
	Districts *districtstore.Store
	Log       *zap.Logger
}

// NewHandler constructs a zones handler.
func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		Zones:     zonestore.New(db),
		Areas:     areastore.New(db),
		Districts: districtstore.New(db),
		Log:       logger,
	}
}

type zoneRequest struct {
	Name       string   `json:"name"`
	DistrictID string   `json:"district_id"`
	AreaIDs    []string `json:"area_ids"`
}

// HandleCreate processes POST /zones.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req zoneRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	if req.Name == "" || req.DistrictID == "" {
		httpjson.WriteValidation(w, h.Log, "name and district_id are required")
		return
	}
	if len(req.AreaIDs) == 0 {
		httpjson.WriteValidation(w, h.Log, "a zone must span at least one area")
		return
	}
	districtID, err := shared.PathID(req.DistrictID)
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	areaIDs, err := parseIDs(req.AreaIDs)
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if _, err := h.Districts.GetByID(ctx, districtID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			err = apperr.NotFound("district")
		}
		httpjson.WriteError(w, h.Log, err)
		return
	}
	if err := h.checkAreaSet(ctx, districtID, areaIDs); err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}

	z, err := h.Zones.Create(ctx, models.ZonalSupervisor{
		Name:       req.Name,
		DistrictID: districtID,
		AreaIDs:    areaIDs,
	})
	if err != nil {
		httpjson.WriteError(w, h.Log, mapStoreErr(err))
		return
	}
	h.Log.Info("zone created",
		zap.String("zone_id", z.ID.Hex()),
		zap.String("district_id", districtID.Hex()),
		zap.Int("areas", len(areaIDs)))
	httpjson.Write(w, http.StatusCreated, z)
}

// HandleGet processes GET /zones/{id}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := shared.PathID(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	z, err := h.Zones.GetByID(ctx, id)
	if err != nil {
		httpjson.WriteError(w, h.Log, mapStoreErr(err))
		return
	}
	httpjson.Write(w, http.StatusOK, z)
}

// HandleList processes GET /zones with an optional ?district_id=
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

	out, err := h.Zones.List(ctx, districtID)
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	if out == nil {
		out = []models.ZonalSupervisor{}
	}
	httpjson.Write(w, http.StatusOK, map[string]any{"zones": out})
}

// HandleUpdate processes POST /zones/{id}. Empty fields are left
// unchanged; a new area set is checked against whichever district the
// zone ends up in.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := shared.PathID(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	var req zoneRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	current, err := h.Zones.GetByID(ctx, id)
	if err != nil {
		httpjson.WriteError(w, h.Log, mapStoreErr(err))
		return
	}

	var upd models.ZonalSupervisor
	upd.Name = req.Name

	districtID := current.DistrictID
	if req.DistrictID != "" {
		districtID, err = shared.PathID(req.DistrictID)
		if err != nil {
			httpjson.WriteError(w, h.Log, err)
			return
		}
		if _, err := h.Districts.GetByID(ctx, districtID); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				err = apperr.NotFound("district")
			}
			httpjson.WriteError(w, h.Log, err)
			return
		}
		upd.DistrictID = districtID
	}

	areaIDs := current.AreaIDs
	if req.AreaIDs != nil {
		if len(req.AreaIDs) == 0 {
			httpjson.WriteValidation(w, h.Log, "a zone must span at least one area")
			return
		}
		areaIDs, err = parseIDs(req.AreaIDs)
		if err != nil {
			httpjson.WriteError(w, h.Log, err)
			return
		}
		upd.AreaIDs = areaIDs
	}
	if err := h.checkAreaSet(ctx, districtID, areaIDs); err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}

	if err := h.Zones.Update(ctx, id, upd); err != nil {
		httpjson.WriteError(w, h.Log, mapStoreErr(err))
		return
	}
	z, err := h.Zones.GetByID(ctx, id)
	if err != nil {
		httpjson.WriteError(w, h.Log, mapStoreErr(err))
		return
	}
	httpjson.Write(w, http.StatusOK, z)
}

// HandleDelete processes POST /zones/{id}/delete.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := shared.PathID(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	n, err := h.Zones.Delete(ctx, id)
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	if n == 0 {
		httpjson.WriteError(w, h.Log, apperr.NotFound("zone"))
		return
	}
	h.Log.Info("zone deleted", zap.String("zone_id", id.Hex()))
	httpjson.Write(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// checkAreaSet verifies every area id exists inside the district.
func (h *Handler) checkAreaSet(ctx context.Context, districtID primitive.ObjectID, areaIDs []primitive.ObjectID) error {
	ok, err := h.Areas.ExistAll(ctx, districtID, areaIDs)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.Validation("every area in the set must exist in the zone's district")
	}
	return nil
}

func parseIDs(raw []string) ([]primitive.ObjectID, error) {
	out := make([]primitive.ObjectID, 0, len(raw))
	seen := make(map[primitive.ObjectID]bool, len(raw))
	for _, r := range raw {
		id, err := shared.PathID(r)
		if err != nil {
			return nil, err
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out, nil
}

func mapStoreErr(err error) error {
	switch {
	case errors.Is(err, zonestore.ErrDuplicateZone):
		return apperr.Conflict("a zone with this name already exists in the district")
	case errors.Is(err, mongo.ErrNoDocuments):
		return apperr.NotFound("zone")
	}
	return err
}
