// internal/app/features/centres/handler.go
package centres

import (
	"context"
	"errors"
	"net/http"

	"github.com/adeoluwa/flocktrack/internal/app/features/shared"
	areastore "github.com/adeoluwa/flocktrack/internal/app/store/areas"
	centrestore "github.com/adeoluwa/flocktrack/internal/app/store/centres"
	"github.com/adeoluwa/flocktrack/internal/app/system/apperr"
	"github.com/adeoluwa/flocktrack/internal/app/system/httpjson"
	"github.com/adeoluwa/flocktrack/internal/app/system/timeouts"
	"github.com/adeoluwa/flocktrack/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler exposes admin CRUD for centres, the leaf units that submit
// weekly reports.
type Handler struct {
	Centres *centrestore.Store
	Areas   *areastore.Store
	Log     *zap.Logger
}

// NewHandler constructs a centres handler.
func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		Centres: centrestore.New(db),
		Areas:   areastore.New(db),
		Log:     logger,
	}
}

type centreRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	City    string `json:"city"`
	AreaID  string `json:"area_id"`
}

// HandleCreate processes POST /centres.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req centreRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	if req.Name == "" || req.AreaID == "" {
		httpjson.WriteValidation(w, h.Log, "name and area_id are required")
		return
	}
	areaID, err := shared.PathID(req.AreaID)
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.areaExists(ctx, areaID); err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	c, err := h.Centres.Create(ctx, models.Centre{
		Name:    req.Name,
		Address: req.Address,
		City:    req.City,
		AreaID:  areaID,
	})
	if err != nil {
		httpjson.WriteError(w, h.Log, mapStoreErr(err))
		return
	}
	h.Log.Info("centre created",
		zap.String("centre_id", c.ID.Hex()),
		zap.String("area_id", areaID.Hex()))
	httpjson.Write(w, http.StatusCreated, c)
}

// HandleGet processes GET /centres/{id}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := shared.PathID(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	c, err := h.Centres.GetByID(ctx, id)
	if err != nil {
		httpjson.WriteError(w, h.Log, mapStoreErr(err))
		return
	}
	httpjson.Write(w, http.StatusOK, c)
}

// HandleList processes GET /centres with an optional ?area_id= filter.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	var areaID *primitive.ObjectID
	if raw := r.URL.Query().Get("area_id"); raw != "" {
		id, err := shared.PathID(raw)
		if err != nil {
			httpjson.WriteError(w, h.Log, err)
			return
		}
		areaID = &id
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	out, err := h.Centres.List(ctx, areaID)
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	if out == nil {
		out = []models.Centre{}
	}
	httpjson.Write(w, http.StatusOK, map[string]any{"centres": out})
}

// HandleUpdate processes POST /centres/{id}. Empty fields are left
// unchanged.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := shared.PathID(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	var req centreRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	upd := models.Centre{Name: req.Name, Address: req.Address, City: req.City}
	if req.AreaID != "" {
		areaID, err := shared.PathID(req.AreaID)
		if err != nil {
			httpjson.WriteError(w, h.Log, err)
			return
		}
		if err := h.areaExists(ctx, areaID); err != nil {
			httpjson.WriteError(w, h.Log, err)
			return
		}
		upd.AreaID = areaID
	}
	if err := h.Centres.Update(ctx, id, upd); err != nil {
		httpjson.WriteError(w, h.Log, mapStoreErr(err))
		return
	}
	c, err := h.Centres.GetByID(ctx, id)
	if err != nil {
		httpjson.WriteError(w, h.Log, mapStoreErr(err))
		return
	}
	httpjson.Write(w, http.StatusOK, c)
}

// HandleDelete processes POST /centres/{id}/delete.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := shared.PathID(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	n, err := h.Centres.Delete(ctx, id)
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	if n == 0 {
		httpjson.WriteError(w, h.Log, apperr.NotFound("centre"))
		return
	}
	h.Log.Info("centre deleted", zap.String("centre_id", id.Hex()))
	httpjson.Write(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) areaExists(ctx context.Context, id primitive.ObjectID) error {
	if _, err := h.Areas.GetByID(ctx, id); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return apperr.NotFound("area")
		}
		return err
	}
	return nil
}

func mapStoreErr(err error) error {
	switch {
	case errors.Is(err, centrestore.ErrDuplicateCentre):
		return apperr.Conflict("a centre with this name already exists in the area")
	case errors.Is(err, mongo.ErrNoDocuments):
		return apperr.NotFound("centre")
	}
	return err
}
