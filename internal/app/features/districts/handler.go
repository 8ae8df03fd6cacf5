// internal/app/features/districts/handler.go
package districts

import (
	"context"
	"errors"
	"net/http"

	"github.com/adeoluwa/flocktrack/internal/app/features/shared"
	districtstore "github.com/adeoluwa/flocktrack/internal/app/store/districts"
	"github.com/adeoluwa/flocktrack/internal/app/system/apperr"
	"github.com/adeoluwa/flocktrack/internal/app/system/httpjson"
	"github.com/adeoluwa/flocktrack/internal/app/system/timeouts"
	"github.com/adeoluwa/flocktrack/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler exposes admin CRUD for districts, the roots of the
// hierarchy.
type Handler struct {
	Store *districtstore.Store
	Log   *zap.Logger
}

// NewHandler constructs a districts handler.
func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{Store: districtstore.New(db), Log: logger}
}

type districtRequest struct {
	Number int    `json:"number"`
	Name   string `json:"name"`
}

// HandleCreate processes POST /districts.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req districtRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	if req.Name == "" {
		httpjson.WriteValidation(w, h.Log, "name is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	d, err := h.Store.Create(ctx, models.District{Number: req.Number, Name: req.Name})
	if err != nil {
		httpjson.WriteError(w, h.Log, mapStoreErr(err))
		return
	}
	h.Log.Info("district created",
		zap.String("district_id", d.ID.Hex()),
		zap.Int("number", d.Number))
	httpjson.Write(w, http.StatusCreated, d)
}

// HandleGet processes GET /districts/{id}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := shared.PathID(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	d, err := h.Store.GetByID(ctx, id)
	if err != nil {
		httpjson.WriteError(w, h.Log, mapStoreErr(err))
		return
	}
	httpjson.Write(w, http.StatusOK, d)
}

// HandleList processes GET /districts.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	out, err := h.Store.List(ctx)
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	if out == nil {
		out = []models.District{}
	}
	httpjson.Write(w, http.StatusOK, map[string]any{"districts": out})
}

// HandleUpdate processes POST /districts/{id}. Empty fields are left
// unchanged.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := shared.PathID(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	var req districtRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Store.Update(ctx, id, models.District{Number: req.Number, Name: req.Name}); err != nil {
		httpjson.WriteError(w, h.Log, mapStoreErr(err))
		return
	}
	d, err := h.Store.GetByID(ctx, id)
	if err != nil {
		httpjson.WriteError(w, h.Log, mapStoreErr(err))
		return
	}
	httpjson.Write(w, http.StatusOK, d)
}

// HandleDelete processes POST /districts/{id}/delete.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := shared.PathID(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	n, err := h.Store.Delete(ctx, id)
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	if n == 0 {
		httpjson.WriteError(w, h.Log, apperr.NotFound("district"))
		return
	}
	h.Log.Info("district deleted", zap.String("district_id", id.Hex()))
	httpjson.Write(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func mapStoreErr(err error) error {
	switch {
	case errors.Is(err, districtstore.ErrBadNumber):
		return apperr.Validation("district number must be between %d and %d",
			models.MinDistrictNumber, models.MaxDistrictNumber)
	case errors.Is(err, districtstore.ErrDuplicateDistrict):
		return apperr.Conflict("a district with this number or name already exists")
	case errors.Is(err, mongo.ErrNoDocuments):
		return apperr.NotFound("district")
	}
	return err
}
