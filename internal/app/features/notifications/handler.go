// internal/app/features/notifications/handler.go
package notifications

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/adeoluwa/flocktrack/internal/app/features/shared"
	notificationstore "github.com/adeoluwa/flocktrack/internal/app/store/notifications"
	"github.com/adeoluwa/flocktrack/internal/app/system/apperr"
	"github.com/adeoluwa/flocktrack/internal/app/system/auth"
	"github.com/adeoluwa/flocktrack/internal/app/system/httpjson"
	"github.com/adeoluwa/flocktrack/internal/app/system/timeouts"
	"github.com/adeoluwa/flocktrack/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// defaultListLimit bounds an unqualified notification listing.
const defaultListLimit = 50

// Handler serves a user's own notification feed. Every query is keyed
// by the session user's id, so one recipient can never read or mark
// another's notifications.
type Handler struct {
	Store *notificationstore.Store
	Log   *zap.Logger
}

// NewHandler constructs a notifications handler.
func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{Store: notificationstore.New(db), Log: logger}
}

// HandleList processes GET /notifications with optional ?unread=true
// and ?limit= query parameters.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	recipientID, err := h.recipient(r)
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	unreadOnly := r.URL.Query().Get("unread") == "true"
	limit := int64(defaultListLimit)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 1 {
			httpjson.WriteValidation(w, h.Log, "limit must be a positive integer")
			return
		}
		limit = n
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	items, err := h.Store.ListByRecipient(ctx, recipientID, unreadOnly, limit)
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	if items == nil {
		items = []models.Notification{}
	}
	httpjson.Write(w, http.StatusOK, map[string]any{"notifications": items})
}

// HandleUnreadCount processes GET /notifications/unread_count.
func (h *Handler) HandleUnreadCount(w http.ResponseWriter, r *http.Request) {
	recipientID, err := h.recipient(r)
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	count, err := h.Store.UnreadCount(ctx, recipientID)
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]int64{"unread": count})
}

// HandleMarkRead processes POST /notifications/{id}/read.
func (h *Handler) HandleMarkRead(w http.ResponseWriter, r *http.Request) {
	recipientID, err := h.recipient(r)
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	id, err := shared.PathID(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Store.MarkRead(ctx, id, recipientID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			err = apperr.NotFound("notification")
		}
		httpjson.WriteError(w, h.Log, err)
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]string{"status": "read"})
}

// HandleMarkAllRead processes POST /notifications/read_all.
func (h *Handler) HandleMarkAllRead(w http.ResponseWriter, r *http.Request) {
	recipientID, err := h.recipient(r)
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	updated, err := h.Store.MarkAllRead(ctx, recipientID)
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]int64{"updated": updated})
}

func (h *Handler) recipient(r *http.Request) (primitive.ObjectID, error) {
	su, ok := auth.CurrentUser(r)
	if !ok {
		return primitive.NilObjectID, apperr.Authorization("no session user")
	}
	id, err := primitive.ObjectIDFromHex(su.ID)
	if err != nil {
		return primitive.NilObjectID, apperr.Authorization("malformed session user id")
	}
	return id, nil
}
