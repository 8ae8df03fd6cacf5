// internal/app/features/messages/handler.go
package messages

import (
	"context"
	"errors"
	"net/http"

	"github.com/adeoluwa/flocktrack/internal/app/features/shared"
	messagestore "github.com/adeoluwa/flocktrack/internal/app/store/messages"
	userstore "github.com/adeoluwa/flocktrack/internal/app/store/users"
	"github.com/adeoluwa/flocktrack/internal/app/system/apperr"
	"github.com/adeoluwa/flocktrack/internal/app/system/authz"
	"github.com/adeoluwa/flocktrack/internal/app/system/httpjson"
	"github.com/adeoluwa/flocktrack/internal/app/system/sanitize"
	"github.com/adeoluwa/flocktrack/internal/app/system/timeouts"
	"github.com/adeoluwa/flocktrack/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Events receives the side-channel event after a message commits.
type Events interface {
	MessageSent(ctx context.Context, m *models.Message)
}

// Handler exposes direct messages between users. Sending raises a
// notification for the recipient; listing returns both directions of
// the caller's correspondence.
type Handler struct {
	Store  *messagestore.Store
	Users  *userstore.Store
	Zones  authz.ZoneLookup
	Events Events
	Log    *zap.Logger
}

// NewHandler constructs a messages handler.
func NewHandler(db *mongo.Database, zones authz.ZoneLookup, events Events, logger *zap.Logger) *Handler {
	return &Handler{
		Store:  messagestore.New(db),
		Users:  userstore.New(db),
		Zones:  zones,
		Events: events,
		Log:    logger,
	}
}

type sendRequest struct {
	RecipientID string `json:"recipient_id"`
	Subject     string `json:"subject"`
	Body        string `json:"body"`
}

// HandleSend processes POST /messages.
func (h *Handler) HandleSend(w http.ResponseWriter, r *http.Request) {
	var req sendRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	recipientID, err := shared.PathID(req.RecipientID)
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	body := sanitize.Text(req.Body)
	if body == "" {
		httpjson.WriteValidation(w, h.Log, "message body is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	actor, err := shared.Actor(r, h.Zones)
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	if d := authz.CanAct(actor, authz.ActionSendMessage, authz.Scope{}); !d.Allowed {
		httpjson.WriteError(w, h.Log, authz.Deny(authz.ActionSendMessage, d))
		return
	}
	if recipientID == actor.ID {
		httpjson.WriteError(w, h.Log, apperr.Validation("cannot message yourself"))
		return
	}
	if _, err := h.Users.GetByID(ctx, recipientID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			err = apperr.NotFound("recipient")
		}
		httpjson.WriteError(w, h.Log, err)
		return
	}

	msg, err := h.Store.Insert(ctx, models.Message{
		SenderID:    actor.ID,
		RecipientID: recipientID,
		Subject:     sanitize.Text(req.Subject),
		Body:        body,
	})
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}

	h.Events.MessageSent(ctx, &msg)
	h.Log.Info("message sent",
		zap.String("message_id", msg.ID.Hex()),
		zap.String("sender_id", msg.SenderID.Hex()),
		zap.String("recipient_id", msg.RecipientID.Hex()))

	httpjson.Write(w, http.StatusCreated, msg)
}

// HandleList processes GET /messages, returning messages the caller
// sent or received, newest first.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	actor, err := shared.Actor(r, h.Zones)
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	msgs, err := h.Store.ListForUser(ctx, actor.ID)
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	if msgs == nil {
		msgs = []models.Message{}
	}
	httpjson.Write(w, http.StatusOK, map[string]any{"messages": msgs})
}
