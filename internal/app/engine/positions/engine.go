// Package positions implements the position-change workflow: a user
// requests a new role over a new entity, an admin reviews, and an
// approval applies the change to the user record.
package positions

import (
	"context"
	"errors"
	"time"

	positionchangestore "github.com/adeoluwa/flocktrack/internal/app/store/positionchanges"
	"github.com/adeoluwa/flocktrack/internal/app/system/apperr"
	"github.com/adeoluwa/flocktrack/internal/app/system/authz"
	"github.com/adeoluwa/flocktrack/internal/app/system/sanitize"
	"github.com/adeoluwa/flocktrack/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Repo is the request persistence the engine needs.
type Repo interface {
	Insert(ctx context.Context, req models.PositionChangeRequest) (models.PositionChangeRequest, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.PositionChangeRequest, error)
	Approve(ctx context.Context, id, reviewedBy primitive.ObjectID, at time.Time) (*models.PositionChangeRequest, error)
	Reject(ctx context.Context, id, reviewedBy primitive.ObjectID, reason string, at time.Time) (*models.PositionChangeRequest, error)
	List(ctx context.Context, f positionchangestore.ListFilter) ([]models.PositionChangeRequest, error)
}

// Users loads the requester's record and applies approved changes.
type Users interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	SetRoleEntity(ctx context.Context, id primitive.ObjectID, role string, entityID *primitive.ObjectID) error
}

// Entity sources verify that a desired entity of the right type exists.
type CentreSource interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Centre, error)
}

type AreaSource interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (models.AreaSupervisor, error)
}

type ZoneSource interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (models.ZonalSupervisor, error)
}

type DistrictSource interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (models.District, error)
}

// Events receives review outcomes after they commit.
type Events interface {
	PositionReviewed(ctx context.Context, req *models.PositionChangeRequest)
}

// Engine wires the position-change workflow together.
type Engine struct {
	repo      Repo
	users     Users
	centres   CentreSource
	areas     AreaSource
	zones     ZoneSource
	districts DistrictSource
	events    Events
	log       *zap.Logger
}

// New builds an Engine.
func New(repo Repo, users Users, centres CentreSource, areas AreaSource, zones ZoneSource, districts DistrictSource, events Events, log *zap.Logger) *Engine {
	return &Engine{
		repo:      repo,
		users:     users,
		centres:   centres,
		areas:     areas,
		zones:     zones,
		districts: districts,
		events:    events,
		log:       log,
	}
}

// Request opens a pending position-change request for the actor,
// snapshotting their current role and entity. A user can hold only one
// open request at a time.
func (e *Engine) Request(ctx context.Context, actor authz.Actor, desiredRole string, desiredEntityID *primitive.ObjectID) (*models.PositionChangeRequest, error) {
	if d := authz.CanAct(actor, authz.ActionRequestPositionChange, authz.Scope{}); !d.Allowed {
		return nil, authz.Deny(authz.ActionRequestPositionChange, d)
	}

	if !models.ValidRole(desiredRole) || desiredRole == models.RoleAdmin {
		return nil, apperr.Validation("desired role must be a hierarchy position")
	}
	if desiredEntityID == nil {
		return nil, apperr.Validation("desired role requires a target entity")
	}
	if err := e.entityExists(ctx, desiredRole, *desiredEntityID); err != nil {
		return nil, err
	}

	user, err := e.users.GetByID(ctx, actor.ID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("user")
		}
		return nil, err
	}
	if user.Role == desiredRole && user.EntityID != nil && *user.EntityID == *desiredEntityID {
		return nil, apperr.Validation("requested position matches the current position")
	}

	created, err := e.repo.Insert(ctx, models.PositionChangeRequest{
		UserID:          user.ID,
		CurrentRole:     user.Role,
		CurrentEntityID: user.EntityID,
		DesiredRole:     desiredRole,
		DesiredEntityID: desiredEntityID,
	})
	if err != nil {
		if errors.Is(err, positionchangestore.ErrPendingExists) {
			return nil, apperr.Conflict("a pending position change request already exists")
		}
		return nil, err
	}
	e.log.Info("position change requested",
		zap.String("request_id", created.ID.Hex()),
		zap.String("user_id", user.ID.Hex()),
		zap.String("desired_role", desiredRole))
	return &created, nil
}

// Approve marks a pending request approved and applies the desired role
// and entity to the user.
func (e *Engine) Approve(ctx context.Context, actor authz.Actor, requestID primitive.ObjectID) (*models.PositionChangeRequest, error) {
	if d := authz.CanAct(actor, authz.ActionReviewPositionChange, authz.Scope{}); !d.Allowed {
		return nil, authz.Deny(authz.ActionReviewPositionChange, d)
	}

	pending, err := e.repo.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("position change request")
		}
		return nil, err
	}
	if pending.Status != models.PositionPending {
		return nil, apperr.StateConflict("position change request was already reviewed")
	}

	// The target may have been deleted since the request was filed.
	if pending.DesiredEntityID != nil {
		if err := e.entityExists(ctx, pending.DesiredRole, *pending.DesiredEntityID); err != nil {
			return nil, err
		}
	}

	// Apply the user mutation before the terminal compare-and-set: if
	// the write fails here the request stays pending and the approval
	// can be retried. Reapplying the same role/entity on a retry is a
	// no-op.
	if err := e.users.SetRoleEntity(ctx, pending.UserID, pending.DesiredRole, pending.DesiredEntityID); err != nil {
		e.log.Error("position change could not be applied to the user",
			zap.String("request_id", pending.ID.Hex()),
			zap.String("user_id", pending.UserID.Hex()),
			zap.Error(err))
		return nil, err
	}
	req, err := e.repo.Approve(ctx, requestID, actor.ID, time.Now().UTC())
	if err != nil {
		return nil, mapReviewErr(err)
	}
	e.events.PositionReviewed(ctx, req)
	e.log.Info("position change approved",
		zap.String("request_id", req.ID.Hex()),
		zap.String("user_id", req.UserID.Hex()),
		zap.String("role", req.DesiredRole))
	return req, nil
}

// Reject marks a pending request rejected. The reason is mandatory.
func (e *Engine) Reject(ctx context.Context, actor authz.Actor, requestID primitive.ObjectID, reason string) (*models.PositionChangeRequest, error) {
	if d := authz.CanAct(actor, authz.ActionReviewPositionChange, authz.Scope{}); !d.Allowed {
		return nil, authz.Deny(authz.ActionReviewPositionChange, d)
	}
	reason = sanitize.Text(reason)
	if reason == "" {
		return nil, apperr.Validation("a rejection reason is required")
	}

	req, err := e.repo.Reject(ctx, requestID, actor.ID, reason, time.Now().UTC())
	if err != nil {
		return nil, mapReviewErr(err)
	}
	e.events.PositionReviewed(ctx, req)
	e.log.Info("position change rejected",
		zap.String("request_id", req.ID.Hex()),
		zap.String("user_id", req.UserID.Hex()))
	return req, nil
}

// ListFilter narrows a listing.
type ListFilter struct {
	Status string
}

// List returns position-change requests: admins see every request,
// everyone else sees only their own.
func (e *Engine) List(ctx context.Context, actor authz.Actor, f ListFilter) ([]models.PositionChangeRequest, error) {
	filter := positionchangestore.ListFilter{Status: f.Status}
	if actor.Role != models.RoleAdmin {
		filter.UserID = &actor.ID
	}
	return e.repo.List(ctx, filter)
}

// entityExists verifies the desired entity of the right type exists.
// A missing target is NotFound; an unknown role is Validation.
func (e *Engine) entityExists(ctx context.Context, role string, id primitive.ObjectID) error {
	var err error
	var what string
	switch role {
	case models.RoleCentreLeader:
		what = "centre"
		_, err = e.centres.GetByID(ctx, id)
	case models.RoleAreaSupervisor:
		what = "area supervisor"
		_, err = e.areas.GetByID(ctx, id)
	case models.RoleZonalSupervisor:
		what = "zonal supervisor"
		_, err = e.zones.GetByID(ctx, id)
	case models.RoleDistrictPastor:
		what = "district"
		_, err = e.districts.GetByID(ctx, id)
	default:
		return apperr.Validation("desired role must be a hierarchy position")
	}
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return apperr.NotFound(what)
		}
		return err
	}
	return nil
}

func mapReviewErr(err error) error {
	switch {
	case errors.Is(err, positionchangestore.ErrAlreadyReviewed):
		return apperr.StateConflict("position change request was already reviewed")
	case errors.Is(err, mongo.ErrNoDocuments):
		return apperr.NotFound("position change request")
	default:
		return err
	}
}
