// Package authz is the authorization gate consulted before every
// mutation. A decision combines two axes: a static (action × role)
// policy table, and hierarchy scope membership: the actor's owning
// entity must dominate the resource's ownership chain.
//
// CanAct is a pure function of its inputs; it performs no I/O and is
// safe to call repeatedly. Loading the actor's zone-area set and
// resolving the resource chain happen before the gate (LoadActor and
// the hierarchy directory), so the gate itself stays deterministic.
package authz

import (
	"context"

	"github.com/adeoluwa/flocktrack/internal/app/system/apperr"
	"github.com/adeoluwa/flocktrack/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Action is one of the closed set of gated operations.
type Action string

const (
	ActionSubmitReport          Action = "submit-report"
	ActionAreaApprove           Action = "area-approve"
	ActionDistrictApprove       Action = "district-approve"
	ActionReject                Action = "reject"
	ActionEditReport            Action = "edit-report"
	ActionViewReport            Action = "view-report"
	ActionRequestPositionChange Action = "request-position-change"
	ActionReviewPositionChange  Action = "review-position-change"
	ActionSendMessage           Action = "send-message"
)

// Actor is the acting user, reduced to what the gate needs. For
// zonal supervisors ZoneAreaIDs carries the zone's assigned area set;
// it is empty for every other role.
type Actor struct {
	ID          primitive.ObjectID
	Role        string
	EntityID    primitive.ObjectID
	ZoneAreaIDs []primitive.ObjectID
}

// Scope is a report's resolved ownership chain. The zero Scope marks
// actions that have no resource scope (position requests, messages).
type Scope struct {
	CentreID   primitive.ObjectID
	AreaID     primitive.ObjectID
	DistrictID primitive.ObjectID
}

// IsZero reports whether no chain was attached to the decision.
func (s Scope) IsZero() bool {
	return s.CentreID.IsZero() && s.AreaID.IsZero() && s.DistrictID.IsZero()
}

// DenyReason distinguishes the two failure axes for logs and metrics.
// The HTTP boundary collapses both to a single generic denial.
type DenyReason string

const (
	DenyWrongRole  DenyReason = "wrong_role"
	DenyOutOfScope DenyReason = "out_of_scope"
)

// Decision is the gate's answer.
type Decision struct {
	Allowed bool
	Reason  DenyReason
}

func allow() Decision            { return Decision{Allowed: true} }
func deny(r DenyReason) Decision { return Decision{Reason: r} }

// CanAct decides whether actor may perform action on the resource
// owned by scope.
func CanAct(actor Actor, action Action, scope Scope) Decision {
	roles, known := rolePolicy[action]
	if !known {
		return deny(DenyWrongRole)
	}
	if actor.Role == models.RoleAdmin {
		// Admin passes every action without a scope check.
		return allow()
	}
	if !roles[actor.Role] {
		return deny(DenyWrongRole)
	}
	if scope.IsZero() {
		return allow()
	}
	if !inScope(actor, scope) {
		return deny(DenyOutOfScope)
	}
	return allow()
}

// inScope reports whether the actor's owning entity dominates the
// resource chain.
func inScope(actor Actor, scope Scope) bool {
	switch actor.Role {
	case models.RoleCentreLeader:
		return actor.EntityID == scope.CentreID
	case models.RoleAreaSupervisor:
		return actor.EntityID == scope.AreaID
	case models.RoleZonalSupervisor:
		for _, id := range actor.ZoneAreaIDs {
			if id == scope.AreaID {
				return true
			}
		}
		return false
	case models.RoleDistrictPastor:
		return actor.EntityID == scope.DistrictID
	}
	return false
}

// Deny converts a negative decision into the boundary's generic
// authorization error, keeping the axis detail on the wrapped error
// for logging.
func Deny(action Action, d Decision) error {
	return apperr.Authorization(string(action) + ": " + string(d.Reason))
}

// ZoneLookup resolves a zonal supervisor's assigned area set.
type ZoneLookup interface {
	AreaIDs(ctx context.Context, zoneID primitive.ObjectID) ([]primitive.ObjectID, error)
}

// LoadActor builds a gate Actor from a user record, resolving the zone
// area set for zonal supervisors. Non-admin users without an entity
// reference produce an actor that fails every scope check.
func LoadActor(ctx context.Context, u models.User, zones ZoneLookup) (Actor, error) {
	a := Actor{ID: u.ID, Role: u.Role}
	if u.EntityID != nil {
		a.EntityID = *u.EntityID
	}
	if u.Role == models.RoleZonalSupervisor && !a.EntityID.IsZero() {
		ids, err := zones.AreaIDs(ctx, a.EntityID)
		if err != nil {
			return Actor{}, err
		}
		a.ZoneAreaIDs = ids
	}
	return a, nil
}
