// Package shared holds small helpers used across feature handlers.
package shared

import (
	"net/http"

	"github.com/adeoluwa/flocktrack/internal/app/system/apperr"
	"github.com/adeoluwa/flocktrack/internal/app/system/auth"
	"github.com/adeoluwa/flocktrack/internal/app/system/authz"
	"github.com/adeoluwa/flocktrack/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Actor builds the authorization-gate actor from the session user,
// resolving the zone area set for zonal supervisors. Handlers behind
// RequireSignedIn can rely on a session user being present; a missing
// one still surfaces as a denial rather than a panic.
func Actor(r *http.Request, zones authz.ZoneLookup) (authz.Actor, error) {
	su, ok := auth.CurrentUser(r)
	if !ok {
		return authz.Actor{}, apperr.Authorization("no session user")
	}
	id, err := primitive.ObjectIDFromHex(su.ID)
	if err != nil {
		return authz.Actor{}, apperr.Authorization("malformed session user id")
	}
	u := models.User{ID: id, Role: su.Role}
	if su.EntityID != "" {
		eid, err := primitive.ObjectIDFromHex(su.EntityID)
		if err != nil {
			return authz.Actor{}, apperr.Authorization("malformed session entity id")
		}
		u.EntityID = &eid
	}
	return authz.LoadActor(r.Context(), u, zones)
}

// PathID parses a hex ObjectID URL parameter, surfacing a validation
// error for malformed ids.
func PathID(raw string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, apperr.Validation("malformed id %q", raw)
	}
	return id, nil
}
