// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role values for User.Role. The owning-entity reference must match the
// role: a centre_leader references a Centre, an area_supervisor an
// AreaSupervisor, a zonal_supervisor a ZonalSupervisor, a district_pastor
// a District. Admins carry no entity reference.
const (
	RoleCentreLeader    = "centre_leader"
	RoleAreaSupervisor  = "area_supervisor"
	RoleZonalSupervisor = "zonal_supervisor"
	RoleDistrictPastor  = "district_pastor"
	RoleAdmin           = "admin"
)

// User represents every actor in the system, from centre leaders up to
// admins.
type User struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	FullName     string              `bson:"full_name" json:"full_name"`
	FullNameCI   string              `bson:"full_name_ci" json:"-"`
	Email        string              `bson:"email" json:"email"`
	PasswordHash string              `bson:"password_hash" json:"-"`
	Role         string              `bson:"role" json:"role"`
	EntityID     *primitive.ObjectID `bson:"entity_id,omitempty" json:"entity_id,omitempty"`
	Status       string              `bson:"status,omitempty" json:"status,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// ValidRole reports whether role is one of the closed role set.
func ValidRole(role string) bool {
	switch role {
	case RoleCentreLeader, RoleAreaSupervisor, RoleZonalSupervisor, RoleDistrictPastor, RoleAdmin:
		return true
	}
	return false
}

// RoleNeedsEntity reports whether a role must carry an owning-entity
// reference. Admins are the only role without one.
func RoleNeedsEntity(role string) bool {
	return ValidRole(role) && role != RoleAdmin
}
