// internal/domain/models/position_change.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PositionChangeRequest status values. pending is the only non-terminal
// status.
const (
	PositionPending  = "pending"
	PositionApproved = "approved"
	PositionRejected = "rejected"
)

// PositionChangeRequest asks that a user's role and owning entity be
// changed. The current role/entity pair is snapshotted at request time
// for audit visibility; approval applies the desired pair to the user.
type PositionChangeRequest struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID primitive.ObjectID `bson:"user_id" json:"user_id"`

	CurrentRole     string              `bson:"current_role" json:"current_role"`
	CurrentEntityID *primitive.ObjectID `bson:"current_entity_id,omitempty" json:"current_entity_id,omitempty"`
	DesiredRole     string              `bson:"desired_role" json:"desired_role"`
	DesiredEntityID *primitive.ObjectID `bson:"desired_entity_id,omitempty" json:"desired_entity_id,omitempty"`

	Status          string              `bson:"status" json:"status"`
	ReviewedByID    *primitive.ObjectID `bson:"reviewed_by_id,omitempty" json:"reviewed_by_id,omitempty"`
	ReviewedAt      *time.Time          `bson:"reviewed_at,omitempty" json:"reviewed_at,omitempty"`
	RejectionReason string              `bson:"rejection_reason,omitempty" json:"rejection_reason,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
