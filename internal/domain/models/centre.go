// internal/domain/models/centre.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Centre is the smallest organizational unit; it originates weekly
// reports. Every centre belongs to exactly one area supervisor.
type Centre struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name     string             `bson:"name" json:"name"`
	NameCI   string             `bson:"name_ci" json:"-"`
	Address  string             `bson:"address,omitempty" json:"address,omitempty"`
	City     string             `bson:"city,omitempty" json:"city,omitempty"`
	AreaID   primitive.ObjectID `bson:"area_id" json:"area_id"`
	LeaderID primitive.ObjectID `bson:"leader_id,omitempty" json:"leader_id,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
