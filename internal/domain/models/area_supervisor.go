// internal/domain/models/area_supervisor.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AreaSupervisor is the first approval stage above a set of centres.
// Every area belongs to exactly one district.
type AreaSupervisor struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name       string             `bson:"name" json:"name"`
	NameCI     string             `bson:"name_ci" json:"-"`
	DistrictID primitive.ObjectID `bson:"district_id" json:"district_id"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
