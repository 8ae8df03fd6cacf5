// internal/domain/models/zonal_supervisor.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ZonalSupervisor spans a subset of area supervisors inside one district
// and acts as an alternate approver for the area stage. Invariant: every
// area in AreaIDs belongs to DistrictID.
type ZonalSupervisor struct {
	ID         primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name       string               `bson:"name" json:"name"`
	NameCI     string               `bson:"name_ci" json:"-"`
	DistrictID primitive.ObjectID   `bson:"district_id" json:"district_id"`
	AreaIDs    []primitive.ObjectID `bson:"area_ids" json:"area_ids"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
