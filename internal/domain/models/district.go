// internal/domain/models/district.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// District is the root of the organizational hierarchy. Each district is
// identified by a number in [1,6] that is unique across the deployment.
type District struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Number   int                `bson:"number" json:"number"`
	Name     string             `bson:"name" json:"name"`
	NameCI   string             `bson:"name_ci" json:"-"`
	PastorID primitive.ObjectID `bson:"pastor_id,omitempty" json:"pastor_id,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// MinDistrictNumber and MaxDistrictNumber bound District.Number.
const (
	MinDistrictNumber = 1
	MaxDistrictNumber = 6
)
