// internal/app/store/zones/zonestore.go
package zonestore

import (
	"context"
	"errors"
	"time"

	"github.com/adeoluwa/flocktrack/internal/app/system/normalize"
	"github.com/adeoluwa/flocktrack/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

var ErrDuplicateZone = errors.New("a zone with this name already exists in the district")

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("zonal_supervisors")}
}

func (s *Store) Create(ctx context.Context, z models.ZonalSupervisor) (models.ZonalSupervisor, error) {
	now := time.Now().UTC()
	z.ID = primitive.NewObjectID()
	z.Name = normalize.Name(z.Name)
	z.NameCI = text.Fold(z.Name)
	z.CreatedAt = now
	z.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, z); err != nil {
		if wafflemongo.IsDup(err) {
			return models.ZonalSupervisor{}, ErrDuplicateZone
		}
		return models.ZonalSupervisor{}, err
	}
	return z, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.ZonalSupervisor, error) {
	var z models.ZonalSupervisor
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&z); err != nil {
		return models.ZonalSupervisor{}, err
	}
	return z, nil
}

// AreaIDs returns a zone's assigned area set. Implements the gate's
// zone lookup.
func (s *Store) AreaIDs(ctx context.Context, zoneID primitive.ObjectID) ([]primitive.ObjectID, error) {
	var z models.ZonalSupervisor
	opts := options.FindOne().SetProjection(bson.M{"area_ids": 1})
	if err := s.c.FindOne(ctx, bson.M{"_id": zoneID}, opts).Decode(&z); err != nil {
		return nil, err
	}
	return z.AreaIDs, nil
}

// IDsSpanningArea returns the ids of every zone whose assigned area set
// contains the given area.
func (s *Store) IDsSpanningArea(ctx context.Context, areaID primitive.ObjectID) ([]primitive.ObjectID, error) {
	cur, err := s.c.Find(ctx, bson.M{"area_ids": areaID},
		options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var rows []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}
	return ids, nil
}

// List returns zones, optionally restricted to one district.
func (s *Store) List(ctx context.Context, districtID *primitive.ObjectID) ([]models.ZonalSupervisor, error) {
	filter := bson.M{}
	if districtID != nil {
		filter["district_id"] = *districtID
	}
	cur, err := s.c.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []models.ZonalSupervisor
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) Update(ctx context.Context, id primitive.ObjectID, z models.ZonalSupervisor) error {
	set := bson.M{"updated_at": time.Now().UTC()}
	if z.Name != "" {
		set["name"] = normalize.Name(z.Name)
		set["name_ci"] = text.Fold(z.Name)
	}
	if !z.DistrictID.IsZero() {
		set["district_id"] = z.DistrictID
	}
	if z.AreaIDs != nil {
		set["area_ids"] = z.AreaIDs
	}
	if _, err := s.c.UpdateByID(ctx, id, bson.M{"$set": set}); err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateZone
		}
		return err
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
