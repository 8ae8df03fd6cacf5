// internal/app/store/areas/areastore.go
package areastore

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

var ErrDuplicateArea = errors.New("an area with this name already exists in the district")

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("area_supervisors")}
}

func (s *Store) Create(ctx context.Context, a models.AreaSupervisor) (models.AreaSupervisor, error) {
	now := time.Now().UTC()
	a.ID = primitive.NewObjectID()
	a.Name = normalize.Name(a.Name)
	a.NameCI = text.Fold(a.Name)
	a.CreatedAt = now
	a.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, a); err != nil {
		if wafflemongo.IsDup(err) {
			return models.AreaSupervisor{}, ErrDuplicateArea
		}
		return models.AreaSupervisor{}, err
	}
	return a, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.AreaSupervisor, error) {
	var a models.AreaSupervisor
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&a); err != nil {
		return models.AreaSupervisor{}, err
	}
	return a, nil
}

// IDsByDistrict returns the ids of every area in a district.
func (s *Store) IDsByDistrict(ctx context.Context, districtID primitive.ObjectID) ([]primitive.ObjectID, error) {
	cur, err := s.c.Find(ctx, bson.M{"district_id": districtID},
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

// ExistAll reports whether every given area id exists and belongs to
// districtID. Used to validate zone area sets.
func (s *Store) ExistAll(ctx context.Context, districtID primitive.ObjectID, ids []primitive.ObjectID) (bool, error) {
	if len(ids) == 0 {
		return true, nil
	}
	n, err := s.c.CountDocuments(ctx, bson.M{
		"_id":         bson.M{"$in": ids},
		"district_id": districtID,
	})
	if err != nil {
		return false, err
	}
	return n == int64(len(ids)), nil
}

// List returns areas, optionally restricted to one district.
func (s *Store) List(ctx context.Context, districtID *primitive.ObjectID) ([]models.AreaSupervisor, error) {
	filter := bson.M{}
	if districtID != nil {
		filter["district_id"] = *districtID
	}
	cur, err := s.c.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []models.AreaSupervisor
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) Update(ctx context.Context, id primitive.ObjectID, a models.AreaSupervisor) error {
	set := bson.M{"updated_at": time.Now().UTC()}
	if a.Name != "" {
		set["name"] = normalize.Name(a.Name)
		set["name_ci"] = text.Fold(a.Name)
	}
	if !a.DistrictID.IsZero() {
		set["district_id"] = a.DistrictID
	}
	if _, err := s.c.UpdateByID(ctx, id, bson.M{"$set": set}); err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateArea
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
