// internal/app/store/centres/centrestore.go
package centrestore

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

var ErrDuplicateCentre = errors.New("a centre with this name already exists in the area")

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("centres")}
}

func (s *Store) Create(ctx context.Context, c models.Centre) (models.Centre, error) {
	now := time.Now().UTC()
	c.ID = primitive.NewObjectID()
	c.Name = normalize.Name(c.Name)
	c.NameCI = text.Fold(c.Name)
	c.CreatedAt = now
	c.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, c); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Centre{}, ErrDuplicateCentre
		}
		return models.Centre{}, err
	}
	return c, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Centre, error) {
	var c models.Centre
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		return models.Centre{}, err
	}
	return c, nil
}

// IDsByAreaIDs returns the ids of every centre under the given areas.
func (s *Store) IDsByAreaIDs(ctx context.Context, areaIDs []primitive.ObjectID) ([]primitive.ObjectID, error) {
	if len(areaIDs) == 0 {
		return nil, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"area_id": bson.M{"$in": areaIDs}},
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

// List returns centres, optionally restricted to one area.
func (s *Store) List(ctx context.Context, areaID *primitive.ObjectID) ([]models.Centre, error) {
	filter := bson.M{}
	if areaID != nil {
		filter["area_id"] = *areaID
	}
	cur, err := s.c.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []models.Centre
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) Update(ctx context.Context, id primitive.ObjectID, c models.Centre) error {
	set := bson.M{"updated_at": time.Now().UTC()}
	if c.Name != "" {
		set["name"] = normalize.Name(c.Name)
		set["name_ci"] = text.Fold(c.Name)
	}
	if c.Address != "" {
		set["address"] = c.Address
	}
	if c.City != "" {
		set["city"] = c.City
	}
	if !c.AreaID.IsZero() {
		set["area_id"] = c.AreaID
	}
	if !c.LeaderID.IsZero() {
		set["leader_id"] = c.LeaderID
	}
	if _, err := s.c.UpdateByID(ctx, id, bson.M{"$set": set}); err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateCentre
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
