// internal/app/store/districts/districtstore.go
package districtstore

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

var (
	ErrDuplicateDistrict = errors.New("a district with this number or name already exists")
	ErrBadNumber         = errors.New("district number must be between 1 and 6")
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("districts")}
}

// Create inserts a district after validating the number bound. The
// unique indexes on number and name_ci surface duplicates.
func (s *Store) Create(ctx context.Context, d models.District) (models.District, error) {
	if d.Number < models.MinDistrictNumber || d.Number > models.MaxDistrictNumber {
		return models.District{}, ErrBadNumber
	}
	now := time.Now().UTC()
	d.ID = primitive.NewObjectID()
	d.Name = normalize.Name(d.Name)
	d.NameCI = text.Fold(d.Name)
	d.CreatedAt = now
	d.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, d); err != nil {
		if wafflemongo.IsDup(err) {
			return models.District{}, ErrDuplicateDistrict
		}
		return models.District{}, err
	}
	return d, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.District, error) {
	var d models.District
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&d); err != nil {
		return models.District{}, err
	}
	return d, nil
}

// List returns all districts ordered by number.
func (s *Store) List(ctx context.Context) ([]models.District, error) {
	cur, err := s.c.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "number", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []models.District
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Update modifies a district's mutable fields and refreshes UpdatedAt.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, d models.District) error {
	set := bson.M{"updated_at": time.Now().UTC()}
	if d.Name != "" {
		set["name"] = normalize.Name(d.Name)
		set["name_ci"] = text.Fold(d.Name)
	}
	if d.Number != 0 {
		if d.Number < models.MinDistrictNumber || d.Number > models.MaxDistrictNumber {
			return ErrBadNumber
		}
		set["number"] = d.Number
	}
	if !d.PastorID.IsZero() {
		set["pastor_id"] = d.PastorID
	}
	if _, err := s.c.UpdateByID(ctx, id, bson.M{"$set": set}); err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateDistrict
		}
		return err
	}
	return nil
}

// Delete removes a district by ID. Returns the number of documents
// deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
