// Package positionchangestore persists position-change requests. The
// collection carries a partial unique index on (user_id) filtered to
// pending requests, so a user can only ever hold one open request.
package positionchangestore

import (
	"context"
	"errors"
	"time"

	"github.com/adeoluwa/flocktrack/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("position_change_requests")}
}

var (
	// ErrPendingExists is returned when the user already has an open request.
	ErrPendingExists = errors.New("user already has a pending position change request")

	// ErrAlreadyReviewed is returned when a review races another reviewer.
	ErrAlreadyReviewed = errors.New("position change request was already reviewed")
)

// Insert stores a new pending request.
func (s *Store) Insert(ctx context.Context, req models.PositionChangeRequest) (models.PositionChangeRequest, error) {
	now := time.Now().UTC()
	req.ID = primitive.NewObjectID()
	req.Status = models.PositionPending
	req.CreatedAt = now
	req.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, req); err != nil {
		if wafflemongo.IsDup(err) {
			return models.PositionChangeRequest{}, ErrPendingExists
		}
		return models.PositionChangeRequest{}, err
	}
	return req, nil
}

// GetByID loads a request by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.PositionChangeRequest, error) {
	var req models.PositionChangeRequest
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&req); err != nil {
		return nil, err
	}
	return &req, nil
}

// HasPending reports whether the user holds an open request.
func (s *Store) HasPending(ctx context.Context, userID primitive.ObjectID) (bool, error) {
	cnt, err := s.c.CountDocuments(ctx, bson.M{"user_id": userID, "status": models.PositionPending})
	if err != nil {
		return false, err
	}
	return cnt > 0, nil
}

// Approve marks a pending request approved. The caller applies the role
// change to the user after this succeeds.
func (s *Store) Approve(ctx context.Context, id, reviewedBy primitive.ObjectID, at time.Time) (*models.PositionChangeRequest, error) {
	update := bson.M{"$set": bson.M{
		"status":         models.PositionApproved,
		"reviewed_by_id": reviewedBy,
		"reviewed_at":    at.UTC(),
		"updated_at":     at.UTC(),
	}}
	return s.review(ctx, id, update)
}

// Reject marks a pending request rejected with a reason.
func (s *Store) Reject(ctx context.Context, id, reviewedBy primitive.ObjectID, reason string, at time.Time) (*models.PositionChangeRequest, error) {
	update := bson.M{"$set": bson.M{
		"status":           models.PositionRejected,
		"reviewed_by_id":   reviewedBy,
		"reviewed_at":      at.UTC(),
		"rejection_reason": reason,
		"updated_at":       at.UTC(),
	}}
	return s.review(ctx, id, update)
}

func (s *Store) review(ctx context.Context, id primitive.ObjectID, update bson.M) (*models.PositionChangeRequest, error) {
	filter := bson.M{"_id": id, "status": models.PositionPending}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var req models.PositionChangeRequest
	err := s.c.FindOneAndUpdate(ctx, filter, update, opts).Decode(&req)
	if err == nil {
		return &req, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}
	if cnt, cntErr := s.c.CountDocuments(ctx, bson.M{"_id": id}); cntErr == nil && cnt > 0 {
		return nil, ErrAlreadyReviewed
	}
	return nil, mongo.ErrNoDocuments
}

// ListFilter narrows List. Zero values are ignored.
type ListFilter struct {
	UserID *primitive.ObjectID
	Status string
}

// List returns requests newest first within the given filter.
func (s *Store) List(ctx context.Context, f ListFilter) ([]models.PositionChangeRequest, error) {
	filter := bson.M{}
	if f.UserID != nil {
		filter["user_id"] = *f.UserID
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	cur, err := s.c.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []models.PositionChangeRequest
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
