package userstore

import (
	"context"
	"errors"
	"time"

	"github.com/adeoluwa/flocktrack/internal/app/system/normalize"
	"github.com/adeoluwa/flocktrack/internal/app/system/status"
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

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

var (
	// ErrDuplicateEmail is returned when attempting to create a user with an email that already exists.
	ErrDuplicateEmail = errors.New("a user with this email already exists")
	errBadRole        = errors.New(`role must be "centre_leader"|"area_supervisor"|"zonal_supervisor"|"district_pastor"|"admin"`)
	errBadStatus      = errors.New(`status must be "active"|"disabled"`)
	errEntityNeeded   = errors.New("non-admin roles must reference their entity")
)

// GetByID loads a user by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByEmail looks up a user by case-insensitive email. Returns
// mongo.ErrNoDocuments if not found.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"email": normalize.Email(email)}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByRoleEntity finds the user holding the given role over the given
// entity, e.g. the area supervisor of a particular area. Returns
// mongo.ErrNoDocuments if the position is vacant.
func (s *Store) GetByRoleEntity(ctx context.Context, role string, entityID primitive.ObjectID) (*models.User, error) {
	var u models.User
	filter := bson.M{"role": normalize.Role(role), "entity_id": entityID, "status": status.Active}
	if err := s.c.FindOne(ctx, filter).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// ListByRoleEntityIn returns all active users holding the given role over
// any of the given entities. Used to fan notifications out to every
// holder of a position along a reporting chain.
func (s *Store) ListByRoleEntityIn(ctx context.Context, role string, entityIDs []primitive.ObjectID) ([]models.User, error) {
	if len(entityIDs) == 0 {
		return nil, nil
	}
	filter := bson.M{
		"role":      normalize.Role(role),
		"entity_id": bson.M{"$in": entityIDs},
		"status":    status.Active,
	}
	cur, err := s.c.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []models.User
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Create inserts a new user after normalizing and validating fields.
// PasswordHash must already be set by the caller.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	u.ID = primitive.NewObjectID()
	u.FullName = normalize.Name(u.FullName)
	u.FullNameCI = text.Fold(u.FullName)
	u.Email = normalize.Email(u.Email)
	u.Role = normalize.Role(u.Role)
	if u.Status == "" {
		u.Status = status.Active
	}

	if !models.ValidRole(u.Role) {
		return models.User{}, errBadRole
	}
	if !status.IsValid(u.Status) {
		return models.User{}, errBadStatus
	}
	if models.RoleNeedsEntity(u.Role) && u.EntityID == nil {
		return models.User{}, errEntityNeeded
	}
	if u.Role == models.RoleAdmin {
		u.EntityID = nil
	}

	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}
	return u, nil
}

// Update holds the fields that can be changed on an existing user.
// Nil pointers leave the stored value untouched.
type Update struct {
	FullName     *string
	Email        *string
	PasswordHash *string
	Status       *string
}

// Apply updates a user in place.
func (s *Store) Apply(ctx context.Context, id primitive.ObjectID, upd Update) error {
	set := bson.M{"updated_at": time.Now().UTC()}
	if upd.FullName != nil {
		name := normalize.Name(*upd.FullName)
		set["full_name"] = name
		set["full_name_ci"] = text.Fold(name)
	}
	if upd.Email != nil {
		set["email"] = normalize.Email(*upd.Email)
	}
	if upd.PasswordHash != nil {
		set["password_hash"] = *upd.PasswordHash
	}
	if upd.Status != nil {
		st := normalize.Status(*upd.Status)
		if !status.IsValid(st) {
			return errBadStatus
		}
		set["status"] = st
	}
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateEmail
		}
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// SetRoleEntity atomically moves a user to a new role and entity
// reference. Used when an approved position change takes effect.
func (s *Store) SetRoleEntity(ctx context.Context, id primitive.ObjectID, role string, entityID *primitive.ObjectID) error {
	role = normalize.Role(role)
	if !models.ValidRole(role) {
		return errBadRole
	}
	if models.RoleNeedsEntity(role) && entityID == nil {
		return errEntityNeeded
	}
	set := bson.M{"role": role, "updated_at": time.Now().UTC()}
	update := bson.M{"$set": set}
	if entityID != nil {
		set["entity_id"] = *entityID
	} else {
		update["$unset"] = bson.M{"entity_id": ""}
	}
	res, err := s.c.UpdateByID(ctx, id, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// List returns users sorted by folded name, optionally filtered by role.
func (s *Store) List(ctx context.Context, role string) ([]models.User, error) {
	filter := bson.M{}
	if role != "" {
		filter["role"] = normalize.Role(role)
	}
	cur, err := s.c.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "full_name_ci", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []models.User
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes a user by id, returning the deleted count.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
