// Package reportstore persists weekly reports and owns their status
// transitions. Every transition is a compare-and-set on the expected
// current status so concurrent approvers cannot double-apply.
package reportstore

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
	return &Store{c: db.Collection("reports")}
}

var (
	// ErrDuplicateWeek is returned when a centre already has a report for the week.
	ErrDuplicateWeek = errors.New("a report for this centre and week already exists")

	// ErrStatusChanged is returned when a transition's expected status no
	// longer matches the stored document.
	ErrStatusChanged = errors.New("report status changed since it was read")
)

// Insert stores a brand-new pending report.
func (s *Store) Insert(ctx context.Context, r models.WeeklyReport) (models.WeeklyReport, error) {
	now := time.Now().UTC()
	r.ID = primitive.NewObjectID()
	r.Status = models.ReportPending
	r.CreatedAt = now
	r.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, r); err != nil {
		if wafflemongo.IsDup(err) {
			return models.WeeklyReport{}, ErrDuplicateWeek
		}
		return models.WeeklyReport{}, err
	}
	return r, nil
}

// GetByID loads a report by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.WeeklyReport, error) {
	var r models.WeeklyReport
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&r); err != nil {
		return nil, err
	}
	return &r, nil
}

// GetByCentreWeek loads the report a centre holds for a week, if any.
func (s *Store) GetByCentreWeek(ctx context.Context, centreID primitive.ObjectID, week string) (*models.WeeklyReport, error) {
	var r models.WeeklyReport
	if err := s.c.FindOne(ctx, bson.M{"centre_id": centreID, "week": week}).Decode(&r); err != nil {
		return nil, err
	}
	return &r, nil
}

// Supersede replaces a rejected report in place with a fresh pending
// submission, clearing all approval and rejection audit fields. The
// compare-and-set on the rejected status keeps a concurrent resubmission
// from applying twice.
func (s *Store) Supersede(ctx context.Context, id primitive.ObjectID, submittedBy primitive.ObjectID, payload models.ReportPayload, submittedAt time.Time) (*models.WeeklyReport, error) {
	filter := bson.M{"_id": id, "status": models.ReportRejected}
	update := bson.M{
		"$set": bson.M{
			"male":                       payload.Male,
			"female":                     payload.Female,
			"children":                   payload.Children,
			"offerings":                  payload.Offerings,
			"numberOfTestimonies":        payload.NumberOfTestimonies,
			"numberOfFirstTimers":        payload.NumberOfFirstTimers,
			"firstTimersFollowedUp":      payload.FirstTimersFollowedUp,
			"firstTimersConvertedToCITH": payload.FirstTimersConvertedToCITH,
			"modeOfMeeting":              payload.ModeOfMeeting,
			"remark":                     payload.Remark,
			"status":                     models.ReportPending,
			"submitted_by_id":            submittedBy,
			"updated_at":                 submittedAt.UTC(),
		},
		"$unset": bson.M{
			"area_approved_by_id":     "",
			"area_approved_at":        "",
			"district_approved_by_id": "",
			"district_approved_at":    "",
			"rejected_by_id":          "",
			"rejected_at":             "",
			"rejection_reason":        "",
		},
	}
	return s.transition(ctx, filter, update)
}

// ApproveArea moves a pending report to area_approved.
func (s *Store) ApproveArea(ctx context.Context, id, approvedBy primitive.ObjectID, at time.Time) (*models.WeeklyReport, error) {
	filter := bson.M{"_id": id, "status": models.ReportPending}
	update := bson.M{"$set": bson.M{
		"status":              models.ReportAreaApproved,
		"area_approved_by_id": approvedBy,
		"area_approved_at":    at.UTC(),
		"updated_at":          at.UTC(),
	}}
	return s.transition(ctx, filter, update)
}

// ApproveDistrict moves an area_approved report to district_approved.
func (s *Store) ApproveDistrict(ctx context.Context, id, approvedBy primitive.ObjectID, at time.Time) (*models.WeeklyReport, error) {
	filter := bson.M{"_id": id, "status": models.ReportAreaApproved}
	update := bson.M{"$set": bson.M{
		"status":                  models.ReportDistrictApproved,
		"district_approved_by_id": approvedBy,
		"district_approved_at":    at.UTC(),
		"updated_at":              at.UTC(),
	}}
	return s.transition(ctx, filter, update)
}

// Reject moves a report from the expected non-terminal status to
// rejected, recording who rejected it and why. from must be pending or
// area_approved; the caller decides which stage it is rejecting at.
func (s *Store) Reject(ctx context.Context, id, rejectedBy primitive.ObjectID, reason, from string, at time.Time) (*models.WeeklyReport, error) {
	filter := bson.M{"_id": id, "status": from}
	update := bson.M{"$set": bson.M{
		"status":           models.ReportRejected,
		"rejected_by_id":   rejectedBy,
		"rejected_at":      at.UTC(),
		"rejection_reason": reason,
		"updated_at":       at.UTC(),
	}}
	return s.transition(ctx, filter, update)
}

// UpdatePayload rewrites the activity numbers of a report. A non-empty
// from makes the write a compare-and-set on that status; an empty from
// matches any status and leaves it untouched (admin edits). Neither
// form changes the status or the audit fields.
func (s *Store) UpdatePayload(ctx context.Context, id primitive.ObjectID, payload models.ReportPayload, from string, at time.Time) (*models.WeeklyReport, error) {
	filter := bson.M{"_id": id}
	if from != "" {
		filter["status"] = from
	}
	update := bson.M{"$set": bson.M{
		"male":                       payload.Male,
		"female":                     payload.Female,
		"children":                   payload.Children,
		"offerings":                  payload.Offerings,
		"numberOfTestimonies":        payload.NumberOfTestimonies,
		"numberOfFirstTimers":        payload.NumberOfFirstTimers,
		"firstTimersFollowedUp":      payload.FirstTimersFollowedUp,
		"firstTimersConvertedToCITH": payload.FirstTimersConvertedToCITH,
		"modeOfMeeting":              payload.ModeOfMeeting,
		"remark":                     payload.Remark,
		"updated_at":                 at.UTC(),
	}}
	return s.transition(ctx, filter, update)
}

// transition runs a compare-and-set update and returns the post-update
// document. A filter miss is reported as ErrStatusChanged when the
// report exists and mongo.ErrNoDocuments when it does not.
func (s *Store) transition(ctx context.Context, filter, update bson.M) (*models.WeeklyReport, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var r models.WeeklyReport
	err := s.c.FindOneAndUpdate(ctx, filter, update, opts).Decode(&r)
	if err == nil {
		return &r, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}
	id, _ := filter["_id"].(primitive.ObjectID)
	if cnt, cntErr := s.c.CountDocuments(ctx, bson.M{"_id": id}); cntErr == nil && cnt > 0 {
		return nil, ErrStatusChanged
	}
	return nil, mongo.ErrNoDocuments
}

// ListFilter narrows List. Zero values are ignored.
type ListFilter struct {
	CentreIDs []primitive.ObjectID
	Week      string
	Status    string
}

// List returns reports newest week first within the given filter.
func (s *Store) List(ctx context.Context, f ListFilter) ([]models.WeeklyReport, error) {
	filter := bson.M{}
	if len(f.CentreIDs) > 0 {
		filter["centre_id"] = bson.M{"$in": f.CentreIDs}
	}
	if f.Week != "" {
		filter["week"] = f.Week
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	cur, err := s.c.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "week", Value: -1}, {Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []models.WeeklyReport
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
