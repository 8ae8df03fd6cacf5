package positions_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/adeoluwa/flocktrack/internal/app/engine/positions"
	positionchangestore "github.com/adeoluwa/flocktrack/internal/app/store/positionchanges"
	"github.com/adeoluwa/flocktrack/internal/app/system/apperr"
	"github.com/adeoluwa/flocktrack/internal/app/system/authz"
	"github.com/adeoluwa/flocktrack/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type fakeRepo struct {
	byID map[primitive.ObjectID]*models.PositionChangeRequest
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{byID: map[primitive.ObjectID]*models.PositionChangeRequest{}}
}

func (f *fakeRepo) Insert(_ context.Context, req models.PositionChangeRequest) (models.PositionChangeRequest, error) {
	for _, ex := range f.byID {
		if ex.UserID == req.UserID && ex.Status == models.PositionPending {
			return models.PositionChangeRequest{}, positionchangestore.ErrPendingExists
		}
	}
	req.ID = primitive.NewObjectID()
	req.Status = models.PositionPending
	now := time.Now().UTC()
	req.CreatedAt = now
	req.UpdatedAt = now
	cp := req
	f.byID[req.ID] = &cp
	return req, nil
}

func (f *fakeRepo) GetByID(_ context.Context, id primitive.ObjectID) (*models.PositionChangeRequest, error) {
	req, ok := f.byID[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	cp := *req
	return &cp, nil
}

func (f *fakeRepo) review(id, reviewedBy primitive.ObjectID, status, reason string, at time.Time) (*models.PositionChangeRequest, error) {
	req, ok := f.byID[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	if req.Status != models.PositionPending {
		return nil, positionchangestore.ErrAlreadyReviewed
	}
	req.Status = status
	req.ReviewedByID = &reviewedBy
	req.ReviewedAt = &at
	req.RejectionReason = reason
	req.UpdatedAt = at
	cp := *req
	return &cp, nil
}

func (f *fakeRepo) Approve(_ context.Context, id, reviewedBy primitive.ObjectID, at time.Time) (*models.PositionChangeRequest, error) {
	return f.review(id, reviewedBy, models.PositionApproved, "", at)
}

func (f *fakeRepo) Reject(_ context.Context, id, reviewedBy primitive.ObjectID, reason string, at time.Time) (*models.PositionChangeRequest, error) {
	return f.review(id, reviewedBy, models.PositionRejected, reason, at)
}

func (f *fakeRepo) List(_ context.Context, filter positionchangestore.ListFilter) ([]models.PositionChangeRequest, error) {
	var out []models.PositionChangeRequest
	for _, req := range f.byID {
		if filter.UserID != nil && req.UserID != *filter.UserID {
			continue
		}
		if filter.Status != "" && req.Status != filter.Status {
			continue
		}
		out = append(out, *req)
	}
	return out, nil
}

type fakeUsers struct {
	byID map[primitive.ObjectID]*models.User

	// failNextSet makes the next SetRoleEntity return this error once.
	failNextSet error
}

func (f *fakeUsers) GetByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) SetRoleEntity(_ context.Context, id primitive.ObjectID, role string, entityID *primitive.ObjectID) error {
	if err := f.failNextSet; err != nil {
		f.failNextSet = nil
		return err
	}
	u, ok := f.byID[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	u.Role = role
	u.EntityID = entityID
	return nil
}

type fakeEntities struct {
	centres   map[primitive.ObjectID]models.Centre
	areas     map[primitive.ObjectID]models.AreaSupervisor
	zones     map[primitive.ObjectID]models.ZonalSupervisor
	districts map[primitive.ObjectID]models.District
}

func (f *fakeEntities) centreSource() positions.CentreSource     { return centreSrc{f} }
func (f *fakeEntities) areaSource() positions.AreaSource         { return areaSrc{f} }
func (f *fakeEntities) zoneSource() positions.ZoneSource         { return zoneSrc{f} }
func (f *fakeEntities) districtSource() positions.DistrictSource { return districtSrc{f} }

type centreSrc struct{ f *fakeEntities }

func (s centreSrc) GetByID(_ context.Context, id primitive.ObjectID) (models.Centre, error) {
	c, ok := s.f.centres[id]
	if !ok {
		return models.Centre{}, mongo.ErrNoDocuments
	}
	return c, nil
}

type areaSrc struct{ f *fakeEntities }

func (s areaSrc) GetByID(_ context.Context, id primitive.ObjectID) (models.AreaSupervisor, error) {
	a, ok := s.f.areas[id]
	if !ok {
		return models.AreaSupervisor{}, mongo.ErrNoDocuments
	}
	return a, nil
}

type zoneSrc struct{ f *fakeEntities }

func (s zoneSrc) GetByID(_ context.Context, id primitive.ObjectID) (models.ZonalSupervisor, error) {
	z, ok := s.f.zones[id]
	if !ok {
		return models.ZonalSupervisor{}, mongo.ErrNoDocuments
	}
	return z, nil
}

type districtSrc struct{ f *fakeEntities }

func (s districtSrc) GetByID(_ context.Context, id primitive.ObjectID) (models.District, error) {
	d, ok := s.f.districts[id]
	if !ok {
		return models.District{}, mongo.ErrNoDocuments
	}
	return d, nil
}

type fakeEvents struct {
	reviewed []*models.PositionChangeRequest
}

func (f *fakeEvents) PositionReviewed(_ context.Context, req *models.PositionChangeRequest) {
	f.reviewed = append(f.reviewed, req)
}

type fixture struct {
	engine   *positions.Engine
	repo     *fakeRepo
	users    *fakeUsers
	entities *fakeEntities
	events   *fakeEvents

	leader   models.User
	centreID primitive.ObjectID
	areaID   primitive.ObjectID
	admin    authz.Actor
}

func newFixture() *fixture {
	centreID := primitive.NewObjectID()
	areaID := primitive.NewObjectID()
	districtID := primitive.NewObjectID()

	leader := models.User{
		ID:       primitive.NewObjectID(),
		FullName: "Test Leader",
		Role:     models.RoleCentreLeader,
		EntityID: &centreID,
	}

	entities := &fakeEntities{
		centres:   map[primitive.ObjectID]models.Centre{centreID: {ID: centreID, AreaID: areaID}},
		areas:     map[primitive.ObjectID]models.AreaSupervisor{areaID: {ID: areaID, DistrictID: districtID}},
		zones:     map[primitive.ObjectID]models.ZonalSupervisor{},
		districts: map[primitive.ObjectID]models.District{districtID: {ID: districtID, Number: 1}},
	}
	repo := newFakeRepo()
	users := &fakeUsers{byID: map[primitive.ObjectID]*models.User{leader.ID: &leader}}
	events := &fakeEvents{}

	return &fixture{
		engine: positions.New(repo, users,
			entities.centreSource(), entities.areaSource(), entities.zoneSource(), entities.districtSource(),
			events, zap.NewNop()),
		repo:     repo,
		users:    users,
		entities: entities,
		events:   events,
		leader:   leader,
		centreID: centreID,
		areaID:   areaID,
		admin:    authz.Actor{ID: primitive.NewObjectID(), Role: models.RoleAdmin},
	}
}

func (f *fixture) leaderActor() authz.Actor {
	return authz.Actor{ID: f.leader.ID, Role: models.RoleCentreLeader, EntityID: f.centreID}
}

func TestEngine_Request(t *testing.T) {
	f := newFixture()

	req, err := f.engine.Request(context.Background(), f.leaderActor(), models.RoleAreaSupervisor, &f.areaID)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	if req.Status != models.PositionPending {
		t.Errorf("status: got %q, want %q", req.Status, models.PositionPending)
	}
	if req.CurrentRole != models.RoleCentreLeader {
		t.Errorf("current role: got %q", req.CurrentRole)
	}
	if req.CurrentEntityID == nil || *req.CurrentEntityID != f.centreID {
		t.Error("expected current entity snapshot")
	}
	if req.DesiredRole != models.RoleAreaSupervisor {
		t.Errorf("desired role: got %q", req.DesiredRole)
	}
}

func TestEngine_Request_Validation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	actor := f.leaderActor()

	if _, err := f.engine.Request(ctx, actor, "owner", &f.areaID); !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("unknown role: expected validation error, got %v", err)
	}
	if _, err := f.engine.Request(ctx, actor, models.RoleAdmin, &f.areaID); !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("admin role: expected validation error, got %v", err)
	}
	if _, err := f.engine.Request(ctx, actor, models.RoleAreaSupervisor, nil); !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("missing entity: expected validation error, got %v", err)
	}
	if _, err := f.engine.Request(ctx, actor, models.RoleCentreLeader, &f.centreID); !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("same position: expected validation error, got %v", err)
	}

	missing := primitive.NewObjectID()
	if _, err := f.engine.Request(ctx, actor, models.RoleAreaSupervisor, &missing); !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("missing target: expected not found, got %v", err)
	}

	// Right id, wrong entity type
	if _, err := f.engine.Request(ctx, actor, models.RoleDistrictPastor, &f.areaID); !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("type mismatch: expected not found, got %v", err)
	}
}

func TestEngine_Request_OnePendingPerUser(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	actor := f.leaderActor()

	if _, err := f.engine.Request(ctx, actor, models.RoleAreaSupervisor, &f.areaID); err != nil {
		t.Fatalf("first Request failed: %v", err)
	}
	if _, err := f.engine.Request(ctx, actor, models.RoleAreaSupervisor, &f.areaID); !apperr.Is(err, apperr.KindConflict) {
		t.Errorf("expected conflict error, got %v", err)
	}
}

func TestEngine_Approve(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	req, err := f.engine.Request(ctx, f.leaderActor(), models.RoleAreaSupervisor, &f.areaID)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}

	// Only admins review
	if _, err := f.engine.Approve(ctx, f.leaderActor(), req.ID); !apperr.Is(err, apperr.KindAuthorization) {
		t.Errorf("non-admin review: expected authorization error, got %v", err)
	}

	approved, err := f.engine.Approve(ctx, f.admin, req.ID)
	if err != nil {
		t.Fatalf("Approve failed: %v", err)
	}
	if approved.Status != models.PositionApproved {
		t.Errorf("status: got %q, want %q", approved.Status, models.PositionApproved)
	}

	// The change is applied to the user record
	u, err := f.users.GetByID(ctx, f.leader.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if u.Role != models.RoleAreaSupervisor {
		t.Errorf("user role: got %q, want %q", u.Role, models.RoleAreaSupervisor)
	}
	if u.EntityID == nil || *u.EntityID != f.areaID {
		t.Error("expected user entity to be the desired area")
	}

	if len(f.events.reviewed) != 1 {
		t.Errorf("expected 1 review event, got %d", len(f.events.reviewed))
	}

	// A second review hits the compare-and-set
	if _, err := f.engine.Approve(ctx, f.admin, req.ID); !apperr.Is(err, apperr.KindStateConflict) {
		t.Errorf("second review: expected state conflict, got %v", err)
	}
}

func TestEngine_Approve_RetryAfterUserWriteFailure(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	req, err := f.engine.Request(ctx, f.leaderActor(), models.RoleAreaSupervisor, &f.areaID)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}

	// The user write fails before the request is marked approved, so
	// the request stays pending and the approval can be retried.
	f.users.failNextSet = errors.New("connection reset")
	if _, err := f.engine.Approve(ctx, f.admin, req.ID); err == nil {
		t.Fatal("expected the failed user write to surface")
	}
	stored, err := f.repo.GetByID(ctx, req.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if stored.Status != models.PositionPending {
		t.Fatalf("request status after failed apply: got %q, want %q", stored.Status, models.PositionPending)
	}

	approved, err := f.engine.Approve(ctx, f.admin, req.ID)
	if err != nil {
		t.Fatalf("retry Approve failed: %v", err)
	}
	if approved.Status != models.PositionApproved {
		t.Errorf("status: got %q, want %q", approved.Status, models.PositionApproved)
	}
	u, _ := f.users.GetByID(ctx, f.leader.ID)
	if u.Role != models.RoleAreaSupervisor {
		t.Errorf("user role after retry: got %q, want %q", u.Role, models.RoleAreaSupervisor)
	}
}

func TestEngine_Approve_TargetDeleted(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	req, err := f.engine.Request(ctx, f.leaderActor(), models.RoleAreaSupervisor, &f.areaID)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}

	delete(f.entities.areas, f.areaID)
	if _, err := f.engine.Approve(ctx, f.admin, req.ID); !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("expected not found, got %v", err)
	}

	// The request stays pending and can still be rejected
	if _, err := f.engine.Reject(ctx, f.admin, req.ID, "area no longer exists"); err != nil {
		t.Fatalf("Reject failed: %v", err)
	}
}

func TestEngine_Reject(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	req, err := f.engine.Request(ctx, f.leaderActor(), models.RoleAreaSupervisor, &f.areaID)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}

	if _, err := f.engine.Reject(ctx, f.admin, req.ID, ""); !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("blank reason: expected validation error, got %v", err)
	}

	rejected, err := f.engine.Reject(ctx, f.admin, req.ID, "not yet")
	if err != nil {
		t.Fatalf("Reject failed: %v", err)
	}
	if rejected.Status != models.PositionRejected {
		t.Errorf("status: got %q, want %q", rejected.Status, models.PositionRejected)
	}
	if rejected.RejectionReason != "not yet" {
		t.Errorf("reason: got %q", rejected.RejectionReason)
	}

	// The user record is untouched
	u, _ := f.users.GetByID(ctx, f.leader.ID)
	if u.Role != models.RoleCentreLeader {
		t.Errorf("user role changed on rejection: %q", u.Role)
	}

	// A rejected request frees the slot for a new one
	if _, err := f.engine.Request(ctx, f.leaderActor(), models.RoleAreaSupervisor, &f.areaID); err != nil {
		t.Errorf("new request after rejection failed: %v", err)
	}
}

func TestEngine_List(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	req, err := f.engine.Request(ctx, f.leaderActor(), models.RoleAreaSupervisor, &f.areaID)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}

	mine, err := f.engine.List(ctx, f.leaderActor(), positions.ListFilter{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(mine) != 1 || mine[0].ID != req.ID {
		t.Errorf("expected own request, got %v", mine)
	}

	// Another user sees nothing
	other := authz.Actor{ID: primitive.NewObjectID(), Role: models.RoleCentreLeader, EntityID: primitive.NewObjectID()}
	theirs, err := f.engine.List(ctx, other, positions.ListFilter{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(theirs) != 0 {
		t.Errorf("expected empty list, got %d", len(theirs))
	}

	// Admin sees everything
	all, err := f.engine.List(ctx, f.admin, positions.ListFilter{})
	if err != nil {
		t.Fatalf("admin List failed: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("expected 1 request, got %d", len(all))
	}
}
