package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/adeoluwa/flocktrack/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateDistrict creates a test district with the given name and number.
func (f *Fixtures) CreateDistrict(ctx context.Context, name string, number int) models.District {
	f.t.Helper()

	now := time.Now().UTC()
	d := models.District{
		ID:        primitive.NewObjectID(),
		Name:      name,
		NameCI:    text.Fold(name),
		Number:    number,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("districts").InsertOne(ctx, d); err != nil {
		f.t.Fatalf("failed to create test district: %v", err)
	}
	return d
}

// CreateArea creates a test area under the given district.
func (f *Fixtures) CreateArea(ctx context.Context, name string, districtID primitive.ObjectID) models.AreaSupervisor {
	f.t.Helper()

	now := time.Now().UTC()
	a := models.AreaSupervisor{
		ID:         primitive.NewObjectID(),
		Name:       name,
		NameCI:     text.Fold(name),
		DistrictID: districtID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if _, err := f.db.Collection("area_supervisors").InsertOne(ctx, a); err != nil {
		f.t.Fatalf("failed to create test area: %v", err)
	}
	return a
}

// CreateZone creates a test zone over the given areas.
func (f *Fixtures) CreateZone(ctx context.Context, name string, districtID primitive.ObjectID, areaIDs []primitive.ObjectID) models.ZonalSupervisor {
	f.t.Helper()

	now := time.Now().UTC()
	z := models.ZonalSupervisor{
		ID:         primitive.NewObjectID(),
		Name:       name,
		NameCI:     text.Fold(name),
		DistrictID: districtID,
		AreaIDs:    areaIDs,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if _, err := f.db.Collection("zonal_supervisors").InsertOne(ctx, z); err != nil {
		f.t.Fatalf("failed to create test zone: %v", err)
	}
	return z
}

// CreateCentre creates a test centre under the given area.
func (f *Fixtures) CreateCentre(ctx context.Context, name string, areaID primitive.ObjectID) models.Centre {
	f.t.Helper()

	now := time.Now().UTC()
	c := models.Centre{
		ID:        primitive.NewObjectID(),
		Name:      name,
		NameCI:    text.Fold(name),
		AreaID:    areaID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("centres").InsertOne(ctx, c); err != nil {
		f.t.Fatalf("failed to create test centre: %v", err)
	}
	return c
}

// CreateUser creates a test user with the given role. Non-admin roles
// must pass their owning entity id.
func (f *Fixtures) CreateUser(ctx context.Context, fullName, email, role string, entityID *primitive.ObjectID) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	u := models.User{
		ID:         primitive.NewObjectID(),
		FullName:   fullName,
		FullNameCI: text.Fold(fullName),
		Email:      email,
		Role:       role,
		EntityID:   entityID,
		Status:     "active",
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return u
}

// CreateAdmin creates a test admin user.
func (f *Fixtures) CreateAdmin(ctx context.Context, fullName, email string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, fullName, email, models.RoleAdmin, nil)
}

// CreateCentreLeader creates a test centre leader for the given centre.
func (f *Fixtures) CreateCentreLeader(ctx context.Context, fullName, email string, centreID primitive.ObjectID) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, fullName, email, models.RoleCentreLeader, &centreID)
}

// CreateAreaSupervisor creates a test area supervisor for the given area.
func (f *Fixtures) CreateAreaSupervisor(ctx context.Context, fullName, email string, areaID primitive.ObjectID) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, fullName, email, models.RoleAreaSupervisor, &areaID)
}

// CreateDistrictPastor creates a test district pastor for the given district.
func (f *Fixtures) CreateDistrictPastor(ctx context.Context, fullName, email string, districtID primitive.ObjectID) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, fullName, email, models.RoleDistrictPastor, &districtID)
}

// CreateReport creates a pending test report for the given centre-week.
func (f *Fixtures) CreateReport(ctx context.Context, centreID, submittedBy primitive.ObjectID, week string) models.WeeklyReport {
	f.t.Helper()

	now := time.Now().UTC()
	r := models.WeeklyReport{
		ID:       primitive.NewObjectID(),
		CentreID: centreID,
		Week:     week,
		Payload: models.ReportPayload{
			Male:          10,
			Female:        12,
			Children:      5,
			Offerings:     300,
			ModeOfMeeting: models.MeetingPhysical,
		},
		Status:        models.ReportPending,
		SubmittedByID: submittedBy,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if _, err := f.db.Collection("reports").InsertOne(ctx, r); err != nil {
		f.t.Fatalf("failed to create test report: %v", err)
	}
	return r
}
