package testutil

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/adeoluwa/flocktrack/internal/app/system/auth"
	"github.com/adeoluwa/flocktrack/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TestUser represents user data for testing HTTP handlers.
type TestUser struct {
	ID       string
	Name     string
	Email    string
	Role     string
	EntityID string
}

// AdminUser returns a TestUser with admin role.
func AdminUser() TestUser {
	return TestUser{
		ID:    primitive.NewObjectID().Hex(),
		Name:  "Test Admin",
		Email: "admin@test.com",
		Role:  models.RoleAdmin,
	}
}

// CentreLeaderUser returns a TestUser leading the given centre.
func CentreLeaderUser(centreID primitive.ObjectID) TestUser {
	return TestUser{
		ID:       primitive.NewObjectID().Hex(),
		Name:     "Test Centre Leader",
		Email:    "leader@test.com",
		Role:     models.RoleCentreLeader,
		EntityID: centreID.Hex(),
	}
}

// AreaSupervisorUser returns a TestUser supervising the given area.
func AreaSupervisorUser(areaID primitive.ObjectID) TestUser {
	return TestUser{
		ID:       primitive.NewObjectID().Hex(),
		Name:     "Test Area Supervisor",
		Email:    "area@test.com",
		Role:     models.RoleAreaSupervisor,
		EntityID: areaID.Hex(),
	}
}

// ZonalSupervisorUser returns a TestUser supervising the given zone.
func ZonalSupervisorUser(zoneID primitive.ObjectID) TestUser {
	return TestUser{
		ID:       primitive.NewObjectID().Hex(),
		Name:     "Test Zonal Supervisor",
		Email:    "zone@test.com",
		Role:     models.RoleZonalSupervisor,
		EntityID: zoneID.Hex(),
	}
}

// DistrictPastorUser returns a TestUser pastoring the given district.
func DistrictPastorUser(districtID primitive.ObjectID) TestUser {
	return TestUser{
		ID:       primitive.NewObjectID().Hex(),
		Name:     "Test District Pastor",
		Email:    "pastor@test.com",
		Role:     models.RoleDistrictPastor,
		EntityID: districtID.Hex(),
	}
}

// WithUser adds a user to the request context for testing authenticated handlers.
// This bypasses the session middleware and injects the user directly.
func WithUser(r *http.Request, user TestUser) *http.Request {
	sessionUser := &auth.SessionUser{
		ID:       user.ID,
		Name:     user.Name,
		LoginID:  user.Email,
		Role:     user.Role,
		EntityID: user.EntityID,
	}
	return auth.WithTestUser(r, sessionUser)
}

// NewRequest creates an HTTP request for testing.
func NewRequest(method, target string) *http.Request {
	return httptest.NewRequest(method, target, nil)
}

// NewJSONRequest creates an HTTP request with a JSON body.
func NewJSONRequest(method, target string, body io.Reader) *http.Request {
	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// NewAuthenticatedRequest creates an HTTP request with a user in context.
func NewAuthenticatedRequest(method, target string, user TestUser) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	return WithUser(req, user)
}

// ResponseRecorder wraps httptest.ResponseRecorder with helper methods.
type ResponseRecorder struct {
	*httptest.ResponseRecorder
}

// NewRecorder creates a new ResponseRecorder.
func NewRecorder() *ResponseRecorder {
	return &ResponseRecorder{httptest.NewRecorder()}
}

// AssertStatus checks the response status code.
func (r *ResponseRecorder) AssertStatus(t interface{ Errorf(string, ...any) }, expected int) {
	if r.Code != expected {
		t.Errorf("status code: got %d, want %d", r.Code, expected)
	}
}

// AssertContains checks if the response body contains the expected string.
func (r *ResponseRecorder) AssertContains(t interface{ Errorf(string, ...any) }, expected string) {
	if !strings.Contains(r.Body.String(), expected) {
		t.Errorf("response body does not contain %q", expected)
	}
}
