package login_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/adeoluwa/flocktrack/internal/app/features/login"
	userstore "github.com/adeoluwa/flocktrack/internal/app/store/users"
	"github.com/adeoluwa/flocktrack/internal/app/system/auth"
	"github.com/adeoluwa/flocktrack/internal/app/system/status"
	"github.com/adeoluwa/flocktrack/internal/domain/models"
	"github.com/adeoluwa/flocktrack/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func newLoginHandler(t *testing.T, db *mongo.Database) *login.Handler {
	t.Helper()
	logger := zap.NewNop()
	sm, err := auth.NewSessionManager("test-session-key-0123456789ABCDEF", "flocktrack-test", "", false, logger)
	if err != nil {
		t.Fatalf("NewSessionManager: %v", err)
	}
	return login.NewHandler(db, sm, logger)
}

func createAccount(t *testing.T, db *mongo.Database, email, password, userStatus string) models.User {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	centreID := primitive.NewObjectID()
	u, err := userstore.New(db).Create(ctx, models.User{
		FullName:     "Login Tester",
		Email:        email,
		PasswordHash: string(hash),
		Role:         models.RoleCentreLeader,
		EntityID:     &centreID,
		Status:       userStatus,
	})
	if err != nil {
		t.Fatalf("Create user: %v", err)
	}
	return u
}

func TestHandleLogin(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newLoginHandler(t, db)
	createAccount(t, db, "grace@example.com", "open-sesame", status.Active)

	req := testutil.NewJSONRequest(http.MethodPost, "/login",
		strings.NewReader(`{"email":"GRACE@example.com","password":"open-sesame"}`))
	rec := testutil.NewRecorder()
	h.HandleLogin(rec.ResponseRecorder, req)

	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"email":"grace@example.com"`)
	rec.AssertContains(t, `"role":"centre_leader"`)
	if rec.Header().Get("Set-Cookie") == "" {
		t.Error("expected a session cookie on successful login")
	}
}

func TestHandleLogin_BadCredentials(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newLoginHandler(t, db)
	createAccount(t, db, "grace@example.com", "open-sesame", status.Active)

	cases := []struct {
		name string
		body string
	}{
		{"wrong password", `{"email":"grace@example.com","password":"wrong"}`},
		{"unknown email", `{"email":"nobody@example.com","password":"open-sesame"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := testutil.NewJSONRequest(http.MethodPost, "/login", strings.NewReader(tc.body))
			rec := testutil.NewRecorder()
			h.HandleLogin(rec.ResponseRecorder, req)
			rec.AssertStatus(t, http.StatusUnauthorized)
			rec.AssertContains(t, "invalid credentials")
		})
	}
}

func TestHandleLogin_DisabledAccount(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newLoginHandler(t, db)
	createAccount(t, db, "gone@example.com", "open-sesame", status.Disabled)

	// Disabled accounts get the same answer as bad credentials.
	req := testutil.NewJSONRequest(http.MethodPost, "/login",
		strings.NewReader(`{"email":"gone@example.com","password":"open-sesame"}`))
	rec := testutil.NewRecorder()
	h.HandleLogin(rec.ResponseRecorder, req)
	rec.AssertStatus(t, http.StatusUnauthorized)
	rec.AssertContains(t, "invalid credentials")
}

func TestHandleLogin_MissingFields(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newLoginHandler(t, db)

	req := testutil.NewJSONRequest(http.MethodPost, "/login", strings.NewReader(`{"email":"grace@example.com"}`))
	rec := testutil.NewRecorder()
	h.HandleLogin(rec.ResponseRecorder, req)
	rec.AssertStatus(t, http.StatusBadRequest)
}
