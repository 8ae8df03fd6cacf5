package positionchangestore_test

import (
	"errors"
	"testing"
	"time"

	positionchangestore "github.com/adeoluwa/flocktrack/internal/app/store/positionchanges"
	"github.com/adeoluwa/flocktrack/internal/domain/models"
	"github.com/adeoluwa/flocktrack/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func pendingRequest(userID primitive.ObjectID) models.PositionChangeRequest {
	entity := primitive.NewObjectID()
	return models.PositionChangeRequest{
		UserID:          userID,
		CurrentRole:     models.RoleCentreLeader,
		DesiredRole:     models.RoleAreaSupervisor,
		DesiredEntityID: &entity,
	}
}

func TestStore_Insert(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := positionchangestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	userID := primitive.NewObjectID()
	req, err := store.Insert(ctx, pendingRequest(userID))
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if req.Status != models.PositionPending {
		t.Errorf("Status = %q, want pending", req.Status)
	}

	has, err := store.HasPending(ctx, userID)
	if err != nil {
		t.Fatalf("HasPending: %v", err)
	}
	if !has {
		t.Error("HasPending = false, want true")
	}
}

func TestStore_Insert_OnePendingPerUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := positionchangestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	userID := primitive.NewObjectID()
	if _, err := store.Insert(ctx, pendingRequest(userID)); err != nil {
		t.Fatalf("first Insert: %v", err)
	}
	if _, err := store.Insert(ctx, pendingRequest(userID)); !errors.Is(err, positionchangestore.ErrPendingExists) {
		t.Fatalf("err = %v, want ErrPendingExists", err)
	}

	// Another user is unaffected.
	if _, err := store.Insert(ctx, pendingRequest(primitive.NewObjectID())); err != nil {
		t.Fatalf("other user Insert: %v", err)
	}
}

func TestStore_Approve(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := positionchangestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	userID := primitive.NewObjectID()
	req, err := store.Insert(ctx, pendingRequest(userID))
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}

	reviewer := primitive.NewObjectID()
	got, err := store.Approve(ctx, req.ID, reviewer, time.Now().UTC())
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if got.Status != models.PositionApproved {
		t.Errorf("Status = %q, want approved", got.Status)
	}
	if got.ReviewedByID == nil || *got.ReviewedByID != reviewer {
		t.Error("ReviewedByID not recorded")
	}
	if got.ReviewedAt == nil {
		t.Error("ReviewedAt not recorded")
	}

	// A reviewed request cannot be reviewed again.
	if _, err := store.Reject(ctx, req.ID, reviewer, "late", time.Now().UTC()); !errors.Is(err, positionchangestore.ErrAlreadyReviewed) {
		t.Fatalf("err = %v, want ErrAlreadyReviewed", err)
	}

	// The approval freed the user's pending slot.
	has, err := store.HasPending(ctx, userID)
	if err != nil {
		t.Fatalf("HasPending: %v", err)
	}
	if has {
		t.Error("HasPending = true after review")
	}
	if _, err := store.Insert(ctx, pendingRequest(userID)); err != nil {
		t.Fatalf("Insert after review: %v", err)
	}
}

func TestStore_Reject(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := positionchangestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	req, err := store.Insert(ctx, pendingRequest(primitive.NewObjectID()))
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	got, err := store.Reject(ctx, req.ID, primitive.NewObjectID(), "area already has a supervisor", time.Now().UTC())
	if err != nil {
		t.Fatalf("Reject: %v", err)
	}
	if got.Status != models.PositionRejected {
		t.Errorf("Status = %q, want rejected", got.Status)
	}
	if got.RejectionReason != "area already has a supervisor" {
		t.Errorf("RejectionReason = %q", got.RejectionReason)
	}
}

func TestStore_Review_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := positionchangestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Approve(ctx, primitive.NewObjectID(), primitive.NewObjectID(), time.Now().UTC()); !errors.Is(err, mongo.ErrNoDocuments) {
		t.Fatalf("err = %v, want ErrNoDocuments", err)
	}
}

func TestStore_List(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := positionchangestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	alice := primitive.NewObjectID()
	bob := primitive.NewObjectID()
	first, err := store.Insert(ctx, pendingRequest(alice))
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if _, err := store.Reject(ctx, first.ID, primitive.NewObjectID(), "no", time.Now().UTC()); err != nil {
		t.Fatalf("Reject: %v", err)
	}
	if _, err := store.Insert(ctx, pendingRequest(alice)); err != nil {
		t.Fatalf("second Insert: %v", err)
	}
	if _, err := store.Insert(ctx, pendingRequest(bob)); err != nil {
		t.Fatalf("bob Insert: %v", err)
	}

	mine, err := store.List(ctx, positionchangestore.ListFilter{UserID: &alice})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(mine) != 2 {
		t.Fatalf("len = %d, want 2", len(mine))
	}

	pending, err := store.List(ctx, positionchangestore.ListFilter{Status: models.PositionPending})
	if err != nil {
		t.Fatalf("List pending: %v", err)
	}
	if len(pending) != 2 {
		t.Errorf("pending len = %d, want 2", len(pending))
	}

	all, err := store.List(ctx, positionchangestore.ListFilter{})
	if err != nil {
		t.Fatalf("List all: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("all len = %d, want 3", len(all))
	}
}
