package districtstore_test

import (
	"testing"

	districtstore "github.com/adeoluwa/flocktrack/internal/app/store/districts"
	"github.com/adeoluwa/flocktrack/internal/domain/models"
	"github.com/adeoluwa/flocktrack/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := districtstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.District{Name: "District One", Number: 1})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if created.ID == primitive.NilObjectID {
		t.Error("expected ID to be assigned")
	}
	if created.NameCI != "district one" {
		t.Errorf("NameCI: got %q, want %q", created.NameCI, "district one")
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be set")
	}
}

func TestStore_Create_BadNumber(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := districtstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	for _, n := range []int{0, 7, -1} {
		if _, err := store.Create(ctx, models.District{Name: "Out of Range", Number: n}); err != districtstore.ErrBadNumber {
			t.Errorf("number %d: expected ErrBadNumber, got %v", n, err)
		}
	}
}

func TestStore_Create_DuplicateNumber(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := districtstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Create(ctx, models.District{Name: "First", Number: 2}); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}
	if _, err := store.Create(ctx, models.District{Name: "Second", Number: 2}); err != districtstore.ErrDuplicateDistrict {
		t.Errorf("expected ErrDuplicateDistrict, got %v", err)
	}
}

func TestStore_GetByID_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := districtstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.GetByID(ctx, primitive.NewObjectID()); err != mongo.ErrNoDocuments {
		t.Errorf("expected mongo.ErrNoDocuments, got %v", err)
	}
}

func TestStore_List_SortedByNumber(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := districtstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	for _, d := range []models.District{
		{Name: "Third", Number: 3},
		{Name: "First", Number: 1},
		{Name: "Second", Number: 2},
	} {
		if _, err := store.Create(ctx, d); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	got, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 districts, got %d", len(got))
	}
	for i, want := range []int{1, 2, 3} {
		if got[i].Number != want {
			t.Errorf("position %d: got number %d, want %d", i, got[i].Number, want)
		}
	}
}
