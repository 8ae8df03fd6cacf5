package indexes_test

import (
	"testing"

	"github.com/adeoluwa/flocktrack/internal/app/system/indexes"
	"github.com/adeoluwa/flocktrack/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// SetupTestDB already runs EnsureAll once, so every test here starts
// from a database whose indexes exist.

func indexNames(t *testing.T, db *mongo.Database, collection string) map[string]bool {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()

	cur, err := db.Collection(collection).Indexes().List(ctx)
	if err != nil {
		t.Fatalf("List indexes on %s failed: %v", collection, err)
	}
	defer cur.Close(ctx)

	names := make(map[string]bool)
	for cur.Next(ctx) {
		var idx bson.M
		if err := cur.Decode(&idx); err != nil {
			continue
		}
		if name, ok := idx["name"].(string); ok {
			names[name] = true
		}
	}
	return names
}

func assertIndexes(t *testing.T, db *mongo.Database, collection string, expected []string) {
	t.Helper()
	names := indexNames(t, db, collection)
	for _, name := range expected {
		if !names[name] {
			t.Errorf("expected index %q to exist on %s collection", name, collection)
		}
	}
}

func TestEnsureAll_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// A second run against the same database must succeed unchanged.
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("second EnsureAll failed: %v", err)
	}
}

func TestEnsureAll_CreatesUserIndexes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	assertIndexes(t, db, "users", []string{
		"uniq_users_email",
		"idx_users_role_entity_status",
		"idx_users_role_fullnameci_id",
	})
}

func TestEnsureAll_CreatesHierarchyIndexes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	assertIndexes(t, db, "districts", []string{
		"uniq_districts_number",
		"uniq_districts_nameci",
	})
	assertIndexes(t, db, "area_supervisors", []string{
		"uniq_areas_district_nameci",
		"idx_areas_district",
	})
	assertIndexes(t, db, "zonal_supervisors", []string{
		"uniq_zones_district_nameci",
		"idx_zones_areaids",
	})
	assertIndexes(t, db, "centres", []string{
		"uniq_centres_area_nameci",
		"idx_centres_area",
	})
}

func TestEnsureAll_CreatesReportIndexes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	assertIndexes(t, db, "reports", []string{
		"uniq_reports_centre_week",
		"idx_reports_status_centre_week",
		"idx_reports_week",
	})
}

func TestEnsureAll_CreatesPositionChangeIndexes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	assertIndexes(t, db, "position_change_requests", []string{
		"uniq_position_requests_pending_user",
		"idx_position_requests_user_created",
		"idx_position_requests_status_created",
	})
}

func TestEnsureAll_CreatesNotificationAndMessageIndexes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	assertIndexes(t, db, "notifications", []string{
		"idx_notifications_recipient_read_created",
		"idx_notifications_event",
	})
	assertIndexes(t, db, "messages", []string{
		"idx_messages_recipient_created",
		"idx_messages_sender_created",
	})
}

func TestEnsureAll_UniqueIndexEnforced(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := db.Collection("districts").InsertOne(ctx, bson.M{"number": 3, "name": "Three", "name_ci": "three"})
	if err != nil {
		t.Fatalf("insert district failed: %v", err)
	}
	_, err = db.Collection("districts").InsertOne(ctx, bson.M{"number": 3, "name": "Other", "name_ci": "other"})
	if err == nil {
		t.Error("expected duplicate key error for unique index on districts.number")
	}
}

func TestEnsureAll_PendingRequestIndexIsPartial(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	c := db.Collection("position_change_requests")
	if _, err := c.InsertOne(ctx, bson.M{"user_id": "u1", "status": "rejected"}); err != nil {
		t.Fatalf("insert reviewed request failed: %v", err)
	}
	// Reviewed requests are outside the partial filter, so a second one
	// for the same user is fine.
	if _, err := c.InsertOne(ctx, bson.M{"user_id": "u1", "status": "rejected"}); err != nil {
		t.Fatalf("second reviewed request should not collide: %v", err)
	}
	if _, err := c.InsertOne(ctx, bson.M{"user_id": "u1", "status": "pending"}); err != nil {
		t.Fatalf("first pending request failed: %v", err)
	}
	if _, err := c.InsertOne(ctx, bson.M{"user_id": "u1", "status": "pending"}); err == nil {
		t.Error("expected duplicate key error for second pending request")
	}
}
