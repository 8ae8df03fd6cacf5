package testutil

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/adeoluwa/flocktrack/internal/app/system/indexes"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// TestContext returns a context with a timeout suitable for one test's
// database work.
func TestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}

// SetupTestDB connects to a local MongoDB instance and returns a
// per-test database that is dropped on cleanup. Tests are skipped when
// no server is reachable, so the suite passes on machines without
// MongoDB. Set TEST_MONGO_URI to point at a non-default server.
func SetupTestDB(t *testing.T) *mongo.Database {
	t.Helper()

	uri := os.Getenv("TEST_MONGO_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		t.Skipf("mongodb unavailable at %s: %v", uri, err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		t.Skipf("mongodb unavailable at %s: %v", uri, err)
	}

	name := fmt.Sprintf("flocktrack_test_%d", time.Now().UnixNano())
	db := client.Database(name)

	idxCtx, idxCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer idxCancel()
	if err := indexes.EnsureAll(idxCtx, db); err != nil {
		_ = client.Disconnect(context.Background())
		t.Fatalf("failed to ensure indexes: %v", err)
	}

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = db.Drop(ctx)
		_ = client.Disconnect(ctx)
	})

	return db
}
