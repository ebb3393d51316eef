package pgutil

import (
	"context"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"

	"github.com/chainsafe/primary-sale-minter/internal/testutil"
	"github.com/chainsafe/primary-sale-minter/pkg/config"
)

const (
	testImage    = "postgres:15-alpine"
	testDatabase = "sale_test"
	testUser     = "sale"
	connectTries = 8
)

// SetupTestDB starts a PostgreSQL testcontainer and connects to it. The test
// is skipped when docker is unavailable.
func SetupTestDB(t *testing.T) (*bun.DB, func()) {
	t.Helper()
	testutil.RequireDocker(t)
	ctx := context.Background()

	container, err := postgres.Run(ctx, testImage,
		postgres.WithDatabase(testDatabase),
		postgres.WithUsername(testUser),
		postgres.WithPassword(testUser),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}
	terminate := func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}

	host, err := container.Host(ctx)
	if err != nil {
		terminate()
		t.Fatalf("failed to get container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		terminate()
		t.Fatalf("failed to get container port: %v", err)
	}

	cfg := &config.DatabaseConfig{
		Host:     host,
		Port:     port.Int(),
		User:     testUser,
		Password: testUser,
		Database: testDatabase,
		SSLMode:  "disable",
	}

	// the container may log readiness before it accepts tcp connections
	var db *bun.DB
	for attempt := 0; ; attempt++ {
		db, err = ConnectDB(cfg)
		if err == nil {
			break
		}
		if attempt == connectTries-1 {
			terminate()
			t.Fatalf("failed to connect to test database after %d attempts: %v", connectTries, err)
		}
		time.Sleep(time.Duration(100<<attempt) * time.Millisecond)
	}

	return db, func() {
		_ = db.Close()
		terminate()
	}
}

// AssertTableExists fails the test when tableName is missing from the public schema.
func AssertTableExists(t *testing.T, db *bun.DB, tableName string) {
	t.Helper()
	if !tableExists(t, db, tableName) {
		t.Errorf("table %s does not exist", tableName)
	}
}

// AssertTableNotExists fails the test when tableName is present in the public schema.
func AssertTableNotExists(t *testing.T, db *bun.DB, tableName string) {
	t.Helper()
	if tableExists(t, db, tableName) {
		t.Errorf("table %s should not exist but it does", tableName)
	}
}

// AssertIndexExists fails the test when indexName is missing from the public schema.
func AssertIndexExists(t *testing.T, db *bun.DB, indexName string) {
	t.Helper()
	if !indexExists(t, db, indexName) {
		t.Errorf("index %s does not exist", indexName)
	}
}

// AssertIndexNotExists fails the test when indexName is present in the public schema.
func AssertIndexNotExists(t *testing.T, db *bun.DB, indexName string) {
	t.Helper()
	if indexExists(t, db, indexName) {
		t.Errorf("index %s should not exist but it does", indexName)
	}
}

func tableExists(t *testing.T, db *bun.DB, name string) bool {
	t.Helper()
	return exists(t, db,
		"EXISTS (SELECT 1 FROM information_schema.tables WHERE table_schema = 'public' AND table_name = ?)", name)
}

func indexExists(t *testing.T, db *bun.DB, name string) bool {
	t.Helper()
	return exists(t, db,
		"EXISTS (SELECT 1 FROM pg_indexes WHERE schemaname = 'public' AND indexname = ?)", name)
}

func exists(t *testing.T, db *bun.DB, query, name string) bool {
	t.Helper()
	var ok bool
	if err := db.NewSelect().ColumnExpr(query, name).Scan(context.Background(), &ok); err != nil {
		t.Fatalf("failed to look up %s: %v", name, err)
	}
	return ok
}
