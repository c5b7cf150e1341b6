// Package testutil provides shared test infrastructure, following the
// pattern of net/http/httptest: reusable helpers consumed by _test files
// across packages.
package testutil

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/docchat/docchat/db"
	"github.com/docchat/docchat/internal/database"
)

// EnvTestDatabaseURL optionally points integration tests at an existing
// PostgreSQL instance (with the pgvector extension available). When unset,
// SetupTestDB provisions a disposable container instead.
const EnvTestDatabaseURL = "DOCCHAT_TEST_DATABASE_URL"

// containerImage is the PostgreSQL image used for test databases. It ships
// the pgvector extension, which the chunk schema requires.
const containerImage = "pgvector/pgvector:pg16"

// SetupTestDB returns a connection pool on a migrated test database.
//
// By default it starts a throwaway PostgreSQL container and terminates it
// when the test finishes. Setting DOCCHAT_TEST_DATABASE_URL skips the
// container and reuses the given instance, which is faster when running
// the suite repeatedly. Without Docker and without the variable the test
// is skipped, so the unit suite stays runnable anywhere.
//
// The database is assumed disposable: tests may write freely and should
// clean up after themselves with TruncateAll.
func SetupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dbURL := os.Getenv(EnvTestDatabaseURL)
	if dbURL == "" {
		dbURL = startContainer(t)
	}

	if err := db.Migrate(dbURL); err != nil {
		t.Fatalf("migrating test database: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := database.NewPool(ctx, dbURL)
	if err != nil {
		t.Fatalf("connecting to test database: %v", err)
	}
	t.Cleanup(pool.Close)

	return pool
}

// startContainer provisions a disposable pgvector PostgreSQL container and
// returns its connection URL. The container is terminated via t.Cleanup.
func startContainer(t *testing.T) string {
	t.Helper()

	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		containerImage,
		postgres.WithDatabase("docchat_test"),
		postgres.WithUsername("docchat_test"),
		postgres.WithPassword("docchat_test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		// No Docker available. The suite still runs against an external
		// database via DOCCHAT_TEST_DATABASE_URL.
		t.Skipf("starting postgres container: %v", err)
	}
	t.Cleanup(func() {
		if err := pgContainer.Terminate(context.Background()); err != nil {
			t.Logf("terminating postgres container: %v", err)
		}
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("getting container connection string: %v", err)
	}
	return connStr
}

// TruncateAll clears every application table between tests.
func TruncateAll(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := pool.Exec(ctx,
		`TRUNCATE kb_chunks, knowledge_bases, chat_messages, chat_sessions`)
	if err != nil {
		t.Fatalf("truncating tables: %v", err)
	}
}
