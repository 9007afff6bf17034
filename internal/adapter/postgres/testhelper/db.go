// Package testhelper starts a throwaway PostgreSQL for integration tests.
package testhelper

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/fliaght/novelmof/migrations"
)

// imageEnv overrides the PostgreSQL image used for tests.
const imageEnv = "NOVELMOF_TEST_PG_IMAGE"

var (
	once      sync.Once
	sharedDSN string
	initErr   error
)

// SetupTestDB returns a pool on a migrated PostgreSQL shared by the whole
// test run. The entry table is emptied before the test starts and the pool
// is closed on cleanup. Skipped under -short.
func SetupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("testhelper: postgres integration test skipped in short mode")
	}

	once.Do(func() {
		sharedDSN, initErr = startContainer()
	})
	if initErr != nil {
		t.Fatalf("testhelper: failed to setup test DB: %v", initErr)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, sharedDSN)
	if err != nil {
		t.Fatalf("testhelper: failed to create pgxpool: %v", err)
	}
	t.Cleanup(pool.Close)

	Truncate(t, pool)
	return pool
}

// Truncate empties the entry table.
func Truncate(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	if _, err := pool.Exec(context.Background(), `TRUNCATE mof_entries`); err != nil {
		t.Fatalf("testhelper: truncate: %v", err)
	}
}

func startContainer() (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	image := os.Getenv(imageEnv)
	if image == "" {
		image = "postgres:17-alpine"
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        image,
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "novelmof",
				"POSTGRES_PASSWORD": "novelmof",
				"POSTGRES_DB":       "novelmof_test",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		},
		Started: true,
	})
	if err != nil {
		return "", fmt.Errorf("start container: %w", err)
	}

	endpoint, err := container.PortEndpoint(ctx, "5432/tcp", "")
	if err != nil {
		return "", fmt.Errorf("container endpoint: %w", err)
	}
	dsn := fmt.Sprintf("postgres://novelmof:novelmof@%s/novelmof_test?sslmode=disable", endpoint)

	if err := migrate(ctx, dsn); err != nil {
		return "", err
	}
	return dsn, nil
}

func migrate(ctx context.Context, dsn string) error {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return fmt.Errorf("migration pool: %w", err)
	}
	defer pool.Close()

	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	if _, err := migrations.Up(ctx, migrations.Postgres, db); err != nil {
		return err
	}
	return nil
}
