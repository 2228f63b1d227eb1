// Package testutil provides helpers for integration tests that need a real
// PostgreSQL server: a shared test container and throwaway databases on it.
package testutil

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/cybertec-postgresql/dbal/internal/dbal"
	"github.com/cybertec-postgresql/dbal/internal/params"
	"github.com/cybertec-postgresql/dbal/pkg/types"
)

const (
	// PostgresImage is the Docker image used for PostgreSQL test containers
	PostgresImage = "docker.io/postgres:16-alpine"

	// Default test database credentials
	TestDatabase = "testdb"
	TestUsername = "testuser"
	TestPassword = "testpass"
)

// SetupPostgresContainer starts a PostgreSQL container and returns the
// connection parameters for the given driver (pgx or pq). The container is
// terminated when the test finishes. Tests are skipped in -short mode.
func SetupPostgresContainer(t *testing.T, driverName string) types.Params {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		PostgresImage,
		postgres.WithDatabase(TestDatabase),
		postgres.WithUsername(TestUsername),
		postgres.WithPassword(TestPassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("Failed to start PostgreSQL container: %v", err)
	}
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	})

	host, err := pgContainer.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}
	port, err := pgContainer.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}
	portNum, err := strconv.Atoi(port.Port())
	if err != nil {
		t.Fatalf("Failed to parse container port %q: %v", port.Port(), err)
	}

	return types.Params{
		Driver:   driverName,
		Host:     host,
		Port:     portNum,
		User:     TestUsername,
		Password: TestPassword,
		DBName:   TestDatabase,
		SSLMode:  "disable",
	}
}

// CreateTempDatabase creates a uniquely named database through admin and
// returns base pointed at it. The database is dropped when the test ends.
func CreateTempDatabase(t *testing.T, admin *dbal.Connection, base types.Params) types.Params {
	t.Helper()
	ctx := context.Background()

	timestamp := time.Now().Format("20060102_150405")
	randomBytes := make([]byte, 4)
	if _, err := rand.Read(randomBytes); err != nil {
		t.Fatalf("failed to generate random suffix: %v", err)
	}
	dbName := fmt.Sprintf("dbal_test_%s_%s", timestamp, hex.EncodeToString(randomBytes))

	if _, err := admin.ExecuteStatement(ctx, "CREATE DATABASE "+dbName, params.Params{}, params.Types{}); err != nil {
		t.Fatalf("failed to create temporary database: %v", err)
	}
	t.Cleanup(func() {
		drop := fmt.Sprintf("DROP DATABASE IF EXISTS %s WITH (FORCE)", dbName)
		if _, err := admin.ExecuteStatement(ctx, drop, params.Params{}, params.Types{}); err != nil {
			t.Logf("failed to drop temporary database %s: %v", dbName, err)
		}
	})

	p := base
	p.DBName = dbName
	return p
}
