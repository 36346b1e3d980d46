// Package integration runs the billing stores against a real PostgreSQL
// started with testcontainers.
package integration

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/turtacn/MRM-Billing/internal/config"
	"github.com/turtacn/MRM-Billing/internal/infrastructure/database/postgres"
	"github.com/turtacn/MRM-Billing/internal/infrastructure/monitoring/logging"
)

// EnvIntegrationEnabled controls whether integration tests run.
const EnvIntegrationEnabled = "MRM_INTEGRATION_TEST"

// SkipIfNoIntegration skips the calling test when the integration flag is unset.
func SkipIfNoIntegration(t *testing.T) {
	t.Helper()
	if os.Getenv(EnvIntegrationEnabled) == "" {
		t.Skipf("skipping integration test: set %s=1 to enable", EnvIntegrationEnabled)
	}
}

// Database is a migrated PostgreSQL reachable both through the application
// connection and a pgx pool used for direct row assertions.
type Database struct {
	Conn *postgres.Connection
	Pool *pgxpool.Pool
}

// StartPostgres launches a PostgreSQL 16 container and applies every
// embedded migration.
func StartPostgres(t *testing.T) *Database {
	t.Helper()
	SkipIfNoIntegration(t)
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "mrm",
				"POSTGRES_PASSWORD": "mrm",
				"POSTGRES_DB":       "mrm_test",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(90 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)
	portNum, err := strconv.Atoi(port.Port())
	require.NoError(t, err)

	cfg := config.DatabaseConfig{
		Host:     host,
		Port:     portNum,
		User:     "mrm",
		Password: "mrm",
		DBName:   "mrm_test",
		SSLMode:  "disable",
	}
	log := logging.NewNopLogger()
	conn, err := postgres.NewConnection(cfg, log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	mg, err := postgres.NewMigrator(conn.DB(), log)
	require.NoError(t, err)
	require.NoError(t, mg.Up())

	pool, err := pgxpool.New(ctx, fmt.Sprintf("postgres://mrm:mrm@%s:%d/mrm_test?sslmode=disable", host, portNum))
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	return &Database{Conn: conn, Pool: pool}
}

//Personal.AI order the ending
