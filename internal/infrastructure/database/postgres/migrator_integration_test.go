//go:build integration

// Integration tests for the migrator and the vocabulary repository. They
// start a PostgreSQL container and need Docker.
package postgres_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/turtacn/fragvocab/internal/infrastructure/database/postgres"
	"github.com/turtacn/fragvocab/internal/infrastructure/database/postgres/repositories"
	"github.com/turtacn/fragvocab/internal/infrastructure/monitoring/logging"
	ftypes "github.com/turtacn/fragvocab/pkg/types/fragment"
)

const testMigrationsDir = "../../../../migrations"

var testMigrationsPath = postgres.SourceURL(testMigrationsDir)

// startPostgres launches a PostgreSQL 16 container and returns its
// connection settings.
func startPostgres(t *testing.T) postgres.PostgresConfig {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "fragvocab_test",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	return postgres.PostgresConfig{
		Host:     host,
		Port:     port.Int(),
		Database: "fragvocab_test",
		Username: "test",
		Password: "test",
		SSLMode:  "disable",
	}
}

func TestMigrateUp_AppliesAndIsIdempotent(t *testing.T) {
	dbURL := postgres.BuildDSN(startPostgres(t))

	require.NoError(t, postgres.MigrateUp(dbURL, testMigrationsPath))
	require.NoError(t, postgres.MigrateUp(dbURL, testMigrationsPath))

	version, dirty, err := postgres.MigrationStatus(dbURL, testMigrationsPath)
	require.NoError(t, err)
	assert.False(t, dirty)
	assert.Equal(t, uint(1), version)
}

func TestMigrateDown_RollsBack(t *testing.T) {
	dbURL := postgres.BuildDSN(startPostgres(t))

	require.NoError(t, postgres.MigrateUp(dbURL, testMigrationsPath))
	require.NoError(t, postgres.MigrateDown(dbURL, testMigrationsPath, 1))

	version, _, err := postgres.MigrationStatus(dbURL, testMigrationsPath)
	require.NoError(t, err)
	assert.Equal(t, uint(0), version)
}

func TestVocabularyRepository_RoundTrip(t *testing.T) {
	cfg := startPostgres(t)

	conn, err := postgres.NewConnection(cfg, logging.NewNopLogger())
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.RunMigrations(testMigrationsDir))

	ctx := context.Background()
	repo := repositories.NewVocabularyRepository(conn.DB(), 2, logging.NewNopLogger())
	require.NoError(t, repo.Publish(ctx, "run-a", ftypes.VariantAromatic, []string{"CO", "CC", "c1ccccc1"}))
	require.NoError(t, repo.Publish(ctx, "run-b", ftypes.VariantAromatic, []string{"CC", "CN"}))

	rows, err := conn.DB().QueryContext(ctx,
		"SELECT smiles, first_run_id FROM fragments WHERE variant = $1 ORDER BY smiles COLLATE \"C\"", "aromatic")
	require.NoError(t, err)
	defer rows.Close()

	firstRun := map[string]string{}
	var order []string
	for rows.Next() {
		var smiles, runID string
		require.NoError(t, rows.Scan(&smiles, &runID))
		order = append(order, smiles)
		firstRun[smiles] = runID
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []string{"CC", "CN", "CO", "c1ccccc1"}, order)
	assert.Equal(t, "run-a", firstRun["CC"])
	assert.Equal(t, "run-b", firstRun["CN"])

	require.NoError(t, repo.RecordRun(ctx, ftypes.RunSummary{RunID: "run-a", Molecules: 3, Duration: time.Second}))

	var molecules int
	require.NoError(t, conn.DB().QueryRowContext(ctx,
		"SELECT molecules FROM vocabulary_runs WHERE run_id = $1", "run-a").Scan(&molecules))
	assert.Equal(t, 3, molecules)

	var size sql.NullInt64
	require.NoError(t, conn.DB().QueryRowContext(ctx,
		"SELECT size FROM run_variants WHERE run_id = $1 AND variant = $2", "run-b", "aromatic").Scan(&size))
	assert.Equal(t, int64(2), size.Int64)
}
