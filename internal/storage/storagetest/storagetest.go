// Package storagetest opens a migrated, empty database for integration tests.
// Tests are skipped unless TEST_DATABASE_URL points at a disposable PostgreSQL.
package storagetest

import (
	"context"
	"os"
	"testing"

	"github.com/Domenick1991/aeronavigator/internal/storage"
	"github.com/Domenick1991/aeronavigator/pkg/logger"
	"github.com/stretchr/testify/require"
)

const EnvDatabaseURL = "TEST_DATABASE_URL"

func NewGateway(t *testing.T) *storage.Gateway {
	t.Helper()
	dsn := os.Getenv(EnvDatabaseURL)
	if dsn == "" {
		t.Skipf("%s not set", EnvDatabaseURL)
	}

	require.NoError(t, storage.RunMigrations(dsn))

	ctx := context.Background()
	g, err := storage.Open(ctx, dsn, 16, logger.NewNop())
	require.NoError(t, err)
	t.Cleanup(g.Close)

	_, err = g.Execute(ctx, `TRUNCATE bookings, flights, users RESTART IDENTITY CASCADE`)
	require.NoError(t, err)
	return g
}
