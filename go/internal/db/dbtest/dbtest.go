// Package dbtest opens the Postgres database used by integration tests.
package dbtest

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/planningpoker/go/internal/db"
)

// EnvURL names the variable holding the test database URL.
const EnvURL = "POKER_TEST_DATABASE_URL"

// Open connects to the test database, applies the schema and empties every table. The test is
// skipped when no database is configured.
func Open(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv(EnvURL)
	if url == "" {
		t.Skipf("%s not set", EnvURL)
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, db.Migrate(ctx, pool))
	_, err = pool.Exec(ctx, `TRUNCATE change_outbox, confidence_votes, votes, issues, players, games`)
	require.NoError(t, err)
	return pool
}
