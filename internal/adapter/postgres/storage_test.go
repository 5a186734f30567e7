package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"bat-ads/internal/adapter/storagetest"
	"bat-ads/internal/core/port"
	"bat-ads/internal/db"
)

// TestStorage needs a disposable database: every table is truncated before
// each case.
func TestStorage(t *testing.T) {
	dsn := os.Getenv("PSQL_DSN")
	if dsn == "" {
		t.Skip("PSQL_DSN not set")
	}
	require.NoError(t, db.Migrate(db.DriverPostgres, dsn))

	storagetest.Run(t, func(t *testing.T) port.Storage {
		ctx := context.Background()
		pool, err := pgxpool.New(ctx, dsn)
		require.NoError(t, err)
		_, err = pool.Exec(ctx, `TRUNCATE unblinded_tokens, payment_tokens, ad_events, confirmations, confirmed_placements`)
		require.NoError(t, err)
		s := New(pool)
		t.Cleanup(s.Close)
		return s
	})
}
