package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"bat-ads/internal/core/port"
)

var _ port.Storage = (*Storage)(nil)

// Storage implements every storage port on a pgx pool.
type Storage struct {
	pool *pgxpool.Pool
}

// New returns storage backed by pool. Close closes the pool.
func New(pool *pgxpool.Pool) *Storage {
	return &Storage{pool: pool}
}

// Ping checks the pool can reach the server.
func (s *Storage) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Storage) Close() {
	s.pool.Close()
}
