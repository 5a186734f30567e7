package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"bat-ads/internal/config/configs"
)

const defaultPingTimeout = 5 * time.Second

// NewPostgresPool opens a pool for the profile store and pings it within
// cfg.PingTimeout. On a failed ping the pool is closed and the error
// returned. The caller closes the pool, usually through postgres.Storage.
func NewPostgresPool(ctx context.Context, cfg configs.Postgres) (*pgxpool.Pool, error) {
	poolConf, err := pgxpool.ParseConfig(cfg.Addr.String())
	if err != nil {
		return nil, err
	}
	if cfg.MaxConns > 0 {
		poolConf.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolConf.MinConns = cfg.MinConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConf)
	if err != nil {
		return nil, err
	}

	timeout := cfg.PingTimeout
	if timeout <= 0 {
		timeout = defaultPingTimeout
	}
	ctxPing, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err = pool.Ping(ctxPing); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}
