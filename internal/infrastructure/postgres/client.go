package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ClientConfig holds configuration for the PostgreSQL client.
type ClientConfig struct {
	DSN string
	// ApplicationName shows up in pg_stat_activity next to each connection.
	ApplicationName string
	// ConnectTimeout bounds pool creation plus the initial ping.
	ConnectTimeout time.Duration
	// MaxConns stays small: cache documents are written by a single worker.
	MaxConns int32
}

// DefaultClientConfig returns a ClientConfig sized for the cache workload:
// one writer process and a handful of ops reads.
func DefaultClientConfig(dsn string) ClientConfig {
	return ClientConfig{
		DSN:             dsn,
		ApplicationName: "cliprelay-worker",
		ConnectTimeout:  10 * time.Second,
		MaxConns:        4,
	}
}

// Client owns the pool that backs cache documents stored in PostgreSQL.
type Client struct {
	pool *pgxpool.Pool
}

// NewClient opens a connection pool and fails fast if the database is unreachable.
func NewClient(ctx context.Context, cfg ClientConfig) (*Client, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = cfg.MaxConns
	}
	if cfg.ApplicationName != "" {
		poolConfig.ConnConfig.RuntimeParams["application_name"] = cfg.ApplicationName
	}

	if cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Client{pool: pool}, nil
}

// Pool returns the pool shared by document repositories.
func (c *Client) Pool() *pgxpool.Pool {
	return c.pool
}

// Ping backs the worker health check.
func (c *Client) Ping(ctx context.Context) error {
	return c.pool.Ping(ctx)
}

func (c *Client) Close() {
	c.pool.Close()
}
