// Package postgres persists launches and consumed trade signatures in PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DefaultMaxConns bounds the pool when no option overrides it.
const DefaultMaxConns = 10

// SQLSTATE codes the stores translate into storage sentinels.
const (
	codeUniqueViolation      = "23505"
	codeSerializationFailure = "40001"
)

// Pool is the shared pgx pool handed to every store.
type Pool struct {
	*pgxpool.Pool
}

// PoolOption adjusts the pgxpool configuration before connecting.
type PoolOption func(*pgxpool.Config)

// WithMaxConns sets the maximum number of pooled connections.
func WithMaxConns(n int32) PoolOption {
	return func(c *pgxpool.Config) {
		if n > 0 {
			c.MaxConns = n
		}
	}
}

// NewPool connects to dsn and pings the server.
func NewPool(ctx context.Context, dsn string, opts ...PoolOption) (*Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	cfg.MaxConns = DefaultMaxConns
	for _, opt := range opts {
		opt(cfg)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Pool{Pool: pool}, nil
}

// Close releases every pooled connection.
func (p *Pool) Close() {
	p.Pool.Close()
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// isDuplicateKeyError reports a unique or primary key violation,
// e.g. a second launch for a mint or a consumed trade signature.
func isDuplicateKeyError(err error) bool {
	return err != nil && pgCode(err) == codeUniqueViolation
}

// isSerializationError reports a transaction aborted by a concurrent writer.
func isSerializationError(err error) bool {
	return err != nil && pgCode(err) == codeSerializationFailure
}

func isNotFoundError(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
