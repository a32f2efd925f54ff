package pg

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Config holds Postgres connection settings with environment variable mapping.
type Config struct {
	ConnectionURL  string        `env:"PG_URL,required"`
	MaxConns       int32         `env:"PG_MAX_CONNS" envDefault:"10"`
	RetryAttempts  int           `env:"PG_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval  time.Duration `env:"PG_RETRY_INTERVAL" envDefault:"5s"`
	ConnectTimeout time.Duration `env:"PG_CONNECT_TIMEOUT" envDefault:"30s"`
}

// Connect creates a pgx pool and verifies connectivity with a ping, retrying
// transient failures. The context bounds the whole connection process.
func Connect(ctx context.Context, cfg Config) (*pgxpool.Pool, error) {
	if cfg.ConnectionURL == "" {
		return nil, ErrEmptyConnectionURL
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.ConnectionURL)
	if err != nil {
		return nil, errors.Join(ErrFailedToParseConnString, err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}

	if cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, errors.Join(ErrNotReady, err)
	}

	attempts := max(cfg.RetryAttempts, 1)
	var lastErr error
	for i := range attempts {
		if lastErr = pool.Ping(ctx); lastErr == nil {
			return pool, nil
		}

		if i < attempts-1 {
			select {
			case <-ctx.Done():
				pool.Close()
				return nil, errors.Join(ErrNotReady, ctx.Err())
			case <-time.After(cfg.RetryInterval):
			}
		}
	}

	pool.Close()
	return nil, errors.Join(ErrNotReady, lastErr)
}

// Healthcheck returns a probe function suitable for readiness endpoints.
func Healthcheck(pool *pgxpool.Pool) func(context.Context) error {
	return func(ctx context.Context) error {
		if err := pool.Ping(ctx); err != nil {
			return fmt.Errorf("%w: %w", ErrHealthcheckFailed, err)
		}
		return nil
	}
}
