// Package database provides PostgreSQL connection management using pgx and
// the lazily resolved festival store.
package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/festifind/festifind/internal/config"
)

// ErrNotConfigured is returned when the store URL or key is missing.
var ErrNotConfigured = errors.New("store url and key are required")

// PoolConfig parses the store URL and applies the key as the password.
func PoolConfig(cfg config.StoreConfig) (*pgxpool.Config, error) {
	if !cfg.Enabled() {
		return nil, ErrNotConfigured
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse db config: %w", err)
	}
	poolCfg.ConnConfig.Password = cfg.Key

	// Sensible pool defaults for a small service.
	poolCfg.MaxConns = 20
	poolCfg.MinConns = 2
	poolCfg.MaxConnLifetime = 30 * time.Minute
	poolCfg.MaxConnIdleTime = 5 * time.Minute
	return poolCfg, nil
}

// NewPool creates and validates a pgxpool connection pool, trying up to
// attempts times with a 2s pause between tries.
func NewPool(ctx context.Context, cfg config.StoreConfig, attempts int, logger *zap.Logger) (*pgxpool.Pool, error) {
	poolCfg, err := PoolConfig(cfg)
	if err != nil {
		return nil, err
	}
	if attempts < 1 {
		attempts = 1
	}
	timeout := cfg.ConnectTimeout.Duration
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	for attempt := 1; attempt <= attempts; attempt++ {
		var pool *pgxpool.Pool
		pool, err = pgxpool.NewWithConfig(ctx, poolCfg)
		if err == nil {
			pingCtx, cancel := context.WithTimeout(ctx, timeout)
			err = pool.Ping(pingCtx)
			cancel()
			if err == nil {
				return pool, nil
			}
			pool.Close()
		}
		if attempt < attempts {
			logger.Warn("db connect failed, retrying",
				zap.Int("attempt", attempt), zap.Int("attempts", attempts), zap.Error(err))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(2 * time.Second):
			}
		}
	}
	return nil, fmt.Errorf("connect to postgres: %w", err)
}
