// Package cache provides a Redis read-through decorator for the festival store.
//
// List results are stored under a key derived from the filter and a
// generation counter. Every successful Update bumps the generation, so stale
// entries are never read again and simply expire.
package cache

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/festifind/festifind/internal/config"
	"github.com/festifind/festifind/internal/model"
	"github.com/festifind/festifind/internal/repository"
)

// NewRedisClient builds a client for cfg and pings it with a short timeout.
// It returns nil when Redis is unreachable so callers run without a cache.
func NewRedisClient(ctx context.Context, cfg config.CacheConfig) *redis.Client {
	var tlsConf *tls.Config
	if cfg.TLS {
		tlsConf = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(&redis.Options{
		Addr:      cfg.Addr,
		Password:  cfg.Password,
		DB:        cfg.DB,
		TLSConfig: tlsConf,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil
	}
	return client
}

// Store caches List results of an underlying live store.
type Store struct {
	next   repository.Store
	rdb    redis.UniversalClient
	ttl    time.Duration
	prefix string
	logger *zap.Logger
}

// New wraps next. Redis failures are logged and fall through to next.
func New(next repository.Store, rdb redis.UniversalClient, cfg config.CacheConfig, logger *zap.Logger) *Store {
	ttl := cfg.TTL.Duration
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "festifind"
	}
	return &Store{next: next, rdb: rdb, ttl: ttl, prefix: prefix, logger: logger}
}

// Live reports the wrapped store's mode.
func (s *Store) Live() bool { return s.next.Live() }

// List serves from Redis when possible and populates it on a miss.
func (s *Store) List(ctx context.Context, f model.Filter) ([]model.FestivalWithPreferences, error) {
	key, err := s.listKey(ctx, f)
	if err != nil {
		s.logger.Warn("cache generation lookup failed", zap.Error(err))
		return s.next.List(ctx, f)
	}

	if bs, err := s.rdb.Get(ctx, key).Bytes(); err == nil {
		var rows []model.FestivalWithPreferences
		if err := json.Unmarshal(bs, &rows); err == nil {
			return rows, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		s.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
	}

	rows, err := s.next.List(ctx, f)
	if err != nil {
		return nil, err
	}
	if bs, err := json.Marshal(rows); err == nil {
		if err := s.rdb.Set(ctx, key, bs, s.ttl).Err(); err != nil {
			s.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return rows, nil
}

// Update writes through to the wrapped store and invalidates cached lists.
func (s *Store) Update(ctx context.Context, id string, p model.Patch) (*model.FestivalWithPreferences, error) {
	row, err := s.next.Update(ctx, id, p)
	if err != nil {
		return nil, err
	}
	if err := s.rdb.Incr(context.WithoutCancel(ctx), s.generationKey()).Err(); err != nil {
		s.logger.Warn("cache invalidation failed", zap.String("id", id), zap.Error(err))
	}
	return row, nil
}

func (s *Store) generationKey() string {
	return s.prefix + ":festivals:gen"
}

func (s *Store) listKey(ctx context.Context, f model.Filter) (string, error) {
	gen, err := s.rdb.Get(ctx, s.generationKey()).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", err
	}
	return fmt.Sprintf("%s:festivals:%d:id=%s:fav=%s:arch=%s",
		s.prefix, gen, f.ID, optBool(f.Favorite), optBool(f.Archived)), nil
}

func optBool(b *bool) string {
	if b == nil {
		return "*"
	}
	return strconv.FormatBool(*b)
}
