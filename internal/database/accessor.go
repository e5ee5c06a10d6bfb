package database

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/festifind/festifind/internal/config"
	"github.com/festifind/festifind/internal/repository"
)

// Opener connects to the live database. The returned func releases it.
type Opener func(ctx context.Context, cfg config.StoreConfig) (repository.DBTX, func(), error)

// Accessor resolves the process-wide Store on first use and memoizes it.
// Resolution never fails: without configuration, or on any connection
// error, the Store is a repository.MockStore.
type Accessor struct {
	cfg    config.StoreConfig
	logger *zap.Logger
	open   Opener
	wrap   func(repository.Store) repository.Store

	once    sync.Once
	store   repository.Store
	release func()
}

// Option customises an Accessor.
type Option func(*Accessor)

// WithOpener replaces the pgxpool based connector.
func WithOpener(o Opener) Option {
	return func(a *Accessor) { a.open = o }
}

// WithWrapper decorates the live store (never the mock) before it is memoized.
func WithWrapper(w func(repository.Store) repository.Store) Option {
	return func(a *Accessor) { a.wrap = w }
}

// NewAccessor returns an unresolved Accessor.
func NewAccessor(cfg config.StoreConfig, logger *zap.Logger, opts ...Option) *Accessor {
	a := &Accessor{
		cfg:    cfg,
		logger: logger,
		open:   openPool(logger),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func openPool(logger *zap.Logger) Opener {
	return func(ctx context.Context, cfg config.StoreConfig) (repository.DBTX, func(), error) {
		pool, err := NewPool(ctx, cfg, 1, logger)
		if err != nil {
			return nil, nil, err
		}
		return pool, pool.Close, nil
	}
}

// Store returns the resolved store, resolving it on the first call.
// Concurrent first callers wait for the same resolution.
func (a *Accessor) Store(ctx context.Context) repository.Store {
	a.once.Do(func() {
		a.store = a.resolve(context.WithoutCancel(ctx))
	})
	return a.store
}

func (a *Accessor) resolve(ctx context.Context) (store repository.Store) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("store construction panicked, using mock store", zap.Any("panic", r))
			store = repository.MockStore{}
		}
	}()

	if !a.cfg.Enabled() {
		a.logger.Info("store url or key not set, using mock store")
		return repository.MockStore{}
	}

	db, release, err := a.open(ctx, a.cfg)
	if err != nil {
		a.logger.Warn("live store unavailable, using mock store", zap.Error(err))
		return repository.MockStore{}
	}
	a.release = release

	store = repository.NewFestivalRepository(db)
	if a.wrap != nil {
		store = a.wrap(store)
	}
	a.logger.Info("using live store", zap.String("store", fmt.Sprintf("%T", store)))
	return store
}

// Close releases the live connection, if one was opened. It waits for a
// resolution in progress; once closed, an unresolved Accessor hands out the
// mock store.
func (a *Accessor) Close() {
	a.once.Do(func() { a.store = repository.MockStore{} })
	if a.release != nil {
		a.release()
		a.release = nil
	}
}
