// Package service implements request parsing, validation and orchestration
// between HTTP handlers and the festival store.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/festifind/festifind/internal/events"
	"github.com/festifind/festifind/internal/mockdata"
	"github.com/festifind/festifind/internal/model"
	"github.com/festifind/festifind/internal/repository"
)

// ErrInvalidInput is matched by every ValidationError.
var ErrInvalidInput = errors.New("invalid input")

// ValidationError reports a missing or mistyped request field.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return "invalid input: " + e.Reason }

// Is makes errors.Is(err, ErrInvalidInput) hold.
func (e *ValidationError) Is(target error) bool { return target == ErrInvalidInput }

func invalid(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// StoreError wraps a failure reported by the store during an operation.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string { return e.Op + ": " + e.Err.Error() }

func (e *StoreError) Unwrap() error { return e.Err }

// StoreSource hands out the process-wide store.
type StoreSource interface {
	Store(ctx context.Context) repository.Store
}

// FestivalService orchestrates festival reads and preference writes.
type FestivalService struct {
	stores    StoreSource
	publisher events.Publisher
	logger    *zap.Logger
}

// NewFestivalService constructs a FestivalService. A nil publisher disables
// events.
func NewFestivalService(stores StoreSource, publisher events.Publisher, logger *zap.Logger) *FestivalService {
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &FestivalService{stores: stores, publisher: publisher, logger: logger}
}

// Live reports whether reads and writes reach a real database.
func (s *FestivalService) Live(ctx context.Context) bool {
	return s.stores.Store(ctx).Live()
}

// ListFestivals returns festivals matching f. Without a live store the mock
// fixture is served instead.
func (s *FestivalService) ListFestivals(ctx context.Context, f model.Filter) ([]model.FestivalWithPreferences, error) {
	store := s.stores.Store(ctx)
	if !store.Live() {
		return mockdata.Filter(f), nil
	}
	rows, err := store.List(ctx, f)
	if err != nil {
		return nil, &StoreError{Op: "list festivals", Err: err}
	}
	return rows, nil
}

// GetFestival returns one festival or repository.ErrNotFound.
func (s *FestivalService) GetFestival(ctx context.Context, id string) (*model.FestivalWithPreferences, error) {
	if id == "" {
		return nil, invalid("festival id is required")
	}
	rows, err := s.ListFestivals(ctx, model.Filter{ID: id})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, repository.ErrNotFound
	}
	return &rows[0], nil
}

// SetFavorite writes the favorite flag. The returned row is nil when the
// store is the inert mock.
func (s *FestivalService) SetFavorite(ctx context.Context, cmd model.FavoriteCommand) (*model.FestivalWithPreferences, error) {
	store := s.stores.Store(ctx)
	row, err := store.Update(ctx, cmd.ID, model.Patch{Favorite: model.Bool(cmd.Favorite)})
	if err != nil {
		return nil, &StoreError{Op: "update favorite", Err: err}
	}
	if store.Live() {
		s.publish(ctx, events.FavoriteChanged(cmd.ID, cmd.Favorite))
	}
	return row, nil
}

// UpdateNotes replaces the notes. The returned row is nil when the store is
// the inert mock.
func (s *FestivalService) UpdateNotes(ctx context.Context, cmd model.NotesCommand) (*model.FestivalWithPreferences, error) {
	store := s.stores.Store(ctx)
	row, err := store.Update(ctx, cmd.ID, model.Patch{Notes: model.String(cmd.Notes)})
	if err != nil {
		return nil, &StoreError{Op: "update notes", Err: err}
	}
	if store.Live() {
		s.publish(ctx, events.NotesChanged(cmd.ID, cmd.Notes))
	}
	return row, nil
}

// publish never fails the request; the write has already happened.
func (s *FestivalService) publish(ctx context.Context, ev events.PreferenceChanged) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := s.publisher.Publish(ctx, ev); err != nil {
		s.logger.Warn("publish preference event failed",
			zap.String("festival_id", ev.FestivalID), zap.String("kind", ev.Kind), zap.Error(err))
	}
}
