// Package repository implements persistence for festival rows.
// It uses pgx directly (no ORM); MockStore stands in when no database is configured.
package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/festifind/festifind/internal/model"
)

// ErrNotFound is returned when no festival row matches the identifier.
var ErrNotFound = errors.New("not found")

// ErrEmptyPatch is returned by Update when the patch sets no column.
var ErrEmptyPatch = errors.New("patch sets no columns")

// Store reads and updates festival rows.
type Store interface {
	// List returns rows matching the filter, ordered by start date.
	List(ctx context.Context, f model.Filter) ([]model.FestivalWithPreferences, error)
	// Update writes the patch to the row with the given id and returns the
	// updated row.
	Update(ctx context.Context, id string, p model.Patch) (*model.FestivalWithPreferences, error)
	// Live reports whether the store is backed by a real database.
	Live() bool
}

// DBTX is the subset of *pgxpool.Pool the repository needs.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// MockStore is the inert store used when no live backend is available:
// reads are always empty and writes succeed without returning a row.
type MockStore struct{}

// List always returns an empty list.
func (MockStore) List(context.Context, model.Filter) ([]model.FestivalWithPreferences, error) {
	return []model.FestivalWithPreferences{}, nil
}

// Update always returns a nil row and no error.
func (MockStore) Update(context.Context, string, model.Patch) (*model.FestivalWithPreferences, error) {
	return nil, nil
}

// Live is always false.
func (MockStore) Live() bool { return false }
