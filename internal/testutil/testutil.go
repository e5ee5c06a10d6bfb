// Package testutil contains test doubles shared by the package tests.
package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/festifind/festifind/internal/events"
	"github.com/festifind/festifind/internal/mockdata"
	"github.com/festifind/festifind/internal/model"
	"github.com/festifind/festifind/internal/repository"
)

// MemStore is a live [repository.Store] kept in memory.
type MemStore struct {
	mu   sync.Mutex
	rows []model.FestivalWithPreferences

	Lists   int
	Updates int
	// ListErr and UpdateErr, when set, are returned instead of touching rows.
	ListErr   error
	UpdateErr error
}

// NewMemStore returns a MemStore seeded with rows, or the mock fixture when
// rows is nil.
func NewMemStore(rows []model.FestivalWithPreferences) *MemStore {
	if rows == nil {
		rows = mockdata.Festivals()
	}
	return &MemStore{rows: rows}
}

func (m *MemStore) Live() bool { return true }

func (m *MemStore) List(_ context.Context, f model.Filter) ([]model.FestivalWithPreferences, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Lists++
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	out := []model.FestivalWithPreferences{}
	for _, r := range m.rows {
		if f.Matches(r) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *MemStore) Update(_ context.Context, id string, p model.Patch) (*model.FestivalWithPreferences, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Updates++
	if m.UpdateErr != nil {
		return nil, m.UpdateErr
	}
	for i := range m.rows {
		if m.rows[i].ID != id {
			continue
		}
		if p.Favorite != nil {
			m.rows[i].IsFavorite = *p.Favorite
		}
		if p.Notes != nil {
			m.rows[i].Notes = *p.Notes
		}
		row := m.rows[i]
		return &row, nil
	}
	return nil, fmt.Errorf("festival %q: %w", id, repository.ErrNotFound)
}

// Row returns a copy of the row with the given id.
func (m *MemStore) Row(id string) (model.FestivalWithPreferences, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.ID == id {
			return r, true
		}
	}
	return model.FestivalWithPreferences{}, false
}

// StaticSource always hands out the same store.
type StaticSource struct {
	S repository.Store
}

func (s StaticSource) Store(context.Context) repository.Store { return s.S }

// RecordingPublisher keeps every published event.
type RecordingPublisher struct {
	mu     sync.Mutex
	Events []events.PreferenceChanged
	Err    error
}

func (p *RecordingPublisher) Publish(_ context.Context, ev events.PreferenceChanged) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	p.Events = append(p.Events, ev)
	return nil
}
