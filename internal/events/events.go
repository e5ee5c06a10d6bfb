// Package events publishes festival preference changes to RabbitMQ and
// consumes them back for the watch command.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Kinds of preference change.
const (
	KindFavorite = "favorite"
	KindNotes    = "notes"
)

// PreferenceChanged is published after a festival's favorite flag or notes
// were written.
type PreferenceChanged struct {
	ID         string    `json:"id"`
	FestivalID string    `json:"festivalId"`
	Kind       string    `json:"kind"`
	Favorite   *bool     `json:"favorite,omitempty"`
	Notes      *string   `json:"notes,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

// FavoriteChanged builds the event for a favorite write.
func FavoriteChanged(festivalID string, favorite bool) PreferenceChanged {
	return PreferenceChanged{
		ID:         uuid.NewString(),
		FestivalID: festivalID,
		Kind:       KindFavorite,
		Favorite:   &favorite,
		OccurredAt: time.Now().UTC(),
	}
}

// NotesChanged builds the event for a notes write.
func NotesChanged(festivalID, notes string) PreferenceChanged {
	return PreferenceChanged{
		ID:         uuid.NewString(),
		FestivalID: festivalID,
		Kind:       KindNotes,
		Notes:      &notes,
		OccurredAt: time.Now().UTC(),
	}
}

// Decode parses a message body.
func Decode(body []byte) (PreferenceChanged, error) {
	var ev PreferenceChanged
	if err := json.Unmarshal(body, &ev); err != nil {
		return PreferenceChanged{}, fmt.Errorf("unmarshal: %w", err)
	}
	if ev.FestivalID == "" {
		return PreferenceChanged{}, fmt.Errorf("event %s has no festival id", ev.ID)
	}
	return ev, nil
}

// Publisher delivers preference events.
type Publisher interface {
	Publish(ctx context.Context, ev PreferenceChanged) error
}

// Noop discards every event.
type Noop struct{}

// Publish does nothing.
func (Noop) Publish(context.Context, PreferenceChanged) error { return nil }
