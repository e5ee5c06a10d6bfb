// Package model defines the core domain types for the festival listing service.
package model

// Location is where a festival takes place.
type Location struct {
	City    string `json:"city"`
	Country string `json:"country"`
}

// Source points at the page a festival listing was collected from.
type Source struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Festival is immutable reference data describing a music festival.
// StartDate and EndDate are ISO-8601 dates (YYYY-MM-DD).
type Festival struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	StartDate string   `json:"startDate"`
	EndDate   string   `json:"endDate"`
	Location  Location `json:"location"`
	Source    Source   `json:"source"`
}

// FestivalWithPreferences is a festival row together with the user-mutable
// annotations. JSON names follow the persisted column names.
type FestivalWithPreferences struct {
	Festival
	IsFavorite bool   `json:"favorite"`
	IsArchived bool   `json:"isArchived"`
	Notes      string `json:"notes"`
}

// Filter narrows a festival read. Nil fields do not filter.
type Filter struct {
	ID       string
	Favorite *bool
	Archived *bool
}

// Matches reports whether f passes the filter.
func (fl Filter) Matches(f FestivalWithPreferences) bool {
	if fl.ID != "" && f.ID != fl.ID {
		return false
	}
	if fl.Favorite != nil && f.IsFavorite != *fl.Favorite {
		return false
	}
	if fl.Archived != nil && f.IsArchived != *fl.Archived {
		return false
	}
	return true
}

// Patch lists the preference columns to write. Nil fields are left untouched.
type Patch struct {
	Favorite *bool
	Notes    *string
}

// Empty reports whether the patch writes nothing.
func (p Patch) Empty() bool {
	return p.Favorite == nil && p.Notes == nil
}

// FavoriteCommand is a validated request to set a festival's favorite flag.
type FavoriteCommand struct {
	ID       string
	Favorite bool
}

// NotesCommand is a validated request to replace a festival's notes.
type NotesCommand struct {
	ID    string
	Notes string
}

// Result kinds carried by failed envelopes.
const (
	KindValidation = "validation"
	KindNotFound   = "not_found"
	KindStore      = "store"
	KindUnexpected = "unexpected"
)

// Result is the single JSON envelope every API response uses.
type Result struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
	Value   any    `json:"value,omitempty"`
	Kind    string `json:"kind,omitempty"`
	Details string `json:"details,omitempty"`
}

// Success builds an ok envelope.
func Success(message string, value any) Result {
	return Result{OK: true, Message: message, Value: value}
}

// Failure builds a failed envelope.
func Failure(kind, message, details string) Result {
	return Result{OK: false, Kind: kind, Message: message, Details: details}
}

// Bool returns a pointer to b.
func Bool(b bool) *bool { return &b }

// String returns a pointer to s.
func String(s string) *string { return &s }
