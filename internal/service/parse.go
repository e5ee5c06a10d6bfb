package service

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/festifind/festifind/internal/model"
)

// ParseFavoriteCommand turns a raw request body into a FavoriteCommand.
// "favorite" wins over the legacy "isFavorite" unless it is absent or null.
// Malformed JSON is returned as a plain error, not a ValidationError.
func ParseFavoriteCommand(id string, body []byte) (model.FavoriteCommand, error) {
	fields, err := decodeObject(body)
	if err != nil {
		return model.FavoriteCommand{}, err
	}
	if id == "" {
		return model.FavoriteCommand{}, invalid("festival id is required")
	}

	raw, ok := fields["favorite"]
	if !ok || isNull(raw) {
		raw = fields["isFavorite"]
	}
	switch string(bytes.TrimSpace(raw)) {
	case "true":
		return model.FavoriteCommand{ID: id, Favorite: true}, nil
	case "false":
		return model.FavoriteCommand{ID: id, Favorite: false}, nil
	}
	return model.FavoriteCommand{}, invalid("favorite must be a boolean")
}

// ParseNotesCommand turns a raw request body into a NotesCommand. An empty
// string is valid and clears the notes.
func ParseNotesCommand(id string, body []byte) (model.NotesCommand, error) {
	fields, err := decodeObject(body)
	if err != nil {
		return model.NotesCommand{}, err
	}
	if id == "" {
		return model.NotesCommand{}, invalid("festival id is required")
	}

	raw := bytes.TrimSpace(fields["notes"])
	if len(raw) == 0 || raw[0] != '"' {
		return model.NotesCommand{}, invalid("notes must be a string")
	}
	var notes string
	if err := json.Unmarshal(raw, &notes); err != nil {
		return model.NotesCommand{}, invalid("notes must be a string")
	}
	return model.NotesCommand{ID: id, Notes: notes}, nil
}

// decodeObject returns the top-level fields of body. Valid JSON that is not
// an object has no fields.
func decodeObject(body []byte) (map[string]json.RawMessage, error) {
	if !json.Valid(body) {
		return nil, fmt.Errorf("decode request body: malformed JSON")
	}
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return map[string]json.RawMessage{}, nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return nil, fmt.Errorf("decode request body: %w", err)
	}
	return fields, nil
}

func isNull(raw json.RawMessage) bool {
	return string(bytes.TrimSpace(raw)) == "null"
}
