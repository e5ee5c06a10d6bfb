// Package handler contains chi HTTP handlers that translate HTTP
// requests/responses to and from the service layer.
//
// Every festival endpoint, the notes update included, answers with the same
// envelope. The row or list is never the top-level body:
//
//	{"ok": true, "message": "Notes updated", "value": {"id": "1", ...}}
//	{"ok": false, "kind": "validation", "message": "Invalid input: ..."}
//
// kind is one of validation (400), not_found (404), store (500) or
// unexpected (500); store failures carry the upstream error in details.
package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/festifind/festifind/internal/model"
	"github.com/festifind/festifind/internal/repository"
	"github.com/festifind/festifind/internal/service"
)

const maxBodyBytes = 1 << 20

// FestivalHandler holds all HTTP handlers for the festival API.
type FestivalHandler struct {
	svc    *service.FestivalService
	logger *zap.Logger
}

// NewFestivalHandler constructs a FestivalHandler.
func NewFestivalHandler(svc *service.FestivalService, logger *zap.Logger) *FestivalHandler {
	return &FestivalHandler{svc: svc, logger: logger}
}

// Routes registers the festival endpoints on r.
func (h *FestivalHandler) Routes(r chi.Router) {
	r.Get("/", h.ListFestivals)
	r.Get("/{id}", h.GetFestival)
	r.Post("/{id}/favorite", h.SetFavorite)
	r.Post("/{id}/notes", h.UpdateNotes)
}

// ─── Helper utilities ─────────────────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	return io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
}

func queryBool(r *http.Request, key string) (*bool, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil, &service.ValidationError{Reason: key + " must be true or false"}
	}
	return &b, nil
}

// writeFailure maps an error to its envelope. storeMessage is used for
// StoreErrors.
func (h *FestivalHandler) writeFailure(w http.ResponseWriter, r *http.Request, err error, storeMessage string) {
	var (
		validationErr *service.ValidationError
		storeErr      *service.StoreError
	)
	switch {
	case errors.As(err, &validationErr):
		writeJSON(w, http.StatusBadRequest,
			model.Failure(model.KindValidation, "Invalid input: "+validationErr.Reason, ""))
	case errors.As(err, &storeErr):
		h.logger.Error("store operation failed",
			zap.String("request_id", chimiddleware.GetReqID(r.Context())),
			zap.String("op", storeErr.Op), zap.Error(storeErr.Err))
		writeJSON(w, http.StatusInternalServerError,
			model.Failure(model.KindStore, storeMessage, storeErr.Err.Error()))
	case errors.Is(err, repository.ErrNotFound):
		writeJSON(w, http.StatusNotFound, model.Failure(model.KindNotFound, "Festival not found", ""))
	default:
		h.logger.Error("unexpected error",
			zap.String("request_id", chimiddleware.GetReqID(r.Context())), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError,
			model.Failure(model.KindUnexpected, "Internal Server Error", ""))
	}
}

// ─── Handlers ─────────────────────────────────────────────────────────────────

// ListFestivals handles GET /festivals
// Optional query parameters favorite and archived filter the list.
func (h *FestivalHandler) ListFestivals(w http.ResponseWriter, r *http.Request) {
	favorite, err := queryBool(r, "favorite")
	if err != nil {
		h.writeFailure(w, r, err, "")
		return
	}
	archived, err := queryBool(r, "archived")
	if err != nil {
		h.writeFailure(w, r, err, "")
		return
	}

	festivals, err := h.svc.ListFestivals(r.Context(), model.Filter{Favorite: favorite, Archived: archived})
	if err != nil {
		h.writeFailure(w, r, err, "Failed to load festivals")
		return
	}

	// Return an empty array rather than null for better client compatibility.
	if festivals == nil {
		festivals = []model.FestivalWithPreferences{}
	}
	writeJSON(w, http.StatusOK, model.Success("", festivals))
}

// GetFestival handles GET /festivals/{id}
func (h *FestivalHandler) GetFestival(w http.ResponseWriter, r *http.Request) {
	festival, err := h.svc.GetFestival(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeFailure(w, r, err, "Failed to load festival")
		return
	}
	writeJSON(w, http.StatusOK, model.Success("", festival))
}

// SetFavorite handles POST /festivals/{id}/favorite
// The body carries "favorite" (or the legacy "isFavorite") as a boolean.
func (h *FestivalHandler) SetFavorite(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		h.writeFailure(w, r, err, "")
		return
	}
	cmd, err := service.ParseFavoriteCommand(chi.URLParam(r, "id"), body)
	if err != nil {
		h.writeFailure(w, r, err, "")
		return
	}

	row, err := h.svc.SetFavorite(r.Context(), cmd)
	if err != nil {
		h.writeFailure(w, r, err, "Failed to update favorite status")
		return
	}

	msg := "Festival removed from favorites"
	if cmd.Favorite {
		msg = "Festival added to favorites"
	}
	writeJSON(w, http.StatusOK, model.Success(msg, row))
}

// UpdateNotes handles POST /festivals/{id}/notes
// The body carries "notes" as a string; an empty string clears the notes.
func (h *FestivalHandler) UpdateNotes(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		h.writeFailure(w, r, err, "")
		return
	}
	cmd, err := service.ParseNotesCommand(chi.URLParam(r, "id"), body)
	if err != nil {
		h.writeFailure(w, r, err, "")
		return
	}

	row, err := h.svc.UpdateNotes(r.Context(), cmd)
	if err != nil {
		h.writeFailure(w, r, err, "Failed to update notes")
		return
	}
	writeJSON(w, http.StatusOK, model.Success("Notes updated", row))
}

// ─── Health check ─────────────────────────────────────────────────────────────

// HealthCheck handles GET /health and reports which store is in use.
func (h *FestivalHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	store := "mock"
	if h.svc.Live(r.Context()) {
		store = "live"
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "store": store})
}
