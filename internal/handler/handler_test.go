package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/festifind/festifind/internal/model"
	"github.com/festifind/festifind/internal/repository"
	"github.com/festifind/festifind/internal/service"
	tu "github.com/festifind/festifind/internal/testutil"
)

type envelope struct {
	OK      bool            `json:"ok"`
	Message string          `json:"message"`
	Value   json.RawMessage `json:"value"`
	Kind    string          `json:"kind"`
	Details string          `json:"details"`
}

type fixture struct {
	router  http.Handler
	store   *tu.MemStore
	metrics *Metrics
}

func newFixture(t *testing.T, store repository.Store) fixture {
	t.Helper()
	svc := service.NewFestivalService(tu.StaticSource{S: store}, nil, zap.NewNop())
	m := NewMetrics(prometheus.NewRegistry())
	f := fixture{
		router:  NewRouter(NewFestivalHandler(svc, zap.NewNop()), m, zap.NewNop(), []string{"*"}),
		metrics: m,
	}
	if mem, ok := store.(*tu.MemStore); ok {
		f.store = mem
	}
	return f
}

func do(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec, env
}

func decodeRow(t *testing.T, raw json.RawMessage) model.FestivalWithPreferences {
	t.Helper()
	var row model.FestivalWithPreferences
	require.NoError(t, json.Unmarshal(raw, &row))
	return row
}

func TestSetFavorite(t *testing.T) {
	t.Run("adds to favorites", func(t *testing.T) {
		f := newFixture(t, tu.NewMemStore(nil))

		rec, env := do(t, f.router, http.MethodPost, "/festivals/1/favorite", `{"favorite": true}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		assert.True(t, env.OK)
		assert.Equal(t, "Festival added to favorites", env.Message)
		row := decodeRow(t, env.Value)
		assert.Equal(t, "1", row.ID)
		assert.True(t, row.IsFavorite)
		assert.Contains(t, string(env.Value), `"favorite":true`)
	})

	t.Run("legacy field removes", func(t *testing.T) {
		f := newFixture(t, tu.NewMemStore(nil))

		rec, env := do(t, f.router, http.MethodPost, "/festivals/2/favorite", `{"isFavorite": false}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Festival removed from favorites", env.Message)
		assert.False(t, decodeRow(t, env.Value).IsFavorite)
	})

	t.Run("non boolean is rejected without a write", func(t *testing.T) {
		f := newFixture(t, tu.NewMemStore(nil))

		rec, env := do(t, f.router, http.MethodPost, "/festivals/1/favorite", `{"favorite": "yes"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.False(t, env.OK)
		assert.Equal(t, model.KindValidation, env.Kind)
		assert.True(t, strings.HasPrefix(env.Message, "Invalid input"))
		assert.Zero(t, f.store.Updates)
		row, _ := f.store.Row("1")
		assert.False(t, row.IsFavorite)
	})

	t.Run("missing row is a store error", func(t *testing.T) {
		f := newFixture(t, tu.NewMemStore(nil))

		rec, env := do(t, f.router, http.MethodPost, "/festivals/404/favorite", `{"favorite": true}`)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, model.KindStore, env.Kind)
		assert.Equal(t, "Failed to update favorite status", env.Message)
		assert.Contains(t, env.Details, "not found")
	})

	t.Run("malformed body is unexpected", func(t *testing.T) {
		f := newFixture(t, tu.NewMemStore(nil))

		rec, env := do(t, f.router, http.MethodPost, "/festivals/1/favorite", `{"favorite":`)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, model.KindUnexpected, env.Kind)
		assert.Equal(t, "Internal Server Error", env.Message)
		assert.Zero(t, f.store.Updates)
	})

	t.Run("toggle round trip", func(t *testing.T) {
		f := newFixture(t, tu.NewMemStore(nil))
		before, _ := f.store.Row("3")

		do(t, f.router, http.MethodPost, "/festivals/3/favorite", `{"favorite": true}`)
		_, env := do(t, f.router, http.MethodPost, "/festivals/3/favorite", `{"favorite": false}`)

		assert.Equal(t, before, decodeRow(t, env.Value))
	})

	t.Run("mock store answers with null value", func(t *testing.T) {
		f := newFixture(t, repository.MockStore{})

		rec, env := do(t, f.router, http.MethodPost, "/festivals/1/favorite", `{"favorite": true}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, env.OK)
		assert.Equal(t, "null", string(env.Value))
	})
}

func TestUpdateNotes(t *testing.T) {
	t.Run("updates notes", func(t *testing.T) {
		f := newFixture(t, tu.NewMemStore(nil))

		rec, env := do(t, f.router, http.MethodPost, "/festivals/1/notes", `{"notes": "bring sunscreen"}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, env.OK)
		assert.Equal(t, "Notes updated", env.Message)
		assert.Equal(t, "bring sunscreen", decodeRow(t, env.Value).Notes)
	})

	t.Run("row is wrapped in the envelope", func(t *testing.T) {
		f := newFixture(t, tu.NewMemStore(nil))

		rec, _ := do(t, f.router, http.MethodPost, "/festivals/1/notes", `{"notes": "x"}`)

		var top map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &top))
		assert.Contains(t, top, "ok")
		assert.Contains(t, top, "value")
		assert.NotContains(t, top, "id")
		assert.NotContains(t, top, "notes")
	})

	t.Run("empty string clears", func(t *testing.T) {
		f := newFixture(t, tu.NewMemStore(nil))

		rec, env := do(t, f.router, http.MethodPost, "/festivals/2/notes", `{"notes": ""}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, decodeRow(t, env.Value).Notes)
	})

	t.Run("non string is rejected without a write", func(t *testing.T) {
		f := newFixture(t, tu.NewMemStore(nil))

		rec, env := do(t, f.router, http.MethodPost, "/festivals/1/notes", `{"notes": 42}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, model.KindValidation, env.Kind)
		assert.Zero(t, f.store.Updates)
	})

	t.Run("missing row is a store error", func(t *testing.T) {
		f := newFixture(t, tu.NewMemStore(nil))

		rec, env := do(t, f.router, http.MethodPost, "/festivals/404/notes", `{"notes": "x"}`)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, model.KindStore, env.Kind)
		assert.NotEmpty(t, env.Details)
	})

	t.Run("store failure", func(t *testing.T) {
		f := newFixture(t, tu.NewMemStore(nil))
		f.store.UpdateErr = errors.New("connection reset by peer")

		rec, env := do(t, f.router, http.MethodPost, "/festivals/1/notes", `{"notes": "x"}`)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "connection reset by peer", env.Details)
	})
}

func TestReads(t *testing.T) {
	t.Run("list", func(t *testing.T) {
		f := newFixture(t, tu.NewMemStore(nil))

		rec, env := do(t, f.router, http.MethodGet, "/festivals", "")

		assert.Equal(t, http.StatusOK, rec.Code)
		var rows []model.FestivalWithPreferences
		require.NoError(t, json.Unmarshal(env.Value, &rows))
		assert.Len(t, rows, 5)
	})

	t.Run("list filtered", func(t *testing.T) {
		f := newFixture(t, tu.NewMemStore(nil))

		_, env := do(t, f.router, http.MethodGet, "/festivals?archived=true", "")

		var rows []model.FestivalWithPreferences
		require.NoError(t, json.Unmarshal(env.Value, &rows))
		require.Len(t, rows, 1)
		assert.Equal(t, "4", rows[0].ID)
	})

	t.Run("empty list is an array", func(t *testing.T) {
		f := newFixture(t, tu.NewMemStore([]model.FestivalWithPreferences{}))

		_, env := do(t, f.router, http.MethodGet, "/festivals", "")
		assert.Equal(t, "[]", string(env.Value))
	})

	t.Run("bad filter", func(t *testing.T) {
		f := newFixture(t, tu.NewMemStore(nil))

		rec, env := do(t, f.router, http.MethodGet, "/festivals?favorite=maybe", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, model.KindValidation, env.Kind)
	})

	t.Run("mock mode serves the fixture", func(t *testing.T) {
		f := newFixture(t, repository.MockStore{})

		_, env := do(t, f.router, http.MethodGet, "/festivals?favorite=true", "")
		var rows []model.FestivalWithPreferences
		require.NoError(t, json.Unmarshal(env.Value, &rows))
		require.Len(t, rows, 1)
		assert.Equal(t, "Primavera Sound", rows[0].Name)
	})

	t.Run("get", func(t *testing.T) {
		f := newFixture(t, tu.NewMemStore(nil))

		rec, env := do(t, f.router, http.MethodGet, "/festivals/5", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Flow Festival", decodeRow(t, env.Value).Name)

		rec, env = do(t, f.router, http.MethodGet, "/festivals/404", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, model.KindNotFound, env.Kind)
	})
}

func TestHealthCheck(t *testing.T) {
	for _, tc := range []struct {
		store repository.Store
		want  string
	}{
		{tu.NewMemStore(nil), "live"},
		{repository.MockStore{}, "mock"},
	} {
		f := newFixture(t, tc.store)
		rec := httptest.NewRecorder()
		f.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"ok","store":"`+tc.want+`"}`, rec.Body.String())
	}
}

func TestAccessLog(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	svc := service.NewFestivalService(tu.StaticSource{S: tu.NewMemStore(nil)}, nil, zap.NewNop())
	router := NewRouter(NewFestivalHandler(svc, zap.NewNop()), NewMetrics(prometheus.NewRegistry()),
		zap.New(core), []string{"*"})

	do(t, router, http.MethodPost, "/festivals/3/notes", `{"notes": "camping"}`)

	entries := logs.FilterMessage("request").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "/festivals/{id}/notes", fields["route"])
	assert.Equal(t, http.MethodPost, fields["method"])
	assert.EqualValues(t, http.StatusOK, fields["status"])
	assert.NotContains(t, fields, "path")
}

func TestRecoverer(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Recoverer(zap.NewNop()))
	r.Get("/boom", func(http.ResponseWriter, *http.Request) { panic("boom") })

	rec, env := do(t, r, http.MethodGet, "/boom", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.False(t, env.OK)
	assert.Equal(t, model.KindUnexpected, env.Kind)
}

func TestCORS(t *testing.T) {
	f := newFixture(t, tu.NewMemStore(nil))
	req := httptest.NewRequest(http.MethodOptions, "/festivals/1/favorite", nil)
	req.Header.Set("Origin", "https://festifind.app")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()

	f.router.ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestMetrics(t *testing.T) {
	f := newFixture(t, tu.NewMemStore(nil))

	do(t, f.router, http.MethodPost, "/festivals/1/favorite", `{"favorite": true}`)
	do(t, f.router, http.MethodPost, "/festivals/2/favorite", `{"favorite": true}`)
	do(t, f.router, http.MethodPost, "/festivals/2/favorite", `{"favorite": 1}`)

	assert.Equal(t, 2.0, testutil.ToFloat64(f.metrics.requests.WithLabelValues(http.MethodPost, "/festivals/{id}/favorite", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.requests.WithLabelValues(http.MethodPost, "/festivals/{id}/favorite", "400")))

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil).WithContext(context.Background()))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "festifind_http_requests_total")
}
