package exchange

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ziadkadry99/smartie/internal/db"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	database, err := db.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return NewStore(database)
}

func TestRecordAndGetByID(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	err := store.Record(ctx, Exchange{
		ID:          "ex-1",
		SessionID:   "sess-1",
		Outcome:     OutcomeFailed,
		Status:      502,
		Detail:      DetailStatus,
		HasLocation: true,
		DurationMS:  120,
	})
	require.NoError(t, err)

	got, err := store.GetByID(ctx, "ex-1")
	require.NoError(t, err)
	assert.Equal(t, "sess-1", got.SessionID)
	assert.Equal(t, OutcomeFailed, got.Outcome)
	assert.Equal(t, 502, got.Status)
	assert.Equal(t, DetailStatus, got.Detail)
	assert.True(t, got.HasLocation)
	assert.Equal(t, int64(120), got.DurationMS)
	assert.False(t, got.Timestamp.IsZero())
}

func TestRecordGeneratesID(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.Record(ctx, Exchange{SessionID: "s", Outcome: OutcomeAnswered}))

	entries, err := store.Query(ctx, QueryFilter{SessionID: "s"})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.NotEmpty(t, entries[0].ID)
}

func TestGetByIDMissing(t *testing.T) {
	store := setupStore(t)
	_, err := store.GetByID(context.Background(), "missing")
	assert.Error(t, err)
}

func TestQueryFilters(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	for i, outcome := range []Outcome{OutcomeAnswered, OutcomeFailed, OutcomeAnswered} {
		require.NoError(t, store.Record(ctx, Exchange{
			SessionID: "s",
			Outcome:   outcome,
			Timestamp: time.Now().Add(time.Duration(i) * time.Second),
		}))
	}

	failed, err := store.Query(ctx, QueryFilter{Outcome: OutcomeFailed})
	require.NoError(t, err)
	assert.Len(t, failed, 1)

	limited, err := store.Query(ctx, QueryFilter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	offset, err := store.Query(ctx, QueryFilter{Offset: 2})
	require.NoError(t, err)
	assert.Len(t, offset, 1)

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{Answered: 2, Failed: 1}, stats)
}

func TestDeleteBefore(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.Record(ctx, Exchange{Outcome: OutcomeAnswered, Timestamp: time.Now().Add(-48 * time.Hour)}))
	require.NoError(t, store.Record(ctx, Exchange{Outcome: OutcomeAnswered}))

	n, err := store.DeleteBefore(ctx, time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	rest, err := store.Query(ctx, QueryFilter{})
	require.NoError(t, err)
	assert.Len(t, rest, 1)
}

func TestRoutes(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	require.NoError(t, store.Record(ctx, Exchange{ID: "a", Outcome: OutcomeAnswered}))
	require.NoError(t, store.Record(ctx, Exchange{ID: "b", Outcome: OutcomeFailed, Detail: DetailTimeout}))

	r := chi.NewRouter()
	RegisterRoutes(r, store)

	req := httptest.NewRequest(http.MethodGet, "/api/exchanges/?outcome=failed", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var list []Exchange
	require.NoError(t, json.NewDecoder(w.Body).Decode(&list))
	require.Len(t, list, 1)
	assert.Equal(t, "b", list[0].ID)

	req = httptest.NewRequest(http.MethodGet, "/api/exchanges/stats", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var st Stats
	require.NoError(t, json.NewDecoder(w.Body).Decode(&st))
	assert.Equal(t, Stats{Answered: 1, Failed: 1}, st)

	req = httptest.NewRequest(http.MethodGet, "/api/exchanges/a", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/exchanges/zzz", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
