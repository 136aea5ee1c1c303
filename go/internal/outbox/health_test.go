package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthReportsStoppedListener(t *testing.T) {
	store := newMemStore(event("g1"))
	clock := clockwork.NewFakeClock()
	l := NewListener(store, &chanNotifier{}, &recordingPublisher{}, clock, testConfig())
	h := NewHealthChecker(l, store, pingFunc(func(context.Context) error { return nil }), func() bool { return true }, clock, 0)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var status HealthStatus
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&status))
	assert.False(t, status.ListenerActive)
	assert.True(t, status.DatabaseConnected)
	assert.Equal(t, int64(1), status.PendingEvents)
	assert.Contains(t, status.Errors, "listener not active")
}

func TestHealthSkipsBacklogWhenDatabaseDown(t *testing.T) {
	store := newMemStore(event("g1"))
	clock := clockwork.NewFakeClock()
	l := NewListener(store, &chanNotifier{}, &recordingPublisher{}, clock, testConfig())
	l.setRunning(true)
	h := NewHealthChecker(l, store, pingFunc(func(context.Context) error { return errors.New("refused") }), func() bool { return false }, clock, 0)

	status := h.Check(context.Background())
	assert.False(t, status.Healthy)
	assert.False(t, status.NATSConnected)
	assert.Zero(t, status.PendingEvents)
	assert.Len(t, status.Errors, 2)
}
