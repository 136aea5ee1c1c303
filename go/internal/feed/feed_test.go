package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/planningpoker/go/internal/gateway"
	"github.com/mcdev12/planningpoker/go/internal/models"
)

type collector struct {
	mu     sync.Mutex
	events []models.ChangeEvent
}

func (c *collector) handle(ev models.ChangeEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, ev)
}

func (c *collector) ids() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.events))
	for i, ev := range c.events {
		out[i] = ev.ID
	}
	return out
}

func TestFilterMatches(t *testing.T) {
	f := Filter{GameID: "g1", Tables: []models.Table{models.TableGames}}
	assert.True(t, f.Matches(models.ChangeEvent{GameID: "g1", Table: models.TableGames}))
	assert.False(t, f.Matches(models.ChangeEvent{GameID: "g1", Table: models.TableVotes}))
	assert.False(t, f.Matches(models.ChangeEvent{GameID: "g2", Table: models.TableGames}))
	assert.True(t, Filter{GameID: "g1"}.Matches(models.ChangeEvent{GameID: "g1", Table: models.TableVotes}))
}

func TestBrokerDeliversUntilCanceled(t *testing.T) {
	b := NewBroker()
	c := &collector{}
	var lost atomic.Bool
	cancel, err := b.Subscribe(context.Background(), Filter{GameID: "g1"}, c.handle, func(error) { lost.Store(true) })
	require.NoError(t, err)

	require.NoError(t, b.Publish(context.Background(), models.ChangeEvent{ID: "e1", GameID: "g1"}))
	require.NoError(t, b.Publish(context.Background(), models.ChangeEvent{ID: "other", GameID: "g2"}))
	cancel()
	cancel()
	require.NoError(t, b.Publish(context.Background(), models.ChangeEvent{ID: "e2", GameID: "g1"}))

	assert.Equal(t, []string{"e1"}, c.ids())
	assert.Zero(t, b.Subscribers())
	b.Disconnect(nil)
	assert.False(t, lost.Load())
}

func TestBrokerDisconnectReportsLoss(t *testing.T) {
	b := NewBroker()
	c := &collector{}
	var lostErr error
	_, err := b.Subscribe(context.Background(), Filter{GameID: "g1"}, c.handle, func(err error) { lostErr = err })
	require.NoError(t, err)
	_, err = b.Subscribe(context.Background(), Filter{GameID: "g2"}, c.handle, nil)
	require.NoError(t, err)

	b.Disconnect(nil)
	require.ErrorIs(t, lostErr, ErrDisconnected)
	assert.Zero(t, b.Subscribers())

	require.NoError(t, b.Publish(context.Background(), models.ChangeEvent{ID: "e1", GameID: "g1"}))
	assert.Empty(t, c.ids())
}

func TestWebSocketFeedThroughGateway(t *testing.T) {
	cm := gateway.NewConnectionManager(gateway.DefaultConnectionConfig(), clockwork.NewRealClock(), nil)
	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	go cm.Start(ctx)

	mux := http.NewServeMux()
	gateway.NewWebSocketHandler(cm).RegisterRoutes(mux)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	var lost atomic.Bool
	f := NewWebSocketFeed(srv.URL, "p1")

	c := &collector{}
	cancel, err := f.Subscribe(context.Background(), Filter{GameID: "g1", Tables: []models.Table{models.TableVotes}}, c.handle,
		func(error) { lost.Store(true) })
	require.NoError(t, err)
	require.Eventually(t, func() bool { return cm.Stats().TotalConnections == 1 }, time.Second, 5*time.Millisecond)

	cm.Broadcast(models.ChangeEvent{ID: "skip", GameID: "g1", Table: models.TableGames})
	cm.Broadcast(models.ChangeEvent{ID: "v1", GameID: "g1", Table: models.TableVotes, Op: models.OpInsert})
	require.Eventually(t, func() bool { return len(c.ids()) == 1 }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"v1"}, c.ids())

	cancel()
	cancel()
	require.Eventually(t, func() bool { return cm.Stats().TotalConnections == 0 }, 2*time.Second, 5*time.Millisecond)
	assert.False(t, lost.Load())
}

func TestWebSocketFeedReportsGatewayShutdown(t *testing.T) {
	cm := gateway.NewConnectionManager(gateway.DefaultConnectionConfig(), clockwork.NewRealClock(), nil)
	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	go cm.Start(ctx)

	mux := http.NewServeMux()
	gateway.NewWebSocketHandler(cm).RegisterRoutes(mux)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	lost := make(chan error, 1)
	cancel, err := NewWebSocketFeed(srv.URL, "").Subscribe(context.Background(), Filter{GameID: "g1"},
		func(models.ChangeEvent) {}, func(err error) { lost <- err })
	require.NoError(t, err)
	defer cancel()
	require.Eventually(t, func() bool { return cm.Stats().TotalConnections == 1 }, time.Second, 5*time.Millisecond)

	stop()
	select {
	case err := <-lost:
		assert.Error(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("subscription loss was not reported")
	}
}

func TestWebSocketFeedRequiresGame(t *testing.T) {
	_, err := NewWebSocketFeed("ws://localhost:1", "").Subscribe(context.Background(), Filter{}, func(models.ChangeEvent) {}, nil)
	require.Error(t, err)
}

func TestEndpoint(t *testing.T) {
	f := NewWebSocketFeed("https://poker.example.com/", "p 1")
	got := f.endpoint(Filter{GameID: "g1", Tables: []models.Table{models.TableGames, models.TableIssues}})
	assert.Equal(t, "wss://poker.example.com/ws/game?game_id=g1&player_id=p+1&tables=games%2Cissues", got)

	f.SetPlayerID("")
	assert.Equal(t, "wss://poker.example.com/ws/game?game_id=g1", f.endpoint(Filter{GameID: "g1"}))
}
