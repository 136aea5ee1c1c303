package presence

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// expiringStore emulates key TTLs against a clock.
type expiringStore struct {
	mu      sync.Mutex
	clock   clockwork.Clock
	expires map[string]time.Time
}

func newExpiringStore(clock clockwork.Clock) *expiringStore {
	return &expiringStore{clock: clock, expires: map[string]time.Time{}}
}

func (s *expiringStore) alive(key string) bool {
	exp, ok := s.expires[key]
	return ok && s.clock.Now().Before(exp)
}

func (s *expiringStore) Refresh(_ context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existed := s.alive(key)
	s.expires[key] = s.clock.Now().Add(ttl)
	return existed, nil
}

func (s *expiringStore) Exists(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.alive(key), nil
}

type fakeMarker struct {
	mu      sync.Mutex
	online  map[string]bool
	onCalls int
	missing map[string]bool
}

func newFakeMarker() *fakeMarker {
	return &fakeMarker{online: map[string]bool{}, missing: map[string]bool{}}
}

func (m *fakeMarker) MarkOnline(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onCalls++
	m.online[id] = true
	return nil
}

func (m *fakeMarker) MarkOffline(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.missing[id] {
		return errors.New("player not found")
	}
	delete(m.online, id)
	return nil
}

func (m *fakeMarker) OnlinePlayers(context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []string
	for id := range m.online {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (m *fakeMarker) isOnline(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online[id]
}

func TestTouchMarksOnlineOnce(t *testing.T) {
	clock := clockwork.NewFakeClock()
	marker := newFakeMarker()
	tr := NewTracker(newExpiringStore(clock), marker, clock, 30*time.Second)
	ctx := context.Background()

	require.NoError(t, tr.Touch(ctx, "p1"))
	clock.Advance(10 * time.Second)
	require.NoError(t, tr.Touch(ctx, "p1"))

	assert.True(t, marker.isOnline("p1"))
	assert.Equal(t, 1, marker.onCalls)

	// lapsed heartbeat marks online again on the next touch
	clock.Advance(time.Minute)
	require.NoError(t, tr.Touch(ctx, "p1"))
	assert.Equal(t, 2, marker.onCalls)
}

func TestSweepMarksExpiredOffline(t *testing.T) {
	clock := clockwork.NewFakeClock()
	marker := newFakeMarker()
	tr := NewTracker(newExpiringStore(clock), marker, clock, 30*time.Second)
	ctx := context.Background()

	require.NoError(t, tr.Touch(ctx, "p1"))
	require.NoError(t, tr.Touch(ctx, "p2"))
	clock.Advance(20 * time.Second)
	require.NoError(t, tr.Touch(ctx, "p2"))
	clock.Advance(15 * time.Second)

	n, err := tr.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.False(t, marker.isOnline("p1"))
	assert.True(t, marker.isOnline("p2"))
}

func TestSweepSkipsVanishedPlayers(t *testing.T) {
	clock := clockwork.NewFakeClock()
	marker := newFakeMarker()
	marker.online["gone"] = true
	marker.missing["gone"] = true
	tr := NewTracker(newExpiringStore(clock), marker, clock, time.Second)

	n, err := tr.Sweep(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRunSweepsOnTicker(t *testing.T) {
	clock := clockwork.NewFakeClock()
	marker := newFakeMarker()
	tr := NewTracker(newExpiringStore(clock), marker, clock, 30*time.Second)
	require.NoError(t, tr.Touch(context.Background(), "p1"))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		tr.Run(ctx, 15*time.Second)
		close(done)
	}()

	blockCtx, blockCancel := context.WithTimeout(context.Background(), time.Second)
	defer blockCancel()
	require.NoError(t, clock.BlockUntilContext(blockCtx, 1))
	clock.Advance(45 * time.Second)

	require.Eventually(t, func() bool { return !marker.isOnline("p1") }, time.Second, 5*time.Millisecond)
	cancel()
	<-done
}

func TestKey(t *testing.T) {
	assert.Equal(t, "poker:presence:abc", Key("abc"))
}
