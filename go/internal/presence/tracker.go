package presence

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// Marker persists the online flag. players.App satisfies it.
type Marker interface {
	MarkOnline(ctx context.Context, playerID string) error
	MarkOffline(ctx context.Context, playerID string) error
	OnlinePlayers(ctx context.Context) ([]string, error)
}

type Tracker struct {
	store  Store
	marker Marker
	clock  clockwork.Clock
	ttl    time.Duration
}

func NewTracker(store Store, marker Marker, clock clockwork.Clock, ttl time.Duration) *Tracker {
	return &Tracker{store: store, marker: marker, clock: clock, ttl: ttl}
}

// TTL is how long a heartbeat keeps a player online.
func (t *Tracker) TTL() time.Duration {
	return t.ttl
}

// Touch refreshes the player's heartbeat and marks them online when it had lapsed.
func (t *Tracker) Touch(ctx context.Context, playerID string) error {
	existed, err := t.store.Refresh(ctx, Key(playerID), t.ttl)
	if err != nil {
		return err
	}
	if existed {
		return nil
	}
	if err := t.marker.MarkOnline(ctx, playerID); err != nil {
		return fmt.Errorf("failed to mark player online: %w", err)
	}
	return nil
}

// Sweep marks offline every online player whose heartbeat expired and returns how many changed.
func (t *Tracker) Sweep(ctx context.Context) (int, error) {
	online, err := t.marker.OnlinePlayers(ctx)
	if err != nil {
		return 0, err
	}
	changed := 0
	for _, id := range online {
		alive, err := t.store.Exists(ctx, Key(id))
		if err != nil {
			return changed, err
		}
		if alive {
			continue
		}
		if err := t.marker.MarkOffline(ctx, id); err != nil {
			// kicked players vanish between the list and the update
			log.Warn().Err(err).Str("player_id", id).Msg("failed to mark player offline")
			continue
		}
		changed++
	}
	return changed, nil
}

// Run sweeps every interval until ctx is done.
func (t *Tracker) Run(ctx context.Context, interval time.Duration) {
	ticker := t.clock.NewTicker(interval)
	defer ticker.Stop()

	log.Info().Dur("interval", interval).Dur("ttl", t.ttl).Msg("presence sweeper started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("presence sweeper shutting down")
			return
		case <-ticker.Chan():
			n, err := t.Sweep(ctx)
			if err != nil {
				log.Error().Err(err).Msg("presence sweep failed")
				continue
			}
			if n > 0 {
				log.Debug().Int("offline", n).Msg("presence sweep")
			}
		}
	}
}
