package outbox

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/planningpoker/go/internal/db"
	"github.com/mcdev12/planningpoker/go/internal/models"
)

type ListenerConfig struct {
	DatabaseURL      string        // Postgres DSN for LISTEN/NOTIFY
	NotifyChannel    string        // Channel name to LISTEN on
	FallbackInterval time.Duration // How often to poll for missed events
	MaxRetries       int
	RetryDelay       time.Duration
	PingInterval     time.Duration
	BatchSize        int // Max events to fetch per poll
}

func DefaultListenerConfig() ListenerConfig {
	return ListenerConfig{
		NotifyChannel:    db.NotifyChannel,
		FallbackInterval: 30 * time.Second,
		MaxRetries:       5,
		RetryDelay:       200 * time.Millisecond,
		PingInterval:     90 * time.Second,
		BatchSize:        100,
	}
}

// Notifier is the LISTEN side of the connection. A nil notification means the connection was
// re-established and notifications may have been lost.
type Notifier interface {
	Notifications() <-chan *pq.Notification
	Ping() error
	Close() error
}

type pqNotifier struct {
	*pq.Listener
}

func (n pqNotifier) Notifications() <-chan *pq.Notification { return n.Notify }

// NewPQNotifier opens a pq.Listener on channel.
func NewPQNotifier(dsn, channel string) (Notifier, error) {
	l := pq.NewListener(dsn, 10*time.Second, time.Minute, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			log.Error().Err(err).Msg("listener event")
		}
	})
	if err := l.Listen(channel); err != nil {
		_ = l.Close()
		return nil, fmt.Errorf("failed to listen to channel: %w", err)
	}
	log.Info().Str("channel", channel).Msg("listening for notifications")
	return pqNotifier{l}, nil
}

// Listener relays outbox rows as they are committed, with a periodic sweep for anything a
// lost notification left behind.
type Listener struct {
	store     Store
	notifier  Notifier
	publisher Publisher
	clock     clockwork.Clock
	cfg       ListenerConfig

	mu        sync.Mutex
	running   bool
	processed uint64
	lastEvent time.Time
}

func NewListener(store Store, notifier Notifier, publisher Publisher, clock clockwork.Clock, cfg ListenerConfig) *Listener {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultListenerConfig().BatchSize
	}
	return &Listener{
		store:     store,
		notifier:  notifier,
		publisher: publisher,
		clock:     clock,
		cfg:       cfg,
	}
}

// Start runs until ctx is done. Unsent rows from before startup are relayed first.
func (l *Listener) Start(ctx context.Context) error {
	log.Info().
		Str("channel", l.cfg.NotifyChannel).
		Dur("ping_interval", l.cfg.PingInterval).
		Dur("fallback_interval", l.cfg.FallbackInterval).
		Msg("listener started")

	l.setRunning(true)
	defer l.setRunning(false)

	pingTicker := l.clock.NewTicker(l.cfg.PingInterval)
	fallbackTicker := l.clock.NewTicker(l.cfg.FallbackInterval)
	defer pingTicker.Stop()
	defer fallbackTicker.Stop()

	if err := l.processUnsent(ctx); err != nil {
		log.Error().Err(err).Msg("failed to process unsent events")
	}

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("listener shutting down")
			return l.notifier.Close()
		case note := <-l.notifier.Notifications():
			if note == nil {
				// reconnected; sweep for whatever was missed meanwhile
				if err := l.processUnsent(ctx); err != nil {
					log.Error().Err(err).Msg("failed to process unsent events")
				}
				continue
			}
			if err := l.handleNotification(ctx, note.Extra); err != nil {
				log.Error().Err(err).Msg("failed to handle notification")
			}
		case <-fallbackTicker.Chan():
			if err := l.processUnsent(ctx); err != nil {
				log.Error().Err(err).Msg("failed to process unsent events")
			}
		case <-pingTicker.Chan():
			if err := l.notifier.Ping(); err != nil {
				log.Error().Err(err).Msg("failed to ping listener")
			}
		}
	}
}

// Stats reports how many events were relayed and when the last one went out.
func (l *Listener) Stats() (processed uint64, last time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.processed, l.lastEvent
}

// Running reports whether Start is looping.
func (l *Listener) Running() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.running
}

func (l *Listener) setRunning(v bool) {
	l.mu.Lock()
	l.running = v
	l.mu.Unlock()
}

// handleNotification relays the event whose id is the notification payload.
func (l *Listener) handleNotification(ctx context.Context, extra string) error {
	id, err := uuid.Parse(extra)
	if err != nil {
		return fmt.Errorf("invalid event ID in notification: %w", err)
	}
	event, err := l.store.FetchUnsentByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to fetch outbox event: %w", err)
	}
	if event == nil {
		// the fallback sweep got there first
		return nil
	}
	return l.relay(ctx, *event)
}

// processUnsent relays every unsent event in commit order, one batch at a time.
func (l *Listener) processUnsent(ctx context.Context) error {
	for {
		unsent, err := l.store.FetchUnsent(ctx, l.cfg.BatchSize)
		if err != nil {
			return fmt.Errorf("failed to fetch unsent outbox events: %w", err)
		}
		for _, event := range unsent {
			if err := l.relay(ctx, event); err != nil {
				// keep order: stop at the first event that could not go out
				return err
			}
		}
		if len(unsent) < l.cfg.BatchSize {
			return nil
		}
	}
}

func (l *Listener) relay(ctx context.Context, event models.ChangeEvent) error {
	if err := l.publishWithRetry(ctx, event); err != nil {
		return fmt.Errorf("failed to publish event %s: %w", event.ID, err)
	}
	id, err := uuid.Parse(event.ID)
	if err != nil {
		return fmt.Errorf("invalid event ID %q: %w", event.ID, err)
	}
	if err := l.store.MarkSent(ctx, id); err != nil {
		// republishing is harmless; JetStream drops the duplicate by message id
		return fmt.Errorf("failed to mark outbox event as sent: %w", err)
	}

	l.mu.Lock()
	l.processed++
	l.lastEvent = l.clock.Now()
	l.mu.Unlock()

	log.Debug().
		Str("event_id", event.ID).
		Str("game_id", event.GameID).
		Str("table", string(event.Table)).
		Str("op", string(event.Op)).
		Msg("published and marked event as sent")
	return nil
}

// publishWithRetry retries with a linearly growing delay.
func (l *Listener) publishWithRetry(ctx context.Context, event models.ChangeEvent) error {
	var lastErr error
	for attempt := 0; attempt <= l.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-l.clock.After(l.cfg.RetryDelay * time.Duration(attempt)):
			}
		}

		err := l.publisher.Publish(ctx, event)
		if err == nil {
			if attempt > 0 {
				log.Info().Int("attempt", attempt+1).Str("event_id", event.ID).Msg("publish succeeded after retry")
			}
			return nil
		}
		if errors.Is(err, context.Canceled) {
			return err
		}
		lastErr = err
		log.Error().Err(err).Int("attempt", attempt+1).Str("event_id", event.ID).Msg("failed to publish, retrying")
	}
	return fmt.Errorf("publish failed after %d attempts: %w", l.cfg.MaxRetries+1, lastErr)
}
