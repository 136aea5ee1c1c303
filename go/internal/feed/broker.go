package feed

import (
	"context"
	"errors"
	"sync"

	"github.com/mcdev12/planningpoker/go/internal/models"
)

// Broker is an in-process Subscriber. It also satisfies outbox.Publisher, so a relay can feed
// local subscribers directly. Handlers run synchronously on the publishing goroutine.
type Broker struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]subscription
}

type subscription struct {
	filter  Filter
	handler Handler
	lost    LostFunc
}

// ErrDisconnected is reported to subscribers dropped by Disconnect.
var ErrDisconnected = errors.New("change feed disconnected")

func NewBroker() *Broker {
	return &Broker{subs: make(map[int]subscription)}
}

func (b *Broker) Subscribe(_ context.Context, filter Filter, handler Handler, lost LostFunc) (Cancel, error) {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = subscription{filter: filter, handler: handler, lost: lost}
	b.mu.Unlock()

	return once(func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}), nil
}

// Publish delivers event to every matching subscriber.
func (b *Broker) Publish(_ context.Context, event models.ChangeEvent) error {
	b.mu.RLock()
	var targets []Handler
	for _, s := range b.subs {
		if s.filter.Matches(event) {
			targets = append(targets, s.handler)
		}
	}
	b.mu.RUnlock()

	for _, h := range targets {
		h(event)
	}
	return nil
}

// Disconnect ends every live subscription as if its transport had failed. A nil err reports
// ErrDisconnected.
func (b *Broker) Disconnect(err error) {
	if err == nil {
		err = ErrDisconnected
	}
	b.mu.Lock()
	subs := b.subs
	b.subs = make(map[int]subscription)
	b.mu.Unlock()

	for _, s := range subs {
		if s.lost != nil {
			s.lost(err)
		}
	}
}

// Subscribers counts live subscriptions.
func (b *Broker) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
