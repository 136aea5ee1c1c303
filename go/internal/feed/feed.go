// Package feed delivers a game's change events to client-side subscribers.
package feed

import (
	"context"
	"sync"

	"github.com/mcdev12/planningpoker/go/internal/models"
)

// Filter scopes a subscription to one game and, optionally, a subset of tables.
type Filter struct {
	GameID string
	Tables []models.Table
}

// Matches reports whether event passes the filter.
func (f Filter) Matches(event models.ChangeEvent) bool {
	if event.GameID != f.GameID {
		return false
	}
	if len(f.Tables) == 0 {
		return true
	}
	for _, t := range f.Tables {
		if t == event.Table {
			return true
		}
	}
	return false
}

// Handler receives events in delivery order.
type Handler func(event models.ChangeEvent)

// Cancel releases a subscription. Calling it more than once is safe.
type Cancel func()

// LostFunc is called at most once when a subscription ends without being canceled. Events
// published afterwards are not delivered, so the subscriber has to resync.
type LostFunc func(err error)

// Subscriber opens change subscriptions. lost may be nil.
type Subscriber interface {
	Subscribe(ctx context.Context, filter Filter, handler Handler, lost LostFunc) (Cancel, error)
}

// once wraps fn so only the first call runs.
func once(fn func()) Cancel {
	var o sync.Once
	return func() { o.Do(fn) }
}
