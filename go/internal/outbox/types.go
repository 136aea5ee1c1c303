// Package outbox relays committed change events from the change_outbox table to JetStream.
package outbox

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/mcdev12/planningpoker/go/internal/models"
)

const (
	// StreamName is the JetStream stream holding every change event.
	StreamName = "POKER_CHANGES"
	// SubjectPrefix is followed by the game id on every published subject.
	SubjectPrefix = "poker.changes"
)

// Subject is the per-game subject a change is published on.
func Subject(gameID string) string {
	return fmt.Sprintf("%s.%s", SubjectPrefix, gameID)
}

// Message headers set on every published change.
const (
	HeaderEventID = "Event-ID"
	HeaderGameID  = "Game-ID"
	HeaderTable   = "Table"
	HeaderOp      = "Op"
)

// Publisher delivers one change event to subscribers.
type Publisher interface {
	Publish(ctx context.Context, event models.ChangeEvent) error
}

// Store is the outbox table as the relay sees it.
type Store interface {
	FetchUnsentByID(ctx context.Context, id uuid.UUID) (*models.ChangeEvent, error)
	FetchUnsent(ctx context.Context, limit int) ([]models.ChangeEvent, error)
	MarkSent(ctx context.Context, id uuid.UUID) error
	CountPending(ctx context.Context) (int64, error)
}
