package outbox

import (
	"context"

	"github.com/google/uuid"

	"github.com/mcdev12/planningpoker/go/internal/db"
	"github.com/mcdev12/planningpoker/go/internal/models"
	"github.com/mcdev12/planningpoker/go/internal/sqlutil"
)

// Repository implements Store on top of the generated queries.
type Repository struct {
	queries *db.Queries
}

func NewRepository(queries *db.Queries) *Repository {
	return &Repository{queries: queries}
}

var _ Store = (*Repository)(nil)

// FetchUnsentByID returns nil without error when the event is unknown or already relayed.
func (r *Repository) FetchUnsentByID(ctx context.Context, id uuid.UUID) (*models.ChangeEvent, error) {
	ev, err := r.queries.FetchUnsentChangeByID(ctx, id)
	if sqlutil.IsNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, sqlutil.Classify(err)
	}
	return ev, nil
}

func (r *Repository) FetchUnsent(ctx context.Context, limit int) ([]models.ChangeEvent, error) {
	events, err := r.queries.FetchUnsentChanges(ctx, limit)
	return events, sqlutil.Classify(err)
}

func (r *Repository) MarkSent(ctx context.Context, id uuid.UUID) error {
	return sqlutil.Classify(r.queries.MarkChangeSent(ctx, id))
}

func (r *Repository) CountPending(ctx context.Context) (int64, error) {
	n, err := r.queries.CountPendingChanges(ctx)
	return n, sqlutil.Classify(err)
}
