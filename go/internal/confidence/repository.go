package confidence

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/mcdev12/planningpoker/go/internal/apperr"
	"github.com/mcdev12/planningpoker/go/internal/db"
	"github.com/mcdev12/planningpoker/go/internal/models"
	"github.com/mcdev12/planningpoker/go/internal/sqlutil"
)

// Repository implements confidence vote data access
type Repository struct {
	pool sqlutil.TxBeginner
}

// NewRepository creates a new confidence repository
func NewRepository(pool sqlutil.TxBeginner) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) write(ctx context.Context, fn func(q *db.Queries) error) error {
	return sqlutil.Run(ctx, r.pool, pgx.TxOptions{}, db.NewTx, fn)
}

// Start wipes the previous session's votes and opens a new one. The deletions are not emitted;
// subscribers clear their caches when confidence_status moves into voting.
func (r *Repository) Start(ctx context.Context, gameID, actorID string) (*models.Game, error) {
	return r.setStatus(ctx, gameID, actorID, models.ConfidenceStatusVoting, true)
}

func (r *Repository) Reveal(ctx context.Context, gameID, actorID string) (*models.Game, error) {
	return r.setStatus(ctx, gameID, actorID, models.ConfidenceStatusRevealed, false)
}

func (r *Repository) setStatus(ctx context.Context, gameID, actorID string, status models.ConfidenceStatus, clear bool) (*models.Game, error) {
	var out *models.Game
	err := r.write(ctx, func(q *db.Queries) error {
		if _, err := q.RequireAdmin(ctx, gameID, actorID); err != nil {
			return err
		}
		if clear {
			if _, err := q.DeleteConfidenceVotes(ctx, gameID); err != nil {
				return err
			}
		}
		g, err := q.SetConfidenceStatus(ctx, gameID, status)
		if err != nil {
			return err
		}
		out = g
		return q.RecordChange(ctx, gameID, models.TableGames, models.OpUpdate, g.ID, g)
	})
	return out, err
}

// Submit upserts the player's confidence vote while a session is open.
func (r *Repository) Submit(ctx context.Context, vote models.ConfidenceVote) (*models.ConfidenceVote, error) {
	var out *models.ConfidenceVote
	err := r.write(ctx, func(q *db.Queries) error {
		g, err := q.GetGameForShare(ctx, vote.GameID)
		if err != nil {
			return err
		}
		if g.ConfidenceStatus != models.ConfidenceStatusVoting {
			return apperr.Validation("no confidence vote is open")
		}
		p, err := q.GetPlayer(ctx, vote.PlayerID)
		if err != nil {
			return err
		}
		if p.GameID != vote.GameID {
			return apperr.NotFound("player", vote.PlayerID)
		}
		v, inserted, err := q.UpsertConfidenceVote(ctx, vote)
		if err != nil {
			return err
		}
		out = v
		op := models.OpUpdate
		if inserted {
			op = models.OpInsert
		}
		return q.RecordChange(ctx, vote.GameID, models.TableConfidenceVotes, op, v.ID, v)
	})
	return out, err
}

func (r *Repository) List(ctx context.Context, gameID string) ([]models.ConfidenceVote, error) {
	var out []models.ConfidenceVote
	err := sqlutil.Run(ctx, r.pool, sqlutil.ReadOnly, db.NewTx, func(q *db.Queries) error {
		if _, err := q.GetGame(ctx, gameID); err != nil {
			return err
		}
		var err error
		out, err = q.ListConfidenceVotes(ctx, gameID)
		return err
	})
	return out, err
}
