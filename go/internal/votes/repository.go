package votes

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/mcdev12/planningpoker/go/internal/apperr"
	"github.com/mcdev12/planningpoker/go/internal/db"
	"github.com/mcdev12/planningpoker/go/internal/models"
	"github.com/mcdev12/planningpoker/go/internal/sqlutil"
)

// Repository implements vote data access
type Repository struct {
	pool sqlutil.TxBeginner
}

// NewRepository creates a new votes repository
func NewRepository(pool sqlutil.TxBeginner) *Repository {
	return &Repository{pool: pool}
}

// Submit upserts the player's vote on the game's current issue. The game row is share-locked
// so a concurrent reveal either sees this vote or runs first and makes it fail.
func (r *Repository) Submit(ctx context.Context, vote models.Vote) (*models.Vote, error) {
	var out *models.Vote
	err := sqlutil.Run(ctx, r.pool, pgx.TxOptions{}, db.NewTx, func(q *db.Queries) error {
		issue, err := q.GetIssue(ctx, vote.IssueID)
		if err != nil {
			return err
		}
		g, err := q.GetGameForShare(ctx, issue.GameID)
		if err != nil {
			return err
		}
		p, err := q.GetPlayer(ctx, vote.PlayerID)
		if err != nil {
			return err
		}
		switch {
		case p.GameID != issue.GameID:
			return apperr.NotFound("player", vote.PlayerID)
		case p.IsSpectator:
			return apperr.Validation("spectators cannot vote")
		case g.CurrentIssueID == nil || *g.CurrentIssueID != issue.ID:
			return apperr.Validation("issue %q is not being voted on", issue.ID)
		case g.IsRevealed():
			return apperr.Validation("votes are already revealed")
		}

		v, inserted, err := q.UpsertVote(ctx, vote)
		if err != nil {
			return err
		}
		out = v
		op := models.OpUpdate
		if inserted {
			op = models.OpInsert
		}
		return q.RecordChange(ctx, issue.GameID, models.TableVotes, op, v.ID, v)
	})
	return out, err
}

func (r *Repository) List(ctx context.Context, issueID string) ([]models.Vote, error) {
	var out []models.Vote
	err := sqlutil.Run(ctx, r.pool, sqlutil.ReadOnly, db.NewTx, func(q *db.Queries) error {
		if _, err := q.GetIssue(ctx, issueID); err != nil {
			return err
		}
		var err error
		out, err = q.ListVotesByIssue(ctx, issueID)
		return err
	})
	return out, err
}
