package issues

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/mcdev12/planningpoker/go/internal/apperr"
	"github.com/mcdev12/planningpoker/go/internal/db"
	"github.com/mcdev12/planningpoker/go/internal/models"
	"github.com/mcdev12/planningpoker/go/internal/sqlutil"
)

// Repository implements issue data access
type Repository struct {
	pool sqlutil.TxBeginner
}

// NewRepository creates a new issues repository
func NewRepository(pool sqlutil.TxBeginner) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) write(ctx context.Context, fn func(q *db.Queries) error) error {
	return sqlutil.Run(ctx, r.pool, pgx.TxOptions{}, db.NewTx, fn)
}

// Create appends the issue after the game's last one. The game row lock taken by the admin
// check serializes concurrent creates, so sort orders stay distinct.
func (r *Repository) Create(ctx context.Context, actorID string, issue models.Issue) (*models.Issue, error) {
	var out *models.Issue
	err := r.write(ctx, func(q *db.Queries) error {
		if _, err := q.RequireAdmin(ctx, issue.GameID, actorID); err != nil {
			return err
		}
		next, err := q.NextSortOrder(ctx, issue.GameID)
		if err != nil {
			return err
		}
		issue.SortOrder = next
		i, err := q.InsertIssue(ctx, issue)
		if err != nil {
			return err
		}
		out = i
		return q.RecordChange(ctx, i.GameID, models.TableIssues, models.OpInsert, i.ID, i)
	})
	return out, err
}

func (r *Repository) Update(ctx context.Context, req UpdateIssueRequest) (*models.Issue, error) {
	var out *models.Issue
	err := r.write(ctx, func(q *db.Queries) error {
		if _, err := q.RequireAdmin(ctx, req.GameID, req.PlayerID); err != nil {
			return err
		}
		current, err := owned(ctx, q, req.GameID, req.IssueID)
		if err != nil {
			return err
		}
		next := req.Patch.Apply(*current)
		i, err := q.UpdateIssue(ctx, next)
		if err != nil {
			return err
		}
		out = i
		return q.RecordChange(ctx, i.GameID, models.TableIssues, models.OpUpdate, i.ID, i)
	})
	return out, err
}

// Delete removes the issue and its votes. Deleting the current issue also clears the game's
// pointer to it.
func (r *Repository) Delete(ctx context.Context, gameID, actorID, issueID string) error {
	return r.write(ctx, func(q *db.Queries) error {
		g, err := q.RequireAdmin(ctx, gameID, actorID)
		if err != nil {
			return err
		}
		if _, err := owned(ctx, q, gameID, issueID); err != nil {
			return err
		}
		if err := q.DeleteIssue(ctx, issueID); err != nil {
			return err
		}
		if err := q.RecordChange(ctx, gameID, models.TableIssues, models.OpDelete, issueID, nil); err != nil {
			return err
		}
		if g.CurrentIssueID == nil || *g.CurrentIssueID != issueID {
			return nil
		}
		g, err = q.SetCurrentIssue(ctx, gameID, nil, models.GameStatusVoting)
		if err != nil {
			return err
		}
		return q.RecordChange(ctx, gameID, models.TableGames, models.OpUpdate, g.ID, g)
	})
}

func (r *Repository) List(ctx context.Context, gameID string) ([]models.Issue, error) {
	var out []models.Issue
	err := sqlutil.Run(ctx, r.pool, sqlutil.ReadOnly, db.NewTx, func(q *db.Queries) error {
		if _, err := q.GetGame(ctx, gameID); err != nil {
			return err
		}
		var err error
		out, err = q.ListIssues(ctx, gameID)
		return err
	})
	return out, err
}

func owned(ctx context.Context, q *db.Queries, gameID, issueID string) (*models.Issue, error) {
	i, err := q.GetIssueForUpdate(ctx, issueID)
	if err != nil {
		return nil, err
	}
	if i.GameID != gameID {
		return nil, apperr.NotFound("issue", issueID)
	}
	return i, nil
}
