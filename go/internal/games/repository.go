package games

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/mcdev12/planningpoker/go/internal/apperr"
	"github.com/mcdev12/planningpoker/go/internal/db"
	"github.com/mcdev12/planningpoker/go/internal/models"
	"github.com/mcdev12/planningpoker/go/internal/scoring"
	"github.com/mcdev12/planningpoker/go/internal/sqlutil"
)

// Repository implements game data access. Every write runs in one transaction together with
// the change events it produces.
type Repository struct {
	pool sqlutil.TxBeginner
}

// NewRepository creates a new games repository
func NewRepository(pool sqlutil.TxBeginner) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) write(ctx context.Context, fn func(q *db.Queries) error) error {
	return sqlutil.Run(ctx, r.pool, pgx.TxOptions{}, db.NewTx, fn)
}

func (r *Repository) CreateGame(ctx context.Context, game models.Game) (*models.Game, error) {
	var out *models.Game
	err := r.write(ctx, func(q *db.Queries) error {
		g, err := q.InsertGame(ctx, game)
		if err != nil {
			return err
		}
		out = g
		return q.RecordChange(ctx, g.ID, models.TableGames, models.OpInsert, g.ID, g)
	})
	return out, err
}

// GetSnapshot reads the game, its roster, its issues, the current issue's votes and the
// confidence votes from one consistent snapshot.
func (r *Repository) GetSnapshot(ctx context.Context, gameID string) (*models.Snapshot, error) {
	var snap models.Snapshot
	err := sqlutil.Run(ctx, r.pool, sqlutil.SnapshotRead, db.NewTx, func(q *db.Queries) error {
		seq, err := q.SnapshotHighWater(ctx, gameID)
		if err != nil {
			return err
		}
		snap.Seq = seq
		g, err := q.GetGame(ctx, gameID)
		if err != nil {
			return err
		}
		snap.Game = *g
		if snap.Players, err = q.ListPlayers(ctx, gameID); err != nil {
			return err
		}
		if snap.Issues, err = q.ListIssues(ctx, gameID); err != nil {
			return err
		}
		if g.CurrentIssueID != nil {
			if snap.Votes, err = q.ListVotesByIssue(ctx, *g.CurrentIssueID); err != nil {
				return err
			}
		}
		snap.ConfidenceVotes, err = q.ListConfidenceVotes(ctx, gameID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if snap.Players == nil {
		snap.Players = []models.Player{}
	}
	if snap.Issues == nil {
		snap.Issues = []models.Issue{}
	}
	if snap.Votes == nil {
		snap.Votes = []models.Vote{}
	}
	if snap.ConfidenceVotes == nil {
		snap.ConfidenceVotes = []models.ConfidenceVote{}
	}
	return &snap, nil
}

func (r *Repository) UpdateSettings(ctx context.Context, req UpdateSettingsRequest) (*models.Game, error) {
	var out *models.Game
	err := r.write(ctx, func(q *db.Queries) error {
		if _, err := q.RequireAdmin(ctx, req.GameID, req.PlayerID); err != nil {
			return err
		}
		if req.HostPlayerID != nil {
			if err := requireMember(ctx, q, req.GameID, *req.HostPlayerID); err != nil {
				return err
			}
		}
		g, err := q.UpdateGameSettings(ctx, db.UpdateGameSettingsParams{
			ID:           req.GameID,
			Name:         req.Name,
			Settings:     req.Settings,
			HostPlayerID: req.HostPlayerID,
		})
		if err != nil {
			return err
		}
		out = g
		return q.RecordChange(ctx, g.ID, models.TableGames, models.OpUpdate, g.ID, g)
	})
	return out, err
}

// Reveal flips the game to revealed and finalizes the current issue with the average of its
// votes. The issue event is recorded before the game event so no subscriber sees a revealed
// game next to an unscored issue once both have arrived.
func (r *Repository) Reveal(ctx context.Context, gameID, playerID string) (*RevealResult, error) {
	var out RevealResult
	err := r.write(ctx, func(q *db.Queries) error {
		g, err := q.RequireAdmin(ctx, gameID, playerID)
		if err != nil {
			return err
		}
		if g.CurrentIssueID != nil {
			votes, err := q.ListVotesByIssue(ctx, *g.CurrentIssueID)
			if err != nil {
				return err
			}
			if len(votes) > 0 {
				values := make([]string, len(votes))
				for i, v := range votes {
					values[i] = v.Value
				}
				issue, err := q.FinalizeIssue(ctx, *g.CurrentIssueID, scoring.Average(values))
				if err != nil {
					return err
				}
				if err := q.RecordChange(ctx, gameID, models.TableIssues, models.OpUpdate, issue.ID, issue); err != nil {
					return err
				}
				out.Issue = issue
			}
		}
		g, err = q.SetGameStatus(ctx, gameID, models.GameStatusRevealed)
		if err != nil {
			return err
		}
		out.Game = *g
		return q.RecordChange(ctx, gameID, models.TableGames, models.OpUpdate, g.ID, g)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// NewRound clears the current issue's votes and puts the game back into voting. Vote deletions
// produce no events of their own; subscribers react to the status transition.
func (r *Repository) NewRound(ctx context.Context, gameID, playerID string) (*models.Game, error) {
	var out *models.Game
	err := r.write(ctx, func(q *db.Queries) error {
		g, err := q.RequireAdmin(ctx, gameID, playerID)
		if err != nil {
			return err
		}
		if g.CurrentIssueID != nil {
			if _, err := q.DeleteVotesByIssue(ctx, *g.CurrentIssueID); err != nil {
				return err
			}
			issue, err := q.GetIssueForUpdate(ctx, *g.CurrentIssueID)
			if err != nil {
				return err
			}
			if issue.Status == models.IssueStatusVoted {
				if issue, err = q.SetIssueStatus(ctx, issue.ID, models.IssueStatusVoting); err != nil {
					return err
				}
				if err := q.RecordChange(ctx, gameID, models.TableIssues, models.OpUpdate, issue.ID, issue); err != nil {
					return err
				}
			}
		}
		if g, err = q.SetGameStatus(ctx, gameID, models.GameStatusVoting); err != nil {
			return err
		}
		out = g
		return q.RecordChange(ctx, gameID, models.TableGames, models.OpUpdate, g.ID, g)
	})
	return out, err
}

// SetCurrentIssue points the game at issueID, puts that issue into voting and opens a fresh
// round. Votes left on the issue are discarded when switching to it, and when re-selecting it
// after a reveal, since both put the game back into voting.
func (r *Repository) SetCurrentIssue(ctx context.Context, gameID, playerID, issueID string) (*CurrentIssueResult, error) {
	var out CurrentIssueResult
	err := r.write(ctx, func(q *db.Queries) error {
		g, err := q.RequireAdmin(ctx, gameID, playerID)
		if err != nil {
			return err
		}
		issue, err := q.GetIssueForUpdate(ctx, issueID)
		if err != nil {
			return err
		}
		if issue.GameID != gameID {
			return apperr.Validation("issue %q does not belong to game %q", issueID, gameID)
		}
		if g.IsRevealed() || g.CurrentIssueID == nil || *g.CurrentIssueID != issueID {
			if _, err := q.DeleteVotesByIssue(ctx, issueID); err != nil {
				return err
			}
		}
		if issue, err = q.SetIssueStatus(ctx, issueID, models.IssueStatusVoting); err != nil {
			return err
		}
		if err := q.RecordChange(ctx, gameID, models.TableIssues, models.OpUpdate, issue.ID, issue); err != nil {
			return err
		}
		if g, err = q.SetCurrentIssue(ctx, gameID, &issueID, models.GameStatusVoting); err != nil {
			return err
		}
		out.Game, out.Issue = *g, *issue
		return q.RecordChange(ctx, gameID, models.TableGames, models.OpUpdate, g.ID, g)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *Repository) TransferAdmin(ctx context.Context, gameID, playerID, targetID string) (*models.Game, error) {
	var out *models.Game
	err := r.write(ctx, func(q *db.Queries) error {
		if _, err := q.RequireAdmin(ctx, gameID, playerID); err != nil {
			return err
		}
		if err := requireMember(ctx, q, gameID, targetID); err != nil {
			return err
		}
		g, err := q.SetCreator(ctx, gameID, targetID)
		if err != nil {
			return err
		}
		out = g
		return q.RecordChange(ctx, gameID, models.TableGames, models.OpUpdate, g.ID, g)
	})
	return out, err
}

func requireMember(ctx context.Context, q *db.Queries, gameID, playerID string) error {
	p, err := q.GetPlayer(ctx, playerID)
	if err != nil {
		return err
	}
	if p.GameID != gameID {
		return apperr.NotFound("player", playerID)
	}
	return nil
}
