package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/mcdev12/planningpoker/go/internal/models"
)

const voteColumns = `id, issue_id, player_id, value, version, created_at`

func scanVote(row pgx.Row) (*models.Vote, error) {
	var v models.Vote
	if err := row.Scan(&v.ID, &v.IssueID, &v.PlayerID, &v.Value, &v.Version, &v.CreatedAt); err != nil {
		return nil, err
	}
	return &v, nil
}

// UpsertVote inserts or overwrites the vote for (issue_id, player_id) in one statement.
// The boolean reports whether a new row was inserted.
func (q *Queries) UpsertVote(ctx context.Context, v models.Vote) (*models.Vote, bool, error) {
	const query = `
		INSERT INTO votes (id, issue_id, player_id, value)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT ON CONSTRAINT votes_issue_player_key
		DO UPDATE SET value = EXCLUDED.value, version = votes.version + 1
		RETURNING ` + voteColumns + `, (xmax = 0) AS inserted`
	var out models.Vote
	var inserted bool
	err := q.db.QueryRow(ctx, query, v.ID, v.IssueID, v.PlayerID, v.Value).
		Scan(&out.ID, &out.IssueID, &out.PlayerID, &out.Value, &out.Version, &out.CreatedAt, &inserted)
	if err != nil {
		return nil, false, fmt.Errorf("upsert vote: %w", err)
	}
	return &out, inserted, nil
}

func (q *Queries) ListVotesByIssue(ctx context.Context, issueID string) ([]models.Vote, error) {
	rows, err := q.db.Query(ctx, `SELECT `+voteColumns+` FROM votes WHERE issue_id = $1 ORDER BY created_at, id`, issueID)
	if err != nil {
		return nil, fmt.Errorf("list votes: %w", err)
	}
	return collect(rows, scanVote)
}

// DeleteVotesByIssue removes every vote of the issue in one statement.
func (q *Queries) DeleteVotesByIssue(ctx context.Context, issueID string) (int64, error) {
	tag, err := q.db.Exec(ctx, `DELETE FROM votes WHERE issue_id = $1`, issueID)
	if err != nil {
		return 0, fmt.Errorf("delete votes: %w", err)
	}
	return tag.RowsAffected(), nil
}
