package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/mcdev12/planningpoker/go/internal/apperr"
	"github.com/mcdev12/planningpoker/go/internal/models"
)

const issueColumns = `id, game_id, title, description, status, final_score, sort_order, version, created_at`

func scanIssue(row pgx.Row) (*models.Issue, error) {
	var i models.Issue
	err := row.Scan(&i.ID, &i.GameID, &i.Title, &i.Description, &i.Status, &i.FinalScore, &i.SortOrder, &i.Version, &i.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

func issueRow(row pgx.Row, id string) (*models.Issue, error) {
	i, err := scanIssue(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("issue", id)
	}
	if err != nil {
		return nil, fmt.Errorf("scan issue: %w", err)
	}
	return i, nil
}

// NextSortOrder is one past the largest sort order in the game, or 1 for an empty game.
func (q *Queries) NextSortOrder(ctx context.Context, gameID string) (int, error) {
	var next int
	err := q.db.QueryRow(ctx, `SELECT COALESCE(MAX(sort_order), 0) + 1 FROM issues WHERE game_id = $1`, gameID).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("next sort order: %w", err)
	}
	return next, nil
}

func (q *Queries) InsertIssue(ctx context.Context, i models.Issue) (*models.Issue, error) {
	const query = `
		INSERT INTO issues (id, game_id, title, description, status, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + issueColumns
	return issueRow(q.db.QueryRow(ctx, query, i.ID, i.GameID, i.Title, i.Description, i.Status, i.SortOrder), i.ID)
}

func (q *Queries) GetIssue(ctx context.Context, id string) (*models.Issue, error) {
	return issueRow(q.db.QueryRow(ctx, `SELECT `+issueColumns+` FROM issues WHERE id = $1`, id), id)
}

func (q *Queries) GetIssueForUpdate(ctx context.Context, id string) (*models.Issue, error) {
	return issueRow(q.db.QueryRow(ctx, `SELECT `+issueColumns+` FROM issues WHERE id = $1 FOR UPDATE`, id), id)
}

// ListIssues returns the game's issues by sort order, ties broken by insertion.
func (q *Queries) ListIssues(ctx context.Context, gameID string) ([]models.Issue, error) {
	rows, err := q.db.Query(ctx, `SELECT `+issueColumns+` FROM issues WHERE game_id = $1 ORDER BY sort_order, created_at, id`, gameID)
	if err != nil {
		return nil, fmt.Errorf("list issues: %w", err)
	}
	return collect(rows, scanIssue)
}

// UpdateIssue writes every mutable column of i.
func (q *Queries) UpdateIssue(ctx context.Context, i models.Issue) (*models.Issue, error) {
	const query = `
		UPDATE issues SET title = $2, description = $3, status = $4, final_score = $5, sort_order = $6,
			version = version + 1
		WHERE id = $1
		RETURNING ` + issueColumns
	return issueRow(q.db.QueryRow(ctx, query, i.ID, i.Title, i.Description, i.Status, i.FinalScore, i.SortOrder), i.ID)
}

func (q *Queries) SetIssueStatus(ctx context.Context, id string, status models.IssueStatus) (*models.Issue, error) {
	const query = `UPDATE issues SET status = $2, version = version + 1 WHERE id = $1 RETURNING ` + issueColumns
	return issueRow(q.db.QueryRow(ctx, query, id, status), id)
}

// FinalizeIssue stores the revealed score and marks the issue voted.
func (q *Queries) FinalizeIssue(ctx context.Context, id string, score *float64) (*models.Issue, error) {
	const query = `
		UPDATE issues SET final_score = $2, status = 'voted', version = version + 1
		WHERE id = $1
		RETURNING ` + issueColumns
	return issueRow(q.db.QueryRow(ctx, query, id, score), id)
}

func (q *Queries) DeleteIssue(ctx context.Context, id string) error {
	tag, err := q.db.Exec(ctx, `DELETE FROM issues WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete issue: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("issue", id)
	}
	return nil
}
