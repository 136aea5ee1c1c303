package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/mcdev12/planningpoker/go/internal/models"
)

const confidenceColumns = `id, game_id, player_id, value, session_name, version, created_at`

func scanConfidenceVote(row pgx.Row) (*models.ConfidenceVote, error) {
	var v models.ConfidenceVote
	if err := row.Scan(&v.ID, &v.GameID, &v.PlayerID, &v.Value, &v.SessionName, &v.Version, &v.CreatedAt); err != nil {
		return nil, err
	}
	return &v, nil
}

// UpsertConfidenceVote inserts or overwrites the player's confidence vote for the game.
func (q *Queries) UpsertConfidenceVote(ctx context.Context, v models.ConfidenceVote) (*models.ConfidenceVote, bool, error) {
	const query = `
		INSERT INTO confidence_votes (id, game_id, player_id, value, session_name)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT ON CONSTRAINT confidence_votes_game_player_key
		DO UPDATE SET value = EXCLUDED.value, session_name = EXCLUDED.session_name,
			version = confidence_votes.version + 1
		RETURNING ` + confidenceColumns + `, (xmax = 0) AS inserted`
	var out models.ConfidenceVote
	var inserted bool
	err := q.db.QueryRow(ctx, query, v.ID, v.GameID, v.PlayerID, v.Value, v.SessionName).
		Scan(&out.ID, &out.GameID, &out.PlayerID, &out.Value, &out.SessionName, &out.Version, &out.CreatedAt, &inserted)
	if err != nil {
		return nil, false, fmt.Errorf("upsert confidence vote: %w", err)
	}
	return &out, inserted, nil
}

func (q *Queries) ListConfidenceVotes(ctx context.Context, gameID string) ([]models.ConfidenceVote, error) {
	rows, err := q.db.Query(ctx, `SELECT `+confidenceColumns+` FROM confidence_votes WHERE game_id = $1 ORDER BY created_at, id`, gameID)
	if err != nil {
		return nil, fmt.Errorf("list confidence votes: %w", err)
	}
	return collect(rows, scanConfidenceVote)
}

func (q *Queries) DeleteConfidenceVotes(ctx context.Context, gameID string) (int64, error) {
	tag, err := q.db.Exec(ctx, `DELETE FROM confidence_votes WHERE game_id = $1`, gameID)
	if err != nil {
		return 0, fmt.Errorf("delete confidence votes: %w", err)
	}
	return tag.RowsAffected(), nil
}
